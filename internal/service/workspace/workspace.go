// Package workspace holds the current planning session: the locked fiscal year and
// line of business, its dimension registry, combinations, rates and assumptions.
package workspace

import (
	"errors"
	"sync"

	"github.com/phuslu/log"

	"github.com/Prabhakar2095/Budget-Working/internal/calculator"
	"github.com/Prabhakar2095/Budget-Working/internal/catalog"
	"github.com/Prabhakar2095/Budget-Working/internal/combination"
	"github.com/Prabhakar2095/Budget-Working/internal/config"
	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

var (
	// ErrConfirmationRequired the action would discard unsaved modelling data
	ErrConfirmationRequired = errors.New("unsaved modelling data would be lost, confirm to continue")
	// ErrNotLocked no fiscal year and line of business selected yet
	ErrNotLocked = errors.New("select a fiscal year and line of business first")
	// ErrNothingToUndo no edit to revert
	ErrNothingToUndo = errors.New("nothing to undo")
)

// SnapshotStore persistence used by the workspace
type SnapshotStore interface {
	SaveSnapshot(snap *model.Snapshot) (store.SnapshotInfo, error)
	LoadSnapshot(lob, fiscalYear string) (*model.Snapshot, error)
	GetCurrentSelection() (fiscalYear, lob string, err error)
	SetCurrentSelection(fiscalYear, lob string) error
}

// Workspace mutex-guarded planning session
type Workspace struct {
	store    SnapshotStore
	catalog  *catalog.Catalog
	defaults config.DefaultsConfig

	mu      sync.Mutex
	snap    *model.Snapshot // nil until locked
	dirty   bool
	unsaved bool
	lastSig string
	undo    *undoRecord
	rev     int // bumped by every edit
}

// undoRecord session before the last write; staleness travels with the combinations.
type undoRecord struct {
	snap    *model.Snapshot
	dirty   bool
	lastSig string
}

// New an unlocked workspace. store may be nil (nothing is persisted).
func New(st SnapshotStore, cat *catalog.Catalog, defaults config.DefaultsConfig) *Workspace {
	if cat == nil {
		cat = catalog.New(nil)
	}
	return &Workspace{store: st, catalog: cat, defaults: defaults}
}

// Restore locks the last persisted selection, or the configured defaults.
func (w *Workspace) Restore() (State, error) {
	fy, lob := w.defaults.FiscalYear, w.defaults.LOB
	if w.store != nil {
		if sfy, slob, err := w.store.GetCurrentSelection(); err == nil {
			fy, lob = sfy, slob
		}
	}
	return w.Lock(fy, lob, true)
}

// State current session view
func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Workspace) stateLocked() State {
	if w.snap == nil {
		return State{}
	}
	st := State{
		Locked:            true,
		FiscalYear:        w.snap.FiscalYear,
		PriorYears:        append([]string(nil), w.snap.PriorYears...),
		LOB:               w.snap.LOB,
		Combinations:      len(w.snap.Combos),
		Dirty:             w.dirty,
		Unsaved:           w.unsaved,
		RegistrySignature: w.lastSig,
		CanUndo:           w.undo != nil,
		Assumptions:       assumptionsOf(w.snap),
	}
	if w.snap.Registry != nil {
		reg := w.snap.Registry.Clone()
		st.Registry = &reg
	}
	return st
}

// Lock switches the session to a fiscal year and line of business. When the
// selection changes and unsaved data exists, confirm must be set or
// ErrConfirmationRequired is returned with nothing changed. A persisted snapshot
// for the pair is loaded; otherwise a fresh session starts from the defaults.
func (w *Workspace) Lock(fy, lobName string, confirm bool) (State, error) {
	year, err := fiscal.Parse(fy)
	if err != nil {
		return State{}, model.Invalid("%v", err)
	}
	lob, ok := model.ParseLOB(lobName)
	if !ok {
		return State{}, model.Invalid("unknown line of business %q", lobName)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.snap != nil && w.snap.FiscalYear == year.String() && w.snap.LOB == lob {
		return w.stateLocked(), nil
	}
	if w.needsConfirmLocked() && !confirm {
		return State{}, ErrConfirmationRequired
	}

	snap, err := w.loadOrNewLocked(lob, year)
	if err != nil {
		return State{}, err
	}
	w.replaceLocked(snap)

	if w.store != nil {
		if err := w.store.SetCurrentSelection(snap.FiscalYear, string(lob)); err != nil {
			log.Warn().Err(err).Msg("failed to persist current selection")
		}
	}
	log.Info().Str("fiscal_year", snap.FiscalYear).Str("lob", string(lob)).Int("combinations", len(snap.Combos)).Msg("workspace locked")
	return w.stateLocked(), nil
}

// Reset discards the session. Unsaved data needs confirm.
func (w *Workspace) Reset(confirm bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.needsConfirmLocked() && !confirm {
		return ErrConfirmationRequired
	}
	w.snap = nil
	w.dirty, w.unsaved = false, false
	w.lastSig = ""
	w.undo = nil
	return nil
}

func (w *Workspace) needsConfirmLocked() bool {
	return w.snap != nil && w.unsaved && (w.snap.HasModelData() || len(w.snap.Combos) > 0)
}

func (w *Workspace) loadOrNewLocked(lob model.LOB, year fiscal.Year) (*model.Snapshot, error) {
	if w.store != nil {
		snap, err := w.store.LoadSnapshot(string(lob), year.String())
		switch {
		case err == nil:
			return w.prepare(snap), nil
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}
	reg := dimension.Default(lob.SiteAxis())
	snap := &model.Snapshot{
		FiscalYear:         year.String(),
		PriorYears:         year.PriorYears(),
		LOB:                lob,
		Registry:           &reg,
		Combos:             []model.Combination{},
		IncludeFresh:       true,
		BaseExitYear:       year.Prev().String(),
		OpexItems:          w.catalog.OpexItems(),
		CapexItems:         w.catalog.CapexItems(),
		ProvisionPct:       w.defaults.ProvisionPct,
		CustomerPenaltyPct: w.defaults.CustomerPenaltyPct,
		VendorPenaltyPct:   w.defaults.VendorPenaltyPct,
	}
	snap.EnsureMaps()
	return snap, nil
}

// prepare fills what older snapshots may lack.
func (w *Workspace) prepare(snap *model.Snapshot) *model.Snapshot {
	snap.EnsureMaps()
	if year, err := fiscal.Parse(snap.FiscalYear); err == nil {
		if len(snap.PriorYears) == 0 {
			snap.PriorYears = year.PriorYears()
		}
		if snap.BaseExitYear == "" {
			snap.BaseExitYear = year.Prev().String()
		}
	}
	if snap.Registry == nil {
		reg := dimension.Default(snap.LOB.SiteAxis())
		snap.Registry = &reg
	}
	if len(snap.OpexItems) == 0 {
		snap.OpexItems = w.catalog.OpexItems()
	}
	if len(snap.CapexItems) == 0 {
		snap.CapexItems = w.catalog.CapexItems()
	}
	return snap
}

func (w *Workspace) replaceLocked(snap *model.Snapshot) {
	w.snap = snap
	w.rev++
	w.dirty, w.unsaved = false, false
	w.undo = nil
	w.lastSig = ""
	if len(snap.Combos) > 0 && snap.Registry != nil {
		w.lastSig = snap.Registry.Signature()
	}
}

func (w *Workspace) touchLocked() {
	w.unsaved = true
	w.rev++
}

// saveUndoLocked single-step undo: remember the state before a write.
func (w *Workspace) saveUndoLocked() {
	w.undo = &undoRecord{snap: w.snap.Clone(), dirty: w.dirty, lastSig: w.lastSig}
}

// Undo reverts the last edit.
func (w *Workspace) Undo() (State, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return State{}, ErrNotLocked
	}
	if w.undo == nil {
		return State{}, ErrNothingToUndo
	}
	u := w.undo
	w.snap, w.dirty, w.lastSig = u.snap, u.dirty, u.lastSig
	w.undo = nil
	w.touchLocked()
	return w.stateLocked(), nil
}

func (w *Workspace) refreshDirtyLocked(explicit bool) {
	sig := ""
	if w.snap.Registry != nil {
		sig = w.snap.Registry.Signature()
	}
	w.dirty = w.dirty || explicit || (w.lastSig != "" && sig != w.lastSig)
}

// EditRegistry applies one registry mutation. Any value-set change marks the
// generated combinations stale until the next Generate.
func (w *Workspace) EditRegistry(edit RegistryEdit) (State, error) {
	if err := model.Validate(edit); err != nil {
		return State{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return State{}, ErrNotLocked
	}

	reg := *w.snap.Registry
	var m dimension.Mutation
	var err error
	switch edit.Action {
	case ActionAddValue:
		m, err = reg.AddValue(edit.Axis, edit.Value)
	case ActionRemoveValue:
		m, err = reg.RemoveValue(edit.Axis, edit.Value)
	case ActionAddLevel:
		m, err = reg.AddLevel(edit.Name)
	case ActionRemoveLevel:
		m, err = reg.RemoveLevel(edit.Name)
	case ActionRenameLevel:
		m, err = reg.RenameLevel(edit.Name, edit.NewName)
	}
	if err != nil {
		return State{}, model.Invalid("%v", err)
	}

	w.saveUndoLocked()
	w.snap.Registry = &m.Registry
	w.touchLocked()
	w.refreshDirtyLocked(m.Dirty)
	return w.stateLocked(), nil
}

// SetRegistry replaces the whole registry after validating it.
func (w *Workspace) SetRegistry(reg dimension.Registry) (State, error) {
	if err := reg.Validate(); err != nil {
		return State{}, model.Invalid("%v", err)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return State{}, ErrNotLocked
	}
	if reg.SiteAxis != w.snap.LOB.SiteAxis() {
		return State{}, model.Invalid("registry site axis %q does not match %s", reg.SiteAxis, w.snap.LOB)
	}
	changed := w.snap.Registry == nil || w.snap.Registry.Signature() != reg.Signature()
	w.saveUndoLocked()
	w.snap.Registry = &reg
	w.touchLocked()
	w.refreshDirtyLocked(changed)
	return w.stateLocked(), nil
}

// Generate regenerates combinations from the registry and clears the dirty flag.
func (w *Workspace) Generate(preserve bool) (combination.Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return combination.Result{}, ErrNotLocked
	}

	res := combination.Generate(*w.snap.Registry, w.snap.LOB, w.snap.Combos, preserve)
	w.saveUndoLocked()
	w.snap.Combos = res.Combinations
	w.dirty = false
	w.lastSig = res.RegistrySignature
	w.touchLocked()

	log.Info().Str("lob", string(w.snap.LOB)).Int("combinations", len(res.Combinations)).
		Int("preserved", res.Preserved).Int("dropped", res.Dropped).Msg("combinations generated")
	return res, nil
}

// Combinations copy of the current combinations
func (w *Workspace) Combinations() ([]model.Combination, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return nil, ErrNotLocked
	}
	out := make([]model.Combination, len(w.snap.Combos))
	for i, c := range w.snap.Combos {
		out[i] = c.Clone()
	}
	return out, nil
}

// PatchCombination updates one combination by signature.
func (w *Workspace) PatchCombination(signature string, p CombinationPatch) (model.Combination, error) {
	if p.Offsets != nil {
		if err := model.Validate(p.Offsets); err != nil {
			return model.Combination{}, err
		}
	}
	var problems []string
	for fy := range p.Volumes {
		problems = appendFY(problems, "volumes", fy)
	}
	for fy := range p.ExitVolumes {
		problems = appendFY(problems, "exitVolumes", fy)
	}
	for fy := range p.ExistingRevenue {
		problems = appendFY(problems, "existingRevenue", fy)
	}
	if err := model.Collect(problems); err != nil {
		return model.Combination{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return model.Combination{}, ErrNotLocked
	}
	idx := w.indexLocked(signature)
	if idx < 0 {
		return model.Combination{}, model.Invalid("unknown combination %q", signature)
	}

	w.saveUndoLocked()
	c := &w.snap.Combos[idx]
	c.EnsureMaps()
	if p.Included != nil {
		c.Included = *p.Included
	}
	for fy, s := range p.Volumes {
		c.Volumes[fy] = s
	}
	for fy, v := range p.ExitVolumes {
		c.ExitVolumes[fy] = v
	}
	for fy, er := range p.ExistingRevenue {
		c.ExistingRevenue[fy] = er
	}
	if p.Offsets != nil {
		c.Offsets = *p.Offsets
	}
	if p.Rate != nil {
		w.snap.Rates[c.Key()] = *p.Rate
	}
	w.touchLocked()
	return c.Clone(), nil
}

func appendFY(problems []string, field, fy string) []string {
	if _, err := fiscal.Parse(fy); err != nil {
		return append(problems, field+": "+err.Error())
	}
	return problems
}

func (w *Workspace) indexLocked(signature string) int {
	for i, c := range w.snap.Combos {
		if c.Key() == signature {
			return i
		}
	}
	return -1
}

// SetOpexRate sets an opex item rate for one combination.
func (w *Workspace) SetOpexRate(p ItemRatePatch) error {
	return w.setItemRate(p, false)
}

// SetCapexRate sets a capex item rate for one combination.
func (w *Workspace) SetCapexRate(p ItemRatePatch) error {
	return w.setItemRate(p, true)
}

func (w *Workspace) setItemRate(p ItemRatePatch, capex bool) error {
	if err := model.Validate(p); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return ErrNotLocked
	}
	if w.indexLocked(p.Signature) < 0 {
		return model.Invalid("unknown combination %q", p.Signature)
	}
	rates := w.snap.OpexRates
	known := w.hasOpexItemLocked(p.Item)
	if capex {
		rates = w.snap.CapexRates
		known = w.hasCapexItemLocked(p.Item)
	}
	if !known {
		return model.Invalid("unknown item %q", p.Item)
	}
	w.saveUndoLocked()
	rates.Set(p.Item, p.Signature, p.Rate)
	w.touchLocked()
	return nil
}

func (w *Workspace) hasOpexItemLocked(name string) bool {
	for _, it := range w.snap.OpexItems {
		if it.Name == name {
			return true
		}
	}
	return false
}

func (w *Workspace) hasCapexItemLocked(name string) bool {
	for _, it := range w.snap.CapexItems {
		if it.Name == name {
			return true
		}
	}
	return false
}

// SetAssumptions replaces the session assumptions.
func (w *Workspace) SetAssumptions(a Assumptions) (State, error) {
	if err := model.Validate(a); err != nil {
		return State{}, err
	}
	if a.BaseExitYear != "" {
		if _, err := fiscal.Parse(a.BaseExitYear); err != nil {
			return State{}, model.Invalid("baseExitYear: %v", err)
		}
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return State{}, ErrNotLocked
	}
	w.saveUndoLocked()
	w.snap.ProvisionPct = a.ProvisionPct
	w.snap.CustomerPenaltyPct = a.CustomerPenaltyPct
	w.snap.VendorPenaltyPct = a.VendorPenaltyPct
	w.snap.FormulaRecurring = a.FormulaRecurring
	w.snap.FormulaOneTime = a.FormulaOneTime
	w.snap.BaseExitYear = a.BaseExitYear
	w.snap.IncludeFresh = a.IncludeFresh
	w.touchLocked()
	return w.stateLocked(), nil
}

func assumptionsOf(s *model.Snapshot) Assumptions {
	return Assumptions{
		ProvisionPct:       s.ProvisionPct,
		CustomerPenaltyPct: s.CustomerPenaltyPct,
		VendorPenaltyPct:   s.VendorPenaltyPct,
		FormulaRecurring:   s.FormulaRecurring,
		FormulaOneTime:     s.FormulaOneTime,
		BaseExitYear:       s.BaseExitYear,
		IncludeFresh:       s.IncludeFresh,
	}
}

// SyncCatalog copies the catalogue item lists into the session, keeping rates
// and overrides of items that still exist.
func (w *Workspace) SyncCatalog() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return
	}
	w.snap.OpexItems = w.catalog.OpexItems()
	w.snap.CapexItems = w.catalog.CapexItems()
	w.touchLocked()
}

// Snapshot deep copy of the session for calculation or export
func (w *Workspace) Snapshot() (*model.Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return nil, ErrNotLocked
	}
	return w.snap.Clone(), nil
}

// Calculate runs the revenue calculation on a copy; edits made meanwhile do not leak in.
func (w *Workspace) Calculate() (*calculator.Result, error) {
	snap, err := w.Snapshot()
	if err != nil {
		return nil, err
	}
	return calculator.ComputeRevenue(snap)
}

// VolumeRollup volume view of the current combinations
func (w *Workspace) VolumeRollup() (calculator.VolumeRollup, error) {
	snap, err := w.Snapshot()
	if err != nil {
		return calculator.VolumeRollup{}, err
	}
	var axes []string
	if snap.Registry != nil {
		axes = append(snap.Registry.Axes(), dimension.AxisType)
	}
	return calculator.ComputeVolumeRollup(snap.Combos, snap.FiscalYear, snap.PriorYears, axes), nil
}

// Save persists the session and clears the unsaved flag.
func (w *Workspace) Save() (store.SnapshotInfo, error) {
	if w.store == nil {
		return store.SnapshotInfo{}, errors.New("no snapshot store configured")
	}
	w.mu.Lock()
	if w.snap == nil {
		w.mu.Unlock()
		return store.SnapshotInfo{}, ErrNotLocked
	}
	snap, rev := w.snap.Clone(), w.rev
	w.mu.Unlock()

	info, err := w.store.SaveSnapshot(snap)
	if err != nil {
		return store.SnapshotInfo{}, err
	}

	w.mu.Lock()
	// an edit made while saving keeps the session unsaved
	if w.rev == rev {
		w.unsaved = false
	}
	w.mu.Unlock()

	log.Info().Str("lob", info.LOB).Str("fiscal_year", info.FiscalYear).Int("combinations", info.Combinations).Msg("snapshot saved")
	return info, nil
}

// Load replaces the session with a persisted snapshot.
func (w *Workspace) Load(lobName, fy string, confirm bool) (State, error) {
	if w.store == nil {
		return State{}, errors.New("no snapshot store configured")
	}
	lob, ok := model.ParseLOB(lobName)
	if !ok {
		return State{}, model.Invalid("unknown line of business %q", lobName)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.needsConfirmLocked() && !confirm {
		return State{}, ErrConfirmationRequired
	}
	snap, err := w.store.LoadSnapshot(string(lob), fy)
	if err != nil {
		return State{}, err
	}
	w.replaceLocked(w.prepare(snap))
	if err := w.store.SetCurrentSelection(snap.FiscalYear, string(lob)); err != nil {
		log.Warn().Err(err).Msg("failed to persist current selection")
	}
	return w.stateLocked(), nil
}
