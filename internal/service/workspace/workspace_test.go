package workspace

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhakar2095/Budget-Working/internal/config"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/parser"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

const rfai = "circle=SOBO|customer=Airtel|type=RFAI"

func newWorkspace(t *testing.T) (*Workspace, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(st, nil, config.DefaultsConfig{FiscalYear: "FY25-26", LOB: "FTTH", ProvisionPct: 2}), st
}

func lockedWithCombos(t *testing.T) *Workspace {
	t.Helper()
	w, _ := newWorkspace(t)
	_, err := w.Lock("FY25-26", "ftth", false)
	require.NoError(t, err)
	_, err = w.Generate(true)
	require.NoError(t, err)
	return w
}

func TestLockStartsFromDefaults(t *testing.T) {
	w, _ := newWorkspace(t)
	assert.False(t, w.State().Locked)

	st, err := w.Lock("FY25-26", "FTTH", false)
	require.NoError(t, err)
	assert.True(t, st.Locked)
	assert.Equal(t, model.LOBFTTH, st.LOB)
	assert.Equal(t, []string{"FY24-25", "FY23-24"}, st.PriorYears)
	assert.Equal(t, []string{"Airtel"}, st.Registry.Customers)
	assert.Equal(t, 2.0, st.Assumptions.ProvisionPct)
	assert.True(t, st.Assumptions.IncludeFresh)
	assert.Equal(t, "FY24-25", st.Assumptions.BaseExitYear)
	assert.Zero(t, st.Combinations)
}

func TestLockRejectsBadInput(t *testing.T) {
	w, _ := newWorkspace(t)

	_, err := w.Lock("FY25-27", "FTTH", false)
	_, ok := model.AsValidation(err)
	assert.True(t, ok)

	_, err = w.Lock("FY25-26", "Satellite", false)
	_, ok = model.AsValidation(err)
	assert.True(t, ok)
	assert.False(t, w.State().Locked)
}

func TestRestoreUsesPersistedSelection(t *testing.T) {
	w, st := newWorkspace(t)
	require.NoError(t, st.SetCurrentSelection("FY26-27", "SDU"))

	state, err := w.Restore()
	require.NoError(t, err)
	assert.Equal(t, "FY26-27", state.FiscalYear)
	assert.Equal(t, model.LOBSDU, state.LOB)
}

func TestDirtyFlagFollowsRegistryEdits(t *testing.T) {
	w := lockedWithCombos(t)
	st := w.State()
	assert.Equal(t, 2, st.Combinations)
	assert.False(t, st.Dirty)

	st, err := w.EditRegistry(RegistryEdit{Action: ActionAddValue, Axis: "customer", Value: "Jio"})
	require.NoError(t, err)
	assert.True(t, st.Dirty)

	res, err := w.Generate(true)
	require.NoError(t, err)
	assert.Len(t, res.Combinations, 4)
	assert.Equal(t, 2, res.Preserved)
	assert.False(t, w.State().Dirty)

	_, err = w.EditRegistry(RegistryEdit{Action: ActionAddValue, Axis: "customer", Value: "Jio"})
	_, ok := model.AsValidation(err)
	assert.True(t, ok, "duplicate values are rejected")
	assert.False(t, w.State().Dirty)

	_, err = w.EditRegistry(RegistryEdit{Action: "explode"})
	_, ok = model.AsValidation(err)
	assert.True(t, ok)
}

func TestChangingSelectionNeedsConfirmation(t *testing.T) {
	w := lockedWithCombos(t)

	_, err := w.Lock("FY26-27", "FTTH", false)
	assert.True(t, errors.Is(err, ErrConfirmationRequired))
	st := w.State()
	assert.Equal(t, "FY25-26", st.FiscalYear)
	assert.Equal(t, 2, st.Combinations)

	assert.True(t, errors.Is(w.Reset(false), ErrConfirmationRequired))

	st, err = w.Lock("FY26-27", "FTTH", true)
	require.NoError(t, err)
	assert.Equal(t, "FY26-27", st.FiscalYear)
	assert.Zero(t, st.Combinations)
}

func TestSaveThenSwitchAndReturn(t *testing.T) {
	w := lockedWithCombos(t)
	_, err := w.PatchCombination(rfai, CombinationPatch{
		Volumes: map[string]fiscal.Series{"FY25-26": fiscal.Constant(1)},
	})
	require.NoError(t, err)

	info, err := w.Save()
	require.NoError(t, err)
	assert.Equal(t, 2, info.Combinations)
	assert.False(t, w.State().Unsaved)

	_, err = w.Lock("FY25-26", "SDU", false)
	require.NoError(t, err, "saved data needs no confirmation")

	st, err := w.Lock("FY25-26", "FTTH", false)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Combinations)
	assert.False(t, st.Dirty)
	assert.NotEmpty(t, st.RegistrySignature)

	combos, err := w.Combinations()
	require.NoError(t, err)
	assert.Equal(t, fiscal.Constant(1), combos[0].Volumes["FY25-26"])
}

func TestPatchCombinationAndCalculate(t *testing.T) {
	w := lockedWithCombos(t)

	_, err := w.PatchCombination("customer=Nobody", CombinationPatch{})
	_, ok := model.AsValidation(err)
	assert.True(t, ok)

	_, err = w.PatchCombination(rfai, CombinationPatch{Offsets: &model.Offsets{RevenueCashflow: -1}})
	_, ok = model.AsValidation(err)
	assert.True(t, ok)

	_, err = w.PatchCombination(rfai, CombinationPatch{Volumes: map[string]fiscal.Series{"2025": {}}})
	_, ok = model.AsValidation(err)
	assert.True(t, ok)

	c, err := w.PatchCombination(rfai, CombinationPatch{
		Volumes: map[string]fiscal.Series{"FY25-26": fiscal.Constant(1)},
		Rate:    &model.RateEntry{RecurringRate: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 12.0, c.Volumes["FY25-26"].Sum())

	res, err := w.Calculate()
	require.NoError(t, err)
	assert.Equal(t, 780.0, res.TotalRevenue)

	rollup, err := w.VolumeRollup()
	require.NoError(t, err)
	assert.Equal(t, 12.0, rollup.GrandTotal)
	assert.Contains(t, rollup.DimensionTotals, "type")
}

func TestAssumptionsValidation(t *testing.T) {
	w := lockedWithCombos(t)

	_, err := w.SetAssumptions(Assumptions{ProvisionPct: 120})
	_, ok := model.AsValidation(err)
	assert.True(t, ok)

	_, err = w.SetAssumptions(Assumptions{BaseExitYear: "FY2024"})
	_, ok = model.AsValidation(err)
	assert.True(t, ok)

	st, err := w.SetAssumptions(Assumptions{ProvisionPct: 3, VendorPenaltyPct: 1, IncludeFresh: false})
	require.NoError(t, err)
	assert.Equal(t, 3.0, st.Assumptions.ProvisionPct)
	assert.False(t, st.Assumptions.IncludeFresh)
}

func TestItemRates(t *testing.T) {
	w := lockedWithCombos(t)

	require.NoError(t, w.SetOpexRate(ItemRatePatch{Item: "Rent", Signature: rfai, Rate: model.ItemRate{FreshRate: 2}}))
	err := w.SetOpexRate(ItemRatePatch{Item: "Teleportation", Signature: rfai})
	_, ok := model.AsValidation(err)
	assert.True(t, ok)
	err = w.SetCapexRate(ItemRatePatch{Item: "Pole - First Time", Signature: "nope"})
	_, ok = model.AsValidation(err)
	assert.True(t, ok)

	snap, err := w.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2.0, snap.OpexRates.Get("Rent", rfai).FreshRate)
}

func TestApplyExistingRevenueIsAllOrNothing(t *testing.T) {
	w := lockedWithCombos(t)

	good := parser.ExistingRevenueRow{
		Dimensions: map[string]string{"Customer": "Airtel", "circle": "SOBO", "type": "RFAI"},
		FiscalYear: "FY24-25",
		ExitVolume: 50,
		Recurring:  fiscal.Constant(5),
	}
	bad := parser.ExistingRevenueRow{
		Dimensions: map[string]string{"customer": "Vodafone", "circle": "SOBO", "type": "RFAI"},
		FiscalYear: "FY24-25",
		ExitVolume: 7,
	}

	_, err := w.ApplyExistingRevenue([]parser.ExistingRevenueRow{good, bad})
	ve, ok := model.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Problems, 1)
	assert.Contains(t, ve.Problems[0], "Vodafone")

	combos, err := w.Combinations()
	require.NoError(t, err)
	assert.Empty(t, combos[0].ExitVolumes, "nothing applied on rejection")

	sum, err := w.ApplyExistingRevenue([]parser.ExistingRevenueRow{good})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Applied)

	combos, err = w.Combinations()
	require.NoError(t, err)
	assert.Equal(t, 50.0, combos[0].ExitVolumes["FY24-25"])
	assert.Equal(t, fiscal.Constant(5), combos[0].ExistingRevenue["FY24-25"].Recurring)
}

func TestApplyOverrides(t *testing.T) {
	w := lockedWithCombos(t)

	_, err := w.ApplyOpexOverrides([]parser.OverrideRow{{Item: "Unicorns", FiscalYear: "FY25-26"}})
	_, ok := model.AsValidation(err)
	assert.True(t, ok)

	_, err = w.ApplyOpexOverrides([]parser.OverrideRow{{Item: "rent", FiscalYear: "FY25-26", Months: fiscal.Constant(4)}})
	require.NoError(t, err)
	_, err = w.ApplyCapexOverrides([]parser.OverrideRow{{Item: "Pole - Replacement", FiscalYear: "FY25-26", Months: fiscal.Constant(1)}})
	require.NoError(t, err)

	snap, err := w.Snapshot()
	require.NoError(t, err)
	months, ok := snap.ExistingOpexOverrides.Lookup("Rent", "FY25-26")
	require.True(t, ok)
	assert.Equal(t, 48.0, months.Sum())
	_, ok = snap.ExistingCapexOverrides.Lookup("Pole - Replacement", "FY25-26")
	assert.True(t, ok)
}

func TestUndo(t *testing.T) {
	w, _ := newWorkspace(t)
	_, err := w.Undo()
	assert.True(t, errors.Is(err, ErrNotLocked))

	_, err = w.Lock("FY25-26", "FTTH", false)
	require.NoError(t, err)
	_, err = w.Undo()
	assert.True(t, errors.Is(err, ErrNothingToUndo))

	_, err = w.EditRegistry(RegistryEdit{Action: ActionAddLevel, Name: "Tower"})
	require.NoError(t, err)
	st, err := w.Undo()
	require.NoError(t, err)
	assert.Empty(t, st.Registry.Levels)
	assert.False(t, st.CanUndo)
}

func TestOperationsNeedLock(t *testing.T) {
	w, _ := newWorkspace(t)

	_, err := w.Generate(true)
	assert.True(t, errors.Is(err, ErrNotLocked))
	_, err = w.Calculate()
	assert.True(t, errors.Is(err, ErrNotLocked))
	_, err = w.Save()
	assert.True(t, errors.Is(err, ErrNotLocked))
}

func TestPatchSparseSavedCombination(t *testing.T) {
	w, st := newWorkspace(t)
	var snap model.Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{
		"fiscalYear": "FY25-26",
		"lob": "FTTH",
		"combos": [{"dimensions": {"customer": "A", "circle": "X", "type": "RFAI"}}]
	}`), &snap))
	_, err := st.SaveSnapshot(&snap)
	require.NoError(t, err)

	_, err = w.Lock("FY25-26", "FTTH", false)
	require.NoError(t, err)

	sig := "circle=X|customer=A|type=RFAI"
	c, err := w.PatchCombination(sig, CombinationPatch{
		Volumes:     map[string]fiscal.Series{"FY25-26": {100}},
		ExitVolumes: map[string]float64{"FY24-25": 40},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, c.Volumes["FY25-26"][0])
	assert.Equal(t, 40.0, c.ExitVolumes["FY24-25"])
}

func TestUndoGenerateRestoresStaleness(t *testing.T) {
	w := lockedWithCombos(t)

	_, err := w.EditRegistry(RegistryEdit{Action: ActionAddValue, Axis: "customer", Value: "Jio"})
	require.NoError(t, err)
	_, err = w.Generate(true)
	require.NoError(t, err)
	require.False(t, w.State().Dirty)

	st, err := w.Undo()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Combinations)
	assert.Equal(t, []string{"Airtel", "Jio"}, st.Registry.Customers)
	assert.True(t, st.Dirty, "restored combinations predate the registry edit")

	_, err = w.Generate(true)
	require.NoError(t, err)
	assert.False(t, w.State().Dirty)
}
