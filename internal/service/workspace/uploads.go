package workspace

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/parser"
)

// uploadKey matches upload dimensions to combinations with axis names compared
// case-insensitively, since upload headers are free text.
func uploadKey(dims map[string]string) string {
	axes := make([]string, 0, len(dims))
	lower := make(map[string]string, len(dims))
	for k, v := range dims {
		lk := strings.ToLower(strings.TrimSpace(k))
		axes = append(axes, lk)
		lower[lk] = strings.TrimSpace(v)
	}
	sort.Strings(axes)
	parts := make([]string, len(axes))
	for i, k := range axes {
		parts[i] = k + "=" + lower[k]
	}
	return strings.Join(parts, "|")
}

func describeDims(dims map[string]string) string {
	keys := make([]string, 0, len(dims))
	for k := range dims {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, dims[k])
	}
	return strings.Join(parts, ", ")
}

// ApplyExistingRevenue merges uploaded existing revenue into the combinations.
// Every row must name an existing combination; one unknown tuple rejects the whole
// upload and nothing is applied.
func (w *Workspace) ApplyExistingRevenue(rows []parser.ExistingRevenueRow) (UploadSummary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return UploadSummary{}, ErrNotLocked
	}

	index := make(map[string]int, len(w.snap.Combos))
	for i, c := range w.snap.Combos {
		index[uploadKey(c.Dimensions)] = i
	}
	targets := make([]int, len(rows))
	var problems []string
	for i, r := range rows {
		idx, ok := index[uploadKey(r.Dimensions)]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown combination (%s)", describeDims(r.Dimensions)))
			continue
		}
		targets[i] = idx
	}
	if err := model.Collect(problems); err != nil {
		return UploadSummary{}, err
	}

	w.saveUndoLocked()
	for i, r := range rows {
		c := &w.snap.Combos[targets[i]]
		if c.ExitVolumes == nil {
			c.ExitVolumes = map[string]float64{}
		}
		if c.ExistingRevenue == nil {
			c.ExistingRevenue = map[string]model.ExistingRevenue{}
		}
		c.ExitVolumes[r.FiscalYear] = r.ExitVolume
		c.ExistingRevenue[r.FiscalYear] = model.ExistingRevenue{Recurring: r.Recurring, OneTime: r.OneTime}
	}
	w.touchLocked()
	return UploadSummary{Rows: len(rows), Applied: len(rows)}, nil
}

// ApplyOpexOverrides stores uploaded existing opex per item and fiscal year.
// Unknown items reject the whole upload.
func (w *Workspace) ApplyOpexOverrides(rows []parser.OverrideRow) (UploadSummary, error) {
	return w.applyOverrides(rows, false)
}

// ApplyCapexOverrides stores uploaded existing capex per item and fiscal year.
func (w *Workspace) ApplyCapexOverrides(rows []parser.OverrideRow) (UploadSummary, error) {
	return w.applyOverrides(rows, true)
}

func (w *Workspace) applyOverrides(rows []parser.OverrideRow, capex bool) (UploadSummary, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.snap == nil {
		return UploadSummary{}, ErrNotLocked
	}

	names := map[string]string{}
	if capex {
		for _, it := range w.snap.CapexItems {
			names[strings.ToLower(it.Name)] = it.Name
		}
	} else {
		for _, it := range w.snap.OpexItems {
			names[strings.ToLower(it.Name)] = it.Name
		}
	}
	resolved := make([]string, len(rows))
	var problems []string
	for i, r := range rows {
		name, ok := names[strings.ToLower(strings.TrimSpace(r.Item))]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown item %q", r.Item))
			continue
		}
		resolved[i] = name
	}
	if err := model.Collect(problems); err != nil {
		return UploadSummary{}, err
	}

	w.saveUndoLocked()
	target := w.snap.ExistingOpexOverrides
	if capex {
		target = w.snap.ExistingCapexOverrides
	}
	for i, r := range rows {
		target.Set(resolved[i], r.FiscalYear, r.Months)
	}
	w.touchLocked()
	return UploadSummary{Rows: len(rows), Applied: len(rows)}, nil
}
