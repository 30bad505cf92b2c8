package exporter

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

type mapSource map[model.LOB]*model.Snapshot

func (m mapSource) LoadSnapshot(lob, fy string) (*model.Snapshot, error) {
	snap, ok := m[model.LOB(lob)]
	if !ok || (fy != "" && snap.FiscalYear != fy) {
		return nil, store.ErrNotFound
	}
	return snap, nil
}

func snapshot(lob model.LOB) *model.Snapshot {
	c := model.NewCombination(map[string]string{"customer": "Airtel", "circle": "SOBO", "type": "RFAI"})
	c.Volumes["FY25-26"] = fiscal.Constant(1)
	return &model.Snapshot{
		FiscalYear:   "FY25-26",
		LOB:          lob,
		Combos:       []model.Combination{c},
		Rates:        model.Rates{c.Key(): {RecurringRate: 100000}},
		IncludeFresh: true,
		OpexItems:    []model.OpexItem{{Name: "Rent"}},
	}
}

func rowsByLabel(t *testing.T, f *excelize.File, sheet string) map[string][]string {
	t.Helper()
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	out := map[string][]string{}
	for _, r := range rows {
		if len(r) > 0 {
			out[r[0]] = r
		}
	}
	return out
}

func TestExportWorkbook(t *testing.T) {
	broken := snapshot(model.LOBSDU)
	broken.FormulaRecurring = "volume *"
	src := mapSource{model.LOBFTTH: snapshot(model.LOBFTTH), model.LOBSDU: broken}

	var events []ProgressEvent
	f, statuses, err := NewExporter(src).Export(ExportOptions{FiscalYear: "FY25-26"}, func(e ProgressEvent) {
		events = append(events, e)
	})
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, "FTTH", "SDU (error)"}, f.GetSheetList())
	require.Len(t, statuses, len(model.LOBs))
	assert.Equal(t, StatusExported, statuses[0].Status)
	assert.Equal(t, StatusSkipped, statuses[1].Status)
	assert.Equal(t, StatusFailed, statuses[2].Status)
	assert.Contains(t, statuses[2].Error, "formulaRecurring")

	require.NotEmpty(t, events)
	assert.Equal(t, 100, events[len(events)-1].Percent)

	header, err := f.GetCellValue("FTTH", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Apr", header)

	rows := rowsByLabel(t, f, "FTTH")
	require.Contains(t, rows, "Gross Revenue")
	assert.Equal(t, "7800000", rows["Gross Revenue"][13])
	assert.Equal(t, "100000", rows["Gross Revenue"][1])
	assert.Contains(t, rows, "  Rent")
	assert.Contains(t, rows, "Peak Funding")
	assert.Contains(t, rows, "Cumulative Net Cashflow")

	summary := rowsByLabel(t, f, SummarySheet)
	require.Contains(t, summary, "FTTH")
	assert.Equal(t, "7.80", summary["FTTH"][3])
	assert.Equal(t, StatusSkipped, summary["Small Cell"][2])
	assert.Equal(t, StatusFailed, summary["SDU"][2])

	msg, err := f.GetCellValue("SDU (error)", "A1")
	require.NoError(t, err)
	assert.Equal(t, "SDU could not be calculated", msg)
}

func TestExportSelectedLOBs(t *testing.T) {
	src := mapSource{model.LOBFTTH: snapshot(model.LOBFTTH), model.LOBOHFC: snapshot(model.LOBOHFC)}

	f, statuses, err := NewExporter(src).Export(ExportOptions{LOBs: []model.LOB{model.LOBOHFC, model.LOBFTTH}}, nil)
	require.NoError(t, err)
	defer f.Close()

	require.Len(t, statuses, 2)
	assert.Equal(t, model.LOBFTTH, statuses[0].LOB, "sheets follow the fixed order")
	assert.Equal(t, []string{SummarySheet, "FTTH", "OHFC"}, f.GetSheetList())
}

func TestExportRejectsBadFiscalYear(t *testing.T) {
	_, _, err := NewExporter(mapSource{}).Export(ExportOptions{FiscalYear: "FY25"}, nil)
	_, ok := model.AsValidation(err)
	assert.True(t, ok)
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Dark Fiber", SheetName(" Dark Fiber "))
	assert.Equal(t, "a-b-c", SheetName("a/b:c"))
	long := SheetName(strings.Repeat("x", 40))
	assert.Len(t, long, 31)
}

func TestSaveTo(t *testing.T) {
	f, _, err := NewExporter(mapSource{model.LOBFTTH: snapshot(model.LOBFTTH)}).Export(ExportOptions{}, nil)
	require.NoError(t, err)
	defer f.Close()

	path, err := SaveTo(f, t.TempDir(), "FY25-26", time.Date(2025, 5, 1, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "budget-FY25-26-20250501-103000.xlsx"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
