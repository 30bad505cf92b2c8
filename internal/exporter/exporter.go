// Package exporter writes the consolidated budget workbook: a summary sheet and
// one P&L sheet per line of business.
package exporter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	"github.com/xuri/excelize/v2"

	"github.com/Prabhakar2095/Budget-Working/internal/calculator"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/format"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

// SummarySheet name of the first sheet
const SummarySheet = "Summary"

// maxSheetName excel limit on sheet name length
const maxSheetName = 31

// Per-LOB export status.
const (
	StatusExported = "exported"
	StatusSkipped  = "skipped" // no saved snapshot
	StatusFailed   = "failed"
)

// SnapshotSource where saved snapshots come from
type SnapshotSource interface {
	LoadSnapshot(lob, fiscalYear string) (*model.Snapshot, error)
}

// Exporter builds consolidated workbooks from saved snapshots.
type Exporter struct {
	source SnapshotSource
}

// NewExporter creates an exporter
func NewExporter(source SnapshotSource) *Exporter {
	return &Exporter{source: source}
}

// ExportOptions what to export. An empty LOB list means every line of business.
type ExportOptions struct {
	FiscalYear string
	LOBs       []model.LOB
}

// LOBStatus outcome for one line of business
type LOBStatus struct {
	LOB    model.LOB `json:"lob"`
	Sheet  string    `json:"sheet,omitempty"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

// lobOutcome calculation result of one line of business
type lobOutcome struct {
	lob    model.LOB
	result *calculator.Result
	err    error
	absent bool
}

// Export loads and calculates every requested line of business concurrently,
// then writes the sheets in fixed order. A line of business without a snapshot
// is skipped; one whose calculation fails gets an error sheet instead.
func (e *Exporter) Export(opts ExportOptions, progress func(ProgressEvent)) (*excelize.File, []LOBStatus, error) {
	if opts.FiscalYear != "" {
		if _, err := fiscal.Parse(opts.FiscalYear); err != nil {
			return nil, nil, model.Invalid("%v", err)
		}
	}
	lobs := orderedLOBs(opts.LOBs)

	outcomes := make([]lobOutcome, len(lobs))
	var wg sync.WaitGroup
	var mu sync.Mutex
	done := 0
	for i, lob := range lobs {
		wg.Add(1)
		go func(i int, lob model.LOB) {
			defer wg.Done()
			outcomes[i] = e.compute(lob, opts.FiscalYear)

			mu.Lock()
			done++
			reportProgress(progress, done*90/len(lobs), fmt.Sprintf("calculated %s", lob))
			mu.Unlock()
		}(i, lob)
	}
	wg.Wait()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		f.Close()
		return nil, nil, err
	}
	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	statuses := make([]LOBStatus, 0, len(lobs))
	for _, o := range outcomes {
		status := LOBStatus{LOB: o.lob}
		switch {
		case o.absent:
			status.Status = StatusSkipped
		case o.err != nil:
			status.Status = StatusFailed
			status.Error = o.err.Error()
			status.Sheet = SheetName(string(o.lob) + " (error)")
			err = writeErrorSheet(f, status.Sheet, o.lob, o.err)
		default:
			status.Status = StatusExported
			status.Sheet = SheetName(string(o.lob))
			err = writeLOBSheet(f, status.Sheet, o.result, st)
		}
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("failed to write sheet %s: %w", status.Sheet, err)
		}
		statuses = append(statuses, status)
	}

	if err := writeSummarySheet(f, opts.FiscalYear, outcomes, st); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to write summary: %w", err)
	}
	f.SetActiveSheet(0)
	reportProgress(progress, 100, "done")
	return f, statuses, nil
}

func (e *Exporter) compute(lob model.LOB, fy string) lobOutcome {
	out := lobOutcome{lob: lob}
	snap, err := e.source.LoadSnapshot(string(lob), fy)
	if errors.Is(err, store.ErrNotFound) {
		out.absent = true
		return out
	}
	if err != nil {
		out.err = err
		return out
	}
	// each goroutine works on its own copy
	out.result, out.err = calculator.ComputeRevenue(snap.Clone())
	if out.err != nil {
		log.Warn().Str("lob", string(lob)).Err(out.err).Msg("export calculation failed")
	}
	return out
}

func orderedLOBs(requested []model.LOB) []model.LOB {
	if len(requested) == 0 {
		return append([]model.LOB(nil), model.LOBs...)
	}
	want := make(map[model.LOB]bool, len(requested))
	for _, l := range requested {
		want[l] = true
	}
	var out []model.LOB
	for _, l := range model.LOBs {
		if want[l] {
			out = append(out, l)
		}
	}
	return out
}

// SheetName strips characters excel rejects and truncates to 31 characters.
func SheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

type styles struct {
	header  int
	title   int
	amount  int
	percent int
	bold    int
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return st, err
	}
	if st.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 13}}); err != nil {
		return st, err
	}
	amountFmt := "#,##0.00;(#,##0.00)"
	if st.amount, err = f.NewStyle(&excelize.Style{CustomNumFmt: &amountFmt}); err != nil {
		return st, err
	}
	pctFmt := `0.00"%"`
	if st.percent, err = f.NewStyle(&excelize.Style{CustomNumFmt: &pctFmt}); err != nil {
		return st, err
	}
	st.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, CustomNumFmt: &amountFmt})
	return st, err
}

// pnlRow one exported line
type pnlRow struct {
	label   string
	line    calculator.Line
	percent bool
	bold    bool
}

func summaryRows(r *calculator.Result) []pnlRow {
	p, cf, fd := r.PnL, r.Cashflow, r.Funding
	rows := []pnlRow{
		{label: "One-time Revenue", line: p.OneTimeRevenue},
		{label: "Recurring Revenue", line: p.RecurringRevenue},
		{label: "Passthrough Revenue", line: p.PassthroughRevenue},
		{label: "Gross Revenue", line: p.GrossRevenue, bold: true},
		{label: "Provision for Doubtful Debts", line: p.Provision},
		{label: "Net Revenue", line: p.NetRevenue, bold: true},
	}
	for _, it := range r.OpexItems {
		rows = append(rows, pnlRow{label: "  " + it.Name, line: it.Recognized})
	}
	rows = append(rows,
		pnlRow{label: "Total Opex", line: p.DirectOpex, bold: true},
		pnlRow{label: "Operating Margin", line: p.OperatingMargin, bold: true},
		pnlRow{label: "Operating Margin %", line: p.OperatingMarginPct, percent: true},
		pnlRow{label: "Customer Penalty", line: p.CustomerPenalty},
		pnlRow{label: "Vendor Penalty", line: p.VendorPenalty},
		pnlRow{label: "Operating Margin after Penalty", line: p.OperatingMarginAfterPenalty, bold: true},
		pnlRow{label: "Operating Margin after Penalty %", line: p.OperatingMarginAfterPenaltyPct, percent: true},
		pnlRow{label: "Net Operating Cashflow", line: cf.NetOperatingFlow},
	)
	for _, g := range fd.CapexGroups {
		rows = append(rows, pnlRow{label: "  " + string(g.Group), line: g.Line})
	}
	rows = append(rows,
		pnlRow{label: "Net Cashflow", line: fd.NetCashflow, bold: true},
		pnlRow{label: "Cumulative Net Cashflow", line: fd.CumulativeNetCashflow},
	)
	return rows
}

func writeLOBSheet(f *excelize.File, sheet string, r *calculator.Result, st styles) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", r.LOB, r.FiscalYear))
	f.SetCellStyle(sheet, "A1", "A1", st.title)

	header := append([]string{"Line Item"}, fiscal.Months[:]...)
	header = append(header, "FY Total")
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(sheet, cell, h)
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	f.SetCellStyle(sheet, "A3", last+"3", st.header)

	row := 4
	for _, pr := range summaryRows(r) {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), pr.label)
		for m, v := range pr.line.Monthly {
			cell, _ := excelize.CoordinatesToCellName(m+2, row)
			f.SetCellValue(sheet, cell, v)
		}
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", last, row), pr.line.Total)

		style := st.amount
		switch {
		case pr.percent:
			style = st.percent
		case pr.bold:
			style = st.bold
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("%s%d", last, row), style); err != nil {
			return err
		}
		row++
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Peak Funding")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.PeakFunding)
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), st.bold)
	for _, w := range r.Warnings {
		row++
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), w)
	}

	f.SetColWidth(sheet, "A", "A", 36)
	f.SetColWidth(sheet, "B", last, 14)
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, Split: false, XSplit: 1, YSplit: 3, TopLeftCell: "B4", ActivePane: "bottomRight"})
}

func writeErrorSheet(f *excelize.File, sheet string, lob model.LOB, cause error) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s could not be calculated", lob))
	f.SetCellValue(sheet, "A2", cause.Error())
	if ve, ok := model.AsValidation(cause); ok {
		for i, p := range ve.Head() {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", i+4), p)
		}
	}
	return f.SetColWidth(sheet, "A", "A", 80)
}

func writeSummarySheet(f *excelize.File, fy string, outcomes []lobOutcome, st styles) error {
	title := "Budget summary (amounts in millions)"
	if fy != "" {
		title = fmt.Sprintf("Budget summary %s (amounts in millions)", fy)
	}
	f.SetCellValue(SummarySheet, "A1", title)
	f.SetCellStyle(SummarySheet, "A1", "A1", st.title)

	header := []string{"Line of Business", "Fiscal Year", "Status", "Gross Revenue", "Net Revenue", "Total Opex", "Operating Margin %", "Total Capex", "Peak Funding"}
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		f.SetCellValue(SummarySheet, cell, h)
	}
	last, _ := excelize.ColumnNumberToName(len(header))
	f.SetCellStyle(SummarySheet, "A3", last+"3", st.header)

	row := 4
	for _, o := range outcomes {
		values := []any{string(o.lob), fy, StatusExported}
		switch {
		case o.absent:
			values[2] = StatusSkipped
		case o.err != nil:
			values[2] = StatusFailed
		default:
			r := o.result
			values[1] = r.FiscalYear
			values = append(values,
				format.Amount(r.PnL.GrossRevenue.Total, 2, false),
				format.Amount(r.PnL.NetRevenue.Total, 2, false),
				format.Amount(r.TotalOpex.Total, 2, false),
				format.Percent(r.PnL.OperatingMarginPct.Total),
				format.Amount(r.TotalCapex.Total, 2, false),
				format.Amount(r.PeakFunding, 2, false),
			)
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(SummarySheet, cell, v)
		}
		row++
	}
	return f.SetColWidth(SummarySheet, "A", last, 18)
}

// SaveTo writes the workbook into dir as budget-<fy>-<timestamp>.xlsx via a
// temporary file and returns the final path.
func SaveTo(f *excelize.File, dir, fy string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	label := fy
	if label == "" {
		label = "latest"
	}
	path := filepath.Join(dir, fmt.Sprintf("budget-%s-%s.xlsx", label, now.Format("20060102-150405")))
	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", fmt.Errorf("failed to write workbook: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}
