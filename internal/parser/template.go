package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
)

// Template kinds.
const (
	TemplateExistingRevenue = "existing"
	TemplateExistingOpex    = "opex_existing"
	TemplateExistingCapex   = "capex_existing"
)

// Template an empty upload file
type Template struct {
	Name   string   `json:"filename"`
	Header []string `json:"header"`
}

// ExistingRevenueTemplate header for a registry: fixed axes, extra levels, revenue columns.
func ExistingRevenueTemplate(reg dimension.Registry) Template {
	site := ColCircle
	if reg.SiteAxis == dimension.AxisSiteType {
		site = ColSiteType
	}
	header := []string{ColCustomer, site, ColType}
	for _, l := range reg.Levels {
		header = append(header, l.Name)
	}
	header = append(header, ColRevenueType, ColFiscalYear)
	header = append(header, fiscal.Months[:]...)
	header = append(header, ColTotal, ColExitVolume)
	return Template{Name: "existing_revenue_template", Header: header}
}

// ExistingOpexTemplate header of the existing opex upload
func ExistingOpexTemplate() Template {
	return Template{
		Name:   "existing_opex_template",
		Header: append([]string{ColOpexItem, ColFiscalYear}, fiscal.Months[:]...),
	}
}

// ExistingCapexTemplate header of the existing capex upload
func ExistingCapexTemplate() Template {
	return Template{
		Name:   "existing_capex_template",
		Header: append([]string{ColCapexItem, ColFiscalYear}, fiscal.Months[:]...),
	}
}

// CSV header line as CSV bytes.
func (t Template) CSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// XLSX single-sheet workbook with a styled header row.
func (t Template) XLSX() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Template"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	for i, h := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	f.SetRowStyle(sheet, 1, 1, headerStyle)
	last, _ := excelize.ColumnNumberToName(len(t.Header))
	f.SetColWidth(sheet, "A", last, 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write template: %w", err)
	}
	return buf.Bytes(), nil
}
