// Package parser reads existing-revenue and existing-cost uploads (CSV or XLSX)
// and generates the matching templates.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat file extension is neither .csv nor .xlsx
var ErrUnsupportedFormat = errors.New("unsupported file format, upload .csv or .xlsx")

// Table header plus data rows of an uploaded sheet
type Table struct {
	Header []string
	Rows   [][]string
	Lines  []int // spreadsheet line of each row; blank lines are skipped
}

// ReadTable reads the first sheet of an .xlsx file, or a UTF-8 CSV (BOM tolerated).
func ReadTable(filename string, r io.Reader) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return readXLSX(r)
	case ".csv", ".txt", "":
		return readCSV(r)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	return newTable(rows)
}

func readCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("file is empty")
	}
	t := &Table{Header: make([]string, len(rows[0]))}
	for i, h := range rows[0] {
		t.Header[i] = strings.TrimSpace(h)
	}
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
		t.Lines = append(t.Lines, i+2)
	}
	return t, nil
}

// line spreadsheet line of the idx-th data row
func (t *Table) line(idx int) int {
	if idx < len(t.Lines) {
		return t.Lines[idx]
	}
	return idx + 2
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

var spaces = regexp.MustCompile(`\s+`)

// NormalizeColumnName lower-cased header with whitespace removed.
func NormalizeColumnName(name string) string {
	return strings.ToLower(spaces.ReplaceAllString(strings.TrimSpace(name), ""))
}

// columns header name -> index, keyed by normalized name
type columns map[string]int

func (t *Table) columns() columns {
	c := make(columns, len(t.Header))
	for i, h := range t.Header {
		if h == "" {
			continue
		}
		if _, dup := c[NormalizeColumnName(h)]; !dup {
			c[NormalizeColumnName(h)] = i
		}
	}
	return c
}

func (c columns) has(name string) bool {
	_, ok := c[NormalizeColumnName(name)]
	return ok
}

// cell trimmed value of a named column; "" when the row is short or the column is absent.
func (c columns) cell(row []string, name string) string {
	i, ok := c[NormalizeColumnName(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
