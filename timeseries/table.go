package timeseries

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sartorproj/featurespace/errs"
)

// Table is an uploaded sheet: a header row and string records.
type Table struct {
	Header  []string
	Records [][]string
}

// ReadTable reads a .csv or .xlsx upload. The format is chosen from the
// file name extension.
func ReadTable(name string, r io.Reader) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return ReadCSVTable(r, ',')
	case ".xlsx":
		return ReadXLSXTable(r)
	default:
		return nil, errs.UnsupportedFormat("%q: only .csv and .xlsx files are accepted", name)
	}
}

// ReadCSVTable reads a delimited table with a header row.
func ReadCSVTable(r io.Reader, delimiter rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return newTable(rows)
}

// ReadXLSXTable reads the first sheet of a workbook.
func ReadXLSXTable(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheet")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return newTable(rows)
}

func newTable(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.New("empty table")
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = cleanCell(h)
	}
	t := &Table{Header: header}
	for _, rec := range rows[1:] {
		if isBlank(rec) {
			continue
		}
		// Pad short rows; spreadsheets drop trailing empty cells.
		row := make([]string, len(header))
		copy(row, rec)
		t.Records = append(t.Records, row)
	}
	return t, nil
}

// Column returns the position of a header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ToLong converts an uploaded table to a collection.
//
// A table that already has unique_id, ds and y columns passes through. A
// table with a "date" column is melted using that column as the shared
// index; any other table is melted using the row ordinal as index.
func ToLong(t *Table) (*Collection, error) {
	idIdx, dsIdx, yIdx := t.Column(IDColumn), t.Column(IndexColumn), t.Column(ValueColumn)
	if idIdx >= 0 && dsIdx >= 0 && yIdx >= 0 {
		return longFromTable(t, idIdx, dsIdx, yIdx)
	}
	w, err := wideFromTable(t, t.Column(DateColumn))
	if err != nil {
		return nil, err
	}
	return w.Melt()
}

func longFromTable(t *Table, idIdx, dsIdx, yIdx int) (*Collection, error) {
	c := NewCollection()
	for r, rec := range t.Records {
		id := cleanCell(rec[idIdx])
		if id == "" {
			return nil, errs.InvalidParameter("row %d: missing %s", r+2, IDColumn)
		}
		v, ok, err := parseValue(rec[yIdx])
		if err != nil {
			return nil, errs.NonNumeric("row %d column %s: %v", r+2, ValueColumn, err)
		}
		if !ok {
			continue
		}
		idx, err := ParseIndex(rec[dsIdx], "")
		if err != nil {
			return nil, errs.InvalidParameter("row %d column %s: %v", r+2, IndexColumn, err)
		}
		if err := c.Append(Point{ID: id, Index: idx, Value: v}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// wideFromTable reads a wide sheet. dateIdx < 0 selects the ordinal index.
func wideFromTable(t *Table, dateIdx int) (*Wide, error) {
	w := &Wide{}
	cols := make([]int, 0, len(t.Header))
	for i, h := range t.Header {
		if i == dateIdx {
			continue
		}
		if h == "" {
			h = "column_" + strconv.Itoa(i)
		}
		w.Columns = append(w.Columns, h)
		cols = append(cols, i)
	}

	for r, rec := range t.Records {
		idx := StepIndex(int64(r))
		if dateIdx >= 0 {
			var err error
			idx, err = ParseIndex(rec[dateIdx], "")
			if err != nil {
				return nil, errs.InvalidParameter("row %d column %s: %v", r+2, DateColumn, err)
			}
		}
		row := make([]float64, len(cols))
		for j, c := range cols {
			v, ok, err := parseValue(rec[c])
			if err != nil {
				return nil, errs.NonNumeric("row %d column %s: %v", r+2, w.Columns[j], err)
			}
			if !ok {
				v = math.NaN()
			}
			row[j] = v
		}
		w.Index = append(w.Index, idx)
		w.Values = append(w.Values, row)
	}
	return w, nil
}

// parseValue returns ok=false for missing-value tokens.
func parseValue(s string) (float64, bool, error) {
	s = cleanCell(s)
	switch s {
	case "", "NA", "N/A", "NaN", "nan", "null", "NULL":
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) {
		return 0, false, nil
	}
	return v, true, nil
}

func cleanCell(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "\""))
}

func isBlank(rec []string) bool {
	for _, c := range rec {
		if cleanCell(c) != "" {
			return false
		}
	}
	return true
}
