package timeseries

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn  string // Column name for the index (default: "ds")
	ValueColumn string // Column name for values (default: "y")
	IDColumn    string // Column name for series ID (default: "unique_id")
	IDFilter    string // Keep only rows with this ID (optional)
	DateFormat  string // Extra date layout tried first (optional)
	Delimiter   rune   // Field delimiter (default: ',')
	SkipRows    int    // Number of rows to skip before the header
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateColumn:  IndexColumn,
		ValueColumn: ValueColumn,
		IDColumn:    IDColumn,
		DateFormat:  "2006-01-02",
		Delimiter:   ',',
	}
}

// LoadCSV loads a long-format collection from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Collection, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a long-format collection from an io.Reader.
//
// When the ID column is absent every row belongs to a single series named
// after the value column. When the date column is absent rows are indexed
// by their position. Rows with a missing value are skipped.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Collection, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	delim := opts.Delimiter
	if delim == 0 {
		delim = ','
	}

	br := bufio.NewReader(r)
	for i := 0; i < opts.SkipRows; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return nil, err
		}
	}

	t, err := ReadCSVTable(br, delim)
	if err != nil {
		return nil, err
	}

	valueIdx := t.Column(opts.ValueColumn)
	if valueIdx == -1 {
		// Default to last column if not found
		valueIdx = len(t.Header) - 1
	}
	dateIdx := t.Column(opts.DateColumn)
	idIdx := t.Column(opts.IDColumn)

	c := NewCollection()
	row := 0
	for _, rec := range t.Records {
		id := t.Header[valueIdx]
		if idIdx >= 0 {
			id = cleanCell(rec[idIdx])
		}
		if opts.IDFilter != "" && id != opts.IDFilter {
			continue
		}

		v, ok, err := parseValue(rec[valueIdx])
		if err != nil || !ok {
			continue // Skip invalid values
		}

		idx := StepIndex(int64(row))
		if dateIdx >= 0 {
			if parsed, err := ParseIndex(rec[dateIdx], opts.DateFormat); err == nil {
				idx = parsed
			}
		}
		if err := c.Append(Point{ID: id, Index: idx, Value: v}); err != nil {
			return nil, err
		}
		row++
	}

	if c.Len() == 0 {
		return nil, errors.New("no valid data found in CSV")
	}
	return c, nil
}

// SaveCSV writes a collection in long format (unique_id,ds,y).
func SaveCSV(c *Collection, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := WriteCSV(file, c); err != nil {
		return err
	}
	return file.Close()
}

// WriteCSV writes a collection in long format (unique_id,ds,y).
func WriteCSV(w io.Writer, c *Collection) error {
	writer := bufio.NewWriter(w)

	writer.WriteString(IDColumn + "," + IndexColumn + "," + ValueColumn + "\n")
	for _, p := range c.Long() {
		writer.WriteString(csvQuote(p.ID))
		writer.WriteString(",")
		writer.WriteString(p.Index.String())
		writer.WriteString(",")
		writer.WriteString(strconv.FormatFloat(p.Value, 'f', -1, 64))
		writer.WriteString("\n")
	}

	return writer.Flush()
}

func csvQuote(s string) string {
	for _, r := range s {
		if r == ',' || r == '"' || r == '\n' {
			return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
		}
	}
	return s
}
