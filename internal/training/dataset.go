package training

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/features"
)

// naTokens are the cell values read as missing
var naTokens = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true, "-nan": true,
	"NULL": true, "null": true, "None": true, "<NA>": true, "#N/A": true,
}

// Dataset is a raw table. Cells are strings, or nil when missing.
type Dataset struct {
	Columns []string
	Rows    []features.Record
	numeric map[string]bool
}

// LoadCSV reads a dataset from a CSV file with a header row
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads a dataset with a header row. A column is numeric when every
// present cell parses as a number.
func ReadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dataset is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
		columns[i] = name
	}

	ds := &Dataset{Columns: columns, numeric: make(map[string]bool, len(columns))}
	for _, c := range columns {
		ds.numeric[c] = true
	}

	for line := 2; ; line++ {
		cells, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := make(features.Record, len(columns))
		for i, c := range columns {
			if i >= len(cells) || naTokens[strings.TrimSpace(cells[i])] {
				rec[c] = nil
				continue
			}
			rec[c] = cells[i]
			if _, ok := parseNumber(cells[i]); !ok {
				ds.numeric[c] = false
			}
		}
		ds.Rows = append(ds.Rows, rec)
	}

	return ds, nil
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Has reports whether the dataset has column name
func (d *Dataset) Has(name string) bool {
	_, ok := d.numeric[name]
	return ok
}

// IsNumeric reports whether every present cell of column name is a number
func (d *Dataset) IsNumeric(name string) bool {
	return d.numeric[name]
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// cellNumber reads a cell of a numeric column; ok is false when it is missing
func cellNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case string:
		return parseNumber(t)
	case float64:
		return t, true
	}
	return 0, false
}
