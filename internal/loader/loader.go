package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vaneschanro-gif/recovery-dashboard/internal/incident"
)

// numericColumns hold date parts and years that spreadsheet exports often
// write as floats ("2023.0").
var numericColumns = map[string]bool{
	incident.ColYear:        true,
	incident.ColMonth:       true,
	incident.ColDay:         true,
	incident.ColHour:        true,
	incident.ColConYear:     true,
	incident.ColConMonth:    true,
	incident.ColVehicleYear: true,
}

// ParseFile opens path and parses it as CSV.
func ParseFile(path string) (*incident.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return ds, nil
}

// Parse reads a CSV export with a header row into a Dataset and derives
// Recovered01. Empty cells become nulls. Cells keep their raw text except in
// the date and year columns, which are trimmed and normalised.
func Parse(r io.Reader) (*incident.Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty data file: no header row")
		}
		return nil, fmt.Errorf("read CSV headers: %w", err)
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		columns[i] = h
	}

	var records []incident.Record
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", line, err)
		}
		if blank(row) {
			continue
		}

		fields := make(map[string]string, len(row))
		for i, val := range row {
			if i >= len(columns) {
				break
			}
			if columns[i] == "" || val == "" {
				continue
			}
			if numericColumns[columns[i]] {
				val = normalizeNumber(strings.TrimSpace(val))
			}
			fields[columns[i]] = val
		}
		records = append(records, incident.NewRecord(fields))
	}

	ds := incident.NewDataset(columns, records)
	if err := ds.EnsureRecovered01(); err != nil {
		return nil, err
	}
	return ds, nil
}

// normalizeNumber rewrites integral floats ("2023.0") as integers.
func normalizeNumber(val string) string {
	if !strings.ContainsAny(val, ".eE") {
		return val
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1e15 {
		return val
	}
	return strconv.FormatInt(int64(f), 10)
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
