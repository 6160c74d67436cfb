package common

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	// ErrNoHeader is returned for input without a header record.
	ErrNoHeader = errors.New("missing CSV header")
	// ErrMultilineField marks a cell spanning lines, which bank exports never
	// emit. In lazy quote mode it is what an unterminated quote turns into.
	ErrMultilineField = errors.New("field spans multiple lines")
)

// ReadRows reads a CSV export with a header record into rows keyed by
// column name, preserving source order. Short records leave their trailing
// columns missing; extra cells without a header are ignored. Stray quotes
// inside a field are kept as text, but a quote left open is an error rather
// than a cell swallowing the rest of the file.
func ReadRows(reader io.Reader) ([]RawRow, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if hasMultilineField(header) {
		return nil, fmt.Errorf("failed to read CSV header: %w", ErrMultilineField)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
	}

	rows := []RawRow{}
	line := 1
	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", line, err)
		}
		if hasMultilineField(record) {
			return nil, fmt.Errorf("failed to read CSV record %d: %w", line, ErrMultilineField)
		}
		if isBlankRecord(record) {
			continue
		}

		row := make(RawRow, len(columns))
		for i, name := range columns {
			if name == "" || i >= len(record) {
				continue
			}
			if _, seen := row[name]; seen {
				continue
			}
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadRowsFromFile opens path and hands it to ReadRows.
func ReadRowsFromFile(path string) ([]RawRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadRows(file)
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func hasMultilineField(record []string) bool {
	for _, cell := range record {
		if strings.ContainsAny(cell, "\r\n") {
			return true
		}
	}
	return false
}
