// Package invitations implements the CSV-driven invitation pipeline: parsing
// an uploaded candidate CSV, building invitation models from its rows, and
// dispatching emails and persistence for the whole batch.
package invitations

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

// RequiredColumns are the header columns every upload must carry, in any
// order. Unrecognized columns are ignored.
var RequiredColumns = []string{"full_name", "email", "cohort"}

// ErrInvalidCSV flags structurally broken input: unparseable records, ragged
// rows, or an empty file.
var ErrInvalidCSV = errors.New("invalid csv")

// MissingColumnsError names the required columns absent from the header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// Row is one parsed CSV record keyed by lowercased header name. Downstream
// code never depends on column order.
type Row map[string]string

// ParseCSV reads the uploaded file and returns one row map per data record,
// in input order. Every returned row contains every required column; values
// are trimmed but otherwise untouched — field-level validation belongs to the
// invitation model.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCSV, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidCSV)
	}

	header := records[0]
	if len(header) > 0 {
		// strip a UTF-8 BOM exported by spreadsheet tools
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &MissingColumnsError{Columns: missing}
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(index))
		for col, i := range index {
			row[col] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}
