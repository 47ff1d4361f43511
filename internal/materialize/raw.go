package materialize

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
)

// Cell is one engine-produced cell. An absent or empty text field marks a
// blank cell.
type Cell struct {
	Text string `json:"text"`
}

// RawTable is one detected table as emitted by the engine: a grid of text
// cells plus the region it was found in.
type RawTable struct {
	Extraction string   `json:"extraction_method"`
	Top        float64  `json:"top"`
	Left       float64  `json:"left"`
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Data       [][]Cell `json:"data"`
}

// TableParseError reports that engine output could not be assembled into a
// table: ragged delimited output, a header row index past the data, or a
// column-name count that does not match the grid. The message carries the
// usual remedy since the failure is almost always a header/columns mismatch.
type TableParseError struct {
	Err error
}

func (e *TableParseError) Error() string {
	return fmt.Sprintf("failed to build a table from engine output: %v; "+
		"try multiple-tables mode or pass explicit column names", e.Err)
}

func (e *TableParseError) Unwrap() error { return e.Err }

// ParseJSON decodes the engine's JSON output: a list of table objects each
// holding a grid of cells. Zero bytes decode to zero tables.
func ParseJSON(b []byte) ([]RawTable, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}
	var tables []RawTable
	if err := json.Unmarshal(b, &tables); err != nil {
		return nil, fmt.Errorf("decode engine JSON: %w", err)
	}
	return tables, nil
}

// ParseCSV reads the engine's delimited output as a single grid. Rows with
// differing field counts cannot form one table and produce a
// TableParseError.
func ParseCSV(b []byte, comma rune) (RawTable, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return RawTable{}, nil
	}
	r := csv.NewReader(bytes.NewReader(b))
	r.Comma = comma
	records, err := r.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
			return RawTable{}, &TableParseError{Err: err}
		}
		return RawTable{}, fmt.Errorf("decode engine CSV: %w", err)
	}
	rt := RawTable{Data: make([][]Cell, len(records))}
	for i, rec := range records {
		row := make([]Cell, len(rec))
		for j, field := range rec {
			row[j] = Cell{Text: field}
		}
		rt.Data[i] = row
	}
	return rt, nil
}
