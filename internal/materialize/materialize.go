// Package materialize turns the engine's raw cell grids into typed tables:
// header resolution, column-name disambiguation, and best-effort numeric
// coercion.
package materialize

import (
	"fmt"
	"strconv"
	"strings"
)

// Header selects how column names are resolved. Non-negative values pick
// that row as the header of every table independently.
type Header int

const (
	// HeaderInfer pops the first row of the first table as its header.
	// Later tables keep positional names unless explicit columns are given;
	// callers wanting uniform headers pass the inferred names explicitly.
	HeaderInfer Header = -1
	// HeaderNone synthesizes positional names "0", "1", ... for every table.
	HeaderNone Header = -2
)

// Materialize converts raw tables into typed ones. Tables with no rows are
// dropped; rows shorter than the widest one are padded with missing cells,
// since the engine's JSON grids are ragged where a row has trailing blanks.
// When columns is non-empty it names every table and no data row is
// consumed as a header.
func Materialize(tables []RawTable, header Header, columns []string) ([]Table, error) {
	var out []Table
	first := true
	for _, rt := range tables {
		if len(rt.Data) == 0 {
			continue
		}
		data, width := typedRows(rt)

		var cols []string
		switch {
		case len(columns) > 0:
			if len(columns) != width {
				return nil, &TableParseError{Err: fmt.Errorf("%d column names for %d columns", len(columns), width)}
			}
			cols = append([]string(nil), columns...)
		case header >= 0:
			if int(header) >= len(data) {
				return nil, &TableParseError{Err: fmt.Errorf("header row %d out of range (%d rows)", header, len(data))}
			}
			cols, data = popHeader(data, int(header))
		case header == HeaderInfer && first:
			cols, data = popHeader(data, 0)
		default:
			cols = positionalNames(width)
		}
		first = false

		coerceNumericColumns(data)
		out = append(out, Table{Columns: cols, Rows: data})
	}
	return out, nil
}

func typedRows(rt RawTable) ([][]Value, int) {
	width := 0
	for _, raw := range rt.Data {
		if len(raw) > width {
			width = len(raw)
		}
	}
	rows := make([][]Value, len(rt.Data))
	for i, raw := range rt.Data {
		row := make([]Value, width)
		for j := range row {
			if j < len(raw) && raw[j].Text != "" {
				row[j] = Str(raw[j].Text)
			} else {
				row[j] = Missing()
			}
		}
		rows[i] = row
	}
	return rows, width
}

// popHeader removes row idx and turns it into column names. Blank header
// cells become "Unnamed: n" with n counting blanks left to right; remaining
// duplicates get ".1", ".2", ... suffixes resolved greedily left to right.
func popHeader(data [][]Value, idx int) ([]string, [][]Value) {
	row := data[idx]
	rest := append(append([][]Value(nil), data[:idx]...), data[idx+1:]...)

	cols := make([]string, len(row))
	unnamed := 0
	for i, v := range row {
		if v.IsMissing() {
			cols[i] = fmt.Sprintf("Unnamed: %d", unnamed)
			unnamed++
		} else {
			cols[i] = v.String()
		}
	}

	counts := map[string]int{}
	for i, col := range cols {
		cur := counts[col]
		for cur > 0 {
			counts[col] = cur + 1
			col = fmt.Sprintf("%s.%d", col, cur)
			cur = counts[col]
		}
		cols[i] = col
		counts[col] = cur + 1
	}
	return cols, rest
}

func positionalNames(width int) []string {
	cols := make([]string, width)
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}
	return cols
}

// coerceNumericColumns converts a column to numbers only when every
// non-missing cell parses; a single unparsable cell keeps the whole column
// textual.
func coerceNumericColumns(rows [][]Value) {
	if len(rows) == 0 {
		return
	}
	width := len(rows[0])
	for col := 0; col < width; col++ {
		nums := make([]float64, len(rows))
		numeric := true
		for i, row := range rows {
			v := row[col]
			if v.IsMissing() {
				continue
			}
			f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
			if err != nil {
				numeric = false
				break
			}
			nums[i] = f
		}
		if !numeric {
			continue
		}
		for i := range rows {
			if !rows[i][col].IsMissing() {
				rows[i][col] = Num(nums[i])
			}
		}
	}
}
