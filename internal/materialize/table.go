package materialize

import "strconv"

type kind int

const (
	kindMissing kind = iota
	kindNumber
	kindText
)

// Value is one typed cell: a number, a text string, or a missing-value
// marker for blank cells.
type Value struct {
	kind kind
	num  float64
	text string
}

// Missing returns the missing-value marker.
func Missing() Value { return Value{} }

// Num returns a numeric cell value.
func Num(f float64) Value { return Value{kind: kindNumber, num: f} }

// Str returns a text cell value.
func Str(s string) Value { return Value{kind: kindText, text: s} }

func (v Value) IsMissing() bool { return v.kind == kindMissing }

// Float reports the numeric value; ok is false for text and missing cells.
func (v Value) Float() (f float64, ok bool) {
	return v.num, v.kind == kindNumber
}

// String renders the cell for output. Missing cells render empty.
func (v Value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindText:
		return v.text
	}
	return ""
}

// Table is a materialized result: unique ordered column names and typed
// rows of the same width.
type Table struct {
	Columns []string
	Rows    [][]Value
}
