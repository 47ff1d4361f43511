package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Format selects the engine's output representation.
type Format string

const (
	FormatCSV  Format = "CSV"
	FormatTSV  Format = "TSV"
	FormatJSON Format = "JSON"
)

// ParseFormat maps user-facing format names ("csv", "json", "tsv") onto the
// engine's format tokens.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown output format: %q", s)
}

// Area is a region of interest on a page, in PDF points or, when the
// option's RelativeArea flag is set, in percent of the page dimensions.
type Area struct {
	Top    float64
	Left   float64
	Bottom float64
	Right  float64
}

// InvalidRegionError reports a region whose geometry is unusable.
type InvalidRegionError struct {
	Area   Area
	Reason string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid region %v,%v,%v,%v: %s",
		e.Area.Top, e.Area.Left, e.Area.Bottom, e.Area.Right, e.Reason)
}

// UnsortedColumnsError reports column boundaries that are not in
// non-decreasing order.
type UnsortedColumnsError struct {
	Columns []float64
}

func (e *UnsortedColumnsError) Error() string {
	return fmt.Sprintf("columns option should be sorted: %v", e.Columns)
}

// ExtractionOption carries every tunable extraction parameter and renders
// itself as the engine's ordered argument list. Values are set once; Merge
// produces a new instance rather than mutating either input.
type ExtractionOption struct {
	// Pages is a raw page selector such as "1-2,3" or "all". PageList, when
	// non-empty, takes precedence and is rendered as a comma-joined list.
	Pages    string
	PageList []int

	// Guess asks the engine to detect the table portion of each page. Any
	// explicit area turns the rendered flag off.
	Guess bool

	Areas        []Area
	RelativeArea bool

	// Lattice and Stream select the engine's boundary-detection heuristics.
	// They are independent flags and may both be set.
	Lattice bool
	Stream  bool

	Password string
	Silent   bool

	// Columns holds x coordinates of column boundaries, non-decreasing.
	Columns         []float64
	RelativeColumns bool

	Format     Format
	Batch      string
	OutputPath string

	// Options is a raw pass-through string handed to the engine verbatim
	// (shell-style split), ahead of every structured token.
	Options string

	// MultipleTables extracts each detected table separately instead of
	// merging everything into one.
	MultipleTables bool
}

// New returns an ExtractionOption with the default behavior: guess the
// table portion of each page and keep detected tables separate.
func New() ExtractionOption {
	return ExtractionOption{Guess: true, MultipleTables: true}
}

// Validate checks region geometry and column ordering without rendering.
func (o *ExtractionOption) Validate() error {
	for _, a := range o.Areas {
		if a.Top >= a.Bottom {
			return &InvalidRegionError{Area: a, Reason: "top must be less than bottom"}
		}
		if a.Left >= a.Right {
			return &InvalidRegionError{Area: a, Reason: "left must be less than right"}
		}
	}
	if !isNonDecreasing(o.Columns) {
		return &UnsortedColumnsError{Columns: o.Columns}
	}
	return nil
}

// Args validates the option and renders it as the engine's argument list.
// Token order is stable: raw pass-through first, then pages, areas, mode
// flags, guess, format, outfile, columns, password, batch, silent.
func (o *ExtractionOption) Args() ([]string, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}

	args := splitRaw(o.Options)

	switch {
	case len(o.PageList) > 0:
		args = append(args, "--pages", joinInts(o.PageList))
	case o.Pages != "":
		args = append(args, "--pages", o.Pages)
	default:
		log.Warn().Msg("'pages' isn't specified; the engine extracts only page 1 by default")
	}

	for _, a := range o.Areas {
		args = append(args, "--area", formatFloats([]float64{a.Top, a.Left, a.Bottom, a.Right}, o.RelativeArea))
	}

	if o.Lattice {
		args = append(args, "--lattice")
	}
	if o.Stream {
		args = append(args, "--stream")
	}
	// An explicit area always wins over guessing.
	if o.Guess && len(o.Areas) == 0 {
		args = append(args, "--guess")
	}

	if o.Format != "" {
		args = append(args, "--format", string(o.Format))
	}
	if o.OutputPath != "" {
		args = append(args, "--outfile", o.OutputPath)
	}
	if len(o.Columns) > 0 {
		args = append(args, "--columns", formatFloats(o.Columns, o.RelativeColumns))
	}
	if o.Password != "" {
		args = append(args, "--password", o.Password)
	}
	if o.Batch != "" {
		args = append(args, "--batch", o.Batch)
	}
	if o.Silent {
		args = append(args, "--silent")
	}

	return args, nil
}

// Merge combines o on top of base and returns the result. Fields set on o
// win; unset fields fall back to base. A field counts as set when it is
// truthy, so an explicit false or empty list on o cannot suppress a true or
// non-empty value from base. That asymmetry is long-standing behavior that
// callers rely on; it is kept as-is.
func (o ExtractionOption) Merge(base ExtractionOption) ExtractionOption {
	out := o
	if out.Pages == "" {
		out.Pages = base.Pages
	}
	if len(out.PageList) == 0 {
		out.PageList = base.PageList
	}
	out.Guess = o.Guess || base.Guess
	if len(out.Areas) == 0 {
		out.Areas = base.Areas
	}
	out.RelativeArea = o.RelativeArea || base.RelativeArea
	out.Lattice = o.Lattice || base.Lattice
	out.Stream = o.Stream || base.Stream
	if out.Password == "" {
		out.Password = base.Password
	}
	out.Silent = o.Silent || base.Silent
	if len(out.Columns) == 0 {
		out.Columns = base.Columns
	}
	out.RelativeColumns = o.RelativeColumns || base.RelativeColumns
	if out.Format == "" {
		out.Format = base.Format
	}
	if out.Batch == "" {
		out.Batch = base.Batch
	}
	if out.OutputPath == "" {
		out.OutputPath = base.OutputPath
	}
	if out.Options == "" {
		out.Options = base.Options
	}
	out.MultipleTables = o.MultipleTables || base.MultipleTables
	return out
}

func isNonDecreasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] < v[i-1] {
			return false
		}
	}
	return true
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func formatFloats(v []float64, relative bool) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strings.Join(parts, ",")
	if relative {
		s = "%" + s
	}
	return s
}

// splitRaw splits a raw pass-through string shell-style, honoring single
// and double quotes.
func splitRaw(s string) []string {
	var args []string
	var cur strings.Builder
	var quote rune
	inToken := false
	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inToken = true
		case r == ' ' || r == '\t' || r == '\n':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args
}
