package options

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseArgs reconstructs an ExtractionOption from a rendered argument list.
// Every structured field round-trips; the raw pass-through string does not,
// because its tokens are indistinguishable from structured ones once
// rendered. Unknown tokens are an error.
func ParseArgs(args []string) (ExtractionOption, error) {
	var o ExtractionOption

	next := func(i int, flag string) (string, error) {
		if i+1 >= len(args) {
			return "", fmt.Errorf("%s: missing value", flag)
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--pages":
			v, err := next(i, args[i])
			if err != nil {
				return o, err
			}
			o.Pages = v
			i++
		case "--area":
			v, err := next(i, args[i])
			if err != nil {
				return o, err
			}
			vals, relative, err := parseFloats(v)
			if err != nil {
				return o, fmt.Errorf("--area: %w", err)
			}
			if len(vals) != 4 {
				return o, fmt.Errorf("--area: expected 4 values, got %d", len(vals))
			}
			o.Areas = append(o.Areas, Area{Top: vals[0], Left: vals[1], Bottom: vals[2], Right: vals[3]})
			o.RelativeArea = o.RelativeArea || relative
			i++
		case "--lattice":
			o.Lattice = true
		case "--stream":
			o.Stream = true
		case "--guess":
			o.Guess = true
		case "--format":
			v, err := next(i, args[i])
			if err != nil {
				return o, err
			}
			f, err := ParseFormat(v)
			if err != nil {
				return o, err
			}
			o.Format = f
			i++
		case "--outfile":
			v, err := next(i, args[i])
			if err != nil {
				return o, err
			}
			o.OutputPath = v
			i++
		case "--columns":
			v, err := next(i, args[i])
			if err != nil {
				return o, err
			}
			vals, relative, err := parseFloats(v)
			if err != nil {
				return o, fmt.Errorf("--columns: %w", err)
			}
			o.Columns = vals
			o.RelativeColumns = relative
			i++
		case "--password":
			v, err := next(i, args[i])
			if err != nil {
				return o, err
			}
			o.Password = v
			i++
		case "--batch":
			v, err := next(i, args[i])
			if err != nil {
				return o, err
			}
			o.Batch = v
			i++
		case "--silent":
			o.Silent = true
		default:
			return o, fmt.Errorf("unknown token: %q", args[i])
		}
	}

	return o, nil
}

func parseFloats(s string) (vals []float64, relative bool, err error) {
	if strings.HasPrefix(s, "%") {
		relative = true
		s = s[1:]
	}
	for _, part := range strings.Split(s, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, false, fmt.Errorf("bad number %q", part)
		}
		vals = append(vals, f)
	}
	return vals, relative, nil
}
