// Package template loads region templates authored by the Tabula desktop
// app and expands them into the minimal set of extraction requests: regions
// sharing a page and extraction method collapse into one multi-area request.
package template

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/gotabula/internal/options"
)

// Region is one authored rectangle: a page, an extraction method (guess,
// lattice or stream) and two corner points.
type Region struct {
	Page             int
	ExtractionMethod string
	X1, Y1, X2, Y2   float64
}

// FormatError reports a template entry missing required fields.
type FormatError struct {
	Index  int
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("template entry %d: %s", e.Index, e.Reason)
}

// rawRegion uses pointers so absent fields are distinguishable from zeros.
type rawRegion struct {
	Page             *int     `json:"page" yaml:"page"`
	ExtractionMethod string   `json:"extraction_method" yaml:"extraction_method"`
	X1               *float64 `json:"x1" yaml:"x1"`
	Y1               *float64 `json:"y1" yaml:"y1"`
	X2               *float64 `json:"x2" yaml:"x2"`
	Y2               *float64 `json:"y2" yaml:"y2"`
}

// Load reads a template file. JSON is the Tabula app's native format; YAML
// is accepted for hand-written templates, selected by file extension.
func Load(path string) ([]Region, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parse(b, yaml.Unmarshal)
	default:
		return parse(b, json.Unmarshal)
	}
}

// Parse decodes a JSON template from memory.
func Parse(b []byte) ([]Region, error) {
	return parse(b, json.Unmarshal)
}

func parse(b []byte, unmarshal func([]byte, any) error) ([]Region, error) {
	var raw []rawRegion
	if err := unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode template: %w", err)
	}
	regions := make([]Region, 0, len(raw))
	for i, r := range raw {
		if r.Page == nil {
			return nil, &FormatError{Index: i, Reason: "missing page"}
		}
		if r.X1 == nil || r.Y1 == nil || r.X2 == nil || r.Y2 == nil {
			return nil, &FormatError{Index: i, Reason: "missing region geometry"}
		}
		regions = append(regions, Region{
			Page:             *r.Page,
			ExtractionMethod: r.ExtractionMethod,
			X1:               *r.X1,
			Y1:               *r.Y1,
			X2:               *r.X2,
			Y2:               *r.Y2,
		})
	}
	return regions, nil
}

// Expand groups regions by (page, extraction method) and converts each
// group into one ExtractionOption. Groups are ordered by page then method,
// so the output is deterministic regardless of input order. A group with
// several members becomes a single multi-area request covering one logical
// table.
func Expand(regions []Region) ([]options.ExtractionOption, error) {
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Page != sorted[j].Page {
			return sorted[i].Page < sorted[j].Page
		}
		return sorted[i].ExtractionMethod < sorted[j].ExtractionMethod
	})

	var out []options.ExtractionOption
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].Page == sorted[i].Page &&
			sorted[j].ExtractionMethod == sorted[i].ExtractionMethod {
			j++
		}
		opt := convert(sorted[i])
		for _, r := range sorted[i+1 : j] {
			opt.Areas = append(opt.Areas, area(r))
		}
		if j-i > 1 {
			opt.MultipleTables = true
		}
		out = append(out, opt)
		i = j
	}
	return out, nil
}

func convert(r Region) options.ExtractionOption {
	opt := options.New()
	switch r.ExtractionMethod {
	case "lattice":
		opt.Lattice = true
	case "stream":
		opt.Stream = true
	}
	opt.PageList = []int{r.Page}
	opt.Areas = []options.Area{area(r)}
	return opt
}

// area converts corner points to top/left/bottom/right, rounding to three
// decimals to normalize authoring noise from the desktop tool.
func area(r Region) options.Area {
	return options.Area{
		Top:    round3(r.Y1),
		Left:   round3(r.X1),
		Bottom: round3(r.Y2),
		Right:  round3(r.X2),
	}
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
