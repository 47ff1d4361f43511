package template

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/hyperifyio/gotabula/internal/options"
)

func TestExpandMergesSamePageAndMethod(t *testing.T) {
	regions := []Region{
		{Page: 1, ExtractionMethod: "lattice", X1: 10, Y1: 20, X2: 100, Y2: 200},
		{Page: 2, ExtractionMethod: "guess", X1: 5, Y1: 6, X2: 50, Y2: 60},
		{Page: 1, ExtractionMethod: "lattice", X1: 30, Y1: 40, X2: 300, Y2: 400},
	}
	opts, err := Expand(regions)
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}

	merged := opts[0]
	if !merged.Lattice {
		t.Fatalf("first group must be lattice: %+v", merged)
	}
	if !reflect.DeepEqual(merged.PageList, []int{1}) {
		t.Fatalf("first group pages = %v", merged.PageList)
	}
	if len(merged.Areas) != 2 {
		t.Fatalf("same page+method regions must merge into one multi-area request, got %d areas", len(merged.Areas))
	}
	if !merged.MultipleTables {
		t.Fatalf("merged group must set the multiple-tables flag")
	}

	single := opts[1]
	if single.Lattice || single.Stream {
		t.Fatalf("guess method must not set lattice/stream: %+v", single)
	}
	if len(single.Areas) != 1 {
		t.Fatalf("singleton group must carry one area, got %d", len(single.Areas))
	}
}

func TestExpandOrderIsDeterministic(t *testing.T) {
	a := Region{Page: 2, ExtractionMethod: "stream", X1: 1, Y1: 1, X2: 2, Y2: 2}
	b := Region{Page: 1, ExtractionMethod: "guess", X1: 1, Y1: 1, X2: 2, Y2: 2}
	c := Region{Page: 1, ExtractionMethod: "lattice", X1: 1, Y1: 1, X2: 2, Y2: 2}

	first, err := Expand([]Region{a, b, c})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	second, err := Expand([]Region{c, a, b})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("output order depends on input order:\n%v\n%v", first, second)
	}
	if !reflect.DeepEqual(first[0].PageList, []int{1}) || !reflect.DeepEqual(first[2].PageList, []int{2}) {
		t.Fatalf("groups must be sorted by page then method: %+v", first)
	}
}

func TestExpandRoundsCoordinates(t *testing.T) {
	opts, err := Expand([]Region{
		{Page: 1, ExtractionMethod: "stream", X1: 12.75001, Y1: 269.8751, X2: 561.00009, Y2: 790.4999},
	})
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	want := options.Area{Top: 269.875, Left: 12.75, Bottom: 790.5, Right: 561}
	if opts[0].Areas[0] != want {
		t.Fatalf("got %+v, want %+v", opts[0].Areas[0], want)
	}
}

func TestParseMissingGeometry(t *testing.T) {
	_, err := Parse([]byte(`[{"page": 1, "extraction_method": "guess", "x1": 1, "y1": 2, "x2": 3}]`))
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError, got %v", err)
	}

	_, err = Parse([]byte(`[{"extraction_method": "guess", "x1": 1, "y1": 2, "x2": 3, "y2": 4}]`))
	if !errors.As(err, &fe) {
		t.Fatalf("expected FormatError for missing page, got %v", err)
	}
}

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "regions.tabula-template.json")
	jsonBody := `[{"page": 1, "extraction_method": "lattice", "x1": 10.0, "y1": 20.0, "x2": 110.0, "y2": 220.0}]`
	if err := os.WriteFile(jsonPath, []byte(jsonBody), 0o644); err != nil {
		t.Fatal(err)
	}
	fromJSON, err := Load(jsonPath)
	if err != nil {
		t.Fatalf("Load json: %v", err)
	}

	yamlPath := filepath.Join(dir, "regions.yaml")
	yamlBody := "- page: 1\n  extraction_method: lattice\n  x1: 10\n  y1: 20\n  x2: 110\n  y2: 220\n"
	if err := os.WriteFile(yamlPath, []byte(yamlBody), 0o644); err != nil {
		t.Fatal(err)
	}
	fromYAML, err := Load(yamlPath)
	if err != nil {
		t.Fatalf("Load yaml: %v", err)
	}

	if !reflect.DeepEqual(fromJSON, fromYAML) {
		t.Fatalf("json and yaml templates must decode identically:\n%v\n%v", fromJSON, fromYAML)
	}
}
