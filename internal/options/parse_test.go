package options

import (
	"reflect"
	"testing"
)

// Rendering and re-parsing must agree for every structured field: parsing
// the rendered tokens and rendering again yields an identical token list.
func TestRoundTrip(t *testing.T) {
	cases := []ExtractionOption{
		func() ExtractionOption {
			o := New()
			o.Pages = "1-2,3"
			return o
		}(),
		func() ExtractionOption {
			o := New()
			o.PageList = []int{2, 4}
			o.Areas = []Area{{Top: 269.875, Left: 12.75, Bottom: 790.5, Right: 561}}
			o.Lattice = true
			return o
		}(),
		func() ExtractionOption {
			o := New()
			o.Pages = "all"
			o.Stream = true
			o.Columns = []float64{10.1, 20.2, 30.3}
			o.RelativeColumns = true
			o.Format = FormatTSV
			o.Password = "pw"
			o.Silent = true
			return o
		}(),
		func() ExtractionOption {
			o := New()
			o.Pages = "1"
			o.Batch = "/tmp/in"
			o.OutputPath = "/tmp/out.csv"
			o.Format = FormatJSON
			return o
		}(),
	}

	for i, o := range cases {
		first, err := o.Args()
		if err != nil {
			t.Fatalf("case %d: render: %v", i, err)
		}
		parsed, err := ParseArgs(first)
		if err != nil {
			t.Fatalf("case %d: parse: %v", i, err)
		}
		second, err := parsed.Args()
		if err != nil {
			t.Fatalf("case %d: re-render: %v", i, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("case %d: round trip drifted:\nfirst  %v\nsecond %v", i, first, second)
		}
	}
}

func TestParseArgsRejectsUnknownToken(t *testing.T) {
	if _, err := ParseArgs([]string{"--pages", "1", "--bogus"}); err == nil {
		t.Fatalf("expected error for unknown token")
	}
}

func TestParseArgsMissingValue(t *testing.T) {
	if _, err := ParseArgs([]string{"--pages"}); err == nil {
		t.Fatalf("expected error for missing value")
	}
}

func TestParseArgsArea(t *testing.T) {
	o, err := ParseArgs([]string{"--area", "%10,20,30,40", "--silent"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !o.RelativeArea || len(o.Areas) != 1 {
		t.Fatalf("bad area parse: %+v", o)
	}
	if o.Areas[0] != (Area{Top: 10, Left: 20, Bottom: 30, Right: 40}) {
		t.Fatalf("bad area: %+v", o.Areas[0])
	}
	if !o.Silent {
		t.Fatalf("silent flag lost")
	}
}

func TestParseArgsBadAreaArity(t *testing.T) {
	if _, err := ParseArgs([]string{"--area", "1,2,3"}); err == nil {
		t.Fatalf("expected error for 3-value area")
	}
}
