package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hyperifyio/gotabula/internal/options"
)

type call struct {
	opt  options.ExtractionOption
	path string
}

type fakeBackend struct {
	calls []call
	out   []string
	// errAt fails the nth call (1-based); 0 never fails.
	errAt int
	err   error
}

func (f *fakeBackend) Invoke(_ context.Context, opt options.ExtractionOption, path string) ([]byte, error) {
	f.calls = append(f.calls, call{opt: opt, path: path})
	if f.errAt != 0 && len(f.calls) == f.errAt {
		return nil, f.err
	}
	i := len(f.calls) - 1
	if i >= len(f.out) {
		i = len(f.out) - 1
	}
	if i < 0 {
		return nil, nil
	}
	return []byte(f.out[i]), nil
}

func writeInput(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "in.pdf")
	if err := os.WriteFile(p, []byte("%PDF-1.4 stub"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const jsonGrid = `[{"extraction_method":"stream","data":[
	[{"text":"Name"},{"text":"Age"}],
	[{"text":"Alice"},{"text":"30"}],
	[{"text":"Bob"},{"text":"31"}]]}]`

func TestReadPDFMultipleTablesUsesJSON(t *testing.T) {
	fb := &fakeBackend{out: []string{jsonGrid}}
	r := NewWithBackend(Config{}, fb)

	opt := options.New()
	opt.Pages = "all"
	tables, err := r.ReadPDF(context.Background(), writeInput(t), opt, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadPDF: %v", err)
	}
	if len(fb.calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(fb.calls))
	}
	if fb.calls[0].opt.Format != options.FormatJSON {
		t.Fatalf("multiple-tables mode must request JSON, got %q", fb.calls[0].opt.Format)
	}
	if len(tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(tables))
	}
	if !reflect.DeepEqual(tables[0].Columns, []string{"Name", "Age"}) {
		t.Fatalf("columns = %v", tables[0].Columns)
	}
	if f, ok := tables[0].Rows[0][1].Float(); !ok || f != 30 {
		t.Fatalf("age column must coerce numeric, got %v", tables[0].Rows[0][1])
	}
}

func TestReadPDFSingleTableCSV(t *testing.T) {
	fb := &fakeBackend{out: []string{"Name,Age\nAlice,30\n"}}
	r := NewWithBackend(Config{}, fb)

	opt := options.New()
	opt.Pages = "1"
	opt.MultipleTables = false
	tables, err := r.ReadPDF(context.Background(), writeInput(t), opt, ReadOptions{})
	if err != nil {
		t.Fatalf("ReadPDF: %v", err)
	}
	if fb.calls[0].opt.Format == options.FormatJSON {
		t.Fatalf("single-table mode must not force JSON")
	}
	if len(tables) != 1 || !reflect.DeepEqual(tables[0].Columns, []string{"Name", "Age"}) {
		t.Fatalf("bad tables: %+v", tables)
	}
}

func TestReadPDFEmptyOutputYieldsNoTables(t *testing.T) {
	fb := &fakeBackend{out: []string{""}}
	r := NewWithBackend(Config{}, fb)

	opt := options.New()
	opt.Pages = "1"
	tables, err := r.ReadPDF(context.Background(), writeInput(t), opt, ReadOptions{})
	if err != nil {
		t.Fatalf("empty output must not be an error: %v", err)
	}
	if len(tables) != 0 {
		t.Fatalf("expected no tables, got %d", len(tables))
	}
}

func TestReadPDFEmptyInputFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "empty.pdf")
	if err := os.WriteFile(p, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewWithBackend(Config{}, &fakeBackend{out: []string{jsonGrid}})
	opt := options.New()
	opt.Pages = "1"
	if _, err := r.ReadPDF(context.Background(), p, opt, ReadOptions{}); err == nil {
		t.Fatalf("empty input must fail before invoking the engine")
	}
}

func TestReadPDFReaderCleansUpSpool(t *testing.T) {
	fb := &fakeBackend{out: []string{jsonGrid}}
	r := NewWithBackend(Config{TempDir: t.TempDir()}, fb)

	opt := options.New()
	opt.Pages = "1"
	if _, err := r.ReadPDFReader(context.Background(), strings.NewReader("%PDF-1.4 x"), opt, ReadOptions{}); err != nil {
		t.Fatalf("ReadPDFReader: %v", err)
	}
	spooled := fb.calls[0].path
	if _, err := os.Stat(spooled); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("spooled temp file must be removed, stat err = %v", err)
	}
}

func TestReadPDFWithTemplate(t *testing.T) {
	tpl := `[
		{"page": 1, "extraction_method": "lattice", "x1": 10, "y1": 20, "x2": 110, "y2": 220},
		{"page": 1, "extraction_method": "lattice", "x1": 30, "y1": 240, "x2": 130, "y2": 440},
		{"page": 2, "extraction_method": "guess", "x1": 1, "y1": 2, "x2": 3, "y2": 4}
	]`
	tplPath := filepath.Join(t.TempDir(), "regions.tabula-template.json")
	if err := os.WriteFile(tplPath, []byte(tpl), 0o644); err != nil {
		t.Fatal(err)
	}

	fb := &fakeBackend{out: []string{jsonGrid, jsonGrid}}
	r := NewWithBackend(Config{}, fb)

	tables, err := r.ReadPDFWithTemplate(context.Background(), writeInput(t), tplPath, options.New(), ReadOptions{})
	if err != nil {
		t.Fatalf("ReadPDFWithTemplate: %v", err)
	}
	if len(fb.calls) != 2 {
		t.Fatalf("three regions in two groups must mean two invocations, got %d", len(fb.calls))
	}
	if len(fb.calls[0].opt.Areas) != 2 || !fb.calls[0].opt.MultipleTables {
		t.Fatalf("first group must carry both areas: %+v", fb.calls[0].opt)
	}
	if len(tables) != 2 {
		t.Fatalf("expected concatenated tables, got %d", len(tables))
	}
}

func TestReadPDFWithTemplateAbortsOnFailure(t *testing.T) {
	tpl := `[
		{"page": 1, "extraction_method": "lattice", "x1": 10, "y1": 20, "x2": 110, "y2": 220},
		{"page": 2, "extraction_method": "guess", "x1": 1, "y1": 2, "x2": 3, "y2": 4}
	]`
	tplPath := filepath.Join(t.TempDir(), "regions.json")
	if err := os.WriteFile(tplPath, []byte(tpl), 0o644); err != nil {
		t.Fatal(err)
	}

	fb := &fakeBackend{out: []string{jsonGrid}, errAt: 1, err: errors.New("engine broke")}
	r := NewWithBackend(Config{}, fb)

	_, err := r.ReadPDFWithTemplate(context.Background(), writeInput(t), tplPath, options.New(), ReadOptions{})
	if err == nil {
		t.Fatalf("first failure must abort the sequence")
	}
	if len(fb.calls) != 1 {
		t.Fatalf("no further invocations after a failure, got %d", len(fb.calls))
	}
}

func TestConvertInto(t *testing.T) {
	fb := &fakeBackend{out: []string{""}}
	r := NewWithBackend(Config{}, fb)

	opt := options.New()
	opt.Pages = "all"
	out := filepath.Join(t.TempDir(), "out.tsv")
	if err := r.ConvertInto(context.Background(), writeInput(t), out, "tsv", opt); err != nil {
		t.Fatalf("ConvertInto: %v", err)
	}
	got := fb.calls[0].opt
	if got.Format != options.FormatTSV || got.OutputPath != out {
		t.Fatalf("format/outfile not set: %+v", got)
	}

	if err := r.ConvertInto(context.Background(), writeInput(t), "", "csv", opt); err == nil {
		t.Fatalf("empty output path must fail")
	}
	if err := r.ConvertInto(context.Background(), writeInput(t), out, "dataframe", opt); err == nil {
		t.Fatalf("unknown format must fail")
	}
}

func TestConvertIntoByBatch(t *testing.T) {
	fb := &fakeBackend{out: []string{""}}
	r := NewWithBackend(Config{}, fb)

	dir := t.TempDir()
	opt := options.New()
	opt.Pages = "all"
	if err := r.ConvertIntoByBatch(context.Background(), dir, "csv", opt); err != nil {
		t.Fatalf("ConvertIntoByBatch: %v", err)
	}
	got := fb.calls[0]
	if got.opt.Batch != dir || got.path != "" {
		t.Fatalf("batch mode must set the batch dir and pass no input path: %+v", got)
	}

	if err := r.ConvertIntoByBatch(context.Background(), filepath.Join(dir, "nope"), "csv", opt); err == nil {
		t.Fatalf("missing directory must fail")
	}
}

func TestTemplateSuffix(t *testing.T) {
	cases := map[string]string{
		"https://example.com/regions.tabula-template.json": ".json",
		"https://example.com/regions.yaml":                 ".yaml",
		"regions.YML":                                      ".yml",
		"https://example.com/template":                     ".json",
	}
	for in, want := range cases {
		if got := templateSuffix(in); got != want {
			t.Fatalf("templateSuffix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadPDFRaw(t *testing.T) {
	fb := &fakeBackend{out: []string{jsonGrid}}
	r := NewWithBackend(Config{}, fb)

	opt := options.New()
	opt.Pages = "1"
	raw, err := r.ReadPDFRaw(context.Background(), writeInput(t), opt)
	if err != nil {
		t.Fatalf("ReadPDFRaw: %v", err)
	}
	if fb.calls[0].opt.Format != options.FormatJSON {
		t.Fatalf("raw mode must request JSON")
	}
	if len(raw) != 1 || len(raw[0].Data) != 3 {
		t.Fatalf("bad raw tables: %+v", raw)
	}
	if raw[0].Data[0][0].Text != "Name" {
		t.Fatalf("raw cells must stay untyped text")
	}
}
