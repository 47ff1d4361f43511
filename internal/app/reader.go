package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gotabula/internal/engine"
	"github.com/hyperifyio/gotabula/internal/fetch"
	"github.com/hyperifyio/gotabula/internal/materialize"
	"github.com/hyperifyio/gotabula/internal/options"
	"github.com/hyperifyio/gotabula/internal/template"
)

// Reader is the extraction facade. It owns a backend dispatcher for its
// lifetime; construct one per application and pass it to every extraction.
type Reader struct {
	cfg     Config
	backend engine.Backend
	fetcher *fetch.Client
}

// New builds a Reader with a dispatcher configured from cfg.
func New(cfg Config) *Reader {
	d := engine.NewDispatcher(engine.Settings{
		JarPath:         cfg.JarPath,
		JavaCommand:     cfg.JavaCommand,
		JavaOptions:     cfg.JavaOptions,
		Silent:          cfg.Silent,
		Encoding:        cfg.Encoding,
		ForceSubprocess: cfg.ForceSubprocess,
	})
	return NewWithBackend(cfg, d)
}

// NewWithBackend builds a Reader around an explicit backend, letting tests
// and embedders substitute their own transport to the engine.
func NewWithBackend(cfg Config, backend engine.Backend) *Reader {
	return &Reader{
		cfg:     cfg,
		backend: backend,
		fetcher: &fetch.Client{
			UserAgent:         cfg.UserAgent,
			TempDir:           cfg.TempDir,
			PerRequestTimeout: cfg.DownloadTimeout,
		},
	}
}

// ReadOptions controls result materialization.
type ReadOptions struct {
	// HeaderRow picks that row as the header of every table. Nil means
	// infer: the first row of the first table becomes its header.
	HeaderRow *int
	// NoHeader disables header consumption; columns get positional names.
	NoHeader bool
	// Columns names the columns of every table; no data row is consumed.
	Columns []string
}

func (ro ReadOptions) header() materialize.Header {
	switch {
	case ro.NoHeader:
		return materialize.HeaderNone
	case ro.HeaderRow != nil:
		return materialize.Header(*ro.HeaderRow)
	}
	return materialize.HeaderInfer
}

// ReadPDF extracts tables from input, which may be a local path or an
// http(s) URL, and materializes them as typed tables. In multiple-tables
// mode (the default) the engine is asked for JSON grids; otherwise its
// delimited output is assembled into a single table.
func (r *Reader) ReadPDF(ctx context.Context, input string, opt options.ExtractionOption, read ReadOptions) ([]materialize.Table, error) {
	path, temporary, err := r.fetcher.Localize(ctx, input, ".pdf")
	if err != nil {
		return nil, err
	}
	if temporary {
		defer os.Remove(path)
	}
	return r.readLocal(ctx, path, opt, read)
}

// ReadPDFReader extracts tables from an in-memory PDF stream. The spooled
// temporary copy is removed on every exit path.
func (r *Reader) ReadPDFReader(ctx context.Context, input io.Reader, opt options.ExtractionOption, read ReadOptions) ([]materialize.Table, error) {
	path, err := r.fetcher.LocalizeReader(input, ".pdf")
	if err != nil {
		return nil, err
	}
	defer os.Remove(path)
	return r.readLocal(ctx, path, opt, read)
}

func (r *Reader) readLocal(ctx context.Context, path string, opt options.ExtractionOption, read ReadOptions) ([]materialize.Table, error) {
	if opt.MultipleTables {
		opt.Format = options.FormatJSON
	}
	if err := checkInput(path); err != nil {
		return nil, err
	}

	out, err := r.backend.Invoke(ctx, opt, path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		log.Warn().Str("input", path).Msg("engine produced no output; treating as no tables found")
		return nil, nil
	}

	if opt.Format == options.FormatJSON {
		raw, err := materialize.ParseJSON(out)
		if err != nil {
			return nil, err
		}
		return materialize.Materialize(raw, read.header(), read.Columns)
	}

	comma := ','
	if opt.Format == options.FormatTSV {
		comma = '\t'
	}
	rt, err := materialize.ParseCSV(out, comma)
	if err != nil {
		return nil, err
	}
	return materialize.Materialize([]materialize.RawTable{rt}, read.header(), read.Columns)
}

// ReadPDFRaw extracts tables as the engine's untyped JSON grids.
func (r *Reader) ReadPDFRaw(ctx context.Context, input string, opt options.ExtractionOption) ([]materialize.RawTable, error) {
	opt.Format = options.FormatJSON
	opt.MultipleTables = false

	path, temporary, err := r.fetcher.Localize(ctx, input, ".pdf")
	if err != nil {
		return nil, err
	}
	if temporary {
		defer os.Remove(path)
	}
	if err := checkInput(path); err != nil {
		return nil, err
	}

	out, err := r.backend.Invoke(ctx, opt, path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		log.Warn().Str("input", path).Msg("engine produced no output; treating as no tables found")
		return nil, nil
	}
	return materialize.ParseJSON(out)
}

// ReadPDFWithTemplate expands an authored template into grouped extraction
// requests and runs them sequentially against input, concatenating the
// resulting tables. The first failing request aborts the rest.
func (r *Reader) ReadPDFWithTemplate(ctx context.Context, input, templatePath string, opt options.ExtractionOption, read ReadOptions) ([]materialize.Table, error) {
	tpath, temporary, err := r.fetcher.Localize(ctx, templatePath, templateSuffix(templatePath))
	if err != nil {
		return nil, err
	}
	if temporary {
		defer os.Remove(tpath)
	}

	regions, err := template.Load(tpath)
	if err != nil {
		return nil, err
	}
	expanded, err := template.Expand(regions)
	if err != nil {
		return nil, err
	}

	var all []materialize.Table
	for _, e := range expanded {
		tables, err := r.ReadPDF(ctx, input, e.Merge(opt), read)
		if err != nil {
			return nil, err
		}
		all = append(all, tables...)
	}
	return all, nil
}

// ConvertInto extracts tables from input straight into outputPath in the
// given format ("csv", "tsv" or "json").
func (r *Reader) ConvertInto(ctx context.Context, input, outputPath, format string, opt options.ExtractionOption) error {
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path must not be empty")
	}
	f, err := options.ParseFormat(format)
	if err != nil {
		return err
	}
	opt.Format = f
	opt.OutputPath = outputPath

	path, temporary, err := r.fetcher.Localize(ctx, input, ".pdf")
	if err != nil {
		return err
	}
	if temporary {
		defer os.Remove(path)
	}
	if err := checkInput(path); err != nil {
		return err
	}

	_, err = r.backend.Invoke(ctx, opt, path)
	return err
}

// ConvertIntoByBatch converts every PDF in dir; the engine writes outputs
// next to the inputs.
func (r *Reader) ConvertIntoByBatch(ctx context.Context, dir, format string, opt options.ExtractionOption) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("batch directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("batch path %q is not a directory", dir)
	}
	f, err := options.ParseFormat(format)
	if err != nil {
		return err
	}
	opt.Format = f
	opt.Batch = dir

	_, err = r.backend.Invoke(ctx, opt, "")
	return err
}

// templateSuffix keeps a remote template's extension so the loader sniffs
// the right syntax for a localized copy; anything unrecognized means JSON.
func templateSuffix(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml":
		return ".yaml"
	case ".yml":
		return ".yml"
	}
	return ".json"
}

func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s is empty; check the file or download it manually", path)
	}
	return nil
}
