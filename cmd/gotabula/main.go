package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gotabula/internal/app"
	"github.com/hyperifyio/gotabula/internal/engine"
	"github.com/hyperifyio/gotabula/internal/materialize"
	"github.com/hyperifyio/gotabula/internal/options"
	"github.com/hyperifyio/gotabula/internal/sample"
)

// listFlag collects a repeatable string flag.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		inputPath    string
		outputPath   string
		format       string
		pages        string
		areas        listFlag
		columns      string
		lattice      bool
		stream       bool
		guess        bool
		password     string
		templatePath string
		batchDir     string
		headerRow    int
		noHeader     bool
		columnNames  string

		jarPath         string
		javaCommand     string
		javaOpts        string
		encoding        string
		silent          bool
		forceSubprocess bool

		configPath string
		envFiles   string
		genSample  string
		timeout    time.Duration
		verbose    bool
	)

	flag.StringVar(&inputPath, "input", "", "Path or http(s) URL of the input PDF")
	flag.StringVar(&outputPath, "o", "", "Write engine output to this file instead of stdout")
	flag.StringVar(&format, "format", "csv", "Output format: csv, tsv or json")
	flag.StringVar(&pages, "pages", "", "Pages to examine, e.g. '1', '2-4', '1,3,5-7' or 'all'")
	flag.Var(&areas, "area", "Portion of the page to analyze as top,left,bottom,right; prefix with % for relative coordinates; repeatable")
	flag.StringVar(&columns, "columns", "", "Comma-separated x coordinates of column boundaries")
	flag.BoolVar(&lattice, "lattice", false, "Force lattice mode (ruled tables)")
	flag.BoolVar(&stream, "stream", false, "Force stream mode (whitespace-separated tables)")
	flag.BoolVar(&guess, "guess", true, "Guess the portion of the page containing a table")
	flag.StringVar(&password, "password", os.Getenv("TABULA_PASSWORD"), "Password for encrypted PDFs")
	flag.StringVar(&templatePath, "template", "", "Path or URL of a tabula-template.json file")
	flag.StringVar(&batchDir, "batch", "", "Convert every PDF in this directory")
	flag.IntVar(&headerRow, "header-row", -1, "Row index to use as the header of every table; -1 infers from the first table")
	flag.BoolVar(&noHeader, "no-header", false, "Do not treat any row as a header")
	flag.StringVar(&columnNames, "column-names", "", "Comma-separated column names; no data row is consumed")
	flag.StringVar(&jarPath, "jar", os.Getenv(engine.EnvJar), "Path to the engine jar")
	flag.StringVar(&javaCommand, "java", os.Getenv("TABULA_JAVA"), "Java executable to run the engine with")
	flag.StringVar(&javaOpts, "java-opts", os.Getenv("TABULA_JAVA_OPTIONS"), "Space-separated JVM options, e.g. '-Xmx512m'")
	flag.StringVar(&encoding, "encoding", "", "IANA charset of the engine's output (default UTF-8)")
	flag.BoolVar(&silent, "silent", false, "Suppress the engine's own logging")
	flag.BoolVar(&forceSubprocess, "force-subprocess", false, "Skip the in-process engine binding and always spawn a subprocess")
	flag.StringVar(&configPath, "config", os.Getenv("GOTABULA_CONFIG"), "Path to a YAML or JSON configuration file")
	flag.StringVar(&envFiles, "env", "", "Comma-separated dotenv files to load before reading the environment")
	flag.StringVar(&genSample, "gen-sample", "", "Write a sample table PDF to this path and exit")
	flag.DurationVar(&timeout, "timeout", 0, "Overall deadline for the run; 0 disables")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if strings.TrimSpace(envFiles) != "" {
		if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
			log.Error().Err(err).Msg("load env files")
			os.Exit(2)
		}
	}

	if genSample != "" {
		if err := sample.GenerateTable(genSample, sample.Table{}); err != nil {
			log.Error().Err(err).Msg("generate sample")
			os.Exit(1)
		}
		log.Info().Str("path", genSample).Msg("sample PDF written")
		return
	}

	cfg := app.Config{
		JarPath:         jarPath,
		JavaCommand:     javaCommand,
		Encoding:        encoding,
		Silent:          silent,
		ForceSubprocess: forceSubprocess,
		Verbose:         verbose,
	}
	if s := strings.TrimSpace(javaOpts); s != "" {
		cfg.JavaOptions = strings.Fields(s)
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Msg("load config")
			os.Exit(2)
		}
		cfg = fc.Apply(cfg)
	}

	opt := options.New()
	opt.Pages = pages
	opt.Guess = guess
	opt.Lattice = lattice
	opt.Stream = stream
	opt.Password = password
	opt.Silent = cfg.Silent
	for _, a := range areas {
		area, relative, err := parseArea(a)
		if err != nil {
			log.Error().Err(err).Str("area", a).Msg("bad -area")
			os.Exit(2)
		}
		opt.Areas = append(opt.Areas, area)
		if relative {
			opt.RelativeArea = true
		}
	}
	if s := strings.TrimSpace(columns); s != "" {
		cols, err := parseFloats(s)
		if err != nil {
			log.Error().Err(err).Msg("bad -columns")
			os.Exit(2)
		}
		opt.Columns = cols
	}
	if err := opt.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid extraction options")
		os.Exit(2)
	}

	read := app.ReadOptions{NoHeader: noHeader}
	if headerRow >= 0 {
		hr := headerRow
		read.HeaderRow = &hr
	}
	if s := strings.TrimSpace(columnNames); s != "" {
		read.Columns = strings.Split(s, ",")
	}

	if batchDir == "" && strings.TrimSpace(inputPath) == "" {
		fmt.Fprintln(os.Stderr, "gotabula: -input or -batch is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := run(ctx, cfg, opt, read, inputPath, outputPath, format, templatePath, batchDir); err != nil {
		log.Error().Err(err).Msg("run failed")
		var nf *engine.NotFoundError
		if errors.As(err, &nf) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg app.Config, opt options.ExtractionOption, read app.ReadOptions, inputPath, outputPath, format, templatePath, batchDir string) error {
	r := app.New(cfg)

	switch {
	case batchDir != "":
		return r.ConvertIntoByBatch(ctx, batchDir, format, opt)
	case outputPath != "":
		return r.ConvertInto(ctx, inputPath, outputPath, format, opt)
	}

	var (
		tables []materialize.Table
		err    error
	)
	if templatePath != "" {
		tables, err = r.ReadPDFWithTemplate(ctx, inputPath, templatePath, opt, read)
	} else {
		tables, err = r.ReadPDF(ctx, inputPath, opt, read)
	}
	if err != nil {
		return err
	}
	return printTables(os.Stdout, tables, format)
}

// jsonTable is the stdout shape for one table. Columns and rows are kept
// as parallel ordered lists so column order survives serialization.
type jsonTable struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// printTables writes materialized tables to w. Delimited formats separate
// tables with a blank line; json emits one columns+rows object per table.
func printTables(w io.Writer, tables []materialize.Table, format string) error {
	f, err := options.ParseFormat(format)
	if err != nil {
		return err
	}

	if f == options.FormatJSON {
		out := make([]jsonTable, 0, len(tables))
		for _, t := range tables {
			jt := jsonTable{Columns: t.Columns, Rows: make([][]any, 0, len(t.Rows))}
			for _, row := range t.Rows {
				vals := make([]any, len(row))
				for i, v := range row {
					vals[i] = cellValue(v)
				}
				jt.Rows = append(jt.Rows, vals)
			}
			out = append(out, jt)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	cw := csv.NewWriter(w)
	if f == options.FormatTSV {
		cw.Comma = '\t'
	}
	for i, t := range tables {
		if i > 0 {
			cw.Flush()
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := cw.Write(t.Columns); err != nil {
			return err
		}
		for _, row := range t.Rows {
			rec := make([]string, len(row))
			for j, v := range row {
				rec[j] = v.String()
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func cellValue(v materialize.Value) any {
	if v.IsMissing() {
		return nil
	}
	if f, ok := v.Float(); ok {
		return f
	}
	return v.String()
}

func parseArea(s string) (options.Area, bool, error) {
	relative := strings.HasPrefix(s, "%")
	nums, err := parseFloats(strings.TrimPrefix(s, "%"))
	if err != nil {
		return options.Area{}, false, err
	}
	if len(nums) != 4 {
		return options.Area{}, false, fmt.Errorf("area needs 4 coordinates, got %d", len(nums))
	}
	return options.Area{Top: nums[0], Left: nums[1], Bottom: nums[2], Right: nums[3]}, relative, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
