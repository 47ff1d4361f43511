// tabula-stub imitates the engine's command-line contract so the pipeline
// can be exercised end to end without a Java runtime. It accepts the same
// argument grammar, honors -D JVM properties by ignoring them, and emits a
// fixed two-column table in the requested format.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperifyio/gotabula/internal/options"
)

const (
	csvBody = "Name,Age\nAlice,30\nBob,31\n"
	tsvBody = "Name\tAge\nAlice\t30\nBob\t31\n"
	jsonBody = `[{"extraction_method":"stream","top":10,"left":10,"width":200,"height":100,"data":[` +
		`[{"text":"Name"},{"text":"Age"}],` +
		`[{"text":"Alice"},{"text":"30"}],` +
		`[{"text":"Bob"},{"text":"31"}]]}]` + "\n"
)

func main() {
	if msg := os.Getenv("TABULA_STUB_FAIL"); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}

	args := stripJVM(os.Args[1:])
	opt, inputPath, err := parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tabula-stub: %v\n", err)
		os.Exit(2)
	}

	if msg := os.Getenv("TABULA_STUB_STDERR"); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
	}

	body := csvBody
	switch opt.Format {
	case options.FormatTSV:
		body = tsvBody
	case options.FormatJSON:
		body = jsonBody
	}

	switch {
	case opt.Batch != "":
		if err := batch(opt.Batch, opt.Format, body); err != nil {
			fmt.Fprintf(os.Stderr, "tabula-stub: %v\n", err)
			os.Exit(1)
		}
	case opt.OutputPath != "":
		if err := os.WriteFile(opt.OutputPath, []byte(body), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "tabula-stub: %v\n", err)
			os.Exit(1)
		}
	default:
		if inputPath == "" {
			fmt.Fprintln(os.Stderr, "tabula-stub: no input file")
			os.Exit(2)
		}
		fmt.Print(body)
	}
}

// stripJVM drops -D properties and the -jar pair that a java command line
// carries in front of the engine arguments.
func stripJVM(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case strings.HasPrefix(a, "-D"), strings.HasPrefix(a, "-X"):
		case a == "-jar":
			i++
		default:
			out = append(out, a)
		}
	}
	return out
}

// parse splits the trailing positional input path from the option tokens.
func parse(args []string) (options.ExtractionOption, string, error) {
	if opt, err := options.ParseArgs(args); err == nil {
		return opt, "", nil
	}
	if len(args) == 0 {
		return options.ExtractionOption{}, "", fmt.Errorf("no arguments")
	}
	last := args[len(args)-1]
	if strings.HasPrefix(last, "--") {
		_, err := options.ParseArgs(args)
		return options.ExtractionOption{}, "", err
	}
	opt, err := options.ParseArgs(args[:len(args)-1])
	if err != nil {
		return options.ExtractionOption{}, "", err
	}
	return opt, last, nil
}

func batch(dir string, format options.Format, body string) error {
	ext := ".csv"
	switch format {
	case options.FormatTSV:
		ext = ".tsv"
	case options.FormatJSON:
		ext = ".json"
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := os.WriteFile(filepath.Join(dir, stem+ext), []byte(body), 0o644); err != nil {
			return err
		}
	}
	return nil
}
