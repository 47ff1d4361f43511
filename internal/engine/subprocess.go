package engine

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gotabula/internal/options"
)

// Backend is a single way of reaching the extraction engine. Implementations
// take a validated option set plus an optional input file path and return
// the engine's raw output.
type Backend interface {
	Invoke(ctx context.Context, opt options.ExtractionOption, path string) ([]byte, error)
}

// Subprocess reaches the engine by spawning a java child process per
// invocation. Each call owns its own process, so concurrent invocations are
// safe and cancellation via ctx kills the child.
type Subprocess struct {
	JavaCommand string
	JavaOptions []string
	JarPath     string
	Silent      bool
	// Encoding is the IANA charset of the engine's output; empty means UTF-8.
	Encoding string
}

func (s *Subprocess) command() string {
	if s.JavaCommand != "" {
		return s.JavaCommand
	}
	return "java"
}

func (s *Subprocess) jar() string {
	if s.JarPath != "" {
		return s.JarPath
	}
	return JarPath()
}

// Invoke renders opt to the engine's argument grammar and runs the engine,
// returning captured standard output. Non-empty standard error on a zero
// exit is logged as a warning; on a non-zero exit it becomes the body of an
// ExecutionError. A missing java executable is a NotFoundError.
func (s *Subprocess) Invoke(ctx context.Context, opt options.ExtractionOption, path string) ([]byte, error) {
	rendered, err := opt.Args()
	if err != nil {
		return nil, err
	}

	args := effectiveJavaOptions(s.JavaOptions, s.Silent, s.Encoding)
	args = append(args, "-jar", s.jar())
	args = append(args, rendered...)
	if path != "" {
		args = append(args, path)
	}

	cmd := exec.CommandContext(ctx, s.command(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil, &NotFoundError{Err: err}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			diag, decErr := decodeCharset(stderr.Bytes(), s.Encoding)
			if decErr != nil {
				diag = stderr.Bytes()
			}
			return nil, &ExecutionError{ExitCode: exitErr.ExitCode(), Stderr: string(diag)}
		}
		return nil, err
	}

	if stderr.Len() > 0 {
		diag, decErr := decodeCharset(stderr.Bytes(), s.Encoding)
		if decErr != nil {
			diag = stderr.Bytes()
		}
		log.Warn().Str("stderr", strings.TrimSpace(string(diag))).Msg("engine wrote to stderr")
	}

	return decodeCharset(stdout.Bytes(), s.Encoding)
}
