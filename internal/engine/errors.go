package engine

import "fmt"

// NotFoundError means the Java runtime executable could not be located.
// This is distinct from the engine running and failing.
type NotFoundError struct {
	Err error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("java runtime not found (%v); ensure Java is installed and on PATH", e.Err)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ExecutionError means the engine ran and exited non-zero. Stderr carries
// the engine's diagnostic output for the caller.
type ExecutionError struct {
	ExitCode int
	Stderr   string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("engine exited with status %d: %s", e.ExitCode, e.Stderr)
}
