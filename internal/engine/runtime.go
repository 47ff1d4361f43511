package engine

import (
	"context"
	"sync"

	"github.com/hyperifyio/gotabula/internal/options"
)

// Runtime is an in-process binding to the engine. A runtime boots at most
// once per process and cannot be restarted with different boot options, so
// a registered runtime is probed and booted lazily on the first dispatch.
type Runtime interface {
	// Boot starts the runtime with the given JVM options. It is called once.
	Boot(javaOptions []string) error
	// Call passes engine arguments to the runtime's command-line-compatible
	// entry point and returns its textual output buffer.
	Call(args []string) (string, error)
}

var (
	runtimeMu      sync.Mutex
	runtimeFactory func() Runtime
)

// RegisterRuntime installs a factory for the in-process engine binding.
// When no runtime is registered, dispatch goes straight to the subprocess
// backend.
func RegisterRuntime(f func() Runtime) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtimeFactory = f
}

func registeredRuntime() func() Runtime {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	return runtimeFactory
}

// embedded adapts a booted Runtime to the Backend contract. Calls are
// serialized by the dispatcher; the runtime itself is not cancel-aware, so
// ctx is accepted only for interface symmetry.
type embedded struct {
	rt Runtime
}

func (e *embedded) Invoke(_ context.Context, opt options.ExtractionOption, path string) ([]byte, error) {
	rendered, err := opt.Args()
	if err != nil {
		return nil, err
	}
	args := rendered
	if path != "" {
		args = append([]string{path}, rendered...)
	}
	out, err := e.rt.Call(args)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}
