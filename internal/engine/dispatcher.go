// Package engine dispatches extraction requests to the external engine,
// either through an in-process runtime binding or a java child process.
// The choice is made once per dispatcher and reused for its lifetime.
package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gotabula/internal/options"
)

type state int

const (
	stateUninitialized state = iota
	stateEmbedded
	stateSubprocess
)

// Settings configures a Dispatcher. JavaOptions and Silent are boot-time
// settings for the embedded runtime; for the subprocess backend they apply
// to every spawned child.
type Settings struct {
	JarPath         string
	JavaCommand     string
	JavaOptions     []string
	Silent          bool
	Encoding        string
	ForceSubprocess bool
}

// Dispatcher selects and holds a Backend. It is constructed by the caller
// and passed to every extraction, rather than living in package state, so
// its lifetime is explicit. The backend decision is made on the first
// Invoke: the in-process runtime is tried first unless subprocess mode is
// forced, and a failed probe falls back to the subprocess backend with a
// warning.
type Dispatcher struct {
	mu       sync.Mutex
	state    state
	settings Settings
	sub      *Subprocess
	emb      *embedded
	// bootOptions records what the embedded runtime was booted with, minus
	// the injected silence properties, for later change detection.
	bootOptions []string
}

func NewDispatcher(s Settings) *Dispatcher {
	return &Dispatcher{settings: s}
}

// Configure applies new settings to an existing dispatcher. Before the
// first invocation the settings replace the old ones wholesale. On a
// subprocess backend they are applied in place and affect the next child.
// On an embedded backend boot-time settings cannot change anymore; a
// genuine difference is reported once as a warning and ignored. The
// injected silence properties are excluded from that comparison, so
// toggling Silent alone never triggers the warning.
func (d *Dispatcher) Configure(s Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.state {
	case stateUninitialized:
		d.settings = s
	case stateSubprocess:
		d.settings = s
		d.sub.JavaCommand = s.JavaCommand
		d.sub.JavaOptions = s.JavaOptions
		d.sub.JarPath = s.JarPath
		d.sub.Silent = s.Silent
		d.sub.Encoding = s.Encoding
	case stateEmbedded:
		want := stripSilent(effectiveJavaOptions(s.JavaOptions, s.Silent, s.Encoding))
		if !equalStrings(want, d.bootOptions) {
			log.Warn().Msg("embedded engine is already running; new boot settings are ignored")
		}
	}
}

// Invoke routes one extraction through the selected backend. Embedded
// invocations are serialized; subprocess invocations run independently.
func (d *Dispatcher) Invoke(ctx context.Context, opt options.ExtractionOption, path string) ([]byte, error) {
	d.mu.Lock()
	d.ensureLocked()
	if d.state == stateEmbedded {
		defer d.mu.Unlock()
		return d.emb.Invoke(ctx, opt, path)
	}
	sub := d.sub
	d.mu.Unlock()
	return sub.Invoke(ctx, opt, path)
}

// Embedded reports whether the dispatcher settled on the in-process
// runtime. Before the first invocation it reports false.
func (d *Dispatcher) Embedded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == stateEmbedded
}

func (d *Dispatcher) ensureLocked() {
	if d.state != stateUninitialized {
		return
	}
	if !d.settings.ForceSubprocess {
		if factory := registeredRuntime(); factory != nil {
			boot := effectiveJavaOptions(d.settings.JavaOptions, d.settings.Silent, d.settings.Encoding)
			rt := factory()
			if err := rt.Boot(boot); err != nil {
				log.Warn().Err(err).Msg("embedded engine unavailable; falling back to subprocess")
			} else {
				d.emb = &embedded{rt: rt}
				d.bootOptions = stripSilent(boot)
				d.state = stateEmbedded
				return
			}
		}
	}
	d.sub = &Subprocess{
		JavaCommand: d.settings.JavaCommand,
		JavaOptions: d.settings.JavaOptions,
		JarPath:     d.settings.JarPath,
		Silent:      d.settings.Silent,
		Encoding:    d.settings.Encoding,
	}
	d.state = stateSubprocess
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
