// Package trace is the diagnostic sink the type checker and evaluator
// write human-readable traces to (spec.md §6's "Trace/diagnostic sink").
// It carries no semantics: disabling every channel must never change a
// getType/evaluate/match result, only what gets printed along the way.
package trace

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Sink is a leveled, named-channel diagnostic writer, grounded on the
// original checker's `Trace("channel") << ...` / `Warning() << ...` idiom:
// each channel is independently toggled, and warnings are written
// regardless of channel (only Muted suppresses them).
type Sink struct {
	out      io.Writer
	color    bool
	channels map[string]bool
	Muted    bool
}

// New wraps w. Output is colorized only when w is a real terminal.
func New(w io.Writer) *Sink {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Sink{out: w, channels: make(map[string]bool), color: color}
}

// Default returns a sink writing to stderr with no channels enabled.
func Default() *Sink { return New(os.Stderr) }

// Enable turns a named channel on.
func (s *Sink) Enable(channel string) { s.channels[channel] = true }

// Disable turns a named channel off.
func (s *Sink) Disable(channel string) { delete(s.channels, channel) }

// Enabled reports whether channel is currently on.
func (s *Sink) Enabled(channel string) bool { return s.channels[channel] }

func (s *Sink) tag(label, ansi string) string {
	if !s.color {
		return label
	}
	return ansi + label + "\x1b[0m"
}

// Trace writes a line to channel if it is enabled. A nil Sink is a no-op,
// so callers may pass an optional diagnostic sink straight through.
func (s *Sink) Trace(channel string, args ...any) {
	if s == nil || s.Muted || !s.channels[channel] {
		return
	}
	fmt.Fprintf(s.out, "[%s] ", s.tag(channel, "\x1b[36m"))
	fmt.Fprintln(s.out, args...)
}

// Warning writes a diagnostic line regardless of which channels are
// enabled (matches the original's always-on Warning() stream). A nil or
// Muted Sink writes nothing.
func (s *Sink) Warning(args ...any) {
	if s == nil || s.Muted {
		return
	}
	fmt.Fprintf(s.out, "[%s] ", s.tag("WARNING", "\x1b[33m"))
	fmt.Fprintln(s.out, args...)
}
