// Package diagnostics is the single-writer message sink shared across every
// compiler stage: lexer, parser, and semantic analysis all emit through it,
// and pass N's messages are always flushed before pass N+1's.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/mjc-lang/minijavac/internal/sourceview"
)

// Level is the severity of an emitted message.
type Level uint8

const (
	Error Level = iota
	Warning
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "diagnostic"
	}
}

// Message is one emitted diagnostic, optionally tied to a source span.
// Kind is an optional taxonomy tag (e.g. a stringified types.ErrorKind);
// it is empty for diagnostics with no finer-grained classification, such
// as a lexer or parser error.
type Message struct {
	Level   Level
	Text    string
	Span    sourceview.Span
	Spanned bool
	Kind    string
}

// Sink is the mutably-borrowed, single-writer diagnostic emitter. One Sink
// is owned per compilation; it is never shared across goroutines.
type Sink struct {
	w         io.Writer
	Colorize  bool
	errors    int
	warnings  int
	messages  []Message
}

// New returns a Sink writing rendered diagnostics to w. Colorize enables
// ANSI color codes on the level header and carets only (never on the
// quoted source text itself).
func New(w io.Writer, colorize bool) *Sink {
	return &Sink{w: w, Colorize: colorize}
}

// Emit records and renders a plain (span-less) message.
func (s *Sink) Emit(level Level, text string) {
	s.record(Message{Level: level, Text: text})
}

// EmitSpanned records and renders a message anchored at span.
func (s *Sink) EmitSpanned(level Level, text string, span sourceview.Span) {
	s.record(Message{Level: level, Text: text, Span: span, Spanned: true})
}

// EmitSpannedKind is EmitSpanned plus a taxonomy tag, for callers (like
// semantic analysis) whose diagnostics fall into a caller-defined kind a
// later consumer may want to branch on, e.g. to distinguish a
// RedefinitionError from every other semantic error.
func (s *Sink) EmitSpannedKind(level Level, kind, text string, span sourceview.Span) {
	s.record(Message{Level: level, Text: text, Span: span, Spanned: true, Kind: kind})
}

func (s *Sink) record(m Message) {
	switch m.Level {
	case Error:
		s.errors++
	case Warning:
		s.warnings++
	}
	s.messages = append(s.messages, m)
	s.render(m)
}

// Errored reports whether any error-level message has been emitted.
func (s *Sink) Errored() bool { return s.errors > 0 }

// Counts returns the number of errors and warnings emitted so far.
func (s *Sink) Counts() (errors, warnings int) { return s.errors, s.warnings }

// Messages returns every message emitted so far, in emission order.
func (s *Sink) Messages() []Message { return s.messages }

// WriteStatistics prints the final summary line.
func (s *Sink) WriteStatistics() {
	if s.errors == 0 {
		fmt.Fprintln(s.w, "Compilation finished successfully")
		return
	}
	noun := "errors"
	if s.errors == 1 {
		noun = "error"
	}
	fmt.Fprintf(s.w, "Compilation aborted due to %d %s\n", s.errors, noun)
}
