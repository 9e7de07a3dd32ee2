package diag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Severity ranks a diagnostic message.
type Severity int

const (
	Verbose Severity = iota
	Info
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Verbose:
		return "verbose"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Message is one diagnostic. Line and Column are 1-based; zero means the
// message has no source position.
type Message struct {
	Severity Severity `json:"-"`
	Level    string   `json:"severity"`
	Line     int      `json:"line,omitempty"`
	Column   int      `json:"column,omitempty"`
	Text     string   `json:"text"`
}

// String renders the message the way every sink prints it.
func (m Message) String() string {
	if m.Line > 0 {
		return fmt.Sprintf("line %d column %d: %s", m.Line, m.Column, m.Text)
	}
	return m.Text
}

// Sink receives diagnostics. The engine only produces messages; sinks decide
// how they are rendered.
type Sink interface {
	Emit(Message)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Message)

func (f SinkFunc) Emit(m Message) { f(m) }

// Discard drops every message.
var Discard Sink = SinkFunc(func(Message) {})

func emit(s Sink, sev Severity, line, col int, format string, args ...any) {
	if s == nil {
		return
	}
	s.Emit(Message{
		Severity: sev,
		Level:    sev.String(),
		Line:     line,
		Column:   col,
		Text:     normalizeNewLine(fmt.Sprintf(format, args...)),
	})
}

// Verbosef emits a positioned verbose message.
func Verbosef(s Sink, line, col int, format string, args ...any) {
	emit(s, Verbose, line, col, format, args...)
}

// Warnf emits a positioned warning.
func Warnf(s Sink, line, col int, format string, args ...any) {
	emit(s, Warning, line, col, format, args...)
}

// Infof emits an unpositioned info message.
func Infof(s Sink, format string, args ...any) {
	emit(s, Info, 0, 0, format, args...)
}

// Errorf emits an unpositioned error message.
func Errorf(s Sink, format string, args ...any) {
	emit(s, Error, 0, 0, format, args...)
}

func normalizeNewLine(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Recorder collects messages so they can be inspected or replayed later,
// e.g. after a file processed on a worker goroutine has finished.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Emit(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Count returns how many messages of the given severity were recorded.
func (r *Recorder) Count(sev Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.Severity == sev {
			n++
		}
	}
	return n
}

// Replay forwards the recorded messages, in order, to dst.
func (r *Recorder) Replay(dst Sink) {
	for _, m := range r.Messages() {
		dst.Emit(m)
	}
}

// SlogSink writes diagnostics to a structured logger. Verbose maps to Debug.
type SlogSink struct {
	Log *slog.Logger
}

func (s SlogSink) Emit(m Message) {
	var level slog.Level
	switch m.Severity {
	case Verbose:
		level = slog.LevelDebug
	case Info:
		level = slog.LevelInfo
	case Warning:
		level = slog.LevelWarn
	default:
		level = slog.LevelError
	}
	attrs := make([]any, 0, 4)
	if m.Line > 0 {
		attrs = append(attrs, "line", m.Line, "column", m.Column)
	}
	s.Log.Log(context.Background(), level, m.Text, attrs...)
}

// Tee fans a message out to several sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(m Message) {
		for _, s := range sinks {
			if s != nil {
				s.Emit(m)
			}
		}
	})
}
