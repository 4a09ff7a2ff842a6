// Package diag implements the compiler's abstract Diagnostics sink.
//
// The core phases (pp, token, parser, sema, spirv) never format or print
// anything themselves; they report Diagnostic values to a Sink and, for
// Error-kind diagnostics, treat the report as terminal.
package diag

import "fmt"

// Kind distinguishes the four diagnostic severities.
type Kind uint8

const (
	Info Kind = iota
	Debug
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Diagnostic is a single reported message with source location.
// Line and Column are 1-based; a File of "" or Line of 0 means the
// diagnostic has no associated source position (e.g. a CLI-level error).
type Diagnostic struct {
	Kind    Kind
	File    string
	Line    int
	Column  int
	Message string
}

// Error implements the error interface so a Diagnostic can be returned
// directly from a phase that wants to unwind immediately.
func (d Diagnostic) Error() string {
	if d.Line == 0 {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Kind, d.Message)
}

// Sink receives diagnostics as phases produce them. Implementations must
// be safe to call repeatedly within one single-threaded compilation; they
// are never shared across concurrent compilations.
type Sink interface {
	Report(d Diagnostic)
	HasErrors() bool
}

// Reportf is a convenience wrapper that builds a Diagnostic from a
// printf-style message and reports it.
func Reportf(s Sink, kind Kind, file string, line, col int, format string, args ...any) {
	s.Report(Diagnostic{
		Kind:    kind,
		File:    file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	})
}
