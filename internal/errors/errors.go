// Package errors renders compiler diagnostics with source context: a
// file:line:col header, the offending source line, and a caret pointing at
// the column, matching spec.md §7's "free-form human text on stderr"
// requirement with the structure actually useful for tracking one down.
package errors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/tinybc/pkg/token"
)

// Kind classifies a diagnostic by the pipeline stage that raised it,
// matching the taxonomy in spec.md §7.
type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
	Target
	IO
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case Target:
		return "target error"
	case IO:
		return "I/O error"
	default:
		return "error"
	}
}

// CompilerError is a single diagnostic with enough context to render a
// caret under the offending source column.
type CompilerError struct {
	Kind    Kind
	Pos     token.Position
	Message string
	Source  string
	File    string
}

// New creates a CompilerError.
func New(kind Kind, pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Kind: kind, Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (e *CompilerError) Error() string { return e.Format() }

// Format renders the diagnostic: a header naming the file/position, the
// source line, and a caret under the column.
func (e *CompilerError) Format() string {
	var sb strings.Builder

	if e.File != "" {
		fmt.Fprintf(&sb, "%s: %s in %s:%d:%d\n", e.Kind, e.Message, e.File, e.Pos.Line, e.Pos.Column)
	} else {
		fmt.Fprintf(&sb, "%s: %s at line %d:%d\n", e.Kind, e.Message, e.Pos.Line, e.Pos.Column)
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		if e.Pos.Column > 0 {
			sb.WriteString(strings.Repeat(" ", len(prefix)+e.Pos.Column-1))
			sb.WriteString("^\n")
		}
	}

	return sb.String()
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatAll renders a batch of diagnostics, one after another, separated by
// a blank line — the shape the parser's accumulated ParseErrors and the IR
// lowerer's accumulated semantic diagnostics are printed in.
func FormatAll(errs []*CompilerError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Format()
	}
	return strings.Join(parts, "\n")
}
