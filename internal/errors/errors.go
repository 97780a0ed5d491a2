// Package errors formats compiler diagnostics with source context,
// line/column information, and a caret pointing at the offending position.
//
// Every kind from spec.md §7 (lexical, syntactic, semantic, internal) is a
// constructor over the single CompilerError type rather than a separate
// error hierarchy: all of them are fatal to the one compilation in
// progress and are surfaced to the driver with a message carrying the line
// number, so there is nothing kind-specific about how they are reported.
package errors

import (
	"fmt"
	"strings"

	"github.com/pasc-lang/pasc/internal/lexer"
)

// Kind classifies where in the pipeline a CompilerError originated.
type Kind int

const (
	Lexical Kind = iota
	Syntactic
	Semantic
	Internal
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntactic:
		return "syntax error"
	case Semantic:
		return "semantic error"
	default:
		return "internal error"
	}
}

// CompilerError represents the single fatal diagnostic of a compilation.
// spec.md §7 requires no partial listing on failure and no retries, so the
// driver only ever needs to carry one of these back to its caller.
type CompilerError struct {
	Kind    Kind
	Message string
	Source  string
	Pos     lexer.Position
}

func newError(kind Kind, pos lexer.Position, format string, args ...any) *CompilerError {
	return &CompilerError{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Lex builds a lexical-error diagnostic.
func Lex(pos lexer.Position, format string, args ...any) *CompilerError {
	return newError(Lexical, pos, format, args...)
}

// Syntax builds a syntactic-error diagnostic.
func Syntax(pos lexer.Position, format string, args ...any) *CompilerError {
	return newError(Syntactic, pos, format, args...)
}

// Sem builds a semantic-error diagnostic.
func Sem(pos lexer.Position, format string, args ...any) *CompilerError {
	return newError(Semantic, pos, format, args...)
}

// Bug builds an internal-invariant-breach diagnostic; reaching one means the
// compiler itself has a bug, not the input program.
func Bug(pos lexer.Position, format string, args ...any) *CompilerError {
	return newError(Internal, pos, format, args...)
}

// WithSource attaches the full source text so Format can render context.
func (e *CompilerError) WithSource(source string) *CompilerError {
	e.Source = source
	return e
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format()
}

// Format renders "<kind> at <line>:<col>: <message>" plus, when source text
// is available, the offending line and a caret under the column.
func (e *CompilerError) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at %d:%d: %s", e.Kind, e.Pos.Line, e.Pos.Column, e.Message)

	if line := e.sourceLine(e.Pos.Line); line != "" {
		sb.WriteString("\n")
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		col := e.Pos.Column
		if col < 1 {
			col = 1
		}
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+col-1))
		sb.WriteString("^")
	}

	return sb.String()
}

func (e *CompilerError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}
