package errors

import (
	"strings"
	"testing"

	"github.com/pasc-lang/pasc/internal/lexer"
)

func TestFormatIncludesKindPositionAndMessage(t *testing.T) {
	err := Sem(lexer.Position{Line: 3, Column: 5}, "undeclared identifier %q", "x")
	out := err.Format()
	if !strings.Contains(out, "semantic error") {
		t.Fatalf("expected kind in output, got %q", out)
	}
	if !strings.Contains(out, "3:5") {
		t.Fatalf("expected position in output, got %q", out)
	}
	if !strings.Contains(out, `undeclared identifier "x"`) {
		t.Fatalf("expected message in output, got %q", out)
	}
}

func TestFormatWithSourceShowsCaret(t *testing.T) {
	err := Syntax(lexer.Position{Line: 2, Column: 3}, "unexpected token").
		WithSource("line one\nbad token\nline three")
	out := err.Format()
	if !strings.Contains(out, "bad token") {
		t.Fatalf("expected source line rendered, got %q", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("expected caret rendered, got %q", out)
	}
}
