package parser

import (
	"strings"
	"testing"

	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

func newTestContext() *Context {
	ctx := NewContext()
	for name := range types.Builtins {
		if err := ctx.Symtab.Declare(name, symtab.Builtin{}, 0, true); err != nil {
			panic(err)
		}
	}
	return ctx
}

func compileOK(t *testing.T, source string) string {
	t.Helper()
	p, err := New(newTestContext(), source)
	if err != nil {
		t.Fatalf("unexpected error priming parser: %v", err)
	}
	asm, err := p.Program()
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return asm
}

func compileErr(t *testing.T, source string) error {
	t.Helper()
	p, err := New(newTestContext(), source)
	if err != nil {
		return err
	}
	_, err = p.Program()
	if err == nil {
		t.Fatalf("expected a compile error, got none")
	}
	return err
}

func TestRecursiveFunctionCall(t *testing.T) {
	asm := compileOK(t, `program p;
function fact(n: integer): integer;
begin
	if n < 2 then fact := 1 else fact := n * fact(n - 1)
end;
begin
	writeln(fact(5))
end.`)

	if !strings.Contains(asm, "PUSHA FACT") {
		t.Errorf("expected a call to FACT, got:\n%s", asm)
	}
	if strings.Count(asm, "RETURN\n") != 1 {
		t.Errorf("expected exactly one RETURN in fact's body, got:\n%s", asm)
	}
}

func TestBareProcedureCallEmitsNoPop(t *testing.T) {
	asm := compileOK(t, `program p;
procedure greet;
begin
	writeln(1)
end;
begin
	greet
end.`)

	idx := strings.Index(asm, "PUSHA GREET")
	if idx < 0 {
		t.Fatalf("expected a call to GREET, got:\n%s", asm)
	}
	after := asm[idx:]
	callIdx := strings.Index(after, "CALL\n")
	if callIdx < 0 {
		t.Fatalf("expected CALL after PUSHA GREET, got:\n%s", after)
	}
	if rest := after[callIdx+len("CALL\n"):]; strings.HasPrefix(rest, "POP") {
		t.Errorf("bare zero-arg procedure call must not emit POP, got:\n%s", asm)
	}
}

func TestParenthesizedProcedureCallEmitsPop(t *testing.T) {
	asm := compileOK(t, `program p;
procedure inc(x: integer);
begin
end;
begin
	inc(1)
end.`)

	idx := strings.Index(asm, "PUSHA INC")
	if idx < 0 {
		t.Fatalf("expected a call to INC, got:\n%s", asm)
	}
	if rest := asm[idx:]; !strings.Contains(rest, "CALL\nPOP 1\n") {
		t.Errorf("expected CALL followed by POP 1, got:\n%s", rest)
	}
}

func TestParameterMayNotShareFunctionName(t *testing.T) {
	err := compileErr(t, `program p;
function f(f: integer): integer;
begin
	f := f
end;
begin
end.`)
	if !strings.Contains(err.Error(), "may not share its function's name") {
		t.Errorf("expected a name-collision error, got: %v", err)
	}
}

func TestDowntoLoopUsesDescendingOpcodes(t *testing.T) {
	asm := compileOK(t, `program p;
var i: integer;
begin
	for i := 3 downto 1 do writeln(i)
end.`)

	if !strings.Contains(asm, "INF\n") {
		t.Errorf("expected INF comparison for a descending loop, got:\n%s", asm)
	}
	if !strings.Contains(asm, "SUB\n") {
		t.Errorf("expected SUB step for a descending loop, got:\n%s", asm)
	}
}

func TestDirectAssignmentDoesNotWidenIntegerToReal(t *testing.T) {
	asm := compileOK(t, `program p;
var r: real;
begin
	r := 1
end.`)

	if strings.Contains(asm, "ITOF") {
		t.Errorf("direct assignment must not emit ITOF, got:\n%s", asm)
	}
}

func TestArgumentPassingWidensIntegerToReal(t *testing.T) {
	asm := compileOK(t, `program p;
procedure takeReal(r: real);
begin
end;
begin
	takeReal(1)
end.`)

	if !strings.Contains(asm, "ITOF") {
		t.Errorf("argument passing must widen integer to real, got:\n%s", asm)
	}
}
