package compiler

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

func mustCompile(t *testing.T, source string) string {
	t.Helper()
	asm, err := Compile(source)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	return asm
}

func mustFail(t *testing.T, source string) error {
	t.Helper()
	_, err := Compile(source)
	if err == nil {
		t.Fatalf("expected a compile error, got none")
	}
	return err
}

// TestArithmeticAssignAndWriteln covers scenario 1: constant folding is not
// required for correctness here, only correct operator ordering and a
// global store/load round trip.
func TestArithmeticAssignAndWriteln(t *testing.T) {
	asm := mustCompile(t, "program p; var x:integer; begin x := 1+2*3; writeln(x) end.")

	for _, want := range []string{"PUSHI 1", "PUSHI 2", "PUSHI 3", "MUL", "ADD", "STOREG 0", "PUSHG 0", "WRITEI", "WRITELN"} {
		if !strings.Contains(asm, want) {
			t.Errorf("expected assembly to contain %q, got:\n%s", want, asm)
		}
	}
	if !strings.HasPrefix(asm, "JUMP MAIN\n") {
		t.Errorf("expected listing to start with JUMP MAIN, got:\n%s", asm)
	}
	if !strings.Contains(asm, "MAIN:\n") || !strings.Contains(asm, "START\n") || !strings.Contains(asm, "STOP\n") {
		t.Errorf("expected MAIN/START/STOP markers, got:\n%s", asm)
	}
}

// TestArrayIndexOutOfRangeRejected covers scenario 2.
func TestArrayIndexOutOfRangeRejected(t *testing.T) {
	err := mustFail(t, "program p; var a:array[1..3] of integer; begin a[4] := 0 end.")
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("expected an out-of-range error, got: %v", err)
	}
}

// TestFunctionMustAssignReturn covers scenario 3.
func TestFunctionMustAssignReturn(t *testing.T) {
	err := mustFail(t, "program p; function f(x:integer):integer; begin end; begin end.")
	if !strings.Contains(err.Error(), "does not assign its return value") {
		t.Errorf("expected a missing-return error, got: %v", err)
	}
}

// TestForControlVariableReadonly covers scenario 4.
func TestForControlVariableReadonly(t *testing.T) {
	err := mustFail(t, "program p; var i:integer; begin for i:=1 to 3 do i := i+1 end.")
	if !strings.Contains(err.Error(), "read-only") {
		t.Errorf("expected a read-only error, got: %v", err)
	}
}

// TestDivideByZeroConstantRejected covers scenario 5.
func TestDivideByZeroConstantRejected(t *testing.T) {
	err := mustFail(t, "program p; var r:real; begin r := 1 / 0 end.")
	if !strings.Contains(err.Error(), "divide by zero") {
		t.Errorf("expected a divide-by-zero error, got: %v", err)
	}
}

// TestStringLengthBuiltin covers scenario 6.
func TestStringLengthBuiltin(t *testing.T) {
	asm := mustCompile(t, "program p; var s:string; begin s := 'ok'; writeln(length(s)) end.")
	strlenIdx := strings.Index(asm, "STRLEN")
	writeiIdx := strings.Index(asm, "WRITEI")
	writelnIdx := strings.Index(asm, "WRITELN")
	if strlenIdx < 0 || writeiIdx < 0 || writelnIdx < 0 {
		t.Fatalf("expected STRLEN, WRITEI, WRITELN all present, got:\n%s", asm)
	}
	if !(strlenIdx < writeiIdx && writeiIdx < writelnIdx) {
		t.Errorf("expected STRLEN before WRITEI before WRITELN, got:\n%s", asm)
	}
}

func TestEveryLabelUniqueWithinACompilation(t *testing.T) {
	asm := mustCompile(t, `program p;
var i: integer;
begin
	for i := 1 to 3 do
		if i > 1 then writeln(i) else writeln(0);
	while i > 0 do i := i - 1
end.`)

	seen := map[string]bool{}
	for _, line := range strings.Split(asm, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasSuffix(line, ":") {
			continue
		}
		label := strings.TrimSuffix(line, ":")
		if label == "MAIN" {
			continue
		}
		if seen[label] {
			t.Errorf("label %q emitted more than once", label)
		}
		seen[label] = true
	}
}

// TestFunctionCallListing snapshots a full listing exercising a function
// with recursive calls, an if/else in its body, and a call from the main
// body - a representative end-to-end shape rather than a hand-checked
// assertion list.
func TestFunctionCallListing(t *testing.T) {
	asm := mustCompile(t, `program fib;
var n: integer;

function fib(k: integer): integer;
begin
	if k < 2 then
		fib := k
	else
		fib := fib(k - 1) + fib(k - 2)
end;

begin
	n := 6;
	writeln(fib(n))
end.`)

	snaps.MatchSnapshot(t, "fib_listing", asm)
}
