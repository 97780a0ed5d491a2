package emitter

import (
	"testing"

	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

func TestNewLabelIsUniqueAndSanitized(t *testing.T) {
	e := New()
	a := e.NewLabel("IF_END")
	b := e.NewLabel("IF_END")
	if a == b {
		t.Fatalf("expected unique labels, got %q twice", a)
	}
	if a != "IFEND1" {
		t.Fatalf("expected sanitized prefix IFEND1, got %q", a)
	}
	if b != "IFEND2" {
		t.Fatalf("expected IFEND2, got %q", b)
	}
}

func TestNewLabelDefaultsPrefix(t *testing.T) {
	e := New()
	lbl := e.NewLabel("___")
	if lbl != "L1" {
		t.Fatalf("expected default prefix L1, got %q", lbl)
	}
}

func TestGenLoadStoreVarGlobalVsLocal(t *testing.T) {
	g := symtab.Var{Level: symtab.Global, Addr: 3}
	l := symtab.Var{Level: symtab.Local, Addr: -2}

	if GenLoadVar(g) != "PUSHG 3\n" {
		t.Fatalf("unexpected global load: %q", GenLoadVar(g))
	}
	if GenStoreVar(g) != "STOREG 3\n" {
		t.Fatalf("unexpected global store: %q", GenStoreVar(g))
	}
	if GenLoadVar(l) != "PUSHL -2\n" {
		t.Fatalf("unexpected local load: %q", GenLoadVar(l))
	}
	if GenStoreVar(l) != "STOREL -2\n" {
		t.Fatalf("unexpected local store: %q", GenStoreVar(l))
	}
}

func TestPushDefaultForType(t *testing.T) {
	cases := []struct {
		t    types.Type
		want string
	}{
		{types.RealType, "PUSHF 0.0\n"},
		{types.StringType, "PUSHS \"\"\n"},
		{types.IntegerType, "PUSHI 0\n"},
		{types.BooleanType, "PUSHI 0\n"},
		{types.CharType, "PUSHI 0\n"},
	}
	for _, c := range cases {
		if got := PushDefaultForType(c.t); got != c.want {
			t.Fatalf("PushDefaultForType(%v) = %q, want %q", c.t, got, c.want)
		}
	}
}
