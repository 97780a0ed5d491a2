package symtab

import (
	"testing"

	"github.com/pasc-lang/pasc/internal/types"
)

func TestDeclareAndLookupAcrossScopes(t *testing.T) {
	st := New()
	if err := st.Declare("x", Var{Type: types.IntegerType, Level: Global, Addr: 0}, 1, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	st.Push()
	if err := st.Declare("y", Var{Type: types.RealType, Level: Local, Addr: 0}, 2, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := st.Lookup("x"); !ok {
		t.Fatal("expected to find outer 'x' from inner scope")
	}
	if _, ok := st.Lookup("y"); !ok {
		t.Fatal("expected to find local 'y'")
	}

	st.Pop()
	if _, ok := st.Lookup("y"); ok {
		t.Fatal("'y' should not be visible after popping its scope")
	}
}

func TestRedeclarationInSameScopeFails(t *testing.T) {
	st := New()
	_ = st.Declare("x", Var{Type: types.IntegerType}, 1, false)
	err := st.Declare("x", Var{Type: types.RealType}, 2, false)
	if err == nil {
		t.Fatal("expected redeclaration error")
	}
	if _, ok := err.(*RedeclarationError); !ok {
		t.Fatalf("expected *RedeclarationError, got %T", err)
	}
}

func TestShadowingBuiltinFails(t *testing.T) {
	st := New()
	_ = st.Declare("length", Builtin{}, 0, true)

	st.Push()
	err := st.Declare("length", Var{Type: types.IntegerType}, 5, false)
	if err == nil {
		t.Fatal("expected shadow error")
	}
	if _, ok := err.(*ShadowError); !ok {
		t.Fatalf("expected *ShadowError, got %T", err)
	}
}

func TestResetClearsNestedScopes(t *testing.T) {
	st := New()
	_ = st.Declare("x", Var{Type: types.IntegerType}, 1, false)
	st.Push()
	_ = st.Declare("y", Var{Type: types.IntegerType}, 2, false)

	st.Reset()
	if st.Depth() != 0 {
		t.Fatalf("expected depth 0 after reset, got %d", st.Depth())
	}
	if _, ok := st.Lookup("x"); ok {
		t.Fatal("expected global scope cleared after reset")
	}
}

func TestReadonlyTrackerNesting(t *testing.T) {
	r := NewReadonlyTracker()
	r.Enter("i")
	r.Enter("i")
	if !r.IsReadonly("i") {
		t.Fatal("expected 'i' to be readonly")
	}
	r.Exit("i")
	if !r.IsReadonly("i") {
		t.Fatal("expected 'i' to remain readonly with one outstanding Enter")
	}
	r.Exit("i")
	if r.IsReadonly("i") {
		t.Fatal("expected 'i' to no longer be readonly")
	}
}
