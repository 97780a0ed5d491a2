package types

import "testing"

func TestAssignCompatWidensIntegerToReal(t *testing.T) {
	if !AssignCompat(RealType, IntegerType) {
		t.Fatal("expected real := integer to be compatible")
	}
	if AssignCompat(IntegerType, RealType) {
		t.Fatal("integer := real must not be compatible (no narrowing)")
	}
}

func TestAssignCompatStructuralArrays(t *testing.T) {
	a := NewArray(1, 3, IntegerType)
	b := NewArray(1, 3, IntegerType)
	c := NewArray(1, 4, IntegerType)
	if !AssignCompat(a, b) {
		t.Fatal("identical array bounds/element should be compatible")
	}
	if AssignCompat(a, c) {
		t.Fatal("different bounds should not be compatible")
	}
}

func TestNumericResult(t *testing.T) {
	if NumericResult(IntegerType, IntegerType).Kind != Integer {
		t.Fatal("int+int should stay integer")
	}
	if NumericResult(IntegerType, RealType).Kind != Real {
		t.Fatal("int+real should promote to real")
	}
}

func TestArraySize(t *testing.T) {
	a := NewArray(1, 3, IntegerType)
	if a.Size() != 3 {
		t.Fatalf("expected size 3, got %d", a.Size())
	}
}

func TestResolveBuiltinArityAndClass(t *testing.T) {
	if _, ok := ResolveBuiltin("abs", []Type{IntegerType}); !ok {
		t.Fatal("abs(integer) should resolve")
	}
	if _, ok := ResolveBuiltin("abs", []Type{RealType}); !ok {
		t.Fatal("abs(real) should resolve")
	}
	if _, ok := ResolveBuiltin("abs", []Type{StringType}); ok {
		t.Fatal("abs(string) should not resolve")
	}
	if _, ok := ResolveBuiltin("length", []Type{NewArray(1, 5, CharType)}); !ok {
		t.Fatal("length(array) should resolve")
	}
	if _, ok := ResolveBuiltin("concat", []Type{StringType}); ok {
		t.Fatal("concat/1 should not resolve (arity mismatch)")
	}
}
