// Package types implements the Pascal-subset type system: a small closed
// set of primitive types plus one-dimensional static-range arrays, Pascal's
// integer-to-real widening rule, and the closed built-in-function overload
// table.
package types

import "fmt"

// Kind tags which variant a Type value holds.
type Kind int

const (
	Integer Kind = iota
	Real
	Boolean
	Char
	String
	Array
)

// Type is a tagged variant: Lo/Hi/Elem are only meaningful when Kind is
// Array. Equality between two Types is structural (see Equals).
type Type struct {
	Kind Kind
	Lo   int64
	Hi   int64
	Elem *Type
}

var (
	IntegerType = Type{Kind: Integer}
	RealType    = Type{Kind: Real}
	BooleanType = Type{Kind: Boolean}
	CharType    = Type{Kind: Char}
	StringType  = Type{Kind: String}
)

// NewArray builds an array(lo..hi) of element, the bound check (lo<=hi) is
// the caller's responsibility (it is a semantic error, reported with the
// declaration's line, not a panic).
func NewArray(lo, hi int64, elem Type) Type {
	return Type{Kind: Array, Lo: lo, Hi: hi, Elem: &elem}
}

// Size returns the number of elements of an array type.
func (t Type) Size() int64 {
	if t.Kind != Array {
		return 0
	}
	return t.Hi - t.Lo + 1
}

// Equals reports structural equality.
func (t Type) Equals(o Type) bool {
	if t.Kind != o.Kind {
		return false
	}
	if t.Kind != Array {
		return true
	}
	return t.Lo == o.Lo && t.Hi == o.Hi && t.Elem.Equals(*o.Elem)
}

// IsArray reports whether t is an array(...) type.
func (t Type) IsArray() bool { return t.Kind == Array }

// IsNumeric reports whether t is integer or real.
func IsNumeric(t Type) bool { return t.Kind == Integer || t.Kind == Real }

// NumericResult returns the Pascal promotion result of combining two
// numeric operands: real if either is real, else integer.
func NumericResult(t1, t2 Type) Type {
	if t1.Kind == Real || t2.Kind == Real {
		return RealType
	}
	return IntegerType
}

// AssignCompat reports whether a value of type rhs may be assigned (or
// passed as an argument) to a location of type lhs. The only widening
// permitted is integer into a real target; every other pairing requires an
// exact structural match.
func AssignCompat(lhs, rhs Type) bool {
	if lhs.Equals(rhs) {
		return true
	}
	return lhs.Kind == Real && rhs.Kind == Integer
}

// String renders a human-readable type name for diagnostics.
func (t Type) String() string {
	switch t.Kind {
	case Integer:
		return "integer"
	case Real:
		return "real"
	case Boolean:
		return "boolean"
	case Char:
		return "char"
	case String:
		return "string"
	case Array:
		return fmt.Sprintf("array[%d..%d] of %s", t.Lo, t.Hi, t.Elem)
	default:
		return "<unknown type>"
	}
}
