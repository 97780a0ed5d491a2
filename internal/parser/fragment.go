package parser

import "github.com/pasc-lang/pasc/internal/types"

// fragment is the result of translating one expression: the code that
// leaves its value on top of the stack, its static type, and - when both
// operands folded - its compile-time constant value (int64, float64, or
// bool). const is nil whenever folding is undefined for the expression.
type fragment struct {
	Type  types.Type
	Const any
	Code  string
}
