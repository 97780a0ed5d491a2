// Package emitter provides the small set of code-generation helpers shared
// across the parser's reduction actions: unique label allocation and the
// variable load/store/default-value snippets that depend only on a symbol's
// storage class, not on the surrounding expression.
package emitter

import (
	"fmt"
	"strings"

	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

// Emitter allocates unique labels for one compilation. Instruction text
// itself is built up by the parser as plain strings (see internal/parser);
// Emitter only owns the one piece of state that must stay unique and
// monotonic across an entire compilation: the label counter.
type Emitter struct {
	labelCounter int
}

// New returns an Emitter with its label counter at zero.
func New() *Emitter {
	return &Emitter{}
}

// Reset zeroes the label counter for a new compilation.
func (e *Emitter) Reset() {
	e.labelCounter = 0
}

// NewLabel returns a fresh, compilation-unique label of the form
// "{sanitized_prefix}{N}". Non-alphanumeric characters are stripped from
// prefix; an empty result defaults to "L".
func (e *Emitter) NewLabel(prefix string) string {
	e.labelCounter++

	var sb strings.Builder
	for _, r := range prefix {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	clean := sb.String()
	if clean == "" {
		clean = "L"
	}
	return fmt.Sprintf("%s%d", clean, e.labelCounter)
}

// EmitLabel renders a label definition line.
func EmitLabel(label string) string {
	return label + ":\n"
}

// GenLoadVar emits the instruction that pushes v's current value.
func GenLoadVar(v symtab.Var) string {
	if v.Level == symtab.Global {
		return fmt.Sprintf("PUSHG %d\n", v.Addr)
	}
	return fmt.Sprintf("PUSHL %d\n", v.Addr)
}

// GenStoreVar emits the instruction that pops the top of stack into v.
func GenStoreVar(v symtab.Var) string {
	if v.Level == symtab.Global {
		return fmt.Sprintf("STOREG %d\n", v.Addr)
	}
	return fmt.Sprintf("STOREL %d\n", v.Addr)
}

// PushDefaultForType emits the instruction that pre-allocates a slot of
// type t (used for the implicit function-return slot at call sites, and
// could equally seed any other zero-valued allocation).
func PushDefaultForType(t types.Type) string {
	switch t.Kind {
	case types.Real:
		return "PUSHF 0.0\n"
	case types.String:
		return `PUSHS ""` + "\n"
	default:
		return "PUSHI 0\n"
	}
}
