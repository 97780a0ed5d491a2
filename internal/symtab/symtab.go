// Package symtab implements the lexically scoped symbol table: a stack of
// name-to-entry mappings supporting declaration, lookup, scope push/pop,
// and builtin-shadowing rules.
package symtab

import (
	"fmt"

	"github.com/pasc-lang/pasc/internal/types"
)

// Level distinguishes a variable's storage class for addressing purposes.
type Level int

const (
	Global Level = iota
	Local
)

// Param is one formal parameter of a function or procedure declaration.
type Param struct {
	Name string
	Type types.Type
	Line int
}

// Var is a variable entry: a global index or a frame-relative offset.
type Var struct {
	Type  types.Type
	Level Level
	Addr  int64
}

// Func is a user-defined function entry.
type Func struct {
	Params []Param
	Ret    types.Type
	Label  string
}

// Proc is a user-defined procedure entry.
type Proc struct {
	Params []Param
	Label  string
}

// Builtin is an opaque marker occupying the global scope for one of the
// closed set of built-in functions; resolution of an actual call goes
// through types.ResolveBuiltin, not through this entry's fields.
type Builtin struct{}

// Entry is the tagged union of symbol kinds a name can resolve to.
type Entry interface {
	isEntry()
}

func (Var) isEntry()     {}
func (Func) isEntry()    {}
func (Proc) isEntry()    {}
func (Builtin) isEntry() {}

// RedeclarationError reports declaring a name that already exists in the
// current (innermost) scope.
type RedeclarationError struct {
	Name string
	Line int
}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("'%s' is already declared in this scope (line %d)", e.Name, e.Line)
}

// ShadowError reports a user declaration attempting to shadow a builtin.
type ShadowError struct {
	Name string
	Line int
}

func (e *ShadowError) Error() string {
	return fmt.Sprintf("'%s' is a built-in and cannot be redeclared (line %d)", e.Name, e.Line)
}

// Table is the lexically scoped stack of name->entry mappings. Scope 0 is
// always the global scope.
type Table struct {
	scopes []map[string]Entry
}

// New returns a Table with only the global scope present.
func New() *Table {
	t := &Table{}
	t.Reset()
	return t
}

// Reset clears every scope back to a single empty global scope. Used by the
// driver between compilations so the same Table instance can be reused.
func (t *Table) Reset() {
	t.scopes = []map[string]Entry{{}}
}

// Push opens a new, innermost scope (used when entering a subprogram body).
func (t *Table) Push() {
	t.scopes = append(t.scopes, map[string]Entry{})
}

// Pop closes the innermost scope. It must be paired with a prior Push.
func (t *Table) Pop() {
	if len(t.scopes) <= 1 {
		panic("symtab: Pop called without a matching Push")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth returns the number of scopes beyond global (0 at global scope).
func (t *Table) Depth() int {
	return len(t.scopes) - 1
}

// Declare adds name->entry to the innermost scope. It fails if name already
// exists in that scope, or if name is a global builtin being shadowed by a
// non-builtin declaration. declaringBuiltin must be true only when the
// driver is pre-registering the builtin itself.
func (t *Table) Declare(name string, entry Entry, line int, declaringBuiltin bool) error {
	top := t.scopes[len(t.scopes)-1]
	if _, exists := top[name]; exists {
		return &RedeclarationError{Name: name, Line: line}
	}

	if !declaringBuiltin {
		if global, ok := t.scopes[0][name]; ok {
			if _, isBuiltin := global.(Builtin); isBuiltin {
				return &ShadowError{Name: name, Line: line}
			}
		}
	}

	top[name] = entry
	return nil
}

// Lookup searches from innermost to outermost scope.
func (t *Table) Lookup(name string) (Entry, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if e, ok := t.scopes[i][name]; ok {
			return e, true
		}
	}
	return nil, false
}

// LookupGlobal reports whether name is declared at global scope specifically.
func (t *Table) LookupGlobal(name string) (Entry, bool) {
	e, ok := t.scopes[0][name]
	return e, ok
}
