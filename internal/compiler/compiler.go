// Package compiler wires the lexer, symbol table, and parser together into
// a single Compile entry point, the way the upstream driver wires its own
// lexer/parser/semantic/bytecode stages behind one call.
package compiler

import (
	"github.com/pasc-lang/pasc/internal/parser"
	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

// Driver owns the reusable compilation Context, so a long-lived process
// (a REPL, a language server) can compile many programs without
// reallocating the symbol table and emitter on every call.
type Driver struct {
	ctx *parser.Context
}

// New returns a Driver with its built-in functions pre-registered.
func New() *Driver {
	d := &Driver{ctx: parser.NewContext()}
	registerBuiltins(d.ctx)
	return d
}

// registerBuiltins declares every name in the closed built-in set at global
// scope as an opaque symtab.Builtin marker, so ordinary declarations of the
// same name are rejected as shadowing rather than silently accepted.
func registerBuiltins(ctx *parser.Context) {
	for name := range types.Builtins {
		if err := ctx.Symtab.Declare(name, symtab.Builtin{}, 0, true); err != nil {
			panic("compiler: failed to register builtin " + name + ": " + err.Error())
		}
	}
}

// Compile translates one Pascal-subset source program into its stack-VM
// assembly listing. The Driver's context is reset first, so builtins are
// the only thing a fresh compilation inherits from a previous one.
func (d *Driver) Compile(source string) (string, error) {
	d.ctx.Reset()
	registerBuiltins(d.ctx)

	p, err := parser.New(d.ctx, source)
	if err != nil {
		return "", err
	}
	return p.Program()
}

// Compile is a convenience wrapper for one-shot compilation, building and
// discarding a Driver.
func Compile(source string) (string, error) {
	return New().Compile(source)
}
