package parser

import (
	"github.com/pasc-lang/pasc/internal/emitter"
	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

// pendingKind distinguishes a latched subprogram header.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingFunc
	pendingProc
)

// pendingHeader is the one-slot latch between a function/procedure header
// reduction and the body-entry action that pushes its scope and frame.
type pendingHeader struct {
	kind   pendingKind
	name   string
	params []symtab.Param
	ret    types.Type // only meaningful when kind == pendingFunc
	label  string
	line   int
}

// activeSubprog tracks one entry of the stack of subprograms currently
// being compiled. block() also accepts subprogram declarations inside a
// subprogram body, so the stack can hold more than one entry; the emission
// rules - offset arithmetic, the implicit return slot - are expressed
// against "the innermost active subprogram".
type activeSubprog struct {
	kind  pendingKind
	name  string
	line  int
	arity int
}

// Context is the compiler-wide mutable state threaded through every
// reduction action: the symbol table, the label allocator, the running
// global/local address counters, and the several accumulation buffers
// spec.md's data model names. The driver builds one Context, Resets it
// between compilations and builds a new Parser over it for each one; Symtab,
// Emit and RO are reset in place rather than replaced, so external
// references to them stay valid.
type Context struct {
	Symtab *symtab.Table
	Emit   *emitter.Emitter
	RO     *symtab.ReadonlyTracker

	NextGlobalAddr int64

	nextLocalAddrStack []int64
	localInitStack     []string

	GlobalInitCode string
	SubprogCode    string

	pending activeSubprogPending

	activeSubprogs     []activeSubprog
	funcReturnAssigned []bool
}

type activeSubprogPending struct {
	set  bool
	hdr  pendingHeader
}

// NewContext builds a Context around a fresh symbol table and emitter.
func NewContext() *Context {
	c := &Context{
		Symtab: symtab.New(),
		Emit:   emitter.New(),
		RO:     symtab.NewReadonlyTracker(),
	}
	return c
}

// Reset clears every buffer and stack (including the underlying symbol
// table and emitter state) so the same Context can drive another,
// independent compilation.
func (c *Context) Reset() {
	c.Symtab.Reset()
	c.Emit.Reset()
	c.RO.Reset()

	c.NextGlobalAddr = 0
	c.nextLocalAddrStack = nil
	c.localInitStack = nil
	c.GlobalInitCode = ""
	c.SubprogCode = ""
	c.pending = activeSubprogPending{}
	c.activeSubprogs = nil
	c.funcReturnAssigned = nil
}

// latchHeader stashes a parsed function/procedure header until the body
// entry action consumes it.
func (c *Context) latchHeader(h pendingHeader) {
	c.pending = activeSubprogPending{set: true, hdr: h}
}

// takePendingHeader consumes and clears the latch.
func (c *Context) takePendingHeader() (pendingHeader, bool) {
	p := c.pending
	c.pending = activeSubprogPending{}
	return p.hdr, p.set
}

// pushLocals starts a new local-address frame at startAddr (0 for
// procedures, 1 for functions - offset 0 is reserved for the return slot).
func (c *Context) pushLocals(startAddr int64) {
	c.nextLocalAddrStack = append(c.nextLocalAddrStack, startAddr)
	c.localInitStack = append(c.localInitStack, "")
}

// popLocals returns and discards the innermost frame's accumulated
// allocation count and init code.
func (c *Context) popLocals() (nlocals int64, initCode string) {
	n := len(c.nextLocalAddrStack)
	nlocals = c.nextLocalAddrStack[n-1]
	initCode = c.localInitStack[n-1]
	c.nextLocalAddrStack = c.nextLocalAddrStack[:n-1]
	c.localInitStack = c.localInitStack[:n-1]
	return nlocals, initCode
}

// nextLocal allocates and returns the next local offset in the innermost
// frame, advancing the counter by one.
func (c *Context) nextLocal() int64 {
	n := len(c.nextLocalAddrStack) - 1
	addr := c.nextLocalAddrStack[n]
	c.nextLocalAddrStack[n]++
	return addr
}

// appendLocalInit appends code to the innermost frame's local-array
// allocation sequence.
func (c *Context) appendLocalInit(code string) {
	n := len(c.localInitStack) - 1
	c.localInitStack[n] += code
}

// inSubprogram reports whether declarations are currently being processed
// inside a function/procedure body rather than at global (program) scope.
func (c *Context) inSubprogram() bool {
	return len(c.nextLocalAddrStack) > 0
}

func (c *Context) pushSubprog(kind pendingKind, name string, line int, arity int) {
	c.activeSubprogs = append(c.activeSubprogs, activeSubprog{kind: kind, name: name, line: line, arity: arity})
	c.funcReturnAssigned = append(c.funcReturnAssigned, false)
}

func (c *Context) popSubprog() {
	c.activeSubprogs = c.activeSubprogs[:len(c.activeSubprogs)-1]
	c.funcReturnAssigned = c.funcReturnAssigned[:len(c.funcReturnAssigned)-1]
}

func (c *Context) currentSubprog() (activeSubprog, bool) {
	if len(c.activeSubprogs) == 0 {
		return activeSubprog{}, false
	}
	return c.activeSubprogs[len(c.activeSubprogs)-1], true
}

func (c *Context) markReturnAssigned() {
	if n := len(c.funcReturnAssigned); n > 0 {
		c.funcReturnAssigned[n-1] = true
	}
}

func (c *Context) returnAssigned() bool {
	if n := len(c.funcReturnAssigned); n > 0 {
		return c.funcReturnAssigned[n-1]
	}
	return false
}
