package parser

import (
	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

type lvalueKind int

const (
	lvSimple lvalueKind = iota
	lvArrayIndex
	lvStringIndex
)

// lvalue is the resolved assignment target of `ID` or `ID [ expr ]`: Type
// is the variable's own type when Kind is lvSimple, or the indexed
// element's type otherwise.
type lvalue struct {
	Kind       lvalueKind
	Var        symtab.Var
	Type       types.Type
	Name       string
	Pos        lexer.Position
	Readonly   bool
	IndexCode  string
	ArrayLo    int64
	ArrayHi    int64
}

// resolveLValue parses `ID` or `ID [ expr ]` starting at the current
// token, which must be an IDENT naming a previously declared variable.
func (p *Parser) resolveLValue() (lvalue, error) {
	nameTok := p.cur
	if err := p.expect(lexer.IDENT); err != nil {
		return lvalue{}, err
	}

	entry, ok := p.ctx.Symtab.Lookup(nameTok.Literal)
	if !ok {
		return lvalue{}, p.semErrorf(nameTok.Pos, "undeclared identifier %q", nameTok.Literal)
	}
	v, ok := entry.(symtab.Var)
	if !ok {
		return lvalue{}, p.semErrorf(nameTok.Pos, "%q is not a variable", nameTok.Literal)
	}

	lv := lvalue{
		Kind:     lvSimple,
		Var:      v,
		Type:     v.Type,
		Name:     nameTok.Literal,
		Pos:      nameTok.Pos,
		Readonly: p.ctx.RO.IsReadonly(nameTok.Literal),
	}

	if p.cur.Type != lexer.LBRACK {
		return lv, nil
	}

	if err := p.advance(); err != nil {
		return lvalue{}, err
	}
	idx, err := p.parseExpr()
	if err != nil {
		return lvalue{}, err
	}
	if err := p.expect(lexer.RBRACK); err != nil {
		return lvalue{}, err
	}
	if !idx.Type.Equals(types.IntegerType) {
		return lvalue{}, p.semErrorf(nameTok.Pos, "index must be integer, got %s", idx.Type)
	}

	switch v.Type.Kind {
	case types.String:
		lv.Kind = lvStringIndex
		lv.Type = types.CharType
	case types.Array:
		lv.Kind = lvArrayIndex
		lv.Type = *v.Type.Elem
		lv.ArrayLo = v.Type.Lo
		lv.ArrayHi = v.Type.Hi
		if c, ok := idx.Const.(int64); ok {
			if c < v.Type.Lo || c > v.Type.Hi {
				return lvalue{}, p.semErrorf(nameTok.Pos, "index %d out of range [%d..%d]", c, v.Type.Lo, v.Type.Hi)
			}
		}
	default:
		return lvalue{}, p.semErrorf(nameTok.Pos, "%q is not indexable", nameTok.Literal)
	}

	lv.IndexCode = idx.Code
	return lv, nil
}
