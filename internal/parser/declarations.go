package parser

import (
	"fmt"
	"strings"

	"github.com/pasc-lang/pasc/internal/emitter"
	"github.com/pasc-lang/pasc/internal/errors"
	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

type identTok struct {
	Name string
	Pos  lexer.Position
}

func (p *Parser) identList() ([]identTok, error) {
	var out []identTok
	tok := p.cur
	if err := p.expect(lexer.IDENT); err != nil {
		return nil, err
	}
	out = append(out, identTok{tok.Literal, tok.Pos})
	for p.cur.Type == lexer.COMMA {
		if err := p.advance(); err != nil {
			return nil, err
		}
		tok = p.cur
		if err := p.expect(lexer.IDENT); err != nil {
			return nil, err
		}
		out = append(out, identTok{tok.Literal, tok.Pos})
	}
	return out, nil
}

func (p *Parser) parseType() (types.Type, error) {
	switch p.cur.Type {
	case lexer.INTEGER:
		return types.IntegerType, p.advance()
	case lexer.REALTYPE:
		return types.RealType, p.advance()
	case lexer.BOOLEAN:
		return types.BooleanType, p.advance()
	case lexer.CHAR:
		return types.CharType, p.advance()
	case lexer.STRINGTYPE:
		return types.StringType, p.advance()
	case lexer.ARRAY:
		return p.parseArrayType()
	default:
		return types.Type{}, p.errorf("expected a type name, got %s", p.cur.Type)
	}
}

func (p *Parser) parseArrayType() (types.Type, error) {
	if err := p.expect(lexer.ARRAY); err != nil {
		return types.Type{}, err
	}
	if err := p.expect(lexer.LBRACK); err != nil {
		return types.Type{}, err
	}
	rangePos := p.cur.Pos
	lo, err := p.integerLiteralValue()
	if err != nil {
		return types.Type{}, err
	}
	if err := p.expect(lexer.DOTDOT); err != nil {
		return types.Type{}, err
	}
	hi, err := p.integerLiteralValue()
	if err != nil {
		return types.Type{}, err
	}
	if lo > hi {
		return types.Type{}, p.semErrorf(rangePos, "invalid array range %d..%d", lo, hi)
	}
	if err := p.expect(lexer.RBRACK); err != nil {
		return types.Type{}, err
	}
	if err := p.expect(lexer.OF); err != nil {
		return types.Type{}, err
	}
	elem, err := p.parseType()
	if err != nil {
		return types.Type{}, err
	}
	return types.NewArray(lo, hi, elem), nil
}

func (p *Parser) integerLiteralValue() (int64, error) {
	neg := false
	if p.cur.Type == lexer.MINUS {
		neg = true
		if err := p.advance(); err != nil {
			return 0, err
		}
	}
	if p.cur.Type != lexer.INT {
		return 0, p.errorf("expected an integer literal, got %s", p.cur.Type)
	}
	v := p.cur.IntValue
	if neg {
		v = -v
	}
	return v, p.advance()
}

func (p *Parser) varSection() error {
	if err := p.expect(lexer.VAR); err != nil {
		return err
	}
	for p.cur.Type == lexer.IDENT {
		if err := p.varDeclGroup(); err != nil {
			return err
		}
		if err := p.expect(lexer.SEMICOLON); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) varDeclGroup() error {
	names, err := p.identList()
	if err != nil {
		return err
	}
	if err := p.expect(lexer.COLON); err != nil {
		return err
	}
	typ, err := p.parseType()
	if err != nil {
		return err
	}
	for _, n := range names {
		if err := p.declareVar(n, typ); err != nil {
			return err
		}
	}
	return nil
}

// declareVar assigns the next global or local address depending on
// whether declarations are currently inside a subprogram body, declares
// the name, and - for array types - appends the allocation sequence to
// the appropriate init-code accumulator.
func (p *Parser) declareVar(id identTok, typ types.Type) error {
	var v symtab.Var
	if p.ctx.inSubprogram() {
		addr := p.ctx.nextLocal()
		v = symtab.Var{Type: typ, Level: symtab.Local, Addr: addr}
		if typ.IsArray() {
			p.ctx.appendLocalInit(fmt.Sprintf("PUSHI %d\nALLOCN\nSTOREL %d\n", typ.Size(), addr))
		}
	} else {
		addr := p.ctx.NextGlobalAddr
		p.ctx.NextGlobalAddr++
		v = symtab.Var{Type: typ, Level: symtab.Global, Addr: addr}
		if typ.IsArray() {
			p.ctx.GlobalInitCode += fmt.Sprintf("PUSHI %d\nALLOCN\nSTOREG %d\n", typ.Size(), addr)
		}
	}
	if err := p.ctx.Symtab.Declare(id.Name, v, id.Pos.Line, false); err != nil {
		return p.wrapSymtabErr(err, id.Pos)
	}
	return nil
}

type paramTok struct {
	Name string
	Type types.Type
	Pos  lexer.Position
}

func (p *Parser) paramList() ([]paramTok, error) {
	if p.cur.Type != lexer.LPAREN {
		return nil, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var out []paramTok
	if p.cur.Type != lexer.RPAREN {
		for {
			names, err := p.identList()
			if err != nil {
				return nil, err
			}
			if err := p.expect(lexer.COLON); err != nil {
				return nil, err
			}
			typ, err := p.parseType()
			if err != nil {
				return nil, err
			}
			for _, n := range names {
				out = append(out, paramTok{Name: n.Name, Type: typ, Pos: n.Pos})
			}
			if p.cur.Type != lexer.SEMICOLON {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return out, nil
}

func toSymParams(params []paramTok) []symtab.Param {
	out := make([]symtab.Param, len(params))
	for i, pr := range params {
		out[i] = symtab.Param{Name: pr.Name, Type: pr.Type, Line: pr.Pos.Line}
	}
	return out
}

// funcEnter is the body-entry action for a function: it takes the header
// latched by functionDecl, declares the function itself in the enclosing
// scope, then pushes a new scope and frame for the body, declaring the
// implicit return slot at local offset 0 ahead of the parameters.
func (p *Parser) funcEnter(nameTok lexer.Token, params []paramTok) error {
	hdr, ok := p.ctx.takePendingHeader()
	if !ok || hdr.kind != pendingFunc {
		return errors.Bug(nameTok.Pos, "funcEnter called without a latched function header")
	}

	if err := p.ctx.Symtab.Declare(hdr.name, symtab.Func{Params: hdr.params, Ret: hdr.ret, Label: hdr.label}, hdr.line, false); err != nil {
		return p.wrapSymtabErr(err, nameTok.Pos)
	}

	p.ctx.Symtab.Push()
	p.ctx.pushLocals(1)
	p.ctx.pushSubprog(pendingFunc, hdr.name, hdr.line, len(params))

	if err := p.ctx.Symtab.Declare(hdr.name, symtab.Var{Type: hdr.ret, Level: symtab.Local, Addr: 0}, hdr.line, false); err != nil {
		return p.wrapSymtabErr(err, nameTok.Pos)
	}
	for i, prm := range params {
		if strings.EqualFold(prm.Name, hdr.name) {
			return p.semErrorf(prm.Pos, "parameter %q may not share its function's name", prm.Name)
		}
		offset := int64(i) - int64(len(params))
		if err := p.ctx.Symtab.Declare(prm.Name, symtab.Var{Type: prm.Type, Level: symtab.Local, Addr: offset}, prm.Pos.Line, false); err != nil {
			return p.wrapSymtabErr(err, prm.Pos)
		}
	}
	return nil
}

// procEnter is the body-entry action for a procedure: no implicit return
// slot, so locals start at offset 0.
func (p *Parser) procEnter(nameTok lexer.Token, params []paramTok) error {
	hdr, ok := p.ctx.takePendingHeader()
	if !ok || hdr.kind != pendingProc {
		return errors.Bug(nameTok.Pos, "procEnter called without a latched procedure header")
	}

	if err := p.ctx.Symtab.Declare(hdr.name, symtab.Proc{Params: hdr.params, Label: hdr.label}, hdr.line, false); err != nil {
		return p.wrapSymtabErr(err, nameTok.Pos)
	}

	p.ctx.Symtab.Push()
	p.ctx.pushLocals(0)
	p.ctx.pushSubprog(pendingProc, hdr.name, hdr.line, len(params))

	for i, prm := range params {
		offset := int64(i) - int64(len(params))
		if err := p.ctx.Symtab.Declare(prm.Name, symtab.Var{Type: prm.Type, Level: symtab.Local, Addr: offset}, prm.Pos.Line, false); err != nil {
			return p.wrapSymtabErr(err, prm.Pos)
		}
	}
	return nil
}

// functionDecl parses a function header, latches it, then runs the
// body-entry action (funcEnter) before recursing into the body - the
// header-then-marker-then-body shape the grammar requires so the header's
// return type and arity are known before the frame is pushed.
func (p *Parser) functionDecl() error {
	headerPos := p.cur.Pos
	if err := p.expect(lexer.FUNCTION); err != nil {
		return err
	}
	nameTok := p.cur
	if err := p.expect(lexer.IDENT); err != nil {
		return err
	}
	params, err := p.paramList()
	if err != nil {
		return err
	}
	if err := p.expect(lexer.COLON); err != nil {
		return err
	}
	ret, err := p.parseType()
	if err != nil {
		return err
	}
	if err := p.expect(lexer.SEMICOLON); err != nil {
		return err
	}

	label := p.ctx.Emit.NewLabel(strings.ToUpper(nameTok.Literal))
	p.ctx.latchHeader(pendingHeader{
		kind: pendingFunc, name: nameTok.Literal, params: toSymParams(params),
		ret: ret, label: label, line: nameTok.Pos.Line,
	})

	if err := p.funcEnter(nameTok, params); err != nil {
		return err
	}

	bodyCode, err := p.block()
	if err != nil {
		return err
	}
	if err := p.expect(lexer.SEMICOLON); err != nil {
		return err
	}

	if !p.ctx.returnAssigned() {
		return p.semErrorf(headerPos, "function %q does not assign its return value", nameTok.Literal)
	}

	nlocals, initCode := p.ctx.popLocals()
	p.ctx.popSubprog()
	p.ctx.Symtab.Pop()

	var sb strings.Builder
	sb.WriteString(emitter.EmitLabel(label))
	fmt.Fprintf(&sb, "PUSHN %d\n", nlocals)
	sb.WriteString(initCode)
	sb.WriteString(bodyCode)
	sb.WriteString("PUSHL 0\n")
	fmt.Fprintf(&sb, "STOREL %d\n", -(int64(len(params)) + 1))
	sb.WriteString("RETURN\n")
	p.ctx.SubprogCode += sb.String()
	return nil
}

// procedureDecl mirrors functionDecl with no implicit return slot: locals
// start at offset 0 and the epilogue is a bare RETURN.
func (p *Parser) procedureDecl() error {
	if err := p.expect(lexer.PROCEDURE); err != nil {
		return err
	}
	nameTok := p.cur
	if err := p.expect(lexer.IDENT); err != nil {
		return err
	}
	params, err := p.paramList()
	if err != nil {
		return err
	}
	if err := p.expect(lexer.SEMICOLON); err != nil {
		return err
	}

	label := p.ctx.Emit.NewLabel(strings.ToUpper(nameTok.Literal))
	p.ctx.latchHeader(pendingHeader{
		kind: pendingProc, name: nameTok.Literal, params: toSymParams(params),
		label: label, line: nameTok.Pos.Line,
	})

	if err := p.procEnter(nameTok, params); err != nil {
		return err
	}

	bodyCode, err := p.block()
	if err != nil {
		return err
	}
	if err := p.expect(lexer.SEMICOLON); err != nil {
		return err
	}

	nlocals, initCode := p.ctx.popLocals()
	p.ctx.popSubprog()
	p.ctx.Symtab.Pop()

	var sb strings.Builder
	sb.WriteString(emitter.EmitLabel(label))
	fmt.Fprintf(&sb, "PUSHN %d\n", nlocals)
	sb.WriteString(initCode)
	sb.WriteString(bodyCode)
	sb.WriteString("RETURN\n")
	p.ctx.SubprogCode += sb.String()
	return nil
}
