package parser

import (
	"fmt"
	"strings"

	"github.com/pasc-lang/pasc/internal/emitter"
	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

// parseArgList parses an optional parenthesized, comma-separated
// expression list. No parentheses at all yields a nil, zero-length list.
func (p *Parser) parseArgList() ([]fragment, error) {
	if p.cur.Type != lexer.LPAREN {
		return nil, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	var args []fragment
	if p.cur.Type != lexer.RPAREN {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.Type != lexer.COMMA {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	return args, p.expect(lexer.RPAREN)
}

// parseIdentExpr dispatches an identifier appearing in expression
// position: a built-in name, a user function call, a variable reference
// (possibly indexed), or an error naming the misuse (procedure or
// function used where a value is required).
func (p *Parser) parseIdentExpr() (fragment, error) {
	nameTok := p.cur
	lowered := strings.ToLower(nameTok.Literal)

	if types.IsBuiltinName(lowered) {
		return p.parseBuiltinCall(nameTok)
	}

	entry, ok := p.ctx.Symtab.Lookup(nameTok.Literal)
	if !ok {
		return fragment{}, p.semErrorf(nameTok.Pos, "undeclared identifier %q", nameTok.Literal)
	}

	switch e := entry.(type) {
	case symtab.Func:
		return p.parseUserCall(nameTok, e)
	case symtab.Proc:
		return fragment{}, p.semErrorf(nameTok.Pos, "%q is a procedure and cannot be used in an expression", nameTok.Literal)
	case symtab.Var:
		// Inside a top-level function body its own name resolves to the
		// implicit return slot; followed by '(' it is a recursive call.
		if p.peek.Type == lexer.LPAREN && p.ctx.Symtab.Depth() == 1 {
			if sub, ok := p.ctx.currentSubprog(); ok && sub.kind == pendingFunc && strings.EqualFold(sub.name, nameTok.Literal) {
				if g, ok := p.ctx.Symtab.LookupGlobal(sub.name); ok {
					if fn, ok := g.(symtab.Func); ok {
						return p.parseUserCall(nameTok, fn)
					}
				}
			}
		}
		return p.parseVarExpr(nameTok, e)
	default:
		return fragment{}, p.semErrorf(nameTok.Pos, "%q cannot be used in an expression", nameTok.Literal)
	}
}

// parseVarExpr loads a variable reference, handling the optional
// `[ expr ]` index form: CHARAT (after a 1-based adjustment) for strings,
// or a bounds-checked LOADN for arrays.
func (p *Parser) parseVarExpr(nameTok lexer.Token, v symtab.Var) (fragment, error) {
	if err := p.advance(); err != nil {
		return fragment{}, err
	}

	if p.cur.Type != lexer.LBRACK {
		return fragment{Type: v.Type, Code: emitter.GenLoadVar(v)}, nil
	}

	if err := p.advance(); err != nil {
		return fragment{}, err
	}
	idx, err := p.parseExpr()
	if err != nil {
		return fragment{}, err
	}
	if err := p.expect(lexer.RBRACK); err != nil {
		return fragment{}, err
	}
	if !idx.Type.Equals(types.IntegerType) {
		return fragment{}, p.semErrorf(nameTok.Pos, "index must be integer, got %s", idx.Type)
	}

	switch v.Type.Kind {
	case types.String:
		var sb strings.Builder
		sb.WriteString(emitter.GenLoadVar(v))
		sb.WriteString(idx.Code)
		sb.WriteString("PUSHI 1\nSUB\nCHARAT\n")
		return fragment{Type: types.CharType, Code: sb.String()}, nil

	case types.Array:
		if c, ok := idx.Const.(int64); ok {
			if c < v.Type.Lo || c > v.Type.Hi {
				return fragment{}, p.semErrorf(nameTok.Pos, "index %d out of range [%d..%d]", c, v.Type.Lo, v.Type.Hi)
			}
		}
		var sb strings.Builder
		sb.WriteString(emitter.GenLoadVar(v))
		sb.WriteString(idx.Code)
		fmt.Fprintf(&sb, "CHECK %d, %d\n", v.Type.Lo, v.Type.Hi)
		if v.Type.Lo != 0 {
			fmt.Fprintf(&sb, "PUSHI %d\nSUB\n", v.Type.Lo)
		}
		sb.WriteString("LOADN\n")
		return fragment{Type: *v.Type.Elem, Code: sb.String()}, nil

	default:
		return fragment{}, p.semErrorf(nameTok.Pos, "%q is not indexable", nameTok.Literal)
	}
}

// parseUserCall emits a user function call: a default-valued return slot,
// then each argument (widened per-parameter), then PUSHA/CALL/POP. The
// result is left in the pre-pushed slot once the arguments are popped.
func (p *Parser) parseUserCall(nameTok lexer.Token, fn symtab.Func) (fragment, error) {
	if err := p.advance(); err != nil {
		return fragment{}, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return fragment{}, err
	}
	if len(args) != len(fn.Params) {
		return fragment{}, p.semErrorf(nameTok.Pos, "%q expects %d argument(s), got %d", nameTok.Literal, len(fn.Params), len(args))
	}

	var sb strings.Builder
	sb.WriteString(emitter.PushDefaultForType(fn.Ret))
	if err := p.emitCallArgs(&sb, nameTok, fn.Params, args); err != nil {
		return fragment{}, err
	}
	fmt.Fprintf(&sb, "PUSHA %s\nCALL\n", fn.Label)
	fmt.Fprintf(&sb, "POP %d\n", len(args))
	return fragment{Type: fn.Ret, Code: sb.String()}, nil
}

func (p *Parser) emitCallArgs(sb *strings.Builder, nameTok lexer.Token, params []symtab.Param, args []fragment) error {
	for i, arg := range args {
		want := params[i].Type
		if !types.AssignCompat(want, arg.Type) {
			return p.semErrorf(nameTok.Pos, "argument %d to %q: cannot assign %s to %s", i+1, nameTok.Literal, arg.Type, want)
		}
		sb.WriteString(arg.Code)
		if want.Kind == types.Real && arg.Type.Kind == types.Integer {
			sb.WriteString("ITOF\n")
		}
	}
	return nil
}

// procedureCallStatement parses a procedure call appearing as a
// statement: a bare name resolves only against a zero-arity procedure
// and emits no POP; a parenthesized argument list always pops its
// argument count after the call.
func (p *Parser) procedureCallStatement(nameTok lexer.Token) (string, error) {
	entry, _ := p.ctx.Symtab.Lookup(nameTok.Literal)
	pr := entry.(symtab.Proc)
	if err := p.advance(); err != nil {
		return "", err
	}

	if p.cur.Type != lexer.LPAREN {
		if len(pr.Params) != 0 {
			return "", p.semErrorf(nameTok.Pos, "%q expects %d argument(s), got 0", nameTok.Literal, len(pr.Params))
		}
		return fmt.Sprintf("PUSHA %s\nCALL\n", pr.Label), nil
	}

	args, err := p.parseArgList()
	if err != nil {
		return "", err
	}
	if len(args) != len(pr.Params) {
		return "", p.semErrorf(nameTok.Pos, "%q expects %d argument(s), got %d", nameTok.Literal, len(pr.Params), len(args))
	}

	var sb strings.Builder
	if err := p.emitCallArgs(&sb, nameTok, pr.Params, args); err != nil {
		return "", err
	}
	fmt.Fprintf(&sb, "PUSHA %s\nCALL\n", pr.Label)
	fmt.Fprintf(&sb, "POP %d\n", len(args))
	return sb.String(), nil
}
