package parser

import (
	"fmt"
	"strings"

	"github.com/pasc-lang/pasc/internal/emitter"
	"github.com/pasc-lang/pasc/internal/errors"
	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/pasc-lang/pasc/internal/types"
)

// parseBuiltinCall resolves and emits one of the closed set of built-in
// functions. Each one has bespoke codegen; overload resolution only picks
// which signature matched, it does not drive generic argument emission.
func (p *Parser) parseBuiltinCall(nameTok lexer.Token) (fragment, error) {
	lowered := strings.ToLower(nameTok.Literal)
	if err := p.advance(); err != nil {
		return fragment{}, err
	}
	args, err := p.parseArgList()
	if err != nil {
		return fragment{}, err
	}

	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = a.Type
	}
	if _, ok := types.ResolveBuiltin(lowered, argTypes); !ok {
		return fragment{}, p.semErrorf(nameTok.Pos, "no overload of %q matches the given argument(s)", nameTok.Literal)
	}

	switch lowered {
	case "length":
		return p.emitLength(args[0]), nil
	case "concat":
		return fragment{Type: types.StringType, Code: args[0].Code + args[1].Code + "CONCAT\n"}, nil
	case "ord":
		return fragment{Type: types.IntegerType, Code: args[0].Code, Const: args[0].Const}, nil
	case "chr":
		return fragment{Type: types.CharType, Code: args[0].Code + "CHECK 0, 255\n"}, nil
	case "odd":
		return p.emitOdd(args[0]), nil
	case "trunc":
		return fragment{Type: types.IntegerType, Code: args[0].Code + "FTOI\n"}, nil
	case "round":
		return p.emitRound(args[0]), nil
	case "abs":
		return p.emitAbs(args[0]), nil
	default:
		return fragment{}, errors.Bug(nameTok.Pos, "unhandled built-in %q", nameTok.Literal)
	}
}

// emitLength avoids evaluating an array operand at all (its length is a
// compile-time constant); a string operand is evaluated and measured.
func (p *Parser) emitLength(arg fragment) fragment {
	if arg.Type.IsArray() {
		size := arg.Type.Size()
		return fragment{Type: types.IntegerType, Code: fmt.Sprintf("PUSHI %d\n", size), Const: size}
	}
	return fragment{Type: types.IntegerType, Code: arg.Code + "STRLEN\n"}
}

func (p *Parser) emitOdd(arg fragment) fragment {
	code := arg.Code + "PUSHI 2\nMOD\nPUSHI 0\nEQUAL\nNOT\n"
	var c any
	if v, ok := arg.Const.(int64); ok {
		c = v%2 != 0
	}
	return fragment{Type: types.BooleanType, Code: code, Const: c}
}

// emitRound tests the sign with FINF (x < 0.0), with the negative-branch
// code (subtract 0.5) falling straight through and the positive-branch
// code (add 0.5) behind the JZ target - matching the original compiler's
// round(x) lowering exactly. The operand is duplicated so its sign can be
// tested without re-evaluating it.
func (p *Parser) emitRound(arg fragment) fragment {
	posLabel := p.ctx.Emit.NewLabel("ROUND_POS")
	endLabel := p.ctx.Emit.NewLabel("ROUND_END")

	var sb strings.Builder
	sb.WriteString(arg.Code)
	sb.WriteString("DUP 1\nPUSHF 0.0\nFINF\n")
	fmt.Fprintf(&sb, "JZ %s\n", posLabel)
	sb.WriteString("PUSHF 0.5\nFSUB\nFTOI\n")
	fmt.Fprintf(&sb, "JUMP %s\n", endLabel)
	sb.WriteString(emitter.EmitLabel(posLabel))
	sb.WriteString("PUSHF 0.5\nFADD\nFTOI\n")
	sb.WriteString(emitter.EmitLabel(endLabel))

	return fragment{Type: types.IntegerType, Code: sb.String()}
}

// emitAbs tests the sign with INF/FINF (x < 0); the non-negative branch
// leaves the duplicated value untouched, the negative branch replaces it
// with 0 - x, matching the original compiler's abs(x) lowering.
func (p *Parser) emitAbs(arg fragment) fragment {
	isReal := arg.Type.Kind == types.Real

	zero, lt := "PUSHI 0\n", "INF\n"
	okLabel := p.ctx.Emit.NewLabel("ABS_I_OK")
	endLabel := p.ctx.Emit.NewLabel("ABS_I_END")
	retType := types.IntegerType
	if isReal {
		zero, lt = "PUSHF 0.0\n", "FINF\n"
		okLabel = p.ctx.Emit.NewLabel("ABS_F_OK")
		endLabel = p.ctx.Emit.NewLabel("ABS_F_END")
		retType = types.RealType
	}

	sub := "SUB\n"
	if isReal {
		sub = "FSUB\n"
	}

	var sb strings.Builder
	sb.WriteString(arg.Code)
	sb.WriteString("DUP 1\n")
	sb.WriteString(zero)
	sb.WriteString(lt)
	fmt.Fprintf(&sb, "JZ %s\n", okLabel)
	sb.WriteString(zero)
	sb.WriteString("SWAP\n")
	sb.WriteString(sub)
	fmt.Fprintf(&sb, "JUMP %s\n", endLabel)
	sb.WriteString(emitter.EmitLabel(okLabel))
	sb.WriteString(emitter.EmitLabel(endLabel))

	var c any
	switch v := arg.Const.(type) {
	case int64:
		if v < 0 {
			c = -v
		} else {
			c = v
		}
	case float64:
		if v < 0 {
			c = -v
		} else {
			c = v
		}
	}

	return fragment{Type: retType, Code: sb.String(), Const: c}
}
