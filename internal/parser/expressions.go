package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pasc-lang/pasc/internal/emitter"
	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/pasc-lang/pasc/internal/types"
)

// parseExpr is the OR-precedence entry point; operator precedence climbs
// OR -> AND -> relational -> additive -> multiplicative -> unary -> primary.
func (p *Parser) parseExpr() (fragment, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (fragment, error) {
	left, err := p.parseAnd()
	if err != nil {
		return fragment{}, err
	}
	for p.cur.Type == lexer.OR {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		if !left.Type.Equals(types.BooleanType) {
			return fragment{}, p.semErrorf(pos, "OR requires boolean operands, got %s", left.Type)
		}
		right, err := p.parseAnd()
		if err != nil {
			return fragment{}, err
		}
		if !right.Type.Equals(types.BooleanType) {
			return fragment{}, p.semErrorf(pos, "OR requires boolean operands, got %s", right.Type)
		}

		rhsLabel := p.ctx.Emit.NewLabel("OR_TRUE")
		endLabel := p.ctx.Emit.NewLabel("OREND")

		var sb strings.Builder
		sb.WriteString(left.Code)
		fmt.Fprintf(&sb, "JZ %s\n", rhsLabel)
		sb.WriteString("PUSHI 1\n")
		fmt.Fprintf(&sb, "JUMP %s\n", endLabel)
		sb.WriteString(emitter.EmitLabel(rhsLabel))
		sb.WriteString(right.Code)
		sb.WriteString(emitter.EmitLabel(endLabel))

		var c any
		if lc, ok := left.Const.(bool); ok {
			if rc, ok2 := right.Const.(bool); ok2 {
				c = lc || rc
			}
		}
		left = fragment{Type: types.BooleanType, Code: sb.String(), Const: c}
	}
	return left, nil
}

func (p *Parser) parseAnd() (fragment, error) {
	left, err := p.parseRelational()
	if err != nil {
		return fragment{}, err
	}
	for p.cur.Type == lexer.AND {
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		if !left.Type.Equals(types.BooleanType) {
			return fragment{}, p.semErrorf(pos, "AND requires boolean operands, got %s", left.Type)
		}
		right, err := p.parseRelational()
		if err != nil {
			return fragment{}, err
		}
		if !right.Type.Equals(types.BooleanType) {
			return fragment{}, p.semErrorf(pos, "AND requires boolean operands, got %s", right.Type)
		}

		falseLabel := p.ctx.Emit.NewLabel("ANDFALSE")
		endLabel := p.ctx.Emit.NewLabel("ANDEND")

		var sb strings.Builder
		sb.WriteString(left.Code)
		fmt.Fprintf(&sb, "JZ %s\n", falseLabel)
		sb.WriteString(right.Code)
		fmt.Fprintf(&sb, "JUMP %s\n", endLabel)
		sb.WriteString(emitter.EmitLabel(falseLabel))
		sb.WriteString("PUSHI 0\n")
		sb.WriteString(emitter.EmitLabel(endLabel))

		var c any
		if lc, ok := left.Const.(bool); ok {
			if rc, ok2 := right.Const.(bool); ok2 {
				c = lc && rc
			}
		}
		left = fragment{Type: types.BooleanType, Code: sb.String(), Const: c}
	}
	return left, nil
}

var relOpNames = map[lexer.TokenType]string{
	lexer.EQ: "=", lexer.NOT_EQ: "<>", lexer.LESS: "<",
	lexer.LESS_EQ: "<=", lexer.GREAT: ">", lexer.GREAT_EQ: ">=",
}

// parseRelational is non-associative: at most one comparison operator per
// expression at this level.
func (p *Parser) parseRelational() (fragment, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return fragment{}, err
	}
	opTok := p.cur.Type
	op, ok := relOpNames[opTok]
	if !ok {
		return left, nil
	}
	pos := p.cur.Pos
	if err := p.advance(); err != nil {
		return fragment{}, err
	}
	right, err := p.parseAdditive()
	if err != nil {
		return fragment{}, err
	}

	if opTok == lexer.EQ || opTok == lexer.NOT_EQ {
		return p.emitEquality(opTok, op, left, right, pos)
	}
	return p.emitOrdered(opTok, op, left, right, pos)
}

func widenToReal(f fragment) string {
	if f.Type.Kind == types.Real {
		return f.Code
	}
	return f.Code + "ITOF\n"
}

func (p *Parser) widenPair(left, right fragment) (string, string) {
	if left.Type.Kind == right.Type.Kind {
		return left.Code, right.Code
	}
	return widenToReal(left), widenToReal(right)
}

func (p *Parser) emitEquality(opTok lexer.TokenType, op string, left, right fragment, pos lexer.Position) (fragment, error) {
	if left.Type.IsArray() || right.Type.IsArray() {
		return fragment{}, p.semErrorf(pos, "arrays are not comparable")
	}

	lc, rc := left.Code, right.Code
	switch {
	case left.Type.Equals(right.Type):
	case types.IsNumeric(left.Type) && types.IsNumeric(right.Type):
		lc, rc = p.widenPair(left, right)
	default:
		return fragment{}, p.semErrorf(pos, "cannot compare %s %s %s", left.Type, op, right.Type)
	}

	var sb strings.Builder
	sb.WriteString(lc)
	sb.WriteString(rc)
	sb.WriteString("EQUAL\n")
	if opTok == lexer.NOT_EQ {
		sb.WriteString("NOT\n")
	}
	return fragment{Type: types.BooleanType, Code: sb.String()}, nil
}

var orderedIntOps = map[lexer.TokenType]string{
	lexer.LESS: "INF", lexer.LESS_EQ: "INFEQ", lexer.GREAT: "SUP", lexer.GREAT_EQ: "SUPEQ",
}
var orderedRealOps = map[lexer.TokenType]string{
	lexer.LESS: "FINF", lexer.LESS_EQ: "FINFEQ", lexer.GREAT: "FSUP", lexer.GREAT_EQ: "FSUPEQ",
}

func (p *Parser) emitOrdered(opTok lexer.TokenType, op string, left, right fragment, pos lexer.Position) (fragment, error) {
	if !types.IsNumeric(left.Type) || !types.IsNumeric(right.Type) {
		return fragment{}, p.semErrorf(pos, "%s requires numeric operands, got %s and %s", op, left.Type, right.Type)
	}

	result := types.NumericResult(left.Type, right.Type)
	lc, rc := left.Code, right.Code
	var instr string
	if result.Kind == types.Real {
		lc, rc = p.widenPair(left, right)
		instr = orderedRealOps[opTok]
	} else {
		instr = orderedIntOps[opTok]
	}

	var sb strings.Builder
	sb.WriteString(lc)
	sb.WriteString(rc)
	sb.WriteString(instr)
	sb.WriteString("\n")
	return fragment{Type: types.BooleanType, Code: sb.String()}, nil
}

func (p *Parser) parseAdditive() (fragment, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return fragment{}, err
	}
	for p.cur.Type == lexer.PLUS || p.cur.Type == lexer.MINUS {
		opTok := p.cur.Type
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return fragment{}, err
		}
		left, err = p.emitArith(opTok, left, right, pos)
		if err != nil {
			return fragment{}, err
		}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (fragment, error) {
	left, err := p.parseUnary()
	if err != nil {
		return fragment{}, err
	}
	for p.cur.Type == lexer.ASTERISK || p.cur.Type == lexer.SLASH ||
		p.cur.Type == lexer.DIV || p.cur.Type == lexer.MOD {
		opTok := p.cur.Type
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return fragment{}, err
		}
		left, err = p.emitArith(opTok, left, right, pos)
		if err != nil {
			return fragment{}, err
		}
	}
	return left, nil
}

func isZeroConst(c any) bool {
	switch v := c.(type) {
	case int64:
		return v == 0
	case float64:
		return v == 0
	}
	return false
}

func numericConstAsFloat(c any) (float64, bool) {
	switch v := c.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

var intArithOps = map[lexer.TokenType]string{lexer.PLUS: "ADD", lexer.MINUS: "SUB", lexer.ASTERISK: "MUL"}
var realArithOps = map[lexer.TokenType]string{lexer.PLUS: "FADD", lexer.MINUS: "FSUB", lexer.ASTERISK: "FMUL"}

func foldArith(opTok lexer.TokenType, lc, rc any) any {
	if li, ok := lc.(int64); ok {
		if ri, ok := rc.(int64); ok {
			switch opTok {
			case lexer.PLUS:
				return li + ri
			case lexer.MINUS:
				return li - ri
			case lexer.ASTERISK:
				return li * ri
			}
		}
	}
	if lf, ok := numericConstAsFloat(lc); ok {
		if rf, ok := numericConstAsFloat(rc); ok {
			switch opTok {
			case lexer.PLUS:
				return lf + rf
			case lexer.MINUS:
				return lf - rf
			case lexer.ASTERISK:
				return lf * rf
			}
		}
	}
	return nil
}

func (p *Parser) emitArith(opTok lexer.TokenType, left, right fragment, pos lexer.Position) (fragment, error) {
	switch opTok {
	case lexer.DIV, lexer.MOD:
		if !left.Type.Equals(types.IntegerType) || !right.Type.Equals(types.IntegerType) {
			return fragment{}, p.semErrorf(pos, "div/mod require integer operands")
		}
		if c, ok := right.Const.(int64); ok && c == 0 {
			return fragment{}, p.semErrorf(pos, "compile-time divide by zero")
		}
		instr := "DIV"
		if opTok == lexer.MOD {
			instr = "MOD"
		}
		var sb strings.Builder
		sb.WriteString(left.Code)
		sb.WriteString(right.Code)
		sb.WriteString(instr + "\n")

		var c any
		if li, ok := left.Const.(int64); ok {
			if ri, ok := right.Const.(int64); ok {
				if opTok == lexer.DIV {
					c = li / ri
				} else {
					c = li % ri
				}
			}
		}
		return fragment{Type: types.IntegerType, Code: sb.String(), Const: c}, nil

	case lexer.SLASH:
		if !types.IsNumeric(left.Type) || !types.IsNumeric(right.Type) {
			return fragment{}, p.semErrorf(pos, "/ requires numeric operands")
		}
		if isZeroConst(right.Const) {
			return fragment{}, p.semErrorf(pos, "compile-time divide by zero")
		}
		lc, rc := widenToReal(left), widenToReal(right)
		var sb strings.Builder
		sb.WriteString(lc)
		sb.WriteString(rc)
		sb.WriteString("FDIV\n")

		var c any
		if lf, ok := numericConstAsFloat(left.Const); ok {
			if rf, ok := numericConstAsFloat(right.Const); ok {
				c = lf / rf
			}
		}
		return fragment{Type: types.RealType, Code: sb.String(), Const: c}, nil

	default:
		if !types.IsNumeric(left.Type) || !types.IsNumeric(right.Type) {
			return fragment{}, p.semErrorf(pos, "operator requires numeric operands, got %s and %s", left.Type, right.Type)
		}
		result := types.NumericResult(left.Type, right.Type)
		lc, rc := left.Code, right.Code
		var instr string
		if result.Kind == types.Real {
			lc, rc = p.widenPair(left, right)
			instr = realArithOps[opTok]
		} else {
			instr = intArithOps[opTok]
		}
		var sb strings.Builder
		sb.WriteString(lc)
		sb.WriteString(rc)
		sb.WriteString(instr + "\n")
		return fragment{Type: result, Code: sb.String(), Const: foldArith(opTok, left.Const, right.Const)}, nil
	}
}

func (p *Parser) parseUnary() (fragment, error) {
	switch p.cur.Type {
	case lexer.MINUS:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return fragment{}, err
		}
		if !types.IsNumeric(operand.Type) {
			return fragment{}, p.semErrorf(pos, "unary - requires a numeric operand")
		}
		var sb strings.Builder
		if operand.Type.Kind == types.Real {
			sb.WriteString("PUSHF 0.0\n")
			sb.WriteString(operand.Code)
			sb.WriteString("FSUB\n")
		} else {
			sb.WriteString("PUSHI 0\n")
			sb.WriteString(operand.Code)
			sb.WriteString("SUB\n")
		}
		var c any
		switch v := operand.Const.(type) {
		case int64:
			c = -v
		case float64:
			c = -v
		}
		return fragment{Type: operand.Type, Code: sb.String(), Const: c}, nil

	case lexer.NOT:
		pos := p.cur.Pos
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		operand, err := p.parseUnary()
		if err != nil {
			return fragment{}, err
		}
		if !operand.Type.Equals(types.BooleanType) {
			return fragment{}, p.semErrorf(pos, "NOT requires a boolean operand")
		}
		var c any
		if v, ok := operand.Const.(bool); ok {
			c = !v
		}
		return fragment{Type: types.BooleanType, Code: operand.Code + "NOT\n", Const: c}, nil

	default:
		return p.parsePrimary()
	}
}

func formatReal(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func escapeVMString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func (p *Parser) parsePrimary() (fragment, error) {
	switch p.cur.Type {
	case lexer.INT:
		v := p.cur.IntValue
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		return fragment{Type: types.IntegerType, Code: fmt.Sprintf("PUSHI %d\n", v), Const: v}, nil

	case lexer.REAL:
		v := p.cur.RealValue
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		return fragment{Type: types.RealType, Code: fmt.Sprintf("PUSHF %s\n", formatReal(v)), Const: v}, nil

	case lexer.STRING:
		lit := p.cur.Literal
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		if len(lit) == 1 {
			return fragment{Type: types.CharType, Code: fmt.Sprintf("PUSHI %d\n", lit[0])}, nil
		}
		return fragment{Type: types.StringType, Code: fmt.Sprintf("PUSHS %s\n", escapeVMString(lit))}, nil

	case lexer.TRUE:
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		return fragment{Type: types.BooleanType, Code: "PUSHI 1\n", Const: true}, nil

	case lexer.FALSE:
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		return fragment{Type: types.BooleanType, Code: "PUSHI 0\n", Const: false}, nil

	case lexer.LPAREN:
		if err := p.advance(); err != nil {
			return fragment{}, err
		}
		inner, err := p.parseExpr()
		if err != nil {
			return fragment{}, err
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return fragment{}, err
		}
		return inner, nil

	case lexer.IDENT:
		return p.parseIdentExpr()

	default:
		return fragment{}, p.errorf("unexpected token %s in expression", p.cur.Type)
	}
}
