package parser

import (
	"fmt"
	"strings"

	"github.com/pasc-lang/pasc/internal/emitter"
	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/pasc-lang/pasc/internal/symtab"
	"github.com/pasc-lang/pasc/internal/types"
)

func (p *Parser) compoundStatement() (string, error) {
	if err := p.expect(lexer.BEGIN); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		for p.cur.Type == lexer.SEMICOLON {
			if err := p.advance(); err != nil {
				return "", err
			}
		}
		if p.cur.Type == lexer.END {
			break
		}
		stmtCode, err := p.statement()
		if err != nil {
			return "", err
		}
		sb.WriteString(stmtCode)
		if p.cur.Type != lexer.SEMICOLON {
			break
		}
	}
	return sb.String(), p.expect(lexer.END)
}

func (p *Parser) statement() (string, error) {
	switch p.cur.Type {
	case lexer.BEGIN:
		return p.compoundStatement()
	case lexer.IF:
		return p.ifStatement()
	case lexer.WHILE:
		return p.whileStatement()
	case lexer.FOR:
		return p.forStatement()
	case lexer.REPEAT:
		return p.repeatStatement()
	case lexer.READLN:
		return p.readlnStatement()
	case lexer.WRITELN:
		return p.writelnStatement()
	case lexer.IDENT:
		return p.identStatement()
	default:
		return "", p.errorf("unexpected token %s at start of statement", p.cur.Type)
	}
}

func (p *Parser) identStatement() (string, error) {
	nameTok := p.cur
	entry, ok := p.ctx.Symtab.Lookup(nameTok.Literal)
	if !ok {
		return "", p.semErrorf(nameTok.Pos, "undeclared identifier %q", nameTok.Literal)
	}

	switch entry.(type) {
	case symtab.Proc:
		return p.procedureCallStatement(nameTok)
	case symtab.Var:
		return p.assignmentStatement(nameTok)
	case symtab.Func:
		return "", p.semErrorf(nameTok.Pos, "function %q may not be called as a statement", nameTok.Literal)
	default:
		return "", p.semErrorf(nameTok.Pos, "%q cannot start a statement", nameTok.Literal)
	}
}

// assignmentStatement implements `lvalue := expr`. Per the source
// behavior this generalizes, a direct assignment never emits ITOF: only
// argument passing and mixed-type comparisons and arithmetic widen integer
// to real.
func (p *Parser) assignmentStatement(nameTok lexer.Token) (string, error) {
	lv, err := p.resolveLValue()
	if err != nil {
		return "", err
	}
	if err := p.expect(lexer.ASSIGN); err != nil {
		return "", err
	}
	rhs, err := p.parseExpr()
	if err != nil {
		return "", err
	}

	if lv.Kind == lvSimple {
		if sub, ok := p.ctx.currentSubprog(); ok && sub.kind == pendingFunc && strings.EqualFold(sub.name, lv.Name) {
			p.ctx.markReturnAssigned()
		}
	}

	if lv.Readonly {
		return "", p.semErrorf(nameTok.Pos, "%q is read-only inside its FOR loop", lv.Name)
	}
	if lv.Kind == lvSimple && lv.Type.IsArray() {
		return "", p.semErrorf(nameTok.Pos, "cannot assign to whole array %q", lv.Name)
	}
	if lv.Kind == lvStringIndex {
		return "", p.semErrorf(nameTok.Pos, "cannot assign to a string index")
	}
	if !types.AssignCompat(lv.Type, rhs.Type) {
		return "", p.semErrorf(nameTok.Pos, "cannot assign %s to %s", rhs.Type, lv.Type)
	}

	var sb strings.Builder
	switch lv.Kind {
	case lvSimple:
		sb.WriteString(rhs.Code)
		sb.WriteString(emitter.GenStoreVar(lv.Var))
	case lvArrayIndex:
		sb.WriteString(emitter.GenLoadVar(lv.Var))
		sb.WriteString(lv.IndexCode)
		fmt.Fprintf(&sb, "CHECK %d, %d\n", lv.ArrayLo, lv.ArrayHi)
		if lv.ArrayLo != 0 {
			fmt.Fprintf(&sb, "PUSHI %d\nSUB\n", lv.ArrayLo)
		}
		sb.WriteString(rhs.Code)
		sb.WriteString("STOREN\n")
	}
	return sb.String(), nil
}

func (p *Parser) ifStatement() (string, error) {
	pos := p.cur.Pos
	if err := p.expect(lexer.IF); err != nil {
		return "", err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return "", err
	}
	if !cond.Type.Equals(types.BooleanType) {
		return "", p.semErrorf(pos, "if condition must be boolean, got %s", cond.Type)
	}
	if err := p.expect(lexer.THEN); err != nil {
		return "", err
	}
	thenCode, err := p.statement()
	if err != nil {
		return "", err
	}

	if p.cur.Type != lexer.ELSE {
		endLabel := p.ctx.Emit.NewLabel("IFEND")
		var sb strings.Builder
		sb.WriteString(cond.Code)
		fmt.Fprintf(&sb, "JZ %s\n", endLabel)
		sb.WriteString(thenCode)
		sb.WriteString(emitter.EmitLabel(endLabel))
		return sb.String(), nil
	}

	if err := p.advance(); err != nil {
		return "", err
	}
	elseCode, err := p.statement()
	if err != nil {
		return "", err
	}

	elseLabel := p.ctx.Emit.NewLabel("IFELSE")
	endLabel := p.ctx.Emit.NewLabel("IFEND")
	var sb strings.Builder
	sb.WriteString(cond.Code)
	fmt.Fprintf(&sb, "JZ %s\n", elseLabel)
	sb.WriteString(thenCode)
	fmt.Fprintf(&sb, "JUMP %s\n", endLabel)
	sb.WriteString(emitter.EmitLabel(elseLabel))
	sb.WriteString(elseCode)
	sb.WriteString(emitter.EmitLabel(endLabel))
	return sb.String(), nil
}

func (p *Parser) whileStatement() (string, error) {
	pos := p.cur.Pos
	if err := p.expect(lexer.WHILE); err != nil {
		return "", err
	}
	startLabel := p.ctx.Emit.NewLabel("WSTART")
	cond, err := p.parseExpr()
	if err != nil {
		return "", err
	}
	if !cond.Type.Equals(types.BooleanType) {
		return "", p.semErrorf(pos, "while condition must be boolean, got %s", cond.Type)
	}
	if err := p.expect(lexer.DO); err != nil {
		return "", err
	}
	body, err := p.statement()
	if err != nil {
		return "", err
	}
	endLabel := p.ctx.Emit.NewLabel("WEND")

	var sb strings.Builder
	sb.WriteString(emitter.EmitLabel(startLabel))
	sb.WriteString(cond.Code)
	fmt.Fprintf(&sb, "JZ %s\n", endLabel)
	sb.WriteString(body)
	fmt.Fprintf(&sb, "JUMP %s\n", startLabel)
	sb.WriteString(emitter.EmitLabel(endLabel))
	return sb.String(), nil
}

func (p *Parser) repeatStatement() (string, error) {
	startLabel := p.ctx.Emit.NewLabel("RSTART")
	if err := p.expect(lexer.REPEAT); err != nil {
		return "", err
	}

	var body strings.Builder
	for {
		for p.cur.Type == lexer.SEMICOLON {
			if err := p.advance(); err != nil {
				return "", err
			}
		}
		if p.cur.Type == lexer.UNTIL {
			break
		}
		stmtCode, err := p.statement()
		if err != nil {
			return "", err
		}
		body.WriteString(stmtCode)
		if p.cur.Type != lexer.SEMICOLON {
			break
		}
	}
	if err := p.expect(lexer.UNTIL); err != nil {
		return "", err
	}

	pos := p.cur.Pos
	cond, err := p.parseExpr()
	if err != nil {
		return "", err
	}
	if !cond.Type.Equals(types.BooleanType) {
		return "", p.semErrorf(pos, "until condition must be boolean, got %s", cond.Type)
	}

	var sb strings.Builder
	sb.WriteString(emitter.EmitLabel(startLabel))
	sb.WriteString(body.String())
	sb.WriteString(cond.Code)
	fmt.Fprintf(&sb, "JZ %s\n", startLabel)
	return sb.String(), nil
}

// forStatement implements `for ID := start TO|DOWNTO end do body`. The
// end expression is re-evaluated on every iteration, and the control
// variable is marked read-only for the duration of the body.
func (p *Parser) forStatement() (string, error) {
	if err := p.expect(lexer.FOR); err != nil {
		return "", err
	}
	nameTok := p.cur
	if err := p.expect(lexer.IDENT); err != nil {
		return "", err
	}
	entry, ok := p.ctx.Symtab.Lookup(nameTok.Literal)
	if !ok {
		return "", p.semErrorf(nameTok.Pos, "undeclared identifier %q", nameTok.Literal)
	}
	v, ok := entry.(symtab.Var)
	if !ok || !v.Type.Equals(types.IntegerType) {
		return "", p.semErrorf(nameTok.Pos, "FOR control variable %q must be an integer variable", nameTok.Literal)
	}

	if err := p.expect(lexer.ASSIGN); err != nil {
		return "", err
	}
	start, err := p.parseExpr()
	if err != nil {
		return "", err
	}
	if !start.Type.Equals(types.IntegerType) {
		return "", p.semErrorf(nameTok.Pos, "FOR start expression must be integer, got %s", start.Type)
	}

	descending := false
	switch p.cur.Type {
	case lexer.TO:
	case lexer.DOWNTO:
		descending = true
	default:
		return "", p.errorf("expected TO or DOWNTO, got %s", p.cur.Type)
	}
	if err := p.advance(); err != nil {
		return "", err
	}

	end, err := p.parseExpr()
	if err != nil {
		return "", err
	}
	if !end.Type.Equals(types.IntegerType) {
		return "", p.semErrorf(nameTok.Pos, "FOR end expression must be integer, got %s", end.Type)
	}
	if err := p.expect(lexer.DO); err != nil {
		return "", err
	}

	startLabel := p.ctx.Emit.NewLabel("FORSTART")
	bodyLabel := p.ctx.Emit.NewLabel("FORBODY")
	endLabel := p.ctx.Emit.NewLabel("FOREND")

	p.ctx.RO.Enter(nameTok.Literal)
	body, err := p.statement()
	p.ctx.RO.Exit(nameTok.Literal)
	if err != nil {
		return "", err
	}

	step, cmp := "ADD", "SUP"
	if descending {
		step, cmp = "SUB", "INF"
	}

	var sb strings.Builder
	sb.WriteString(start.Code)
	sb.WriteString(emitter.GenStoreVar(v))
	sb.WriteString(emitter.EmitLabel(startLabel))
	sb.WriteString(emitter.GenLoadVar(v))
	sb.WriteString(end.Code)
	sb.WriteString(cmp + "\n")
	fmt.Fprintf(&sb, "JZ %s\n", bodyLabel)
	fmt.Fprintf(&sb, "JUMP %s\n", endLabel)
	sb.WriteString(emitter.EmitLabel(bodyLabel))
	sb.WriteString(body)
	sb.WriteString(emitter.GenLoadVar(v))
	sb.WriteString("PUSHI 1\n")
	sb.WriteString(step + "\n")
	sb.WriteString(emitter.GenStoreVar(v))
	fmt.Fprintf(&sb, "JUMP %s\n", startLabel)
	sb.WriteString(emitter.EmitLabel(endLabel))
	return sb.String(), nil
}

func writeInstrFor(t types.Type) string {
	switch t.Kind {
	case types.Real:
		return "WRITEF\n"
	case types.String:
		return "WRITES\n"
	case types.Char:
		return "WRITECHR\n"
	default:
		return "WRITEI\n"
	}
}

func (p *Parser) writelnStatement() (string, error) {
	pos := p.cur.Pos
	if err := p.expect(lexer.WRITELN); err != nil {
		return "", err
	}

	var sb strings.Builder
	if p.cur.Type == lexer.LPAREN {
		if err := p.advance(); err != nil {
			return "", err
		}
		if p.cur.Type != lexer.RPAREN {
			for {
				arg, err := p.parseExpr()
				if err != nil {
					return "", err
				}
				if arg.Type.IsArray() {
					return "", p.semErrorf(pos, "cannot write a whole array")
				}
				sb.WriteString(arg.Code)
				sb.WriteString(writeInstrFor(arg.Type))
				if p.cur.Type != lexer.COMMA {
					break
				}
				if err := p.advance(); err != nil {
					return "", err
				}
			}
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return "", err
		}
	}
	sb.WriteString("WRITELN\n")
	return sb.String(), nil
}

// emitReadTarget builds the code for one readln target. For an array
// element the base handle, index, and bounds check must be pushed before
// the value read from input, matching STOREN's stack order.
func (p *Parser) emitReadTarget(lv lvalue) (string, error) {
	if lv.Kind == lvSimple && lv.Type.IsArray() {
		return "", p.semErrorf(lv.Pos, "cannot read into a whole array")
	}
	if lv.Kind == lvStringIndex {
		return "", p.semErrorf(lv.Pos, "cannot read into a string index")
	}
	if lv.Kind == lvSimple && lv.Readonly {
		return "", p.semErrorf(lv.Pos, "%q is read-only inside its FOR loop", lv.Name)
	}

	readVal := "READ\n"
	switch lv.Type.Kind {
	case types.Integer:
		readVal += "ATOI\n"
	case types.Real:
		readVal += "ATOF\n"
	}

	var sb strings.Builder
	switch lv.Kind {
	case lvSimple:
		sb.WriteString(readVal)
		sb.WriteString(emitter.GenStoreVar(lv.Var))
	case lvArrayIndex:
		sb.WriteString(emitter.GenLoadVar(lv.Var))
		sb.WriteString(lv.IndexCode)
		fmt.Fprintf(&sb, "CHECK %d, %d\n", lv.ArrayLo, lv.ArrayHi)
		if lv.ArrayLo != 0 {
			fmt.Fprintf(&sb, "PUSHI %d\nSUB\n", lv.ArrayLo)
		}
		sb.WriteString(readVal)
		sb.WriteString("STOREN\n")
	}
	return sb.String(), nil
}

func (p *Parser) readlnStatement() (string, error) {
	if err := p.expect(lexer.READLN); err != nil {
		return "", err
	}

	var sb strings.Builder
	if p.cur.Type == lexer.LPAREN {
		if err := p.advance(); err != nil {
			return "", err
		}
		if p.cur.Type != lexer.RPAREN {
			for {
				lv, err := p.resolveLValue()
				if err != nil {
					return "", err
				}
				code, err := p.emitReadTarget(lv)
				if err != nil {
					return "", err
				}
				sb.WriteString(code)
				if p.cur.Type != lexer.COMMA {
					break
				}
				if err := p.advance(); err != nil {
					return "", err
				}
			}
		}
		if err := p.expect(lexer.RPAREN); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
