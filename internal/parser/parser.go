// Package parser implements the recursive-descent, syntax-directed
// translator for the Pascal-subset grammar: each production's reduction
// performs its semantic checks and emits VM code directly against a shared
// Context, rather than building an intermediate syntax tree.
package parser

import (
	"fmt"
	"strings"

	"github.com/pasc-lang/pasc/internal/errors"
	"github.com/pasc-lang/pasc/internal/lexer"
	"github.com/pasc-lang/pasc/internal/types"
)

// Parser holds one token of lookahead beyond the current token, following
// the usual two-token recursive-descent idiom.
type Parser struct {
	lex    *lexer.Lexer
	cur    lexer.Token
	peek   lexer.Token
	source string
	ctx    *Context
}

// New builds a Parser over source and primes its first two tokens.
func New(ctx *Context, source string) (*Parser, error) {
	p := &Parser{lex: lexer.New(source), source: source, ctx: ctx}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) advance() error {
	p.cur = p.peek
	tok, err := p.lex.NextToken()
	if err != nil {
		if le, ok := err.(*lexer.LexError); ok {
			return errors.Lex(le.Pos, "%s", le.Message).WithSource(p.source)
		}
		return err
	}
	p.peek = tok
	return nil
}

func (p *Parser) expect(tt lexer.TokenType) error {
	if p.cur.Type != tt {
		return p.errorf("expected %s, got %s %q", tt, p.cur.Type, p.cur.Literal)
	}
	return p.advance()
}

func (p *Parser) errorf(format string, args ...any) error {
	return errors.Syntax(p.cur.Pos, format, args...).WithSource(p.source)
}

func (p *Parser) semErrorf(pos lexer.Position, format string, args ...any) error {
	return errors.Sem(pos, format, args...).WithSource(p.source)
}

func (p *Parser) wrapSymtabErr(err error, pos lexer.Position) error {
	return errors.Sem(pos, "%s", err.Error()).WithSource(p.source)
}

// Program parses `program ID ; block .` and assembles the final listing:
// a jump to MAIN, every compiled subprogram body, the MAIN entry point
// (global frame allocation and initialization), the main body, and STOP.
func (p *Parser) Program() (string, error) {
	if err := p.expect(lexer.PROGRAM); err != nil {
		return "", err
	}
	nameTok := p.cur
	if err := p.expect(lexer.IDENT); err != nil {
		return "", err
	}
	if types.IsBuiltinName(strings.ToLower(nameTok.Literal)) {
		return "", p.semErrorf(nameTok.Pos, "program name %q conflicts with a built-in", nameTok.Literal)
	}
	if err := p.expect(lexer.SEMICOLON); err != nil {
		return "", err
	}

	bodyCode, err := p.block()
	if err != nil {
		return "", err
	}

	if err := p.expect(lexer.DOT); err != nil {
		return "", err
	}
	if p.cur.Type != lexer.EOF {
		return "", p.errorf("unexpected token %s after program end", p.cur.Type)
	}

	var sb strings.Builder
	sb.WriteString("JUMP MAIN\n")
	sb.WriteString(p.ctx.SubprogCode)
	sb.WriteString("MAIN:\n")
	fmt.Fprintf(&sb, "PUSHN %d\n", p.ctx.NextGlobalAddr)
	sb.WriteString(p.ctx.GlobalInitCode)
	sb.WriteString("START\n")
	sb.WriteString(bodyCode)
	sb.WriteString("STOP\n")
	return sb.String(), nil
}

// block parses the declaration sequence (var sections interleaved with
// function/procedure declarations, in any order) followed by the
// mandatory compound statement, returning the compound statement's code;
// declaration code is routed directly into the Context's accumulators.
func (p *Parser) block() (string, error) {
loop:
	for {
		switch p.cur.Type {
		case lexer.VAR:
			if err := p.varSection(); err != nil {
				return "", err
			}
		case lexer.FUNCTION:
			if err := p.functionDecl(); err != nil {
				return "", err
			}
		case lexer.PROCEDURE:
			if err := p.procedureDecl(); err != nil {
				return "", err
			}
		default:
			break loop
		}
	}
	return p.compoundStatement()
}
