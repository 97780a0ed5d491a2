package lexer

import "testing"

func collectTokens(t *testing.T, input string) []Token {
	t.Helper()
	l := New(input)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func TestKeywordsCaseInsensitive(t *testing.T) {
	toks := collectTokens(t, "PROGRAM Program program")
	for i, tok := range toks[:3] {
		if tok.Type != PROGRAM {
			t.Fatalf("token %d: expected PROGRAM, got %s", i, tok.Type)
		}
	}
	if toks[1].Literal != "Program" {
		t.Fatalf("expected case-preserving literal, got %q", toks[1].Literal)
	}
}

func TestIntegerAndRealLiterals(t *testing.T) {
	toks := collectTokens(t, "42 3.14 2e10 1.5e-3")
	want := []struct {
		tt  TokenType
		lit string
	}{
		{INT, "42"},
		{REAL, "3.14"},
		{REAL, "2e10"},
		{REAL, "1.5e-3"},
	}
	for i, w := range want {
		if toks[i].Type != w.tt || toks[i].Literal != w.lit {
			t.Fatalf("token %d: want %s %q, got %s %q", i, w.tt, w.lit, toks[i].Type, toks[i].Literal)
		}
	}
	if toks[1].RealValue != 3.14 {
		t.Fatalf("expected RealValue 3.14, got %v", toks[1].RealValue)
	}
}

func TestStringLiteralWithEscapedQuote(t *testing.T) {
	toks := collectTokens(t, "'it''s ok'")
	if toks[0].Type != STRING || toks[0].Literal != "it's ok" {
		t.Fatalf("unexpected string token: %+v", toks[0])
	}
}

func TestMultiCharPunctuationBeforeSingle(t *testing.T) {
	toks := collectTokens(t, ":= <= >= <> ..")
	want := []TokenType{ASSIGN, LESS_EQ, GREAT_EQ, NOT_EQ, DOTDOT, EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: want %s, got %s", i, w, toks[i].Type)
		}
	}
}

func TestCommentsBothForms(t *testing.T) {
	toks := collectTokens(t, "x { ignored\nstill ignored } y (* also\nignored *) z")
	want := []string{"x", "y", "z"}
	var idents []string
	for _, tok := range toks {
		if tok.Type == IDENT {
			idents = append(idents, tok.Literal)
		}
	}
	if len(idents) != len(want) {
		t.Fatalf("expected %d identifiers, got %v", len(want), idents)
	}
	for i, w := range want {
		if idents[i] != w {
			t.Fatalf("identifier %d: want %q, got %q", i, w, idents[i])
		}
	}
}

func TestIllegalCharacterFailsWithPosition(t *testing.T) {
	l := New("x := 1;\n@")
	var err error
	for {
		var tok Token
		tok, err = l.NextToken()
		if err != nil || tok.Type == EOF {
			break
		}
	}
	if err == nil {
		t.Fatal("expected an error for illegal character '@'")
	}
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if lexErr.Pos.Line != 2 {
		t.Fatalf("expected error on line 2, got line %d", lexErr.Pos.Line)
	}
}

func TestNewlinesAdvanceLineNumber(t *testing.T) {
	l := New("a\nb\nc")
	var lines []int
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Type == EOF {
			break
		}
		lines = append(lines, tok.Pos.Line)
	}
	want := []int{1, 2, 3}
	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("token %d: want line %d, got %d", i, w, lines[i])
		}
	}
}
