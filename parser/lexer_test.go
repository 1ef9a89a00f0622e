package parser

import "testing"

func collect(src string) []Token {
	lex := NewLexer(src)
	var toks []Token
	for {
		tk := lex.Next()
		if tk.Kind == TokenEOF {
			return toks
		}
		toks = append(toks, tk)
	}
}

func TestLexBasicTokens(t *testing.T) {
	toks := collect(`node start { line "hi"; }`)
	want := []struct {
		kind TokenKind
		text string
	}{
		{TokenIdent, "node"},
		{TokenIdent, "start"},
		{TokenSymbol, "{"},
		{TokenIdent, "line"},
		{TokenString, "hi"},
		{TokenSymbol, ";"},
		{TokenSymbol, "}"},
	}
	if len(toks) != len(want) {
		t.Fatalf("token count: got %d want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Fatalf("token %d: got {%d %q} want {%d %q}", i, toks[i].Kind, toks[i].Text, w.kind, w.text)
		}
	}
}

func TestLexSkipsCommentsAndWhitespace(t *testing.T) {
	toks := collect("// a comment\nint x; // trailing\n")
	if len(toks) != 3 {
		t.Fatalf("token count: %d (%+v)", len(toks), toks)
	}
	if toks[0].Text != "int" || toks[1].Text != "x" {
		t.Fatalf("unexpected tokens: %+v", toks)
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := collect(`line "a \"quoted\" word\nnext";`)
	if toks[1].Kind != TokenString {
		t.Fatalf("expected string, got %+v", toks[1])
	}
	if toks[1].Text != "a \"quoted\" word\nnext" {
		t.Fatalf("unexpected string value: %q", toks[1].Text)
	}
}

func TestLexDottedIdentifier(t *testing.T) {
	toks := collect("hero.health")
	if len(toks) != 1 || toks[0].Kind != TokenIdent || toks[0].Text != "hero.health" {
		t.Fatalf("dotted identifier split: %+v", toks)
	}
}

func TestLexKeywordsAndLiterals(t *testing.T) {
	toks := collect("match m = true; picture p[4] = load(\"art\");")
	kinds := []TokenKind{
		TokenIdent, TokenIdent, TokenSymbol, TokenTrue, TokenSymbol,
		TokenPicture, TokenIdent, TokenSymbol, TokenNumber, TokenSymbol,
		TokenSymbol, TokenLoad, TokenSymbol, TokenString, TokenSymbol, TokenSymbol,
	}
	if len(toks) != len(kinds) {
		t.Fatalf("token count: got %d want %d: %+v", len(toks), len(kinds), toks)
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d (%q): kind %d, want %d", i, toks[i].Text, toks[i].Kind, k)
		}
	}
}

func TestLexNumbers(t *testing.T) {
	toks := collect("set x = -12;")
	var num *Token
	for i := range toks {
		if toks[i].Kind == TokenNumber {
			num = &toks[i]
		}
	}
	if num == nil || num.Number != -12 {
		t.Fatalf("negative literal: %+v", toks)
	}
}

func TestLexTwoCharOperators(t *testing.T) {
	toks := collect("a <= b == c -> d")
	texts := []string{"a", "<=", "b", "==", "c", "->", "d"}
	for i, w := range texts {
		if toks[i].Text != w {
			t.Fatalf("token %d: got %q want %q", i, toks[i].Text, w)
		}
	}
}

func TestLexSingleQuotedString(t *testing.T) {
	toks := collect("string s = 'hello world';")
	found := false
	for _, tk := range toks {
		if tk.Kind == TokenStringDecl && tk.Text == "hello world" {
			found = true
		}
	}
	if !found {
		t.Fatalf("single-quoted literal not lexed: %+v", toks)
	}
}

func TestLexLineNumbers(t *testing.T) {
	toks := collect("a\nb\n\nc")
	wantLines := []int{1, 2, 4}
	for i, w := range wantLines {
		if toks[i].Line != w {
			t.Fatalf("token %q line = %d, want %d", toks[i].Text, toks[i].Line, w)
		}
	}
}
