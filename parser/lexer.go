package parser

import "strconv"

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdent
	TokenNumber
	TokenString
	TokenSymbol
	TokenStringDecl
	TokenTrue
	TokenFalse
	TokenPicture
	TokenLoad
)

// Token is produced lazily, one at a time; the parser is its only consumer.
type Token struct {
	Kind   TokenKind
	Text   string
	Number int32
	Line   int
}

type Lexer struct {
	src  string
	pos  int
	line int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1}
}

func (l *Lexer) peek() byte {
	if l.pos < len(l.src) {
		return l.src[l.pos]
	}
	return 0
}

func (l *Lexer) get() byte {
	if l.pos < len(l.src) {
		c := l.src[l.pos]
		l.pos++
		if c == '\n' {
			l.line++
		}
		return c
	}
	return 0
}

func (l *Lexer) startsWith(s string) bool {
	return l.pos+len(s) <= len(l.src) && l.src[l.pos:l.pos+len(s)] == s
}

func (l *Lexer) skipSpace() {
	for isSpace(l.peek()) {
		if l.peek() == '\n' {
			l.line++
		}
		l.pos++
	}
}

// Next returns the next token, advancing the lexer. At exhaustion it keeps
// returning TokenEOF. Malformed literals are not errors: an unterminated
// string is consumed up to end of input.
func (l *Lexer) Next() Token {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return Token{Kind: TokenEOF, Line: l.line}
	}

	c := l.peek()

	// // line comment
	if l.startsWith("//") {
		for l.peek() != 0 && l.peek() != '\n' {
			l.get()
		}
		return l.Next()
	}

	if c == '"' {
		l.get()
		var out []byte
		for l.peek() != 0 {
			if l.peek() == '\\' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '"' {
				l.get()
				l.get()
				out = append(out, '"')
				continue
			}
			if l.peek() == '"' {
				l.get()
				break
			}
			ch := l.get()
			if ch == '\\' && l.peek() != 0 {
				esc := l.get()
				if esc == 'n' {
					out = append(out, '\n')
				} else {
					out = append(out, esc)
				}
			} else {
				out = append(out, ch)
			}
		}
		return Token{Kind: TokenString, Text: string(out), Line: l.line}
	}

	// identifiers keep interior dots so instance.field lexes as one token
	if isAlpha(c) || c == '_' {
		start := l.pos
		for isAlnum(l.peek()) || l.peek() == '_' || l.peek() == '.' {
			l.get()
		}
		id := l.src[start:l.pos]
		switch id {
		case "true":
			return Token{Kind: TokenTrue, Text: id, Line: l.line}
		case "false":
			return Token{Kind: TokenFalse, Text: id, Line: l.line}
		case "picture":
			return Token{Kind: TokenPicture, Text: id, Line: l.line}
		case "load":
			return Token{Kind: TokenLoad, Text: id, Line: l.line}
		}
		return Token{Kind: TokenIdent, Text: id, Line: l.line}
	}

	if isDigit(c) || (c == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])) {
		start := l.pos
		if l.peek() == '-' {
			l.get()
		}
		for isDigit(l.peek()) {
			l.get()
		}
		text := l.src[start:l.pos]
		n, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			n = 0
		}
		return Token{Kind: TokenNumber, Text: text, Number: int32(n), Line: l.line}
	}

	// single-quoted string-declaration literal
	if c == '\'' {
		l.get()
		var out []byte
		for l.peek() != 0 && l.peek() != '\'' {
			ch := l.get()
			if ch == '\\' && l.peek() != 0 {
				esc := l.get()
				if esc == 'n' {
					out = append(out, '\n')
				} else {
					out = append(out, esc)
				}
			} else {
				out = append(out, ch)
			}
		}
		if l.peek() == '\'' {
			l.get()
		}
		return Token{Kind: TokenStringDecl, Text: string(out), Line: l.line}
	}

	for _, two := range [...]string{"<=", ">=", "==", "!=", "->"} {
		if l.startsWith(two) {
			l.pos += 2
			return Token{Kind: TokenSymbol, Text: two, Line: l.line}
		}
	}

	return Token{Kind: TokenSymbol, Text: string(l.get()), Line: l.line}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isAlnum(c byte) bool {
	return isAlpha(c) || isDigit(c)
}
