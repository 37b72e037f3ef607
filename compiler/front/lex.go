package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/loc"
	"tlog.app/go/tlog"
)

type tokKind int

const (
	tEOF tokKind = iota
	tIdent
	tKeyword
	tNumber
	tPunct
)

type token struct {
	kind tokKind
	text string
	pos  int
	line int
}

var keywords = map[string]bool{
	"func": true, "return": true, "if": true, "else": true,
	"for": true, "each": true, "range": true, "print": true,
	"and": true, "or": true, "not": true,
}

// puncts is tried longest-first so `|>`, `==`, `..` and friends are not
// split into their single-character prefixes.
var puncts = []string{
	"|>", "==", "!=", "<=", ">=", "..",
	"(", ")", "{", "}", ",", ";", "=", "+", "-", "*", "/", "%", "<", ">",
}

type lexer struct {
	ctx  context.Context
	b    []byte
	pos  int
	line int
}

func newLexer(ctx context.Context, src []byte) *lexer {
	return &lexer{ctx: ctx, b: src, line: 1}
}

// next returns the token starting at or after the lexer's current
// position, and advances past it. It never backs up: callers that need
// lookahead keep their own token buffer (see parser.peekN).
func (l *lexer) next() (tok token, err error) {
	if tr := tlog.SpanFromContext(l.ctx); tr.If("lex") {
		defer func() {
			tr.Printw("token", "kind", tok.kind, "text", tok.text, "pos", tok.pos, "from", loc.Callers(1, 3))
		}()
	}

	l.skipSpaceAndComments()

	tok.pos = l.pos
	tok.line = l.line

	if l.pos >= len(l.b) {
		tok.kind = tEOF
		return tok, nil
	}

	c := l.b[l.pos]

	switch {
	case isAlpha(c):
		e := l.pos
		for e < len(l.b) && isAlnum(l.b[e]) {
			e++
		}

		text := string(l.b[l.pos:e])
		l.pos = e

		if keywords[text] {
			tok.kind = tKeyword
		} else {
			tok.kind = tIdent
		}
		tok.text = text

		return tok, nil
	case isDigit(c):
		e := l.pos
		for e < len(l.b) && isDigit(l.b[e]) {
			e++
		}

		tok.kind = tNumber
		tok.text = string(l.b[l.pos:e])
		l.pos = e

		return tok, nil
	default:
		for _, p := range puncts {
			if l.hasPrefix(p) {
				tok.kind = tPunct
				tok.text = p
				l.pos += len(p)

				return tok, nil
			}
		}

		return tok, errors.New("unexpected character %q at pos %d", c, l.pos)
	}
}

func (l *lexer) hasPrefix(s string) bool {
	if l.pos+len(s) > len(l.b) {
		return false
	}

	return string(l.b[l.pos:l.pos+len(s)]) == s
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.b) {
		c := l.b[l.pos]

		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.b) && l.b[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isAlpha(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func (k tokKind) String() string {
	switch k {
	case tEOF:
		return "eof"
	case tIdent:
		return "ident"
	case tKeyword:
		return "keyword"
	case tNumber:
		return "number"
	case tPunct:
		return "punct"
	default:
		return "?"
	}
}
