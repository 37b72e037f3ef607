package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []token {
	t.Helper()

	lx := newLexer(context.Background(), []byte(src))

	var toks []token
	for {
		tok, err := lx.next()
		require.NoError(t, err)

		toks = append(toks, tok)

		if tok.kind == tEOF {
			return toks
		}
	}
}

func TestLexerPunctuationLongestMatch(t *testing.T) {
	toks := lexAll(t, "|> == != <= >= .. = < >")

	var texts []string
	for _, tok := range toks {
		if tok.kind == tPunct {
			texts = append(texts, tok.text)
		}
	}

	require.Equal(t, []string{"|>", "==", "!=", "<=", ">=", "..", "=", "<", ">"}, texts)
}

func TestLexerKeywordsVsIdents(t *testing.T) {
	toks := lexAll(t, "func each in result")

	require.Equal(t, tKeyword, toks[0].kind)
	require.Equal(t, tKeyword, toks[1].kind)
	require.Equal(t, tIdent, toks[2].kind) // "in" is a plain identifier
	require.Equal(t, tIdent, toks[3].kind)
}

func TestLexerNumberAndComment(t *testing.T) {
	toks := lexAll(t, "42 # trailing comment\n7")

	require.Equal(t, tNumber, toks[0].kind)
	require.Equal(t, "42", toks[0].text)
	require.Equal(t, tNumber, toks[1].kind)
	require.Equal(t, "7", toks[1].text)
	require.Equal(t, 2, toks[1].line)
}

func TestLexerUnexpectedCharacter(t *testing.T) {
	lx := newLexer(context.Background(), []byte("@"))

	_, err := lx.next()
	require.Error(t, err)
}
