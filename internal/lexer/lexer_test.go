package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/token"
)

func TestLexKeywordsAndIdent(t *testing.T) {
	toks := Lex([]byte("fn main return foo_bar"))
	require.Len(t, toks, 5)
	assert.Equal(t, token.FN, toks[0].Kind)
	assert.Equal(t, token.IDENT, toks[1].Kind)
	assert.Equal(t, "main", toks[1].StrVal)
	assert.Equal(t, token.RETURN, toks[2].Kind)
	assert.Equal(t, token.IDENT, toks[3].Kind)
	assert.Equal(t, token.EOF, toks[4].Kind)
}

func TestLexIntegerBases(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{"42", 42},
		{"0x2A", 42},
		{"052", 42}, // octal
		{"0", 0},
	}
	for _, c := range cases {
		toks := Lex([]byte(c.src))
		require.Len(t, toks, 2, c.src)
		assert.Equal(t, token.INTLIT, toks[0].Kind, c.src)
		assert.Equal(t, c.want, toks[0].IntVal, c.src)
	}
}

func TestLexTwoCharOperatorsCommitToLongestMatch(t *testing.T) {
	toks := Lex([]byte("-> == != >= <= && || ++ --"))
	want := []token.Kind{
		token.ARROW, token.EQ, token.NEQ, token.GE, token.LE,
		token.ANDAND, token.OROR, token.INC, token.DEC, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		assert.Equal(t, k, toks[i].Kind)
	}
}

func TestLexStringLiteralNoEscapes(t *testing.T) {
	toks := Lex([]byte(`"hi\n"`))
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRLIT, toks[0].Kind)
	assert.Equal(t, `hi\n`, toks[0].StrVal)
}

func TestLexLineNumbers(t *testing.T) {
	toks := Lex([]byte("var x;\nvar y;\n"))
	assert.Equal(t, 1, toks[0].Line)
	var secondLine int
	for _, tok := range toks {
		if tok.Kind == token.IDENT && tok.StrVal == "y" {
			secondLine = tok.Line
		}
	}
	assert.Equal(t, 2, secondLine)
}

func TestLexUnrecognizedCharIsFatal(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(*cerr.Error)
		require.True(t, ok)
		assert.Equal(t, cerr.Lex, err.Kind)
	}()
	Lex([]byte("var x = `;"))
}
