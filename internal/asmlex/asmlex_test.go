package asmlex

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenize(t *testing.T, src string) []Token {
	t.Helper()
	toks, err := NewTokenizer(strings.NewReader(src)).Tokenize()
	require.NoError(t, err)
	return toks
}

func TestTokenizeInstructionLine(t *testing.T) {
	toks := tokenize(t, "mov %r8, %rax")
	require.Len(t, toks, 4)
	assert.Equal(t, Mnemonic, toks[0].Kind)
	assert.Equal(t, "mov", toks[0].Text)
	assert.Equal(t, Register, toks[1].Kind)
	assert.Equal(t, "%r8", toks[1].Text)
	assert.Equal(t, Punct, toks[2].Kind)
	assert.Equal(t, Register, toks[3].Kind)
}

func TestTokenizeMemoryOperand(t *testing.T) {
	toks := tokenize(t, "mov [rbp+8], %r9")
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Contains(t, kinds, Punct)
	assert.Contains(t, kinds, Ident)
	assert.Contains(t, kinds, IntLit)
}

func TestTokenizeSizeKeyword(t *testing.T) {
	toks := tokenize(t, "u32 count")
	require.Len(t, toks, 2)
	assert.Equal(t, Keyword, toks[0].Kind)
	assert.Equal(t, Ident, toks[1].Kind)
}

func TestIntLiteralBasesIncludingBinary(t *testing.T) {
	cases := map[string]uint64{
		"42":     42,
		"0x2A":   42,
		"052":    42,
		"0b101":  5,
	}
	for src, want := range cases {
		toks := tokenize(t, src)
		require.Len(t, toks, 1, "source %q", src)
		assert.Equal(t, IntLit, toks[0].Kind)
		assert.Equal(t, want, toks[0].Value, "source %q", src)
	}
}

func TestTokenizeLabelAndJump(t *testing.T) {
	toks := tokenize(t, "loop: jne loop")
	require.Len(t, toks, 4)
	assert.Equal(t, Ident, toks[0].Kind)
	assert.Equal(t, Punct, toks[1].Kind)
	assert.Equal(t, Mnemonic, toks[2].Kind)
	assert.Equal(t, Ident, toks[3].Kind)
}
