package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebigcx/compiler/internal/cerr"
)

func TestCompileEndToEnd(t *testing.T) {
	var out strings.Builder
	err := New().Compile(strings.NewReader(`fn public main() -> int32 { return 0; }`), &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), ".global main")
}

func TestCompileRecoversFatalErrorAsReturnValue(t *testing.T) {
	var out strings.Builder
	err := New().Compile(strings.NewReader(`fn main() { return y; }`), &out)
	require.Error(t, err)
	ce, ok := err.(*cerr.Error)
	require.True(t, ok)
	assert.Equal(t, cerr.Scope, ce.Kind)
}

func TestCompileReportsLexErrors(t *testing.T) {
	var out strings.Builder
	err := New().Compile(strings.NewReader("var x = `;"), &out)
	require.Error(t, err)
	ce, ok := err.(*cerr.Error)
	require.True(t, ok)
	assert.Equal(t, cerr.Lex, ce.Kind)
}
