package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebigcx/compiler/internal/lexer"
	"github.com/thebigcx/compiler/internal/parser"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	root := parser.Parse(lexer.Lex([]byte(src)))
	var b strings.Builder
	require.NoError(t, New(&b).Generate(root))
	return b.String()
}

func TestMainReturningZero(t *testing.T) {
	out := generate(t, `fn public main() -> int32 { return 0; }`)
	assert.Contains(t, out, ".global main")
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "mov $0, %r8")
	assert.Contains(t, out, "mov %r8, %rax")
	assert.Contains(t, out, "ret")
}

func TestGlobalVarLoadAddStore(t *testing.T) {
	out := generate(t, `var x: int32 = 5; fn f() { x = x + 1; }`)
	assert.Contains(t, out, ".comm x, 4")
	assert.Contains(t, out, "mov x(%rip), %r8")
	assert.Contains(t, out, "add %r8, %r9")
	assert.Contains(t, out, "mov %r9, x(%rip)")
}

func TestStructMemberStoreUsesByteOffset(t *testing.T) {
	out := generate(t, `
struct P { a: int32, b: int32 };
var p: P;
fn g() { p.b = 7; }
`)
	assert.Contains(t, out, ".comm p, 8")
	assert.Contains(t, out, "lea p(%rip), %r8")
	assert.Contains(t, out, "mov $4, %r9")
	assert.Contains(t, out, "add %r8, %r9")
}

func TestExternCallWithStringLiteral(t *testing.T) {
	out := generate(t, `
fn extern puts(s: int8*) -> int32;
fn main() { puts("hi"); }
`)
	assert.Contains(t, out, ".section .rodata")
	assert.Contains(t, out, `.string "hi"`)
	assert.Contains(t, out, "lea L0(%rip), %r8")
	assert.Contains(t, out, "mov %r8, %rdi")
	assert.Contains(t, out, "call puts")
	assert.NotContains(t, out, ".global puts")
}

func TestIfElseEmitsTwoLabelsAndSetcc(t *testing.T) {
	out := generate(t, `fn main() -> int32 { if (1 == 1) { return 1; } else { return 0; } }`)
	assert.Contains(t, out, "sete %al")
	assert.Contains(t, out, "jne L")
	assert.Contains(t, out, "jmp L")
	labelCount := strings.Count(out, "L0:") + strings.Count(out, "L1:") + strings.Count(out, "L2:")
	assert.GreaterOrEqual(t, labelCount, 2)
}

func TestRegisterPoolExhaustionIsFatal(t *testing.T) {
	var r RegAlloc
	for i := 0; i < 4; i++ {
		r.Alloc(1)
	}
	assert.Panics(t, func() { r.Alloc(1) })
}
