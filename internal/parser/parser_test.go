package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thebigcx/compiler/internal/ast"
	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/lexer"
)

func parse(t *testing.T, src string) *ast.Block {
	t.Helper()
	return Parse(lexer.Lex([]byte(src)))
}

func mustPanic(t *testing.T, fn func()) *cerr.Error {
	t.Helper()
	var got *cerr.Error
	func() {
		defer func() {
			r := recover()
			require.NotNil(t, r)
			e, ok := r.(*cerr.Error)
			require.True(t, ok, "expected *cerr.Error, got %#v", r)
			got = e
		}()
		fn()
	}()
	return got
}

func TestParseMainReturningConst(t *testing.T) {
	blk := parse(t, `fn public main() -> int32 { return 0; }`)
	require.Len(t, blk.Stmts, 1)
	fd, ok := blk.Stmts[0].(*ast.FuncDef)
	require.True(t, ok)
	assert.Equal(t, "main", fd.Name)
	require.NotNil(t, fd.Body)
	require.Len(t, fd.Body.Stmts, 1)
	_, ok = fd.Body.Stmts[0].(*ast.Return)
	assert.True(t, ok)
}

func TestStructOffsetsAccumulateWithoutPadding(t *testing.T) {
	blk := parse(t, `
struct P { a: int32, b: int32 };
var p: P;
fn g() { p.b = 7; }
`)
	require.Len(t, blk.Stmts, 2) // struct decl produces no node
	fd := blk.Stmts[1].(*ast.FuncDef)
	assign := fd.Body.Stmts[0].(*ast.BinOp)
	deref := assign.Lhs.(*ast.Unary)
	sum := deref.Operand.(*ast.BinOp)
	offsetNode := sum.Rhs.(*ast.IntLit)
	assert.Equal(t, uint64(4), offsetNode.Value)
}

func TestTypedefIdempotence(t *testing.T) {
	blk := parse(t, `typedef A = int32; typedef B = A; var x: B;`)
	vd := blk.Stmts[0].(*ast.VarDef)
	assert.Equal(t, "int32", vd.VType().String())
}

func TestCallArityMismatchIsFatal(t *testing.T) {
	e := mustPanic(t, func() {
		parse(t, `
fn f(a: int32) -> int32 { return a; }
fn main() { f(1, 2); }
`)
	})
	assert.Equal(t, cerr.Type, e.Kind)
}

func TestScopeDisciplineSiblingBlocksDoNotSeeEachOther(t *testing.T) {
	e := mustPanic(t, func() {
		parse(t, `
fn main() {
  if (1) { var x: int32 = 1; }
  if (1) { x = 2; }
}
`)
	})
	assert.Equal(t, cerr.Scope, e.Kind)
}

func TestUndeclaredIdentifierIsFatal(t *testing.T) {
	e := mustPanic(t, func() {
		parse(t, `fn main() { return y; }`)
	})
	assert.Equal(t, cerr.Scope, e.Kind)
}

func TestExternFunctionWithBodyIsFatal(t *testing.T) {
	e := mustPanic(t, func() {
		parse(t, `fn extern puts(s: int8*) -> int32 { return 0; }`)
	})
	assert.Equal(t, cerr.Declaration, e.Kind)
}

func TestNonExternFunctionWithoutBodyIsFatal(t *testing.T) {
	e := mustPanic(t, func() {
		parse(t, `fn puts(s: int8*) -> int32;`)
	})
	assert.Equal(t, cerr.Declaration, e.Kind)
}

func TestStringLiteralCallSequence(t *testing.T) {
	blk := parse(t, `
fn extern puts(s: int8*) -> int32;
fn main() { puts("hi"); }
`)
	main := blk.Stmts[1].(*ast.FuncDef)
	call := main.Body.Stmts[0].(*ast.Call)
	assert.Len(t, call.Args, 1)
	str, ok := call.Args[0].(*ast.StrLit)
	require.True(t, ok)
	assert.Equal(t, "hi", str.Value)
}
