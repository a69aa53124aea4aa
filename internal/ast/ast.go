// Package ast defines the typed abstract syntax tree produced by
// internal/parser and consumed by internal/codegen. Node is implemented
// as a closed set of concrete struct types (a sum type) rather than an
// open interface hierarchy; every node embeds Base for its vtype/lvalue
// bookkeeping.
package ast

import (
	"github.com/thebigcx/compiler/internal/symtab"
	"github.com/thebigcx/compiler/internal/token"
	"github.com/thebigcx/compiler/internal/types"
)

// Node is satisfied by every concrete AST node via the embedded Base.
type Node interface {
	Line() int
	VType() *types.Type
	SetVType(*types.Type)
	LValue() bool
	SetLValue(bool)
}

// Base carries the two properties every expression (and, harmlessly,
// every statement) node has: its resolved type and its lvalue-ness. The
// generator only consults LValue on deref unary nodes.
type Base struct {
	LineNo    int
	VTypeVal  *types.Type
	LValueVal bool
}

func (b *Base) Line() int                 { return b.LineNo }
func (b *Base) VType() *types.Type        { return b.VTypeVal }
func (b *Base) SetVType(t *types.Type)    { b.VTypeVal = t }
func (b *Base) LValue() bool              { return b.LValueVal }
func (b *Base) SetLValue(v bool)          { b.LValueVal = v }

// BinOp is a binary operator application. Op is one of the token kinds
// the precedence table dispatches (+, -, *, /, ==, !=, <, >, <=, >=, &&,
// ||, =). When the parser forms this node from a binary operator in the
// source, it sets Lhs.LValue=true and Rhs.LValue=false, regardless of what
// either operand's own shape is; the address sums it builds for indexing
// and member access leave both flags untouched.
type BinOp struct {
	Base
	Op       token.Kind
	Lhs, Rhs Node
}

// Unary is a prefix (&, *, !, -) operator application.
type Unary struct {
	Base
	Op      token.Kind
	Operand Node
}

type IntLit struct {
	Base
	Value uint64
}

type StrLit struct {
	Base
	Value string
}

// Ident references a symbol resolved at parse time; Sym is never nil.
type Ident struct {
	Base
	Name string
	Sym  *symtab.Symbol
}

// Cast converts Value to Target, which must be integral and non-pointer.
type Cast struct {
	Base
	Target *types.Type
	Value  Node
}

// SizeofExpr yields the asm_sizeof of Target as an integer literal at
// codegen time.
type SizeofExpr struct {
	Base
	Target *types.Type
}

// Call invokes Callee (already wrapped in an address-of by the parser
// when it names a function directly) with Args, whose count has already
// been checked against the callee's parameter list.
type Call struct {
	Base
	Callee Node
	Args   []Node
}

// VarDef declares a variable; the symbol itself, including its resolved
// type, lives in Sym. Init is nil for an uninitialized declaration
// (which requires an explicit type — see parser).
type VarDef struct {
	Base
	Name string
	Init Node
	Sym  *symtab.Symbol
}

// FuncDef declares a function. Body is nil for an extern declaration.
// Params mirrors the symbols added to the function scope (the parent of
// Body's scope) so the generator can read parameter order without
// re-walking the scope map.
type FuncDef struct {
	Base
	Name   string
	Params []*symtab.Symbol
	Body   *Block
	Sym    *symtab.Symbol
}

// Asm holds a raw assembly string emitted verbatim by the generator.
type Asm struct {
	Base
	Text string
}

// Block owns a scope and an ordered statement list. The root of every
// AST is a Block of kind symtab.Global.
type Block struct {
	Base
	Scope *symtab.Scope
	Stmts []Node
}

// Return refers back to its enclosing FuncDef directly (no back-pointer
// table; see DESIGN.md) so the generator and checker can read its
// declared return type without re-threading context.
type Return struct {
	Base
	Func  *FuncDef
	Value Node // nil for a bare "return;"
}

type IfElse struct {
	Base
	Cond Node
	Then *Block
	Else *Block // nil when there is no else clause
}

type While struct {
	Base
	Cond Node
	Body *Block
}

type For struct {
	Base
	Init, Cond, Update Node // each may be nil
	Body               *Block
}

type Label struct {
	Base
	Name string
}

type Goto struct {
	Base
	Name string
}
