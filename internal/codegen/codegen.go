// Package codegen walks a typed AST and emits GNU-assembler, AT&T-syntax
// x86-64 text. It is the last, naive stage of the pipeline: four
// registers, no spilling, no stack frames for locals (every `var`,
// global or local, is backed by a `.comm` symbol — see DESIGN.md).
package codegen

import (
	"fmt"
	"io"

	"github.com/thebigcx/compiler/internal/ast"
	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/token"
)

var paramRegs = [6]string{"%rdi", "%rsi", "%rdx", "%rcx", "%r8", "%r9"}

var setccByOp = map[token.Kind]string{
	token.EQ:  "sete",
	token.NEQ: "setne",
	token.GT:  "setg",
	token.LT:  "setl",
	token.GE:  "setge",
	token.LE:  "setle",
}

// Codegen holds the register allocator and emitter for one compile.
// Neither is global state; a fresh Codegen is cheap to construct per
// compilation (see SPEC_FULL.md §5).
type Codegen struct {
	emit *Emitter
	regs RegAlloc
}

func New(w io.Writer) *Codegen {
	return &Codegen{emit: NewEmitter(w)}
}

// Generate walks root, a global-scope Block, emitting one `.comm` or
// function body per top-level statement, and flushes the output.
func (c *Codegen) Generate(root *ast.Block) error {
	for _, stmt := range root.Stmts {
		c.genStmt(stmt)
	}
	return c.emit.Flush()
}

func (c *Codegen) genStmt(n ast.Node) {
	switch v := n.(type) {
	case *ast.VarDef:
		c.genVarDef(v)
	case *ast.FuncDef:
		c.genFuncDef(v)
	case *ast.Return:
		c.genReturn(v)
	case *ast.IfElse:
		c.genIfElse(v)
	case *ast.While:
		c.genWhile(v)
	case *ast.For:
		c.genFor(v)
	case *ast.Label:
		c.emit.Label(v.Name)
	case *ast.Goto:
		c.emit.Instr1("jmp", v.Name)
	case *ast.Asm:
		c.emit.Raw(v.Text)
	case *ast.Block:
		c.genBlock(v)
	default:
		reg := c.genExpr(n)
		c.regs.Free(reg)
	}
}

func (c *Codegen) genBlock(b *ast.Block) {
	for _, s := range b.Stmts {
		c.genStmt(s)
	}
}

// genVarDef emits a `.comm` for the declared variable, global or local,
// and immediately stores its initializer if one was given. There is no
// `.data`/`.bss` distinction and no stack frame: the modeled language
// has no notion of automatic storage (see DESIGN.md).
func (c *Codegen) genVarDef(v *ast.VarDef) {
	size := v.Sym.Type.AsmSizeof(v.Line())
	c.emit.Directive(".comm", fmt.Sprintf("%s, %d", v.Name, size))
	if v.Init != nil {
		reg := c.genExpr(v.Init)
		c.emit.Instr2("mov", regName(reg), v.Name+"(%rip)")
		c.regs.Free(reg)
	}
}

// genFuncDef emits nothing for an extern (bodyless) declaration. A
// defined function always gets an unconditional trailing `ret`, even
// when every path already returned; this mirrors the source's safety
// net exactly (see SPEC_FULL.md §4.4).
func (c *Codegen) genFuncDef(fd *ast.FuncDef) {
	if fd.Body == nil {
		return
	}
	c.regs.Reset()
	c.emit.Directive(".global", fd.Name)
	c.emit.Label(fd.Name)
	c.genBlock(fd.Body)
	c.emit.Instr0("ret")
	c.emit.BlankLine()
}

func (c *Codegen) genReturn(r *ast.Return) {
	if r.Value != nil {
		reg := c.genExpr(r.Value)
		c.emit.Instr2("mov", regName(reg), "%rax")
		c.regs.Free(reg)
	}
	c.emit.Instr0("ret")
}

func (c *Codegen) genCondJump(cond ast.Node, falseTarget string) {
	reg := c.genExpr(cond)
	c.emit.Instr2("mov", "$1", "%rax")
	c.emit.Instr2("cmp", regName(reg), "%rax")
	c.regs.Free(reg)
	c.emit.Instr1("jne", falseTarget)
}

func (c *Codegen) genIfElse(n *ast.IfElse) {
	end := c.emit.NewLabel()
	elseLbl := end
	if n.Else != nil {
		elseLbl = c.emit.NewLabel()
	}
	c.genCondJump(n.Cond, elseLbl)
	c.genBlock(n.Then)
	if n.Else != nil {
		c.emit.Instr1("jmp", end)
		c.emit.Label(elseLbl)
		c.genBlock(n.Else)
	}
	c.emit.Label(end)
}

// genWhile and genFor each read their own node's Cond field directly;
// because the AST is a sum of distinct struct types there is no shared
// offset for the source's `gen_while`/`ast->ifelse.cond` confusion to
// reproduce (see DESIGN.md, open question 3).
func (c *Codegen) genWhile(n *ast.While) {
	top := c.emit.NewLabel()
	end := c.emit.NewLabel()
	c.emit.Label(top)
	c.genCondJump(n.Cond, end)
	c.genBlock(n.Body)
	c.emit.Instr1("jmp", top)
	c.emit.Label(end)
}

func (c *Codegen) genFor(n *ast.For) {
	if n.Init != nil {
		c.regs.Free(c.genExpr(n.Init))
	}
	top := c.emit.NewLabel()
	end := c.emit.NewLabel()
	c.emit.Label(top)
	if n.Cond != nil {
		c.genCondJump(n.Cond, end)
	}
	c.genBlock(n.Body)
	if n.Update != nil {
		c.regs.Free(c.genExpr(n.Update))
	}
	c.emit.Instr1("jmp", top)
	c.emit.Label(end)
}

// genExpr is the expression-producer contract: every call returns a
// register index the caller owns and must free or return upward.
func (c *Codegen) genExpr(n ast.Node) int {
	switch v := n.(type) {
	case *ast.IntLit:
		reg := c.regs.Alloc(v.Line())
		c.emit.Instr2("mov", fmt.Sprintf("$%d", v.Value), regName(reg))
		return reg
	case *ast.StrLit:
		reg := c.regs.Alloc(v.Line())
		label := c.addString(v.Value)
		c.emit.Instr2("lea", label+"(%rip)", regName(reg))
		return reg
	case *ast.Ident:
		reg := c.regs.Alloc(v.Line())
		c.emit.Instr2("mov", v.Name+"(%rip)", regName(reg))
		return reg
	case *ast.SizeofExpr:
		reg := c.regs.Alloc(v.Line())
		c.emit.Instr2("mov", fmt.Sprintf("$%d", v.Target.AsmSizeof(v.Line())), regName(reg))
		return reg
	case *ast.Cast:
		return c.genExpr(v.Value)
	case *ast.Unary:
		return c.genUnary(v)
	case *ast.BinOp:
		return c.genBinOp(v)
	case *ast.Call:
		return c.genCall(v)
	default:
		cerr.Fatalf(cerr.Codegen, n.Line(), "cannot generate code for expression of type %T", n)
		panic("unreachable")
	}
}

func (c *Codegen) genUnary(v *ast.Unary) int {
	switch v.Op {
	case token.AMP:
		if ident, ok := v.Operand.(*ast.Ident); ok {
			reg := c.regs.Alloc(v.Line())
			c.emit.Instr2("lea", ident.Name+"(%rip)", regName(reg))
			return reg
		}
		// &*p cancels to p itself.
		if deref, ok := v.Operand.(*ast.Unary); ok && deref.Op == token.STAR {
			return c.genExpr(deref.Operand)
		}
		return c.genExpr(v.Operand)
	case token.STAR:
		childReg := c.genExpr(v.Operand)
		if v.LValue() {
			return childReg // address is the target; the assignment stores through it
		}
		reg := c.regs.Alloc(v.Line())
		c.emit.Instr2("mov", "("+regName(childReg)+")", regName(reg))
		c.regs.Free(childReg)
		return reg
	case token.MINUS:
		reg := c.genExpr(v.Operand)
		c.emit.Instr1("neg", regName(reg))
		return reg
	case token.NOT:
		reg := c.genExpr(v.Operand)
		c.emit.Instr2("cmp", "$0", regName(reg))
		c.emit.Instr1("sete", "%al")
		c.emit.Instr2("movzx", "%al", regName(reg))
		return reg
	default:
		cerr.Fatalf(cerr.Codegen, v.Line(), "unsupported unary operator %s", v.Op)
		panic("unreachable")
	}
}

func (c *Codegen) genBinOp(v *ast.BinOp) int {
	if v.Op == token.ASSIGN {
		return c.genAssign(v)
	}

	lhsReg := c.genExpr(v.Lhs)
	rhsReg := c.genExpr(v.Rhs)

	switch v.Op {
	case token.PLUS:
		c.emit.Instr2("add", regName(lhsReg), regName(rhsReg))
		c.regs.Free(lhsReg)
		return rhsReg
	case token.MINUS:
		c.emit.Instr2("sub", regName(lhsReg), regName(rhsReg))
		c.regs.Free(lhsReg)
		return rhsReg
	case token.STAR:
		c.emit.Instr2("imul", regName(lhsReg), regName(rhsReg))
		c.regs.Free(lhsReg)
		return rhsReg
	case token.SLASH:
		cerr.Fatalf(cerr.Codegen, v.Line(), "integer division is parsed but not implemented")
		panic("unreachable")
	case token.EQ, token.NEQ, token.LT, token.GT, token.LE, token.GE:
		return c.genComparison(v.Op, lhsReg, rhsReg, v.Line())
	case token.ANDAND, token.OROR:
		mnemonic := "and"
		if v.Op == token.OROR {
			mnemonic = "or"
		}
		c.emit.Instr2(mnemonic, regName(lhsReg), regName(rhsReg))
		c.regs.Free(lhsReg)
		return rhsReg
	default:
		cerr.Fatalf(cerr.Codegen, v.Line(), "unsupported binary operator %s", v.Op)
		panic("unreachable")
	}
}

// genComparison fixes the source's documented operand-order inversion
// (see DESIGN.md, open question 2): `cmp rhsReg, lhsReg` computes
// lhs - rhs, so the setcc mnemonic chosen directly matches the surface
// operator instead of needing to be read backwards.
func (c *Codegen) genComparison(op token.Kind, lhsReg, rhsReg, line int) int {
	mnemonic, ok := setccByOp[op]
	if !ok {
		cerr.Fatalf(cerr.Codegen, line, "unsupported comparison operator %s", op)
	}
	c.emit.Instr2("cmp", regName(rhsReg), regName(lhsReg))
	c.regs.Free(lhsReg)
	c.regs.Free(rhsReg)
	result := c.regs.Alloc(line)
	c.emit.Instr1(mnemonic, "%al")
	c.emit.Instr2("movzx", "%al", regName(result))
	return result
}

// genAssign evaluates both sides, lhs address first; a deref-unary lhs
// stores through the pointer, anything else is treated as a named
// global/local symbol.
func (c *Codegen) genAssign(v *ast.BinOp) int {
	var rhsReg int
	switch lhs := v.Lhs.(type) {
	case *ast.Unary:
		if lhs.Op != token.STAR {
			cerr.Fatalf(cerr.Codegen, v.Line(), "assignment target is not an lvalue")
		}
		addrReg := c.genExpr(lhs) // lhs.LValue is true: returns the address unchanged
		rhsReg = c.genExpr(v.Rhs)
		c.emit.Instr2("mov", regName(rhsReg), "("+regName(addrReg)+")")
		c.regs.Free(addrReg)
	case *ast.Ident:
		rhsReg = c.genExpr(v.Rhs)
		c.emit.Instr2("mov", regName(rhsReg), lhs.Name+"(%rip)")
	default:
		cerr.Fatalf(cerr.Codegen, v.Line(), "assignment target is not an lvalue")
	}
	return rhsReg
}

// genCall evaluates arguments left to right, moves each into its System
// V integer argument register, and calls by name when the callee is a
// direct function (wrapped in an address-of by the parser) or through a
// register when it is a function-pointer value.
func (c *Codegen) genCall(v *ast.Call) int {
	argRegs := make([]int, len(v.Args))
	for i, a := range v.Args {
		argRegs[i] = c.genExpr(a)
	}
	for i, r := range argRegs {
		c.emit.Instr2("mov", regName(r), paramRegs[i])
		c.regs.Free(r)
	}

	if addr, ok := v.Callee.(*ast.Unary); ok && addr.Op == token.AMP {
		if ident, ok := addr.Operand.(*ast.Ident); ok {
			c.emit.Instr1("call", ident.Name)
			result := c.regs.Alloc(v.Line())
			c.emit.Instr2("mov", "%rax", regName(result))
			return result
		}
	}

	calleeReg := c.genExpr(v.Callee)
	c.emit.Instr1("call", "*"+regName(calleeReg))
	c.regs.Free(calleeReg)
	result := c.regs.Alloc(v.Line())
	c.emit.Instr2("mov", "%rax", regName(result))
	return result
}

// addString allocates a fresh label, emits the literal into .rodata, and
// restores the .text section so callers can keep appending code.
func (c *Codegen) addString(s string) string {
	label := c.emit.NewLabel()
	c.emit.Directive(".section", ".rodata")
	c.emit.RodataString(label, s)
	c.emit.Directive(".section", ".text")
	return label
}
