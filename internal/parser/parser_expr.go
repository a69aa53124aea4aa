package parser

import (
	"math"

	"github.com/thebigcx/compiler/internal/ast"
	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/token"
	"github.com/thebigcx/compiler/internal/types"
)

// prec is the fixed precedence table; higher binds tighter. Operators
// that appear in the token set but not here (& | ^ ~ ? ++ --) are lexed
// but rejected by parseExpr/parsePrimary if they turn up where an
// operator or primary is expected (see DESIGN.md, open question 4).
var prec = map[token.Kind]int{
	token.ASSIGN: 1,
	token.OROR:   2,
	token.ANDAND: 3,
	token.PLUS:   4,
	token.MINUS:  4,
	token.STAR:   5,
	token.SLASH:  5,
	token.EQ:     6,
	token.NEQ:    6,
	token.LT:     7,
	token.GT:     7,
	token.LE:     7,
	token.GE:     7,
}

func rightAssoc(op token.Kind) bool { return op == token.ASSIGN }

// parseExpr is the precedence-climbing entry point; minPrec is the
// lowest-precedence operator parseExpr is willing to consume (callers
// pass 1 to parse a full expression, higher values to bind tighter from
// within a recursive call).
func (p *Parser) parseExpr(minPrec int) ast.Node {
	lhs := p.parseUnary()

	for {
		op := p.curr().Kind
		opPrec, ok := prec[op]
		if !ok || opPrec < minPrec {
			return lhs
		}
		line := p.curr().Line
		p.next()

		nextMin := opPrec + 1
		if rightAssoc(op) {
			nextMin = opPrec
		}
		rhs := p.parseExpr(nextMin)
		lhs = p.makeBinOp(op, lhs, rhs, line)
	}
}

// makeBinOp forms a binop node, marking lhs.lvalue=1 and rhs.lvalue=0
// per the source's lvalue convention, and checks operand compatibility.
func (p *Parser) makeBinOp(op token.Kind, lhs, rhs ast.Node, line int) ast.Node {
	lhs.SetLValue(true)
	rhs.SetLValue(false)

	n := &ast.BinOp{Op: op, Lhs: lhs, Rhs: rhs}
	n.LineNo = line

	if op == token.ASSIGN {
		if !types.Compatible(lhs.VType(), rhs.VType()) {
			cerr.Fatalf(cerr.Type, line, "incompatible types in assignment")
		}
		n.SetVType(rhs.VType())
		return n
	}

	if !types.Compatible(lhs.VType(), rhs.VType()) {
		cerr.Fatalf(cerr.Type, line, "incompatible operand types for '%s'", op)
	}
	switch op {
	case token.EQ, token.NEQ, token.LT, token.GT, token.LE, token.GE, token.ANDAND, token.OROR:
		n.SetVType(types.Primitive(types.Int32))
	default:
		n.SetVType(lhs.VType())
	}
	return n
}

// parseUnary implements `pre`: the prefix operators & * ! -.
func (p *Parser) parseUnary() ast.Node {
	switch p.curr().Kind {
	case token.AMP:
		line := p.curr().Line
		p.next()
		operand := p.parseUnary()
		n := &ast.Unary{Op: token.AMP, Operand: operand}
		n.LineNo = line
		n.SetVType(operand.VType().AddrOf())
		return n
	case token.STAR:
		line := p.curr().Line
		p.next()
		operand := p.parseUnary()
		if !operand.VType().IsPointer() {
			cerr.Fatalf(cerr.Type, line, "dereference of non-pointer type %s", operand.VType())
		}
		n := &ast.Unary{Op: token.STAR, Operand: operand}
		n.LineNo = line
		n.SetVType(operand.VType().Deref(line))
		return n
	case token.NOT:
		line := p.curr().Line
		p.next()
		operand := p.parseUnary()
		if !operand.VType().IsIntegral() {
			cerr.Fatalf(cerr.Type, line, "logical negation of non-integral type %s", operand.VType())
		}
		n := &ast.Unary{Op: token.NOT, Operand: operand}
		n.LineNo = line
		n.SetVType(types.Primitive(types.Int32))
		return n
	case token.MINUS:
		line := p.curr().Line
		p.next()
		operand := p.parseUnary()
		if !operand.VType().IsIntegral() {
			cerr.Fatalf(cerr.Type, line, "arithmetic negation of non-integral type %s", operand.VType())
		}
		n := &ast.Unary{Op: token.MINUS, Operand: operand}
		n.LineNo = line
		n.SetVType(operand.VType())
		return n
	default:
		return p.parsePostfix()
	}
}

// parsePostfix implements `post`: array indexing, calls, and member
// access, left to right, all at the same tightest binding level.
func (p *Parser) parsePostfix() ast.Node {
	n := p.parsePrimary()
	for {
		switch p.curr().Kind {
		case token.LBRACK:
			n = p.parseIndex(n)
		case token.LPAREN:
			n = p.parseCall(n)
		case token.DOT, token.ARROW:
			n = p.parseMemberAccess(n)
		default:
			return n
		}
	}
}

// parseIndex lowers `base[idx]` to `*(base + idx)`, matching the
// generator's lack of any element-size scaling (a naive design choice
// carried over unchanged).
func (p *Parser) parseIndex(base ast.Node) ast.Node {
	line := p.curr().Line
	p.next() // '['
	idx := p.parseExpr(1)
	p.expect(token.RBRACK)

	if !base.VType().IsPointer() {
		cerr.Fatalf(cerr.Type, line, "indexing non-pointer type %s", base.VType())
	}
	elemType := base.VType().Deref(line)

	sum := &ast.BinOp{Op: token.PLUS, Lhs: base, Rhs: idx}
	sum.LineNo = line
	sum.SetVType(base.VType())

	deref := &ast.Unary{Op: token.STAR, Operand: sum}
	deref.LineNo = line
	deref.SetVType(elemType)
	return deref
}

// parseCall handles `callee(args...)`. A direct function callee is
// wrapped in an address-of so the generator emits a call-by-name; a
// pointer-to-function value is called through as-is.
func (p *Parser) parseCall(callee ast.Node) ast.Node {
	line := p.curr().Line
	p.next() // '('

	var args []ast.Node
	if p.curr().Kind != token.RPAREN {
		for {
			args = append(args, p.parseExpr(1))
			if p.curr().Kind == token.COMMA {
				p.next()
				continue
			}
			break
		}
	}
	p.expect(token.RPAREN)

	ct := callee.VType()
	var funcType *types.Type
	switch {
	case ct.Name == types.Func && ct.Ptr == 0:
		funcType = ct
		addr := &ast.Unary{Op: token.AMP, Operand: callee}
		addr.LineNo = line
		addr.SetVType(ct.AddrOf())
		callee = addr
	case ct.Name == types.Func && ct.Ptr == 1:
		funcType = &types.Type{Name: types.Func, FuncRet: ct.FuncRet, FuncParams: ct.FuncParams}
	default:
		cerr.Fatalf(cerr.Type, line, "called object is not a function")
	}

	if len(args) < len(funcType.FuncParams) {
		cerr.Fatalf(cerr.Type, line, "too few parameters in call")
	}
	if len(args) > len(funcType.FuncParams) {
		cerr.Fatalf(cerr.Type, line, "too many parameters in call")
	}
	for i, a := range args {
		if !types.Compatible(a.VType(), funcType.FuncParams[i]) {
			cerr.Fatalf(cerr.Type, line, "incompatible argument %d", i+1)
		}
	}

	n := &ast.Call{Callee: callee, Args: args}
	n.LineNo = line
	n.SetVType(funcType.FuncRet)
	return n
}

// parseMemberAccess implements `memaccess`: it is only ever reached from
// parsePostfix's DOT/ARROW case, so the chain loop below always runs at
// least once and never reads an uninitialized member (see DESIGN.md,
// open question 1).
func (p *Parser) parseMemberAccess(base ast.Node) ast.Node {
	op := p.curr().Kind
	line := p.curr().Line
	p.next() // '.' or '->'

	var addr ast.Node
	var structType *types.Type
	if op == token.DOT {
		if base.VType().IsPointer() {
			cerr.Fatalf(cerr.Type, line, "'.' used on pointer type %s; use '->'", base.VType())
		}
		structType = base.VType()
		takeAddr := &ast.Unary{Op: token.AMP, Operand: base}
		takeAddr.LineNo = line
		takeAddr.SetVType(structType.AddrOf())
		addr = takeAddr
	} else {
		if !base.VType().IsPointer() {
			cerr.Fatalf(cerr.Type, line, "'->' used on non-pointer type %s", base.VType())
		}
		structType = base.VType().Deref(line)
		addr = base
	}

	var member types.Member
	for {
		name := p.expectIdent()
		member = findMember(structType, name, line)

		offsetLit := &ast.IntLit{Value: uint64(member.Offset)}
		offsetLit.SetVType(types.Primitive(types.Uint64))
		sum := &ast.BinOp{Op: token.PLUS, Lhs: addr, Rhs: offsetLit}
		sum.LineNo = line
		sum.SetVType(addr.VType())
		addr = sum
		structType = member.Type

		if p.curr().Kind != token.DOT && p.curr().Kind != token.ARROW {
			break
		}
		chainOp := p.curr().Kind
		chainLine := p.curr().Line
		p.next()
		if chainOp == token.DOT {
			if structType.IsPointer() {
				cerr.Fatalf(cerr.Type, chainLine, "'.' used on pointer type %s; use '->'", structType)
			}
		} else {
			if !structType.IsPointer() {
				cerr.Fatalf(cerr.Type, chainLine, "'->' used on non-pointer type %s", structType)
			}
			structType = structType.Deref(chainLine)
		}
	}

	deref := &ast.Unary{Op: token.STAR, Operand: addr}
	deref.LineNo = line
	deref.SetVType(member.Type)
	return deref
}

func findMember(t *types.Type, name string, line int) types.Member {
	if t.Name != types.Struct && t.Name != types.Union {
		cerr.Fatalf(cerr.Type, line, "member access on non-struct type %s", t)
	}
	for _, m := range t.Members {
		if m.Name == name {
			return m
		}
	}
	cerr.Fatalf(cerr.Type, line, "type %s has no member '%s'", t, name)
	panic("unreachable")
}

// parsePrimary implements `primary`: sizeof, integer/string literals,
// identifiers, parenthesized expressions, and C-style casts.
func (p *Parser) parsePrimary() ast.Node {
	tok := p.curr()
	switch tok.Kind {
	case token.SIZEOF:
		p.next()
		p.expect(token.LPAREN)
		t := p.parseType()
		p.expect(token.RPAREN)
		n := &ast.SizeofExpr{Target: t}
		n.LineNo = tok.Line
		n.SetVType(types.Primitive(types.Uint64))
		return n
	case token.INTLIT:
		p.next()
		n := &ast.IntLit{Value: tok.IntVal}
		n.LineNo = tok.Line
		if tok.IntVal <= math.MaxUint32 {
			n.SetVType(types.Primitive(types.Uint32))
		} else {
			n.SetVType(types.Primitive(types.Uint64))
		}
		return n
	case token.STRLIT:
		p.next()
		n := &ast.StrLit{Value: tok.StrVal}
		n.LineNo = tok.Line
		n.SetVType(&types.Type{Name: types.Int8, Ptr: 1})
		return n
	case token.IDENT:
		p.next()
		sym := p.scope.MustLookup(tok.StrVal, tok.Line)
		n := &ast.Ident{Name: tok.StrVal, Sym: sym}
		n.LineNo = tok.Line
		n.SetVType(sym.Type)
		n.SetLValue(true)
		return n
	case token.LPAREN:
		return p.parseParenOrCast()
	default:
		cerr.Fatalf(cerr.Syntax, tok.Line, "unexpected token %s in expression", tok.Kind)
		panic("unreachable")
	}
}

// parseParenOrCast distinguishes `(T) expr` from `(expr)` by checking
// whether the token after '(' can start a type.
func (p *Parser) parseParenOrCast() ast.Node {
	line := p.curr().Line
	p.next() // '('

	if p.isTypeStart(p.curr()) {
		target := p.parseType()
		p.expect(token.RPAREN)
		if !target.IsIntegral() {
			cerr.Fatalf(cerr.Type, line, "cast target must be integral, got %s", target)
		}
		value := p.parseUnary()
		n := &ast.Cast{Target: target, Value: value}
		n.LineNo = line
		n.SetVType(target)
		return n
	}

	inner := p.parseExpr(1)
	p.expect(token.RPAREN)
	return inner
}
