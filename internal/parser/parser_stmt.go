package parser

import (
	"github.com/thebigcx/compiler/internal/ast"
	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/symtab"
	"github.com/thebigcx/compiler/internal/token"
	"github.com/thebigcx/compiler/internal/types"
)

// parseStatement dispatches on the current token. It is used both at
// global scope and inside blocks; the grammar does not itself forbid a
// funcdef or struct/typedef from appearing nested.
func (p *Parser) parseStatement() ast.Node {
	switch p.curr().Kind {
	case token.FN:
		return p.parseFuncDecl()
	case token.VAR:
		return p.parseVarDecl()
	case token.STRUCT:
		p.parseStructDecl()
		return nil
	case token.TYPEDEF:
		p.parseTypedefDecl()
		return nil
	case token.RETURN:
		return p.parseReturnStmt()
	case token.IF:
		return p.parseIfStmt()
	case token.WHILE:
		return p.parseWhileStmt()
	case token.FOR:
		return p.parseForStmt()
	case token.LABEL:
		return p.parseLabelStmt()
	case token.GOTO:
		return p.parseGotoStmt()
	case token.ASM:
		return p.parseAsmStmt()
	default:
		return p.parseExprStmt()
	}
}

// parseBlock handles a brace-delimited statement sequence, pushing a new
// Block-kind scope for its duration.
func (p *Parser) parseBlock() *ast.Block {
	line := p.curr().Line
	p.expect(token.LBRACE)

	savedScope := p.scope
	child := symtab.PushScope(p.scope, symtab.Block)
	p.scope = child

	var stmts []ast.Node
	for p.curr().Kind != token.RBRACE {
		if p.curr().Kind == token.EOF {
			cerr.Fatalf(cerr.Syntax, p.curr().Line, "unexpected end of file, expected '}'")
		}
		if n := p.parseStatement(); n != nil {
			stmts = append(stmts, n)
		}
	}
	p.expect(token.RBRACE)
	p.scope = savedScope

	blk := &ast.Block{Scope: child, Stmts: stmts}
	blk.LineNo = line
	return blk
}

func (p *Parser) parseReturnStmt() ast.Node {
	line := p.curr().Line
	p.next() // 'return'

	var value ast.Node
	if p.curr().Kind != token.SEMI {
		value = p.parseExpr(1)
	}
	p.expect(token.SEMI)

	if p.curFunc == nil {
		cerr.Fatalf(cerr.Syntax, line, "return statement outside of a function")
	}
	retType := p.curFunc.Sym.Type.FuncRet
	switch {
	case retType.Name == types.Void && value != nil:
		cerr.Fatalf(cerr.Declaration, line, "returning a value from a void function")
	case retType.Name != types.Void && value != nil && !types.Compatible(retType, value.VType()):
		cerr.Fatalf(cerr.Type, line, "return value incompatible with declared return type %s", retType)
	}

	r := &ast.Return{Func: p.curFunc, Value: value}
	r.LineNo = line
	return r
}

func (p *Parser) parseIfStmt() ast.Node {
	line := p.curr().Line
	p.next() // 'if'
	p.expect(token.LPAREN)
	cond := p.parseExpr(1)
	p.expect(token.RPAREN)
	then := p.parseBlock()

	var els *ast.Block
	if p.curr().Kind == token.ELSE {
		p.next()
		els = p.parseBlock()
	}
	n := &ast.IfElse{Cond: cond, Then: then, Else: els}
	n.LineNo = line
	return n
}

func (p *Parser) parseWhileStmt() ast.Node {
	line := p.curr().Line
	p.next() // 'while'
	p.expect(token.LPAREN)
	cond := p.parseExpr(1)
	p.expect(token.RPAREN)
	body := p.parseBlock()
	n := &ast.While{Cond: cond, Body: body}
	n.LineNo = line
	return n
}

func (p *Parser) parseForStmt() ast.Node {
	line := p.curr().Line
	p.next() // 'for'
	p.expect(token.LPAREN)

	var init, cond, update ast.Node
	if p.curr().Kind != token.SEMI {
		init = p.parseExpr(1)
	}
	p.expect(token.SEMI)
	if p.curr().Kind != token.SEMI {
		cond = p.parseExpr(1)
	}
	p.expect(token.SEMI)
	if p.curr().Kind != token.RPAREN {
		update = p.parseExpr(1)
	}
	p.expect(token.RPAREN)

	body := p.parseBlock()
	n := &ast.For{Init: init, Cond: cond, Update: update, Body: body}
	n.LineNo = line
	return n
}

func (p *Parser) parseLabelStmt() ast.Node {
	line := p.curr().Line
	p.next() // 'label'
	name := p.expectIdent()
	p.expect(token.COLON)
	n := &ast.Label{Name: name}
	n.LineNo = line
	return n
}

func (p *Parser) parseGotoStmt() ast.Node {
	line := p.curr().Line
	p.next() // 'goto'
	name := p.expectIdent()
	p.expect(token.SEMI)
	n := &ast.Goto{Name: name}
	n.LineNo = line
	return n
}

func (p *Parser) parseAsmStmt() ast.Node {
	line := p.curr().Line
	p.next() // 'asm'
	tok := p.expect(token.STRLIT)
	n := &ast.Asm{Text: tok.StrVal}
	n.LineNo = line
	return n
}

func (p *Parser) parseExprStmt() ast.Node {
	n := p.parseExpr(1)
	p.expect(token.SEMI)
	return n
}
