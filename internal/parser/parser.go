// Package parser implements the single-pass recursive-descent parser
// that turns a token vector into a typed AST. Type checking, lvalue
// marking, and member-offset resolution happen inline as each production
// runs rather than in a separate pass.
package parser

import (
	"github.com/thebigcx/compiler/internal/ast"
	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/symtab"
	"github.com/thebigcx/compiler/internal/token"
	"github.com/thebigcx/compiler/internal/types"
)

// Param is one entry of a function parameter list as written in source,
// before it becomes a symbol in the function's scope.
type Param struct {
	Name string
	Type *types.Type
}

// Parser holds the token cursor plus the scope/typedef state threaded
// through every production. curFunc is non-nil while parsing inside a
// function body, letting return statements check against the enclosing
// function's declared return type without a separate symbol lookup.
type Parser struct {
	toks []token.Token
	pos  int

	global   *symtab.Scope
	scope    *symtab.Scope
	typedefs *symtab.TypedefTable
	curFunc  *ast.FuncDef
}

// Parse tokenizes-already input into a single root Block representing
// global scope. It panics with a *cerr.Error on the first diagnostic;
// callers that want a recovered error should wrap the call (see
// internal/compiler).
func Parse(toks []token.Token) *ast.Block {
	p := &Parser{toks: toks}
	p.global = symtab.NewGlobal()
	p.scope = p.global
	p.typedefs = symtab.NewTypedefTable()

	var stmts []ast.Node
	for p.curr().Kind != token.EOF {
		if n := p.parseStatement(); n != nil {
			stmts = append(stmts, n)
		}
	}
	return &ast.Block{Scope: p.global, Stmts: stmts}
}

// curr, next, back and postNext are the one-token-lookahead cursor
// helpers every production is built from.
func (p *Parser) curr() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) next() token.Token {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return p.curr()
}

func (p *Parser) back() token.Token {
	if p.pos > 0 {
		p.pos--
	}
	return p.curr()
}

// postNext looks one token past curr without moving the cursor. No
// production currently calls it; parseParenOrCast decides between a cast
// and a parenthesized expression by stepping past '(' and checking curr.
func (p *Parser) postNext() token.Token {
	if p.pos+1 >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos+1]
}

func (p *Parser) expect(k token.Kind) token.Token {
	tok := p.curr()
	if tok.Kind != k {
		cerr.Fatalf(cerr.Syntax, tok.Line, "expected %s, got %s", k, tok.Kind)
	}
	p.next()
	return tok
}

func (p *Parser) expectIdent() string {
	tok := p.expect(token.IDENT)
	return tok.StrVal
}

// parseFuncDecl handles `fn [public] [extern] name(params) [-> T] { ... }`
// or the extern/no-body form terminated by ';'.
func (p *Parser) parseFuncDecl() ast.Node {
	line := p.curr().Line
	p.next() // 'fn'

	var attrs symtab.Attr
loop:
	for {
		switch p.curr().Kind {
		case token.PUBLIC:
			attrs |= symtab.Public
			p.next()
		case token.EXTERN:
			attrs |= symtab.Extern
			p.next()
		default:
			break loop
		}
	}

	name := p.expectIdent()
	p.expect(token.LPAREN)
	params := p.parseParamList()
	p.expect(token.RPAREN)

	retType := types.Primitive(types.Void)
	if p.curr().Kind == token.ARROW {
		p.next()
		retType = p.parseType()
	}

	paramTypes := make([]*types.Type, len(params))
	for i, pr := range params {
		paramTypes[i] = pr.Type
	}
	funcType := &types.Type{Name: types.Func, FuncRet: retType, FuncParams: paramTypes}
	sym := p.scope.PutFunc(name, funcType, attrs, line)

	if p.curr().Kind == token.SEMI {
		if !attrs.Has(symtab.Extern) {
			cerr.Fatalf(cerr.Declaration, line, "function '%s' has no body and is not declared extern", name)
		}
		p.next()
		fd := &ast.FuncDef{Name: name, Sym: sym}
		fd.LineNo = line
		fd.SetVType(funcType)
		return fd
	}
	if attrs.Has(symtab.Extern) {
		cerr.Fatalf(cerr.Declaration, line, "extern function '%s' declares a body", name)
	}

	savedScope := p.scope
	fnScope := symtab.PushScope(p.scope, symtab.Function)
	paramSyms := make([]*symtab.Symbol, len(params))
	for i, pr := range params {
		paramSyms[i] = fnScope.Put(pr.Name, pr.Type, 0, line)
	}
	p.scope = fnScope

	fd := &ast.FuncDef{Name: name, Sym: sym, Params: paramSyms}
	fd.LineNo = line
	fd.SetVType(funcType)
	savedFunc := p.curFunc
	p.curFunc = fd

	fd.Body = p.parseBlock()

	p.curFunc = savedFunc
	p.scope = savedScope
	return fd
}

func (p *Parser) parseParamList() []Param {
	var params []Param
	if p.curr().Kind == token.RPAREN {
		return params
	}
	for {
		name := p.expectIdent()
		p.expect(token.COLON)
		t := p.parseType()
		params = append(params, Param{Name: name, Type: t})
		if p.curr().Kind == token.COMMA {
			p.next()
			continue
		}
		break
	}
	return params
}

// parseVarDecl handles `var name [: T] [= expr] ;`. A missing type is
// inferred from the initializer; a missing initializer requires a type.
func (p *Parser) parseVarDecl() ast.Node {
	line := p.curr().Line
	p.next() // 'var'
	name := p.expectIdent()

	var declared *types.Type
	if p.curr().Kind == token.COLON {
		p.next()
		declared = p.parseType()
	}

	var init ast.Node
	if p.curr().Kind == token.ASSIGN {
		p.next()
		init = p.parseExpr(1)
	}

	if declared == nil {
		if init == nil {
			cerr.Fatalf(cerr.Declaration, line, "variable '%s' needs either a type or an initializer", name)
		}
		declared = init.VType()
	} else if init != nil && !types.Compatible(declared, init.VType()) {
		cerr.Fatalf(cerr.Type, line, "incompatible initializer for '%s'", name)
	}
	p.expect(token.SEMI)

	var sym *symtab.Symbol
	if p.scope.Kind == symtab.Global {
		sym = p.scope.PutGlobal(name, declared, 0, line)
	} else {
		sym = p.scope.Put(name, declared, 0, line)
	}

	vd := &ast.VarDef{Name: name, Init: init, Sym: sym}
	vd.LineNo = line
	vd.SetVType(declared)
	return vd
}

// parseStructDecl declares a struct type and adds a typedef for its tag;
// it produces no AST node of its own.
func (p *Parser) parseStructDecl() {
	line := p.curr().Line
	p.next() // 'struct'
	name := p.expectIdent()
	p.expect(token.LBRACE)

	var members []types.Member
	for p.curr().Kind != token.RBRACE {
		mname := p.expectIdent()
		p.expect(token.COLON)
		mtype := p.parseType()
		members = append(members, types.Member{Name: mname, Type: mtype})
		if p.curr().Kind == token.COMMA {
			p.next()
		}
	}
	p.expect(token.RBRACE)
	p.expect(token.SEMI)

	laidOut, size := types.LayoutStruct(members, line)
	p.typedefs.Add(name, &types.Type{Name: types.Struct, Members: laidOut, StructSize: size}, line)
}

// parseTypedefDecl handles `typedef Name = T;`; it produces no AST node.
func (p *Parser) parseTypedefDecl() {
	line := p.curr().Line
	p.next() // 'typedef'
	name := p.expectIdent()
	p.expect(token.ASSIGN)
	t := p.parseType()
	p.expect(token.SEMI)
	p.typedefs.Add(name, t, line)
}
