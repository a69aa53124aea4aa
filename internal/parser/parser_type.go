package parser

import (
	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/token"
	"github.com/thebigcx/compiler/internal/types"
)

var primitiveKeywords = map[token.Kind]types.Name{
	token.INT8:    types.Int8,
	token.INT16:   types.Int16,
	token.INT32:   types.Int32,
	token.INT64:   types.Int64,
	token.UINT8:   types.Uint8,
	token.UINT16:  types.Uint16,
	token.UINT32:  types.Uint32,
	token.UINT64:  types.Uint64,
	token.FLOAT32: types.Float32,
	token.FLOAT64: types.Float64,
}

// isTypeStart reports whether tok can begin a type, which is what
// distinguishes a cast `(T) expr` from a plain parenthesized expression.
func (p *Parser) isTypeStart(tok token.Token) bool {
	if _, ok := primitiveKeywords[tok.Kind]; ok {
		return true
	}
	switch tok.Kind {
	case token.STAR, token.FN:
		return true
	case token.IDENT:
		return p.typedefs.Lookup(tok.StrVal) != nil
	}
	return false
}

// parseType recognizes a primitive keyword, a bare '*' (void pointer,
// with pointer depth implied by however many '*'s follow), `fn(...) -> T`,
// or a typedef name. After the base, zero or more '*' tokens add pointer
// depth and an optional `[N]` adds an array length.
func (p *Parser) parseType() *types.Type {
	line := p.curr().Line
	var base types.Type

	switch {
	case p.curr().Kind == token.STAR:
		base = types.Type{Name: types.Void}
		// do not consume; the pointer-depth loop below counts this star
	case p.curr().Kind == token.FN:
		base = *p.parseFuncType()
	case p.curr().Kind == token.IDENT:
		name := p.curr().StrVal
		t := p.typedefs.Lookup(name)
		if t == nil {
			cerr.Fatalf(cerr.Type, line, "unknown type name '%s'", name)
		}
		base = *t
		p.next()
	default:
		if name, ok := primitiveKeywords[p.curr().Kind]; ok {
			base = types.Type{Name: name}
			p.next()
		} else {
			cerr.Fatalf(cerr.Syntax, line, "expected a type, got %s", p.curr().Kind)
		}
	}

	ptr := 0
	for p.curr().Kind == token.STAR {
		p.next()
		ptr++
	}
	base.Ptr = ptr

	if p.curr().Kind == token.LBRACK {
		p.next()
		tok := p.expect(token.INTLIT)
		base.ArrLen = int(tok.IntVal)
		p.expect(token.RBRACK)
	}

	result := base
	return &result
}

// parseFuncType handles the `fn(T1, T2, ...) -> T` type-position form
// used for function-pointer-typed variables and parameters.
func (p *Parser) parseFuncType() *types.Type {
	p.next() // 'fn'
	p.expect(token.LPAREN)

	var params []*types.Type
	if p.curr().Kind != token.RPAREN {
		for {
			params = append(params, p.parseType())
			if p.curr().Kind == token.COMMA {
				p.next()
				continue
			}
			break
		}
	}
	p.expect(token.RPAREN)

	ret := types.Primitive(types.Void)
	if p.curr().Kind == token.ARROW {
		p.next()
		ret = p.parseType()
	}
	return &types.Type{Name: types.Func, FuncRet: ret, FuncParams: params}
}
