// Package compiler wires the lexer, parser, and code generator into a
// single entry point and owns the one place that recovers the fatal
// panics every earlier stage raises.
package compiler

import (
	"io"

	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/codegen"
	"github.com/thebigcx/compiler/internal/lexer"
	"github.com/thebigcx/compiler/internal/parser"
)

// Compiler is a value, not global state, so tests and concurrent callers
// can each hold their own (see SPEC_FULL.md §5).
type Compiler struct{}

func New() *Compiler { return &Compiler{} }

// Compile reads source from r, lexes, parses and type-checks it, then
// emits x86-64 assembly to w. The first diagnostic from any stage ends
// the compile; Compile converts it from a panic into a returned *cerr.Error.
func (c *Compiler) Compile(r io.Reader, w io.Writer) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if ce, ok := rec.(*cerr.Error); ok {
				err = ce
				return
			}
			panic(rec)
		}
	}()

	src, readErr := io.ReadAll(r)
	if readErr != nil {
		return readErr
	}

	toks := lexer.Lex(src)
	root := parser.Parse(toks)
	return codegen.New(w).Generate(root)
}
