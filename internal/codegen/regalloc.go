package codegen

import "github.com/thebigcx/compiler/internal/cerr"

// regNames is the fixed four-register pool expression evaluation draws
// from. There is no spilling: running out is a hard, fatal error.
var regNames = [4]string{"%r8", "%r9", "%r10", "%r11"}

const noReg = -1

// RegAlloc is a bit-vector over the four pool slots. A fresh RegAlloc
// starts with every slot free; Reset restores that state between
// function bodies so one Codegen value can compile several functions.
type RegAlloc struct {
	busy [4]bool
}

// Alloc picks the first free slot, marks it busy, and returns its index.
// It aborts the compile (cerr.Codegen) if every slot is taken; deep
// expression trees that need a fifth live value are an implementation-
// visible failure mode, not a bug to work around.
func (r *RegAlloc) Alloc(line int) int {
	for i, b := range r.busy {
		if !b {
			r.busy[i] = true
			return i
		}
	}
	cerr.Fatalf(cerr.Codegen, line, "out of registers")
	panic("unreachable")
}

// Free releases a slot. Freeing noReg is a no-op so callers can write
// `defer r.Free(reg)`-style code uniformly for statement forms that
// return no register.
func (r *RegAlloc) Free(reg int) {
	if reg == noReg {
		return
	}
	r.busy[reg] = false
}

func (r *RegAlloc) Reset() { r.busy = [4]bool{} }

func regName(reg int) string { return regNames[reg] }
