// Package types implements the compiler's structural type descriptor and
// the handful of rules (compatibility, asm_sizeof) that every later stage
// relies on.
package types

import (
	"fmt"
	"strings"

	"github.com/thebigcx/compiler/internal/cerr"
)

// Name is the primitive/structural tag a Type carries. It mirrors the
// source language's fixed vocabulary; there is no user-extensible kind.
type Name int

const (
	Void Name = iota
	Int8
	Int16
	Int32
	Int64
	Uint8
	Uint16
	Uint32
	Uint64
	Float32
	Float64
	Struct
	Union
	Func
)

var primitiveNames = map[Name]string{
	Void: "void", Int8: "int8", Int16: "int16", Int32: "int32", Int64: "int64",
	Uint8: "uint8", Uint16: "uint16", Uint32: "uint32", Uint64: "uint64",
	Float32: "float32", Float64: "float64", Struct: "struct", Union: "union",
	Func: "func",
}

func (n Name) String() string {
	if s, ok := primitiveNames[n]; ok {
		return s
	}
	return "?"
}

// Member is one field of a struct type: its name, declared type, and
// byte offset from the start of the struct.
type Member struct {
	Name   string
	Type   *Type
	Offset int
}

// Type is the structural descriptor shared by every declared or inferred
// value in the program. A *Type is shared by value semantics: two Types
// are the same type iff Equal reports true, not iff the pointers match
// (typedef aliases produce distinct *Type values for the same structure).
type Type struct {
	Name   Name
	Ptr    int // pointer-indirection count; 0 means not a pointer
	ArrLen int // array length; 0 means "not an array"

	// valid when Name == Func
	FuncRet    *Type
	FuncParams []*Type

	// valid when Name == Struct or Union
	Members    []Member
	StructSize int
}

func Primitive(n Name) *Type { return &Type{Name: n} }

// IsIntegral reports whether t participates in arithmetic/comparison the
// way a plain integer does: not struct/union/func, no pointer depth, not
// an array.
func (t *Type) IsIntegral() bool {
	if t == nil {
		return false
	}
	switch t.Name {
	case Struct, Union, Func:
		return false
	}
	return t.Ptr == 0 && t.ArrLen == 0
}

func (t *Type) IsPointer() bool { return t != nil && t.Ptr > 0 }

// Compatible implements the single compatibility rule used for
// assignment, return, and binary-operator checks: both sides pointers, or
// both sides integral. There is no promotion matrix beyond this.
func Compatible(a, b *Type) bool {
	if a == nil || b == nil {
		return false
	}
	if a.IsPointer() && b.IsPointer() {
		return true
	}
	return a.IsIntegral() && b.IsIntegral()
}

// Deref returns the type one pointer level down. Callers must check
// IsPointer first; Deref panics via cerr if called on a non-pointer so
// that a caller mistake surfaces as a compiler diagnostic rather than a
// silent wrong answer.
func (t *Type) Deref(line int) *Type {
	if !t.IsPointer() {
		cerr.Fatalf(cerr.Type, line, "cannot dereference non-pointer type %s", t.String())
	}
	cp := *t
	cp.Ptr--
	return &cp
}

// AddrOf returns the type one pointer level up.
func (t *Type) AddrOf() *Type {
	cp := *t
	cp.Ptr++
	return &cp
}

// AsmSizeof is the byte size the generator uses for .comm sizes, struct
// layout, and sizeof expressions. Any pointer type is 8 bytes regardless
// of what it points to. There is an explicit default case here (unlike
// the source being modeled, see DESIGN.md) so an unrecognized primitive
// is a codegen error rather than silently sized as zero.
func (t *Type) AsmSizeof(line int) int {
	var base int
	if t.Ptr > 0 {
		base = 8
	} else {
		switch t.Name {
		case Int8, Uint8:
			base = 1
		case Int16, Uint16:
			base = 2
		case Int32, Uint32, Float32:
			base = 4
		case Int64, Uint64, Float64:
			base = 8
		case Struct, Union:
			base = t.StructSize
		default:
			cerr.Fatalf(cerr.Codegen, line, "asm_sizeof: unrecognized type %s", t.String())
		}
	}
	if t.ArrLen > 0 {
		base *= t.ArrLen
	}
	return base
}

// LayoutStruct assigns cumulative byte offsets to members in declaration
// order and computes the struct's total size. There is no alignment or
// padding; this matches the modeled source's behavior exactly (see
// DESIGN.md invariant notes).
func LayoutStruct(members []Member, line int) (laidOut []Member, size int) {
	offset := 0
	out := make([]Member, len(members))
	for i, m := range members {
		m.Offset = offset
		out[i] = m
		offset += m.Type.AsmSizeof(line)
	}
	return out, offset
}

func (t *Type) String() string {
	if t == nil {
		return "<nil type>"
	}
	var b strings.Builder
	switch t.Name {
	case Func:
		b.WriteString("fn(")
		for i, p := range t.FuncParams {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteString(")")
		if t.FuncRet != nil && t.FuncRet.Name != Void {
			b.WriteString(" -> ")
			b.WriteString(t.FuncRet.String())
		}
	default:
		b.WriteString(t.Name.String())
	}
	for i := 0; i < t.Ptr; i++ {
		b.WriteString("*")
	}
	if t.ArrLen > 0 {
		b.WriteString(fmt.Sprintf("[%d]", t.ArrLen))
	}
	return b.String()
}

// Equal reports structural equality. No compiler stage calls it; typedef
// resolution and redefinition checks compare names, not structure.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Ptr != b.Ptr || a.ArrLen != b.ArrLen {
		return false
	}
	switch a.Name {
	case Func:
		if !Equal(a.FuncRet, b.FuncRet) || len(a.FuncParams) != len(b.FuncParams) {
			return false
		}
		for i := range a.FuncParams {
			if !Equal(a.FuncParams[i], b.FuncParams[i]) {
				return false
			}
		}
		return true
	case Struct, Union:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for i := range a.Members {
			if a.Members[i].Name != b.Members[i].Name || !Equal(a.Members[i].Type, b.Members[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
