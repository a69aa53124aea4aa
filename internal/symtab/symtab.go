// Package symtab implements the scope tree, symbol records, and the
// process-wide typedef table that the parser builds and consults while
// it walks the token stream.
package symtab

import (
	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/types"
)

// Kind distinguishes the three shapes of scope the parser pushes.
type Kind int

const (
	Global Kind = iota
	Function
	Block
)

// Attr is a bitset over the two symbol attributes the language has.
type Attr int

const (
	Public Attr = 1 << iota
	Extern
)

func (a Attr) Has(f Attr) bool { return a&f != 0 }

// Symbol is a (name, type, attributes) record living in a Scope.
type Symbol struct {
	Name  string
	Type  *types.Type
	Attrs Attr
	Line  int

	// IsGlobal marks file-scope symbols; set only for symbols inserted via
	// PutGlobal. The generator does not consult it: every variable, global
	// or local, is backed by a .comm symbol.
	IsGlobal bool
}

// Scope is one node of the scope tree: a parent pointer, a kind, and a
// flat name->symbol map. Lookup walks toward the root.
type Scope struct {
	Kind   Kind
	Parent *Scope
	names  map[string]*Symbol
}

func newScope(kind Kind, parent *Scope) *Scope {
	return &Scope{Kind: kind, Parent: parent, names: make(map[string]*Symbol)}
}

// PushScope creates and returns a new child scope of kind. Popping is the
// caller's responsibility (the parser simply discards the child and
// resumes using the parent it already holds); there is no separate stack.
func PushScope(parent *Scope, kind Kind) *Scope {
	return newScope(kind, parent)
}

// NewGlobal creates the root of the scope tree.
func NewGlobal() *Scope {
	return newScope(Global, nil)
}

// Put inserts name into the current scope. Any redefinition within the
// same scope is a scope error; function declarations go through PutFunc
// instead, which applies the extern merge rule.
func (s *Scope) Put(name string, t *types.Type, attrs Attr, line int) *Symbol {
	if _, exists := s.names[name]; exists {
		cerr.Fatalf(cerr.Scope, line, "redefinition of '%s'", name)
	}
	sym := &Symbol{Name: name, Type: t, Attrs: attrs, Line: line}
	s.names[name] = sym
	return sym
}

// PutFunc inserts or merges a function declaration per the redefinition
// rule: if a prior symbol with the same name exists in this scope, the
// merge is accepted only when the new or the existing symbol is extern.
// Otherwise it is a scope error.
func (s *Scope) PutFunc(name string, t *types.Type, attrs Attr, line int) *Symbol {
	if existing, exists := s.names[name]; exists {
		if existing.Attrs.Has(Extern) || attrs.Has(Extern) {
			merged := &Symbol{Name: name, Type: t, Attrs: existing.Attrs | attrs, Line: line, IsGlobal: existing.IsGlobal}
			s.names[name] = merged
			return merged
		}
		cerr.Fatalf(cerr.Scope, line, "redefinition of function '%s'", name)
	}
	sym := &Symbol{Name: name, Type: t, Attrs: attrs, Line: line}
	s.names[name] = sym
	return sym
}

// PutGlobal inserts name into the nearest enclosing Global scope,
// regardless of which scope s is, and marks the symbol as generator-visible
// at file scope.
func (s *Scope) PutGlobal(name string, t *types.Type, attrs Attr, line int) *Symbol {
	root := s
	for root.Parent != nil {
		root = root.Parent
	}
	sym := root.Put(name, t, attrs, line)
	sym.IsGlobal = true
	return sym
}

// Lookup walks from s toward the root, returning the first symbol found
// for name, or nil if none exists anywhere on the chain.
func (s *Scope) Lookup(name string) *Symbol {
	for cur := s; cur != nil; cur = cur.Parent {
		if sym, ok := cur.names[name]; ok {
			return sym
		}
	}
	return nil
}

// MustLookup is Lookup but fatal on a miss, matching the parser's
// "every ident lookup must succeed at parse time" invariant.
func (s *Scope) MustLookup(name string, line int) *Symbol {
	sym := s.Lookup(name)
	if sym == nil {
		cerr.Fatalf(cerr.Scope, line, "use of undeclared identifier '%s'", name)
	}
	return sym
}

// TypedefEntry is one row of the process-wide typedef table.
type TypedefEntry struct {
	Name string
	Type *types.Type
}

// TypedefTable is the single ordered list of (name, type) aliases
// populated by typedef statements and by anonymous struct tags. It is
// process-wide for the duration of one compile, so it lives on the
// top-level parser/compiler value rather than on any one Scope.
type TypedefTable struct {
	entries []TypedefEntry
}

func NewTypedefTable() *TypedefTable { return &TypedefTable{} }

// Add appends a new alias. Redefining an existing name is a scope error.
func (t *TypedefTable) Add(name string, ty *types.Type, line int) {
	if t.Lookup(name) != nil {
		cerr.Fatalf(cerr.Scope, line, "redefinition of type '%s'", name)
	}
	t.entries = append(t.entries, TypedefEntry{Name: name, Type: ty})
}

// Lookup performs a linear scan, matching the process-wide list's ordered
// nature; the table is expected to stay small (see DESIGN.md).
func (t *TypedefTable) Lookup(name string) *types.Type {
	for _, e := range t.entries {
		if e.Name == name {
			return e.Type
		}
	}
	return nil
}
