package semantic

import (
	"github.com/aabanakhtar-github/vortex-lang/internal/token"
)

// Symbol holds information about a declared variable.
type Symbol struct {
	Name  string         // Variable name
	Type  token.Token    // BOOL_TYPE, FLOAT_TYPE or STRING_TYPE
	Depth int            // 0 for globals
	Pos   token.Position // Declaration position
	Used  bool           // Read at least once
}

// IsGlobal returns true if the symbol was declared at the top level.
func (s *Symbol) IsGlobal() bool {
	return s.Depth == 0
}

// SymbolTable implements a hierarchical symbol table with scope support.
// Each scope can have a parent, enabling nested lookups.
type SymbolTable struct {
	parent  *SymbolTable
	symbols map[string]*Symbol
	order   []*Symbol
	depth   int
}

// NewSymbolTable creates a new symbol table with the given parent.
// Pass nil for the global scope.
func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	st := &SymbolTable{
		parent:  parent,
		symbols: make(map[string]*Symbol),
	}
	if parent != nil {
		st.depth = parent.depth + 1
	}
	return st
}

// Parent returns the parent scope, or nil for the global scope.
func (st *SymbolTable) Parent() *SymbolTable {
	return st.parent
}

// Depth returns the lexical depth of the scope, 0 for the global scope.
func (st *SymbolTable) Depth() int {
	return st.depth
}

// Define adds a new symbol to the current scope.
// Returns nil if a symbol with that name already exists in this scope.
func (st *SymbolTable) Define(name string, typ token.Token, pos token.Position) *Symbol {
	if _, exists := st.symbols[name]; exists {
		return nil
	}
	sym := &Symbol{
		Name:  name,
		Type:  typ,
		Depth: st.depth,
		Pos:   pos,
	}
	st.symbols[name] = sym
	st.order = append(st.order, sym)
	return sym
}

// Lookup searches for a symbol in this scope and all parent scopes.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	for scope := st; scope != nil; scope = scope.parent {
		if sym, ok := scope.symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// Symbols returns the symbols of the current scope in declaration order.
func (st *SymbolTable) Symbols() []*Symbol {
	return st.order
}
