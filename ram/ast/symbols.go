// Package ast defines the source-level Datalog AST the translator
// consumes: relations, clauses, body literals and argument
// expressions, plus the symbol table that interns string constants
// into domain values. The AST carries no semantics of its own; safety
// and stratification are established by the analysis package before
// translation.
package ast

import "sync"

// SymbolTable interns strings to dense indices so that string
// constants can live in the numeric value domain. Indices are stable
// for the lifetime of the table.
type SymbolTable struct {
	mu      sync.RWMutex
	symbols []string
	index   map[string]int64
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]int64)}
}

// Lookup interns s and returns its index.
func (t *SymbolTable) Lookup(s string) int64 {
	t.mu.RLock()
	if i, ok := t.index[s]; ok {
		t.mu.RUnlock()
		return i
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if i, ok := t.index[s]; ok {
		return i
	}
	i := int64(len(t.symbols))
	t.symbols = append(t.symbols, s)
	t.index[s] = i
	return i
}

// Resolve returns the string interned at index i.
func (t *SymbolTable) Resolve(i int64) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= int64(len(t.symbols)) {
		return "", false
	}
	return t.symbols[i], true
}

// Size returns the number of interned symbols.
func (t *SymbolTable) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.symbols)
}
