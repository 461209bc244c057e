package datalog

import (
	"strings"
	"sync"
)

// SymbolTable interns predicate names and constant spellings so that a
// program with many repeated symbols keeps a single copy of each string.
// Uses sync.Map for lock-free concurrent reads
type SymbolTable struct {
	cache sync.Map // map[string]string
}

// Global symbol table instance
var symbols = &SymbolTable{}

// Intern returns the canonical copy of s
func (t *SymbolTable) Intern(s string) string {
	// Fast path: load existing (lock-free)
	if val, ok := t.cache.Load(s); ok {
		return val.(string)
	}

	// Slow path: store a private copy so s's backing array (often a slice of
	// a whole source file) can be collected
	owned := strings.Clone(s)
	actual, _ := t.cache.LoadOrStore(owned, owned)
	return actual.(string)
}

// InternSymbol returns the interned copy of s from the global table
func InternSymbol(s string) string {
	return symbols.Intern(s)
}

// InternConstant returns an interned constant
func InternConstant(s string) Constant {
	return Constant(symbols.Intern(s))
}

// ClearSymbols resets the global symbol table.
// Useful for testing or when memory needs to be reclaimed
func ClearSymbols() {
	symbols = &SymbolTable{}
}
