// Package symbol interns identifier and literal text into stable, totally
// ordered handles. The table is process-scoped, append-only, and never
// freed before the compilation ends, so existing Symbol values remain
// valid for the lifetime of a Table.
package symbol

// Symbol is an opaque, totally-ordered handle into a Table. Two Symbols
// from the same Table are equal iff their underlying strings are equal;
// ordering corresponds to interning order, not lexicographic order.
type Symbol int32

// Table interns strings into Symbols. The zero value is not usable; use
// NewTable. Table is not safe for concurrent use, matching every other
// single-writer structure in the pipeline (diagnostics.Sink, ssa.Builder).
type Table struct {
	byString map[string]Symbol
	strings  []string
}

// NewTable returns an empty, ready-to-use Table.
func NewTable() *Table {
	return &Table{byString: make(map[string]Symbol)}
}

// Intern returns the Symbol for s, allocating a new one if s was not seen
// before. Interning is append-only: a Symbol, once minted, is valid for
// the lifetime of the Table.
func (t *Table) Intern(s string) Symbol {
	if sym, ok := t.byString[s]; ok {
		return sym
	}
	sym := Symbol(len(t.strings))
	t.strings = append(t.strings, s)
	t.byString[s] = sym
	return sym
}

// Text returns the interned string for sym. Panics if sym is outside the
// range this Table has minted; a Symbol from another Table within that
// range is not detected. Either is a cross-table Symbol leak — a bug, not
// a recoverable condition.
func (t *Table) Text(sym Symbol) string {
	return t.strings[int(sym)]
}

// Len returns the number of distinct strings interned so far.
func (t *Table) Len() int { return len(t.strings) }
