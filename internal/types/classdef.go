package types

import (
	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
)

// FieldDef is a resolved field declaration.
type FieldDef struct {
	Name symbol.Symbol
	Type CheckedType
	Span sourceview.Span
}

// ParamDef is a resolved method/constructor parameter.
type ParamDef struct {
	Name symbol.Symbol
	Type CheckedType
}

// MethodDef is a resolved (non-main) method declaration. Body is the
// original AST block; method-body checking (phase 2) walks it directly
// rather than re-lowering it into a separate typed tree, matching
// spec.md's "method-body type checking" framing (the AST itself becomes
// type-annotated via a side table, not rewritten).
type MethodDef struct {
	Name   symbol.Symbol
	Params []ParamDef
	Return CheckedType
	Body   *ast.Block
	Span   sourceview.Span
	// IsMain marks the program's unique main method: this is forbidden in
	// its body, and its (unnamed in Params) String[] parameter must go
	// unreferenced, per spec.md §4.4.
	IsMain bool
}

// ClassDef is a resolved class declaration: its own fields and methods.
// MiniJava disallows inheritance (spec.md GLOSSARY), so a ClassDef never
// references a superclass.
type ClassDef struct {
	Name   symbol.Symbol
	Fields map[symbol.Symbol]*FieldDef
	// FieldOrder preserves declaration order — map iteration order is
	// randomized in Go, but class layout (field offsets, for the SSA
	// Member lowering of spec.md §4.5) must be stable across runs of the
	// same compilation.
	FieldOrder []symbol.Symbol
	Methods    map[symbol.Symbol]*MethodDef
	Span       sourceview.Span
}

// Registry is the program-wide class table built by CollectDeclarations.
type Registry struct {
	Classes map[symbol.Symbol]*ClassDef
	// MainClass/MainMethodParam identify the program's main method, taken
	// from the first one collected; HasMain reports whether one was found.
	MainClass      symbol.Symbol
	MainMethodParam symbol.Symbol
	HasMain        bool
}

// Lookup returns the ClassDef for name, or nil if undeclared.
func (r *Registry) Lookup(name symbol.Symbol) *ClassDef {
	return r.Classes[name]
}
