// Package ast defines the spanned MiniJava abstract syntax tree produced
// by internal/parser. Every node variant is wrapped in
// sourceview.Spanned so diagnostics can always point at source text;
// equality between two AST nodes (used by the parser's round-trip tests)
// ignores spans.
package ast

import "github.com/mjc-lang/minijavac/internal/symbol"

// Program is an ordered list of class declarations.
type Program struct {
	Classes []Spanned[*ClassDecl]
}

// ClassDecl is a single `class Name { members }` declaration.
type ClassDecl struct {
	Name    symbol.Symbol
	Members []Spanned[Member]
}

// MemberKind distinguishes the three ClassMember variants.
type MemberKind uint8

const (
	MemberField MemberKind = iota
	MemberMethod
	MemberMain
)

// Member is a sum type over Field, Method, and MainMethod class members.
type Member struct {
	Kind MemberKind

	// Field
	FieldType Type
	FieldName symbol.Symbol

	// Method (and MainMethod's single untyped param)
	MethodName   symbol.Symbol
	ReturnType   Type // ignored for MainMethod (always Void)
	Params       []Param
	Body         Spanned[*Block]
	MainParamName symbol.Symbol // valid only for MainMethod
}

// Param is a single method formal parameter.
type Param struct {
	Type Type
	Name symbol.Symbol
}

// BasicType enumerates MiniJava's non-array base types.
type BasicType uint8

const (
	BasicInt BasicType = iota
	BasicBoolean
	BasicVoid
	BasicCustom
)

// Type is a MiniJava type: a basic type or a class name, plus an array
// nesting depth (0 for non-arrays).
type Type struct {
	Basic      BasicType
	Custom     symbol.Symbol // valid iff Basic == BasicCustom
	ArrayDepth uint
}
