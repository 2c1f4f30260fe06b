package ast

import "github.com/mjc-lang/minijavac/internal/symbol"

// StmtKind enumerates the Stmt sum type of spec.md §3.
type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtEmpty
	StmtIf
	StmtWhile
	StmtExpression
	StmtReturn
	StmtDecl
)

// Stmt is a sum type over every MiniJava statement form. Only the fields
// relevant to Kind are populated; this mirrors the single-struct,
// tag-plus-operands shape used throughout the IR layers (ssa.Instruction,
// lir.Instruction) so all tree node kinds share one allocation shape.
type Stmt struct {
	Kind StmtKind

	Block *Block // StmtBlock

	// If / While: Then holds the if-branch or the while-body; Else is set
	// only for StmtIf (Else.Value == nil if the `else` clause is absent).
	Cond ExprRef
	Then Spanned[*Stmt]
	Else Spanned[*Stmt]

	// Expression / Return
	Expr    ExprRef // StmtExpression, and StmtReturn when a value is returned
	HasExpr bool    // StmtReturn: whether a value follows `return`

	// Decl
	DeclType Type
	DeclName symbol.Symbol
	DeclInit ExprRef // optional; HasExpr reused as "has initializer"
}

// Block is an ordered list of statements, each wrapped with its span.
type Block struct {
	Stmts []Spanned[*Stmt]
}
