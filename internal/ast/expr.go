package ast

import "github.com/mjc-lang/minijavac/internal/symbol"

// BinaryOp enumerates MiniJava's binary operators.
type BinaryOp uint8

const (
	// OpAssign is the lowest-precedence, right-associative assignment
	// operator. spec.md's distilled Expr grammar omits assignment
	// entirely; the original (original_source/compiler-lib/src/ast.rs)
	// models it as BinaryOp::Assign rather than a separate statement
	// form, which is the shape kept here (an ExprStatement wrapping a
	// Binary(OpAssign, lhs, rhs) expression).
	OpAssign BinaryOp = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpEqual
	OpNotEqual
	OpAnd // &&
	OpOr  // ||
)

// UnaryOp enumerates MiniJava's unary operators.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota // unary -
	OpNot                // !
)

// ExprKind enumerates the Expr sum type of spec.md §3.
type ExprKind uint8

const (
	ExprBinary ExprKind = iota
	ExprUnary
	ExprMethodInvocation
	ExprThisMethodInvocation
	ExprFieldAccess
	ExprArrayAccess
	ExprNull
	ExprBool
	ExprInt
	ExprVar
	ExprThis
	ExprNewObject
	ExprNewArray
)

// ExprRef wraps a child expression behind a pointer, breaking the
// otherwise-infinite Expr-contains-Expr recursion (Spanned[Expr] embedded
// directly would make Expr a self-referential value type).
type ExprRef = Spanned[*Expr]

// Expr is a sum type over every MiniJava expression form.
type Expr struct {
	Kind ExprKind

	// Binary
	BinOp BinaryOp
	Left  ExprRef
	Right ExprRef

	// Unary
	UnOp    UnaryOp
	Operand ExprRef

	// MethodInvocation / ThisMethodInvocation / FieldAccess / ArrayAccess
	Receiver   ExprRef // nil for ThisMethodInvocation
	MethodName symbol.Symbol
	Args       []ExprRef
	FieldName  symbol.Symbol
	Index      ExprRef // ArrayAccess

	// Bool
	BoolValue bool

	// Int: digits as originally spelled (post unary-minus fusion, so a
	// fused "-2147483648" is stored as the literal text "-2147483648").
	IntDigits symbol.Symbol

	// Var
	VarName symbol.Symbol

	// NewObject
	ClassName symbol.Symbol

	// NewArray
	ArrayBasic      Type
	ArraySize       ExprRef
	ArrayExtraDepth uint
}
