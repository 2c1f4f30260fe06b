// Package types implements the two-phase semantic analysis of spec.md
// §4.4: declaration collection into a class registry, then scoped
// method-body type checking with implicit-this resolution.
package types

import "github.com/mjc-lang/minijavac/internal/symbol"

// Kind enumerates the resolved CheckedType variants.
type Kind uint8

const (
	KindInt Kind = iota
	KindBoolean
	KindVoid
	KindTypeRef
	KindArray
	KindNull
)

// CheckedType is the resolved form of ast.Type: a class reference carries
// a class-handle (Symbol) rather than a bare name, and arrays nest a
// pointer to their element type.
type CheckedType struct {
	Kind  Kind
	Class symbol.Symbol // valid iff Kind == KindTypeRef
	Elem  *CheckedType  // valid iff Kind == KindArray
}

var (
	Int     = CheckedType{Kind: KindInt}
	Boolean = CheckedType{Kind: KindBoolean}
	Void    = CheckedType{Kind: KindVoid}
	NullTy  = CheckedType{Kind: KindNull}
)

// TypeRef returns the CheckedType referencing the class named by cls.
func TypeRef(cls symbol.Symbol) CheckedType { return CheckedType{Kind: KindTypeRef, Class: cls} }

// Array returns the CheckedType for an array of elem.
func Array(elem CheckedType) CheckedType {
	e := elem
	return CheckedType{Kind: KindArray, Elem: &e}
}

// Equal reports structural equality, ignoring nothing (two array types
// are equal iff their element types are equal, recursively).
func (t CheckedType) Equal(o CheckedType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindTypeRef:
		return t.Class == o.Class
	case KindArray:
		return t.Elem.Equal(*o.Elem)
	default:
		return true
	}
}

// AssignableFrom reports whether a value of type from may be assigned to
// a variable of type t, per spec.md §3:
//
//	Null <= TypeRef(_), Null <= Array(_); otherwise structural equality;
//	Void assignable from Void only.
//
// Null is never assignable to Void (spec.md §9 Open Question, resolved:
// rejected).
func (t CheckedType) AssignableFrom(from CheckedType) bool {
	if from.Kind == KindNull {
		return t.Kind == KindTypeRef || t.Kind == KindArray
	}
	return t.Equal(from)
}

func (t CheckedType) String() string {
	switch t.Kind {
	case KindInt:
		return "int"
	case KindBoolean:
		return "boolean"
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindTypeRef:
		return "class"
	case KindArray:
		return t.Elem.String() + "[]"
	default:
		return "<invalid>"
	}
}
