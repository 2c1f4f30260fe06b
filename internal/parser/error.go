package parser

import (
	"fmt"

	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/token"
)

// ErrorKind is the syntactic error taxonomy of spec.md §7.
type ErrorKind uint8

const (
	UnexpectedToken ErrorKind = iota
	UnexpectedEOF
	InvalidMemberDeclaration
	DuplicateMainMethod
)

// Error is a spanned parser error. The parser does not attempt recovery:
// the first Error returned aborts parsing.
type Error struct {
	Kind     ErrorKind
	Expected string // human-readable, e.g. "';'" or "an expression"
	Found    token.Kind
	Span     sourceview.Span
}

func (e *Error) Error() string {
	switch e.Kind {
	case UnexpectedToken:
		return fmt.Sprintf("expected %s, found %s", e.Expected, e.Found)
	case UnexpectedEOF:
		return "unexpected end of file"
	case InvalidMemberDeclaration:
		return "invalid member declaration"
	case DuplicateMainMethod:
		return "a program may declare at most one main method"
	default:
		return "syntax error"
	}
}
