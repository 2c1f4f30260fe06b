package types

import (
	"fmt"

	"github.com/mjc-lang/minijavac/internal/sourceview"
)

// ErrorKind is the semantic error taxonomy of spec.md §7, supplemented
// per SPEC_FULL.md §C with ArgumentCountMismatch and a kind tag on
// RedefinitionError.
type ErrorKind uint8

const (
	ConditionMustBeBoolean ErrorKind = iota
	MethodMustReturnSomething
	VoidMethodCannotReturnValue
	InvalidReturnType
	InvalidType
	RedefinitionError
	ThisInStaticMethod
	ThisMethodInvocationInStaticMethod
	ClassDoesNotExist
	InvalidReferenceToClass
	CannotLookupVarOrField
	CannotAccessNonStaticFieldInStaticMethod
	MainMethodParamMustNotBeUsed
	ArgumentCountMismatch
	IntegerLiteralOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case ConditionMustBeBoolean:
		return "ConditionMustBeBoolean"
	case MethodMustReturnSomething:
		return "MethodMustReturnSomething"
	case VoidMethodCannotReturnValue:
		return "VoidMethodCannotReturnValue"
	case InvalidReturnType:
		return "InvalidReturnType"
	case InvalidType:
		return "InvalidType"
	case RedefinitionError:
		return "RedefinitionError"
	case ThisInStaticMethod:
		return "ThisInStaticMethod"
	case ThisMethodInvocationInStaticMethod:
		return "ThisMethodInvocationInStaticMethod"
	case ClassDoesNotExist:
		return "ClassDoesNotExist"
	case InvalidReferenceToClass:
		return "InvalidReferenceToClass"
	case CannotLookupVarOrField:
		return "CannotLookupVarOrField"
	case CannotAccessNonStaticFieldInStaticMethod:
		return "CannotAccessNonStaticFieldInStaticMethod"
	case MainMethodParamMustNotBeUsed:
		return "MainMethodParamMustNotBeUsed"
	case ArgumentCountMismatch:
		return "ArgumentCountMismatch"
	case IntegerLiteralOverflow:
		return "IntegerLiteralOverflow"
	default:
		return "Unknown"
	}
}

// Diagnostic is one semantic error; semantic analysis never aborts early,
// it emits every error to the diagnostics sink and the caller decides
// success via sink.Errored().
type Diagnostic struct {
	Kind    ErrorKind
	Message string
	Span    sourceview.Span
}

func (d *Diagnostic) Error() string { return d.Message }

// errorf builds a Diagnostic; the phase-2 checker uses it for every error
// it emits. Phase 1 (CollectDeclarations) emits its errors directly.
func errorf(kind ErrorKind, span sourceview.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{Kind: kind, Span: span, Message: fmt.Sprintf(format, args...)}
}
