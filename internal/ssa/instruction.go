package ssa

import "github.com/mjc-lang/minijavac/internal/types"

// PhiArg is one incoming edge of a Phi: the predecessor block it
// originates from, and the value flowing from it.
type PhiArg struct {
	Pred  *BasicBlock
	Value Value
}

// Instruction is a sum type over every Firm node kind (spec.md §3),
// tag-plus-operands in one allocation shape rather than one type per
// node kind, mirroring the teacher's ssa.Instruction/Opcode pattern.
// Only the fields relevant to Op are populated.
type Instruction struct {
	Op     Opcode
	Result Value
	Typ    types.CheckedType
	Block  *BasicBlock

	// Const
	ConstValue int64

	// Add/Sub/Mul/Div/Mod/And/Or/Cmp: binary operands.
	// Minus/Not: unary operand in Args[0].
	Args [2]Value
	Cond CondKind // valid iff Op == OpCmp

	// CmpTrueTarget/CmpFalseTarget are set only when an OpCmp instruction
	// is a block's control-context terminator (spec.md §4.5's "short-
	// circuit lowering to Cmp+Cond"), as opposed to a value-context Cmp
	// feeding a Phi(const 1, const 0). nil/nil for a value-context Cmp.
	CmpTrueTarget, CmpFalseTarget *BasicBlock

	// Phi
	PhiArgs []PhiArg

	// Call
	CallTarget *types.MethodDef
	CallThis   Value // zero if the callee has no receiver to thread (never for MiniJava, kept for symmetry)
	CallArgs   []Value

	// Address: a method/field/array entity reference used as a base for
	// Member/Sel/Call lowering. EntityMethod is set for a call target
	// address, EntityField for a field address.
	EntityMethod *types.MethodDef
	EntityField  *types.FieldDef

	// Member (field projection) / Sel (array-element projection):
	// Args[0] is the base address/object value; for Sel, Args[1] is the
	// index and Stride the element size in bytes. Member's Offset is the
	// field's byte offset within its class layout (ClassLayout.Offsets).
	Stride int
	Offset int

	// Load/Store: Args[0] is the address operand; Store additionally
	// carries the value to write in StoreValue.
	StoreValue Value

	// Jmp
	JmpTarget *BasicBlock

	// Return
	HasReturnValue bool
	ReturnValue    Value

	// Proj: projects one result out of a multi-result node (e.g. a Call's
	// value, or a Start block's Nth argument).
	ProjOf   Value
	ProjKind ProjKind
	ProjArg  int

	// AllocObject: heap-allocates one instance of AllocClass, sized by its
	// field layout. AllocArray: Args[0] is the (already-checked)
	// element count; AllocStride is the per-element byte size.
	AllocClass  *types.ClassDef
	AllocStride int
}

// ProjKind distinguishes what a Proj node extracts.
type ProjKind uint8

const (
	ProjCallValue ProjKind = iota
	ProjStartArg
	ProjStartThis
)
