package ssa

// Opcode enumerates the Firm graph node kinds named in spec.md §3.
type Opcode uint8

const (
	OpConst Opcode = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpMinus // unary negate
	OpNot   // unary logical not
	OpCmp   // paired with a Cond below; used both standalone (materializing a
	// bool value) and to feed a block's conditional Leave
	OpPhi
	OpJmp
	OpReturn
	OpCall
	OpAddress // reference to a method/field entity
	OpMember  // field projection: base-address + field offset
	OpSel     // array-element projection: base-address + index*stride
	OpLoad
	OpStore
	OpProj // projection out of a multi-result node (Call's value, Start's args)

	// OpAllocObject/OpAllocArray back NewObject/NewArray (SPEC_FULL.md §C):
	// spec.md's node-kind list has no explicit heap-allocation primitive,
	// so object/array creation is modeled as its own opcode rather than
	// forced through Call, which would need a fabricated runtime
	// MethodDef to target.
	OpAllocObject
	OpAllocArray
)

// CondKind enumerates the comparison kinds an OpCmp node carries.
type CondKind uint8

const (
	CondEqual CondKind = iota
	CondNotEqual
	CondLess
	CondLessEqual
	CondGreater
	CondGreaterEqual
)

func (k CondKind) Negate() CondKind {
	switch k {
	case CondEqual:
		return CondNotEqual
	case CondNotEqual:
		return CondEqual
	case CondLess:
		return CondGreaterEqual
	case CondLessEqual:
		return CondGreater
	case CondGreater:
		return CondLessEqual
	default: // CondGreaterEqual
		return CondLess
	}
}
