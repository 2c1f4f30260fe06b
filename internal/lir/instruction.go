package lir

import "github.com/mjc-lang/minijavac/internal/ssa"

// InstrKind enumerates LIR instruction forms, grounded on the teacher's
// lir.rs Instruction enum (Binop/Divop/Mod/Basic/Movq/Call/LoadParam),
// extended with Load/Store/Lea/AllocObject/AllocArray for the memory and
// allocation operations this ssa package's Member/Sel/AllocObject/
// AllocArray nodes need lowered.
type InstrKind uint8

const (
	InstrBinop InstrKind = iota
	InstrDivop
	InstrMod
	InstrBasic // unary neg/not
	InstrMovq
	InstrCall
	InstrLoadParam
	InstrLoad
	InstrStore
	InstrLea // address computation: base (+ index*Stride) + Offset
	InstrAllocObject
	InstrAllocArray
	InstrComment
)

type BinopKind uint8

const (
	BinAdd BinopKind = iota
	BinSub
	BinMul
	BinAnd
	BinOr
)

type DivKind uint8

const (
	DivSigned DivKind = iota
)

type BasicKind uint8

const (
	BasicNeg BasicKind = iota
	BasicNot
)

// Instruction is a sum type over every LIR instruction form, one Go
// struct per the teacher's tagged-enum shape (as in ssa.Instruction):
// only the fields relevant to Kind are populated.
type Instruction struct {
	Kind InstrKind

	BinOp BinopKind
	DivOp DivKind
	UnOp  BasicKind

	// Binop/Divop/Mod/Basic: operands and result slot.
	Src1, Src2 Operand
	Dst        *MultiSlot

	// Call
	FuncName string
	CallArgs []Operand
	CallDst  *MultiSlot

	// LoadParam: ParamIdx is the 0-based declared-parameter index; IsThis
	// marks the implicit receiver load instead (ParamIdx unused then).
	ParamIdx int
	IsThis   bool

	// Load/Store/Lea: Src1 is the base address. Lea additionally reads
	// Src2 as a scaled index (array element addressing); Offset is a
	// constant byte displacement (field offset), Stride the per-element
	// scale (0 when there is no index operand).
	Offset int
	Stride int

	// Size is the operation's byte width: for Load/Store, the addressed
	// value's size (1/4/8, ssa.StrideOf's boolean/int/reference widths —
	// loading or storing the wrong width would corrupt an adjacent,
	// tightly packed field); for AllocObject, the instance's total byte
	// size (internal/ssa's ClassLayout.Size). AllocArray reuses Src1 for
	// the element count and Stride for the per-element size instead.
	Size int

	Comment string
}

// LeaveKind enumerates the instruction forms that may end a block.
type LeaveKind uint8

const (
	LeaveCondJmp LeaveKind = iota
	LeaveJmp
	LeaveReturn
)

// Leave is a block's terminating instruction.
type Leave struct {
	Kind LeaveKind

	// CondJmp
	Cond                    ssa.CondKind
	Left, Right             Operand
	TrueTarget, FalseTarget *BasicBlock

	// Jmp
	JmpTarget *BasicBlock

	// Return
	HasReturnValue bool
	ReturnValue    Operand
}

// OperandKind enumerates the operand forms an Instruction's sources may
// take, grounded on the teacher's Operand enum (Slot/Imm/Addr/Param).
type OperandKind uint8

const (
	OperandSlot OperandKind = iota
	OperandImm
)

// Operand is a value an instruction reads: either a pseudo-register
// (Slot) or a compile-time constant (Imm), folded directly from an
// ssa.Const rather than materialized into its own register-holding
// instruction.
type Operand struct {
	Kind OperandKind
	Slot *MultiSlot
	Imm  int64
}
