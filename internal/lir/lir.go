// Package lir lowers a method's Firm graph (internal/ssa) into the low
// level intermediate representation of spec.md §3/§4.6: a graph of basic
// blocks, each a flat list of instructions over pseudo-registers
// ("value slots"), with every block-to-block value flow made explicit on
// the control-flow edge between them rather than left implicit in a
// Phi's far-away operand list.
//
// This is grounded directly on
// original_source/compiler-lib/src/lowering/lir.rs's BlockGraph/
// BasicBlock/MultiSlot/ValueSlot/ControlFlowTransfer data model, adapted
// from libfirm-backed Rust to this package's from-scratch ssa.Function:
// there is no libfirm End node here, so BlockGraph carries no End field,
// and a Phi's value flows to its consumers as an ordinary MultiSlot
// rather than a firm.Phi node reference.
package lir

import "github.com/mjc-lang/minijavac/internal/ssa"

// Program is every method's lowered LIR, ready for internal/regalloc.
type Program struct {
	Functions []*Function
}

// Function is one method's mangled name, arity, and lowered block graph.
type Function struct {
	Name    string
	NArgs   int
	HasThis bool
	Returns bool
	Graph   *BlockGraph
}

// BlockGraph is a method's basic blocks plus its entry point.
type BlockGraph struct {
	Blocks []*BasicBlock
	Head   *BasicBlock
}

// ReturnKind records whether, and how, a block's control flow ends in a
// return, mirroring the teacher's BasicBlockReturns. LowerProgram sets it
// on every block; no later stage reads it.
type ReturnKind uint8

const (
	ReturnsNo ReturnKind = iota
	ReturnsVoid
	ReturnsValue
)

// BasicBlock is one vertex of the block graph.
type BasicBlock struct {
	ID int

	// Regs are the pseudo-registers (MultiSlots) originating in this
	// block: one per SSA value (or Phi) defined here.
	Regs []*MultiSlot

	Code Code

	// Preds/Succs are this block's incoming/outgoing control-flow edges.
	Preds []*ControlFlowTransfer
	Succs []*ControlFlowTransfer

	// SSABlock is the Firm block this was lowered from, kept for
	// diagnostics and for internal/regalloc's liveness walk.
	SSABlock *ssa.BasicBlock

	Returns ReturnKind
}

// Code is a block's instruction sequence. CopyIn/CopyOut are left empty
// by LowerProgram: they're populated downstream, once physical locations are
// known, by internal/codegen/amd64's copy-resolution step. That step
// places every register transition's copy on the edge's source block's
// CopyOut rather than the target's CopyIn: this package's structured
// if/while/ternary lowering never produces a critical edge, so a
// transition's source block always has exactly one successor, making
// "copy right before that block's one jump" unambiguous, whereas a true
// multi-predecessor Phi join could not be resolved correctly by
// collecting copies on the target alone. Not a concern of lowering
// itself (mirroring the teacher's split between lir.rs's BlockGraph
// construction and gen_instr.rs's later instruction generation).
type Code struct {
	CopyIn  []CopyPropagation
	Body    []*Instruction
	CopyOut []CopyPropagation
	Leave   *Leave
}

// CopyPropagation moves Src into a value slot, emitted by the
// copy-resolution pass to reconcile two blocks' register choices for the
// same value across an edge. Src is an Operand, not bare a MultiSlot,
// because a Phi argument contributed by a Const (spec.md §4.6 step 2:
// Constant and Address nodes are never flown across edges, only
// re-materialized at their point of use) has no MultiSlot ever written
// to — it must be copied in as the immediate itself.
type CopyPropagation struct {
	Src Operand
	Dst *ValueSlot
}

// MultiSlot is a pseudo-register: either a single value slot (an
// ordinary SSA value), or, for a Phi, one slot per incoming control-flow
// edge — the allocator ultimately picks one physical location shared by
// every slot in the group, but each edge may need its own copy to get a
// value there.
type MultiSlot struct {
	IsPhi bool

	// Single is set iff !IsPhi: the one value slot this register holds.
	Single *ValueSlot

	// Phi/Slots are set iff IsPhi: the originating ssa.Instruction (for
	// its CheckedType and span) and one ValueSlot per PhiArg, in the same
	// order as ssa.Instruction.PhiArgs.
	Phi   *ssa.Instruction
	Slots []*ValueSlot
}

// Num returns a stable, function-wide identifier for the register: the
// first (and, for a non-Phi, only) underlying value slot's number.
func (m *MultiSlot) Num() int {
	if m.IsPhi {
		return m.Slots[0].Num
	}
	return m.Single.Num
}

// ValueSlot is a single abstract pseudo-register holding one SSA value.
type ValueSlot struct {
	Num          int
	Value        ssa.Value
	OriginatesIn *BasicBlock
}

// RegisterTransition is one entry of a ControlFlowTransfer: the value
// held by Src (as computed in the source block) must end up in Dst (a
// slot read in the target block) by the time control reaches the edge's
// target. Src is an Operand rather than a bare MultiSlot for the same
// reason as CopyPropagation.Src: a Const-defined Phi argument is never
// written to its own MultiSlot, so it must travel across the edge as an
// immediate, the same way ls.operand folds it in everywhere else a Phi
// argument's value is read.
type RegisterTransition struct {
	Src Operand
	Dst *ValueSlot
}

// ControlFlowTransfer is an edge in the basic-block graph. Its
// RegisterTransitions record every value whose flow across this specific
// edge isn't already implied by Source/Target sharing the same
// MultiSlot — in this lowering, that's exactly the Phi arguments whose
// predecessor is Source.
type ControlFlowTransfer struct {
	Source, Target      *BasicBlock
	RegisterTransitions []RegisterTransition
}
