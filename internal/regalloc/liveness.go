package regalloc

import "github.com/mjc-lang/minijavac/internal/lir"

// defUse returns the pseudo-register an instruction defines (nil if none)
// and the pseudo-registers it reads. A *lir.MultiSlot pointer is the
// virtual-register identity throughout this package: lir already collapses
// every incoming edge of a Phi onto one MultiSlot, so treating that pointer
// as the allocation unit is exactly right — a Phi and every ordinary value
// are both "one pseudo-register" from here on.
func defUse(instr *lir.Instruction) (def *lir.MultiSlot, uses []*lir.MultiSlot) {
	addUse := func(op lir.Operand) {
		if op.Kind == lir.OperandSlot && op.Slot != nil {
			uses = append(uses, op.Slot)
		}
	}
	if instr.Kind == lir.InstrCall {
		for _, a := range instr.CallArgs {
			addUse(a)
		}
		return instr.CallDst, uses
	}
	addUse(instr.Src1)
	addUse(instr.Src2)
	return instr.Dst, uses
}

func leaveUses(l *lir.Leave) []*lir.MultiSlot {
	var uses []*lir.MultiSlot
	switch l.Kind {
	case lir.LeaveCondJmp:
		if l.Left.Kind == lir.OperandSlot && l.Left.Slot != nil {
			uses = append(uses, l.Left.Slot)
		}
		if l.Right.Kind == lir.OperandSlot && l.Right.Slot != nil {
			uses = append(uses, l.Right.Slot)
		}
	case lir.LeaveReturn:
		if l.HasReturnValue && l.ReturnValue.Kind == lir.OperandSlot && l.ReturnValue.Slot != nil {
			uses = append(uses, l.ReturnValue.Slot)
		}
	}
	return uses
}

// blockPositions numbers every instruction position in a function, in the
// block layout order lir produced them (the order the Braun builder
// allocated blocks in — which approximates a topological/program order for
// everything but a loop's back edge). start/end bracket a block's whole
// span, including the Phi-implied position at block entry and the Leave's
// position at block exit, so a conservative interval can always widen to a
// block's full extent without needing an exact program-order numbering.
type blockPositions struct {
	start, end map[*lir.BasicBlock]int
}

func numberBlocks(fn *lir.Function) *blockPositions {
	bp := &blockPositions{start: make(map[*lir.BasicBlock]int), end: make(map[*lir.BasicBlock]int)}
	pc := 0
	for _, b := range fn.Graph.Blocks {
		bp.start[b] = pc
		pc += len(b.Code.Body) + 2 // +1 for the implicit Phi-arrival slot, +1 for Leave
		bp.end[b] = pc - 1
	}
	return bp
}

// liveSets computes live-in/live-out MultiSlot sets per block via the
// standard backward fixpoint: liveIn(b) = use(b) U (liveOut(b) - def(b)),
// liveOut(b) = union of liveIn(s) over b's successors. Iterating to a
// fixpoint is correct regardless of block visitation order, unlike a
// numbering-based approach — the only thing that needs the loop to matter
// for correctness is seeing every block more than once, which the
// outer `for changed` loop guarantees.
type liveSets struct {
	in, out map[*lir.BasicBlock]map[*lir.MultiSlot]bool
}

func computeLiveSets(fn *lir.Function) *liveSets {
	ls := &liveSets{
		in:  make(map[*lir.BasicBlock]map[*lir.MultiSlot]bool),
		out: make(map[*lir.BasicBlock]map[*lir.MultiSlot]bool),
	}
	use := make(map[*lir.BasicBlock]map[*lir.MultiSlot]bool)
	def := make(map[*lir.BasicBlock]map[*lir.MultiSlot]bool)

	for _, b := range fn.Graph.Blocks {
		u := make(map[*lir.MultiSlot]bool)
		d := make(map[*lir.MultiSlot]bool)
		for _, instr := range b.Code.Body {
			dst, uses := defUse(instr)
			for _, s := range uses {
				if !d[s] {
					u[s] = true
				}
			}
			if dst != nil {
				d[dst] = true
			}
		}
		if b.Code.Leave != nil {
			for _, s := range leaveUses(b.Code.Leave) {
				if !d[s] {
					u[s] = true
				}
			}
		}
		// A Phi defined in this block is live from the block's very start.
		for _, reg := range b.Regs {
			if reg.IsPhi {
				d[reg] = true
			}
		}
		use[b] = u
		def[b] = d
		ls.in[b] = make(map[*lir.MultiSlot]bool)
		ls.out[b] = make(map[*lir.MultiSlot]bool)
	}

	for changed := true; changed; {
		changed = false
		for _, b := range fn.Graph.Blocks {
			out := ls.out[b]
			for _, edge := range b.Succs {
				for s := range ls.in[edge.Target] {
					if !out[s] {
						out[s] = true
						changed = true
					}
				}
				// A register transition's Src must be live out of the
				// source block even when the target's Phi itself has
				// already been retired from in(target) by def-kill —
				// the transition is the mechanism that feeds it, not an
				// ordinary use inside the block. A Const-folded Src (an
				// immediate Operand, not a Slot) names no pseudo-register
				// at all and is re-materialized at the copy itself, so it
				// contributes nothing here.
				for _, rt := range edge.RegisterTransitions {
					if rt.Src.Kind == lir.OperandSlot && rt.Src.Slot != nil && !out[rt.Src.Slot] {
						out[rt.Src.Slot] = true
						changed = true
					}
				}
			}
			in := ls.in[b]
			for s := range use[b] {
				if !in[s] {
					in[s] = true
					changed = true
				}
			}
			for s := range out {
				if def[b][s] {
					continue
				}
				if !in[s] {
					in[s] = true
					changed = true
				}
			}
		}
	}
	return ls
}
