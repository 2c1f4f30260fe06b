// Package regalloc assigns a physical location — one of the 14 allocatable
// x86-64 general-purpose registers, or a stack spill slot — to every
// pseudo-register a lir.Function uses, via Poletto & Sarkar's linear-scan
// algorithm over the function's live intervals.
//
// Grounded on internal/engine/wazevo/backend/regalloc/regalloc.go for the
// overall shape (liveness first, then a single pass over intervals sorted
// by start assigning/evicting registers) and on its intervals.go/bitset.go
// for the supporting data structures, adapted from wazero's neighbor-graph
// coloring allocator to classic linear scan: this compiler's target ISA has
// no SIMD/vector register classes and no tied physical-register ABI
// constraints inside a basic block (only at Call and Return boundaries), so
// the simpler, non-graph-coloring algorithm the original Rust design calls
// for (lowering/amd64/function.rs imports a sibling `linear_scan` module)
// is the right fit rather than porting wazero's full coloring machinery.
package regalloc

import (
	"sort"

	"github.com/google/btree"
	"github.com/mjc-lang/minijavac/internal/lir"
)

// Assignment is where a pseudo-register physically lives after allocation:
// exactly one of Reg/Spill is meaningful, selected by Spilled.
type Assignment struct {
	Spilled bool
	Reg     RealReg
	Spill   int // stack slot index, valid iff Spilled
}

// Allocation is the complete result for one function: every pseudo-register
// named in its LIR, plus how many callee-save registers ended up in use (so
// codegen knows how many to push/pop, per function.rs's
// save_callee_save_regs), how many spill slots the frame needs, and which
// caller-saved registers each Call instruction must preserve across itself
// (spec.md §4.7's "Around every Call, save live caller-saves... restore
// saves" — a register only needs saving if some pseudo-register assigned to
// it is live on both sides of the call, not merely in use somewhere in the
// function).
type Allocation struct {
	Assignments    map[*lir.MultiSlot]Assignment
	NumSpills      int
	CalleeSaved    []RealReg
	LiveAcrossCall map[*lir.Instruction][]RealReg
}

// Allocate runs liveness analysis and linear-scan allocation over fn.
func Allocate(fn *lir.Function) *Allocation {
	bp := numberBlocks(fn)
	ls := computeLiveSets(fn)
	intervals := buildIntervals(fn, bp, ls)

	a := &Allocation{Assignments: make(map[*lir.MultiSlot]Assignment, len(intervals))}

	// free is a stack popped from its tail, filled in reverse allocatable
	// order so caller-saved registers are popped first and straight-line
	// code without a call never reaches for a callee-save register it
	// would then have to push/pop for nothing.
	free := make([]RealReg, len(allocatable))
	for i, r := range allocatable {
		free[len(free)-1-i] = r
	}
	popFree := func() RealReg {
		r := free[len(free)-1]
		free = free[:len(free)-1]
		return r
	}
	pushFree := func(r RealReg) { free = append(free, r) }

	active := btree.NewG[*LiveInterval](32, func(x, y *LiveInterval) bool {
		if x.End != y.End {
			return x.End < y.End
		}
		return x.Idx < y.Idx
	})

	usedCalleeSaved := make(map[RealReg]bool)
	spillCount := 0

	expireBefore := func(pos int) {
		for {
			min, ok := active.Min()
			if !ok || min.End >= pos {
				return
			}
			active.Delete(min)
			if asn, ok := a.Assignments[min.Slot]; ok && !asn.Spilled {
				pushFree(asn.Reg)
			}
		}
	}

	spillFurthest := func(cur *LiveInterval) {
		maxIv, ok := active.Max()
		if ok && maxIv.End > cur.End {
			asn := a.Assignments[maxIv.Slot]
			a.Assignments[cur.Slot] = Assignment{Reg: asn.Reg}
			active.Delete(maxIv)
			a.Assignments[maxIv.Slot] = Assignment{Spilled: true, Spill: spillCount}
			spillCount++
			active.ReplaceOrInsert(cur)
			return
		}
		a.Assignments[cur.Slot] = Assignment{Spilled: true, Spill: spillCount}
		spillCount++
	}

	for _, iv := range intervals {
		expireBefore(iv.Start)
		if len(free) > 0 {
			r := popFree()
			a.Assignments[iv.Slot] = Assignment{Reg: r}
			active.ReplaceOrInsert(iv)
			for _, cs := range CalleeSaved {
				if cs == r {
					usedCalleeSaved[r] = true
				}
			}
		} else {
			spillFurthest(iv)
		}
	}

	a.NumSpills = spillCount
	for _, r := range CalleeSaved {
		if usedCalleeSaved[r] {
			a.CalleeSaved = append(a.CalleeSaved, r)
		}
	}
	sort.Slice(a.CalleeSaved, func(i, j int) bool { return a.CalleeSaved[i] < a.CalleeSaved[j] })
	a.LiveAcrossCall = computeLiveAcrossCall(fn, bp, intervals, a)
	return a
}

// callSiteDst returns the MultiSlot an instruction that compiles to a
// native call instruction defines, if any: InstrCall's explicit CallDst,
// or InstrAllocObject/InstrAllocArray's Dst — both of the latter lower to
// a call into the runtime's allocator and must be treated as call sites
// for save/restore purposes just the same.
func callSiteDst(instr *lir.Instruction) (dst *lir.MultiSlot, isCallSite bool) {
	switch instr.Kind {
	case lir.InstrCall:
		return instr.CallDst, true
	case lir.InstrAllocObject, lir.InstrAllocArray:
		return instr.Dst, true
	default:
		return nil, false
	}
}

// computeLiveAcrossCall finds, for every call site (including the implicit
// runtime calls InstrAllocObject/InstrAllocArray lower to), which caller-
// saved registers hold a value that is still needed after the call
// returns: an interval that strictly spans the call's position (live on
// both sides of it), excluding the call's own result register.
func computeLiveAcrossCall(fn *lir.Function, bp *blockPositions, intervals []*LiveInterval, a *Allocation) map[*lir.Instruction][]RealReg {
	out := make(map[*lir.Instruction][]RealReg)
	isCallerSaved := make(map[RealReg]bool, len(CallerSaved))
	for _, r := range CallerSaved {
		isCallerSaved[r] = true
	}

	for _, b := range fn.Graph.Blocks {
		pc := bp.start[b] + 1
		for _, instr := range b.Code.Body {
			if dst, ok := callSiteDst(instr); ok {
				var live []RealReg
				for _, iv := range intervals {
					if iv.Start >= pc || iv.End <= pc {
						continue
					}
					asn, asnOk := a.Assignments[iv.Slot]
					if !asnOk || asn.Spilled || !isCallerSaved[asn.Reg] {
						continue
					}
					if dst != nil && iv.Slot == dst {
						continue
					}
					live = append(live, asn.Reg)
				}
				if len(live) > 0 {
					out[instr] = live
				}
			}
			pc++
		}
	}
	return out
}
