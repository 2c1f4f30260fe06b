package regalloc

import (
	"sort"

	"github.com/mjc-lang/minijavac/internal/lir"
)

// LiveInterval is the conservative span [Start, End] over which a
// pseudo-register's value must be kept somewhere (a real register or a
// spill slot): the allocator only needs to know which intervals overlap,
// never an interval's precise shape, so widening a value's true live range
// out to the full extent of every block it's live in — rather than
// tracking the exact instruction positions an SSA interval-tree build
// would need across loop back edges — only ever costs a false-positive
// overlap, never a missed one.
type LiveInterval struct {
	Slot  *lir.MultiSlot
	Start int
	End   int
	// Idx is this interval's position in the Start-sorted slice buildIntervals
	// returns, used only to break ties in the active-set ordering below
	// (pointers have no < operator in Go, so an interval needs some stable
	// tiebreak key of its own).
	Idx int
}

func buildIntervals(fn *lir.Function, bp *blockPositions, ls *liveSets) []*LiveInterval {
	spans := make(map[*lir.MultiSlot]*LiveInterval)
	touch := func(s *lir.MultiSlot, pos int) {
		if s == nil {
			return
		}
		iv, ok := spans[s]
		if !ok {
			spans[s] = &LiveInterval{Slot: s, Start: pos, End: pos}
			return
		}
		if pos < iv.Start {
			iv.Start = pos
		}
		if pos > iv.End {
			iv.End = pos
		}
	}

	for _, b := range fn.Graph.Blocks {
		start, end := bp.start[b], bp.end[b]
		for s := range ls.in[b] {
			touch(s, start)
		}
		for s := range ls.out[b] {
			touch(s, end)
		}
		pc := start + 1
		for _, instr := range b.Code.Body {
			dst, uses := defUse(instr)
			touch(dst, pc)
			for _, u := range uses {
				touch(u, pc)
			}
			pc++
		}
		if b.Code.Leave != nil {
			for _, u := range leaveUses(b.Code.Leave) {
				touch(u, end)
			}
		}
		for _, reg := range b.Regs {
			if reg.IsPhi {
				touch(reg, start)
			}
		}
	}

	out := make([]*LiveInterval, 0, len(spans))
	for _, iv := range spans {
		out = append(out, iv)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].End < out[j].End
	})
	for i, iv := range out {
		iv.Idx = i
	}
	return out
}
