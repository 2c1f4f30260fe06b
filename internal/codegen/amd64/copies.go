package amd64

import "github.com/mjc-lang/minijavac/internal/lir"

// phiOwners maps every Phi's per-edge ValueSlot back to the MultiSlot the
// allocator assigned a single physical location to, so a RegisterTransition
// naming one edge's ValueSlot can be resolved to where the Phi actually
// lives.
func phiOwners(fn *lir.Function) map[*lir.ValueSlot]*lir.MultiSlot {
	owners := make(map[*lir.ValueSlot]*lir.MultiSlot)
	for _, b := range fn.Graph.Blocks {
		for _, ms := range b.Regs {
			if !ms.IsPhi {
				continue
			}
			for _, slot := range ms.Slots {
				owners[slot] = ms
			}
		}
	}
	return owners
}

// resolveCopies turns every control-flow edge's RegisterTransitions into
// concrete CopyPropagation entries, run once per function after allocation
// assigns physical locations.
//
// These land on the edge's Source block's CopyOut, emitted right before
// that block's terminator, rather than the Target's CopyIn: this lowering
// never produces a critical edge (lowerIf/lowerWhile in internal/ssa always
// route a multi-successor block's two targets to distinct blocks that each
// unconditionally jump on to any shared join), so a transition's source
// block always has exactly one successor and placing the copy there is
// unambiguous — unlike gathering every predecessor's copies into the
// target's single CopyIn list, which would run one predecessor's copies
// even when control arrived via another.
func resolveCopies(fn *lir.Function) {
	owners := phiOwners(fn)
	for _, b := range fn.Graph.Blocks {
		for _, edge := range b.Succs {
			for _, rt := range edge.RegisterTransitions {
				phi, ok := owners[rt.Dst]
				if !ok {
					continue
				}
				b.Code.CopyOut = append(b.Code.CopyOut, lir.CopyPropagation{Src: rt.Src, Dst: phi.Slots[0]})
			}
		}
	}
}
