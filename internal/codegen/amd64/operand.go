package amd64

import (
	"fmt"
	"io"
	"strings"

	"github.com/mjc-lang/minijavac/internal/lir"
	"github.com/mjc-lang/minijavac/internal/regalloc"
)

// spillOffset turns a spill slot index into its displacement below the
// top of the spill area: slot 0 at 8 bytes, slot 1 at 16, and so on. loc
// adds the words of the callee-saved registers emitPrologue pushes
// between %rbp and the spill area, so a spill never overwrites them.
func spillOffset(slot int) int { return 8 * (slot + 1) }

// loc renders a MultiSlot's assigned physical location as an AT&T operand:
// either a bare register or a frame-relative memory reference.
func loc(ms *lir.MultiSlot, alloc *regalloc.Allocation) string {
	asn := alloc.Assignments[ms]
	if asn.Spilled {
		return fmt.Sprintf("-%d(%%rbp)", 8*len(alloc.CalleeSaved)+spillOffset(asn.Spill))
	}
	return reg64(asn.Reg)
}

// isMem reports whether an AT&T operand string names a memory location
// rather than a bare register, by its trailing "(%rbp)"-style suffix.
func isMem(operand string) bool { return strings.HasSuffix(operand, ")") }

// operand renders a lir.Operand (an immediate or a pseudo-register) as its
// AT&T text.
func operand(op lir.Operand, alloc *regalloc.Allocation) string {
	if op.Kind == lir.OperandImm {
		return fmt.Sprintf("$%d", op.Imm)
	}
	return loc(op.Slot, alloc)
}

// scratchPreference is tried in order when an instruction needs a register
// free of every operand it touches: %r11 first since it is never an
// argument-passing or return register, falling through to %r10/%r9/%r8 on
// the rare collision.
var scratchPreference = []regalloc.RealReg{regalloc.R11, regalloc.R10, regalloc.R9, regalloc.R8}

// pickScratch returns a register touched by none of avoid.
func pickScratch(avoid ...regalloc.RealReg) regalloc.RealReg {
	for _, cand := range scratchPreference {
		used := false
		for _, a := range avoid {
			if a == cand {
				used = true
				break
			}
		}
		if !used {
			return cand
		}
	}
	panic("amd64: no scratch register available")
}

// scratchPicker hands out successive scratch registers guaranteed distinct
// from each other and from an initial avoid set, for instructions (like
// Lea with both a spilled base and a spilled index) that need more than
// one temporary at once.
type scratchPicker struct{ used []regalloc.RealReg }

func newScratchPicker(avoid ...regalloc.RealReg) *scratchPicker {
	return &scratchPicker{used: append([]regalloc.RealReg{}, avoid...)}
}

func (p *scratchPicker) next() regalloc.RealReg {
	r := pickScratch(p.used...)
	p.used = append(p.used, r)
	return r
}

// materialize ensures addrOperand is a bare register, consuming a fresh
// scratch register only if it actually needs one (an already-registered
// operand is returned as-is, leaving the picker's budget untouched for
// other operands in the same instruction).
func (p *scratchPicker) materialize(w io.Writer, addrOperand string) string {
	if !isMem(addrOperand) {
		return addrOperand
	}
	reg := p.next()
	fmt.Fprintf(w, "\tmovq %s, %s\n", addrOperand, reg64(reg))
	return reg64(reg)
}

// regOf reports the RealReg an (unspilled) MultiSlot is assigned to, along
// with whether it is in fact unspilled.
func regOf(ms *lir.MultiSlot, alloc *regalloc.Allocation) (regalloc.RealReg, bool) {
	asn, ok := alloc.Assignments[ms]
	if !ok || asn.Spilled {
		return regalloc.RealRegInvalid, false
	}
	return asn.Reg, true
}

// operandRegs returns the real registers (if any, unspilled) that op and
// dst occupy, for scratch-avoidance purposes.
func operandRegs(alloc *regalloc.Allocation, operands ...lir.Operand) []regalloc.RealReg {
	var out []regalloc.RealReg
	for _, op := range operands {
		if op.Kind == lir.OperandSlot {
			if r, ok := regOf(op.Slot, alloc); ok {
				out = append(out, r)
			}
		}
	}
	return out
}
