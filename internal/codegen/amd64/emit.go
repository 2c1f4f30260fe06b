// Package amd64 turns allocated LIR into textual AT&T-syntax x86-64
// assembly, one function at a time, grounded on
// original_source/compiler-lib/src/lowering/amd64/gen_instr.rs's
// instruction-by-instruction translation and function.rs's prologue/
// epilogue shape. Like the teacher's compilation_context.go writing wasm
// bytes to an io.Writer rather than building an in-memory object, emission
// here streams text straight to an io.Writer instead of assembling a byte-
// code object model — twitchyliquid64/golang-asm's relocation-bearing
// object format has no SPEC_FULL.md component to serve, since this
// compiler hands its output to an external assembler/linker rather than
// JITting in-process.
package amd64

import (
	"fmt"
	"io"

	"github.com/mjc-lang/minijavac/internal/lir"
	"github.com/mjc-lang/minijavac/internal/regalloc"
	"github.com/mjc-lang/minijavac/internal/ssa"
)

// EmitProgram allocates registers for and emits every function in prog.
func EmitProgram(w io.Writer, prog *lir.Program) error {
	fmt.Fprintln(w, "\t.text")
	for _, fn := range prog.Functions {
		alloc := regalloc.Allocate(fn)
		if err := emitFunction(w, fn, alloc); err != nil {
			return err
		}
	}
	return nil
}

func blockLabel(fn *lir.Function, b *lir.BasicBlock) string {
	return fmt.Sprintf(".L%s_%d", fn.Name, b.ID)
}

func emitFunction(w io.Writer, fn *lir.Function, alloc *regalloc.Allocation) error {
	resolveCopies(fn)
	owners := phiOwners(fn)

	fmt.Fprintf(w, "\t.globl %s\n", fn.Name)
	fmt.Fprintf(w, "%s:\n", fn.Name)

	emitPrologue(w, alloc)

	for _, b := range fn.Graph.Blocks {
		fmt.Fprintf(w, "%s:\n", blockLabel(fn, b))
		for _, instr := range b.Code.Body {
			emitInstruction(w, instr, fn.HasThis, alloc)
		}
		for _, cp := range b.Code.CopyOut {
			emitCopy(w, cp, owners, alloc)
		}
		emitLeave(w, fn, b, alloc)
	}
	return nil
}

func emitPrologue(w io.Writer, alloc *regalloc.Allocation) {
	fmt.Fprintln(w, "\tpushq %rbp")
	fmt.Fprintln(w, "\tmovq %rsp, %rbp")
	for _, r := range alloc.CalleeSaved {
		fmt.Fprintf(w, "\tpushq %s\n", reg64(r))
	}
	if alloc.NumSpills > 0 {
		fmt.Fprintf(w, "\tsubq $%d, %%rsp\n", 8*alloc.NumSpills)
	}
}

// emitEpilogue tears the frame back down, mirroring emitPrologue in
// reverse: deallocate spills, restore callee-saves in reverse push order,
// restore the caller's %rbp, return.
func emitEpilogue(w io.Writer, alloc *regalloc.Allocation) {
	if alloc.NumSpills > 0 {
		fmt.Fprintf(w, "\taddq $%d, %%rsp\n", 8*alloc.NumSpills)
	}
	for i := len(alloc.CalleeSaved) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "\tpopq %s\n", reg64(alloc.CalleeSaved[i]))
	}
	fmt.Fprintln(w, "\tpopq %rbp")
	fmt.Fprintln(w, "\tret")
}

// paramLocation is where the System V calling convention leaves parameter
// idx (0-based, receiver occupying slot 0 when hasThis), before it gets
// moved into its assigned pseudo-register's home: either one of
// regalloc.ArgRegs, or a caller-frame stack slot for the 7th argument on.
func paramLocation(idx int) string {
	if idx < len(regalloc.ArgRegs) {
		return reg64(regalloc.ArgRegs[idx])
	}
	overflow := idx - len(regalloc.ArgRegs)
	return fmt.Sprintf("%d(%%rbp)", 16+8*overflow)
}

func emitInstruction(w io.Writer, instr *lir.Instruction, hasThis bool, alloc *regalloc.Allocation) {
	switch instr.Kind {
	case lir.InstrBinop:
		emitBinop(w, instr, alloc)
	case lir.InstrDivop, lir.InstrMod:
		emitDivMod(w, instr, alloc)
	case lir.InstrBasic:
		emitUnary(w, instr, alloc)
	case lir.InstrMovq:
		emitMove(w, operand(instr.Src1, alloc), loc(instr.Dst, alloc))
	case lir.InstrCall:
		emitCall(w, instr, alloc)
	case lir.InstrLoadParam:
		idx := instr.ParamIdx
		if instr.IsThis {
			idx = 0
		} else if hasThis {
			idx++
		}
		emitMove(w, paramLocation(idx), loc(instr.Dst, alloc))
	case lir.InstrLoad:
		emitLoad(w, instr, alloc)
	case lir.InstrStore:
		emitStore(w, instr, alloc)
	case lir.InstrLea:
		emitLea(w, instr, alloc)
	case lir.InstrAllocObject:
		emitAlloc(w, instr, "minijava_alloc_object", fmt.Sprintf("$%d", instr.Size), alloc)
	case lir.InstrAllocArray:
		emitAlloc(w, instr, "minijava_alloc_array", operand(instr.Src1, alloc), alloc)
		fmt.Fprintf(w, "\t# element stride %d\n", instr.Stride)
	case lir.InstrComment:
		fmt.Fprintf(w, "\t# %s\n", instr.Comment)
	}
}

// emitMove copies src into dst, routing through a scratch register when
// both sides are frame memory (x86 forbids a memory-to-memory mov) and
// skipping the instruction entirely when they already name the same place.
func emitMove(w io.Writer, src, dst string) {
	if src == dst {
		return
	}
	if isMem(src) && isMem(dst) {
		fmt.Fprintf(w, "\tmovq %s, %s\n", src, reg64(regalloc.R11))
		fmt.Fprintf(w, "\tmovq %s, %s\n", reg64(regalloc.R11), dst)
		return
	}
	fmt.Fprintf(w, "\tmovq %s, %s\n", src, dst)
}

func emitCopy(w io.Writer, cp lir.CopyPropagation, owners map[*lir.ValueSlot]*lir.MultiSlot, alloc *regalloc.Allocation) {
	dstMS, ok := owners[cp.Dst]
	if !ok {
		return
	}
	emitMove(w, operand(cp.Src, alloc), loc(dstMS, alloc))
}

var binMnemonic = map[lir.BinopKind]string{
	lir.BinAdd: "addq",
	lir.BinSub: "subq",
	lir.BinMul: "imulq",
	lir.BinAnd: "andq",
	lir.BinOr:  "orq",
}

// emitBinop always routes through a scratch register rather than writing
// directly into dst's location: dst can legally coincide with src2's
// register (the allocator has no reason to avoid it), and for a
// non-commutative op like Sub that would silently compute the operands in
// the wrong order if done in place.
func emitBinop(w io.Writer, instr *lir.Instruction, alloc *regalloc.Allocation) {
	src1, src2, dst := operand(instr.Src1, alloc), operand(instr.Src2, alloc), loc(instr.Dst, alloc)
	scratch := reg64(pickScratch(operandRegs(alloc, instr.Src1, instr.Src2)...))
	fmt.Fprintf(w, "\tmovq %s, %s\n", src1, scratch)
	fmt.Fprintf(w, "\t%s %s, %s\n", binMnemonic[instr.BinOp], src2, scratch)
	emitMove(w, scratch, dst)
}

func emitUnary(w io.Writer, instr *lir.Instruction, alloc *regalloc.Allocation) {
	src, dst := operand(instr.Src1, alloc), loc(instr.Dst, alloc)
	scratch := reg64(pickScratch(operandRegs(alloc, instr.Src1)...))
	mnemonic := "negq"
	if instr.UnOp == lir.BasicNot {
		mnemonic = "notq"
	}
	fmt.Fprintf(w, "\tmovq %s, %s\n", src, scratch)
	fmt.Fprintf(w, "\t%s %s\n", mnemonic, scratch)
	emitMove(w, scratch, dst)
}

// emitDivMod lowers signed division/remainder via cqto+idivq, which
// hard-wires %rax/%rdx/%rcx (dividend, remainder, and our divisor scratch):
// it saves the three around the operation and restores them afterward,
// except whichever one happens to be dst's own assigned register, since
// that one is about to be overwritten with the real result anyway and
// restoring it would clobber that result. The stack stays balanced either
// way: a skipped restore becomes a plain %rsp bump instead of a pop.
func emitDivMod(w io.Writer, instr *lir.Instruction, alloc *regalloc.Allocation) {
	clobbered := []regalloc.RealReg{regalloc.RCX, regalloc.RAX, regalloc.RDX}
	for _, r := range clobbered {
		fmt.Fprintf(w, "\tpushq %s\n", reg64(r))
	}

	fmt.Fprintf(w, "\tmovq %s, %s\n", operand(instr.Src2, alloc), reg64(regalloc.RCX))
	fmt.Fprintf(w, "\tmovq %s, %s\n", operand(instr.Src1, alloc), reg64(regalloc.RAX))
	fmt.Fprintln(w, "\tcqto")
	fmt.Fprintf(w, "\tidivq %s\n", reg64(regalloc.RCX))

	resultReg := regalloc.RAX
	if instr.Kind == lir.InstrMod {
		resultReg = regalloc.RDX
	}
	dst := loc(instr.Dst, alloc)
	emitMove(w, reg64(resultReg), dst)

	dstReg, dstIsReg := regOf(instr.Dst, alloc)
	for i := len(clobbered) - 1; i >= 0; i-- {
		r := clobbered[i]
		if dstIsReg && dstReg == r {
			fmt.Fprintln(w, "\taddq $8, %rsp")
			continue
		}
		fmt.Fprintf(w, "\tpopq %s\n", reg64(r))
	}
}

// emitCall saves exactly the caller-saved registers the allocator found
// live across this call site (Allocation.LiveAcrossCall), passes arguments
// per the System V register/stack split, calls, moves the result into
// place, and restores what it saved — spec.md §4.7's "Around every Call,
// save live caller-saves ... restore saves" applied with the precision
// regalloc.Allocate already worked out, rather than a blanket save of every
// caller-saved register regardless of whether anything alive needs it.
func emitCall(w io.Writer, instr *lir.Instruction, alloc *regalloc.Allocation) {
	live := alloc.LiveAcrossCall[instr]
	for _, r := range live {
		fmt.Fprintf(w, "\tpushq %s\n", reg64(r))
	}

	emitCallArgs(w, instr.CallArgs, alloc)

	fmt.Fprintf(w, "\tcall %s\n", instr.FuncName)

	if overflow := len(instr.CallArgs) - len(regalloc.ArgRegs); overflow > 0 {
		fmt.Fprintf(w, "\taddq $%d, %%rsp\n", 8*overflow)
	}
	if instr.CallDst != nil {
		emitMove(w, reg64(regalloc.RAX), loc(instr.CallDst, alloc))
	}

	for i := len(live) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "\tpopq %s\n", reg64(live[i]))
	}
}

// emitCallArgs loads args into the System V argument registers/stack
// slots. The register-bound arguments are first all pushed, in order,
// then popped back off in reverse directly into their destination
// registers: reading every argument's value onto the stack before
// touching any ArgRegs sidesteps the classic parallel-move hazard where
// arg[0] already lives in the register arg[1] needs to end up in (moving
// arg[0] into place first would clobber arg[1]'s source before it's read).
func emitCallArgs(w io.Writer, args []lir.Operand, alloc *regalloc.Allocation) {
	n := len(regalloc.ArgRegs)
	regArgs, stackArgs := args, ([]lir.Operand)(nil)
	if len(args) > n {
		regArgs, stackArgs = args[:n], args[n:]
	}

	for i := len(stackArgs) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "\tpushq %s\n", operand(stackArgs[i], alloc))
	}
	for _, arg := range regArgs {
		fmt.Fprintf(w, "\tpushq %s\n", operand(arg, alloc))
	}
	for i := len(regArgs) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "\tpopq %s\n", reg64(regalloc.ArgRegs[i]))
	}
}

// emitLoad reads Size bytes from the address in Src1 into Dst. A 1-byte
// load uses movzbq so the pseudo-register's upper bits are always zero —
// plain movb only ever writes the low byte, which would leave whatever
// garbage scratch previously held in the rest of the register, corrupting
// any later full-width comparison against the loaded boolean. A 4-byte
// load needs no explicit extension: x86 always zero-extends a 32-bit
// register write to the full 64 bits.
func emitLoad(w io.Writer, instr *lir.Instruction, alloc *regalloc.Allocation) {
	picker := newScratchPicker(operandRegs(alloc, instr.Src1)...)
	scratchReg := picker.next()
	addr := picker.materialize(w, operand(instr.Src1, alloc))
	dst := loc(instr.Dst, alloc)
	scratch := reg64(scratchReg)
	switch instr.Size {
	case 1:
		fmt.Fprintf(w, "\tmovzbq (%s), %s\n", addr, scratch)
	case 4:
		fmt.Fprintf(w, "\tmovl (%s), %s\n", addr, dwordReg(scratch))
	default:
		fmt.Fprintf(w, "\tmovq (%s), %s\n", addr, scratch)
	}
	emitMove(w, scratch, dst)
}

func emitStore(w io.Writer, instr *lir.Instruction, alloc *regalloc.Allocation) {
	picker := newScratchPicker(operandRegs(alloc, instr.Src1, instr.Src2)...)
	valueScratch := picker.next()
	addr := picker.materialize(w, operand(instr.Src1, alloc))
	val := operand(instr.Src2, alloc)
	scratch := reg64(valueScratch)
	fmt.Fprintf(w, "\tmovq %s, %s\n", val, scratch)
	switch instr.Size {
	case 1:
		fmt.Fprintf(w, "\tmovb %s, (%s)\n", byteReg(scratch), addr)
	case 4:
		fmt.Fprintf(w, "\tmovl %s, (%s)\n", dwordReg(scratch), addr)
	default:
		fmt.Fprintf(w, "\tmovq %s, (%s)\n", scratch, addr)
	}
}

func byteReg(reg64Name string) string {
	switch reg64Name {
	case "%rax":
		return "%al"
	case "%rbx":
		return "%bl"
	case "%rcx":
		return "%cl"
	case "%rdx":
		return "%dl"
	default:
		return "%" + reg64Name[1:] + "b"
	}
}

// dwordReg renders a 64-bit AT&T register name's 32-bit form: the legacy
// %eax-style registers drop the leading "r" for "e", while the r8-r15
// extended registers just suffix a "d".
func dwordReg(reg64Name string) string {
	switch reg64Name {
	case "%rax", "%rbx", "%rcx", "%rdx", "%rsi", "%rdi":
		return "%e" + reg64Name[2:]
	default:
		return reg64Name + "d"
	}
}

// emitLea computes Src1 + Offset (+ Src2*Stride for array indexing) into
// Dst, using the scale directly as x86's SIB scale factor: 1, 4, and 8 are
// all valid scales, which is exactly ssa.StrideOf's boolean/int/reference
// byte widths, so no further translation is needed between element size
// and addressing-mode scale.
func emitLea(w io.Writer, instr *lir.Instruction, alloc *regalloc.Allocation) {
	dst := loc(instr.Dst, alloc)
	picker := newScratchPicker(operandRegs(alloc, instr.Src1, instr.Src2)...)
	result := picker.next()
	base := picker.materialize(w, operand(instr.Src1, alloc))

	if instr.Stride == 0 {
		fmt.Fprintf(w, "\tleaq %d(%s), %s\n", instr.Offset, base, reg64(result))
	} else {
		index := picker.materialize(w, operand(instr.Src2, alloc))
		fmt.Fprintf(w, "\tleaq %d(%s,%s,%d), %s\n", instr.Offset, base, index, instr.Stride, reg64(result))
	}
	emitMove(w, reg64(result), dst)
}

// emitAlloc calls into the runtime's allocator, saving/restoring whatever
// Allocation.LiveAcrossCall found live across this instruction exactly as
// emitCall does: an AllocObject/AllocArray is a real call underneath and
// clobbers caller-saved registers just the same.
func emitAlloc(w io.Writer, instr *lir.Instruction, runtimeFn, sizeOperand string, alloc *regalloc.Allocation) {
	live := alloc.LiveAcrossCall[instr]
	for _, r := range live {
		fmt.Fprintf(w, "\tpushq %s\n", reg64(r))
	}
	fmt.Fprintf(w, "\tmovq %s, %s\n", sizeOperand, reg64(regalloc.RDI))
	fmt.Fprintf(w, "\tcall %s\n", runtimeFn)
	emitMove(w, reg64(regalloc.RAX), loc(instr.Dst, alloc))
	for i := len(live) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "\tpopq %s\n", reg64(live[i]))
	}
}

// jccMnemonic maps a comparison kind to the AT&T conditional-jump mnemonic
// that fires when Left <cond> Right, given cmpq computes Left - Right.
var jccMnemonic = map[ssa.CondKind]string{
	ssa.CondEqual:        "je",
	ssa.CondNotEqual:     "jne",
	ssa.CondLess:         "jl",
	ssa.CondLessEqual:    "jle",
	ssa.CondGreater:      "jg",
	ssa.CondGreaterEqual: "jge",
}

func emitLeave(w io.Writer, fn *lir.Function, b *lir.BasicBlock, alloc *regalloc.Allocation) {
	l := b.Code.Leave
	switch l.Kind {
	case lir.LeaveJmp:
		fmt.Fprintf(w, "\tjmp %s\n", blockLabel(fn, l.JmpTarget))

	case lir.LeaveCondJmp:
		left := operand(l.Left, alloc)
		right := operand(l.Right, alloc)
		scratch := reg64(pickScratch(operandRegs(alloc, l.Left, l.Right)...))
		fmt.Fprintf(w, "\tmovq %s, %s\n", left, scratch)
		fmt.Fprintf(w, "\tcmpq %s, %s\n", right, scratch)
		fmt.Fprintf(w, "\t%s %s\n", jccMnemonic[l.Cond], blockLabel(fn, l.TrueTarget))
		fmt.Fprintf(w, "\tjmp %s\n", blockLabel(fn, l.FalseTarget))

	case lir.LeaveReturn:
		if l.HasReturnValue {
			emitMove(w, operand(l.ReturnValue, alloc), reg64(regalloc.RAX))
		}
		emitEpilogue(w, alloc)
	}
}
