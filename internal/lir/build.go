package lir

import (
	"github.com/mjc-lang/minijavac/internal/ssa"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/types"
)

// LowerProgram lowers every method in prog into LIR, resolving Call
// targets to mangled names via reg (methods carry only their bare name;
// the owning class is needed to make every function name globally
// unique).
func LowerProgram(reg *types.Registry, prog *ssa.Program, syms *symbol.Table) *Program {
	owner := make(map[*types.MethodDef]*types.ClassDef)
	for _, cd := range reg.Classes {
		for _, md := range cd.Methods {
			owner[md] = cd
		}
	}
	mangle := func(md *types.MethodDef) string {
		return syms.Text(owner[md].Name) + "_" + syms.Text(md.Name)
	}

	out := &Program{}
	for _, cd := range reg.Classes {
		for _, md := range cd.Methods {
			fn := prog.Methods[md]
			out.Functions = append(out.Functions, lowerFunction(fn, mangle(md), len(md.Params), md.Return.Kind != types.KindVoid, mangle, prog.Layouts))
		}
	}
	return out
}

// lowerState carries the per-function tables built once up front: every
// SSA value's pseudo-register, and the function-name mangler shared
// across every Call site.
type lowerState struct {
	defs       map[ssa.Value]*ssa.Instruction
	multiSlots map[ssa.Value]*MultiSlot
	mangle     func(*types.MethodDef) string
	layouts    map[symbol.Symbol]*ssa.ClassLayout
}

func lowerFunction(fn *ssa.Function, name string, nargs int, returns bool, mangle func(*types.MethodDef) string, layouts map[symbol.Symbol]*ssa.ClassLayout) *Function {
	blocksBySSA := make(map[*ssa.BasicBlock]*BasicBlock, len(fn.Blocks))
	g := &BlockGraph{}
	for _, sb := range fn.Blocks {
		lb := &BasicBlock{ID: sb.ID, SSABlock: sb}
		blocksBySSA[sb] = lb
		g.Blocks = append(g.Blocks, lb)
	}
	g.Head = blocksBySSA[fn.Entry]

	ls := &lowerState{
		defs:       make(map[ssa.Value]*ssa.Instruction),
		multiSlots: make(map[ssa.Value]*MultiSlot),
		mangle:     mangle,
		layouts:    layouts,
	}

	// Pass 1: allocate one ValueSlot per result-bearing instruction,
	// across every block, before lowering any instruction's operands —
	// so a forward or back-edge reference (through a Phi) always finds
	// its slot already there, regardless of block visitation order.
	nextNum := 0
	for _, sb := range fn.Blocks {
		lb := blocksBySSA[sb]
		for _, instr := range sb.Instrs {
			if !instr.Result.Valid() {
				continue
			}
			ls.defs[instr.Result] = instr
			if instr.Op == ssa.OpPhi {
				// Slots (one ValueSlot per incoming edge, each a real
				// allocation of its own) are filled in the pass below,
				// once every PhiArg's own slot exists.
				ls.multiSlots[instr.Result] = &MultiSlot{IsPhi: true, Phi: instr}
			} else {
				vs := &ValueSlot{Num: nextNum, Value: instr.Result, OriginatesIn: lb}
				nextNum++
				ls.multiSlots[instr.Result] = &MultiSlot{Single: vs}
			}
			lb.Regs = append(lb.Regs, ls.multiSlots[instr.Result])
		}
	}
	// Each Phi gets one freshly allocated ValueSlot per incoming edge —
	// not the contributing value's own slot — since the whole point of
	// per-edge slots is to let the allocator resolve N different source
	// registers into the Phi's one physical register independently on
	// each edge (the classic parallel-copy/phi-resolution problem).
	for _, sb := range fn.Blocks {
		lb := blocksBySSA[sb]
		for _, instr := range sb.Instrs {
			if instr.Op != ssa.OpPhi {
				continue
			}
			ms := ls.multiSlots[instr.Result]
			for range instr.PhiArgs {
				vs := &ValueSlot{Num: nextNum, Value: instr.Result, OriginatesIn: lb}
				nextNum++
				ms.Slots = append(ms.Slots, vs)
			}
		}
	}

	// Pass 2: lower each block's body and terminator.
	for _, sb := range fn.Blocks {
		lb := blocksBySSA[sb]
		lb.Code.Body, lb.Code.Leave = ls.lowerBlockBody(sb, blocksBySSA)
		lb.Returns = returnKindOf(lb.Code.Leave)
	}

	// Pass 3: wire control-flow edges and the register transitions a
	// Phi's incoming arguments require on each predecessor edge.
	for _, sb := range fn.Blocks {
		lb := blocksBySSA[sb]
		it := sb.BeginPredIterator()
		for predSB := it.Next(); predSB != nil; predSB = it.Next() {
			predLB := blocksBySSA[predSB]
			edge := &ControlFlowTransfer{Source: predLB, Target: lb}
			for _, instr := range sb.Instrs {
				if instr.Op != ssa.OpPhi {
					continue
				}
				ms := ls.multiSlots[instr.Result]
				for i, arg := range instr.PhiArgs {
					if arg.Pred == predSB {
						// ls.operand folds a Const-defined argument in as
						// an immediate instead of naming its MultiSlot:
						// lowerInstr never emits a body instruction for
						// OpConst, so that MultiSlot is never written in
						// its origin block, and copying "from" it would
						// copy whatever garbage the allocator left in its
						// assigned location (spec.md §4.6 step 2).
						edge.RegisterTransitions = append(edge.RegisterTransitions, RegisterTransition{
							Src: ls.operand(arg.Value),
							Dst: ms.Slots[i],
						})
					}
				}
			}
			predLB.Succs = append(predLB.Succs, edge)
			lb.Preds = append(lb.Preds, edge)
		}
	}

	return &Function{Name: name, NArgs: nargs, HasThis: fn.HasThis, Returns: returns, Graph: g}
}

func returnKindOf(leave *Leave) ReturnKind {
	if leave == nil || leave.Kind != LeaveReturn {
		return ReturnsNo
	}
	if leave.HasReturnValue {
		return ReturnsValue
	}
	return ReturnsVoid
}

// operand resolves an ssa.Value into a concrete Operand, folding a
// Const's value in directly as an immediate rather than ever routing it
// through a register-holding instruction.
func (ls *lowerState) operand(v ssa.Value) Operand {
	if !v.Valid() {
		return Operand{}
	}
	if def := ls.defs[v]; def != nil && def.Op == ssa.OpConst {
		return Operand{Kind: OperandImm, Imm: def.ConstValue}
	}
	return Operand{Kind: OperandSlot, Slot: ls.multiSlots[v]}
}

func (ls *lowerState) lowerBlockBody(sb *ssa.BasicBlock, blocksBySSA map[*ssa.BasicBlock]*BasicBlock) ([]*Instruction, *Leave) {
	var body []*Instruction
	for _, instr := range sb.Instrs {
		if instr == sb.Terminator {
			continue
		}
		if li := ls.lowerInstr(instr); li != nil {
			body = append(body, li)
		}
	}
	return body, ls.lowerTerminator(sb.Terminator, blocksBySSA)
}

// lowerInstr translates one non-terminator ssa.Instruction. OpConst and
// OpPhi produce no LIR instruction: a constant is inlined wherever it's
// read, and a Phi's value arrives entirely through its predecessor
// edges' register transitions, never through a body instruction of its
// own block.
func (ls *lowerState) lowerInstr(instr *ssa.Instruction) *Instruction {
	dst := ls.multiSlots[instr.Result]
	switch instr.Op {
	case ssa.OpConst, ssa.OpPhi:
		return nil

	case ssa.OpAdd:
		return &Instruction{Kind: InstrBinop, BinOp: BinAdd, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Dst: dst}
	case ssa.OpSub:
		return &Instruction{Kind: InstrBinop, BinOp: BinSub, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Dst: dst}
	case ssa.OpMul:
		return &Instruction{Kind: InstrBinop, BinOp: BinMul, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Dst: dst}
	case ssa.OpAnd:
		return &Instruction{Kind: InstrBinop, BinOp: BinAnd, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Dst: dst}
	case ssa.OpOr:
		return &Instruction{Kind: InstrBinop, BinOp: BinOr, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Dst: dst}

	case ssa.OpDiv:
		return &Instruction{Kind: InstrDivop, DivOp: DivSigned, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Dst: dst}
	case ssa.OpMod:
		return &Instruction{Kind: InstrMod, DivOp: DivSigned, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Dst: dst}

	case ssa.OpMinus:
		return &Instruction{Kind: InstrBasic, UnOp: BasicNeg, Src1: ls.operand(instr.Args[0]), Dst: dst}
	case ssa.OpNot:
		return &Instruction{Kind: InstrBasic, UnOp: BasicNot, Src1: ls.operand(instr.Args[0]), Dst: dst}

	case ssa.OpLoad:
		return &Instruction{Kind: InstrLoad, Src1: ls.operand(instr.Args[0]), Dst: dst, Size: ssa.StrideOf(instr.Typ)}
	case ssa.OpStore:
		addrTyp := ls.defs[instr.Args[0]].Typ
		return &Instruction{Kind: InstrStore, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.StoreValue), Size: ssa.StrideOf(addrTyp)}

	case ssa.OpMember:
		return &Instruction{Kind: InstrLea, Src1: ls.operand(instr.Args[0]), Offset: instr.Offset, Dst: dst}
	case ssa.OpSel:
		return &Instruction{Kind: InstrLea, Src1: ls.operand(instr.Args[0]), Src2: ls.operand(instr.Args[1]), Stride: instr.Stride, Dst: dst}

	case ssa.OpCall:
		args := make([]Operand, 0, len(instr.CallArgs)+1)
		if instr.CallThis.Valid() {
			args = append(args, ls.operand(instr.CallThis))
		}
		for _, a := range instr.CallArgs {
			args = append(args, ls.operand(a))
		}
		return &Instruction{Kind: InstrCall, FuncName: ls.mangle(instr.CallTarget), CallArgs: args, CallDst: dst}

	case ssa.OpProj:
		switch instr.ProjKind {
		case ssa.ProjStartThis:
			return &Instruction{Kind: InstrLoadParam, IsThis: true, Dst: dst}
		case ssa.ProjStartArg:
			return &Instruction{Kind: InstrLoadParam, ParamIdx: instr.ProjArg, Dst: dst}
		default: // ProjCallValue: a call's result is already its Dst slot directly
			return nil
		}

	case ssa.OpAllocObject:
		return &Instruction{Kind: InstrAllocObject, Size: ls.layouts[instr.AllocClass.Name].Size, Dst: dst}

	case ssa.OpAllocArray:
		return &Instruction{Kind: InstrAllocArray, Src1: ls.operand(instr.Args[0]), Stride: instr.AllocStride, Dst: dst}

	default: // OpAddress: never emitted by the current lowering (no first-class function values), kept only for interface completeness
		return nil
	}
}

func (ls *lowerState) lowerTerminator(instr *ssa.Instruction, blocksBySSA map[*ssa.BasicBlock]*BasicBlock) *Leave {
	switch instr.Op {
	case ssa.OpJmp:
		return &Leave{Kind: LeaveJmp, JmpTarget: blocksBySSA[instr.JmpTarget]}

	case ssa.OpCmp:
		return &Leave{
			Kind: LeaveCondJmp, Cond: instr.Cond,
			Left: ls.operand(instr.Args[0]), Right: ls.operand(instr.Args[1]),
			TrueTarget: blocksBySSA[instr.CmpTrueTarget], FalseTarget: blocksBySSA[instr.CmpFalseTarget],
		}

	case ssa.OpReturn:
		l := &Leave{Kind: LeaveReturn, HasReturnValue: instr.HasReturnValue}
		if instr.HasReturnValue {
			l.ReturnValue = ls.operand(instr.ReturnValue)
		}
		return l

	default:
		panic("lir: block terminator is not Jmp/Cmp/Return")
	}
}
