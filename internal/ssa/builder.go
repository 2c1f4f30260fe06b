package ssa

import "github.com/mjc-lang/minijavac/internal/types"

// Function is one method's completed Firm graph: its basic blocks in
// allocation order (the entry block is always Blocks[0]) plus whether the
// method has a `this` receiver.
type Function struct {
	Blocks    []*BasicBlock
	Entry     *BasicBlock
	HasThis   bool
	ParamVals []Value // not filled by Finish; always nil
}

// Builder constructs one method's Firm graph using the incomplete-CFG
// SSA construction algorithm: variables are never explicitly renamed by
// the caller, FindValue resolves the nearest reaching definition on
// demand, inserting a placeholder Phi when a block isn't sealed yet and
// wiring real Phi arguments once Seal is called.
type Builder struct {
	vars      []variableInfo
	nextValue Value
	blocks    []*BasicBlock
	currentBB *BasicBlock
}

// NewBuilder returns a Builder ready to construct one method's graph.
func NewBuilder() *Builder {
	return &Builder{nextValue: ValueInvalid + 1}
}

// DeclareVariable registers a new source-level slot (local, parameter, or
// `this`) of the given type and returns its handle.
func (b *Builder) DeclareVariable(typ types.CheckedType) Variable {
	v := Variable(len(b.vars))
	b.vars = append(b.vars, variableInfo{typ: typ})
	return v
}

// AllocateBasicBlock creates a new, initially unsealed BasicBlock.
func (b *Builder) AllocateBasicBlock() *BasicBlock {
	blk := newBasicBlock(len(b.blocks))
	b.blocks = append(b.blocks, blk)
	return blk
}

// SetCurrentBlock redirects instruction insertion to blk.
func (b *Builder) SetCurrentBlock(blk *BasicBlock) { b.currentBB = blk }

// CurrentBlock returns the block instructions are currently inserted into.
func (b *Builder) CurrentBlock() *BasicBlock { return b.currentBB }

// AddPred records that pred branches into blk. Forbidden after Seal.
func (b *Builder) AddPred(blk, pred *BasicBlock) {
	if blk.Sealed {
		panic("ssa: AddPred on an already-sealed block")
	}
	blk.Preds = append(blk.Preds, pred)
}

func (b *Builder) allocValue() Value {
	v := b.nextValue
	b.nextValue++
	return v
}

// emit inserts instr into the current block and, unless its Op produces
// no result (Store/Jmp/Return/a control-context Cmp), allocates its
// Result.
func (b *Builder) emit(instr *Instruction, hasResult bool) *Instruction {
	b.currentBB.append(instr)
	if hasResult {
		instr.Result = b.allocValue()
	}
	return instr
}

// DefineVariable binds variable to value within blk. The defining
// instruction (if any) must already have been inserted into blk.
func (b *Builder) DefineVariable(variable Variable, value Value, blk *BasicBlock) {
	blk.lastDefs[variable] = value
}

// DefineVariableInCurrentBB is DefineVariable(variable, value, CurrentBlock()).
func (b *Builder) DefineVariableInCurrentBB(variable Variable, value Value) {
	b.DefineVariable(variable, value, b.currentBB)
}

// FindValue resolves variable's reaching definition from the current
// block, per Braun et al. §2.2/§2.3.
func (b *Builder) FindValue(variable Variable) Value {
	return b.findValue(variable, b.currentBB)
}

func (b *Builder) findValue(variable Variable, blk *BasicBlock) Value {
	if v, ok := blk.lastDefs[variable]; ok {
		return v
	}
	if !blk.Sealed {
		// Incomplete CFG: this block may still gain predecessors, so
		// park a placeholder Phi and resolve its arguments at Seal time.
		phi := &Instruction{Op: OpPhi, Typ: b.vars[variable].typ}
		phi.Block = blk
		phi.Result = b.allocValue()
		blk.incompletePhis[variable] = phi
		blk.lastDefs[variable] = phi.Result
		return phi.Result
	}
	if len(blk.Preds) == 1 {
		v := b.findValue(variable, blk.Preds[0])
		blk.lastDefs[variable] = v
		return v
	}
	// Multiple (or zero, for an otherwise-unreachable sealed block)
	// predecessors: materialize a real Phi and recurse into every
	// predecessor to gather its incoming value.
	phi := &Instruction{Op: OpPhi, Typ: b.vars[variable].typ, Result: b.allocValue(), Block: blk}
	blk.instrsPrepend(phi)
	blk.lastDefs[variable] = phi.Result
	for _, pred := range blk.Preds {
		pv := b.findValue(variable, pred)
		phi.PhiArgs = append(phi.PhiArgs, PhiArg{Pred: pred, Value: pv})
	}
	return phi.Result
}

// Seal declares that blk's predecessor set is now complete: every
// variable read while blk was incomplete gets its placeholder Phi
// promoted to a real one, with one argument gathered from each
// predecessor.
func (b *Builder) Seal(blk *BasicBlock) {
	for variable, phi := range blk.incompletePhis {
		for _, pred := range blk.Preds {
			pv := b.findValue(variable, pred)
			phi.PhiArgs = append(phi.PhiArgs, PhiArg{Pred: pred, Value: pv})
		}
		blk.instrsPrepend(phi)
	}
	blk.incompletePhis = make(map[Variable]*Instruction)
	blk.Sealed = true
}

// --- node constructors -----------------------------------------------

func (b *Builder) Const(v int64) Value {
	i := b.emit(&Instruction{Op: OpConst, ConstValue: v, Typ: types.Int}, true)
	return i.Result
}

func (b *Builder) BoolConst(v bool) Value {
	var n int64
	if v {
		n = 1
	}
	i := b.emit(&Instruction{Op: OpConst, ConstValue: n, Typ: types.Boolean}, true)
	return i.Result
}

func (b *Builder) Binop(op Opcode, l, r Value, typ types.CheckedType) Value {
	i := b.emit(&Instruction{Op: op, Args: [2]Value{l, r}, Typ: typ}, true)
	return i.Result
}

func (b *Builder) Cmp(cond CondKind, l, r Value) Value {
	i := b.emit(&Instruction{Op: OpCmp, Cond: cond, Args: [2]Value{l, r}, Typ: types.Boolean}, true)
	return i.Result
}

func (b *Builder) Unop(op Opcode, v Value, typ types.CheckedType) Value {
	i := b.emit(&Instruction{Op: op, Args: [2]Value{v}, Typ: typ}, true)
	return i.Result
}

// link records that the current block branches into target, so target
// gains it as a predecessor. Every block-ending branch goes through this
// so callers building control flow never need to call AddPred themselves.
func (b *Builder) link(target *BasicBlock) {
	b.AddPred(target, b.currentBB)
}

// CmpBranch closes the current block with a control-context comparison:
// cond selects trueTarget when true, falseTarget otherwise.
func (b *Builder) CmpBranch(cond CondKind, l, r Value, trueTarget, falseTarget *BasicBlock) {
	i := &Instruction{Op: OpCmp, Cond: cond, Args: [2]Value{l, r}, CmpTrueTarget: trueTarget, CmpFalseTarget: falseTarget}
	b.currentBB.append(i)
	b.currentBB.Terminator = i
	b.link(trueTarget)
	b.link(falseTarget)
}

func (b *Builder) Jmp(target *BasicBlock) {
	i := &Instruction{Op: OpJmp, JmpTarget: target}
	b.currentBB.append(i)
	b.currentBB.Terminator = i
	b.link(target)
}

func (b *Builder) Return(value Value, has bool) {
	i := &Instruction{Op: OpReturn, ReturnValue: value, HasReturnValue: has}
	b.currentBB.append(i)
	b.currentBB.Terminator = i
}

func (b *Builder) Address(method *types.MethodDef, field *types.FieldDef) Value {
	i := b.emit(&Instruction{Op: OpAddress, EntityMethod: method, EntityField: field}, true)
	return i.Result
}

func (b *Builder) Member(base Value, field *types.FieldDef, offset int) Value {
	i := b.emit(&Instruction{Op: OpMember, Args: [2]Value{base}, EntityField: field, Offset: offset, Typ: field.Type}, true)
	return i.Result
}

func (b *Builder) Sel(base, index Value, stride int, elemType types.CheckedType) Value {
	i := b.emit(&Instruction{Op: OpSel, Args: [2]Value{base, index}, Stride: stride, Typ: elemType}, true)
	return i.Result
}

func (b *Builder) Load(addr Value, typ types.CheckedType) Value {
	i := b.emit(&Instruction{Op: OpLoad, Args: [2]Value{addr}, Typ: typ}, true)
	return i.Result
}

func (b *Builder) Store(addr, value Value) {
	i := &Instruction{Op: OpStore, Args: [2]Value{addr}, StoreValue: value}
	b.currentBB.append(i)
}

func (b *Builder) Call(target *types.MethodDef, thisArg Value, args []Value) Value {
	i := &Instruction{Op: OpCall, CallTarget: target, CallThis: thisArg, CallArgs: args, Typ: target.Return}
	b.currentBB.append(i)
	if target.Return.Kind == types.KindVoid {
		return ValueInvalid
	}
	i.Result = b.allocValue()
	return i.Result
}

func (b *Builder) Proj(of Value, kind ProjKind, arg int, typ types.CheckedType) Value {
	i := b.emit(&Instruction{Op: OpProj, ProjOf: of, ProjKind: kind, ProjArg: arg, Typ: typ}, true)
	return i.Result
}

// Param materializes Proj(Start, idx), the value of the idx'th declared
// parameter (0-based, not counting `this`).
func (b *Builder) Param(idx int, typ types.CheckedType) Value {
	return b.Proj(ValueInvalid, ProjStartArg, idx, typ)
}

// ThisParam materializes Proj(Start, this) for an instance method.
func (b *Builder) ThisParam(typ types.CheckedType) Value {
	return b.Proj(ValueInvalid, ProjStartThis, 0, typ)
}

// AllocObject heap-allocates one instance of cd.
func (b *Builder) AllocObject(cd *types.ClassDef) Value {
	i := b.emit(&Instruction{Op: OpAllocObject, AllocClass: cd, Typ: types.TypeRef(cd.Name)}, true)
	return i.Result
}

// AllocArray heap-allocates an array of count elements, each elemStride
// bytes wide (spec.md's "stride = element size (1,2,4,8)").
func (b *Builder) AllocArray(count Value, elemStride int, elemType types.CheckedType) Value {
	i := b.emit(&Instruction{Op: OpAllocArray, Args: [2]Value{count}, AllocStride: elemStride, Typ: types.Array(elemType)}, true)
	return i.Result
}

// Finish freezes the constructed graph into a Function. entry must be
// sealed (or sealable with no further predecessors expected).
func (b *Builder) Finish(entry *BasicBlock, hasThis bool) *Function {
	return &Function{Blocks: b.blocks, Entry: entry, HasThis: hasThis}
}

func (blk *BasicBlock) instrsPrepend(i *Instruction) {
	i.Block = blk
	blk.Instrs = append([]*Instruction{i}, blk.Instrs...)
}
