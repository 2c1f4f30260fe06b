package ssa

import (
	"strconv"

	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/types"
)

// Program is every checked method's Firm graph, plus the class layouts
// the lowering used to compute field offsets — codegen consults both.
type Program struct {
	Methods map[*types.MethodDef]*Function
	Layouts map[symbol.Symbol]*ClassLayout
}

// BuildProgram lowers every method body registered in reg into its Firm
// graph, using ann (the result of types.Check) to resolve each
// expression's type and each name's binding site.
func BuildProgram(reg *types.Registry, ann *types.Annotations, syms *symbol.Table) *Program {
	p := &Program{
		Methods: make(map[*types.MethodDef]*Function),
		Layouts: make(map[symbol.Symbol]*ClassLayout),
	}
	for _, cd := range reg.Classes {
		p.Layouts[cd.Name] = computeLayout(cd)
	}
	for _, cd := range reg.Classes {
		for _, md := range cd.Methods {
			p.Methods[md] = buildMethod(reg, p.Layouts, cd, md, ann, syms)
		}
	}
	return p
}

// funcBuilder carries one method's lowering state: the Firm builder, a
// local-scope stack resolving names to Variables (mirroring
// types.Scoped, but to ssa.Variable instead of a VarDef), and the shared
// read-only context (class registry, field layouts, type annotations).
type funcBuilder struct {
	b       *Builder
	reg     *types.Registry
	layouts map[symbol.Symbol]*ClassLayout
	cd      *types.ClassDef
	md      *types.MethodDef
	ann     *types.Annotations
	syms    *symbol.Table

	scopes  []map[symbol.Symbol]Variable
	thisVar Variable
	hasThis bool
}

func buildMethod(reg *types.Registry, layouts map[symbol.Symbol]*ClassLayout, cd *types.ClassDef, md *types.MethodDef, ann *types.Annotations, syms *symbol.Table) *Function {
	b := NewBuilder()
	fb := &funcBuilder{b: b, reg: reg, layouts: layouts, cd: cd, md: md, ann: ann, syms: syms}

	entry := b.AllocateBasicBlock()
	b.SetCurrentBlock(entry)
	fb.enterScope()

	fb.hasThis = !md.IsMain
	if fb.hasThis {
		fb.thisVar = b.DeclareVariable(types.TypeRef(cd.Name))
		b.DefineVariableInCurrentBB(fb.thisVar, b.ThisParam(types.TypeRef(cd.Name)))
		for i, p := range md.Params {
			v := b.DeclareVariable(p.Type)
			fb.declare(p.Name, v)
			b.DefineVariableInCurrentBB(v, b.Param(i, p.Type))
		}
	}
	// The main method's single String[] parameter is, per spec.md §4.4,
	// forbidden from ever being referenced, so it carries no Variable:
	// there is nothing for lowering to ever look up.

	if md.Body != nil {
		fb.lowerBlock(md.Body)
	}
	if cur := b.CurrentBlock(); cur.Terminator == nil {
		// Falls off the end of a void method with no explicit `return;`.
		b.Return(ValueInvalid, false)
	}
	fb.leaveScope()

	b.Seal(entry)
	return b.Finish(entry, fb.hasThis)
}

// --- scope -------------------------------------------------------------

func (fb *funcBuilder) enterScope() {
	fb.scopes = append(fb.scopes, make(map[symbol.Symbol]Variable))
}

func (fb *funcBuilder) leaveScope() {
	fb.scopes = fb.scopes[:len(fb.scopes)-1]
}

func (fb *funcBuilder) declare(name symbol.Symbol, v Variable) {
	fb.scopes[len(fb.scopes)-1][name] = v
}

func (fb *funcBuilder) lookupVar(name symbol.Symbol) (Variable, bool) {
	for i := len(fb.scopes) - 1; i >= 0; i-- {
		if v, ok := fb.scopes[i][name]; ok {
			return v, true
		}
	}
	return 0, false
}

// sealJmp closes the current block with an unconditional jump to target,
// unless it was already terminated by a nested return (a block that
// always returns has no fallthrough edge to wire).
func (fb *funcBuilder) sealJmp(target *BasicBlock) {
	if fb.b.CurrentBlock().Terminator == nil {
		fb.b.Jmp(target)
	}
}

func (fb *funcBuilder) fieldMember(base Value, owner symbol.Symbol, fd *types.FieldDef) Value {
	off := fb.layouts[owner].Offsets[fd.Name]
	return fb.b.Member(base, fd, off)
}

// --- statements ----------------------------------------------------------

func (fb *funcBuilder) lowerBlock(blk *ast.Block) {
	fb.enterScope()
	for _, s := range blk.Stmts {
		fb.lowerStmt(s.Value)
		if fb.b.CurrentBlock().Terminator != nil {
			break // unreachable code after a return; nothing more to lower
		}
	}
	fb.leaveScope()
}

func (fb *funcBuilder) lowerStmt(s *ast.Stmt) {
	switch s.Kind {
	case ast.StmtBlock:
		fb.lowerBlock(s.Block)

	case ast.StmtEmpty:
		// nothing to lower

	case ast.StmtIf:
		fb.lowerIf(s)

	case ast.StmtWhile:
		fb.lowerWhile(s)

	case ast.StmtExpression:
		fb.lowerExpr(s.Expr)

	case ast.StmtReturn:
		fb.lowerReturn(s)

	case ast.StmtDecl:
		fb.lowerDecl(s)
	}
}

func (fb *funcBuilder) lowerIf(s *ast.Stmt) {
	thenBB := fb.b.AllocateBasicBlock()
	elseBB := fb.b.AllocateBasicBlock()
	joinBB := fb.b.AllocateBasicBlock()

	fb.lowerCond(s.Cond, thenBB, elseBB)
	fb.b.Seal(thenBB)
	fb.b.Seal(elseBB)

	fb.b.SetCurrentBlock(thenBB)
	if s.Then.Value != nil {
		fb.lowerStmt(s.Then.Value)
	}
	fb.sealJmp(joinBB)

	fb.b.SetCurrentBlock(elseBB)
	if s.Else.Value != nil {
		fb.lowerStmt(s.Else.Value)
	}
	fb.sealJmp(joinBB)

	fb.b.Seal(joinBB)
	fb.b.SetCurrentBlock(joinBB)
}

func (fb *funcBuilder) lowerWhile(s *ast.Stmt) {
	headBB := fb.b.AllocateBasicBlock()
	bodyBB := fb.b.AllocateBasicBlock()
	exitBB := fb.b.AllocateBasicBlock()

	fb.sealJmp(headBB)

	fb.b.SetCurrentBlock(headBB)
	fb.lowerCond(s.Cond, bodyBB, exitBB)
	fb.b.Seal(bodyBB)
	fb.b.Seal(exitBB)

	fb.b.SetCurrentBlock(bodyBB)
	if s.Then.Value != nil {
		fb.lowerStmt(s.Then.Value)
	}
	fb.sealJmp(headBB)
	// Only now, after the body's back edge has been wired, are all of
	// headBB's predecessors (the preheader and the loop body) known.
	fb.b.Seal(headBB)

	fb.b.SetCurrentBlock(exitBB)
}

func (fb *funcBuilder) lowerReturn(s *ast.Stmt) {
	if !s.HasExpr {
		fb.b.Return(ValueInvalid, false)
		return
	}
	v := fb.lowerExpr(s.Expr)
	fb.b.Return(v, true)
}

func (fb *funcBuilder) lowerDecl(s *ast.Stmt) {
	declType := types.ResolveASTType(s.DeclType)
	v := fb.b.DeclareVariable(declType)
	fb.declare(s.DeclName, v)

	var init Value
	if s.HasExpr {
		init = fb.lowerExpr(s.DeclInit)
	} else {
		init = fb.zeroValue(declType)
	}
	fb.b.DefineVariableInCurrentBB(v, init)
}

// zeroValue is the value an uninitialized local of typ starts life as:
// 0 for int, false for boolean, and the null pointer for every
// reference-shaped type (class instance or array).
func (fb *funcBuilder) zeroValue(typ types.CheckedType) Value {
	if typ.Kind == types.KindBoolean {
		return fb.b.BoolConst(false)
	}
	return fb.b.Const(0) // int 0, or the null pointer for a reference type
}

// --- control-context expressions ----------------------------------------

// lowerCond lowers e for its control-flow effect alone (spec.md §4.5:
// "Boolean expressions evaluated in control context use short-circuit
// lowering to Cmp+Cond"), branching to trueTarget/falseTarget without
// ever materializing an intermediate boolean value.
func (fb *funcBuilder) lowerCond(e ast.ExprRef, trueTarget, falseTarget *BasicBlock) {
	ex := e.Value
	switch ex.Kind {
	case ast.ExprBool:
		if ex.BoolValue {
			fb.sealJmp(trueTarget)
		} else {
			fb.sealJmp(falseTarget)
		}
		return

	case ast.ExprUnary:
		if ex.UnOp == ast.OpNot {
			fb.lowerCond(ex.Operand, falseTarget, trueTarget)
			return
		}

	case ast.ExprBinary:
		switch ex.BinOp {
		case ast.OpAnd:
			mid := fb.b.AllocateBasicBlock()
			fb.lowerCond(ex.Left, mid, falseTarget)
			fb.b.Seal(mid)
			fb.b.SetCurrentBlock(mid)
			fb.lowerCond(ex.Right, trueTarget, falseTarget)
			return

		case ast.OpOr:
			mid := fb.b.AllocateBasicBlock()
			fb.lowerCond(ex.Left, trueTarget, mid)
			fb.b.Seal(mid)
			fb.b.SetCurrentBlock(mid)
			fb.lowerCond(ex.Right, trueTarget, falseTarget)
			return

		case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual, ast.OpEqual, ast.OpNotEqual:
			l := fb.lowerExpr(ex.Left)
			r := fb.lowerExpr(ex.Right)
			fb.b.CmpBranch(condKindOf(ex.BinOp), l, r, trueTarget, falseTarget)
			return
		}
	}

	// Any other boolean-typed expression (a Var, FieldAccess, ArrayAccess,
	// or method call result): evaluate it as a value, then branch on
	// whether it's nonzero.
	v := fb.lowerExpr(e)
	fb.b.CmpBranch(CondNotEqual, v, fb.b.BoolConst(false), trueTarget, falseTarget)
}

func condKindOf(op ast.BinaryOp) CondKind {
	switch op {
	case ast.OpEqual:
		return CondEqual
	case ast.OpNotEqual:
		return CondNotEqual
	case ast.OpLess:
		return CondLess
	case ast.OpLessEqual:
		return CondLessEqual
	case ast.OpGreater:
		return CondGreater
	default: // ast.OpGreaterEqual
		return CondGreaterEqual
	}
}

// materializeBool lowers e (known boolean-typed) in value context,
// per spec.md §4.5: "in value context they materialize a Phi over
// const(1)/const(0)" — realized here as a Phi discovered through
// FindValue over a Variable defined differently on the true/false arms,
// rather than a literal two-argument Phi constructor, so it reuses the
// same incomplete-CFG machinery as every other local.
func (fb *funcBuilder) materializeBool(e ast.ExprRef) Value {
	trueBB := fb.b.AllocateBasicBlock()
	falseBB := fb.b.AllocateBasicBlock()
	joinBB := fb.b.AllocateBasicBlock()

	fb.lowerCond(e, trueBB, falseBB)
	fb.b.Seal(trueBB)
	fb.b.Seal(falseBB)

	v := fb.b.DeclareVariable(types.Boolean)

	fb.b.SetCurrentBlock(trueBB)
	fb.b.DefineVariableInCurrentBB(v, fb.b.BoolConst(true))
	fb.sealJmp(joinBB)

	fb.b.SetCurrentBlock(falseBB)
	fb.b.DefineVariableInCurrentBB(v, fb.b.BoolConst(false))
	fb.sealJmp(joinBB)

	fb.b.Seal(joinBB)
	fb.b.SetCurrentBlock(joinBB)
	return fb.b.FindValue(v)
}

// --- value-context expressions -------------------------------------------

func (fb *funcBuilder) lowerExpr(e ast.ExprRef) Value {
	ex := e.Value
	switch ex.Kind {
	case ast.ExprInt:
		n, _ := strconv.ParseInt(fb.syms.Text(ex.IntDigits), 10, 64)
		return fb.b.Const(n)

	case ast.ExprBool:
		return fb.b.BoolConst(ex.BoolValue)

	case ast.ExprNull:
		return fb.b.Const(0)

	case ast.ExprVar:
		return fb.lowerVar(ex)

	case ast.ExprThis:
		return fb.b.FindValue(fb.thisVar)

	case ast.ExprUnary:
		return fb.lowerUnary(e)

	case ast.ExprBinary:
		return fb.lowerBinary(e)

	case ast.ExprFieldAccess:
		return fb.lowerFieldAccess(ex)

	case ast.ExprArrayAccess:
		return fb.lowerArrayAccess(ex)

	case ast.ExprMethodInvocation:
		return fb.lowerMethodInvocation(ex)

	case ast.ExprThisMethodInvocation:
		return fb.lowerThisMethodInvocation(ex)

	case ast.ExprNewObject:
		return fb.b.AllocObject(fb.reg.Lookup(ex.ClassName))

	case ast.ExprNewArray:
		return fb.lowerNewArray(ex)
	}
	panic("ssa: unhandled expression kind")
}

func (fb *funcBuilder) lowerVar(ex *ast.Expr) Value {
	if v, ok := fb.lookupVar(ex.VarName); ok {
		return fb.b.FindValue(v)
	}
	fd := fb.cd.Fields[ex.VarName]
	addr := fb.fieldMember(fb.b.FindValue(fb.thisVar), fb.cd.Name, fd)
	return fb.b.Load(addr, fd.Type)
}

func (fb *funcBuilder) lowerUnary(e ast.ExprRef) Value {
	ex := e.Value
	if ex.UnOp == ast.OpNeg {
		v := fb.lowerExpr(ex.Operand)
		return fb.b.Unop(OpMinus, v, types.Int)
	}
	// OpNot: go through control-context lowering so a Not composes
	// correctly as an operand of And/Or/another Not above it.
	return fb.materializeBool(e)
}

func (fb *funcBuilder) lowerBinary(e ast.ExprRef) Value {
	ex := e.Value
	if ex.BinOp == ast.OpAssign {
		return fb.lowerAssign(ex)
	}
	switch ex.BinOp {
	case ast.OpAnd, ast.OpOr, ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual, ast.OpEqual, ast.OpNotEqual:
		return fb.materializeBool(e)
	}
	l := fb.lowerExpr(ex.Left)
	r := fb.lowerExpr(ex.Right)
	return fb.b.Binop(arithOpcodeOf(ex.BinOp), l, r, types.Int)
}

func arithOpcodeOf(op ast.BinaryOp) Opcode {
	switch op {
	case ast.OpAdd:
		return OpAdd
	case ast.OpSub:
		return OpSub
	case ast.OpMul:
		return OpMul
	case ast.OpDiv:
		return OpDiv
	default: // ast.OpMod
		return OpMod
	}
}

// lowerAssign lowers an assignment expression: the right side's value is
// stored into the left side's slot (a Variable for a local/param, a
// Member address for a field, a Sel address for an array element) and is
// itself the expression's value, matching Java's assignment-expression
// semantics (checked in types.checker.checkAssign).
func (fb *funcBuilder) lowerAssign(ex *ast.Expr) Value {
	rhs := fb.lowerExpr(ex.Right)
	switch ex.Left.Value.Kind {
	case ast.ExprVar:
		lex := ex.Left.Value
		if v, ok := fb.lookupVar(lex.VarName); ok {
			fb.b.DefineVariableInCurrentBB(v, rhs)
		} else {
			fd := fb.cd.Fields[lex.VarName]
			addr := fb.fieldMember(fb.b.FindValue(fb.thisVar), fb.cd.Name, fd)
			fb.b.Store(addr, rhs)
		}

	case ast.ExprFieldAccess:
		lex := ex.Left.Value
		recvType := fb.ann.TypeOf(lex.Receiver.Value)
		base := fb.lowerExpr(lex.Receiver)
		fd := fb.reg.Lookup(recvType.Class).Fields[lex.FieldName]
		addr := fb.fieldMember(base, recvType.Class, fd)
		fb.b.Store(addr, rhs)

	case ast.ExprArrayAccess:
		lex := ex.Left.Value
		elemType := fb.ann.TypeOf(lex)
		base := fb.lowerExpr(lex.Receiver)
		idx := fb.lowerExpr(lex.Index)
		addr := fb.b.Sel(base, idx, StrideOf(elemType), elemType)
		fb.b.Store(addr, rhs)
	}
	return rhs
}

func (fb *funcBuilder) lowerFieldAccess(ex *ast.Expr) Value {
	recvType := fb.ann.TypeOf(ex.Receiver.Value)
	base := fb.lowerExpr(ex.Receiver)
	fd := fb.reg.Lookup(recvType.Class).Fields[ex.FieldName]
	addr := fb.fieldMember(base, recvType.Class, fd)
	return fb.b.Load(addr, fd.Type)
}

func (fb *funcBuilder) lowerArrayAccess(ex *ast.Expr) Value {
	elemType := fb.ann.TypeOf(ex)
	base := fb.lowerExpr(ex.Receiver)
	idx := fb.lowerExpr(ex.Index)
	addr := fb.b.Sel(base, idx, StrideOf(elemType), elemType)
	return fb.b.Load(addr, elemType)
}

func (fb *funcBuilder) lowerMethodInvocation(ex *ast.Expr) Value {
	recvType := fb.ann.TypeOf(ex.Receiver.Value)
	recv := fb.lowerExpr(ex.Receiver)
	md := fb.reg.Lookup(recvType.Class).Methods[ex.MethodName]
	args := fb.lowerArgs(ex.Args)
	return fb.b.Call(md, recv, args)
}

func (fb *funcBuilder) lowerThisMethodInvocation(ex *ast.Expr) Value {
	md := fb.cd.Methods[ex.MethodName]
	args := fb.lowerArgs(ex.Args)
	return fb.b.Call(md, fb.b.FindValue(fb.thisVar), args)
}

func (fb *funcBuilder) lowerArgs(args []ast.ExprRef) []Value {
	vals := make([]Value, len(args))
	for i, a := range args {
		vals[i] = fb.lowerExpr(a)
	}
	return vals
}

func (fb *funcBuilder) lowerNewArray(ex *ast.Expr) Value {
	count := fb.lowerExpr(ex.ArraySize)
	arrType := fb.ann.TypeOf(ex)
	elemType := *arrType.Elem
	return fb.b.AllocArray(count, StrideOf(elemType), elemType)
}
