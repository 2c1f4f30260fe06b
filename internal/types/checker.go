package types

import (
	"strconv"

	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/diagnostics"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
)

// Annotations holds the resolved type of every expression in a checked
// program, keyed by expression node address. ast.Expr nodes are only ever
// reached through an ast.ExprRef (a pointer), so the address is a stable
// identity for the node's lifetime — this is the "side table" alluded to
// in MethodDef's doc comment: the AST is annotated, not rewritten.
type Annotations struct {
	exprTypes map[*ast.Expr]CheckedType
}

func newAnnotations() *Annotations {
	return &Annotations{exprTypes: make(map[*ast.Expr]CheckedType)}
}

// TypeOf returns the resolved type of e, computed during Check. Panics if
// e was never checked (a programming error in a downstream pass, not a
// recoverable condition).
func (a *Annotations) TypeOf(e *ast.Expr) CheckedType {
	t, ok := a.exprTypes[e]
	if !ok {
		panic("types: TypeOf called on an unchecked expression")
	}
	return t
}

func (a *Annotations) set(e *ast.Expr, t CheckedType) CheckedType {
	a.exprTypes[e] = t
	return t
}

// checker carries one method body's checking state.
type checker struct {
	reg    *Registry
	syms   *symbol.Table
	sink   *diagnostics.Sink
	ann    *Annotations
	scope  *Scoped
	class  *ClassDef
	method *MethodDef
}

// Check runs spec.md §4.4 phase 2 over every method body registered in
// reg, returning the resolved type of every expression. Every violation
// is emitted to sink; checking never aborts early, so a caller should
// test sink.Errored() afterward rather than rely on a returned error.
func Check(reg *Registry, syms *symbol.Table, sink *diagnostics.Sink) *Annotations {
	ann := newAnnotations()
	for _, cd := range reg.Classes {
		for _, md := range cd.Methods {
			c := &checker{reg: reg, syms: syms, sink: sink, ann: ann, scope: NewScoped(), class: cd, method: md}
			c.checkMethod()
		}
	}
	return ann
}

func (c *checker) checkMethod() {
	if c.method.IsMain {
		c.scope.Declare(VarDef{Name: c.reg.MainMethodParam, Type: Array(TypeRef(c.syms.Intern("String"))), IsParam: true})
	} else {
		for _, p := range c.method.Params {
			c.scope.Declare(VarDef{Name: p.Name, Type: p.Type, IsParam: true})
		}
	}
	if c.method.Body != nil {
		c.checkBlock(c.method.Body)
	}
}

func (c *checker) checkBlock(b *ast.Block) {
	c.scope.Enter()
	for _, s := range b.Stmts {
		c.checkStmt(s.Value, s.Span)
	}
	c.scope.Leave()
}

// checkStmtRef checks an optional statement reference (ast.Stmt.Else is
// the zero Spanned[*ast.Stmt] when the else clause is absent).
func (c *checker) checkStmtRef(s ast.Spanned[*ast.Stmt]) {
	if s.Value != nil {
		c.checkStmt(s.Value, s.Span)
	}
}

func (c *checker) checkStmt(s *ast.Stmt, span sourceview.Span) {
	switch s.Kind {
	case ast.StmtBlock:
		c.checkBlock(s.Block)

	case ast.StmtEmpty:
		// nothing to check

	case ast.StmtIf:
		cond := c.checkExpr(s.Cond)
		if !Boolean.Equal(cond) {
			c.errorf(ConditionMustBeBoolean, s.Cond.Span, "condition must have type boolean, found %s", cond)
		}
		c.checkStmtRef(s.Then)
		c.checkStmtRef(s.Else)

	case ast.StmtWhile:
		cond := c.checkExpr(s.Cond)
		if !Boolean.Equal(cond) {
			c.errorf(ConditionMustBeBoolean, s.Cond.Span, "condition must have type boolean, found %s", cond)
		}
		c.checkStmtRef(s.Then)

	case ast.StmtExpression:
		c.checkExpr(s.Expr)

	case ast.StmtReturn:
		c.checkReturn(s, span)

	case ast.StmtDecl:
		c.checkDecl(s, span)
	}
}

func (c *checker) checkReturn(s *ast.Stmt, span sourceview.Span) {
	wantVoid := c.method.Return.Kind == KindVoid
	switch {
	case wantVoid && s.HasExpr:
		got := c.checkExpr(s.Expr)
		c.errorf(VoidMethodCannotReturnValue, s.Expr.Span, "method returning void cannot return a value, found %s", got)
	case wantVoid && !s.HasExpr:
		// "return;" in a void method is legal.
	case !wantVoid && !s.HasExpr:
		c.errorf(MethodMustReturnSomething, span, "method must return a value of type %s", c.method.Return)
	default:
		got := c.checkExpr(s.Expr)
		if !c.method.Return.AssignableFrom(got) {
			c.errorf(InvalidReturnType, s.Expr.Span, "cannot return %s, method declared to return %s", got, c.method.Return)
		}
	}
}

func (c *checker) checkDecl(s *ast.Stmt, span sourceview.Span) {
	declType := ResolveASTType(s.DeclType)
	c.checkTypeExists(declType, span)

	if c.scope.ShadowsAnyScope(s.DeclName) {
		c.errorf(RedefinitionError, span, "local variable %s shadows an existing local or parameter", c.syms.Text(s.DeclName))
	} else {
		c.scope.Declare(VarDef{Name: s.DeclName, Type: declType})
	}

	if s.HasExpr {
		initType := c.checkExpr(s.DeclInit)
		if !declType.AssignableFrom(initType) {
			c.errorf(InvalidType, s.DeclInit.Span, "cannot assign %s to a variable of type %s", initType, declType)
		}
	}
}

// checkTypeExists reports ClassDoesNotExist if t (or, for an array, its
// eventual element type) names an undeclared class.
func (c *checker) checkTypeExists(t CheckedType, span sourceview.Span) {
	for t.Kind == KindArray {
		t = *t.Elem
	}
	if t.Kind == KindTypeRef && c.reg.Lookup(t.Class) == nil {
		c.errorf(ClassDoesNotExist, span, "class %s does not exist", c.syms.Text(t.Class))
	}
}

// checkExpr computes and records the type of e, emitting every semantic
// violation it finds along the way. It always returns a CheckedType, even
// after an error, so that callers can keep checking: the recovery type is
// Void. An enclosing check that expects another type reports the Void
// operand again, so `x + 1` with x undeclared yields two errors.
func (c *checker) checkExpr(e ast.ExprRef) CheckedType {
	switch e.Value.Kind {
	case ast.ExprBinary:
		return c.ann.set(e.Value, c.checkBinary(e))
	case ast.ExprUnary:
		return c.ann.set(e.Value, c.checkUnary(e))
	case ast.ExprMethodInvocation:
		return c.ann.set(e.Value, c.checkMethodInvocation(e))
	case ast.ExprThisMethodInvocation:
		return c.ann.set(e.Value, c.checkThisMethodInvocation(e))
	case ast.ExprFieldAccess:
		return c.ann.set(e.Value, c.checkFieldAccess(e))
	case ast.ExprArrayAccess:
		return c.ann.set(e.Value, c.checkArrayAccess(e))
	case ast.ExprNull:
		return c.ann.set(e.Value, NullTy)
	case ast.ExprBool:
		return c.ann.set(e.Value, Boolean)
	case ast.ExprInt:
		return c.ann.set(e.Value, c.checkIntLiteral(e))
	case ast.ExprVar:
		return c.ann.set(e.Value, c.checkVar(e))
	case ast.ExprThis:
		if c.method.IsMain {
			c.errorf(ThisInStaticMethod, e.Span, "'this' may not be used in the main method")
		}
		return c.ann.set(e.Value, TypeRef(c.class.Name))
	case ast.ExprNewObject:
		if c.reg.Lookup(e.Value.ClassName) == nil {
			c.errorf(ClassDoesNotExist, e.Span, "class %s does not exist", c.syms.Text(e.Value.ClassName))
		}
		return c.ann.set(e.Value, TypeRef(e.Value.ClassName))
	case ast.ExprNewArray:
		return c.ann.set(e.Value, c.checkNewArray(e))
	default:
		return c.ann.set(e.Value, Void)
	}
}

func (c *checker) checkBinary(e ast.ExprRef) CheckedType {
	b := e.Value
	if b.BinOp == ast.OpAssign {
		return c.checkAssign(e)
	}

	left := c.checkExpr(b.Left)
	right := c.checkExpr(b.Right)

	switch b.BinOp {
	case ast.OpAnd, ast.OpOr:
		if !Boolean.Equal(left) || !Boolean.Equal(right) {
			c.errorf(InvalidType, e.Span, "operator requires boolean operands, found %s and %s", left, right)
		}
		return Boolean
	case ast.OpEqual, ast.OpNotEqual:
		if !left.AssignableFrom(right) && !right.AssignableFrom(left) {
			c.errorf(InvalidType, e.Span, "cannot compare %s with %s", left, right)
		}
		return Boolean
	case ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual:
		if !Int.Equal(left) || !Int.Equal(right) {
			c.errorf(InvalidType, e.Span, "comparison operator requires int operands, found %s and %s", left, right)
		}
		return Boolean
	default: // Add, Sub, Mul, Div, Mod
		if !Int.Equal(left) || !Int.Equal(right) {
			c.errorf(InvalidType, e.Span, "arithmetic operator requires int operands, found %s and %s", left, right)
		}
		return Int
	}
}

// checkAssign validates spec.md's implicit assignment-is-an-expression
// shape (SPEC_FULL.md §C.0): the left operand must itself be an lvalue
// form (Var, FieldAccess, or ArrayAccess), and the right side must be
// assignable to the left side's type. The expression's own type is the
// left side's type, matching Java's assignment-expression semantics.
func (c *checker) checkAssign(e ast.ExprRef) CheckedType {
	b := e.Value
	switch b.Left.Value.Kind {
	case ast.ExprVar, ast.ExprFieldAccess, ast.ExprArrayAccess:
		// valid assignment target
	default:
		c.errorf(InvalidType, b.Left.Span, "left-hand side of an assignment must be a variable, field, or array element")
	}
	left := c.checkExpr(b.Left)
	right := c.checkExpr(b.Right)
	if !left.AssignableFrom(right) {
		c.errorf(InvalidType, e.Span, "cannot assign %s to a variable of type %s", right, left)
	}
	return left
}

func (c *checker) checkUnary(e ast.ExprRef) CheckedType {
	u := e.Value
	operand := c.checkExpr(u.Operand)
	switch u.UnOp {
	case ast.OpNeg:
		if !Int.Equal(operand) {
			c.errorf(InvalidType, e.Span, "unary '-' requires an int operand, found %s", operand)
		}
		return Int
	default: // OpNot
		if !Boolean.Equal(operand) {
			c.errorf(InvalidType, e.Span, "unary '!' requires a boolean operand, found %s", operand)
		}
		return Boolean
	}
}

func (c *checker) checkMethodInvocation(e ast.ExprRef) CheckedType {
	m := e.Value
	recvType := c.checkExpr(m.Receiver)
	if recvType.Kind != KindTypeRef {
		c.errorf(InvalidType, m.Receiver.Span, "cannot invoke a method on %s", recvType)
		c.checkArgs(m.Args, nil, e.Span)
		return Void
	}
	cd := c.reg.Lookup(recvType.Class)
	if cd == nil {
		c.errorf(ClassDoesNotExist, m.Receiver.Span, "class %s does not exist", c.syms.Text(recvType.Class))
		c.checkArgs(m.Args, nil, e.Span)
		return Void
	}
	md := cd.Methods[m.MethodName]
	if md == nil {
		c.errorf(CannotLookupVarOrField, e.Span, "class %s has no method %s", c.syms.Text(cd.Name), c.syms.Text(m.MethodName))
		c.checkArgs(m.Args, nil, e.Span)
		return Void
	}
	c.checkArgs(m.Args, md.Params, e.Span)
	return md.Return
}

func (c *checker) checkThisMethodInvocation(e ast.ExprRef) CheckedType {
	m := e.Value
	if c.method.IsMain {
		c.errorf(ThisMethodInvocationInStaticMethod, e.Span, "cannot call an instance method from the main method")
	}
	md := c.class.Methods[m.MethodName]
	if md == nil {
		c.errorf(CannotLookupVarOrField, e.Span, "class %s has no method %s", c.syms.Text(c.class.Name), c.syms.Text(m.MethodName))
		c.checkArgs(m.Args, nil, e.Span)
		return Void
	}
	c.checkArgs(m.Args, md.Params, e.Span)
	return md.Return
}

// checkArgs type-checks call arguments against params (nil params means
// the callee was never resolved, so only the arguments themselves are
// checked, without an ArgumentCountMismatch).
func (c *checker) checkArgs(args []ast.ExprRef, params []ParamDef, span sourceview.Span) {
	if params != nil && len(args) != len(params) {
		c.errorf(ArgumentCountMismatch, span, "expected %d argument(s), found %d", len(params), len(args))
	}
	for i, a := range args {
		got := c.checkExpr(a)
		if params == nil || i >= len(params) {
			continue
		}
		if !params[i].Type.AssignableFrom(got) {
			c.errorf(InvalidType, a.Span, "argument %d: cannot assign %s to %s", i+1, got, params[i].Type)
		}
	}
}

func (c *checker) checkFieldAccess(e ast.ExprRef) CheckedType {
	m := e.Value
	recvType := c.checkExpr(m.Receiver)
	if recvType.Kind != KindTypeRef {
		c.errorf(InvalidType, m.Receiver.Span, "cannot access a field on %s", recvType)
		return Void
	}
	cd := c.reg.Lookup(recvType.Class)
	if cd == nil {
		c.errorf(ClassDoesNotExist, m.Receiver.Span, "class %s does not exist", c.syms.Text(recvType.Class))
		return Void
	}
	fd := cd.Fields[m.FieldName]
	if fd == nil {
		c.errorf(CannotLookupVarOrField, e.Span, "class %s has no field %s", c.syms.Text(cd.Name), c.syms.Text(m.FieldName))
		return Void
	}
	return fd.Type
}

func (c *checker) checkArrayAccess(e ast.ExprRef) CheckedType {
	m := e.Value
	recvType := c.checkExpr(m.Receiver)
	idxType := c.checkExpr(m.Index)
	if !Int.Equal(idxType) {
		c.errorf(InvalidType, m.Index.Span, "array index must have type int, found %s", idxType)
	}
	if recvType.Kind != KindArray {
		c.errorf(InvalidType, m.Receiver.Span, "cannot index into %s", recvType)
		return Void
	}
	return *recvType.Elem
}

func (c *checker) checkIntLiteral(e ast.ExprRef) CheckedType {
	digits := c.syms.Text(e.Value.IntDigits)
	if _, err := strconv.ParseInt(digits, 10, 32); err != nil {
		c.errorf(IntegerLiteralOverflow, e.Span, "integer literal %s is out of range for a 32-bit int", digits)
	}
	return Int
}

func (c *checker) checkVar(e ast.ExprRef) CheckedType {
	name := e.Value.VarName
	if v, ok := c.scope.Lookup(name); ok {
		if c.method.IsMain && v.IsParam {
			c.errorf(MainMethodParamMustNotBeUsed, e.Span, "the main method's parameter must not be used")
		}
		return v.Type
	}
	if fd, ok := c.class.Fields[name]; ok {
		if c.method.IsMain {
			c.errorf(CannotAccessNonStaticFieldInStaticMethod, e.Span, "cannot access field %s from the main method", c.syms.Text(name))
		}
		return fd.Type
	}
	if c.reg.Lookup(name) != nil {
		c.errorf(InvalidReferenceToClass, e.Span, "invalid reference to class %s", c.syms.Text(name))
		return Void
	}
	c.errorf(CannotLookupVarOrField, e.Span, "cannot find variable or field %s", c.syms.Text(name))
	return Void
}

func (c *checker) checkNewArray(e ast.ExprRef) CheckedType {
	m := e.Value
	sizeType := c.checkExpr(m.ArraySize)
	if !Int.Equal(sizeType) {
		c.errorf(InvalidType, m.ArraySize.Span, "array size must have type int, found %s", sizeType)
	}
	base := ResolveASTType(ast.Type{Basic: m.ArrayBasic.Basic, Custom: m.ArrayBasic.Custom})
	if base.Kind == KindTypeRef && c.reg.Lookup(base.Class) == nil {
		c.errorf(ClassDoesNotExist, e.Span, "class %s does not exist", c.syms.Text(base.Class))
	}
	result := Array(base)
	for i := uint(0); i < m.ArrayExtraDepth; i++ {
		result = Array(result)
	}
	return result
}

func (c *checker) errorf(kind ErrorKind, span sourceview.Span, format string, args ...interface{}) {
	d := errorf(kind, span, format, args...)
	c.sink.EmitSpannedKind(diagnostics.Error, d.Kind.String(), d.Message, span)
}
