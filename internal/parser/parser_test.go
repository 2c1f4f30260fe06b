package parser_test

import (
	"testing"

	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/lexer"
	"github.com/mjc-lang/minijavac/internal/parser"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/testing/require"
)

func parse(t *testing.T, src string) (*ast.Program, *symbol.Table, error) {
	t.Helper()
	v, err := sourceview.New("t.java", []byte(src))
	require.NoError(t, err)
	syms := symbol.NewTable()
	toks, err := lexer.All(lexer.New(v, syms))
	require.NoError(t, err)
	prog, err := parser.Parse(toks, syms)
	return prog, syms, err
}

func TestScenarioOneParsesCleanly(t *testing.T) {
	prog, _, err := parse(t, "class A { public static void main(String[] a) {} }")
	require.NoError(t, err)
	require.Equal(t, 1, len(prog.Classes))
	require.Equal(t, 1, len(prog.Classes[0].Value.Members))
	require.Equal(t, ast.MemberMain, prog.Classes[0].Value.Members[0].Value.Kind)
}

func TestDuplicateMainMethodRejected(t *testing.T) {
	src := `class A {
		public static void main(String[] a) {}
	}
	class B {
		public static void main(String[] a) {}
	}`
	_, _, err := parse(t, src)
	require.Error(t, err)
	pe, ok := err.(*parser.Error)
	require.True(t, ok)
	require.Equal(t, parser.DuplicateMainMethod, pe.Kind)
}

func TestFieldsAndMethods(t *testing.T) {
	src := `class A {
		public int x;
		public int[] ys;
		public int add(int a, int b) { return a + b; }
	}`
	prog, _, err := parse(t, src)
	require.NoError(t, err)
	members := prog.Classes[0].Value.Members
	require.Equal(t, 3, len(members))
	require.Equal(t, ast.MemberField, members[0].Value.Kind)
	require.Equal(t, uint(0), members[0].Value.FieldType.ArrayDepth)
	require.Equal(t, ast.MemberField, members[1].Value.Kind)
	require.Equal(t, uint(1), members[1].Value.FieldType.ArrayDepth)
	require.Equal(t, ast.MemberMethod, members[2].Value.Kind)
	require.Equal(t, 2, len(members[2].Value.Params))
}

func TestLocalDeclVsExpressionStatementDisambiguation(t *testing.T) {
	src := `class A {
		public int m() {
			int x;
			x = 1;
			A a;
			a.m();
			return x;
		}
	}`
	prog, _, err := parse(t, src)
	require.NoError(t, err)
	body := prog.Classes[0].Value.Members[0].Value.Body.Value
	require.Equal(t, 5, len(body.Stmts))
	require.Equal(t, ast.StmtDecl, body.Stmts[0].Value.Kind)
	require.Equal(t, ast.StmtExpression, body.Stmts[1].Value.Kind)
	require.Equal(t, ast.StmtDecl, body.Stmts[2].Value.Kind)
	require.Equal(t, ast.StmtExpression, body.Stmts[3].Value.Kind)
}

func TestNegativeIntLiteralFusesMinimumInt(t *testing.T) {
	src := `class A { public int m() { return -2147483648; } }`
	prog, syms, err := parse(t, src)
	require.NoError(t, err)
	stmt := prog.Classes[0].Value.Members[0].Value.Body.Value.Stmts[0].Value
	require.Equal(t, ast.ExprInt, stmt.Expr.Value.Kind)
	require.Equal(t, "-2147483648", syms.Text(stmt.Expr.Value.IntDigits))
}

func TestNewArrayExtraDepth(t *testing.T) {
	src := `class A { public int m() { int[][] x; x = new int[3][][]; return 0; } }`
	prog, _, err := parse(t, src)
	require.NoError(t, err)
	assign := prog.Classes[0].Value.Members[0].Value.Body.Value.Stmts[1].Value.Expr.Value
	require.Equal(t, ast.ExprBinary, assign.Kind)
	require.Equal(t, ast.OpAssign, assign.BinOp)
	newArr := assign.Right.Value
	require.Equal(t, ast.ExprNewArray, newArr.Kind)
	require.Equal(t, uint(2), newArr.ArrayExtraDepth)
}

func TestPrecedenceAndAssignAssociativity(t *testing.T) {
	src := `class A { public int m() { int x; int y; x = y = 1 + 2 * 3; return x; } }`
	prog, _, err := parse(t, src)
	require.NoError(t, err)
	assign := prog.Classes[0].Value.Members[0].Value.Body.Value.Stmts[2].Value.Expr.Value
	require.Equal(t, ast.OpAssign, assign.BinOp)
	require.Equal(t, ast.ExprVar, assign.Left.Value.Kind) // x
	rhs := assign.Right.Value
	require.Equal(t, ast.OpAssign, rhs.BinOp) // y = ...
	sum := rhs.Right.Value
	require.Equal(t, ast.OpAdd, sum.BinOp)
	require.Equal(t, ast.ExprBinary, sum.Right.Value.Kind) // 2 * 3 binds tighter
}
