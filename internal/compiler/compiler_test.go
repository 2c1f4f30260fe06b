package compiler_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mjc-lang/minijavac/internal/compiler"
	"github.com/mjc-lang/minijavac/internal/testing/require"
)

func TestCheckAcceptsEmptyMain(t *testing.T) {
	var diag bytes.Buffer
	res, err := compiler.Check("t.java", []byte(`
		class A {
			public static void main(String[] a) {}
		}
	`), &diag)
	require.NoError(t, err)
	require.True(t, res.OK)
	require.True(t, strings.Contains(diag.String(), "finished successfully"))
}

func TestCheckRejectsNonBooleanCondition(t *testing.T) {
	var diag bytes.Buffer
	res, err := compiler.Check("t.java", []byte(`
		class A {
			public static void main(String[] a) {
				if (1) {}
			}
		}
	`), &diag)
	require.NoError(t, err)
	require.False(t, res.OK)
	require.True(t, strings.Contains(diag.String(), "aborted"))
}

func TestCheckRejectsDuplicateClassNames(t *testing.T) {
	var diag bytes.Buffer
	res, err := compiler.Check("t.java", []byte(`
		class A {
			public static void main(String[] a) {}
		}
		class A {
			int x;
		}
	`), &diag)
	require.NoError(t, err)
	require.False(t, res.OK)
}

func TestCheckFailsOnNonASCIIInput(t *testing.T) {
	var diag bytes.Buffer
	_, err := compiler.Check("t.java", []byte("class A { \xff }"), &diag)
	require.Error(t, err)
}

func TestCheckReportsSyntaxErrorWithoutPanicking(t *testing.T) {
	var diag bytes.Buffer
	res, err := compiler.Check("t.java", []byte(`class A {`), &diag)
	require.NoError(t, err)
	require.False(t, res.OK)
	require.True(t, strings.Contains(diag.String(), "aborted"))
}

func TestLowerEmitsAssemblyForAWellFormedProgram(t *testing.T) {
	var diag bytes.Buffer
	res, err := compiler.Lower("t.java", []byte(`
		class A {
			public static void main(String[] a) {
				int r;
				r = new B().sum(2, 3);
			}
		}
		class B {
			public int sum(int x, int y) {
				return x + y;
			}
		}
	`), &diag)
	require.NoError(t, err)
	require.True(t, res.Check.OK)
	require.True(t, strings.Contains(res.Asm, "\t.text"))
	require.Equal(t, 2, len(res.LIR.Functions))
	require.Equal(t, 2, len(res.Alloc))
}

func TestLowerStopsAfterCheckOnASemanticError(t *testing.T) {
	var diag bytes.Buffer
	res, err := compiler.Lower("t.java", []byte(`
		class A {
			public static void main(String[] a) {
				if (1) {}
			}
		}
	`), &diag)
	require.NoError(t, err)
	require.False(t, res.Check.OK)
	require.Nil(t, res.Firm)
	require.Equal(t, "", res.Asm)
}
