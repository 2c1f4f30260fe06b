package types_test

import (
	"bytes"
	"testing"

	"github.com/mjc-lang/minijavac/internal/diagnostics"
	"github.com/mjc-lang/minijavac/internal/lexer"
	"github.com/mjc-lang/minijavac/internal/parser"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/testing/require"
	"github.com/mjc-lang/minijavac/internal/types"
)

// checkSource runs the full lex/parse/check pipeline and returns the sink
// that accumulated every semantic diagnostic.
func checkSource(t *testing.T, src string) *diagnostics.Sink {
	t.Helper()
	v, err := sourceview.New("t.java", []byte(src))
	require.NoError(t, err)
	syms := symbol.NewTable()
	toks, err := lexer.All(lexer.New(v, syms))
	require.NoError(t, err)
	prog, err := parser.Parse(toks, syms)
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := diagnostics.New(&buf, false)
	reg := types.CollectDeclarations(prog, syms, sink)
	types.Check(reg, syms, sink)
	return sink
}

func TestScenarioMinimalMainChecksClean(t *testing.T) {
	sink := checkSource(t, "class A { public static void main(String[] a) {} }")
	require.False(t, sink.Errored())
}

func TestScenarioConditionMustBeBoolean(t *testing.T) {
	sink := checkSource(t, "class A { public static void main(String[] a) { if (1) {} } }")
	require.True(t, sink.Errored())
}

func TestScenarioDuplicateClassIsRedefinitionError(t *testing.T) {
	sink := checkSource(t, `
		class A { public static void main(String[] a) {} }
		class A { public int m() { return 0; } }
	`)
	require.True(t, sink.Errored())

	var sawKind bool
	for _, m := range sink.Messages() {
		if m.Kind == types.RedefinitionError.String() {
			sawKind = true
		}
	}
	require.True(t, sawKind)
}

func TestLocalShadowingParamCarriesRedefinitionKind(t *testing.T) {
	sink := checkSource(t, `
		class A { public static void main(String[] a) {} }
		class B {
			public int m(int x) {
				int x;
				return x;
			}
		}
	`)
	require.True(t, sink.Errored())

	var sawKind bool
	for _, m := range sink.Messages() {
		if m.Kind == types.RedefinitionError.String() {
			sawKind = true
		}
	}
	require.True(t, sawKind)
}

func TestScenarioInvalidReturnType(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public boolean m() { return 1; }
			public static void main(String[] a) {}
		}
	`)
	require.True(t, sink.Errored())
}

func TestVoidMethodCannotReturnValue(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public void m() { return 1; }
			public static void main(String[] a) {}
		}
	`)
	require.True(t, sink.Errored())
}

func TestMethodMustReturnSomething(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int m() { return; }
			public static void main(String[] a) {}
		}
	`)
	require.True(t, sink.Errored())
}

func TestWellTypedMethodChecksClean(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int x;
			public int add(int a, int b) {
				int sum;
				sum = a + b;
				return sum;
			}
			public static void main(String[] args) {}
		}
	`)
	require.False(t, sink.Errored())
}

func TestLocalShadowingParamIsRejected(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int m(int a) {
				int a;
				a = 1;
				return a;
			}
			public static void main(String[] args) {}
		}
	`)
	require.True(t, sink.Errored())
}

func TestThisForbiddenInMainMethod(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public static void main(String[] args) {
				boolean b;
				b = this.equals();
			}
			public boolean equals() { return true; }
		}
	`)
	require.True(t, sink.Errored())
}

func TestMainMethodParamMustNotBeUsed(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public static void main(String[] args) {
				int x;
				x = args.length;
			}
		}
	`)
	require.True(t, sink.Errored())
}

func TestArgumentCountMismatch(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int add(int a, int b) { return a + b; }
			public static void main(String[] args) {}
			public int use() { return this.add(1); }
		}
	`)
	require.True(t, sink.Errored())
}

func TestArrayAccessAndNewArray(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int m() {
				int[] xs;
				xs = new int[10];
				return xs[0];
			}
			public static void main(String[] args) {}
		}
	`)
	require.False(t, sink.Errored())
}

func TestClassDoesNotExist(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int m() {
				Ghost g;
				return 0;
			}
			public static void main(String[] args) {}
		}
	`)
	require.True(t, sink.Errored())
}

func TestFieldAccessOnNonObjectIsInvalidType(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int m() {
				int x;
				x = 1;
				return x.length;
			}
			public static void main(String[] args) {}
		}
	`)
	require.True(t, sink.Errored())
}

func TestNullAssignableToClassAndArrayNotVoid(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public A a;
			public int[] xs;
			public void m() {
				a = null;
				xs = null;
			}
			public static void main(String[] args) {}
		}
	`)
	require.False(t, sink.Errored())
	require.False(t, types.Void.AssignableFrom(types.NullTy))
}

func TestIntegerLiteralOverflowIsRejected(t *testing.T) {
	sink := checkSource(t, `
		class A {
			public int m() { return 99999999999; }
			public static void main(String[] args) {}
		}
	`)
	require.True(t, sink.Errored())
}
