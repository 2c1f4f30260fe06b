package amd64_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mjc-lang/minijavac/internal/codegen/amd64"
	"github.com/mjc-lang/minijavac/internal/diagnostics"
	"github.com/mjc-lang/minijavac/internal/lexer"
	"github.com/mjc-lang/minijavac/internal/lir"
	"github.com/mjc-lang/minijavac/internal/parser"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/ssa"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/testing/require"
	"github.com/mjc-lang/minijavac/internal/types"
)

func emitSrc(t *testing.T, src string) string {
	t.Helper()
	v, err := sourceview.New("t.java", []byte(src))
	require.NoError(t, err)
	syms := symbol.NewTable()
	toks, err := lexer.All(lexer.New(v, syms))
	require.NoError(t, err)
	astProg, err := parser.Parse(toks, syms)
	require.NoError(t, err)

	var diagBuf bytes.Buffer
	sink := diagnostics.New(&diagBuf, false)
	reg := types.CollectDeclarations(astProg, syms, sink)
	ann := types.Check(reg, syms, sink)
	require.False(t, sink.Errored())

	ssaProg := ssa.BuildProgram(reg, ann, syms)
	lirProg := lir.LowerProgram(reg, ssaProg, syms)

	var out bytes.Buffer
	require.NoError(t, amd64.EmitProgram(&out, lirProg))
	return out.String()
}

func findFunc(t *testing.T, asm, mangledSubstring string) string {
	t.Helper()
	lines := strings.Split(asm, "\n")
	start := -1
	for i, l := range lines {
		if strings.HasPrefix(l, "\t.globl ") && strings.Contains(l, mangledSubstring) {
			start = i
			break
		}
	}
	require.True(t, start >= 0)
	end := len(lines)
	for i := start + 2; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "\t.globl ") {
			end = i
			break
		}
	}
	return strings.Join(lines[start:end], "\n")
}

func TestEmitProgramCoversEveryFunctionWithAPrologue(t *testing.T) {
	asm := emitSrc(t, `
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
	`)
	require.True(t, strings.Contains(asm, "\t.text"))
	mainFn := findFunc(t, asm, "main")
	require.True(t, strings.Contains(mainFn, "pushq %rbp"))
	require.True(t, strings.Contains(mainFn, "movq %rsp, %rbp"))
	require.True(t, strings.Contains(mainFn, "ret"))

	sumFn := findFunc(t, asm, "sum")
	require.True(t, strings.Contains(sumFn, "addq"))
}

func TestEmitProgramLowersDivisionViaCqto(t *testing.T) {
	asm := emitSrc(t, `
		class A {
			public static void main(String[] a) {
				int r;
				r = new B().quot(7, 2);
			}
		}
		class B {
			public int quot(int x, int y) {
				return x / y;
			}
		}
	`)
	quotFn := findFunc(t, asm, "quot")
	require.True(t, strings.Contains(quotFn, "cqto"))
	require.True(t, strings.Contains(quotFn, "idivq"))
}

func TestEmitProgramIfElseEmitsConditionalJump(t *testing.T) {
	asm := emitSrc(t, `
		class A {
			public static void main(String[] a) {
				int r;
				r = new B().pick(1, 2);
			}
		}
		class B {
			public int pick(int x, int y) {
				int r;
				if (x < y)
					r = x;
				else
					r = y;
				return r;
			}
		}
	`)
	pickFn := findFunc(t, asm, "pick")
	require.True(t, strings.Contains(pickFn, "cmpq"))
	require.True(t, strings.Contains(pickFn, "jl "))
	require.True(t, strings.Contains(pickFn, "jmp "))
}

func TestEmitProgramWhileLoopEmitsBackEdge(t *testing.T) {
	asm := emitSrc(t, `
		class A {
			public static void main(String[] a) {
				int r;
				r = new B().count(5);
			}
		}
		class B {
			public int count(int n) {
				int i;
				i = 0;
				while (i < n)
					i = i + 1;
				return i;
			}
		}
	`)
	countFn := findFunc(t, asm, "count")
	require.True(t, strings.Contains(countFn, "addq"))
	require.True(t, strings.Contains(countFn, "jmp "))
}

func TestEmitProgramConstPhiArgumentCopiesImmediateNotGarbageSlot(t *testing.T) {
	asm := emitSrc(t, `
		class A {
			public static void main(String[] a) {
				int r;
				r = new B().choose(true);
			}
		}
		class B {
			public int choose(boolean c) {
				int r;
				if (c) {
					r = 1;
				} else {
					r = 2;
				}
				return r;
			}
		}
	`)
	chooseFn := findFunc(t, asm, "choose")

	var dsts []string
	for _, line := range strings.Split(chooseFn, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "movq $1, ") {
			dsts = append(dsts, strings.TrimPrefix(line, "movq $1, "))
		}
		if strings.HasPrefix(line, "movq $2, ") {
			dsts = append(dsts, strings.TrimPrefix(line, "movq $2, "))
		}
	}
	// Both branches must materialize their literal directly into the
	// Phi's location rather than ever reading a slot lowering never
	// wrote to.
	require.Equal(t, 2, len(dsts))
	require.Equal(t, dsts[0], dsts[1])
}

func TestEmitProgramNestedCallEmitsCallInstruction(t *testing.T) {
	asm := emitSrc(t, `
		class A {
			public static void main(String[] a) {
				int r;
				r = new B().relay(9);
			}
		}
		class B {
			public int relay(int x) {
				return new B().identity(x);
			}
			public int identity(int x) {
				return x;
			}
		}
	`)
	relayFn := findFunc(t, asm, "relay")
	require.True(t, strings.Contains(relayFn, "call "))
}

func TestEmitProgramFieldAccessLowersToLeaPlusMove(t *testing.T) {
	asm := emitSrc(t, `
		class A {
			public static void main(String[] a) {
				B b;
				int r;
				b = new B();
				r = b.set(42);
				r = b.get();
			}
		}
		class B {
			int val;
			public int set(int v) {
				val = v;
				return 0;
			}
			public int get() {
				return val;
			}
		}
	`)
	setFn := findFunc(t, asm, "set")
	require.True(t, strings.Contains(setFn, "leaq"))
	require.True(t, strings.Contains(setFn, "movl") || strings.Contains(setFn, "movq"))
}
