package lir_test

import (
	"bytes"
	"testing"

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

// lowerForLookup runs the full pipeline through LowerProgram and returns
// enough to locate a specific method's *lir.Function by its mangled name.
func lowerForLookup(t *testing.T, src string) (*lir.Program, *symbol.Table) {
	t.Helper()
	v, err := sourceview.New("t.java", []byte(src))
	require.NoError(t, err)
	syms := symbol.NewTable()
	toks, err := lexer.All(lexer.New(v, syms))
	require.NoError(t, err)
	astProg, err := parser.Parse(toks, syms)
	require.NoError(t, err)

	var buf bytes.Buffer
	sink := diagnostics.New(&buf, false)
	reg := types.CollectDeclarations(astProg, syms, sink)
	ann := types.Check(reg, syms, sink)
	require.False(t, sink.Errored())

	ssaProg := ssa.BuildProgram(reg, ann, syms)
	return lir.LowerProgram(reg, ssaProg, syms), syms
}

func findFn(p *lir.Program, mangled string) *lir.Function {
	for _, fn := range p.Functions {
		if fn.Name == mangled {
			return fn
		}
	}
	return nil
}

func TestLowerProgramCoversEveryFunction(t *testing.T) {
	p, _ := lowerForLookup(t, `
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
	require.Equal(t, 2, len(p.Functions))
}

func TestStraightLineLoweringFoldsConstIntoImmediate(t *testing.T) {
	p, _ := lowerForLookup(t, `
		class A { public static void main(String[] a) {} }
		class B {
			public int m(int x) {
				int y;
				y = x + 1;
				return y;
			}
		}
	`)
	fn := findFn(p, "B_m")
	require.True(t, fn != nil)
	require.Equal(t, 1, len(fn.Graph.Blocks))

	var sawAdd bool
	for _, instr := range fn.Graph.Head.Code.Body {
		if instr.Kind == lir.InstrBinop && instr.BinOp == lir.BinAdd {
			sawAdd = true
			require.Equal(t, lir.OperandSlot, instr.Src1.Kind)
			require.Equal(t, lir.OperandImm, instr.Src2.Kind)
			require.Equal(t, int64(1), instr.Src2.Imm)
		}
	}
	require.True(t, sawAdd)

	leave := fn.Graph.Head.Code.Leave
	require.True(t, leave != nil)
	require.Equal(t, lir.LeaveReturn, leave.Kind)
	require.True(t, leave.HasReturnValue)
}

func TestIfElsePhiGetsOneSlotPerIncomingEdge(t *testing.T) {
	p, _ := lowerForLookup(t, `
		class A { public static void main(String[] a) {} }
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
	fn := findFn(p, "B_choose")
	require.True(t, fn != nil)
	require.Equal(t, 4, len(fn.Graph.Blocks))

	join := fn.Graph.Blocks[len(fn.Graph.Blocks)-1]
	var phiReg *lir.MultiSlot
	for _, reg := range join.Regs {
		if reg.IsPhi {
			phiReg = reg
		}
	}
	require.True(t, phiReg != nil)
	require.Equal(t, 2, len(phiReg.Slots))

	require.Equal(t, 2, len(join.Preds))
	var sawImms []int64
	for _, edge := range join.Preds {
		require.Equal(t, 1, len(edge.RegisterTransitions))
		rt := edge.RegisterTransitions[0]
		// Both r=1 and r=2 are Const-defined: the transition must carry
		// the immediate itself, not a reference to a MultiSlot that
		// lowering never actually writes (spec.md §4.6 step 2).
		require.Equal(t, lir.OperandImm, rt.Src.Kind)
		sawImms = append(sawImms, rt.Src.Imm)
		found := false
		for _, slot := range phiReg.Slots {
			if slot == rt.Dst {
				found = true
			}
		}
		require.True(t, found)
	}
	require.Equal(t, 2, len(sawImms))
	require.True(t, (sawImms[0] == 1 && sawImms[1] == 2) || (sawImms[0] == 2 && sawImms[1] == 1))
}

func TestWhileLoopBackEdgeCarriesRegisterTransition(t *testing.T) {
	p, _ := lowerForLookup(t, `
		class A { public static void main(String[] a) {} }
		class B {
			public int count(int n) {
				int i;
				i = 0;
				while (i < n) {
					i = i + 1;
				}
				return i;
			}
		}
	`)
	fn := findFn(p, "B_count")
	require.True(t, fn != nil)

	var head *lir.BasicBlock
	for _, blk := range fn.Graph.Blocks {
		if len(blk.Preds) == 2 {
			head = blk
		}
	}
	require.True(t, head != nil)
	for _, edge := range head.Preds {
		require.True(t, len(edge.RegisterTransitions) >= 1)
	}
}

func TestMethodCallLowersArgsWithReceiverFirst(t *testing.T) {
	p, _ := lowerForLookup(t, `
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
	fn := findFn(p, "A_main")
	require.True(t, fn != nil)

	var call *lir.Instruction
	for _, blk := range fn.Graph.Blocks {
		for _, instr := range blk.Code.Body {
			if instr.Kind == lir.InstrCall {
				call = instr
			}
		}
	}
	require.True(t, call != nil)
	require.Equal(t, "B_sum", call.FuncName)
	require.Equal(t, 3, len(call.CallArgs)) // this, 2, 3
	require.Equal(t, lir.OperandImm, call.CallArgs[1].Kind)
	require.Equal(t, int64(2), call.CallArgs[1].Imm)
	require.Equal(t, lir.OperandImm, call.CallArgs[2].Kind)
	require.Equal(t, int64(3), call.CallArgs[2].Imm)
}

func TestParamsAndThisLowerToLoadParam(t *testing.T) {
	p, _ := lowerForLookup(t, `
		class A { public static void main(String[] a) {} }
		class B {
			int f;
			public int m(int x) {
				return x + f;
			}
		}
	`)
	fn := findFn(p, "B_m")
	require.True(t, fn != nil)
	require.True(t, fn.HasThis)

	var sawThis, sawParam bool
	for _, blk := range fn.Graph.Blocks {
		for _, instr := range blk.Code.Body {
			if instr.Kind == lir.InstrLoadParam {
				if instr.IsThis {
					sawThis = true
				} else {
					sawParam = true
					require.Equal(t, 0, instr.ParamIdx)
				}
			}
		}
	}
	require.True(t, sawThis)
	require.True(t, sawParam)
}

func TestAllocObjectUsesClassLayoutSize(t *testing.T) {
	p, _ := lowerForLookup(t, `
		class A {
			public static void main(String[] a) {
				B b;
				b = new B();
			}
		}
		class B {
			int f;
			boolean g;
		}
	`)
	fn := findFn(p, "A_main")
	require.True(t, fn != nil)

	var alloc *lir.Instruction
	for _, blk := range fn.Graph.Blocks {
		for _, instr := range blk.Code.Body {
			if instr.Kind == lir.InstrAllocObject {
				alloc = instr
			}
		}
	}
	require.True(t, alloc != nil)
	require.True(t, alloc.Size > 0)
}

func TestAllocArrayCarriesElementStride(t *testing.T) {
	p, _ := lowerForLookup(t, `
		class A {
			public static void main(String[] a) {
				int[] xs;
				xs = new int[5];
			}
		}
	`)
	fn := findFn(p, "A_main")
	require.True(t, fn != nil)

	var alloc *lir.Instruction
	for _, blk := range fn.Graph.Blocks {
		for _, instr := range blk.Code.Body {
			if instr.Kind == lir.InstrAllocArray {
				alloc = instr
			}
		}
	}
	require.True(t, alloc != nil)
	require.Equal(t, 4, alloc.Stride)
	require.Equal(t, lir.OperandImm, alloc.Src1.Kind)
	require.Equal(t, int64(5), alloc.Src1.Imm)
}

func TestFieldStoreAndLoadLowerToLeaPlusMemoryOp(t *testing.T) {
	p, _ := lowerForLookup(t, `
		class A { public static void main(String[] a) {} }
		class B {
			int f;
			public int setAndGet(int v) {
				f = v;
				return f;
			}
		}
	`)
	fn := findFn(p, "B_setAndGet")
	require.True(t, fn != nil)

	var sawLea, sawLoad, sawStore bool
	for _, blk := range fn.Graph.Blocks {
		for _, instr := range blk.Code.Body {
			switch instr.Kind {
			case lir.InstrLea:
				sawLea = true
			case lir.InstrLoad:
				sawLoad = true
			case lir.InstrStore:
				sawStore = true
			}
		}
	}
	require.True(t, sawLea)
	require.True(t, sawLoad)
	require.True(t, sawStore)
}
