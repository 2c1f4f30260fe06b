package ssa_test

import (
	"testing"

	"github.com/mjc-lang/minijavac/internal/ssa"
	"github.com/mjc-lang/minijavac/internal/testing/require"
)

// countingPass reports one change per call until it has run budget times,
// so a fixpoint driver keeps calling it exactly budget+1 times (the last
// call reports no change and stops the loop) while a no-fixpoint driver
// calls it exactly once regardless of budget.
type countingPass struct {
	budget int
	calls  int
}

func (p *countingPass) Name() string { return "counting" }

func (p *countingPass) Run(fn *ssa.Function) bool {
	p.calls++
	if p.calls <= p.budget {
		return true
	}
	return false
}

func programWithOneFunction(t *testing.T) *ssa.Program {
	t.Helper()
	_, prog, _ := rebuildForLookup(t, `
		class A { public static void main(String[] a) {} }
	`)
	return prog
}

func TestRunPassesLoopsToFixpointByDefault(t *testing.T) {
	prog := programWithOneFunction(t)
	p := &countingPass{budget: 3}
	ssa.RunPasses(prog, []ssa.Pass{p})
	require.Equal(t, 4, p.calls)
}

func TestRunPassesRunsOnceWhenNoFixpointEnvIsSet(t *testing.T) {
	t.Setenv("COMPRAKT_OPTIMIZATION_NO_FIXPOINT", "1")
	prog := programWithOneFunction(t)
	p := &countingPass{budget: 3}
	ssa.RunPasses(prog, []ssa.Pass{p})
	require.Equal(t, 1, p.calls)
}
