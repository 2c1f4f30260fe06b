package ssa

import "os"

// Pass is an optimization's plug-in contract. spec.md §1 scopes full
// optimizations (constant folding, unreachable-code elimination) out of
// this core, "specified only as plug-in contracts" — this interface and
// RunPasses are that contract; no concrete Pass ships here.
type Pass interface {
	Name() string
	Run(fn *Function) (changed bool)
}

// noFixpointEnvVar gates RunPasses the way WAZEROFEATURES gates
// internal/features.EnableFromEnvironment: read straight off os.Getenv at
// the point of use rather than cached in a package-level var, so a test
// (or an embedder re-invoking RunPasses after changing its environment)
// sees the current value instead of whatever the first call observed.
const noFixpointEnvVar = "COMPRAKT_OPTIMIZATION_NO_FIXPOINT"

// RunPasses runs passes over every function in prog, in declared order.
// By default each function's pass list re-runs to a fixpoint: a round
// that reports no change stops the loop, letting an earlier pass's
// rewrite feed a later pass (or itself, next round) without the caller
// re-sequencing anything. Setting COMPRAKT_OPTIMIZATION_NO_FIXPOINT (to
// any non-empty value) disables the loop — each pass then runs exactly
// once, in declared order — matching spec.md §6's environment switch.
func RunPasses(prog *Program, passes []Pass) {
	noFixpoint := os.Getenv(noFixpointEnvVar) != ""
	for _, fn := range prog.Methods {
		if noFixpoint {
			for _, p := range passes {
				p.Run(fn)
			}
			continue
		}
		for {
			changed := false
			for _, p := range passes {
				if p.Run(fn) {
					changed = true
				}
			}
			if !changed {
				break
			}
		}
	}
}
