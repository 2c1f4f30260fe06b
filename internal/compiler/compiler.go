// Package compiler wires every pass into the two library entry points a
// driver needs: Check (lex, parse, semantic analysis) and Lower (Check,
// plus Firm construction, LIR lowering, register allocation, and x86-64
// assembly emission). Dispatching these onto the distinct CLI subcommands
// of spec.md §6 — and the VCG graph dumps --lower optionally produces —
// is left to a caller; this package only exercises the --check/--lower
// scenarios of spec.md §8 as a Go API.
//
// Grounded on original_source/compiler-cli/src/main.rs's cmd_check/
// cmd_lower: the same stage sequencing (decode, lex, parse, check, then
// Firm/lowering/assembly), minus the file-system setup_io! plumbing
// (opening and mmapping a path) and the StructOpt subcommand dispatch,
// both of which belong to a CLI binary rather than this library.
package compiler

import (
	"bytes"
	"fmt"
	"io"

	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/codegen/amd64"
	"github.com/mjc-lang/minijavac/internal/diagnostics"
	"github.com/mjc-lang/minijavac/internal/lexer"
	"github.com/mjc-lang/minijavac/internal/lir"
	"github.com/mjc-lang/minijavac/internal/parser"
	"github.com/mjc-lang/minijavac/internal/regalloc"
	"github.com/mjc-lang/minijavac/internal/sourceview"
	"github.com/mjc-lang/minijavac/internal/ssa"
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/types"
)

// CheckResult is everything --check needs to report: whether the program
// is well-formed, and the tables later stages would need to continue.
type CheckResult struct {
	OK       bool
	Registry *types.Registry
	Ann      *types.Annotations
	Symbols  *symbol.Table
	Program  *ast.Program
}

// Check runs lex, parse, and two-phase semantic analysis over src, writing
// every diagnostic to diagW as it is emitted (mirroring cmd_check's
// write-as-you-go diagnostics, rather than buffering). An error return
// means src itself could not be decoded (spec.md §7's CLI::Ascii). A
// lexical or syntax error is written to diagW and, like a program that
// semantic analysis rejects, gives CheckResult.OK false with a nil error
// — both are "compilation did not succeed", distinguished only because a
// caller mimicking --check's exit codes needs to tell a decode failure
// from a program error.
func Check(name string, src []byte, diagW io.Writer) (*CheckResult, error) {
	view, err := sourceview.New(name, src)
	if err != nil {
		return nil, err
	}
	syms := symbol.NewTable()
	sink := diagnostics.New(diagW, false)

	toks, err := lexer.All(lexer.New(view, syms))
	if err != nil {
		sink.EmitSpanned(diagnostics.Error, err.Error(), spannedErrSpan(err))
		sink.WriteStatistics()
		return &CheckResult{OK: false}, nil
	}

	prog, err := parser.Parse(toks, syms)
	if err != nil {
		if pe, ok := err.(*parser.Error); ok {
			sink.EmitSpanned(diagnostics.Error, err.Error(), pe.Span)
		} else {
			sink.Emit(diagnostics.Error, err.Error())
		}
		sink.WriteStatistics()
		return &CheckResult{OK: false}, nil
	}

	reg := types.CollectDeclarations(prog, syms, sink)
	ann := types.Check(reg, syms, sink)
	sink.WriteStatistics()
	return &CheckResult{
		OK:       !sink.Errored(),
		Registry: reg,
		Ann:      ann,
		Symbols:  syms,
		Program:  prog,
	}, nil
}

// spannedErrSpan recovers the span carried by a lexer error, if any, so
// Check can report it the same way a semantic diagnostic would.
func spannedErrSpan(err error) sourceview.Span {
	if se, ok := err.(*lexer.SpannedError); ok {
		return se.Span
	}
	return sourceview.Span{}
}

// LowerResult is everything --lower can produce: the Firm graph, its LIR
// lowering and register allocation per function, and the final assembly
// text. Intermediate stages are kept (rather than discarded once
// consumed) so a caller wanting the VCG graph dumps spec.md §6 describes
// for -g/-l can walk Firm/Program directly; this package does not itself
// encode VCG, since nothing in the pack this compiler is grounded on
// ships a VCG writer to adapt (see DESIGN.md).
type LowerResult struct {
	Check *CheckResult
	Firm  *ssa.Program
	LIR   *lir.Program
	Alloc map[*lir.Function]*regalloc.Allocation
	Asm   string
}

// Lower runs Check and, if it succeeds, continues through Firm
// construction, LIR lowering, per-function register allocation, and
// x86-64 emission. When Check fails it returns a LowerResult holding only
// Check (Firm, LIR, Alloc and Asm stay unset) and a nil error — matching
// spec.md's Codegen error kind being reserved for internal bugs, not
// user-program errors, which are never escalated past the diagnostics
// sink.
func Lower(name string, src []byte, diagW io.Writer) (*LowerResult, error) {
	checked, err := Check(name, src, diagW)
	if err != nil {
		return nil, err
	}
	res := &LowerResult{Check: checked}
	if !checked.OK {
		return res, nil
	}

	res.Firm = ssa.BuildProgram(checked.Registry, checked.Ann, checked.Symbols)
	// No concrete ssa.Pass ships yet (see DESIGN.md), but the driver call
	// stays here rather than being omitted: it is the seam spec.md §1
	// reserves for optimizations, and COMPRAKT_OPTIMIZATION_NO_FIXPOINT
	// (spec.md §6) governs it even with an empty pass list.
	ssa.RunPasses(res.Firm, nil)
	res.LIR = lir.LowerProgram(checked.Registry, res.Firm, checked.Symbols)

	res.Alloc = make(map[*lir.Function]*regalloc.Allocation, len(res.LIR.Functions))
	for _, fn := range res.LIR.Functions {
		res.Alloc[fn] = regalloc.Allocate(fn)
	}

	var asm bytes.Buffer
	if err := amd64.EmitProgram(&asm, res.LIR); err != nil {
		return res, fmt.Errorf("amd64: %w", err)
	}
	res.Asm = asm.String()
	return res, nil
}
