// Package ssa builds, per method, the sea-of-nodes Firm graph of spec.md
// §3/§4.5: a graph of opaque value nodes grouped by owning BasicBlock,
// constructed directly in SSA form using the incomplete-CFG algorithm
// (Braun et al., "Simple and Efficient Construction of Static Single
// Assignment Form") — the same construction wazero's in-process SSA
// builder uses, adapted here to produce explicit Phi nodes (as spec.md's
// node-kind vocabulary names them) rather than wazero's block-parameter
// encoding of the same idea.
package ssa

import "github.com/mjc-lang/minijavac/internal/types"

// Value identifies the result of an Instruction. The zero Value is
// invalid; every real value produced by a Builder is non-zero.
type Value uint32

// ValueInvalid is returned by operations that have no result (e.g. Store).
const ValueInvalid Value = 0

// Valid reports whether v was produced by a real instruction.
func (v Value) Valid() bool { return v != ValueInvalid }

// Variable identifies a source-level local/parameter/field slot during
// construction; it is erased once FindValue resolves it to a concrete
// Value. Distinct from Value: many Values may, over a method's lifetime,
// be "the value of" the same Variable.
type Variable uint32

// variableInfo is the per-Variable bookkeeping the Builder needs to
// resolve an unqualified reference into a Value (its CheckedType, for
// materializing a Phi's type).
type variableInfo struct {
	typ types.CheckedType
}
