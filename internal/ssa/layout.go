package ssa

import (
	"github.com/mjc-lang/minijavac/internal/symbol"
	"github.com/mjc-lang/minijavac/internal/types"
)

// StrideOf returns the byte width spec.md uses for "stride = element
// size (1,2,4,8)": booleans pack to a single byte, ints to a word, and
// every reference-shaped type (class instance, array, null) to a
// pointer-sized slot.
func StrideOf(t types.CheckedType) int {
	switch t.Kind {
	case types.KindBoolean:
		return 1
	case types.KindInt:
		return 4
	default: // KindTypeRef, KindArray, KindNull
		return 8
	}
}

// ClassLayout assigns each field of a class a deterministic byte offset
// and records the class's total instance size, for Member lowering and
// AllocObject sizing.
type ClassLayout struct {
	Offsets map[symbol.Symbol]int
	Size    int
}

// computeLayout lays cd's fields out in declaration order (cd.FieldOrder,
// not map iteration, which Go randomizes), packing each field at the
// next multiple of its own stride. No reordering for padding
// minimization: field order is source order, matching spec.md's silence
// on layout optimization.
func computeLayout(cd *types.ClassDef) *ClassLayout {
	layout := &ClassLayout{Offsets: make(map[symbol.Symbol]int, len(cd.FieldOrder))}
	offset := 0
	for _, name := range cd.FieldOrder {
		fd := cd.Fields[name]
		stride := StrideOf(fd.Type)
		if rem := offset % stride; rem != 0 {
			offset += stride - rem
		}
		layout.Offsets[name] = offset
		offset += stride
	}
	layout.Size = offset
	return layout
}
