package ast

import "github.com/mjc-lang/minijavac/internal/sourceview"

// Spanned re-exports sourceview.Spanned for brevity at AST call sites.
type Spanned[T any] = sourceview.Spanned[T]
