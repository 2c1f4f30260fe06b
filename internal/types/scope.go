package types

import "github.com/mjc-lang/minijavac/internal/symbol"

// VarDef is a resolved local variable or parameter binding.
type VarDef struct {
	Name symbol.Symbol
	Type CheckedType
	// IsParam distinguishes a method parameter from a local, since
	// spec.md's shadowing rule only forbids local-over-local and
	// local-over-param, never field-over-local (see SPEC_FULL.md §C.5).
	IsParam bool
}

// Scoped is a stack of scopes mapping Symbol to VarDef, entered on each
// Block and left when the block closes, per spec.md §4.4.
type Scoped struct {
	scopes []map[symbol.Symbol]VarDef
}

// NewScoped returns a Scoped with its outermost (parameter) scope open.
func NewScoped() *Scoped {
	return &Scoped{scopes: []map[symbol.Symbol]VarDef{make(map[symbol.Symbol]VarDef)}}
}

// Enter pushes a new, empty scope (called on each Block).
func (s *Scoped) Enter() { s.scopes = append(s.scopes, make(map[symbol.Symbol]VarDef)) }

// Leave pops the innermost scope.
func (s *Scoped) Leave() { s.scopes = s.scopes[:len(s.scopes)-1] }

// Declare binds name in the innermost scope. Returns false if name is
// already bound in the innermost scope (local-over-local/param shadow).
func (s *Scoped) Declare(v VarDef) bool {
	top := s.scopes[len(s.scopes)-1]
	if _, exists := top[v.Name]; exists {
		return false
	}
	top[v.Name] = v
	return true
}

// Lookup searches from the innermost scope outward and returns the
// binding and whether it was found.
func (s *Scoped) Lookup(name symbol.Symbol) (VarDef, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if v, ok := s.scopes[i][name]; ok {
			return v, true
		}
	}
	return VarDef{}, false
}

// ShadowsAnyScope reports whether name is already bound in ANY enclosing
// scope (used to reject local-over-local/local-over-param shadowing,
// which is stricter than just checking the innermost scope since a local
// may shadow a binding from an outer block too).
func (s *Scoped) ShadowsAnyScope(name symbol.Symbol) bool {
	_, ok := s.Lookup(name)
	return ok
}
