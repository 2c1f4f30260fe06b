package types

import (
	"github.com/mjc-lang/minijavac/internal/ast"
	"github.com/mjc-lang/minijavac/internal/diagnostics"
	"github.com/mjc-lang/minijavac/internal/symbol"
)

// CollectDeclarations implements spec.md §4.4 phase 1: it builds the
// class registry, rejecting duplicate classes and duplicate
// fields/methods within a class. Type references to undeclared classes
// are not rejected here — resolution happens lazily, on use, in phase 2,
// which reports ClassDoesNotExist for a local declaration, a `new`
// expression, or a member access through a value of that type. An
// undeclared class named only in a field type or a method signature, and
// never used in one of those ways, is not reported.
func CollectDeclarations(prog *ast.Program, syms *symbol.Table, sink *diagnostics.Sink) *Registry {
	reg := &Registry{Classes: make(map[symbol.Symbol]*ClassDef)}

	for _, cls := range prog.Classes {
		decl := cls.Value
		if existing, ok := reg.Classes[decl.Name]; ok {
			sink.EmitSpannedKind(diagnostics.Error, RedefinitionError.String(),
				"redefinition of class "+syms.Text(decl.Name), cls.Span)
			_ = existing
			continue
		}
		cd := &ClassDef{
			Name:    decl.Name,
			Fields:  make(map[symbol.Symbol]*FieldDef),
			Methods: make(map[symbol.Symbol]*MethodDef),
			Span:    cls.Span,
		}
		reg.Classes[decl.Name] = cd
	}

	for _, cls := range prog.Classes {
		cd := reg.Classes[cls.Value.Name]
		if cd == nil { // duplicate class name; skip members, already reported
			continue
		}
		for _, m := range cls.Value.Members {
			collectMember(reg, cd, m, syms, sink)
		}
	}
	return reg
}

func collectMember(reg *Registry, cd *ClassDef, m ast.Spanned[ast.Member], syms *symbol.Table, sink *diagnostics.Sink) {
	switch m.Value.Kind {
	case ast.MemberField:
		name := m.Value.FieldName
		if _, dup := cd.Fields[name]; dup {
			sink.EmitSpannedKind(diagnostics.Error, RedefinitionError.String(), "redefinition of field "+syms.Text(name), m.Span)
			return
		}
		cd.Fields[name] = &FieldDef{Name: name, Type: ResolveASTType(m.Value.FieldType), Span: m.Span}
		cd.FieldOrder = append(cd.FieldOrder, name)

	case ast.MemberMethod:
		name := m.Value.MethodName
		if _, dup := cd.Methods[name]; dup {
			sink.EmitSpannedKind(diagnostics.Error, RedefinitionError.String(), "redefinition of method "+syms.Text(name), m.Span)
			return
		}
		params := make([]ParamDef, len(m.Value.Params))
		for i, p := range m.Value.Params {
			params[i] = ParamDef{Name: p.Name, Type: ResolveASTType(p.Type)}
		}
		cd.Methods[name] = &MethodDef{
			Name: name, Params: params, Return: ResolveASTType(m.Value.ReturnType),
			Body: m.Value.Body.Value, Span: m.Span,
		}

	case ast.MemberMain:
		if reg.HasMain {
			sink.EmitSpannedKind(diagnostics.Error, RedefinitionError.String(), "a program may declare at most one main method", m.Span)
			return
		}
		reg.HasMain = true
		reg.MainClass = cd.Name
		reg.MainMethodParam = m.Value.MainParamName
		cd.Methods[m.Value.MethodName] = &MethodDef{
			Name: m.Value.MethodName, Return: Void, Body: m.Value.Body.Value, Span: m.Span,
			IsMain: true,
		}
	}
}

// ResolveASTType converts an ast.Type into a CheckedType. Custom class
// names are carried through unresolved (their existence is validated
// lazily, on use, in phase 2) since a forward reference to a
// not-yet-collected class is always legal in MiniJava (no separate
// compilation, single file, but declaration order is not significant).
func ResolveASTType(t ast.Type) CheckedType {
	var base CheckedType
	switch t.Basic {
	case ast.BasicInt:
		base = Int
	case ast.BasicBoolean:
		base = Boolean
	case ast.BasicVoid:
		base = Void
	case ast.BasicCustom:
		base = TypeRef(t.Custom)
	}
	for i := uint(0); i < t.ArrayDepth; i++ {
		base = Array(base)
	}
	return base
}
