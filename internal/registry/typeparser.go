package registry

import (
	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/types"
)

// Dynamism is a bit-set describing which type-variable forms a given
// type-parse site accepts.
type Dynamism uint8

const (
	AllowGenericVars Dynamism = 1 << iota
	AllowDynamicClass
)

// GenericScope resolves a bare generic-parameter name to its declaring Ref
// and index, for the declaration currently being parsed. internal/session
// builds one per declaration while resolving signatures and passes it down
// through nested type-expression parses.
type GenericScope struct {
	Owner  types.Ref
	Params []string // index-ordered parameter names, e.g. ["🐚0", "🐚1"]
}

func (g *GenericScope) indexOf(name string) (int, bool) {
	if g == nil {
		return 0, false
	}
	for i, p := range g.Params {
		if p == name {
			return i, true
		}
	}
	return 0, false
}

// TypeParser turns ast.TypeExpr syntax into types.Type, looking declared
// names up in reg and substituting generic-parameter names against a
// GenericScope, under an allowed-dynamism bit-set.
type TypeParser struct {
	reg *Registry
}

// NewTypeParser builds a TypeParser bound to reg.
func NewTypeParser(reg *Registry) *TypeParser {
	return &TypeParser{reg: reg}
}

// Parse resolves expr to a Type under scope and dynamism. It reports
// NAM001 for an unresolved name, TYP002 for generic-arity mismatches, and
// TYP004 for a generic-variable occurrence dynamism forbids.
func (p *TypeParser) Parse(expr ast.TypeExpr, scope *GenericScope, dyn Dynamism) (types.Type, *cerrors.Report) {
	switch e := expr.(type) {
	case *ast.StaticTypeExpr:
		return p.parseStatic(e, scope, dyn)

	case *ast.ThisTypeExpr:
		if scope == nil {
			return nil, cerrors.New(cerrors.NAM001, cerrors.PhaseType, e.Pos(), "🐕 used outside a type declaration")
		}
		return p.ownerInstance(scope.Owner), nil

	case *ast.InferTypeExpr:
		// Infer sites are resolved by the caller (analyser) from context;
		// the type parser has nothing to contribute here.
		return nil, nil

	case *ast.TypeFromValueExpr:
		if e.Value.Type() == nil {
			return nil, cerrors.New(cerrors.TYP001, cerrors.PhaseType, e.Pos(), "value has no analysed type yet")
		}
		return e.Value.Type(), nil

	case *ast.TypeAsValueExpr:
		inner, rep := p.Parse(e.Inner, scope, dyn)
		if rep != nil {
			return nil, rep
		}
		return &types.Meta{Inner: inner}, nil

	case *ast.SizeofTypeExpr:
		return p.Parse(e.Of, scope, dyn)

	case *ast.GenericVariableTypeExpr:
		if dyn&AllowGenericVars == 0 {
			return nil, cerrors.Newf(cerrors.TYP004, cerrors.PhaseType, e.Pos(),
				"generic variable %s not allowed at this position", e.Name)
		}
		idx, ok := scope.indexOf(e.Name)
		if !ok {
			return nil, cerrors.Newf(cerrors.NAM001, cerrors.PhaseType, e.Pos(), "unknown generic variable %s", e.Name)
		}
		return &types.GenericVariable{Owner: scope.Owner, Index: idx, Name: e.Name}, nil

	case *ast.CallableTypeExpr:
		params := make([]types.Type, len(e.Params))
		for i, pe := range e.Params {
			t, rep := p.Parse(pe, scope, dyn)
			if rep != nil {
				return nil, rep
			}
			params[i] = t
		}
		ret, rep := p.Parse(e.Return, scope, dyn)
		if rep != nil {
			return nil, rep
		}
		return &types.Callable{Params: params, Return: ret}, nil

	case *ast.ErrorTypeExpr:
		enumT, rep := p.Parse(e.Enum, scope, dyn)
		if rep != nil {
			return nil, rep
		}
		enumInst, ok := enumT.(*types.EnumInstance)
		if !ok {
			return nil, cerrors.New(cerrors.TYP001, cerrors.PhaseType, e.Pos(), "🚨 requires an enum type")
		}
		payload, rep := p.Parse(e.Payload, scope, dyn)
		if rep != nil {
			return nil, rep
		}
		return &types.Error{Enum: enumInst.RefVal, Payload: payload}, nil

	case *ast.MultiProtocolTypeExpr:
		protos := make([]*types.ProtocolInstance, len(e.Protocols))
		for i, pe := range e.Protocols {
			t, rep := p.Parse(pe, scope, dyn)
			if rep != nil {
				return nil, rep
			}
			pi, ok := t.(*types.ProtocolInstance)
			if !ok {
				return nil, cerrors.New(cerrors.TYP001, cerrors.PhaseType, pe.Pos(), "🔗 requires protocol types")
			}
			protos[i] = pi
		}
		return &types.MultiProtocol{Protocols: protos}, nil
	}
	return nil, cerrors.New(cerrors.TYP001, cerrors.PhaseType, expr.Pos(), "unrecognised type-expression")
}

func (p *TypeParser) ownerInstance(ref types.Ref) types.Type {
	d, ok := p.reg.Lookup(ref)
	if !ok {
		return &types.ClassInstance{RefVal: ref}
	}
	args := make([]types.Type, len(d.Generics))
	for i, g := range d.Generics {
		args[i] = &types.GenericVariable{Owner: ref, Index: i, Name: g.Name}
	}
	switch d.Kind {
	case KindValue:
		return &types.ValueInstance{RefVal: ref, Args: args}
	case KindProtocol:
		return &types.ProtocolInstance{RefVal: ref, Args: args}
	case KindEnum:
		return &types.EnumInstance{RefVal: ref}
	default:
		return &types.ClassInstance{RefVal: ref, Args: args}
	}
}

func (p *TypeParser) parseStatic(e *ast.StaticTypeExpr, scope *GenericScope, dyn Dynamism) (types.Type, *cerrors.Report) {
	// A bare name matching the current declaration's own generic
	// parameter list resolves to a GenericVariable rather than a
	// registry lookup.
	if e.Namespace == "" && scope != nil {
		if idx, ok := scope.indexOf(e.Name); ok {
			if dyn&AllowGenericVars == 0 {
				return nil, cerrors.Newf(cerrors.TYP004, cerrors.PhaseType, e.Pos(),
					"generic variable %s not allowed at this position", e.Name)
			}
			return p.wrap(&types.GenericVariable{Owner: scope.Owner, Index: idx, Name: e.Name}, e), nil
		}
	}

	ref, ok := p.findByName(e.Namespace, e.Name)
	if !ok {
		return nil, cerrors.Newf(cerrors.NAM001, cerrors.PhaseName, e.Pos(), "unknown type %s%s", e.Namespace, e.Name)
	}
	decl := p.reg.MustLookup(ref)

	args := make([]types.Type, len(e.Generics))
	for i, ge := range e.Generics {
		t, rep := p.Parse(ge, scope, dyn)
		if rep != nil {
			return nil, rep
		}
		args[i] = t
	}
	if len(args) > 0 && len(args) != len(decl.Generics) {
		return nil, cerrors.Newf(cerrors.TYP002, cerrors.PhaseType, e.Pos(),
			"%s expects %d generic argument(s), got %d", ref.String(), len(decl.Generics), len(args))
	}
	if len(args) == 0 {
		for i, g := range decl.Generics {
			_ = g
			args = append(args, &types.GenericVariable{Owner: ref, Index: i, Name: decl.Generics[i].Name})
		}
	}

	var base types.Type
	switch decl.Kind {
	case KindClass:
		base = &types.ClassInstance{RefVal: ref, Args: args}
	case KindValue:
		base = &types.ValueInstance{RefVal: ref, Args: args}
	case KindProtocol:
		base = &types.ProtocolInstance{RefVal: ref, Args: args}
	case KindEnum:
		base = &types.EnumInstance{RefVal: ref}
	}
	return p.wrap(base, e), nil
}

func (p *TypeParser) wrap(t types.Type, e *ast.StaticTypeExpr) types.Type {
	if e.Optional {
		t = &types.Optional{Inner: t}
	}
	if e.Meta {
		t = &types.Meta{Inner: t}
	}
	return t
}

// findByName resolves a bare (namespace, name) pair against every package
// currently loaded, mirroring fetchRawType's package-scoped search.
func (p *TypeParser) findByName(namespace, name string) (types.Ref, bool) {
	for _, ref := range p.reg.order {
		if ref.Namespace == namespace && ref.Name == name {
			return ref, true
		}
	}
	return types.Ref{}, false
}
