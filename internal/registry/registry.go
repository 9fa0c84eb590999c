// Package registry is the symbol table every phase of the pipeline looks
// declared classes, value types, protocols, and enums up through. It owns
// the one mutable, authoritative copy of each declaration; every other
// package holds a non-owning types.Ref into it instead of a pointer,
// avoiding the cyclic import the types ↔ declaration relationship would
// otherwise force.
package registry

import (
	"fmt"
	"sort"

	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/token"
	"github.com/emojicode/ecc/internal/types"
)

// Kind distinguishes the four declaration shapes the registry stores.
type Kind int

const (
	KindClass Kind = iota
	KindValue
	KindProtocol
	KindEnum
)

// GenericParam records one declared generic parameter: its constraint
// (the upper bound it must satisfy) and declared variance.
type GenericParam struct {
	Name       string
	Constraint types.Type
	Variance   types.Variance
}

// AccessLevel is a method/initializer's declared visibility: public,
// protected, or private.
type AccessLevel int

const (
	AccessPublic AccessLevel = iota
	AccessProtected
	AccessPrivate
)

// Method is the declared signature of an instance or type method, stored by
// the registry so name resolution and the analyser can look it up without
// re-parsing the declaring class.
type Method struct {
	Name       string
	Params     []types.Type
	Return     types.Type
	IsTypeMethod bool
	Final      bool
	Overriding bool
	Deprecated bool
	Access     AccessLevel
	Pos        token.Pos
}

// Declaration is one registered class/value/protocol/enum.
type Declaration struct {
	Kind          Kind
	Ref           types.Ref
	Superclass    *types.Ref
	Conformances  []types.Ref
	Generics      []GenericParam
	Methods       map[string]*Method
	Initializers  map[string]*Method
	TypeMethods   map[string]*Method
	RequiredInits map[string]bool
	EnumValues    []string
	OptionalProto bool // protocol declared 🍬-conforming (SEM005 source)
	Exported      bool
	Pos           token.Pos
}

// Package groups the declarations loaded from one source package together
// with its semantic version (major, minor).
type Package struct {
	Name         string
	VersionMajor int
	VersionMinor int
	Namespaces   map[string]string // exported name -> namespace prefix
}

// Registry is the single mutable symbol table for a CompilerSession. It is
// not safe for concurrent use, matching the single-threaded, synchronous
// pipeline it serves.
type Registry struct {
	packages map[string]*Package
	decls    map[types.Ref]*Declaration
	order    []types.Ref // declaration order, for deterministic iteration
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{
		packages: make(map[string]*Package),
		decls:    make(map[types.Ref]*Declaration),
	}
}

// LoadPackage registers pkg idempotently: loading the same package name
// twice with identical version numbers is a no-op, matching the original
// compiler's package-cache behavior for diamond dependencies.
func (r *Registry) LoadPackage(pkg *Package) error {
	existing, ok := r.packages[pkg.Name]
	if !ok {
		r.packages[pkg.Name] = pkg
		return nil
	}
	if existing.VersionMajor != pkg.VersionMajor || existing.VersionMinor != pkg.VersionMinor {
		return fmt.Errorf("package %s already loaded at version %d.%d, cannot reload at %d.%d",
			pkg.Name, existing.VersionMajor, existing.VersionMinor, pkg.VersionMajor, pkg.VersionMinor)
	}
	return nil
}

// Declare registers decl. It fails with NAM002 if a declaration with the
// same Ref was already registered — duplicate names are a registration-time
// error, not a later one, so no downstream phase ever observes a partial
// redefinition.
func (r *Registry) Declare(decl *Declaration) *cerrors.Report {
	if _, exists := r.decls[decl.Ref]; exists {
		return cerrors.Newf(cerrors.NAM002, cerrors.PhaseName, decl.Pos,
			"%s is already declared", decl.Ref.String())
	}
	if decl.Methods == nil {
		decl.Methods = make(map[string]*Method)
	}
	if decl.Initializers == nil {
		decl.Initializers = make(map[string]*Method)
	}
	if decl.TypeMethods == nil {
		decl.TypeMethods = make(map[string]*Method)
	}
	if decl.RequiredInits == nil {
		decl.RequiredInits = make(map[string]bool)
	}
	r.decls[decl.Ref] = decl
	r.order = append(r.order, decl.Ref)
	return nil
}

// Lookup returns the declaration named by ref.
func (r *Registry) Lookup(ref types.Ref) (*Declaration, bool) {
	d, ok := r.decls[ref]
	return d, ok
}

// FetchRawType finds the declaration named (namespace, name) in any loaded
// package and returns its unparameterized instance type, optionally
// wrapped as optional.
func (r *Registry) FetchRawType(namespace, name string, optional bool) (types.Type, bool) {
	for _, ref := range r.order {
		if ref.Namespace != namespace || ref.Name != name {
			continue
		}
		d := r.decls[ref]
		args := make([]types.Type, len(d.Generics))
		for i, g := range d.Generics {
			args[i] = &types.GenericVariable{Owner: ref, Index: i, Name: g.Name}
		}
		var t types.Type
		switch d.Kind {
		case KindValue:
			t = &types.ValueInstance{RefVal: ref, Args: args}
		case KindProtocol:
			t = &types.ProtocolInstance{RefVal: ref, Args: args}
		case KindEnum:
			t = &types.EnumInstance{RefVal: ref}
		default:
			t = &types.ClassInstance{RefVal: ref, Args: args}
		}
		if optional {
			t = &types.Optional{Inner: t}
		}
		return t, true
	}
	return nil, false
}

// MustLookup is Lookup for call sites that already validated ref exists
// (e.g. from a types.Ref constructed by this same registry).
func (r *Registry) MustLookup(ref types.Ref) *Declaration {
	d, ok := r.decls[ref]
	if !ok {
		panic("registry: unresolved ref " + ref.String())
	}
	return d
}

// Declarations returns every registered declaration in registration order,
// for phases that need a stable full walk (e.g. signature resolution).
func (r *Registry) Declarations() []*Declaration {
	out := make([]*Declaration, len(r.order))
	for i, ref := range r.order {
		out[i] = r.decls[ref]
	}
	return out
}

// --- types.Resolver -------------------------------------------------------

// Superclass implements types.Resolver.
func (r *Registry) Superclass(ref types.Ref) (types.Ref, bool) {
	d, ok := r.decls[ref]
	if !ok || d.Superclass == nil {
		return types.Ref{}, false
	}
	return *d.Superclass, true
}

// Conforms implements types.Resolver by walking the class hierarchy,
// checking each ancestor's declared conformances (transitively, since a
// protocol can itself extend other protocols via its own Conformances).
func (r *Registry) Conforms(ref types.Ref, proto types.Ref) bool {
	visited := make(map[types.Ref]bool)
	return r.conformsRec(ref, proto, visited)
}

func (r *Registry) conformsRec(ref, proto types.Ref, visited map[types.Ref]bool) bool {
	if visited[ref] {
		return false
	}
	visited[ref] = true
	d, ok := r.decls[ref]
	if !ok {
		return false
	}
	for _, c := range d.Conformances {
		if c.Equals(proto) {
			return true
		}
		if r.conformsRec(c, proto, visited) {
			return true
		}
	}
	if d.Superclass != nil {
		return r.conformsRec(*d.Superclass, proto, visited)
	}
	return false
}

// GenericVariance implements types.Resolver.
func (r *Registry) GenericVariance(ref types.Ref, index int) types.Variance {
	d, ok := r.decls[ref]
	if !ok || index < 0 || index >= len(d.Generics) {
		return types.Invariant
	}
	return d.Generics[index].Variance
}

// IsProtocolOptional implements types.Resolver.
func (r *Registry) IsProtocolOptional(ref types.Ref) bool {
	d, ok := r.decls[ref]
	return ok && d.Kind == KindProtocol && d.OptionalProto
}

// --- invariant checks -----------------------------------------------------

// CheckInheritanceCycles verifies no class's superclass chain loops back on
// itself, reporting SEM006 at the offending declaration's position.
func (r *Registry) CheckInheritanceCycles() []*cerrors.Report {
	var reports []*cerrors.Report
	for _, ref := range r.order {
		d := r.decls[ref]
		if d.Kind != KindClass {
			continue
		}
		seen := map[types.Ref]bool{ref: true}
		cur := d.Superclass
		for cur != nil {
			if seen[*cur] {
				reports = append(reports, cerrors.Newf(cerrors.SEM006, cerrors.PhaseSemantic, d.Pos,
					"%s's superclass chain contains a cycle", ref.String()))
				break
			}
			seen[*cur] = true
			next, ok := r.decls[*cur]
			if !ok {
				break
			}
			cur = next.Superclass
		}
	}
	return reports
}

// CheckOptionalProtocolConformance reports SEM005 for any class directly
// conforming to a protocol declared 🍬-optional — only other protocols may
// extend an optional protocol, a class may never conform to one directly.
func (r *Registry) CheckOptionalProtocolConformance() []*cerrors.Report {
	var reports []*cerrors.Report
	for _, ref := range r.order {
		d := r.decls[ref]
		if d.Kind != KindClass {
			continue
		}
		for _, c := range d.Conformances {
			if r.IsProtocolOptional(c) {
				reports = append(reports, cerrors.Newf(cerrors.SEM005, cerrors.PhaseSemantic, d.Pos,
					"%s cannot conform to optional protocol %s directly", ref.String(), c.String()))
			}
		}
	}
	return reports
}

// CheckRequiredInitializers reports SEM003 for every class that does not
// itself implement a required initializer declared by a protocol it
// conforms to (directly or transitively) or by one of its superclasses.
func (r *Registry) CheckRequiredInitializers() []*cerrors.Report {
	var reports []*cerrors.Report
	for _, ref := range r.order {
		d := r.decls[ref]
		if d.Kind != KindClass {
			continue
		}
		required := r.collectRequiredInits(ref, make(map[types.Ref]bool))
		names := make([]string, 0, len(required))
		for name := range required {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, has := d.Initializers[name]; !has {
				reports = append(reports, cerrors.Newf(cerrors.SEM003, cerrors.PhaseSemantic, d.Pos,
					"%s does not implement required initializer %s🐱", ref.String(), name))
			}
		}
	}
	return reports
}

func (r *Registry) collectRequiredInits(ref types.Ref, visited map[types.Ref]bool) map[string]bool {
	out := make(map[string]bool)
	if visited[ref] {
		return out
	}
	visited[ref] = true
	d, ok := r.decls[ref]
	if !ok {
		return out
	}
	for name := range d.RequiredInits {
		out[name] = true
	}
	for _, c := range d.Conformances {
		for name := range r.collectRequiredInits(c, visited) {
			out[name] = true
		}
	}
	if d.Superclass != nil {
		for name := range r.collectRequiredInits(*d.Superclass, visited) {
			out[name] = true
		}
	}
	return out
}

// CheckGenericArity reports TYP002 where a Parameterized type's argument
// count does not match its declaration's generic parameter count. t must
// be types.Parameterized; callers filter non-parameterized types out
// before calling.
func (r *Registry) CheckGenericArity(t types.Parameterized, pos token.Pos) *cerrors.Report {
	d, ok := r.decls[t.Ref()]
	if !ok {
		return nil
	}
	if len(t.GenericArgs()) != len(d.Generics) {
		return cerrors.Newf(cerrors.TYP002, cerrors.PhaseType, pos,
			"%s expects %d generic argument(s), got %d", t.Ref().String(), len(d.Generics), len(t.GenericArgs()))
	}
	return nil
}
