// Package types implements the Emojicode type model: a tagged variant over
// primitives, class/value/protocol/enum instances, callables, generic
// variables, and the optional/meta modifiers, plus the compatibleTo and
// resolveOn operations that make the relation decidable.
//
// Class, value-type, protocol and enum declarations live in the symbol
// registry, not here — a Type only ever holds a Ref naming one. This keeps
// the type ↔ declaration cycle (type.go ↔ registry.go) out of the Go import
// graph the way the registry holds non-owning TypeRef pairs rather than
// direct pointers, avoiding a cyclic import between the two packages.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// Ref names a declared type by the (package, namespace, name) tuple the
// symbol registry uses as its lookup key. It never carries a pointer into
// the registry's declaration nodes.
type Ref struct {
	Package   string
	Namespace string
	Name      string
}

func (r Ref) String() string {
	if r.Namespace == "" {
		return r.Package + "." + r.Name
	}
	return r.Package + "." + r.Namespace + r.Name
}

// Equals reports whether two refs name the same declaration.
func (r Ref) Equals(o Ref) bool {
	return r.Package == o.Package && r.Namespace == o.Namespace && r.Name == o.Name
}

// Type is the tagged variant every sub-expression and declared signature is
// typed with.
type Type interface {
	// String renders the type the way the declaration it names would be
	// written back out. It takes no context: generic variables are
	// rendered as themselves, not substituted.
	String() string
	// Equals is syntactic type equality (same variant, same payload), used
	// by CompatibleTo's reflexive base cases and by tests; it is not the
	// compatibility relation.
	Equals(Type) bool
	// ResolveOn replaces every generic-variable occurrence whose owner
	// matches context's Ref with context's corresponding generic argument.
	// It is idempotent on types with no free variables.
	ResolveOn(context Type) Type
}

// Parameterized is implemented by the variants that carry an ordered list
// of generic arguments (class/value/protocol instances).
type Parameterized interface {
	Type
	Ref() Ref
	GenericArgs() []Type
}

// PrimitiveKind enumerates the primitive type variant.
type PrimitiveKind int

const (
	Integer PrimitiveKind = iota
	Double
	Boolean
	Symbol
	Byte
)

func (k PrimitiveKind) String() string {
	switch k {
	case Integer:
		return "🚂"
	case Double:
		return "💯"
	case Boolean:
		return "👌"
	case Symbol:
		return "🔟"
	case Byte:
		return "🎫"
	default:
		return "?"
	}
}

// Primitive is a primitive scalar type: integer, double, boolean, symbol, byte.
type Primitive struct {
	Kind PrimitiveKind
}

func (p *Primitive) String() string { return p.Kind.String() }
func (p *Primitive) Equals(o Type) bool {
	op, ok := o.(*Primitive)
	return ok && op.Kind == p.Kind
}
func (p *Primitive) ResolveOn(Type) Type { return p }

// Predefined primitive singletons, mirroring the #define typeInteger /
// typeBoolean / ... constants of the original compiler.
var (
	TInteger = &Primitive{Kind: Integer}
	TDouble  = &Primitive{Kind: Double}
	TBoolean = &Primitive{Kind: Boolean}
	TSymbol  = &Primitive{Kind: Symbol}
	TByte    = &Primitive{Kind: Byte}
)

// Nothingness is the sentinel absence of a value — the bottom of Optional.
type Nothingness struct{}

func (*Nothingness) String() string       { return "🚫" }
func (*Nothingness) Equals(o Type) bool   { _, ok := o.(*Nothingness); return ok }
func (n *Nothingness) ResolveOn(Type) Type { return n }

// TNothingness is the single Nothingness instance.
var TNothingness = &Nothingness{}

// Something is the top of the whole type lattice.
type Something struct{}

func (*Something) String() string        { return "⬛" }
func (*Something) Equals(o Type) bool    { _, ok := o.(*Something); return ok }
func (s *Something) ResolveOn(Type) Type { return s }

// TSomething is the single Something instance.
var TSomething = &Something{}

// SomeObject is the top of the class-instance sub-lattice.
type SomeObject struct{}

func (*SomeObject) String() string        { return "⬜" }
func (*SomeObject) Equals(o Type) bool    { _, ok := o.(*SomeObject); return ok }
func (s *SomeObject) ResolveOn(Type) Type { return s }

// TSomeObject is the single SomeObject instance.
var TSomeObject = &SomeObject{}

// ClassInstance names an instance of a declared class.
type ClassInstance struct {
	RefVal       Ref
	Args         []Type
}

func (c *ClassInstance) Ref() Ref          { return c.RefVal }
func (c *ClassInstance) GenericArgs() []Type { return c.Args }

func (c *ClassInstance) String() string {
	return withArgs(c.RefVal.String(), c.Args)
}

func (c *ClassInstance) Equals(o Type) bool {
	oc, ok := o.(*ClassInstance)
	return ok && oc.RefVal.Equals(c.RefVal) && sliceEquals(c.Args, oc.Args)
}

func (c *ClassInstance) ResolveOn(context Type) Type {
	return &ClassInstance{RefVal: c.RefVal, Args: resolveArgs(c.Args, context)}
}

// ValueInstance names an instance of a declared value type.
type ValueInstance struct {
	RefVal Ref
	Args   []Type
}

func (v *ValueInstance) Ref() Ref            { return v.RefVal }
func (v *ValueInstance) GenericArgs() []Type { return v.Args }
func (v *ValueInstance) String() string      { return withArgs(v.RefVal.String(), v.Args) }

func (v *ValueInstance) Equals(o Type) bool {
	ov, ok := o.(*ValueInstance)
	return ok && ov.RefVal.Equals(v.RefVal) && sliceEquals(v.Args, ov.Args)
}

func (v *ValueInstance) ResolveOn(context Type) Type {
	return &ValueInstance{RefVal: v.RefVal, Args: resolveArgs(v.Args, context)}
}

// ProtocolInstance names an instance of a declared protocol.
type ProtocolInstance struct {
	RefVal Ref
	Args   []Type
}

func (p *ProtocolInstance) Ref() Ref            { return p.RefVal }
func (p *ProtocolInstance) GenericArgs() []Type { return p.Args }
func (p *ProtocolInstance) String() string      { return withArgs(p.RefVal.String(), p.Args) }

func (p *ProtocolInstance) Equals(o Type) bool {
	op, ok := o.(*ProtocolInstance)
	return ok && op.RefVal.Equals(p.RefVal) && sliceEquals(p.Args, op.Args)
}

func (p *ProtocolInstance) ResolveOn(context Type) Type {
	return &ProtocolInstance{RefVal: p.RefVal, Args: resolveArgs(p.Args, context)}
}

// MultiProtocol is an unordered set of protocols a type must conform to
// simultaneously.
type MultiProtocol struct {
	Protocols []*ProtocolInstance
}

func (m *MultiProtocol) String() string {
	parts := make([]string, len(m.Protocols))
	for i, p := range m.Protocols {
		parts[i] = p.String()
	}
	sort.Strings(parts)
	return "🔗(" + strings.Join(parts, "&") + ")"
}

func (m *MultiProtocol) Equals(o Type) bool {
	om, ok := o.(*MultiProtocol)
	if !ok || len(om.Protocols) != len(m.Protocols) {
		return false
	}
	used := make([]bool, len(om.Protocols))
	for _, p := range m.Protocols {
		found := false
		for i, op := range om.Protocols {
			if !used[i] && p.Equals(op) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (m *MultiProtocol) ResolveOn(context Type) Type {
	out := make([]*ProtocolInstance, len(m.Protocols))
	for i, p := range m.Protocols {
		out[i] = p.ResolveOn(context).(*ProtocolInstance)
	}
	return &MultiProtocol{Protocols: out}
}

// EnumInstance names an instance of a declared enum.
type EnumInstance struct {
	RefVal Ref
}

func (e *EnumInstance) String() string { return e.RefVal.String() }
func (e *EnumInstance) Equals(o Type) bool {
	oe, ok := o.(*EnumInstance)
	return ok && oe.RefVal.Equals(e.RefVal)
}
func (e *EnumInstance) ResolveOn(Type) Type { return e }

// Callable is a function-value type: parameters contravariant, return
// covariant.
type Callable struct {
	Params []Type
	Return Type
}

func (c *Callable) String() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.String()
	}
	return fmt.Sprintf("🍡(%s)%s", strings.Join(params, ","), c.Return.String())
}

func (c *Callable) Equals(o Type) bool {
	oc, ok := o.(*Callable)
	if !ok || len(oc.Params) != len(c.Params) {
		return false
	}
	for i := range c.Params {
		if !c.Params[i].Equals(oc.Params[i]) {
			return false
		}
	}
	return c.Return.Equals(oc.Return)
}

func (c *Callable) ResolveOn(context Type) Type {
	params := make([]Type, len(c.Params))
	for i, p := range c.Params {
		params[i] = p.ResolveOn(context)
	}
	return &Callable{Params: params, Return: c.Return.ResolveOn(context)}
}

// GenericVariable is an unbound reference to the Index'th generic parameter
// declared by Owner.
type GenericVariable struct {
	Owner Ref
	Index int
	Name  string
}

func (g *GenericVariable) String() string { return g.Name }
func (g *GenericVariable) Equals(o Type) bool {
	og, ok := o.(*GenericVariable)
	return ok && og.Owner.Equals(g.Owner) && og.Index == g.Index
}

// ResolveOn substitutes this variable with context's matching generic
// argument when context is Parameterized and owned by the same declaration;
// it is a no-op — returning itself unchanged — otherwise, which is what
// keeps repeated ResolveOn calls idempotent.
func (g *GenericVariable) ResolveOn(context Type) Type {
	if p, ok := context.(Parameterized); ok && p.Ref().Equals(g.Owner) {
		args := p.GenericArgs()
		if g.Index >= 0 && g.Index < len(args) {
			return args[g.Index]
		}
	}
	return g
}

// Optional wraps a type that may instead be Nothingness.
type Optional struct {
	Inner Type
}

func (o *Optional) String() string { return o.Inner.String() + "🍬" }
func (o *Optional) Equals(t Type) bool {
	ot, ok := t.(*Optional)
	return ok && o.Inner.Equals(ot.Inner)
}
func (o *Optional) ResolveOn(context Type) Type {
	return &Optional{Inner: o.Inner.ResolveOn(context)}
}

// Unwrap returns the underlying type, stripping one layer of Optional, or
// t itself if it is not optional.
func Unwrap(t Type) Type {
	if o, ok := t.(*Optional); ok {
		return o.Inner
	}
	return t
}

// IsOptional reports whether t is wrapped in Optional.
func IsOptional(t Type) bool {
	_, ok := t.(*Optional)
	return ok
}

// Meta wraps a type used as a value (the class/value/protocol/enum itself,
// not an instance of it) — the type-as-value modifier.
type Meta struct {
	Inner Type
}

func (m *Meta) String() string { return "🔡" + m.Inner.String() }
func (m *Meta) Equals(t Type) bool {
	ot, ok := t.(*Meta)
	return ok && m.Inner.Equals(ot.Inner)
}
func (m *Meta) ResolveOn(context Type) Type { return &Meta{Inner: m.Inner.ResolveOn(context)} }

// Error is a value that is either a success of type Payload or an error
// whose tag is a value of enum Enum.
type Error struct {
	Enum    Ref
	Payload Type
}

func (e *Error) String() string { return "🚨" + e.Enum.String() + "," + e.Payload.String() }
func (e *Error) Equals(t Type) bool {
	ot, ok := t.(*Error)
	return ok && e.Enum.Equals(ot.Enum) && e.Payload.Equals(ot.Payload)
}
func (e *Error) ResolveOn(context Type) Type {
	return &Error{Enum: e.Enum, Payload: e.Payload.ResolveOn(context)}
}

// IsError reports whether t is an Error type.
func IsError(t Type) (*Error, bool) {
	e, ok := t.(*Error)
	return e, ok
}

func withArgs(name string, args []Type) string {
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s🐚%s", name, strings.Join(parts, ","))
}

func resolveArgs(args []Type, context Type) []Type {
	out := make([]Type, len(args))
	for i, a := range args {
		out[i] = a.ResolveOn(context)
	}
	return out
}

func sliceEquals(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}
