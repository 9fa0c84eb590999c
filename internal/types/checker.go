package types

// Variance records whether a class's generic parameter was declared
// covariant, contravariant, or invariant — it governs whether
// Box🐚Cat is compatible to Box🐚Animal.
type Variance int

const (
	Invariant Variance = iota
	Covariant
	Contravariant
)

// Resolver is the dependency-inversion seam that lets Checker.CompatibleTo
// answer inheritance and conformance questions without internal/types
// importing internal/registry: a Ref is resolvable back to its declaration
// only through this interface. internal/registry.Registry implements it.
type Resolver interface {
	// Superclass returns the direct superclass of the class named by ref,
	// or ok=false if ref names a class with no superclass (or isn't a class).
	Superclass(ref Ref) (Ref, bool)
	// Conforms reports whether the class or value type named by ref
	// declares conformance (directly or transitively) to the protocol
	// named by proto.
	Conforms(ref Ref, proto Ref) bool
	// GenericVariance returns the declared variance of generic parameter
	// index of the class/value/protocol named by ref.
	GenericVariance(ref Ref, index int) Variance
	// IsProtocolOptional reports whether the protocol named by ref was
	// declared with the optional-conformance modifier.
	IsProtocolOptional(ref Ref) bool
}

// Checker carries the Resolver and exposes the compatibleTo relation. It is
// constructed once per CompilerSession and threaded explicitly rather than
// reached for as a package global, per the "no singleton" design note.
type Checker struct {
	Resolver Resolver
}

// NewChecker builds a Checker over the given resolver.
func NewChecker(r Resolver) *Checker {
	return &Checker{Resolver: r}
}

// CompatibleTo reports whether a value of type from may be used where a
// value of type to is expected — the 👆 relation. It is
// reflexive and transitive by construction (every recursive call strictly
// decreases either the optional-depth or the declaration distance walked),
// which is what the reflexivity/transitivity property tests in checker_test
// exercise.
func (c *Checker) CompatibleTo(from, to Type) bool {
	if to == nil || from == nil {
		return false
	}

	// ⬛ accepts anything.
	if _, ok := to.(*Something); ok {
		return true
	}

	// 🚫 is compatible to optional(U) for any U, and to itself.
	if _, ok := from.(*Nothingness); ok {
		if _, ok := to.(*Optional); ok {
			return true
		}
		_, ok := to.(*Nothingness)
		return ok
	}

	// T <: optional(U) when T <: U, including T itself already optional.
	if toOpt, ok := to.(*Optional); ok {
		if fromOpt, ok := from.(*Optional); ok {
			return c.CompatibleTo(fromOpt.Inner, toOpt.Inner)
		}
		return c.CompatibleTo(from, toOpt.Inner)
	}
	// A bare optional is never compatible to a non-optional, non-Something to.
	if _, ok := from.(*Optional); ok {
		return false
	}

	if fromErr, ok := from.(*Error); ok {
		toErr, ok := to.(*Error)
		if !ok {
			return false
		}
		return fromErr.Enum.Equals(toErr.Enum) && c.CompatibleTo(fromErr.Payload, toErr.Payload)
	}

	switch toT := to.(type) {
	case *Primitive:
		fromT, ok := from.(*Primitive)
		return ok && fromT.Kind == toT.Kind

	case *SomeObject:
		switch from.(type) {
		case *ClassInstance, *SomeObject:
			return true
		default:
			return false
		}

	case *ClassInstance:
		fromT, ok := from.(*ClassInstance)
		if !ok {
			return false
		}
		return c.classCompatible(fromT, toT)

	case *ValueInstance:
		fromT, ok := from.(*ValueInstance)
		if !ok || !fromT.RefVal.Equals(toT.RefVal) {
			return false
		}
		return c.argsCompatible(toT.RefVal, fromT.Args, toT.Args)

	case *EnumInstance:
		fromT, ok := from.(*EnumInstance)
		return ok && fromT.RefVal.Equals(toT.RefVal)

	case *ProtocolInstance:
		return c.conformsTo(from, toT)

	case *MultiProtocol:
		for _, p := range toT.Protocols {
			if !c.conformsTo(from, p) {
				return false
			}
		}
		return true

	case *Callable:
		fromT, ok := from.(*Callable)
		if !ok || len(fromT.Params) != len(toT.Params) {
			return false
		}
		// Parameters are contravariant: to's param must be acceptable
		// where from's param is expected.
		for i := range toT.Params {
			if !c.CompatibleTo(toT.Params[i], fromT.Params[i]) {
				return false
			}
		}
		// Return is covariant.
		return c.CompatibleTo(fromT.Return, toT.Return)

	case *GenericVariable:
		fromT, ok := from.(*GenericVariable)
		return ok && fromT.Equals(toT)

	case *Meta:
		fromT, ok := from.(*Meta)
		return ok && fromT.Inner.Equals(toT.Inner)
	}

	return from.Equals(to)
}

func (c *Checker) classCompatible(from *ClassInstance, to *ClassInstance) bool {
	if from.RefVal.Equals(to.RefVal) {
		return c.argsCompatible(to.RefVal, from.Args, to.Args)
	}
	if c.Resolver == nil {
		return false
	}
	super, ok := c.Resolver.Superclass(from.RefVal)
	if !ok {
		return false
	}
	promoted := &ClassInstance{RefVal: super, Args: from.Args}
	return c.classCompatible(promoted, to)
}

func (c *Checker) argsCompatible(owner Ref, from, to []Type) bool {
	if len(from) != len(to) {
		return false
	}
	for i := range from {
		variance := Invariant
		if c.Resolver != nil {
			variance = c.Resolver.GenericVariance(owner, i)
		}
		switch variance {
		case Covariant:
			if !c.CompatibleTo(from[i], to[i]) {
				return false
			}
		case Contravariant:
			if !c.CompatibleTo(to[i], from[i]) {
				return false
			}
		default:
			if !from[i].Equals(to[i]) {
				return false
			}
		}
	}
	return true
}

func (c *Checker) conformsTo(from Type, proto *ProtocolInstance) bool {
	var ownerRef Ref
	switch f := from.(type) {
	case *ClassInstance:
		ownerRef = f.RefVal
	case *ValueInstance:
		ownerRef = f.RefVal
	case *ProtocolInstance:
		if f.RefVal.Equals(proto.RefVal) {
			return c.argsCompatible(proto.RefVal, f.Args, proto.Args)
		}
		return false
	case *MultiProtocol:
		for _, fp := range f.Protocols {
			if c.conformsTo(fp, proto) {
				return true
			}
		}
		return false
	default:
		return false
	}
	if c.Resolver == nil {
		return false
	}
	return c.Resolver.Conforms(ownerRef, proto.RefVal)
}

// CommonTypeFinder accumulates a sequence of types (e.g. the branches of an
// if/else expression, or a list literal's elements) and produces their
// smallest common compatible type, the way the original compiler's
// CommonTypeFinder does for array and dictionary literals.
type CommonTypeFinder struct {
	checker  *Checker
	current  Type
	conflict bool
}

// NewCommonTypeFinder starts a finder over checker's compatibility relation.
func NewCommonTypeFinder(checker *Checker) *CommonTypeFinder {
	return &CommonTypeFinder{checker: checker}
}

// Add folds t into the running common type.
func (f *CommonTypeFinder) Add(t Type) {
	if f.current == nil {
		f.current = t
		return
	}
	if f.checker.CompatibleTo(t, f.current) {
		return
	}
	if f.checker.CompatibleTo(f.current, t) {
		f.current = t
		return
	}
	// Neither direction fits: fall back to the object top if both sides
	// are class instances, else flag a conflict for the caller to report.
	if _, ok := f.current.(*ClassInstance); ok {
		if _, ok := t.(*ClassInstance); ok {
			f.current = TSomeObject
			return
		}
	}
	f.conflict = true
	f.current = TSomething
}

// CommonType returns the accumulated type, and false if Add ever saw two
// mutually-incompatible candidates (the caller should report TYP001).
func (f *CommonTypeFinder) CommonType() (Type, bool) {
	if f.current == nil {
		return TSomething, true
	}
	return f.current, !f.conflict
}
