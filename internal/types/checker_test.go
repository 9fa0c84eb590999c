package types

import "testing"

// fakeResolver is a tiny in-test Resolver standing in for internal/registry.
type fakeResolver struct {
	supers    map[Ref]Ref
	conforms  map[Ref]map[Ref]bool
	variances map[Ref]map[int]Variance
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		supers:    map[Ref]Ref{},
		conforms:  map[Ref]map[Ref]bool{},
		variances: map[Ref]map[int]Variance{},
	}
}

func (f *fakeResolver) Superclass(ref Ref) (Ref, bool) {
	s, ok := f.supers[ref]
	return s, ok
}

func (f *fakeResolver) Conforms(ref Ref, proto Ref) bool {
	m, ok := f.conforms[ref]
	return ok && m[proto]
}

func (f *fakeResolver) GenericVariance(ref Ref, index int) Variance {
	m, ok := f.variances[ref]
	if !ok {
		return Invariant
	}
	return m[index]
}

func (f *fakeResolver) IsProtocolOptional(ref Ref) bool { return false }

func ref(name string) Ref { return Ref{Package: "🌍", Name: name} }

func TestCompatibleTo_ReflexiveForPrimitives(t *testing.T) {
	c := NewChecker(newFakeResolver())
	candidates := []Type{TInteger, TDouble, TBoolean, TSymbol, TByte, TNothingness, TSomething, TSomeObject}
	for _, cand := range candidates {
		if !c.CompatibleTo(cand, cand) {
			t.Errorf("%s is not compatible with itself", cand.String())
		}
	}
}

func TestCompatibleTo_NothingnessIntoOptional(t *testing.T) {
	c := NewChecker(newFakeResolver())
	opt := &Optional{Inner: TInteger}
	if !c.CompatibleTo(TNothingness, opt) {
		t.Error("🚫 should be compatible to optional(🚂)")
	}
	if c.CompatibleTo(opt, TInteger) {
		t.Error("optional(🚂) should not be compatible to bare 🚂")
	}
}

func TestCompatibleTo_ClassInheritance(t *testing.T) {
	r := newFakeResolver()
	animal := ref("Animal")
	cat := ref("Cat")
	r.supers[cat] = animal

	c := NewChecker(r)
	catT := &ClassInstance{RefVal: cat}
	animalT := &ClassInstance{RefVal: animal}

	if !c.CompatibleTo(catT, animalT) {
		t.Error("Cat should be compatible to Animal")
	}
	if c.CompatibleTo(animalT, catT) {
		t.Error("Animal should not be compatible to Cat")
	}
}

func TestCompatibleTo_TransitiveInheritance(t *testing.T) {
	r := newFakeResolver()
	thing := ref("Thing")
	animal := ref("Animal")
	cat := ref("Cat")
	r.supers[cat] = animal
	r.supers[animal] = thing

	c := NewChecker(r)
	catT := &ClassInstance{RefVal: cat}
	thingT := &ClassInstance{RefVal: thing}

	if !c.CompatibleTo(catT, thingT) {
		t.Error("Cat should be transitively compatible to Thing through Animal")
	}
}

func TestCompatibleTo_CovariantGenericArgs(t *testing.T) {
	r := newFakeResolver()
	animal := ref("Animal")
	cat := ref("Cat")
	box := ref("Box")
	r.supers[cat] = animal
	r.variances[box] = map[int]Variance{0: Covariant}

	c := NewChecker(r)
	boxCat := &ClassInstance{RefVal: box, Args: []Type{&ClassInstance{RefVal: cat}}}
	boxAnimal := &ClassInstance{RefVal: box, Args: []Type{&ClassInstance{RefVal: animal}}}

	if !c.CompatibleTo(boxCat, boxAnimal) {
		t.Error("Box🐚Cat should be compatible to Box🐚Animal when the slot is covariant")
	}
}

func TestCompatibleTo_InvariantGenericArgsRejectsSubtype(t *testing.T) {
	r := newFakeResolver()
	animal := ref("Animal")
	cat := ref("Cat")
	box := ref("Box")
	r.supers[cat] = animal

	c := NewChecker(r)
	boxCat := &ClassInstance{RefVal: box, Args: []Type{&ClassInstance{RefVal: cat}}}
	boxAnimal := &ClassInstance{RefVal: box, Args: []Type{&ClassInstance{RefVal: animal}}}

	if c.CompatibleTo(boxCat, boxAnimal) {
		t.Error("invariant generic slot should reject Box🐚Cat -> Box🐚Animal")
	}
}

func TestCompatibleTo_ProtocolConformance(t *testing.T) {
	r := newFakeResolver()
	cat := ref("Cat")
	purrer := ref("Purrer")
	r.conforms[cat] = map[Ref]bool{purrer: true}

	c := NewChecker(r)
	catT := &ClassInstance{RefVal: cat}
	purrerT := &ProtocolInstance{RefVal: purrer}

	if !c.CompatibleTo(catT, purrerT) {
		t.Error("Cat should be compatible to protocol Purrer when it conforms")
	}
}

func TestCompatibleTo_ErrorTypes(t *testing.T) {
	c := NewChecker(newFakeResolver())
	enumA := ref("ErrA")
	enumB := ref("ErrB")
	e1 := &Error{Enum: enumA, Payload: TInteger}
	e2 := &Error{Enum: enumA, Payload: TInteger}
	e3 := &Error{Enum: enumB, Payload: TInteger}

	if !c.CompatibleTo(e1, e2) {
		t.Error("identical error types should be compatible")
	}
	if c.CompatibleTo(e1, e3) {
		t.Error("error types with different enums should not be compatible")
	}
}

func TestCompatibleTo_CallableContravariantParamsCovariantReturn(t *testing.T) {
	r := newFakeResolver()
	animal := ref("Animal")
	cat := ref("Cat")
	r.supers[cat] = animal
	c := NewChecker(r)

	// 🍡(Animal)Cat should be compatible to 🍡(Cat)Animal: caller supplies
	// a Cat (accepted since params accept Animal), and gets back at least
	// an Animal (satisfied since the real return is the narrower Cat).
	from := &Callable{Params: []Type{&ClassInstance{RefVal: animal}}, Return: &ClassInstance{RefVal: cat}}
	to := &Callable{Params: []Type{&ClassInstance{RefVal: cat}}, Return: &ClassInstance{RefVal: animal}}

	if !c.CompatibleTo(from, to) {
		t.Error("callable should be compatible under contravariant params / covariant return")
	}
	if c.CompatibleTo(to, from) {
		t.Error("reverse direction should not hold")
	}
}

func TestCompatibleTo_SomethingIsTop(t *testing.T) {
	c := NewChecker(newFakeResolver())
	candidates := []Type{TInteger, TNothingness, TSomeObject, &ClassInstance{RefVal: ref("X")}}
	for _, cand := range candidates {
		if !c.CompatibleTo(cand, TSomething) {
			t.Errorf("%s should be compatible to ⬛", cand.String())
		}
	}
}

func TestResolveOn_SubstitutesGenericVariable(t *testing.T) {
	box := ref("Box")
	v := &GenericVariable{Owner: box, Index: 0, Name: "🐚0"}
	context := &ClassInstance{RefVal: box, Args: []Type{TInteger}}

	resolved := v.ResolveOn(context)
	if !resolved.Equals(TInteger) {
		t.Errorf("expected 🚂, got %s", resolved.String())
	}
}

func TestResolveOn_Idempotent(t *testing.T) {
	box := ref("Box")
	context := &ClassInstance{RefVal: box, Args: []Type{TInteger}}
	ct := &ClassInstance{RefVal: ref("Other"), Args: []Type{&GenericVariable{Owner: box, Index: 0, Name: "🐚0"}}}

	once := ct.ResolveOn(context)
	twice := once.ResolveOn(context)
	if !once.Equals(twice) {
		t.Error("ResolveOn should be idempotent once no free variables remain")
	}
}

func TestCommonTypeFinder_ClassesFallBackToSomeObject(t *testing.T) {
	r := newFakeResolver()
	c := NewChecker(r)
	f := NewCommonTypeFinder(c)
	f.Add(&ClassInstance{RefVal: ref("Cat")})
	f.Add(&ClassInstance{RefVal: ref("Dog")})

	common, ok := f.CommonType()
	if !ok {
		t.Fatal("unrelated classes should not be reported as a conflict, just widen to ⬜")
	}
	if !common.Equals(TSomeObject) {
		t.Errorf("expected ⬜, got %s", common.String())
	}
}

func TestCommonTypeFinder_NarrowsToSharedSupertype(t *testing.T) {
	r := newFakeResolver()
	animal := ref("Animal")
	cat := ref("Cat")
	r.supers[cat] = animal

	c := NewChecker(r)
	f := NewCommonTypeFinder(c)
	f.Add(&ClassInstance{RefVal: animal})
	f.Add(&ClassInstance{RefVal: cat})

	common, ok := f.CommonType()
	if !ok {
		t.Fatal("unexpected conflict")
	}
	if !common.Equals(&ClassInstance{RefVal: animal}) {
		t.Errorf("expected Animal, got %s", common.String())
	}
}
