package reporter

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/types"
)

func TestReport_ClassWithMethodAndSuperclass(t *testing.T) {
	reg := registry.New()
	animalRef := types.Ref{Package: "🌍", Name: "Animal"}
	if rep := reg.Declare(&registry.Declaration{Kind: registry.KindClass, Ref: animalRef}); rep != nil {
		t.Fatalf("unexpected declare error: %v", rep)
	}

	catRef := types.Ref{Package: "🌍", Name: "Cat"}
	catDecl := &registry.Declaration{Kind: registry.KindClass, Ref: catRef, Superclass: &animalRef}
	if rep := reg.Declare(catDecl); rep != nil {
		t.Fatalf("unexpected declare error: %v", rep)
	}
	catDecl.Methods["🔊"] = &registry.Method{
		Name:   "🔊",
		Params: []types.Type{&types.Primitive{Kind: types.Integer}},
		Return: &types.Optional{Inner: &types.Primitive{Kind: types.Boolean}},
	}

	doc := Report(reg, "🌍")

	if len(doc.Classes) != 2 {
		t.Fatalf("expected 2 classes, got %d", len(doc.Classes))
	}
	var cat *ClassDoc
	for i := range doc.Classes {
		if doc.Classes[i].Name == "Cat" {
			cat = &doc.Classes[i]
		}
	}
	if cat == nil {
		t.Fatal("expected a Cat class entry")
	}
	if cat.Superclass == nil || cat.Superclass.Name != "Animal" {
		t.Errorf("expected Cat's superclass to be reported as Animal, got %+v", cat.Superclass)
	}
	if len(cat.Methods) != 1 || cat.Methods[0].Name != "🔊" {
		t.Fatalf("expected one 🔊 method, got %+v", cat.Methods)
	}
	if !cat.Methods[0].ReturnType.Optional {
		t.Error("expected the 🍬 return type to be reported as optional")
	}
	if len(cat.Methods[0].Arguments) != 1 || cat.Methods[0].Arguments[0].Name != "a" {
		t.Errorf("unexpected arguments: %+v", cat.Methods[0].Arguments)
	}

	if _, err := json.Marshal(doc); err != nil {
		t.Fatalf("expected doc to marshal cleanly: %v", err)
	}
}

func TestReport_EnumValuesAndProtocolMethods(t *testing.T) {
	reg := registry.New()
	suitRef := types.Ref{Package: "🌍", Name: "Suit"}
	if rep := reg.Declare(&registry.Declaration{Kind: registry.KindEnum, Ref: suitRef, EnumValues: []string{"♠️", "♥️"}}); rep != nil {
		t.Fatalf("unexpected declare error: %v", rep)
	}

	protoRef := types.Ref{Package: "🌍", Name: "Greeter"}
	protoDecl := &registry.Declaration{Kind: registry.KindProtocol, Ref: protoRef}
	if rep := reg.Declare(protoDecl); rep != nil {
		t.Fatalf("unexpected declare error: %v", rep)
	}
	protoDecl.Methods["👋"] = &registry.Method{Name: "👋", Return: &types.Nothingness{}}

	doc := Report(reg, "🌍")

	if len(doc.Enums) != 1 || len(doc.Enums[0].Values) != 2 {
		t.Fatalf("unexpected enums: %+v", doc.Enums)
	}
	if len(doc.Protocols) != 1 || len(doc.Protocols[0].Methods) != 1 {
		t.Fatalf("unexpected protocols: %+v", doc.Protocols)
	}
}

func TestReport_FiltersOtherPackages(t *testing.T) {
	reg := registry.New()
	if rep := reg.Declare(&registry.Declaration{Kind: registry.KindClass, Ref: types.Ref{Package: "🌍", Name: "Local"}}); rep != nil {
		t.Fatalf("unexpected declare error: %v", rep)
	}
	if rep := reg.Declare(&registry.Declaration{Kind: registry.KindClass, Ref: types.Ref{Package: "standard", Name: "Foreign"}}); rep != nil {
		t.Fatalf("unexpected declare error: %v", rep)
	}

	doc := Report(reg, "🌍")

	if len(doc.Classes) != 1 || doc.Classes[0].Name != "Local" {
		t.Fatalf("expected only the 🌍 package's class, got %+v", doc.Classes)
	}
}

func TestReport_EmptyPackageProducesEmptyDocument(t *testing.T) {
	reg := registry.New()

	got := Report(reg, "🌍")
	want := &Document{Classes: []ClassDoc{}, Enums: []EnumDoc{}, Protocols: []ProtocolDoc{}}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unexpected document for an empty package (-want +got):\n%s", diff)
	}
}
