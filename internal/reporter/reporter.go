// Package reporter builds the machine-readable package interface document
// emitted by `-json`. The original compiler's Reporter.cpp walks the
// class/enum/protocol registers and prints JSON directly; this package
// instead builds a plain struct tree and lets encoding/json do the
// rendering, sorted and deterministic by construction. Nothing here calls
// fmt.Print; Document is marshaled by its caller.
package reporter

import (
	"sort"

	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/types"
)

// Document is the top-level §6 interface document for one package.
type Document struct {
	Classes   []ClassDoc    `json:"classes"`
	Enums     []EnumDoc     `json:"enums"`
	Protocols []ProtocolDoc `json:"protocols"`
}

// TypeRef is the {"package","name","optional"} shape Reporter.cpp's
// reportType prints for every typed position.
type TypeRef struct {
	Package  string `json:"package"`
	Name     string `json:"name"`
	Optional bool   `json:"optional"`
}

// Parameter is one argument of a ProcedureDoc's signature.
type Parameter struct {
	Name string  `json:"name"`
	Type TypeRef `json:"type"`
}

// ProcedureDoc documents one method, initializer, or type method.
type ProcedureDoc struct {
	Name                 string      `json:"name"`
	ReturnType           *TypeRef    `json:"returnType,omitempty"`
	CanReturnNothingness bool        `json:"canReturnNothingness,omitempty"`
	Arguments            []Parameter `json:"arguments"`
}

// ClassDoc documents one declared class.
type ClassDoc struct {
	Name         string         `json:"name"`
	Superclass   *TypeRef       `json:"superclass,omitempty"`
	Methods      []ProcedureDoc `json:"methods"`
	Initializers []ProcedureDoc `json:"initializers"`
	ClassMethods []ProcedureDoc `json:"classMethods"`
	ConformsTo   []TypeRef      `json:"conformsTo"`
}

// EnumDoc documents one declared enum.
type EnumDoc struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// ProtocolDoc documents one declared protocol.
type ProtocolDoc struct {
	Name    string         `json:"name"`
	Methods []ProcedureDoc `json:"methods"`
}

// Report walks every declaration reg holds for packageName and builds the
// document a caller marshals with encoding/json. Declarations are visited
// in name-sorted order and methods are sorted by name, so the emitted JSON
// is stable across runs; conformances and enum values keep their
// declaration order.
func Report(reg *registry.Registry, packageName string) *Document {
	doc := &Document{
		Classes:   []ClassDoc{},
		Enums:     []EnumDoc{},
		Protocols: []ProtocolDoc{},
	}
	decls := reg.Declarations()
	sort.Slice(decls, func(i, j int) bool { return decls[i].Ref.Name < decls[j].Ref.Name })

	for _, decl := range decls {
		if decl.Ref.Package != packageName {
			continue
		}
		switch decl.Kind {
		case registry.KindClass, registry.KindValue:
			doc.Classes = append(doc.Classes, reportClass(decl))
		case registry.KindEnum:
			doc.Enums = append(doc.Enums, reportEnum(decl))
		case registry.KindProtocol:
			doc.Protocols = append(doc.Protocols, reportProtocol(decl))
		}
	}
	return doc
}

func reportClass(decl *registry.Declaration) ClassDoc {
	cd := ClassDoc{
		Name:         decl.Ref.Name,
		Methods:      reportProcedures(decl.Methods, false),
		Initializers: reportInitializers(decl.Initializers),
		ClassMethods: reportProcedures(decl.TypeMethods, false),
		ConformsTo:   []TypeRef{},
	}
	if decl.Superclass != nil {
		cd.Superclass = &TypeRef{Package: decl.Superclass.Package, Name: decl.Superclass.Name}
	}
	for _, ref := range decl.Conformances {
		cd.ConformsTo = append(cd.ConformsTo, TypeRef{Package: ref.Package, Name: ref.Name})
	}
	return cd
}

func reportEnum(decl *registry.Declaration) EnumDoc {
	values := append([]string{}, decl.EnumValues...)
	return EnumDoc{Name: decl.Ref.Name, Values: values}
}

func reportProtocol(decl *registry.Declaration) ProtocolDoc {
	return ProtocolDoc{Name: decl.Ref.Name, Methods: reportProcedures(decl.Methods, false)}
}

// reportProcedures renders methods/classMethods, which always report a
// returnType (Reporter.cpp's Return manner).
func reportProcedures(methods map[string]*registry.Method, canReturnNothingness bool) []ProcedureDoc {
	names := make([]string, 0, len(methods))
	for name := range methods {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ProcedureDoc, 0, len(names))
	for _, name := range names {
		out = append(out, reportProcedure(methods[name], true, canReturnNothingness))
	}
	return out
}

// reportInitializers renders initializers, which report canReturnNothingness
// instead of a returnType when the initializer can fail with 🍬 (Reporter.cpp's
// NoReturn/CanReturnNothingness manner).
func reportInitializers(inits map[string]*registry.Method) []ProcedureDoc {
	names := make([]string, 0, len(inits))
	for name := range inits {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]ProcedureDoc, 0, len(names))
	for _, name := range names {
		m := inits[name]
		_, isOptionalReturn := m.Return.(*types.Optional)
		out = append(out, reportProcedure(m, !isOptionalReturn, isOptionalReturn))
	}
	return out
}

func reportProcedure(m *registry.Method, includeReturn, canReturnNothingness bool) ProcedureDoc {
	pd := ProcedureDoc{Name: m.Name, Arguments: []Parameter{}}
	if includeReturn {
		ref := typeRef(m.Return)
		pd.ReturnType = &ref
	}
	pd.CanReturnNothingness = canReturnNothingness
	for i, p := range m.Params {
		pd.Arguments = append(pd.Arguments, Parameter{
			Name: argName(i),
			Type: typeRef(p),
		})
	}
	return pd
}

// argName falls back to a positional placeholder: registry.Method stores
// parameter types, not names (those live on the as-yet-unparsed ast.Function
// this method's owner produces), so the reporter names arguments the way a
// caller addressing them positionally would.
func argName(i int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	if i < len(letters) {
		return string(letters[i])
	}
	return "arg"
}

func typeRef(t types.Type) TypeRef {
	optional := false
	if o, ok := t.(*types.Optional); ok {
		optional = true
		t = types.Unwrap(o)
	}
	ref := TypeRef{Optional: optional, Name: t.String()}
	if p, ok := t.(types.Parameterized); ok {
		ref.Package = p.Ref().Package
		ref.Name = p.Ref().Name
	}
	return ref
}
