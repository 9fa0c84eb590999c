// Package session implements the compiler session: the top-level driver
// that owns the symbol registry and string pool for one package
// compilation and runs the seven-phase pipeline — register names, resolve
// signatures, parse bodies, analyse, memory-flow, synthesise boxing
// layers, and (via GenerateWith, once a caller supplies a concrete
// internal/builder.Builder) generate code.
//
// No package-level singleton holds any of this state (Design Note 9,
// "no global registry"); every field lives on a Session value the caller
// constructs explicitly.
package session

import (
	"github.com/emojicode/ecc/internal/analyser"
	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/boxing"
	"github.com/emojicode/ecc/internal/builder"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/codegen"
	"github.com/emojicode/ecc/internal/memflow"
	"github.com/emojicode/ecc/internal/parser"
	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/scope"
	"github.com/emojicode/ecc/internal/token"
	"github.com/emojicode/ecc/internal/types"
)

// Session drives one package's compilation. It is not safe for concurrent
// use, matching scope.Tracker's own note.
type Session struct {
	PackageName string
	Namespace   string

	Registry *registry.Registry
	Strings  *StringPool

	// StartingFunction is the package's 🏁 entry point, set at most once
	// during phase 2; SEM002 is reported on a second sighting.
	StartingFunction *ast.Function

	// BestEffort, when true (the default New gives), records a failing
	// function's errors and continues with its siblings rather than
	// aborting the whole package at the first one.
	BestEffort bool

	sink *cerrors.Sink
}

// New builds a Session for one package named packageName, declared under
// namespace (a single glyph).
func New(packageName, namespace string) *Session {
	return &Session{
		PackageName: packageName,
		Namespace:   namespace,
		Registry:    registry.New(),
		Strings:     NewStringPool(),
		BestEffort:  true,
		sink:        &cerrors.Sink{},
	}
}

// Result is CompilePackage's outcome: every diagnostic filed, plus every
// function that reached a generatable state.
type Result struct {
	Errors       []*cerrors.Report
	Warnings     []*cerrors.Report
	Functions    []*ast.Function
	BoxingLayers []*boxing.Layer
}

// Success reports whether compilation produced zero errors (warnings don't
// block codegen eligibility).
func (r *Result) Success() bool { return len(r.Errors) == 0 }

// declaredBody pairs a parsed skeleton with the Ref the registry assigned
// it, carried from phase 1 into phase 2.
type declaredBody struct {
	body *parser.ClassBody
	ref  types.Ref
}

// pendingFunction pairs a signature-resolved Function with the raw body
// tokens phase 3 replays through internal/parser/body.go's BodyParser.
type pendingFunction struct {
	fn         *ast.Function
	bodyTokens []token.Token
}

// CompilePackage drives phases 1 to 6 over files, all of which belong to
// the same package; phase 7 (code-gen) runs separately through
// GenerateWith.
func (s *Session) CompilePackage(files []*token.SourceFile) *Result {
	result := &Result{}

	bodies := s.registerNames(files)
	s.Strings.Freeze()
	if s.sink.HasErrors() {
		return s.finish(result)
	}

	pendingFns := s.resolveSignatures(bodies)
	s.checkRegistryInvariants()
	if s.sink.HasErrors() {
		return s.finish(result)
	}

	checker := types.NewChecker(s.Registry)
	for _, pf := range pendingFns {
		ok := s.compileFunctionBody(checker, pf)
		if ok {
			result.Functions = append(result.Functions, pf.fn)
			continue
		}
		if !s.BestEffort {
			return s.finish(result)
		}
	}
	if s.sink.HasErrors() {
		return s.finish(result)
	}

	synth := boxing.New(s.Registry)
	result.BoxingLayers = synth.SynthesiseProtocolConformances()

	return s.finish(result)
}

// GenerateWith runs phase 7 (code-gen) over every function result carries,
// once the caller has a concrete internal/builder.Builder to target. It is
// a no-op — and the spec's "returning early (no codegen) if phase <=6
// produced errors" — if result already failed.
func (s *Session) GenerateWith(b builder.Builder, result *Result) {
	if !result.Success() {
		return
	}
	driver := codegen.New(b, s.Registry)
	driver.ApplyBoxingLayers(result.BoxingLayers)
	for _, fn := range result.Functions {
		driver.GenerateFunction(fn.Body)
	}
}

func (s *Session) finish(result *Result) *Result {
	result.Errors = s.sink.Errors()
	result.Warnings = s.sink.Warnings()
	return result
}

// registerNames is phase 1: every file's top-level declarations are parsed
// and declared into the registry before any signature is resolved, so no
// later phase ever observes a type before every name in the package exists.
func (s *Session) registerNames(files []*token.SourceFile) []*declaredBody {
	var bodies []*declaredBody
	var extensions []*parser.ClassBody

	for _, f := range files {
		p := parser.New(f.Stream, s.Registry, s.PackageName, s.sink)
		for _, b := range p.ParsePackage() {
			if b.IsExtension {
				extensions = append(extensions, b)
				continue
			}
			ref := types.Ref{Package: s.PackageName, Namespace: s.Namespace, Name: b.Name}
			decl := &registry.Declaration{
				Kind:       b.Kind,
				Ref:        ref,
				EnumValues: b.EnumValues,
				Exported:   true,
			}
			for _, name := range b.GenericNames {
				decl.Generics = append(decl.Generics, registry.GenericParam{Name: name})
			}
			if rep := s.Registry.Declare(decl); rep != nil {
				s.sink.Report(rep)
				continue
			}
			bodies = append(bodies, &declaredBody{body: b, ref: ref})
		}
	}

	// A 🐋 extension targets an already-declared class; it never introduces
	// a new Ref, only Members merged against the existing one in phase 2.
	for _, ext := range extensions {
		ref, ok := s.findDeclaredRef(ext.Name)
		if !ok {
			s.sink.Report(cerrors.Newf(cerrors.NAM001, cerrors.PhaseName, token.Pos{},
				"class extension targets unknown class %s", ext.Name))
			continue
		}
		bodies = append(bodies, &declaredBody{body: ext, ref: ref})
	}

	return bodies
}

// resolveSignatures is phase 2: every skeleton's superclass, conformances,
// and member signatures are parsed into concrete types.Type values now
// that every name in the package is registered.
func (s *Session) resolveSignatures(bodies []*declaredBody) []*pendingFunction {
	var pending []*pendingFunction
	tp := registry.NewTypeParser(s.Registry)

	for _, db := range bodies {
		decl := s.Registry.MustLookup(db.ref)
		genericNames := make([]string, len(decl.Generics))
		for i, g := range decl.Generics {
			genericNames[i] = g.Name
		}
		genScope := &registry.GenericScope{Owner: db.ref, Params: genericNames}

		if db.body.SuperclassRaw != "" {
			if superRef, ok := s.findDeclaredRef(db.body.SuperclassRaw); ok {
				decl.Superclass = &superRef
			} else {
				s.sink.Report(cerrors.Newf(cerrors.NAM001, cerrors.PhaseName, decl.Pos,
					"unknown superclass %s", db.body.SuperclassRaw))
			}
		}

		for _, m := range db.body.Members {
			switch m.Kind {
			case parser.MemberConformance:
				protoRef, ok := s.findDeclaredRef(m.Name)
				if !ok {
					s.sink.Report(cerrors.Newf(cerrors.NAM001, cerrors.PhaseName, m.Pos, "unknown protocol %s", m.Name))
					continue
				}
				decl.Conformances = append(decl.Conformances, protoRef)

			case parser.MemberInstanceVariable:
				// Instance variables don't widen the method table; the
				// declared type is only consumed once the analyser resolves
				// 🐕 member access, out of this repository's scope (no
				// instance-variable storage model exists downstream of the
				// registry).

			case parser.MemberMethod, parser.MemberTypeMethod, parser.MemberInitializer:
				method, rep := s.resolveMethodSignature(tp, genScope, m)
				if rep != nil {
					s.sink.Report(rep)
					continue
				}
				s.registerMethod(decl, m, method)
				pending = append(pending, s.buildPendingFunction(db.ref, m, method))
			}
		}
	}
	return pending
}

func (s *Session) registerMethod(decl *registry.Declaration, m parser.Member, method *registry.Method) {
	switch m.Kind {
	case parser.MemberInitializer:
		decl.Initializers[m.Name] = method
		if m.Modifiers.Required {
			decl.RequiredInits[m.Name] = true
		}
	case parser.MemberTypeMethod:
		method.IsTypeMethod = true
		decl.TypeMethods[m.Name] = method
	default:
		decl.Methods[m.Name] = method
	}
}

func (s *Session) buildPendingFunction(owner types.Ref, m parser.Member, method *registry.Method) *pendingFunction {
	fn := &ast.Function{
		Name:          m.Name,
		Owner:         owner,
		IsTypeMethod:  m.Kind == parser.MemberTypeMethod,
		IsInitializer: m.Kind == parser.MemberInitializer,
		Final:         m.Modifiers.Final,
		ReturnType:    method.Return,
		Pos:           m.Pos,
	}
	for i, name := range m.ParamNames {
		if i < len(method.Params) {
			fn.Params = append(fn.Params, ast.Parameter{Name: name, Type: method.Params[i]})
		}
	}
	if errT, ok := types.IsError(method.Return); ok {
		enum := errT.Enum
		fn.ErrorEnum = &enum
		fn.ErrorPayload = errT.Payload
	}

	if m.Modifiers.IsStarting {
		if s.StartingFunction != nil {
			s.sink.Report(cerrors.New(cerrors.SEM002, cerrors.PhaseSemantic, m.Pos,
				"more than one 🏁 starting-flag method declared"))
		} else {
			s.StartingFunction = fn
		}
	}

	return &pendingFunction{fn: fn, bodyTokens: m.BodyTokens}
}

func (s *Session) resolveMethodSignature(tp *registry.TypeParser, genScope *registry.GenericScope, m parser.Member) (*registry.Method, *cerrors.Report) {
	params := make([]types.Type, len(m.Params))
	for i, pe := range m.Params {
		t, rep := tp.Parse(pe, genScope, registry.AllowGenericVars)
		if rep != nil {
			return nil, rep
		}
		params[i] = t
	}

	ret := types.Type(types.TNothingness)
	if m.TypeExpr != nil {
		t, rep := tp.Parse(m.TypeExpr, genScope, registry.AllowGenericVars)
		if rep != nil {
			return nil, rep
		}
		if t != nil {
			ret = t
		}
	}

	return &registry.Method{
		Name:       m.Name,
		Params:     params,
		Return:     ret,
		Final:      m.Modifiers.Final,
		Overriding: m.Modifiers.Override,
		Deprecated: m.Modifiers.Deprecated,
		Access:     m.Modifiers.Access,
		Pos:        m.Pos,
	}, nil
}

// findDeclaredRef resolves a bare name against every declaration
// registered so far in this Session, the way a superclass/conformance name
// is written in-language without its package/namespace prefix.
func (s *Session) findDeclaredRef(name string) (types.Ref, bool) {
	for _, d := range s.Registry.Declarations() {
		if d.Ref.Name == name {
			return d.Ref, true
		}
	}
	return types.Ref{}, false
}

func (s *Session) checkRegistryInvariants() {
	for _, rep := range s.Registry.CheckInheritanceCycles() {
		s.sink.Report(rep)
	}
	for _, rep := range s.Registry.CheckOptionalProtocolConformance() {
		s.sink.Report(rep)
	}
	for _, rep := range s.Registry.CheckRequiredInitializers() {
		s.sink.Report(rep)
	}
}

// compileFunctionBody drives phases 3 to 5 for one function: replay its
// captured body tokens through a fresh BodyParser, run the semantic
// analyser over the result, then the memory-flow labeller. It reports
// whether the function came out error-free (a BestEffort session keeps
// going past a false return; a non-BestEffort one stops the whole package).
func (s *Session) compileFunctionBody(checker *types.Checker, pf *pendingFunction) bool {
	before := len(s.sink.Errors())

	stream := token.NewSliceStream(pf.bodyTokens)
	body := parser.NewBodyParser(stream, s.sink).ParseBlock()
	pf.fn.Body = body

	tracker := scope.NewTracker(nil)
	params := make([]scope.Variable, len(pf.fn.Params))
	for i, p := range pf.fn.Params {
		params[i] = scope.Variable{Name: p.Name, Type: p.Type}
	}
	tracker.PushArgumentsScope(params, pf.fn.Pos)

	fnCtx := analyser.FunctionContext{
		Owner:        pf.fn.Owner,
		ReturnType:   pf.fn.ReturnType,
		ErrorEnum:    pf.fn.ErrorEnum,
		ErrorPayload: pf.fn.ErrorPayload,
	}
	an := analyser.New(checker, s.Registry, tracker, s.sink, fnCtx)
	an.AnalyseBlock(body)
	tracker.PopScope(s.sink)

	memflow.New(s.sink).AnalyseBlock(body)

	return len(s.sink.Errors()) == before
}
