// Package parser implements the declaration parser: it reads
// package-import, protocol, enum, require-binary, version, class-extension,
// class, and load-file top-level declarations from a token.Stream and
// returns skeleton ClassBody values that internal/session registers,
// deferring body parsing to a second pass (two-pass ordering).
//
// Glyph choices are grounded on the real grammar read out of
// EmojicodeCompiler/PackageParser.cpp.
package parser

import (
	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/token"
)

// Top-level declaration glyphs.
const (
	GlyphPackageImport  = "📦"
	GlyphProtocol       = "🐊"
	GlyphEnum           = "🦃"
	GlyphRequireBinary  = "📻"
	GlyphVersion        = "🔮"
	GlyphClassExtension = "🐋"
	GlyphClass          = "🐇"
	GlyphLoadFile       = "📜"
	GlyphValueType      = "🕊"

	GlyphBlockOpen  = "🍇"
	GlyphBlockClose = "🍉"

	GlyphInstanceVariable = "🍰"
	GlyphMethod           = "🐷"
	GlyphInitializer      = "🐣"
	GlyphTypeMethod       = "🐇" // static-method glyph; parseMember has no case for it, so inside a class body it is reported as unexpected
	GlyphConformance      = "🐜"

	GlyphRequired   = "🔑"
	GlyphOptional   = "🍬"
	GlyphDeprecated = "⚠️"
	GlyphFinal      = "🖊"
	GlyphProtected  = "🔏"
	GlyphPrivate    = "🔒"
	GlyphPublic     = "🔓"
	GlyphOverride   = "✒️"
	GlyphStatic     = "🐇"

	GlyphStartingFlag = "🏁"
	GlyphGenericDecl  = "🐚"
	GlyphExported     = "🌍"
)

// Parser drives the declaration-level grammar over a token.Stream. It does
// not write to reg; the session driver declares what it returns.
type Parser struct {
	stream token.Stream
	reg    *registry.Registry
	pkg    string
	sink   *cerrors.Sink
}

// New builds a Parser reading pkg's declarations from stream, filing
// diagnostics on sink.
func New(stream token.Stream, reg *registry.Registry, pkg string, sink *cerrors.Sink) *Parser {
	return &Parser{stream: stream, reg: reg, pkg: pkg, sink: sink}
}

// ParsePackage consumes top-level declarations until EOF, returning one
// skeleton ClassBody per class/protocol/value/enum/extension for the
// session driver to register (body parsing is deferred until every name
// in the package is registered).
func (p *Parser) ParsePackage() []*ClassBody {
	var bodies []*ClassBody
	for {
		tok := p.stream.Peek()
		if tok == nil || tok.Kind == token.EOF {
			break
		}
		if tok.Kind != token.IDENTIFIER {
			p.reportUnexpected(tok)
			p.stream.Consume(tok.Kind)
			continue
		}
		switch tok.Value {
		case GlyphPackageImport:
			p.parsePackageImport()
		case GlyphRequireBinary:
			p.parseRequireBinary()
		case GlyphVersion:
			p.parseVersion()
		case GlyphLoadFile:
			p.parseLoadFile()
		case GlyphProtocol:
			if b := p.parseProtocol(); b != nil {
				bodies = append(bodies, b)
			}
		case GlyphEnum:
			if b := p.parseEnum(); b != nil {
				bodies = append(bodies, b)
			}
		case GlyphValueType:
			if b := p.parseTypeDeclaration(registry.KindValue); b != nil {
				bodies = append(bodies, b)
			}
		case GlyphClass:
			if b := p.parseTypeDeclaration(registry.KindClass); b != nil {
				bodies = append(bodies, b)
			}
		case GlyphClassExtension:
			if b := p.parseClassExtension(); b != nil {
				bodies = append(bodies, b)
			}
		default:
			p.reportUnexpected(tok)
			p.stream.Consume(tok.Kind)
		}
	}
	return bodies
}

func (p *Parser) reportUnexpected(tok *token.Token) {
	pos := token.Pos{}
	val := "EOF"
	if tok != nil {
		pos = tok.Pos
		val = tok.Value
	}
	p.sink.Report(cerrors.Newf(cerrors.PAR001, cerrors.PhaseParser, pos, "unexpected token %q", val))
}

func (p *Parser) parsePackageImport() {
	p.stream.Consume(token.IDENTIFIER) // 📦
	p.stream.Consume(token.VARIABLE)   // package name
	p.stream.Consume(token.VARIABLE)   // namespace
}

func (p *Parser) parseRequireBinary() {
	p.stream.Consume(token.IDENTIFIER) // 📻
	p.stream.Consume(token.VARIABLE)
}

func (p *Parser) parseVersion() {
	p.stream.Consume(token.IDENTIFIER) // 🔮
	p.stream.Consume(token.INTEGER)    // major
	p.stream.Consume(token.INTEGER)    // minor
}

func (p *Parser) parseLoadFile() {
	p.stream.Consume(token.IDENTIFIER) // 📜
	p.stream.Consume(token.STRING)     // file path; re-entrant load handled by the session driver
}

// ClassBody carries a type declaration's skeleton, deferred for the second
// pass once every name in the package is registered. Name/Kind/GenericCount
// are enough for the session driver to call registry.Declare; resolving
// Superclass/Conformances into concrete types.Ref values happens in the
// session's name-resolution phase once every skeleton is in place.
type ClassBody struct {
	Name          string
	Kind          registry.Kind
	GenericNames  []string
	SuperclassRaw string
	EnumValues    []string
	Members       []Member
	// IsExtension marks a 🐋 class-extension body: it adds Members to an
	// already-declared class rather than introducing a new declaration, so
	// the session driver must merge it instead of calling registry.Declare.
	IsExtension bool
}

// Member is one class-body construct: instance variable, protocol
// conformance, method, initializer, or type method.
type Member struct {
	Kind       MemberKind
	Name       string
	Modifiers  Modifiers
	TypeExpr   ast.TypeExpr
	Params     []ast.TypeExpr
	ParamNames []string
	BodyTokens []token.Token // raw 🍇…🍉 body tokens, replayed by the session driver's body-parsing phase
	Pos        token.Pos
}

// MemberKind tags Member's variant.
type MemberKind int

const (
	MemberInstanceVariable MemberKind = iota
	MemberConformance
	MemberMethod
	MemberInitializer
	MemberTypeMethod
)

// Modifiers is the attribute set attached to a class-body member; each
// attribute rejects duplication.
type Modifiers struct {
	Required   bool
	CanReturnNothingness bool
	Deprecated bool
	Final      bool
	Override   bool
	Access     registry.AccessLevel
	IsStarting bool
}

func (p *Parser) parseProtocol() *ClassBody {
	name, generics := p.parseTypeDeclarationCommon()
	body := p.parseClassBody()
	if body != nil {
		body.Name, body.Kind, body.GenericNames = name, registry.KindProtocol, generics
	}
	return body
}

// parseEnum reads a 🦃 declaration, returning a ClassBody whose EnumValues
// holds each declared case name (raw-value literals, if present, are
// skipped — this repository doesn't surface backing storage values).
func (p *Parser) parseEnum() *ClassBody {
	p.stream.Consume(token.IDENTIFIER) // 🦃
	nameTok, _ := p.stream.Consume(token.VARIABLE)
	body := &ClassBody{Name: nameTok.Value, Kind: registry.KindEnum}
	p.stream.ConsumeAnyOf(GlyphBlockOpen)
	for !p.stream.PeekIs(GlyphBlockClose) {
		tok := p.stream.Peek()
		if tok == nil {
			break
		}
		if tok.Kind == token.IDENTIFIER || tok.Kind == token.VARIABLE {
			caseTok, _ := p.stream.Consume(tok.Kind)
			body.EnumValues = append(body.EnumValues, caseTok.Value)
			continue
		}
		p.stream.Consume(tok.Kind) // raw-value literal attached to the previous case
	}
	p.stream.ConsumeAnyOf(GlyphBlockClose)
	return body
}

func (p *Parser) parseClassExtension() *ClassBody {
	p.stream.Consume(token.IDENTIFIER) // 🐋
	nameTok, _ := p.stream.Consume(token.VARIABLE) // extended class name
	body := p.parseClassBody()
	if body != nil {
		body.Name, body.Kind, body.IsExtension = nameTok.Value, registry.KindClass, true
	}
	return body
}

func (p *Parser) parseTypeDeclaration(kind registry.Kind) *ClassBody {
	name, generics := p.parseTypeDeclarationCommon()
	var superclass string
	if kind == registry.KindClass && !p.stream.PeekIs(GlyphBlockOpen) {
		if t := p.stream.Peek(); t != nil && t.Kind == token.VARIABLE {
			superTok, _ := p.stream.Consume(token.VARIABLE)
			superclass = superTok.Value
			for p.stream.PeekIs(GlyphGenericDecl) {
				p.stream.Consume(token.IDENTIFIER)
				p.stream.Consume(token.VARIABLE)
			}
		}
	}
	body := p.parseClassBody()
	if body != nil {
		body.Name, body.Kind, body.GenericNames, body.SuperclassRaw = name, kind, generics, superclass
	}
	return body
}

// parseTypeDeclarationCommon consumes the leading glyph, name, and optional
// generic-parameter list (🐚) shared by class/protocol/value declarations,
// returning the declared name and its generic-parameter names so the
// session driver can build the skeleton registry.Declaration.
func (p *Parser) parseTypeDeclarationCommon() (string, []string) {
	p.stream.Consume(token.IDENTIFIER) // leading glyph
	nameTok, _ := p.stream.Consume(token.VARIABLE)
	var generics []string
	for p.stream.PeekIs(GlyphGenericDecl) {
		p.stream.Consume(token.IDENTIFIER)
		gTok, _ := p.stream.Consume(token.VARIABLE)
		generics = append(generics, gTok.Value)
	}
	return nameTok.Value, generics
}

func (p *Parser) parseClassBody() *ClassBody {
	if _, err := p.stream.ConsumeAnyOf(GlyphBlockOpen); err != nil {
		p.sink.Report(cerrors.New(cerrors.PAR002, cerrors.PhaseParser, token.Pos{}, "expected 🍇 to open declaration body"))
		return nil
	}
	body := &ClassBody{}
	for !p.stream.PeekIs(GlyphBlockClose) {
		tok := p.stream.Peek()
		if tok == nil {
			p.sink.Report(cerrors.New(cerrors.PAR002, cerrors.PhaseParser, token.Pos{}, "missing 🍉 to close declaration body"))
			return body
		}
		member, ok := p.parseMember()
		if !ok {
			break
		}
		body.Members = append(body.Members, member)
	}
	p.stream.ConsumeAnyOf(GlyphBlockClose)
	return body
}

func (p *Parser) parseMember() (Member, bool) {
	mods, startPos := p.parseModifiers()
	tok := p.stream.Peek()
	if tok == nil {
		return Member{}, false
	}
	switch tok.Value {
	case GlyphInstanceVariable:
		p.stream.Consume(token.IDENTIFIER)
		nameTok, _ := p.stream.Consume(token.VARIABLE)
		typeExpr := p.parseTypeExpr()
		return Member{Kind: MemberInstanceVariable, Name: nameTok.Value, Modifiers: mods, TypeExpr: typeExpr, Pos: startPos}, true

	case GlyphConformance:
		p.stream.Consume(token.IDENTIFIER)
		nameTok, _ := p.stream.Consume(token.VARIABLE)
		return Member{Kind: MemberConformance, Name: nameTok.Value, Modifiers: mods, Pos: startPos}, true

	case GlyphInitializer:
		p.stream.Consume(token.IDENTIFIER)
		nameTok, _ := p.stream.Consume(token.VARIABLE)
		params, paramNames, _ := p.parseSignature()
		bodyTokens := p.skipBody()
		return Member{Kind: MemberInitializer, Name: nameTok.Value, Modifiers: mods, Params: params, ParamNames: paramNames, BodyTokens: bodyTokens, Pos: startPos}, true

	case GlyphMethod:
		p.stream.Consume(token.IDENTIFIER)
		nameTok, _ := p.stream.Consume(token.VARIABLE)
		kind := MemberMethod
		if mods.IsStarting {
			kind = MemberTypeMethod
		}
		params, paramNames, ret := p.parseSignature()
		bodyTokens := p.skipBody()
		return Member{Kind: kind, Name: nameTok.Value, Modifiers: mods, Params: params, ParamNames: paramNames, TypeExpr: ret, BodyTokens: bodyTokens, Pos: startPos}, true

	default:
		p.reportUnexpected(tok)
		p.stream.Consume(tok.Kind)
		return Member{}, true
	}
}

// parseSignature reads the (name type)* parameter list and optional return
// type preceding a method/initializer body, stopping at the 🍇 that opens it.
func (p *Parser) parseSignature() ([]ast.TypeExpr, []string, ast.TypeExpr) {
	var params []ast.TypeExpr
	var names []string
	for {
		tok := p.stream.Peek()
		if tok == nil || tok.Kind != token.VARIABLE {
			break
		}
		nameTok, _ := p.stream.Consume(token.VARIABLE)
		names = append(names, nameTok.Value)
		params = append(params, p.parseTypeExpr())
	}
	var ret ast.TypeExpr
	if !p.stream.PeekIs(GlyphBlockOpen) {
		if t := p.stream.Peek(); t != nil && t.Kind != token.EOF {
			ret = p.parseTypeExpr()
		}
	}
	return params, names, ret
}

// parseTypeExpr parses one type name at a declaration site, with an
// optional trailing 🍬 marking it optional. Generic-argument lists
// on the named type are left to the type-parsing collaborator in
// internal/registry, the same way method-call argument expressions are
// left minimal in internal/parser/body.go.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	tok := p.stream.Peek()
	if tok == nil {
		return &ast.InferTypeExpr{}
	}
	if tok.Value == GlyphThis {
		p.stream.Consume(token.IDENTIFIER)
		return &ast.ThisTypeExpr{}
	}
	if tok.Kind == token.VARIABLE {
		nameTok, _ := p.stream.Consume(token.VARIABLE)
		optional := false
		if p.stream.PeekIs(GlyphOptional) {
			p.stream.Consume(token.IDENTIFIER)
			optional = true
		}
		return &ast.StaticTypeExpr{Name: nameTok.Value, Optional: optional}
	}
	p.reportUnexpected(tok)
	p.stream.Consume(tok.Kind)
	return &ast.InferTypeExpr{}
}

// parseModifiers reads the fixed attribute grammar: a repeated attribute
// is reported as PAR003. It does not check position: every recognised
// attribute is accepted before any member, and PAR004 is never reported.
func (p *Parser) parseModifiers() (Modifiers, token.Pos) {
	var mods Modifiers
	var pos token.Pos
	seen := map[string]bool{}
	first := true
	for {
		tok := p.stream.Peek()
		if tok == nil {
			break
		}
		if first {
			pos = tok.Pos
			first = false
		}
		var apply func()
		switch tok.Value {
		case GlyphRequired:
			apply = func() { mods.Required = true }
		case GlyphDeprecated:
			apply = func() { mods.Deprecated = true }
		case GlyphFinal:
			apply = func() { mods.Final = true }
		case GlyphOverride:
			apply = func() { mods.Override = true }
		case GlyphProtected:
			apply = func() { mods.Access = registry.AccessProtected }
		case GlyphPrivate:
			apply = func() { mods.Access = registry.AccessPrivate }
		case GlyphPublic:
			apply = func() { mods.Access = registry.AccessPublic }
		case GlyphStartingFlag:
			apply = func() { mods.IsStarting = true }
		default:
			return mods, pos
		}
		if seen[tok.Value] {
			p.sink.Report(cerrors.Newf(cerrors.PAR003, cerrors.PhaseParser, tok.Pos, "duplicate attribute %q", tok.Value))
		}
		seen[tok.Value] = true
		apply()
		p.stream.Consume(token.IDENTIFIER)
	}
	return mods, pos
}

// skipBody consumes a balanced 🍇…🍉 block without interpreting it, returning
// every token it consumed (including the delimiting 🍇/🍉) so the session
// driver's second pass can replay them through a fresh token.SliceStream and
// internal/parser/body.go's BodyParser, without this declaration pass having
// to understand expression grammar at all.
func (p *Parser) skipBody() []token.Token {
	// Optional return-type / generic / parameter syntax precedes the body;
	// the grammar guarantees a 🍇 eventually opens the block.
	var captured []token.Token
	depth := 0
	opened := false
	for {
		tok := p.stream.Peek()
		if tok == nil {
			return captured
		}
		if tok.Value == GlyphBlockOpen {
			depth++
			opened = true
			consumed, _ := p.stream.Consume(token.IDENTIFIER)
			captured = append(captured, consumed)
			continue
		}
		if tok.Value == GlyphBlockClose {
			depth--
			consumed, _ := p.stream.Consume(token.IDENTIFIER)
			captured = append(captured, consumed)
			if opened && depth == 0 {
				return captured
			}
			continue
		}
		if opened {
			consumed, _ := p.stream.Consume(tok.Kind)
			captured = append(captured, consumed)
			continue
		}
		// Not yet inside a block: anything other than a block-open before
		// we've seen one belongs to the signature (return type, params).
		if tok.Value == GlyphInstanceVariable || tok.Value == GlyphConformance ||
			tok.Value == GlyphMethod || tok.Value == GlyphInitializer || tok.Value == GlyphBlockClose {
			return captured
		}
		consumed, _ := p.stream.Consume(tok.Kind)
		captured = append(captured, consumed)
	}
}
