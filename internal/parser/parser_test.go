package parser

import (
	"testing"

	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/token"
)

func tok(kind token.Kind, value string) token.Token {
	return token.Token{Kind: kind, Value: value}
}

func TestParsePackage_ClassWithMethodCapturesSkeleton(t *testing.T) {
	tokens := []token.Token{
		tok(token.IDENTIFIER, GlyphClass),
		tok(token.VARIABLE, "Cat"),
		tok(token.IDENTIFIER, GlyphBlockOpen),
		tok(token.IDENTIFIER, GlyphMethod),
		tok(token.VARIABLE, "🔊"),
		tok(token.IDENTIFIER, GlyphBlockOpen),
		tok(token.IDENTIFIER, GlyphReturn),
		tok(token.IDENTIFIER, GlyphNothingness),
		tok(token.IDENTIFIER, GlyphBlockClose),
		tok(token.IDENTIFIER, GlyphBlockClose),
	}
	stream := token.NewSliceStream(tokens)
	sink := &cerrors.Sink{}
	reg := registry.New()
	p := New(stream, reg, "🌍", sink)

	bodies := p.ParsePackage()
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.Errors())
	}
	if len(bodies) != 1 {
		t.Fatalf("expected one class body, got %d", len(bodies))
	}
	body := bodies[0]
	if body.Name != "Cat" || body.Kind != registry.KindClass {
		t.Errorf("unexpected class skeleton: %+v", body)
	}
	if len(body.Members) != 1 {
		t.Fatalf("expected one member, got %d", len(body.Members))
	}
	m := body.Members[0]
	if m.Kind != MemberMethod || m.Name != "🔊" {
		t.Errorf("unexpected member: %+v", m)
	}
	if len(m.BodyTokens) != 4 {
		t.Errorf("expected the 🍇🍎🚫🍉 body to be captured whole, got %d tokens", len(m.BodyTokens))
	}
}

func TestParsePackage_ClassExtensionIsFlagged(t *testing.T) {
	tokens := []token.Token{
		tok(token.IDENTIFIER, GlyphClassExtension),
		tok(token.VARIABLE, "Cat"),
		tok(token.IDENTIFIER, GlyphBlockOpen),
		tok(token.IDENTIFIER, GlyphBlockClose),
	}
	stream := token.NewSliceStream(tokens)
	sink := &cerrors.Sink{}
	reg := registry.New()
	p := New(stream, reg, "🌍", sink)

	bodies := p.ParsePackage()
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.Errors())
	}
	if len(bodies) != 1 || !bodies[0].IsExtension {
		t.Fatalf("expected a single flagged extension body, got %+v", bodies)
	}
}

func TestParsePackage_EnumCapturesCaseNames(t *testing.T) {
	tokens := []token.Token{
		tok(token.IDENTIFIER, GlyphEnum),
		tok(token.VARIABLE, "Suit"),
		tok(token.IDENTIFIER, GlyphBlockOpen),
		tok(token.IDENTIFIER, "♠️"),
		tok(token.IDENTIFIER, "♥️"),
		tok(token.IDENTIFIER, GlyphBlockClose),
	}
	stream := token.NewSliceStream(tokens)
	sink := &cerrors.Sink{}
	reg := registry.New()
	p := New(stream, reg, "🌍", sink)

	bodies := p.ParsePackage()
	if sink.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", sink.Errors())
	}
	if len(bodies) != 1 || bodies[0].Kind != registry.KindEnum {
		t.Fatalf("expected one enum body, got %+v", bodies)
	}
	if got := bodies[0].EnumValues; len(got) != 2 || got[0] != "♠️" || got[1] != "♥️" {
		t.Errorf("unexpected enum cases: %v", got)
	}
}
