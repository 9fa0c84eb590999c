package repl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/emojicode/ecc/internal/parser"
	"github.com/emojicode/ecc/internal/token"
)

func tok(kind token.Kind, value string) token.Token {
	return token.Token{Kind: kind, Value: value}
}

func startingFlagTokens() []token.Token {
	return []token.Token{
		tok(token.IDENTIFIER, parser.GlyphClass),
		tok(token.VARIABLE, "Cat"),
		tok(token.IDENTIFIER, parser.GlyphBlockOpen),
		tok(token.IDENTIFIER, parser.GlyphStartingFlag),
		tok(token.IDENTIFIER, parser.GlyphMethod),
		tok(token.VARIABLE, "main"),
		tok(token.IDENTIFIER, parser.GlyphBlockOpen),
		tok(token.IDENTIFIER, parser.GlyphReturn),
		tok(token.IDENTIFIER, parser.GlyphNothingness),
		tok(token.IDENTIFIER, parser.GlyphBlockClose),
		tok(token.IDENTIFIER, parser.GlyphBlockClose),
	}
}

func TestCheckOne_SuccessfulCompilePrintsFunctionCount(t *testing.T) {
	r := New("🌍", "", func(path string) ([]token.Token, error) {
		return startingFlagTokens(), nil
	})
	var buf bytes.Buffer
	r.checkOne(&buf, "cat.json")

	out := buf.String()
	if !strings.Contains(out, "1 function(s) compiled") {
		t.Fatalf("expected success summary, got %q", out)
	}
}

func TestCheckOne_LoadErrorIsReported(t *testing.T) {
	r := New("🌍", "", func(path string) ([]token.Token, error) {
		return nil, errors.New("no such file")
	})
	var buf bytes.Buffer
	r.checkOne(&buf, "missing.json")

	out := buf.String()
	if !strings.Contains(out, "no such file") {
		t.Fatalf("expected load error surfaced in output, got %q", out)
	}
}

func TestCheckOne_CompileErrorSuppressesSuccessLine(t *testing.T) {
	r := New("🌍", "", func(path string) ([]token.Token, error) {
		// Unknown superclass: name resolution fails before any function compiles.
		return []token.Token{
			tok(token.IDENTIFIER, parser.GlyphClass),
			tok(token.VARIABLE, "Dog"),
			tok(token.VARIABLE, "Unknown"),
			tok(token.IDENTIFIER, parser.GlyphBlockOpen),
			tok(token.IDENTIFIER, parser.GlyphBlockClose),
		}, nil
	})
	var buf bytes.Buffer
	r.checkOne(&buf, "dog.json")

	out := buf.String()
	if strings.Contains(out, "compiled") {
		t.Fatalf("expected no success summary on compile failure, got %q", out)
	}
}
