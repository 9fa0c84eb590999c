// Package token defines the lexical tokens the compiler consumes.
//
// The lexer that produces these tokens is an external collaborator — this
// package only carries the shapes the rest of the compiler is written
// against (Kind, Token, Pos, Span) plus the Stream interface a concrete
// lexer must satisfy. No tokenizer lives here.
package token

import "fmt"

// Kind identifies the lexical category of a Token.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	IDENTIFIER   // a single emoji glyph naming a declaration keyword or type
	VARIABLE     // a free identifier (variable, method, argument name)
	INTEGER      // 123
	DOUBLE       // 1.5
	STRING       // "..."
	SYMBOL       // 🔟 style single-codepoint symbol literal
	DOCUMENTATION_COMMENT
)

func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case IDENTIFIER:
		return "IDENTIFIER"
	case VARIABLE:
		return "VARIABLE"
	case INTEGER:
		return "INTEGER"
	case DOUBLE:
		return "DOUBLE"
	case STRING:
		return "STRING"
	case SYMBOL:
		return "SYMBOL"
	case DOCUMENTATION_COMMENT:
		return "DOCUMENTATION_COMMENT"
	default:
		return "ILLEGAL"
	}
}

// Pos is a single point in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a half-open range [Start, End) in a source file.
type Span struct {
	Start Pos
	End   Pos
}

// Token is a single lexical unit. Value holds the glyph text for
// IDENTIFIER/VARIABLE/SYMBOL tokens, the literal text for INTEGER/
// DOUBLE/STRING, and the comment body for DOCUMENTATION_COMMENT.
type Token struct {
	Kind  Kind
	Value string
	Pos   Pos
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Value, t.Pos)
}

// SourceFile pairs a file name with the token stream a lexer produced for
// it, the unit internal/session.CompilePackage takes one package's worth
// of as input.
type SourceFile struct {
	Name   string
	Stream Stream
}

// Stream is the interface the declaration parser consumes. A concrete
// lexer (out of scope for this repository) must implement it.
type Stream interface {
	// Peek returns the next token without consuming it, or nil once the
	// stream is exhausted. An implementation may first return a token of
	// Kind EOF, as SliceStream does.
	Peek() *Token
	// PeekIs reports whether the next token is an IDENTIFIER/VARIABLE/
	// SYMBOL whose Value equals glyph.
	PeekIs(glyph string) bool
	// Consume returns and advances past the next token, failing if its
	// Kind does not match kind.
	Consume(kind Kind) (Token, error)
	// ConsumeAnyOf consumes the next token if its Value is one of glyphs,
	// failing otherwise.
	ConsumeAnyOf(glyphs ...string) (Token, error)
}
