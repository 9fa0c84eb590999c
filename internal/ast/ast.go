// Package ast defines the polymorphic tree produced by internal/parser and
// consumed by internal/analyser, internal/memflow, internal/boxing and
// internal/codegen. The many node variants are a tagged sum — a small
// closed set of Go structs implementing shared capability interfaces —
// rather than a class hierarchy; Go has no inheritance to misuse for it
// in the first place.
package ast

import (
	"github.com/emojicode/ecc/internal/token"
	"github.com/emojicode/ecc/internal/types"
)

// Node is the capability every statement, expression, and type-expression
// shares: a source position for diagnostics.
type Node interface {
	Pos() token.Pos
}

// base embeds the shared position field so each variant only declares it
// once.
type base struct {
	At token.Pos
}

func (b base) Pos() token.Pos { return b.At }

// Statement is implemented by every statement-family node. Statements are
// lowered directly by internal/codegen; they don't carry a type.
type Statement interface {
	Node
	statementNode()
}

// Expression is implemented by every expression-family node. After
// semantic analysis every Expression's Type() is non-nil and TemporarilyScoped
// reports whether the code generator must release it at the end of the
// enclosing statement.
type Expression interface {
	Node
	expressionNode()
	Type() types.Type
	SetType(types.Type)
	TemporarilyScoped() bool
	SetTemporarilyScoped(bool)
}

// TypeExpr is implemented by every type-expression node — the syntax that,
// once resolved by internal/registry.TypeParser, produces a types.Type.
type TypeExpr interface {
	Node
	typeExprNode()
}

// exprBase gives Expression variants their Type/TemporarilyScoped storage.
type exprBase struct {
	base
	t                  types.Type
	temporarilyScoped bool
}

func (e *exprBase) Type() types.Type                   { return e.t }
func (e *exprBase) SetType(t types.Type)               { e.t = t }
func (e *exprBase) TemporarilyScoped() bool            { return e.temporarilyScoped }
func (e *exprBase) SetTemporarilyScoped(v bool)        { e.temporarilyScoped = v }
func (*exprBase) expressionNode()                      {}

// stmtBase gives Statement variants their marker method.
type stmtBase struct {
	base
}

func (*stmtBase) statementNode() {}

// typeExprBase gives TypeExpr variants their marker method.
type typeExprBase struct {
	base
}

func (*typeExprBase) typeExprNode() {}
