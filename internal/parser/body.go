package parser

import (
	"strconv"

	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/token"
)

// Expression-level glyphs, also grounded on PackageParser.cpp / ASTExpr.hpp.
const (
	GlyphReturn        = "🍎"
	GlyphRaise         = "😡"
	GlyphRepeatWhile   = "🔁"
	GlyphForIn         = "🔂"
	GlyphIf            = "🍊"
	GlyphElseIf        = "🍋"
	GlyphElse          = "🍓"
	GlyphUnsafe        = "☣️"
	GlyphErrorHandler  = "🚇"
	GlyphVarDeclareMut = "🍦"
	GlyphVarDeclareLet = "🍮"
	GlyphAssign        = "➡️"
	GlyphThis          = "🐕"
	GlyphUnwrap        = "🍺"
	GlyphIsError       = "🚥"
	GlyphNothingness   = "🚫"
	GlyphTrue          = "👍"
	GlyphFalse         = "👎"
	GlyphSuperCall     = "⤴️"
	GlyphCallableCall  = "⁉️"
	GlyphCapture       = "🎣"
	GlyphCast          = "🔲"
	GlyphList          = "🍦🍦"
	GlyphListOpen      = "🍦"
)

// BodyParser parses one function/method/initializer body into an
// *ast.BlockStmt. It's constructed fresh per declaration, consistent with
// the "exceptions become an out-of-band error value, proceed to sibling
// declarations" design note: a parse failure here aborts this body only.
type BodyParser struct {
	stream token.Stream
	sink   *cerrors.Sink
}

// NewBodyParser builds a BodyParser over stream, reporting to sink.
func NewBodyParser(stream token.Stream, sink *cerrors.Sink) *BodyParser {
	return &BodyParser{stream: stream, sink: sink}
}

// ParseBlock parses a 🍇…🍉-delimited statement sequence.
func (b *BodyParser) ParseBlock() *ast.BlockStmt {
	pos := b.currentPos()
	if _, err := b.stream.ConsumeAnyOf(GlyphBlockOpen); err != nil {
		b.reportParse(pos, "expected 🍇 to open block")
		return &ast.BlockStmt{}
	}
	block := &ast.BlockStmt{}
	for !b.stream.PeekIs(GlyphBlockClose) {
		tok := b.stream.Peek()
		if tok == nil {
			b.sink.Report(cerrors.New(cerrors.PAR002, cerrors.PhaseParser, pos, "missing 🍉 to close block"))
			return block
		}
		block.Statements = append(block.Statements, b.parseStatement())
	}
	b.stream.ConsumeAnyOf(GlyphBlockClose)
	return block
}

func (b *BodyParser) currentPos() token.Pos {
	if t := b.stream.Peek(); t != nil {
		return t.Pos
	}
	return token.Pos{}
}

func (b *BodyParser) reportParse(pos token.Pos, msg string) {
	b.sink.Report(cerrors.New(cerrors.PAR001, cerrors.PhaseParser, pos, msg))
}

func (b *BodyParser) parseStatement() ast.Statement {
	pos := b.currentPos()
	tok := b.stream.Peek()
	if tok == nil {
		return &ast.ExpressionStmt{}
	}
	switch tok.Value {
	case GlyphReturn:
		b.stream.Consume(token.IDENTIFIER)
		if b.stream.PeekIs(GlyphBlockClose) {
			return &ast.ReturnStmt{}
		}
		return &ast.ReturnStmt{Value: b.parseExpression()}

	case GlyphRaise:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.RaiseStmt{Value: b.parseExpression()}

	case GlyphRepeatWhile:
		b.stream.Consume(token.IDENTIFIER)
		cond := b.parseExpression()
		return &ast.RepeatWhileStmt{Condition: cond, Body: b.ParseBlock()}

	case GlyphForIn:
		b.stream.Consume(token.IDENTIFIER)
		nameTok, _ := b.stream.Consume(token.VARIABLE)
		iterable := b.parseExpression()
		return &ast.ForInStmt{VariableName: nameTok.Value, Iterable: iterable, Body: b.ParseBlock()}

	case GlyphIf:
		return b.parseIf()

	case GlyphUnsafe:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.UnsafeBlockStmt{Body: b.ParseBlock()}

	case GlyphErrorHandler:
		b.stream.Consume(token.IDENTIFIER)
		attempt := b.ParseBlock()
		nameTok, _ := b.stream.Consume(token.VARIABLE)
		handler := b.ParseBlock()
		return &ast.ErrorHandlerStmt{Attempt: attempt, CaughtName: nameTok.Value, Handler: handler}

	case GlyphVarDeclareMut, GlyphVarDeclareLet:
		mutable := tok.Value == GlyphVarDeclareMut
		b.stream.Consume(token.IDENTIFIER)
		nameTok, _ := b.stream.Consume(token.VARIABLE)
		var value ast.Expression
		if b.stream.PeekIs(GlyphAssign) {
			b.stream.Consume(token.IDENTIFIER)
			value = b.parseExpression()
		}
		return &ast.VariableDeclareStmt{Name: nameTok.Value, Mutable: mutable, TypeDecl: &ast.InferTypeExpr{}, Value: value}

	default:
		if tok.Kind == token.VARIABLE {
			return b.parseAssignOrExpression(pos)
		}
		return &ast.ExpressionStmt{Expr: b.parseExpression()}
	}
}

func (b *BodyParser) parseAssignOrExpression(pos token.Pos) ast.Statement {
	nameTok, _ := b.stream.Consume(token.VARIABLE)
	if b.stream.PeekIs(GlyphAssign) {
		b.stream.Consume(token.IDENTIFIER)
		return &ast.VariableAssignStmt{Name: nameTok.Value, Value: b.parseExpression()}
	}
	// Not an assignment: treat the already-consumed variable token as the
	// start of an expression statement.
	expr := b.continueExpressionFromVariable(nameTok)
	return &ast.ExpressionStmt{Expr: expr}
}

func (b *BodyParser) parseIf() ast.Statement {
	var branches []ast.IfBranch
	b.stream.Consume(token.IDENTIFIER) // 🍊
	cond := b.parseExpression()
	branches = append(branches, ast.IfBranch{Condition: cond, Body: b.ParseBlock()})
	for b.stream.PeekIs(GlyphElseIf) {
		b.stream.Consume(token.IDENTIFIER)
		c := b.parseExpression()
		branches = append(branches, ast.IfBranch{Condition: c, Body: b.ParseBlock()})
	}
	if b.stream.PeekIs(GlyphElse) {
		b.stream.Consume(token.IDENTIFIER)
		branches = append(branches, ast.IfBranch{Body: b.ParseBlock()})
	}
	return &ast.IfStmt{Branches: branches}
}

// parseExpression parses one expression, then greedily applies the
// ➡️ conditional-bind suffix, which is valid after any expression
// appearing in condition position.
func (b *BodyParser) parseExpression() ast.Expression {
	expr := b.parsePrimary()
	if b.stream.PeekIs(GlyphAssign) {
		b.stream.Consume(token.IDENTIFIER)
		nameTok, _ := b.stream.Consume(token.VARIABLE)
		return &ast.ConditionalBindExpr{Source: expr, Name: nameTok.Value}
	}
	return expr
}

func (b *BodyParser) continueExpressionFromVariable(nameTok token.Token) ast.Expression {
	return &ast.GetVariableExpr{Name: nameTok.Value}
}

func (b *BodyParser) parsePrimary() ast.Expression {
	pos := b.currentPos()
	tok := b.stream.Peek()
	if tok == nil {
		return &ast.LiteralExpr{Kind: ast.LitNothingness}
	}

	switch tok.Kind {
	case token.INTEGER:
		b.stream.Consume(token.INTEGER)
		n, _ := strconv.ParseInt(tok.Value, 10, 64)
		return &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: n}

	case token.DOUBLE:
		b.stream.Consume(token.DOUBLE)
		f, _ := strconv.ParseFloat(tok.Value, 64)
		return &ast.LiteralExpr{Kind: ast.LitDouble, FloatValue: f}

	case token.STRING:
		b.stream.Consume(token.STRING)
		return &ast.LiteralExpr{Kind: ast.LitString, StrValue: tok.Value}

	case token.SYMBOL:
		b.stream.Consume(token.SYMBOL)
		return &ast.LiteralExpr{Kind: ast.LitSymbol, StrValue: tok.Value}

	case token.VARIABLE:
		nameTok, _ := b.stream.Consume(token.VARIABLE)
		return b.maybeCall(&ast.GetVariableExpr{Name: nameTok.Value})
	}

	switch tok.Value {
	case GlyphTrue:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.LiteralExpr{Kind: ast.LitBoolean, BoolValue: true}
	case GlyphFalse:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.LiteralExpr{Kind: ast.LitBoolean, BoolValue: false}
	case GlyphNothingness:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.LiteralExpr{Kind: ast.LitNothingness}
	case GlyphThis:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.ThisExpr{}
	case GlyphUnwrap:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.UnwrapExpr{Value: b.parsePrimary()}
	case GlyphIsError:
		b.stream.Consume(token.IDENTIFIER)
		return &ast.IsErrorExpr{Value: b.parsePrimary()}
	default:
		b.reportParse(pos, "unexpected token in expression position")
		b.stream.Consume(tok.Kind)
		return &ast.LiteralExpr{Kind: ast.LitNothingness}
	}
}

// maybeCall handles the `🐷 name args…` method-call suffix attached to a
// receiver expression. Arguments are the variable and number/string
// literal tokens after the name; collection stops at the first other
// token, and a 🍉 is left for the enclosing block.
func (b *BodyParser) maybeCall(receiver ast.Expression) ast.Expression {
	for b.stream.PeekIs(GlyphMethod) {
		b.stream.Consume(token.IDENTIFIER)
		nameTok, _ := b.stream.Consume(token.VARIABLE)
		var args []ast.Expression
		for !b.stream.PeekIs(GlyphBlockClose) && b.stream.Peek() != nil {
			t := b.stream.Peek()
			if t.Kind == token.VARIABLE || t.Kind == token.INTEGER || t.Kind == token.DOUBLE || t.Kind == token.STRING {
				args = append(args, b.parsePrimary())
				continue
			}
			break
		}
		receiver = &ast.MethodCallExpr{Receiver: receiver, Method: nameTok.Value, Args: args}
	}
	return receiver
}
