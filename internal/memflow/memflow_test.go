package memflow

import (
	"testing"

	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/token"
)

func TestReturnExprIsReturned(t *testing.T) {
	sink := &cerrors.Sink{}
	f := New(sink)
	v := &ast.GetVariableExpr{Name: "x"}
	block := &ast.BlockStmt{Statements: []ast.Statement{&ast.ReturnStmt{Value: v}}}
	f.AnalyseBlock(block)
	if v.Flow() != ast.Returned {
		t.Errorf("expected Returned, got %v", v.Flow())
	}
}

func TestMethodCallArgsAreBorrowing(t *testing.T) {
	sink := &cerrors.Sink{}
	f := New(sink)
	arg := &ast.GetVariableExpr{Name: "a"}
	recv := &ast.GetVariableExpr{Name: "r"}
	call := &ast.MethodCallExpr{Receiver: recv, Method: "m", Args: []ast.Expression{arg}}
	block := &ast.BlockStmt{Statements: []ast.Statement{&ast.ExpressionStmt{Expr: call}}}
	f.AnalyseBlock(block)
	if arg.Flow() != ast.Borrowing {
		t.Errorf("expected argument to be Borrowing, got %v", arg.Flow())
	}
}

func TestUnwrapEscapesTarget(t *testing.T) {
	sink := &cerrors.Sink{}
	f := New(sink)
	target := &ast.GetVariableExpr{Name: "opt"}
	unwrap := &ast.UnwrapExpr{Value: target}
	block := &ast.BlockStmt{Statements: []ast.Statement{&ast.ExpressionStmt{Expr: unwrap}}}
	f.AnalyseBlock(block)
	if target.Flow() != ast.Escaping {
		t.Errorf("expected unwrap target to be Escaping, got %v", target.Flow())
	}
}

func TestIsErrorBorrowsTarget(t *testing.T) {
	sink := &cerrors.Sink{}
	f := New(sink)
	target := &ast.GetVariableExpr{Name: "e"}
	isErr := &ast.IsErrorExpr{Value: target}
	block := &ast.BlockStmt{Statements: []ast.Statement{&ast.ExpressionStmt{Expr: isErr}}}
	f.AnalyseBlock(block)
	if target.Flow() != ast.Borrowing {
		t.Errorf("expected 🚥 target to be Borrowing, got %v", target.Flow())
	}
}

func TestDoubleTakeReportsError(t *testing.T) {
	sink := &cerrors.Sink{}
	f := New(sink)
	f.Take("x", token.Pos{Line: 1})
	f.Take("x", token.Pos{Line: 2})
	if !sink.HasErrors() {
		t.Fatal("expected a MEM001 error on double take")
	}
	if sink.Errors()[0].Code != cerrors.MEM001 {
		t.Errorf("expected MEM001, got %s", sink.Errors()[0].Code)
	}
}

func TestConditionalBindTakesSourceLocal(t *testing.T) {
	sink := &cerrors.Sink{}
	f := New(sink)
	source := &ast.GetVariableExpr{Name: "maybe"}
	bind := &ast.ConditionalBindExpr{Source: source, Name: "unwrapped"}
	block := &ast.BlockStmt{Statements: []ast.Statement{&ast.ConditionalAssignStmt{Bind: bind}}}
	f.AnalyseBlock(block)

	// A second take of the same source local should now be flagged.
	f.Take("maybe", token.Pos{Line: 9})
	if !sink.HasErrors() {
		t.Fatal("expected the conditional bind's implicit take to collide with an explicit one")
	}
}
