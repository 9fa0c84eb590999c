package analyser

import (
	"testing"

	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/registry"
	"github.com/emojicode/ecc/internal/scope"
	"github.com/emojicode/ecc/internal/types"
)

func newFixture() (*Analyser, *cerrors.Sink) {
	reg := registry.New()
	checker := types.NewChecker(reg)
	sink := &cerrors.Sink{}
	tracker := scope.NewTracker(nil)
	tracker.PushScope()
	a := New(checker, reg, tracker, sink, FunctionContext{})
	return a, sink
}

func TestAnalyseLiteral_Integer(t *testing.T) {
	a, sink := newFixture()
	lit := &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: 3}
	got := a.Expect(Expectation{Type: types.TInteger}, lit)
	if !got.Equals(types.TInteger) {
		t.Errorf("expected 🚂, got %s", got.String())
	}
	if sink.HasErrors() {
		t.Errorf("unexpected errors: %v", sink.Errors())
	}
}

func TestExpect_TypeErrorOnMismatch(t *testing.T) {
	a, sink := newFixture()
	lit := &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: 3}
	a.Expect(Expectation{Type: types.TBoolean}, lit)
	if !sink.HasErrors() {
		t.Fatal("expected a type error for integer where boolean is expected")
	}
	if sink.Errors()[0].Code != cerrors.TYP001 {
		t.Errorf("expected TYP001, got %s", sink.Errors()[0].Code)
	}
}

func TestExpect_BoxToSomething(t *testing.T) {
	a, sink := newFixture()
	lit := &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: 3}
	got := a.Expect(Expectation{Type: types.TSomething}, lit)
	if !got.Equals(types.TSomething) {
		t.Errorf("expected autobox to ⬛, got %s", got.String())
	}
	if sink.HasErrors() {
		t.Errorf("unexpected errors: %v", sink.Errors())
	}
}

func TestAnalyseUnwrap_NonOptionalIsError(t *testing.T) {
	a, sink := newFixture()
	lit := &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: 3}
	unwrap := &ast.UnwrapExpr{Value: lit}
	a.Expect(Expectation{Type: types.TSomething}, unwrap)
	if !sink.HasErrors() || sink.Errors()[0].Code != cerrors.TYP005 {
		t.Fatalf("expected TYP005 for 🍺 on a non-optional, got %v", sink.Errors())
	}
}

func TestAnalyseUnwrap_Optional(t *testing.T) {
	a, sink := newFixture()
	v := &ast.GetVariableExpr{Name: "x"}
	a.scopes.DeclareVariable(sink, "x", &types.Optional{Inner: types.TInteger}, false, v.Pos())
	unwrap := &ast.UnwrapExpr{Value: v}
	got := a.Expect(Expectation{Type: types.TInteger}, unwrap)
	if !got.Equals(types.TInteger) {
		t.Errorf("expected unwrap to produce 🚂, got %s", got.String())
	}
	if sink.HasErrors() {
		t.Errorf("unexpected errors: %v", sink.Errors())
	}
}

func TestAnalyseIsError_NonErrorReports(t *testing.T) {
	a, sink := newFixture()
	lit := &ast.LiteralExpr{Kind: ast.LitInteger, IntValue: 1}
	isErr := &ast.IsErrorExpr{Value: lit}
	got := a.Expect(Expectation{Type: types.TBoolean}, isErr)
	if !got.Equals(types.TBoolean) {
		t.Errorf("🚥 should always produce 👌, got %s", got.String())
	}
	if !sink.HasErrors() || sink.Errors()[0].Code != cerrors.TYP006 {
		t.Fatalf("expected TYP006, got %v", sink.Errors())
	}
}

func TestConditionalBind_DeclaresInTrueBranch(t *testing.T) {
	a, sink := newFixture()
	source := &ast.GetVariableExpr{Name: "maybe"}
	a.scopes.DeclareVariable(sink, "maybe", &types.Optional{Inner: types.TInteger}, false, source.Pos())

	bind := &ast.ConditionalBindExpr{Source: source, Name: "unwrapped"}
	got := a.Expect(Expectation{Type: types.TBoolean}, bind)
	if !got.Equals(types.TBoolean) {
		t.Errorf("expected conditional-bind to type as 👌, got %s", got.String())
	}

	resolved, rep := a.scopes.GetVariable("unwrapped", bind.Pos())
	if rep != nil {
		t.Fatalf("expected 'unwrapped' to be bound in scope: %v", rep)
	}
	if !resolved.Variable.Type.Equals(types.TInteger) {
		t.Errorf("expected bound variable to carry the unwrapped 🚂 type, got %s", resolved.Variable.Type.String())
	}
}

func TestCheckRaise_WithoutDeclaredErrorEnum(t *testing.T) {
	reg := registry.New()
	checker := types.NewChecker(reg)
	sink := &cerrors.Sink{}
	tracker := scope.NewTracker(nil)
	tracker.PushScope()
	a := New(checker, reg, tracker, sink, FunctionContext{})

	stmt := &ast.RaiseStmt{Value: &ast.LiteralExpr{Kind: ast.LitInteger}}
	a.CheckRaise(stmt)
	if !sink.HasErrors() || sink.Errors()[0].Code != cerrors.SEM004 {
		t.Fatalf("expected SEM004, got %v", sink.Errors())
	}
}

func TestMethodCall_ClassHierarchyWalk(t *testing.T) {
	reg := registry.New()
	animal := types.Ref{Package: "🌍", Name: "Animal"}
	cat := types.Ref{Package: "🌍", Name: "Cat"}
	reg.Declare(&registry.Declaration{
		Kind: registry.KindClass,
		Ref:  animal,
		Methods: map[string]*registry.Method{
			"🔊": {Name: "🔊", Params: nil, Return: types.TInteger},
		},
	})
	reg.Declare(&registry.Declaration{Kind: registry.KindClass, Ref: cat, Superclass: &animal})

	checker := types.NewChecker(reg)
	sink := &cerrors.Sink{}
	tracker := scope.NewTracker(nil)
	tracker.PushScope()
	a := New(checker, reg, tracker, sink, FunctionContext{})

	recv := &ast.GetVariableExpr{Name: "c"}
	a.scopes.DeclareVariable(sink, "c", &types.ClassInstance{RefVal: cat}, false, recv.Pos())

	call := &ast.MethodCallExpr{Receiver: recv, Method: "🔊"}
	got := a.Expect(Expectation{Type: types.TInteger}, call)
	if !got.Equals(types.TInteger) {
		t.Errorf("expected inherited method to resolve and return 🚂, got %s", got.String())
	}
	if sink.HasErrors() {
		t.Errorf("unexpected errors: %v", sink.Errors())
	}
}

func TestMethodCall_PrivateFromOutsideOwnerReportsSEM001(t *testing.T) {
	reg := registry.New()
	cat := types.Ref{Package: "🌍", Name: "Cat"}
	reg.Declare(&registry.Declaration{
		Kind: registry.KindClass,
		Ref:  cat,
		Methods: map[string]*registry.Method{
			"🔊": {Name: "🔊", Params: nil, Return: types.TInteger, Access: registry.AccessPrivate},
		},
	})

	checker := types.NewChecker(reg)
	sink := &cerrors.Sink{}
	tracker := scope.NewTracker(nil)
	tracker.PushScope()
	// Owner is a different class than Cat, so the private method is out of reach.
	a := New(checker, reg, tracker, sink, FunctionContext{Owner: types.Ref{Package: "🌍", Name: "Zoo"}})

	recv := &ast.GetVariableExpr{Name: "c"}
	a.scopes.DeclareVariable(sink, "c", &types.ClassInstance{RefVal: cat}, false, recv.Pos())

	call := &ast.MethodCallExpr{Receiver: recv, Method: "🔊"}
	a.Expect(Expectation{Type: types.TInteger}, call)
	if !sink.HasErrors() || sink.Errors()[0].Code != cerrors.SEM001 {
		t.Fatalf("expected SEM001, got %v", sink.Errors())
	}
}

func TestMethodCall_PrivateFromOwningTypeSucceeds(t *testing.T) {
	reg := registry.New()
	cat := types.Ref{Package: "🌍", Name: "Cat"}
	reg.Declare(&registry.Declaration{
		Kind: registry.KindClass,
		Ref:  cat,
		Methods: map[string]*registry.Method{
			"🔊": {Name: "🔊", Params: nil, Return: types.TInteger, Access: registry.AccessPrivate},
		},
	})

	checker := types.NewChecker(reg)
	sink := &cerrors.Sink{}
	tracker := scope.NewTracker(nil)
	tracker.PushScope()
	a := New(checker, reg, tracker, sink, FunctionContext{Owner: cat})

	recv := &ast.GetVariableExpr{Name: "c"}
	a.scopes.DeclareVariable(sink, "c", &types.ClassInstance{RefVal: cat}, false, recv.Pos())

	call := &ast.MethodCallExpr{Receiver: recv, Method: "🔊"}
	got := a.Expect(Expectation{Type: types.TInteger}, call)
	if !got.Equals(types.TInteger) {
		t.Errorf("expected private method called from within its owning type to resolve, got %s", got.String())
	}
	if sink.HasErrors() {
		t.Errorf("unexpected errors: %v", sink.Errors())
	}
}
