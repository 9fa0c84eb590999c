package scope

import (
	"testing"

	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/token"
	"github.com/emojicode/ecc/internal/types"
)

func TestScopeDeterminism_InnermostWins(t *testing.T) {
	tr := NewTracker(nil)
	sink := &cerrors.Sink{}
	tr.PushScope()
	if _, rep := tr.DeclareVariable(sink, "x", types.TInteger, false, token.Pos{Line: 1}); rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}

	tr.PushScope()
	if _, rep := tr.DeclareVariable(sink, "x", types.TDouble, false, token.Pos{Line: 2}); rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	if len(sink.Warnings()) != 1 {
		t.Fatalf("expected a shadowing warning, got %d", len(sink.Warnings()))
	}

	resolved, rep := tr.GetVariable("x", token.Pos{Line: 3})
	if rep != nil {
		t.Fatalf("unexpected error resolving x: %v", rep)
	}
	if !resolved.Variable.Type.Equals(types.TDouble) {
		t.Errorf("expected inner binding (💯), got %s", resolved.Variable.Type.String())
	}

	tr.PopScope(sink)
	resolved, rep = tr.GetVariable("x", token.Pos{Line: 4})
	if rep != nil {
		t.Fatalf("unexpected error resolving x after pop: %v", rep)
	}
	if !resolved.Variable.Type.Equals(types.TInteger) {
		t.Errorf("expected outer binding (🚂) restored after pop, got %s", resolved.Variable.Type.String())
	}
}

func TestDeclareVariable_DuplicateInSameScopeRejected(t *testing.T) {
	tr := NewTracker(nil)
	sink := &cerrors.Sink{}
	tr.PushScope()
	if _, rep := tr.DeclareVariable(sink, "x", types.TInteger, false, token.Pos{}); rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	_, rep := tr.DeclareVariable(sink, "x", types.TInteger, false, token.Pos{})
	if rep == nil {
		t.Fatal("expected redeclaration in the same scope to fail")
	}
}

func TestGetVariable_NotFound(t *testing.T) {
	tr := NewTracker(nil)
	tr.PushScope()
	_, rep := tr.GetVariable("ghost", token.Pos{})
	if rep == nil || rep.Code != cerrors.NAM003 {
		t.Fatalf("expected NAM003, got %v", rep)
	}
}

func TestPopScope_RecommendsFrozenForUnreassignedMutable(t *testing.T) {
	tr := NewTracker(nil)
	sink := &cerrors.Sink{}
	tr.PushScope()
	tr.DeclareVariable(sink, "counter", types.TInteger, true, token.Pos{})
	tr.PopScope(sink)

	if len(sink.Warnings()) != 1 || sink.Warnings()[0].Code != cerrors.SCOPE002 {
		t.Fatalf("expected one recommend-frozen warning, got %v", sink.Warnings())
	}
}

func TestPopScope_NoFrozenWarningWhenReassigned(t *testing.T) {
	tr := NewTracker(nil)
	sink := &cerrors.Sink{}
	tr.PushScope()
	tr.DeclareVariable(sink, "counter", types.TInteger, true, token.Pos{})
	tr.MarkReassigned("counter")
	tr.PopScope(sink)

	if len(sink.Warnings()) != 0 {
		t.Fatalf("expected no warnings once reassigned, got %v", sink.Warnings())
	}
}

func TestInstanceScopeLookup(t *testing.T) {
	instance := NewScope(0)
	instance.declare("🍰field", types.TBoolean, true, token.Pos{})

	tr := NewTracker(instance)
	tr.PushScope()

	resolved, rep := tr.GetVariable("🍰field", token.Pos{})
	if rep != nil {
		t.Fatalf("unexpected error: %v", rep)
	}
	if !resolved.FromInstance {
		t.Error("expected variable to resolve from the instance scope")
	}
}
