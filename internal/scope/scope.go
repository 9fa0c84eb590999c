// Package scope implements the variable tracker: a stack of per-block
// scopes plus an optional instance scope, tracking initialization level,
// mutability, and shadowing — grounded directly on the original
// compiler's SemanticScoper (Compiler/Scoping/SemanticScoper.cpp).
package scope

import (
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/token"
	"github.com/emojicode/ecc/internal/types"
)

// Variable is one binding in a Scope.
type Variable struct {
	Name              string
	Type              types.Type
	ID                int
	Mutable           bool
	InitializedAtLevel int // 0 means not yet definitely initialized
	Reassigned        bool // tracked for the "recommend frozen" warning
	DeclaredAt        token.Pos
}

// initializeAbsolutely marks v initialized regardless of the current
// level — used for arguments, which are always definitely assigned.
func (v *Variable) initializeAbsolutely() {
	v.InitializedAtLevel = 1
}

// Scope is one dictionary of name -> Variable, plus its own
// initialization-level stack: the level is bumped on push, popped on
// close.
type Scope struct {
	vars             map[string]*Variable
	order            []string
	initLevel        int
	levelStack       []int
	nextID           int
}

// NewScope builds an empty scope. nextID seeds the variable-id counter so
// nested scopes within one function don't reuse ids.
func NewScope(nextID int) *Scope {
	return &Scope{vars: make(map[string]*Variable), initLevel: 1, nextID: nextID}
}

func (s *Scope) has(name string) bool {
	_, ok := s.vars[name]
	return ok
}

func (s *Scope) get(name string) (*Variable, bool) {
	v, ok := s.vars[name]
	return v, ok
}

func (s *Scope) pushInitializationLevel() {
	s.levelStack = append(s.levelStack, s.initLevel)
	s.initLevel++
}

func (s *Scope) popInitializationLevel() {
	if len(s.levelStack) == 0 {
		return
	}
	s.initLevel = s.levelStack[len(s.levelStack)-1]
	s.levelStack = s.levelStack[:len(s.levelStack)-1]
}

func (s *Scope) declare(name string, t types.Type, mutable bool, pos token.Pos) *Variable {
	v := &Variable{Name: name, Type: t, Mutable: mutable, ID: s.nextID, DeclaredAt: pos}
	s.nextID++
	s.vars[name] = v
	s.order = append(s.order, name)
	return v
}

// maxVariableID returns the highest id handed out in this scope.
func (s *Scope) maxVariableID() int {
	max := -1
	for _, v := range s.vars {
		if v.ID > max {
			max = v.ID
		}
	}
	return max
}

// ResolvedVariable is getVariable's result: the binding plus whether it
// came from the instance scope rather than a local block scope.
type ResolvedVariable struct {
	Variable     *Variable
	FromInstance bool
}

// Stats is createStats()'s snapshot, used by the code generator to size a
// function's stack frame.
type Stats struct {
	ArgumentCount  int
	VariableCount  int
	MaxVariableID  int
}

// Tracker is the stack-of-scopes for one function analysis. It is not
// thread-safe; one Tracker belongs to one function analyser.
type Tracker struct {
	scopes        []*Scope // front = innermost
	instanceScope *Scope
	maxInitLevel  int
	nextID        int
}

// NewTracker builds a Tracker, optionally over an instanceScope shared
// across every method of the same class (pass nil for a free function /
// starting-flag method).
func NewTracker(instanceScope *Scope) *Tracker {
	return &Tracker{instanceScope: instanceScope}
}

// PushArgumentsScope opens the function's outermost scope and declares
// every parameter as already, absolutely initialized.
func (t *Tracker) PushArgumentsScope(params []Variable, pos token.Pos) *Scope {
	sc := t.PushScope()
	for _, p := range params {
		v := sc.declare(p.Name, p.Type, p.Mutable, pos)
		v.initializeAbsolutely()
	}
	return sc
}

// PushScope increments the global initialization level, informs every
// existing scope (including the instance scope), and opens a new
// innermost scope.
func (t *Tracker) PushScope() *Scope {
	t.maxInitLevel++
	for _, sc := range t.scopes {
		sc.pushInitializationLevel()
	}
	if t.instanceScope != nil {
		t.instanceScope.pushInitializationLevel()
	}
	next := t.nextID
	if len(t.scopes) > 0 {
		next = t.scopes[0].nextID
	}
	sc := NewScope(next)
	t.scopes = append([]*Scope{sc}, t.scopes...)
	return sc
}

// PopScope closes the innermost scope, reports "recommend frozen" warnings
// for every variable declared mutable but never reassigned, and restores
// the initialization level.
func (t *Tracker) PopScope(sink *cerrors.Sink) {
	if len(t.scopes) == 0 {
		return
	}
	top := t.scopes[0]
	t.nextID = top.nextID
	for _, name := range top.order {
		v := top.vars[name]
		if v.Mutable && !v.Reassigned {
			sink.Report(cerrors.Warnf(cerrors.SCOPE002, cerrors.PhaseSemantic, v.DeclaredAt,
				"variable %s is never reassigned, consider declaring it frozen", name))
		}
	}
	t.scopes = t.scopes[1:]
	t.maxInitLevel--
	for _, sc := range t.scopes {
		sc.popInitializationLevel()
	}
	if t.instanceScope != nil {
		t.instanceScope.popInitializationLevel()
	}
}

// DeclareVariable adds a new binding to the innermost scope. It fails with
// NAM002-shaped semantics (reused here as a scope-local redeclaration
// error) if name already exists in that exact scope, and emits a warning
// if it shadows an outer scope or the instance scope.
func (t *Tracker) DeclareVariable(sink *cerrors.Sink, name string, typ types.Type, mutable bool, pos token.Pos) (*Variable, *cerrors.Report) {
	if len(t.scopes) == 0 {
		panic("scope: DeclareVariable called with no open scope")
	}
	innermost := t.scopes[0]
	if innermost.has(name) {
		return nil, cerrors.Newf(cerrors.NAM002, cerrors.PhaseSemantic, pos, "%s is already declared in this scope", name)
	}
	t.checkShadowing(sink, name, pos)
	return innermost.declare(name, typ, mutable, pos), nil
}

func (t *Tracker) checkShadowing(sink *cerrors.Sink, name string, pos token.Pos) {
	for _, sc := range t.scopes {
		if sc.has(name) {
			sink.Report(cerrors.Warnf(cerrors.SCOPE001, cerrors.PhaseSemantic, pos, "declaration of %s shadows a previous local variable", name))
			return
		}
	}
	if t.instanceScope != nil && t.instanceScope.has(name) {
		sink.Report(cerrors.Warnf(cerrors.SCOPE001, cerrors.PhaseSemantic, pos, "declaration of %s shadows an instance variable", name))
	}
}

// GetVariable searches innermost-to-outermost, then the instance scope.
func (t *Tracker) GetVariable(name string, pos token.Pos) (ResolvedVariable, *cerrors.Report) {
	for _, sc := range t.scopes {
		if v, ok := sc.get(name); ok {
			return ResolvedVariable{Variable: v, FromInstance: false}, nil
		}
	}
	if t.instanceScope != nil {
		if v, ok := t.instanceScope.get(name); ok {
			return ResolvedVariable{Variable: v, FromInstance: true}, nil
		}
	}
	return ResolvedVariable{}, cerrors.Newf(cerrors.NAM003, cerrors.PhaseName, pos, "variable %s not found", name)
}

// MarkReassigned records that name was written to again after declaration,
// which suppresses the "recommend frozen" warning on scope pop.
func (t *Tracker) MarkReassigned(name string) {
	for _, sc := range t.scopes {
		if v, ok := sc.get(name); ok {
			v.Reassigned = true
			return
		}
	}
	if t.instanceScope != nil {
		if v, ok := t.instanceScope.get(name); ok {
			v.Reassigned = true
		}
	}
}

// MarkInitialized records that name became definitely assigned at the
// scope's current initialization level.
func (t *Tracker) MarkInitialized(name string) {
	for _, sc := range t.scopes {
		if v, ok := sc.get(name); ok {
			v.InitializedAtLevel = sc.initLevel
			return
		}
	}
}

// IsDefinitelyInitialized reports whether v was assigned at or before the
// scope's current initialization level — conditional writes at a deeper
// level don't count until every sibling path agrees, matching the
// original compiler's initialization-level model.
func (t *Tracker) IsDefinitelyInitialized(v *Variable) bool {
	if v.InitializedAtLevel == 0 {
		return false
	}
	if len(t.scopes) == 0 {
		return true
	}
	return v.InitializedAtLevel <= t.scopes[0].initLevel
}

// CreateStats snapshots the current frame shape for the code generator.
func (t *Tracker) CreateStats() Stats {
	if len(t.scopes) == 0 {
		return Stats{}
	}
	outer := t.scopes[len(t.scopes)-1]
	argCount := 0
	if len(t.scopes) > 1 {
		argCount = t.scopes[len(t.scopes)-1].maxVariableID() + 1
	}
	return Stats{
		ArgumentCount: argCount,
		VariableCount: len(outer.vars),
		MaxVariableID: outer.maxVariableID(),
	}
}
