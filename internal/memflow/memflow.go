// Package memflow implements the memory-flow analyser: it
// labels every analysed expression Borrowing, Escaping, or Returned, and
// tracks take() transfers so the code generator can decide between
// stack and heap allocation.
package memflow

import (
	"github.com/emojicode/ecc/internal/ast"
	"github.com/emojicode/ecc/internal/cerrors"
	"github.com/emojicode/ecc/internal/token"
)

// Taken records one take() transfer: the local variable name and the
// position it was taken at, so a second take on the same binding can be
// reported as MEM001.
type Taken struct {
	Name string
	At   token.Pos
}

// Flow walks an analysed function body assigning ast.MemoryFlow labels. One
// Flow belongs to one function, matching the Tracker/Analyser lifetime.
type Flow struct {
	sink  *cerrors.Sink
	taken map[string]token.Pos
}

// New builds a Flow reporting to sink.
func New(sink *cerrors.Sink) *Flow {
	return &Flow{sink: sink, taken: make(map[string]token.Pos)}
}

// Take records a transfer of ownership away from the local named name,
// reporting MEM001 if it was already taken at an earlier position in the
// same function.
func (f *Flow) Take(name string, at token.Pos) {
	if prev, ok := f.taken[name]; ok {
		f.sink.Report(cerrors.Newf(cerrors.MEM001, cerrors.PhaseMemflow, at,
			"%s was already taken at %s", name, prev.String()))
		return
	}
	f.taken[name] = at
}

// AnalyseBlock labels every statement's expressions in block.
func (f *Flow) AnalyseBlock(block *ast.BlockStmt) {
	for _, stmt := range block.Statements {
		f.analyseStatement(stmt)
	}
}

func (f *Flow) analyseStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		if s.Value != nil {
			f.label(s.Value, ast.Returned)
		}
	case *ast.RaiseStmt:
		f.label(s.Value, ast.Escaping)
	case *ast.ExpressionStmt:
		f.label(s.Expr, ast.Borrowing)
	case *ast.VariableDeclareStmt:
		if s.Value != nil {
			f.label(s.Value, ast.Escaping)
		}
	case *ast.VariableAssignStmt:
		f.label(s.Value, ast.Escaping)
	case *ast.OperatorAssignStmt:
		f.label(s.Value, ast.Borrowing)
	case *ast.ConstantBindStmt:
		f.label(s.Value, ast.Escaping)
	case *ast.BlockStmt:
		f.AnalyseBlock(s)
	case *ast.IfStmt:
		for _, br := range s.Branches {
			if br.Condition != nil {
				f.label(br.Condition, ast.Borrowing)
			}
			f.AnalyseBlock(br.Body)
		}
	case *ast.RepeatWhileStmt:
		f.label(s.Condition, ast.Borrowing)
		f.AnalyseBlock(s.Body)
	case *ast.ForInStmt:
		f.label(s.Iterable, ast.Borrowing)
		f.AnalyseBlock(s.Body)
	case *ast.UnsafeBlockStmt:
		f.AnalyseBlock(s.Body)
	case *ast.ErrorHandlerStmt:
		f.AnalyseBlock(s.Attempt)
		f.AnalyseBlock(s.Handler)
	case *ast.ConditionalAssignStmt:
		f.label(s.Bind, ast.Borrowing)
	}
}

// label assigns category to expr and recurses into its children: unwrap
// escapes its target, is-error borrows its target, a method call's
// arguments are borrowing by default.
func (f *Flow) label(expr ast.Expression, category ast.MemoryFlow) {
	if expr == nil {
		return
	}
	type flowSetter interface{ SetFlow(ast.MemoryFlow) }
	if fs, ok := expr.(flowSetter); ok {
		fs.SetFlow(category)
	}

	switch e := expr.(type) {
	case *ast.UnwrapExpr:
		f.label(e.Value, ast.Escaping)
	case *ast.IsErrorExpr:
		f.label(e.Value, ast.Borrowing)
	case *ast.MethodCallExpr:
		f.label(e.Receiver, ast.Borrowing)
		for _, arg := range e.Args {
			f.label(arg, ast.Borrowing)
		}
	case *ast.SuperMethodCallExpr:
		for _, arg := range e.Args {
			f.label(arg, ast.Borrowing)
		}
	case *ast.TypeMethodCallExpr:
		for _, arg := range e.Args {
			f.label(arg, ast.Borrowing)
		}
	case *ast.InitializationExpr:
		for _, arg := range e.Args {
			f.label(arg, ast.Borrowing)
		}
	case *ast.CallableCallExpr:
		f.label(e.Callee, ast.Borrowing)
		for _, arg := range e.Args {
			f.label(arg, ast.Borrowing)
		}
	case *ast.BinaryOperatorExpr:
		f.label(e.Left, ast.Borrowing)
		f.label(e.Right, ast.Borrowing)
	case *ast.ConcatenateExpr:
		for _, p := range e.Parts {
			f.label(p, ast.Borrowing)
		}
	case *ast.ListLiteralExpr:
		for _, el := range e.Elements {
			f.label(el, ast.Escaping)
		}
	case *ast.DictionaryLiteralExpr:
		for i := range e.Keys {
			f.label(e.Keys[i], ast.Escaping)
			f.label(e.Values[i], ast.Escaping)
		}
	case *ast.CastExpr:
		f.label(e.Value, ast.Borrowing)
	case *ast.ConditionalBindExpr:
		f.label(e.Source, ast.Borrowing)
		if name, ok := sourceLocalName(e.Source); ok {
			f.Take(name, e.Pos())
		}
	case *ast.CaptureMethodExpr:
		f.label(e.Receiver, ast.Escaping)
	}
}

func sourceLocalName(expr ast.Expression) (string, bool) {
	if g, ok := expr.(*ast.GetVariableExpr); ok {
		return g.Name, true
	}
	return "", false
}
