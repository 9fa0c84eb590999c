// Package cerrors provides the centralized error taxonomy and structured
// reporting the rest of the compiler reports through.
package cerrors

// Error codes follow a phase-prefixed taxonomy: LEX (lexer, pass-through
// only), PAR (parser), NAM (name resolution), TYP (type checking), SEM
// (semantic), MEM (memory-flow).
const (
	// Lexer errors are produced by an external collaborator; no code path
	// in this compiler reports LEX001 itself.
	LEX001 = "LEX001" // malformed token

	PAR001 = "PAR001" // unexpected token
	PAR002 = "PAR002" // missing closing delimiter (🍉 expected)
	PAR003 = "PAR003" // duplicate attribute
	PAR004 = "PAR004" // attribute disallowed at this position
	PAR005 = "PAR005" // invalid generic-argument-list syntax

	NAM001 = "NAM001" // unknown type name
	NAM002 = "NAM002" // duplicate type declaration
	NAM003 = "NAM003" // variable or method not found
	NAM004 = "NAM004" // import of a type not exported by its package

	TYP001 = "TYP001" // incompatible types
	TYP002 = "TYP002" // generic argument count mismatch
	TYP003 = "TYP003" // optional used where disallowed
	TYP004 = "TYP004" // generic variable in a disallowed position
	TYP005 = "TYP005" // 🍺 used on a non-optional, non-error type
	TYP006 = "TYP006" // 🚥 used on a non-error type

	SEM001 = "SEM001" // access violation (private member from outside owner)
	SEM002 = "SEM002" // duplicate starting-flag method
	SEM003 = "SEM003" // required initializer not implemented
	SEM004 = "SEM004" // raise in a function that declares no error return type
	SEM005 = "SEM005" // class conforms to an optional protocol
	SEM006 = "SEM006" // class declares more than one direct superclass / cycle

	MEM001 = "MEM001" // double take of the same binding
	MEM002 = "MEM002" // escape of a non-escaping binding

	SCOPE001 = "SCOPE001" // shadowing warning
	SCOPE002 = "SCOPE002" // recommend frozen warning
)

// Phase names used in Report.Phase.
const (
	PhaseLexer    = "lexer"
	PhaseParser   = "parser"
	PhaseName     = "name"
	PhaseType     = "typecheck"
	PhaseSemantic = "semantic"
	PhaseMemflow  = "memflow"
	PhaseBoxing   = "boxing"
	PhaseCodegen  = "codegen"
)
