package ast

import (
	"github.com/emojicode/ecc/internal/token"
	"github.com/emojicode/ecc/internal/types"
)

// Parameter is one resolved (name, type) pair of a Function's signature.
type Parameter struct {
	Name string
	Type types.Type
}

// Function is one parsed-and-signature-resolved method, initializer, type
// method, or the package's starting-flag entry point — the unit
// internal/session drives through phases 3 to 7. Unlike registry.Method,
// which is the declared shape looked up by name resolution, Function
// additionally carries the parsed body and owner needed to actually
// analyse and generate it.
type Function struct {
	Name          string
	Owner         types.Ref
	IsTypeMethod  bool
	IsInitializer bool
	Final         bool
	Params        []Parameter
	ReturnType    types.Type
	ErrorEnum     *types.Ref
	ErrorPayload  types.Type
	Body          *BlockStmt
	Pos           token.Pos
}
