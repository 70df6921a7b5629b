// Package ast defines the abstract syntax tree produced by src/frontend and consumed by
// src/ir/build.
package ast

// CompUnit is the root of a parsed translation unit: an ordered sequence of top-level items.
type CompUnit struct {
	Items []Item
}

// Item is either a Decl or a FuncDef at the top level of a CompUnit.
type Item interface {
	item()
}

// BType names the base type of a declaration.
type BType int

const (
	BInt BType = iota
	BVoid
)

func (b BType) String() string {
	if b == BVoid {
		return "void"
	}
	return "int"
}

// Decl is the tagged variant {ConstDecl, VarDecl}.
type Decl interface {
	Item
	decl()
}

// ConstDecl declares one or more compile-time constants of the same base type.
type ConstDecl struct {
	BType BType
	Defs  []*ConstDef
}

func (*ConstDecl) item() {}
func (*ConstDecl) decl() {}

// ConstDef defines a single named constant, optionally shaped as an array.
type ConstDef struct {
	Ident string
	Dims  []Exp // Dimension size expressions; each must be compile-time constant. Empty for scalars.
	Init  Initializer
	Line  int
}

// VarDecl declares one or more global or local variables of the same base type.
type VarDecl struct {
	BType BType
	Defs  []*VarDef
}

func (*VarDecl) item() {}
func (*VarDecl) decl() {}

// VarDef defines a single named variable, optionally shaped as an array and optionally
// initialized. Local initializers may be runtime-computed; global initializers must be
// compile-time constant.
type VarDef struct {
	Ident string
	Dims  []Exp
	Init  Initializer // nil if uninitialized.
	Line  int
}

// Initializer is either a single expression or a nested sequence of initializers (for arrays).
type Initializer interface {
	initializer()
}

// ExpInit is a scalar initializer: a single expression.
type ExpInit struct {
	Exp Exp
}

func (*ExpInit) initializer() {}

// ListInit is an aggregate initializer: a brace-enclosed, possibly nested, list of initializers.
type ListInit struct {
	Items []Initializer
}

func (*ListInit) initializer() {}

// FuncDef defines a function: return type, identifier, parameter list and body.
type FuncDef struct {
	RetType BType
	Ident   string
	Params  []*FuncFParam
	Body    *Block
	Line    int
}

func (*FuncDef) item() {}

// FuncFParam is the tagged variant {Var(ty, ident), Array(ty, ident, dims...)}.
type FuncFParam struct {
	BType BType
	Ident string
	// IsArray is true for array parameters. Array parameters decay to pointers; the first
	// dimension is unspecified and is not present in Dims.
	IsArray bool
	Dims    []Exp // Dimension sizes for dimensions after the first, only meaningful if IsArray.
}

// Block is a brace-enclosed sequence of block items (declarations or statements).
type Block struct {
	Items []BlockItem
}

// BlockItem is either a Decl or a Stmt inside a Block.
type BlockItem interface {
	blockItem()
}

func (*ConstDecl) blockItem() {}
func (*VarDecl) blockItem()   {}
