package ast

// Exp is the tagged union of expression node kinds produced by the precedence-layered grammar
// LOr -> LAnd -> Eq -> Rel -> Add -> Mul -> Unary -> Primary. The grammar's precedence
// layering only matters to the parser that builds this tree; the tree itself is flat, the way
// go/ast represents all binary expressions with one BinaryExpr node regardless of precedence.
type Exp interface {
	exp()
}

// BinOp enumerates every binary operator produced across the Add/Mul/Rel/Eq/LAnd/LOr layers.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpLAnd
	OpLOr
)

// UnOp enumerates unary prefix operators.
type UnOp int

const (
	UnPlus UnOp = iota
	UnMinus
	UnNot
)

// NumberExp is an integer literal.
type NumberExp struct {
	Value int32
}

func (*NumberExp) exp() {}

// LVal names a variable, array element, or array-parameter element.
// Indices is empty for a scalar reference.
type LVal struct {
	Ident   string
	Indices []Exp
	Line    int
}

func (*LVal) exp() {}

// UnaryExp applies a unary operator to an operand.
type UnaryExp struct {
	Op UnOp
	X  Exp
}

func (*UnaryExp) exp() {}

// BinaryExp applies a binary operator to two operands.
type BinaryExp struct {
	Op   BinOp
	L, R Exp
}

func (*BinaryExp) exp() {}

// CallExp calls a named function (including the library intrinsics) with arguments.
type CallExp struct {
	Ident string
	Args  []Exp
	Line  int
}

func (*CallExp) exp() {}
