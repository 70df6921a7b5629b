package build

import (
	"sysyc/src/ast"
	"sysyc/src/ir/koopa"
)

// lowerExp lowers e to a value.
func (ctx *Context) lowerExp(e ast.Exp) (koopa.ValueID, error) {
	switch n := e.(type) {
	case *ast.NumberExp:
		return ctx.Prog.Integer(n.Value), nil

	case *ast.UnaryExp:
		return ctx.lowerUnary(n)

	case *ast.BinaryExp:
		if n.Op == ast.OpLAnd || n.Op == ast.OpLOr {
			return ctx.lowerShortCircuit(n)
		}
		l, err := ctx.lowerExp(n.L)
		if err != nil {
			return 0, err
		}
		if err := ctx.requireInt(l); err != nil {
			return 0, err
		}
		r, err := ctx.lowerExp(n.R)
		if err != nil {
			return 0, err
		}
		if err := ctx.requireInt(r); err != nil {
			return 0, err
		}
		return ctx.Prog.Binary(ctx.bb(), binOpMap[n.Op], l, r), nil

	case *ast.LVal:
		return ctx.lowerLValValue(n)

	case *ast.CallExp:
		return ctx.lowerCall(n)
	}
	return 0, errInternal("unknown expression node")
}

var binOpMap = map[ast.BinOp]koopa.BinaryOp{
	ast.OpAdd: koopa.BAdd,
	ast.OpSub: koopa.BSub,
	ast.OpMul: koopa.BMul,
	ast.OpDiv: koopa.BDiv,
	ast.OpMod: koopa.BMod,
	ast.OpLt:  koopa.BLt,
	ast.OpLe:  koopa.BLe,
	ast.OpGt:  koopa.BGt,
	ast.OpGe:  koopa.BGe,
	ast.OpEq:  koopa.BEq,
	ast.OpNe:  koopa.BNotEq,
}

func (ctx *Context) lowerUnary(n *ast.UnaryExp) (koopa.ValueID, error) {
	x, err := ctx.lowerExp(n.X)
	if err != nil {
		return 0, err
	}
	if err := ctx.requireInt(x); err != nil {
		return 0, err
	}
	switch n.Op {
	case ast.UnPlus:
		return x, nil
	case ast.UnMinus:
		return ctx.Prog.Binary(ctx.bb(), koopa.BSub, ctx.Prog.Integer(0), x), nil
	case ast.UnNot:
		return ctx.Prog.Binary(ctx.bb(), koopa.BEq, ctx.Prog.Integer(0), x), nil
	}
	return 0, errInternal("unknown unary operator")
}

// lowerShortCircuit lowers a && b / a || b into a branch-and-materialized-temporary pattern: a
// dedicated result slot, a dedicated RHS-evaluation block and a dedicated join block, so the form
// behaves correctly no matter where it is embedded inside a larger expression.
func (ctx *Context) lowerShortCircuit(n *ast.BinaryExp) (koopa.ValueID, error) {
	isAnd := n.Op == ast.OpLAnd

	slot := ctx.Prog.Alloc(ctx.bb(), "%"+ctx.names.Next("sc_result"), koopa.Int32)
	init := int32(1)
	if isAnd {
		init = 0
	}
	ctx.Prog.Store(ctx.bb(), ctx.Prog.Integer(init), slot)

	lv, err := ctx.lowerExp(n.L)
	if err != nil {
		return 0, err
	}
	if err := ctx.requireInt(lv); err != nil {
		return 0, err
	}
	lCond := ctx.Prog.Binary(ctx.bb(), koopa.BNotEq, lv, ctx.Prog.Integer(0))

	rhsPrefix := "or_rhs"
	if isAnd {
		rhsPrefix = "and_rhs"
	}
	rhsBB := ctx.newBlock(rhsPrefix)
	joinBB := ctx.newBlock("sc_end")

	if isAnd {
		ctx.Prog.Branch(ctx.bb(), lCond, rhsBB, joinBB)
	} else {
		ctx.Prog.Branch(ctx.bb(), lCond, joinBB, rhsBB)
	}

	ctx.curBB = rhsBB
	rv, err := ctx.lowerExp(n.R)
	if err != nil {
		return 0, err
	}
	if err := ctx.requireInt(rv); err != nil {
		return 0, err
	}
	rCond := ctx.Prog.Binary(ctx.bb(), koopa.BNotEq, rv, ctx.Prog.Integer(0))
	ctx.Prog.Store(ctx.bb(), rCond, slot)
	ctx.changeCurrentBB(joinBB)

	return ctx.Prog.Load(ctx.bb(), slot), nil
}

// lowerCall lowers a function call, checking arity against the callee's registered signature.
func (ctx *Context) lowerCall(n *ast.CallExp) (koopa.ValueID, error) {
	sym, ok := ctx.lookup(n.Ident)
	if !ok {
		return 0, errUndefined(n.Ident)
	}
	if sym.kind != symFunc {
		return 0, errTypeMismatch("%s is not a function", n.Ident)
	}
	f := ctx.Prog.Func(sym.fn)
	if len(n.Args) != len(f.ParamTypes) {
		return 0, errTypeMismatch("%s expects %d argument(s), got %d", n.Ident, len(f.ParamTypes), len(n.Args))
	}
	args := make([]koopa.ValueID, len(n.Args))
	for i, a := range n.Args {
		v, err := ctx.lowerExp(a)
		if err != nil {
			return 0, err
		}
		if !f.ParamTypes[i].IsPointer() {
			if err := ctx.requireInt(v); err != nil {
				return 0, err
			}
		}
		args[i] = v
	}
	return ctx.Prog.Call(ctx.bb(), sym.fn, args), nil
}

// requireInt rejects a value of Koopa's unit type, catching a void-typed call result used where a
// value is required.
func (ctx *Context) requireInt(v koopa.ValueID) error {
	if ctx.Prog.Value(v).Typ.IsUnit() {
		return errTypeMismatch("void value used where a value is required")
	}
	return nil
}

// lowerLValValue lowers an LVal read. A scalar const resolves through the constant evaluator
// directly, since it has no backing storage. Everything else (a plain variable, an array
// parameter, or a const array) resolves to its address (possibly decaying to a pointer for a
// bare array reference) and is loaded unless already decayed. A const array is addressed the same
// way a variable array is: its elements still
// live at a real stack/global slot, so an index that is itself only known at runtime (`t[i]`)
// works exactly as it does for a non-const array.
func (ctx *Context) lowerLValValue(lv *ast.LVal) (koopa.ValueID, error) {
	sym, ok := ctx.lookup(lv.Ident)
	if !ok {
		return 0, errUndefined(lv.Ident)
	}
	if sym.kind == symConst && sym.constScalar {
		v, err := ctx.evalConst(lv)
		if err != nil {
			return 0, err
		}
		return ctx.Prog.Integer(v), nil
	}
	if sym.kind != symVar && sym.kind != symArrayParam && sym.kind != symConst {
		return 0, errTypeMismatch("%s is not a variable", lv.Ident)
	}
	addr, decayed, err := ctx.lvalAddress(sym, lv)
	if err != nil {
		return 0, err
	}
	if decayed {
		return addr, nil
	}
	return ctx.Prog.Load(ctx.bb(), addr), nil
}

// lowerAssignAddr resolves the address an AssignStmt's LHS writes to. It rejects assignment
// through a Const binding and through a not-fully-indexed array reference (assigning to an array
// as a whole has no IR representation here).
func (ctx *Context) lowerAssignAddr(lv *ast.LVal) (koopa.ValueID, error) {
	sym, ok := ctx.lookup(lv.Ident)
	if !ok {
		return 0, errUndefined(lv.Ident)
	}
	if sym.kind == symConst {
		return 0, errAssignToConst(lv.Ident)
	}
	if sym.kind != symVar && sym.kind != symArrayParam {
		return 0, errTypeMismatch("%s is not assignable", lv.Ident)
	}
	addr, decayed, err := ctx.lvalAddress(sym, lv)
	if err != nil {
		return 0, err
	}
	if decayed {
		return 0, errTypeMismatch("cannot assign to array %s as a whole", lv.Ident)
	}
	return addr, nil
}

// lvalAddress dispatches to the plain-array or array-parameter addressing rule depending on sym's
// kind. The returned bool reports whether the address is a decayed pointer to a sub-array (true)
// rather than the address of a scalar (false).
func (ctx *Context) lvalAddress(sym *symbol, lv *ast.LVal) (koopa.ValueID, bool, error) {
	if sym.kind == symArrayParam {
		return ctx.arrayParamAddress(sym, lv)
	}
	if len(sym.shape) == 0 {
		if len(lv.Indices) != 0 {
			return 0, false, errTypeMismatch("%s is not an array", lv.Ident)
		}
		return sym.ptr, false, nil
	}
	return ctx.plainArrayAddress(sym, lv)
}

func (ctx *Context) plainArrayAddress(sym *symbol, lv *ast.LVal) (koopa.ValueID, bool, error) {
	k, m := len(sym.shape), len(lv.Indices)
	if m > k {
		return 0, false, errTypeMismatch("too many indices for %s", lv.Ident)
	}
	idx, err := ctx.lowerIndices(lv.Indices)
	if err != nil {
		return 0, false, err
	}
	cur := sym.ptr
	for _, iv := range idx {
		cur = ctx.Prog.GetElemPtr(ctx.bb(), cur, iv)
	}
	if m < k {
		cur = ctx.Prog.GetElemPtr(ctx.bb(), cur, ctx.Prog.Integer(0))
		return cur, true, nil
	}
	return cur, false, nil
}

func (ctx *Context) arrayParamAddress(sym *symbol, lv *ast.LVal) (koopa.ValueID, bool, error) {
	loaded := ctx.Prog.Load(ctx.bb(), sym.ptr)
	if len(lv.Indices) == 0 {
		return loaded, true, nil
	}
	totalK := len(sym.shape) + 1
	m := len(lv.Indices)
	if m > totalK {
		return 0, false, errTypeMismatch("too many indices for %s", lv.Ident)
	}
	idx, err := ctx.lowerIndices(lv.Indices)
	if err != nil {
		return 0, false, err
	}
	cur := ctx.Prog.GetPtr(ctx.bb(), loaded, idx[0])
	for i := 1; i < len(idx); i++ {
		cur = ctx.Prog.GetElemPtr(ctx.bb(), cur, idx[i])
	}
	if m < totalK {
		cur = ctx.Prog.GetElemPtr(ctx.bb(), cur, ctx.Prog.Integer(0))
		return cur, true, nil
	}
	return cur, false, nil
}

func (ctx *Context) lowerIndices(exps []ast.Exp) ([]koopa.ValueID, error) {
	idx := make([]koopa.ValueID, len(exps))
	for i, e := range exps {
		v, err := ctx.lowerExp(e)
		if err != nil {
			return nil, err
		}
		if err := ctx.requireInt(v); err != nil {
			return nil, err
		}
		idx[i] = v
	}
	return idx, nil
}
