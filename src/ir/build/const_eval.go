package build

import "sysyc/src/ast"

// evalConst evaluates e to a compile-time int32. It fails with Undefined if an
// LVal names no visible binding, and with NotConst if it names a non-Const binding, names a
// const array without indices, indexes a const array with an index that is not itself
// compile-time constant, or contains a function call.
func (ctx *Context) evalConst(e ast.Exp) (int32, error) {
	switch n := e.(type) {
	case *ast.NumberExp:
		return n.Value, nil

	case *ast.UnaryExp:
		x, err := ctx.evalConst(n.X)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case ast.UnPlus:
			return x, nil
		case ast.UnMinus:
			return -x, nil
		case ast.UnNot:
			return boolInt(x == 0), nil
		}
		return 0, errInternal("unknown unary operator")

	case *ast.BinaryExp:
		return ctx.evalConstBinary(n)

	case *ast.LVal:
		return ctx.evalConstLVal(n)

	case *ast.CallExp:
		return 0, errNotConst("function call")
	}
	return 0, errInternal("unknown expression node in constant evaluator")
}

func (ctx *Context) evalConstBinary(n *ast.BinaryExp) (int32, error) {
	// && and || short-circuit even in constant evaluation: the right operand is only evaluated,
	// and only needs to be const-evaluable, when its value is actually required.
	if n.Op == ast.OpLAnd {
		l, err := ctx.evalConst(n.L)
		if err != nil {
			return 0, err
		}
		if l == 0 {
			return 0, nil
		}
		r, err := ctx.evalConst(n.R)
		if err != nil {
			return 0, err
		}
		return boolInt(r != 0), nil
	}
	if n.Op == ast.OpLOr {
		l, err := ctx.evalConst(n.L)
		if err != nil {
			return 0, err
		}
		if l != 0 {
			return 1, nil
		}
		r, err := ctx.evalConst(n.R)
		if err != nil {
			return 0, err
		}
		return boolInt(r != 0), nil
	}

	l, err := ctx.evalConst(n.L)
	if err != nil {
		return 0, err
	}
	r, err := ctx.evalConst(n.R)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case ast.OpAdd:
		return l + r, nil
	case ast.OpSub:
		return l - r, nil
	case ast.OpMul:
		return l * r, nil
	case ast.OpDiv:
		if r == 0 {
			return 0, errInternal("constant division by zero")
		}
		return l / r, nil
	case ast.OpMod:
		if r == 0 {
			return 0, errInternal("constant modulo by zero")
		}
		return l % r, nil
	case ast.OpLt:
		return boolInt(l < r), nil
	case ast.OpLe:
		return boolInt(l <= r), nil
	case ast.OpGt:
		return boolInt(l > r), nil
	case ast.OpGe:
		return boolInt(l >= r), nil
	case ast.OpEq:
		return boolInt(l == r), nil
	case ast.OpNe:
		return boolInt(l != r), nil
	}
	return 0, errInternal("unknown binary operator")
}

func (ctx *Context) evalConstLVal(lv *ast.LVal) (int32, error) {
	sym, ok := ctx.lookup(lv.Ident)
	if !ok {
		return 0, errUndefined(lv.Ident)
	}
	if sym.kind != symConst {
		return 0, errNotConst(lv.Ident)
	}
	if len(lv.Indices) == 0 {
		if !sym.constScalar {
			return 0, errNotConst(lv.Ident)
		}
		return sym.constVal, nil
	}
	idx, err := ctx.evalConstIndices(lv.Indices)
	if err != nil {
		return 0, err
	}
	flat, err := flattenIndex(sym.shape, idx)
	if err != nil {
		return 0, err
	}
	if flat < 0 || flat >= len(sym.constArray) {
		return 0, errInternal("constant array index out of bounds")
	}
	return sym.constArray[flat], nil
}

func (ctx *Context) evalConstIndices(exps []ast.Exp) ([]int, error) {
	idx := make([]int, len(exps))
	for i, e := range exps {
		v, err := ctx.evalConst(e)
		if err != nil {
			return nil, err
		}
		idx[i] = int(v)
	}
	return idx, nil
}

// flattenIndex converts a multi-dimensional index into a flat, row-major offset given shape.
func flattenIndex(shape []int, idx []int) (int, error) {
	if len(idx) > len(shape) {
		return 0, errInternal("too many indices for array shape")
	}
	offset := 0
	for i, v := range idx {
		stride := 1
		for _, d := range shape[i+1:] {
			stride *= d
		}
		offset += v * stride
	}
	return offset, nil
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
