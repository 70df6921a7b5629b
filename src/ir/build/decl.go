package build

import (
	"fmt"

	"sysyc/src/ast"
	"sysyc/src/ir/koopa"
)

// lowerConstDecl lowers every ConstDef in d, inserting a Const symbol-table entry for each.
// A scalar const emits no IR at all; a const array also gets backing storage (see lowerConstDef).
func (ctx *Context) lowerConstDecl(d *ast.ConstDecl) error {
	for _, def := range d.Defs {
		if err := ctx.lowerConstDef(def); err != nil {
			return fmt.Errorf("line %d: %w", def.Line, err)
		}
	}
	return nil
}

func (ctx *Context) lowerConstDef(def *ast.ConstDef) error {
	if len(def.Dims) == 0 {
		v, err := ctx.evalConst(def.Init.(*ast.ExpInit).Exp)
		if err != nil {
			return err
		}
		ctx.define(def.Ident, &symbol{kind: symConst, constScalar: true, constVal: v})
		return nil
	}

	shape, err := ctx.evalShape(def.Dims)
	if err != nil {
		return err
	}
	flat, err := ctx.flattenConstInit(shape, def.Init)
	if err != nil {
		return err
	}

	// A const array still needs real storage: the constant evaluator only ever demands that the
	// *indices* of a constant expression's LVal be themselves compile-time constant (kept
	// available via constArray below for that case), not that every ordinary read of the array be
	// one. Reading a const array with a runtime-computed index (`const int t[4] = {...}; return
	// t[i];`) is ordinary SysY and must address the same way a plain array does.
	elemTyp := arrayType(shape)
	var ptr koopa.ValueID
	if ctx.global {
		ptr = ctx.Prog.GlobalAlloc("@"+def.Ident, elemTyp, ctx.constAggregate(shape, flat))
	} else {
		ptr = ctx.Prog.Alloc(ctx.bb(), "%"+ctx.names.Next(def.Ident), elemTyp)
		for i, v := range flat {
			ctx.Prog.Store(ctx.bb(), ctx.Prog.Integer(v), ctx.arrayElemAddr(ptr, shape, i))
		}
	}
	ctx.define(def.Ident, &symbol{kind: symConst, constArray: flat, shape: shape, ptr: ptr, typ: elemTyp})
	return nil
}

// lowerVarDecl lowers every VarDef in d.
func (ctx *Context) lowerVarDecl(d *ast.VarDecl) error {
	for _, def := range d.Defs {
		if err := ctx.lowerVarDef(def); err != nil {
			return fmt.Errorf("line %d: %w", def.Line, err)
		}
	}
	return nil
}

func (ctx *Context) lowerVarDef(def *ast.VarDef) error {
	if len(def.Dims) == 0 {
		return ctx.lowerScalarVarDef(def)
	}
	return ctx.lowerArrayVarDef(def)
}

func (ctx *Context) lowerScalarVarDef(def *ast.VarDef) error {
	if ctx.global {
		var init koopa.ValueID
		if def.Init != nil {
			v, err := ctx.evalConst(def.Init.(*ast.ExpInit).Exp)
			if err != nil {
				return err
			}
			init = ctx.Prog.Integer(v)
		} else {
			init = ctx.Prog.Integer(0)
		}
		ptr := ctx.Prog.GlobalAlloc("@"+def.Ident, koopa.Int32, init)
		ctx.define(def.Ident, &symbol{kind: symVar, ptr: ptr, typ: koopa.Int32})
		return nil
	}

	name := "%" + ctx.names.Next(def.Ident)
	ptr := ctx.Prog.Alloc(ctx.bb(), name, koopa.Int32)
	ctx.define(def.Ident, &symbol{kind: symVar, ptr: ptr, typ: koopa.Int32})
	if def.Init != nil {
		v, err := ctx.lowerExp(def.Init.(*ast.ExpInit).Exp)
		if err != nil {
			return err
		}
		ctx.Prog.Store(ctx.bb(), v, ptr)
	}
	return nil
}

func (ctx *Context) lowerArrayVarDef(def *ast.VarDef) error {
	shape, err := ctx.evalShape(def.Dims)
	if err != nil {
		return err
	}
	elemTyp := arrayType(shape)

	if ctx.global {
		flat, err := ctx.flattenConstInit(shape, def.Init)
		if err != nil {
			return err
		}
		init := ctx.constAggregate(shape, flat)
		ptr := ctx.Prog.GlobalAlloc("@"+def.Ident, elemTyp, init)
		ctx.define(def.Ident, &symbol{kind: symVar, ptr: ptr, typ: elemTyp, shape: shape})
		return nil
	}

	name := "%" + ctx.names.Next(def.Ident)
	ptr := ctx.Prog.Alloc(ctx.bb(), name, elemTyp)
	ctx.define(def.Ident, &symbol{kind: symVar, ptr: ptr, typ: elemTyp, shape: shape})

	if def.Init == nil {
		// No initializer at all: the array is left uninitialized, same as a scalar `int x;`.
		return nil
	}
	exps, err := ctx.flattenLocalInit(shape, def.Init)
	if err != nil {
		return err
	}
	for i, e := range exps {
		addr := ctx.arrayElemAddr(ptr, shape, i)
		if e == nil {
			// Position not covered by the initializer: zero-fill.
			ctx.Prog.Store(ctx.bb(), ctx.Prog.Integer(0), addr)
			continue
		}
		v, err := ctx.lowerExp(e)
		if err != nil {
			return err
		}
		ctx.Prog.Store(ctx.bb(), v, addr)
	}
	return nil
}

// arrayElemAddr returns the address of the flat index-th scalar element of an array of shape
// shape whose base is ptr, via a chain of GetElemPtr (one per dimension).
func (ctx *Context) arrayElemAddr(ptr koopa.ValueID, shape []int, flat int) koopa.ValueID {
	cur := ptr
	rem := flat
	for i := range shape {
		stride := product(shape[i+1:])
		idx := rem / stride
		rem %= stride
		cur = ctx.Prog.GetElemPtr(ctx.bb(), cur, ctx.Prog.Integer(int32(idx)))
	}
	return cur
}

// constAggregate wraps a flat, row-major constant buffer into right-folded Aggregate values,
// innermost dimension first. A sub-aggregate that is wholly zero is represented as a single
// ZeroInit rather than per-element Integer(0) values, so the .data emitter can collapse it to one
// .zero directive.
func (ctx *Context) constAggregate(shape []int, flat []int32) koopa.ValueID {
	return ctx.buildAggregate(shape, flat)
}

func (ctx *Context) buildAggregate(shape []int, flat []int32) koopa.ValueID {
	if len(shape) == 0 {
		return ctx.Prog.Integer(flat[0])
	}
	if allZero(flat) {
		return ctx.Prog.ZeroInit(arrayType(shape))
	}
	stride := product(shape[1:])
	elems := make([]koopa.ValueID, shape[0])
	for i := 0; i < shape[0]; i++ {
		elems[i] = ctx.buildAggregate(shape[1:], flat[i*stride:(i+1)*stride])
	}
	return ctx.Prog.Aggregate(arrayType(shape), elems)
}

func allZero(flat []int32) bool {
	for _, v := range flat {
		if v != 0 {
			return false
		}
	}
	return true
}

// evalShape const-evaluates each dimension-size expression of an array declaration.
func (ctx *Context) evalShape(dims []ast.Exp) ([]int, error) {
	shape := make([]int, len(dims))
	for i, d := range dims {
		v, err := ctx.evalConst(d)
		if err != nil {
			return nil, err
		}
		shape[i] = int(v)
	}
	return shape, nil
}

// arrayType builds the nested koopa.Array(...) type for a declared shape.
func arrayType(shape []int) koopa.Type {
	t := koopa.Int32
	for i := len(shape) - 1; i >= 0; i-- {
		t = koopa.Array(t, shape[i])
	}
	return t
}
