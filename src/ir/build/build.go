package build

import (
	"fmt"

	"sysyc/src/ast"
	"sysyc/src/ir/koopa"
	"sysyc/src/util"
)

// intrinsics lists the library functions declared automatically at the start of compilation,
// callable from source like any other function.
var intrinsics = []struct {
	name    string
	params  []koopa.Type
	retType koopa.Type
}{
	{"getint", nil, koopa.Int32},
	{"getch", nil, koopa.Int32},
	{"getarray", []koopa.Type{koopa.Pointer(koopa.Int32)}, koopa.Int32},
	{"putint", []koopa.Type{koopa.Int32}, koopa.Unit},
	{"putch", []koopa.Type{koopa.Int32}, koopa.Unit},
	{"putarray", []koopa.Type{koopa.Int32, koopa.Pointer(koopa.Int32)}, koopa.Unit},
	{"starttime", nil, koopa.Unit},
	{"stoptime", nil, koopa.Unit},
}

// Build lowers a complete compilation unit into a koopa.Program.
func Build(cu *ast.CompUnit) (*koopa.Program, error) {
	ctx := NewContext()

	for _, in := range intrinsics {
		fn := ctx.Prog.DeclareFunction("@"+in.name, in.params, in.retType)
		ctx.define(in.name, &symbol{kind: symFunc, fn: fn})
	}

	// Pass 1: lower global declarations in source order (so a global's initializer or a later
	// array dimension can reference an earlier const), registering every function's signature as
	// its FuncDef is reached. Pass 2 then lowers function bodies with every signature already
	// visible, so forward and mutually-recursive calls resolve regardless of definition order.
	for _, item := range cu.Items {
		switch n := item.(type) {
		case *ast.ConstDecl:
			if err := ctx.lowerConstDecl(n); err != nil {
				return nil, err
			}
		case *ast.VarDecl:
			if err := ctx.lowerVarDecl(n); err != nil {
				return nil, err
			}
		case *ast.FuncDef:
			paramTypes := make([]koopa.Type, len(n.Params))
			for i, p := range n.Params {
				t, err := ctx.paramType(p)
				if err != nil {
					return nil, err
				}
				paramTypes[i] = t
			}
			retType := koopa.Unit
			if n.RetType == ast.BInt {
				retType = koopa.Int32
			}
			fn, _ := ctx.Prog.NewFunction("@"+n.Ident, paramTypes, paramNames(n.Params), retType)
			ctx.define(n.Ident, &symbol{kind: symFunc, fn: fn})
		}
	}

	for _, item := range cu.Items {
		if fd, ok := item.(*ast.FuncDef); ok {
			if err := ctx.lowerFuncDef(fd); err != nil {
				return nil, fmt.Errorf("function %s: %w", fd.Ident, err)
			}
		}
	}
	return ctx.Prog, nil
}

func paramNames(params []*ast.FuncFParam) []string {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Ident
	}
	return names
}

// paramType computes the Koopa parameter type for a FuncFParam: scalars pass as i32; arrays decay
// to a pointer to their sub-array type, the unspecified first dimension dropped
// (ast.FuncFParam.Dims already excludes it). Dimension-size expressions are const-evaluated
// against whatever global scope is visible at the point the enclosing FuncDef is registered,
// since signatures are registered in source order.
func (ctx *Context) paramType(p *ast.FuncFParam) (koopa.Type, error) {
	if !p.IsArray {
		return koopa.Int32, nil
	}
	if len(p.Dims) == 0 {
		return koopa.Pointer(koopa.Int32), nil
	}
	shape, err := ctx.evalShape(p.Dims)
	if err != nil {
		return koopa.Type{}, err
	}
	return koopa.Pointer(arrayType(shape)), nil
}

// lowerFuncDef lowers a function definition's body: entry block, one stack slot per parameter
// (array parameters hold the incoming pointer), then the body, then a default return if the last
// block is left open.
func (ctx *Context) lowerFuncDef(fd *ast.FuncDef) error {
	sym, _ := ctx.lookup(fd.Ident)
	fn := sym.fn
	f := ctx.Prog.Func(fn)

	ctx.fn = fn
	ctx.global = false
	ctx.names = util.NewNameGen() // block/local names restart per function; %entry stays reserved.
	entry := ctx.Prog.NewBlock(fn, "%entry")
	ctx.curBB = entry

	ctx.pushScope()
	defer ctx.popScope()

	for i, p := range fd.Params {
		argRef := f.Params[i]
		slotTyp := f.ParamTypes[i]
		name := "%" + ctx.names.Next(p.Ident)
		slot := ctx.Prog.Alloc(ctx.bb(), name, slotTyp)
		ctx.Prog.Store(ctx.bb(), argRef, slot)
		if p.IsArray {
			shape, err := ctx.evalShape(p.Dims)
			if err != nil {
				return err
			}
			elemTyp := koopa.Int32
			if len(shape) > 0 {
				elemTyp = arrayType(shape)
			}
			ctx.define(p.Ident, &symbol{kind: symArrayParam, ptr: slot, typ: elemTyp, shape: shape})
		} else {
			ctx.define(p.Ident, &symbol{kind: symVar, ptr: slot, typ: koopa.Int32})
		}
	}

	if err := ctx.lowerBlockItems(fd.Body.Items); err != nil {
		return err
	}

	if !ctx.Prog.Block(ctx.curBB).Terminated(ctx.Prog) {
		if f.RetType.IsUnit() {
			ctx.Prog.Return(ctx.curBB, 0, false)
		} else {
			ctx.Prog.Return(ctx.curBB, ctx.Prog.Integer(0), true)
		}
	}
	ctx.global = true
	return nil
}
