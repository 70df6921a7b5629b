package build

import "sysyc/src/ast"

// flattenConstInit flattens a (possibly nested) constant initializer into a row-major buffer of
// length product(shape). Every leaf must const-evaluate; used for const array defs and for global
// var array defs (whose initializers must be compile-time constant regardless of shape).
func (ctx *Context) flattenConstInit(shape []int, init ast.Initializer) ([]int32, error) {
	buf := make([]int32, product(shape))
	if init != nil {
		if err := ctx.fillConst(buf, shape, init); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// fillConst writes the values described by init into buf (sized product(shape)), recursing into
// nested initializers aligned to sub-array boundaries; positions it does not reach are left at
// zero (Go's zero-value for int32), which is exactly the zero-fill the language requires.
func (ctx *Context) fillConst(buf []int32, shape []int, init ast.Initializer) error {
	switch v := init.(type) {
	case *ast.ExpInit:
		val, err := ctx.evalConst(v.Exp)
		if err != nil {
			return err
		}
		buf[0] = val
		return nil
	case *ast.ListInit:
		pos := 0
		for _, item := range v.Items {
			if pos >= len(buf) {
				break
			}
			if _, ok := item.(*ast.ListInit); ok {
				// Consume dimensions from the innermost outward until the nested initializer's
				// sub-shape boundary aligns with pos.
				subShape := alignedSubShape(shape, pos)
				subLen := product(subShape)
				if err := ctx.fillConst(buf[pos:pos+subLen], subShape, item); err != nil {
					return err
				}
				pos += subLen
				continue
			}
			val, err := ctx.evalConst(item.(*ast.ExpInit).Exp)
			if err != nil {
				return err
			}
			buf[pos] = val
			pos++
		}
		return nil
	}
	return errInternal("unknown initializer node")
}

// flattenLocalInit mirrors flattenConstInit but allows runtime-computed expressions: it returns a
// parallel slice of ast.Exp (nil entries marking positions the initializer does not cover)
// instead of evaluated int32s, so the caller can lower each given expression to a Store and
// zero-fill the rest.
func (ctx *Context) flattenLocalInit(shape []int, init ast.Initializer) ([]ast.Exp, error) {
	buf := make([]ast.Exp, product(shape))
	if init != nil {
		if err := fillLocal(buf, shape, init); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func fillLocal(buf []ast.Exp, shape []int, init ast.Initializer) error {
	switch v := init.(type) {
	case *ast.ExpInit:
		buf[0] = v.Exp
		return nil
	case *ast.ListInit:
		pos := 0
		for _, item := range v.Items {
			if pos >= len(buf) {
				break
			}
			if _, ok := item.(*ast.ListInit); ok {
				subShape := alignedSubShape(shape, pos)
				subLen := product(subShape)
				if err := fillLocal(buf[pos:pos+subLen], subShape, item); err != nil {
					return err
				}
				pos += subLen
				continue
			}
			buf[pos] = item.(*ast.ExpInit).Exp
			pos++
		}
		return nil
	}
	return errInternal("unknown initializer node")
}

// alignedSubShape returns the sub-array shape a single nested initializer occupies within an
// enclosing array of shape shape, given the write cursor pos (an offset within the enclosing
// sub-object): starting from the innermost dimension, dimensions are consumed while the cursor
// stays aligned to their combined stride, and never past shape[1:] (a nested brace can cover at
// most one full sub-array of its enclosing object). A cursor not aligned even to the innermost
// dimension yields an empty shape, so the nested list covers a single scalar slot.
func alignedSubShape(shape []int, pos int) []int {
	d := len(shape)
	stride := 1
	for d > 1 {
		next := stride * shape[d-1]
		if pos%next != 0 {
			break
		}
		stride = next
		d--
	}
	return shape[d:]
}

func product(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
