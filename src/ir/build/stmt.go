package build

import (
	"sysyc/src/ast"
	"sysyc/src/ir/koopa"
)

// lowerBlockItems lowers each item of a Block in order, without introducing its own scope (the
// caller decides whether a new scope is needed: lowerBlock below does for a nested {...}, while
// lowerFuncDef reuses the function's parameter scope directly for the top-level body).
func (ctx *Context) lowerBlockItems(items []ast.BlockItem) error {
	for _, item := range items {
		switch n := item.(type) {
		case *ast.ConstDecl:
			if err := ctx.lowerConstDecl(n); err != nil {
				return err
			}
		case *ast.VarDecl:
			if err := ctx.lowerVarDecl(n); err != nil {
				return err
			}
		case ast.Stmt:
			if err := ctx.lowerStmt(n); err != nil {
				return err
			}
		default:
			return errInternal("unknown block item")
		}
	}
	return nil
}

// lowerBlock lowers a nested {...} block: push scope, recurse, pop.
func (ctx *Context) lowerBlock(b *ast.Block) error {
	ctx.pushScope()
	defer ctx.popScope()
	return ctx.lowerBlockItems(b.Items)
}

func (ctx *Context) lowerStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.AssignStmt:
		return ctx.lowerAssign(n)
	case *ast.ExpStmt:
		if n.Exp == nil {
			return nil
		}
		_, err := ctx.lowerExp(n.Exp)
		return err
	case *ast.BlockStmt:
		return ctx.lowerBlock(n.Block)
	case *ast.IfStmt:
		return ctx.lowerIf(n)
	case *ast.WhileStmt:
		return ctx.lowerWhile(n)
	case *ast.BreakStmt:
		return ctx.lowerBreak()
	case *ast.ContinueStmt:
		return ctx.lowerContinue()
	case *ast.ReturnStmt:
		return ctx.lowerReturn(n)
	}
	return errInternal("unknown statement node")
}

func (ctx *Context) lowerAssign(n *ast.AssignStmt) error {
	addr, err := ctx.lowerAssignAddr(n.LVal)
	if err != nil {
		return err
	}
	v, err := ctx.lowerExp(n.Exp)
	if err != nil {
		return err
	}
	if err := ctx.requireInt(v); err != nil {
		return err
	}
	ctx.Prog.Store(ctx.bb(), v, addr)
	return nil
}

// lowerIf lowers an if/else statement: branch on cond != 0 into a then block (and an else block
// if present), each arm jumping to a shared end block if it falls through.
func (ctx *Context) lowerIf(n *ast.IfStmt) error {
	condV, err := ctx.lowerExp(n.Cond)
	if err != nil {
		return err
	}
	if err := ctx.requireInt(condV); err != nil {
		return err
	}
	cond := ctx.Prog.Binary(ctx.bb(), koopa.BNotEq, condV, ctx.Prog.Integer(0))

	thenBB := ctx.newBlock("then")
	endBB := ctx.newBlock("if_end")
	elseBB := endBB
	if n.Else != nil {
		elseBB = ctx.newBlock("else")
	}
	ctx.Prog.Branch(ctx.bb(), cond, thenBB, elseBB)

	ctx.curBB = thenBB
	if err := ctx.lowerStmt(n.Then); err != nil {
		return err
	}
	ctx.changeCurrentBB(endBB)

	if n.Else != nil {
		ctx.curBB = elseBB
		if err := ctx.lowerStmt(n.Else); err != nil {
			return err
		}
		ctx.changeCurrentBB(endBB)
	}

	ctx.curBB = endBB
	return nil
}

// lowerWhile lowers a pre-tested loop: a condition header block re-entered from the body's end,
// branching to the body or past the loop.
func (ctx *Context) lowerWhile(n *ast.WhileStmt) error {
	condBB := ctx.newBlock("while_cond")
	bodyBB := ctx.newBlock("while_body")
	endBB := ctx.newBlock("while_end")

	ctx.changeCurrentBB(condBB)
	ctx.loops.Push(loopTargets{cond: condBB, end: endBB})

	condV, err := ctx.lowerExp(n.Cond)
	if err != nil {
		return err
	}
	if err := ctx.requireInt(condV); err != nil {
		return err
	}
	cond := ctx.Prog.Binary(ctx.bb(), koopa.BNotEq, condV, ctx.Prog.Integer(0))
	ctx.Prog.Branch(ctx.bb(), cond, bodyBB, endBB)

	ctx.curBB = bodyBB
	if err := ctx.lowerStmt(n.Body); err != nil {
		return err
	}
	ctx.changeCurrentBB(condBB)

	ctx.loops.Pop()
	ctx.curBB = endBB
	return nil
}

func (ctx *Context) lowerBreak() error {
	if ctx.loops.Size() == 0 {
		return errNotInLoop()
	}
	t := ctx.loops.Peek().(loopTargets)
	ctx.Prog.Jump(ctx.bb(), t.end)
	return nil
}

func (ctx *Context) lowerContinue() error {
	if ctx.loops.Size() == 0 {
		return errNotInLoop()
	}
	t := ctx.loops.Peek().(loopTargets)
	ctx.Prog.Jump(ctx.bb(), t.cond)
	return nil
}

func (ctx *Context) lowerReturn(n *ast.ReturnStmt) error {
	if n.Exp == nil {
		ctx.Prog.Return(ctx.bb(), 0, false)
		return nil
	}
	v, err := ctx.lowerExp(n.Exp)
	if err != nil {
		return err
	}
	if err := ctx.requireInt(v); err != nil {
		return err
	}
	ctx.Prog.Return(ctx.bb(), v, true)
	return nil
}
