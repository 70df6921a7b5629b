// Package build lowers a parsed src/ast.CompUnit into a src/ir/koopa.Program: a recursive walk
// over the tree driven by a scope-stack symbol table, emitting IR values into the current basic
// block as a side effect. It owns the constant evaluator, the array-initializer flattening engine,
// and the control-flow block management that keeps every block singly terminated.
package build

import (
	"fmt"

	"sysyc/src/ir/koopa"
	"sysyc/src/util"
)

// symbolKind tags the binding kind recorded by the symbol stack.
type symbolKind int

const (
	symConst symbolKind = iota
	symVar
	symArrayParam
	symFunc
)

// symbol is a single symbol-stack entry. Which fields are meaningful depends on kind.
type symbol struct {
	kind symbolKind

	// symConst
	constScalar bool
	constVal    int32   // valid if constScalar
	constArray  []int32 // flattened, row-major; valid if !constScalar
	shape       []int   // declared array shape, const or var.

	// symVar / symArrayParam / symConst array (!constScalar)
	ptr koopa.ValueID // address of the storage, or (symArrayParam) of the stored pointer.
	typ koopa.Type     // element type: Int32 for scalars, Array(...) for arrays.

	// symFunc
	fn koopa.FuncID
}

// loopTargets names the two jump destinations a break/continue inside a while loop may need.
type loopTargets struct {
	cond koopa.BlockID // continue's target: the loop's condition-check header.
	end  koopa.BlockID // break's target: the block following the loop.
}

// Context is the IR builder context: it owns the Program under construction, the current
// function/block cursor, the symbol-table scope stack, the loop-target stack, a per-function
// unique name generator, and the global-scope flag.
type Context struct {
	Prog *koopa.Program

	scopes *util.Stack // element type: map[string]*symbol, innermost scope on top.
	loops  *util.Stack // element type: loopTargets, innermost loop on top.
	names  *util.NameGen

	fn     koopa.FuncID
	curBB  koopa.BlockID
	global bool
}

// NewContext creates a builder context over a fresh Program, with a single global scope pushed.
func NewContext() *Context {
	ctx := &Context{
		Prog:   koopa.NewProgram(),
		scopes: &util.Stack{},
		loops:  &util.Stack{},
		names:  util.NewNameGen(),
		global: true,
	}
	ctx.pushScope()
	return ctx
}

func (ctx *Context) pushScope() {
	ctx.scopes.Push(make(map[string]*symbol))
}

func (ctx *Context) popScope() {
	ctx.scopes.Pop()
}

// define inserts sym under name into the innermost scope, shadowing outer bindings and overriding
// any prior entry of the same name within the same frame.
func (ctx *Context) define(name string, sym *symbol) {
	ctx.scopes.Peek().(map[string]*symbol)[name] = sym
}

// lookup walks the scope stack from innermost to outermost and returns the first binding found.
func (ctx *Context) lookup(name string) (*symbol, bool) {
	n := ctx.scopes.Size()
	for depth := 1; depth <= n; depth++ {
		scope := ctx.scopes.Get(depth).(map[string]*symbol)
		if sym, ok := scope[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

func errUndefined(name string) error     { return fmt.Errorf("undefined: %s", name) }
func errNotConst(ctx string) error       { return fmt.Errorf("not a compile-time constant: %s", ctx) }
func errAssignToConst(name string) error { return fmt.Errorf("cannot assign to const: %s", name) }
func errNotInLoop() error                { return fmt.Errorf("break/continue outside any loop") }
func errTypeMismatch(format string, args ...interface{}) error {
	return fmt.Errorf("type mismatch: "+format, args...)
}
func errInternal(format string, args ...interface{}) error {
	return fmt.Errorf("internal: "+format, args...)
}

// changeCurrentBB switches the builder's cursor to bb, first closing off the previous block with
// an unconditional jump if it does not already end in a terminator.
func (ctx *Context) changeCurrentBB(bb koopa.BlockID) {
	if ctx.curBB != bb && !ctx.Prog.Block(ctx.curBB).Terminated(ctx.Prog) {
		ctx.Prog.Jump(ctx.curBB, bb)
	}
	ctx.curBB = bb
}

// newBlock creates a new basic block in the current function, named via the per-function unique
// name generator, and returns its handle without switching to it.
func (ctx *Context) newBlock(prefix string) koopa.BlockID {
	return ctx.Prog.NewBlock(ctx.fn, "%"+ctx.names.Next(prefix))
}

// bb returns the block to append into. If the current block is already terminated, lowering has
// encountered AST code that follows a terminating statement (e.g. code after `return`); open a
// fresh block so the single-terminator invariant holds, and make it the new cursor before
// returning it. Every lowering rule that is about to push a value or terminator into the current
// block calls this first rather than reading ctx.curBB directly. Trailing code lowered into such
// a block is unreachable by construction: nothing ever jumps to it.
func (ctx *Context) bb() koopa.BlockID {
	if ctx.Prog.Block(ctx.curBB).Terminated(ctx.Prog) {
		ctx.curBB = ctx.newBlock("unreachable")
	}
	return ctx.curBB
}
