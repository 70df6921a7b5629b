package riscv

import (
	"strings"

	"sysyc/src/ir/koopa"
	"sysyc/src/util"
)

// Generate renders p as RISC-V 32-bit assembly text: a .data section holding every global
// variable's initial contents, followed by a .text section with one label per function.
func Generate(p *koopa.Program) string {
	wr := util.NewWriter()

	if len(p.Globals) > 0 {
		wr.WriteString("  .data\n")
		for _, g := range p.Globals {
			emitGlobal(&wr, p, g)
		}
		wr.WriteString("\n")
	}

	wr.WriteString("  .text\n")
	first := true
	for _, fid := range p.FuncOrder {
		fn := p.Func(fid)
		if fn.Declared() {
			continue // an external intrinsic: nothing to emit, the linker resolves it.
		}
		if !first {
			wr.WriteString("\n")
		}
		first = false
		wr.Write("  .globl %s\n", strings.TrimPrefix(fn.Name, "@"))
		g := newFuncGen(p, fn, &wr)
		g.emitFunc()
	}
	return wr.String()
}

func emitGlobal(wr *util.Writer, p *koopa.Program, id koopa.ValueID) {
	v := p.Value(id)
	name := strings.TrimPrefix(v.Name, "@")
	wr.Write("  .globl %s\n", name)
	wr.Write("  .align 2\n")
	wr.Label(name)
	emitInit(wr, p, v.InitVal)
}

// emitInit walks a global initializer (Integer, ZeroInit or nested Aggregate) structurally: one
// .word per integer element, one .zero covering each wholly-zero sub-aggregate (the ir/build
// package already folds those into a single ZeroInit), recursing through nested aggregates in the
// same row-major order the builder constructed them.
func emitInit(wr *util.Writer, p *koopa.Program, id koopa.ValueID) {
	v := p.Value(id)
	switch v.Kind {
	case koopa.KInteger:
		wr.Write("  .word %d\n", v.IntVal)
	case koopa.KZeroInit:
		wr.Write("  .zero %d\n", v.Typ.Size())
	case koopa.KAggregate:
		for _, e := range v.Elems {
			emitInit(wr, p, e)
		}
	}
}
