package riscv

import (
	"strings"

	"sysyc/src/ir/koopa"
)

// This file is the per-opcode emission switch. RV32I has no set-if-equal or set-if-ge, so Eq and
// NotEq lower through xor+seqz/snez, Gt and Le swap slt's operands, and Le/Ge invert the slt
// result with an xori 1.

// emitFunc walks fn's basic blocks in order and emits one RISC-V instruction sequence per value.
func (g *funcGen) emitFunc() {
	g.analyzeFrame()
	g.wr.Label(strings.TrimPrefix(g.fn.Name, "@"))
	g.prologue()
	g.bindParams()

	for i, bbID := range g.fn.Blocks {
		bb := g.prog.Block(bbID)
		if i > 0 {
			g.wr.WriteString("\n")
			g.wr.Label(blockLabel(g.fn, bb))
		}
		for _, vID := range bb.Insts {
			g.emitValue(vID)
		}
	}
}

func blockLabel(fn *koopa.Function, bb *koopa.BasicBlock) string {
	return strings.TrimPrefix(fn.Name, "@") + "_" + strings.TrimPrefix(bb.Name, "%")
}

func (g *funcGen) emitValue(id koopa.ValueID) {
	v := g.prog.Value(id)
	switch v.Kind {
	case koopa.KAlloc, koopa.KFuncArgRef, koopa.KInteger, koopa.KGlobalAlloc, koopa.KZeroInit, koopa.KAggregate:
		// No code: Alloc only reserves a slot (done in analyzeFrame); FuncArgRef is bound directly
		// to its incoming register or caller-frame offset (bindParams); constants and global
		// initializers are materialized at the point of use.
	case koopa.KLoad:
		g.emitLoad(id, v)
	case koopa.KStore:
		g.emitStore(v)
	case koopa.KBinary:
		g.emitBinary(id, v)
	case koopa.KGetElemPtr:
		g.emitGetElemPtr(id, v)
	case koopa.KGetPtr:
		g.emitGetPtr(id, v)
	case koopa.KCall:
		g.emitCall(id, v)
	case koopa.KBranch:
		g.emitBranch(v)
	case koopa.KJump:
		g.emitJump(v)
	case koopa.KReturn:
		g.emitReturn(v)
	}
}

// addrOf materializes the memory address a pointer-typed IR value refers to. An Alloc's address is
// its own stack slot (sp+offset, computed with add, no load); a GlobalAlloc's address is its
// linker symbol (la); any other pointer-typed value (Load, GetElemPtr, GetPtr, a stored function
// argument) already holds a computed address as data in its home slot or register, fetched the
// ordinary way.
func (g *funcGen) addrOf(v koopa.ValueID) int {
	val := g.prog.Value(v)
	switch val.Kind {
	case koopa.KAlloc:
		r := g.allocTempReg()
		g.emitArithImm("add", r, sp, g.offset[v])
		return r
	case koopa.KGlobalAlloc:
		r := g.allocTempReg()
		g.wr.Write("  la %s, %s\n", rn(r), strings.TrimPrefix(val.Name, "@"))
		return r
	default:
		return g.materialize(g.prog, v)
	}
}

func (g *funcGen) emitLoad(id koopa.ValueID, v *koopa.Value) {
	src := g.prog.Value(v.Operand0)
	switch src.Kind {
	case koopa.KAlloc:
		// A local alloca's slot is addressed straight off sp, no address register needed.
		dst := g.allocDestReg(id)
		g.emitLoadOffset(dst, g.offset[v.Operand0], sp)
		g.unlock(dst)
		g.storeResult(id, dst)
	case koopa.KGlobalAlloc:
		dst := g.allocDestReg(id)
		g.wr.Write("  la %s, %s\n", rn(dst), strings.TrimPrefix(src.Name, "@"))
		g.wr.LoadStore("lw", rn(dst), 0, rn(dst))
		g.unlock(dst)
		g.storeResult(id, dst)
	default:
		// A computed pointer (GetElemPtr/GetPtr/Load of a stored parameter): fetch it as data,
		// then read through it.
		ptr := g.materialize(g.prog, v.Operand0)
		dst := g.allocDestReg(id)
		g.wr.LoadStore("lw", rn(dst), 0, rn(ptr))
		g.unlock(ptr)
		g.freeReg(ptr)
		g.unlock(dst)
		g.storeResult(id, dst)
	}
}

func (g *funcGen) emitStore(v *koopa.Value) {
	val := g.materializeValue(v.Operand0)
	dst := g.prog.Value(v.Operand1)
	switch dst.Kind {
	case koopa.KAlloc:
		g.emitStoreOffset(val, g.offset[v.Operand1], sp)
	case koopa.KGlobalAlloc:
		addr := g.allocTempReg()
		g.wr.Write("  la %s, %s\n", rn(addr), strings.TrimPrefix(dst.Name, "@"))
		g.wr.LoadStore("sw", rn(val), 0, rn(addr))
		g.unlock(addr)
		g.freeReg(addr)
	default:
		addr := g.materialize(g.prog, v.Operand1)
		g.wr.LoadStore("sw", rn(val), 0, rn(addr))
		g.unlock(addr)
		g.freeReg(addr)
	}
	g.unlock(val)
	g.freeReg(val)
}

// materializeValue loads a value (not its address) into a register: for an Alloc/GlobalAlloc
// scalar that is its stored contents, read through addrOf + lw; for every other kind, the generic
// value-table materialize already does the right thing.
func (g *funcGen) materializeValue(v koopa.ValueID) int {
	val := g.prog.Value(v)
	if val.Kind == koopa.KAlloc || val.Kind == koopa.KGlobalAlloc {
		addr := g.addrOf(v)
		r := g.allocTempReg()
		g.wr.LoadStore("lw", rn(r), 0, rn(addr))
		g.unlock(addr)
		g.freeReg(addr)
		return r
	}
	return g.materialize(g.prog, v)
}

func (g *funcGen) emitBinary(id koopa.ValueID, v *koopa.Value) {
	lhs := g.materializeValue(v.Operand0)
	rhs := g.materializeValue(v.Operand1)
	dst := g.allocDestReg(id)
	switch v.BinOp {
	case koopa.BAdd:
		g.wr.Ins3("add", rn(dst), rn(lhs), rn(rhs))
	case koopa.BSub:
		g.wr.Ins3("sub", rn(dst), rn(lhs), rn(rhs))
	case koopa.BMul:
		g.wr.Ins3("mul", rn(dst), rn(lhs), rn(rhs))
	case koopa.BDiv:
		g.wr.Ins3("div", rn(dst), rn(lhs), rn(rhs))
	case koopa.BMod:
		g.wr.Ins3("rem", rn(dst), rn(lhs), rn(rhs))
	case koopa.BAnd:
		g.wr.Ins3("and", rn(dst), rn(lhs), rn(rhs))
	case koopa.BOr:
		g.wr.Ins3("or", rn(dst), rn(lhs), rn(rhs))
	case koopa.BEq:
		g.wr.Ins3("xor", rn(dst), rn(lhs), rn(rhs))
		g.wr.Ins2("seqz", rn(dst), rn(dst))
	case koopa.BNotEq:
		g.wr.Ins3("xor", rn(dst), rn(lhs), rn(rhs))
		g.wr.Ins2("snez", rn(dst), rn(dst))
	case koopa.BLt:
		g.wr.Ins3("slt", rn(dst), rn(lhs), rn(rhs))
	case koopa.BGt:
		g.wr.Ins3("slt", rn(dst), rn(rhs), rn(lhs))
	case koopa.BLe:
		g.wr.Ins3("slt", rn(dst), rn(rhs), rn(lhs))
		g.wr.Ins2imm("xori", rn(dst), rn(dst), 1)
	case koopa.BGe:
		g.wr.Ins3("slt", rn(dst), rn(lhs), rn(rhs))
		g.wr.Ins2imm("xori", rn(dst), rn(dst), 1)
	}
	g.unlock(lhs)
	g.unlock(rhs)
	g.freeReg(lhs)
	g.freeReg(rhs)
	g.unlock(dst)
	g.storeResult(id, dst)
}

// emitGetElemPtr computes base + index*stride where stride is the size of base's array-element
// type (plain-array and array-parameter addressing both lower into this single opcode).
func (g *funcGen) emitGetElemPtr(id koopa.ValueID, v *koopa.Value) {
	baseTyp := g.prog.Value(v.Operand0).Typ
	stride := baseTyp.Elem().Elem().Size()
	g.emitStepPtr(id, v.Operand0, v.Operand1, stride)
}

// emitGetPtr computes base + index*stride where stride is the size of the pointee type itself
// (used for decaying array-parameter pointer arithmetic, one dimension shallower than GetElemPtr).
func (g *funcGen) emitGetPtr(id koopa.ValueID, v *koopa.Value) {
	baseTyp := g.prog.Value(v.Operand0).Typ
	stride := baseTyp.Elem().Size()
	g.emitStepPtr(id, v.Operand0, v.Operand1, stride)
}

func (g *funcGen) emitStepPtr(id, base, index koopa.ValueID, stride int) {
	baseReg := g.addrOf(base)
	idxReg := g.materializeValue(index)
	dst := g.allocDestReg(id)
	if stride == 1 {
		g.wr.Ins3("add", rn(dst), rn(baseReg), rn(idxReg))
	} else {
		strideReg := g.allocTempReg()
		g.emitLoadImm(strideReg, stride)
		g.wr.Ins3("mul", rn(dst), rn(idxReg), rn(strideReg))
		g.unlock(strideReg)
		g.freeReg(strideReg)
		g.wr.Ins3("add", rn(dst), rn(dst), rn(baseReg))
	}
	g.unlock(baseReg)
	g.unlock(idxReg)
	g.freeReg(baseReg)
	g.freeReg(idxReg)
	g.unlock(dst)
	g.storeResult(id, dst)
}

// emitCall marshals arguments into a0..a7 and the outgoing-argument stack area, spills every live
// register first since the callee's own body will reuse the whole pool, then issues the call and
// binds a0 to the result if the callee returns one.
func (g *funcGen) emitCall(id koopa.ValueID, v *koopa.Value) {
	callee := g.prog.Func(v.Callee)
	g.freeAllRegs()
	for i, argID := range v.Args {
		if i < 8 {
			if arg := g.prog.Value(argID); arg.Kind == koopa.KInteger {
				g.emitLoadImm(argRegs[i], int(arg.IntVal))
			} else {
				r := g.materializeValue(argID)
				g.emitMove(argRegs[i], r)
				g.unlock(r)
				g.freeReg(r)
			}
			g.lock(argRegs[i]) // holds a marshalled argument; keep it out of reach until the call.
		} else {
			r := g.materializeValue(argID)
			g.emitStoreOffset(r, (i-8)*wordSize, sp)
			g.unlock(r)
			g.freeReg(r)
		}
	}
	for i := 0; i < len(v.Args) && i < 8; i++ {
		g.unlock(argRegs[i])
	}
	g.wr.Ins1("call " + strings.TrimPrefix(callee.Name, "@"))
	if !v.Typ.IsUnit() {
		g.bindReg(id, a0)
		g.storeResult(id, a0)
	}
}

// emitBranch spills every live value to its home slot before branching: control may resume in
// either successor block with a freshly reloaded pool.
func (g *funcGen) emitBranch(v *koopa.Value) {
	cond := g.materializeValue(v.Operand0)
	// Spill everything but cond before the branch itself, so both successors resume from home
	// slots regardless of which way the bnez goes.
	for _, r := range pool {
		if r == cond {
			continue
		}
		g.locked[r] = false
		g.freeReg(r)
	}
	g.unlock(cond)
	g.freeReg(cond)
	trueLabel := blockLabel(g.fn, g.prog.Block(v.TrueBB))
	falseLabel := blockLabel(g.fn, g.prog.Block(v.FalseBB))
	g.wr.Ins2("bnez", rn(cond), trueLabel)
	g.wr.Ins1("j " + falseLabel)
}

func (g *funcGen) emitJump(v *koopa.Value) {
	g.freeAllRegs()
	g.wr.Ins1("j " + blockLabel(g.fn, g.prog.Block(v.Target)))
}

func (g *funcGen) emitReturn(v *koopa.Value) {
	if v.HasRetVal {
		if rv := g.prog.Value(v.Operand0); rv.Kind == koopa.KInteger {
			g.emitLoadImm(a0, int(rv.IntVal))
		} else {
			r := g.materializeValue(v.Operand0)
			g.emitMove(a0, r)
			g.unlock(r)
			g.freeReg(r)
		}
	}
	g.epilogue()
	g.wr.Ins1("ret")
}
