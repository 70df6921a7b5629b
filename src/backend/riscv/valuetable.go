package riscv

import "sysyc/src/ir/koopa"

// This file implements the value table: which pool register, if any, currently holds each live IR
// value, with Free/Used/Temp states and a lock bit so an instruction's own operands can't be
// evicted to make room for one another mid-emission.

// regOf reports the register currently holding v, if any.
func (g *funcGen) regOf(v koopa.ValueID) (int, bool) {
	r, ok := g.valIn[v]
	return r, ok
}

func (g *funcGen) lock(r int)   { g.locked[r] = true }
func (g *funcGen) unlock(r int) { g.locked[r] = false }

// evict picks a register to hand out, preferring Free, then Temp (no spill needed), then the
// first unlocked Used register in pool order (spilled to its home slot first). Locked registers are never
// evicted: a value's own operands stay pinned for the duration of emitting the instruction that
// consumes them.
func (g *funcGen) evict() int {
	for _, r := range pool {
		if g.kind[r] == regFree && !g.locked[r] {
			return r
		}
	}
	for _, r := range pool {
		if g.kind[r] == regTemp && !g.locked[r] {
			return r
		}
	}
	for _, r := range pool {
		if g.kind[r] == regUsed && !g.locked[r] {
			g.spill(r)
			return r
		}
	}
	// Every register is locked: only possible if an instruction has more live operands than the
	// pool has registers, which no IR instruction this backend emits can produce.
	panic("riscv: register pool exhausted")
}

// spill writes a Used register's value back to its home stack slot and marks the register Free.
func (g *funcGen) spill(r int) {
	if g.kind[r] != regUsed {
		g.kind[r] = regFree
		return
	}
	v := g.occIn[r]
	off, ok := g.offset[v]
	if ok {
		g.emitStoreOffset(r, off, sp)
	}
	delete(g.valIn, v)
	g.kind[r] = regFree
}

// freeReg releases r, spilling first if it holds a live value.
func (g *funcGen) freeReg(r int) {
	g.spill(r)
	g.locked[r] = false
}

// freeAllRegs spills and frees every register currently in use. Called before a Jump or Call so
// every live value reaches its home slot before control leaves the current instruction stream
// (emitBranch does the same for every register except the branch condition).
func (g *funcGen) freeAllRegs() {
	for _, r := range pool {
		g.locked[r] = false
		g.freeReg(r)
	}
}

// allocDestReg hands out a fresh register to hold the about-to-be-computed result of v, locked so
// a subsequent operand materialization in the same instruction can't steal it back.
func (g *funcGen) allocDestReg(v koopa.ValueID) int {
	r := g.evict()
	g.kind[r] = regUsed
	g.occIn[r] = v
	g.valIn[v] = r
	g.lock(r)
	return r
}

// allocTempReg hands out a register for a scratch value with no IR identity (e.g. a materialized
// constant, a computed address or a GetElemPtr stride). Locked for the caller's exclusive use.
func (g *funcGen) allocTempReg() int {
	r := g.evict()
	g.kind[r] = regTemp
	g.lock(r)
	return r
}

// materialize ensures v is resident in some register and returns it, locked. A constant is
// materialized fresh into a Temp register every time (cheap, and simpler than tracking constant
// identity across reuses); any other value is loaded from its home slot unless already resident.
func (g *funcGen) materialize(prog *koopa.Program, v koopa.ValueID) int {
	val := prog.Value(v)
	if val.Kind == koopa.KInteger {
		if val.IntVal == 0 {
			return zero // x0 reads as 0 without a li; never in the pool, so "locking" is moot.
		}
		r := g.allocTempReg()
		g.emitLoadImm(r, int(val.IntVal))
		return r
	}
	if r, ok := g.regOf(v); ok {
		g.lock(r)
		return r
	}
	if off, ok := g.callerOffset[v]; ok {
		r := g.allocDestReg(v)
		g.emitLoadOffset(r, off, sp)
		return r
	}
	r := g.allocDestReg(v)
	off := g.offset[v]
	g.emitLoadOffset(r, off, sp)
	return r
}

// bindReg records that v's result now lives in register r without emitting anything (used right
// after an instruction computes its result directly into r).
func (g *funcGen) bindReg(v koopa.ValueID, r int) {
	g.kind[r] = regUsed
	g.occIn[r] = v
	g.valIn[v] = r
}

// storeResult spills a just-computed value in register r to its home stack slot, if it has one
// (a value consumed only within its own basic block may never need to leave a register, but it
// always has a slot reserved in case a later block needs it after a call clobbers the pool).
func (g *funcGen) storeResult(v koopa.ValueID, r int) {
	if off, ok := g.offset[v]; ok {
		g.emitStoreOffset(r, off, sp)
	}
}
