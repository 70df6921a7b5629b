// Package riscv walks a koopa.Program and emits RISC-V 32-bit text assembly, performing
// on-the-fly register allocation, stack-frame construction and address computation.
package riscv

// Integer register indices in the standard x0-x31 numbering (only the registers this backend's
// pool actually uses are named).
const (
	zero = 0
	ra   = 1
	sp   = 2
	t0   = 5
	t1   = 6
	t2   = 7
	a0   = 10
	a1   = 11
	a2   = 12
	a3   = 13
	a4   = 14
	a5   = 15
	a6   = 16
	a7   = 17
	t3   = 28
	t4   = 29
	t5   = 30
	t6   = 31
)

var regName = map[int]string{
	zero: "zero", ra: "ra", sp: "sp",
	t0: "t0", t1: "t1", t2: "t2", t3: "t3", t4: "t4", t5: "t5", t6: "t6",
	a0: "a0", a1: "a1", a2: "a2", a3: "a3", a4: "a4", a5: "a5", a6: "a6", a7: "a7",
}

// argRegs lists the eight integer argument/return registers, in calling-convention order.
var argRegs = [8]int{a0, a1, a2, a3, a4, a5, a6, a7}

// pool lists every register the value table may hand out to hold an IR value. t6 is reserved for
// the immediate-fallback scratch sequences, so the allocatable pool excludes it.
var pool = [...]int{t0, t1, t2, t3, t4, t5, a0, a1, a2, a3, a4, a5, a6, a7}

const (
	maxImm = 2047
	minImm = -2048

	stackAlign = 16
	wordSize   = 4
)

func inImmRange(v int) bool {
	return v >= minImm && v <= maxImm
}
