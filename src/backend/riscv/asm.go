package riscv

// This file implements the immediate-range fallback: every instruction that takes a signed 12-bit
// immediate (addi/lw/sw and friends) checks the range first and, when the immediate doesn't fit,
// materializes it into the reserved t6 scratch register with li and falls back to the
// register-register form instead. Centralizing the check here keeps it out of every call site.

func rn(r int) string { return regName[r] }

// emitArithImm emits "<op>i rd, rs1, imm" (e.g. addi) when imm fits in 12 bits, or materializes
// imm into t6 and emits the register-register form otherwise.
func (g *funcGen) emitArithImm(op string, rd, rs1, imm int) {
	if inImmRange(imm) {
		g.wr.Ins2imm(op+"i", rn(rd), rn(rs1), imm)
		return
	}
	g.emitLoadImm(t6, imm)
	g.wr.Ins3(op, rn(rd), rn(rs1), rn(t6))
}

// emitLoadImm emits "li rd, imm" via the assembler's li pseudo-instruction.
func (g *funcGen) emitLoadImm(rd, imm int) {
	g.wr.Write("  li %s, %d\n", rn(rd), imm)
}

// emitLoadOffset emits "lw rd, off(base)", falling back through t6 when off doesn't fit.
func (g *funcGen) emitLoadOffset(rd, off, base int) {
	if inImmRange(off) {
		g.wr.LoadStore("lw", rn(rd), off, rn(base))
		return
	}
	g.emitLoadImm(t6, off)
	g.wr.Ins3("add", rn(t6), rn(t6), rn(base))
	g.wr.LoadStore("lw", rn(rd), 0, rn(t6))
}

// emitStoreOffset emits "sw rd, off(base)", falling back through t6 when off doesn't fit.
func (g *funcGen) emitStoreOffset(rd, off, base int) {
	if inImmRange(off) {
		g.wr.LoadStore("sw", rn(rd), off, rn(base))
		return
	}
	g.emitLoadImm(t6, off)
	g.wr.Ins3("add", rn(t6), rn(t6), rn(base))
	g.wr.LoadStore("sw", rn(rd), 0, rn(t6))
}

func (g *funcGen) emitMove(dst, src int) {
	if dst == src {
		return
	}
	g.wr.Ins2("mv", rn(dst), rn(src))
}
