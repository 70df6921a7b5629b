package riscv_test

import (
	"strings"
	"testing"

	"sysyc/src/backend/riscv"
	"sysyc/src/frontend"
	"sysyc/src/ir/build"
)

func generate(t *testing.T, src string) string {
	t.Helper()
	cu, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	prog, err := build.Build(cu)
	if err != nil {
		t.Fatalf("build error: %s", err)
	}
	return riscv.Generate(prog)
}

// lineAfterLoadImm finds the first "li <reg>, <imm>" in asm and returns that register together with
// the instruction emitted right after it.
func lineAfterLoadImm(asm, imm string) (reg, next string) {
	lines := strings.Split(asm, "\n")
	for i, l := range lines {
		f := strings.Fields(l)
		if len(f) == 3 && f[0] == "li" && f[2] == imm && i+1 < len(lines) {
			return strings.TrimSuffix(f[1], ","), strings.TrimSpace(lines[i+1])
		}
	}
	return "", ""
}

func TestFunctionPrologueAndReturn(t *testing.T) {
	asm := generate(t, `int main() { return 0; }`)
	for _, want := range []string{".text", ".globl main", "main:", "ret"} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected %q in:\n%s", want, asm)
		}
	}
}

func TestGlobalDataSection(t *testing.T) {
	asm := generate(t, `
int g = 7;
int main() { return g; }`)
	if !strings.Contains(asm, ".data") || !strings.Contains(asm, "g:") || !strings.Contains(asm, ".word 7") {
		t.Fatalf("expected a .data section defining g with value 7:\n%s", asm)
	}
}

func TestGlobalArrayInitializerFlattening(t *testing.T) {
	// The first row's missing third element is a per-element zero inside a non-zero row, so it is
	// emitted as .word 0; a wholly-zero sub-aggregate would instead collapse to .zero.
	asm := generate(t, `
int a[2][3] = {{1, 2}, 3, 4, 5};
int main() { return 0; }`)
	want := "  .word 1\n  .word 2\n  .word 0\n  .word 3\n  .word 4\n  .word 5\n"
	if !strings.Contains(asm, want) {
		t.Fatalf("expected the flattened initializer words 1, 2, 0, 3, 4, 5 in:\n%s", asm)
	}
}

func TestWhollyZeroGlobalUsesZeroDirective(t *testing.T) {
	asm := generate(t, `
int z[4][8];
int main() { return 0; }`)
	if !strings.Contains(asm, ".zero 128") {
		t.Fatalf("expected an uninitialized global array to emit a single .zero region:\n%s", asm)
	}
}

func TestCallMarshalsMoreThanEightArguments(t *testing.T) {
	// The 9th argument must be passed on the stack, not in a register, per the calling convention.
	asm := generate(t, `
int f(int a, int b, int c, int d, int e, int g, int h, int i, int j) { return j; }
int main() { return f(1, 2, 3, 4, 5, 6, 7, 8, 9); }`)
	if !strings.Contains(asm, "call f") {
		t.Fatalf("expected a call to f:\n%s", asm)
	}
	if reg, next := lineAfterLoadImm(asm, "9"); reg == "" || next != "sw "+reg+", 0(sp)" {
		t.Fatalf("expected the 9th argument to be stored to the outgoing stack area:\n%s", asm)
	}
}

func TestOutgoingArgAreaDoesNotClobberLiveLocal(t *testing.T) {
	// x is live both before and after the call to f, which takes 9 arguments (one spilled to the
	// outgoing-argument area at the bottom of main's frame). x's own stack slot must not alias that
	// area, or the call's argument marshalling would corrupt x before "x + ..." reads it back.
	asm := generate(t, `
int f(int a, int b, int c, int d, int e, int g, int h, int i, int j) { return j; }
int main() {
  int x = 41;
  int r = f(1, 2, 3, 4, 5, 6, 7, 8, 9) + x;
  return r;
}`)
	if !strings.Contains(asm, "call f") {
		t.Fatalf("expected a call to f:\n%s", asm)
	}
	reg, next := lineAfterLoadImm(asm, "41")
	if reg == "" || !strings.HasPrefix(next, "sw "+reg+", ") || strings.HasSuffix(next, " 0(sp)") {
		t.Fatalf("expected x = 41 to be stored above the outgoing-argument slot at 0(sp), got %q:\n%s", next, asm)
	}
}

func TestComparisonOperators(t *testing.T) {
	asm := generate(t, `int main() { return (1 < 2) + (3 >= 4); }`)
	for _, want := range []string{"slt", "xori"} {
		if !strings.Contains(asm, want) {
			t.Fatalf("expected %q among the comparison sequences:\n%s", want, asm)
		}
	}
}
