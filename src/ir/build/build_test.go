package build_test

import (
	"strings"
	"testing"

	"sysyc/src/frontend"
	"sysyc/src/ir/build"
	"sysyc/src/ir/koopa"
)

func compile(t *testing.T, src string) *koopa.Program {
	t.Helper()
	cu, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	prog, err := build.Build(cu)
	if err != nil {
		t.Fatalf("build error: %s", err)
	}
	return prog
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	cu, err := frontend.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	_, err = build.Build(cu)
	return err
}

func TestArithmeticLowering(t *testing.T) {
	prog := compile(t, `int main() { return 1 + 2 * 3; }`)
	text := koopa.Print(prog)
	if !strings.Contains(text, "mul") || !strings.Contains(text, "add") {
		t.Fatalf("expected mul and add instructions in:\n%s", text)
	}
	if !strings.Contains(text, "ret") {
		t.Fatalf("expected a ret instruction in:\n%s", text)
	}
}

func TestConstantFolding(t *testing.T) {
	prog := compile(t, `
const int N = 2 + 3;
int arr[N];
int main() { return 0; }`)
	text := koopa.Print(prog)
	if !strings.Contains(text, "[i32, 5]") {
		t.Fatalf("expected const N to fold to 5 in global array type:\n%s", text)
	}
}

func TestScopeShadowing(t *testing.T) {
	// An inner block's declaration of x must shadow the outer one without touching it, and the
	// outer binding must be visible again once the inner block ends.
	prog := compile(t, `
int main() {
  int x = 1;
  {
    int x = 2;
    x = x + 1;
  }
  return x;
}`)
	text := koopa.Print(prog)
	allocCount := strings.Count(text, "= alloc i32")
	if allocCount != 2 {
		t.Fatalf("expected two distinct i32 allocations for shadowed x, got %d:\n%s", allocCount, text)
	}
}

func TestShortCircuitAnd(t *testing.T) {
	prog := compile(t, `
int f(int x) { return x; }
int main() {
  int a = 1;
  int b = 0;
  return f(a) && f(b);
}`)
	text := koopa.Print(prog)
	for _, want := range []string{"and_rhs", "sc_end", "sc_result"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected short-circuit lowering to mention %q in:\n%s", want, text)
		}
	}
}

func TestArrayParameterDecayAndIndexing(t *testing.T) {
	prog := compile(t, `
int sum(int a[][3], int n) {
  int s = 0;
  int i = 0;
  while (i < n) {
    s = s + a[i][0];
    i = i + 1;
  }
  return s;
}
int main() { return 0; }`)
	text := koopa.Print(prog)
	if !strings.Contains(text, "getptr") || !strings.Contains(text, "getelemptr") {
		t.Fatalf("expected both getptr (decayed first dim) and getelemptr (remaining dims) in:\n%s", text)
	}
}

func TestBreakOutsideLoopIsError(t *testing.T) {
	err := compileErr(t, `int main() { break; return 0; }`)
	if err == nil || !strings.Contains(err.Error(), "outside any loop") {
		t.Fatalf("expected a not-in-loop error, got %v", err)
	}
}

func TestAssignToConstIsError(t *testing.T) {
	err := compileErr(t, `
const int N = 1;
int main() { N = 2; return 0; }`)
	if err == nil || !strings.Contains(err.Error(), "cannot assign to const") {
		t.Fatalf("expected an assign-to-const error, got %v", err)
	}
}

func TestUndefinedIdentifierIsError(t *testing.T) {
	err := compileErr(t, `int main() { return y; }`)
	if err == nil || !strings.Contains(err.Error(), "undefined") {
		t.Fatalf("expected an undefined-identifier error, got %v", err)
	}
}

func TestForwardAndMutualRecursion(t *testing.T) {
	// isOdd is called before its own definition from isEven, and vice versa: the two-pass
	// signature registration must resolve both forward references.
	prog := compile(t, `
int isOdd(int n) {
  if (n == 0) return 0;
  return isEven(n - 1);
}
int isEven(int n) {
  if (n == 0) return 1;
  return isOdd(n - 1);
}
int main() { return isEven(10); }`)
	text := koopa.Print(prog)
	if !strings.Contains(text, "call @isEven") || !strings.Contains(text, "call @isOdd") {
		t.Fatalf("expected mutually recursive calls to both resolve:\n%s", text)
	}
}

func TestConstArrayRuntimeIndex(t *testing.T) {
	// Reading a const array through a runtime-computed index must address real storage rather
	// than go through the compile-time evaluator, which could not resolve a non-constant index.
	prog := compile(t, `
const int tbl[4] = {10, 20, 30, 40};
int pick(int i) { return tbl[i]; }
int main() { return pick(2); }`)
	text := koopa.Print(prog)
	if !strings.Contains(text, "getelemptr") {
		t.Fatalf("expected a runtime getelemptr address computation for tbl[i]:\n%s", text)
	}
}

func TestLocalArrayPartialInitZeroFills(t *testing.T) {
	// Positions not covered by a partial initializer must be zero, not left as stack garbage.
	prog := compile(t, `
int main() {
  int a[4] = {1, 2};
  return a[0] + a[1] + a[2] + a[3];
}`)
	text := koopa.Print(prog)
	if strings.Count(text, "store 0,") < 2 {
		t.Fatalf("expected at least two zero-stores for the uninitialized tail of a:\n%s", text)
	}
}

func TestNestedInitializerAlignsToInnermostBoundary(t *testing.T) {
	// A nested brace whose offset is aligned only to the innermost dimension covers a single
	// innermost row, not a whole higher-dimensional plane: {5} and {6} below each fill one
	// four-element row, and the entire second plane stays zero.
	prog := compile(t, `
int a[2][3][4] = {1, 2, 3, 4, {5}, {6}};
int main() { return 0; }`)
	text := koopa.Print(prog)
	want := "{{{1, 2, 3, 4}, {5, 0, 0, 0}, {6, 0, 0, 0}}, zeroinit}"
	if !strings.Contains(text, want) {
		t.Fatalf("expected the initializer to flatten to %s in:\n%s", want, text)
	}
}

func TestEveryBasicBlockIsTerminated(t *testing.T) {
	// A return in the middle of a block must not leave the following statements dangling off the
	// end of an already-terminated block.
	prog := compile(t, `
int main() {
  int i = 0;
  while (i < 10) {
    if (i == 5) {
      return i;
      i = i + 100;
    }
    i = i + 1;
  }
  return -1;
}`)
	for _, fid := range prog.FuncOrder {
		f := prog.Func(fid)
		for _, bid := range f.Blocks {
			bb := prog.Block(bid)
			if len(bb.Insts) == 0 {
				t.Fatalf("function %s has an empty basic block %s", f.Name, bb.Name)
			}
			if !bb.Terminated(prog) {
				t.Fatalf("function %s block %s is not terminated", f.Name, bb.Name)
			}
		}
	}
}
