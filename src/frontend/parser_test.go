package frontend_test

import (
	"testing"

	"sysyc/src/ast"
	"sysyc/src/frontend"
)

func TestParseGlobalConstAndVarDecls(t *testing.T) {
	cu, err := frontend.Parse(`
const int N = 4;
int g[2][3] = {{1, 2}, 3};
int main() { return 0; }`)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(cu.Items) != 3 {
		t.Fatalf("expected 3 top-level items, got %d", len(cu.Items))
	}

	cd, ok := cu.Items[0].(*ast.ConstDecl)
	if !ok || len(cd.Defs) != 1 || cd.Defs[0].Ident != "N" {
		t.Fatalf("expected a ConstDecl defining N, got %#v", cu.Items[0])
	}

	vd, ok := cu.Items[1].(*ast.VarDecl)
	if !ok || len(vd.Defs) != 1 {
		t.Fatalf("expected a VarDecl defining g, got %#v", cu.Items[1])
	}
	g := vd.Defs[0]
	if g.Ident != "g" || len(g.Dims) != 2 {
		t.Fatalf("expected g to be a 2-dimensional array, got %#v", g)
	}
	list, ok := g.Init.(*ast.ListInit)
	if !ok || len(list.Items) != 2 {
		t.Fatalf("expected a 2-item ListInit for g, got %#v", g.Init)
	}
	if _, ok := list.Items[0].(*ast.ListInit); !ok {
		t.Fatalf("expected the first item of g's initializer to be a nested ListInit, got %#v", list.Items[0])
	}
	if _, ok := list.Items[1].(*ast.ExpInit); !ok {
		t.Fatalf("expected the second item of g's initializer to be a scalar ExpInit, got %#v", list.Items[1])
	}
}

func TestParseFuncDefWithArrayParamDecay(t *testing.T) {
	cu, err := frontend.Parse(`int sum(int a[][3], int n) { return n; }`)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	fd, ok := cu.Items[0].(*ast.FuncDef)
	if !ok || len(fd.Params) != 2 {
		t.Fatalf("expected a FuncDef with 2 params, got %#v", cu.Items[0])
	}
	a := fd.Params[0]
	if !a.IsArray || len(a.Dims) != 1 {
		t.Fatalf("expected a to be an array parameter with 1 trailing dimension, got %#v", a)
	}
	n := fd.Params[1]
	if n.IsArray {
		t.Fatalf("expected n to be a scalar parameter, got %#v", n)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	// 1 + 2 * 3 must parse as 1 + (2 * 3): the outermost node is the Add.
	cu, err := frontend.Parse(`int main() { return 1 + 2 * 3; }`)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	fd := cu.Items[0].(*ast.FuncDef)
	ret := fd.Body.Items[0].(*ast.ReturnStmt)
	top, ok := ret.Exp.(*ast.BinaryExp)
	if !ok || top.Op != ast.OpAdd {
		t.Fatalf("expected the top-level operator to be Add, got %#v", ret.Exp)
	}
	if _, ok := top.L.(*ast.NumberExp); !ok {
		t.Fatalf("expected the left operand to be the literal 1, got %#v", top.L)
	}
	rhs, ok := top.R.(*ast.BinaryExp)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("expected the right operand to be a Mul, got %#v", top.R)
	}
}

func TestParseIfWhileBreakContinue(t *testing.T) {
	cu, err := frontend.Parse(`
int main() {
  int i = 0;
  while (i < 10) {
    if (i == 5) break;
    else continue;
  }
  return i;
}`)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	fd := cu.Items[0].(*ast.FuncDef)
	ws, ok := fd.Body.Items[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("expected a WhileStmt, got %#v", fd.Body.Items[1])
	}
	body, ok := ws.Body.(*ast.BlockStmt)
	if !ok || len(body.Block.Items) != 1 {
		t.Fatalf("expected the while body to hold a single BlockItem, got %#v", ws.Body)
	}
	ifs, ok := body.Block.Items[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("expected an IfStmt, got %#v", body.Block.Items[0])
	}
	if _, ok := ifs.Then.(*ast.BreakStmt); !ok {
		t.Fatalf("expected the then-branch to be a BreakStmt, got %#v", ifs.Then)
	}
	if _, ok := ifs.Else.(*ast.ContinueStmt); !ok {
		t.Fatalf("expected the else-branch to be a ContinueStmt, got %#v", ifs.Else)
	}
}

func TestParseAssignVsExpStmtDisambiguation(t *testing.T) {
	// "x = 1;" is an AssignStmt; "f();" is a bare ExpStmt. Both start by parsing an expression,
	// so the parser must correctly tell them apart by checking for a following "=".
	cu, err := frontend.Parse(`
int f() { return 0; }
int main() {
  int x;
  x = 1;
  f();
  return x;
}`)
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	fd := cu.Items[1].(*ast.FuncDef)
	if _, ok := fd.Body.Items[1].(*ast.AssignStmt); !ok {
		t.Fatalf("expected an AssignStmt, got %#v", fd.Body.Items[1])
	}
	if _, ok := fd.Body.Items[2].(*ast.ExpStmt); !ok {
		t.Fatalf("expected a bare ExpStmt, got %#v", fd.Body.Items[2])
	}
}

func TestParseRejectsMissingSemicolon(t *testing.T) {
	_, err := frontend.Parse(`int main() { return 0 }`)
	if err == nil {
		t.Fatalf("expected a parse error for a missing semicolon")
	}
}
