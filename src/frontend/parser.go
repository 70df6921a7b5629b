// parser.go implements a hand-written recursive-descent parser over the item stream produced by
// lexer.go, building the src/ast tree. Recursive descent is the natural fit for a single
// precedence-layered expression grammar: one parse method per layer, each looping on its own
// operators and delegating to the next-tighter layer.
package frontend

import (
	"fmt"
	"strconv"

	"sysyc/src/ast"
)

// parseNumber converts a lexed number literal (decimal, octal, or 0x/0X-prefixed hexadecimal)
// into an int32, matching the width of SysY's only integer type.
func parseNumber(s string) (int32, error) {
	var v uint64
	var err error
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		v, err = strconv.ParseUint(s[2:], 16, 32)
	} else if s == "0" {
		v = 0
	} else if s[0] == '0' {
		v, err = strconv.ParseUint(s, 8, 32)
	} else {
		v, err = strconv.ParseUint(s, 10, 32)
	}
	if err != nil {
		return 0, fmt.Errorf("invalid number literal %q: %w", s, err)
	}
	return int32(v), nil
}

// parser consumes tokens from a lexer one at a time, with a single token of lookahead.
type parser struct {
	l    *lexer
	tok  item
	prev item
}

// Parse lexes and parses src into a CompUnit.
func Parse(src string) (*ast.CompUnit, error) {
	p := &parser{l: newLexer(src)}
	p.advance()
	cu, err := p.parseCompUnit()
	if err != nil {
		return nil, err
	}
	if p.tok.typ != itemEOF {
		return nil, p.errorf("unexpected trailing token %q", p.tok.val)
	}
	return cu, nil
}

func (p *parser) advance() {
	p.prev = p.tok
	p.tok = p.l.nextItem()
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("%s (line %d:%d)", fmt.Sprintf(format, args...), p.tok.line, p.tok.pos)
}

func (p *parser) is(typ itemType, val string) bool {
	return p.tok.typ == typ && p.tok.val == val
}

func (p *parser) expectPunct(val string) error {
	if !p.is(itemPunct, val) {
		return p.errorf("expected %q, got %q", val, p.tok.val)
	}
	p.advance()
	return nil
}

func (p *parser) expectKeyword(val string) error {
	if !p.is(itemKeyword, val) {
		return p.errorf("expected %q, got %q", val, p.tok.val)
	}
	p.advance()
	return nil
}

func (p *parser) expectIdent() (string, error) {
	if p.tok.typ != itemIdent {
		return "", p.errorf("expected identifier, got %q", p.tok.val)
	}
	s := p.tok.val
	p.advance()
	return s, nil
}

// ---------------------------
// ----- Top-level items -----
// ---------------------------

func (p *parser) parseCompUnit() (*ast.CompUnit, error) {
	cu := &ast.CompUnit{}
	for p.tok.typ != itemEOF {
		it, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		cu.Items = append(cu.Items, it)
	}
	return cu, nil
}

// parseItem parses a Decl or FuncDef. Both start with a BType; a FuncDef is distinguished by
// Ident '(' following the type.
func (p *parser) parseItem() (ast.Item, error) {
	if p.is(itemKeyword, "const") {
		d, err := p.parseConstDecl()
		if err != nil {
			return nil, err
		}
		return d, nil
	}

	bt, err := p.parseBType()
	if err != nil {
		return nil, err
	}
	ident, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if p.is(itemPunct, "(") {
		return p.parseFuncDefRest(bt, ident)
	}
	return p.parseVarDeclRest(bt, ident)
}

func (p *parser) parseBType() (ast.BType, error) {
	switch {
	case p.is(itemKeyword, "int"):
		p.advance()
		return ast.BInt, nil
	case p.is(itemKeyword, "void"):
		p.advance()
		return ast.BVoid, nil
	}
	return 0, p.errorf("expected type, got %q", p.tok.val)
}

// -------------------
// ----- Decls -------
// -------------------

func (p *parser) parseConstDecl() (*ast.ConstDecl, error) {
	if err := p.expectKeyword("const"); err != nil {
		return nil, err
	}
	bt, err := p.parseBType()
	if err != nil {
		return nil, err
	}
	decl := &ast.ConstDecl{BType: bt}
	for {
		def, err := p.parseConstDef()
		if err != nil {
			return nil, err
		}
		decl.Defs = append(decl.Defs, def)
		if p.is(itemPunct, ",") {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseConstDef() (*ast.ConstDef, error) {
	line := p.tok.line
	ident, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	dims, err := p.parseDims()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	init, err := p.parseInitializer()
	if err != nil {
		return nil, err
	}
	return &ast.ConstDef{Ident: ident, Dims: dims, Init: init, Line: line}, nil
}

// parseVarDeclRest parses the remainder of a VarDecl given its base type and first identifier,
// which were already consumed while disambiguating against FuncDef.
func (p *parser) parseVarDeclRest(bt ast.BType, firstIdent string) (*ast.VarDecl, error) {
	decl := &ast.VarDecl{BType: bt}
	def, err := p.parseVarDefRest(firstIdent)
	if err != nil {
		return nil, err
	}
	decl.Defs = append(decl.Defs, def)
	for p.is(itemPunct, ",") {
		p.advance()
		ident, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		def, err := p.parseVarDefRest(ident)
		if err != nil {
			return nil, err
		}
		decl.Defs = append(decl.Defs, def)
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseVarDefRest(ident string) (*ast.VarDef, error) {
	line := p.tok.line
	dims, err := p.parseDims()
	if err != nil {
		return nil, err
	}
	def := &ast.VarDef{Ident: ident, Dims: dims, Line: line}
	if p.is(itemPunct, "=") {
		p.advance()
		init, err := p.parseInitializer()
		if err != nil {
			return nil, err
		}
		def.Init = init
	}
	return def, nil
}

// parseDims parses zero or more "[ ConstExp ]" dimension suffixes.
func (p *parser) parseDims() ([]ast.Exp, error) {
	var dims []ast.Exp
	for p.is(itemPunct, "[") {
		p.advance()
		e, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		dims = append(dims, e)
	}
	return dims, nil
}

func (p *parser) parseInitializer() (ast.Initializer, error) {
	if p.is(itemPunct, "{") {
		p.advance()
		init := &ast.ListInit{}
		if !p.is(itemPunct, "}") {
			for {
				sub, err := p.parseInitializer()
				if err != nil {
					return nil, err
				}
				init.Items = append(init.Items, sub)
				if p.is(itemPunct, ",") {
					p.advance()
					continue
				}
				break
			}
		}
		if err := p.expectPunct("}"); err != nil {
			return nil, err
		}
		return init, nil
	}
	e, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	return &ast.ExpInit{Exp: e}, nil
}

// -----------------------
// ----- Functions -------
// -----------------------

func (p *parser) parseFuncDefRest(bt ast.BType, ident string) (*ast.FuncDef, error) {
	line := p.tok.line
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []*ast.FuncFParam
	if !p.is(itemPunct, ")") {
		for {
			fp, err := p.parseFuncFParam()
			if err != nil {
				return nil, err
			}
			params = append(params, fp)
			if p.is(itemPunct, ",") {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FuncDef{RetType: bt, Ident: ident, Params: params, Body: body, Line: line}, nil
}

func (p *parser) parseFuncFParam() (*ast.FuncFParam, error) {
	bt, err := p.parseBType()
	if err != nil {
		return nil, err
	}
	ident, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	fp := &ast.FuncFParam{BType: bt, Ident: ident}
	if p.is(itemPunct, "[") {
		fp.IsArray = true
		p.advance() // consume '['
		if err := p.expectPunct("]"); err != nil {
			return nil, err
		}
		dims, err := p.parseDims()
		if err != nil {
			return nil, err
		}
		fp.Dims = dims
	}
	return fp, nil
}

// -----------------------
// ----- Statements ------
// -----------------------

func (p *parser) parseBlock() (*ast.Block, error) {
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	b := &ast.Block{}
	for !p.is(itemPunct, "}") {
		bi, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, bi)
	}
	p.advance() // consume '}'
	return b, nil
}

func (p *parser) parseBlockItem() (ast.BlockItem, error) {
	if p.is(itemKeyword, "const") {
		return p.parseConstDecl()
	}
	if p.is(itemKeyword, "int") || p.is(itemKeyword, "void") {
		bt, err := p.parseBType()
		if err != nil {
			return nil, err
		}
		ident, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		return p.parseVarDeclRest(bt, ident)
	}
	return p.parseStmt()
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.is(itemPunct, "{"):
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Block: b}, nil
	case p.is(itemKeyword, "if"):
		return p.parseIf()
	case p.is(itemKeyword, "while"):
		return p.parseWhile()
	case p.is(itemKeyword, "break"):
		line := p.tok.line
		p.advance()
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{Line: line}, nil
	case p.is(itemKeyword, "continue"):
		line := p.tok.line
		p.advance()
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{Line: line}, nil
	case p.is(itemKeyword, "return"):
		line := p.tok.line
		p.advance()
		if p.is(itemPunct, ";") {
			p.advance()
			return &ast.ReturnStmt{Line: line}, nil
		}
		e, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Exp: e, Line: line}, nil
	case p.is(itemPunct, ";"):
		p.advance()
		return &ast.ExpStmt{}, nil
	default:
		return p.parseAssignOrExpStmt()
	}
}

func (p *parser) parseIf() (*ast.IfStmt, error) {
	p.advance() // 'if'
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	thenStmt, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	ifs := &ast.IfStmt{Cond: cond, Then: thenStmt}
	if p.is(itemKeyword, "else") {
		p.advance()
		elseStmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		ifs.Else = elseStmt
	}
	return ifs, nil
}

func (p *parser) parseWhile() (*ast.WhileStmt, error) {
	p.advance() // 'while'
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	cond, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

// parseAssignOrExpStmt disambiguates "LVal = Exp ;" from "Exp ;" by attempting to parse an
// expression first and checking whether it reduces to an LVal immediately followed by '='.
func (p *parser) parseAssignOrExpStmt() (ast.Stmt, error) {
	line := p.tok.line
	e, err := p.parseExp()
	if err != nil {
		return nil, err
	}
	if p.is(itemPunct, "=") {
		lv, ok := e.(*ast.LVal)
		if !ok {
			return nil, p.errorf("left side of assignment must be a variable or array element")
		}
		p.advance()
		rhs, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		return &ast.AssignStmt{LVal: lv, Exp: rhs, Line: line}, nil
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &ast.ExpStmt{Exp: e}, nil
}

// ------------------------
// ----- Expressions ------
// ------------------------

func (p *parser) parseExp() (ast.Exp, error) {
	return p.parseLOr()
}

func (p *parser) parseLOr() (ast.Exp, error) {
	l, err := p.parseLAnd()
	if err != nil {
		return nil, err
	}
	for p.is(itemPunct, "||") {
		p.advance()
		r, err := p.parseLAnd()
		if err != nil {
			return nil, err
		}
		l = &ast.BinaryExp{Op: ast.OpLOr, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseLAnd() (ast.Exp, error) {
	l, err := p.parseEq()
	if err != nil {
		return nil, err
	}
	for p.is(itemPunct, "&&") {
		p.advance()
		r, err := p.parseEq()
		if err != nil {
			return nil, err
		}
		l = &ast.BinaryExp{Op: ast.OpLAnd, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseEq() (ast.Exp, error) {
	l, err := p.parseRel()
	if err != nil {
		return nil, err
	}
	for p.is(itemPunct, "==") || p.is(itemPunct, "!=") {
		op := ast.OpEq
		if p.tok.val == "!=" {
			op = ast.OpNe
		}
		p.advance()
		r, err := p.parseRel()
		if err != nil {
			return nil, err
		}
		l = &ast.BinaryExp{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseRel() (ast.Exp, error) {
	l, err := p.parseAdd()
	if err != nil {
		return nil, err
	}
	for p.is(itemPunct, "<") || p.is(itemPunct, "<=") || p.is(itemPunct, ">") || p.is(itemPunct, ">=") {
		var op ast.BinOp
		switch p.tok.val {
		case "<":
			op = ast.OpLt
		case "<=":
			op = ast.OpLe
		case ">":
			op = ast.OpGt
		case ">=":
			op = ast.OpGe
		}
		p.advance()
		r, err := p.parseAdd()
		if err != nil {
			return nil, err
		}
		l = &ast.BinaryExp{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseAdd() (ast.Exp, error) {
	l, err := p.parseMul()
	if err != nil {
		return nil, err
	}
	for p.is(itemPunct, "+") || p.is(itemPunct, "-") {
		op := ast.OpAdd
		if p.tok.val == "-" {
			op = ast.OpSub
		}
		p.advance()
		r, err := p.parseMul()
		if err != nil {
			return nil, err
		}
		l = &ast.BinaryExp{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseMul() (ast.Exp, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.is(itemPunct, "*") || p.is(itemPunct, "/") || p.is(itemPunct, "%") {
		var op ast.BinOp
		switch p.tok.val {
		case "*":
			op = ast.OpMul
		case "/":
			op = ast.OpDiv
		case "%":
			op = ast.OpMod
		}
		p.advance()
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = &ast.BinaryExp{Op: op, L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseUnary() (ast.Exp, error) {
	switch {
	case p.is(itemPunct, "+"):
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExp{Op: ast.UnPlus, X: x}, nil
	case p.is(itemPunct, "-"):
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExp{Op: ast.UnMinus, X: x}, nil
	case p.is(itemPunct, "!"):
		p.advance()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExp{Op: ast.UnNot, X: x}, nil
	}
	return p.parsePrimary()
}

// parsePrimary parses "(" Exp ")" | Ident "(" [ FuncRParams ] ")" | LVal | Number.
func (p *parser) parsePrimary() (ast.Exp, error) {
	switch {
	case p.is(itemPunct, "("):
		p.advance()
		e, err := p.parseExp()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil
	case p.tok.typ == itemNumber:
		n, err := parseNumber(p.tok.val)
		if err != nil {
			return nil, p.errorf("%s", err)
		}
		p.advance()
		return &ast.NumberExp{Value: n}, nil
	case p.tok.typ == itemIdent:
		line := p.tok.line
		ident := p.tok.val
		p.advance()
		if p.is(itemPunct, "(") {
			p.advance()
			var args []ast.Exp
			if !p.is(itemPunct, ")") {
				for {
					a, err := p.parseExp()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if p.is(itemPunct, ",") {
						p.advance()
						continue
					}
					break
				}
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return &ast.CallExp{Ident: ident, Args: args, Line: line}, nil
		}
		lv := &ast.LVal{Ident: ident, Line: line}
		for p.is(itemPunct, "[") {
			p.advance()
			idx, err := p.parseExp()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			lv.Indices = append(lv.Indices, idx)
		}
		return lv, nil
	}
	return nil, p.errorf("unexpected token %q", p.tok.val)
}
