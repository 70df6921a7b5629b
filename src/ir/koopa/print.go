package koopa

import (
	"fmt"
	"strings"
)

// Print renders p as Koopa textual IR, the output of the -koopa driver mode. It gives every value
// a local name on demand (%0, %1, ...), since the builder does not name most intermediate values
// itself.
func Print(p *Program) string {
	pr := &printer{p: p, names: make(map[ValueID]string)}
	sb := &strings.Builder{}

	for _, g := range p.Globals {
		pr.printGlobal(sb, g)
	}
	if len(p.Globals) > 0 {
		sb.WriteByte('\n')
	}
	for i, fn := range p.FuncOrder {
		if i > 0 {
			sb.WriteByte('\n')
		}
		pr.printFunc(sb, fn)
	}
	return sb.String()
}

type printer struct {
	p     *Program
	names map[ValueID]string
	seq   int
}

func (pr *printer) name(id ValueID) string {
	v := pr.p.Value(id)
	if v.Kind == KInteger {
		return fmt.Sprintf("%d", v.IntVal)
	}
	if v.Name != "" {
		return v.Name
	}
	if n, ok := pr.names[id]; ok {
		return n
	}
	n := fmt.Sprintf("%%%d", pr.seq)
	pr.seq++
	pr.names[id] = n
	return n
}

func (pr *printer) printGlobal(sb *strings.Builder, id ValueID) {
	v := pr.p.Value(id)
	fmt.Fprintf(sb, "global %s = alloc %s, %s\n", v.Name, v.Typ.Elem(), pr.initText(v.InitVal))
}

func (pr *printer) initText(id ValueID) string {
	v := pr.p.Value(id)
	switch v.Kind {
	case KInteger:
		return fmt.Sprintf("%d", v.IntVal)
	case KZeroInit:
		return "zeroinit"
	case KAggregate:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = pr.initText(e)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return "?"
}

func (pr *printer) printFunc(sb *strings.Builder, id FuncID) {
	f := pr.p.Func(id)
	params := make([]string, len(f.ParamTypes))
	for i, t := range f.ParamTypes {
		name := "%_"
		if i < len(f.Params) {
			name = pr.name(f.Params[i])
		}
		params[i] = fmt.Sprintf("%s: %s", name, t)
	}
	ret := ""
	if !f.RetType.IsUnit() {
		ret = ": " + f.RetType.String()
	}
	if f.Declared() {
		fmt.Fprintf(sb, "decl %s(%s)%s\n", f.Name, strings.Join(params, ", "), ret)
		return
	}
	fmt.Fprintf(sb, "fun %s(%s)%s {\n", f.Name, strings.Join(params, ", "), ret)
	for _, bb := range f.Blocks {
		pr.printBlock(sb, bb)
	}
	sb.WriteString("}\n")
}

func (pr *printer) printBlock(sb *strings.Builder, id BlockID) {
	b := pr.p.Block(id)
	fmt.Fprintf(sb, "%s:\n", strings.TrimPrefix(b.Name, "%"))
	for _, inst := range b.Insts {
		sb.WriteByte('\t')
		pr.printInst(sb, inst)
		sb.WriteByte('\n')
	}
}

func (pr *printer) printInst(sb *strings.Builder, id ValueID) {
	v := pr.p.Value(id)
	switch v.Kind {
	case KAlloc:
		fmt.Fprintf(sb, "%s = alloc %s", pr.name(id), v.Typ.Elem())
	case KLoad:
		fmt.Fprintf(sb, "%s = load %s", pr.name(id), pr.name(v.Operand0))
	case KStore:
		fmt.Fprintf(sb, "store %s, %s", pr.name(v.Operand0), pr.name(v.Operand1))
	case KBinary:
		fmt.Fprintf(sb, "%s = %s %s, %s", pr.name(id), v.BinOp, pr.name(v.Operand0), pr.name(v.Operand1))
	case KGetElemPtr:
		fmt.Fprintf(sb, "%s = getelemptr %s, %s", pr.name(id), pr.name(v.Operand0), pr.name(v.Operand1))
	case KGetPtr:
		fmt.Fprintf(sb, "%s = getptr %s, %s", pr.name(id), pr.name(v.Operand0), pr.name(v.Operand1))
	case KCall:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = pr.name(a)
		}
		callee := pr.p.Func(v.Callee).Name
		if v.Typ.IsUnit() {
			fmt.Fprintf(sb, "call %s(%s)", callee, strings.Join(args, ", "))
		} else {
			fmt.Fprintf(sb, "%s = call %s(%s)", pr.name(id), callee, strings.Join(args, ", "))
		}
	case KBranch:
		fmt.Fprintf(sb, "br %s, %s, %s", pr.name(v.Operand0), pr.p.Block(v.TrueBB).Name, pr.p.Block(v.FalseBB).Name)
	case KJump:
		fmt.Fprintf(sb, "jump %s", pr.p.Block(v.Target).Name)
	case KReturn:
		if v.HasRetVal {
			fmt.Fprintf(sb, "ret %s", pr.name(v.Operand0))
		} else {
			sb.WriteString("ret")
		}
	case KInteger:
		fmt.Fprintf(sb, "%d", v.IntVal)
	default:
		fmt.Fprintf(sb, "; unprintable value kind %d", v.Kind)
	}
}
