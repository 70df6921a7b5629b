package koopa

// Program is the arena that owns every Value, BasicBlock and Function built for a translation
// unit, addressed by the opaque handles ValueID/BlockID/FuncID. Lowering (src/ir/build) only ever
// holds handles, never pointers into this arena, so appends may reallocate the backing slices
// freely. There is no lock: the compiler never accesses a Program concurrently.
type Program struct {
	values    []Value
	blocks    []BasicBlock
	functions []Function

	funcIndex map[string]FuncID
	Globals   []ValueID // KGlobalAlloc values, in declaration order.
	FuncOrder []FuncID  // defined (non-declared) functions, in declaration order.
}

// NewProgram creates an empty Program.
func NewProgram() *Program {
	return &Program{funcIndex: make(map[string]FuncID)}
}

// Value returns the Value named by id.
func (p *Program) Value(id ValueID) *Value {
	return &p.values[id]
}

// Block returns the BasicBlock named by id.
func (p *Program) Block(id BlockID) *BasicBlock {
	return &p.blocks[id]
}

// Func returns the Function named by id.
func (p *Program) Func(id FuncID) *Function {
	return &p.functions[id]
}

// FuncByName looks up a previously declared or defined function by its Koopa name (including the
// leading '@').
func (p *Program) FuncByName(name string) (FuncID, bool) {
	id, ok := p.funcIndex[name]
	return id, ok
}

func (p *Program) newValue(kind Kind, typ Type) ValueID {
	id := ValueID(len(p.values))
	p.values = append(p.values, Value{ID: id, Kind: kind, Typ: typ})
	return id
}

// Integer returns a fresh KInteger value. Constants are cheap enough to duplicate freely, so no
// interning is done.
func (p *Program) Integer(v int32) ValueID {
	id := p.newValue(KInteger, Int32)
	p.values[id].IntVal = v
	return id
}

// ZeroInit returns a fresh KZeroInit value of type typ.
func (p *Program) ZeroInit(typ Type) ValueID {
	return p.newValue(KZeroInit, typ)
}

// Aggregate returns a fresh KAggregate value built from elems, which must already be KInteger,
// KZeroInit or KAggregate values.
func (p *Program) Aggregate(typ Type, elems []ValueID) ValueID {
	id := p.newValue(KAggregate, typ)
	p.values[id].Elems = elems
	return id
}

// DeclareFunction registers an external function declaration (a library intrinsic) and returns
// its FuncID. paramTypes/retType describe its signature; it has no Params or Blocks.
func (p *Program) DeclareFunction(name string, paramTypes []Type, retType Type) FuncID {
	id := FuncID(len(p.functions))
	p.functions = append(p.functions, Function{
		ID: id, Name: name, ParamTypes: paramTypes, RetType: retType,
	})
	p.funcIndex[name] = id
	return id
}

// NewFunction registers a defined function and returns its FuncID along with the KFuncArgRef
// values standing for its parameters (one per paramTypes entry, in order).
func (p *Program) NewFunction(name string, paramTypes []Type, paramNames []string, retType Type) (FuncID, []ValueID) {
	id := FuncID(len(p.functions))
	params := make([]ValueID, len(paramTypes))
	for i, t := range paramTypes {
		v := p.newValue(KFuncArgRef, t)
		p.values[v].ParamIndex = i
		params[i] = v
	}
	p.functions = append(p.functions, Function{
		ID: id, Name: name, ParamTypes: paramTypes, ParamNames: paramNames, RetType: retType, Params: params,
	})
	p.funcIndex[name] = id
	p.FuncOrder = append(p.FuncOrder, id)
	return id, params
}

// NewBlock appends a fresh, empty BasicBlock named name to function fn and returns its handle.
func (p *Program) NewBlock(fn FuncID, name string) BlockID {
	id := BlockID(len(p.blocks))
	p.blocks = append(p.blocks, BasicBlock{ID: id, Name: name, Fn: fn})
	p.functions[fn].Blocks = append(p.functions[fn].Blocks, id)
	return id
}

// Push appends value v to the end of block bb's instruction list.
func (p *Program) Push(bb BlockID, v ValueID) {
	p.blocks[bb].Insts = append(p.blocks[bb].Insts, v)
}

// GlobalAlloc registers a global variable named name (carrying the leading '@') of element type
// elemTyp, initialized to init (a KInteger/KZeroInit/KAggregate value), and returns a ValueID of
// type Pointer(elemTyp) naming it.
func (p *Program) GlobalAlloc(name string, elemTyp Type, init ValueID) ValueID {
	id := p.newValue(KGlobalAlloc, Pointer(elemTyp))
	p.values[id].Name = name
	p.values[id].InitVal = init
	p.Globals = append(p.Globals, id)
	return id
}

// Alloc emits a stack allocation of elemTyp into block bb, named name (e.g. "%x"), and returns a
// ValueID of type Pointer(elemTyp) naming the allocated slot.
func (p *Program) Alloc(bb BlockID, name string, elemTyp Type) ValueID {
	id := p.newValue(KAlloc, Pointer(elemTyp))
	p.values[id].Name = name
	p.Push(bb, id)
	return id
}

// Load emits a load of the value pointed to by src into block bb.
func (p *Program) Load(bb BlockID, src ValueID) ValueID {
	ptrTyp := p.Value(src).Typ
	id := p.newValue(KLoad, ptrTyp.Elem())
	p.values[id].Operand0 = src
	p.Push(bb, id)
	return id
}

// Store emits a store of val to the location pointed to by dst into block bb.
func (p *Program) Store(bb BlockID, val, dst ValueID) ValueID {
	id := p.newValue(KStore, Unit)
	p.values[id].Operand0 = val
	p.values[id].Operand1 = dst
	p.Push(bb, id)
	return id
}

// Binary emits a binary operation into block bb.
func (p *Program) Binary(bb BlockID, op BinaryOp, lhs, rhs ValueID) ValueID {
	id := p.newValue(KBinary, Int32)
	p.values[id].BinOp = op
	p.values[id].Operand0 = lhs
	p.values[id].Operand1 = rhs
	p.Push(bb, id)
	return id
}

// GetElemPtr emits a GetElemPtr into block bb: base must have Array element type; index selects
// an element of that array, producing a pointer to the element type.
func (p *Program) GetElemPtr(bb BlockID, base, index ValueID) ValueID {
	elemTyp := p.Value(base).Typ.Elem().Elem()
	id := p.newValue(KGetElemPtr, Pointer(elemTyp))
	p.values[id].Operand0 = base
	p.values[id].Operand1 = index
	p.Push(bb, id)
	return id
}

// GetPtr emits a GetPtr into block bb: base must itself be a pointer (used for array-decayed
// function parameters); index advances it by one element of its pointed-to type.
func (p *Program) GetPtr(bb BlockID, base, index ValueID) ValueID {
	elemTyp := p.Value(base).Typ.Elem()
	id := p.newValue(KGetPtr, Pointer(elemTyp))
	p.values[id].Operand0 = base
	p.values[id].Operand1 = index
	p.Push(bb, id)
	return id
}

// Call emits a call to callee with args into block bb.
func (p *Program) Call(bb BlockID, callee FuncID, args []ValueID) ValueID {
	id := p.newValue(KCall, p.Func(callee).RetType)
	p.values[id].Callee = callee
	p.values[id].Args = args
	p.Push(bb, id)
	return id
}

// Jump terminates block bb with an unconditional jump to target.
func (p *Program) Jump(bb, target BlockID) {
	id := p.newValue(KJump, Unit)
	p.values[id].Target = target
	p.Push(bb, id)
}

// Branch terminates block bb with a conditional branch on cond to trueBB or falseBB.
func (p *Program) Branch(bb BlockID, cond ValueID, trueBB, falseBB BlockID) {
	id := p.newValue(KBranch, Unit)
	p.values[id].Operand0 = cond
	p.values[id].TrueBB = trueBB
	p.values[id].FalseBB = falseBB
	p.Push(bb, id)
}

// Return terminates block bb, optionally with a return value: val is returned when hasVal is true;
// hasVal false is a bare "return;" from a void function and val is ignored.
func (p *Program) Return(bb BlockID, val ValueID, hasVal bool) {
	id := p.newValue(KReturn, Unit)
	p.values[id].Operand0 = val
	p.values[id].HasRetVal = hasVal
	p.Push(bb, id)
}

// String implements fmt.Stringer by delegating to the Koopa-text printer (print.go).
func (p *Program) String() string {
	return Print(p)
}
