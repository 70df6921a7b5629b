package riscv

import (
	"sysyc/src/ir/koopa"
	"sysyc/src/util"
)

// regKind tags what, if anything, a pool register currently holds.
type regKind int

const (
	regFree regKind = iota
	regUsed            // holds the live value of an IR Value; spill on eviction.
	regTemp            // holds a scratch immediate; free to discard on eviction.
)

// funcGen holds every piece of state threaded through the emission of a single function: the
// value table (register/stack bookkeeping with lock/spill) and the frame layout computed by the
// frame-size analysis. Each emitted function gets its own funcGen; nothing is shared across
// functions.
type funcGen struct {
	prog *koopa.Program
	fn   *koopa.Function
	wr   *util.Writer

	frameSize  int
	hasCall    bool
	maxOutArgs int // highest argument count among calls made by this function, for outgoing-arg slot sizing.

	offset       map[koopa.ValueID]int // local stack slot, relative to sp, for values with a frame home.
	callerOffset map[koopa.ValueID]int // for FuncArgRef params 9+: offset into the caller's frame.
	globalName   map[koopa.ValueID]string

	kind   [32]regKind
	valIn  map[koopa.ValueID]int // value -> register currently holding it (regUsed only).
	occIn  [32]koopa.ValueID     // register -> value it holds, meaningful when kind[r]==regUsed.
	locked [32]bool
}

func newFuncGen(prog *koopa.Program, fn *koopa.Function, wr *util.Writer) *funcGen {
	return &funcGen{
		prog:         prog,
		fn:           fn,
		wr:           wr,
		offset:       make(map[koopa.ValueID]int),
		callerOffset: make(map[koopa.ValueID]int),
		globalName:   make(map[koopa.ValueID]string),
		valIn:        make(map[koopa.ValueID]int),
	}
}

// analyzeFrame sums the stack size of every value in the function that needs a home slot,
// accounts for a saved return address and outgoing-argument area if any call is made, and rounds
// the total up to a 16-byte boundary.
//
// The outgoing-argument area is reserved at the low end of the frame, because a call site writes
// argument 9+ to (i-8)*4(sp) of the *caller's own* frame (emitCall): the same absolute address
// the callee then reads at calleeFrameSize+(i-8)*4(sp) from its own, smaller frame. Ordinary
// local value slots must therefore start above that area, not at offset 0, or a local live across
// a call with more than 8 arguments would be clobbered by that call's own argument marshalling.
func (g *funcGen) analyzeFrame() {
	for _, bbID := range g.fn.Blocks {
		for _, vID := range g.prog.Block(bbID).Insts {
			v := g.prog.Value(vID)
			if v.Kind == koopa.KCall {
				g.hasCall = true
				if n := len(v.Args); n > g.maxOutArgs {
					g.maxOutArgs = n
				}
			}
		}
	}
	size := 0
	if g.maxOutArgs > 8 {
		size = (g.maxOutArgs - 8) * wordSize
	}

	for _, bbID := range g.fn.Blocks {
		bb := g.prog.Block(bbID)
		for _, vID := range bb.Insts {
			v := g.prog.Value(vID)
			switch v.Kind {
			case koopa.KAlloc:
				g.offset[vID] = size
				size += v.Typ.Elem().Size()
			case koopa.KFuncArgRef:
				// Bound directly to an incoming register or the caller's frame; see bindParams.
			default:
				if !v.Typ.IsUnit() {
					g.offset[vID] = size
					size += v.Typ.Size()
				}
			}
		}
	}
	if g.hasCall {
		size += wordSize // saved ra
	}
	g.frameSize = roundUp(size, stackAlign)
}

func roundUp(n, align int) int {
	if n%align == 0 {
		return n
	}
	return n + (align - n%align)
}

// bindParams seeds the value table with the incoming parameters: the first 8 arrive pre-loaded in
// a0..a7 (the value table is seeded to reflect this, no lw needed on first use); the rest live in
// the caller's frame at frame_size + (i-8)*4 and are read from there directly.
func (g *funcGen) bindParams() {
	for i, p := range g.fn.Params {
		if i < 8 {
			reg := argRegs[i]
			g.kind[reg] = regUsed
			g.occIn[reg] = p
			g.valIn[p] = reg
		} else {
			g.callerOffset[p] = g.frameSize + (i-8)*wordSize
		}
	}
}

// prologue emits the stack-pointer adjustment and, if the function makes any call, the saved
// return-address store.
func (g *funcGen) prologue() {
	g.emitAddSP(-g.frameSize)
	if g.hasCall {
		g.emitStoreOffset(ra, g.frameSize-wordSize, sp)
	}
}

// epilogue restores ra (if saved) and the stack pointer.
func (g *funcGen) epilogue() {
	if g.hasCall {
		g.emitLoadOffset(ra, g.frameSize-wordSize, sp)
	}
	g.emitAddSP(g.frameSize)
}

func (g *funcGen) emitAddSP(delta int) {
	if delta == 0 {
		return
	}
	g.emitArithImm("add", sp, sp, delta)
}
