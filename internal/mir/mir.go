// Package mir implements the flat 32-bit-word mid-level IR emitted per
// function between type resolution and target assembly: the C6
// generator, and the C7 dead-function-elimination optimizer.
package mir

import (
	"math"

	"github.com/solventlang/tsc/internal/types"
)

// Module is every surviving function's mid-IR plus the shared string
// table interned by the resolver.
type Module struct {
	Functions []*Function
	Strings   *types.StringTable
}

// Function is one function's mid-IR: its signature, its locals in
// prefix(params)+declared-locals order, its code word stream, and its
// call dependency set (carried over from the resolver, consumed by the
// optimizer).
type Function struct {
	TempIndex  types.FuncTempIndex
	Name       string
	Exported   bool
	Import     *types.ImportOrigin
	ParamTypes []types.Descriptor
	LocalTypes []types.Descriptor // full prefix: params then declared locals
	ResultType types.Descriptor
	Code       []uint32
	Deps       map[types.FuncTempIndex]struct{}
}

// labelKind tags one entry of the structured-control-flow label stack.
type labelKind int

const (
	labelBlock labelKind = iota
	labelLoop
	labelIf
)

// loopMarker records the label-stack positions of a loop's break and
// continue targets, so Break/Continue can compute the branch depth
// relative to however deeply nested the current position is (further
// blocks or ifs may have been pushed since the loop started).
type loopMarker struct {
	breakPos, continuePos int
}

// Builder accumulates one function's code word stream, tracking the
// structured label stack needed to resolve br/br_if depths and to emit
// a matching End for every Block/Loop/If.
type Builder struct {
	code       []uint32
	labelStack []labelKind
	loopStack  []loopMarker
}

func NewBuilder() *Builder { return &Builder{} }

// Emit appends an opcode and its immediate operand words.
func (b *Builder) Emit(op Op, operands ...uint32) {
	b.code = append(b.code, uint32(op))
	b.code = append(b.code, operands...)
}

func (b *Builder) EmitConstI32(v int32) {
	b.Emit(ConstI32, uint32(v))
}

func (b *Builder) EmitConstI64(v int64) {
	u := uint64(v)
	b.Emit(ConstI64, uint32(u), uint32(u>>32))
}

func (b *Builder) EmitConstF32(v float32) {
	b.Emit(ConstF32, math.Float32bits(v))
}

func (b *Builder) EmitConstF64(v float64) {
	u := math.Float64bits(v)
	b.Emit(ConstF64, uint32(u), uint32(u>>32))
}

// PushBlock opens a `block` region. Break does not target it unless it is
// the outer block of a PushLoop pair.
func (b *Builder) PushBlock(bt BlockType) {
	b.Emit(Block, uint32(bt))
	b.labelStack = append(b.labelStack, labelBlock)
}

// PushIf opens an `if` region (the condition must already be on the
// stack). EmitElse switches to the else arm without changing nesting.
func (b *Builder) PushIf(bt BlockType) {
	b.Emit(If, uint32(bt))
	b.labelStack = append(b.labelStack, labelIf)
}

func (b *Builder) EmitElse() {
	b.Emit(Else)
}

// PushLoop opens the two-region break/continue idiom used for while/for:
// an outer block (the break target) wrapping an inner loop (the continue
// target, since branching to a loop label re-enters it at the top).
func (b *Builder) PushLoop(bt BlockType) {
	breakPos := len(b.labelStack)
	b.PushBlock(BlockVoid)

	continuePos := len(b.labelStack)
	b.Emit(Loop, uint32(bt))
	b.labelStack = append(b.labelStack, labelLoop)

	b.loopStack = append(b.loopStack, loopMarker{breakPos: breakPos, continuePos: continuePos})
}

// PopLoop closes both regions PushLoop opened, innermost first.
func (b *Builder) PopLoop() {
	b.PopLabel() // loop
	b.PopLabel() // outer break block
	b.loopStack = b.loopStack[:len(b.loopStack)-1]
}

// PopLabel closes the innermost open Block/Loop/If region.
func (b *Builder) PopLabel() {
	b.Emit(End)
	b.labelStack = b.labelStack[:len(b.labelStack)-1]
}

// Break emits a branch to the nearest enclosing loop's break target.
// conditional selects Br (unconditional) vs BrIf (pops a condition).
func (b *Builder) Break(conditional bool) {
	m := b.loopStack[len(b.loopStack)-1]
	b.branchTo(m.breakPos, conditional)
}

// Continue emits a branch to the nearest enclosing loop's continue
// target (the loop label itself).
func (b *Builder) Continue(conditional bool) {
	m := b.loopStack[len(b.loopStack)-1]
	b.branchTo(m.continuePos, conditional)
}

func (b *Builder) branchTo(labelStackPos int, conditional bool) {
	depth := uint32(len(b.labelStack) - 1 - labelStackPos)

	if conditional {
		b.Emit(BrIf, depth)
	} else {
		b.Emit(Br, depth)
	}
}

// InLoop reports whether a break/continue is currently valid.
func (b *Builder) InLoop() bool { return len(b.loopStack) > 0 }

func (b *Builder) Code() []uint32 { return b.code }
