package mir

import (
	"fmt"

	"github.com/solventlang/tsc/internal/types"
)

// Op is a mid-IR opcode: a stack-machine instruction shaped closely after
// the target format's own numeric and control instructions, so the
// target assembler's job is mostly index rewriting rather than
// re-translation. Op is declared in the same order as opcodes.txt; a
// parity test asserts the two stay in sync.
type Op uint32

const (
	Unreachable Op = iota
	Drop
	Return
	End
	Else
	Block
	Loop
	If
	Br
	BrIf
	Call
	LocalGet
	LocalSet
	LocalTee
	GlobalGet
	GlobalSet
	ConstI32
	ConstI64
	ConstF32
	ConstF64
	I32Eqz
	I32Eq
	I32Ne
	I32LtS
	I32LtU
	I32GtS
	I32GtU
	I32LeS
	I32LeU
	I32GeS
	I32GeU
	I64Eqz
	I64Eq
	I64Ne
	I64LtS
	I64LtU
	I64GtS
	I64GtU
	I64LeS
	I64LeU
	I64GeS
	I64GeU
	F32Eq
	F32Ne
	F32Lt
	F32Gt
	F32Le
	F32Ge
	F64Eq
	F64Ne
	F64Lt
	F64Gt
	F64Le
	F64Ge
	I32Add
	I32Sub
	I32Mul
	I32DivS
	I32DivU
	I32RemS
	I32RemU
	I32And
	I32Or
	I32Xor
	I32Shl
	I32ShrS
	I32ShrU
	I64Add
	I64Sub
	I64Mul
	I64DivS
	I64DivU
	I64RemS
	I64RemU
	I64And
	I64Or
	I64Xor
	I64Shl
	I64ShrS
	I64ShrU
	F32Add
	F32Sub
	F32Mul
	F32Div
	F64Add
	F64Sub
	F64Mul
	F64Div
	I32WrapI64
	I64ExtendI32S
	I64ExtendI32U
	I32TruncF32S
	I32TruncF32U
	I32TruncF64S
	I32TruncF64U
	I64TruncF32S
	I64TruncF32U
	I64TruncF64S
	I64TruncF64U
	F32ConvertI32S
	F32ConvertI32U
	F32ConvertI64S
	F32ConvertI64U
	F32DemoteF64
	F64ConvertI32S
	F64ConvertI32U
	F64ConvertI64S
	F64ConvertI64U
	F64PromoteF32

	opCount
)

var opNames = [...]string{
	Unreachable: "Unreachable", Drop: "Drop", Return: "Return", End: "End", Else: "Else",
	Block: "Block", Loop: "Loop", If: "If", Br: "Br", BrIf: "BrIf", Call: "Call",
	LocalGet: "LocalGet", LocalSet: "LocalSet", LocalTee: "LocalTee",
	GlobalGet: "GlobalGet", GlobalSet: "GlobalSet",
	ConstI32: "ConstI32", ConstI64: "ConstI64", ConstF32: "ConstF32", ConstF64: "ConstF64",
	I32Eqz: "I32Eqz", I32Eq: "I32Eq", I32Ne: "I32Ne", I32LtS: "I32LtS", I32LtU: "I32LtU",
	I32GtS: "I32GtS", I32GtU: "I32GtU", I32LeS: "I32LeS", I32LeU: "I32LeU", I32GeS: "I32GeS", I32GeU: "I32GeU",
	I64Eqz: "I64Eqz", I64Eq: "I64Eq", I64Ne: "I64Ne", I64LtS: "I64LtS", I64LtU: "I64LtU",
	I64GtS: "I64GtS", I64GtU: "I64GtU", I64LeS: "I64LeS", I64LeU: "I64LeU", I64GeS: "I64GeS", I64GeU: "I64GeU",
	F32Eq: "F32Eq", F32Ne: "F32Ne", F32Lt: "F32Lt", F32Gt: "F32Gt", F32Le: "F32Le", F32Ge: "F32Ge",
	F64Eq: "F64Eq", F64Ne: "F64Ne", F64Lt: "F64Lt", F64Gt: "F64Gt", F64Le: "F64Le", F64Ge: "F64Ge",
	I32Add: "I32Add", I32Sub: "I32Sub", I32Mul: "I32Mul", I32DivS: "I32DivS", I32DivU: "I32DivU",
	I32RemS: "I32RemS", I32RemU: "I32RemU", I32And: "I32And", I32Or: "I32Or", I32Xor: "I32Xor",
	I32Shl: "I32Shl", I32ShrS: "I32ShrS", I32ShrU: "I32ShrU",
	I64Add: "I64Add", I64Sub: "I64Sub", I64Mul: "I64Mul", I64DivS: "I64DivS", I64DivU: "I64DivU",
	I64RemS: "I64RemS", I64RemU: "I64RemU", I64And: "I64And", I64Or: "I64Or", I64Xor: "I64Xor",
	I64Shl: "I64Shl", I64ShrS: "I64ShrS", I64ShrU: "I64ShrU",
	F32Add: "F32Add", F32Sub: "F32Sub", F32Mul: "F32Mul", F32Div: "F32Div",
	F64Add: "F64Add", F64Sub: "F64Sub", F64Mul: "F64Mul", F64Div: "F64Div",
	I32WrapI64: "I32WrapI64", I64ExtendI32S: "I64ExtendI32S", I64ExtendI32U: "I64ExtendI32U",
	I32TruncF32S: "I32TruncF32S", I32TruncF32U: "I32TruncF32U", I32TruncF64S: "I32TruncF64S", I32TruncF64U: "I32TruncF64U",
	I64TruncF32S: "I64TruncF32S", I64TruncF32U: "I64TruncF32U", I64TruncF64S: "I64TruncF64S", I64TruncF64U: "I64TruncF64U",
	F32ConvertI32S: "F32ConvertI32S", F32ConvertI32U: "F32ConvertI32U", F32ConvertI64S: "F32ConvertI64S", F32ConvertI64U: "F32ConvertI64U",
	F32DemoteF64: "F32DemoteF64",
	F64ConvertI32S: "F64ConvertI32S", F64ConvertI32U: "F64ConvertI32U", F64ConvertI64S: "F64ConvertI64S", F64ConvertI64U: "F64ConvertI64U",
	F64PromoteF32: "F64PromoteF32",
}

func (o Op) String() string {
	if int(o) >= 0 && int(o) < len(opNames) && opNames[o] != "" {
		return opNames[o]
	}

	return fmt.Sprintf("Op(%d)", uint32(o))
}

// opArity maps the opcodes that carry immediate operand words to their
// word count; every opcode absent from this table has arity 0 (a pure
// stack effect, no immediate). Kept as a data table per the opcode
// metadata design note, rather than a per-opcode switch.
var opArity = map[Op]int{
	Block: 1, Loop: 1, If: 1,
	Br: 1, BrIf: 1,
	Call: 1,
	LocalGet: 1, LocalSet: 1, LocalTee: 1,
	GlobalGet: 1, GlobalSet: 1,
	ConstI32: 1, ConstF32: 1,
	ConstI64: 2, ConstF64: 2,
}

// Arity returns the number of immediate operand words following op in the
// code stream.
func (o Op) Arity() int { return opArity[o] }

// BlockType is the result-type immediate carried by Block/Loop/If.
type BlockType uint32

const (
	BlockVoid BlockType = iota
	BlockI32
	BlockI64
	BlockF32
	BlockF64
)

// BlockTypeFor translates a primitive result type to its BlockType, or
// BlockVoid for Void.
func BlockTypeFor(p types.Primitive) BlockType {
	switch p {
	case types.I32:
		return BlockI32
	case types.I64:
		return BlockI64
	case types.F32:
		return BlockF32
	case types.F64:
		return BlockF64
	default:
		return BlockVoid
	}
}
