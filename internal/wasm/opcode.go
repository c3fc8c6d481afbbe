package wasm

import (
	"fmt"
	"math"

	"github.com/solventlang/tsc/internal/leb128"
	"github.com/solventlang/tsc/internal/mir"
)

// Opcode is one target-format instruction byte. Opcode is declared in
// the same order as opcodes.txt and as mir.Op (spec §4.8: "the target
// assembler's job is mostly index rewriting rather than
// re-translation") — a parity test asserts the name list stays in sync,
// and the assembler translates a mir.Op to its Opcode through the
// fromMirOp table, keyed by mir.Op, rather than a per-case switch (design
// note §9: opcode metadata as data tables, not per-variant matches).
type Opcode byte

const (
	opUnreachable Opcode = 0x00
	opDrop        Opcode = 0x1A
	opReturn      Opcode = 0x0F
	opEnd         Opcode = 0x0B
	opElse        Opcode = 0x05
	opBlock       Opcode = 0x02
	opLoop        Opcode = 0x03
	opIf          Opcode = 0x04
	opBr          Opcode = 0x0C
	opBrIf        Opcode = 0x0D
	opCall        Opcode = 0x10
	opLocalGet    Opcode = 0x20
	opLocalSet    Opcode = 0x21
	opLocalTee    Opcode = 0x22
	opGlobalGet   Opcode = 0x23
	opGlobalSet   Opcode = 0x24
	opI32Const    Opcode = 0x41
	opI64Const    Opcode = 0x42
	opF32Const    Opcode = 0x43
	opF64Const    Opcode = 0x44

	opI32Eqz Opcode = 0x45
	opI32Eq  Opcode = 0x46
	opI32Ne  Opcode = 0x47
	opI32LtS Opcode = 0x48
	opI32LtU Opcode = 0x49
	opI32GtS Opcode = 0x4A
	opI32GtU Opcode = 0x4B
	opI32LeS Opcode = 0x4C
	opI32LeU Opcode = 0x4D
	opI32GeS Opcode = 0x4E
	opI32GeU Opcode = 0x4F

	opI64Eqz Opcode = 0x50
	opI64Eq  Opcode = 0x51
	opI64Ne  Opcode = 0x52
	opI64LtS Opcode = 0x53
	opI64LtU Opcode = 0x54
	opI64GtS Opcode = 0x55
	opI64GtU Opcode = 0x56
	opI64LeS Opcode = 0x57
	opI64LeU Opcode = 0x58
	opI64GeS Opcode = 0x59
	opI64GeU Opcode = 0x5A

	opF32Eq Opcode = 0x5B
	opF32Ne Opcode = 0x5C
	opF32Lt Opcode = 0x5D
	opF32Gt Opcode = 0x5E
	opF32Le Opcode = 0x5F
	opF32Ge Opcode = 0x60

	opF64Eq Opcode = 0x61
	opF64Ne Opcode = 0x62
	opF64Lt Opcode = 0x63
	opF64Gt Opcode = 0x64
	opF64Le Opcode = 0x65
	opF64Ge Opcode = 0x66

	opI32Add  Opcode = 0x6A
	opI32Sub  Opcode = 0x6B
	opI32Mul  Opcode = 0x6C
	opI32DivS Opcode = 0x6D
	opI32DivU Opcode = 0x6E
	opI32RemS Opcode = 0x6F
	opI32RemU Opcode = 0x70
	opI32And  Opcode = 0x71
	opI32Or   Opcode = 0x72
	opI32Xor  Opcode = 0x73
	opI32Shl  Opcode = 0x74
	opI32ShrS Opcode = 0x75
	opI32ShrU Opcode = 0x76

	opI64Add  Opcode = 0x7C
	opI64Sub  Opcode = 0x7D
	opI64Mul  Opcode = 0x7E
	opI64DivS Opcode = 0x7F
	opI64DivU Opcode = 0x80
	opI64RemS Opcode = 0x81
	opI64RemU Opcode = 0x82
	opI64And  Opcode = 0x83
	opI64Or   Opcode = 0x84
	opI64Xor  Opcode = 0x85
	opI64Shl  Opcode = 0x86
	opI64ShrS Opcode = 0x87
	opI64ShrU Opcode = 0x88

	opF32Add Opcode = 0x92
	opF32Sub Opcode = 0x93
	opF32Mul Opcode = 0x94
	opF32Div Opcode = 0x95

	opF64Add Opcode = 0xA0
	opF64Sub Opcode = 0xA1
	opF64Mul Opcode = 0xA2
	opF64Div Opcode = 0xA3

	opI32WrapI64    Opcode = 0xA7
	opI64ExtendI32S Opcode = 0xAC
	opI64ExtendI32U Opcode = 0xAD

	opI32TruncF32S Opcode = 0xA8
	opI32TruncF32U Opcode = 0xA9
	opI32TruncF64S Opcode = 0xAA
	opI32TruncF64U Opcode = 0xAB

	opI64TruncF32S Opcode = 0xAE
	opI64TruncF32U Opcode = 0xAF
	opI64TruncF64S Opcode = 0xB0
	opI64TruncF64U Opcode = 0xB1

	opF32ConvertI32S Opcode = 0xB2
	opF32ConvertI32U Opcode = 0xB3
	opF32ConvertI64S Opcode = 0xB4
	opF32ConvertI64U Opcode = 0xB5
	opF32DemoteF64   Opcode = 0xB6

	opF64ConvertI32S Opcode = 0xB7
	opF64ConvertI32U Opcode = 0xB8
	opF64ConvertI64S Opcode = 0xB9
	opF64ConvertI64U Opcode = 0xBA
	opF64PromoteF32  Opcode = 0xBB
)

// fromMirOp translates a mid-IR opcode to its target instruction byte,
// the C8 "mostly index rewriting" translation table (spec §4.8 step 3).
var fromMirOp = map[mir.Op]Opcode{
	mir.Unreachable: opUnreachable,
	mir.Drop:        opDrop,
	mir.Return:      opReturn,
	mir.End:         opEnd,
	mir.Else:        opElse,
	mir.Block:       opBlock,
	mir.Loop:        opLoop,
	mir.If:          opIf,
	mir.Br:          opBr,
	mir.BrIf:        opBrIf,
	mir.Call:        opCall,
	mir.LocalGet:    opLocalGet,
	mir.LocalSet:    opLocalSet,
	mir.LocalTee:    opLocalTee,
	mir.GlobalGet:   opGlobalGet,
	mir.GlobalSet:   opGlobalSet,
	mir.ConstI32:    opI32Const,
	mir.ConstI64:    opI64Const,
	mir.ConstF32:    opF32Const,
	mir.ConstF64:    opF64Const,

	mir.I32Eqz: opI32Eqz, mir.I32Eq: opI32Eq, mir.I32Ne: opI32Ne,
	mir.I32LtS: opI32LtS, mir.I32LtU: opI32LtU, mir.I32GtS: opI32GtS, mir.I32GtU: opI32GtU,
	mir.I32LeS: opI32LeS, mir.I32LeU: opI32LeU, mir.I32GeS: opI32GeS, mir.I32GeU: opI32GeU,

	mir.I64Eqz: opI64Eqz, mir.I64Eq: opI64Eq, mir.I64Ne: opI64Ne,
	mir.I64LtS: opI64LtS, mir.I64LtU: opI64LtU, mir.I64GtS: opI64GtS, mir.I64GtU: opI64GtU,
	mir.I64LeS: opI64LeS, mir.I64LeU: opI64LeU, mir.I64GeS: opI64GeS, mir.I64GeU: opI64GeU,

	mir.F32Eq: opF32Eq, mir.F32Ne: opF32Ne, mir.F32Lt: opF32Lt, mir.F32Gt: opF32Gt, mir.F32Le: opF32Le, mir.F32Ge: opF32Ge,
	mir.F64Eq: opF64Eq, mir.F64Ne: opF64Ne, mir.F64Lt: opF64Lt, mir.F64Gt: opF64Gt, mir.F64Le: opF64Le, mir.F64Ge: opF64Ge,

	mir.I32Add: opI32Add, mir.I32Sub: opI32Sub, mir.I32Mul: opI32Mul,
	mir.I32DivS: opI32DivS, mir.I32DivU: opI32DivU, mir.I32RemS: opI32RemS, mir.I32RemU: opI32RemU,
	mir.I32And: opI32And, mir.I32Or: opI32Or, mir.I32Xor: opI32Xor,
	mir.I32Shl: opI32Shl, mir.I32ShrS: opI32ShrS, mir.I32ShrU: opI32ShrU,

	mir.I64Add: opI64Add, mir.I64Sub: opI64Sub, mir.I64Mul: opI64Mul,
	mir.I64DivS: opI64DivS, mir.I64DivU: opI64DivU, mir.I64RemS: opI64RemS, mir.I64RemU: opI64RemU,
	mir.I64And: opI64And, mir.I64Or: opI64Or, mir.I64Xor: opI64Xor,
	mir.I64Shl: opI64Shl, mir.I64ShrS: opI64ShrS, mir.I64ShrU: opI64ShrU,

	mir.F32Add: opF32Add, mir.F32Sub: opF32Sub, mir.F32Mul: opF32Mul, mir.F32Div: opF32Div,
	mir.F64Add: opF64Add, mir.F64Sub: opF64Sub, mir.F64Mul: opF64Mul, mir.F64Div: opF64Div,

	mir.I32WrapI64: opI32WrapI64, mir.I64ExtendI32S: opI64ExtendI32S, mir.I64ExtendI32U: opI64ExtendI32U,
	mir.I32TruncF32S: opI32TruncF32S, mir.I32TruncF32U: opI32TruncF32U,
	mir.I32TruncF64S: opI32TruncF64S, mir.I32TruncF64U: opI32TruncF64U,
	mir.I64TruncF32S: opI64TruncF32S, mir.I64TruncF32U: opI64TruncF32U,
	mir.I64TruncF64S: opI64TruncF64S, mir.I64TruncF64U: opI64TruncF64U,

	mir.F32ConvertI32S: opF32ConvertI32S, mir.F32ConvertI32U: opF32ConvertI32U,
	mir.F32ConvertI64S: opF32ConvertI64S, mir.F32ConvertI64U: opF32ConvertI64U,
	mir.F32DemoteF64: opF32DemoteF64,
	mir.F64ConvertI32S: opF64ConvertI32S, mir.F64ConvertI32U: opF64ConvertI32U,
	mir.F64ConvertI64S: opF64ConvertI64S, mir.F64ConvertI64U: opF64ConvertI64U,
	mir.F64PromoteF32: opF64PromoteF32,
}

// opcodeNames mirrors opcodes.txt, keyed by the Opcode constant rather
// than a dense index (unlike mir.Op, Opcode values are the target
// format's actual sparse byte values). TestOpcodeNamesMatchSourceList
// asserts every source-of-truth entry resolves to a registered name.
var opcodeNames = map[Opcode]string{
	opUnreachable: "Unreachable", opDrop: "Drop", opReturn: "Return", opEnd: "End", opElse: "Else",
	opBlock: "Block", opLoop: "Loop", opIf: "If", opBr: "Br", opBrIf: "BrIf", opCall: "Call",
	opLocalGet: "LocalGet", opLocalSet: "LocalSet", opLocalTee: "LocalTee",
	opGlobalGet: "GlobalGet", opGlobalSet: "GlobalSet",
	opI32Const: "ConstI32", opI64Const: "ConstI64", opF32Const: "ConstF32", opF64Const: "ConstF64",
	opI32Eqz: "I32Eqz", opI32Eq: "I32Eq", opI32Ne: "I32Ne", opI32LtS: "I32LtS", opI32LtU: "I32LtU",
	opI32GtS: "I32GtS", opI32GtU: "I32GtU", opI32LeS: "I32LeS", opI32LeU: "I32LeU", opI32GeS: "I32GeS", opI32GeU: "I32GeU",
	opI64Eqz: "I64Eqz", opI64Eq: "I64Eq", opI64Ne: "I64Ne", opI64LtS: "I64LtS", opI64LtU: "I64LtU",
	opI64GtS: "I64GtS", opI64GtU: "I64GtU", opI64LeS: "I64LeS", opI64LeU: "I64LeU", opI64GeS: "I64GeS", opI64GeU: "I64GeU",
	opF32Eq: "F32Eq", opF32Ne: "F32Ne", opF32Lt: "F32Lt", opF32Gt: "F32Gt", opF32Le: "F32Le", opF32Ge: "F32Ge",
	opF64Eq: "F64Eq", opF64Ne: "F64Ne", opF64Lt: "F64Lt", opF64Gt: "F64Gt", opF64Le: "F64Le", opF64Ge: "F64Ge",
	opI32Add: "I32Add", opI32Sub: "I32Sub", opI32Mul: "I32Mul", opI32DivS: "I32DivS", opI32DivU: "I32DivU",
	opI32RemS: "I32RemS", opI32RemU: "I32RemU", opI32And: "I32And", opI32Or: "I32Or", opI32Xor: "I32Xor",
	opI32Shl: "I32Shl", opI32ShrS: "I32ShrS", opI32ShrU: "I32ShrU",
	opI64Add: "I64Add", opI64Sub: "I64Sub", opI64Mul: "I64Mul", opI64DivS: "I64DivS", opI64DivU: "I64DivU",
	opI64RemS: "I64RemS", opI64RemU: "I64RemU", opI64And: "I64And", opI64Or: "I64Or", opI64Xor: "I64Xor",
	opI64Shl: "I64Shl", opI64ShrS: "I64ShrS", opI64ShrU: "I64ShrU",
	opF32Add: "F32Add", opF32Sub: "F32Sub", opF32Mul: "F32Mul", opF32Div: "F32Div",
	opF64Add: "F64Add", opF64Sub: "F64Sub", opF64Mul: "F64Mul", opF64Div: "F64Div",
	opI32WrapI64: "I32WrapI64", opI64ExtendI32S: "I64ExtendI32S", opI64ExtendI32U: "I64ExtendI32U",
	opI32TruncF32S: "I32TruncF32S", opI32TruncF32U: "I32TruncF32U", opI32TruncF64S: "I32TruncF64S", opI32TruncF64U: "I32TruncF64U",
	opI64TruncF32S: "I64TruncF32S", opI64TruncF32U: "I64TruncF32U", opI64TruncF64S: "I64TruncF64S", opI64TruncF64U: "I64TruncF64U",
	opF32ConvertI32S: "F32ConvertI32S", opF32ConvertI32U: "F32ConvertI32U", opF32ConvertI64S: "F32ConvertI64S", opF32ConvertI64U: "F32ConvertI64U",
	opF32DemoteF64: "F32DemoteF64",
	opF64ConvertI32S: "F64ConvertI32S", opF64ConvertI32U: "F64ConvertI32U", opF64ConvertI64S: "F64ConvertI64S", opF64ConvertI64U: "F64ConvertI64U",
	opF64PromoteF32: "F64PromoteF32",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}

	return fmt.Sprintf("Opcode(0x%02X)", byte(o))
}

// writeF32 emits f32.const's raw little-endian IEEE-754 immediate: unlike
// integer consts, float immediates are NOT LEB128-encoded (spec §4.9
// follows the target format's own encoding exactly).
func writeF32(w *leb128.Writer, v float32) error {
	if err := w.WriteByte(byte(opF32Const)); err != nil {
		return err
	}

	bits := math.Float32bits(v)

	return w.WriteBytes([]byte{
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
	})
}

func writeF64(w *leb128.Writer, v float64) error {
	if err := w.WriteByte(byte(opF64Const)); err != nil {
		return err
	}

	bits := math.Float64bits(v)

	return w.WriteBytes([]byte{
		byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24),
		byte(bits >> 32), byte(bits >> 40), byte(bits >> 48), byte(bits >> 56),
	})
}
