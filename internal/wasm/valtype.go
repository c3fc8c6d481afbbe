// Package wasm implements the C8 target assembler and C9 module
// serializer: translating a dead-code-eliminated mid-IR module into the
// target format's opcode stream and binary section encoding, matching
// the WebAssembly 1.0 MVP layout byte-for-byte.
package wasm

import (
	"fmt"

	"github.com/solventlang/tsc/internal/types"
)

// ValType is one of the target format's four value types, the narrowed
// set every primitive collapses to (spec §6: "the target-side
// representation narrows these to four"). ValType is declared in the
// same order as valtype.txt; a parity test asserts the two stay in sync.
type ValType int

const (
	I32 ValType = iota
	I64
	F32
	F64

	valTypeCount
)

var valTypeNames = [...]string{
	I32: "i32", I64: "i64", F32: "f32", F64: "f64",
}

func (v ValType) String() string {
	if int(v) >= 0 && int(v) < len(valTypeNames) {
		return valTypeNames[v]
	}

	return fmt.Sprintf("ValType(%d)", int(v))
}

// Bytecode returns the signed LEB128 value the target format encodes this
// ValType as, per spec §4.9: I32=-1, I64=-2, F32=-3, F64=-4.
func (v ValType) Bytecode() int64 {
	switch v {
	case I32:
		return -1
	case I64:
		return -2
	case F32:
		return -3
	case F64:
		return -4
	default:
		return 0
	}
}

// FromPrimitive translates a primitive type to its target ValType,
// narrowing I8..U32 to I32 and I64/U64 to I64 (spec §4.8 step 1). Bool,
// Void and Never have no ValType; ok is false for them. It sees only a
// Primitive, so a class Descriptor's zero Primitive (I8) maps to I32.
func FromPrimitive(p types.Primitive) (ValType, bool) {
	switch p {
	case types.I8, types.U8, types.I16, types.U16, types.I32, types.U32:
		return I32, true
	case types.I64, types.U64:
		return I64, true
	case types.F32:
		return F32, true
	case types.F64:
		return F64, true
	default:
		return 0, false
	}
}

// RefType is a table's element type; funcref/externref are accepted only
// as stubs per spec's Non-goals (no reference-typed table beyond these).
type RefType byte

const (
	FuncRef   RefType = 0x70
	ExternRef RefType = 0x6F
)
