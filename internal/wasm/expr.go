package wasm

import "github.com/solventlang/tsc/internal/leb128"

// ConstExpr is a constant expression: a sequence of const instructions
// terminated by End, the encoding the target format uses for a global's
// initializer and a data/element segment's offset (spec §4.9).
type ConstExpr struct {
	instrs []constInstr
}

type constKind int

const (
	constI32 constKind = iota
	constI64
	constF32
	constF64
)

type constInstr struct {
	kind constKind
	i32  int32
	i64  int64
	f32  float32
	f64  float64
}

func I32Const(v int32) ConstExpr {
	return ConstExpr{instrs: []constInstr{{kind: constI32, i32: v}}}
}

func I64Const(v int64) ConstExpr {
	return ConstExpr{instrs: []constInstr{{kind: constI64, i64: v}}}
}

func F32Const(v float32) ConstExpr {
	return ConstExpr{instrs: []constInstr{{kind: constF32, f32: v}}}
}

func F64Const(v float64) ConstExpr {
	return ConstExpr{instrs: []constInstr{{kind: constF64, f64: v}}}
}

// writeTo emits the instruction sequence followed by the End opcode.
func (c ConstExpr) writeTo(w *leb128.Writer) error {
	for _, instr := range c.instrs {
		switch instr.kind {
		case constI32:
			if err := w.WriteByte(byte(opI32Const)); err != nil {
				return err
			}

			if err := w.WriteInt(int64(instr.i32)); err != nil {
				return err
			}
		case constI64:
			if err := w.WriteByte(byte(opI64Const)); err != nil {
				return err
			}

			if err := w.WriteInt(instr.i64); err != nil {
				return err
			}
		case constF32:
			if err := writeF32(w, instr.f32); err != nil {
				return err
			}
		case constF64:
			if err := writeF64(w, instr.f64); err != nil {
				return err
			}
		}
	}

	return w.WriteByte(byte(opEnd))
}
