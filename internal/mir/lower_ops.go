package mir

import (
	"strconv"
	"strings"

	"github.com/solventlang/tsc/internal/types"
)

// parseIntLiteral strips the optional type suffix the lexer/resolver
// already accounted for and parses the remaining digits. Hex/octal/binary
// prefixes (0x/0o/0b) are handled by strconv.ParseInt's base-0 mode.
func parseIntLiteral(raw string) int64 {
	digits := stripNumericSuffix(raw)
	digits = strings.ReplaceAll(digits, "_", "")

	v, err := strconv.ParseInt(digits, 0, 64)
	if err == nil {
		return v
	}

	u, uerr := strconv.ParseUint(digits, 0, 64)
	if uerr == nil {
		return int64(u)
	}

	return 0
}

func parseFloatLiteral(raw string) float64 {
	digits := stripNumericSuffix(raw)
	digits = strings.ReplaceAll(digits, "_", "")

	v, _ := strconv.ParseFloat(digits, 64)
	return v
}

// stripNumericSuffix trims a trailing type-suffix (i8, u32, f64, ...) off
// a numeric lexeme, mirroring the resolver's own numericSuffix logic.
func stripNumericSuffix(raw string) string {
	// A suffix is a run of letters followed by optional digits (i32, u8).
	i := len(raw)
	for i > 0 && raw[i-1] >= '0' && raw[i-1] <= '9' {
		i--
	}

	for i > 0 && isSuffixRune(raw[i-1]) {
		i--
	}

	if i == len(raw) || i == 0 {
		return raw
	}

	// Don't split a bare hex/octal/binary digit run (e.g. the "f" in a hex
	// literal like 0xff) away from its prefix.
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		return raw
	}

	if _, ok := types.LookupPrimitive(raw[i:]); ok {
		return raw[:i]
	}

	return raw
}

func isSuffixRune(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// binOpFor selects the type-qualified arithmetic/comparison opcode for a
// binary operator given one operand's resolved type.
func binOpFor(op string, t types.Descriptor) Op {
	switch {
	case t.Primitive.IsFloat() && t.Primitive.BitWidth() == 32:
		return floatOp32(op)
	case t.Primitive.IsFloat():
		return floatOp64(op)
	case t.Primitive.BitWidth() > 32:
		return intOp(op, true, t.Primitive.IsSigned())
	default:
		return intOp(op, false, t.Primitive.IsSigned())
	}
}

func floatOp32(op string) Op {
	switch op {
	case "+":
		return F32Add
	case "-":
		return F32Sub
	case "*":
		return F32Mul
	case "/":
		return F32Div
	case "==":
		return F32Eq
	case "!=":
		return F32Ne
	case "<":
		return F32Lt
	case ">":
		return F32Gt
	case "<=":
		return F32Le
	case ">=":
		return F32Ge
	default:
		return Unreachable
	}
}

func floatOp64(op string) Op {
	switch op {
	case "+":
		return F64Add
	case "-":
		return F64Sub
	case "*":
		return F64Mul
	case "/":
		return F64Div
	case "==":
		return F64Eq
	case "!=":
		return F64Ne
	case "<":
		return F64Lt
	case ">":
		return F64Gt
	case "<=":
		return F64Le
	case ">=":
		return F64Ge
	default:
		return Unreachable
	}
}

func intOp(op string, wide, signed bool) Op {
	if wide {
		switch op {
		case "+":
			return I64Add
		case "-":
			return I64Sub
		case "*":
			return I64Mul
		case "/":
			if signed {
				return I64DivS
			}
			return I64DivU
		case "%":
			if signed {
				return I64RemS
			}
			return I64RemU
		case "&":
			return I64And
		case "|":
			return I64Or
		case "^":
			return I64Xor
		case "<<":
			return I64Shl
		case ">>":
			if signed {
				return I64ShrS
			}
			return I64ShrU
		case "==":
			return I64Eq
		case "!=":
			return I64Ne
		case "<":
			if signed {
				return I64LtS
			}
			return I64LtU
		case ">":
			if signed {
				return I64GtS
			}
			return I64GtU
		case "<=":
			if signed {
				return I64LeS
			}
			return I64LeU
		case ">=":
			if signed {
				return I64GeS
			}
			return I64GeU
		default:
			return Unreachable
		}
	}

	switch op {
	case "+":
		return I32Add
	case "-":
		return I32Sub
	case "*":
		return I32Mul
	case "/":
		if signed {
			return I32DivS
		}
		return I32DivU
	case "%":
		if signed {
			return I32RemS
		}
		return I32RemU
	case "&":
		return I32And
	case "|":
		return I32Or
	case "^":
		return I32Xor
	case "<<":
		return I32Shl
	case ">>":
		if signed {
			return I32ShrS
		}
		return I32ShrU
	case "==":
		return I32Eq
	case "!=":
		return I32Ne
	case "<":
		if signed {
			return I32LtS
		}
		return I32LtU
	case ">":
		if signed {
			return I32GtS
		}
		return I32GtU
	case "<=":
		if signed {
			return I32LeS
		}
		return I32LeU
	case ">=":
		if signed {
			return I32GeS
		}
		return I32GeU
	default:
		return Unreachable
	}
}

// subOpFor selects the opcode unary negation lowers to: 0 - operand.
func subOpFor(t types.Descriptor) Op {
	switch {
	case t.Primitive.IsFloat() && t.Primitive.BitWidth() == 32:
		return F32Sub
	case t.Primitive.IsFloat():
		return F64Sub
	case t.Primitive.BitWidth() > 32:
		return I64Sub
	default:
		return I32Sub
	}
}

// convertOpFor selects the numeric conversion opcode for a cast between
// two primitive types, or reports ok=false when no conversion instruction
// is needed (same machine representation, narrowing integer casts within
// the 32-bit word, or a class-type cast which codegen does not reach).
func convertOpFor(from, to types.Descriptor) (Op, bool) {
	if from.IsClass || to.IsClass {
		return Unreachable, false
	}

	fromWide := from.Primitive.BitWidth() > 32 && !from.Primitive.IsFloat()
	toWide := to.Primitive.BitWidth() > 32 && !to.Primitive.IsFloat()

	switch {
	case to.Primitive.IsFloat() && to.Primitive.BitWidth() == 32:
		return convertToF32(from)
	case to.Primitive.IsFloat():
		return convertToF64(from)
	case toWide && !fromWide && !from.Primitive.IsFloat():
		if from.Primitive.IsSigned() {
			return I64ExtendI32S, true
		}
		return I64ExtendI32U, true
	case toWide && from.Primitive.IsFloat() && from.Primitive.BitWidth() == 32:
		if to.Primitive.IsSigned() {
			return I64TruncF32S, true
		}
		return I64TruncF32U, true
	case toWide && from.Primitive.IsFloat():
		if to.Primitive.IsSigned() {
			return I64TruncF64S, true
		}
		return I64TruncF64U, true
	case !toWide && fromWide:
		return I32WrapI64, true
	case !toWide && from.Primitive.IsFloat() && from.Primitive.BitWidth() == 32:
		if to.Primitive.IsSigned() {
			return I32TruncF32S, true
		}
		return I32TruncF32U, true
	case !toWide && from.Primitive.IsFloat():
		if to.Primitive.IsSigned() {
			return I32TruncF64S, true
		}
		return I32TruncF64U, true
	default:
		return Unreachable, false
	}
}

func convertToF32(from types.Descriptor) (Op, bool) {
	switch {
	case from.Primitive.IsFloat() && from.Primitive.BitWidth() == 64:
		return F32DemoteF64, true
	case from.Primitive.IsFloat():
		return Unreachable, false
	case from.Primitive.BitWidth() > 32:
		if from.Primitive.IsSigned() {
			return F32ConvertI64S, true
		}
		return F32ConvertI64U, true
	default:
		if from.Primitive.IsSigned() {
			return F32ConvertI32S, true
		}
		return F32ConvertI32U, true
	}
}

func convertToF64(from types.Descriptor) (Op, bool) {
	switch {
	case from.Primitive.IsFloat() && from.Primitive.BitWidth() == 32:
		return F64PromoteF32, true
	case from.Primitive.IsFloat():
		return Unreachable, false
	case from.Primitive.BitWidth() > 32:
		if from.Primitive.IsSigned() {
			return F64ConvertI64S, true
		}
		return F64ConvertI64U, true
	default:
		if from.Primitive.IsSigned() {
			return F64ConvertI32S, true
		}
		return F64ConvertI32U, true
	}
}
