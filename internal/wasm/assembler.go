package wasm

import (
	"math"

	"github.com/solventlang/tsc/internal/diagnostic"
	"github.com/solventlang/tsc/internal/leb128"
	"github.com/solventlang/tsc/internal/mir"
	"github.com/solventlang/tsc/internal/position"
	"github.com/solventlang/tsc/internal/types"
)

// Assemble implements the C8 target assembler: it walks a dead-code
// eliminated mid-IR module and produces the target Module, ready for
// Encode. mirMod.Functions is already in its final FuncIndex order
// (imports first, then defined functions, per EliminateDeadFunctions) —
// the assembler consumes that order rather than re-deriving it.
func Assemble(mirMod *mir.Module) (*Module, *diagnostic.Bag) {
	a := &assembler{byTemp: make(map[types.FuncTempIndex]FuncIndex, len(mirMod.Functions))}

	for i, fn := range mirMod.Functions {
		a.byTemp[fn.TempIndex] = FuncIndex(i)
	}

	for i, fn := range mirMod.Functions {
		if fn.Import != nil {
			a.assembleImport(fn, FuncIndex(i))
		}
	}

	for i, fn := range mirMod.Functions {
		if fn.Import != nil {
			continue
		}

		a.assembleFunction(fn, FuncIndex(i))
	}

	if a.diags.HasErrors() {
		return nil, &a.diags
	}

	if mirMod.Strings != nil && mirMod.Strings.Len() > 0 {
		a.assembleStrings(mirMod.Strings)
	}

	return &a.mod, nil
}

// stringBaseAddr is the linear-memory offset the one static data segment
// holding every interned string starts at; address 0 is left alone so a
// null i32 can keep meaning "no string" for code that never checks bounds.
const stringBaseAddr = 8

type assembler struct {
	mod    Module
	diags  diagnostic.Bag
	byTemp map[types.FuncTempIndex]FuncIndex
}

func (a *assembler) assembleImport(fn *mir.Function, idx FuncIndex) {
	params, results, ok := a.signatureOf(fn)
	if !ok {
		return
	}

	ti := a.mod.Types.Define(FuncType{Params: params, Results: results})

	a.mod.Imports = append(a.mod.Imports, Import{
		Module: fn.Import.Module,
		Name:   fn.Import.Name,
		Kind:   ImportFunc,
		Type:   ti,
	})

	a.registerExport(fn, idx)
}

func (a *assembler) assembleFunction(fn *mir.Function, idx FuncIndex) {
	params, results, ok := a.signatureOf(fn)
	if !ok {
		return
	}

	ti := a.mod.Types.Define(FuncType{Params: params, Results: results})
	a.mod.Functions = append(a.mod.Functions, ti)

	locals := make([]ValType, 0, len(fn.LocalTypes)-len(fn.ParamTypes))
	for _, d := range fn.LocalTypes[len(fn.ParamTypes):] {
		vt, ok := FromPrimitive(d.Primitive)
		if !ok {
			a.diags.Add(diagnostic.Internal(position.Position{}, "function %q declares a local of non-target type %s", fn.Name, d))
			return
		}

		locals = append(locals, vt)
	}

	body := a.translateBody(fn)

	a.mod.Codes = append(a.mod.Codes, CodeEntry{Locals: locals, Body: body})
	a.registerExport(fn, idx)
}

func (a *assembler) registerExport(fn *mir.Function, idx FuncIndex) {
	if !fn.Exported {
		return
	}

	a.mod.Exports = append(a.mod.Exports, Export{Name: fn.Name, Kind: ExportFunc, Idx: uint32(idx)})
}

// signatureOf translates a function's parameter and result descriptors to
// target value types (step 1 of the assembler): I8..U32 narrow to I32,
// I64/U64 to I64, F32/F64 unchanged; Void yields no result at all rather
// than being rejected outright, since a void-returning function is the
// common case, not an error. A parameter or result whose Primitive has no
// ValType (Void, Never, Bool) is reported as an internal error. Class-typed
// parameters and results, string included, carry the zero Primitive and
// are assembled as i32.
func (a *assembler) signatureOf(fn *mir.Function) (params, results []ValType, ok bool) {
	for _, d := range fn.ParamTypes {
		vt, vok := FromPrimitive(d.Primitive)
		if !vok {
			a.diags.Add(diagnostic.Internal(position.Position{}, "function %q has a non-target parameter type %s", fn.Name, d))
			return nil, nil, false
		}

		params = append(params, vt)
	}

	if fn.ResultType.IsValue() {
		vt, vok := FromPrimitive(fn.ResultType.Primitive)
		if !vok {
			a.diags.Add(diagnostic.Internal(position.Position{}, "function %q has a non-target result type %s", fn.Name, fn.ResultType))
			return nil, nil, false
		}

		results = append(results, vt)
	}

	return params, results, true
}

// translateBody walks fn.Code (step 3), rewriting Call operands through
// the FuncTempIndex -> FuncIndex map and appending the closing End (step
// 4). A bare trailing Return — the one the generator unconditionally
// appends after every function body — is elided: falling off the end of
// a target function body already performs that return, so re-stating it
// would be redundant, and a minimal empty body must serialize to exactly
// zero-locals-and-End.
func (a *assembler) translateBody(fn *mir.Function) []byte {
	code := fn.Code
	if n := len(code); n > 0 && mir.Op(code[n-1]) == mir.Return {
		code = code[:n-1]
	}

	w := leb128.NewWriter()

	for i := 0; i < len(code); i++ {
		op := mir.Op(code[i])
		arity := op.Arity()
		operands := code[i+1 : i+1+arity]
		a.translateOp(w, op, operands)
		i += arity
	}

	_ = w.WriteByte(opEnd)

	return w.Bytes()
}

func (a *assembler) translateOp(w *leb128.Writer, op mir.Op, operands []uint32) {
	switch op {
	case mir.Call:
		target := types.FuncTempIndex(operands[0])
		idx, ok := a.lookupFuncIndex(target)
		if !ok {
			a.diags.Add(diagnostic.Internal(position.Position{}, "call to unresolved function temp index %d reached assembly", target))
			return
		}

		_ = w.WriteByte(byte(opCall))
		_ = w.WriteUint(uint64(idx))
		return
	case mir.Block, mir.Loop:
		opcode := byte(opBlock)
		if op == mir.Loop {
			opcode = byte(opLoop)
		}

		_ = w.WriteByte(opcode)
		_ = w.WriteInt(blockTypeBytecode(mir.BlockType(operands[0])))
		return
	case mir.If:
		_ = w.WriteByte(byte(opIf))
		_ = w.WriteInt(blockTypeBytecode(mir.BlockType(operands[0])))
		return
	case mir.Br, mir.BrIf, mir.LocalGet, mir.LocalSet, mir.LocalTee, mir.GlobalGet, mir.GlobalSet:
		_ = w.WriteByte(byte(fromMirOp[op]))
		_ = w.WriteUint(uint64(operands[0]))
		return
	case mir.ConstI32:
		_ = w.WriteByte(byte(opI32Const))
		_ = w.WriteInt(int64(int32(operands[0])))
		return
	case mir.ConstI64:
		v := int64(uint64(operands[0]) | uint64(operands[1])<<32)
		_ = w.WriteByte(byte(opI64Const))
		_ = w.WriteInt(v)
		return
	case mir.ConstF32:
		_ = writeF32(w, math.Float32frombits(operands[0]))
		return
	case mir.ConstF64:
		bits := uint64(operands[0]) | uint64(operands[1])<<32
		_ = writeF64(w, math.Float64frombits(bits))
		return
	}

	target, ok := fromMirOp[op]
	if !ok {
		a.diags.Add(diagnostic.Internal(position.Position{}, "no target opcode registered for mid-IR op %s", op))
		return
	}

	_ = w.WriteByte(byte(target))
}

func (a *assembler) lookupFuncIndex(temp types.FuncTempIndex) (FuncIndex, bool) {
	idx, ok := a.byTemp[temp]
	return idx, ok
}

func blockTypeBytecode(bt mir.BlockType) int64 {
	switch bt {
	case mir.BlockI32:
		return I32.Bytecode()
	case mir.BlockI64:
		return I64.Bytecode()
	case mir.BlockF32:
		return F32.Bytecode()
	case mir.BlockF64:
		return F64.Bytecode()
	default:
		return -64 // emptytype, the target format's void block-type byte (0x40 as a signed LEB)
	}
}

// assembleStrings places every interned string into one active data
// segment at stringBaseAddr, back to back in StringIndex order
// (length-prefixed as a little-endian u32 so a runtime can recover each
// string's extent), and grows the module's default memory to fit it.
// Rewriting a literal's ConstI32(StringIndex) operand into this segment's
// address space is part of the heap-object layout the class code
// generator leaves as a stub; interning and emission land here, the
// pointer arithmetic does not.
func (a *assembler) assembleStrings(st *types.StringTable) {
	var buf []byte

	for i := 0; i < st.Len(); i++ {
		s := st.Lookup(types.StringIndex(i))
		buf = append(buf, byte(len(s)), byte(len(s)>>8), byte(len(s)>>16), byte(len(s)>>24))
		buf = append(buf, s...)
	}

	pages := uint32(len(buf)+stringBaseAddr)/65536 + 1
	a.mod.Memories = append(a.mod.Memories, Memory{Min: pages})

	a.mod.Datas = append(a.mod.Datas, Data{
		Offset: I32Const(int32(stringBaseAddr)),
		Bytes:  buf,
	})
}
