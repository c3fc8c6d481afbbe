package wasm

import "github.com/solventlang/tsc/internal/leb128"

// Module is the full target module model (spec §3): every index space
// plus the bytes layer below it, ready for Encode to serialize.
type Module struct {
	Types     Types
	Imports   []Import
	Functions []TypeIndex // one TypeIndex per defined (non-imported) function, Function section order
	Tables    []Table
	Memories  []Memory
	Globals   []Global
	Exports   []Export
	Start     *FuncIndex
	Elements  []Element
	Datas     []Data
	Codes     []CodeEntry
}

var magic = [4]byte{0x00, 0x61, 0x73, 0x6D}
var version = [4]byte{0x01, 0x00, 0x00, 0x00}

// Encode serializes m to the target binary format (C9): the fixed
// header followed by every non-empty section in the required order
// (spec §3/§4.9). Empty sections are omitted; Custom sections are never
// emitted.
func (m *Module) Encode() []byte {
	out := leb128.NewWriter()
	_ = out.WriteBytes(magic[:])
	_ = out.WriteBytes(version[:])

	m.encodeTypeSection(out)
	m.encodeImportSection(out)
	m.encodeFunctionSection(out)
	m.encodeTableSection(out)
	m.encodeMemorySection(out)
	m.encodeGlobalSection(out)
	m.encodeExportSection(out)
	m.encodeStartSection(out)
	m.encodeElementSection(out)
	m.encodeDataCountSection(out)
	m.encodeCodeSection(out)
	m.encodeDataSection(out)

	return out.IntoVec()
}

// appendSection writes body as a SectionID byte, its LEB128 length, then
// its bytes, unless body is empty (spec §4.9: "Empty sections are
// omitted").
func appendSection(out *leb128.Writer, id SectionID, body *leb128.Writer) {
	if body.Len() == 0 {
		return
	}

	_ = out.WriteByte(byte(id))
	_ = out.WriteUint(uint64(body.Len()))
	_ = out.WriteBytes(body.Bytes())
}

func (m *Module) encodeTypeSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if n := m.Types.Len(); n > 0 {
		_ = body.WriteUint(uint64(n))

		for i := 0; i < n; i++ {
			tu := m.Types.At(TypeIndex(i))
			_ = body.WriteByte(0x60) // functype prefix

			_ = body.WriteUint(uint64(len(tu.Params)))
			for _, p := range tu.Params {
				_ = body.WriteInt(p.Bytecode())
			}

			_ = body.WriteUint(uint64(len(tu.Results)))
			for _, r := range tu.Results {
				_ = body.WriteInt(r.Bytecode())
			}
		}
	}

	appendSection(out, SectionType, body)
}

func (m *Module) encodeImportSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Imports) > 0 {
		_ = body.WriteUint(uint64(len(m.Imports)))

		for _, imp := range m.Imports {
			_ = body.WriteString(imp.Module)
			_ = body.WriteString(imp.Name)

			switch imp.Kind {
			case ImportFunc:
				_ = body.WriteByte(0x00)
				_ = body.WriteUint(uint64(imp.Type))
			case ImportTable:
				_ = body.WriteByte(0x01)
				writeTableType(body, imp.Table)
			case ImportMemory:
				_ = body.WriteByte(0x02)
				writeLimits(body, imp.Mem.Min, imp.Mem.Max)
			case ImportGlobal:
				_ = body.WriteByte(0x03)
				writeGlobalType(body, imp.Global)
			}
		}
	}

	appendSection(out, SectionImport, body)
}

func (m *Module) encodeFunctionSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Functions) > 0 {
		_ = body.WriteUint(uint64(len(m.Functions)))
		for _, ti := range m.Functions {
			_ = body.WriteUint(uint64(ti))
		}
	}

	appendSection(out, SectionFunction, body)
}

func (m *Module) encodeTableSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Tables) > 0 {
		_ = body.WriteUint(uint64(len(m.Tables)))
		for _, t := range m.Tables {
			writeTableType(body, t)
		}
	}

	appendSection(out, SectionTable, body)
}

func (m *Module) encodeMemorySection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Memories) > 0 {
		_ = body.WriteUint(uint64(len(m.Memories)))
		for _, mem := range m.Memories {
			writeLimits(body, mem.Min, mem.Max)
		}
	}

	appendSection(out, SectionMemory, body)
}

func (m *Module) encodeGlobalSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Globals) > 0 {
		_ = body.WriteUint(uint64(len(m.Globals)))
		for _, g := range m.Globals {
			writeGlobalType(body, g.Type)
			_ = g.Init.writeTo(body)
		}
	}

	appendSection(out, SectionGlobal, body)
}

func (m *Module) encodeExportSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Exports) > 0 {
		_ = body.WriteUint(uint64(len(m.Exports)))
		for _, e := range m.Exports {
			_ = body.WriteString(e.Name)

			switch e.Kind {
			case ExportFunc:
				_ = body.WriteByte(0x00)
			case ExportTable:
				_ = body.WriteByte(0x01)
			case ExportMemory:
				_ = body.WriteByte(0x02)
			case ExportGlobal:
				_ = body.WriteByte(0x03)
			}

			_ = body.WriteUint(uint64(e.Idx))
		}
	}

	appendSection(out, SectionExport, body)
}

func (m *Module) encodeStartSection(out *leb128.Writer) {
	if m.Start == nil {
		return
	}

	body := leb128.NewWriter()
	_ = body.WriteUint(uint64(*m.Start))
	appendSection(out, SectionStart, body)
}

func (m *Module) encodeElementSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Elements) > 0 {
		_ = body.WriteUint(uint64(len(m.Elements)))
		for _, e := range m.Elements {
			_ = body.WriteByte(0x00) // active segment, table index 0
			_ = e.Offset.writeTo(body)
			_ = body.WriteUint(uint64(len(e.Funcs)))
			for _, fi := range e.Funcs {
				_ = body.WriteUint(uint64(fi))
			}
		}
	}

	appendSection(out, SectionElement, body)
}

func (m *Module) encodeDataCountSection(out *leb128.Writer) {
	// Bulk-memory's DataCount section is only meaningful alongside
	// memory.init/data.drop, neither of which this language lowers to;
	// omitted unconditionally, same as an empty section would be.
	_ = out
}

func (m *Module) encodeCodeSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Codes) > 0 {
		_ = body.WriteUint(uint64(len(m.Codes)))

		for _, c := range m.Codes {
			entry := leb128.NewWriter()
			writeLocalsPrologue(entry, c.Locals)
			_ = entry.WriteBytes(c.Body)
			_ = body.WriteBlob(entry.Bytes())
		}
	}

	appendSection(out, SectionCode, body)
}

func (m *Module) encodeDataSection(out *leb128.Writer) {
	body := leb128.NewWriter()

	if len(m.Datas) > 0 {
		_ = body.WriteUint(uint64(len(m.Datas)))
		for _, d := range m.Datas {
			_ = body.WriteByte(0x00) // active segment, memory index 0
			_ = d.Offset.writeTo(body)
			_ = body.WriteBlob(d.Bytes)
		}
	}

	appendSection(out, SectionData, body)
}

func writeTableType(w *leb128.Writer, t Table) {
	_ = w.WriteByte(byte(t.RefType))
	writeLimits(w, t.Min, t.Max)
}

func writeLimits(w *leb128.Writer, min uint32, max *uint32) {
	if max != nil {
		_ = w.WriteByte(0x01)
		_ = w.WriteUint(uint64(min))
		_ = w.WriteUint(uint64(*max))
	} else {
		_ = w.WriteByte(0x00)
		_ = w.WriteUint(uint64(min))
	}
}

func writeGlobalType(w *leb128.Writer, g GlobalType) {
	_ = w.WriteInt(g.Val.Bytecode())
	_ = w.WriteBool(g.Mut)
}

// writeLocalsPrologue run-length compresses consecutive same-type locals
// into (count, valtype) pairs (spec §4.8 step 2, §8 boundary case: 256
// locals of alternating types produce 256 (1, T) runs).
func writeLocalsPrologue(w *leb128.Writer, locals []ValType) {
	type run struct {
		count uint64
		typ   ValType
	}

	var runs []run

	for _, vt := range locals {
		if len(runs) > 0 && runs[len(runs)-1].typ == vt {
			runs[len(runs)-1].count++
			continue
		}

		runs = append(runs, run{count: 1, typ: vt})
	}

	_ = w.WriteUint(uint64(len(runs)))

	for _, r := range runs {
		_ = w.WriteUint(r.count)
		_ = w.WriteInt(r.typ.Bytecode())
	}
}
