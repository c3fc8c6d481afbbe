package wasm

// ImportKind discriminates the four things a module may import, per the
// target format's import section (spec §3: eleven index spaces, of
// which Func/Table/Memory/Global are importable).
type ImportKind int

const (
	ImportFunc ImportKind = iota
	ImportTable
	ImportMemory
	ImportGlobal
)

// Import is one entry of the Import section.
type Import struct {
	Module string
	Name   string
	Kind   ImportKind
	Type   TypeIndex  // valid iff Kind == ImportFunc
	Table  Table      // valid iff Kind == ImportTable
	Mem    Memory     // valid iff Kind == ImportMemory
	Global GlobalType // valid iff Kind == ImportGlobal
}

// ExportKind discriminates what an Export entry names.
type ExportKind int

const (
	ExportFunc ExportKind = iota
	ExportTable
	ExportMemory
	ExportGlobal
)

// Export is one entry of the Export section.
type Export struct {
	Name string
	Kind ExportKind
	Idx  uint32 // the FuncIndex/TableIndex/MemoryIndex/GlobalIndex, untyped since the kind already disambiguates it
}

// Table is a table's element type and size limits. Only funcref/externref
// stubs are supported (spec Non-goal: full reference-typed tables).
type Table struct {
	RefType RefType
	Min     uint32
	Max     *uint32
}

// Memory is a linear memory's size limits, in 64KiB pages.
type Memory struct {
	Min uint32
	Max *uint32
}

// GlobalType is a global's value type and mutability.
type GlobalType struct {
	Val ValType
	Mut bool
}

// Global is one entry of the Global section: its type and constant
// initializer expression.
type Global struct {
	Type GlobalType
	Init ConstExpr
}

// Element is one active element segment: a constant offset into table 0
// and the sequence of FuncIndex values it populates.
type Element struct {
	Offset ConstExpr
	Funcs  []FuncIndex
}

// Data is one active data segment: a constant offset into memory 0 and
// the raw bytes to place there.
type Data struct {
	Offset ConstExpr
	Bytes  []byte
}

// CodeEntry is one function body's locals prologue plus its already
// lowered, index-rewritten instruction bytes (spec §4.8 steps 2-4); it is
// wrapped into a length-prefixed blob at serialization time (step 5).
type CodeEntry struct {
	Locals []ValType // full prefix (params excluded): run-length compressed at encode time
	Body   []byte    // instruction stream, already ending in End (0x0B)
}
