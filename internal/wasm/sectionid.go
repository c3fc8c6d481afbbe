package wasm

// SectionID is the one-byte tag prefixing each non-empty section in the
// module's binary encoding. The numeric values are the target format's
// own section ids; Custom sections are part of the closed set but are
// never emitted (spec §4.9: "Custom sections are not emitted").
//
// Stream order does not simply follow increasing id: DataCount (id 12)
// is written between Element and Code, per spec §3's explicit order
// "Type, Import, Function, Table, Memory, Global, Export, Start,
// Element, DataCount, Code, Data" — Module.Encode emits that fixed
// sequence rather than sorting by SectionID.
type SectionID byte

const (
	SectionCustom    SectionID = 0
	SectionType      SectionID = 1
	SectionImport    SectionID = 2
	SectionFunction  SectionID = 3
	SectionTable     SectionID = 4
	SectionMemory    SectionID = 5
	SectionGlobal    SectionID = 6
	SectionExport    SectionID = 7
	SectionStart     SectionID = 8
	SectionElement   SectionID = 9
	SectionCode      SectionID = 10
	SectionData      SectionID = 11
	SectionDataCount SectionID = 12
)
