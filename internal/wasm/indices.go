package wasm

// The target module model has eleven index spaces (spec §3); each is a
// distinct newtype around uint32 so cross-space confusion is a type
// error at the API rather than a runtime check (design note §9).
type (
	TypeIndex   uint32
	FuncIndex   uint32
	TableIndex  uint32
	MemoryIndex uint32
	GlobalIndex uint32
	ElemIndex   uint32
	DataIndex   uint32
	LocalIndex  uint32
)

// FuncType is a type-use: the (params, results) pair identifying a
// function signature in the Type section (spec glossary: "Type-use").
type FuncType struct {
	Params  []ValType
	Results []ValType
}

// Equal reports whether two signatures are structurally identical: their
// parameter and result lists are pairwise equal (spec §3 invariant).
func (a FuncType) Equal(b FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}

	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}

	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}

	return true
}

// Types is the module's Type section: a deduplicating append-only vector
// of FuncTypes, indexed by TypeIndex.
type Types struct {
	entries []FuncType
}

// Define inserts tu if no structurally equal entry already exists,
// returning the new or pre-existing TypeIndex (spec §4.8: "Signature
// deduplication"; §8 testable property 5: calling Define twice with an
// equal tu returns the same TypeIndex).
func (t *Types) Define(tu FuncType) TypeIndex {
	for i, existing := range t.entries {
		if existing.Equal(tu) {
			return TypeIndex(i)
		}
	}

	t.entries = append(t.entries, tu)

	return TypeIndex(len(t.entries) - 1)
}

func (t *Types) Len() int { return len(t.entries) }

func (t *Types) At(idx TypeIndex) FuncType { return t.entries[idx] }
