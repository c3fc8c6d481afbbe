// Package types holds the typed descriptors the resolver produces from
// the AST: primitive and aggregate TypeDescriptors, the three-state
// InferredType lattice, variable/function/class descriptors, and the
// interned StringTable shared by every later phase.
package types

import (
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Primitive enumerates the primitive type names a type annotation can
// spell, per spec §6. Void and Never are special: rejected wherever a
// value is required.
type Primitive int

const (
	I8 Primitive = iota
	U8
	I16
	U16
	I32
	U32
	I64
	U64
	F32
	F64
	Bool
	Void
	Never
)

var primitiveNames = [...]string{
	I8: "i8", U8: "u8", I16: "i16", U16: "u16",
	I32: "i32", U32: "u32", I64: "i64", U64: "u64",
	F32: "f32", F64: "f64", Bool: "bool", Void: "void", Never: "never",
}

func (p Primitive) String() string {
	if int(p) >= 0 && int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}

	return fmt.Sprintf("Primitive(%d)", int(p))
}

// IsInteger reports whether p is one of the integer primitives.
func (p Primitive) IsInteger() bool {
	switch p {
	case I8, U8, I16, U16, I32, U32, I64, U64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether p is f32 or f64.
func (p Primitive) IsFloat() bool { return p == F32 || p == F64 }

// IsSigned reports whether p is a signed integer primitive.
func (p Primitive) IsSigned() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// BitWidth returns the width in bits of an integer or float primitive.
func (p Primitive) BitWidth() int {
	switch p {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	default:
		return 0
	}
}

var primitiveByName map[string]Primitive

func init() {
	primitiveByName = make(map[string]Primitive, len(primitiveNames))
	for p, name := range primitiveNames {
		primitiveByName[name] = Primitive(p)
	}
}

// LookupPrimitive resolves a type-annotation spelling to a Primitive.
func LookupPrimitive(name string) (Primitive, bool) {
	p, ok := primitiveByName[name]
	return p, ok
}

// ClassID identifies an aggregate type within a single compilation job.
type ClassID uint32

// Descriptor is a named nominal type: either primitive or an aggregate
// class, never both.
type Descriptor struct {
	Name      string
	IsClass   bool
	Primitive Primitive
	Class     ClassID
}

func Prim(p Primitive) Descriptor {
	return Descriptor{Name: p.String(), Primitive: p}
}

func ClassType(id ClassID, name string) Descriptor {
	return Descriptor{Name: name, IsClass: true, Class: id}
}

// StringClassID is reserved for the built-in string type so that it never
// collides with a user-declared class's ClassID; the resolver starts
// allocating user classes at 1.
const StringClassID ClassID = 0

// StringType is the built-in string type produced by string literals.
func StringType() Descriptor { return ClassType(StringClassID, "string") }

func (d Descriptor) Equal(other Descriptor) bool {
	if d.IsClass != other.IsClass {
		return false
	}

	if d.IsClass {
		return d.Class == other.Class
	}

	return d.Primitive == other.Primitive
}

func (d Descriptor) String() string { return d.Name }

// IsValue reports whether a Descriptor may be used where a value is
// required, i.e. it is neither Void nor Never.
func (d Descriptor) IsValue() bool {
	return d.IsClass || (d.Primitive != Void && d.Primitive != Never)
}

// InferredState is the three-state lattice of InferredType.
type InferredState int

const (
	StateUnknown InferredState = iota
	StateMaybe                 // an optimistic guess that may still widen
	StateInferred               // committed
)

// InferredType tracks how committed the resolver is to a value's type.
type InferredType struct {
	State InferredState
	Type  Descriptor
}

func Unknown() InferredType { return InferredType{State: StateUnknown} }

func Maybe(t Descriptor) InferredType { return InferredType{State: StateMaybe, Type: t} }

func Inferred(t Descriptor) InferredType { return InferredType{State: StateInferred, Type: t} }

func (it InferredType) String() string {
	switch it.State {
	case StateUnknown:
		return "Unknown"
	case StateMaybe:
		return fmt.Sprintf("Maybe(%s)", it.Type)
	case StateInferred:
		return fmt.Sprintf("Inferred(%s)", it.Type)
	default:
		return "InferredType(?)"
	}
}

// Commit widens a Maybe or Unknown InferredType to Inferred(t); it is a
// no-op (returning it unchanged) if it is already Inferred.
func (it InferredType) Commit(t Descriptor) InferredType {
	if it.State == StateInferred {
		return it
	}

	return Inferred(t)
}

// VariableDescriptor describes one declared variable or parameter.
type VariableDescriptor struct {
	Name      string
	Type      InferredType
	LocalIdx  int // set by the resolver's body check, reassigned by the mid-IR generator; -1 until then
	Mutable   bool
}

// FuncTempIndex is the stable identifier a function is assigned at
// declaration-collection time, before dead-function elimination remaps
// surviving functions to their final FuncIndex.
type FuncTempIndex uint32

// Modifier flags for FunctionDescriptor.
type Modifier uint8

const (
	ModExport Modifier = 1 << iota
)

// ImportOrigin names the (module, name) pair an imported function binds
// to, per the target format's import section.
type ImportOrigin struct {
	Module string
	Name   string
}

// FunctionDescriptor is the typed, name-resolved view of a FunctionDecl.
type FunctionDescriptor struct {
	Name      string
	Signature string // a canonical string form, used for diagnostics
	Params    []VariableDescriptor
	Result    Descriptor
	Modifiers Modifier
	Import    *ImportOrigin // nil unless this function is import-only
	TempIndex FuncTempIndex
	// Deps is the set of FuncTempIndex this function's body may call,
	// used by the dead-function optimizer's reachability analysis.
	Deps map[FuncTempIndex]struct{}
	// OwnerClass is non-nil for a method, naming the class that supplies
	// its implicit `this` parameter.
	OwnerClass *ClassDescriptor
}

func (f *FunctionDescriptor) IsExported() bool { return f.Modifiers&ModExport != 0 }
func (f *FunctionDescriptor) IsImported() bool { return f.Import != nil }

// MemberKind distinguishes a class member as a field or a method.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberMethod
)

type ClassMember struct {
	Kind MemberKind
	Name string
	// Exactly one of Field/Method is meaningful, selected by Kind.
	Field  VariableDescriptor
	Method *FunctionDescriptor
}

// ClassDescriptor is the typed view of a ClassDecl. Type parameters are
// retained for diagnostics only; generic instantiation is out of scope.
type ClassDescriptor struct {
	ID         ClassID
	Name       string
	Members    []ClassMember
	TypeParams []string
}

// StringIndex identifies an interned string.
type StringIndex uint32

// StringTable interns every user-visible string literal and identifier
// into one append-only byte buffer, deduplicating by content. Lookup goes
// through a blake2b-256 hash-index overlay keyed by content, the
// straightforward optimization the design notes call for over a linear
// scan for programs with many string literals; a hash collision still
// falls back to an exact byte comparison among the (rare) bucket members,
// so two distinct strings never alias the same StringIndex.
type StringTable struct {
	buf     []byte
	entries []stringEntry
	byHash  map[[32]byte][]StringIndex
}

type stringEntry struct {
	offset int
	length int
}

// Intern returns the StringIndex for s, reusing an existing entry if s
// was already interned.
func (st *StringTable) Intern(s string) StringIndex {
	if st.byHash == nil {
		st.byHash = make(map[[32]byte][]StringIndex)
	}

	h := blake2b.Sum256([]byte(s))

	for _, idx := range st.byHash[h] {
		if st.Lookup(idx) == s {
			return idx
		}
	}

	offset := len(st.buf)
	st.buf = append(st.buf, s...)
	st.entries = append(st.entries, stringEntry{offset: offset, length: len(s)})

	idx := StringIndex(len(st.entries) - 1)
	st.byHash[h] = append(st.byHash[h], idx)

	return idx
}

// Lookup returns the string previously interned at idx.
func (st *StringTable) Lookup(idx StringIndex) string {
	e := st.entries[idx]
	return string(st.buf[e.offset : e.offset+e.length])
}

// Len returns the number of distinct interned strings.
func (st *StringTable) Len() int { return len(st.entries) }
