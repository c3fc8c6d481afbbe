// Package diagnostic implements the compiler's closed error taxonomy.
// Every phase from the lexer through the assembler returns diagnostics as
// values instead of panicking; InternalError is the only kind that
// represents a genuine invariant violation, and even it is returned
// rather than panicked so the driver can always print something and
// exit 1, per the single-threaded, synchronous-and-fatal failure model.
package diagnostic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/solventlang/tsc/internal/position"
)

// Kind is the closed error taxonomy.
type Kind int

const (
	SyntaxError Kind = iota
	NameError
	TypeMismatch
	CouldNotInfer
	OutOfBounds
	InternalError
)

func (k Kind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case NameError:
		return "name error"
	case TypeMismatch:
		return "type mismatch"
	case CouldNotInfer:
		return "could not infer"
	case OutOfBounds:
		return "out of bounds"
	case InternalError:
		return "internal error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic carries one error with its position and an optional list of
// human-readable notes (e.g. "expected one of: ...").
type Diagnostic struct {
	Kind    Kind
	Message string
	Pos     position.Position // zero value means Unspecified
	Notes   []string
}

func (d *Diagnostic) Error() string { return d.String() }

func (d *Diagnostic) String() string {
	var b strings.Builder

	if d.Pos.IsValid() {
		fmt.Fprintf(&b, "%s: ", d.Pos)
	} else {
		b.WriteString("<unspecified>: ")
	}

	fmt.Fprintf(&b, "%s: %s", d.Kind, d.Message)

	for _, n := range d.Notes {
		fmt.Fprintf(&b, "\n  note: %s", n)
	}

	return b.String()
}

// New constructs a Diagnostic. Helpers below cover the common kinds so
// call sites read as what went wrong rather than how it's tagged.
func New(kind Kind, pos position.Position, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func Syntax(pos position.Position, format string, args ...any) *Diagnostic {
	return New(SyntaxError, pos, format, args...)
}

func Name(pos position.Position, format string, args ...any) *Diagnostic {
	return New(NameError, pos, format, args...)
}

func Type(pos position.Position, format string, args ...any) *Diagnostic {
	return New(TypeMismatch, pos, format, args...)
}

func Infer(pos position.Position, format string, args ...any) *Diagnostic {
	return New(CouldNotInfer, pos, format, args...)
}

func Bounds(pos position.Position, format string, args ...any) *Diagnostic {
	return New(OutOfBounds, pos, format, args...)
}

func Internal(pos position.Position, format string, args ...any) *Diagnostic {
	return New(InternalError, pos, format, args...)
}

// Bag accumulates diagnostics in emission order; that order equals source
// order because every phase is single-pass and deterministic.
type Bag struct {
	items []*Diagnostic
}

// Add appends d to the bag if it is non-nil.
func (b *Bag) Add(d *Diagnostic) {
	if d == nil {
		return
	}

	b.items = append(b.items, d)
}

// Extend appends every diagnostic from other, preserving order.
func (b *Bag) Extend(other *Bag) {
	if other == nil {
		return
	}

	b.items = append(b.items, other.items...)
}

// HasErrors reports whether any diagnostic was recorded; there is no
// separate warning severity in this taxonomy, so any diagnostic is fatal
// to the job that produced it.
func (b *Bag) HasErrors() bool {
	return b != nil && len(b.items) > 0
}

// Items returns the accumulated diagnostics in emission order.
func (b *Bag) Items() []*Diagnostic {
	if b == nil {
		return nil
	}

	return b.items
}

// SortByPosition orders diagnostics by source offset; used only for
// deterministic multi-file output in the future, since within a single
// file emission order already equals source order.
func (b *Bag) SortByPosition() {
	sort.SliceStable(b.items, func(i, j int) bool {
		return b.items[i].Pos.Offset < b.items[j].Pos.Offset
	})
}

// Render prints every diagnostic one per line, the shape the driver
// writes to stderr.
func (b *Bag) Render() string {
	var sb strings.Builder

	for _, d := range b.Items() {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}

	return sb.String()
}
