package mir

import (
	"bufio"
	"os"
	"testing"
)

func TestOpTableMatchesSourceList(t *testing.T) {
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

	if int(opCount) != len(want) {
		t.Fatalf("opCount = %d, opcodes.txt has %d entries", opCount, len(want))
	}

	for i, name := range want {
		if got := Op(i).String(); got != name {
			t.Fatalf("Op(%d).String() = %q, want %q", i, got, name)
		}
	}
}

func TestArityDefaultsToZero(t *testing.T) {
	if I32Add.Arity() != 0 {
		t.Fatalf("I32Add.Arity() = %d, want 0", I32Add.Arity())
	}

	if ConstI32.Arity() != 1 {
		t.Fatalf("ConstI32.Arity() = %d, want 1", ConstI32.Arity())
	}

	if ConstI64.Arity() != 2 {
		t.Fatalf("ConstI64.Arity() = %d, want 2", ConstI64.Arity())
	}
}
