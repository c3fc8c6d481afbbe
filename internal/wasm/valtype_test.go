package wasm

import (
	"bufio"
	"os"
	"testing"
)

func TestValTypeTableMatchesSourceList(t *testing.T) {
	f, err := os.Open("valtype.txt")
	if err != nil {
		t.Fatalf("open valtype.txt: %v", err)
	}
	defer f.Close()

	var want []string

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			want = append(want, line)
		}
	}

	if int(valTypeCount) != len(want) {
		t.Fatalf("valTypeCount = %d, valtype.txt has %d entries", valTypeCount, len(want))
	}

	for i, name := range want {
		if got := ValType(i).String(); got != name {
			t.Fatalf("ValType(%d).String() = %q, want %q", i, got, name)
		}
	}
}

func TestValTypeBytecode(t *testing.T) {
	cases := map[ValType]int64{I32: -1, I64: -2, F32: -3, F64: -4}
	for vt, want := range cases {
		if got := vt.Bytecode(); got != want {
			t.Fatalf("%s.Bytecode() = %d, want %d", vt, got, want)
		}
	}
}
