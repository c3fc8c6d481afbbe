package testingkit

import (
	"context"
	"fmt"
	"testing"

	"github.com/solventlang/tsc/compiler"
)

func TestGoldenFixtures(t *testing.T) {
	fixtures, err := Load("testdata")
	if err != nil {
		t.Fatalf("load fixtures: %v", err)
	}

	if len(fixtures) == 0 {
		t.Fatal("no fixtures found under testdata")
	}

	err = RunAll(context.Background(), fixtures, func(_ context.Context, f Fixture) error {
		return checkFixture(t, f)
	})
	if err != nil {
		t.Fatal(err)
	}
}

func checkFixture(t *testing.T, f Fixture) error {
	t.Helper()
	src := []byte(f.Source)

	if f.HasAST {
		got, diags := compiler.ExplainAST(f.Name+".sv", src)
		if diags.HasErrors() {
			return errf(f.Name, "ast: %s", diags.Render())
		}

		if trimmed(got) != f.WantAST {
			return errf(f.Name, "ast mismatch:\n got: %q\nwant: %q", trimmed(got), f.WantAST)
		}
	}

	if f.HasMIR {
		got, diags := compiler.ExplainMidIR(f.Name+".sv", src)
		if diags.HasErrors() {
			return errf(f.Name, "mir: %s", diags.Render())
		}

		if trimmed(got) != f.WantMIR {
			return errf(f.Name, "mir mismatch:\n got: %q\nwant: %q", trimmed(got), f.WantMIR)
		}
	}

	if f.HasHex {
		out, diags := compiler.Compile(f.Name+".sv", src)
		if diags.HasErrors() {
			return errf(f.Name, "compile: %s", diags.Render())
		}

		if got := EncodeHex(out); got != f.WantHex {
			return errf(f.Name, "module hex mismatch:\n got: %s\nwant: %s", got, f.WantHex)
		}
	}

	return nil
}

func trimmed(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}

	return s
}

func errf(name, format string, args ...any) error {
	return fmt.Errorf("%s: %s", name, fmt.Sprintf(format, args...))
}
