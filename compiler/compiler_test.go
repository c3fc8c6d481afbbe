package compiler

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompileMinimal(t *testing.T) {
	out, diags := Compile("t.sv", []byte("function f(){}"))
	if diags.HasErrors() {
		t.Fatalf("compile: %s", diags.Render())
	}

	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(out[:8], want) {
		t.Fatalf("header = % X, want % X", out[:8], want)
	}
}

func TestCompilePropagatesParseErrors(t *testing.T) {
	_, diags := Compile("t.sv", []byte("function f("))
	if !diags.HasErrors() {
		t.Fatal("expected parse error, got none")
	}
}

func TestExplainAST(t *testing.T) {
	out, diags := ExplainAST("t.sv", []byte("function f(){}"))
	if diags.HasErrors() {
		t.Fatalf("explain ast: %s", diags.Render())
	}

	if !strings.Contains(out, "FunctionDecl f") {
		t.Fatalf("dump = %q, want it to mention FunctionDecl f", out)
	}
}

func TestExplainMidIR(t *testing.T) {
	out, diags := ExplainMidIR("t.sv", []byte(`
		@export
		function add(x: i32, y: i32): i32 { return x + y; }
	`))
	if diags.HasErrors() {
		t.Fatalf("explain mid-ir: %s", diags.Render())
	}

	if !strings.Contains(out, "func add") {
		t.Fatalf("dump = %q, want it to mention func add", out)
	}
}

func TestExplainMidIRStopsBeforeDeadCodeIsVisible(t *testing.T) {
	out, diags := ExplainMidIR("t.sv", []byte(`
		@export
		function used(){}
		function dead(){}
	`))
	if diags.HasErrors() {
		t.Fatalf("explain mid-ir: %s", diags.Render())
	}

	if strings.Contains(out, "func dead") {
		t.Fatalf("dump = %q, dead-code elimination should have dropped func dead", out)
	}
}
