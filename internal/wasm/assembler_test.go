package wasm

import (
	"bytes"
	"testing"

	"github.com/solventlang/tsc/internal/ast"
	"github.com/solventlang/tsc/internal/leb128"
	"github.com/solventlang/tsc/internal/mir"
	"github.com/solventlang/tsc/internal/resolver"
)

func compileToModule(t *testing.T, src string) *Module {
	t.Helper()

	prog, diags := ast.Parse("t.sv", []byte(src))
	if diags.HasErrors() {
		t.Fatalf("parse: %s", diags.Render())
	}

	res, diags := resolver.Resolve(prog)
	if diags.HasErrors() {
		t.Fatalf("resolve: %s", diags.Render())
	}

	mirMod, diags := mir.Generate(prog, res)
	if diags.HasErrors() {
		t.Fatalf("generate: %s", diags.Render())
	}

	mirMod = mir.EliminateDeadFunctions(mirMod)

	mod, diags := Assemble(mirMod)
	if diags.HasErrors() {
		t.Fatalf("assemble: %s", diags.Render())
	}

	return mod
}

// TestMinimalCompile is spec §8 concrete scenario 1: an empty exported
// function's code entry is exactly zero locals and a bare End.
func TestMinimalCompile(t *testing.T) {
	mod := compileToModule(t, "@export\nfunction f(){}")

	if mod.Types.Len() != 1 {
		t.Fatalf("type count = %d, want 1", mod.Types.Len())
	}

	tu := mod.Types.At(0)
	if len(tu.Params) != 0 || len(tu.Results) != 0 {
		t.Fatalf("type = %+v, want () -> ()", tu)
	}

	if len(mod.Functions) != 1 || mod.Functions[0] != 0 {
		t.Fatalf("functions = %v, want [0]", mod.Functions)
	}

	if len(mod.Codes) != 1 {
		t.Fatalf("code entries = %d, want 1", len(mod.Codes))
	}

	c := mod.Codes[0]
	if len(c.Locals) != 0 {
		t.Fatalf("locals = %v, want none", c.Locals)
	}

	if !bytes.Equal(c.Body, []byte{0x0B}) {
		t.Fatalf("body = % X, want [0B]", c.Body)
	}
}

// TestSignatureDedup is scenario 3: two functions with the same
// (params, results) shape share one Type section entry.
func TestSignatureDedup(t *testing.T) {
	mod := compileToModule(t, `
		@export
		function a(x: i32): i32 { return x; }
		@export
		function b(y: i32): i32 { return y; }
	`)

	if mod.Types.Len() != 1 {
		t.Fatalf("type count = %d, want 1", mod.Types.Len())
	}

	if len(mod.Functions) != 2 {
		t.Fatalf("function count = %d, want 2", len(mod.Functions))
	}

	for i, ti := range mod.Functions {
		if ti != 0 {
			t.Fatalf("function[%d] type index = %d, want 0", i, ti)
		}
	}
}

// TestDeadFunctionElimination is scenario 4: an unexported, uncalled
// function never reaches the assembled module.
func TestDeadFunctionElimination(t *testing.T) {
	mod := compileToModule(t, `
		@export
		function used(){}
		function dead(){}
	`)

	if len(mod.Functions) != 1 {
		t.Fatalf("function count = %d, want 1", len(mod.Functions))
	}

	if len(mod.Exports) != 1 || mod.Exports[0].Name != "used" {
		t.Fatalf("exports = %+v, want just %q", mod.Exports, "used")
	}
}

// TestModuleEncodeHeader checks the fixed header and that an empty module
// encodes to exactly the eight header bytes, per the boundary case "empty
// source -> empty module (header only)".
func TestModuleEncodeHeader(t *testing.T) {
	var mod Module
	out := mod.Encode()

	want := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	if !bytes.Equal(out, want) {
		t.Fatalf("encode = % X, want % X", out, want)
	}
}

// TestLocalsPrologueRunLength is the boundary case: 256 locals of
// alternating types produce 256 single-count runs.
func TestLocalsPrologueRunLength(t *testing.T) {
	locals := make([]ValType, 0, 256)
	for i := 0; i < 256; i++ {
		if i%2 == 0 {
			locals = append(locals, I32)
		} else {
			locals = append(locals, I64)
		}
	}

	w := leb128.NewWriter()
	writeLocalsPrologue(w, locals)

	count, err := leb128.NewReader(w.Bytes()).ReadUint()
	if err != nil {
		t.Fatalf("read run count: %v", err)
	}

	if count != 256 {
		t.Fatalf("run count = %d, want 256", count)
	}
}
