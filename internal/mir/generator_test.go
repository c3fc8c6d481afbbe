package mir

import (
	"testing"

	"github.com/solventlang/tsc/internal/ast"
	"github.com/solventlang/tsc/internal/resolver"
)

func mustGenerate(t *testing.T, src string) *Module {
	t.Helper()

	prog, diags := ast.Parse("t.sv", []byte(src))
	if diags != nil {
		t.Fatalf("unexpected parse diagnostics: %v", diags.Render())
	}

	res, diags := resolver.Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected resolver diagnostics: %v", diags.Render())
	}

	mod, diags := Generate(prog, res)
	if diags != nil {
		t.Fatalf("unexpected generator diagnostics: %v", diags.Render())
	}

	return mod
}

func findFunc(t *testing.T, mod *Module, name string) *Function {
	t.Helper()

	for _, fn := range mod.Functions {
		if fn.Name == name {
			return fn
		}
	}

	t.Fatalf("no function named %q in module", name)

	return nil
}

func TestGenerateConstantReturn(t *testing.T) {
	mod := mustGenerate(t, `function f():i32 { return 42; }`)

	fn := findFunc(t, mod, "f")
	if len(fn.Code) < 2 || Op(fn.Code[0]) != ConstI32 || int32(fn.Code[1]) != 42 {
		t.Fatalf("unexpected code: %v", fn.Code)
	}
}

func TestGenerateArithmeticSelectsTypeQualifiedOp(t *testing.T) {
	mod := mustGenerate(t, `function f():i32 { return 1 + 2; }`)

	fn := findFunc(t, mod, "f")

	var sawAdd bool
	for _, w := range fn.Code {
		if Op(w) == I32Add {
			sawAdd = true
		}
	}

	if !sawAdd {
		t.Fatalf("expected I32Add in code: %v", fn.Code)
	}
}

func TestGenerateCallEmitsCallWithCalleeIndex(t *testing.T) {
	mod := mustGenerate(t, `
		function callee():i32 { return 1; }
		function caller():i32 { return callee(); }
	`)

	callee := findFunc(t, mod, "callee")
	caller := findFunc(t, mod, "caller")

	var found bool
	for i, w := range caller.Code {
		if Op(w) == Call {
			found = true
			if uint32(callee.TempIndex) != caller.Code[i+1] {
				t.Fatalf("Call operand = %d, want callee TempIndex %d", caller.Code[i+1], callee.TempIndex)
			}
		}
	}

	if !found {
		t.Fatal("expected a Call instruction")
	}
}

func TestGenerateWhileLoopUsesBlockLoopIdiom(t *testing.T) {
	mod := mustGenerate(t, `
		function f():i32 {
			let i = 0;
			while (i < 10) {
				i = i + 1;
			}
			return i;
		}
	`)

	fn := findFunc(t, mod, "f")

	var sawBlock, sawLoop, sawBrIf bool
	for _, w := range fn.Code {
		switch Op(w) {
		case Block:
			sawBlock = true
		case Loop:
			sawLoop = true
		case BrIf:
			sawBrIf = true
		}
	}

	if !sawBlock || !sawLoop || !sawBrIf {
		t.Fatalf("expected Block/Loop/BrIf in while lowering, got: %v", fn.Code)
	}
}

func TestGenerateImportFunctionHasNoCode(t *testing.T) {
	mod := mustGenerate(t, `function host_log(x:i32):void;`)

	fn := findFunc(t, mod, "host_log")
	if fn.Import == nil {
		t.Fatal("expected Import to be set")
	}

	if len(fn.Code) != 0 {
		t.Fatalf("expected no code for an import, got %v", fn.Code)
	}
}
