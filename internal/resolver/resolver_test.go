package resolver

import (
	"testing"

	"github.com/solventlang/tsc/internal/ast"
)

func mustParse(t *testing.T, src string) *ast.Program {
	t.Helper()

	prog, diags := ast.Parse("t.sv", []byte(src))
	if diags != nil {
		t.Fatalf("unexpected parse diagnostics: %v", diags.Render())
	}

	return prog
}

func TestResolveMinimalFunction(t *testing.T) {
	prog := mustParse(t, `function f(){}`)

	res, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	if len(res.Functions) != 1 || res.Functions[0].Name != "f" {
		t.Fatalf("unexpected functions: %+v", res.Functions)
	}
}

func TestResolveDuplicateFunctionIsNameError(t *testing.T) {
	prog := mustParse(t, `function f(){} function f(){}`)

	_, diags := Resolve(prog)
	if diags == nil || !diags.HasErrors() {
		t.Fatal("expected a name error for the duplicate declaration")
	}
}

func TestResolveInfersReturnTypeFromFirstReturn(t *testing.T) {
	prog := mustParse(t, `function f() { return 1; }`)

	res, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	if res.Functions[0].Result.Name != "i32" {
		t.Fatalf("Result = %s, want i32", res.Functions[0].Result.Name)
	}
}

func TestResolveInconsistentReturnTypesIsTypeMismatch(t *testing.T) {
	prog := mustParse(t, `function f():i32 { if (true) { return 1; } return true; }`)

	_, diags := Resolve(prog)
	if diags == nil || !diags.HasErrors() {
		t.Fatal("expected a type mismatch for the inconsistent return")
	}
}

func TestResolveUndefinedIdentifierIsNameError(t *testing.T) {
	prog := mustParse(t, `function f():i32 { return x; }`)

	_, diags := Resolve(prog)
	if diags == nil || !diags.HasErrors() {
		t.Fatal("expected a name error for the undefined identifier")
	}
}

func TestResolveCallTracksCalleeAsDependency(t *testing.T) {
	prog := mustParse(t, `
		function callee():i32 { return 1; }
		function caller():i32 { return callee(); }
	`)

	res, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	callee := res.FuncByName["callee"]
	caller := res.FuncByName["caller"]

	if _, ok := caller.Deps[callee.TempIndex]; !ok {
		t.Fatalf("caller.Deps = %v, want it to contain callee's temp index %d", caller.Deps, callee.TempIndex)
	}
}

func TestResolveLocalVariableWidensFromLiteral(t *testing.T) {
	prog := mustParse(t, `function f(){ let x = 1; let y:i64 = x; }`)

	_, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}
}

func TestResolveExportDecoratorSetsModExport(t *testing.T) {
	prog := mustParse(t, `@export function f(){}`)

	res, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	if !res.Functions[0].IsExported() {
		t.Fatal("expected @export to set the EXPORT modifier")
	}
}

func TestResolveClassFieldsAndMethods(t *testing.T) {
	prog := mustParse(t, `class Point { let x:i32; function sum():i32 { return this.x; } }`)

	res, diags := Resolve(prog)
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	cd := res.ClassByName["Point"]
	if cd == nil || len(cd.Members) != 2 {
		t.Fatalf("unexpected class descriptor: %+v", cd)
	}
}
