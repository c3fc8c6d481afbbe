package mir

import "testing"

func TestEliminateDeadFunctionsDropsUnreachable(t *testing.T) {
	mod := mustGenerate(t, `
		@export function used():i32 { return helper(); }
		function helper():i32 { return 1; }
		function dead():i32 { return 2; }
	`)

	out := EliminateDeadFunctions(mod)

	if len(out.Functions) != 2 {
		names := make([]string, len(out.Functions))
		for i, fn := range out.Functions {
			names[i] = fn.Name
		}
		t.Fatalf("got %d surviving functions %v, want 2 (used, helper)", len(out.Functions), names)
	}

	for _, fn := range out.Functions {
		if fn.Name == "dead" {
			t.Fatal("dead function survived elimination")
		}
	}
}

func TestEliminateDeadFunctionsOrdersImportsBeforeDefined(t *testing.T) {
	mod := mustGenerate(t, `
		@export function entry():void { host_log(); }
		function host_log():void;
	`)

	out := EliminateDeadFunctions(mod)

	if len(out.Functions) != 2 {
		t.Fatalf("got %d surviving functions, want 2", len(out.Functions))
	}

	if out.Functions[0].Import == nil {
		t.Fatalf("expected the import to sort before the defined function, got order: %s, %s",
			out.Functions[0].Name, out.Functions[1].Name)
	}
}

func TestEliminateDeadFunctionsDropsUncalledImport(t *testing.T) {
	mod := mustGenerate(t, `
		@export function entry():void {}
		function unused_import():void;
	`)

	out := EliminateDeadFunctions(mod)

	if len(out.Functions) != 1 {
		t.Fatalf("got %d surviving functions, want 1 (entry only)", len(out.Functions))
	}

	if out.Functions[0].Name != "entry" {
		t.Fatalf("surviving function = %s, want entry", out.Functions[0].Name)
	}
}

func TestEliminateDeadFunctionsKeepsUnexportedButCalledFunction(t *testing.T) {
	mod := mustGenerate(t, `
		@export function entry():i32 { return helper(); }
		function helper():i32 { return 1; }
	`)

	out := EliminateDeadFunctions(mod)

	if len(out.Functions) != 2 {
		t.Fatalf("got %d surviving functions, want 2", len(out.Functions))
	}
}
