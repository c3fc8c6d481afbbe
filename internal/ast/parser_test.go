package ast

import "testing"

func TestParseMinimalFunction(t *testing.T) {
	prog, diags := Parse("t.sv", []byte("function f(){}"))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}

	fn, ok := prog.Statements[0].(*FunctionDecl)
	if !ok {
		t.Fatalf("statement is %T, want *FunctionDecl", prog.Statements[0])
	}

	if fn.Name != "f" || len(fn.Params) != 0 || fn.Result != nil || len(fn.Body.Statements) != 0 {
		t.Fatalf("unexpected function shape: %+v", fn)
	}
}

func TestParseTwoFunctions(t *testing.T) {
	prog, diags := Parse("t.sv", []byte(`function min1(){}function min2(){}`))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}

	names := []string{
		prog.Statements[0].(*FunctionDecl).Name,
		prog.Statements[1].(*FunctionDecl).Name,
	}

	if names[0] != "min1" || names[1] != "min2" {
		t.Fatalf("names = %v, want [min1 min2]", names)
	}
}

func TestParseSignatureDedupCandidates(t *testing.T) {
	src := `function a(x:i32):i32 { return x; } function b(y:i32):i32 { return y; }`

	prog, diags := Parse("t.sv", []byte(src))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	for _, stmt := range prog.Statements {
		fn := stmt.(*FunctionDecl)

		if len(fn.Params) != 1 || fn.Params[0].Type.Name != "i32" || fn.Result.Name != "i32" {
			t.Fatalf("unexpected signature for %s: %+v", fn.Name, fn)
		}
	}
}

func TestParseStopsAtFirstSyntaxError(t *testing.T) {
	_, diags := Parse("t.sv", []byte(`function f( {}`))
	if diags == nil || !diags.HasErrors() {
		t.Fatal("expected a syntax error")
	}
}

func TestParseIfElseChain(t *testing.T) {
	src := `function f(){ if (1) { return 1; } else if (2) { return 2; } else { return 3; } }`

	prog, diags := Parse("t.sv", []byte(src))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	fn := prog.Statements[0].(*FunctionDecl)
	ifStmt := fn.Body.Statements[0].(*If)

	if _, ok := ifStmt.Else.(*If); !ok {
		t.Fatalf("else branch is %T, want *If", ifStmt.Else)
	}
}

func TestParsePositionsNestWithinParent(t *testing.T) {
	prog, diags := Parse("t.sv", []byte(`function f(){ let x = 1 + 2; }`))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags.Render())
	}

	fn := prog.Statements[0].(*FunctionDecl)
	decl := fn.Body.Statements[0].(*VariableDecl)

	parent := fn.Span()
	child := decl.Span()

	if child.Start.Offset < parent.Start.Offset || child.End.Offset > parent.End.Offset {
		t.Fatalf("child span %+v not within parent span %+v", child, parent)
	}
}
