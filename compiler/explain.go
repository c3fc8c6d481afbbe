package compiler

import (
	"fmt"
	"strings"

	"github.com/solventlang/tsc/internal/ast"
	"github.com/solventlang/tsc/internal/mir"
)

// dumpProgram renders an indented, one-node-per-line tree, the shape a
// `-ast` flag's debug output takes: terse enough to eyeball, stable
// enough to diff.
func dumpProgram(prog *ast.Program) string {
	var b strings.Builder

	for _, stmt := range prog.Statements {
		dumpStatement(&b, stmt, 0)
	}

	return b.String()
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func dumpStatement(b *strings.Builder, stmt ast.Statement, depth int) {
	switch s := stmt.(type) {
	case *ast.FunctionDecl:
		indent(b, depth)
		fmt.Fprintf(b, "FunctionDecl %s(%d params)\n", s.Name, len(s.Params))

		if s.Body != nil {
			dumpBlock(b, s.Body, depth+1)
		}
	case *ast.ClassDecl:
		indent(b, depth)
		fmt.Fprintf(b, "ClassDecl %s(%d members)\n", s.Name, len(s.Members))
	case *ast.VariableDecl:
		indent(b, depth)
		fmt.Fprintf(b, "VariableDecl %s\n", s.Name)
	case *ast.Assignment:
		indent(b, depth)
		b.WriteString("Assignment\n")
	case *ast.If:
		indent(b, depth)
		b.WriteString("If\n")
		dumpBlock(b, s.Then, depth+1)
	case *ast.While:
		indent(b, depth)
		b.WriteString("While\n")
		dumpBlock(b, s.Body, depth+1)
	case *ast.For:
		indent(b, depth)
		b.WriteString("For\n")
		dumpBlock(b, s.Body, depth+1)
	case *ast.Return:
		indent(b, depth)
		b.WriteString("Return\n")
	case *ast.Break:
		indent(b, depth)
		b.WriteString("Break\n")
	case *ast.Continue:
		indent(b, depth)
		b.WriteString("Continue\n")
	case *ast.ExpressionStatement:
		indent(b, depth)
		b.WriteString("ExpressionStatement\n")
	case *ast.Import:
		indent(b, depth)
		fmt.Fprintf(b, "Import from %q\n", s.From)
	case *ast.Block:
		dumpBlock(b, s, depth)
	case *ast.Eof:
		// Terminal sentinel, not worth a line in a human-facing dump.
	default:
		indent(b, depth)
		fmt.Fprintf(b, "%T\n", s)
	}
}

func dumpBlock(b *strings.Builder, block *ast.Block, depth int) {
	for _, stmt := range block.Statements {
		dumpStatement(b, stmt, depth)
	}
}

// dumpMidIR renders one line per function header followed by its code
// stream disassembled word by word, operand counts taken from the same
// Arity table the assembler consumes.
func dumpMidIR(mod *mir.Module) string {
	var b strings.Builder

	for _, fn := range mod.Functions {
		fmt.Fprintf(&b, "func %s (temp=%d exported=%v)\n", fn.Name, fn.TempIndex, fn.Exported)

		if fn.Import != nil {
			fmt.Fprintf(&b, "  import %s.%s\n", fn.Import.Module, fn.Import.Name)
			continue
		}

		code := fn.Code
		for i := 0; i < len(code); {
			op := mir.Op(code[i])
			arity := op.Arity()
			operands := code[i+1 : i+1+arity]

			if arity == 0 {
				fmt.Fprintf(&b, "  %s\n", op)
			} else {
				fmt.Fprintf(&b, "  %s %v\n", op, operands)
			}

			i += 1 + arity
		}
	}

	return b.String()
}
