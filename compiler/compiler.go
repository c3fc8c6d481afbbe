// Package compiler is the core API the driver wraps: a pure function
// library that turns Solvent source into a target-format module, plus two
// debug-dump entry points used by the `-ast`/`-tir` driver flags. It
// touches no filesystem or console of its own — every entry point takes
// bytes and returns bytes (or diagnostics), wiring the tokenizer through
// the module serializer in order and stopping at the first phase that
// reports errors.
package compiler

import (
	"github.com/solventlang/tsc/internal/ast"
	"github.com/solventlang/tsc/internal/diagnostic"
	"github.com/solventlang/tsc/internal/mir"
	"github.com/solventlang/tsc/internal/resolver"
	"github.com/solventlang/tsc/internal/wasm"
)

// Compile runs every phase from parsing through module serialization and
// returns the assembled target-format binary.
func Compile(path string, src []byte) ([]byte, *diagnostic.Bag) {
	_, mirMod, diags := lowerToMidIR(path, src)
	if diags.HasErrors() {
		return nil, diags
	}

	mod, diags := wasm.Assemble(mirMod)
	if diags.HasErrors() {
		return nil, diags
	}

	return mod.Encode(), nil
}

// ExplainAST parses src and returns a human-readable dump of the
// resulting tree, stopping before name resolution or lowering run at all.
func ExplainAST(path string, src []byte) (string, *diagnostic.Bag) {
	prog, diags := ast.Parse(path, src)
	if diags.HasErrors() {
		return "", diags
	}

	return dumpProgram(prog), nil
}

// ExplainMidIR runs parsing, resolution, generation and dead-code
// elimination (but not assembly) and returns a dump of the mid-IR every
// surviving function would be assembled from.
func ExplainMidIR(path string, src []byte) (string, *diagnostic.Bag) {
	_, mirMod, diags := lowerToMidIR(path, src)
	if diags.HasErrors() {
		return "", diags
	}

	return dumpMidIR(mirMod), nil
}

// lowerToMidIR runs every phase through C7 (dead-function elimination),
// the shared prefix of Compile and ExplainMidIR.
func lowerToMidIR(path string, src []byte) (*ast.Program, *mir.Module, *diagnostic.Bag) {
	prog, diags := ast.Parse(path, src)
	if diags.HasErrors() {
		return nil, nil, diags
	}

	res, diags := resolver.Resolve(prog)
	if diags.HasErrors() {
		return nil, nil, diags
	}

	mirMod, diags := mir.Generate(prog, res)
	if diags.HasErrors() {
		return nil, nil, diags
	}

	return prog, mir.EliminateDeadFunctions(mirMod), nil
}

// FileSystem is the narrow interface the driver depends on instead of
// `os` directly, so driver tests can substitute a mock rather than touch
// the real filesystem.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}
