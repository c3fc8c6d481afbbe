// Package testingkit is the golden-fixture harness the compiler's
// package tests share: each fixture is one txtar archive bundling a
// Solvent source file with whichever of its expected AST dump, mid-IR
// dump and compiled module hex the case checks, so that a single file
// documents an end-to-end
// compile the way the spec's concrete scenarios describe it.
package testingkit

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/txtar"
)

// Fixture is one golden test case: a Solvent source file plus whichever
// of the expected outputs the archive carries. A section is skipped
// when its file is absent from the archive, so a fixture can exercise
// only the phases it cares about.
type Fixture struct {
	Name    string
	Source  string
	WantAST string // from ast.golden, empty if absent
	WantMIR string // from mir.golden, empty if absent
	WantHex string // from module.golden, empty if absent
	HasAST  bool
	HasMIR  bool
	HasHex  bool
}

// Load parses every .txtar file in dir into a Fixture.
func Load(dir string) ([]Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var fixtures []Fixture

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txtar") {
			continue
		}

		path := filepath.Join(dir, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		f, err := parseFixture(strings.TrimSuffix(e.Name(), ".txtar"), data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		fixtures = append(fixtures, f)
	}

	return fixtures, nil
}

func parseFixture(name string, data []byte) (Fixture, error) {
	archive := txtar.Parse(data)

	f := Fixture{Name: name}

	for _, file := range archive.Files {
		content := strings.TrimRight(string(file.Data), "\n")

		switch file.Name {
		case "source.sv":
			f.Source = content
		case "ast.golden":
			f.WantAST, f.HasAST = content, true
		case "mir.golden":
			f.WantMIR, f.HasMIR = content, true
		case "module.golden":
			f.WantHex, f.HasHex = content, true
		default:
			return Fixture{}, fmt.Errorf("unrecognized txtar section %q", file.Name)
		}
	}

	if f.Source == "" {
		return Fixture{}, fmt.Errorf("fixture %q has no source.sv section", name)
	}

	return f, nil
}

// EncodeHex renders a compiled module the way module.golden sections
// are written, so a failing comparison's diff is readable.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// RunAll runs check against every fixture concurrently, bounded by
// GOMAXPROCS, and returns the first error encountered (if any),
// cancelling the remaining fixtures' context once one fails.
func RunAll(ctx context.Context, fixtures []Fixture, check func(context.Context, Fixture) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, f := range fixtures {
		f := f
		g.Go(func() error {
			if err := check(ctx, f); err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}

			return nil
		})
	}

	return g.Wait()
}
