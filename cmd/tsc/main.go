// Command tsc is the Solvent compiler driver: a thin wrapper around the
// compiler package's Compile/ExplainAST/ExplainMidIR entry points, flag
// parsing, and an optional save-triggered recompile loop.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/fsnotify/fsnotify"

	"github.com/solventlang/tsc/compiler"
)

var logger = log.New(os.Stderr, "", 0)

func main() {
	var (
		dumpAST    = flag.Bool("ast", false, "print the AST debug dump instead of compiling")
		dumpMidIR  = flag.Bool("tir", false, "print the mid-IR debug dump instead of compiling")
		run        = flag.Bool("run", false, "compile and execute the result (unimplemented)")
		out        = flag.String("o", "", "output path for the compiled module (default: stdout)")
		watch      = flag.Bool("watch", false, "recompile on every save")
		verbose    = flag.Bool("v", false, "report the number of bytes written to -o on stderr")
		minVersion = flag.String("version", "", "target-format version, checked to be a valid semantic version, e.g. 1.0.0")
	)

	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: tsc [ -ast | -tir | -run ] [ -o OUT ] [ -- ] INPUT")
		os.Exit(1)
	}

	input := args[0]

	if *minVersion != "" {
		if _, err := semver.NewVersion(*minVersion); err != nil {
			logger.Fatalf("invalid -version %q: %v", *minVersion, err)
		}
	}

	if *run {
		logger.Fatal("-run is not implemented")
	}

	d := &driver{
		fs:      osFileSystem{},
		mode:    modeOf(*dumpAST, *dumpMidIR),
		out:     *out,
		verbose: *verbose,
	}

	if !d.compileOnce(input) {
		os.Exit(1)
	}

	if *watch {
		if err := d.watchLoop(input); err != nil {
			logger.Fatalf("watch: %v", err)
		}
	}
}

type mode int

const (
	modeCompile mode = iota
	modeAST
	modeMidIR
)

func modeOf(ast, tir bool) mode {
	switch {
	case ast:
		return modeAST
	case tir:
		return modeMidIR
	default:
		return modeCompile
	}
}

// driver wires compiler.FileSystem to the real filesystem; tests
// substitute a mock of the same interface instead of exercising os.
type driver struct {
	fs      compiler.FileSystem
	mode    mode
	out     string
	verbose bool
}

// compileOnce runs one compile-and-report cycle, returning false if the
// input could not be read or the compile failed.
func (d *driver) compileOnce(input string) bool {
	src, err := d.fs.ReadFile(input)
	if err != nil {
		logger.Printf("reading %s: %v", input, err)
		return false
	}

	switch d.mode {
	case modeAST:
		text, diags := compiler.ExplainAST(input, src)
		if diags.HasErrors() {
			logger.Print(diags.Render())
			return false
		}

		fmt.Println(text)
		return true
	case modeMidIR:
		text, diags := compiler.ExplainMidIR(input, src)
		if diags.HasErrors() {
			logger.Print(diags.Render())
			return false
		}

		fmt.Println(text)
		return true
	default:
		out, diags := compiler.Compile(input, src)
		if diags.HasErrors() {
			logger.Print(diags.Render())
			return false
		}

		return d.writeOutput(out)
	}
}

func (d *driver) writeOutput(data []byte) bool {
	if d.out == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			logger.Printf("writing stdout: %v", err)
			return false
		}

		return true
	}

	if err := d.fs.WriteFile(d.out, data); err != nil {
		logger.Printf("writing %s: %v", d.out, err)
		return false
	}

	if d.verbose {
		logger.Printf("wrote %d bytes to %s", len(data), d.out)
	}

	return true
}

// watchLoop recompiles input every time it changes on disk, using a
// single fsnotify.Watcher processed one event at a time — there is
// never a compile running concurrently with another.
func (d *driver) watchLoop(input string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(input); err != nil {
		return err
	}

	logger.Printf("watching %s for changes", input)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			d.compileOnce(input)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}

			logger.Printf("watch error: %v", err)
		}
	}
}

type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

func (osFileSystem) WriteFile(path string, data []byte) error { return os.WriteFile(path, data, 0o644) }
