// Command xc is the compiler driver: it reads a source file, runs it
// through internal/compiler, and writes the generated assembly either
// to a named output file or to standard output.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/teris-io/cli"

	"github.com/thebigcx/compiler/internal/cerr"
	"github.com/thebigcx/compiler/internal/compiler"
)

var Description = "Compile a source file to x86-64 AT&T assembly."

var App = cli.New(Description).
	WithArg(cli.NewArg("input", "source file to compile").WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "output file (defaults to stdout)").WithType(cli.TypeString)).
	WithAction(Handler)

func Handler(args []string, options map[string]string) int {
	input := args[0]

	src, err := os.Open(input)
	if err != nil {
		reportIOError(err)
		return 1
	}
	defer src.Close()

	out := os.Stdout
	if outPath, ok := options["output"]; ok && outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			reportIOError(err)
			return 1
		}
		defer f.Close()
		out = f
	}

	if err := compiler.New().Compile(src, out); err != nil {
		reportCompileError(err)
		return 1
	}
	return 0
}

// reportCompileError prints diagnostics the way every stage's cerr.Error
// describes itself, prefixed in red the way a terminal-facing compiler
// driver is expected to.
func reportCompileError(err error) {
	prefix := color.New(color.FgRed, color.Bold).Sprint("error:")

	var ce *cerr.Error
	if errors.As(err, &ce) {
		if ce.Line > 0 {
			fmt.Fprintf(os.Stderr, "%s line %d: %s\n", prefix, ce.Line, ce.Msg)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", prefix, ce.Msg)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, err)
}

func reportIOError(err error) {
	prefix := color.New(color.FgRed, color.Bold).Sprint("error:")
	fmt.Fprintf(os.Stderr, "%s %s\n", prefix, err)
}

func main() {
	os.Exit(App.Run(os.Args, os.Stdout))
}
