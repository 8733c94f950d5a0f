// Command tlcc compiles the source language straight to a C
// translation unit. It owns no compiler logic itself — internal/compiler
// does the lexing/parsing/lowering/optimizing/codegen — this file is
// only the urfave/cli/v3 wiring and diagnostic presentation.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"

	"tlcc/internal/compiler"
)

func main() {
	app := &cli.Command{
		Name:  "tlcc",
		Usage: "translate source files to C",
		Commands: []*cli.Command{
			buildCommand,
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		errColor().Fprintf(os.Stderr, "tlcc: %v\n", err)
		os.Exit(1)
	}
}

var buildCommand = &cli.Command{
	Name:      "build",
	Usage:     "compile a source file to C",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "o", Usage: "output path (default: stdout)"},
		&cli.BoolFlag{Name: "O", Usage: "run the peephole optimizer", Value: true},
		&cli.BoolFlag{Name: "emit-ir", Usage: "print the lowered IR instead of C"},
	},
	Action: runBuild,
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() == 0 {
		return fmt.Errorf("usage: tlcc build <file> [-o out.c] [-O=false] [--emit-ir]")
	}
	path := args.Get(0)

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	start := time.Now()
	out, err := compiler.Compile(string(src), compiler.Options{
		Optimize: cmd.Bool("O"),
		EmitIR:   cmd.Bool("emit-ir"),
	})
	if err != nil {
		return reportCompileError(path, err)
	}
	elapsed := time.Since(start)

	if dest := cmd.String("o"); dest != "" {
		if err := os.WriteFile(dest, []byte(out), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}
		successColor().Fprintf(os.Stderr, "tlcc: wrote %s (%s) in %s\n",
			dest, humanize.Bytes(uint64(len(out))), elapsed.Round(time.Microsecond))
		return nil
	}

	fmt.Print(out)
	return nil
}

// reportCompileError renders the three-kind error taxonomy from
// internal/irerr (wrapped with github.com/pkg/errors down the stack)
// as a "compile failed" line naming path, followed by the error's
// message chain on one line, outermost context first.
func reportCompileError(path string, err error) error {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: compile failed\n", path))
	sb.WriteString(err.Error())
	return fmt.Errorf("%s", sb.String())
}

func errColor() *color.Color {
	c := color.New(color.FgRed, color.Bold)
	c.EnableColor()
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		c.DisableColor()
	}
	return c
}

func successColor() *color.Color {
	c := color.New(color.FgGreen)
	c.EnableColor()
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		c.DisableColor()
	}
	return c
}
