// Package compiler wires the front end and the core into a single
// source-to-C pipeline, with pipeline state held on a struct rather
// than package-level globals.
package compiler

import (
	"strings"

	"github.com/pkg/errors"

	"tlcc/internal/codegen"
	"tlcc/internal/ir"
	"tlcc/internal/lexer"
	"tlcc/internal/parser"
	"tlcc/internal/peephole"
)

// Options controls one Compile call.
type Options struct {
	// Optimize runs the peephole pass when true.
	Optimize bool
	// EmitIR, when true, makes Compile return the lowered (and
	// possibly peephole-optimized) IR's textual dump instead of C,
	// for --emit-ir debugging.
	EmitIR bool
}

// Compile lowers source all the way to a C translation unit (or, with
// opts.EmitIR, to a textual IR dump): lex -> parse -> build symbol
// tables -> ir.Generate -> optionally peephole.Optimize -> codegen.Generate.
func Compile(source string, opts Options) (string, error) {
	sc := lexer.New(source)
	tokens := sc.ScanTokens()
	if len(sc.Errors) > 0 {
		return "", errors.Errorf("lexer errors: %s", joinErrors(sc.Errors))
	}

	p := parser.New(tokens)
	program := p.ParseProgram()
	if len(p.Errors) > 0 {
		return "", errors.Errorf("parse errors: %s", joinErrors(p.Errors))
	}

	irProgram, err := ir.Generate(program)
	if err != nil {
		return "", errors.Wrap(err, "lowering to IR")
	}

	if opts.Optimize {
		irProgram = peephole.Optimize(irProgram)
	}

	if opts.EmitIR {
		return dumpIR(irProgram), nil
	}

	var sb strings.Builder
	if err := codegen.Generate(irProgram, &sb); err != nil {
		return "", errors.Wrap(err, "generating C")
	}
	return sb.String(), nil
}

func joinErrors(errs []error) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// dumpIR renders irProgram as a readable textual listing, one
// instruction per line, for --emit-ir. Not the C output path; it
// exists purely as a debugging aid over the lowering/peephole stages.
func dumpIR(program *ir.Program) string {
	var sb strings.Builder
	for _, fn := range program.Functions {
		sb.WriteString("func ")
		sb.WriteString(fn.Name)
		sb.WriteString(":\n")
		for _, instr := range fn.Instructions {
			sb.WriteString("  ")
			sb.WriteString(instr.Opcode.String())
			if instr.Label != "" {
				sb.WriteString(" ")
				sb.WriteString(instr.Label)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
