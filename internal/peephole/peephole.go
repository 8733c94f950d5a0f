// Package peephole implements a set of local rewrites: forward
// passes over one function's instruction stream, guided
// by a use-count/definer analysis, that eliminates redundant temps and
// fuses a comparison into the branch that consumes it.
package peephole

import (
	"golang.org/x/exp/slices"

	"tlcc/internal/ir"
)

// Optimize rewrites every function in program in place and returns it,
// for call-site convenience (each rewrite operates per function; program
// order is untouched).
func Optimize(program *ir.Program) *ir.Program {
	for _, fn := range program.Functions {
		OptimizeFunction(fn)
	}
	return program
}

// usage holds the pre-analysis each rewrite requires: how many
// instructions reference a temp as an argument, and which instruction
// index defines it.
type usage struct {
	count   map[int]int
	definer map[int]int
}

func analyze(fn *ir.Function) *usage {
	u := &usage{count: make(map[int]int), definer: make(map[int]int)}
	for i, instr := range fn.Instructions {
		if instr.Opcode == ir.OpArrayStore && instr.Result != nil && instr.Result.Kind == ir.KindTemp {
			// ARRAY_STORE keeps its stored value in Result: a use, not a definition.
			u.count[instr.Result.TempID]++
		} else if instr.Result != nil && instr.Result.Kind == ir.KindTemp {
			u.definer[instr.Result.TempID] = i
			if _, ok := u.count[instr.Result.TempID]; !ok {
				u.count[instr.Result.TempID] = 0
			}
		}
		for _, arg := range []*ir.Operand{instr.Arg1, instr.Arg2} {
			if arg != nil && arg.Kind == ir.KindTemp {
				u.count[arg.TempID]++
			}
		}
		for _, arg := range instr.Args {
			if arg != nil && arg.Kind == ir.KindTemp {
				u.count[arg.TempID]++
			}
		}
	}
	return u
}

// noLabelBetween reports whether no LABEL lies strictly between
// indices lo and hi, i.e. whether a rewrite spanning them stays inside
// one basic block. The peephole's
// local nature depends on never inlining across one.
func noLabelBetween(fn *ir.Function, lo, hi int) bool {
	for i := lo + 1; i < hi; i++ {
		if fn.Instructions[i].Opcode == ir.OpLabel {
			return false
		}
	}
	return true
}

// OptimizeFunction runs the full rewrite catalog once over fn.
func OptimizeFunction(fn *ir.Function) {
	u := analyze(fn)
	deleted := make([]bool, len(fn.Instructions))

	inlineCallResults(fn, u, deleted)
	eliminateDeadCallResults(fn, u)
	fuseCompareToZero(fn, u, deleted)

	compact(fn, deleted)
}

// compact rebuilds the instruction slice excluding every index marked
// deleted, preserving order. deleted is
// walked in lockstep with the single forward pass slices.DeleteFunc
// makes over the instruction slice.
func compact(fn *ir.Function, deleted []bool) {
	i := 0
	fn.Instructions = slices.DeleteFunc(fn.Instructions, func(_ *ir.Instruction) bool {
		del := deleted[i]
		i++
		return del
	})
}
