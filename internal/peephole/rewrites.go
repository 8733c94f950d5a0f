package peephole

import "tlcc/internal/ir"

// inlineCallResults implements the first rewrite: a CALL whose
// single-use result temp is consumed by a `MOVE var <- t` with no LABEL
// between the two gets its result rewritten to var directly, and the
// MOVE is marked for deletion. Rewrite 2 (inlining into a directly
// consuming PRINT/CALL/RETURN/ARRAY_STORE) is deliberately not carried
// through to deletion — see DESIGN.md's note on this open question —
// so only the to-a-var pattern ever removes an instruction here.
func inlineCallResults(fn *ir.Function, u *usage, deleted []bool) {
	for i, instr := range fn.Instructions {
		if deleted[i] || instr.Opcode != ir.OpCall || instr.Result == nil || instr.Result.Kind != ir.KindTemp {
			continue
		}
		tempID := instr.Result.TempID
		if u.count[tempID] != 1 {
			continue
		}

		moveIdx, ok := findUniqueMoveToVar(fn, tempID, i)
		if !ok {
			continue
		}
		moveInstr := fn.Instructions[moveIdx]
		instr.Result = moveInstr.Result
		deleted[moveIdx] = true
	}
}

// findUniqueMoveToVar finds the (necessarily unique, since use count
// is 1) instruction that moves tempID into a Var, provided no LABEL
// lies between the CALL at defIdx and that MOVE.
func findUniqueMoveToVar(fn *ir.Function, tempID, defIdx int) (int, bool) {
	for i, instr := range fn.Instructions {
		if instr.Opcode == ir.OpMove && instr.Arg1.IsTemp(tempID) &&
			instr.Result != nil && instr.Result.Kind == ir.KindVar {
			if !noLabelBetween(fn, defIdx, i) {
				return 0, false
			}
			return i, true
		}
	}
	return 0, false
}

// eliminateDeadCallResults implements rewrite 3: a CALL result temp
// with zero uses has its result slot nulled out. The call itself is
// always retained for its side effects.
func eliminateDeadCallResults(fn *ir.Function, u *usage) {
	for _, instr := range fn.Instructions {
		if instr.Opcode != ir.OpCall || instr.Result == nil || instr.Result.Kind != ir.KindTemp {
			continue
		}
		if u.count[instr.Result.TempID] == 0 {
			instr.Result = nil
		}
	}
}

// fuseCompareToZero implements rewrite 4: `NE t, x, 0` immediately
// followed by `JUMP_IF_FALSE t -> L`, with t used nowhere else, fuses
// into `JUMP_IF_FALSE x -> L` and deletes the NE. The two instructions
// are adjacent by construction, so there is no basic-block boundary
// to check between them.
func fuseCompareToZero(fn *ir.Function, u *usage, deleted []bool) {
	for i, instr := range fn.Instructions {
		if deleted[i] || instr.Opcode != ir.OpNe || instr.Result == nil || instr.Result.Kind != ir.KindTemp {
			continue
		}
		if instr.Arg2 == nil || instr.Arg2.Kind != ir.KindConst || instr.Arg2.ConstValue != 0 {
			continue
		}
		tempID := instr.Result.TempID
		if i+1 >= len(fn.Instructions) {
			continue
		}
		next := fn.Instructions[i+1]
		if next.Opcode != ir.OpJumpIfFalse || !next.Arg1.IsTemp(tempID) {
			continue
		}
		if u.count[tempID] != 1 {
			continue
		}
		next.Arg1 = instr.Arg1
		deleted[i] = true
	}
}
