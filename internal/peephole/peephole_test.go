package peephole

import (
	"reflect"
	"testing"

	"tlcc/internal/ir"
	"tlcc/internal/lexer"
	"tlcc/internal/parser"
	"tlcc/internal/types"
)

func lowerSource(t *testing.T, source string) *ir.Program {
	t.Helper()
	sc := lexer.New(source)
	tokens := sc.ScanTokens()
	if len(sc.Errors) > 0 {
		t.Fatalf("lex errors: %v", sc.Errors)
	}
	p := parser.New(tokens)
	prog := p.ParseProgram()
	if len(p.Errors) > 0 {
		t.Fatalf("parse errors: %v", p.Errors)
	}
	irProg, err := ir.Generate(prog)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return irProg
}

func findFunction(prog *ir.Program, name string) *ir.Function {
	for _, fn := range prog.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func cloneFunction(fn *ir.Function) *ir.Function {
	cp := *fn
	cp.Instructions = make([]*ir.Instruction, len(fn.Instructions))
	for i, instr := range fn.Instructions {
		icp := *instr
		icp.Result = instr.Result.Clone()
		icp.Arg1 = instr.Arg1.Clone()
		icp.Arg2 = instr.Arg2.Clone()
		cp.Instructions[i] = &icp
	}
	return &cp
}

func opcodeSequence(fn *ir.Function) []ir.Opcode {
	out := make([]ir.Opcode, len(fn.Instructions))
	for i, instr := range fn.Instructions {
		out[i] = instr.Opcode
	}
	return out
}

// TestPeepholeIdempotent checks that running the
// peephole pass twice is the same as running it once.
func TestPeepholeIdempotent(t *testing.T) {
	sources := []string{
		"func add(a: int, b: int) -> int { return a + b; } func main() -> int { let x: int = add(1, 2); print(x); return 0; }",
		"func main() -> int { let i: int = 0; while (i < 3) { print(i); i = i + 1; } return 0; }",
		"func main() -> int { if (1 != 0) { print(1); } return 0; }",
	}
	for _, src := range sources {
		prog := lowerSource(t, src)
		fn := findFunction(prog, "main")

		OptimizeFunction(fn)
		once := opcodeSequence(fn)

		OptimizeFunction(fn)
		twice := opcodeSequence(fn)

		if !reflect.DeepEqual(once, twice) {
			t.Errorf("source %q: peephole not idempotent:\n  once:  %v\n  twice: %v", src, once, twice)
		}
	}
}

// TestPeepholeNeverDeletesObservableInstructions checks invariant 5:
// CALL, PRINT, RETURN, ARRAY_STORE, LABEL, and every branch survive
// the pass, counted by opcode before and after.
func TestPeepholeNeverDeletesObservableInstructions(t *testing.T) {
	protectedOps := map[ir.Opcode]bool{
		ir.OpCall: true, ir.OpPrint: true, ir.OpReturn: true, ir.OpArrayStore: true,
		ir.OpLabel: true, ir.OpJump: true, ir.OpJumpIf: true, ir.OpJumpIfFalse: true,
	}
	prog := lowerSource(t, `func fact(n: int) -> int { if (n <= 1) { return 1; } return n * fact(n-1); }
		func main() -> int {
			let a: int[3] = 0;
			a[1] = 42;
			print(fact(5));
			let i: int = 0;
			while (i < 3) { print(i); i = i + 1; }
			return 0;
		}`)
	for _, fn := range prog.Functions {
		before := make(map[ir.Opcode]int)
		for _, instr := range fn.Instructions {
			if protectedOps[instr.Opcode] {
				before[instr.Opcode]++
			}
		}

		OptimizeFunction(fn)

		after := make(map[ir.Opcode]int)
		for _, instr := range fn.Instructions {
			if protectedOps[instr.Opcode] {
				after[instr.Opcode]++
			}
		}
		for op, count := range before {
			if after[op] != count {
				t.Errorf("function %s: opcode %v count went from %d to %d after peephole", fn.Name, op, count, after[op])
			}
		}
	}
}

func TestInlineCallResultsIntoVarMove(t *testing.T) {
	fn := ir.NewFunction("f", types.Int)
	resultTemp := ir.Temp(fn.NewTemp(), types.Int)
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpCall, Result: resultTemp, Label: "helper"})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpMove, Result: ir.Var("x", types.Int), Arg1: resultTemp.Clone()})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpReturn, Arg1: ir.Var("x", types.Int)})

	OptimizeFunction(fn)

	if len(fn.Instructions) != 2 {
		t.Fatalf("expected the MOVE to be fused away, got %d instructions: %v", len(fn.Instructions), opcodeSequence(fn))
	}
	call := fn.Instructions[0]
	if call.Opcode != ir.OpCall || call.Result.Kind != ir.KindVar || call.Result.VarName != "x" {
		t.Errorf("expected CALL to assign directly into x, got %+v", call)
	}
}

func TestDeadCallResultEliminated(t *testing.T) {
	fn := ir.NewFunction("f", types.Void)
	resultTemp := ir.Temp(fn.NewTemp(), types.Int)
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpCall, Result: resultTemp, Label: "helper"})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpReturn})

	OptimizeFunction(fn)

	if fn.Instructions[0].Result != nil {
		t.Errorf("expected unused CALL result to be nulled out, got %+v", fn.Instructions[0].Result)
	}
	if fn.Instructions[0].Opcode != ir.OpCall {
		t.Errorf("CALL itself must survive for its side effect, got opcode %v", fn.Instructions[0].Opcode)
	}
}

func TestFuseCompareToZeroIntoBranch(t *testing.T) {
	fn := ir.NewFunction("f", types.Void)
	cond := ir.Temp(fn.NewTemp(), types.Bool)
	x := ir.Var("x", types.Int)
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpNe, Result: cond, Arg1: x, Arg2: ir.Const(0, types.Int)})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpJumpIfFalse, Arg1: cond.Clone(), Label: "L0"})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpLabel, Label: "L0"})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpReturn})

	OptimizeFunction(fn)

	if len(fn.Instructions) != 3 {
		t.Fatalf("expected the NE to be fused away, got %d instructions: %v", len(fn.Instructions), opcodeSequence(fn))
	}
	branch := fn.Instructions[0]
	if branch.Opcode != ir.OpJumpIfFalse || branch.Arg1.Kind != ir.KindVar || branch.Arg1.VarName != "x" {
		t.Errorf("expected JUMP_IF_FALSE to branch directly on x, got %+v", branch)
	}
}

// TestPeepholeRespectsBasicBlockBoundary ensures a LABEL between a
// CALL's result temp and its consuming MOVE blocks the rewrite.
func TestPeepholeRespectsBasicBlockBoundary(t *testing.T) {
	fn := ir.NewFunction("f", types.Void)
	resultTemp := ir.Temp(fn.NewTemp(), types.Int)
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpCall, Result: resultTemp, Label: "helper"})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpLabel, Label: "L0"})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpMove, Result: ir.Var("x", types.Int), Arg1: resultTemp.Clone()})
	fn.AddInstruction(&ir.Instruction{Opcode: ir.OpReturn})

	before := cloneFunction(fn)
	OptimizeFunction(fn)

	if len(fn.Instructions) != len(before.Instructions) {
		t.Fatalf("rewrite crossed a basic-block boundary: %d instructions after, want %d", len(fn.Instructions), len(before.Instructions))
	}
	if fn.Instructions[0].Result.Kind != ir.KindTemp {
		t.Errorf("CALL result was rewritten across a LABEL, got %+v", fn.Instructions[0].Result)
	}
}
