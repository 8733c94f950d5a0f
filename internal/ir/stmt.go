package ir

import (
	"tlcc/internal/ast"
	"tlcc/internal/irerr"
	"tlcc/internal/types"
)

// VisitExprStmt evaluates the expression and discards its result.
func (g *generator) VisitExprStmt(s *ast.ExprStmt) interface{} {
	if _, err := g.expression(s.Expression); err != nil {
		return g.fail(err)
	}
	return nil
}

// VisitVarDecl lowers a scalar declaration: VAR_DECL alone if there is
// no initializer, otherwise evaluate-then-MOVE.
func (g *generator) VisitVarDecl(s *ast.VarDecl) interface{} {
	if s.Initializer == nil {
		g.fn.AddInstruction(&Instruction{Opcode: OpVarDecl, Result: Var(s.Name, s.Type)})
		return nil
	}
	value, err := g.expression(s.Initializer)
	if err != nil {
		return g.fail(err)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpMove, Result: Var(s.Name, s.Type), Arg1: value})
	return nil
}

// VisitArrayDecl lowers an array declaration to ARRAY_DECL or, with an
// initializer, ARRAY_INIT.
func (g *generator) VisitArrayDecl(s *ast.ArrayDecl) interface{} {
	if s.Initializer == nil {
		g.fn.AddInstruction(&Instruction{Opcode: OpArrayDecl, Result: ArrayVar(s.Name, s.ElementType, s.Size)})
		return nil
	}
	value, err := g.expression(s.Initializer)
	if err != nil {
		return g.fail(err)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpArrayInit, Result: ArrayVar(s.Name, s.ElementType, s.Size), Arg1: value})
	return nil
}

// VisitAssignment evaluates the RHS and emits MOVE target <- rhs.
func (g *generator) VisitAssignment(s *ast.Assignment) interface{} {
	value, err := g.expression(s.Value)
	if err != nil {
		return g.fail(err)
	}
	dt, _ := g.table.TypeOf(s.Name)
	g.fn.AddInstruction(&Instruction{Opcode: OpMove, Result: Var(s.Name, dt), Arg1: value})
	return nil
}

// VisitArrayAssignment lowers index/value, bounds-checks, then stores.
func (g *generator) VisitArrayAssignment(s *ast.ArrayAssignment) interface{} {
	array, err := g.expression(s.Array)
	if err != nil {
		return g.fail(err)
	}
	index, err := g.expression(s.Index)
	if err != nil {
		return g.fail(err)
	}
	value, err := g.expression(s.Value)
	if err != nil {
		return g.fail(err)
	}

	size, err := g.resolvedArraySize(array, s.Position)
	if err != nil {
		return g.fail(err)
	}
	errorLabel := g.fn.NewLabel()
	g.fn.AddInstruction(&Instruction{
		Opcode: OpBoundsCheck,
		Arg1:   index,
		Arg2:   Const(int64(size), types.Int),
		Label:  errorLabel,
	})
	g.fn.AddInstruction(&Instruction{Opcode: OpArrayStore, Result: value, Arg1: array, Arg2: index})
	return nil
}

// resolvedArraySize resolves the real declared size of array, per the
// dynamic-array size resolution: an unknown size is a hard
// IRBuildError, never a silent fallback.
func (g *generator) resolvedArraySize(array *Operand, pos ast.Position) (int, error) {
	if array.ArraySize != types.DynamicSize {
		return array.ArraySize, nil
	}
	if array.Kind == KindVar {
		if size, ok := g.table.ArraySizeOf(array.VarName); ok && size != types.DynamicSize {
			return size, nil
		}
	}
	return 0, irerr.NewIRBuildError(locOf(pos), "array %q has no statically known size", array.VarName)
}

// VisitIf lowers a conditional, eliding the branch-around-jump when a
// branch always returns so control flow stays well-formed.
func (g *generator) VisitIf(s *ast.If) interface{} {
	thenLabel := g.fn.NewLabel()

	cond, err := g.expression(s.Condition)
	if err != nil {
		return g.fail(err)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpJumpIfFalse, Arg1: cond, Label: thenLabel})

	if err := g.statement(s.Then); err != nil {
		return g.fail(err)
	}
	thenReturns := ast.AlwaysReturns(s.Then)

	if s.ElseBranch != nil {
		elseLabel := g.fn.NewLabel()
		if !thenReturns {
			g.fn.AddInstruction(&Instruction{Opcode: OpJump, Label: elseLabel})
		}
		g.fn.AddInstruction(&Instruction{Opcode: OpLabel, Label: thenLabel})

		if err := g.statement(s.ElseBranch); err != nil {
			return g.fail(err)
		}
		// LABEL elseLabel is emitted unconditionally, per spec: it is
		// the jump target of the JUMP above whenever the then-branch
		// falls through, regardless of whether the else-branch itself
		// always returns.
		g.fn.AddInstruction(&Instruction{Opcode: OpLabel, Label: elseLabel})
		return nil
	}

	endLabel := g.fn.NewLabel()
	if !thenReturns {
		g.fn.AddInstruction(&Instruction{Opcode: OpJump, Label: endLabel})
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpLabel, Label: thenLabel})
	if !thenReturns {
		g.fn.AddInstruction(&Instruction{Opcode: OpLabel, Label: endLabel})
	}
	return nil
}

// VisitWhile lowers a pre-tested loop, pushing/popping the loop
// context around the body on every exit path.
func (g *generator) VisitWhile(s *ast.While) interface{} {
	loopLabel := g.fn.NewLabel()
	endLabel := g.fn.NewLabel()

	g.fn.AddInstruction(&Instruction{Opcode: OpLabel, Label: loopLabel})
	cond, err := g.expression(s.Condition)
	if err != nil {
		return g.fail(err)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpJumpIfFalse, Arg1: cond, Label: endLabel})

	g.fn.EnterLoop(loopLabel, endLabel)
	err = g.statement(s.Body)
	g.fn.ExitLoop()
	if err != nil {
		return g.fail(err)
	}

	g.fn.AddInstruction(&Instruction{Opcode: OpJump, Label: loopLabel})
	g.fn.AddInstruction(&Instruction{Opcode: OpLabel, Label: endLabel})
	return nil
}

// VisitBreak jumps to the innermost enclosing loop's end label.
func (g *generator) VisitBreak(s *ast.Break) interface{} {
	loop := g.fn.CurrentLoop()
	if loop == nil {
		return g.fail(irerr.NewIRBuildError(locOf(s.Position), "break outside a loop"))
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpJump, Label: loop.EndLabel})
	return nil
}

// VisitContinue jumps to the innermost enclosing loop's re-test label.
func (g *generator) VisitContinue(s *ast.Continue) interface{} {
	loop := g.fn.CurrentLoop()
	if loop == nil {
		return g.fail(irerr.NewIRBuildError(locOf(s.Position), "continue outside a loop"))
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpJump, Label: loop.StartLabel})
	return nil
}

// VisitReturn evaluates the return value, if any, and emits RETURN.
func (g *generator) VisitReturn(s *ast.Return) interface{} {
	if s.Value == nil {
		g.fn.AddInstruction(&Instruction{Opcode: OpReturn})
		return nil
	}
	value, err := g.expression(s.Value)
	if err != nil {
		return g.fail(err)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpReturn, Arg1: value})
	return nil
}

// VisitPrint evaluates each argument left-to-right and emits a single
// PRINT whose variable-length argument list holds the evaluated
// operands (spec's variadic-print note: one instruction, not one
// PARAM per value).
func (g *generator) VisitPrint(s *ast.Print) interface{} {
	values := make([]*Operand, 0, len(s.Values))
	for _, v := range s.Values {
		value, err := g.expression(v)
		if err != nil {
			return g.fail(err)
		}
		values = append(values, value)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpPrint, Args: values})
	return nil
}

// VisitBlock lowers each statement in order, stopping once a statement
// always returns.
func (g *generator) VisitBlock(s *ast.Block) interface{} {
	for _, inner := range s.Statements {
		if err := g.statement(inner); err != nil {
			return g.fail(err)
		}
		if ast.AlwaysReturns(inner) {
			break
		}
	}
	return nil
}

// VisitInclude is resolved upstream of IR generation and lowers to
// nothing.
func (g *generator) VisitInclude(s *ast.Include) interface{} {
	return nil
}
