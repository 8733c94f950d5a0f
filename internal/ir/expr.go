package ir

import (
	"tlcc/internal/ast"
	"tlcc/internal/irerr"
	"tlcc/internal/types"
)

// VisitLiteral returns a Const carrying the literal's integer or
// 0/1-encoded boolean value.
func (g *generator) VisitLiteral(e *ast.Literal) interface{} {
	dt := types.Int
	if e.IsBool {
		dt = types.Bool
	}
	return Const(e.Value, dt)
}

// VisitFloatLiteral returns a FloatConst.
func (g *generator) VisitFloatLiteral(e *ast.FloatLiteral) interface{} {
	dt := types.Float
	if e.IsDouble {
		dt = types.Double
	}
	return FloatConst(e.Value, dt)
}

// VisitStringLiteral returns an owned StringConst.
func (g *generator) VisitStringLiteral(e *ast.StringLiteral) interface{} {
	return StringConst(e.Value)
}

// VisitNullLiteral returns the absent-value operand.
func (g *generator) VisitNullLiteral(e *ast.NullLiteral) interface{} {
	return NullOperand()
}

// VisitVariable returns an array-Var carrying its declared size when
// the name is a known array, otherwise a plain Var.
func (g *generator) VisitVariable(e *ast.Variable) interface{} {
	if size, ok := g.table.ArraySizeOf(e.Name); ok && size != types.DynamicSize {
		dt, _ := g.table.TypeOf(e.Name)
		return ArrayVar(e.Name, dt, size)
	}
	dt, ok := g.table.TypeOf(e.Name)
	if !ok {
		return g.fail(irerr.NewIRBuildError(locOf(e.Position), "undeclared variable %q", e.Name))
	}
	return Var(e.Name, dt)
}

var binaryOpcode = map[ast.BinaryOp]Opcode{
	ast.OpAdd: OpAdd, ast.OpSub: OpSub, ast.OpMul: OpMul, ast.OpDiv: OpDiv, ast.OpMod: OpMod,
	ast.OpEq: OpEq, ast.OpNe: OpNe, ast.OpLt: OpLt, ast.OpLe: OpLe, ast.OpGt: OpGt, ast.OpGe: OpGe,
}

// VisitBinary lowers a binary expression. The short-circuiting logical
// operators delegate to shortCircuit; the rest emit the corresponding
// binary opcode to a fresh temp.
func (g *generator) VisitBinary(e *ast.Binary) interface{} {
	if e.Operator == ast.OpAnd || e.Operator == ast.OpOr {
		return g.shortCircuit(e)
	}

	left, err := g.expression(e.Left)
	if err != nil {
		return g.fail(err)
	}
	right, err := g.expression(e.Right)
	if err != nil {
		return g.fail(err)
	}

	opcode, ok := binaryOpcode[e.Operator]
	if !ok {
		return g.fail(irerr.NewIRBuildError(locOf(e.Position), "unknown binary operator %v", e.Operator))
	}

	resultType := left.DataType
	if opcode.IsComparison() {
		resultType = types.Bool
	}
	result := Temp(g.fn.NewTemp(), resultType)
	g.fn.AddInstruction(&Instruction{Opcode: opcode, Result: result, Arg1: left, Arg2: right})
	return result
}

// shortCircuit lowers && and ||: a fresh result temp is
// pre-seeded with the "stop here" value, the left side is always
// evaluated, and the right side is only reached (and only then
// overwrites the result) when the left side didn't already decide it.
func (g *generator) shortCircuit(e *ast.Binary) interface{} {
	result := Temp(g.fn.NewTemp(), types.Bool)
	skip := g.fn.NewLabel()

	seedValue := int64(0)
	if e.Operator == ast.OpOr {
		seedValue = 1
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpMove, Result: result, Arg1: Const(seedValue, types.Bool)})

	left, err := g.expression(e.Left)
	if err != nil {
		return g.fail(err)
	}
	if e.Operator == ast.OpAnd {
		g.fn.AddInstruction(&Instruction{Opcode: OpJumpIfFalse, Arg1: left, Label: skip})
	} else {
		g.fn.AddInstruction(&Instruction{Opcode: OpJumpIf, Arg1: left, Label: skip})
	}

	right, err := g.expression(e.Right)
	if err != nil {
		return g.fail(err)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpMove, Result: result.Clone(), Arg1: right})
	g.fn.AddInstruction(&Instruction{Opcode: OpLabel, Label: skip})
	return result
}

// VisitUnary lowers NEG/NOT to a fresh temp.
func (g *generator) VisitUnary(e *ast.Unary) interface{} {
	operand, err := g.expression(e.Operand)
	if err != nil {
		return g.fail(err)
	}
	var opcode Opcode
	resultType := operand.DataType
	switch e.Operator {
	case ast.OpNeg:
		opcode = OpNeg
	case ast.OpNot:
		opcode = OpNot
		resultType = types.Bool
	default:
		return g.fail(irerr.NewIRBuildError(locOf(e.Position), "unknown unary operator %v", e.Operator))
	}
	result := Temp(g.fn.NewTemp(), resultType)
	g.fn.AddInstruction(&Instruction{Opcode: opcode, Result: result, Arg1: operand})
	return result
}

// VisitCall lowers each argument to a PARAM, then emits CALL, in
// left-to-right order. A Void callee's result operand is
// omitted.
func (g *generator) VisitCall(e *ast.Call) interface{} {
	sig, ok := g.sigs[e.Name]
	if !ok {
		return g.fail(irerr.NewIRBuildError(locOf(e.Position), "call to undeclared function %q", e.Name))
	}

	for _, argExpr := range e.Args {
		arg, err := g.expression(argExpr)
		if err != nil {
			return g.fail(err)
		}
		g.fn.AddInstruction(&Instruction{Opcode: OpParam, Arg1: arg})
	}

	var result *Operand
	if sig.returnType != types.Void {
		result = Temp(g.fn.NewTemp(), sig.returnType)
	}
	g.fn.AddInstruction(&Instruction{Opcode: OpCall, Result: result, Label: e.Name})
	return result
}

// VisitGroup delegates to the parenthesized sub-expression.
func (g *generator) VisitGroup(e *ast.Group) interface{} {
	result, err := g.expression(e.Inner)
	if err != nil {
		return g.fail(err)
	}
	return result
}

// VisitArrayIndex lowers array/index, bounds-checks, then loads.
func (g *generator) VisitArrayIndex(e *ast.ArrayIndex) interface{} {
	array, err := g.expression(e.Array)
	if err != nil {
		return g.fail(err)
	}
	index, err := g.expression(e.Index)
	if err != nil {
		return g.fail(err)
	}

	size, err := g.resolvedArraySize(array, e.Position)
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

	result := Temp(g.fn.NewTemp(), array.DataType)
	g.fn.AddInstruction(&Instruction{Opcode: OpArrayLoad, Result: result, Arg1: array, Arg2: index})
	return result
}

// VisitStringIndex lowers a character-at access to a call against the
// runtime helper.
func (g *generator) VisitStringIndex(e *ast.StringIndex) interface{} {
	str, err := g.expression(e.Str)
	if err != nil {
		return g.fail(err)
	}
	index, err := g.expression(e.Index)
	if err != nil {
		return g.fail(err)
	}

	for _, argExpr := range []*Operand{str, index} {
		g.fn.AddInstruction(&Instruction{Opcode: OpParam, Arg1: argExpr})
	}
	result := Temp(g.fn.NewTemp(), types.String)
	g.fn.AddInstruction(&Instruction{Opcode: OpCall, Result: result, Label: "tl_char_at"})
	return result
}
