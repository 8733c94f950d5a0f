package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"tlcc/internal/ir"
	"tlcc/internal/irerr"
	"tlcc/internal/types"
)

// emitInstruction dispatches one IR instruction to its C rendering,
// per the IR-to-C opcode table.
func (g *Generator) emitInstruction(instr *ir.Instruction) error {
	switch instr.Opcode {
	case ir.OpNop:
		return nil

	case ir.OpLabel:
		g.printf("%s:;\n", instr.Label)
		return nil

	case ir.OpJump:
		g.printf("    goto %s;\n", instr.Label)
		return nil

	case ir.OpJumpIf:
		cond, err := g.operandExpr(instr.Arg1)
		if err != nil {
			return err
		}
		g.printf("    if (%s) goto %s;\n", cond, instr.Label)
		return nil

	case ir.OpJumpIfFalse:
		cond, err := g.operandExpr(instr.Arg1)
		if err != nil {
			return err
		}
		g.printf("    if (!(%s)) goto %s;\n", cond, instr.Label)
		return nil

	case ir.OpReturn:
		if instr.Arg1 != nil {
			val, err := g.operandExpr(instr.Arg1)
			if err != nil {
				return err
			}
			g.printf("    __tl_retval = %s;\n", val)
		}
		g.printf("    goto %s;\n", g.epilogueLabel)
		return nil

	case ir.OpMove:
		return g.emitMove(instr)

	case ir.OpParam:
		g.pendingParams = append(g.pendingParams, instr.Arg1)
		return nil

	case ir.OpCall:
		return g.emitCall(instr)

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod:
		return g.emitArith(instr)

	case ir.OpNeg, ir.OpNot:
		return g.emitUnary(instr)

	case ir.OpAnd, ir.OpOr:
		return g.emitLogical(instr)

	case ir.OpEq, ir.OpNe, ir.OpLt, ir.OpLe, ir.OpGt, ir.OpGe:
		return g.emitCompare(instr)

	case ir.OpPrint:
		return g.emitPrint(instr)

	case ir.OpArrayDecl:
		return g.emitArrayDecl(instr)

	case ir.OpArrayInit:
		return g.emitArrayInit(instr)

	case ir.OpArrayLoad:
		return g.emitArrayLoad(instr)

	case ir.OpArrayStore:
		return g.emitArrayStore(instr)

	case ir.OpBoundsCheck:
		return g.emitBoundsCheck(instr)

	case ir.OpVarDecl:
		return g.emitVarDecl(instr)

	case ir.OpInlineAsm:
		g.printf("    __asm__(%s);\n", strconv.Quote(instr.Label))
		return nil

	default:
		return irerr.NewCodegenError("no C rendering for opcode %v", instr.Opcode)
	}
}

// operandExpr renders op as a C expression.
func (g *Generator) operandExpr(op *ir.Operand) (string, error) {
	if op == nil {
		return "", irerr.NewCodegenError("missing operand")
	}
	switch op.Kind {
	case ir.KindTemp:
		return tempName(op.TempID), nil
	case ir.KindVar:
		return op.VarName, nil
	case ir.KindConst:
		if op.DataType == types.Bool {
			if op.ConstValue != 0 {
				return "true", nil
			}
			return "false", nil
		}
		return strconv.FormatInt(op.ConstValue, 10), nil
	case ir.KindFloatConst:
		return strconv.FormatFloat(op.FloatValue, 'g', -1, 64), nil
	case ir.KindStringConst:
		return strconv.Quote(op.StringValue), nil
	case ir.KindNull:
		return "NULL", nil
	default:
		return "", irerr.NewCodegenError("operand kind %v has no C expression form", op.Kind)
	}
}

func tempName(id int) string {
	return "t" + strconv.Itoa(id)
}

// emitAssignment writes rhs into result, declaring result's C storage
// the first time it is ever assigned (temps and vars are
// declared at their first definition, not hoisted to the top of the
// function).
func (g *Generator) emitAssignment(result *ir.Operand, rhs string) error {
	if result == nil {
		return irerr.NewCodegenError("instruction has no assignment target")
	}
	switch result.Kind {
	case ir.KindTemp:
		if g.declaredTemps[result.TempID] {
			g.printf("    %s = %s;\n", tempName(result.TempID), rhs)
			return nil
		}
		ctype, err := cType(result.DataType)
		if err != nil {
			return err
		}
		g.printf("    %s %s = %s;\n", ctype, tempName(result.TempID), rhs)
		g.declaredTemps[result.TempID] = true
		return nil

	case ir.KindVar:
		if g.declaredVars[result.VarName] {
			g.printf("    %s = %s;\n", result.VarName, rhs)
			return nil
		}
		ctype, err := cType(result.DataType)
		if err != nil {
			return err
		}
		g.printf("    %s %s = %s;\n", ctype, result.VarName, rhs)
		g.declaredVars[result.VarName] = true
		return nil

	default:
		return irerr.NewCodegenError("assignment target must be a temp or variable, got kind %v", result.Kind)
	}
}

func (g *Generator) emitMove(instr *ir.Instruction) error {
	rhs, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	return g.emitAssignment(instr.Result, rhs)
}

// emitCall flushes the PARAM buffer into the call's argument list,
// then emits the call, assigning its result if one was requested
// (the PARAM-then-CALL convention).
func (g *Generator) emitCall(instr *ir.Instruction) error {
	args := make([]string, len(g.pendingParams))
	for i, p := range g.pendingParams {
		expr, err := g.operandExpr(p)
		if err != nil {
			return err
		}
		args[i] = expr
	}
	g.pendingParams = nil

	callExpr := fmt.Sprintf("%s(%s)", instr.Label, strings.Join(args, ", "))
	if instr.Result == nil {
		g.printf("    %s;\n", callExpr)
		return nil
	}
	return g.emitAssignment(instr.Result, callExpr)
}

func arithOperator(op ir.Opcode) (string, error) {
	switch op {
	case ir.OpAdd:
		return "+", nil
	case ir.OpSub:
		return "-", nil
	case ir.OpMul:
		return "*", nil
	case ir.OpDiv:
		return "/", nil
	case ir.OpMod:
		return "%", nil
	default:
		return "", irerr.NewCodegenError("opcode %v is not arithmetic", op)
	}
}

// emitArith renders the binary arithmetic opcodes. String ADD lowers
// to tl_concat rather than C's `+`, which is not defined on char*.
func (g *Generator) emitArith(instr *ir.Instruction) error {
	left, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	right, err := g.operandExpr(instr.Arg2)
	if err != nil {
		return err
	}

	if instr.Opcode == ir.OpAdd && instr.Result != nil && instr.Result.DataType == types.String {
		return g.emitAssignment(instr.Result, fmt.Sprintf("tl_concat(%s, %s)", left, right))
	}

	op, err := arithOperator(instr.Opcode)
	if err != nil {
		return err
	}
	return g.emitAssignment(instr.Result, fmt.Sprintf("(%s %s %s)", left, op, right))
}

func compareOperator(op ir.Opcode) (string, error) {
	switch op {
	case ir.OpEq:
		return "==", nil
	case ir.OpNe:
		return "!=", nil
	case ir.OpLt:
		return "<", nil
	case ir.OpLe:
		return "<=", nil
	case ir.OpGt:
		return ">", nil
	case ir.OpGe:
		return ">=", nil
	default:
		return "", irerr.NewCodegenError("opcode %v is not a comparison", op)
	}
}

// emitCompare renders the six comparison opcodes. String operands
// compare via tl_strcmp rather than C's built-in relational operators,
// which on char* compare pointers, not contents.
func (g *Generator) emitCompare(instr *ir.Instruction) error {
	left, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	right, err := g.operandExpr(instr.Arg2)
	if err != nil {
		return err
	}
	op, err := compareOperator(instr.Opcode)
	if err != nil {
		return err
	}

	if instr.Arg1.DataType == types.String {
		return g.emitAssignment(instr.Result, fmt.Sprintf("(tl_strcmp(%s, %s) %s 0)", left, right, op))
	}
	return g.emitAssignment(instr.Result, fmt.Sprintf("(%s %s %s)", left, op, right))
}

func (g *Generator) emitUnary(instr *ir.Instruction) error {
	val, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	switch instr.Opcode {
	case ir.OpNeg:
		return g.emitAssignment(instr.Result, fmt.Sprintf("(-%s)", val))
	case ir.OpNot:
		return g.emitAssignment(instr.Result, fmt.Sprintf("(!%s)", val))
	default:
		return irerr.NewCodegenError("opcode %v is not unary", instr.Opcode)
	}
}

// emitLogical renders the non-short-circuiting AND/OR opcodes.
// Short-circuit && and || never reach codegen as these opcodes — the
// lowering pass expands them into explicit branches —
// so these exist to keep the opcode catalog total.
func (g *Generator) emitLogical(instr *ir.Instruction) error {
	left, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	right, err := g.operandExpr(instr.Arg2)
	if err != nil {
		return err
	}
	op := "&&"
	if instr.Opcode == ir.OpOr {
		op = "||"
	}
	return g.emitAssignment(instr.Result, fmt.Sprintf("(%s %s %s)", left, op, right))
}

// emitPrint renders a variadic PRINT as a single printf call: the
// format string is built by concatenating one conversion specifier per
// argument (space-separated) plus a trailing newline, and the argument
// list follows in the same left-to-right order the operands were
// evaluated in.
func (g *Generator) emitPrint(instr *ir.Instruction) error {
	if len(instr.Args) == 0 {
		return irerr.NewCodegenError("PRINT takes at least one operand, got 0")
	}
	var format string
	var values []string
	for i, arg := range instr.Args {
		if i > 0 {
			format += " "
		}
		spec, err := printfSpec(arg.DataType)
		if err != nil {
			return err
		}
		format += spec
		val, err := g.operandExpr(arg)
		if err != nil {
			return err
		}
		values = append(values, val)
	}
	g.printf("    printf(\"%s\\n\", %s);\n", format, strings.Join(values, ", "))
	return nil
}

func (g *Generator) emitArrayDecl(instr *ir.Instruction) error {
	result := instr.Result
	elemType, err := cType(result.DataType)
	if err != nil {
		return err
	}
	g.printf("    %s %s[%d] = {0};\n", elemType, result.VarName, result.ArraySize)
	g.declaredVars[result.VarName] = true
	return nil
}

// emitArrayInit declares the array and fills every slot with the
// initializer value — the only array-literal shape the lowering pass
// produces today.
func (g *Generator) emitArrayInit(instr *ir.Instruction) error {
	result := instr.Result
	elemType, err := cType(result.DataType)
	if err != nil {
		return err
	}
	val, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	g.printf("    %s %s[%d];\n", elemType, result.VarName, result.ArraySize)
	g.printf("    for (int64_t __tl_i = 0; __tl_i < %d; __tl_i++) { %s[__tl_i] = %s; }\n",
		result.ArraySize, result.VarName, val)
	g.declaredVars[result.VarName] = true
	return nil
}

func (g *Generator) emitArrayLoad(instr *ir.Instruction) error {
	arr, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	idx, err := g.operandExpr(instr.Arg2)
	if err != nil {
		return err
	}
	return g.emitAssignment(instr.Result, fmt.Sprintf("%s[%s]", arr, idx))
}

// emitArrayStore renders an ARRAY_STORE, whose stored value lives in
// Result rather than Arg1/Arg2 — the lowering pass's convention for
// this one instruction (the ArrayAssignment lowering case).
func (g *Generator) emitArrayStore(instr *ir.Instruction) error {
	arr, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	idx, err := g.operandExpr(instr.Arg2)
	if err != nil {
		return err
	}
	val, err := g.operandExpr(instr.Result)
	if err != nil {
		return err
	}
	g.printf("    %s[%s] = %s;\n", arr, idx, val)
	return nil
}

func (g *Generator) emitBoundsCheck(instr *ir.Instruction) error {
	idx, err := g.operandExpr(instr.Arg1)
	if err != nil {
		return err
	}
	size, err := g.operandExpr(instr.Arg2)
	if err != nil {
		return err
	}
	g.printf("    if (%s < 0 || %s >= %s) { fprintf(stderr, \"array index out of bounds\\n\"); exit(1); }\n",
		idx, idx, size)
	return nil
}

func (g *Generator) emitVarDecl(instr *ir.Instruction) error {
	result := instr.Result
	ctype, err := cType(result.DataType)
	if err != nil {
		return err
	}
	g.printf("    %s %s;\n", ctype, result.VarName)
	g.declaredVars[result.VarName] = true
	return nil
}
