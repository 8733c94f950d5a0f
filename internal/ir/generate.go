package ir

import (
	"tlcc/internal/ast"
	"tlcc/internal/irerr"
	"tlcc/internal/symbols"
	"tlcc/internal/types"
)

// signature is what the generator needs to know about a callee to
// type its Call result and forward-declare externs in codegen.
type signature struct {
	returnType types.DataType
	paramTypes []types.DataType
}

// Generate lowers a type-checked AST program into an IR program.
// The type_of/array_size_of collaborator for each function is built
// here, once per function, with symbols.BuildForFunction.
func Generate(program *ast.Program) (*Program, error) {
	sigs := make(map[string]signature, len(program.Functions)+len(program.Externs))
	for _, fn := range program.Functions {
		sigs[fn.Name] = signature{returnType: fn.ReturnType, paramTypes: paramTypesOf(fn.Params)}
	}
	externs := make([]ExternSignature, 0, len(program.Externs))
	for _, ext := range program.Externs {
		sigs[ext.Name] = signature{returnType: ext.ReturnType, paramTypes: ext.ParamTypes}
		externs = append(externs, ExternSignature{Name: ext.Name, ReturnType: ext.ReturnType, ParamTypes: ext.ParamTypes})
	}

	out := &Program{Externs: externs}
	for _, fn := range program.Functions {
		table := symbols.BuildForFunction(fn)
		irFn, err := generateFunction(fn, table, sigs)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, irFn)
	}
	return out, nil
}

func paramTypesOf(params []ast.Parameter) []types.DataType {
	out := make([]types.DataType, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func generateFunction(fn *ast.Function, table *symbols.Table, sigs map[string]signature) (*Function, error) {
	irFn := NewFunction(fn.Name, fn.ReturnType)
	for _, p := range fn.Params {
		if p.ArraySize >= 0 {
			irFn.AddParam(ArrayVar(p.Name, p.Type, p.ArraySize))
		} else {
			irFn.AddParam(Var(p.Name, p.Type))
		}
	}

	g := &generator{fn: irFn, table: table, sigs: sigs}
	if err := g.statement(fn.Body); err != nil {
		return nil, err
	}
	return irFn, nil
}

// generator carries the per-function state the lowering needs: the IR
// function being built, the type-table collaborator, and the whole
// program's call signatures. It implements ast.StmtVisitor and
// ast.ExprVisitor so statement/expression lowering dispatches through
// each node's Accept method, in a visitor-driven compiler style
// rather than a
// type switch over the AST. Visit methods can't return a Go error
// through the interface{} Accept signature, so a failure is recorded
// in err and checked by the statement/expression wrapper methods that
// drive Accept.
type generator struct {
	fn    *Function
	table *symbols.Table
	sigs  map[string]signature
	err   error
}

var (
	_ ast.StmtVisitor = (*generator)(nil)
	_ ast.ExprVisitor = (*generator)(nil)
)

// statement lowers one AST statement by dispatching through its
// Accept method.
func (g *generator) statement(s ast.Stmt) error {
	if s == nil {
		return nil
	}
	g.err = nil
	s.Accept(g)
	err := g.err
	g.err = nil
	return err
}

// expression lowers expr to an operand that holds its value, by
// dispatching through its Accept method ("each call
// returns an operand that holds the value").
func (g *generator) expression(expr ast.Expr) (*Operand, error) {
	if expr == nil {
		return nil, irerr.NewIRBuildError(irerr.Location{}, "nil expression")
	}
	g.err = nil
	result := expr.Accept(g)
	if g.err != nil {
		err := g.err
		g.err = nil
		return nil, err
	}
	op, _ := result.(*Operand)
	return op, nil
}

// fail records err as the outcome of the Visit method currently
// running, for statement/expression to surface once Accept returns.
func (g *generator) fail(err error) interface{} {
	g.err = err
	return nil
}

func locOf(p ast.Position) irerr.Location {
	return irerr.Location{Line: p.Line, Column: p.Column}
}
