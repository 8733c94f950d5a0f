// Package codegen lowers an IR program into a single C translation
// unit: header, forward declarations, function bodies,
// and a `main` entry, in that order.
package codegen

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/uuid"

	"tlcc/internal/ir"
	"tlcc/internal/irerr"
	"tlcc/internal/runtimec"
	"tlcc/internal/types"
)

// Generator emits one C translation unit from an IR program.
type Generator struct {
	program *ir.Program
	w       *bufio.Writer

	fn            *ir.Function
	declaredVars  map[string]bool
	declaredTemps map[int]bool
	pendingParams []*ir.Operand
	epilogueLabel string
}

// Generate writes program's C translation unit to w.
func Generate(program *ir.Program, w io.Writer) error {
	g := &Generator{program: program, w: bufio.NewWriter(w)}
	if err := g.run(); err != nil {
		return err
	}
	return g.w.Flush()
}

func (g *Generator) run() error {
	g.writeHeader()
	g.writeExternDecls()
	g.writeForwardDecls()

	var mainFn *ir.Function
	for _, fn := range g.program.Functions {
		if fn.Name == "main" {
			mainFn = fn
			continue
		}
		if err := g.generateFunction(fn); err != nil {
			return err
		}
	}

	if mainFn != nil {
		if err := g.generateMain(mainFn); err != nil {
			return err
		}
	} else {
		g.printf("int main(void) {\n    return 0;\n}\n")
	}
	return nil
}

func (g *Generator) printf(format string, args ...interface{}) {
	fmt.Fprintf(g.w, format, args...)
}

func (g *Generator) writeHeader() {
	g.w.WriteString(runtimec.Header)
	g.printf("\n// tlcc build %s\n", uuid.NewString())
	g.w.WriteString(runtimec.HelperDecls)
	g.w.WriteString(runtimec.HelperBodies)
}

func (g *Generator) writeExternDecls() {
	if len(g.program.Externs) == 0 {
		return
	}
	g.printf("\n/* FFI forward declarations */\n")
	for _, ext := range g.program.Externs {
		ret, err := cType(ext.ReturnType)
		if err != nil {
			ret = "void"
		}
		params := make([]string, len(ext.ParamTypes))
		for i, pt := range ext.ParamTypes {
			ptStr, err := cType(pt)
			if err != nil {
				ptStr = "void*"
			}
			params[i] = ptStr
		}
		g.printf("extern %s %s(%s);\n", ret, ext.Name, joinParams(params))
	}
}

// writeForwardDecls predeclares every non-main source function so
// call sites type-check regardless of definition order.
func (g *Generator) writeForwardDecls() {
	g.printf("\n/* forward declarations */\n")
	for _, fn := range g.program.Functions {
		if fn.Name == "main" {
			continue
		}
		proto, err := g.functionPrototype(fn)
		if err != nil {
			proto = fmt.Sprintf("/* %v */", err)
		}
		g.printf("%s;\n", proto)
	}
}

func (g *Generator) functionPrototype(fn *ir.Function) (string, error) {
	ret, err := cType(fn.ReturnType)
	if err != nil {
		return "", err
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		decl, err := g.paramDecl(p)
		if err != nil {
			return "", err
		}
		params[i] = decl
	}
	return fmt.Sprintf("%s %s(%s)", ret, fn.Name, joinParams(params)), nil
}

func (g *Generator) paramDecl(p *ir.Operand) (string, error) {
	base, err := cType(p.DataType)
	if err != nil {
		return "", err
	}
	if p.ArraySize != types.DynamicSize {
		return fmt.Sprintf("%s* %s", base, p.VarName), nil
	}
	return fmt.Sprintf("%s %s", base, p.VarName), nil
}

func joinParams(params []string) string {
	if len(params) == 0 {
		return "void"
	}
	out := params[0]
	for _, p := range params[1:] {
		out += ", " + p
	}
	return out
}

func (g *Generator) generateFunction(fn *ir.Function) error {
	g.beginFunction(fn)
	proto, err := g.functionPrototype(fn)
	if err != nil {
		return err
	}
	g.printf("\n%s {\n", proto)
	if err := g.emitBody(fn); err != nil {
		return err
	}
	g.printf("}\n")
	return nil
}

// generateMain emits the source program's `main` as the C entry
// point.
func (g *Generator) generateMain(fn *ir.Function) error {
	g.beginFunction(fn)
	g.printf("\nint main(void) {\n")
	if err := g.emitBody(fn); err != nil {
		return err
	}
	g.printf("}\n")
	return nil
}

func (g *Generator) beginFunction(fn *ir.Function) {
	g.fn = fn
	g.declaredVars = make(map[string]bool, len(fn.Params))
	g.declaredTemps = make(map[int]bool)
	g.pendingParams = nil
	g.epilogueLabel = "__tl_epilogue_" + fn.Name
	for _, p := range fn.Params {
		g.declaredVars[p.VarName] = true
	}
}

func (g *Generator) emitBody(fn *ir.Function) error {
	hasReturnValue := fn.ReturnType != types.Void
	if hasReturnValue {
		retType, err := cType(fn.ReturnType)
		if err != nil {
			return err
		}
		g.printf("    %s __tl_retval;\n", retType)
	}

	for _, instr := range fn.Instructions {
		if err := g.emitInstruction(instr); err != nil {
			return irerr.NewCodegenError("function %s: %v", fn.Name, err)
		}
	}

	g.printf("%s:;\n", g.epilogueLabel)
	if hasReturnValue {
		g.printf("    return __tl_retval;\n")
	} else {
		g.printf("    return;\n")
	}
	return nil
}
