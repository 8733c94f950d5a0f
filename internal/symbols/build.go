package symbols

import "tlcc/internal/ast"

// BuildForFunction walks fn's parameters and declarations to produce
// the table ir.Generate needs. It does not descend into nested
// function bodies (the language has none) or validate redeclaration —
// that belongs to semantic analysis, out of scope here.
func BuildForFunction(fn *ast.Function) *Table {
	t := NewTable()
	for _, p := range fn.Params {
		if p.ArraySize >= 0 {
			t.DeclareArray(p.Name, p.Type, p.ArraySize)
		} else {
			t.Declare(p.Name, p.Type)
		}
	}
	collectBlock(t, fn.Body)
	return t
}

func collectBlock(t *Table, b *ast.Block) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		collectStmt(t, s)
	}
}

func collectStmt(t *Table, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VarDecl:
		t.Declare(st.Name, st.Type)
	case *ast.ArrayDecl:
		t.DeclareArray(st.Name, st.ElementType, st.Size)
	case *ast.If:
		collectStmt(t, st.Then)
		if st.ElseBranch != nil {
			collectStmt(t, st.ElseBranch)
		}
	case *ast.While:
		collectStmt(t, st.Body)
	case *ast.Block:
		collectBlock(t, st)
	}
}
