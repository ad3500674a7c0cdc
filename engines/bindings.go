package engines

import "go.starlark.net/syntax"

// boundNames lists the names a chunk binds at module level: assignment
// targets, defs, loads and loop variables, including those nested in
// top-level if/for/while blocks. Function bodies are not entered.
func boundNames(stmts []syntax.Stmt) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	var stmt func(syntax.Stmt)
	var target func(syntax.Expr)
	target = func(expr syntax.Expr) {
		switch expr := expr.(type) {
		case *syntax.Ident:
			add(expr.Name)
		case *syntax.ParenExpr:
			target(expr.X)
		case *syntax.TupleExpr:
			for _, e := range expr.List {
				target(e)
			}
		case *syntax.ListExpr:
			for _, e := range expr.List {
				target(e)
			}
		}
	}
	stmt = func(s syntax.Stmt) {
		switch s := s.(type) {
		case *syntax.AssignStmt:
			target(s.LHS)
		case *syntax.DefStmt:
			add(s.Name.Name)
		case *syntax.LoadStmt:
			for _, to := range s.To {
				add(to.Name)
			}
		case *syntax.ForStmt:
			target(s.Vars)
			for _, b := range s.Body {
				stmt(b)
			}
		case *syntax.WhileStmt:
			for _, b := range s.Body {
				stmt(b)
			}
		case *syntax.IfStmt:
			for _, b := range s.True {
				stmt(b)
			}
			for _, b := range s.False {
				stmt(b)
			}
		}
	}
	for _, s := range stmts {
		stmt(s)
	}
	return names
}
