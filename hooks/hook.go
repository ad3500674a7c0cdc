// Package hooks rewrites sanitized snippets before they are parsed for
// execution. Every rewrite produces source that is analyzed like the rest.
package hooks

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/reusee/taibox/engines"
	"github.com/reusee/taibox/sources"
	"go.starlark.net/syntax"
)

type Hook func(string) string

// Identity leaves snippets unchanged.
func Identity(src string) string {
	return src
}

func Chain(hooks ...Hook) Hook {
	hooks = slices.DeleteFunc(hooks, func(h Hook) bool {
		return h == nil
	})
	if len(hooks) == 0 {
		return Identity
	}
	return func(src string) string {
		for _, hook := range hooks {
			src = hook(src)
		}
		return src
	}
}

// PrependLoads puts standard load statements in front of every snippet.
func PrependLoads(loads map[string][]string) Hook {
	if len(loads) == 0 {
		return nil
	}
	modules := make([]string, 0, len(loads))
	for module := range loads {
		modules = append(modules, module)
	}
	slices.Sort(modules)
	var b strings.Builder
	for _, module := range modules {
		symbols := loads[module]
		if len(symbols) == 0 {
			continue
		}
		fmt.Fprintf(&b, "load(%q", module)
		for _, symbol := range symbols {
			fmt.Fprintf(&b, ", %q", symbol)
		}
		b.WriteString(")\n")
	}
	prefix := b.String()
	return func(src string) string {
		return prefix + src
	}
}

// RebindClient keeps alias pointing at the session's bound client. A
// top-level assignment to alias becomes alias = bound, one to bound is
// dropped, and any other binding of either name (tuple targets, loop
// variables, defs, loads) is redirected to the blank name _.
func RebindClient(alias, bound string) Hook {
	return func(src string) string {
		file, err := parse(src)
		if err != nil {
			return src
		}
		r := &rebinder{
			src:   src,
			alias: alias,
			bound: bound,
		}
		r.stmts(file.Stmts)
		slices.SortFunc(r.edits, func(a, b sources.Edit) int {
			return cmp.Compare(a.Start, b.Start)
		})
		return sources.Apply(src, r.edits)
	}
}

type rebinder struct {
	src   string
	alias string
	bound string
	edits []sources.Edit
}

func (r *rebinder) protected(name string) bool {
	return name == r.alias || name == r.bound
}

// stmts visits module-level statements, including those in top-level
// if/for/while blocks. Function bodies bind locals only.
func (r *rebinder) stmts(stmts []syntax.Stmt) {
	for _, stmt := range stmts {
		switch stmt := stmt.(type) {
		case *syntax.AssignStmt:
			if ident, ok := stmt.LHS.(*syntax.Ident); ok && r.protected(ident.Name) {
				text := "pass"
				if ident.Name == r.alias {
					text = r.alias + " = " + r.bound
				}
				r.replace(stmt, text)
				continue
			}
			if stmt.Op == syntax.EQ {
				r.target(stmt.LHS)
			}
		case *syntax.ForStmt:
			r.target(stmt.Vars)
			r.stmts(stmt.Body)
		case *syntax.WhileStmt:
			r.stmts(stmt.Body)
		case *syntax.IfStmt:
			r.stmts(stmt.True)
			r.stmts(stmt.False)
		case *syntax.DefStmt:
			r.blank(stmt.Name)
		case *syntax.LoadStmt:
			for i, to := range stmt.To {
				if to.NamePos == stmt.From[i].NamePos {
					// load("m", "client") binds the name of the string literal
					r.bindBlank(to)
				} else {
					r.blank(to)
				}
			}
		}
	}
}

func (r *rebinder) target(expr syntax.Expr) {
	switch expr := expr.(type) {
	case *syntax.Ident:
		r.blank(expr)
	case *syntax.ParenExpr:
		r.target(expr.X)
	case *syntax.TupleExpr:
		for _, e := range expr.List {
			r.target(e)
		}
	case *syntax.ListExpr:
		for _, e := range expr.List {
			r.target(e)
		}
	}
}

func (r *rebinder) replace(node syntax.Node, text string) {
	start, end := sources.Range(r.src, node)
	if start < 0 || end < start {
		return
	}
	r.edits = append(r.edits, sources.Edit{
		Start: start,
		End:   end,
		Text:  text,
	})
}

// blank renames a binding occurrence of a protected name to _.
func (r *rebinder) blank(ident *syntax.Ident) {
	if !r.protected(ident.Name) {
		return
	}
	offset := sources.Offset(r.src, ident.NamePos)
	if offset < 0 || !strings.HasPrefix(r.src[offset:], ident.Name) {
		return
	}
	r.edits = append(r.edits, sources.Edit{
		Start: offset,
		End:   offset + len(ident.Name),
		Text:  "_",
	})
}

// bindBlank turns a positional load symbol into _="symbol".
func (r *rebinder) bindBlank(ident *syntax.Ident) {
	if !r.protected(ident.Name) {
		return
	}
	offset := sources.Offset(r.src, ident.NamePos)
	if offset < 0 {
		return
	}
	// back to the start of the literal, prefix and quote included
	for offset > 0 && !strings.ContainsRune(", \t\n(", rune(r.src[offset-1])) {
		offset--
	}
	r.edits = append(r.edits, sources.Edit{
		Start: offset,
		End:   offset,
		Text:  "_=",
	})
}

// RenameCall rewrites calls of the function named from to call to.
func RenameCall(from, to string) Hook {
	return func(src string) string {
		file, err := parse(src)
		if err != nil {
			return src
		}
		var edits []sources.Edit
		syntax.Walk(file, func(node syntax.Node) bool {
			call, ok := node.(*syntax.CallExpr)
			if !ok {
				return true
			}
			ident, ok := call.Fn.(*syntax.Ident)
			if !ok || ident.Name != from {
				return true
			}
			start, end := sources.Range(src, ident)
			if start >= 0 && end >= start {
				edits = append(edits, sources.Edit{
					Start: start,
					End:   end,
					Text:  to,
				})
			}
			return true
		})
		slices.SortFunc(edits, func(a, b sources.Edit) int {
			return a.Start - b.Start
		})
		return sources.Apply(src, edits)
	}
}

// unparsable snippets pass through; the runner reports the syntax error
func parse(src string) (*syntax.File, error) {
	return engines.FileOptions.Parse(engines.SourceName, src, 0)
}
