package analyzers

import (
	"slices"
	"strconv"
	"strings"

	"github.com/reusee/taibox/allowlists"
	"go.starlark.net/syntax"
)

// Unbounded disables the depth limit of Analyze.
const Unbounded = 0

// Analyze walks every node of root depth-first and returns the first rule
// violation as a *Violation. A nil error means the whole tree passed; there
// is no partial result.
//
// maxDepth <= 0 walks the full tree. With a positive bound, a tree deeper
// than the bound is rejected with TreeTooDeep instead of being left partly
// unchecked.
func Analyze(root syntax.Node, registry *allowlists.Registry, maxDepth int) error {
	var violation *Violation
	depth := 0
	syntax.Walk(root, func(node syntax.Node) bool {
		if node == nil {
			// end of children
			depth--
			return false
		}
		if violation != nil {
			return false
		}
		if maxDepth > 0 && depth >= maxDepth {
			start, _ := node.Span()
			violation = &Violation{
				Kind: TreeTooDeep,
				Pos:  start,
				Name: strconv.Itoa(maxDepth),
			}
			return false
		}
		if v := check(node, registry); v != nil {
			violation = v
			return false
		}
		depth++
		return true
	})
	if violation != nil {
		return violation
	}
	return nil
}

func check(node syntax.Node, registry *allowlists.Registry) *Violation {
	switch node := node.(type) {

	case *syntax.LoadStmt:
		module := node.ModuleName()
		if !registry.IsImportAllowed(module) {
			return &Violation{
				Kind: DisallowedImport,
				Pos:  node.Module.TokenPos,
				Name: module,
			}
		}
		for _, from := range node.From {
			if from.Name == "*" {
				return &Violation{
					Kind: DisallowedImport,
					Pos:  from.NamePos,
					Name: module + ".*",
				}
			}
		}

	case *syntax.CallExpr:
		callee, ok := node.Fn.(*syntax.Ident)
		if !ok {
			break
		}
		if callee.Name == allowlists.ImportBuiltin {
			if len(node.Args) == 0 {
				break
			}
			// non-literal arguments are checked again when the builtin runs
			lit, ok := node.Args[0].(*syntax.Literal)
			if !ok || lit.Token != syntax.STRING {
				break
			}
			module, _ := lit.Value.(string)
			if !registry.IsImportAllowed(module) {
				return &Violation{
					Kind: DisallowedImport,
					Pos:  lit.TokenPos,
					Name: module,
				}
			}
		} else if registry.IsFunctionInsecure(callee.Name) {
			return &Violation{
				Kind: DisallowedCall,
				Pos:  callee.NamePos,
				Name: callee.Name,
			}
		}

	case *syntax.DotExpr:
		if isPrivate(node.Name.Name) {
			return &Violation{
				Kind: DisallowedPrivateAccess,
				Pos:  node.NamePos,
				Name: node.Name.Name,
			}
		}
		if path := dottedPath(node); registry.IsAttributePathDisallowed(path) {
			return &Violation{
				Kind: DisallowedAttribute,
				Pos:  node.NamePos,
				Name: path,
			}
		}

	case *syntax.Ident:
		if isPrivate(node.Name) {
			return &Violation{
				Kind: DisallowedPrivateAccess,
				Pos:  node.NamePos,
				Name: node.Name,
			}
		}

	}
	return nil
}

// isPrivate matches _name and __dunder__ identifiers. The blank identifier
// alone is a throwaway binding and stays usable.
func isPrivate(name string) bool {
	return strings.HasPrefix(name, "_") && name != "_"
}

// dottedPath rebuilds a.b.c from nested DotExprs. A root that is not an
// identifier (a call, an index) contributes nothing, so f().os yields "os".
func dottedPath(expr *syntax.DotExpr) string {
	var names []string
	var e syntax.Expr = expr
loop:
	for {
		switch n := e.(type) {
		case *syntax.DotExpr:
			names = append(names, n.Name.Name)
			e = n.X
		case *syntax.Ident:
			names = append(names, n.Name)
			break loop
		case *syntax.ParenExpr:
			e = n.X
		default:
			break loop
		}
	}
	slices.Reverse(names)
	return strings.Join(names, ".")
}
