package configs

import (
	"fmt"
	"reflect"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/values"
	"go.starlark.net/starlark"
)

var configurableType = reflect.TypeFor[Configurable]()

// Fork overrides the Configurable values of scope with the script globals
// named by their ConfigExpr.
func Fork(scope dscope.Scope, globals starlark.StringDict) (dscope.Scope, error) {
	var defs []any
	for t := range scope.AllTypes() {
		if !t.Implements(configurableType) {
			continue
		}
		expr := reflect.Zero(t).Interface().(Configurable).ConfigExpr()
		value, ok := globals[expr]
		if !ok {
			continue
		}
		v, err := values.ToGo(value)
		if err != nil {
			return scope, fmt.Errorf("%s: %w", expr, err)
		}
		rv := reflect.ValueOf(v)
		// int to string converts to a rune, not a number
		if !rv.IsValid() || !rv.CanConvert(t) ||
			(t.Kind() == reflect.String) != (rv.Kind() == reflect.String) {
			return scope, fmt.Errorf("%s: cannot use %s as %v", expr, value.Type(), t)
		}
		defs = append(defs, rv.Convert(t).Interface())
	}
	if len(defs) == 0 {
		return scope, nil
	}
	return scope.Fork(defs...), nil
}
