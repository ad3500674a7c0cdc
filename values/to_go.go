package values

import (
	"fmt"
	"math"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// ToGo converts a snippet result into plain Go values that encoding/json
// renders: nil, bool, int64 or string for big ints, float64, string,
// []any, map[string]any. Values without a data shape (functions, modules)
// become their starlark string form.
func ToGo(v starlark.Value) (any, error) {
	switch v := v.(type) {

	case nil, starlark.NoneType:
		return nil, nil

	case starlark.Bool:
		return bool(v), nil

	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		return v.String(), nil

	case starlark.Float:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return v.String(), nil
		}
		return f, nil

	case starlark.String:
		return string(v), nil

	case starlark.Bytes:
		return []byte(v), nil

	case *starlark.List:
		ret := make([]any, 0, v.Len())
		for i := range v.Len() {
			elem, err := ToGo(v.Index(i))
			if err != nil {
				return nil, err
			}
			ret = append(ret, elem)
		}
		return ret, nil

	case starlark.Tuple:
		ret := make([]any, 0, len(v))
		for _, e := range v {
			elem, err := ToGo(e)
			if err != nil {
				return nil, err
			}
			ret = append(ret, elem)
		}
		return ret, nil

	case *starlark.Set:
		ret := make([]any, 0, v.Len())
		iter := v.Iterate()
		defer iter.Done()
		var e starlark.Value
		for iter.Next(&e) {
			elem, err := ToGo(e)
			if err != nil {
				return nil, err
			}
			ret = append(ret, elem)
		}
		return ret, nil

	case *starlark.Dict:
		ret := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			key := keyString(item[0])
			elem, err := ToGo(item[1])
			if err != nil {
				return nil, err
			}
			ret[key] = elem
		}
		return ret, nil

	case *starlarkstruct.Struct:
		ret := make(map[string]any)
		for _, name := range v.AttrNames() {
			attr, err := v.Attr(name)
			if err != nil {
				return nil, err
			}
			elem, err := ToGo(attr)
			if err != nil {
				return nil, err
			}
			ret[name] = elem
		}
		return ret, nil

	}

	return v.String(), nil
}

func keyString(v starlark.Value) string {
	if s, ok := starlark.AsString(v); ok {
		return s
	}
	return fmt.Sprint(v)
}
