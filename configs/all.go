package configs

import "fmt"

// All decodes path from every document that defines it, most specific
// document first. Like First, a value that does not decode is a startup
// error and panics.
func All[T any](loader Loader, path string) []T {
	var ret []T
	for value, err := range loader.IterCueValues(path) {
		if err != nil {
			panic(err)
		}
		var v T
		if err := value.Decode(&v); err != nil {
			panic(fmt.Errorf("config %s: %w", path, err))
		}
		ret = append(ret, v)
	}
	return ret
}
