package configs

import (
	"errors"
	"fmt"
)

// First decodes path from the most specific document defining it. Absent
// paths yield the zero value; malformed ones panic, since config is read
// while the scope is built.
func First[T any](loader Loader, path string) T {
	var value T
	if err := loader.AssignFirst(path, &value); err != nil {
		if errors.Is(err, ErrValueNotFound) {
			return value
		}
		panic(fmt.Errorf("config %s: %w", path, err))
	}
	return value
}

// FirstOr is First with a default for absent or zero values.
func FirstOr[T comparable](loader Loader, path string, def T) T {
	var zero T
	if v := First[T](loader, path); v != zero {
		return v
	}
	return def
}
