// Package vars holds small value helpers shared by flag and config parsing.
package vars

import (
	"fmt"
	"strings"
)

// FirstNonZero picks the first set value, so a flag wins over a config key
// that wins over the environment.
func FirstNonZero[T comparable](values ...T) T {
	var zero T
	for _, value := range values {
		if value != zero {
			return value
		}
	}
	return zero
}

// ParseBool accepts the spellings operators type on command lines.
func ParseBool(str string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "true", "t", "yes", "y", "on", "1":
		return true, nil
	case "false", "f", "no", "n", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", str)
}
