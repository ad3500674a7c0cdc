package cmds

import "time"

// Flags are commands of the global executor whose only effect is storing a
// value. Read them after the command line is executed.

// Var stores the argument following name. name+"." resets it to zero.
func Var[T any](name string, desc string) *T {
	value := new(T)
	Define(name, Func(func(v T) {
		*value = v
	}).Args(argName[T]()).Desc(desc))
	Define(name+".", Func(func() {
		var zero T
		*value = zero
	}).Desc("reset "+name))
	return value
}

// Switch is set by name and cleared by !name.
func Switch(name string, desc string) *bool {
	value := new(bool)
	Define(name, Func(func() {
		*value = true
	}).Desc(desc))
	Define("!"+name, Func(func() {
		*value = false
	}).Desc("unset "+name))
	return value
}

// Collect appends the argument following each occurrence of name.
func Collect[T any](name string, desc string) *[]T {
	values := new([]T)
	Define(name, Func(func(v T) {
		*values = append(*values, v)
	}).Args(argName[T]()).Desc(desc))
	return values
}

func argName[T any]() string {
	switch any(*new(T)).(type) {
	case string:
		return "STRING"
	case bool:
		return "BOOL"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "N"
	case float32, float64:
		return "FLOAT"
	case time.Duration:
		return "DURATION"
	}
	return "VALUE"
}
