package runners

import (
	"errors"
	"fmt"
	"testing"

	"go.starlark.net/starlark"
)

// messages as go.starlark.net formats them
func TestErrorKindMessages(t *testing.T) {
	for _, c := range []struct {
		msg  string
		kind string
	}{
		{"floating-point division by zero", "ZeroDivisionError"},
		{"floored division by zero", "ZeroDivisionError"},
		{"integer modulo by zero", "ZeroDivisionError"},
		{"floating-point modulo by zero", "ZeroDivisionError"},

		{`key "b" not in dict`, "KeyError"},
		{"pop: missing key", "KeyError"},
		{"popitem: empty dict", "KeyError"},
		{"key not found: name", "KeyError"},

		{"list index 5 out of range [-2:1]", "IndexError"},
		{"index 0 out of range: empty list", "IndexError"},
		{"pop: index 3 out of range: empty list", "IndexError"},
		{"format: tuple index out of range", "IndexError"},

		{"string has no .foo field or method", "AttributeError"},
		{"getattr: int has no .bar field or method", "AttributeError"},
		{"struct has no .y field or method (did you mean .x?)", "AttributeError"},

		{"unknown binary op: int + string", "TypeError"},
		{"unknown unary op: - string", "TypeError"},
		{"unhashable type: list", "TypeError"},
		{"unhashable: range", "TypeError"},
		{"int value is not iterable", "TypeError"},
		{"len: int value is not iterable", "TypeError"},
		{"invalid call of non-function (int)", "TypeError"},
		{"len: value of type int has no len", "TypeError"},
		{"function f accepts no arguments (1 given)", "TypeError"},
		{"function f missing 1 argument (x)", "TypeError"},
		{"function f got an unexpected keyword argument y", "TypeError"},
		{"len: got 2 arguments, want 1", "TypeError"},
		{"sorted: missing argument for iterable", "TypeError"},
		{"sorted: unexpected keyword argument revers (did you mean reverse?)", "TypeError"},

		{"int: invalid literal with base 10: abc", "ValueError"},
		{"invalid float literal: x", "ValueError"},
		{"max: argument is an empty sequence", "ValueError"},
		{"index: value not in list", "ValueError"},
		{"range: step argument must not be zero", "ValueError"},
		{"too many values to unpack (got 3, want 2)", "ValueError"},
		{"too few values to unpack (got 1, want 2)", "ValueError"},

		// near misses stay generic
		{"got nothing", "EvalError"},
		{"invalid thing", "EvalError"},
		{"my_builtin: something went wrong", "EvalError"},
		{"too many steps", "EvalError"},
	} {
		err := fmt.Errorf("run: %w", &starlark.EvalError{Msg: c.msg})
		if got := ErrorKind(err); got != c.kind {
			t.Errorf("%q: got %s, want %s", c.msg, got, c.kind)
		}
	}
}

func TestErrorKindNonEval(t *testing.T) {
	if got := ErrorKind(errors.New("division by zero")); got != "EvalError" {
		t.Fatalf("got %s", got)
	}
}
