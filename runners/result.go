package runners

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/reusee/taibox/analyzers"
	"github.com/reusee/taibox/engines"
	"go.starlark.net/starlark"
)

// Result is the outcome of one run. At most one of Value and Err is set;
// Output holds what the tail printed.
type Result struct {
	Value  starlark.Value
	Output string
	Err    error
}

// Observation renders the result as the text handed back to the agent.
func (r Result) Observation() string {
	if r.Err != nil {
		return ErrorKind(r.Err) + ": " + r.Err.Error()
	}
	if r.Value != nil {
		if s, ok := starlark.AsString(r.Value); ok {
			return s
		}
		return r.Value.String()
	}
	return r.Output
}

// Outcome is the metrics label of the result.
func (r Result) Outcome() string {
	switch {
	case r.Err == nil:
		return "ok"
	case errors.As(r.Err, new(*PanicError)):
		return "panic"
	}
	if _, ok := analyzers.AsViolation(r.Err); ok {
		return "violation"
	}
	return "error"
}

// PanicError is a panic recovered while running a snippet.
type PanicError struct {
	Value any
	Stack []byte
}

func (p *PanicError) Error() string {
	return fmt.Sprintf("internal error: %v", p.Value)
}

// evalErrorKinds maps go.starlark.net runtime error messages to exception
// names. Patterns are anchored on the message shapes of the interpreter and
// its builtins ("name: " prefixed); anything unmatched is EvalError.
var evalErrorKinds = []struct {
	kind     string
	patterns []*regexp.Regexp
}{
	{"ZeroDivisionError", mustCompile(
		`^(?:[\w.]+: )*(?:floating-point|floored|integer) (?:division|modulo) by zero$`,
	)},
	{"KeyError", mustCompile(
		`^(?:[\w.]+: )*key .+ not in \w+$`,
		`^[\w.]+: missing key$`,
		`^popitem: empty dict$`,
		`^key not found: `,
	)},
	{"IndexError", mustCompile(
		`^(?:[\w.]+: )*index -?\d+ out of range: empty \w+$`,
		`^(?:[\w.]+: )*\w+ index -?\d+ out of range \[-?\d+:-?\d+\]$`,
		`^format: tuple index out of range$`,
	)},
	{"AttributeError", mustCompile(
		`^(?:getattr: )?\w+ has no \.\w+ field or method`,
	)},
	{"TypeError", mustCompile(
		`^unknown (?:binary|unary) op: `,
		`^(?:[\w.]+: )*unhashable(?: type)?: \w+$`,
		`^(?:[\w.]+: )*\w+ value is not iterable$`,
		`^invalid call of non-function \(\w+\)$`,
		`^len: value of type \w+ has no len$`,
		`^function \w+ (?:accepts |missing \d+ argument|got an unexpected keyword argument |got multiple values for parameter )`,
		`^[\w.]+: (?:got \d+ arguments, want |missing argument for |unexpected keyword argument |for parameter |got multiple values for keyword argument )`,
	)},
	{"ValueError", mustCompile(
		`^int: invalid literal with base \d+: `,
		`^invalid float literal: `,
		`^[\w.]+: argument is an empty sequence$`,
		`^[\w.]+: value not in list$`,
		`^range: step argument must not be zero$`,
		`^too (?:many|few) values to unpack \(got \d+, want \d+\)$`,
	)},
}

func mustCompile(patterns ...string) []*regexp.Regexp {
	ret := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		ret = append(ret, regexp.MustCompile(pattern))
	}
	return ret
}

// ErrorKind classifies a run error with the exception names the agent's
// prompts use.
func ErrorKind(err error) string {
	if v, ok := analyzers.AsViolation(err); ok {
		return v.Kind.String()
	}
	if errors.As(err, new(*engines.SyntaxError)) {
		return "SyntaxError"
	}
	if errors.As(err, new(*engines.NameError)) {
		return "NameError"
	}
	var evalErr *starlark.EvalError
	if errors.As(err, &evalErr) {
		return evalErrorKind(evalErr.Msg)
	}
	return "EvalError"
}

func evalErrorKind(msg string) string {
	for _, entry := range evalErrorKinds {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(msg) {
				return entry.kind
			}
		}
	}
	return "EvalError"
}
