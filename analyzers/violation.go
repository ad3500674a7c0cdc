package analyzers

import (
	"errors"
	"fmt"

	"go.starlark.net/syntax"
)

type Kind uint8

const (
	DisallowedImport Kind = iota + 1
	DisallowedCall
	DisallowedAttribute
	DisallowedPrivateAccess
	TreeTooDeep
)

func (k Kind) String() string {
	switch k {
	case DisallowedImport:
		return "DisallowedImport"
	case DisallowedCall:
		return "DisallowedCall"
	case DisallowedAttribute:
		return "DisallowedAttribute"
	case DisallowedPrivateAccess:
		return "DisallowedPrivateAccess"
	case TreeTooDeep:
		return "TreeTooDeep"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

var ErrViolation = errors.New("analysis violation")

// Violation rejects a whole snippet. Pos is the offending node, Name the
// import, callee, path or identifier that triggered the rule.
type Violation struct {
	Kind Kind
	Pos  syntax.Position
	Name string
}

var _ error = new(Violation)

func (v *Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Pos, v.Message())
}

func (v *Violation) Message() string {
	switch v.Kind {
	case DisallowedImport:
		return fmt.Sprintf("importing %q is not allowed", v.Name)
	case DisallowedCall:
		return fmt.Sprintf("function %q is not allowed", v.Name)
	case DisallowedAttribute:
		return fmt.Sprintf("accessing %q is not allowed", v.Name)
	case DisallowedPrivateAccess:
		return fmt.Sprintf("accessing private member %q is not allowed", v.Name)
	case TreeTooDeep:
		return fmt.Sprintf("syntax tree is deeper than %s", v.Name)
	}
	return v.Name
}

func (v *Violation) Is(target error) bool {
	return target == ErrViolation
}

// AsViolation unwraps err to a *Violation.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
