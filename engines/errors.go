package engines

// SyntaxError is a snippet that does not parse, or parses but breaks a
// static rule of the language (break outside a loop, reassigned load).
type SyntaxError struct {
	Err error
}

func (s *SyntaxError) Error() string {
	return s.Err.Error()
}

func (s *SyntaxError) Unwrap() error {
	return s.Err
}

// NameError is a reference to a name that is neither bound by the snippet,
// the namespace, nor the allowed builtins.
type NameError struct {
	Err error
}

func (n *NameError) Error() string {
	return n.Err.Error()
}

func (n *NameError) Unwrap() error {
	return n.Err
}
