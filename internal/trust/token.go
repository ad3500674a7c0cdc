// Package trust gates the unrestricted execution path. The token can only be
// minted inside this module.
package trust

type Token struct {
	valid bool
}

// Issue mints a token. Callers are deployment bootstrap code running
// operator-authored sources, never snippet handlers.
func Issue() Token {
	return Token{valid: true}
}

func (t Token) Valid() bool {
	return t.valid
}
