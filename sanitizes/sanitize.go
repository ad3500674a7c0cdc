package sanitizes

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// longest first, so "starlark" wins over "star"
var languageLabels = []string{
	"starlark",
	"python",
	"star",
	"py",
}

// Sanitize strips REPL and markdown residue from both ends of a snippet:
// whitespace, backticks, and a language label such as "python" left over
// from a fenced block. It is total and idempotent.
func Sanitize(query string) string {
	for {
		next := trimLead(query)
		next = strings.TrimRightFunc(next, isResidue)
		if next == query {
			return next
		}
		query = next
	}
}

func isResidue(r rune) bool {
	return r == '`' || unicode.IsSpace(r)
}

// trimLead drops leading residue and a label that is either glued to an
// opening fence ("```python x") or alone on the first line. A label followed
// by code on its own line is an identifier and stays.
func trimLead(s string) string {
	rest := strings.TrimLeftFunc(s, isResidue)
	lead := strings.TrimRight(s[:len(s)-len(rest)], " \t")
	fenced := strings.HasSuffix(lead, "`")
	for _, label := range languageLabels {
		if len(rest) < len(label) || !strings.EqualFold(rest[:len(label)], label) {
			continue
		}
		after := rest[len(label):]
		line := strings.TrimLeft(after, " \t\r")
		switch {
		case line == "", strings.HasPrefix(line, "\n"):
			return after
		case fenced && isLabelEnd(after):
			return after
		}
	}
	return rest
}

func isLabelEnd(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && isResidue(r)
}
