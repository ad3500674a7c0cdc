// Package sources maps syntax positions back to snippet text.
package sources

import "go.starlark.net/syntax"

// Offset returns the byte offset of pos in src, or -1 if src has no such
// position. Columns count runes from 1.
func Offset(src string, pos syntax.Position) int {
	line, col := int32(1), int32(1)
	for i, r := range src {
		if line == pos.Line && col == pos.Col {
			return i
		}
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	if line == pos.Line && col == pos.Col {
		return len(src)
	}
	return -1
}

// Text returns the source text a node spans.
func Text(src string, node syntax.Node) (string, bool) {
	start, end := Range(src, node)
	if start < 0 || end < start {
		return "", false
	}
	return src[start:end], true
}

// Range returns the byte range a node spans.
func Range(src string, node syntax.Node) (int, int) {
	from, to := node.Span()
	return Offset(src, from), Offset(src, to)
}

// Edit replaces the byte range [Start, End) with Text.
type Edit struct {
	Start int
	End   int
	Text  string
}

// Apply applies non-overlapping edits given in source order.
func Apply(src string, edits []Edit) string {
	if len(edits) == 0 {
		return src
	}
	buf := make([]byte, 0, len(src))
	last := 0
	for _, edit := range edits {
		if edit.Start < last || edit.End < edit.Start || edit.End > len(src) {
			continue
		}
		buf = append(buf, src[last:edit.Start]...)
		buf = append(buf, edit.Text...)
		last = edit.End
	}
	buf = append(buf, src[last:]...)
	return string(buf)
}
