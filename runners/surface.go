package runners

import (
	"io"
	"strings"
	"sync"
)

// Surface is the per-turn output area a host renders. Body prints land on it;
// it is cleared after every run.
type Surface interface {
	io.Writer
	Reset()
}

// TextSurface is a Surface that keeps text for the host to read before the
// run resets it.
type TextSurface struct {
	mu      sync.Mutex
	buf     strings.Builder
	OnReset func(text string)
}

var _ Surface = new(TextSurface)

func (t *TextSurface) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Write(p)
}

func (t *TextSurface) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

// Reset hands the accumulated text to OnReset and clears it.
func (t *TextSurface) Reset() {
	t.mu.Lock()
	text := t.buf.String()
	t.buf.Reset()
	onReset := t.OnReset
	t.mu.Unlock()
	if onReset != nil {
		onReset(text)
	}
}
