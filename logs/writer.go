package logs

import (
	"io"
	"os"
	"testing"
)

type Writer io.Writer

// Writer is the test's output under modes.ForTest, stderr otherwise.
func (Module) Writer(
	t *testing.T,
) Writer {
	if t != nil {
		return t.Output()
	}
	return os.Stderr
}
