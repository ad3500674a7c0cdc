package modes

import (
	"testing"

	"github.com/reusee/dscope"
)

func TestModes(t *testing.T) {
	dscope.New(ForTest(t)).Call(func(
		got *testing.T,
		mode Mode,
	) {
		if got != t {
			t.Fatal("wrong T")
		}
		if mode != ModeTest || !mode.Local() {
			t.Fatalf("got %v", mode)
		}
	})

	dscope.New(ForProduction()).Call(func(
		got *testing.T,
		mode Mode,
	) {
		if got != nil {
			t.Fatal("T in production")
		}
		if mode != ModeProduction || mode.Local() {
			t.Fatalf("got %v", mode)
		}
	})
}

func TestModeString(t *testing.T) {
	for mode, want := range map[Mode]string{
		ModeProduction:  "production",
		ModeDevelopment: "development",
		ModeTest:        "test",
		0:               "unknown",
	} {
		if got := mode.String(); got != want {
			t.Errorf("%d: got %s", mode, got)
		}
	}
}
