package configs

import (
	"slices"
	"testing"
)

func TestFirst(t *testing.T) {
	loader := NewLoader([]string{"test.cue", "test2.cue"}, testSchema)

	if str := First[string](loader, "str"); str != "bar" {
		t.Fatalf("got %v", str)
	}
	if str := First[string](loader, "missing"); str != "" {
		t.Fatalf("got %v", str)
	}
	if str := FirstOr(loader, "missing", "default"); str != "default" {
		t.Fatalf("got %v", str)
	}
	if str := FirstOr(loader, "str", "default"); str != "bar" {
		t.Fatalf("got %v", str)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("should panic")
			}
		}()
		First[int](loader, "str")
	}()
}

func TestAll(t *testing.T) {
	loader := NewLoader([]string{"test.cue", "test2.cue"}, testSchema)
	strs := All[string](loader, "str")
	if !slices.Equal(strs, []string{"bar", "foo"}) {
		t.Fatalf("got %v", strs)
	}
	if got := All[string](loader, "missing"); len(got) != 0 {
		t.Fatalf("got %v", got)
	}
}
