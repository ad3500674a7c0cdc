package configs

import (
	"testing"

	"github.com/reusee/dscope"
	"go.starlark.net/starlark"
)

type testInt int

var _ Configurable = testInt(0)

func (t testInt) ConfigExpr() string {
	return "TestInt"
}

type testName string

func (t testName) ConfigExpr() string {
	return "TestName"
}

func TestFork(t *testing.T) {
	scope := dscope.New(
		dscope.Provide(testInt(1)),
		dscope.Provide(testName("a")),
	)

	scope, err := Fork(scope, starlark.StringDict{
		"TestInt": starlark.MakeInt(42),
		"other":   starlark.True,
	})
	if err != nil {
		t.Fatal(err)
	}
	if i := dscope.Get[testInt](scope); i != 42 {
		t.Fatalf("got %v", i)
	}
	if n := dscope.Get[testName](scope); n != "a" {
		t.Fatalf("got %v", n)
	}

	if _, err := Fork(scope, starlark.StringDict{
		"TestInt": starlark.String("x"),
	}); err == nil {
		t.Fatal("should fail")
	}
}
