package engines

import (
	"bytes"
	"errors"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/allowlists"
	"github.com/reusee/taibox/analyzers"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/internal/trust"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/modes"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New(
		allowlists.MustNew(allowlists.DefaultTables()),
		StdModules(),
		analyzers.Unbounded,
	)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestExecuteEvaluate(t *testing.T) {
	engine := newTestEngine(t)
	ctx := t.Context()
	ns := NewNamespace(nil)

	if err := engine.Execute(ctx, "x = 40", ns); err != nil {
		t.Fatal(err)
	}
	v, err := engine.Evaluate(ctx, "x + 2", ns)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "42" {
		t.Fatalf("got %v", v)
	}

	// rebinding across calls
	if err := engine.Execute(ctx, "x = x + 1", ns); err != nil {
		t.Fatal(err)
	}
	if ns.Locals["x"].String() != "41" {
		t.Fatalf("got %v", ns.Locals["x"])
	}
}

func TestNamespaceLayering(t *testing.T) {
	engine := newTestEngine(t)
	ctx := t.Context()
	ns := NewNamespace(starlark.StringDict{
		"limit": starlark.MakeInt(10),
		"len":   starlark.String("shadowed"),
	})

	v, err := engine.Evaluate(ctx, "len", ns)
	if err != nil {
		t.Fatal(err)
	}
	if v != starlark.String("shadowed") {
		t.Fatalf("got %v", v)
	}

	if err := engine.Execute(ctx, "limit = 3", ns); err != nil {
		t.Fatal(err)
	}
	if ns.Globals["limit"].String() != "10" {
		t.Fatalf("globals changed: %v", ns.Globals["limit"])
	}
	v, err = engine.Evaluate(ctx, "limit", ns)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "3" {
		t.Fatalf("got %v", v)
	}

	// builtins never leak into the caller's maps
	for _, name := range []string{"print", "range", "import_module"} {
		if _, ok := ns.Locals[name]; ok {
			t.Fatalf("%s in locals", name)
		}
	}
}

func TestBoundNames(t *testing.T) {
	engine := newTestEngine(t)
	ctx := t.Context()
	ns := NewNamespace(nil)
	err := engine.Execute(ctx, `
a, (b, c) = 1, (2, 3)
[d] = [4]
def f():
    inner = 5
    return inner
for i in range(2):
    if i:
        last = i
load("math", "sqrt")
`, ns)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a", "b", "c", "d", "f", "i", "last", "sqrt"} {
		if _, ok := ns.Locals[name]; !ok {
			t.Errorf("%s not bound", name)
		}
	}
	if _, ok := ns.Locals["inner"]; ok {
		t.Fatal("function local leaked")
	}
}

func TestBindingsKeptOnFailure(t *testing.T) {
	engine := newTestEngine(t)
	ns := NewNamespace(nil)
	err := engine.Execute(t.Context(), "y = 1\nz = 1 // 0", ns)
	var evalErr *starlark.EvalError
	if !errors.As(err, &evalErr) {
		t.Fatalf("got %v", err)
	}
	if ns.Locals["y"].String() != "1" {
		t.Fatalf("got %v", ns.Locals["y"])
	}
}

func TestRestrictedBuiltins(t *testing.T) {
	engine := newTestEngine(t)
	ctx := t.Context()
	ns := NewNamespace(nil)

	// in starlark.Universe but not allowed
	for _, src := range []string{
		`fail("x")`,
		`g = getattr`,
		`h = hasattr`,
		`undefined_name + 1`,
	} {
		err := engine.Execute(ctx, src, ns)
		var nameErr *NameError
		if !errors.As(err, &nameErr) {
			t.Errorf("%q: got %v", src, err)
		}
	}

	_, err := engine.Evaluate(ctx, `fail`, ns)
	var nameErr *NameError
	if !errors.As(err, &nameErr) {
		t.Fatalf("got %v", err)
	}
}

func TestAnalyzedBeforeRun(t *testing.T) {
	engine := newTestEngine(t)
	ns := NewNamespace(nil)
	err := engine.Execute(t.Context(), "sentinel = 1\nopen('x')", ns)
	v, ok := analyzers.AsViolation(err)
	if !ok || v.Kind != analyzers.DisallowedCall {
		t.Fatalf("got %v", err)
	}
	if _, ok := ns.Locals["sentinel"]; ok {
		t.Fatal("rejected snippet ran")
	}
}

func TestSyntaxError(t *testing.T) {
	engine := newTestEngine(t)
	ns := NewNamespace(nil)
	var syntaxErr *SyntaxError
	if err := engine.Execute(t.Context(), "x = (", ns); !errors.As(err, &syntaxErr) {
		t.Fatalf("got %v", err)
	}
	if _, err := engine.Evaluate(t.Context(), "x = 1", ns); !errors.As(err, &syntaxErr) {
		t.Fatalf("got %v", err)
	}
	if err := engine.Execute(t.Context(), "break", ns); !errors.As(err, &syntaxErr) {
		t.Fatalf("got %v", err)
	}
}

func TestImports(t *testing.T) {
	engine := newTestEngine(t)
	ctx := t.Context()
	ns := NewNamespace(nil)

	if err := engine.Execute(ctx, `load("math", "sqrt", "math")
a = sqrt(16)
b = math.pi > 3
m = import_module("json")
c = m.encode({"k": 1})
s = import_module("struct").struct(n = 1)
`, ns); err != nil {
		t.Fatal(err)
	}
	if got := ns.Locals["a"].String(); got != "4.0" {
		t.Fatalf("got %v", got)
	}
	if got := ns.Locals["b"]; got != starlark.True {
		t.Fatalf("got %v", got)
	}
	if got := ns.Locals["c"]; got != starlark.String(`{"k":1}`) {
		t.Fatalf("got %v", got)
	}

	// computed module names are checked when the builtin runs
	err := engine.Execute(ctx, `name = "o" + "s"
import_module(name)`, ns)
	v, ok := analyzers.AsViolation(err)
	if !ok || v.Kind != analyzers.DisallowedImport || v.Name != "os" {
		t.Fatalf("got %v", err)
	}

	// allowed but not provided
	err = engine.Execute(ctx, `import_module("warehouse")`, ns)
	if err == nil {
		t.Fatal("should fail")
	}
}

func TestExtraModules(t *testing.T) {
	modules := StdModules().With(&starlarkstruct.Module{
		Name: "warehouse",
		Members: starlark.StringDict{
			"answer": starlark.MakeInt(42),
		},
	})
	engine, err := New(allowlists.MustNew(allowlists.DefaultTables()), modules, analyzers.Unbounded)
	if err != nil {
		t.Fatal(err)
	}
	ns := NewNamespace(nil)
	if err := engine.Execute(t.Context(), `load("warehouse", "answer")`, ns); err != nil {
		t.Fatal(err)
	}
	if ns.Locals["answer"].String() != "42" {
		t.Fatalf("got %v", ns.Locals["answer"])
	}
}

func TestPrintOutput(t *testing.T) {
	engine := newTestEngine(t)
	buf := new(bytes.Buffer)
	ctx := WithOutput(t.Context(), buf)
	ns := NewNamespace(nil)
	if err := engine.Execute(ctx, `print("hello", 42)`, ns); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello 42\n" {
		t.Fatalf("got %q", buf.String())
	}
	// no writer, discarded
	if err := engine.Execute(t.Context(), `print("x")`, ns); err != nil {
		t.Fatal(err)
	}
}

func TestExecuteTrusted(t *testing.T) {
	engine := newTestEngine(t)
	ns := NewNamespace(nil)
	src := `helper = getattr(struct_value, "n")`
	ns.Globals["struct_value"] = starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
		"n": starlark.MakeInt(7),
	})

	if err := engine.ExecuteTrusted(t.Context(), trust.Token{}, src, ns); !errors.Is(err, ErrUntrusted) {
		t.Fatalf("got %v", err)
	}
	if err := engine.ExecuteTrusted(t.Context(), trust.Issue(), src, ns); err != nil {
		t.Fatal(err)
	}
	if ns.Locals["helper"].String() != "7" {
		t.Fatalf("got %v", ns.Locals["helper"])
	}
}

func TestMissingBuiltin(t *testing.T) {
	tables := allowlists.DefaultTables()
	tables.Builtins = append(tables.Builtins, "no_such_builtin")
	if _, err := New(allowlists.MustNew(tables), StdModules(), 0); err == nil {
		t.Fatal("should fail")
	}
}

func TestMaxDepthRejects(t *testing.T) {
	engine, err := New(allowlists.MustNew(allowlists.DefaultTables()), StdModules(), 3)
	if err != nil {
		t.Fatal(err)
	}
	_, err = engine.Evaluate(t.Context(), "((1 + 2) + 3) + 4", NewNamespace(nil))
	v, ok := analyzers.AsViolation(err)
	if !ok || v.Kind != analyzers.TreeTooDeep {
		t.Fatalf("got %v", err)
	}
}

func TestModule(t *testing.T) {
	dscope.New(
		new(Module),
		modes.ForTest(t),
		new(logs.Module),
		dscope.Provide(configs.NewLoader(nil, "")),
		dscope.Provide(ExtraModules(nil)),
	).Call(func(
		engine *Engine,
	) {
		v, err := engine.Evaluate(t.Context(), "abs(-3)", NewNamespace(nil))
		if err != nil {
			t.Fatal(err)
		}
		if v.String() != "3" {
			t.Fatalf("got %v", v)
		}
	})
}
