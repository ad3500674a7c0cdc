package boxconfigs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/engines"
)

func TestFind(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	for _, path := range []string{
		filepath.Join(a, "taibox.cue"),
		filepath.Join(b, ".taibox.cue"),
		filepath.Join(b, "taibox.cue"),
	} {
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	paths := Find([]string{a, b, filepath.Join(a, "missing")}, "taibox.cue", ".taibox.cue")
	if len(paths) != 3 {
		t.Fatalf("got %v", paths)
	}
	if paths[0] != filepath.Join(a, "taibox.cue") || paths[1] != filepath.Join(b, "taibox.cue") {
		t.Fatalf("got %v", paths)
	}
}

func TestSchema(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.cue")
	if err := os.WriteFile(good, []byte(`
max_depth: 64
sanitize: false
warehouse_dsn: "postgres://localhost/wh"
session_idle: "10m"
preludes: ["x = 1"]
allowlists: imports: ["math"]
hooks: client: {
	alias: "client"
	bound: "session_client"
}
`), 0o644); err != nil {
		t.Fatal(err)
	}
	loader := configs.NewLoader([]string{good}, Schema)
	if n := configs.First[int](loader, "max_depth"); n != 64 {
		t.Fatalf("got %v", n)
	}
	if imports := configs.First[[]string](loader, "allowlists.imports"); len(imports) != 1 {
		t.Fatalf("got %v", imports)
	}

	bad := filepath.Join(dir, "bad.cue")
	if err := os.WriteFile(bad, []byte(`no_such_key: 1`), 0o644); err != nil {
		t.Fatal(err)
	}
	loader = configs.NewLoader([]string{bad}, Schema)
	var v int
	if err := loader.AssignFirst("no_such_key", &v); err == nil {
		t.Fatal("should fail")
	}
}

func TestScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taibox.star")
	if err := os.WriteFile(path, []byte(`
depth = 8
MaxDepth = depth * 8
`), 0o644); err != nil {
		t.Fatal(err)
	}
	globals, err := runScript(path)
	if err != nil {
		t.Fatal(err)
	}
	scope := dscope.New(dscope.Provide(engines.MaxDepth(0)))
	scope, err = configs.Fork(scope, globals)
	if err != nil {
		t.Fatal(err)
	}
	if d := dscope.Get[engines.MaxDepth](scope); d != 64 {
		t.Fatalf("got %v", d)
	}
}
