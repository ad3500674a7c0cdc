package catalogs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/reusee/taibox/warehouses"
	"go.starlark.net/starlark"
)

const testCatalog = `
datasets:
  - name: Lending
    project: analytics
    id: lending
    description: Aggregated lending activity
    tables: [borrow, users]
    column_descriptions:
      amount: Principal in USD
    sample_questions:
      - Plot daily users
`

type fakeSource struct {
	warehouses.Source
}

func (fakeSource) Tables(ctx context.Context) ([]warehouses.TableInfo, error) {
	return []warehouses.TableInfo{
		{
			Schema: "lending",
			Name:   "borrow",
			Columns: []warehouses.ColumnInfo{
				{Name: "day", Type: "date"},
				{Name: "amount", Type: "numeric"},
			},
		},
		{
			Schema: "other",
			Name:   "borrow",
		},
	}, nil
}

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	dataset, ok := catalog.Dataset("lending")
	if !ok {
		t.Fatal()
	}
	if dataset.Name != "Lending" || len(dataset.Tables) != 2 {
		t.Fatalf("got %+v", dataset)
	}

	if _, err := Parse([]byte("datasets:\n  - name: x\n")); err == nil {
		t.Fatal("should fail on empty id")
	}
	if _, err := Parse([]byte("datasets:\n  - id: x\n  - id: x\n")); err == nil {
		t.Fatal("should fail on duplicated id")
	}
	if _, err := Parse([]byte("datasets:\n  - id: x\n    unknown: 1\n")); err == nil {
		t.Fatal("should fail on unknown field")
	}
	empty, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(empty.Datasets) != 0 {
		t.Fatal()
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	catalog, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(catalog.Datasets) != 1 {
		t.Fatalf("got %d", len(catalog.Datasets))
	}
}

func TestDescribe(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	dataset, _ := catalog.Dataset("lending")
	text := dataset.Describe()
	for _, want := range []string{
		"Lending (lending)",
		"tables: borrow, users",
		`SELECT * FROM "lending"."borrow" LIMIT 100`,
		"  - Plot daily users",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in %s", want, text)
		}
	}
}

func TestTablesSummary(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	summary, err := catalog.TablesSummary(t.Context(), fakeSource{})
	if err != nil {
		t.Fatal(err)
	}
	v, err := starlark.Eval(new(starlark.Thread), "<expr>",
		`summary["lending"]["borrow"]`,
		starlark.StringDict{"summary": summary})
	if err != nil {
		t.Fatal(err)
	}
	want := `[("day", "Description: "), ("amount", "Description: Principal in USD")]`
	if v.String() != want {
		t.Fatalf("got %v", v)
	}
	v, err = starlark.Eval(new(starlark.Thread), "<expr>",
		`summary["lending"]["users"]`,
		starlark.StringDict{"summary": summary})
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != "[]" {
		t.Fatalf("got %v", v)
	}
}

func TestDescribeBuiltin(t *testing.T) {
	catalog, err := Parse([]byte(testCatalog))
	if err != nil {
		t.Fatal(err)
	}
	env := starlark.StringDict{
		"describe": catalog.DescribeBuiltin(),
	}
	v, err := starlark.Eval(new(starlark.Thread), "<expr>", `describe("lending")`, env)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := starlark.AsString(v)
	if !ok || !strings.Contains(s, "Lending (lending)") {
		t.Fatalf("got %v", v)
	}
	if _, err := starlark.Eval(new(starlark.Thread), "<expr>", `describe("nope")`, env); err == nil {
		t.Fatal("should fail")
	}
}
