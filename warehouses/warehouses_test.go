package warehouses

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/reusee/taibox/allowlists"
	"github.com/reusee/taibox/analyzers"
	"github.com/reusee/taibox/engines"
	"go.starlark.net/starlark"
)

type fakeSource struct {
	queries []string
	result  *Result
	err     error
}

var _ Source = new(fakeSource)

func (f *fakeSource) Query(ctx context.Context, sql string) (*Result, error) {
	f.queries = append(f.queries, sql)
	return f.result, f.err
}

func (f *fakeSource) Explain(ctx context.Context, sql string) (string, error) {
	return "Seq Scan on " + sql, f.err
}

func (f *fakeSource) Tables(ctx context.Context) ([]TableInfo, error) {
	return []TableInfo{
		{
			Schema: "public",
			Name:   "orders",
			Columns: []ColumnInfo{
				{Name: "id", Type: "integer"},
				{Name: "total", Type: "numeric"},
			},
		},
	}, f.err
}

func newTestEngine(t *testing.T, client *Client) *engines.Engine {
	t.Helper()
	engine, err := engines.New(
		allowlists.MustNew(allowlists.DefaultTables()),
		engines.StdModules().With(NewModule(client)),
		analyzers.Unbounded,
	)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestClient(t *testing.T) {
	source := &fakeSource{
		result: &Result{
			Columns: []string{"region", "total"},
			Rows: [][]any{
				{"north", 1.5},
				{"south", int64(2)},
			},
		},
	}
	client := NewClient("test", source)
	engine := newTestEngine(t, client)
	ns := engines.NewNamespace(starlark.StringDict{
		"client": client,
	})

	v, err := engine.Evaluate(t.Context(), `[r["region"] for r in client.query("select * from sales")]`, ns)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != `["north", "south"]` {
		t.Fatalf("got %v", v)
	}
	if len(source.queries) != 1 || source.queries[0] != "select * from sales" {
		t.Fatalf("got %v", source.queries)
	}

	v, err = engine.Evaluate(t.Context(), `client.explain(sql = "x")`, ns)
	if err != nil {
		t.Fatal(err)
	}
	if v != starlark.String("Seq Scan on x") {
		t.Fatalf("got %v", v)
	}

	v, err = engine.Evaluate(t.Context(), `[(t.name, len(t.columns)) for t in client.tables()]`, ns)
	if err != nil {
		t.Fatal(err)
	}
	if v.String() != `[("orders", 2)]` {
		t.Fatalf("got %v", v)
	}
}

func TestClientError(t *testing.T) {
	errDown := errors.New("down")
	client := NewClient("test", &fakeSource{err: errDown})
	engine := newTestEngine(t, client)
	ns := engines.NewNamespace(starlark.StringDict{
		"client": client,
	})
	_, err := engine.Evaluate(t.Context(), `client.query("select 1")`, ns)
	if !errors.Is(err, errDown) {
		t.Fatalf("got %v", err)
	}
}

func TestTruncatedNotice(t *testing.T) {
	client := NewClient("test", &fakeSource{
		result: &Result{
			Columns:   []string{"n"},
			Rows:      [][]any{{1}},
			Truncated: true,
		},
	})
	engine := newTestEngine(t, client)
	buf := new(bytes.Buffer)
	ctx := engines.WithOutput(t.Context(), buf)
	if err := engine.Execute(ctx, `load("warehouse", "query")
rows = query("select n from t")`, engines.NewNamespace(nil)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "truncated to 1 rows") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestModule(t *testing.T) {
	client := NewClient("test", new(fakeSource))
	module := NewModule(client)
	if module.Name != "warehouse" {
		t.Fatalf("got %s", module.Name)
	}
	for _, name := range []string{"client", "query", "explain", "tables"} {
		if _, ok := module.Members[name]; !ok {
			t.Fatalf("missing %s", name)
		}
	}
}

func TestUnconfigured(t *testing.T) {
	var source Source = unconfigured{}
	if _, err := source.Query(t.Context(), "select 1"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	var numeric pgtype.Numeric
	if err := numeric.Scan("12.5"); err != nil {
		t.Fatal(err)
	}
	if got := normalize(numeric); got != 12.5 {
		t.Fatalf("got %v", got)
	}
	if got := normalize(pgtype.Numeric{Int: big.NewInt(1)}); got != nil {
		t.Fatalf("got %v", got)
	}
	id := [16]byte{1}
	if got := normalize(id); got != "01000000-0000-0000-0000-000000000000" {
		t.Fatalf("got %v", got)
	}
	if got := normalize(pgtype.Interval{Days: 1, Microseconds: 1_000_000, Valid: true}); got != 24*time.Hour+time.Second {
		t.Fatalf("got %v", got)
	}
	nested := normalize([]any{numeric})
	if nested.([]any)[0] != 12.5 {
		t.Fatalf("got %v", nested)
	}
}

func TestPostgresEmptyQuery(t *testing.T) {
	p := NewPostgres(nil, 10, 0)
	if _, err := p.Query(t.Context(), "  "); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("got %v", err)
	}
	if _, err := p.Explain(t.Context(), ""); !errors.Is(err, ErrEmptyQuery) {
		t.Fatalf("got %v", err)
	}
}
