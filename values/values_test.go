package values

import (
	"encoding/json"
	"testing"
	"time"

	"go.starlark.net/starlark"
)

func TestToStarlark(t *testing.T) {
	type testStruct struct {
		Exported   string
		unexported int
	}

	ptrStruct := &testStruct{
		Exported:   "hello",
		unexported: 42,
	}

	testCases := []struct {
		name     string
		input    any
		expected starlark.Value
	}{
		{"nil", nil, starlark.None},
		{"bool true", true, starlark.True},
		{"bytes", []byte("abc"), starlark.Bytes("abc")},
		{"string", "hello", starlark.String("hello")},
		{"int", int(42), starlark.MakeInt(42)},
		{"int32", int32(42), starlark.MakeInt(42)},
		{"int64", int64(42), starlark.MakeInt64(42)},
		{"uint64", uint64(42), starlark.MakeUint64(42)},
		{"float64", float64(3.14), starlark.Float(3.14)},
		{"time", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), starlark.String("2024-01-02T03:04:05Z")},
		{"starlark value", starlark.String("x"), starlark.String("x")},
		{"[]any", []any{1, "a", true}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.String("a"), starlark.True})},
		{"map[string]any", map[string]any{"a": 1, "b": "c"}, func() starlark.Value {
			d := starlark.NewDict(2)
			d.SetKey(starlark.String("a"), starlark.MakeInt(1))
			d.SetKey(starlark.String("b"), starlark.String("c"))
			return d
		}()},
		{"[]int", []int{1, 2, 3}, starlark.NewList([]starlark.Value{starlark.MakeInt(1), starlark.MakeInt(2), starlark.MakeInt(3)})},
		{"struct", testStruct{Exported: "hello", unexported: 42}, func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("Exported"), starlark.String("hello"))
			return d
		}()},
		{"pointer to struct", ptrStruct, func() starlark.Value {
			d := starlark.NewDict(1)
			d.SetKey(starlark.String("Exported"), starlark.String("hello"))
			return d
		}()},
		{"nil pointer", (*testStruct)(nil), starlark.None},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ToStarlark(tc.input)
			if err != nil {
				t.Fatal(err)
			}
			equal, err := starlark.Equal(actual, tc.expected)
			if err != nil {
				t.Fatalf("comparison failed: %v", err)
			}
			if !equal {
				t.Errorf("ToStarlark(%#v) = %v, want %v", tc.input, actual, tc.expected)
			}
		})
	}

	t.Run("unsupported type", func(t *testing.T) {
		if _, err := ToStarlark(make(chan bool)); err == nil {
			t.Fatal("should fail")
		}
	})
}

func TestToGo(t *testing.T) {
	d := starlark.NewDict(2)
	d.SetKey(starlark.String("n"), starlark.MakeInt(42))
	d.SetKey(starlark.String("xs"), starlark.Tuple{starlark.Float(1.5), starlark.None, starlark.True})

	v, err := ToGo(d)
	if err != nil {
		t.Fatal(err)
	}
	bs, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != `{"n":42,"xs":[1.5,null,true]}` {
		t.Fatalf("got %s", bs)
	}

	big, err := ToGo(starlark.MakeInt(1).Lsh(100))
	if err != nil {
		t.Fatal(err)
	}
	if big != "1267650600228229401496703205376" {
		t.Fatalf("got %v", big)
	}
}
