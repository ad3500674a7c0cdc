package warehouses

import (
	"context"
	"errors"
)

// Source is a read-only SQL backend.
type Source interface {
	Query(ctx context.Context, sql string) (*Result, error)
	Explain(ctx context.Context, sql string) (string, error)
	Tables(ctx context.Context) ([]TableInfo, error)
}

type Result struct {
	Columns []string
	Rows    [][]any
	// Truncated is set when the row cap cut the result short.
	Truncated bool
}

type TableInfo struct {
	Schema  string
	Name    string
	Columns []ColumnInfo
}

type ColumnInfo struct {
	Name string
	Type string
}

var ErrEmptyQuery = errors.New("empty query")
