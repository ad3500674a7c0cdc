package warehouses

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/reusee/taibox/storages"
)

// Postgres runs every statement in its own read-only transaction, so a
// snippet cannot write even through a writable role.
type Postgres struct {
	db               storages.Beginner
	maxRows          int
	statementTimeout time.Duration
}

var _ Source = new(Postgres)

func NewPostgres(db storages.Beginner, maxRows int, statementTimeout time.Duration) *Postgres {
	return &Postgres{
		db:               db,
		maxRows:          maxRows,
		statementTimeout: statementTimeout,
	}
}

func (p *Postgres) begin(ctx context.Context, fn func(storages.Tx) error) error {
	return storages.ReadOnly(ctx, p.db, func(tx storages.Tx) error {
		if p.statementTimeout > 0 {
			if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", p.statementTimeout.Milliseconds())); err != nil {
				return err
			}
		}
		return fn(tx)
	})
}

func (p *Postgres) Query(ctx context.Context, sql string) (*Result, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, ErrEmptyQuery
	}
	result := new(Result)
	err := p.begin(ctx, func(tx storages.Tx) error {
		rows, err := tx.Query(ctx, sql)
		if err != nil {
			return err
		}
		defer rows.Close()
		for _, field := range rows.FieldDescriptions() {
			result.Columns = append(result.Columns, field.Name)
		}
		for rows.Next() {
			if p.maxRows > 0 && len(result.Rows) >= p.maxRows {
				result.Truncated = true
				break
			}
			values, err := rows.Values()
			if err != nil {
				return err
			}
			for i, v := range values {
				values[i] = normalize(v)
			}
			result.Rows = append(result.Rows, values)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return result, nil
}

func (p *Postgres) Explain(ctx context.Context, sql string) (string, error) {
	if strings.TrimSpace(sql) == "" {
		return "", ErrEmptyQuery
	}
	var lines []string
	err := p.begin(ctx, func(tx storages.Tx) error {
		rows, err := tx.Query(ctx, "EXPLAIN "+sql)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var line string
			if err := rows.Scan(&line); err != nil {
				return err
			}
			lines = append(lines, line)
		}
		return rows.Err()
	})
	if err != nil {
		return "", fmt.Errorf("explain: %w", err)
	}
	return strings.Join(lines, "\n"), nil
}

const listColumns = `
SELECT table_schema, table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name, ordinal_position`

func (p *Postgres) Tables(ctx context.Context) ([]TableInfo, error) {
	var tables []TableInfo
	err := p.begin(ctx, func(tx storages.Tx) error {
		rows, err := tx.Query(ctx, listColumns)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var schema, table, column, typ string
			if err := rows.Scan(&schema, &table, &column, &typ); err != nil {
				return err
			}
			if n := len(tables); n == 0 || tables[n-1].Schema != schema || tables[n-1].Name != table {
				tables = append(tables, TableInfo{
					Schema: schema,
					Name:   table,
				})
			}
			last := &tables[len(tables)-1]
			last.Columns = append(last.Columns, ColumnInfo{
				Name: column,
				Type: typ,
			})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// normalize maps pgx's decoded values onto types the starlark conversion
// knows.
func normalize(v any) any {
	switch v := v.(type) {
	case pgtype.Numeric:
		if !v.Valid {
			return nil
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(v).String()
	case pgtype.Interval:
		if !v.Valid {
			return nil
		}
		d := time.Duration(v.Microseconds)*time.Microsecond +
			time.Duration(v.Days)*24*time.Hour
		if v.Months != 0 {
			return fmt.Sprintf("%d mons %s", v.Months, d)
		}
		return d
	case pgtype.Time:
		if !v.Valid {
			return nil
		}
		return (time.Duration(v.Microseconds) * time.Microsecond).String()
	case []any:
		for i, e := range v {
			v[i] = normalize(e)
		}
		return v
	case map[string]any:
		for k, e := range v {
			v[k] = normalize(e)
		}
		return v
	}
	return v
}
