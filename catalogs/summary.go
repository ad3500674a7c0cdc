package catalogs

import (
	"context"
	"fmt"

	"github.com/reusee/starlarkutil"
	"github.com/reusee/taibox/warehouses"
	"go.starlark.net/starlark"
)

// TablesSummary builds tables_summary[dataset_id][table] = [(column,
// "Description: ..."), ...]. Columns come from the warehouse; a dataset id
// names a warehouse schema. Tables the warehouse does not report map to
// an empty list.
func (c *Catalog) TablesSummary(ctx context.Context, source warehouses.Source) (*starlark.Dict, error) {
	columns := make(map[[2]string][]warehouses.ColumnInfo)
	if source != nil {
		tables, err := source.Tables(ctx)
		if err != nil {
			return nil, err
		}
		for _, table := range tables {
			columns[[2]string{table.Schema, table.Name}] = table.Columns
		}
	}

	summary := starlark.NewDict(len(c.Datasets))
	for _, dataset := range c.Datasets {
		tables := starlark.NewDict(len(dataset.Tables))
		for _, table := range dataset.Tables {
			cols := columns[[2]string{dataset.ID, table}]
			entries := make([]starlark.Value, 0, len(cols))
			for _, col := range cols {
				entries = append(entries, starlark.Tuple{
					starlark.String(col.Name),
					starlark.String("Description: " + dataset.ColumnDescriptions[col.Name]),
				})
			}
			if err := tables.SetKey(starlark.String(table), starlark.NewList(entries)); err != nil {
				return nil, err
			}
		}
		if err := summary.SetKey(starlark.String(dataset.ID), tables); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// DescribeBuiltin is describe(dataset_id) for snippets.
func (c *Catalog) DescribeBuiltin() starlark.Value {
	return starlarkutil.MakeFunc("describe", func(id string) (string, error) {
		dataset, ok := c.Dataset(id)
		if !ok {
			return "", fmt.Errorf("no dataset %q", id)
		}
		return dataset.Describe(), nil
	})
}
