package warehouses

import (
	"fmt"
	"slices"

	"github.com/reusee/taibox/engines"
	"github.com/reusee/taibox/values"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// Client is the starlark face of a Source: client.query(sql),
// client.explain(sql) and client.tables().
type Client struct {
	source Source
	name   string
}

var _ starlark.HasAttrs = new(Client)

func NewClient(name string, source Source) *Client {
	return &Client{
		name:   name,
		source: source,
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("<warehouse client %s>", c.name)
}

func (c *Client) Type() string {
	return "warehouse_client"
}

// Freeze is a no-op; a client holds no snippet-visible mutable state.
func (c *Client) Freeze() {}

func (c *Client) Truth() starlark.Bool {
	return starlark.True
}

func (c *Client) Hash() (uint32, error) {
	return 0, fmt.Errorf("unhashable type: %s", c.Type())
}

var clientMethods = []string{"explain", "query", "tables"}

func (c *Client) AttrNames() []string {
	return slices.Clone(clientMethods)
}

func (c *Client) Attr(name string) (starlark.Value, error) {
	switch name {
	case "query":
		return starlark.NewBuiltin("query", c.query).BindReceiver(c), nil
	case "explain":
		return starlark.NewBuiltin("explain", c.explain).BindReceiver(c), nil
	case "tables":
		return starlark.NewBuiltin("tables", c.tables).BindReceiver(c), nil
	}
	return nil, nil
}

// query returns the result as a list of dicts keyed by column name.
func (c *Client) query(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var sql string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "sql", &sql); err != nil {
		return nil, err
	}
	result, err := c.source.Query(engines.Context(thread), sql)
	if err != nil {
		return nil, err
	}
	if result.Truncated && thread.Print != nil {
		thread.Print(thread, fmt.Sprintf("warehouse: result truncated to %d rows", len(result.Rows)))
	}
	return ResultToStarlark(result)
}

func (c *Client) explain(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var sql string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "sql", &sql); err != nil {
		return nil, err
	}
	plan, err := c.source.Explain(engines.Context(thread), sql)
	if err != nil {
		return nil, err
	}
	return starlark.String(plan), nil
}

func (c *Client) tables(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	tables, err := c.source.Tables(engines.Context(thread))
	if err != nil {
		return nil, err
	}
	ret := make([]starlark.Value, 0, len(tables))
	for _, table := range tables {
		columns := starlark.NewDict(len(table.Columns))
		for _, column := range table.Columns {
			if err := columns.SetKey(starlark.String(column.Name), starlark.String(column.Type)); err != nil {
				return nil, err
			}
		}
		ret = append(ret, starlarkstruct.FromStringDict(starlarkstruct.Default, starlark.StringDict{
			"schema":  starlark.String(table.Schema),
			"name":    starlark.String(table.Name),
			"columns": columns,
		}))
	}
	return starlark.NewList(ret), nil
}

func ResultToStarlark(result *Result) (starlark.Value, error) {
	rows := make([]starlark.Value, 0, len(result.Rows))
	for _, row := range result.Rows {
		d := starlark.NewDict(len(result.Columns))
		for i, column := range result.Columns {
			var cell any
			if i < len(row) {
				cell = row[i]
			}
			v, err := values.ToStarlark(cell)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", column, err)
			}
			if err := d.SetKey(starlark.String(column), v); err != nil {
				return nil, err
			}
		}
		rows = append(rows, d)
	}
	return starlark.NewList(rows), nil
}

// ModuleName is the import name of the warehouse module.
const ModuleName = "warehouse"

// NewModule publishes the client's methods as load("warehouse", ...) targets.
func NewModule(client *Client) *starlarkstruct.Module {
	members := starlark.StringDict{
		"client": client,
	}
	for _, name := range clientMethods {
		v, _ := client.Attr(name)
		members[name] = v
	}
	return &starlarkstruct.Module{
		Name:    ModuleName,
		Members: members,
	}
}
