package warehouses

import (
	"context"
	"errors"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/cmds"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/engines"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/nets"
	"github.com/reusee/taibox/storages"
)

type Module struct {
	dscope.Module
	Nets nets.Module
}

type DSN string

var _ configs.Configurable = DSN("")

func (d DSN) ConfigExpr() string {
	return "WarehouseDSN"
}

var dsnFlag = cmds.Var[string]("-warehouse", "warehouse DSN")

func (Module) DSN(
	loader configs.Loader,
) DSN {
	if *dsnFlag != "" {
		return DSN(*dsnFlag)
	}
	return configs.First[DSN](loader, "warehouse_dsn")
}

// MaxRows caps the rows a query returns to a snippet.
type MaxRows int

const DefaultMaxRows = 10_000

func (Module) MaxRows(
	loader configs.Loader,
) MaxRows {
	return configs.FirstOr[MaxRows](loader, "warehouse_max_rows", DefaultMaxRows)
}

type StatementTimeout time.Duration

func (Module) StatementTimeout(
	loader configs.Loader,
) StatementTimeout {
	s := configs.First[string](loader, "warehouse_statement_timeout")
	if s == "" {
		return StatementTimeout(time.Minute)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(err)
	}
	return StatementTimeout(d)
}

var ErrNotConfigured = errors.New("no warehouse configured")

type unconfigured struct{}

func (unconfigured) Query(context.Context, string) (*Result, error) {
	return nil, ErrNotConfigured
}

func (unconfigured) Explain(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

func (unconfigured) Tables(context.Context) ([]TableInfo, error) {
	return nil, ErrNotConfigured
}

func (Module) Source(
	dsn DSN,
	maxRows MaxRows,
	timeout StatementTimeout,
	dialer nets.Dialer,
	logger logs.Logger,
) Source {
	if dsn == "" {
		logger.Warn("no warehouse configured")
		return unconfigured{}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := storages.Open(ctx, string(dsn), dialer, storages.DefaultPoolOptions)
	if err != nil {
		panic(err)
	}
	logger.Info("warehouse connected",
		"max_rows", int(maxRows),
		"statement_timeout", time.Duration(timeout),
	)
	return NewPostgres(pool, int(maxRows), time.Duration(timeout))
}

func (Module) Client(
	source Source,
) *Client {
	return NewClient("default", source)
}

func (Module) ExtraModules(
	client *Client,
) engines.ExtraModules {
	return engines.ExtraModules{
		NewModule(client),
	}
}
