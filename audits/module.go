package audits

import (
	"context"
	"time"

	"github.com/reusee/dscope"
	"github.com/reusee/taibox/configs"
	"github.com/reusee/taibox/logs"
	"github.com/reusee/taibox/metrics"
	"github.com/reusee/taibox/nets"
	"github.com/reusee/taibox/storages"
)

type Module struct {
	dscope.Module
	Metrics metrics.Module
	Nets    nets.Module
}

// DSN is the Postgres database audit events are written to. Empty disables
// the database sink.
type DSN string

var _ configs.Configurable = DSN("")

func (d DSN) ConfigExpr() string {
	return "AuditDSN"
}

func (Module) DSN(
	loader configs.Loader,
) DSN {
	return configs.First[DSN](loader, "audit_dsn")
}

// Writer is the database writer, nil without a DSN. Callers Flush it at
// shutdown.
func (Module) Writer(
	dsn DSN,
	dialer nets.Dialer,
	logger logs.Logger,
	m *metrics.Metrics,
) *Writer {
	if dsn == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	pool, err := storages.Open(ctx, string(dsn), dialer, storages.PoolOptions{
		MaxConns: 4,
	})
	if err != nil {
		panic(err)
	}
	pg, err := NewPostgres(ctx, pool)
	if err != nil {
		pool.Close()
		panic(err)
	}
	writer := NewWriter(pg.Write, 0, logger, m.AuditDrops.Inc)
	writer.Start()
	logger.Info("audit writer started")
	return writer
}

func (Module) Sink(
	logger logs.Logger,
	writer *Writer,
) Sink {
	sinks := []Sink{
		LogSink{Logger: logger},
	}
	if writer != nil {
		sinks = append(sinks, writer)
	}
	return Multi(sinks...)
}
