// Package storages opens the Postgres pools used by the warehouse connector
// and the audit sink.
package storages

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reusee/taibox/nets"
)

type PoolOptions struct {
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

var DefaultPoolOptions = PoolOptions{
	MaxConns:        16,
	MinConns:        1,
	MaxConnLifetime: 5 * time.Minute,
	MaxConnIdleTime: time.Minute,
}

// Open connects a pool and pings it. A nil dialer uses pgx's own.
func Open(ctx context.Context, dsn string, dialer nets.Dialer, options PoolOptions) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database DSN: %w", err)
	}
	if options.MaxConns > 0 {
		config.MaxConns = options.MaxConns
	}
	if options.MinConns > 0 {
		config.MinConns = options.MinConns
	}
	if options.MaxConnLifetime > 0 {
		config.MaxConnLifetime = options.MaxConnLifetime
	}
	if options.MaxConnIdleTime > 0 {
		config.MaxConnIdleTime = options.MaxConnIdleTime
	}
	if dialer != nil {
		config.ConnConfig.DialFunc = dialer.DialContext
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}
