package audits

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTable = `
CREATE TABLE IF NOT EXISTS taibox_audit_events (
	id UUID PRIMARY KEY,
	session TEXT NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	line INTEGER NOT NULL,
	col INTEGER NOT NULL,
	snippet_sha256 TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

const insertEvent = `
INSERT INTO taibox_audit_events (id, session, kind, name, line, col, snippet_sha256, created_at)
VALUES (@id, @session, @kind, @name, @line, @col, @snippet_sha256, @created_at)`

// Postgres writes events to the taibox_audit_events table.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return nil, fmt.Errorf("creating audit table: %w", err)
	}
	return &Postgres{
		pool: pool,
	}, nil
}

func (p *Postgres) Write(ctx context.Context, event Event) error {
	_, err := p.pool.Exec(ctx, insertEvent, pgx.NamedArgs{
		"id":             event.ID,
		"session":        event.Session,
		"kind":           event.Kind,
		"name":           event.Name,
		"line":           event.Line,
		"col":            event.Col,
		"snippet_sha256": event.SnippetHash,
		"created_at":     event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("inserting audit event: %w", err)
	}
	return nil
}
