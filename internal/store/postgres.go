package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by Postgres; *pgxpool.Pool, *pgx.Conn
// and pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS workbook_sessions (
    id          UUID PRIMARY KEY,
    state       JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS workbook_sessions_updated_at_idx
    ON workbook_sessions (updated_at);`

const (
	saveSQL = `
INSERT INTO workbook_sessions (id, state, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`

	loadSQL   = `SELECT state FROM workbook_sessions WHERE id = $1`
	deleteSQL = `DELETE FROM workbook_sessions WHERE id = $1`
	purgeSQL  = `DELETE FROM workbook_sessions WHERE updated_at < $1`
)

// Postgres stores sessions as JSONB rows.
type Postgres struct {
	db DBTX
}

// NewPostgres wraps db. Call Migrate once before use.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

// Connect opens a pool with the given settings and verifies it.
func Connect(ctx context.Context, url string, maxConns, minConns int, maxLifetime, maxIdle time.Duration) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(maxConns)
	poolConfig.MinConns = int32(minConns)
	poolConfig.MaxConnLifetime = maxLifetime
	poolConfig.MaxConnIdleTime = maxIdle

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate creates the sessions table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate session store: %w", err)
	}
	return nil
}

// Save upserts the state of a session.
func (p *Postgres) Save(ctx context.Context, id string, state core.WorkbookState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", id, err)
	}
	if _, err := p.db.Exec(ctx, saveSQL, id, data); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Load returns the saved state of a session.
func (p *Postgres) Load(ctx context.Context, id string) (core.WorkbookState, error) {
	var data []byte
	err := p.db.QueryRow(ctx, loadSQL, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.WorkbookState{}, fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	if err != nil {
		return core.WorkbookState{}, fmt.Errorf("load session %s: %w", id, err)
	}

	var state core.WorkbookState
	if err := json.Unmarshal(data, &state); err != nil {
		return core.WorkbookState{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return state, nil
}

// Delete removes a session.
func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.db.Exec(ctx, deleteSQL, id)
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", core.ErrSessionNotFound, id)
	}
	return nil
}

// Purge deletes sessions not saved since before.
func (p *Postgres) Purge(ctx context.Context, before time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx, purgeSQL, before)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
