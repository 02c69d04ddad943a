package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvSchemaSQL = `
CREATE TABLE IF NOT EXISTS kv_store
(
    key        VARCHAR PRIMARY KEY,
    value      BYTEA       NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{
		db: db,
	}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, kvSchemaSQL); err != nil {
		return fmt.Errorf("create kv_store table: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) (_ []byte, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.get")
	defer span.End()

	var value []byte
	err = p.db.QueryRow(
		ctx,
		`SELECT value FROM kv_store WHERE key = $1`,
		key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %s: %w", key, err)
	}

	return value, nil
}

func (p *Postgres) Set(ctx context.Context, key string, value []byte) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "storage.postgres.set")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := p.db.Exec(
		ctx,
		`INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("upsert %s: no rows affected", key)
	}

	return nil
}
