package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/talx-hub/coinledger/internal/serviceerrs"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type PGBackend struct {
	pool connectionPool
	log  *slog.Logger
}

func NewPGBackend(pool connectionPool, log *slog.Logger) *PGBackend {
	return &PGBackend{
		pool: pool,
		log:  log,
	}
}

func (b *PGBackend) Read(ctx context.Context, name string) ([]byte, int64, error) {
	type row struct {
		body    []byte
		version int64
	}
	readLogic := func() (row, error) {
		var r row
		err := b.pool.QueryRow(ctx,
			`SELECT version, body FROM documents WHERE name = $1`, name,
		).Scan(&r.version, &r.body)
		if errors.Is(err, pgx.ErrNoRows) {
			return row{}, nil
		}
		if err != nil {
			return row{}, fmt.Errorf("failed to read document %s: %w", name, err)
		}
		return r, nil
	}

	r, err := WithRetry[row](readLogic, 0)
	if err != nil {
		return nil, 0, err //nolint: wrapcheck // error from wrapped function
	}
	return r.body, r.version, nil
}

func (b *PGBackend) Write(ctx context.Context,
	name string, body []byte, version int64,
) (int64, error) {
	writeLogic := func(ctx context.Context, tx connectionPool) (any, error) {
		var current int64
		err := tx.QueryRow(ctx,
			`SELECT version FROM documents WHERE name = $1 FOR UPDATE`, name,
		).Scan(&current)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return int64(0), fmt.Errorf("failed to lock document %s: %w", name, err)
		}
		if current != version {
			return int64(0), fmt.Errorf("document %s: stored v%d, loaded v%d: %w",
				name, current, version, serviceerrs.ErrVersionConflict)
		}

		if current == 0 {
			_, err = tx.Exec(ctx,
				`INSERT INTO documents (name, version, body) VALUES ($1, 1, $2)`,
				name, body)
		} else {
			_, err = tx.Exec(ctx,
				`UPDATE documents SET version = version + 1, body = $2, updated_at = now()
				 WHERE name = $1`,
				name, body)
		}
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return int64(0), fmt.Errorf("document %s: %w", name, serviceerrs.ErrVersionConflict)
			}
			return int64(0), fmt.Errorf("failed to write document %s: %w", name, err)
		}
		return current + 1, nil
	}

	writeWithTX := func() (int64, error) {
		return WithTX[int64](ctx, b.pool, b.log, writeLogic)
	}

	newVersion, err := WithRetry[int64](writeWithTX, 0)
	if err != nil {
		return 0, err //nolint: wrapcheck // error from wrapped function
	}
	return newVersion, nil
}

func (b *PGBackend) Ping(ctx context.Context) error {
	p, ok := b.pool.(pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping the DB: %w", err)
	}
	return nil
}
