package resultlog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kikiluvv/svsorter/internal/summary"
)

const createTable = `
	CREATE TABLE IF NOT EXISTS run_summaries (
		id         UUID PRIMARY KEY,
		source_url TEXT NOT NULL,
		matches    INTEGER NOT NULL,
		wins       INTEGER NOT NULL,
		losses     INTEGER NOT NULL,
		sampled    INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`

// Postgres mirrors the CSV log into a run_summaries table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects and ensures the table exists.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create run_summaries: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Append(ctx context.Context, row summary.Row) error {
	query := `
		INSERT INTO run_summaries (
			id, source_url, matches, wins, losses, sampled, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := p.pool.Exec(ctx, query,
		uuid.New(), row.Source, row.Matches, row.Wins, row.Losses,
		row.Sampled, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

func (p *Postgres) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}
