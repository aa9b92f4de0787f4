package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"slot-go/models"
)

// SpinJournal appends processed spins to PostgreSQL.
// It is optional: without DATABASE_URL the bot runs with no journal at all.
type SpinJournal struct {
	pool *pgxpool.Pool
}

// SetupDatabase connects the spin journal; a nil journal and nil error means no database configured
func SetupDatabase(ctx context.Context, databaseURL string) (*SpinJournal, error) {
	if databaseURL == "" {
		return nil, nil
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// One writer per spin, the pool stays small
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 45 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 30 * time.Second
	config.ConnConfig.RuntimeParams = map[string]string{
		"application_name":  "slot-bot",
		"timezone":          "UTC",
		"statement_timeout": "30s",
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Test the connection
	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	conn.Release()

	journal := &SpinJournal{pool: pool}
	if err := journal.createSpinsTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return journal, nil
}

func (sj *SpinJournal) createSpinsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS slot_spins (
			id          BIGSERIAL PRIMARY KEY,
			chat_id     BIGINT      NOT NULL,
			user_id     BIGINT      NOT NULL,
			handle      TEXT        NOT NULL DEFAULT '',
			value       INTEGER     NOT NULL,
			is_win      BOOLEAN     NOT NULL,
			counted     BOOLEAN     NOT NULL,
			total_spins BIGINT      NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_slot_spins_win ON slot_spins (is_win) WHERE is_win;`

	if _, err := sj.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create slot_spins table: %w", err)
	}
	return nil
}

// RecordSpin stores one processed spin
func (sj *SpinJournal) RecordSpin(ctx context.Context, rec models.SpinRecord) error {
	query := `
		INSERT INTO slot_spins (chat_id, user_id, handle, value, is_win, counted, total_spins, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := sj.pool.Exec(ctx, query,
		rec.ChatID,
		rec.UserID,
		rec.Handle,
		rec.Value,
		rec.IsWin,
		rec.Counted,
		int64(rec.TotalSpins),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record spin: %w", err)
	}
	return nil
}

// CountJackpots returns the number of counted winning spins
func (sj *SpinJournal) CountJackpots(ctx context.Context) (int64, error) {
	var count int64
	err := sj.pool.QueryRow(ctx, `SELECT COUNT(*) FROM slot_spins WHERE is_win AND counted`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count jackpots: %w", err)
	}
	return count, nil
}

// Close closes the connection pool
func (sj *SpinJournal) Close() {
	if sj != nil && sj.pool != nil {
		sj.pool.Close()
	}
}
