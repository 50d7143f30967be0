package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool creates a pgx connection pool. Connections are established
// lazily; callers that need the database up should follow with
// WaitForDatabase.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	return pool, nil
}

// Pinger is the subset of pgxpool.Pool that WaitForDatabase needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	waitInterval = time.Second
	waitTimeout  = 60 * time.Second
)

// WaitForDatabase blocks until the database answers a ping, retrying every
// second for up to a minute. The app must not run migrations or serve
// traffic before this returns nil.
func WaitForDatabase(ctx context.Context, p Pinger, logger zerolog.Logger) error {
	return waitForDatabase(ctx, p, logger, waitInterval, waitTimeout)
}

func waitForDatabase(ctx context.Context, p Pinger, logger zerolog.Logger, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	attempt := 0
	for {
		attempt++
		lastErr = p.Ping(ctx)
		if lastErr == nil {
			logger.Info().Int("attempts", attempt).Msg("database is available")
			return nil
		}
		logger.Debug().Err(lastErr).Int("attempt", attempt).Msg("database unavailable, waiting")

		select {
		case <-ctx.Done():
			return fmt.Errorf("database not reachable after %s: %w", timeout, lastErr)
		case <-time.After(interval):
		}
	}
}
