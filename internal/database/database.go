package database

import (
	"context"
	"fmt"

	zerologadapter "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/newrelic/go-agent/v3/integrations/nrpgx5"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// PoolOptions configures the Postgres connection pool.
type PoolOptions struct {
	URL      string
	MaxConns int32
}

// NewPool opens and pings a pgx pool. Queries are traced by New Relic when an
// application is given, otherwise they are logged through zerolog at warn level.
func NewPool(ctx context.Context, opts PoolOptions, logger zerolog.Logger, nrApp *newrelic.Application) (*pgxpool.Pool, error) {
	pgxCfg, err := pgxpool.ParseConfig(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if opts.MaxConns > 0 {
		pgxCfg.MaxConns = opts.MaxConns
	}

	if nrApp != nil {
		pgxCfg.ConnConfig.Tracer = nrpgx5.NewTracer()
	} else {
		pgxCfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   zerologadapter.NewLogger(logger.With().Str("component", "pgx").Logger()),
			LogLevel: tracelog.LogLevelWarn,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
