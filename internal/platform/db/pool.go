package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool opens and pings one regional database.
func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// NewShardPools opens a pool per regional database URL, keyed by shard
// name. If any region fails to connect, the already-opened pools are
// closed and the error names the failing shard: the process refuses to
// start on a partial federation rather than silently serving two regions.
func NewShardPools(ctx context.Context, urls map[string]string, maxConns, minConns int32) (map[string]*pgxpool.Pool, error) {
	pools := make(map[string]*pgxpool.Pool, len(urls))
	for name, url := range urls {
		pool, err := NewPool(ctx, url, maxConns, minConns)
		if err != nil {
			for _, p := range pools {
				p.Close()
			}
			return nil, fmt.Errorf("shard %s: %w", name, err)
		}
		pools[name] = pool
	}
	return pools, nil
}
