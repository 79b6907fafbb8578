package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats represents database connection pool statistics.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
	Healthy         bool   `json:"healthy"`
}

// GetPoolStats returns connection pool statistics.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
		Healthy:         stat.TotalConns() > 0,
	}
}

type shardHealth struct {
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
	Pool   *PoolStats `json:"pool,omitempty"`
}

// HealthHandler pings every regional database and reports per-shard pool
// statistics. The endpoint answers 503 if any region is unreachable so a
// load balancer can tell a degraded federation from a healthy one.
func HealthHandler(pools map[string]*pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		shards := make(map[string]shardHealth, len(pools))
		allHealthy := true
		for name, pool := range pools {
			h := shardHealth{Status: "healthy", Pool: GetPoolStats(pool)}
			if err := pool.Ping(ctx); err != nil {
				h.Status = "unhealthy"
				h.Error = err.Error()
				h.Pool.Healthy = false
				allHealthy = false
			}
			shards[name] = h
		}

		status := http.StatusOK
		overall := "healthy"
		if !allHealthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		return c.JSON(status, map[string]interface{}{
			"status": overall,
			"shards": shards,
		})
	}
}
