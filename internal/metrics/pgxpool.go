package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics exposes connection pool statistics as Prometheus
// gauges under the dropwishes_db prefix.
func RegisterPgxPoolMetrics(pool *pgxpool.Pool) {
	gauge := func(name, help string, value func(*pgxpool.Stat) int32) prometheus.GaugeFunc {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "dropwishes_db_" + name,
			Help: help,
		}, func() float64 {
			return float64(value(pool.Stat()))
		})
	}

	prometheus.MustRegister(
		gauge("acquired_conns", "Connections currently acquired from the pool", (*pgxpool.Stat).AcquiredConns),
		gauge("idle_conns", "Idle connections in the pool", (*pgxpool.Stat).IdleConns),
		gauge("max_conns", "Pool connection limit", (*pgxpool.Stat).MaxConns),
		gauge("total_conns", "Total connections held by the pool", (*pgxpool.Stat).TotalConns),
	)
}
