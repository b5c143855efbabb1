package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsConfig controls GORM query and pool metrics
type DBMetricsConfig struct {
	Prefix             string
	SlowQueryThreshold time.Duration
}

// DBMetrics records query latency and connection pool usage
type DBMetrics struct {
	queries       *Counter
	slowQueries   *Counter
	queryDuration *Histogram
	slowThreshold time.Duration
	registration  metric.Registration
}

// RegisterDBMetrics instruments every GORM operation on db and observes the
// connection pool on each collection
func RegisterDBMetrics(db *gorm.DB, meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "ledger"
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	name := func(s string) string { return cfg.Prefix + "_" + s }

	m := &DBMetrics{slowThreshold: cfg.SlowQueryThreshold}
	var err error
	if m.queries, err = NewCounter(meter, name("db_queries_total"), "Database operations by type", "{query}"); err != nil {
		return nil, err
	}
	if m.slowQueries, err = NewCounter(meter, name("db_slow_queries_total"), "Database operations over the slow threshold", "{query}"); err != nil {
		return nil, err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        name("db_query_duration_seconds"),
		Description: "Database operation latency",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	connections, err := meter.Int64ObservableGauge(name("db_pool_connections"),
		metric.WithDescription("Pooled connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter(name("db_pool_wait_total"),
		metric.WithDescription("Connections waited for"), metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}
	m.registration, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(connections, int64(stats.MaxOpenConnections), metric.WithAttributes(AttrDBPoolState.String("max")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, connections, waits)
	if err != nil {
		return nil, err
	}

	if err := registerAround(db, "ledger_metrics", markQueryStart, m.after); err != nil {
		return nil, err
	}
	logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", cfg.SlowQueryThreshold))
	return m, nil
}

func (m *DBMetrics) after(operation string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		attrs := []attribute.KeyValue{
			AttrDBOperation.String(operation),
			AttrDBTable.String(tx.Statement.Table),
			AttrOperationFail.Bool(tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound)),
		}
		m.queries.Inc(ctx, attrs...)
		if elapsed, ok := queryElapsed(tx); ok {
			m.queryDuration.Record(ctx, elapsed.Seconds(), attrs[:2]...)
			if elapsed >= m.slowThreshold {
				m.slowQueries.Inc(ctx, attrs[:2]...)
			}
		}
	}
}

// Stop unregisters the pool observer
func (m *DBMetrics) Stop() error {
	if m.registration == nil {
		return nil
	}
	return m.registration.Unregister()
}
