package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls GORM span instrumentation
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bind variables in db.statement; never in production
	SlowQueryThresh time.Duration
	DBName          string
	TracerProvider  trace.TracerProvider // defaults to the global provider
}

// RegisterDBTracing installs otelgorm on db and tags spans of slow queries
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}
	if cfg.DBName == "" {
		cfg.DBName = "postgresql"
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName), otelgorm.WithoutMetrics()}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	err := registerAround(db, "ledger_tracing", markQueryStart, func(string) func(*gorm.DB) {
		return func(tx *gorm.DB) { annotateSpan(tx, cfg.SlowQueryThresh) }
	})
	if err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func annotateSpan(tx *gorm.DB, slowThreshold time.Duration) {
	if tx.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(tx.Statement.Context)
	if !span.IsRecording() {
		return
	}
	if tx.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
	}
	if tx.Error != nil && errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		span.SetAttributes(attribute.Bool("db.not_found", true))
	}
	elapsed, ok := queryElapsed(tx)
	if ok && elapsed >= slowThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
