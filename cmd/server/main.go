package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	financeapp "github.com/erp/ledger/internal/application/finance"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/cache"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)

	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction(),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBName:          cfg.Database.DBName,
	}, log); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, meter, telemetry.DBMetricsConfig{
		Prefix:             cfg.Metrics.Prefix,
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	defer func() {
		if err := dbMetrics.Stop(); err != nil {
			log.Warn("Error stopping database metrics", zap.Error(err))
		}
	}()

	ledgerMetrics, err := telemetry.NewLedgerMetrics(meter, cfg.Metrics.Prefix)
	if err != nil {
		log.Fatal("Failed to create ledger metrics", zap.Error(err))
	}

	// Repositories and services
	txScope := persistence.NewGormTransactionScope(db.DB)
	stockService := inventoryapp.NewStockService(persistence.NewGormStockRepository(db.DB), txScope, log)
	saleService := tradeapp.NewSaleService(persistence.NewGormSaleRepository(db.DB), txScope, stockService, log)
	saleService.SetMetrics(ledgerMetrics)
	paymentService := financeapp.NewPaymentService(persistence.NewGormPaymentRepository(db.DB), txScope, saleService, log)
	paymentService.SetMetrics(ledgerMetrics)

	var idempotencyStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		factory := cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.IsProduction()),
			cache.WithKeyPrefix(cfg.Idempotency.KeyPrefix),
		)
		idempotencyStore, err = factory.CreateStore(ctx)
		if err != nil {
			log.Fatal("Failed to create idempotency store", zap.Error(err))
		}
		defer func() {
			if err := idempotencyStore.Close(); err != nil {
				log.Warn("Error closing idempotency store", zap.Error(err))
			}
		}()
	}

	opts := router.Options{
		ServiceName:      cfg.Telemetry.ServiceName,
		Version:          version,
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		TracingEnabled:   tracerProvider.IsEnabled(),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.Idempotency.TTL,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		httpMetrics, err := middleware.NewHTTPMetrics(reg, cfg.Metrics.Prefix)
		if err != nil {
			log.Fatal("Failed to register HTTP metrics", zap.Error(err))
		}
		opts.HTTPMetrics = httpMetrics
		opts.Gatherer = reg
		opts.MetricsPath = cfg.Metrics.Path
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.NewLedgerEngine(log, router.Services{
		Stocks:   stockService,
		Sales:    saleService,
		Payments: paymentService,
		DB:       db,
	}, opts)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	shutdownTelemetry(shutdownCtx, log, tracerProvider, meterProvider)

	log.Info("Server exited gracefully")
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// shutdownTelemetry flushes pending spans and metrics, bounded by ctx
func shutdownTelemetry(ctx context.Context, log *zap.Logger, providers ...shutdowner) {
	flushCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for _, p := range providers {
		if err := p.Shutdown(flushCtx); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}
}
