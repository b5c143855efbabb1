package router

import (
	"time"

	financeapp "github.com/erp/ledger/internal/application/finance"
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	healthPath         = "/health"
	defaultMetricsPath = "/metrics"
)

// Options are the HTTP-level settings of the ledger API
type Options struct {
	ServiceName    string
	Version        string
	MaxBodySize    int64
	TrustedProxies []string

	TracingEnabled bool
	TracerProvider trace.TracerProvider

	// HTTPMetrics and Gatherer enable request metrics and the scrape endpoint
	HTTPMetrics *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	MetricsPath string

	// IdempotencyStore enables the Idempotency-Key guard on create endpoints
	IdempotencyStore shared.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// Services are the application services behind the API
type Services struct {
	Stocks   *inventoryapp.StockService
	Sales    *tradeapp.SaleService
	Payments *financeapp.PaymentService
	DB       handler.Pinger
}

// NewLedgerEngine builds the gin engine serving the ledger API.
// Middleware order: recovery, request id, tracing, request log, metrics, body limit;
// API routes additionally require a tenant.
func NewLedgerEngine(log *zap.Logger, svc Services, opts Options) *gin.Engine {
	engine := gin.New()
	if len(opts.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(opts.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = defaultMetricsPath
	}

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName:    opts.ServiceName,
		Enabled:        opts.TracingEnabled,
		TracerProvider: opts.TracerProvider,
		SkipPaths:      []string{healthPath, metricsPath},
	}))
	engine.Use(logger.GinMiddleware(log))
	if opts.HTTPMetrics != nil {
		engine.Use(opts.HTTPMetrics.Middleware())
	}
	engine.Use(middleware.BodyLimit(opts.MaxBodySize))

	engine.GET(healthPath, handler.NewHealthHandler(svc.DB, opts.Version).Check)
	if opts.Gatherer != nil {
		engine.GET(metricsPath, middleware.MetricsHandler(opts.Gatherer))
	}

	var idempotent []gin.HandlerFunc
	if opts.IdempotencyStore != nil {
		idempotent = append(idempotent, middleware.Idempotency(opts.IdempotencyStore, opts.IdempotencyTTL))
	}
	withGuard := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, idempotent...), h)
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(middleware.Tenant(middleware.TenantConfig{}), middleware.SpanAttributes())

	stockHandler := handler.NewStockHandler(svc.Stocks)
	stocks := NewDomainGroup("stocks", "/stocks")
	stocks.POST("", stockHandler.Create)
	stocks.GET("", stockHandler.List)
	stocks.GET("/low-stock", stockHandler.ListLowStock)
	stocks.GET("/:id", stockHandler.GetByID)
	stocks.PUT("/:id", stockHandler.Update)
	stocks.POST("/:id/adjust", stockHandler.Adjust)
	stocks.DELETE("/:id", stockHandler.Deactivate)

	saleHandler := handler.NewSaleHandler(svc.Sales)
	paymentHandler := handler.NewPaymentHandler(svc.Payments)
	sales := NewDomainGroup("sales", "/sales")
	sales.POST("", withGuard(saleHandler.Create)...)
	sales.GET("", saleHandler.List)
	sales.GET("/number/:number", saleHandler.GetBySaleNumber)
	sales.GET("/:id", saleHandler.GetByID)
	sales.GET("/:id/payments", paymentHandler.ListBySale)
	sales.POST("/:id/cancel", saleHandler.Cancel)
	sales.POST("/:id/recompute", saleHandler.Recompute)

	payments := NewDomainGroup("payments", "/payments")
	payments.POST("", withGuard(paymentHandler.Create)...)
	payments.GET("", paymentHandler.List)
	payments.GET("/summary", paymentHandler.Summary)
	payments.GET("/type/:type", paymentHandler.ListByType)
	payments.GET("/:id", paymentHandler.GetByID)
	payments.DELETE("/:id", paymentHandler.Delete)

	r.Register(stocks).Register(sales).Register(payments)
	r.Setup()

	return engine
}
