package router

import (
	"net/http"

	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// EngineConfig carries everything NewEngine wires into the gin engine
type EngineConfig struct {
	Logger         *zap.Logger
	ServiceName    string
	TracingEnabled bool
	MaxBodySize    int64

	// Meter receives the HTTP instruments; nil disables HTTP metrics
	Meter metric.Meter
	// MetricsHandler is served at MetricsPath when both are set
	MetricsHandler http.Handler
	MetricsPath    string

	Ledger *handler.LedgerHandler
	System *handler.SystemHandler
}

// NewEngine builds the HTTP engine: middleware chain, health, metrics and the /api/v1 ledger routes
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	middleware.SetupValidator()

	httpMetrics, err := middleware.HTTPMetrics(cfg.Meter)
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(httpMetrics)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if cfg.System != nil {
		engine.GET("/health", cfg.System.Health)
	}
	if cfg.MetricsHandler != nil && cfg.MetricsPath != "" {
		engine.GET(cfg.MetricsPath, gin.WrapH(cfg.MetricsHandler))
	}

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.Use(
		middleware.ActingUser(),
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.TracingEnabled}),
		middleware.SpanAttributes(),
		middleware.SpanErrorMarker(),
	)
	if cfg.Ledger != nil {
		r.Register(LedgerRoutes(cfg.Ledger)...)
	}
	r.Setup()

	return engine, nil
}

// LedgerRoutes groups the ledger endpoints by resource
func LedgerRoutes(h *handler.LedgerHandler) []RouteRegistrar {
	customers := NewDomainGroup("customers", "/customers/:id")
	customers.POST("/payments", h.ProcessPayment)
	customers.POST("/payments/preview", h.PreviewAllocation)
	customers.GET("/payments", h.GetCustomerPayments)
	customers.POST("/credits", h.CreateCredit)
	customers.GET("/credits", h.GetCustomerCredits)
	customers.GET("/ledger", h.GetCustomerLedger)

	credits := NewDomainGroup("credits", "/credits")
	credits.POST("/:id/apply", h.ApplyCredit)

	maintenance := NewDomainGroup("maintenance", "/maintenance")
	maintenance.POST("/invoice-balances", h.RepairInvoiceBalances)

	return []RouteRegistrar{customers, credits, maintenance}
}
