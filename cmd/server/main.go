package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/notification"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/erp/ledger/internal/interfaces/http/handler"
	"github.com/erp/ledger/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Ledger API
//	@version		1.0
//	@description	Payment allocation and customer credit ledger
//	@BasePath		/api/v1

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ledger service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.TracingConfig{
		Enabled:           cfg.Telemetry.TracingEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if cfg.Telemetry.TracingEnabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, db.Dialect(), log); err != nil {
			log.Fatal("Failed to enable database tracing", zap.Error(err))
		}
	}

	// postgres schemas are owned by cmd/migrate; a sqlite file is created in place
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to create sqlite schema", zap.Error(err))
		}
	}

	sinks := []notification.Sink{notification.NewLogNotifier(log)}
	if cfg.Redis.Enabled {
		redisNotifier, err := notification.NewRedisNotifier(cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			_ = redisNotifier.Close()
		}()
		sinks = append(sinks, redisNotifier)
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		ServiceName:       cfg.Telemetry.ServiceName,
		PushEnabled:       cfg.Telemetry.MetricsPush,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	opts := []ledgerapp.Option{
		ledgerapp.WithLogger(log),
		ledgerapp.WithNotifier(notification.NewMultiNotifier(sinks...)),
		ledgerapp.WithOptions(ledgerapp.Options{
			RepairBatchSize: cfg.Ledger.RepairBatchSize,
			DefaultPageSize: cfg.Ledger.DefaultPageSize,
			MaxPageSize:     cfg.Ledger.MaxPageSize,
		}),
	}
	if mp.IsEnabled() {
		metrics, err := telemetry.NewLedgerMetrics(mp.Meter(telemetry.TracerName))
		if err != nil {
			log.Fatal("Failed to create ledger metrics", zap.Error(err))
		}
		opts = append(opts, ledgerapp.WithMetrics(metrics))
	}
	ledgerService := ledgerapp.NewService(persistence.NewGormStore(db.DB), opts...)

	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	engineCfg := router.EngineConfig{
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.TracingEnabled,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		Ledger:         ledgerHandler,
		System:         handler.NewSystemHandler(cfg.App.Name, version, db),
	}
	if mp.IsEnabled() {
		engineCfg.Meter = mp.Meter("http.server")
		engineCfg.MetricsHandler = mp.Handler()
		engineCfg.MetricsPath = cfg.Telemetry.MetricsPath
	}
	engine, err := router.NewEngine(engineCfg)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := ledgerHandler.Wait(shutdownCtx); err != nil {
		log.Warn("Background invoice balance repair still running at exit", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush traces", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to flush metrics", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
