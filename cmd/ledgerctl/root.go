package main

import (
	"fmt"
	"os"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/notification"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Ledger maintenance CLI",
	Long: `ledgerctl talks to the ledger database directly. Connection settings are read
from config.toml and LEDGER_* environment variables, the same way the server reads them.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

// session is what a subcommand needs to call the ledger service
type session struct {
	log     *zap.Logger
	db      *persistence.Database
	service *ledgerapp.Service
}

func (s *session) Close() {
	_ = s.db.Close()
	_ = s.log.Sync()
}

func openSession(cmd *cobra.Command) (*session, error) {
	level, _ := cmd.Flags().GetString("log-level")
	log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel), cfg.Database.SlowThreshold)
	db, err := persistence.NewDatabase(&cfg.Database, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
	}

	service := ledgerapp.NewService(persistence.NewGormStore(db.DB),
		ledgerapp.WithLogger(log),
		ledgerapp.WithNotifier(notification.NewLogNotifier(log)),
		ledgerapp.WithOptions(ledgerapp.Options{
			RepairBatchSize: cfg.Ledger.RepairBatchSize,
			DefaultPageSize: cfg.Ledger.DefaultPageSize,
			MaxPageSize:     cfg.Ledger.MaxPageSize,
		}),
	)
	return &session{log: log, db: db, service: service}, nil
}
