// Package ledger holds the payment allocation and credit ledger use cases.
// Every mutating operation runs in one explicit unit of work: it commits
// completely or leaves nothing behind.
package ledger

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const serviceName = "ledger"

// Notification kinds sent during balance repair
const (
	NotifyRepairProgress  = "REPAIR_PROGRESS"
	NotifyRepairCompleted = "REPAIR_COMPLETED"
	NotifyRepairFailed    = "REPAIR_FAILED"
)

// Notifier pushes a status message to a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind, title, message string, progress map[string]any) error
}

// Metrics is the subset of business counters the service records
type Metrics interface {
	RecordPayment(ctx context.Context, allocated, credited decimal.Decimal)
	RecordCreditCreated(ctx context.Context, reason string)
	RecordCreditApplied(ctx context.Context)
	RecordInvoicesRepaired(ctx context.Context, n int)
	RecordError(ctx context.Context, operation, code string)
}

// Options tunes the service
type Options struct {
	RepairBatchSize int
	DefaultPageSize int
	MaxPageSize     int
}

func (o Options) withDefaults() Options {
	if o.RepairBatchSize <= 0 {
		o.RepairBatchSize = 500
	}
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = shared.DefaultPageSize
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = shared.MaxPageSize
	}
	return o
}

// Service implements the ledger entry points
type Service struct {
	store    ledger.Store
	notifier Notifier
	metrics  Metrics
	logger   *zap.Logger
	opts     Options
}

// Option configures optional collaborators of the Service
type Option func(*Service)

// WithNotifier sets the sink for repair progress messages
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithMetrics sets the business metrics recorder
func WithMetrics(m Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOptions sets batch and paging limits
func WithOptions(o Options) Option {
	return func(s *Service) {
		s.opts = o.withDefaults()
	}
}

// NewService creates the ledger service on top of store
func NewService(store ledger.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		notifier: nopNotifier{},
		metrics:  nopMetrics{},
		logger:   zap.NewNop(),
		opts:     Options{}.withDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// log prefers the request-scoped logger carried by ctx
func (s *Service) log(ctx context.Context) *zap.Logger {
	if l := logger.FromContext(ctx); l.Core().Enabled(zap.FatalLevel) {
		return l
	}
	return s.logger
}

// fail records a rejected or failed operation on the span, the metrics and the log
func (s *Service) fail(ctx context.Context, span trace.Span, operation string, err error) error {
	telemetry.RecordError(span, err)
	code := shared.ErrorCode(err)
	s.metrics.RecordError(ctx, operation, code)

	var de *shared.DomainError
	if errors.As(err, &de) && code != ledger.CodeTransactionFailure {
		s.log(ctx).Warn("Ledger operation rejected",
			zap.String("operation", operation),
			zap.String("code", code),
			zap.String("reason", de.Message))
	} else {
		s.log(ctx).Error("Ledger operation failed",
			zap.String("operation", operation),
			zap.Error(err))
	}
	return err
}

// commit ends uow, turning a storage-level commit failure into TRANSACTION_FAILURE
func commit(uow ledger.UnitOfWork) error {
	if err := uow.Commit(); err != nil {
		return ledger.TransactionFailure(err)
	}
	return nil
}

// begin opens a unit of work, reporting failure as TRANSACTION_FAILURE
func (s *Service) begin(ctx context.Context) (ledger.UnitOfWork, error) {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, ledger.TransactionFailure(err)
	}
	return uow, nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, uuid.UUID, string, string, string, map[string]any) error {
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordPayment(context.Context, decimal.Decimal, decimal.Decimal) {}
func (nopMetrics) RecordCreditCreated(context.Context, string) {}
func (nopMetrics) RecordCreditApplied(context.Context) {}
func (nopMetrics) RecordInvoicesRepaired(context.Context, int) {}
func (nopMetrics) RecordError(context.Context, string, string) {}
