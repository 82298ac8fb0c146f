package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor gets no meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Instrument names. The Prometheus exporter appends _total to counters.
const (
	MetricPaymentsProcessed  = "ledger_payments_processed"
	MetricPaymentAmount      = "ledger_payment_amount"
	MetricCreditsCreated     = "ledger_credits_created"
	MetricCreditApplications = "ledger_credit_applications"
	MetricInvoicesRepaired   = "ledger_invoices_repaired"
	MetricOperationErrors    = "ledger_operation_errors"
)

// Payment amount kinds
const (
	AmountAllocated = "allocated"
	AmountCredited  = "credited"
)

// LedgerMetrics holds the business counters. A nil *LedgerMetrics is valid and
// records nothing.
type LedgerMetrics struct {
	paymentsProcessed  *Counter
	paymentAmount      *AmountCounter
	creditsCreated     *Counter
	creditApplications *Counter
	invoicesRepaired   *Counter
	operationErrors    *Counter
}

// NewLedgerMetrics creates the ledger instruments on meter.
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &LedgerMetrics{}
	var err error
	if m.paymentsProcessed, err = NewCounter(meter, MetricPaymentsProcessed,
		"Payments committed by the allocation engine", "{payment}"); err != nil {
		return nil, err
	}
	if m.paymentAmount, err = NewAmountCounter(meter, MetricPaymentAmount,
		"Sum of payment money, split by what it became", ""); err != nil {
		return nil, err
	}
	if m.creditsCreated, err = NewCounter(meter, MetricCreditsCreated,
		"Credits created, by reason", "{credit}"); err != nil {
		return nil, err
	}
	if m.creditApplications, err = NewCounter(meter, MetricCreditApplications,
		"Credit applications committed", "{application}"); err != nil {
		return nil, err
	}
	if m.invoicesRepaired, err = NewCounter(meter, MetricInvoicesRepaired,
		"Invoices whose balance was rewritten by balance repair", "{invoice}"); err != nil {
		return nil, err
	}
	if m.operationErrors, err = NewCounter(meter, MetricOperationErrors,
		"Failed ledger operations by operation and error code", "{error}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordPayment counts a committed payment and its allocated/credited split
func (m *LedgerMetrics) RecordPayment(ctx context.Context, allocated, credited decimal.Decimal) {
	if m == nil {
		return
	}
	m.paymentsProcessed.Inc(ctx)
	m.paymentAmount.Add(ctx, allocated.InexactFloat64(), AttrAmountKind.String(AmountAllocated))
	m.paymentAmount.Add(ctx, credited.InexactFloat64(), AttrAmountKind.String(AmountCredited))
}

// RecordCreditCreated counts a new credit
func (m *LedgerMetrics) RecordCreditCreated(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.creditsCreated.Inc(ctx, AttrCreditReason.String(reason))
}

// RecordCreditApplied counts a committed credit application
func (m *LedgerMetrics) RecordCreditApplied(ctx context.Context) {
	if m == nil {
		return
	}
	m.creditApplications.Inc(ctx)
}

// RecordInvoicesRepaired adds n repaired invoices
func (m *LedgerMetrics) RecordInvoicesRepaired(ctx context.Context, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.invoicesRepaired.Add(ctx, int64(n))
}

// RecordError counts a failed operation. An empty code is reported as "INTERNAL".
func (m *LedgerMetrics) RecordError(ctx context.Context, operation, code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "INTERNAL"
	}
	m.operationErrors.Inc(ctx, AttrOperation.String(operation), AttrErrorCode.String(code))
}
