package ledger

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessPayment records a payment, allocates it to the customer's open invoices
// (due date, then invoice date, oldest first) and turns any excess into an
// OVERPAYMENT credit. Everything happens in one unit of work.
func (s *Service) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*AllocationResult, error) {
	const op = "process_payment"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCustomerID, req.CustomerID,
		telemetry.AttrAmount, req.Amount.String(),
	)

	amount := valueobject.NewMoney(req.Amount)
	if !amount.IsPositive() {
		return nil, s.fail(ctx, span, op, ledger.ErrInvalidAmount)
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	defer func() { _ = uow.Rollback() }()

	result, err := s.allocatePayment(ctx, uow, amount, req)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	if err := commit(uow); err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	telemetry.SetAttributes(span, telemetry.AttrPaymentID, result.PaymentID)
	s.metrics.RecordPayment(ctx, result.TotalAllocated, result.TotalCredit)
	if result.CreditCreated != nil {
		s.metrics.RecordCreditCreated(ctx, string(ledger.CreditReasonOverpayment))
	}
	s.log(ctx).Info("Payment processed",
		zap.String("payment_id", result.PaymentID.String()),
		zap.String("customer_id", req.CustomerID.String()),
		zap.String("allocated", result.TotalAllocated.String()),
		zap.String("credited", result.TotalCredit.String()),
		zap.Int("invoices_updated", len(result.InvoicesUpdated)),
	)
	return result, nil
}

// allocatePayment performs the writes of ProcessPayment inside uow
func (s *Service) allocatePayment(ctx context.Context, uow ledger.UnitOfWork, amount valueobject.Money, req ProcessPaymentRequest) (*AllocationResult, error) {
	customer, err := uow.Customers().FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	if customer == nil {
		return nil, ledger.NotFound("customer", req.CustomerID)
	}

	payment, err := ledger.NewPayment(req.CustomerID, amount, req.Method, req.PaymentDate, req.RecordedBy)
	if err != nil {
		return nil, err
	}
	payment.SetReference(req.ReferenceNumber, req.Notes)
	if err := uow.Payments().Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	// balances are re-read under lock inside this unit of work
	invoices, err := uow.Invoices().Find(ctx, ledger.OpenInvoicesQuery(req.CustomerID, req.InvoiceIDs).WithLock())
	if err != nil {
		return nil, fmt.Errorf("load open invoices: %w", err)
	}
	plan, err := ledger.PlanAllocation(amount, invoices)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*ledger.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
	}
	for _, line := range plan.Lines {
		inv := byID[line.InvoiceID]
		if err := inv.ReduceBalance(line.AmountApplied); err != nil {
			return nil, err
		}
		if err := uow.Invoices().Update(ctx, inv); err != nil {
			return nil, fmt.Errorf("update invoice %s: %w", inv.InvoiceNumber, err)
		}
		app := ledger.NewPaymentApplication(payment.ID, inv.ID, line.AmountApplied)
		if err := uow.Payments().CreateApplication(ctx, app); err != nil {
			return nil, fmt.Errorf("record payment application: %w", err)
		}
	}

	result := &AllocationResult{
		PaymentID:       payment.ID,
		TotalPaid:       payment.Amount,
		TotalAllocated:  plan.TotalAllocated,
		TotalCredit:     decimal.Zero,
		InvoicesUpdated: invoiceUpdatesFromPlan(plan),
	}

	if plan.HasOverpayment() {
		sourceID := payment.ID
		credit, err := ledger.NewCredit(req.CustomerID, valueobject.NewMoney(plan.Remaining), &sourceID,
			ledger.CreditReasonOverpayment, req.RecordedBy)
		if err != nil {
			return nil, err
		}
		if err := uow.Credits().Create(ctx, credit); err != nil {
			return nil, fmt.Errorf("create overpayment credit: %w", err)
		}
		result.TotalCredit = plan.Remaining
		result.CreditCreated = toCreditView(credit)
	}

	if err := payment.Settle(plan.TotalAllocated, plan.Remaining); err != nil {
		return nil, err
	}
	if err := uow.Payments().UpdateSettlement(ctx, payment); err != nil {
		return nil, fmt.Errorf("settle payment: %w", err)
	}
	return result, nil
}

// PreviewAllocation returns the plan ProcessPayment would execute right now, without writing
func (s *Service) PreviewAllocation(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, invoiceIDs []uuid.UUID) (*AllocationPreview, error) {
	const op = "preview_allocation"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.AttrCustomerID, customerID, telemetry.AttrAmount, amount.String())

	money := valueobject.NewMoney(amount)
	if !money.IsPositive() {
		return nil, s.fail(ctx, span, op, ledger.ErrInvalidAmount)
	}
	if err := s.requireCustomer(ctx, customerID); err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	invoices, err := s.store.Invoices().Find(ctx, ledger.OpenInvoicesQuery(customerID, invoiceIDs))
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load open invoices: %w", err))
	}
	plan, err := ledger.PlanAllocation(money, invoices)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	return &AllocationPreview{
		Amount:         plan.Amount,
		TotalAllocated: plan.TotalAllocated,
		CreditAmount:   plan.Remaining,
		Lines:          invoiceUpdatesFromPlan(plan),
	}, nil
}

// GetCustomerPayments returns one page of a customer's payments, newest first,
// each with the invoices it was applied to
func (s *Service) GetCustomerPayments(ctx context.Context, customerID uuid.UUID, page, limit int) (*PaymentHistory, error) {
	const op = "get_customer_payments"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.AttrCustomerID, customerID)

	req := shared.NewPageRequest(page, limit, s.opts.DefaultPageSize, s.opts.MaxPageSize)
	payments, total, err := s.store.Payments().FindByCustomer(ctx, customerID, req)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load payments: %w", err))
	}
	views, err := s.paymentViews(ctx, payments)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	history := shared.NewPaginated(views, total, req.Page, req.PageSize)
	return &history, nil
}

func (s *Service) paymentViews(ctx context.Context, payments []*ledger.Payment) ([]PaymentView, error) {
	ids := make([]uuid.UUID, len(payments))
	for i, p := range payments {
		ids[i] = p.ID
	}
	apps, err := s.store.Payments().FindApplicationsByPayments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load payment applications: %w", err)
	}
	byPayment := make(map[uuid.UUID][]*ledger.PaymentApplication, len(payments))
	for _, a := range apps {
		byPayment[a.PaymentID] = append(byPayment[a.PaymentID], a)
	}

	views := make([]PaymentView, len(payments))
	for i, p := range payments {
		views[i] = toPaymentView(p, byPayment[p.ID])
	}
	return views, nil
}

func (s *Service) requireCustomer(ctx context.Context, customerID uuid.UUID) error {
	customer, err := s.store.Customers().FindByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("load customer: %w", err)
	}
	if customer == nil {
		return ledger.NotFound("customer", customerID)
	}
	return nil
}
