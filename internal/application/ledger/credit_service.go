package ledger

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateCredit issues a manual credit (adjustment, return, or an overpayment
// recorded outside ProcessPayment)
func (s *Service) CreateCredit(ctx context.Context, req CreateCreditRequest) (*CreditView, error) {
	const op = "create_credit"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.AttrCustomerID, req.CustomerID, telemetry.AttrAmount, req.Amount.String())

	amount := valueobject.NewMoney(req.Amount)
	if !amount.IsPositive() {
		return nil, s.fail(ctx, span, op, ledger.ErrInvalidAmount)
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	defer func() { _ = uow.Rollback() }()

	customer, err := uow.Customers().FindByID(ctx, req.CustomerID)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load customer: %w", err))
	}
	if customer == nil {
		return nil, s.fail(ctx, span, op, ledger.NotFound("customer", req.CustomerID))
	}

	credit, err := ledger.NewCredit(req.CustomerID, amount, req.SourcePaymentID, req.Reason, req.CreatedBy)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	if err := uow.Credits().Create(ctx, credit); err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("create credit: %w", err))
	}
	if err := commit(uow); err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	s.metrics.RecordCreditCreated(ctx, string(credit.Reason))
	s.log(ctx).Info("Credit created",
		zap.String("credit_id", credit.ID.String()),
		zap.String("customer_id", credit.CustomerID.String()),
		zap.String("reason", string(credit.Reason)),
		zap.String("amount", credit.Amount.String()),
	)
	return toCreditView(credit), nil
}

// ApplyCreditToInvoice spends part of a credit on one invoice. Checks run in a
// fixed order: amount, credit exists and is ACTIVE, credit covers amount, same
// customer, invoice not settled. Only what the invoice still owes is consumed.
func (s *Service) ApplyCreditToInvoice(ctx context.Context, req ApplyCreditRequest) (*ApplicationResult, error) {
	const op = "apply_credit"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.AttrCreditID, req.CreditID,
		telemetry.AttrInvoiceID, req.InvoiceID,
		telemetry.AttrAmount, req.Amount.String(),
	)

	if !req.Amount.IsPositive() {
		return nil, s.fail(ctx, span, op, ledger.ErrInvalidAmount)
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	defer func() { _ = uow.Rollback() }()

	result, err := s.applyCredit(ctx, uow, req)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}
	if err := commit(uow); err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	s.metrics.RecordCreditApplied(ctx)
	s.log(ctx).Info("Credit applied",
		zap.String("credit_id", req.CreditID.String()),
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("applied", result.AmountApplied.String()),
		zap.String("credit_available", result.NewCreditAvailable.String()),
	)
	return result, nil
}

func (s *Service) applyCredit(ctx context.Context, uow ledger.UnitOfWork, req ApplyCreditRequest) (*ApplicationResult, error) {
	credit, err := uow.Credits().FindByIDForUpdate(ctx, req.CreditID)
	if err != nil {
		return nil, fmt.Errorf("load credit: %w", err)
	}
	if credit == nil {
		return nil, ledger.NotFound("credit", req.CreditID)
	}
	// credit-side checks come before the invoice is even looked up
	if err := credit.CanCover(req.Amount); err != nil {
		return nil, err
	}

	inv, err := uow.Invoices().FindByIDForUpdate(ctx, req.InvoiceID)
	if err != nil {
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	if inv == nil {
		return nil, ledger.NotFound("invoice", req.InvoiceID)
	}

	app, err := credit.ApplyTo(inv, req.Amount, req.AppliedBy)
	if err != nil {
		return nil, err
	}
	if err := uow.Credits().Update(ctx, credit); err != nil {
		return nil, fmt.Errorf("update credit: %w", err)
	}
	if err := uow.Invoices().Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("update invoice: %w", err)
	}
	if err := uow.Credits().CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("record credit application: %w", err)
	}

	return &ApplicationResult{
		CreditID:           credit.ID,
		InvoiceID:          inv.ID,
		AmountApplied:      app.AmountApplied,
		NewCreditAvailable: credit.AvailableAmount,
		NewCreditStatus:    credit.Status,
		NewInvoiceBalance:  inv.Balance,
		NewInvoiceStatus:   inv.Status,
	}, nil
}

// GetCustomerCredits lists a customer's credits and the total still available.
// activeOnly keeps ACTIVE credits only.
func (s *Service) GetCustomerCredits(ctx context.Context, customerID uuid.UUID, activeOnly bool) (*CustomerCredits, error) {
	const op = "get_customer_credits"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.AttrCustomerID, customerID, "active_only", activeOnly)

	credits, err := s.store.Credits().FindByCustomer(ctx, customerID, activeOnly)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load credits: %w", err))
	}

	views := make([]CreditView, len(credits))
	for i, c := range credits {
		views[i] = *toCreditView(c)
	}
	return &CustomerCredits{
		Credits:              views,
		TotalAvailableCredit: ledger.TotalAvailableCredit(credits),
	}, nil
}
