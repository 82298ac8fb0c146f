package ledger

import (
	"context"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// GetCustomerLedger reads a customer's full history and computes the summary.
// It never writes and never caches, so repeated calls without writes in between
// return identical results.
func (s *Service) GetCustomerLedger(ctx context.Context, customerID uuid.UUID) (*CustomerLedger, error) {
	const op = "get_customer_ledger"
	ctx, span := telemetry.StartServiceSpan(ctx, serviceName, op)
	defer span.End()
	telemetry.SetAttributes(span, telemetry.AttrCustomerID, customerID)

	customer, err := s.store.Customers().FindByID(ctx, customerID)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load customer: %w", err))
	}
	if customer == nil {
		return nil, s.fail(ctx, span, op, ledger.NotFound("customer", customerID))
	}

	invoices, err := s.store.Invoices().Find(ctx, ledger.CustomerInvoicesQuery(customerID))
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load invoices: %w", err))
	}
	payments, err := s.store.Payments().FindAllByCustomer(ctx, customerID)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load payments: %w", err))
	}
	credits, err := s.store.Credits().FindByCustomer(ctx, customerID, false)
	if err != nil {
		return nil, s.fail(ctx, span, op, fmt.Errorf("load credits: %w", err))
	}
	paymentViews, err := s.paymentViews(ctx, payments)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	result := &CustomerLedger{
		CustomerID: customerID,
		Invoices:   make([]InvoiceView, len(invoices)),
		Payments:   paymentViews,
		Credits:    make([]CreditView, len(credits)),
		Summary:    ledger.Summarize(customer.OpeningBalance, invoices, payments, credits),
	}
	for i, inv := range invoices {
		result.Invoices[i] = toInvoiceView(inv)
	}
	for i, c := range credits {
		result.Credits[i] = *toCreditView(c)
	}
	return result, nil
}
