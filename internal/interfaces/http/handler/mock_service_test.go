package handler

import (
	"context"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockLedgerService struct {
	mock.Mock
}

func (m *mockLedgerService) ProcessPayment(ctx context.Context, req ledgerapp.ProcessPaymentRequest) (*ledgerapp.AllocationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.AllocationResult), args.Error(1)
}

func (m *mockLedgerService) PreviewAllocation(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, invoiceIDs []uuid.UUID) (*ledgerapp.AllocationPreview, error) {
	args := m.Called(ctx, customerID, amount, invoiceIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.AllocationPreview), args.Error(1)
}

func (m *mockLedgerService) GetCustomerPayments(ctx context.Context, customerID uuid.UUID, page, limit int) (*ledgerapp.PaymentHistory, error) {
	args := m.Called(ctx, customerID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.PaymentHistory), args.Error(1)
}

func (m *mockLedgerService) CreateCredit(ctx context.Context, req ledgerapp.CreateCreditRequest) (*ledgerapp.CreditView, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CreditView), args.Error(1)
}

func (m *mockLedgerService) GetCustomerCredits(ctx context.Context, customerID uuid.UUID, activeOnly bool) (*ledgerapp.CustomerCredits, error) {
	args := m.Called(ctx, customerID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CustomerCredits), args.Error(1)
}

func (m *mockLedgerService) ApplyCreditToInvoice(ctx context.Context, req ledgerapp.ApplyCreditRequest) (*ledgerapp.ApplicationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.ApplicationResult), args.Error(1)
}

func (m *mockLedgerService) GetCustomerLedger(ctx context.Context, customerID uuid.UUID) (*ledgerapp.CustomerLedger, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.CustomerLedger), args.Error(1)
}

func (m *mockLedgerService) InitializeInvoiceBalances(ctx context.Context, requestedBy uuid.UUID) (*ledgerapp.RepairReport, error) {
	args := m.Called(ctx, requestedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgerapp.RepairReport), args.Error(1)
}
