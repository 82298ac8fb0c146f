package ledger

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditStatus represents whether a credit still has money available
type CreditStatus string

const (
	CreditStatusActive  CreditStatus = "ACTIVE"
	CreditStatusApplied CreditStatus = "APPLIED"
)

// CreditReason records why a credit exists
type CreditReason string

const (
	CreditReasonOverpayment CreditReason = "OVERPAYMENT"
	CreditReasonAdjustment  CreditReason = "ADJUSTMENT"
	CreditReasonReturn      CreditReason = "RETURN"
)

// IsValid checks if the reason is known
func (r CreditReason) IsValid() bool {
	switch r {
	case CreditReasonOverpayment, CreditReasonAdjustment, CreditReasonReturn:
		return true
	}
	return false
}

// Credit is money owed back to a customer that can be spent on later invoices.
// Credits are never deleted; an exhausted credit stays as APPLIED.
type Credit struct {
	shared.BaseAggregateRoot
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	AvailableAmount decimal.Decimal
	SourcePaymentID *uuid.UUID
	Reason          CreditReason
	Status          CreditStatus
	CreatedBy       uuid.UUID
}

// NewCredit creates an ACTIVE credit with the full amount available
func NewCredit(customerID uuid.UUID, amount valueobject.Money, sourcePaymentID *uuid.UUID, reason CreditReason, createdBy uuid.UUID) (*Credit, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !amount.FitsScale() {
		return nil, ErrAmountScale
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(CodeInvalidInput, "Customer ID cannot be empty")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError(CodeInvalidInput, "Unknown credit reason")
	}

	return &Credit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Amount:            amount.Amount(),
		AvailableAmount:   amount.Amount(),
		SourcePaymentID:   sourcePaymentID,
		Reason:            reason,
		Status:            CreditStatusActive,
		CreatedBy:         createdBy,
	}, nil
}

// CanCover checks the credit-side preconditions of an application, in order:
// the credit must be ACTIVE and hold at least amount.
func (c *Credit) CanCover(amount decimal.Decimal) error {
	if c.Status != CreditStatusActive {
		return ErrInactiveCredit
	}
	if c.AvailableAmount.LessThan(amount) {
		return ErrInsufficientCredit
	}
	return nil
}

// ApplyTo consumes up to amount of this credit against the invoice.
// Only the portion the invoice still needs is taken. On error neither the
// credit nor the invoice is modified.
func (c *Credit) ApplyTo(inv *Invoice, amount decimal.Decimal, appliedBy uuid.UUID) (*CreditApplication, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if !valueobject.FitsScale(amount) {
		return nil, ErrAmountScale
	}
	if err := c.CanCover(amount); err != nil {
		return nil, err
	}
	if inv.CustomerID != c.CustomerID {
		return nil, ErrCrossCustomerMismatch
	}
	if inv.Balance.IsZero() {
		return nil, ErrAlreadySettled
	}

	applied := decimal.Min(inv.Balance, amount)
	if err := inv.ReduceBalance(applied); err != nil {
		return nil, err
	}

	c.AvailableAmount = c.AvailableAmount.Sub(applied)
	if c.AvailableAmount.IsZero() {
		c.Status = CreditStatusApplied
	}
	c.Touch()

	return &CreditApplication{
		ID:            uuid.New(),
		CreditID:      c.ID,
		InvoiceID:     inv.ID,
		AmountApplied: applied,
		AppliedBy:     appliedBy,
		CreatedAt:     time.Now().UTC(),
	}, nil
}

// CreditApplication is the append-only record of credit consumed by an invoice
type CreditApplication struct {
	ID            uuid.UUID
	CreditID      uuid.UUID
	InvoiceID     uuid.UUID
	AmountApplied decimal.Decimal
	AppliedBy     uuid.UUID
	CreatedAt     time.Time
}
