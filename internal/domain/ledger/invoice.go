package ledger

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the settlement state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen    InvoiceStatus = "OPEN"    // balance == total
	InvoiceStatusPartial InvoiceStatus = "PARTIAL" // 0 < balance < total
	InvoiceStatusPaid    InvoiceStatus = "PAID"    // balance == 0
)

// IsValid checks if the status is a known InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// Payable reports whether allocations may still target an invoice in this status
func (s InvoiceStatus) Payable() bool {
	return s == InvoiceStatusOpen || s == InvoiceStatusPartial
}

// DeriveInvoiceStatus is the single rule mapping a balance to a status.
func DeriveInvoiceStatus(total, balance decimal.Decimal) InvoiceStatus {
	switch {
	case balance.LessThanOrEqual(decimal.Zero):
		return InvoiceStatusPaid
	case balance.GreaterThanOrEqual(total):
		return InvoiceStatusOpen
	default:
		return InvoiceStatusPartial
	}
}

// Invoice is a customer obligation. Issuance happens elsewhere; the ledger only
// ever lowers Balance, through payment allocation or credit application.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	CustomerID    uuid.UUID
	TotalAmount   decimal.Decimal
	Balance       decimal.Decimal
	InvoiceDate   time.Time
	DueDate       time.Time
	Status        InvoiceStatus
}

// NewInvoice creates an unpaid invoice whose balance equals its total
func NewInvoice(number string, customerID uuid.UUID, total valueobject.Money, invoiceDate, dueDate time.Time) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(CodeInvalidInput, "Customer ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError(CodeInvalidInput, "Invoice number cannot be empty")
	}
	if !total.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !total.FitsScale() {
		return nil, ErrAmountScale
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError(CodeInvalidInput, "Due date cannot be before invoice date")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     number,
		CustomerID:        customerID,
		TotalAmount:       total.Amount(),
		Balance:           total.Amount(),
		InvoiceDate:       invoiceDate.UTC(),
		DueDate:           dueDate.UTC(),
		Status:            InvoiceStatusOpen,
	}, nil
}

// Outstanding reports whether the invoice can still receive money
func (inv *Invoice) Outstanding() bool {
	return inv.Status.Payable() && inv.Balance.IsPositive()
}

// ReduceBalance lowers the balance by amount and re-derives the status.
// amount must be positive and no greater than the current balance.
func (inv *Invoice) ReduceBalance(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if inv.Balance.IsZero() {
		return ErrAlreadySettled
	}
	if amount.GreaterThan(inv.Balance) {
		return shared.NewDomainError(CodeInvariantViolation,
			fmt.Sprintf("amount %s exceeds balance %s of invoice %s", amount, inv.Balance, inv.InvoiceNumber))
	}
	inv.Balance = inv.Balance.Sub(amount)
	inv.Status = DeriveInvoiceStatus(inv.TotalAmount, inv.Balance)
	inv.Touch()
	return nil
}

// ResetBalance sets the balance from the recorded applications. It is only used by
// balance repair; normal flows never raise a balance.
func (inv *Invoice) ResetBalance(applied decimal.Decimal) {
	balance := inv.TotalAmount.Sub(applied)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	inv.Balance = balance
	inv.Status = DeriveInvoiceStatus(inv.TotalAmount, inv.Balance)
	inv.Touch()
}
