package ledger

import (
	"fmt"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusVoided    PaymentStatus = "VOIDED"
)

// PaymentMethod is how the money was received
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is supported
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheck,
		PaymentMethodCard, PaymentMethodMobileMoney, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is money received from a customer. Amount is fixed at creation;
// AllocatedAmount and CreditAmount are filled in once allocation finishes.
type Payment struct {
	shared.BaseEntity
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	AllocatedAmount decimal.Decimal
	CreditAmount    decimal.Decimal
	Method          PaymentMethod
	Status          PaymentStatus
	PaymentDate     time.Time
	ReferenceNumber string
	Notes           string
	RecordedBy      uuid.UUID
}

// NewPayment creates a completed payment with nothing allocated yet
func NewPayment(customerID uuid.UUID, amount valueobject.Money, method PaymentMethod, paymentDate time.Time, recordedBy uuid.UUID) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !amount.FitsScale() {
		return nil, ErrAmountScale
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(CodeInvalidInput, "Customer ID cannot be empty")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(CodeInvalidInput, fmt.Sprintf("Unsupported payment method %q", method))
	}
	if paymentDate.IsZero() {
		return nil, shared.NewDomainError(CodeInvalidInput, "Payment date is required")
	}

	return &Payment{
		BaseEntity:      shared.NewBaseEntity(),
		CustomerID:      customerID,
		Amount:          amount.Amount(),
		AllocatedAmount: decimal.Zero,
		CreditAmount:    decimal.Zero,
		Method:          method,
		Status:          PaymentStatusCompleted,
		PaymentDate:     paymentDate.UTC(),
		RecordedBy:      recordedBy,
	}, nil
}

// SetReference attaches the optional reference number and notes
func (p *Payment) SetReference(referenceNumber, notes string) {
	p.ReferenceNumber = referenceNumber
	p.Notes = notes
}

// Settle records how the payment was split. allocated + credited must equal Amount exactly.
func (p *Payment) Settle(allocated, credited decimal.Decimal) error {
	if allocated.IsNegative() || credited.IsNegative() {
		return shared.NewDomainError(CodeInvariantViolation, "allocation amounts cannot be negative")
	}
	if !allocated.Add(credited).Equal(p.Amount) {
		return shared.NewDomainError(CodeInvariantViolation,
			fmt.Sprintf("allocated %s + credited %s does not equal payment amount %s", allocated, credited, p.Amount))
	}
	p.AllocatedAmount = allocated
	p.CreditAmount = credited
	p.Touch()
	return nil
}

// PaymentApplication is the append-only record of part of a payment reducing one invoice
type PaymentApplication struct {
	ID            uuid.UUID
	PaymentID     uuid.UUID
	InvoiceID     uuid.UUID
	AmountApplied decimal.Decimal
	CreatedAt     time.Time
}

// NewPaymentApplication creates a PaymentApplication row
func NewPaymentApplication(paymentID, invoiceID uuid.UUID, amount decimal.Decimal) *PaymentApplication {
	return &PaymentApplication{
		ID:            uuid.New(),
		PaymentID:     paymentID,
		InvoiceID:     invoiceID,
		AmountApplied: amount,
		CreatedAt:     time.Now().UTC(),
	}
}
