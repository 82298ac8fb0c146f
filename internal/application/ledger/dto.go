package ledger

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProcessPaymentRequest is the input of ProcessPayment
type ProcessPaymentRequest struct {
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	Method          ledger.PaymentMethod
	PaymentDate     time.Time
	ReferenceNumber string
	Notes           string
	RecordedBy      uuid.UUID
	// InvoiceIDs optionally restricts allocation to these invoices
	InvoiceIDs []uuid.UUID
}

// InvoiceUpdate describes what a payment did to one invoice
type InvoiceUpdate struct {
	InvoiceID     uuid.UUID            `json:"invoice_id"`
	InvoiceNumber string               `json:"invoice_number"`
	AmountApplied decimal.Decimal      `json:"amount_applied"`
	BalanceBefore decimal.Decimal      `json:"balance_before"`
	NewBalance    decimal.Decimal      `json:"new_balance"`
	NewStatus     ledger.InvoiceStatus `json:"new_status"`
}

// AllocationResult is returned by ProcessPayment
type AllocationResult struct {
	PaymentID       uuid.UUID       `json:"payment_id"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalAllocated  decimal.Decimal `json:"total_allocated"`
	TotalCredit     decimal.Decimal `json:"total_credit"`
	InvoicesUpdated []InvoiceUpdate `json:"invoices_updated"`
	CreditCreated   *CreditView     `json:"credit_created,omitempty"`
}

// AllocationPreview is the read-only plan returned by PreviewAllocation
type AllocationPreview struct {
	Amount         decimal.Decimal `json:"amount"`
	TotalAllocated decimal.Decimal `json:"total_allocated"`
	CreditAmount   decimal.Decimal `json:"credit_amount"`
	Lines          []InvoiceUpdate `json:"lines"`
}

func invoiceUpdatesFromPlan(plan ledger.AllocationPlan) []InvoiceUpdate {
	updates := make([]InvoiceUpdate, len(plan.Lines))
	for i, line := range plan.Lines {
		updates[i] = InvoiceUpdate{
			InvoiceID:     line.InvoiceID,
			InvoiceNumber: line.InvoiceNumber,
			AmountApplied: line.AmountApplied,
			BalanceBefore: line.BalanceBefore,
			NewBalance:    line.BalanceAfter,
			NewStatus:     line.StatusAfter,
		}
	}
	return updates
}

// CreateCreditRequest is the input of CreateCredit
type CreateCreditRequest struct {
	CustomerID      uuid.UUID
	Amount          decimal.Decimal
	SourcePaymentID *uuid.UUID
	Reason          ledger.CreditReason
	CreatedBy       uuid.UUID
}

// ApplyCreditRequest is the input of ApplyCreditToInvoice
type ApplyCreditRequest struct {
	CreditID  uuid.UUID
	InvoiceID uuid.UUID
	Amount    decimal.Decimal
	AppliedBy uuid.UUID
}

// ApplicationResult is returned by ApplyCreditToInvoice
type ApplicationResult struct {
	CreditID           uuid.UUID            `json:"credit_id"`
	InvoiceID          uuid.UUID            `json:"invoice_id"`
	AmountApplied      decimal.Decimal      `json:"amount_applied"`
	NewCreditAvailable decimal.Decimal      `json:"new_credit_available"`
	NewCreditStatus    ledger.CreditStatus  `json:"new_credit_status"`
	NewInvoiceBalance  decimal.Decimal      `json:"new_invoice_balance"`
	NewInvoiceStatus   ledger.InvoiceStatus `json:"new_invoice_status"`
}

// InvoiceView is the read model of an invoice
type InvoiceView struct {
	ID            uuid.UUID            `json:"id"`
	InvoiceNumber string               `json:"invoice_number"`
	CustomerID    uuid.UUID            `json:"customer_id"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Balance       decimal.Decimal      `json:"balance"`
	InvoiceDate   time.Time            `json:"invoice_date"`
	DueDate       time.Time            `json:"due_date"`
	Status        ledger.InvoiceStatus `json:"status"`
}

func toInvoiceView(inv *ledger.Invoice) InvoiceView {
	return InvoiceView{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		TotalAmount:   inv.TotalAmount,
		Balance:       inv.Balance,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Status:        inv.Status,
	}
}

// PaymentApplicationView is one invoice touched by a payment
type PaymentApplicationView struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
}

// PaymentView is the read model of a payment with its applications
type PaymentView struct {
	ID              uuid.UUID                `json:"id"`
	CustomerID      uuid.UUID                `json:"customer_id"`
	Amount          decimal.Decimal          `json:"amount"`
	AllocatedAmount decimal.Decimal          `json:"allocated_amount"`
	CreditAmount    decimal.Decimal          `json:"credit_amount"`
	Method          ledger.PaymentMethod     `json:"method"`
	Status          ledger.PaymentStatus     `json:"status"`
	PaymentDate     time.Time                `json:"payment_date"`
	ReferenceNumber string                   `json:"reference_number,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	RecordedBy      uuid.UUID                `json:"recorded_by"`
	CreatedAt       time.Time                `json:"created_at"`
	Applications    []PaymentApplicationView `json:"applications"`
}

func toPaymentView(p *ledger.Payment, apps []*ledger.PaymentApplication) PaymentView {
	view := PaymentView{
		ID:              p.ID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		AllocatedAmount: p.AllocatedAmount,
		CreditAmount:    p.CreditAmount,
		Method:          p.Method,
		Status:          p.Status,
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		RecordedBy:      p.RecordedBy,
		CreatedAt:       p.CreatedAt,
		Applications:    make([]PaymentApplicationView, 0, len(apps)),
	}
	for _, a := range apps {
		view.Applications = append(view.Applications, PaymentApplicationView{
			InvoiceID:     a.InvoiceID,
			AmountApplied: a.AmountApplied,
		})
	}
	return view
}

// CreditView is the read model of a credit
type CreditView struct {
	ID              uuid.UUID           `json:"id"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	Amount          decimal.Decimal     `json:"amount"`
	AvailableAmount decimal.Decimal     `json:"available_amount"`
	SourcePaymentID *uuid.UUID          `json:"source_payment_id,omitempty"`
	Reason          ledger.CreditReason `json:"reason"`
	Status          ledger.CreditStatus `json:"status"`
	CreatedBy       uuid.UUID           `json:"created_by"`
	CreatedAt       time.Time           `json:"created_at"`
}

func toCreditView(c *ledger.Credit) *CreditView {
	return &CreditView{
		ID:              c.ID,
		CustomerID:      c.CustomerID,
		Amount:          c.Amount,
		AvailableAmount: c.AvailableAmount,
		SourcePaymentID: c.SourcePaymentID,
		Reason:          c.Reason,
		Status:          c.Status,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
	}
}

// PaymentHistory is a page of a customer's payments
type PaymentHistory = shared.Paginated[PaymentView]

// CustomerCredits is returned by GetCustomerCredits
type CustomerCredits struct {
	Credits              []CreditView    `json:"credits"`
	TotalAvailableCredit decimal.Decimal `json:"total_available_credit"`
}

// CustomerLedger is returned by GetCustomerLedger
type CustomerLedger struct {
	CustomerID uuid.UUID            `json:"customer_id"`
	Invoices   []InvoiceView        `json:"invoices"`
	Payments   []PaymentView        `json:"payments"`
	Credits    []CreditView         `json:"credits"`
	Summary    ledger.LedgerSummary `json:"summary"`
}

// RepairReport summarizes a balance repair run
type RepairReport struct {
	Checked  int `json:"checked"`
	Repaired int `json:"repaired"`
	Batches  int `json:"batches"`
}
