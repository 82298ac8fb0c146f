package handler

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// paymentDateLayout is the wire format of payment dates
const paymentDateLayout = "2006-01-02"

// ProcessPaymentRequest is the body of POST /customers/:id/payments
type ProcessPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required,decimal_gt0" swaggertype:"string" example:"5000.00"`
	Method          string          `json:"method" binding:"required,oneof=CASH BANK_TRANSFER CHECK CARD MOBILE_MONEY OTHER" example:"BANK_TRANSFER"`
	PaymentDate     string          `json:"payment_date" binding:"omitempty,datetime=2006-01-02" example:"2025-01-05"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes" binding:"max=1000"`
	// InvoiceIDs restricts allocation to these invoices; empty means all open invoices
	InvoiceIDs []uuid.UUID `json:"invoice_ids" binding:"max=500"`
}

// PreviewAllocationRequest is the body of POST /customers/:id/payments/preview
type PreviewAllocationRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required,decimal_gt0" swaggertype:"string" example:"5000.00"`
	InvoiceIDs []uuid.UUID     `json:"invoice_ids" binding:"max=500"`
}

// CreateCreditRequest is the body of POST /customers/:id/credits
type CreateCreditRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required,decimal_gt0" swaggertype:"string" example:"250.00"`
	Reason          string          `json:"reason" binding:"required,oneof=OVERPAYMENT ADJUSTMENT RETURN" example:"ADJUSTMENT"`
	SourcePaymentID *uuid.UUID      `json:"source_payment_id"`
}

// ApplyCreditRequest is the body of POST /credits/:id/apply
type ApplyCreditRequest struct {
	InvoiceID uuid.UUID       `json:"invoice_id" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required,decimal_gt0" swaggertype:"string" example:"100.00"`
}

// RepairStartedResponse is returned when a balance repair runs in the background
type RepairStartedResponse struct {
	Status      string    `json:"status" example:"started"`
	RequestedBy uuid.UUID `json:"requested_by"`
}
