package handler

import (
	"context"
	"strconv"
	"sync"
	"time"

	ledgerapp "github.com/erp/ledger/internal/application/ledger"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService is the application surface the ledger handler drives
type LedgerService interface {
	ProcessPayment(ctx context.Context, req ledgerapp.ProcessPaymentRequest) (*ledgerapp.AllocationResult, error)
	PreviewAllocation(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal, invoiceIDs []uuid.UUID) (*ledgerapp.AllocationPreview, error)
	GetCustomerPayments(ctx context.Context, customerID uuid.UUID, page, limit int) (*ledgerapp.PaymentHistory, error)
	CreateCredit(ctx context.Context, req ledgerapp.CreateCreditRequest) (*ledgerapp.CreditView, error)
	GetCustomerCredits(ctx context.Context, customerID uuid.UUID, activeOnly bool) (*ledgerapp.CustomerCredits, error)
	ApplyCreditToInvoice(ctx context.Context, req ledgerapp.ApplyCreditRequest) (*ledgerapp.ApplicationResult, error)
	GetCustomerLedger(ctx context.Context, customerID uuid.UUID) (*ledgerapp.CustomerLedger, error)
	InitializeInvoiceBalances(ctx context.Context, requestedBy uuid.UUID) (*ledgerapp.RepairReport, error)
}

// LedgerHandler exposes payments, credits and the customer ledger over HTTP
type LedgerHandler struct {
	BaseHandler
	service LedgerService
	now     func() time.Time
	running sync.WaitGroup
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service: service,
		now:     time.Now,
	}
}

// ProcessPayment godoc
// @ID           processPayment
// @Summary      Record and allocate a payment
// @Description  Allocates the payment to open invoices, oldest due first; any excess becomes an OVERPAYMENT credit
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        X-User-ID header string true "Acting user" format(uuid)
// @Param        request body ProcessPaymentRequest true "Payment"
// @Success      201 {object} APIResponse[ledger.AllocationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Router       /customers/{id}/payments [post]
func (h *LedgerHandler) ProcessPayment(c *gin.Context) {
	customerID, ok := h.parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	paymentDate := h.now().UTC().Truncate(24 * time.Hour)
	if req.PaymentDate != "" {
		parsed, err := time.Parse(paymentDateLayout, req.PaymentDate)
		if err != nil {
			h.BadRequest(c, "Invalid payment_date")
			return
		}
		paymentDate = parsed
	}

	result, err := h.service.ProcessPayment(c.Request.Context(), ledgerapp.ProcessPaymentRequest{
		CustomerID:      customerID,
		Amount:          req.Amount,
		Method:          ledger.PaymentMethod(req.Method),
		PaymentDate:     paymentDate,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		RecordedBy:      userID,
		InvoiceIDs:      req.InvoiceIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// PreviewAllocation godoc
// @ID           previewAllocation
// @Summary      Preview a payment allocation
// @Description  Returns the plan a payment of this amount would execute now, without writing anything
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        request body PreviewAllocationRequest true "Amount"
// @Success      200 {object} APIResponse[ledger.AllocationPreview]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /customers/{id}/payments/preview [post]
func (h *LedgerHandler) PreviewAllocation(c *gin.Context) {
	customerID, ok := h.parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}
	var req PreviewAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	preview, err := h.service.PreviewAllocation(c.Request.Context(), customerID, req.Amount, req.InvoiceIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// GetCustomerPayments godoc
// @ID           listCustomerPayments
// @Summary      List a customer's payments
// @Description  Newest first, each with the invoices it was applied to
// @Tags         payments
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]ledger.PaymentView]
// @Failure      400 {object} ErrorResponse
// @Router       /customers/{id}/payments [get]
func (h *LedgerHandler) GetCustomerPayments(c *gin.Context) {
	customerID, ok := h.parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}
	page, ok := h.intQuery(c, "page", 1)
	if !ok {
		return
	}
	limit, ok := h.intQuery(c, "limit", 0)
	if !ok {
		return
	}

	history, err := h.service.GetCustomerPayments(c.Request.Context(), customerID, page, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, history.Items, history.Total, history.Page, history.PageSize)
}

// CreateCredit godoc
// @ID           createCredit
// @Summary      Issue a manual credit
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        X-User-ID header string true "Acting user" format(uuid)
// @Param        request body CreateCreditRequest true "Credit"
// @Success      201 {object} APIResponse[ledger.CreditView]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /customers/{id}/credits [post]
func (h *LedgerHandler) CreateCredit(c *gin.Context) {
	customerID, ok := h.parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req CreateCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	credit, err := h.service.CreateCredit(c.Request.Context(), ledgerapp.CreateCreditRequest{
		CustomerID:      customerID,
		Amount:          req.Amount,
		SourcePaymentID: req.SourcePaymentID,
		Reason:          ledger.CreditReason(req.Reason),
		CreatedBy:       userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, credit)
}

// GetCustomerCredits godoc
// @ID           listCustomerCredits
// @Summary      List a customer's credits
// @Tags         credits
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Param        active_only query bool false "Only ACTIVE credits" default(false)
// @Success      200 {object} APIResponse[ledger.CustomerCredits]
// @Failure      400 {object} ErrorResponse
// @Router       /customers/{id}/credits [get]
func (h *LedgerHandler) GetCustomerCredits(c *gin.Context) {
	customerID, ok := h.parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}
	activeOnly := false
	if raw := c.Query("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "active_only must be true or false")
			return
		}
		activeOnly = v
	}

	credits, err := h.service.GetCustomerCredits(c.Request.Context(), customerID, activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, credits)
}

// ApplyCredit godoc
// @ID           applyCredit
// @Summary      Apply a credit to an invoice
// @Description  Consumes at most what the invoice still owes
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        id path string true "Credit ID" format(uuid)
// @Param        X-User-ID header string true "Acting user" format(uuid)
// @Param        request body ApplyCreditRequest true "Application"
// @Success      200 {object} APIResponse[ledger.ApplicationResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /credits/{id}/apply [post]
func (h *LedgerHandler) ApplyCredit(c *gin.Context) {
	creditID, ok := h.parseUUIDParam(c, "id", "credit")
	if !ok {
		return
	}
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req ApplyCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	result, err := h.service.ApplyCreditToInvoice(c.Request.Context(), ledgerapp.ApplyCreditRequest{
		CreditID:  creditID,
		InvoiceID: req.InvoiceID,
		Amount:    req.Amount,
		AppliedBy: userID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetCustomerLedger godoc
// @ID           getCustomerLedger
// @Summary      Get a customer's ledger
// @Description  Invoices, payments, credits and the computed balance summary
// @Tags         ledger
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[ledger.CustomerLedger]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /customers/{id}/ledger [get]
func (h *LedgerHandler) GetCustomerLedger(c *gin.Context) {
	customerID, ok := h.parseUUIDParam(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.service.GetCustomerLedger(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RepairInvoiceBalances godoc
// @ID           repairInvoiceBalances
// @Summary      Repair zero invoice balances
// @Description  Recomputes zero balances from recorded applications. Runs in the background and reports progress through notifications unless wait=true.
// @Tags         maintenance
// @Produce      json
// @Param        X-User-ID header string true "Acting user" format(uuid)
// @Param        wait query bool false "Block until the repair finishes" default(false)
// @Success      200 {object} APIResponse[ledger.RepairReport]
// @Success      202 {object} APIResponse[RepairStartedResponse]
// @Failure      401 {object} ErrorResponse
// @Router       /maintenance/invoice-balances [post]
func (h *LedgerHandler) RepairInvoiceBalances(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	if wait, _ := strconv.ParseBool(c.Query("wait")); wait {
		report, err := h.service.InitializeInvoiceBalances(c.Request.Context(), userID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, report)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	log := logger.GetGinLogger(c)
	h.running.Add(1)
	go func() {
		defer h.running.Done()
		if _, err := h.service.InitializeInvoiceBalances(ctx, userID); err != nil {
			log.Error("Background invoice balance repair failed", zap.Error(err))
		}
	}()
	h.Accepted(c, RepairStartedResponse{Status: "started", RequestedBy: userID})
}

// Wait blocks until every background repair started by this handler has finished
// or ctx is done. It returns ctx.Err() when ctx ends first.
func (h *LedgerHandler) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.running.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// intQuery parses an optional positive integer query parameter
func (h *LedgerHandler) intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		h.BadRequest(c, name+" must be a positive integer")
		return 0, false
	}
	return v, true
}
