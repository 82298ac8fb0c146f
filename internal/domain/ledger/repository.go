package ledger

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceOrder is a sort key understood by InvoiceRepository.Find
type InvoiceOrder string

const (
	OrderByDueDate     InvoiceOrder = "due_date"
	OrderByInvoiceDate InvoiceOrder = "invoice_date"
	OrderByID          InvoiceOrder = "id"
)

// InvoiceQuery is the typed filter for invoice reads. Zero values mean "no restriction".
type InvoiceQuery struct {
	CustomerID          uuid.UUID
	Statuses            []InvoiceStatus
	PositiveBalanceOnly bool
	ZeroBalanceOnly     bool
	// InvoiceIDs restricts the result to a caller-supplied subset when non-empty
	InvoiceIDs []uuid.UUID
	// AfterID is a keyset cursor, used with OrderByID
	AfterID uuid.UUID
	OrderBy []InvoiceOrder
	Limit   int
	// ForUpdate takes row locks where the database supports them
	ForUpdate bool
}

// OpenInvoicesQuery selects the invoices a payment may be allocated to, in allocation order
func OpenInvoicesQuery(customerID uuid.UUID, invoiceIDs []uuid.UUID) InvoiceQuery {
	return InvoiceQuery{
		CustomerID:          customerID,
		Statuses:            []InvoiceStatus{InvoiceStatusOpen, InvoiceStatusPartial},
		PositiveBalanceOnly: true,
		InvoiceIDs:          invoiceIDs,
		OrderBy:             []InvoiceOrder{OrderByDueDate, OrderByInvoiceDate},
	}
}

// CustomerInvoicesQuery selects every invoice of a customer regardless of status
func CustomerInvoicesQuery(customerID uuid.UUID) InvoiceQuery {
	return InvoiceQuery{
		CustomerID: customerID,
		OrderBy:    []InvoiceOrder{OrderByDueDate, OrderByInvoiceDate},
	}
}

// ZeroBalanceBatchQuery pages through zero-balance invoices by ID
func ZeroBalanceBatchQuery(afterID uuid.UUID, limit int) InvoiceQuery {
	return InvoiceQuery{
		ZeroBalanceOnly: true,
		AfterID:         afterID,
		OrderBy:         []InvoiceOrder{OrderByID},
		Limit:           limit,
	}
}

// WithLock returns a copy of the query that locks the selected rows
func (q InvoiceQuery) WithLock() InvoiceQuery {
	q.ForUpdate = true
	return q
}

// InvoiceRepository reads and writes invoices.
// FindByID methods return nil, nil when the invoice does not exist.
// Update is versioned and returns ErrConcurrencyConflict when the stored version moved.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	Find(ctx context.Context, q InvoiceQuery) ([]*Invoice, error)
	Create(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository stores payments and their append-only application rows
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, page shared.PageRequest) ([]*Payment, int64, error)
	FindAllByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Payment, error)
	Create(ctx context.Context, payment *Payment) error
	// UpdateSettlement persists AllocatedAmount and CreditAmount, the only mutable fields
	UpdateSettlement(ctx context.Context, payment *Payment) error
	CreateApplication(ctx context.Context, app *PaymentApplication) error
	FindApplicationsByPayments(ctx context.Context, paymentIDs []uuid.UUID) ([]*PaymentApplication, error)
	SumAppliedByInvoice(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// CreditRepository stores credits and their append-only application rows
type CreditRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Credit, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Credit, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]*Credit, error)
	Create(ctx context.Context, credit *Credit) error
	Update(ctx context.Context, credit *Credit) error
	CreateApplication(ctx context.Context, app *CreditApplication) error
	FindApplicationsByCredit(ctx context.Context, creditID uuid.UUID) ([]*CreditApplication, error)
	SumAppliedByInvoice(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)
}

// CustomerRepository gives read access to customers. Create exists for seeding.
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Create(ctx context.Context, customer *Customer) error
}

// Repositories groups the record stores visible inside or outside a unit of work
type Repositories interface {
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	Credits() CreditRepository
	Customers() CustomerRepository
}

// UnitOfWork is an open atomic transaction. Every repository it hands out writes
// inside the transaction. Exactly one of Commit or Rollback ends it; Rollback after
// Commit is a no-op, so callers may defer Rollback unconditionally.
type UnitOfWork interface {
	Repositories
	Commit() error
	Rollback() error
}

// Store is the ledger's storage dependency: non-transactional reads plus a way to
// open a unit of work.
type Store interface {
	Repositories
	Begin(ctx context.Context) (UnitOfWork, error)
}
