package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements ledger.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds an invoice by ID and locks the row until the transaction ends
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Invoice, error) {
	query := r.db.WithContext(ctx)
	if supportsRowLocking(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOne(query, id)
}

func (r *GormInvoiceRepository) findOne(query *gorm.DB, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Find returns the invoices matching q, in the requested order
func (r *GormInvoiceRepository) Find(ctx context.Context, q ledger.InvoiceQuery) ([]*ledger.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})

	if q.CustomerID != uuid.Nil {
		query = query.Where("customer_id = ?", q.CustomerID)
	}
	if len(q.Statuses) > 0 {
		statuses := make([]string, len(q.Statuses))
		for i, s := range q.Statuses {
			statuses[i] = string(s)
		}
		query = query.Where("status IN ?", statuses)
	}
	if q.PositiveBalanceOnly {
		query = query.Where("balance > 0")
	}
	if q.ZeroBalanceOnly {
		query = query.Where("balance = 0")
	}
	if len(q.InvoiceIDs) > 0 {
		query = query.Where("id IN ?", q.InvoiceIDs)
	}
	if q.AfterID != uuid.Nil {
		query = query.Where("id > ?", q.AfterID)
	}

	for _, order := range q.OrderBy {
		switch order {
		case ledger.OrderByDueDate:
			query = query.Order("due_date ASC")
		case ledger.OrderByInvoiceDate:
			query = query.Order("invoice_date ASC")
		case ledger.OrderByID:
			query = query.Order("id ASC")
		}
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.ForUpdate && supportsRowLocking(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invoiceModels []models.InvoiceModel
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]*ledger.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = invoiceModels[i].ToDomain()
	}
	return invoices, nil
}

// Create inserts a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Create(model).Error
}

// Update writes balance and status guarded by the invoice version. On success the
// in-memory version is advanced to match the stored row.
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *ledger.Invoice) error {
	currentVersion := invoice.Version

	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND version = ?", invoice.ID, currentVersion).
		Updates(map[string]any{
			"balance":    invoice.Balance,
			"status":     string(invoice.Status),
			"version":    currentVersion + 1,
			"updated_at": invoice.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrConcurrencyConflict
	}
	invoice.IncrementVersion()
	return nil
}
