package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCreditRepository implements ledger.CreditRepository using GORM
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// FindByID finds a credit by ID
func (r *GormCreditRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Credit, error) {
	return r.findOne(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a credit by ID and locks the row until the transaction ends
func (r *GormCreditRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.Credit, error) {
	query := r.db.WithContext(ctx)
	if supportsRowLocking(r.db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOne(query, id)
}

func (r *GormCreditRepository) findOne(query *gorm.DB, id uuid.UUID) (*ledger.Credit, error) {
	var model models.CreditModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns a customer's credits, oldest first. activeOnly keeps
// ACTIVE credits with money left.
func (r *GormCreditRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, activeOnly bool) ([]*ledger.Credit, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if activeOnly {
		query = query.Where("status = ? AND available_amount > 0", string(ledger.CreditStatusActive))
	}

	var creditModels []models.CreditModel
	if err := query.Order("created_at ASC").Order("id ASC").Find(&creditModels).Error; err != nil {
		return nil, err
	}
	credits := make([]*ledger.Credit, len(creditModels))
	for i := range creditModels {
		credits[i] = creditModels[i].ToDomain()
	}
	return credits, nil
}

// Create inserts a new credit
func (r *GormCreditRepository) Create(ctx context.Context, credit *ledger.Credit) error {
	return r.db.WithContext(ctx).Create(models.CreditModelFromDomain(credit)).Error
}

// Update writes the available amount and status guarded by the credit version
func (r *GormCreditRepository) Update(ctx context.Context, credit *ledger.Credit) error {
	currentVersion := credit.Version

	result := r.db.WithContext(ctx).
		Model(&models.CreditModel{}).
		Where("id = ? AND version = ?", credit.ID, currentVersion).
		Updates(map[string]any{
			"available_amount": credit.AvailableAmount,
			"status":           string(credit.Status),
			"version":          currentVersion + 1,
			"updated_at":       credit.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.ErrConcurrencyConflict
	}
	credit.IncrementVersion()
	return nil
}

// CreateApplication appends a credit application row
func (r *GormCreditRepository) CreateApplication(ctx context.Context, app *ledger.CreditApplication) error {
	return r.db.WithContext(ctx).Create(models.CreditApplicationModelFromDomain(app)).Error
}

// FindApplicationsByCredit returns the application rows of one credit
func (r *GormCreditRepository) FindApplicationsByCredit(ctx context.Context, creditID uuid.UUID) ([]*ledger.CreditApplication, error) {
	var appModels []models.CreditApplicationModel
	if err := r.db.WithContext(ctx).
		Where("credit_id = ?", creditID).
		Order("created_at ASC").
		Find(&appModels).Error; err != nil {
		return nil, err
	}
	apps := make([]*ledger.CreditApplication, len(appModels))
	for i := range appModels {
		apps[i] = appModels[i].ToDomain()
	}
	return apps, nil
}

// SumAppliedByInvoice totals credit applications per invoice
func (r *GormCreditRepository) SumAppliedByInvoice(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal)
	if len(invoiceIDs) == 0 {
		return sums, nil
	}
	var appModels []models.CreditApplicationModel
	if err := r.db.WithContext(ctx).
		Select("invoice_id", "amount_applied").
		Where("invoice_id IN ?", invoiceIDs).
		Find(&appModels).Error; err != nil {
		return nil, err
	}
	for _, app := range appModels {
		sums[app.InvoiceID] = sums[app.InvoiceID].Add(app.AmountApplied)
	}
	return sums, nil
}
