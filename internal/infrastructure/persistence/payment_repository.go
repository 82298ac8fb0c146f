package persistence

import (
	"context"
	"errors"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCustomer returns one page of a customer's payments, newest first, and the total count
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, page shared.PageRequest) ([]*ledger.Payment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PaymentModel{}).Where("customer_id = ?", customerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var paymentModels []models.PaymentModel
	if err := query.
		Order("payment_date DESC").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&paymentModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainPayments(paymentModels), total, nil
}

// FindAllByCustomer returns every payment of a customer
func (r *GormPaymentRepository) FindAllByCustomer(ctx context.Context, customerID uuid.UUID) ([]*ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

func toDomainPayments(paymentModels []models.PaymentModel) []*ledger.Payment {
	payments := make([]*ledger.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = paymentModels[i].ToDomain()
	}
	return payments
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *ledger.Payment) error {
	return r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(payment)).Error
}

// UpdateSettlement persists the allocated/credited split of a payment
func (r *GormPaymentRepository) UpdateSettlement(ctx context.Context, payment *ledger.Payment) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"allocated_amount": payment.AllocatedAmount,
			"credit_amount":    payment.CreditAmount,
			"updated_at":       payment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ledger.NotFound("payment", payment.ID)
	}
	return nil
}

// CreateApplication appends a payment application row
func (r *GormPaymentRepository) CreateApplication(ctx context.Context, app *ledger.PaymentApplication) error {
	return r.db.WithContext(ctx).Create(models.PaymentApplicationModelFromDomain(app)).Error
}

// FindApplicationsByPayments returns the application rows of the given payments
func (r *GormPaymentRepository) FindApplicationsByPayments(ctx context.Context, paymentIDs []uuid.UUID) ([]*ledger.PaymentApplication, error) {
	if len(paymentIDs) == 0 {
		return []*ledger.PaymentApplication{}, nil
	}
	var appModels []models.PaymentApplicationModel
	if err := r.db.WithContext(ctx).
		Where("payment_id IN ?", paymentIDs).
		Order("created_at ASC").
		Find(&appModels).Error; err != nil {
		return nil, err
	}
	apps := make([]*ledger.PaymentApplication, len(appModels))
	for i := range appModels {
		apps[i] = appModels[i].ToDomain()
	}
	return apps, nil
}

// SumAppliedByInvoice totals payment applications per invoice. Invoices without
// applications are absent from the map.
func (r *GormPaymentRepository) SumAppliedByInvoice(ctx context.Context, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	sums := make(map[uuid.UUID]decimal.Decimal)
	if len(invoiceIDs) == 0 {
		return sums, nil
	}
	var appModels []models.PaymentApplicationModel
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
