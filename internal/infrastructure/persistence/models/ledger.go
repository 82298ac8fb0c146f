package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for customers
type CustomerModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"type:varchar(200);not null"`
	OpeningBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *ledger.Customer {
	return &ledger.Customer{
		ID:             m.ID,
		Name:           m.Name,
		OpeningBalance: m.OpeningBalance,
		CreatedAt:      m.CreatedAt.UTC(),
	}
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *ledger.Customer) *CustomerModel {
	return &CustomerModel{
		ID:             c.ID,
		Name:           c.Name,
		OpeningBalance: c.OpeningBalance,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.CreatedAt,
	}
}

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_invoices_customer_status,priority:1"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InvoiceDate   time.Time       `gorm:"not null"`
	DueDate       time.Time       `gorm:"not null"`
	Status        string          `gorm:"type:varchar(20);not null;index:idx_invoices_customer_status,priority:2"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	return &ledger.Invoice{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregate(),
		InvoiceNumber:     m.InvoiceNumber,
		CustomerID:        m.CustomerID,
		TotalAmount:       m.TotalAmount,
		Balance:           m.Balance,
		InvoiceDate:       m.InvoiceDate.UTC(),
		DueDate:           m.DueDate.UTC(),
		Status:            ledger.InvoiceStatus(m.Status),
	}
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		TotalAmount:   inv.TotalAmount,
		Balance:       inv.Balance,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate,
		Status:        string(inv.Status),
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	BaseModel
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreditAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Method          string          `gorm:"type:varchar(30);not null"`
	Status          string          `gorm:"type:varchar(20);not null"`
	PaymentDate     time.Time       `gorm:"not null;index"`
	ReferenceNumber string          `gorm:"type:varchar(100)"`
	Notes           string          `gorm:"type:text"`
	RecordedBy      uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *ledger.Payment {
	return &ledger.Payment{
		BaseEntity:      m.BaseModel.ToDomain(),
		CustomerID:      m.CustomerID,
		Amount:          m.Amount,
		AllocatedAmount: m.AllocatedAmount,
		CreditAmount:    m.CreditAmount,
		Method:          ledger.PaymentMethod(m.Method),
		Status:          ledger.PaymentStatus(m.Status),
		PaymentDate:     m.PaymentDate.UTC(),
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		RecordedBy:      m.RecordedBy,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		AllocatedAmount: p.AllocatedAmount,
		CreditAmount:    p.CreditAmount,
		Method:          string(p.Method),
		Status:          string(p.Status),
		PaymentDate:     p.PaymentDate,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		RecordedBy:      p.RecordedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// PaymentApplicationModel is the append-only join between payments and invoices
type PaymentApplicationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountApplied decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentApplicationModel) TableName() string {
	return "payment_applications"
}

// ToDomain converts the persistence model to a domain PaymentApplication
func (m *PaymentApplicationModel) ToDomain() *ledger.PaymentApplication {
	return &ledger.PaymentApplication{
		ID:            m.ID,
		PaymentID:     m.PaymentID,
		InvoiceID:     m.InvoiceID,
		AmountApplied: m.AmountApplied,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

// PaymentApplicationModelFromDomain creates a persistence model from a domain PaymentApplication
func PaymentApplicationModelFromDomain(a *ledger.PaymentApplication) *PaymentApplicationModel {
	return &PaymentApplicationModel{
		ID:            a.ID,
		PaymentID:     a.PaymentID,
		InvoiceID:     a.InvoiceID,
		AmountApplied: a.AmountApplied,
		CreatedAt:     a.CreatedAt,
	}
}

// CreditModel is the persistence model for customer credits
type CreditModel struct {
	AggregateModel
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AvailableAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourcePaymentID *uuid.UUID      `gorm:"type:uuid;index"`
	Reason          string          `gorm:"type:varchar(20);not null"`
	Status          string          `gorm:"type:varchar(20);not null"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (CreditModel) TableName() string {
	return "credits"
}

// ToDomain converts the persistence model to a domain Credit
func (m *CreditModel) ToDomain() *ledger.Credit {
	return &ledger.Credit{
		BaseAggregateRoot: m.AggregateModel.ToDomainAggregate(),
		CustomerID:        m.CustomerID,
		Amount:            m.Amount,
		AvailableAmount:   m.AvailableAmount,
		SourcePaymentID:   m.SourcePaymentID,
		Reason:            ledger.CreditReason(m.Reason),
		Status:            ledger.CreditStatus(m.Status),
		CreatedBy:         m.CreatedBy,
	}
}

// CreditModelFromDomain creates a persistence model from a domain Credit
func CreditModelFromDomain(c *ledger.Credit) *CreditModel {
	m := &CreditModel{
		CustomerID:      c.CustomerID,
		Amount:          c.Amount,
		AvailableAmount: c.AvailableAmount,
		SourcePaymentID: c.SourcePaymentID,
		Reason:          string(c.Reason),
		Status:          string(c.Status),
		CreatedBy:       c.CreatedBy,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// CreditApplicationModel is the append-only join between credits and invoices
type CreditApplicationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CreditID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountApplied decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedBy     uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditApplicationModel) TableName() string {
	return "credit_applications"
}

// ToDomain converts the persistence model to a domain CreditApplication
func (m *CreditApplicationModel) ToDomain() *ledger.CreditApplication {
	return &ledger.CreditApplication{
		ID:            m.ID,
		CreditID:      m.CreditID,
		InvoiceID:     m.InvoiceID,
		AmountApplied: m.AmountApplied,
		AppliedBy:     m.AppliedBy,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

// CreditApplicationModelFromDomain creates a persistence model from a domain CreditApplication
func CreditApplicationModelFromDomain(a *ledger.CreditApplication) *CreditApplicationModel {
	return &CreditApplicationModel{
		ID:            a.ID,
		CreditID:      a.CreditID,
		InvoiceID:     a.InvoiceID,
		AmountApplied: a.AmountApplied,
		AppliedBy:     a.AppliedBy,
		CreatedAt:     a.CreatedAt,
	}
}

// All returns every model, in dependency order, for AutoMigrate in tests and
// sqlite development databases.
func All() []any {
	return []any{
		&CustomerModel{},
		&InvoiceModel{},
		&PaymentModel{},
		&PaymentApplicationModel{},
		&CreditModel{},
		&CreditApplicationModel{},
	}
}
