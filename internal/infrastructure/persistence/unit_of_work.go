package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/ledger"
	"gorm.io/gorm"
)

// gormRepositories binds all ledger repositories to one *gorm.DB, which is either
// the pool or an open transaction.
type gormRepositories struct {
	invoices  *GormInvoiceRepository
	payments  *GormPaymentRepository
	credits   *GormCreditRepository
	customers *GormCustomerRepository
}

func newGormRepositories(db *gorm.DB) gormRepositories {
	return gormRepositories{
		invoices:  NewGormInvoiceRepository(db),
		payments:  NewGormPaymentRepository(db),
		credits:   NewGormCreditRepository(db),
		customers: NewGormCustomerRepository(db),
	}
}

func (r gormRepositories) Invoices() ledger.InvoiceRepository { return r.invoices }
func (r gormRepositories) Payments() ledger.PaymentRepository { return r.payments }
func (r gormRepositories) Credits() ledger.CreditRepository { return r.credits }
func (r gormRepositories) Customers() ledger.CustomerRepository { return r.customers }

// GormStore implements ledger.Store on top of a GORM connection pool
type GormStore struct {
	gormRepositories
	db *gorm.DB
}

// NewGormStore creates a GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		gormRepositories: newGormRepositories(db),
		db:               db,
	}
}

// Begin opens a transaction and returns a unit of work bound to it
func (s *GormStore) Begin(ctx context.Context) (ledger.UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return &gormUnitOfWork{
		gormRepositories: newGormRepositories(tx),
		tx:               tx,
	}, nil
}

type gormUnitOfWork struct {
	gormRepositories
	tx       *gorm.DB
	finished bool
}

func (u *gormUnitOfWork) Commit() error {
	if u.finished {
		return sql.ErrTxDone
	}
	u.finished = true
	return u.tx.Commit().Error
}

func (u *gormUnitOfWork) Rollback() error {
	if u.finished {
		return nil
	}
	u.finished = true
	if err := u.tx.Rollback().Error; err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
