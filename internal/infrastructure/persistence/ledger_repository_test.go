package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func jan(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func seedCustomer(t *testing.T, store *GormStore) *ledger.Customer {
	t.Helper()
	customer := ledger.NewCustomer("Acme Traders", decimal.NewFromInt(250))
	require.NoError(t, store.Customers().Create(context.Background(), customer))
	return customer
}

func seedInvoice(t *testing.T, store *GormStore, customerID uuid.UUID, number string, total int64, invoiceDay, dueDay int) *ledger.Invoice {
	t.Helper()
	inv, err := ledger.NewInvoice(number, customerID, valueobject.NewMoneyFromInt(total), jan(invoiceDay), jan(dueDay))
	require.NoError(t, err)
	require.NoError(t, store.Invoices().Create(context.Background(), inv))
	return inv
}

func TestGormCustomerRepository_FindByID(t *testing.T) {
	store := NewGormStore(setupLedgerTestDB(t))
	ctx := context.Background()
	customer := seedCustomer(t, store)

	t.Run("finds existing customer", func(t *testing.T) {
		found, err := store.Customers().FindByID(ctx, customer.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Acme Traders", found.Name)
		assert.True(t, found.OpeningBalance.Equal(decimal.NewFromInt(250)))
	})

	t.Run("returns nil for unknown customer", func(t *testing.T) {
		found, err := store.Customers().FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormInvoiceRepository_Find(t *testing.T) {
	store := NewGormStore(setupLedgerTestDB(t))
	ctx := context.Background()
	customer := seedCustomer(t, store)
	other := seedCustomer(t, store)

	late := seedInvoice(t, store, customer.ID, "INV-003", 300, 5, 30)
	early := seedInvoice(t, store, customer.ID, "INV-001", 100, 1, 10)
	mid := seedInvoice(t, store, customer.ID, "INV-002", 200, 3, 20)
	seedInvoice(t, store, other.ID, "INV-900", 900, 1, 5)

	paid := seedInvoice(t, store, customer.ID, "INV-004", 50, 1, 2)
	require.NoError(t, paid.ReduceBalance(decimal.NewFromInt(50)))
	require.NoError(t, store.Invoices().Update(ctx, paid))

	t.Run("open invoices come back in due date order", func(t *testing.T) {
		invoices, err := store.Invoices().Find(ctx, ledger.OpenInvoicesQuery(customer.ID, nil))
		require.NoError(t, err)
		require.Len(t, invoices, 3)
		assert.Equal(t, early.ID, invoices[0].ID)
		assert.Equal(t, mid.ID, invoices[1].ID)
		assert.Equal(t, late.ID, invoices[2].ID)
	})

	t.Run("restricts to a caller-supplied subset", func(t *testing.T) {
		invoices, err := store.Invoices().Find(ctx, ledger.OpenInvoicesQuery(customer.ID, []uuid.UUID{late.ID, paid.ID}).WithLock())
		require.NoError(t, err)
		require.Len(t, invoices, 1)
		assert.Equal(t, late.ID, invoices[0].ID)
	})

	t.Run("customer invoices include paid ones", func(t *testing.T) {
		invoices, err := store.Invoices().Find(ctx, ledger.CustomerInvoicesQuery(customer.ID))
		require.NoError(t, err)
		assert.Len(t, invoices, 4)
	})

	t.Run("zero balance batches page by id", func(t *testing.T) {
		batch, err := store.Invoices().Find(ctx, ledger.ZeroBalanceBatchQuery(uuid.Nil, 10))
		require.NoError(t, err)
		require.Len(t, batch, 1)
		assert.Equal(t, paid.ID, batch[0].ID)
		assert.Equal(t, ledger.InvoiceStatusPaid, batch[0].Status)

		next, err := store.Invoices().Find(ctx, ledger.ZeroBalanceBatchQuery(batch[0].ID, 10))
		require.NoError(t, err)
		assert.Empty(t, next)
	})
}

func TestGormInvoiceRepository_UpdateIsVersioned(t *testing.T) {
	store := NewGormStore(setupLedgerTestDB(t))
	ctx := context.Background()
	customer := seedCustomer(t, store)
	inv := seedInvoice(t, store, customer.ID, "INV-001", 1000, 1, 10)

	first, err := store.Invoices().FindByID(ctx, inv.ID)
	require.NoError(t, err)
	second, err := store.Invoices().FindByID(ctx, inv.ID)
	require.NoError(t, err)

	require.NoError(t, first.ReduceBalance(decimal.NewFromInt(400)))
	require.NoError(t, store.Invoices().Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	require.NoError(t, second.ReduceBalance(decimal.NewFromInt(100)))
	err = store.Invoices().Update(ctx, second)
	require.Error(t, err)
	assert.True(t, ledger.IsErrorCode(err, ledger.CodeConcurrencyConflict))

	stored, err := store.Invoices().FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, ledger.InvoiceStatusPartial, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestGormPaymentRepository(t *testing.T) {
	store := NewGormStore(setupLedgerTestDB(t))
	ctx := context.Background()
	customer := seedCustomer(t, store)
	inv := seedInvoice(t, store, customer.ID, "INV-001", 1000, 1, 10)

	var payments []*ledger.Payment
	for i := 1; i <= 3; i++ {
		p, err := ledger.NewPayment(customer.ID, valueobject.NewMoneyFromInt(int64(i*100)), ledger.PaymentMethodCash, jan(i), uuid.New())
		require.NoError(t, err)
		require.NoError(t, store.Payments().Create(ctx, p))
		payments = append(payments, p)
	}

	app := ledger.NewPaymentApplication(payments[0].ID, inv.ID, decimal.NewFromInt(100))
	require.NoError(t, store.Payments().CreateApplication(ctx, app))
	app2 := ledger.NewPaymentApplication(payments[1].ID, inv.ID, decimal.RequireFromString("150.50"))
	require.NoError(t, store.Payments().CreateApplication(ctx, app2))

	t.Run("pages newest first with total", func(t *testing.T) {
		page, total, err := store.Payments().FindByCustomer(ctx, customer.ID, shared.PageRequest{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, page, 2)
		assert.Equal(t, payments[2].ID, page[0].ID)
		assert.Equal(t, payments[1].ID, page[1].ID)

		page2, _, err := store.Payments().FindByCustomer(ctx, customer.ID, shared.PageRequest{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, page2, 1)
		assert.Equal(t, payments[0].ID, page2[0].ID)
	})

	t.Run("settlement is persisted", func(t *testing.T) {
		p := payments[0]
		require.NoError(t, p.Settle(decimal.NewFromInt(100), decimal.Zero))
		require.NoError(t, store.Payments().UpdateSettlement(ctx, p))

		stored, err := store.Payments().FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, stored.AllocatedAmount.Equal(decimal.NewFromInt(100)))
		assert.True(t, stored.CreditAmount.IsZero())
	})

	t.Run("sums applications per invoice", func(t *testing.T) {
		sums, err := store.Payments().SumAppliedByInvoice(ctx, []uuid.UUID{inv.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, sums, 1)
		assert.True(t, sums[inv.ID].Equal(decimal.RequireFromString("250.50")))
	})

	t.Run("finds applications by payment", func(t *testing.T) {
		apps, err := store.Payments().FindApplicationsByPayments(ctx, []uuid.UUID{payments[1].ID})
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, app2.ID, apps[0].ID)

		none, err := store.Payments().FindApplicationsByPayments(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestGormCreditRepository(t *testing.T) {
	store := NewGormStore(setupLedgerTestDB(t))
	ctx := context.Background()
	customer := seedCustomer(t, store)
	inv := seedInvoice(t, store, customer.ID, "INV-001", 1000, 1, 10)

	credit, err := ledger.NewCredit(customer.ID, valueobject.NewMoneyFromInt(300), nil, ledger.CreditReasonAdjustment, uuid.New())
	require.NoError(t, err)
	require.NoError(t, store.Credits().Create(ctx, credit))

	spent, err := ledger.NewCredit(customer.ID, valueobject.NewMoneyFromInt(50), nil, ledger.CreditReasonReturn, uuid.New())
	require.NoError(t, err)
	require.NoError(t, store.Credits().Create(ctx, spent))
	other := seedInvoice(t, store, customer.ID, "INV-002", 80, 1, 12)
	spentApp, err := spent.ApplyTo(other, decimal.NewFromInt(50), uuid.New())
	require.NoError(t, err)
	require.NoError(t, store.Credits().Update(ctx, spent))
	require.NoError(t, store.Credits().CreateApplication(ctx, spentApp))

	t.Run("active only filters exhausted credits", func(t *testing.T) {
		all, err := store.Credits().FindByCustomer(ctx, customer.ID, false)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		active, err := store.Credits().FindByCustomer(ctx, customer.ID, true)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, credit.ID, active[0].ID)
	})

	t.Run("update is versioned", func(t *testing.T) {
		stale, err := store.Credits().FindByIDForUpdate(ctx, credit.ID)
		require.NoError(t, err)

		fresh, err := store.Credits().FindByID(ctx, credit.ID)
		require.NoError(t, err)
		app, err := fresh.ApplyTo(inv, decimal.NewFromInt(100), uuid.New())
		require.NoError(t, err)
		require.NoError(t, store.Credits().Update(ctx, fresh))
		require.NoError(t, store.Credits().CreateApplication(ctx, app))

		stale.AvailableAmount = decimal.NewFromInt(1)
		err = store.Credits().Update(ctx, stale)
		assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)

		stored, err := store.Credits().FindByID(ctx, credit.ID)
		require.NoError(t, err)
		assert.True(t, stored.AvailableAmount.Equal(decimal.NewFromInt(200)))
	})

	t.Run("applications are summed per invoice", func(t *testing.T) {
		sums, err := store.Credits().SumAppliedByInvoice(ctx, []uuid.UUID{inv.ID, other.ID})
		require.NoError(t, err)
		assert.True(t, sums[inv.ID].Equal(decimal.NewFromInt(100)))
		assert.True(t, sums[other.ID].Equal(decimal.NewFromInt(50)))

		apps, err := store.Credits().FindApplicationsByCredit(ctx, spent.ID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, other.ID, apps[0].InvoiceID)
	})

	t.Run("unknown credit is nil", func(t *testing.T) {
		found, err := store.Credits().FindByIDForUpdate(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormStore_UnitOfWork(t *testing.T) {
	store := NewGormStore(setupLedgerTestDB(t))
	ctx := context.Background()
	customer := seedCustomer(t, store)
	inv := seedInvoice(t, store, customer.ID, "INV-001", 1000, 1, 10)

	t.Run("rollback discards writes", func(t *testing.T) {
		uow, err := store.Begin(ctx)
		require.NoError(t, err)

		locked, err := uow.Invoices().FindByIDForUpdate(ctx, inv.ID)
		require.NoError(t, err)
		require.NoError(t, locked.ReduceBalance(decimal.NewFromInt(1000)))
		require.NoError(t, uow.Invoices().Update(ctx, locked))
		require.NoError(t, uow.Rollback())

		stored, err := store.Invoices().FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, ledger.InvoiceStatusOpen, stored.Status)
	})

	t.Run("commit keeps writes and later rollback is a no-op", func(t *testing.T) {
		uow, err := store.Begin(ctx)
		require.NoError(t, err)

		locked, err := uow.Invoices().FindByIDForUpdate(ctx, inv.ID)
		require.NoError(t, err)
		require.NoError(t, locked.ReduceBalance(decimal.NewFromInt(250)))
		require.NoError(t, uow.Invoices().Update(ctx, locked))
		require.NoError(t, uow.Commit())
		assert.NoError(t, uow.Rollback())

		stored, err := store.Invoices().FindByID(ctx, inv.ID)
		require.NoError(t, err)
		assert.True(t, stored.Balance.Equal(decimal.NewFromInt(750)))
	})
}
