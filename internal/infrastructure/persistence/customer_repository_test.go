package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPostgresDB opens GORM on a sqlmock connection with the postgres dialector
func newMockPostgresDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func invoiceRows(id, customerID uuid.UUID, version int) *sqlmock.Rows {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at", "version", "invoice_number", "customer_id",
		"total_amount", "balance", "invoice_date", "due_date", "status",
	}).AddRow(id.String(), now, now, version, "INV-001", customerID.String(),
		"1000", "1000", now, now.AddDate(0, 0, 30), "OPEN")
}

func TestGormCustomerRepository_FindByID_Postgres(t *testing.T) {
	db, mock, mockDB := newMockPostgresDB(t)
	defer mockDB.Close()
	repo := NewGormCustomerRepository(db)

	customerID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "opening_balance", "created_at", "updated_at"}).
		AddRow(customerID.String(), "Acme", "-50", time.Now(), time.Now())

	mock.ExpectQuery(`SELECT \* FROM "customers" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(customerID, 1).
		WillReturnRows(rows)

	customer, err := repo.FindByID(context.Background(), customerID)
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Acme", customer.Name)
	assert.True(t, customer.OpeningBalance.Equal(decimal.NewFromInt(-50)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_FindByIDForUpdate_Postgres(t *testing.T) {
	db, mock, mockDB := newMockPostgresDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(db)

	invoiceID := uuid.New()
	customerID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE id = \$1 ORDER BY .* LIMIT \$2 FOR UPDATE`).
		WithArgs(invoiceID, 1).
		WillReturnRows(invoiceRows(invoiceID, customerID, 3))

	inv, err := repo.FindByIDForUpdate(context.Background(), invoiceID)
	require.NoError(t, err)
	require.NotNil(t, inv)
	assert.Equal(t, 3, inv.Version)
	assert.Equal(t, ledger.InvoiceStatusOpen, inv.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_FindOpenWithLock_Postgres(t *testing.T) {
	db, mock, mockDB := newMockPostgresDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(db)

	customerID := uuid.New()
	invoiceID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE customer_id = \$1 AND status IN \(\$2,\$3\) AND balance > 0 ORDER BY due_date ASC,invoice_date ASC FOR UPDATE`).
		WithArgs(customerID, "OPEN", "PARTIAL").
		WillReturnRows(invoiceRows(invoiceID, customerID, 1))

	invoices, err := repo.Find(context.Background(), ledger.OpenInvoicesQuery(customerID, nil).WithLock())
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, invoiceID, invoices[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormInvoiceRepository_Update_VersionConflict_Postgres(t *testing.T) {
	db, mock, mockDB := newMockPostgresDB(t)
	defer mockDB.Close()
	repo := NewGormInvoiceRepository(db)

	invoiceID := uuid.New()
	inv := &ledger.Invoice{InvoiceNumber: "INV-001", Balance: decimal.NewFromInt(10), Status: ledger.InvoiceStatusPartial}
	inv.ID = invoiceID
	inv.Version = 4

	mock.ExpectExec(`UPDATE "invoices" SET .* WHERE id = \$5 AND version = \$6`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), invoiceID, 4).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), inv)
	assert.ErrorIs(t, err, ledger.ErrConcurrencyConflict)
	assert.Equal(t, 4, inv.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
