package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCredit(t *testing.T, customerID uuid.UUID, amount int64) *Credit {
	t.Helper()
	c, err := NewCredit(customerID, money(amount), nil, CreditReasonAdjustment, uuid.New())
	require.NoError(t, err)
	return c
}

func TestNewCredit(t *testing.T) {
	customerID := uuid.New()
	paymentID := uuid.New()

	c, err := NewCredit(customerID, money(2000), &paymentID, CreditReasonOverpayment, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, CreditStatusActive, c.Status)
	assert.True(t, c.AvailableAmount.Equal(c.Amount))
	assert.Equal(t, paymentID, *c.SourcePaymentID)

	_, err = NewCredit(customerID, money(0), nil, CreditReasonAdjustment, uuid.New())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewCredit(customerID, money(10), nil, CreditReason("GIFT"), uuid.New())
	assert.True(t, IsErrorCode(err, CodeInvalidInput))

	_, err = NewCredit(customerID, moneyOf(t, "0.12345"), nil, CreditReasonAdjustment, uuid.New())
	assert.ErrorIs(t, err, ErrAmountScale)
}

func TestCredit_ApplyTo(t *testing.T) {
	customerID := uuid.New()
	user := uuid.New()

	t.Run("full application exhausts the credit", func(t *testing.T) {
		credit := newTestCredit(t, customerID, 2000)
		inv := newTestInvoice(t, customerID, "INV-1", 5000, day(1), day(10))

		app, err := credit.ApplyTo(inv, decimal.NewFromInt(2000), user)
		require.NoError(t, err)

		assert.True(t, app.AmountApplied.Equal(decimal.NewFromInt(2000)))
		assert.Equal(t, credit.ID, app.CreditID)
		assert.Equal(t, inv.ID, app.InvoiceID)
		assert.Equal(t, user, app.AppliedBy)
		assert.True(t, credit.AvailableAmount.IsZero())
		assert.Equal(t, CreditStatusApplied, credit.Status)
		assert.True(t, inv.Balance.Equal(decimal.NewFromInt(3000)))
		assert.Equal(t, InvoiceStatusPartial, inv.Status)
	})

	t.Run("only the needed portion is consumed", func(t *testing.T) {
		credit := newTestCredit(t, customerID, 2000)
		inv := newTestInvoice(t, customerID, "INV-2", 500, day(1), day(10))

		app, err := credit.ApplyTo(inv, decimal.NewFromInt(1500), user)
		require.NoError(t, err)

		assert.True(t, app.AmountApplied.Equal(decimal.NewFromInt(500)))
		assert.True(t, credit.AvailableAmount.Equal(decimal.NewFromInt(1500)))
		assert.Equal(t, CreditStatusActive, credit.Status)
		assert.Equal(t, InvoiceStatusPaid, inv.Status)
	})

	t.Run("rejections leave both sides untouched", func(t *testing.T) {
		other := uuid.New()
		settled := newTestInvoice(t, customerID, "INV-S", 100, day(1), day(10))
		require.NoError(t, settled.ReduceBalance(decimal.NewFromInt(100)))

		exhausted := newTestCredit(t, customerID, 100)
		exhausted.AvailableAmount = decimal.Zero
		exhausted.Status = CreditStatusApplied

		tests := []struct {
			name    string
			credit  *Credit
			invoice *Invoice
			amount  int64
			want    error
		}{
			{"inactive", exhausted, newTestInvoice(t, customerID, "INV-3", 100, day(1), day(10)), 10, ErrInactiveCredit},
			{"insufficient", newTestCredit(t, customerID, 100), newTestInvoice(t, customerID, "INV-4", 500, day(1), day(10)), 101, ErrInsufficientCredit},
			{"cross customer", newTestCredit(t, customerID, 100), newTestInvoice(t, other, "INV-5", 500, day(1), day(10)), 50, ErrCrossCustomerMismatch},
			{"settled invoice", newTestCredit(t, customerID, 100), settled, 50, ErrAlreadySettled},
			{"zero amount", newTestCredit(t, customerID, 100), newTestInvoice(t, customerID, "INV-6", 500, day(1), day(10)), 0, ErrInvalidAmount},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				available := tt.credit.AvailableAmount
				status := tt.credit.Status
				balance := tt.invoice.Balance

				app, err := tt.credit.ApplyTo(tt.invoice, decimal.NewFromInt(tt.amount), user)
				assert.Nil(t, app)
				assert.ErrorIs(t, err, tt.want)
				assert.True(t, tt.credit.AvailableAmount.Equal(available))
				assert.Equal(t, status, tt.credit.Status)
				assert.True(t, tt.invoice.Balance.Equal(balance))
			})
		}
	})

	t.Run("inactive is reported before insufficient", func(t *testing.T) {
		credit := newTestCredit(t, customerID, 100)
		credit.Status = CreditStatusApplied
		inv := newTestInvoice(t, uuid.New(), "INV-7", 500, day(1), day(10))

		_, err := credit.ApplyTo(inv, decimal.NewFromInt(1000), user)
		assert.ErrorIs(t, err, ErrInactiveCredit)
	})

	t.Run("insufficient is reported before cross customer", func(t *testing.T) {
		credit := newTestCredit(t, customerID, 100)
		inv := newTestInvoice(t, uuid.New(), "INV-8", 500, day(1), day(10))

		_, err := credit.ApplyTo(inv, decimal.NewFromInt(1000), user)
		assert.ErrorIs(t, err, ErrInsufficientCredit)
	})
}

func TestCredit_ApplyToRejectsAmountsFinerThanStoredScale(t *testing.T) {
	customerID := uuid.New()
	credit := newTestCredit(t, customerID, 100)
	inv := newTestInvoice(t, customerID, "INV-9", 50, day(1), day(10))

	_, err := credit.ApplyTo(inv, decimal.RequireFromString("10.00005"), uuid.New())
	assert.ErrorIs(t, err, ErrAmountScale)
	assert.Contains(t, err.Error(), "decimal places")
	assert.True(t, credit.AvailableAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, inv.Balance.Equal(decimal.NewFromInt(50)))
}
