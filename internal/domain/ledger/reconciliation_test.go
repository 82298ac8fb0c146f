package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPayment(t *testing.T, customerID uuid.UUID, amount int64) *Payment {
	t.Helper()
	p, err := NewPayment(customerID, money(amount), PaymentMethodCash, day(5), uuid.New())
	require.NoError(t, err)
	return p
}

func TestSummarize(t *testing.T) {
	customerID := uuid.New()

	t.Run("customer owes money", func(t *testing.T) {
		invoices := []*Invoice{
			newTestInvoice(t, customerID, "INV-1", 10000, day(1), day(10)),
			newTestInvoice(t, customerID, "INV-2", 2000, day(2), day(12)),
		}
		payments := []*Payment{newTestPayment(t, customerID, 7000)}

		s := Summarize(decimal.NewFromInt(500), invoices, payments, nil)
		assert.True(t, s.TotalInvoiced.Equal(decimal.NewFromInt(12000)))
		assert.True(t, s.TotalPaid.Equal(decimal.NewFromInt(7000)))
		assert.True(t, s.ActualBalance.Equal(decimal.NewFromInt(5500)))
		assert.True(t, s.TotalBalance.Equal(decimal.NewFromInt(5500)))
		assert.True(t, s.TotalCredit.IsZero())
	})

	t.Run("negative balance is reported as credit", func(t *testing.T) {
		invoices := []*Invoice{newTestInvoice(t, customerID, "INV-1", 10000, day(1), day(10))}
		payments := []*Payment{
			newTestPayment(t, customerID, 7000),
			newTestPayment(t, customerID, 5000),
		}
		credit := newTestCredit(t, customerID, 2000)

		s := Summarize(decimal.Zero, invoices, payments, []*Credit{credit})
		assert.True(t, s.ActualBalance.Equal(decimal.NewFromInt(-2000)))
		assert.True(t, s.TotalBalance.IsZero())
		assert.True(t, s.TotalCredit.Equal(decimal.NewFromInt(2000)))
		assert.True(t, s.AvailableCredit.Equal(decimal.NewFromInt(2000)))
	})

	t.Run("unallocated legacy payment still counts as paid", func(t *testing.T) {
		legacy := newTestPayment(t, customerID, 400)
		voided := newTestPayment(t, customerID, 900)
		voided.Status = PaymentStatusVoided

		s := Summarize(decimal.NewFromInt(1000), nil, []*Payment{legacy, voided}, nil)
		assert.True(t, s.TotalPaid.Equal(decimal.NewFromInt(400)))
		assert.True(t, s.TotalBalance.Equal(decimal.NewFromInt(600)))
	})

	t.Run("applied credits do not count as available", func(t *testing.T) {
		active := newTestCredit(t, customerID, 300)
		applied := newTestCredit(t, customerID, 100)
		applied.AvailableAmount = decimal.Zero
		applied.Status = CreditStatusApplied

		assert.True(t, TotalAvailableCredit([]*Credit{active, applied}).Equal(decimal.NewFromInt(300)))
	})
}

func TestPayment_Settle(t *testing.T) {
	p := newTestPayment(t, uuid.New(), 5000)

	err := p.Settle(decimal.NewFromInt(3000), decimal.NewFromInt(1000))
	assert.True(t, IsErrorCode(err, CodeInvariantViolation))
	assert.True(t, p.AllocatedAmount.IsZero())

	require.NoError(t, p.Settle(decimal.NewFromInt(3000), decimal.NewFromInt(2000)))
	assert.True(t, p.AllocatedAmount.Add(p.CreditAmount).Equal(p.Amount))
}

func TestNewPayment_Validation(t *testing.T) {
	customerID := uuid.New()

	_, err := NewPayment(customerID, money(0), PaymentMethodCash, day(1), uuid.New())
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = NewPayment(customerID, moneyOf(t, "10.00005"), PaymentMethodCash, day(1), uuid.New())
	assert.ErrorIs(t, err, ErrAmountScale)

	_, err = NewPayment(customerID, money(10), PaymentMethod("BARTER"), day(1), uuid.New())
	assert.True(t, IsErrorCode(err, CodeInvalidInput))

	p, err := NewPayment(customerID, money(10), PaymentMethodBankTransfer, day(1), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusCompleted, p.Status)
	assert.True(t, p.CreditAmount.IsZero())
}
