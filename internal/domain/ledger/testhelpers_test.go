package ledger

import (
	"testing"
	"time"

	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func newTestInvoice(t *testing.T, customerID uuid.UUID, number string, total int64, issued, due time.Time) *Invoice {
	t.Helper()
	inv, err := NewInvoice(number, customerID, valueobject.NewMoneyFromInt(total), issued, due)
	require.NoError(t, err)
	return inv
}

func money(v int64) valueobject.Money {
	return valueobject.NewMoneyFromInt(v)
}

func moneyOf(t *testing.T, s string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(s)
	require.NoError(t, err)
	return m
}
