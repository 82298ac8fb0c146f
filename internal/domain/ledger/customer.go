package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is read-only to the ledger. OpeningBalance carries history that
// predates this system and may be negative.
type Customer struct {
	ID             uuid.UUID
	Name           string
	OpeningBalance decimal.Decimal
	CreatedAt      time.Time
}

// NewCustomer creates a customer record, mainly for seeding and imports
func NewCustomer(name string, openingBalance decimal.Decimal) *Customer {
	return &Customer{
		ID:             uuid.New(),
		Name:           name,
		OpeningBalance: openingBalance,
		CreatedAt:      time.Now().UTC(),
	}
}
