package ledger

import (
	"sort"
	"strings"

	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationLine is the planned effect of a payment on one invoice
type AllocationLine struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	AmountApplied decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	StatusAfter   InvoiceStatus
}

// AllocationPlan is the deterministic split of a payment across open invoices.
// TotalAllocated + Remaining always equals Amount.
type AllocationPlan struct {
	Amount         decimal.Decimal
	Lines          []AllocationLine
	TotalAllocated decimal.Decimal
	Remaining      decimal.Decimal
}

// HasOverpayment reports whether part of the payment is left for a credit
func (p AllocationPlan) HasOverpayment() bool {
	return p.Remaining.IsPositive()
}

// SortForAllocation orders invoices oldest obligation first: due date ascending,
// then invoice date ascending. Invoice number and ID break remaining ties so the
// order never depends on storage.
func SortForAllocation(invoices []*Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		a, b := invoices[i], invoices[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.InvoiceDate.Equal(b.InvoiceDate) {
			return a.InvoiceDate.Before(b.InvoiceDate)
		}
		if c := strings.Compare(a.InvoiceNumber, b.InvoiceNumber); c != 0 {
			return c < 0
		}
		return strings.Compare(a.ID.String(), b.ID.String()) < 0
	})
}

// PlanAllocation computes how amount would be spread over the given invoices without
// modifying them. Invoices that are not outstanding are skipped. The same plan is
// used for previews and for actual payment processing.
func PlanAllocation(amount valueobject.Money, invoices []*Invoice) (AllocationPlan, error) {
	if !amount.IsPositive() {
		return AllocationPlan{}, ErrInvalidAmount
	}
	if !amount.FitsScale() {
		return AllocationPlan{}, ErrAmountScale
	}

	eligible := make([]*Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv != nil && inv.Outstanding() {
			eligible = append(eligible, inv)
		}
	}
	SortForAllocation(eligible)

	plan := AllocationPlan{
		Amount:         amount.Amount(),
		Lines:          make([]AllocationLine, 0, len(eligible)),
		TotalAllocated: decimal.Zero,
	}
	remaining := amount.Amount()
	for _, inv := range eligible {
		if !remaining.IsPositive() {
			break
		}
		apply := decimal.Min(remaining, inv.Balance)
		after := inv.Balance.Sub(apply)
		plan.Lines = append(plan.Lines, AllocationLine{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			AmountApplied: apply,
			BalanceBefore: inv.Balance,
			BalanceAfter:  after,
			StatusAfter:   DeriveInvoiceStatus(inv.TotalAmount, after),
		})
		remaining = remaining.Sub(apply)
		plan.TotalAllocated = plan.TotalAllocated.Add(apply)
	}
	plan.Remaining = remaining
	return plan, nil
}
