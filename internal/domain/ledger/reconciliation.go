package ledger

import (
	"github.com/shopspring/decimal"
)

// LedgerSummary is a customer's point-in-time position.
//
// TotalPaid counts the full amount of every COMPLETED payment, whether or not it
// was ever allocated to an invoice. Imported payments without application rows
// still reduce the balance; the summary is never rebuilt from allocation rows.
type LedgerSummary struct {
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	TotalInvoiced  decimal.Decimal `json:"total_invoiced"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	ActualBalance  decimal.Decimal `json:"actual_balance"`
	// TotalBalance is what the customer owes; zero when in credit.
	TotalBalance decimal.Decimal `json:"total_balance"`
	// TotalCredit is the magnitude of a negative ActualBalance.
	TotalCredit decimal.Decimal `json:"total_credit"`
	// AvailableCredit is the unspent amount of ACTIVE credit records.
	AvailableCredit decimal.Decimal `json:"available_credit"`
}

// Summarize computes the ledger summary from the stored history
func Summarize(openingBalance decimal.Decimal, invoices []*Invoice, payments []*Payment, credits []*Credit) LedgerSummary {
	totalInvoiced := decimal.Zero
	for _, inv := range invoices {
		totalInvoiced = totalInvoiced.Add(inv.TotalAmount)
	}

	totalPaid := decimal.Zero
	for _, p := range payments {
		if p.Status == PaymentStatusCompleted {
			totalPaid = totalPaid.Add(p.Amount)
		}
	}

	actual := openingBalance.Add(totalInvoiced).Sub(totalPaid)
	summary := LedgerSummary{
		OpeningBalance:  openingBalance,
		TotalInvoiced:   totalInvoiced,
		TotalPaid:       totalPaid,
		ActualBalance:   actual,
		TotalBalance:    decimal.Zero,
		TotalCredit:     decimal.Zero,
		AvailableCredit: TotalAvailableCredit(credits),
	}
	if actual.IsNegative() {
		summary.TotalCredit = actual.Neg()
	} else {
		summary.TotalBalance = actual
	}
	return summary
}

// TotalAvailableCredit sums the available amount of ACTIVE credits
func TotalAvailableCredit(credits []*Credit) decimal.Decimal {
	total := decimal.Zero
	for _, c := range credits {
		if c.Status == CreditStatusActive {
			total = total.Add(c.AvailableAmount)
		}
	}
	return total
}
