package ledger

import (
	"errors"
	"fmt"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
)

// Error codes surfaced by the ledger. Callers translate them into user-facing messages.
const (
	CodeInvalidAmount         = "INVALID_AMOUNT"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeNotFound              = "NOT_FOUND"
	CodeInactiveCredit        = "INACTIVE_CREDIT"
	CodeInsufficientCredit    = "INSUFFICIENT_CREDIT"
	CodeCrossCustomerMismatch = "CROSS_CUSTOMER_MISMATCH"
	CodeAlreadySettled        = "ALREADY_SETTLED"
	CodeTransactionFailure    = "TRANSACTION_FAILURE"
	CodeConcurrencyConflict   = "CONCURRENCY_CONFLICT"
	CodeInvariantViolation    = "INVARIANT_VIOLATION"
)

var (
	ErrInvalidAmount         = shared.NewDomainError(CodeInvalidAmount, "Amount must be greater than zero")
	ErrAmountScale           = shared.NewDomainError(CodeInvalidAmount, fmt.Sprintf("Amount cannot have more than %d decimal places", valueobject.MaxScale))
	ErrInactiveCredit        = shared.NewDomainError(CodeInactiveCredit, "Credit is not active")
	ErrInsufficientCredit    = shared.NewDomainError(CodeInsufficientCredit, "Insufficient credit available")
	ErrCrossCustomerMismatch = shared.NewDomainError(CodeCrossCustomerMismatch, "Invoice and credit belong to different customers")
	ErrAlreadySettled        = shared.NewDomainError(CodeAlreadySettled, "Invoice is already settled")
	ErrConcurrencyConflict   = shared.NewDomainError(CodeConcurrencyConflict, "Record was modified by another transaction")
)

// NotFound builds a NOT_FOUND error naming the missing record
func NotFound(kind string, id fmt.Stringer) *shared.DomainError {
	return shared.NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", kind, id))
}

// TransactionFailure wraps a storage error that prevented the unit of work from committing
func TransactionFailure(cause error) *shared.DomainError {
	return shared.WrapDomainError(CodeTransactionFailure, "transaction failed", cause)
}

// IsErrorCode reports whether err carries the given ledger error code
func IsErrorCode(err error, code string) bool {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
