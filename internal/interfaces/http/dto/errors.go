package dto

import (
	"net/http"

	"github.com/erp/ledger/internal/domain/ledger"
)

// Transport-level error codes. Ledger rejections keep their own codes.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeUnauthorized:    http.StatusUnauthorized,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,

	// Input errors -> 400 Bad Request
	ledger.CodeInvalidAmount: http.StatusBadRequest,
	ledger.CodeInvalidInput:  http.StatusBadRequest,

	ledger.CodeNotFound: http.StatusNotFound,

	// Business rule errors -> 422 Unprocessable Entity
	ledger.CodeInactiveCredit:        http.StatusUnprocessableEntity,
	ledger.CodeInsufficientCredit:    http.StatusUnprocessableEntity,
	ledger.CodeCrossCustomerMismatch: http.StatusUnprocessableEntity,
	ledger.CodeAlreadySettled:        http.StatusUnprocessableEntity,

	ledger.CodeConcurrencyConflict: http.StatusConflict,

	ledger.CodeTransactionFailure: http.StatusInternalServerError,
	ledger.CodeInvariantViolation: http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
