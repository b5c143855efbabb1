package dto

import (
	"net/http"

	"github.com/erp/ledger/internal/domain/shared"
)

// Error codes returned by the API. Format: ERR_<DESCRIPTION>
const (
	ErrCodeInternal          = "ERR_INTERNAL"
	ErrCodeValidation        = "ERR_VALIDATION"
	ErrCodeBadRequest        = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON       = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge   = "ERR_REQUEST_TOO_LARGE"
	ErrCodeTenantRequired    = "ERR_TENANT_REQUIRED"
	ErrCodeNotFound          = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists     = "ERR_ALREADY_EXISTS"
	ErrCodeConflict          = "ERR_CONFLICT"
	ErrCodeDuplicateRequest  = "ERR_DUPLICATE_REQUEST"
	ErrCodeInvalidState      = "ERR_INVALID_STATE"
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	ErrCodeStockInactive     = "ERR_STOCK_INACTIVE"
	ErrCodeUnavailable       = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps API error codes to HTTP statuses
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeTenantRequired:  http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeConflict:         http.StatusConflict,
	ErrCodeDuplicateRequest: http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusUnprocessableEntity,
	ErrCodeStockInactive:     http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the status for an API error code, 500 if unknown
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeMapping translates domain error codes to API codes
var domainCodeMapping = map[string]string{
	shared.CodeNotFound:          ErrCodeNotFound,
	shared.CodeStockInactive:     ErrCodeStockInactive,
	shared.CodeInsufficientStock: ErrCodeInsufficientStock,
	shared.CodeInvalidState:      ErrCodeInvalidState,
	shared.CodeConflict:          ErrCodeConflict,
	"DUPLICATE_CODE":             ErrCodeAlreadyExists,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Validation codes collapse to ErrCodeValidation; unknown codes become
// ErrCodeInternal so internal names never leak.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainCodeMapping[code]; ok {
		return apiCode
	}
	if shared.ValidationCodes[code] {
		return ErrCodeValidation
	}
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
