package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so a descriptive
// instance still matches its sentinel with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes
const (
	CodeNotFound          = "NOT_FOUND"
	CodeStockInactive     = "STOCK_INACTIVE"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeInvalidState      = "INVALID_STATE"
	CodeConflict          = "CONFLICT"
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
)

// Common domain errors
var (
	ErrNotFound          = NewDomainError(CodeNotFound, "Resource not found")
	ErrStockInactive     = NewDomainError(CodeStockInactive, "Stock is inactive")
	ErrInsufficientStock = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvalidState      = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConflict          = NewDomainError(CodeConflict, "Resource was modified by another process")
	ErrValidation        = NewDomainError(CodeValidation, "Validation failed")
	ErrInvalidInput      = NewDomainError(CodeInvalidInput, "Invalid input provided")
)

// ValidationCodes lists the specific codes that denote a rejected input.
// They all map to a client error at the edge.
var ValidationCodes = map[string]bool{
	CodeValidation:     true,
	CodeInvalidInput:   true,
	"INVALID_QUANTITY": true,
	"INVALID_PRICE":    true,
	"INVALID_RATE":     true,
	"INVALID_DISCOUNT": true,
	"INVALID_AMOUNT":   true,
	"INVALID_TYPE":     true,
	"INVALID_METHOD":   true,
	"INVALID_CODE":     true,
	"INVALID_NAME":     true,
	"INVALID_TENANT":   true,
	"NO_ITEMS":         true,
	"DUPLICATE_CODE":   true,
}

// IsValidationError reports whether err is a domain error rejecting input
func IsValidationError(err error) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return ValidationCodes[de.Code]
}
