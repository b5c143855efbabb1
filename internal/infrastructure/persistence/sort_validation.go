package persistence

import (
	"strings"

	"github.com/erp/ledger/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// StockSortFields contains allowed sort fields for stocks
var StockSortFields = map[string]bool{
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"quantity":       true,
	"purchase_price": true,
	"sale_price":     true,
}

// SaleSortFields contains allowed sort fields for sales
var SaleSortFields = map[string]bool{
	"created_at":     true,
	"sale_number":    true,
	"sale_date":      true,
	"customer_name":  true,
	"total_amount":   true,
	"payment_status": true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"created_at":   true,
	"payment_date": true,
	"amount":       true,
	"type":         true,
	"method":       true,
	"counterparty": true,
}

// ordered applies a whitelisted ORDER BY with id as a stable tie-breaker
func ordered(filter shared.Filter, allowed map[string]bool, defaultField string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field := ValidateSortField(filter.OrderBy, allowed, defaultField)
		return db.Order(field + " " + ValidateSortOrder(filter.OrderDir)).Order("id ASC")
	}
}

// paginated applies LIMIT/OFFSET from a normalized filter
func paginated(filter shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		f := filter.Normalize()
		return db.Offset(f.Offset()).Limit(f.PageSize)
	}
}

// likePattern builds a case-insensitive LIKE pattern, escaping wildcards
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(strings.TrimSpace(search))) + "%"
}
