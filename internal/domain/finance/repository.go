package finance

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentFilter narrows payment listings. Date bounds are inclusive.
type PaymentFilter struct {
	shared.Filter
	Type   PaymentType
	Method PaymentMethod
	SaleID *uuid.UUID
}

// PaymentTotals aggregates payment amounts by type
type PaymentTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// Net returns income minus expense
func (t PaymentTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByIDForTenant finds a payment by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindAllForTenant lists payments matching the filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// CountForTenant counts payments matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)

	// FindBySale lists all payments linked to a sale, oldest first
	FindBySale(ctx context.Context, tenantID, saleID uuid.UUID) ([]Payment, error)

	// SumIncomeBySale sums income payments linked to a sale
	SumIncomeBySale(ctx context.Context, tenantID, saleID uuid.UUID) (decimal.Decimal, error)

	// SumByType totals income and expense over the filter
	SumByType(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (PaymentTotals, error)

	// Create inserts a payment
	Create(ctx context.Context, payment *Payment) error

	// DeleteForTenant removes a payment
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
