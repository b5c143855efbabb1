package inventory

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRepository defines the interface for stock persistence
type StockRepository interface {
	// FindByIDForTenant finds a stock by ID within a tenant, active or not
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Stock, error)

	// FindByIDForUpdate finds a stock and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Stock, error)

	// FindByIDsForUpdate locks several stocks in ascending ID order.
	// Missing IDs are simply absent from the result.
	FindByIDsForUpdate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Stock, error)

	// ExistsActiveCode checks whether an active stock already uses code
	ExistsActiveCode(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error)

	// FindAllForTenant lists stocks matching the filter
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// CountForTenant counts stocks matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// FindBelowMinimum lists active stocks at or below their minimum quantity
	FindBelowMinimum(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Stock, error)

	// Save creates or updates a stock
	Save(ctx context.Context, stock *Stock) error

	// DecreaseQuantity subtracts quantity only while enough remains.
	// Returns false when no row matched the guard.
	DecreaseQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity decimal.Decimal) (bool, error)

	// IncreaseQuantity adds quantity. Returns false if the stock does not exist.
	IncreaseQuantity(ctx context.Context, tenantID, id uuid.UUID, quantity decimal.Decimal) (bool, error)
}
