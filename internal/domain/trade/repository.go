package trade

import (
	"context"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByIDForTenant finds a sale with its items
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate finds a sale with its items and locks the sale row
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Sale, error)

	// FindBySaleNumber finds a sale by its number for a tenant
	FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*Sale, error)

	// FindAllForTenant lists sales without items
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// CountForTenant counts sales matching the filter
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// LastSaleNumber returns the highest sale number with prefix, or "" if none
	LastSaleNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error)

	// Create inserts the sale header and its items
	Create(ctx context.Context, sale *Sale) error

	// UpdateStatus persists payment status and cancellation time
	UpdateStatus(ctx context.Context, sale *Sale) error
}
