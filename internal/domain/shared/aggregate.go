package shared

import (
	"github.com/google/uuid"
)

// TenantEntity is implemented by every record owned by a tenant
type TenantEntity interface {
	Entity
	GetTenantID() uuid.UUID
}

// TenantAggregateRoot is the base of every tenant-owned aggregate.
// Reads and writes of an aggregate are always scoped by TenantID.
type TenantAggregateRoot struct {
	BaseEntity
	TenantID uuid.UUID
}

// GetTenantID returns the owning tenant
func (a *TenantAggregateRoot) GetTenantID() uuid.UUID {
	return a.TenantID
}

// BelongsTo reports whether the aggregate is owned by tenantID
func (a *TenantAggregateRoot) BelongsTo(tenantID uuid.UUID) bool {
	return a.TenantID == tenantID
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseEntity: NewBaseEntity(),
		TenantID:   tenantID,
	}
}
