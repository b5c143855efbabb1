// Package tenant provides tenant scoping for GORM queries.
//
// Every ledger read and write is restricted to one tenant. Repositories apply
// the scope explicitly:
//
//	db.WithContext(ctx).Scopes(tenant.Scope(tenantID)).Find(&stocks)
package tenant

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column is the tenant column shared by every tenant-owned table
const Column = "tenant_id"

// ErrTenantIDRequired is returned when a query is scoped to the nil tenant
var ErrTenantIDRequired = errors.New("tenant_id is required")

// Scope restricts a query to tenantID. A nil tenant ID poisons the statement
// with ErrTenantIDRequired instead of running it unscoped.
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(Column+" = ?", tenantID)
	}
}

// ScopeTable is Scope with the column qualified by table, for joined queries
func ScopeTable(table string, tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tenantID == uuid.Nil {
			_ = db.AddError(ErrTenantIDRequired)
			return db
		}
		return db.Where(table+"."+Column+" = ?", tenantID)
	}
}
