// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: shared columns (BaseModel, TenantModel)
//   - inventory.go: stocks
//   - trade.go: sales and sale items
//   - finance.go: payments
//
// ToDomain normalises decimals to their domain scale, since some drivers
// return numeric columns as floats.
package models
