package models

import (
	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockModel is the persistence model for the Stock aggregate root.
// Code is unique per tenant among active rows only.
type StockModel struct {
	BaseModel
	TenantID      uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_stocks_tenant_code_active,priority:1,where:is_active = true"`
	Code          string              `gorm:"type:varchar(50);not null;uniqueIndex:idx_stocks_tenant_code_active,priority:2"`
	Name          string              `gorm:"type:varchar(200);not null"`
	Quantity      decimal.Decimal     `gorm:"type:decimal(18,3);not null;check:chk_stocks_quantity_non_negative,quantity >= 0"`
	PurchasePrice decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	SalePrice     decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	MinQuantity   decimal.NullDecimal `gorm:"type:decimal(18,3)"`
	IsActive      bool                `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockModel) TableName() string {
	return "stocks"
}

// ToDomain converts the persistence model to a domain Stock entity.
func (m *StockModel) ToDomain() *inventory.Stock {
	s := &inventory.Stock{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			TenantID:   m.TenantID,
		},
		Code:          m.Code,
		Name:          m.Name,
		Quantity:      valueobject.RoundQuantity(m.Quantity),
		PurchasePrice: valueobject.RoundMoney(m.PurchasePrice),
		SalePrice:     valueobject.RoundMoney(m.SalePrice),
		IsActive:      m.IsActive,
	}
	if m.MinQuantity.Valid {
		minQty := valueobject.RoundQuantity(m.MinQuantity.Decimal)
		s.MinQuantity = &minQty
	}
	return s
}

// FromDomain populates the persistence model from a domain Stock entity.
func (m *StockModel) FromDomain(s *inventory.Stock) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.Code = s.Code
	m.Name = s.Name
	m.Quantity = s.Quantity
	m.PurchasePrice = s.PurchasePrice
	m.SalePrice = s.SalePrice
	m.MinQuantity = decimal.NullDecimal{}
	if s.MinQuantity != nil {
		m.MinQuantity = decimal.NewNullDecimal(*s.MinQuantity)
	}
	m.IsActive = s.IsActive
}

// StockModelFromDomain creates a new persistence model from a domain Stock entity.
func StockModelFromDomain(s *inventory.Stock) *StockModel {
	m := &StockModel{}
	m.FromDomain(s)
	return m
}
