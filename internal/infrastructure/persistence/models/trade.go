package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	BaseModel
	TenantID        uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_sales_tenant_number,priority:1"`
	SaleNumber      string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_sales_tenant_number,priority:2"`
	SaleDate        time.Time       `gorm:"not null;index"`
	CustomerName    string          `gorm:"type:varchar(200)"`
	CustomerPhone   string          `gorm:"type:varchar(50)"`
	CustomerEmail   string          `gorm:"type:varchar(200)"`
	CustomerAddress string          `gorm:"type:varchar(500)"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;index"`
	Notes           string          `gorm:"type:text"`
	CancelledAt     *time.Time
	Items           []SaleItemModel `gorm:"foreignKey:SaleID;references:ID"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
// Items are included only if they were preloaded.
func (m *SaleModel) ToDomain() *trade.Sale {
	sale := &trade.Sale{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			TenantID:   m.TenantID,
		},
		SaleNumber: m.SaleNumber,
		SaleDate:   m.SaleDate,
		Customer: trade.Customer{
			Name:    m.CustomerName,
			Phone:   m.CustomerPhone,
			Email:   m.CustomerEmail,
			Address: m.CustomerAddress,
		},
		Subtotal:       valueobject.RoundMoney(m.Subtotal),
		TaxAmount:      valueobject.RoundMoney(m.TaxAmount),
		DiscountAmount: valueobject.RoundMoney(m.DiscountAmount),
		TotalAmount:    valueobject.RoundMoney(m.TotalAmount),
		PaymentStatus:  trade.PaymentStatus(m.PaymentStatus),
		Notes:          m.Notes,
		CancelledAt:    m.CancelledAt,
		Items:          make([]trade.SaleItem, len(m.Items)),
	}
	for i := range m.Items {
		sale.Items[i] = m.Items[i].ToDomain()
	}
	return sale
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *trade.Sale) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.TenantID = s.TenantID
	m.SaleNumber = s.SaleNumber
	m.SaleDate = s.SaleDate.UTC()
	m.CustomerName = s.Customer.Name
	m.CustomerPhone = s.Customer.Phone
	m.CustomerEmail = s.Customer.Email
	m.CustomerAddress = s.Customer.Address
	m.Subtotal = s.Subtotal
	m.TaxAmount = s.TaxAmount
	m.DiscountAmount = s.DiscountAmount
	m.TotalAmount = s.TotalAmount
	m.PaymentStatus = string(s.PaymentStatus)
	m.Notes = s.Notes
	m.CancelledAt = s.CancelledAt
	m.Items = make([]SaleItemModel, len(s.Items))
	for i := range s.Items {
		m.Items[i] = *SaleItemModelFromDomain(&s.Items[i])
		m.Items[i].LineNo = i + 1
	}
}

// SaleModelFromDomain creates a new persistence model from a domain Sale entity.
func SaleModelFromDomain(s *trade.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// SaleItemModel is the persistence model for a sale line.
// Product code and name are snapshots taken when the sale was built.
// LineNo keeps the order the lines were submitted in.
type SaleItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo       int             `gorm:"not null"`
	StockID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductCode  string          `gorm:"type:varchar(50);not null"`
	ProductName  string          `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	DiscountRate decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	TaxAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the persistence model to a domain SaleItem.
func (m *SaleItemModel) ToDomain() trade.SaleItem {
	return trade.SaleItem{
		ID:           m.ID,
		SaleID:       m.SaleID,
		StockID:      m.StockID,
		ProductCode:  m.ProductCode,
		ProductName:  m.ProductName,
		Quantity:     valueobject.RoundQuantity(m.Quantity),
		UnitPrice:    valueobject.RoundMoney(m.UnitPrice),
		TaxRate:      valueobject.RoundMoney(m.TaxRate),
		DiscountRate: valueobject.RoundMoney(m.DiscountRate),
		TaxAmount:    valueobject.RoundMoney(m.TaxAmount),
		LineTotal:    valueobject.RoundMoney(m.LineTotal),
		CreatedAt:    m.CreatedAt,
	}
}

// SaleItemModelFromDomain creates a new persistence model from a domain SaleItem.
func SaleItemModelFromDomain(i *trade.SaleItem) *SaleItemModel {
	return &SaleItemModel{
		ID:           i.ID,
		SaleID:       i.SaleID,
		StockID:      i.StockID,
		ProductCode:  i.ProductCode,
		ProductName:  i.ProductName,
		Quantity:     i.Quantity,
		UnitPrice:    i.UnitPrice,
		TaxRate:      i.TaxRate,
		DiscountRate: i.DiscountRate,
		TaxAmount:    i.TaxAmount,
		LineTotal:    i.LineTotal,
		CreatedAt:    i.CreatedAt,
	}
}
