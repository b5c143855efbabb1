package models

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantModel
	SaleID          *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentDate     time.Time       `gorm:"not null;index"`
	Counterparty    string          `gorm:"type:varchar(200)"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null;check:chk_payments_amount_positive,amount > 0"`
	Type            string          `gorm:"type:varchar(10);not null;index"`
	Method          string          `gorm:"type:varchar(20);not null"`
	CheckNumber     string          `gorm:"type:varchar(50)"`
	CheckDate       *time.Time
	BankName        string `gorm:"type:varchar(100)"`
	ReferenceNumber string `gorm:"type:varchar(100)"`
	Notes           string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *finance.Payment {
	return &finance.Payment{
		TenantAggregateRoot: m.ToTenantAggregateRoot(),
		SaleID:              m.SaleID,
		PaymentDate:         m.PaymentDate,
		Counterparty:        m.Counterparty,
		Amount:              valueobject.RoundMoney(m.Amount),
		Type:                finance.PaymentType(m.Type),
		Method:              finance.PaymentMethod(m.Method),
		CheckNumber:         m.CheckNumber,
		CheckDate:           m.CheckDate,
		BankName:            m.BankName,
		ReferenceNumber:     m.ReferenceNumber,
		Notes:               m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *finance.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.SaleID = p.SaleID
	m.PaymentDate = p.PaymentDate.UTC()
	m.Counterparty = p.Counterparty
	m.Amount = p.Amount
	m.Type = string(p.Type)
	m.Method = string(p.Method)
	m.CheckNumber = p.CheckNumber
	m.CheckDate = p.CheckDate
	m.BankName = p.BankName
	m.ReferenceNumber = p.ReferenceNumber
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *finance.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// AllModels lists every model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&StockModel{},
		&SaleModel{},
		&SaleItemModel{},
		&PaymentModel{},
	}
}
