package finance

import (
	"strings"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType separates money received from money paid out
type PaymentType string

const (
	PaymentTypeIncome  PaymentType = "INCOME"
	PaymentTypeExpense PaymentType = "EXPENSE"
)

// IsValid checks if the type is a known value
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeIncome || t == PaymentTypeExpense
}

// PaymentMethod is the instrument used to move the money
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheck        PaymentMethod = "CHECK"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a known value
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCreditCard, PaymentMethodBankTransfer,
		PaymentMethodCheck, PaymentMethodOther:
		return true
	}
	return false
}

// Payment is a single movement of money, optionally linked to a sale.
// Payments are immutable once recorded; corrections delete and re-record.
type Payment struct {
	shared.TenantAggregateRoot
	SaleID          *uuid.UUID
	PaymentDate     time.Time
	Counterparty    string
	Amount          decimal.Decimal
	Type            PaymentType
	Method          PaymentMethod
	CheckNumber     string
	CheckDate       *time.Time
	BankName        string
	ReferenceNumber string
	Notes           string
}

// PaymentInput carries the fields for recording a payment
type PaymentInput struct {
	SaleID          *uuid.UUID
	PaymentDate     time.Time
	Counterparty    string
	Amount          decimal.Decimal
	Type            PaymentType
	Method          PaymentMethod
	CheckNumber     string
	CheckDate       *time.Time
	BankName        string
	ReferenceNumber string
	Notes           string
}

// NewPayment validates the input and builds a payment
func NewPayment(tenantID uuid.UUID, in PaymentInput) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	amount := valueobject.RoundMoney(in.Amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !in.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Payment type must be INCOME or EXPENSE")
	}
	if !in.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method: "+string(in.Method))
	}
	if in.SaleID != nil && *in.SaleID == uuid.Nil {
		in.SaleID = nil
	}
	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SaleID:              in.SaleID,
		PaymentDate:         paymentDate,
		Counterparty:        strings.TrimSpace(in.Counterparty),
		Amount:              amount,
		Type:                in.Type,
		Method:              in.Method,
		CheckNumber:         strings.TrimSpace(in.CheckNumber),
		CheckDate:           in.CheckDate,
		BankName:            strings.TrimSpace(in.BankName),
		ReferenceNumber:     strings.TrimSpace(in.ReferenceNumber),
		Notes:               in.Notes,
	}, nil
}

// SettlesSale reports whether the payment counts toward a sale's paid amount
func (p *Payment) SettlesSale() bool {
	return p.SaleID != nil && p.Type == PaymentTypeIncome
}
