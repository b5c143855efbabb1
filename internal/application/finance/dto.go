package finance

import (
	"time"

	"github.com/erp/ledger/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	SaleID          *uuid.UUID      `json:"sale_id"`
	PaymentDate     *time.Time      `json:"payment_date"`
	Counterparty    string          `json:"counterparty" binding:"max=200"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Type            string          `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Method          string          `json:"method" binding:"required,oneof=CASH CREDIT_CARD BANK_TRANSFER CHECK OTHER"`
	CheckNumber     string          `json:"check_number" binding:"max=50"`
	CheckDate       *time.Time      `json:"check_date"`
	BankName        string          `json:"bank_name" binding:"max=100"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes" binding:"max=2000"`
}

// PaymentListFilter represents filter options for payment lists
type PaymentListFilter struct {
	Type      string     `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Method    string     `form:"method" binding:"omitempty,oneof=CASH CREDIT_CARD BANK_TRANSFER CHECK OTHER"`
	SaleID    string     `form:"sale_id" binding:"omitempty,uuid"`
	Search    string     `form:"search"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	SaleID          *uuid.UUID      `json:"sale_id,omitempty"`
	PaymentDate     time.Time       `json:"payment_date"`
	Counterparty    string          `json:"counterparty,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Type            string          `json:"type"`
	Method          string          `json:"method"`
	CheckNumber     string          `json:"check_number,omitempty"`
	CheckDate       *time.Time      `json:"check_date,omitempty"`
	BankName        string          `json:"bank_name,omitempty"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentSummaryResponse totals payments by type
type PaymentSummaryResponse struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// ToPaymentResponse converts a domain payment to a response
func ToPaymentResponse(p *finance.Payment) PaymentResponse {
	return PaymentResponse{
		ID:              p.ID,
		TenantID:        p.TenantID,
		SaleID:          p.SaleID,
		PaymentDate:     p.PaymentDate,
		Counterparty:    p.Counterparty,
		Amount:          p.Amount,
		Type:            string(p.Type),
		Method:          string(p.Method),
		CheckNumber:     p.CheckNumber,
		CheckDate:       p.CheckDate,
		BankName:        p.BankName,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt,
	}
}

// ToPaymentResponses converts a slice of payments
func ToPaymentResponses(payments []finance.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i := range payments {
		out[i] = ToPaymentResponse(&payments[i])
	}
	return out
}
