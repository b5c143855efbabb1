package trade

import (
	"time"

	"github.com/erp/ledger/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSaleRequest represents a request to create a sale
type CreateSaleRequest struct {
	SaleDate        *time.Time            `json:"sale_date"`
	CustomerName    string                `json:"customer_name" binding:"max=200"`
	CustomerPhone   string                `json:"customer_phone" binding:"max=50"`
	CustomerEmail   string                `json:"customer_email" binding:"omitempty,email,max=200"`
	CustomerAddress string                `json:"customer_address" binding:"max=500"`
	DiscountAmount  *decimal.Decimal      `json:"discount_amount"`
	Notes           string                `json:"notes" binding:"max=2000"`
	Items           []CreateSaleItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateSaleItemInput represents a line in the create sale request.
// UnitPrice defaults to the stock's sale price when omitted.
type CreateSaleItemInput struct {
	StockID      uuid.UUID        `json:"stock_id" binding:"required"`
	Quantity     decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal  `json:"tax_rate"`
	DiscountRate decimal.Decimal  `json:"discount_rate"`
}

// SaleListFilter represents filter options for sale lists
type SaleListFilter struct {
	Search    string     `form:"search"`
	Status    string     `form:"status" binding:"omitempty,oneof=PENDING PARTIAL_PAID PAID CANCELLED"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
	Page      int        `form:"page" binding:"omitempty,min=1"`
	PageSize  int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// SaleResponse represents a sale with its items
type SaleResponse struct {
	ID              uuid.UUID          `json:"id"`
	TenantID        uuid.UUID          `json:"tenant_id"`
	SaleNumber      string             `json:"sale_number"`
	SaleDate        time.Time          `json:"sale_date"`
	CustomerName    string             `json:"customer_name"`
	CustomerPhone   string             `json:"customer_phone,omitempty"`
	CustomerEmail   string             `json:"customer_email,omitempty"`
	CustomerAddress string             `json:"customer_address,omitempty"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	TaxAmount       decimal.Decimal    `json:"tax_amount"`
	DiscountAmount  decimal.Decimal    `json:"discount_amount"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	PaymentStatus   string             `json:"payment_status"`
	Notes           string             `json:"notes,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	Items           []SaleItemResponse `json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// SaleItemResponse represents a sale line
type SaleItemResponse struct {
	ID           uuid.UUID       `json:"id"`
	StockID      uuid.UUID       `json:"stock_id"`
	ProductCode  string          `json:"product_code"`
	ProductName  string          `json:"product_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TaxAmount    decimal.Decimal `json:"tax_amount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// SaleListItemResponse represents a sale in list responses
type SaleListItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	SaleNumber    string          `json:"sale_number"`
	SaleDate      time.Time       `json:"sale_date"`
	CustomerName  string          `json:"customer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToSaleResponse converts a domain sale to a response
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = SaleItemResponse{
			ID:           it.ID,
			StockID:      it.StockID,
			ProductCode:  it.ProductCode,
			ProductName:  it.ProductName,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			TaxRate:      it.TaxRate,
			DiscountRate: it.DiscountRate,
			TaxAmount:    it.TaxAmount,
			LineTotal:    it.LineTotal,
		}
	}
	return SaleResponse{
		ID:              s.ID,
		TenantID:        s.TenantID,
		SaleNumber:      s.SaleNumber,
		SaleDate:        s.SaleDate,
		CustomerName:    s.Customer.Name,
		CustomerPhone:   s.Customer.Phone,
		CustomerEmail:   s.Customer.Email,
		CustomerAddress: s.Customer.Address,
		Subtotal:        s.Subtotal,
		TaxAmount:       s.TaxAmount,
		DiscountAmount:  s.DiscountAmount,
		TotalAmount:     s.TotalAmount,
		PaymentStatus:   s.PaymentStatus.String(),
		Notes:           s.Notes,
		CancelledAt:     s.CancelledAt,
		Items:           items,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ToSaleListItemResponse converts a domain sale to a list item
func ToSaleListItemResponse(s *trade.Sale) SaleListItemResponse {
	return SaleListItemResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		SaleDate:      s.SaleDate,
		CustomerName:  s.Customer.Name,
		TotalAmount:   s.TotalAmount,
		PaymentStatus: s.PaymentStatus.String(),
		CreatedAt:     s.CreatedAt,
	}
}
