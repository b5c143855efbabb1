package inventory

import (
	"time"

	"github.com/erp/ledger/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateStockRequest represents a request to create a stock
type CreateStockRequest struct {
	Code          string           `json:"code" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	MinQuantity   *decimal.Decimal `json:"min_quantity"`
}

// UpdateStockRequest represents a request to update a stock's details
type UpdateStockRequest struct {
	Code          string           `json:"code" binding:"required,min=1,max=50"`
	Name          string           `json:"name" binding:"required,min=1,max=200"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	MinQuantity   *decimal.Decimal `json:"min_quantity"`
}

// AdjustStockRequest represents a signed quantity adjustment
type AdjustStockRequest struct {
	Delta decimal.Decimal `json:"delta" binding:"required"`
}

// StockListFilter represents filter options for stock lists
type StockListFilter struct {
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string `form:"order_by"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// StockResponse represents a stock in API responses
type StockResponse struct {
	ID            uuid.UUID        `json:"id"`
	TenantID      uuid.UUID        `json:"tenant_id"`
	Code          string           `json:"code"`
	Name          string           `json:"name"`
	Quantity      decimal.Decimal  `json:"quantity"`
	PurchasePrice decimal.Decimal  `json:"purchase_price"`
	SalePrice     decimal.Decimal  `json:"sale_price"`
	MinQuantity   *decimal.Decimal `json:"min_quantity,omitempty"`
	IsActive      bool             `json:"is_active"`
	IsLowStock    bool             `json:"is_low_stock"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ToStockResponse converts a domain stock to a response
func ToStockResponse(s *inventory.Stock) StockResponse {
	return StockResponse{
		ID:            s.ID,
		TenantID:      s.TenantID,
		Code:          s.Code,
		Name:          s.Name,
		Quantity:      s.Quantity,
		PurchasePrice: s.PurchasePrice,
		SalePrice:     s.SalePrice,
		MinQuantity:   s.MinQuantity,
		IsActive:      s.IsActive,
		IsLowStock:    s.IsLowStock(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// ToStockResponses converts a slice of stocks
func ToStockResponses(stocks []inventory.Stock) []StockResponse {
	out := make([]StockResponse, len(stocks))
	for i := range stocks {
		out[i] = ToStockResponse(&stocks[i])
	}
	return out
}
