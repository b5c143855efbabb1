package handler

import (
	"fmt"

	tradeapp "github.com/erp/ledger/internal/application/trade"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// SaleHandler handles sale endpoints
type SaleHandler struct {
	BaseHandler
	saleService *tradeapp.SaleService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(saleService *tradeapp.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

// Create godoc
// @Summary      Create a sale
// @Description  Prices the items from stock, deducts the quantities and numbers the sale in one transaction
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body tradeapp.CreateSaleRequest true "Sale"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /sales [post]
func (h *SaleHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req tradeapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if details := itemQuantityDetails(req.Items); len(details) > 0 {
		h.ValidationError(c, details)
		return
	}

	sale, err := h.saleService.CreateSale(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, sale)
}

// itemQuantityDetails rejects non-positive line quantities at the edge.
// The engine itself accepts zero.
func itemQuantityDetails(items []tradeapp.CreateSaleItemInput) []dto.ValidationDetail {
	var details []dto.ValidationDetail
	for i, item := range items {
		if !item.Quantity.IsPositive() {
			details = append(details, dto.ValidationDetail{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "Must be greater than 0",
			})
		}
	}
	return details
}

// GetByID godoc
// @Summary      Get a sale with its items
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /sales/{id} [get]
func (h *SaleHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	sale, err := h.saleService.GetByID(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetBySaleNumber godoc
// @Summary      Get a sale by number
// @Tags         sales
// @Produce      json
// @Param        number path string true "Sale number"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /sales/number/{number} [get]
func (h *SaleHandler) GetBySaleNumber(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	sale, err := h.saleService.GetBySaleNumber(c.Request.Context(), tenantID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// List godoc
// @Summary      List sales
// @Tags         sales
// @Produce      json
// @Param        search query string false "Sale number or customer"
// @Param        status query string false "Payment status" Enums(PENDING, PARTIAL_PAID, PAID, CANCELLED)
// @Param        start_date query string false "From date (YYYY-MM-DD)"
// @Param        end_date query string false "To date (YYYY-MM-DD), inclusive"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Router       /sales [get]
func (h *SaleHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter tradeapp.SaleListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	sales, total, err := h.saleService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, sales, total, filter.Page, filter.PageSize)
}

// Cancel godoc
// @Summary      Cancel a sale
// @Description  Restores the sold stock. Cancelling twice has no further effect.
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /sales/{id}/cancel [post]
func (h *SaleHandler) Cancel(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	found, err := h.saleService.Cancel(ctx, tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Sale not found")
		return
	}

	sale, err := h.saleService.GetByID(ctx, tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// Recompute re-derives the payment status from the sale's income payments
// @Router       /sales/{id}/recompute [post]
func (h *SaleHandler) Recompute(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.saleService.RecomputePaymentStatus(ctx, tenantID, saleID); err != nil {
		h.HandleError(c, err)
		return
	}

	sale, err := h.saleService.GetByID(ctx, tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}
