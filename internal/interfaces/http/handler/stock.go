package handler

import (
	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/gin-gonic/gin"
)

// StockHandler handles stock maintenance endpoints
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// Create godoc
// @Summary      Create a stock
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.CreateStockRequest true "Stock"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Router       /stocks [post]
func (h *StockHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req inventoryapp.CreateStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	stock, err := h.stockService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, stock)
}

// GetByID godoc
// @Summary      Get a stock
// @Tags         stocks
// @Produce      json
// @Param        id path string true "Stock ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /stocks/{id} [get]
func (h *StockHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	stockID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	stock, err := h.stockService.GetByID(c.Request.Context(), tenantID, stockID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stock)
}

// List godoc
// @Summary      List stocks
// @Tags         stocks
// @Produce      json
// @Param        search query string false "Code or name"
// @Param        include_inactive query bool false "Include deactivated stocks"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Router       /stocks [get]
func (h *StockHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter inventoryapp.StockListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	stocks, total, err := h.stockService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, stocks, total, filter.Page, filter.PageSize)
}

// ListLowStock lists active stocks at or below their minimum quantity
// @Router       /stocks/low-stock [get]
func (h *StockHandler) ListLowStock(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter inventoryapp.StockListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	stocks, err := h.stockService.ListLowStock(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stocks)
}

// Update godoc
// @Summary      Update stock details
// @Description  Quantity is not editable here; use the adjust endpoint
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock ID"
// @Param        request body inventoryapp.UpdateStockRequest true "Stock details"
// @Success      200 {object} dto.Response
// @Router       /stocks/{id} [put]
func (h *StockHandler) Update(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	stockID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.UpdateStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	stock, err := h.stockService.Update(c.Request.Context(), tenantID, stockID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stock)
}

// Adjust godoc
// @Summary      Adjust stock quantity
// @Description  Applies a signed delta. Decrements never take the quantity below zero.
// @Tags         stocks
// @Accept       json
// @Produce      json
// @Param        id path string true "Stock ID"
// @Param        request body inventoryapp.AdjustStockRequest true "Delta"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Router       /stocks/{id}/adjust [post]
func (h *StockHandler) Adjust(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	stockID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	found, err := h.stockService.Adjust(ctx, tenantID, stockID, req.Delta)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Stock not found")
		return
	}

	stock, err := h.stockService.GetByID(ctx, tenantID, stockID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stock)
}

// Deactivate soft deletes a stock
// @Router       /stocks/{id} [delete]
func (h *StockHandler) Deactivate(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	stockID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.stockService.Deactivate(c.Request.Context(), tenantID, stockID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
