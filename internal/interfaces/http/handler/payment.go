package handler

import (
	"strings"

	financeapp "github.com/erp/ledger/internal/application/finance"
	"github.com/gin-gonic/gin"
)

// PaymentHandler handles payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *financeapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *financeapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create godoc
// @Summary      Record a payment
// @Description  Income linked to a sale updates the sale's payment status in the same transaction
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Idempotency key"
// @Param        request body financeapp.CreatePaymentRequest true "Payment"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var req financeapp.CreatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID godoc
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Router       /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Param        type query string false "Payment type" Enums(INCOME, EXPENSE)
// @Param        method query string false "Payment method"
// @Param        sale_id query string false "Linked sale"
// @Param        start_date query string false "From date (YYYY-MM-DD)"
// @Param        end_date query string false "To date (YYYY-MM-DD), inclusive"
// @Param        page query int false "Page"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter financeapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	payments, total, err := h.paymentService.GetPayments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ListByType lists payments of the type in the path
// @Router       /payments/type/{type} [get]
func (h *PaymentHandler) ListByType(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter financeapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	paymentType := strings.ToUpper(c.Param("type"))
	payments, total, err := h.paymentService.GetByType(c.Request.Context(), tenantID, paymentType, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// ListBySale lists every payment linked to a sale
// @Router       /sales/{id}/payments [get]
func (h *PaymentHandler) ListBySale(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	saleID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	payments, err := h.paymentService.GetBySale(c.Request.Context(), tenantID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// Summary godoc
// @Summary      Payment totals
// @Description  Income, expense and net over the same filters as the list
// @Tags         payments
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /payments/summary [get]
func (h *PaymentHandler) Summary(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}

	var filter financeapp.PaymentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	summary, err := h.paymentService.Summary(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Delete removes a payment and re-derives its sale's status
// @Router       /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	tenantID, ok := h.tenantID(c)
	if !ok {
		return
	}
	paymentID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	found, err := h.paymentService.DeletePayment(c.Request.Context(), tenantID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !found {
		h.NotFound(c, "Payment not found")
		return
	}

	h.NoContent(c)
}
