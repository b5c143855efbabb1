package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/erp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// tenantID returns the tenant resolved by the tenant middleware.
// It writes the error response itself when none is present.
func (h *BaseHandler) tenantID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := middleware.GetTenantID(c)
	if !ok {
		h.Error(c, dto.ErrCodeTenantRequired, "Tenant ID is required")
		return uuid.Nil, false
	}
	return id, true
}

// parseID parses the path parameter name as a UUID
func (h *BaseHandler) parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.ValidationError(c, []dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}})
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into req and reports binding failures
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	h.bindError(c, err)
	return false
}

// bindQuery decodes the query string into filter and reports binding failures
func (h *BaseHandler) bindQuery(c *gin.Context, filter any) bool {
	err := c.ShouldBindQuery(filter)
	if err == nil {
		return true
	}
	h.bindError(c, err)
	return false
}

func (h *BaseHandler) bindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		h.ValidationError(c, details)
		return
	}

	var tooLarge *http.MaxBytesError
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &tooLarge):
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		h.Error(c, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
	case errors.As(err, &typeErr):
		h.ValidationError(c, []dto.ValidationDetail{{Field: typeErr.Field, Message: "Invalid value type"}})
	default:
		h.Error(c, dto.ErrCodeBadRequest, err.Error())
	}
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response, deriving the status from the code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, dto.ErrCodeNotFound, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// HandleError converts domain errors to HTTP responses.
// Anything else is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		info := dto.NewErrorResponseWithRequestID(code, domainErr.Message, middleware.GetRequestID(c))
		if code != domainErr.Code && code != dto.ErrCodeInternal {
			info.Error.Reason = domainErr.Code
		}
		c.JSON(dto.GetHTTPStatus(code), info)
		return
	}

	logger.L(c.Request.Context()).Error("unhandled request error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.Error(c, dto.ErrCodeInternal, "An unexpected error occurred")
}
