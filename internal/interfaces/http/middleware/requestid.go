// Package middleware provides the gin middleware chain of the ledger API.
package middleware

import (
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request id in and out
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey stores the request id in gin.Context
	RequestIDKey = "request_id"

	maxRequestIDLength = 128
)

// RequestID accepts a caller supplied X-Request-ID or generates one, echoes it
// back and stores it on both the gin and request contexts
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}
		c.Set(RequestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or ""
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
