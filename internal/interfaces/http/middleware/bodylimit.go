package middleware

import (
	"net/http"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BodyLimit rejects bodies larger than maxBytes. A non-positive limit disables the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
			return
		}

		// streaming bodies without Content-Length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
