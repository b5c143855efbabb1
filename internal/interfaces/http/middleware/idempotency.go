package middleware

import (
	"net/http"
	"time"

	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader lets a client make a create request safe to retry
	IdempotencyKeyHeader = "Idempotency-Key"

	maxIdempotencyKeyLength = 255
)

// Idempotency rejects a repeated Idempotency-Key for the same tenant and route
// with 409. Keys are released again when the request does not succeed so the
// client can retry. Requests without the header pass through.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" || store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithError(c, dto.ErrCodeBadRequest, "Idempotency-Key is too long")
			return
		}

		ctx := c.Request.Context()
		scoped := idempotencyScope(c) + key
		claimed, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			logger.L(ctx).Warn("Idempotency store unavailable, processing without guard", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			abortWithError(c, dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already accepted")
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, scoped); err != nil {
				logger.L(ctx).Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

func idempotencyScope(c *gin.Context) string {
	tenant := "-"
	if id, ok := GetTenantID(c); ok {
		tenant = id.String()
	}
	return tenant + ":" + c.Request.Method + ":" + c.FullPath() + ":"
}
