package middleware

import (
	"strings"

	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// TenantHeader is the trusted header naming the tenant
	TenantHeader = "X-Tenant-ID"
	// TenantIDKey stores the parsed tenant uuid in gin.Context
	TenantIDKey = "tenant_id"
)

// TenantConfig configures Tenant
type TenantConfig struct {
	// SkipPaths are served without a tenant (health, metrics)
	SkipPaths []string
}

// Tenant requires a uuid X-Tenant-ID header. The upstream gateway is trusted
// to have authenticated the caller for that tenant.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := c.GetHeader(TenantHeader)
		if raw == "" {
			abortWithError(c, dto.ErrCodeTenantRequired, "X-Tenant-ID header is required")
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			abortWithError(c, dto.ErrCodeTenantRequired, "X-Tenant-ID must be a non-nil UUID")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Request = c.Request.WithContext(logger.WithTenantID(c.Request.Context(), tenantID.String()))
		c.Next()
	}
}

// GetTenantID returns the tenant set by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
