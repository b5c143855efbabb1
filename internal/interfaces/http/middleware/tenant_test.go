package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen, fromCtx string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		seen = GetRequestID(c)
		fromCtx = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "req-abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-abc", seen)
		assert.Equal(t, "req-abc", fromCtx)
	})

	t.Run("generates when missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
		assert.Equal(t, w.Header().Get(RequestIDHeader), seen)
	})
}

func TestTenant(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var got uuid.UUID
	var fromCtx string
	router := gin.New()
	router.Use(RequestID(), Tenant(TenantConfig{SkipPaths: []string{"/health"}}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/stocks", func(c *gin.Context) {
		got, _ = GetTenantID(c)
		fromCtx = logger.GetTenantID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	tenantID := uuid.New()
	tests := []struct {
		name   string
		path   string
		header string
		status int
	}{
		{"valid tenant", "/stocks", tenantID.String(), http.StatusOK},
		{"missing header", "/stocks", "", http.StatusBadRequest},
		{"malformed header", "/stocks", "acme", http.StatusBadRequest},
		{"nil uuid", "/stocks", uuid.Nil.String(), http.StatusBadRequest},
		{"skipped path", "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(TenantHeader, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusBadRequest {
				assert.Contains(t, w.Body.String(), "ERR_TENANT_REQUIRED")
			}
		})
	}

	assert.Equal(t, tenantID, got)
	assert.Equal(t, tenantID.String(), fromCtx)
}
