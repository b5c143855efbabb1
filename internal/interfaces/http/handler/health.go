package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness
type HealthHandler struct {
	BaseHandler
	db        Pinger
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthResponse is the body of a healthy response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

// Check godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      503 {object} dto.Response
// @Router       /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		logger.L(ctx).Warn("health check failed", zap.Error(err))
		h.Error(c, dto.ErrCodeUnavailable, "Database is unreachable")
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
		Database: "ok",
	}))
}
