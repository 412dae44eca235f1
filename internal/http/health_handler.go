package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler expone el estado de la base de datos.
type HealthHandler struct {
	logger *zap.Logger
	db     pinger
}

func NewHealthHandler(logger *zap.Logger, db pinger) *HealthHandler {
	return &HealthHandler{logger: logger, db: db}
}

// Health maneja GET /healthz.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
