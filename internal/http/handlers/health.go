package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

// ping may be nil when there is no backing store to check (tests).
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"status": "ok"})
}

func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.ping != nil {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()

		if err := h.ping(cctx); err != nil {
			ctx.JSON(503, gin.H{"status": "degraded"})
			return
		}
	}

	ctx.JSON(200, gin.H{"status": "ready"})
}
