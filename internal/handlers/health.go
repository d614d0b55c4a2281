package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"trackrate/internal/db"
)

// BreakerState reports a circuit breaker's state, e.g. "closed".
type BreakerState interface {
	State() string
}

type HealthHandler struct {
	conn    *gorm.DB
	catalog BreakerState
}

// NewHealthHandler builds the health check. catalog may be nil.
func NewHealthHandler(conn *gorm.DB, catalog BreakerState) *HealthHandler {
	return &HealthHandler{conn: conn, catalog: catalog}
}

// Healthz handles GET /healthz
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	body := gin.H{"status": "ok", "database": "ok"}
	if h.catalog != nil {
		body["catalog"] = h.catalog.State()
	}
	if err := db.Ping(ctx, h.conn); err != nil {
		body["status"] = "degraded"
		body["database"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
