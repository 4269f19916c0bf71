package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// readinessTimeout bounds the database ping so a stuck pool does not hang
// the probe.
const readinessTimeout = 2 * time.Second

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	db *sqlx.DB
}

// NewHealthHandler creates a HealthHandler backed by the given pool.
func NewHealthHandler(db *sqlx.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Liveness handles GET /healthz. It only confirms the process is serving.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. It reports unavailable until the database
// answers a ping.
func (h *HealthHandler) Readiness(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "database not reachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
