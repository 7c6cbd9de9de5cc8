package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger checks liveness of a backing service
type Pinger interface {
	Ping() error
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Register mounts the health route on the engine root, outside the
// versioned API group
func (h *HealthHandler) Register(engine *gin.Engine) {
	engine.GET("/healthz", h.Healthz)
}

// Healthz reports process and database liveness
func (h *HealthHandler) Healthz(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
