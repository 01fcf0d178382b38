package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omnistock/backend/internal/infrastructure/persistence"
	"github.com/omnistock/backend/internal/interfaces/http/dto"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	BaseHandler
	db      *persistence.Database
	version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *persistence.Database, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// RegisterRoutes registers the health routes
func (h *HealthHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/health", h.Health)
	group.GET("/ready", h.Ready)
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	h.Success(c, gin.H{"status": "up", "version": h.version})
}

// Ready handles GET /ready; it fails when the database is unreachable
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, dto.Fail("DB_UNAVAILABLE", "Database is unreachable"))
		return
	}
	h.Success(c, gin.H{"status": "ready"})
}
