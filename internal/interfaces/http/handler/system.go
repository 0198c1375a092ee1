package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves the health endpoint
type SystemHandler struct {
	store         string
	jpdConfigured bool
	now           func() time.Time
}

// NewSystemHandler creates a new SystemHandler. The store name and the
// warehouse-configured flag are reported on the health endpoint so a
// misconfigured deployment is visible from the outside.
func NewSystemHandler(store string, jpdConfigured bool) *SystemHandler {
	return &SystemHandler{store: store, jpdConfigured: jpdConfigured, now: time.Now}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports liveness and which upstreams are configured
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"timestamp":      h.now().Format(time.RFC3339),
		"shopify_store":  h.store,
		"jpd_configured": h.jpdConfigured,
	})
}
