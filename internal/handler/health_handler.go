package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ossgate/internal/service"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	credentials service.CredentialService
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(credentials service.CredentialService) *HealthHandler {
	return &HealthHandler{credentials: credentials}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz. An empty credential cache is not a failure;
// the next request fills it.
func (h *HealthHandler) Readiness(c *gin.Context) {
	until, cached := h.credentials.CachedUntil()
	body := gin.H{"status": "ok", "credential_cached": cached}
	if cached {
		body["credential_valid_until"] = until.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, body)
}
