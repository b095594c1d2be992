package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ossgate/internal/service"
)

// CredentialHandler serves temporary upload credentials.
type CredentialHandler struct {
	credentials service.CredentialService
	logger      *zap.Logger
}

// NewCredentialHandler creates a new CredentialHandler.
func NewCredentialHandler(credentials service.CredentialService, logger *zap.Logger) *CredentialHandler {
	return &CredentialHandler{credentials: credentials, logger: logger}
}

// Browser handles GET /credentials and GET /api/user/oss/upload/credentials.
// The temporary secret is withheld; browsers upload with policy and signature.
func (h *CredentialHandler) Browser(c *gin.Context) {
	cred, err := h.credentials.Get(c.Request.Context(), service.CredentialScope{Prefix: c.Query("prefix")})
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondOK(c, cred.Public())
}

// Admin handles GET /api/oss/upload/credentials. The admin dashboard's SDK
// client needs the temporary secret.
func (h *CredentialHandler) Admin(c *gin.Context) {
	cred, err := h.credentials.Get(c.Request.Context(), service.CredentialScope{})
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondOK(c, cred)
}
