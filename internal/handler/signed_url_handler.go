package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ossgate/internal/service"
)

const maxSignedURLExpiry = 7 * 24 * time.Hour

// SignedURLResponse is the payload of a signing request.
type SignedURLResponse struct {
	SignedURL string `json:"signedUrl"`
}

// SignedURLHandler converts stored object paths into viewable URLs.
type SignedURLHandler struct {
	signer service.URLSigner
	logger *zap.Logger
}

// NewSignedURLHandler creates a new SignedURLHandler.
func NewSignedURLHandler(signer service.URLSigner, logger *zap.Logger) *SignedURLHandler {
	return &SignedURLHandler{signer: signer, logger: logger}
}

// Sign handles GET /signed-url?path= and GET /api/user/oss/get-signed-url?ossPath=
func (h *SignedURLHandler) Sign(c *gin.Context) {
	ossPath := c.Query("ossPath")
	if ossPath == "" {
		ossPath = c.Query("path")
	}
	if ossPath == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_PATH", "ossPath is required")
		return
	}

	var expires time.Duration
	if raw := c.Query("expires"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 || time.Duration(secs)*time.Second > maxSignedURLExpiry {
			RespondError(c, http.StatusBadRequest, "INVALID_EXPIRES", "expires must be between 1 second and 7 days")
			return
		}
		expires = time.Duration(secs) * time.Second
	}

	signed, err := h.signer.SignURL(c.Request.Context(), ossPath, expires)
	if err != nil {
		HandleError(c, h.logger, err)
		return
	}
	RespondOK(c, SignedURLResponse{SignedURL: signed})
}
