package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ossgate/internal/domain"
	"ossgate/internal/middleware"
)

// APIResponse is the envelope the admin dashboard and mini-program expect.
// Code is 0 on success and -1 on failure.
type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Code: 0, Message: "success", Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, reason, msg string) {
	c.JSON(status, APIResponse{Code: -1, Message: msg, Reason: reason})
}

// MapDomainError translates domain errors to HTTP status codes and reasons.
func MapDomainError(err error) (status int, reason, msg string) {
	switch {
	case errors.Is(err, domain.ErrCredentialIssuance):
		return http.StatusBadGateway, "CREDENTIALS_UNAVAILABLE", "upload credentials unavailable"
	case errors.Is(err, domain.ErrSigning):
		return http.StatusBadGateway, "SIGNING_FAILED", "could not load image"
	case errors.Is(err, domain.ErrPayloadTooLarge):
		// The wrapped error carries the applicable limit.
		return http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", err.Error()
	case errors.Is(err, domain.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "only jpg, jpeg and png images are allowed"
	case errors.Is(err, domain.ErrTooManyFiles):
		return http.StatusBadRequest, "TOO_MANY_FILES", "too many images in one submission"
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusBadRequest, "MISSING_FILE", "no file received"
	case errors.Is(err, domain.ErrInvalidPath):
		return http.StatusBadRequest, "INVALID_PATH", "invalid object path"
	case errors.Is(err, domain.ErrInvalidOwner):
		return http.StatusBadRequest, "INVALID_OWNER", "invalid owner id"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "please log in"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "upload failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
// Provider detail is logged, never sent.
func HandleError(c *gin.Context, logger *zap.Logger, err error) {
	status, reason, msg := MapDomainError(err)
	if status >= 500 {
		logger.Error("request failed",
			zap.String("request_id", c.GetString(middleware.ContextKeyRequestID)),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
	RespondError(c, status, reason, msg)
}
