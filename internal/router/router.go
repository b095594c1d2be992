package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ossgate/internal/config"
	"ossgate/internal/handler"
	"ossgate/internal/metrics"
	"ossgate/internal/middleware"
	"ossgate/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Credentials *handler.CredentialHandler
	SignedURL   *handler.SignedURLHandler
	Upload      *handler.UploadHandler
	Health      *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	tokens service.TokenService,
	h Handlers,
	collector *metrics.Collector,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	if cfg.Metrics.Enabled && collector != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
	}

	owner := middleware.OwnerIdentity(tokens, cfg.Upload.DefaultOwnerID, cfg.JWT.Required)

	// Short routes
	r.GET("/credentials", h.Credentials.Browser)
	r.GET("/signed-url", h.SignedURL.Sign)
	r.POST("/upload/avatar", owner, h.Upload.Avatar)
	r.POST("/upload/property-image", owner, h.Upload.PropertyImage)

	// Routes used by the existing clients
	api := r.Group("/api")
	api.GET("/user/oss/upload/credentials", h.Credentials.Browser)
	api.GET("/user/oss/get-signed-url", h.SignedURL.Sign)
	api.GET("/oss/upload/credentials", owner, h.Credentials.Admin)
	api.POST("/upload/avatar", owner, h.Upload.Avatar)
	api.POST("/upload/property-image", owner, h.Upload.PropertyImage)

	return r
}
