package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	JWT         JWTConfig
	Storage     StorageConfig
	Credentials CredentialsConfig
	Upload      UploadConfig
	Signing     SigningConfig
	Log         LogConfig
	CORS        CORSConfig
	Metrics     MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// IsProduction reports whether the server runs in production mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// JWTConfig holds the settings used to resolve the uploading owner from a bearer token.
type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Required bool          `mapstructure:"required"`
	Issuer   string        `mapstructure:"issuer"`
	Expiry   time.Duration `mapstructure:"expiry"`
}

// StorageConfig holds the bucket and the server's long-lived key pair.
type StorageConfig struct {
	Provider       string        `mapstructure:"provider"`
	Region         string        `mapstructure:"region"`
	Bucket         string        `mapstructure:"bucket"`
	Endpoint       string        `mapstructure:"endpoint"`
	AccessKey      string        `mapstructure:"access_key"`
	SecretKey      string        `mapstructure:"secret_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// CredentialsConfig holds role-assumption and credential cache settings.
type CredentialsConfig struct {
	RoleARN      string        `mapstructure:"role_arn"`
	SessionName  string        `mapstructure:"session_name"`
	Duration     time.Duration `mapstructure:"duration"`
	Timeout      time.Duration `mapstructure:"timeout"`
	STSEndpoint  string        `mapstructure:"sts_endpoint"`
	AllowRead    bool          `mapstructure:"allow_read"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	SafetyMargin time.Duration `mapstructure:"safety_margin"`
}

// UploadConfig holds upload relay limits and key layout.
type UploadConfig struct {
	AvatarMaxSizeMB        int64         `mapstructure:"avatar_max_size_mb"`
	PropertyImageMaxSizeMB int64         `mapstructure:"property_image_max_size_mb"`
	MaxPropertyImages      int           `mapstructure:"max_property_images"`
	AvatarPrefix           string        `mapstructure:"avatar_prefix"`
	PropertyImagePrefix    string        `mapstructure:"property_image_prefix"`
	SignedURLExpiry        time.Duration `mapstructure:"signed_url_expiry"`
	DefaultOwnerID         string        `mapstructure:"default_owner_id"`
}

// AvatarMaxBytes returns the avatar size ceiling in bytes.
func (u *UploadConfig) AvatarMaxBytes() int64 {
	return u.AvatarMaxSizeMB * 1024 * 1024
}

// PropertyImageMaxBytes returns the property image size ceiling in bytes.
func (u *UploadConfig) PropertyImageMaxBytes() int64 {
	return u.PropertyImageMaxSizeMB * 1024 * 1024
}

// SigningConfig holds signed URL settings.
type SigningConfig struct {
	DefaultExpiry    time.Duration `mapstructure:"default_expiry"`
	MaxExpiry        time.Duration `mapstructure:"max_expiry"`
	PlaceholderPath  string        `mapstructure:"placeholder_path"`
	PlaceholderAsset string        `mapstructure:"placeholder_asset"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from an optional .env file and environment
// variables with the OSSGATE_ prefix. The env names used by the original
// Node server are accepted as fallbacks.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("OSSGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":3001")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// JWT defaults
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.required", false)
	v.SetDefault("jwt.issuer", "ossgate")
	v.SetDefault("jwt.expiry", "24h")

	// Storage defaults
	v.SetDefault("storage.provider", "oss")
	v.SetDefault("storage.region", "oss-cn-hangzhou")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.request_timeout", "30s")

	// Credential defaults
	v.SetDefault("credentials.session_name", "oss-upload-session")
	v.SetDefault("credentials.duration", "1h")
	v.SetDefault("credentials.timeout", "5s")
	v.SetDefault("credentials.sts_endpoint", "")
	v.SetDefault("credentials.allow_read", true)
	v.SetDefault("credentials.cache_ttl", "55m")
	v.SetDefault("credentials.safety_margin", "5m")

	// Upload defaults
	v.SetDefault("upload.avatar_max_size_mb", 2)
	v.SetDefault("upload.property_image_max_size_mb", 5)
	v.SetDefault("upload.max_property_images", 9)
	v.SetDefault("upload.avatar_prefix", "avatars")
	v.SetDefault("upload.property_image_prefix", "real-estate")
	v.SetDefault("upload.signed_url_expiry", "720h")
	v.SetDefault("upload.default_owner_id", "10001")

	// Signing defaults
	v.SetDefault("signing.default_expiry", "1h")
	v.SetDefault("signing.max_expiry", "720h")
	v.SetDefault("signing.placeholder_path", "real-estate/1754417659021-o6auo17dd.png")
	v.SetDefault("signing.placeholder_asset", "/assets/image/house.jpg")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 10)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	// CORS defaults (admin dashboard dev server)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173,http://localhost:3000")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Bind environment variables explicitly; later names are fallbacks.
	envBindings := map[string][]string{
		"server.port":                       {"OSSGATE_SERVER_PORT"},
		"server.read_timeout":               {"OSSGATE_SERVER_READ_TIMEOUT"},
		"server.write_timeout":              {"OSSGATE_SERVER_WRITE_TIMEOUT"},
		"server.environment":                {"OSSGATE_SERVER_ENVIRONMENT", "NODE_ENV"},
		"jwt.secret":                        {"OSSGATE_JWT_SECRET", "JWT_SECRET"},
		"jwt.required":                      {"OSSGATE_JWT_REQUIRED"},
		"jwt.issuer":                        {"OSSGATE_JWT_ISSUER"},
		"jwt.expiry":                        {"OSSGATE_JWT_EXPIRY"},
		"storage.provider":                  {"OSSGATE_STORAGE_PROVIDER"},
		"storage.region":                    {"OSSGATE_STORAGE_REGION", "OSS_REGION"},
		"storage.bucket":                    {"OSSGATE_STORAGE_BUCKET", "OSS_BUCKET"},
		"storage.endpoint":                  {"OSSGATE_STORAGE_ENDPOINT"},
		"storage.access_key":                {"OSSGATE_STORAGE_ACCESS_KEY", "ALICLOUD_ACCESS_KEY_ID"},
		"storage.secret_key":                {"OSSGATE_STORAGE_SECRET_KEY", "ALICLOUD_ACCESS_KEY_SECRET"},
		"storage.request_timeout":           {"OSSGATE_STORAGE_REQUEST_TIMEOUT"},
		"credentials.role_arn":              {"OSSGATE_CREDENTIALS_ROLE_ARN", "STS_ROLE_ARN"},
		"credentials.session_name":          {"OSSGATE_CREDENTIALS_SESSION_NAME"},
		"credentials.duration":              {"OSSGATE_CREDENTIALS_DURATION"},
		"credentials.timeout":               {"OSSGATE_CREDENTIALS_TIMEOUT"},
		"credentials.sts_endpoint":          {"OSSGATE_CREDENTIALS_STS_ENDPOINT"},
		"credentials.allow_read":            {"OSSGATE_CREDENTIALS_ALLOW_READ"},
		"credentials.cache_ttl":             {"OSSGATE_CREDENTIALS_CACHE_TTL"},
		"credentials.safety_margin":         {"OSSGATE_CREDENTIALS_SAFETY_MARGIN"},
		"upload.avatar_max_size_mb":         {"OSSGATE_UPLOAD_AVATAR_MAX_SIZE_MB"},
		"upload.property_image_max_size_mb": {"OSSGATE_UPLOAD_PROPERTY_IMAGE_MAX_SIZE_MB"},
		"upload.max_property_images":        {"OSSGATE_UPLOAD_MAX_PROPERTY_IMAGES"},
		"upload.avatar_prefix":              {"OSSGATE_UPLOAD_AVATAR_PREFIX"},
		"upload.property_image_prefix":      {"OSSGATE_UPLOAD_PROPERTY_IMAGE_PREFIX"},
		"upload.signed_url_expiry":          {"OSSGATE_UPLOAD_SIGNED_URL_EXPIRY"},
		"upload.default_owner_id":           {"OSSGATE_UPLOAD_DEFAULT_OWNER_ID"},
		"signing.default_expiry":            {"OSSGATE_SIGNING_DEFAULT_EXPIRY"},
		"signing.max_expiry":                {"OSSGATE_SIGNING_MAX_EXPIRY"},
		"signing.placeholder_path":          {"OSSGATE_SIGNING_PLACEHOLDER_PATH"},
		"signing.placeholder_asset":         {"OSSGATE_SIGNING_PLACEHOLDER_ASSET"},
		"log.level":                         {"OSSGATE_LOG_LEVEL"},
		"log.format":                        {"OSSGATE_LOG_FORMAT"},
		"log.file":                          {"OSSGATE_LOG_FILE"},
		"log.max_size_mb":                   {"OSSGATE_LOG_MAX_SIZE_MB"},
		"log.max_backups":                   {"OSSGATE_LOG_MAX_BACKUPS"},
		"log.max_age_days":                  {"OSSGATE_LOG_MAX_AGE_DAYS"},
		"log.compress":                      {"OSSGATE_LOG_COMPRESS"},
		"cors.allowed_origins":              {"OSSGATE_CORS_ALLOWED_ORIGINS"},
		"metrics.enabled":                   {"OSSGATE_METRICS_ENABLED"},
		"metrics.path":                      {"OSSGATE_METRICS_PATH"},
	}
	for key, envs := range envBindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}

	cfg := &Config{}

	// The original server listened on PORT; honour it unless OSSGATE_SERVER_PORT is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("OSSGATE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.JWT = JWTConfig{
		Secret:   v.GetString("jwt.secret"),
		Required: v.GetBool("jwt.required"),
		Issuer:   v.GetString("jwt.issuer"),
		Expiry:   v.GetDuration("jwt.expiry"),
	}
	cfg.Storage = StorageConfig{
		Provider:       strings.ToLower(v.GetString("storage.provider")),
		Region:         v.GetString("storage.region"),
		Bucket:         v.GetString("storage.bucket"),
		Endpoint:       v.GetString("storage.endpoint"),
		AccessKey:      v.GetString("storage.access_key"),
		SecretKey:      v.GetString("storage.secret_key"),
		RequestTimeout: v.GetDuration("storage.request_timeout"),
	}
	cfg.Credentials = CredentialsConfig{
		RoleARN:      v.GetString("credentials.role_arn"),
		SessionName:  v.GetString("credentials.session_name"),
		Duration:     v.GetDuration("credentials.duration"),
		Timeout:      v.GetDuration("credentials.timeout"),
		STSEndpoint:  v.GetString("credentials.sts_endpoint"),
		AllowRead:    v.GetBool("credentials.allow_read"),
		CacheTTL:     v.GetDuration("credentials.cache_ttl"),
		SafetyMargin: v.GetDuration("credentials.safety_margin"),
	}
	cfg.Upload = UploadConfig{
		AvatarMaxSizeMB:        v.GetInt64("upload.avatar_max_size_mb"),
		PropertyImageMaxSizeMB: v.GetInt64("upload.property_image_max_size_mb"),
		MaxPropertyImages:      v.GetInt("upload.max_property_images"),
		AvatarPrefix:           v.GetString("upload.avatar_prefix"),
		PropertyImagePrefix:    v.GetString("upload.property_image_prefix"),
		SignedURLExpiry:        v.GetDuration("upload.signed_url_expiry"),
		DefaultOwnerID:         v.GetString("upload.default_owner_id"),
	}
	cfg.Signing = SigningConfig{
		DefaultExpiry:    v.GetDuration("signing.default_expiry"),
		MaxExpiry:        v.GetDuration("signing.max_expiry"),
		PlaceholderPath:  v.GetString("signing.placeholder_path"),
		PlaceholderAsset: v.GetString("signing.placeholder_asset"),
	}
	cfg.Log = LogConfig{
		Level:      v.GetString("log.level"),
		Format:     v.GetString("log.format"),
		File:       v.GetString("log.file"),
		MaxSizeMB:  v.GetInt("log.max_size_mb"),
		MaxBackups: v.GetInt("log.max_backups"),
		MaxAgeDays: v.GetInt("log.max_age_days"),
		Compress:   v.GetBool("log.compress"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("metrics.enabled"),
		Path:    v.GetString("metrics.path"),
	}

	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Provider {
	case "oss", "s3":
	default:
		errs = append(errs, fmt.Errorf("storage.provider %q is not one of oss, s3", c.Storage.Provider))
	}
	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage.bucket is required"))
	}
	if c.Storage.Region == "" {
		errs = append(errs, errors.New("storage.region is required"))
	}
	if c.Storage.AccessKey == "" || c.Storage.SecretKey == "" {
		errs = append(errs, errors.New("storage.access_key and storage.secret_key are required"))
	}
	if c.Credentials.RoleARN == "" {
		errs = append(errs, errors.New("credentials.role_arn is required"))
	}
	if c.Credentials.CacheTTL <= c.Credentials.SafetyMargin {
		errs = append(errs, errors.New("credentials.cache_ttl must exceed credentials.safety_margin"))
	}
	if c.Upload.MaxPropertyImages <= 0 {
		errs = append(errs, errors.New("upload.max_property_images must be positive"))
	}
	if c.JWT.Required && c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required when jwt.required is set"))
	}
	return errors.Join(errs...)
}
