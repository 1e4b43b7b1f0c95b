package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Expiring links
	LinkTTLMin time.Duration
	LinkTTLMax time.Duration
	// LinkRequireImageOwnership restricts link issuance to the image owner.
	// Off by default: any sufficiently entitled user may mint a link for any
	// existing image.
	LinkRequireImageOwnership bool

	// Uploads
	UploadMaxBytes int64
	// MaxDecodePixels caps the decoded pixel count to bound memory during
	// thumbnail generation.
	MaxDecodePixels int
	// RollbackOnDeriveFailure deletes the uploaded image again when every
	// configured thumbnail size fails to derive.
	RollbackOnDeriveFailure bool

	// Observability (optional)
	SentryDSN string

	// Storage ("local" for development, "s3" for anything S3-compatible:
	// MinIO, AWS S3, Cloudflare R2, DigitalOcean Spaces, etc.)
	StorageDriver string
	LocalMediaDir string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName: envString("APP_NAME", "get-a-pic"),
		AppEnv:  envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  envRequired("APP_URL"), // Required: base URL embedded in projected references and links
		Port:    envString("PORT", "8090"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/getapic.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 168*time.Hour), // 7 days

		// Expiring links
		LinkTTLMin:                envDuration("LINK_TTL_MIN", 300*time.Second),
		LinkTTLMax:                envDuration("LINK_TTL_MAX", 30000*time.Second),
		LinkRequireImageOwnership: envBool("LINK_REQUIRE_IMAGE_OWNERSHIP", false),

		// Uploads
		UploadMaxBytes:          envInt64("UPLOAD_MAX_BYTES", 10<<20), // 10MB
		MaxDecodePixels:         envInt("MAX_DECODE_PIXELS", 64<<20),  // 64 megapixels
		RollbackOnDeriveFailure: envBool("UPLOAD_ROLLBACK_ON_DERIVE_FAILURE", true),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		StorageDriver: envString("STORAGE_DRIVER", "local"),
		LocalMediaDir: envString("LOCAL_MEDIA_DIR", "./data/media"),
		S3Region:      envString("S3_REGION", ""),
		S3Bucket:      envString("S3_BUCKET", ""),
		S3AccessKey:   envString("S3_ACCESS_KEY", ""),
		S3SecretKey:   envString("S3_SECRET_KEY", ""),
		S3Endpoint:    envString("S3_ENDPOINT", ""), // Optional: for non-AWS providers
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for
// production deployments. Development allows local filesystem storage for
// easier testing.
func validateProduction(cfg *Config) {
	if cfg.StorageDriver != "s3" {
		slog.Error("production deployment requires STORAGE_DRIVER=s3",
			"hint", "set APP_ENV=development for local filesystem storage")
		os.Exit(1)
	}
	if cfg.S3Region == "" || cfg.S3Bucket == "" {
		slog.Error("production deployment requires S3_REGION and S3_BUCKET")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
