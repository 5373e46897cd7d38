package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Mongo        MongoConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Backend      BackendConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Worker       WorkerConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	BaseURL               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MongoConfig holds MongoDB connection values, used when DOCUMENT_STORE=mongo.
type MongoConfig struct {
	URI      string
	Database string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret                string
	TokenTTLHours            int
	BcryptCost               int
	CookieName               string
	VerificationTTLMinutes   int
	SessionCacheTTLSeconds   int
	MinPasswordLength        int
	VerificationRedirectPath string
	RecoveryRedirectPath     string
}

// BackendConfig identifies the document database and its collections.
type BackendConfig struct {
	Endpoint              string
	ProjectID             string
	DatabaseID            string
	DocumentStore         string
	UsersCollectionID     string
	BlogsCollectionID     string
	GalleryCollectionID   string
	MaterialsCollectionID string
}

// StorageConfig holds the object storage bucket settings.
type StorageConfig struct {
	BucketID        string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	MaxUploadBytes  int64
}

// NotificationConfig holds outbound mail settings.
type NotificationConfig struct {
	EmailFrom    string
	ResendAPIKey string
}

// WorkerConfig configures background jobs.
type WorkerConfig struct {
	JanitorSchedule string
}

// ConfigError reports configuration keys that are required but missing.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Load reads configuration from environment variables, applying defaults where possible.
// A missing signing key is never defaulted.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "prep-portal"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			BaseURL:               strings.TrimRight(os.Getenv("APP_BASE_URL"), "/"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: os.Getenv("MONGO_DATABASE"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:                os.Getenv("AUTH_JWT_SECRET"),
			TokenTTLHours:            getEnvAsInt("AUTH_TOKEN_TTL_HOURS", 30*24),
			BcryptCost:               getEnvAsInt("AUTH_BCRYPT_COST", 12),
			CookieName:               getEnv("AUTH_COOKIE_NAME", "prep_session"),
			VerificationTTLMinutes:   getEnvAsInt("AUTH_VERIFICATION_TTL_MINUTES", 60),
			SessionCacheTTLSeconds:   getEnvAsInt("SESSION_CACHE_TTL_SECONDS", 300),
			MinPasswordLength:        getEnvAsInt("AUTH_MIN_PASSWORD_LENGTH", 8),
			VerificationRedirectPath: getEnv("AUTH_VERIFICATION_REDIRECT_PATH", "/verify"),
			RecoveryRedirectPath:     getEnv("AUTH_RECOVERY_REDIRECT_PATH", "/forgotpassword"),
		},
		Backend: BackendConfig{
			Endpoint:              os.Getenv("BACKEND_ENDPOINT"),
			ProjectID:             os.Getenv("BACKEND_PROJECT_ID"),
			DatabaseID:            os.Getenv("BACKEND_DATABASE_ID"),
			DocumentStore:         strings.ToLower(getEnv("DOCUMENT_STORE", "postgres")),
			UsersCollectionID:     os.Getenv("COLLECTION_USERS"),
			BlogsCollectionID:     os.Getenv("COLLECTION_BLOGS"),
			GalleryCollectionID:   os.Getenv("COLLECTION_GALLERY"),
			MaterialsCollectionID: os.Getenv("COLLECTION_MATERIALS"),
		},
		Storage: StorageConfig{
			BucketID:        os.Getenv("STORAGE_BUCKET_ID"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			UsePathStyle:    getEnvAsBool("S3_USE_PATH_STYLE", true),
			MaxUploadBytes:  int64(getEnvAsInt("STORAGE_MAX_UPLOAD_MB", 25)) << 20,
		},
		Notification: NotificationConfig{
			EmailFrom:    getEnv("MAIL_FROM", "noreply@example.com"),
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		},
		Worker: WorkerConfig{
			JanitorSchedule: getEnv("JANITOR_SCHEDULE", "@hourly"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, &ConfigError{Missing: []string{"AUTH_JWT_SECRET"}}
	}

	return cfg, nil
}

// Validate reports backend settings that were left empty. The service can start without
// them outside production; callers decide whether the result is fatal.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"APP_BASE_URL", c.App.BaseURL},
		{"BACKEND_ENDPOINT", c.Backend.Endpoint},
		{"BACKEND_PROJECT_ID", c.Backend.ProjectID},
		{"BACKEND_DATABASE_ID", c.Backend.DatabaseID},
		{"COLLECTION_USERS", c.Backend.UsersCollectionID},
		{"COLLECTION_BLOGS", c.Backend.BlogsCollectionID},
		{"COLLECTION_GALLERY", c.Backend.GalleryCollectionID},
		{"COLLECTION_MATERIALS", c.Backend.MaterialsCollectionID},
		{"STORAGE_BUCKET_ID", c.Storage.BucketID},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ConfigError{Missing: missing}
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	if a.TokenTTLHours <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// VerificationTTL returns the lifetime of verification and recovery secrets.
func (a AuthConfig) VerificationTTL() time.Duration {
	if a.VerificationTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.VerificationTTLMinutes) * time.Minute
}

// SessionCacheTTL returns the staleness window of the profile cache.
func (a AuthConfig) SessionCacheTTL() time.Duration {
	if a.SessionCacheTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(a.SessionCacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
