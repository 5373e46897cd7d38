package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresSigningKey(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")

	cfg, err := Load()
	require.Error(t, err)
	assert.Nil(t, cfg)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"AUTH_JWT_SECRET"}, cfgErr.Missing)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_BASE_URL", "https://prep.example.com/")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "48")
	t.Setenv("AUTH_COOKIE_NAME", "session")
	t.Setenv("DOCUMENT_STORE", "Mongo")
	t.Setenv("COLLECTION_GALLERY", "gallery")
	t.Setenv("STORAGE_MAX_UPLOAD_MB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, "https://prep.example.com", cfg.App.BaseURL)
	assert.Equal(t, 48*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.Equal(t, "mongo", cfg.Backend.DocumentStore)
	assert.Equal(t, "gallery", cfg.Backend.GalleryCollectionID)
	assert.Equal(t, int64(2<<20), cfg.Storage.MaxUploadBytes)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "test-secret")
	t.Setenv("AUTH_TOKEN_TTL_HOURS", "")
	t.Setenv("SESSION_CACHE_TTL_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*24*time.Hour, cfg.Auth.TokenTTL())
	assert.Equal(t, 5*time.Minute, cfg.Auth.SessionCacheTTL())
	assert.Equal(t, time.Hour, cfg.Auth.VerificationTTL())
	assert.False(t, cfg.App.IsProduction())
}

func TestValidateListsMissingBackendKeys(t *testing.T) {
	cfg := &Config{
		App:     AppConfig{BaseURL: "http://localhost:8080"},
		Backend: BackendConfig{UsersCollectionID: "users"},
		Storage: StorageConfig{BucketID: "files"},
	}

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, cfgErr.Missing, "BACKEND_ENDPOINT")
	assert.Contains(t, cfgErr.Missing, "COLLECTION_GALLERY")
	assert.NotContains(t, cfgErr.Missing, "COLLECTION_USERS")
	assert.NotContains(t, cfgErr.Missing, "STORAGE_BUCKET_ID")
}
