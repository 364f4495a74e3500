package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	unset(t, "MONGODB_URI", "MONGODB_DATABASE", "JWT_TOKEN_DURATION", "PORT", "UPLOAD_DIR")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "blog", cfg.Mongo.Database)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "another-secret")
	t.Setenv("MONGODB_URI", "mongodb://db:27017")
	t.Setenv("MONGODB_DATABASE", "inkwell")
	t.Setenv("JWT_TOKEN_DURATION", "15m")
	t.Setenv("PORT", "8080")
	t.Setenv("UPLOAD_DIR", "/var/lib/inkwell/uploads")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db:27017", cfg.Mongo.URI)
	assert.Equal(t, "inkwell", cfg.Mongo.Database)
	assert.Equal(t, 15*time.Minute, cfg.Auth.TokenDuration)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/var/lib/inkwell/uploads", cfg.Server.UploadDir)
}

func TestLoadConfigMissingSecret(t *testing.T) {
	unset(t, "JWT_SECRET")

	cfg, err := LoadConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_TOKEN_DURATION", "one week")

	cfg, err := LoadConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "JWT_TOKEN_DURATION")
}

func TestLoadConfigCollectsAllErrors(t *testing.T) {
	unset(t, "JWT_SECRET")
	t.Setenv("JWT_TOKEN_DURATION", "bogus")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "JWT_TOKEN_DURATION")
}

// unset clears variables for the duration of a test. t.Setenv registers the
// restore; the subsequent Unsetenv makes LookupEnv report absence.
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}
