// Package config provides configuration management for the inkwell application.
// It handles loading and validation of configuration values from environment
// variables, with support for required variables, default values, and
// collective error reporting: every problem found while loading is collected
// and returned as one aggregated error instead of failing on the first.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// MongoConfig holds the connection settings for the document database.
type MongoConfig struct {
	URI      string // full connection URI, e.g. mongodb://localhost:27017
	Database string // database name holding the users and posts collections
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret     string        // secret key for signing JWTs
	TokenDuration time.Duration // validity window of issued tokens
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port      string // port for the HTTP server
	UploadDir string // directory where avatar uploads are stored
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Mongo  *MongoConfig
	Auth   *AuthConfig
	Server *ServerConfig
}

// getRequiredEnv reads a required environment variable, appending to the
// errors slice if it is not set.
func getRequiredEnv(key string, errs *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		*errs = append(*errs, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

// getOptionalEnv reads an optional environment variable with a default.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getOptionalEnvDuration reads an optional environment variable parsed as a
// time.Duration ("15m", "168h"). Falls back to defaultValue and records an
// error when the value cannot be parsed.
func getOptionalEnvDuration(key string, defaultValue time.Duration, errs *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// LoadConfig creates and returns an AppConfig by reading and validating
// environment variables. It collects all errors encountered and returns a
// single aggregated error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errs []string

	mongoConfig := &MongoConfig{
		URI:      getOptionalEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database: getOptionalEnv("MONGODB_DATABASE", "blog"),
	}

	// Tokens default to a 7-day validity window; invalidation happens only
	// through expiry since there is no revocation list.
	authConfig := &AuthConfig{
		JWTSecret:     getRequiredEnv("JWT_SECRET", &errs),
		TokenDuration: getOptionalEnvDuration("JWT_TOKEN_DURATION", 168*time.Hour, &errs),
	}

	serverConfig := &ServerConfig{
		Port:      getOptionalEnv("PORT", "5000"),
		UploadDir: getOptionalEnv("UPLOAD_DIR", "uploads"),
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errs, "\n- "))
	}

	return &AppConfig{
		Mongo:  mongoConfig,
		Auth:   authConfig,
		Server: serverConfig,
	}, nil
}
