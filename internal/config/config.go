// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// RedisAddr is the host:port of the Redis server backing the store.
	RedisAddr string
	// RedisDB is the Redis logical database number.
	RedisDB int
	// RedisConnectAttempts is the number of connection attempts before startup fails.
	RedisConnectAttempts int
	// RedisConnectBackoff is the delay between connection attempts.
	RedisConnectBackoff time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// TokenSecret is the HMAC secret used to sign and verify tokens.
	TokenSecret string
	// TokenExpiration is the duration after which an issued token expires.
	TokenExpiration time.Duration

	// RateLimitAuthEnabled indicates whether the authenticate endpoint is rate limited.
	RateLimitAuthEnabled bool
	// RateLimitAuthRequestsPerSec is the per-IP request rate for the authenticate endpoint.
	RateLimitAuthRequestsPerSec float64
	// RateLimitAuthBurst is the per-IP burst size for the authenticate endpoint.
	RateLimitAuthBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// RootPassword is the initial password for the bootstrap root account.
	// Only applied when the account does not exist yet.
	RootPassword string
	// BootstrapRolesJSON is a JSON object mapping role names to activity
	// lists, created or updated at startup.
	BootstrapRolesJSON string
	// DevMode enables the development fixtures (dev users with weak passwords).
	DevMode bool
	// DevUsersJSON is a JSON object mapping dev usernames to their roles,
	// only applied in dev mode.
	DevUsersJSON string
	// ResetActivityMapOnStart wipes and rebuilds the activity index at
	// startup. Every previously issued token stops matching its activities.
	ResetActivityMapOnStart bool
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Store configuration
		RedisAddr:            env.GetString("REDIS_ADDR", "localhost:6379"),
		RedisDB:              env.GetInt("REDIS_DB", 0),
		RedisConnectAttempts: env.GetInt("REDIS_CONNECT_ATTEMPTS", 30),
		RedisConnectBackoff:  env.GetDuration("REDIS_CONNECT_BACKOFF_SECONDS", 2, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Tokens
		TokenSecret:     env.GetString("TOKEN_SECRET", ""),
		TokenExpiration: env.GetDuration("TOKEN_EXPIRATION_SECONDS", 14400, time.Second),

		// Rate limiting for the authenticate endpoint (IP-based, unauthenticated)
		RateLimitAuthEnabled:        env.GetBool("RATE_LIMIT_AUTH_ENABLED", true),
		RateLimitAuthRequestsPerSec: env.GetFloat64("RATE_LIMIT_AUTH_REQUESTS_PER_SEC", 5.0),
		RateLimitAuthBurst:          env.GetInt("RATE_LIMIT_AUTH_BURST", 10),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "authd"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// Bootstrap
		RootPassword:            env.GetString("ROOT_PASSWORD", ""),
		BootstrapRolesJSON:      env.GetString("BOOTSTRAP_ROLES_JSON", defaultBootstrapRoles),
		DevMode:                 env.GetBool("DEV_MODE", false),
		DevUsersJSON:            env.GetString("DEV_USERS_JSON", defaultDevUsers),
		ResetActivityMapOnStart: env.GetBool("RESET_ACTIVITY_MAP_ON_START", false),
	}
}

// Built-in bootstrap fixtures: the management roles every deployment needs,
// and the dev accounts the local compose setup logs in with.
const (
	defaultBootstrapRoles = `{"admins":["view_users","manage_users"],"viewers":["view_users"]}`
	defaultDevUsers       = `{"admin":["admins"],"viewer":["viewers"]}`
)

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
