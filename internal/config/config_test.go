package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 8080, cfg.ServerPort)
				assert.Equal(t, "localhost:6379", cfg.RedisAddr)
				assert.Equal(t, 0, cfg.RedisDB)
				assert.Equal(t, 30, cfg.RedisConnectAttempts)
				assert.Equal(t, 2*time.Second, cfg.RedisConnectBackoff)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, 14400*time.Second, cfg.TokenExpiration)
				assert.True(t, cfg.RateLimitAuthEnabled)
				assert.Equal(t, "authd", cfg.MetricsNamespace)
				assert.Equal(t, 8081, cfg.MetricsPort)
				assert.False(t, cfg.DevMode)
				assert.False(t, cfg.ResetActivityMapOnStart)
				assert.Contains(t, cfg.BootstrapRolesJSON, "admins")
			},
		},
		{
			name: "load custom server configuration",
			envVars: map[string]string{
				"SERVER_HOST": "localhost",
				"SERVER_PORT": "9090",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "localhost", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
			},
		},
		{
			name: "load custom store configuration",
			envVars: map[string]string{
				"REDIS_ADDR":                    "redis:6380",
				"REDIS_DB":                      "2",
				"REDIS_CONNECT_ATTEMPTS":        "5",
				"REDIS_CONNECT_BACKOFF_SECONDS": "1",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "redis:6380", cfg.RedisAddr)
				assert.Equal(t, 2, cfg.RedisDB)
				assert.Equal(t, 5, cfg.RedisConnectAttempts)
				assert.Equal(t, time.Second, cfg.RedisConnectBackoff)
			},
		},
		{
			name: "load custom token configuration",
			envVars: map[string]string{
				"TOKEN_SECRET":             "super-secret",
				"TOKEN_EXPIRATION_SECONDS": "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "super-secret", cfg.TokenSecret)
				assert.Equal(t, 10*time.Second, cfg.TokenExpiration)
			},
		},
		{
			name: "load bootstrap configuration",
			envVars: map[string]string{
				"ROOT_PASSWORD":               "initial-pw",
				"BOOTSTRAP_ROLES_JSON":        `{"ops":["deploy"]}`,
				"DEV_MODE":                    "true",
				"RESET_ACTIVITY_MAP_ON_START": "true",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "initial-pw", cfg.RootPassword)
				assert.Equal(t, `{"ops":["deploy"]}`, cfg.BootstrapRolesJSON)
				assert.True(t, cfg.DevMode)
				assert.True(t, cfg.ResetActivityMapOnStart)
			},
		},
		{
			name: "load custom log level",
			envVars: map[string]string{
				"LOG_LEVEL": "debug",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for key, value := range tt.envVars {
				err := os.Setenv(key, value)
				require.NoError(t, err)
			}

			// Load configuration
			cfg := Load()

			// Validate
			tt.validate(t, cfg)
		})
	}
}

func TestGetGinMode(t *testing.T) {
	tests := []struct {
		logLevel string
		expected string
	}{
		{"debug", "debug"},
		{"info", "release"},
		{"warn", "release"},
		{"error", "release"},
		{"unknown", "release"},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			assert.Equal(t, tt.expected, cfg.GetGinMode())
		})
	}
}
