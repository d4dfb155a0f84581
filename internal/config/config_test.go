package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads config with defaults when no env vars set", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Port, "Should use default port")
		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "dev", cfg.Environment)
		assert.Equal(t, StoragePostgres, cfg.Storage)
		assert.Equal(t, "postgres", cfg.DBUser)
		assert.Equal(t, "localhost", cfg.DBHost)
		assert.Equal(t, DefaultNetwork, cfg.Network)
		assert.Equal(t, DefaultSyncRateLimit, cfg.SyncRateLimit)
		assert.Equal(t, DefaultMaxBatchActions, cfg.MaxBatchActions)
		assert.Equal(t, DefaultSessionWindow, cfg.SessionWindow)
		assert.Empty(t, cfg.CatalogPath)
		assert.Empty(t, cfg.TrustedProxies)
	})

	t.Run("loads config from environment variables", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("PORT", "3000")
		t.Setenv("API_KEY", "custom-api-key")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_FORMAT", "json")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("STORAGE", "Memory")
		t.Setenv("DB_HOST", "db.example.com")
		t.Setenv("NETWORK", "testnet")
		t.Setenv("SYNC_RATE_LIMIT", "5")
		t.Setenv("SESSION_WINDOW", "45s")
		t.Setenv("CATALOG_PATH", "configs/catalog.yaml")
		t.Setenv("TRUSTED_PROXIES", "10.0.0.1, ,10.0.0.2")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 3000, cfg.Port)
		assert.Equal(t, "custom-api-key", cfg.APIKey)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, StorageMemory, cfg.Storage)
		assert.Equal(t, "db.example.com", cfg.DBHost)
		assert.Equal(t, "testnet", cfg.Network)
		assert.Equal(t, 5, cfg.SyncRateLimit)
		assert.Equal(t, 45*time.Second, cfg.SessionWindow)
		assert.Equal(t, "configs/catalog.yaml", cfg.CatalogPath)
		assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
	})

	t.Run("returns error when API_KEY is missing", func(t *testing.T) {
		clearEnvVars(t)

		cfg, err := Load()

		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "API_KEY")
	})

	t.Run("returns error for unknown storage", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")
		t.Setenv("STORAGE", "redis")

		_, err := Load()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "STORAGE")
	})

	t.Run("handles PORT edge cases", func(t *testing.T) {
		testCases := []struct {
			name        string
			portValue   string
			shouldError bool
		}{
			{"zero port", "0", false},
			{"max valid port", "65535", false},
			{"float port", "8080.5", true},
			{"not a number", "http", true},
			{"empty string", "", true},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				clearEnvVars(t)
				t.Setenv("API_KEY", "test-key")
				t.Setenv("PORT", tc.portValue)

				_, err := Load()

				if tc.shouldError {
					assert.Error(t, err)
				} else {
					assert.NoError(t, err)
				}
			})
		}
	})
}

func TestLoad_DatabasePoolConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 20, cfg.DBMaxConns)
		assert.Equal(t, 5*time.Minute, cfg.DBMaxConnIdleTime)
		assert.Equal(t, 30*time.Minute, cfg.DBMaxConnLifetime)
	})

	t.Run("custom values", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")
		t.Setenv("DB_MAX_CONNS", "50")
		t.Setenv("DB_MAX_CONN_IDLE_TIME", "10m")
		t.Setenv("DB_MAX_CONN_LIFETIME", "1h")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, 50, cfg.DBMaxConns)
		assert.Equal(t, 10*time.Minute, cfg.DBMaxConnIdleTime)
		assert.Equal(t, time.Hour, cfg.DBMaxConnLifetime)
	})

	t.Run("invalid values fall back to defaults", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("API_KEY", "test-key")
		t.Setenv("DB_MAX_CONNS", "not-a-number")
		t.Setenv("DB_MAX_CONN_IDLE_TIME", "invalid")

		cfg, err := Load()

		require.NoError(t, err)
		assert.Equal(t, DefaultDBMaxConns, cfg.DBMaxConns)
		assert.Equal(t, DefaultDBMaxConnIdleTime, cfg.DBMaxConnIdleTime)
	})
}

func TestLoadClient(t *testing.T) {
	t.Run("requires FARM_ID", func(t *testing.T) {
		clearEnvVars(t)

		_, err := LoadClient()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "FARM_ID")
	})

	t.Run("defaults", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("FARM_ID", "farm-1")

		cfg, err := LoadClient()

		require.NoError(t, err)
		assert.Equal(t, DefaultAuthorityURL, cfg.AuthorityURL)
		assert.Equal(t, DefaultSessionDBPath, cfg.SessionDBPath)
		assert.Equal(t, 30*time.Second, cfg.AutosaveInterval)
		assert.Equal(t, 15*time.Second, cfg.SyncTimeout)
		assert.Equal(t, DefaultSyncMaxAttempts, cfg.SyncMaxAttempts)
	})

	t.Run("custom values", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("FARM_ID", "farm-1")
		t.Setenv("AUTHORITY_URL", "https://authority.example.com/")
		t.Setenv("API_KEY", "k")
		t.Setenv("SESSION_DB_PATH", "/tmp/s.db")
		t.Setenv("AUTOSAVE_INTERVAL", "1m")
		t.Setenv("SYNC_TIMEOUT", "5s")
		t.Setenv("SYNC_MAX_ATTEMPTS", "0")

		cfg, err := LoadClient()

		require.NoError(t, err)
		assert.Equal(t, "https://authority.example.com", cfg.AuthorityURL, "trailing slash is trimmed")
		assert.Equal(t, "/tmp/s.db", cfg.SessionDBPath)
		assert.Equal(t, time.Minute, cfg.AutosaveInterval)
		assert.Equal(t, 5*time.Second, cfg.SyncTimeout)
		assert.Equal(t, 1, cfg.SyncMaxAttempts, "at least one attempt")
	})

	t.Run("rejects non-positive autosave", func(t *testing.T) {
		clearEnvVars(t)
		t.Setenv("FARM_ID", "farm-1")
		t.Setenv("AUTOSAVE_INTERVAL", "-1s")

		_, err := LoadClient()

		assert.Error(t, err)
	})
}

func TestGetDBConnString(t *testing.T) {
	cfg := &Config{
		DBUser:     "testuser",
		DBPassword: "p@ss:word",
		DBHost:     "testhost",
		DBPort:     "5433",
		DBName:     "testdb",
	}

	assert.Equal(t, "postgres://testuser:p@ss:word@testhost:5433/testdb?sslmode=disable", cfg.GetDBConnString())
}

// clearEnvVars unsets every variable the loaders read, restoring them after the test
func clearEnvVars(t *testing.T) {
	t.Helper()

	envVars := []string{
		"PORT", "API_KEY", "LOG_LEVEL", "LOG_FORMAT", "LOG_DIR",
		"SERVICE_NAME", "VERSION", "ENVIRONMENT", "STORAGE",
		"DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME",
		"DB_MAX_CONNS", "DB_MAX_CONN_IDLE_TIME", "DB_MAX_CONN_LIFETIME",
		"TRUSTED_PROXIES", "NETWORK", "SYNC_RATE_LIMIT", "MAX_BATCH_ACTIONS",
		"SESSION_WINDOW", "HOARDING_LIMIT", "CATALOG_PATH", "EVENT_RETENTION_DAYS", "EVENT_DEADLETTER_PATH",
		"AUTHORITY_URL", "FARM_ID", "SESSION_DB_PATH", "AUTOSAVE_INTERVAL",
		"SYNC_TIMEOUT", "SYNC_MAX_ATTEMPTS",
	}

	for _, key := range envVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}
