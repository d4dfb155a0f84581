package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the authority server configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	ServiceName string
	Version     string
	Environment string

	Storage           string
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration

	APIKey         string
	TrustedProxies []string

	// Network selects the feature flag set ("testnet" opens testnet features)
	Network         string
	SyncRateLimit   int
	MaxBatchActions int
	HoardingLimit   int
	// SessionWindow is how long a farm stays bound to its last syncing session
	SessionWindow time.Duration
	// CatalogPath overrides the embedded catalog when set
	CatalogPath string

	EventRetentionDays  int
	EventDeadLetterPath string
}

// ClientConfig holds the farmer client configuration
type ClientConfig struct {
	LogLevel    string
	LogFormat   string
	LogDir      string
	Environment string

	AuthorityURL     string
	APIKey           string
	FarmID           string
	Network          string
	CatalogPath      string
	SessionDBPath    string
	AutosaveInterval time.Duration
	SyncTimeout      time.Duration
	SyncMaxAttempts  int
}

// Load loads the server configuration from environment variables
func Load() (*Config, error) {
	// A missing .env is fine; real env vars may be set
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", DefaultLogFormat),
		LogDir:      getEnv("LOG_DIR", DefaultLogDir),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", "dev"),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),

		Storage:           strings.ToLower(getEnv("STORAGE", StoragePostgres)),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "farmstate"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),

		APIKey:         getEnv("API_KEY", ""),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		Network:         getEnv("NETWORK", DefaultNetwork),
		SyncRateLimit:   getEnvAsInt("SYNC_RATE_LIMIT", DefaultSyncRateLimit),
		MaxBatchActions: getEnvAsInt("MAX_BATCH_ACTIONS", DefaultMaxBatchActions),
		HoardingLimit:   getEnvAsInt("HOARDING_LIMIT", DefaultHoardingLimit),
		SessionWindow:   getEnvAsDuration("SESSION_WINDOW", DefaultSessionWindow),
		CatalogPath:     getEnv("CATALOG_PATH", ""),

		EventRetentionDays:  getEnvAsInt("EVENT_RETENTION_DAYS", DefaultEventRetention),
		EventDeadLetterPath: getEnv("EVENT_DEADLETTER_PATH", DefaultDeadLetterPath),
	}

	port, err := strconv.Atoi(getEnv("PORT", strconv.Itoa(DefaultPort)))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if cfg.Storage != StoragePostgres && cfg.Storage != StorageMemory {
		return nil, fmt.Errorf("invalid STORAGE value %q: want %s or %s", cfg.Storage, StoragePostgres, StorageMemory)
	}

	return cfg, nil
}

// LoadClient loads the farmer client configuration from environment variables
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		LogLevel:    getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", DefaultLogFormat),
		LogDir:      getEnv("LOG_DIR", DefaultLogDir),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),

		AuthorityURL:     strings.TrimRight(getEnv("AUTHORITY_URL", DefaultAuthorityURL), "/"),
		APIKey:           getEnv("API_KEY", ""),
		FarmID:           getEnv("FARM_ID", ""),
		Network:          getEnv("NETWORK", DefaultNetwork),
		CatalogPath:      getEnv("CATALOG_PATH", ""),
		SessionDBPath:    getEnv("SESSION_DB_PATH", DefaultSessionDBPath),
		AutosaveInterval: getEnvAsDuration("AUTOSAVE_INTERVAL", DefaultAutosaveInterval),
		SyncTimeout:      getEnvAsDuration("SYNC_TIMEOUT", DefaultSyncTimeout),
		SyncMaxAttempts:  getEnvAsInt("SYNC_MAX_ATTEMPTS", DefaultSyncMaxAttempts),
	}

	if cfg.FarmID == "" {
		return nil, fmt.Errorf("FARM_ID environment variable must be set")
	}
	if cfg.AutosaveInterval <= 0 {
		return nil, fmt.Errorf("AUTOSAVE_INTERVAL must be positive, got %s", cfg.AutosaveInterval)
	}
	if cfg.SyncMaxAttempts < 1 {
		cfg.SyncMaxAttempts = 1
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt parses an integer variable, falling back to the default when unset or malformed
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration parses a time.Duration variable such as "30s" or "1h30m"
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma separated variable, dropping blanks
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
