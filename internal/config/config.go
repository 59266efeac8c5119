package config

import (
	_ "embed"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"prithvipulse/internal/errors"
)

// Build environments understood by the base URL table
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

//go:embed endpoints.yaml
var endpointsYAML []byte

// Config represents the complete application configuration
type Config struct {
	Backend  BackendConfig `validate:"required"`
	Server   ServerConfig  `validate:"required"`
	Database DatabaseConfig
	Cache    CacheConfig
	LogLevel string
}

// BackendConfig holds the AI backend connection settings
type BackendConfig struct {
	Environment   string
	BaseURL       string `validate:"required"`
	FrontendURL   string
	Timeout       time.Duration
	HealthTimeout time.Duration
	RateLimit     int // requests per minute, 0 disables limiting
}

// ServerConfig holds gateway server settings
type ServerConfig struct {
	Port    string `validate:"required"`
	GinMode string
}

// DatabaseConfig holds the optional usage ledger connection. An empty URL keeps
// the ledger in memory.
type DatabaseConfig struct {
	URL string
}

// CacheConfig sizes the gateway snapshot cache
type CacheConfig struct {
	SnapshotSize int
}

// EnvironmentURLs is one row of the base URL table
type EnvironmentURLs struct {
	Backend  string `yaml:"backend"`
	Frontend string `yaml:"frontend"`
}

// EndpointTable maps build environment to base URLs
type EndpointTable map[string]EnvironmentURLs

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{}

	backendConfig, err := loadBackendConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load backend configuration")
	}
	config.Backend = *backendConfig

	config.Server = *loadServerConfig()
	config.Database = DatabaseConfig{URL: getEnvOrDefault("DATABASE_URL", "")}
	config.Cache = CacheConfig{SnapshotSize: getEnvIntOrDefault("SNAPSHOT_CACHE_SIZE", 128)}
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "INFO")

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// DefaultEndpointTable parses the embedded base URL table
func DefaultEndpointTable() (EndpointTable, error) {
	var table EndpointTable
	if err := yaml.Unmarshal(endpointsYAML, &table); err != nil {
		return nil, errors.Wrap(err, "failed to parse endpoint table")
	}
	if _, ok := table[EnvDevelopment]; !ok {
		return nil, errors.ConfigInvalid("endpoint table has no development entry")
	}
	return table, nil
}

// Resolve picks the row for env; unknown environments use development. Production
// URLs can be overridden, development ones cannot.
func (t EndpointTable) Resolve(env, backendOverride, frontendOverride string) EnvironmentURLs {
	urls, ok := t[env]
	if !ok {
		return t[EnvDevelopment]
	}
	if env == EnvProduction {
		if backendOverride != "" {
			urls.Backend = backendOverride
		}
		if frontendOverride != "" {
			urls.Frontend = frontendOverride
		}
	}
	return urls
}

func loadBackendConfig() (*BackendConfig, error) {
	table, err := DefaultEndpointTable()
	if err != nil {
		return nil, err
	}

	env := strings.ToLower(getEnvOrDefault("APP_ENV", EnvDevelopment))
	urls := table.Resolve(env, os.Getenv("BACKEND_URL"), os.Getenv("FRONTEND_URL"))

	return &BackendConfig{
		Environment:   env,
		BaseURL:       strings.TrimRight(urls.Backend, "/"),
		FrontendURL:   urls.Frontend,
		Timeout:       getEnvDurationOrDefault("BACKEND_TIMEOUT", 30*time.Second),
		HealthTimeout: getEnvDurationOrDefault("HEALTH_TIMEOUT", 5*time.Second),
		RateLimit:     getEnvIntOrDefault("BACKEND_RATE_LIMIT", 0),
	}, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func validateConfig(config *Config) error {
	if config.Backend.BaseURL == "" {
		return errors.ConfigInvalid("backend base URL is required")
	}
	if u, err := url.Parse(config.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigInvalid("backend base URL must be absolute: " + config.Backend.BaseURL)
	}
	if config.Backend.Timeout < 0 {
		return errors.ConfigInvalid("BACKEND_TIMEOUT cannot be negative")
	}
	if config.Backend.HealthTimeout <= 0 {
		return errors.ConfigInvalid("HEALTH_TIMEOUT must be positive")
	}
	if config.Backend.RateLimit < 0 {
		return errors.ConfigInvalid("BACKEND_RATE_LIMIT cannot be negative")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Cache.SnapshotSize <= 0 {
		return errors.ConfigInvalid("SNAPSHOT_CACHE_SIZE must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
