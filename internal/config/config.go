package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the agentpages configuration.
type Config struct {
	Title     string          `yaml:"title"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Generator GeneratorConfig `yaml:"generator"`
	Templates TemplatesConfig `yaml:"templates"`
	API       *APIConfig      `yaml:"api,omitempty"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port  int    `yaml:"port"`
	Host  string `yaml:"host"`
	Debug bool   `yaml:"debug"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the database file for the sqlite driver.
	Path string `yaml:"path,omitempty"`
	// DSN is the connection string for the postgres driver. Supports
	// environment variable expansion; falls back to DATABASE_URL.
	DSN string `yaml:"dsn,omitempty"`
}

// GeneratorConfig configures the AI content-generation endpoint.
type GeneratorConfig struct {
	URL     string       `yaml:"url"`
	APIKey  string       `yaml:"api_key,omitempty"` // env vars expanded
	Timeout string       `yaml:"timeout,omitempty"` // e.g. "30s"; default 30s
	Retry   *RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig configures retry behavior for generator requests.
type RetryConfig struct {
	MaxRetries int    `yaml:"max_retries,omitempty"` // default: 2
	BaseDelay  string `yaml:"base_delay,omitempty"`  // default: 200ms
	MaxDelay   string `yaml:"max_delay,omitempty"`   // default: 5s
}

// TemplatesConfig configures section template overrides.
type TemplatesConfig struct {
	// Dir holds per-type HTML overrides (Dir/sections/<type>.html).
	// Empty disables overrides.
	Dir string `yaml:"dir,omitempty"`
	// Watch reloads overrides on change and notifies live previews.
	Watch bool `yaml:"watch,omitempty"`
}

// APIConfig holds cross-cutting HTTP API configuration.
type APIConfig struct {
	CORS      *CORSConfig      `yaml:"cors,omitempty"`
	RateLimit *RateLimitConfig `yaml:"rate_limit,omitempty"`
	Auth      *AuthConfig      `yaml:"auth,omitempty"`
}

// CORSConfig holds CORS configuration for the API.
type CORSConfig struct {
	Origins []string `yaml:"origins,omitempty"`
}

// RateLimitConfig holds rate limiting configuration for the API.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"` // default: 10
	Burst             int     `yaml:"burst,omitempty"`               // default: 20
}

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	// APIKey is the required key. Supports environment variable
	// expansion (e.g. "${AGENTPAGES_API_KEY}").
	APIKey string `yaml:"api_key,omitempty"`
	// HeaderName is the header carrying the key (default: "X-API-Key").
	// "Authorization" switches to Bearer token format.
	HeaderName string `yaml:"header_name,omitempty"`
}

// GetDSN returns the postgres connection string with environment variable
// expansion, falling back to DATABASE_URL.
func (c StorageConfig) GetDSN() string {
	if c.DSN != "" {
		return os.ExpandEnv(c.DSN)
	}
	return os.Getenv("DATABASE_URL")
}

// GetTimeout returns the parsed generator timeout (default: 30s).
func (c GeneratorConfig) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 30 * time.Second
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetAPIKey returns the generator API key with environment variable
// expansion.
func (c GeneratorConfig) GetAPIKey() string {
	if c.APIKey == "" {
		return ""
	}
	return os.ExpandEnv(c.APIKey)
}

// GetRetryMaxRetries returns the max retry attempts (default: 2).
func (c GeneratorConfig) GetRetryMaxRetries() int {
	if c.Retry == nil || c.Retry.MaxRetries < 0 {
		return 2
	}
	return c.Retry.MaxRetries
}

// GetRetryBaseDelay returns the initial retry delay (default: 200ms).
func (c GeneratorConfig) GetRetryBaseDelay() time.Duration {
	if c.Retry == nil || c.Retry.BaseDelay == "" {
		return 200 * time.Millisecond
	}
	d, err := time.ParseDuration(c.Retry.BaseDelay)
	if err != nil {
		return 200 * time.Millisecond
	}
	return d
}

// GetRetryMaxDelay returns the maximum retry delay (default: 5s).
func (c GeneratorConfig) GetRetryMaxDelay() time.Duration {
	if c.Retry == nil || c.Retry.MaxDelay == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(c.Retry.MaxDelay)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetCORSOrigins returns the configured CORS origins, or nil.
func (c *APIConfig) GetCORSOrigins() []string {
	if c == nil || c.CORS == nil {
		return nil
	}
	return c.CORS.Origins
}

// GetRateLimitRPS returns the rate limit in requests per second (default: 10).
func (c *APIConfig) GetRateLimitRPS() float64 {
	if c == nil || c.RateLimit == nil || c.RateLimit.RequestsPerSecond <= 0 {
		return 10
	}
	return c.RateLimit.RequestsPerSecond
}

// GetRateLimitBurst returns the burst size (default: 20).
func (c *APIConfig) GetRateLimitBurst() int {
	if c == nil || c.RateLimit == nil || c.RateLimit.Burst <= 0 {
		return 20
	}
	return c.RateLimit.Burst
}

// IsAuthEnabled returns true if API authentication is configured.
func (c *APIConfig) IsAuthEnabled() bool {
	if c == nil || c.Auth == nil {
		return false
	}
	return c.Auth.GetAPIKey() != ""
}

// GetAPIKey returns the configured API key with environment variable
// expansion.
func (c *AuthConfig) GetAPIKey() string {
	if c == nil || c.APIKey == "" {
		return ""
	}
	return os.ExpandEnv(c.APIKey)
}

// GetHeaderName returns the auth header name (default: "X-API-Key").
func (c *AuthConfig) GetHeaderName() string {
	if c == nil || c.HeaderName == "" {
		return "X-API-Key"
	}
	return c.HeaderName
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Title: "AgentPages",
		Server: ServerConfig{
			Port:  8080,
			Host:  "localhost",
			Debug: false,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "./agentpages.db",
		},
		Generator: GeneratorConfig{
			Timeout: "30s",
		},
	}
}

// Load loads configuration from a YAML file, layered over the defaults.
// A missing file returns the default configuration.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// LoadFromDir looks for agentpages.yaml in the given directory. If it is
// not found, returns the default configuration.
func LoadFromDir(dir string) (*Config, error) {
	return Load(filepath.Join(dir, "agentpages.yaml"))
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
