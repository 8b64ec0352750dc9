package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for authserv
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Signing     SigningConfig   `toml:"signing"`
	Directory   DirectoryConfig `toml:"directory"`
	Audit       AuditConfig     `toml:"audit"`
	Clients     []ClientEntry   `toml:"clients"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SigningConfig holds the token signing key and issuer identity.
// There is exactly one signing key path; nothing is hardcoded elsewhere.
type SigningConfig struct {
	Key    string `toml:"key"`
	Issuer string `toml:"issuer"`
}

// DirectoryConfig holds the user directory service connection settings.
type DirectoryConfig struct {
	BaseURL   string `toml:"base_url"`
	Timeout   string `toml:"timeout"`
	RateLimit int    `toml:"rate_limit"`
}

// GetTimeout parses and returns the timeout duration
func (c *DirectoryConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// AuditConfig holds the authentication-event audit store location.
type AuditConfig struct {
	Path string `toml:"path"`
}

// ClientEntry is one registered client application. Either SecretHash (bcrypt)
// or Secret (plaintext, hashed at startup) must be set; SecretHash wins when
// both are present.
type ClientEntry struct {
	ClientID        string   `toml:"client_id"`
	Secret          string   `toml:"secret"`
	SecretHash      string   `toml:"secret_hash"`
	Scopes          []string `toml:"scopes"`
	GrantTypes      []string `toml:"grant_types"`
	AccessTokenTTL  string   `toml:"access_token_ttl"`
	RefreshTokenTTL string   `toml:"refresh_token_ttl"`
}

// GetAccessTokenTTL parses the access token lifetime, defaulting to 1h.
func (e *ClientEntry) GetAccessTokenTTL() time.Duration {
	d, err := time.ParseDuration(e.AccessTokenTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// GetRefreshTokenTTL parses the refresh token lifetime, defaulting to 1h.
func (e *ClientEntry) GetRefreshTokenTTL() time.Duration {
	d, err := time.ParseDuration(e.RefreshTokenTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 9000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Signing: SigningConfig{
			Key:    "dev-signing-key-change-in-production",
			Issuer: "authserv",
		},
		Directory: DirectoryConfig{
			BaseURL:   "http://localhost:8090",
			Timeout:   "10s",
			RateLimit: 20,
		},
		Audit: AuditConfig{
			Path: "data/audit",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("AUTHSERV_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("AUTHSERV_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("AUTHSERV_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("AUTHSERV_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := os.Getenv("AUTHSERV_SIGNING_KEY"); key != "" {
		config.Signing.Key = key
	}

	if url := os.Getenv("AUTHSERV_DIRECTORY_URL"); url != "" {
		config.Directory.BaseURL = url
	}

	if path := os.Getenv("AUTHSERV_DATA_PATH"); path != "" {
		config.Audit.Path = filepath.Join(path, "audit")
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
