package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "authserv", cfg.Signing.Issuer)
	assert.Equal(t, "http://localhost:8090", cfg.Directory.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Directory.GetTimeout())
	assert.Equal(t, "data/audit", cfg.Audit.Path)
	assert.False(t, cfg.IsProduction())
	assert.Empty(t, cfg.Clients)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authserv.toml")
	content := `
environment = "production"

[server]
host = "127.0.0.1"
port = 9443

[logging]
level = "debug"
format = "json"

[signing]
key = "file-signing-key"
issuer = "authserv-prod"

[directory]
base_url = "http://directory:8090"
timeout = "5s"
rate_limit = 50

[audit]
path = "/var/lib/authserv/audit"

[[clients]]
client_id = "app1"
secret = "s3cret"
scopes = ["read", "write"]
grant_types = ["password", "refresh_token"]
access_token_ttl = "30m"
refresh_token_ttl = "24h"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9443, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "file-signing-key", cfg.Signing.Key)
	assert.Equal(t, "http://directory:8090", cfg.Directory.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Directory.GetTimeout())
	assert.Equal(t, 50, cfg.Directory.RateLimit)

	require.Len(t, cfg.Clients, 1)
	entry := cfg.Clients[0]
	assert.Equal(t, "app1", entry.ClientID)
	assert.Equal(t, []string{"read", "write"}, entry.Scopes)
	assert.Equal(t, 30*time.Minute, entry.GetAccessTokenTTL())
	assert.Equal(t, 24*time.Hour, entry.GetRefreshTokenTTL())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadConfig_LaterFileOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	local := filepath.Join(dir, "local.toml")
	require.NoError(t, os.WriteFile(base, []byte("[server]\nport = 9100\nhost = \"10.0.0.1\"\n"), 0644))
	require.NoError(t, os.WriteFile(local, []byte("[server]\nport = 9200\n"), 0644))

	cfg, err := LoadConfig(base, local)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "10.0.0.1", cfg.Server.Host)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("AUTHSERV_ENV", "prod")
	t.Setenv("AUTHSERV_PORT", "9999")
	t.Setenv("AUTHSERV_LOG_LEVEL", "warn")
	t.Setenv("AUTHSERV_SIGNING_KEY", "env-signing-key")
	t.Setenv("AUTHSERV_DIRECTORY_URL", "http://env-directory:8090")
	t.Setenv("AUTHSERV_DATA_PATH", "/data")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "env-signing-key", cfg.Signing.Key)
	assert.Equal(t, "http://env-directory:8090", cfg.Directory.BaseURL)
	assert.Equal(t, filepath.Join("/data", "audit"), cfg.Audit.Path)
}

func TestLoadConfig_BadPortEnvIgnored(t *testing.T) {
	t.Setenv("AUTHSERV_PORT", "not-a-port")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestLoadConfig_MalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport="), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestClientEntry_TTLDefaults(t *testing.T) {
	entry := ClientEntry{ClientID: "x"}
	assert.Equal(t, time.Hour, entry.GetAccessTokenTTL())
	assert.Equal(t, time.Hour, entry.GetRefreshTokenTTL())

	entry.AccessTokenTTL = "garbage"
	assert.Equal(t, time.Hour, entry.GetAccessTokenTTL())
}

func TestDirectoryConfig_TimeoutFallback(t *testing.T) {
	c := DirectoryConfig{Timeout: "bogus"}
	assert.Equal(t, 10*time.Second, c.GetTimeout())
}

func TestIsProduction(t *testing.T) {
	for _, env := range []string{"production", "prod", " PROD "} {
		cfg := Config{Environment: env}
		assert.True(t, cfg.IsProduction(), env)
	}
	for _, env := range []string{"development", "dev", "staging", ""} {
		cfg := Config{Environment: env}
		assert.False(t, cfg.IsProduction(), env)
	}
}
