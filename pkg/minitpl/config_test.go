package minitpl

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 100, config.CacheMaxSize)
	assert.Equal(t, time.Duration(0), config.CacheTTL)
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "text", config.LogFormat)
	assert.False(t, config.StrictMode)
	assert.NoError(t, config.Validate())
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("MINITPL_CACHE_MAX_SIZE", "7")
	t.Setenv("MINITPL_CACHE_TTL", "90s")
	t.Setenv("MINITPL_LOG_LEVEL", "DEBUG")
	t.Setenv("MINITPL_LOG_FORMAT", "json")
	t.Setenv("MINITPL_STRICT_MODE", "yes")

	config := ConfigFromEnvironment()
	assert.Equal(t, 7, config.CacheMaxSize)
	assert.Equal(t, 90*time.Second, config.CacheTTL)
	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, "json", config.LogFormat)
	assert.True(t, config.StrictMode)
}

func TestConfigFromEnvironmentIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("MINITPL_CACHE_MAX_SIZE", "lots")
	t.Setenv("MINITPL_CACHE_TTL", "forever")

	config := ConfigFromEnvironment()
	assert.Equal(t, 100, config.CacheMaxSize)
	assert.Equal(t, time.Duration(0), config.CacheTTL)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"negative cache", func(c *Config) { c.CacheMaxSize = -1 }, "cache max size cannot be negative"},
		{"negative ttl", func(c *Config) { c.CacheTTL = -time.Second }, "cache TTL cannot be negative"},
		{"bad level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level: verbose"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format: xml"},
		{"off level", func(c *Config) { c.LogLevel = "off" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minitpl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cacheMaxSize: 20
cacheTTL: 5m
logLevel: warn
strictMode: true
`), 0o644))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 20, config.CacheMaxSize)
	assert.Equal(t, 5*time.Minute, config.CacheTTL)
	assert.Equal(t, "warn", config.LogLevel)
	assert.Equal(t, "text", config.LogFormat, "unset keys keep defaults")
	assert.True(t, config.StrictMode)
}

func TestLoadConfigFileEnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "minitpl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: warn\ncacheMaxSize: 20\n"), 0o644))

	t.Setenv("MINITPL_LOG_LEVEL", "error")

	config, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "error", config.LogLevel)
	assert.Equal(t, 20, config.CacheMaxSize)
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadConfigFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "reading config file")

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("cacheMaxSize: [1, 2"), 0o644))
	_, err = LoadConfigFile(broken)
	assert.ErrorContains(t, err, "parsing config file")

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("logLevel: chatty\n"), 0o644))
	config, err := LoadConfigFile(invalid)
	require.NoError(t, err)
	assert.ErrorContains(t, config.Validate(), "invalid log level: chatty")

	config.LogLevel = "warn"
	assert.NoError(t, config.Validate())
}

func TestNewConfigWithDefaults(t *testing.T) {
	assert.Equal(t, DefaultConfig(), NewConfigWithDefaults(nil))

	config := NewConfigWithDefaults(&Config{CacheMaxSize: 0, StrictMode: true})
	assert.Equal(t, 0, config.CacheMaxSize, "zero cache size disables caching")
	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, "text", config.LogFormat)
	assert.True(t, config.StrictMode)
}

func TestGlobalConfig(t *testing.T) {
	original := GetGlobalConfig()
	t.Cleanup(func() { SetGlobalConfig(original) })

	updated := GetGlobalConfig()
	updated.CacheMaxSize = 3
	updated.LogLevel = "error"
	assert.NotEqual(t, 3, GetGlobalConfig().CacheMaxSize, "GetGlobalConfig returns a copy")

	SetGlobalConfig(updated)
	assert.Equal(t, 3, GetGlobalConfig().CacheMaxSize)
	assert.False(t, GetLogger().IsDebugMode())

	engine := New()
	assert.Equal(t, 3, engine.Config().CacheMaxSize)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"true", "1", "yes", "on", " TRUE "} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"false", "0", "no", "", "maybe"} {
		assert.False(t, parseBool(s), s)
	}
}
