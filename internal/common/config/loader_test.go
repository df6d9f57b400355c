// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9999
apis:
  places:
    base_url: https://places.example.com
    api_key: places-key
  analytics:
    base_url: https://analytics.example.com
    api_key: analytics-key
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9999", ServerConfig{Host: "0.0.0.0", Port: 9999}.Addr())
	assert.Equal(t, "places-key", cfg.APIs.Places.APIKey)
	assert.Equal(t, "analytics-key", cfg.APIs.Analytics.APIKey)

	// Defaults fill the gaps.
	assert.Equal(t, 30000, cfg.Server.RequestTimeout)
	assert.Equal(t, 2000, cfg.APIs.Places.RadiusMeters)
	assert.Equal(t, 5, cfg.Pipeline.MaxConcurrency)
	assert.Equal(t, 600, cfg.Pipeline.CacheTTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_MissingPlacesKey(t *testing.T) {
	t.Setenv("PLACES_API_KEY", "")

	path := writeConfigFile(t, `
apis:
  places:
    base_url: https://places.example.com
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadFromFile_RedisEnabledNeedsAddress(t *testing.T) {
	path := writeConfigFile(t, `
apis:
  places:
    base_url: https://places.example.com
    api_key: places-key
database:
  redis:
    enabled: true
    address: ""
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.address")
}

func TestLoadFromFile_EnvKeyFallback(t *testing.T) {
	t.Setenv("PLACES_API_KEY", "from-env")

	path := writeConfigFile(t, `
apis:
  places:
    base_url: https://places.example.com
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIs.Places.APIKey)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 2500*time.Millisecond, GetDuration(2500))
}
