package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/gourmet-finder/internal/secrets"
	"github.com/pdiddy/gourmet-finder/pkg/types"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix("GOURMET_FINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindConfigKeys(v)
	return v
}

func TestLoadConfigFromYAML(t *testing.T) {
	v := newTestViper(t)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
provider:
  api_key: from-file
  timeout: 3s
  requests_per_second: 5
  page_size_limit: 50
cache:
  backend: redis
  addr: localhost:6379
  search_ttl: 2m
server:
  addr: ":9090"
`)))

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Provider.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Provider.Timeout)
	assert.Equal(t, 5.0, cfg.Provider.RequestsPerSecond)
	assert.Equal(t, 50, cfg.Provider.PageSizeLimit)
	assert.Equal(t, types.CacheRedis, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Cache.SearchTTL)
	assert.Equal(t, time.Hour, cfg.Cache.DetailTTL)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("HOTPEPPER_API_KEY", "from-env")
	t.Setenv("GOURMET_FINDER_PROVIDER_FAN_OUT_LIMIT", "4")
	t.Setenv("GOURMET_FINDER_SERVER_REQUEST_TIMEOUT", "30s")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Provider.APIKey)
	assert.Equal(t, 4, cfg.Provider.FanOutLimit)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, types.CacheNone, cfg.Cache.Backend)
}

func TestLoadConfigFallsBackToSecrets(t *testing.T) {
	t.Setenv("HOTPEPPER_API_KEY", "")
	loadedSecrets = secrets.Credentials{APIKey: "from-secrets", RedisPassword: "pw"}
	t.Cleanup(func() { loadedSecrets = secrets.Credentials{} })

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "from-secrets", cfg.Provider.APIKey)
	assert.Equal(t, "pw", cfg.Cache.Password)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("GOURMET_FINDER_CACHE_BACKEND", "memcached")
	_, err := loadConfig(newTestViper(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
