package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/gourmet-finder/pkg/types"
)

// configKeys lists every setting viper should resolve from the environment.
// AutomaticEnv only applies to keys viper already knows about, so keys that
// may be absent from the config file are bound here.
var configKeys = []string{
	"provider.timeout",
	"provider.user_agent",
	"provider.max_retries",
	"provider.requests_per_second",
	"provider.burst",
	"provider.base_url",
	"provider.page_size_limit",
	"provider.fan_out_limit",
	"cache.backend",
	"cache.addr",
	"cache.password",
	"cache.db",
	"cache.search_ttl",
	"cache.detail_ttl",
	"server.addr",
	"server.request_timeout",
	"server.shutdown_timeout",
	"server.mode",
}

func bindConfigKeys(v *viper.Viper) {
	for _, k := range configKeys {
		_ = v.BindEnv(k)
	}
	// The credential is also accepted under the provider's conventional name.
	_ = v.BindEnv("provider.api_key", "GOURMET_FINDER_PROVIDER_API_KEY", "HOTPEPPER_API_KEY")
}

// loadConfig resolves the configuration from file, environment, flags, and
// .secrets/, applies defaults, and validates the result.
func loadConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	loadedSecrets.Apply(&cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
