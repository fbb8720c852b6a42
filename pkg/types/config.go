package types

import (
	"errors"
	"fmt"
	"time"
)

// MaxPageSize is the provider's hard per-request ceiling on "count".
const MaxPageSize = 100

// DefaultBaseURL is the Hot Pepper Gourmet search endpoint.
const DefaultBaseURL = "https://webservice.recruit.co.jp/hotpepper/gourmet/v1/"

// HTTPConfig holds shared HTTP settings used for provider requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries of HTTP 429 responses. Zero selects the
	// default; a negative value disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// Burst is the token bucket size used with RequestsPerSecond.
	Burst int `json:"burst" yaml:"burst" mapstructure:"burst"`
}

// ProviderConfig configures the upstream restaurant-search provider and the
// aggregator that fans out over it. It is passed in explicitly; nothing in
// the provider or aggregator reads the process environment.
type ProviderConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the provider credential.
	APIKey string `json:"-" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL is the provider endpoint (default DefaultBaseURL).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// PageSizeLimit is the page size used by the bulk fetch. It never exceeds
	// MaxPageSize.
	PageSizeLimit int `json:"page_size_limit" yaml:"page_size_limit" mapstructure:"page_size_limit"`

	// FanOutLimit caps concurrent page requests in one bulk fetch. Zero
	// means one goroutine per page.
	FanOutLimit int `json:"fan_out_limit" yaml:"fan_out_limit" mapstructure:"fan_out_limit"`
}

// CacheBackend selects the response cache implementation.
type CacheBackend string

const (
	CacheNone  CacheBackend = "none"
	CacheRedis CacheBackend = "redis"
)

// CacheConfig configures the provider response cache.
type CacheConfig struct {
	Backend  CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
	Addr     string       `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string       `json:"-" yaml:"password,omitempty" mapstructure:"password"`
	DB       int          `json:"db" yaml:"db" mapstructure:"db"`

	// SearchTTL is how long a search page stays cached (default 5m).
	SearchTTL time.Duration `json:"search_ttl" yaml:"search_ttl" mapstructure:"search_ttl"`

	// DetailTTL is how long a detail record stays cached (default 1h).
	DetailTTL time.Duration `json:"detail_ttl" yaml:"detail_ttl" mapstructure:"detail_ttl"`
}

// ServerConfig configures the HTTP front.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	RequestTimeout  time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`

	// Mode is the gin mode: debug, release, or test.
	Mode string `json:"mode" yaml:"mode" mapstructure:"mode"`
}

// LogConfig selects the log level and encoder.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings for the binary.
type Config struct {
	Provider ProviderConfig `json:"provider" yaml:"provider" mapstructure:"provider"`
	Cache    CacheConfig    `json:"cache" yaml:"cache" mapstructure:"cache"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Config) ApplyDefaults() {
	p := &c.Provider
	if p.BaseURL == "" {
		p.BaseURL = DefaultBaseURL
	}
	if p.PageSizeLimit <= 0 || p.PageSizeLimit > MaxPageSize {
		p.PageSizeLimit = MaxPageSize
	}
	if p.Timeout <= 0 {
		p.Timeout = 10 * time.Second
	}
	if p.UserAgent == "" {
		p.UserAgent = "gourmet-finder/0.1"
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheNone
	}
	if c.Cache.SearchTTL <= 0 {
		c.Cache.SearchTTL = 5 * time.Minute
	}
	if c.Cache.DetailTTL <= 0 {
		c.Cache.DetailTTL = time.Hour
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// Validate reports configuration errors that would make every request fail.
// A missing API key is not reported here: the provider surfaces it as an
// upstream-unavailable error so the server can still start and answer
// health checks.
func (c Config) Validate() error {
	var errs []error
	if c.Provider.PageSizeLimit < 1 || c.Provider.PageSizeLimit > MaxPageSize {
		errs = append(errs, fmt.Errorf("provider.page_size_limit must be between 1 and %d", MaxPageSize))
	}
	if c.Provider.FanOutLimit < 0 {
		errs = append(errs, errors.New("provider.fan_out_limit must not be negative"))
	}
	if c.Provider.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("provider.requests_per_second must not be negative"))
	}
	switch c.Cache.Backend {
	case CacheNone:
	case CacheRedis:
		if c.Cache.Addr == "" {
			errs = append(errs, errors.New("cache.addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown cache.backend %q", c.Cache.Backend))
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("unknown server.mode %q", c.Server.Mode))
	}
	return errors.Join(errs...)
}
