// Package config loads service configuration from defaults, an optional YAML
// file and INCIDENTFEED_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
// Nested keys are separated by a double underscore, e.g.
// INCIDENTFEED_SERVER__METRICS_PORT.
const EnvPrefix = "INCIDENTFEED_"

// Source kinds.
const (
	SourceHTTP = "http"
	SourceDemo = "demo"
)

// Config is the complete service configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	CORS      CORSConfig      `koanf:"cors"`
	Source    SourceConfig    `koanf:"source"`
	Cache     CacheConfig     `koanf:"cache"`
	Actions   ActionsConfig   `koanf:"actions"`
	Dashboard DashboardConfig `koanf:"dashboard"`
}

// ServerConfig configures the HTTP servers.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              string        `koanf:"port" validate:"required,numeric"`
	MetricsPort       string        `koanf:"metrics_port" validate:"required,numeric,nefield=Port"`
	ReadTimeout       time.Duration `koanf:"read_timeout" validate:"gt=0"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	WriteTimeout      time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=text json"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// SourceConfig selects and configures the incident source.
type SourceConfig struct {
	Kind      string        `koanf:"kind" validate:"oneof=http demo"`
	URL       string        `koanf:"url" validate:"required_if=Kind http"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	RateLimit float64       `koanf:"rate_limit" validate:"gt=0"`
	Burst     int           `koanf:"burst" validate:"gte=1"`
	DemoCount int           `koanf:"demo_count" validate:"gte=1"`
}

// CacheConfig configures the optional redis cache of fetched incidents.
type CacheConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Addr      string        `koanf:"addr" validate:"required_if=Enabled true"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db" validate:"gte=0"`
	KeyPrefix string        `koanf:"key_prefix" validate:"required"`
	TTL       time.Duration `koanf:"ttl" validate:"gt=0"`
}

// ActionsConfig sets the simulated latency of write actions.
type ActionsConfig struct {
	CreateDelay  time.Duration `koanf:"create_delay" validate:"gte=0"`
	ResolveDelay time.Duration `koanf:"resolve_delay" validate:"gte=0"`
	DeleteDelay  time.Duration `koanf:"delete_delay" validate:"gte=0"`
}

// DashboardConfig configures the HTML dashboard.
type DashboardConfig struct {
	ExcerptLength int `koanf:"excerpt_length" validate:"gte=1"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "8080",
			MetricsPort:       "9090",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    20 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{},
		},
		Source: SourceConfig{
			Kind:      SourceHTTP,
			URL:       "https://jsonplaceholder.typicode.com/posts",
			Timeout:   10 * time.Second,
			RateLimit: 5,
			Burst:     5,
			DemoCount: 10,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Addr:      "localhost:6379",
			KeyPrefix: "incidentfeed",
			TTL:       60 * time.Second,
		},
		Actions: ActionsConfig{
			CreateDelay:  1500 * time.Millisecond,
			ResolveDelay: 1 * time.Second,
			DeleteDelay:  0,
		},
		Dashboard: DashboardConfig{
			ExcerptLength: 120,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables are used.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKeyValue), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// PathFromEnv returns the config file path from CONFIG_PATH, if set.
func PathFromEnv() string {
	return os.Getenv("CONFIG_PATH")
}

// listKeys are config keys whose environment value is a comma-separated list.
var listKeys = map[string]bool{
	"cors.allowed_origins": true,
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func envKeyValue(s, v string) (string, any) {
	key := envKey(s)
	if !listKeys[key] {
		return key, v
	}

	items := make([]string, 0)
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

var configValidator = validator.New()

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	errs := make([]error, 0, len(validationErrors))
	for _, fe := range validationErrors {
		errs = append(errs, fmt.Errorf("invalid %s: %v fails %q", fe.Namespace(), fe.Value(), fe.ActualTag()))
	}
	return fmt.Errorf("validate config: %w", errors.Join(errs...))
}
