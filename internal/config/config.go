// Package config loads the directus-tools configuration from an optional YAML
// file and DIRECTUS_TOOLS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. DIRECTUS_TOOLS_DIRECTUS_TOKEN.
const EnvPrefix = "DIRECTUS_TOOLS"

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "directus-tools.yaml"

// Config is the full application configuration.
type Config struct {
	Directus Directus `mapstructure:"directus" json:"directus" yaml:"directus"`
	Registry Registry `mapstructure:"registry" json:"registry" yaml:"registry"`
	Cache    Cache    `mapstructure:"cache" json:"cache" yaml:"cache"`
	Log      Log      `mapstructure:"log" json:"log" yaml:"log"`
	Server   Server   `mapstructure:"server" json:"server" yaml:"server"`
	Metrics  Metrics  `mapstructure:"metrics" json:"metrics" yaml:"metrics"`
	Tracing  Tracing  `mapstructure:"tracing" json:"tracing" yaml:"tracing"`
}

// Directus configures the REST client.
type Directus struct {
	URL       string        `mapstructure:"url" json:"url" yaml:"url" jsonschema:"pattern=^https?://.+,description=Base URL of the Directus instance"`
	Token     string        `mapstructure:"token" json:"token" yaml:"token" jsonschema:"description=Static access token"`
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout" jsonschema:"minimum=0,description=HTTP timeout in nanoseconds"`
	UserAgent string        `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// Registry configures tool execution limits.
type Registry struct {
	DefaultTimeout time.Duration `mapstructure:"default_timeout" json:"default_timeout" yaml:"default_timeout" jsonschema:"minimum=0"`
	MaxConcurrency int           `mapstructure:"max_concurrency" json:"max_concurrency" yaml:"max_concurrency" jsonschema:"minimum=0"`
}

// Cache configures the result cache for read-only tools.
type Cache struct {
	Enabled bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Size    int           `mapstructure:"size" json:"size" yaml:"size" jsonschema:"minimum=1"`
	TTL     time.Duration `mapstructure:"ttl" json:"ttl" yaml:"ttl" jsonschema:"minimum=0"`
}

// Log selects the log level and handler format.
type Log struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" json:"format" yaml:"format" jsonschema:"enum=text,enum=json"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr        string   `mapstructure:"addr" json:"addr" yaml:"addr" jsonschema:"minLength=1"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins" yaml:"cors_origins"`
}

// Metrics toggles Prometheus metrics.
type Metrics struct {
	Enabled bool `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
}

// Tracing configures OTLP trace export.
type Tracing struct {
	// Endpoint is the OTLP/HTTP collector (host:port); empty disables tracing.
	Endpoint    string `mapstructure:"endpoint" json:"endpoint" yaml:"endpoint"`
	ServiceName string `mapstructure:"service_name" json:"service_name" yaml:"service_name" jsonschema:"minLength=1"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Directus: Directus{
			URL:       "http://localhost:8055",
			Timeout:   30 * time.Second,
			UserAgent: "directus-tools",
		},
		Registry: Registry{DefaultTimeout: 60 * time.Second, MaxConcurrency: 4},
		Cache:    Cache{Enabled: true, Size: 256, TTL: 5 * time.Minute},
		Log:      Log{Level: "info", Format: "text"},
		Server:   Server{Addr: ":8080", CORSOrigins: []string{"*"}},
		Metrics:  Metrics{Enabled: true},
		Tracing:  Tracing{ServiceName: "directus-tools"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("directus.url", d.Directus.URL)
	v.SetDefault("directus.token", d.Directus.Token)
	v.SetDefault("directus.timeout", d.Directus.Timeout)
	v.SetDefault("directus.user_agent", d.Directus.UserAgent)
	v.SetDefault("registry.default_timeout", d.Registry.DefaultTimeout)
	v.SetDefault("registry.max_concurrency", d.Registry.MaxConcurrency)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.size", d.Cache.Size)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("tracing.endpoint", d.Tracing.Endpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
}

// Load reads the configuration. With an empty path, DefaultFile is used when
// present. Environment variables override file values, which override
// defaults. The result is validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigFile(DefaultFile)
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", DefaultFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// WriteDefault writes the default configuration as YAML. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	b, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Redacted returns a copy of c with secrets masked, for display.
func (c Config) Redacted() Config {
	if c.Directus.Token != "" {
		c.Directus.Token = "********"
	}
	c.Server.CORSOrigins = append([]string(nil), c.Server.CORSOrigins...)
	return c
}
