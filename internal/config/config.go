package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/labstack/gommon/bytes"
)

// EnvPrefix is stripped from environment variables before they are mapped
// onto config keys. A double underscore separates nesting levels:
// ECHOSERVER_SERVER__PORT=8080 sets server.port.
const EnvPrefix = "ECHOSERVER_"

type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Admin         AdminConfig          `koanf:"admin"`
	Archive       ArchiveConfig        `koanf:"archive"`
	Observability *ObservabilityConfig `koanf:"observability" validate:"required"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig configures the echo listener. Timeouts are in seconds.
type ServerConfig struct {
	Host              string `koanf:"host"`
	Port              string `koanf:"port" validate:"required,numeric"`
	ReadTimeout       int    `koanf:"read_timeout" validate:"gte=0"`
	ReadHeaderTimeout int    `koanf:"read_header_timeout" validate:"gte=0"`
	WriteTimeout      int    `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout       int    `koanf:"idle_timeout" validate:"gte=0"`
	ShutdownTimeout   int    `koanf:"shutdown_timeout" validate:"gt=0"`
	BodyLimit         string `koanf:"body_limit" validate:"required"`
	AccessLog         bool   `koanf:"access_log"`
}

// AdminConfig configures the optional probe and inspection listener.
type AdminConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Host        string `koanf:"host"`
	Port        string `koanf:"port" validate:"omitempty,numeric"`
	RecentLimit int    `koanf:"recent_limit" validate:"gte=0"`
}

// ArchiveConfig configures batched export of request records. Sinks is keyed
// by sink type (e.g. "postgres", "o3"); the inner map holds that sink's options.
type ArchiveConfig struct {
	Enabled       bool                      `koanf:"enabled"`
	MaxBatchSize  int                       `koanf:"max_batch_size" validate:"gt=0"`
	FlushInterval string                    `koanf:"flush_interval" validate:"required"`
	QueueSize     int                       `koanf:"queue_size" validate:"gt=0"`
	Sinks         map[string]map[string]any `koanf:"sinks"`
}

// Address returns host:port for the echo listener.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// Address returns host:port for the admin listener.
func (a AdminConfig) Address() string {
	return net.JoinHostPort(a.Host, a.Port)
}

// FlushEvery parses FlushInterval. Validation guarantees it is a positive duration.
func (a ArchiveConfig) FlushEvery() time.Duration {
	d, err := time.ParseDuration(a.FlushInterval)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              "5000",
			ReadTimeout:       30,
			ReadHeaderTimeout: 10,
			WriteTimeout:      30,
			IdleTimeout:       120,
			ShutdownTimeout:   15,
			BodyLimit:         "10M",
			AccessLog:         true,
		},
		Admin: AdminConfig{
			Host:        "0.0.0.0",
			Port:        "9090",
			RecentLimit: 100,
		},
		Archive: ArchiveConfig{
			MaxBatchSize:  100,
			FlushInterval: "5s",
			QueueSize:     1024,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig layers defaults, an optional YAML file, an optional .env file
// and ECHOSERVER_* environment variables, then validates the result.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	mainConfig := Default()
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// A YAML file may null out the whole section.
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}
	if mainConfig.Observability.ServiceName == "" {
		mainConfig.Observability.ServiceName = "echoserver"
	}
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}
	return mainConfig, nil
}

// Validate runs struct validation and the checks tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if _, err := bytes.Parse(c.Server.BodyLimit); err != nil {
		return fmt.Errorf("validate config: server.body_limit %q: %w", c.Server.BodyLimit, err)
	}
	if d, err := time.ParseDuration(c.Archive.FlushInterval); err != nil || d <= 0 {
		return fmt.Errorf("validate config: archive.flush_interval %q is not a positive duration", c.Archive.FlushInterval)
	}
	if c.Admin.Enabled && c.Admin.Port == "" {
		return errors.New("validate config: admin is enabled but admin.port is empty")
	}
	if c.Archive.Enabled && len(c.Archive.Sinks) == 0 {
		return errors.New("validate config: archive is enabled but no sinks are configured")
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}
	return nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
