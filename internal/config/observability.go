package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

type ObservabilityConfig struct {
	ServiceName string         `koanf:"service_name"`
	Environment string         `koanf:"environment"`
	Logging     LoggingConfig  `koanf:"logging"`
	NewRelic    NewRelicConfig `koanf:"new_relic"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`
}

func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: "echoserver",
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		NewRelic: NewRelicConfig{
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
		},
	}
}

func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging.format %q must be json or console", c.Logging.Format)
	}
	return nil
}

// GetLogLevel maps Logging.Level onto a zerolog level. Empty means info.
func (c *ObservabilityConfig) GetLogLevel() (zerolog.Level, error) {
	if c.Logging.Level == "" {
		return zerolog.InfoLevel, nil
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return zerolog.NoLevel, fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	return zerolog.ParseLevel(c.Logging.Level)
}

func (c *ObservabilityConfig) IsNewRelicEnabled() bool {
	return c.NewRelic.LicenseKey != ""
}
