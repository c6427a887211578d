package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/dushyant25398/Persistent-Systems/internal/config"
)

// New builds the process logger. Output defaults to stdout, which is where
// the cluster log pipeline collects echo records from.
func New(cfg *config.ObservabilityConfig, out io.Writer) (zerolog.Logger, error) {
	if out == nil {
		out = os.Stdout
	}
	level, err := cfg.GetLogLevel()
	if err != nil {
		return zerolog.Nop(), err
	}

	var w io.Writer = out
	if cfg.Logging.Format == "console" {
		w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano
	return zerolog.New(w).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("env", cfg.Environment).
		Logger(), nil
}

// NewRelic starts a New Relic application when a license key is configured.
// It returns nil, nil otherwise.
func NewRelic(cfg *config.ObservabilityConfig) (*newrelic.Application, error) {
	if !cfg.IsNewRelicEnabled() {
		return nil, nil
	}
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
		func(c *newrelic.Config) {
			c.Labels = map[string]string{"env": cfg.Environment}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("new relic: %w", err)
	}
	return app, nil
}
