package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dushyant25398/Persistent-Systems/internal/config"
)

func TestNew_JSONCarriesServiceFields(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.ServiceName = "echo-test"
	cfg.Environment = "test"

	var buf bytes.Buffer
	log, err := New(cfg, &buf)
	require.NoError(t, err)

	log.Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "echo-test", line["service"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "hello", line["message"])
	assert.Contains(t, line, "time")
}

func TestNew_RespectsLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	log, err := New(cfg, &buf)
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "trace-everything"
	_, err := New(cfg, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNewRelic_DisabledWithoutLicense(t *testing.T) {
	app, err := NewRelic(config.DefaultObservabilityConfig())
	require.NoError(t, err)
	assert.Nil(t, app)
}
