package sinks

import (
	"context"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Deps are the process-wide collaborators a factory may hand to its sink.
type Deps struct {
	Logger   zerolog.Logger
	NewRelic *newrelic.Application
}

// Factory creates a Sink from config.
// Each sink type (postgres, o3, etc.) implements and registers a Factory.
// ConfigSpec declares which configuration fields this sink type needs.
type Factory interface {
	Name() string
	ConfigSpec() TypeInfo
	Create(ctx context.Context, cfg Config, deps Deps) (Sink, error)
}
