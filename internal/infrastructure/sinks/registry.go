package sinks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownType is returned when no factory is registered for a sink type.
var ErrUnknownType = errors.New("unknown sink type")

// GlobalRegistry is where sink packages register their factory in init().
var GlobalRegistry = NewRegistry()

// Registry holds registered sink factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a new Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for a sink type.
func (r *Registry) Register(factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[factory.Name()] = factory
}

// Create builds a Sink for the given type and config.
func (r *Registry) Create(ctx context.Context, name string, cfg Config, deps Deps) (Sink, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	if err := r.ValidateConfig(name, cfg); err != nil {
		return nil, err
	}
	return factory.Create(ctx, cfg, deps)
}

// ValidateConfig checks that every required field of the type's ConfigSpec is set.
func (r *Registry) ValidateConfig(typeName string, cfg Config) error {
	info, ok := r.GetTypeInfo(typeName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, typeName)
	}
	for _, f := range info.Fields {
		if f.Required && cfg.String(f.Name, "") == "" {
			return fmt.Errorf("sink %s: missing required option %q", typeName, f.Name)
		}
	}
	return nil
}

// ListRegistered returns all registered sink type names, sorted.
func (r *Registry) ListRegistered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTypeInfo returns the config spec for the given sink type. ok is false if the type is not registered.
func (r *Registry) GetTypeInfo(name string) (info TypeInfo, ok bool) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return TypeInfo{}, false
	}
	return factory.ConfigSpec(), true
}

// Build creates a sink for every spec. If any fails, sinks already built are closed.
func (r *Registry) Build(ctx context.Context, specs []Spec, deps Deps) ([]Sink, error) {
	built := make([]Sink, 0, len(specs))
	for _, spec := range specs {
		s, err := r.Create(ctx, spec.Type, spec.Config, deps)
		if err != nil {
			for _, b := range built {
				_ = b.Close()
			}
			return nil, fmt.Errorf("build sink %s: %w", spec.Type, err)
		}
		built = append(built, s)
	}
	return built, nil
}
