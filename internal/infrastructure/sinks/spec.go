package sinks

import "sort"

// Spec describes a sink instance to be created from configuration.
type Spec struct {
	Type   string
	Config Config
}

// SpecsFromConfig turns the archive.sinks section (type → options) into
// specs ordered by type name.
func SpecsFromConfig(section map[string]map[string]any) []Spec {
	types := make([]string, 0, len(section))
	for t := range section {
		types = append(types, t)
	}
	sort.Strings(types)

	specs := make([]Spec, 0, len(types))
	for _, t := range types {
		cfg := make(Config, len(section[t]))
		for k, v := range section[t] {
			cfg[k] = v
		}
		specs = append(specs, Spec{Type: t, Config: cfg})
	}
	return specs
}
