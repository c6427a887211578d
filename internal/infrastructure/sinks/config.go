package sinks

import (
	"fmt"
	"strconv"
)

// Config is a key-value map for sink-type-specific options.
// Values come from YAML (typed) or the environment (always strings).
type Config map[string]any

// String returns the option as a string, or def when unset.
func (c Config) String(key, def string) string {
	v, ok := c[key]
	if !ok || v == nil {
		return def
	}
	s := fmt.Sprint(v)
	if s == "" {
		return def
	}
	return s
}

// Int returns the option as an int, or def when unset or unparsable.
func (c Config) Int(key string, def int) int {
	switch v := c[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// Bool returns the option as a bool, or def when unset or unparsable.
func (c Config) Bool(key string, def bool) bool {
	switch v := c[key].(type) {
	case bool:
		return v
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
