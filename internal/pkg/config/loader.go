// Package config provides fail-open loaders for environment-backed settings.
//
// Every loader returns a usable value: when a variable is unset the default is
// used silently, and when it is set but cannot be parsed or validated the
// default is used and a warning describing the rejected value is produced.
// Callers decide what to do with the warning (log it, count it in metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadResult is the outcome of loading one environment variable.
type LoadResult[T any] struct {
	// Key is the environment variable that was read.
	Key string

	// Value is the loaded value, or the default when FallbackApplied is set.
	Value T

	// Warning describes the rejected value. Empty unless FallbackApplied.
	Warning string

	// FallbackApplied reports that the variable was set but rejected.
	FallbackApplied bool

	// Set reports that the variable was present and non-empty.
	Set bool
}

// LoadEnv reads envKey, converts it with parse and checks it with validate.
// A nil validate accepts any parsed value. Surrounding whitespace is trimmed
// before parsing; an empty or whitespace-only value counts as unset.
//
// Warning format:
//
//	"invalid {envKey}='{value}': {error}, falling back to default '{default}'"
func LoadEnv[T any](envKey string, defaultValue T, parse func(string) (T, error), validate func(T) error) LoadResult[T] {
	raw := strings.TrimSpace(os.Getenv(envKey))
	if raw == "" {
		return LoadResult[T]{Key: envKey, Value: defaultValue}
	}

	fallback := func(err error) LoadResult[T] {
		return LoadResult[T]{
			Key:             envKey,
			Value:           defaultValue,
			Warning:         fmt.Sprintf("invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, defaultValue),
			FallbackApplied: true,
			Set:             true,
		}
	}

	value, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return fallback(err)
		}
	}
	return LoadResult[T]{Key: envKey, Value: value, Set: true}
}

// LoadEnvString returns the value of envKey, or defaultValue when unset.
// No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	return LoadEnvValidated(envKey, defaultValue, nil).Value
}

// LoadEnvValidated loads a string and falls back when validate rejects it.
func LoadEnvValidated(envKey, defaultValue string, validate func(string) error) LoadResult[string] {
	return LoadEnv(envKey, defaultValue, parseString, validate)
}

// LoadEnvDuration loads a Go duration string such as "30s" or "1h30m".
func LoadEnvDuration(envKey string, defaultValue time.Duration, validate func(time.Duration) error) LoadResult[time.Duration] {
	return LoadEnv(envKey, defaultValue, time.ParseDuration, validate)
}

// LoadEnvInt loads a base-10 integer. Decimals, spaces inside the number and
// trailing characters are rejected.
func LoadEnvInt(envKey string, defaultValue int, validate func(int) error) LoadResult[int] {
	return LoadEnv(envKey, defaultValue, parseInt, validate)
}

// LoadEnvBool loads a boolean accepted by strconv.ParseBool ("1", "true", "F", ...).
func LoadEnvBool(envKey string, defaultValue bool) LoadResult[bool] {
	return LoadEnv(envKey, defaultValue, parseBool, nil)
}

// Collector accumulates the warnings of several loads and reports fallbacks
// to ConfigMetrics when one is attached.
type Collector struct {
	Metrics  *ConfigMetrics
	Warnings []string
}

// Track records r under field and returns its value.
func Track[T any](c *Collector, field string, r LoadResult[T]) T {
	if !r.FallbackApplied {
		return r.Value
	}
	c.Warnings = append(c.Warnings, r.Warning)
	if c.Metrics != nil {
		c.Metrics.RecordValidationError(field)
		c.Metrics.RecordFallback(field, "default")
	}
	return r.Value
}

// Done publishes the fallback gauge and the load timestamp.
func (c *Collector) Done() {
	if c.Metrics == nil {
		return
	}
	c.Metrics.SetFallbackActive("any", len(c.Warnings) > 0)
	c.Metrics.RecordLoadTimestamp()
}

func parseString(s string) (string, error) { return s, nil }

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer format")
	}
	return v, nil
}

func parseBool(s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
	}
	return v, nil
}
