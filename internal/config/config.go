// Package config holds gocalc's configuration and its layering:
// defaults, then the config file, then GOCALC_* environment variables,
// then command-line flags.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Config holds the configuration shared by the CLI and the HTTP server.
type Config struct {
	LogLevel  string
	LogFormat string

	Listen          string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	Metrics         bool

	// Per-client request rate on the compute routes. Zero disables it.
	RateLimit float64
	RateBurst int
	// Evaluations running at once across all clients. An evaluation keeps
	// its slot until it finishes, even after its client has gone.
	MaxInFlight int

	// Parameter defaults for requests that leave them blank.
	Variable string
	Lower    string
	Upper    string
	Point    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:        "info",
		LogFormat:       "console",
		Listen:          ":8080",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Metrics:         true,
		RateLimit:       20,
		RateBurst:       40,
		MaxInFlight:     32,
		Variable:        "x",
		Lower:           "0",
		Upper:           "1",
		Point:           "0",
	}
}

// Validate checks the configuration and reports every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, fmt.Errorf("log-level: %w", err))
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		result = multierror.Append(result, fmt.Errorf("log-format must be console or json, got %q", c.LogFormat))
	}
	if c.Listen == "" {
		result = multierror.Append(result, fmt.Errorf("listen address is required"))
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 || c.ShutdownTimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("timeouts must be positive"))
	}
	if c.RateLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("rate-limit cannot be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		result = multierror.Append(result, fmt.Errorf("rate-burst must be at least 1 when rate-limit is set"))
	}
	if c.MaxInFlight < 1 {
		result = multierror.Append(result, fmt.Errorf("max-in-flight must be at least 1"))
	}
	if strings.TrimSpace(c.Variable) == "" {
		result = multierror.Append(result, fmt.Errorf("variable is required"))
	}
	return result.ErrorOrNil()
}

// configSetter applies values while respecting flag precedence. A value is
// only applied if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString accepts "true" and "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

func (s *configSetter) setFloat(flag string, value *float64, dst *float64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = n
	return nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
