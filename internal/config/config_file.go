package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Config but uses strings for durations.
type FileConfig struct {
	LogLevel        string   `toml:"log_level" yaml:"log_level"`
	LogFormat       string   `toml:"log_format" yaml:"log_format"`
	Listen          string   `toml:"listen" yaml:"listen"`
	ReadTimeout     string   `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    string   `toml:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout string   `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
	CORSOrigins     []string `toml:"cors_origins" yaml:"cors_origins"`
	Metrics         *bool    `toml:"metrics" yaml:"metrics"`
	RateLimit       *float64 `toml:"rate_limit" yaml:"rate_limit"`
	RateBurst       *int     `toml:"rate_burst" yaml:"rate_burst"`
	MaxInFlight     *int     `toml:"max_in_flight" yaml:"max_in_flight"`
	Variable        string   `toml:"variable" yaml:"variable"`
	Lower           string   `toml:"lower" yaml:"lower"`
	Upper           string   `toml:"upper" yaml:"upper"`
	Point           string   `toml:"point" yaml:"point"`
}

// LoadFileConfig reads a config file. Files ending in .yaml or .yml are
// parsed as YAML, everything else as TOML.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &fc)
	default:
		err = toml.Unmarshal(b, &fc)
	}
	if err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.gocalc/config.toml, or "" when the home
// directory is unknown.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".gocalc", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies a file's values to cfg, skipping any whose flag
// is in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setString("listen", fc.Listen, &cfg.Listen)
	s.setString("var", fc.Variable, &cfg.Variable)
	s.setString("lower", fc.Lower, &cfg.Lower)
	s.setString("upper", fc.Upper, &cfg.Upper)
	s.setString("point", fc.Point, &cfg.Point)
	s.setStrings("cors-origin", fc.CORSOrigins, &cfg.CORSOrigins)

	if err := s.setDuration("read-timeout", fc.ReadTimeout, &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("write-timeout", fc.WriteTimeout, &cfg.WriteTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBool("metrics", fc.Metrics, &cfg.Metrics)
	s.setFloat("rate-limit", fc.RateLimit, &cfg.RateLimit)
	s.setInt("rate-burst", fc.RateBurst, &cfg.RateBurst)
	s.setInt("max-in-flight", fc.MaxInFlight, &cfg.MaxInFlight)
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
