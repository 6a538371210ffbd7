package config

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (GOCALC_*). It respects flags that have been explicitly set.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("log-level", os.Getenv("GOCALC_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("GOCALC_LOG_FORMAT"), &cfg.LogFormat)
	s.setString("listen", os.Getenv("GOCALC_LISTEN"), &cfg.Listen)
	s.setString("var", os.Getenv("GOCALC_VARIABLE"), &cfg.Variable)
	s.setString("lower", os.Getenv("GOCALC_LOWER"), &cfg.Lower)
	s.setString("upper", os.Getenv("GOCALC_UPPER"), &cfg.Upper)
	s.setString("point", os.Getenv("GOCALC_POINT"), &cfg.Point)
	s.setStrings("cors-origin", splitList(os.Getenv("GOCALC_CORS_ORIGINS")), &cfg.CORSOrigins)

	if err := s.setDuration("read-timeout", os.Getenv("GOCALC_READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("write-timeout", os.Getenv("GOCALC_WRITE_TIMEOUT"), &cfg.WriteTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("GOCALC_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBoolFromString("metrics", os.Getenv("GOCALC_METRICS"), &cfg.Metrics)
	if err := s.setFloatFromString("rate-limit", os.Getenv("GOCALC_RATE_LIMIT"), &cfg.RateLimit); err != nil {
		return err
	}
	if err := s.setIntFromString("rate-burst", os.Getenv("GOCALC_RATE_BURST"), &cfg.RateBurst); err != nil {
		return err
	}
	return s.setIntFromString("max-in-flight", os.Getenv("GOCALC_MAX_IN_FLIGHT"), &cfg.MaxInFlight)
}
