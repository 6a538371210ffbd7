// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New creates a logger writing to out in the given format ("console" or
// "json") and sets the process-wide level.
func New(out io.Writer, format, level string) (zerolog.Logger, error) {
	if err := SetLevel(level); err != nil {
		return zerolog.Nop(), err
	}
	switch format {
	case "json":
	case "console", "":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(out).With().Timestamp().Logger(), nil
}

// SetLevel changes the process-wide level. Used when the config file is
// edited while the server runs.
func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
