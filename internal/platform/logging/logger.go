package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns the service logger. Development builds write human-readable
// console lines; every other environment writes JSON to stdout.
func New(service, env, level string) zerolog.Logger {
	return NewWithWriter(os.Stdout, service, env, level)
}

// NewWithWriter is New writing to out. Unknown or empty levels fall back to info.
func NewWithWriter(out io.Writer, service, env, level string) zerolog.Logger {
	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: out != os.Stdout}
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()
}
