package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the process logger
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // console writer for terminals instead of JSON lines
	Output io.Writer
}

// New builds the process logger. Logs go to stderr by default so
// rendered reports stay clean on stdout.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	var w io.Writer = output
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(w).
		With().
		Timestamp().
		Str("service", "museum-provenance").
		Logger()
}

// Nop returns a logger that discards everything, for tests and
// library callers that bring no logger of their own
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
