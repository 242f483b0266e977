// Package logger configures the process-wide zerolog logger.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the root logger.  dev selects a human readable console writer,
// anything else writes JSON lines to stdout.
func New(service, env string) zerolog.Logger {
	var w io.Writer = os.Stdout
	if env == "dev" || env == "" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).With().Timestamp().Str("service", service).Logger()
}

// Init installs l as the fallback for zerolog.Ctx so code running outside
// a request still logs through it.
func Init(service, env string) zerolog.Logger {
	l := New(service, env)
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.DefaultContextLogger = &l
	return l
}
