/*
Package logx wraps zerolog for the BookFinder service.

InitGlobalLogger picks the output once at startup: a console writer on stderr in
development and JSON on stdout otherwise. Services hold a Component logger, while
one-off call sites use the Info, Warn and Error helpers.
*/
package logx

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitGlobalLogger installs the global logger.
// level is a zerolog level name; empty selects debug in development and info otherwise.
func InitGlobalLogger(isDevelopment bool, level string) error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	lvl := zerolog.InfoLevel
	if isDevelopment {
		lvl = zerolog.DebugLevel
	}
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var logger zerolog.Logger
	if isDevelopment {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	log.Logger = logger.Level(lvl).With().Timestamp().Caller().Logger()
	return nil
}

// Logger returns the global logger.
func Logger() *zerolog.Logger {
	return &log.Logger
}

// Component returns a child of the global logger tagged with the component name.
// Call it after InitGlobalLogger; the child keeps the output chosen at that time.
func Component(name string) zerolog.Logger {
	return Logger().With().Str("component", name).Logger()
}

// pairs drops fields that are not key-value pairs, since zerolog panics on odd counts.
func pairs(level zerolog.Level, fields []any) []any {
	if len(fields)%2 == 0 {
		return fields
	}
	Logger().Warn().
		Int("fields_count", len(fields)).
		Str("log_level", level.String()).
		Msg("Log call received an odd number of fields, fields ignored")
	return nil
}

func emit(e *zerolog.Event, level zerolog.Level, msg string, fields []any) {
	e.Fields(pairs(level, fields)).CallerSkipFrame(2).Msg(msg)
}

// Info logs msg with optional key-value fields.
func Info(msg string, fields ...any) {
	emit(Logger().Info(), zerolog.InfoLevel, msg, fields)
}

// Warn logs msg with optional key-value fields.
func Warn(msg string, fields ...any) {
	emit(Logger().Warn(), zerolog.WarnLevel, msg, fields)
}

// Error logs err and msg with optional key-value fields.
func Error(err error, msg string, fields ...any) {
	emit(Logger().Error().Err(err), zerolog.ErrorLevel, msg, fields)
}

// Fatal logs err and msg, then exits the process.
func Fatal(err error, msg string, fields ...any) {
	emit(Logger().Fatal().Err(err), zerolog.FatalLevel, msg, fields)
}
