package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// Logger is the global logger instance
	Logger zerolog.Logger

	// Output is where log lines go. Stdout is reserved for command output.
	Output io.Writer = os.Stderr
)

func init() {
	// Quiet by default: a normal lock run prints nothing unless something is wrong
	Logger = zerolog.New(Output).
		With().
		Timestamp().
		Logger()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = Logger
}

// ParseLevel maps a level name to a zerolog level, falling back to warn
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

// Init initializes the global logger with the specified level and output
func Init(level string, pretty bool) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	var output io.Writer = Output
	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        Output,
			TimeFormat: time.RFC3339,
			NoColor:    false,
		}
	}

	l := zerolog.New(output).
		With().
		Timestamp()
	if pretty {
		l = l.Caller()
	}
	Logger = l.Logger()

	log.Logger = Logger
}

// WithComponent returns a logger with a component field set
func WithComponent(component string) *zerolog.Logger {
	l := Logger.With().Str("component", component).Logger()
	return &l
}

// Debug logs a debug message
func Debug(msg string) {
	Logger.Debug().Msg(msg)
}

// Warn logs a warning message
func Warn(msg string) {
	Logger.Warn().Msg(msg)
}
