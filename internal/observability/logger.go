package observability

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger initializes the global logger with the specified level.
// If logFile is not empty, logs are written to that file in addition to
// stdout. Console output uses human-readable formatting.
func InitLogger(level string, logFile string) {
	var writers []io.Writer

	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}
	writers = append(writers, consoleWriter)

	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			// Keep going with stdout only.
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, using stdout only\n", logFile, err)
		} else {
			writers = append(writers, file)
		}
	}

	log.Logger = log.Output(io.MultiWriter(writers...))

	logLevel := parseLogLevel(level)
	zerolog.SetGlobalLevel(logLevel)

	log.Debug().
		Str("level", logLevel.String()).
		Str("file", logFile).
		Msg("Logger initialized")
}

// parseLogLevel parses a string log level to zerolog.Level.
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
