package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel accepts debug|info|warn|error (case-insensitive). An empty string means the
// level implied by the DEBUG environment variable.
func ParseLevel(s string) (Level, error) {
	switch l := Level(strings.ToLower(strings.TrimSpace(s))); l {
	case "":
		return LevelFromEnv(), nil
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return l, nil
	default:
		return "", fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// LevelFromEnv returns debug when DEBUG is "1" or "true", info otherwise.
func LevelFromEnv() Level {
	debug := strings.ToLower(os.Getenv("DEBUG"))
	if debug == "true" || debug == "1" {
		return LevelDebug
	}
	return LevelInfo
}

// New builds a logger writing to w. console switches from JSON lines to human-readable output.
func New(w io.Writer, level Level, console bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(w).Level(zerologLevel(level)).With().Timestamp().Logger()
}

func zerologLevel(level Level) zerolog.Level {
	switch level {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
