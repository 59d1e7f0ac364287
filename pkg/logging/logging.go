// Package logging configures structured logging for the whole process.
//
// Output goes to stderr through tint, so local runs get readable colored
// lines while everything stays a log/slog call site underneath. The level
// comes from the LOG_LEVEL environment variable (debug, info, warn, error;
// default info).
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the process-wide default logger at the level named by the
// LOG_LEVEL environment variable.
func Setup() {
	SetupWithLevel(levelFromEnv())
}

// SetupWithLevel installs the process-wide default logger at an explicit
// level, bypassing the environment.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		}),
	))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
