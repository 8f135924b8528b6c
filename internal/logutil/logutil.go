// Package logutil provides the shared application logger.
package logutil

import (
	"os"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix:          "crosspost",
	ReportTimestamp: true,
	Level:           log.InfoLevel,
})

// Setup adjusts the global log level. Unknown levels fall back to info.
func Setup(level string) {
	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
}

// Default returns the application logger.
func Default() *log.Logger {
	return logger
}

// Platform returns a logger scoped to one platform adapter.
func Platform(name string) *log.Logger {
	return logger.With("platform", name)
}
