// Package logging configures the process-wide phuslu/log logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/phuslu/log"

	"github.com/Prabhakar2095/Budget-Working/internal/config"
)

// ParseLevel maps a config level name to a log level; unknown names are info.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return log.TraceLevel
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// New logger writing to w. Format "json" writes one JSON object per line,
// anything else writes human-readable console lines.
func New(cfg config.LogConfig, w io.Writer) log.Logger {
	logger := log.Logger{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: "2006-01-02 15:04:05",
	}
	if strings.EqualFold(cfg.Format, "json") {
		logger.TimeFormat = ""
		logger.Writer = &log.IOWriter{Writer: w}
		return logger
	}
	logger.Writer = &log.ConsoleWriter{
		Writer:      w,
		ColorOutput: w == os.Stderr || w == os.Stdout,
		QuoteString: true,
	}
	return logger
}

// Setup replaces the default logger used by log.Info() and friends.
func Setup(cfg config.LogConfig) {
	log.DefaultLogger = New(cfg, os.Stderr)
}
