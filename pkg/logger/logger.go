// Package logger wraps logrus with configuration-driven setup.
// Services receive a *Logger and attach structured fields per operation.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mercatto/mercatto-payments/config"
)

// Logger is the structured logger used across the service.
type Logger = logrus.Logger

// Fields is re-exported so callers don't import logrus directly.
type Fields = logrus.Fields

// New builds a logger configured according to the provided logging config.
func New(cfg config.LoggingConfig) *Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	log.SetLevel(parseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "json") {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log
}

func parseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
