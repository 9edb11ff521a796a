// Package logging configures the process logger. The dashboard owns stdout,
// so all diagnostics go to a log file in the state directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Setup points the shared logger at path with the given level. An empty or
// unknown level falls back to info; the level can also be forced through
// AGENT_BOX_LOG_LEVEL.
func Setup(path, level string) (*logrus.Logger, error) {
	logger := logrus.New()

	if env := os.Getenv("AGENT_BOX_LOG_LEVEL"); env != "" {
		level = env
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if path == "" {
		logger.SetOutput(io.Discard)
		return logger, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(file)
	return logger, nil
}

// Component returns a child entry tagged with the subsystem name.
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}
