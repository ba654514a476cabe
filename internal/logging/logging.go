// Package logging builds the logrus loggers used by the cache.
//
// The cache never fails an operation because of an I/O or metadata
// problem; it logs and degrades instead. This package provides the
// default destination for those logs: text to stderr at warn level, or
// JSON to a size-rotated file when one is configured.
package logging

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log rotation limits for file output.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
)

// Options configures a logger built by [New].
type Options struct {
	// Level is a logrus level name ("debug", "info", "warn", "error").
	// Empty means "warn".
	Level string

	// File, when non-empty, sends JSON log lines to this path with
	// size-based rotation instead of text to stderr.
	File string
}

// New builds a logger from the given options.
func New(opts Options) (*logrus.Logger, error) {
	level := logrus.WarnLevel

	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}

		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)

	if opts.File != "" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
		logger.SetOutput(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
		})
	}

	return logger, nil
}

var (
	defaultOnce   sync.Once
	defaultLogger *logrus.Logger
)

// Default returns the shared fallback logger: text to stderr at warn
// level. Used when a cache is opened without an explicit logger.
func Default() *logrus.Logger {
	defaultOnce.Do(func() {
		defaultLogger = logrus.New()
		defaultLogger.SetLevel(logrus.WarnLevel)
	})

	return defaultLogger
}
