// Package logging adapts zap to the key/value logger used by the core service.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a sugared zap logger.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New builds a production JSON logger, at debug level when verbose.
func New(verbose bool) (*Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return Wrap(z), nil
}

// Wrap adapts an existing zap logger.
func Wrap(z *zap.Logger) *Logger {
	if z == nil {
		z = zap.NewNop()
	}
	return &Logger{sugar: z.Sugar()}
}

// Nop discards everything.
func Nop() *Logger { return Wrap(zap.NewNop()) }

// Debug logs at debug level.
func (l *Logger) Debug(msg string, kv ...any) { l.sugar.Debugw(msg, kv...) }

// Info logs at info level.
func (l *Logger) Info(msg string, kv ...any) { l.sugar.Infow(msg, kv...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, kv ...any) { l.sugar.Warnw(msg, kv...) }

// Error logs at error level.
func (l *Logger) Error(msg string, kv ...any) { l.sugar.Errorw(msg, kv...) }

// Zap exposes the underlying logger.
func (l *Logger) Zap() *zap.Logger { return l.sugar.Desugar() }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.sugar.Sync() }
