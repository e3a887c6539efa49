// Package logger provides structured logging for tenderwatch.
// Components log through package-level functions so the pipeline services
// stay free of logger plumbing; Init wires the zap backend once at startup.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop().Sugar()
)

// Init builds the process logger. JSON encoding is meant for unattended
// runs; debug enables per-item tracing.
func Init(json, debug bool) error {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "msg",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	built, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	mu.Lock()
	log = built.Sugar()
	mu.Unlock()
	return nil
}

// SetLogger replaces the backend. Useful for tests.
func SetLogger(l *zap.SugaredLogger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debugf logs a formatted debug message.
func Debugf(format string, args ...any) {
	current().Debugf(format, args...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...any) {
	current().Infof(format, args...)
}

// Warnf logs a formatted warning.
func Warnf(format string, args ...any) {
	current().Warnf(format, args...)
}

// Errorf logs a formatted error.
func Errorf(format string, args ...any) {
	current().Errorf(format, args...)
}

// Sync flushes buffered log entries. Called before process exit.
func Sync() {
	_ = current().Sync()
}
