// Package logging provides the soundmark.Logger implementation used by
// default across the engine, index store, and command-line surfaces.
package logging

import (
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap.SugaredLogger behind the narrow soundmark.Logger
// interface so callers never depend on zap directly.
type Logger struct {
	sugar *zap.SugaredLogger
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New builds a Logger at the given zap level, writing to w. Color output
// is enabled automatically when w is a terminal.
func New(level zapcore.Level, w *os.File) *Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	if isatty.IsTerminal(w.Fd()) {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		level,
	)

	return &Logger{sugar: zap.New(core).Sugar()}
}

// Default returns the process-wide logger, built once from the LOG_LEVEL
// environment variable (DEBUG, INFO, WARN, ERROR; default INFO).
func Default() *Logger {
	once.Do(func() {
		level := zapcore.InfoLevel
		switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
		case "DEBUG":
			level = zapcore.DebugLevel
		case "WARN":
			level = zapcore.WarnLevel
		case "ERROR":
			level = zapcore.ErrorLevel
		}
		defaultLogger = New(level, os.Stderr)
	})
	return defaultLogger
}

func (l *Logger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }

// Sync flushes any buffered log entries. Callers should defer Sync() after
// obtaining a Logger from New or Default.
func (l *Logger) Sync() error { return l.sugar.Sync() }
