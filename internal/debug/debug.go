// Package debug provides debug logging utilities backed by zap.
package debug

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	enabled = os.Getenv("ASBUILT_DEBUG") == "1"

	once   sync.Once
	logger *zap.SugaredLogger
)

func sugar() *zap.SugaredLogger {
	once.Do(func() {
		if !enabled {
			logger = zap.NewNop().Sugar()
			return
		}
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
		l, err := cfg.Build(zap.AddCallerSkip(1))
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	})
	return logger
}

// Logf writes a debug message to stderr if ASBUILT_DEBUG=1
func Logf(format string, args ...any) {
	if !enabled {
		return
	}
	sugar().Debugf(format, args...)
}

// Logw writes a debug message with structured key/value pairs.
func Logw(msg string, keysAndValues ...any) {
	if !enabled {
		return
	}
	sugar().Debugw(msg, keysAndValues...)
}

// Enabled returns true if debug logging is enabled
func Enabled() bool {
	return enabled
}

// Sync flushes buffered log entries.
func Sync() {
	if enabled {
		_ = sugar().Sync()
	}
}
