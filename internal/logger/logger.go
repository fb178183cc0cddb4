// Package logger builds the zap logger used across the facade.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New builds a production zap logger with the given level and encoding.
// Anything other than "json" falls back to console output.
func New(level zapcore.Level, format string) *zap.Logger {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	if level >= zap.InfoLevel {
		zc.DisableStacktrace = true
		zc.DisableCaller = true
	}
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if output := os.Getenv("WEBPUPPET_LOG_OUTPUT"); output != "" {
		zc.OutputPaths = []string{output}
	}

	if format == FormatJSON {
		zc.Encoding = FormatJSON
		zc.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		zc.EncoderConfig.MessageKey = "message"
	} else {
		zc.Encoding = FormatConsole
		zc.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	}

	z, err := zc.Build()
	if err != nil {
		panic(err)
	}
	return z
}
