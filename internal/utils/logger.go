package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output.
// Verbose enables debug-level traces; silent suppresses informational messages
// while keeping warnings and errors visible.
func NewApplicationLogger(verbose bool, silent bool) (*zap.Logger, error) {
	loggerConfiguration := zap.NewProductionConfig()
	loggerConfiguration.Encoding = "console"
	loggerConfiguration.DisableCaller = true
	loggerConfiguration.DisableStacktrace = true
	loggerConfiguration.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	loggerConfiguration.EncoderConfig.TimeKey = ""
	loggerConfiguration.EncoderConfig.LevelKey = ""
	loggerConfiguration.EncoderConfig.NameKey = ""
	loggerConfiguration.EncoderConfig.CallerKey = ""
	loggerConfiguration.EncoderConfig.MessageKey = "message"
	loggerConfiguration.EncoderConfig.StacktraceKey = ""
	switch {
	case verbose:
		loggerConfiguration.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case silent:
		loggerConfiguration.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		loggerConfiguration.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return loggerConfiguration.Build()
}
