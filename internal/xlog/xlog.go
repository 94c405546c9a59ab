// Package xlog provides the cold-path diagnostic logger shared by the
// ConsumerRegistry and the default ExceptionHandler. It never sits on the
// hot publish/consume path — only on startup, shutdown, and handler
// failure, so a zap.SugaredLogger's allocation cost is irrelevant here.
package xlog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var defaultLogger = newDefault()

func newDefault() *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stdout),
		zapcore.InfoLevel,
	)
	logger := zap.New(core, zap.AddCaller())
	return logger.Sugar()
}

// Default returns the package-wide logger.
func Default() *zap.SugaredLogger {
	return defaultLogger
}

// SetDefault replaces the package-wide logger, letting the orchestration
// layer wire in its own zap configuration.
func SetDefault(l *zap.SugaredLogger) {
	defaultLogger = l
}

// Errorf logs at error level through the default logger.
func Errorf(format string, args ...interface{}) {
	defaultLogger.Errorf(format, args...)
}

// Warnf logs at warn level through the default logger.
func Warnf(format string, args ...interface{}) {
	defaultLogger.Warnf(format, args...)
}

// Infof logs at info level through the default logger.
func Infof(format string, args ...interface{}) {
	defaultLogger.Infof(format, args...)
}
