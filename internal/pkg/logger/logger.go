package logger

import (
	"context"
	"log/slog"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

var globalLogger *slog.Logger

// New builds the zap logger for the given level. Development mode switches to
// the console encoder. An unknown level falls back to info.
func New(levelStr string, development bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		level = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = !development

	zapLogger, buildErr := cfg.Build()
	if buildErr != nil {
		return nil, buildErr
	}
	if err != nil {
		zapLogger.Warn("Invalid log level, defaulting to info", zap.String("input", levelStr))
	}
	return zapLogger, nil
}

// Init routes the package helpers and the slog default through zapLogger.
func Init(zapLogger *zap.Logger) {
	globalLogger = slog.New(zapslog.NewHandler(zapLogger.Core()))
	slog.SetDefault(globalLogger)
}

func ensureInitialized() {
	if globalLogger == nil {
		globalLogger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Log(context.Background(), slog.LevelError, msg, args...)
}

// Fatal logs at ErrorLevel and exits the process.
func Fatal(msg string, args ...any) {
	ensureInitialized()
	globalLogger.Error(msg, args...)
	os.Exit(1)
}
