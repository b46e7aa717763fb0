package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps a zap.Logger and applies the registered context hooks
// before every entry is written.
type Logger struct {
	zap   *zap.Logger
	hooks []Hook
}

// New builds a Logger from the given config. It is the fx constructor for
// the logging dependency.
func New(cfg Config) *Logger {
	return &Logger{
		zap:   newZap(cfg),
		hooks: defaultHooks,
	}
}

func newZap(cfg Config) *zap.Logger {
	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder

	switch cfg.Format {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	default:
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	var sink zapcore.WriteSyncer

	switch cfg.Output {
	case "", "stderr":
		sink = zapcore.Lock(os.Stderr)
	case "stdout":
		sink = zapcore.Lock(os.Stdout)
	default:
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.Rotation.MaxSize,
			MaxBackups: cfg.Rotation.MaxBackups,
			MaxAge:     cfg.Rotation.MaxAge,
		})
	}

	core := zapcore.NewCore(encoder, sink, level)

	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	for _, hook := range l.hooks {
		fields = append(fields, hook.Apply(ctx, msg)...)
	}

	if ce := l.zap.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

// Debug logs a debug entry with context hook fields attached.
func (l *Logger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

// Info logs an info entry with context hook fields attached.
func (l *Logger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

// Warn logs a warn entry with context hook fields attached.
func (l *Logger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

// Error logs an error entry with context hook fields attached.
func (l *Logger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

var (
	globalMu     sync.RWMutex
	globalLogger = New(DefaultConfig())
)

// SetGlobalConfig rebuilds the global logger from cfg. Call once at startup.
func SetGlobalConfig(cfg Config) {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = New(cfg)
}

// GetGlobalLogger returns the logger used by the package-level functions.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// Debug logs a debug entry on the global logger.
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	GetGlobalLogger().log(ctx, zapcore.DebugLevel, msg, fields...)
}

// Info logs an info entry on the global logger.
func Info(ctx context.Context, msg string, fields ...zap.Field) {
	GetGlobalLogger().log(ctx, zapcore.InfoLevel, msg, fields...)
}

// Warn logs a warn entry on the global logger.
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	GetGlobalLogger().log(ctx, zapcore.WarnLevel, msg, fields...)
}

// Error logs an error entry on the global logger.
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	GetGlobalLogger().log(ctx, zapcore.ErrorLevel, msg, fields...)
}
