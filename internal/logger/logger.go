package logger

import (
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	base  = zap.NewNop()
	level = zap.NewAtomicLevelAt(zap.InfoLevel)
)

// Init configures JSON logging to stderr.
func Init(debug bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Level = level
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(2))
	if err != nil {
		return err
	}
	Replace(l)
	SetDebug(debug)
	return nil
}

// Replace swaps the underlying zap logger. Tests use it with zaptest/observer.
func Replace(l *zap.Logger) {
	mu.Lock()
	base = l
	mu.Unlock()
}

func SetDebug(enabled bool) {
	if enabled {
		level.SetLevel(zap.DebugLevel)
		return
	}
	level.SetLevel(zap.InfoLevel)
}

func Debug(msg string, fields map[string]any) {
	write(zapcore.DebugLevel, msg, fields)
}

func Info(msg string, fields map[string]any) {
	write(zapcore.InfoLevel, msg, fields)
}

func Warn(msg string, fields map[string]any) {
	write(zapcore.WarnLevel, msg, fields)
}

func Error(msg string, fields map[string]any) {
	write(zapcore.ErrorLevel, msg, fields)
}

func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sync()
}

func write(lvl zapcore.Level, msg string, fields map[string]any) {
	mu.RLock()
	l := base
	mu.RUnlock()
	ce := l.Check(lvl, msg)
	if ce == nil {
		return
	}
	ce.Write(toZapFields(fields)...)
}

// keys are sorted so that log lines are stable
func toZapFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
