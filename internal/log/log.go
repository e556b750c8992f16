package log

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var (
	logger     *zap.SugaredLogger
	atomLevel  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggerOnce sync.Once
	loggerMu   sync.RWMutex
)

// initLogger builds the global logger writing to stderr with timestamps.
func initLogger() {
	loggerOnce.Do(func() {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encCfg),
			zapcore.Lock(os.Stderr),
			atomLevel,
		)
		logger = zap.New(core).Sugar()
	})
}

// SetLevel changes the minimum level. Unknown levels fall back to INFO.
func SetLevel(l Level) {
	initLogger()
	atomLevel.SetLevel(toZapLevel(l))
}

// ParseLevel maps config strings such as "debug" or "WARN" to a Level.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn:
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Replace swaps the underlying logger. Tests use it with zaptest/observer.
func Replace(l *zap.Logger) func() {
	initLogger()
	loggerMu.Lock()
	prev := logger
	logger = l.Sugar()
	loggerMu.Unlock()
	return func() {
		loggerMu.Lock()
		logger = prev
		loggerMu.Unlock()
	}
}

func Debug(msg string, kv ...any) {
	current().Debugw(msg, kv...)
}

func Info(msg string, kv ...any) {
	current().Infow(msg, kv...)
}

func Warn(msg string, kv ...any) {
	current().Warnw(msg, kv...)
}

func Error(msg string, err error, kv ...any) {
	// Prepend error into key-value list.
	extended := append([]any{"err", err}, kv...)
	current().Errorw(msg, extended...)
}

// Sync flushes buffered entries; call before exit.
func Sync() {
	_ = current().Sync()
}

func current() *zap.SugaredLogger {
	initLogger()
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
