package rws

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerLevel int

const (
	LogDebug LoggerLevel = iota
	LogInfo
	LogWarning
	LogError
)

func (l LoggerLevel) String() string {
	switch l {
	case LogDebug:
		return "debug"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	}
	return "unknown"
}

// ParseLoggerLevel maps "debug", "info", "warn"/"warning" and "error" to a LoggerLevel.
func ParseLoggerLevel(s string) (LoggerLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogDebug, nil
	case "info", "":
		return LogInfo, nil
	case "warn", "warning":
		return LogWarning, nil
	case "error":
		return LogError, nil
	}
	return LogInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger receives the diagnostic output of sockets and transports. kind names
// the component that logged, e.g. "socket" or "websocket".
type Logger interface {
	Print(level LoggerLevel, kind string, v ...any)
	Println(level LoggerLevel, kind string, v ...any)
	Printf(level LoggerLevel, kind string, format string, v ...any)
}

// NoopLogger is a logger that does nothing
type NoopLogger int

func NewNoopLogger() *NoopLogger {
	return new(NoopLogger)
}

func (l *NoopLogger) Print(_ LoggerLevel, _ string, _ ...any)            {}
func (l *NoopLogger) Println(_ LoggerLevel, _ string, _ ...any)          {}
func (l *NoopLogger) Printf(_ LoggerLevel, _ string, _ string, _ ...any) {}

// ZapLogger logs through a zap.Logger, tagging every entry with a "kind" field.
type ZapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// NewSimpleLogger returns a ZapLogger writing human readable output to stderr
// for messages at or above logLevel.
func NewSimpleLogger(logLevel LoggerLevel) *ZapLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel(logLevel))
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}
	return NewZapLogger(logger)
}

func zapLevel(level LoggerLevel) zapcore.Level {
	switch level {
	case LogDebug:
		return zapcore.DebugLevel
	case LogWarning:
		return zapcore.WarnLevel
	case LogError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) log(level LoggerLevel, kind string, msg string) {
	if ce := l.logger.Check(zapLevel(level), msg); ce != nil {
		ce.Write(zap.String("kind", kind))
	}
}

func (l *ZapLogger) Print(level LoggerLevel, kind string, v ...any) {
	l.log(level, kind, fmt.Sprint(v...))
}

func (l *ZapLogger) Println(level LoggerLevel, kind string, v ...any) {
	l.log(level, kind, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *ZapLogger) Printf(level LoggerLevel, kind string, format string, v ...any) {
	l.log(level, kind, fmt.Sprintf(format, v...))
}

// Sync flushes buffered log entries.
func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}
