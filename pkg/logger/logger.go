package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/riskscope/pkg/config"
)

// serviceName value of the "service" field on every entry
const serviceName = "riskscope"

// Logger is a structured logger wrapper around zerolog
// ⭐ SSOT: 모든 로깅은 이 패키지를 통해서만 수행
type Logger struct {
	zlog zerolog.Logger
}

// New creates a Logger from config
// 로그는 stderr로: stdout은 CLI 리포트 출력 전용
func New(cfg *config.Config) *Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter creates a Logger writing to w
// ⭐ SSOT: zerolog 인스턴스는 여기서만 생성
func NewWithWriter(cfg *config.Config, w io.Writer) *Logger {
	zerolog.SetGlobalLevel(parseLogLevel(cfg.LogLevel))
	zerolog.DurationFieldUnit = time.Millisecond

	return &Logger{
		zlog: zerolog.New(output(cfg.LogFormat, w)).
			With().
			Timestamp().
			Str("service", serviceName).
			Str("env", cfg.Env).
			Logger(),
	}
}

// output console/pretty는 사람용, 그 외는 JSON 한 줄
func output(format string, w io.Writer) io.Writer {
	switch strings.ToLower(format) {
	case "console", "pretty":
		return zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
			NoColor:    w != os.Stderr && w != os.Stdout,
		}
	default:
		return w
	}
}

// Nop returns a logger that discards everything (tests, library callers)
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

func parseLogLevel(levelStr string) zerolog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.zlog.Debug().Msg(msg)
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.zlog.Info().Msg(msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.zlog.Warn().Msg(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.zlog.Error().Msg(msg)
}

// WithField returns a new logger with an additional field
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{zlog: l.zlog.With().Interface(key, value).Logger()}
}

// WithFields returns a new logger with multiple fields
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.zlog.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &Logger{zlog: ctx.Logger()}
}

// WithError returns a new logger with an error field
func (l *Logger) WithError(err error) *Logger {
	return &Logger{zlog: l.zlog.With().Err(err).Logger()}
}

// WithDuration adds d in milliseconds under key
func (l *Logger) WithDuration(key string, d time.Duration) *Logger {
	return &Logger{zlog: l.zlog.With().Dur(key, d).Logger()}
}

// Component tags every entry with the emitting subsystem
// e.g. "pricedata", "analysis", "scheduler", "api"
func (l *Logger) Component(name string) *Logger {
	return &Logger{zlog: l.zlog.With().Str("component", name).Logger()}
}
