package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/riskscope/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	// Set global level to debug to capture all logs
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	return &Logger{zlog: zerolog.New(buf).With().Timestamp().Logger()}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}
	return logEntry
}

func TestNewWithWriter(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&config.Config{
				Env:       "staging",
				LogLevel:  tt.level,
				LogFormat: "json",
			}, &buf)
			if logger == nil {
				t.Fatal("Expected logger to be created")
			}

			// Verify global level is set
			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("Expected global level %v, got %v", tt.wantLevel, zerolog.GlobalLevel())
			}
		})
	}
}

func TestNewWithWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&config.Config{Env: "production", LogLevel: "info", LogFormat: "json"}, &buf)
	logger.Info("ready")

	entry := decode(t, &buf)
	if entry["service"] != "riskscope" {
		t.Errorf("Expected service riskscope, got %v", entry["service"])
	}
	if entry["env"] != "production" {
		t.Errorf("Expected env production, got %v", entry["env"])
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"invalid", zerolog.InfoLevel}, // Default
		{"", zerolog.InfoLevel},        // Default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggerMethods(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	tests := []struct {
		name      string
		logFunc   func()
		wantMsg   string
		wantLevel string
	}{
		{"debug", func() { logger.Debug("debug message") }, "debug message", "debug"},
		{"info", func() { logger.Info("info message") }, "info message", "info"},
		{"warn", func() { logger.Warn("warn message") }, "warn message", "warn"},
		{"error", func() { logger.Error("error message") }, "error message", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.logFunc()

			logEntry := decode(t, &buf)
			if logEntry["level"] != tt.wantLevel {
				t.Errorf("Expected level %q, got %q", tt.wantLevel, logEntry["level"])
			}
			if logEntry["message"] != tt.wantMsg {
				t.Errorf("Expected message %q, got %q", tt.wantMsg, logEntry["message"])
			}
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithFields(map[string]interface{}{
		"ticker":       "005930",
		"observations": 250,
	}).WithField("category", "tail_risk").Info("category done")

	logEntry := decode(t, &buf)
	if logEntry["ticker"] != "005930" {
		t.Errorf("Expected ticker to be 005930, got %v", logEntry["ticker"])
	}
	if logEntry["observations"] != float64(250) {
		t.Errorf("Expected observations to be 250, got %v", logEntry["observations"])
	}
	if logEntry["category"] != "tail_risk" {
		t.Errorf("Expected category to be tail_risk, got %v", logEntry["category"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.WithError(errors.New("no overlapping dates")).Error("market sensitivity failed")

	logEntry := decode(t, &buf)
	if logEntry["error"] != "no overlapping dates" {
		t.Errorf("Expected error field, got %v", logEntry["error"])
	}
	if logEntry["message"] != "market sensitivity failed" {
		t.Errorf("Expected message, got %v", logEntry["message"])
	}
}

func TestWithDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	zerolog.DurationFieldUnit = time.Millisecond
	logger.WithDuration("duration", 1500*time.Millisecond).Info("analysis completed")

	logEntry := decode(t, &buf)
	if logEntry["duration"] != float64(1500) {
		t.Errorf("Expected duration 1500ms, got %v", logEntry["duration"])
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Component("pricedata").WithField("provider", "yahoo").Debug("fetched")

	logEntry := decode(t, &buf)
	if logEntry["component"] != "pricedata" {
		t.Errorf("Expected component pricedata, got %v", logEntry["component"])
	}
	if logEntry["provider"] != "yahoo" {
		t.Errorf("Expected provider yahoo, got %v", logEntry["provider"])
	}
}

func TestLogFormats(t *testing.T) {
	for _, format := range []string{"json", "console", "pretty", "CONSOLE"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWithWriter(&config.Config{
				Env:       "development",
				LogLevel:  "info",
				LogFormat: format,
			}, &buf)
			logger.Info("test message")

			if !strings.Contains(buf.String(), "test message") {
				t.Errorf("Expected output to contain 'test message', got: %s", buf.String())
			}
		})
	}
}

func TestNop(t *testing.T) {
	// must not panic and must not write anywhere
	l := Nop()
	l.WithField("k", "v").Info("discarded")
	l.WithError(errors.New("x")).Error("discarded")
}
