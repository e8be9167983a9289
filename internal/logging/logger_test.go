package logging

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New()
	logger.SetLevel(level)
	logger.SetOutput(log.New(&buf, "", 0))
	return logger, &buf
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug allowed at debug", LevelDebug, LevelDebug, true},
		{"error allowed at debug", LevelDebug, LevelError, true},
		{"debug blocked at info", LevelInfo, LevelDebug, false},
		{"info allowed at info", LevelInfo, LevelInfo, true},
		{"info blocked at warn", LevelWarn, LevelInfo, false},
		{"warn allowed at warn", LevelWarn, LevelWarn, true},
		{"warn blocked at error", LevelError, LevelWarn, false},
		{"error allowed at error", LevelError, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(tt.minLevel)

			switch tt.logLevel {
			case LevelDebug:
				logger.Debug("test message")
			case LevelInfo:
				logger.Info("test message")
			case LevelWarn:
				logger.Warn("test message")
			case LevelError:
				logger.Error("test message")
			}

			if tt.shouldLog {
				assert.Contains(t, buf.String(), "test message")
			} else {
				assert.Empty(t, buf.String(), "expected no log output")
			}
			assert.Equal(t, tt.shouldLog, logger.Enabled(tt.logLevel))
		})
	}
}

func TestLoggerWith(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	logger.With("run", "abc123").Warn("run stopped")

	output := buf.String()
	assert.Contains(t, output, "WARN: run stopped")
	assert.Contains(t, output, "run=abc123")
}

func TestLoggerFieldsSorted(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	logger.WithFields(map[string]any{
		"zeta":  1,
		"alpha": 2,
	}).Info("ordered", "mid", 3)

	assert.Equal(t, "INFO: ordered | alpha=2 mid=3 zeta=1\n", buf.String())
}

func TestLoggerInlineKeyVals(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	logger.Warn("write failed", "error", errors.New("broken pipe"), "delay", 50*time.Millisecond)

	output := buf.String()
	assert.Contains(t, output, `error="broken pipe"`)
	assert.Contains(t, output, "delay=50ms")
}

func TestLoggerOriginalUnmodified(t *testing.T) {
	logger, buf := newTestLogger(LevelDebug)

	_ = logger.With("run", "abc123")
	logger.Info("original logger")

	assert.NotContains(t, buf.String(), "run=abc123")
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"simple string", "hello", "hello"},
		{"empty string", "", `""`},
		{"string with spaces", "hello world", `"hello world"`},
		{"integer", 42, "42"},
		{"error", errors.New("oops"), `"oops"`},
		{"stringer", LevelInfo, "INFO"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatValue(tt.input))
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{" warn ", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelWarn, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}

func TestDefaultLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(log.New(&buf, "", 0))
	SetLevel(LevelWarn)
	t.Cleanup(func() { SetOutput(log.New(&bytes.Buffer{}, "", 0)) })

	Debug("debug message")
	Info("info message")
	assert.Empty(t, buf.String())

	Warn("warn message")
	assert.True(t, strings.HasPrefix(buf.String(), "WARN: warn message"))

	buf.Reset()
	With("component", "test").Error("error message")
	assert.Contains(t, buf.String(), "component=test")
	assert.Same(t, defaultLogger, Default())
}
