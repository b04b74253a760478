package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	t.Run("text output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("test message", "key", "value")

		assert.Contains(t, buf.String(), "test message")
		assert.Contains(t, buf.String(), "key=value")
	})

	t.Run("json output carries service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Level:          LogLevelInfo,
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    ServiceName,
			ServiceVersion: "1.2.3",
		})

		logger.Info("test message", "key", "value")

		entry := decodeLine(t, &buf)
		assert.Equal(t, "test message", entry["msg"])
		assert.Equal(t, "value", entry["key"])
		assert.Equal(t, "miniapp", entry["service"])
		assert.Equal(t, "1.2.3", entry["version"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Format: LogFormatText, Output: &buf})

		logger.Info("hidden")
		logger.Warn("shown")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestNewLogger_ContextIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelDebug, Format: LogFormatJSON, Output: &buf})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithCorrelationID(ctx, "corr-1")
	ctx = WithUserID(ctx, "42")
	logger.InfoContext(ctx, "handled")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "req-1", entry[RequestIDKey])
	assert.Equal(t, "corr-1", entry[CorrelationIDKey])
	assert.Equal(t, "42", entry[UserIDKey])
}

func TestNewLogger_WithAttrsKeepsContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, Output: &buf}).
		With("component", "store")

	logger.InfoContext(WithRequestID(context.Background(), "req-2"), "saved")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "store", entry["component"])
	assert.Equal(t, "req-2", entry[RequestIDKey])
}

func TestLogConfigFor(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		format    string
		want      LogConfig
		wantStdio *os.File
	}{
		{
			name:      "development defaults",
			env:       "development",
			want:      LogConfig{Level: LogLevelInfo, Format: LogFormatText},
			wantStdio: os.Stderr,
		},
		{
			name:      "production logs json with source",
			env:       "production",
			want:      LogConfig{Level: LogLevelInfo, Format: LogFormatJSON, AddSource: true},
			wantStdio: os.Stdout,
		},
		{
			name:      "explicit overrides win",
			env:       "production",
			level:     "DEBUG",
			format:    "text",
			want:      LogConfig{Level: LogLevelDebug, Format: LogFormatText, AddSource: true},
			wantStdio: os.Stdout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogConfigFor(tt.env, tt.level, tt.format)
			assert.Equal(t, tt.want.Level, got.Level)
			assert.Equal(t, tt.want.Format, got.Format)
			assert.Equal(t, tt.want.AddSource, got.AddSource)
			assert.Equal(t, ServiceName, got.ServiceName)
			assert.Same(t, tt.wantStdio, got.Output)
		})
	}
}

func TestContextIdentifiers(t *testing.T) {
	t.Run("empty request id is generated", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "")
		assert.Len(t, RequestIDFromContext(ctx), 36)
	})

	t.Run("missing values are empty", func(t *testing.T) {
		ctx := context.Background()
		assert.Empty(t, RequestIDFromContext(ctx))
		assert.Empty(t, CorrelationIDFromContext(ctx))
		assert.Empty(t, UserIDFromContext(ctx))
	})
}
