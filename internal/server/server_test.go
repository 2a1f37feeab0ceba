package server

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/google/gti-mcp-go/internal/config"
)

func testConfig(mode string) *config.Config {
	return &config.Config{
		Mode:           mode,
		Profile:        "all",
		LogLevel:       "error",
		HTTPPort:       8080,
		APIKey:         "test-key",
		RequestTimeout: 30 * time.Second,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLogLevel(tt.input))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("stdio mode", func(t *testing.T) {
		srv, err := New(testConfig("stdio"), testLogger())
		require.NoError(t, err)
		require.NotNil(t, srv)
		assert.NotNil(t, srv.mcpServer)
		assert.Nil(t, srv.httpServer)
		assert.NoError(t, srv.Close())
	})

	t.Run("http mode", func(t *testing.T) {
		srv, err := New(testConfig("http"), testLogger())
		require.NoError(t, err)
		require.NotNil(t, srv)
		assert.Nil(t, srv.mcpServer)
		assert.NotNil(t, srv.httpServer)
		assert.NoError(t, srv.Close())
	})

	t.Run("unknown mode", func(t *testing.T) {
		_, err := New(testConfig("websocket"), testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown server mode")
	})

	t.Run("nil logger gets a default", func(t *testing.T) {
		srv, err := New(testConfig("stdio"), nil)
		require.NoError(t, err)
		assert.NotNil(t, srv.GetLogger())
	})
}
