package slog_test

import (
	"bytes"
	"encoding/json"
	logslog "log/slog"
	"testing"

	"github.com/JulianoL13/app-node-engine/internal/common/logs/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logslog.Level
	}{
		{"debug", logslog.LevelDebug},
		{"DEBUG", logslog.LevelDebug},
		{"warn", logslog.LevelWarn},
		{"warning", logslog.LevelWarn},
		{"error", logslog.LevelError},
		{"info", logslog.LevelInfo},
		{"", logslog.LevelInfo},
		{"verbose", logslog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, slog.ParseLevel(tt.in))
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.NewWithWriter(&buf, logslog.LevelInfo, true)

	logger.With("source", "demo").Info("collected", "nodes", 3)
	logger.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "collected", entry["msg"])
	assert.Equal(t, "demo", entry["source"])
	assert.Equal(t, float64(3), entry["nodes"])
}

func TestLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.NewWithWriter(&buf, logslog.LevelDebug, false)

	logger.Debug("decode step", "strategy", "base64")

	assert.Contains(t, buf.String(), "decode step")
	assert.Contains(t, buf.String(), "strategy=base64")
}
