package utils

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LoggerConfig{Format: "json", Level: "warn", Output: zapcore.AddSync(&buf)})

	logger.Info("dropped")
	logger.Warn("kept", zap.String("wallet", "alice"))
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "academy", entry["logger"])
	assert.Equal(t, "alice", entry["wallet"])
	assert.Contains(t, entry, "ts")
}

func TestInitLoggerDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLogger(LoggerConfig{Level: "bogus", Output: zapcore.AddSync(&buf)})

	logger.Debug("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "INFO")
}
