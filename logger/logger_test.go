package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Env: "production", Level: "warn"}, &buf)

	l.Info().Msg("hidden")
	l.Warn().Int("expired", 3).Msg("expired items")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "expired items", entry["message"])
	assert.Equal(t, float64(3), entry["expired"])
}

func TestParseLevel_UnknownIsInfo(t *testing.T) {
	assert.Equal(t, parseLevel("info"), parseLevel("verbose"))
}

func TestComponent_TagsEntries(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(Config{Env: "production", Level: "info"}, &buf).Component("expiry_monitor")

	l.Info().Msg("started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "expiry_monitor", entry["component"])
	assert.Equal(t, "started", entry["message"])
}
