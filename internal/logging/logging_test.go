package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("kana-auth", "1.2.3", "json", "info", &buf)

	logger.Info("login succeeded", "account_id", "a1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "login succeeded", entry["msg"])
	assert.Equal(t, "kana-auth", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
	assert.Equal(t, "a1", entry["account_id"])
}

func TestSetup_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("kana-auth", "dev", "text", "info", &buf)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "service=kana-auth")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestSetup_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup("kana-auth", "dev", "json", "warn", &buf)

	logger.Info("dropped")
	assert.Empty(t, buf.String())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}
