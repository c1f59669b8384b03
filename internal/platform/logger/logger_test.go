package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew(t *testing.T) {
	t.Run("json by default", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "info", "").Info("code requested", "endpoint", "/auth/send-code")

		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "code requested", line["msg"])
		assert.Equal(t, "/auth/send-code", line["endpoint"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "info", "text").Info("signed in")
		assert.True(t, strings.Contains(buf.String(), "msg=\"signed in\""))
	})

	t.Run("level filters", func(t *testing.T) {
		var buf bytes.Buffer
		New(&buf, "warn", "json").Info("dropped")
		assert.Empty(t, buf.String())
	})
}
