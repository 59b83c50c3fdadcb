package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: WarnLevel, Output: &buf})
	t.Cleanup(func() { Configure(Config{Level: InfoLevel, Pretty: true}) })

	Info().Msg("hidden")
	l := Component("admin")
	l.Warn().Str("id", "r1").Msg("visible")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "visible", entry["message"])
	assert.Equal(t, "admin", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}

func TestParseFormat(t *testing.T) {
	assert.True(t, ParseFormat("Pretty"))
	assert.True(t, ParseFormat("console"))
	assert.False(t, ParseFormat("json"))
	assert.False(t, ParseFormat(""))
}
