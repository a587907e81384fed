package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerologLogger("forecast", Options{Level: "info", Format: "json", Out: &buf})
	require.NoError(t, err)

	l.Infof("fitted %d series", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "forecast", entry["component"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "fitted 3 series", entry["message"])
}

func TestZerologLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerologLogger("test", Options{Level: "warn", Format: "json", Out: &buf})
	require.NoError(t, err)

	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info")
	assert.Zero(t, buf.Len())

	l.Warnf("warn")
	l.Errorf("error")
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestZerologLogger_AutoFormatOnBufferIsJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewZerologLogger("test", Options{Out: &buf})
	require.NoError(t, err)

	l.With("child").Infof("hello")
	assert.True(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
	assert.Contains(t, buf.String(), `"component":"child"`)
}

func TestZerologLogger_InvalidOptions(t *testing.T) {
	_, err := NewZerologLogger("test", Options{Level: "loud"})
	assert.Error(t, err)

	_, err = NewZerologLogger("test", Options{Format: "xml"})
	assert.Error(t, err)
}

func TestOrNop(t *testing.T) {
	assert.IsType(t, NopLogger{}, OrNop(nil))
	OrNop(nil).Infof("ignored")
}
