package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "production", "INFO")
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("provider", "google").Msg("provider answered")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "easydict", line["service"])
	assert.Equal(t, "production", line["environment"])
	assert.Equal(t, "google", line["provider"])
	assert.Equal(t, "provider answered", line["message"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWithWriterLocalUsesConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "local", "debug")
	require.NoError(t, err)

	logger.Debug().Msg("query started")

	assert.Contains(t, buf.String(), "query started")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("local", "chatty")
	require.ErrorContains(t, err, "LOG_LEVEL")
}
