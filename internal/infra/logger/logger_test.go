package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("prod", &buf)
	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Info("visit committed", "client_id", int64(7))
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "visit committed", rec["msg"])
	assert.Equal(t, "fitclub-bot", rec["service"])
	assert.EqualValues(t, 7, rec["client_id"])

	buf.Reset()
	NewWithWriter("dev", &buf).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
