package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_FieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.InfoLevel)

	log.Debug("hidden")
	log.Warn("rows dropped", "file", "rentals.csv", "dropped", 2, "error", errors.New("bad date"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var got map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "rows dropped", got["message"])
	assert.Equal(t, "rentals.csv", got["file"])
	assert.EqualValues(t, 2, got["dropped"])
	assert.Equal(t, "bad date", got["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNewWithoutWritersIsNop(t *testing.T) {
	log := New(Config{})
	log.Error("nothing to see")
}
