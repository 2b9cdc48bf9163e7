package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriter_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)

	Info().Str("slug", "abc123").Msg("shortened")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "abc123", entry["slug"])
	assert.Equal(t, "shortened", entry["message"])
}

func TestInitWithWriter_ProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)

	Debug().Msg("noisy")

	assert.Empty(t, buf.String())
}

func TestInitWithWriter_DevelopmentIsConsole(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("development", &buf)
	defer InitWithWriter("production", &bytes.Buffer{})

	Warn().Msg("slug expired")

	assert.Contains(t, buf.String(), "slug expired")
	assert.False(t, json.Valid(buf.Bytes()))
}
