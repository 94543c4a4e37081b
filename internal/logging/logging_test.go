package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSON(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	_, err := Init(Options{Level: "debug", Format: "json", Out: &buf})
	require.NoError(t, err)

	logger := Component("api")
	logger.Debug().Int64("exercise", 7).Msg("submit")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "api", line["component"])
	assert.Equal(t, "submit", line["message"])
	assert.Equal(t, "debug", line["level"])
	assert.EqualValues(t, 7, line["exercise"])
}

func TestInit_LevelFilters(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	logger, err := Init(Options{Level: "warn", Format: "json", Out: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestInit_BadLevel(t *testing.T) {
	_, err := Init(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestOpenFile_CreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tutorat.log")
	f, err := OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	_, err = f.WriteString("x\n")
	assert.NoError(t, err)
}
