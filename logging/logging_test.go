package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plus3/floorplan/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	logger, err := logging.New(logging.Options{Level: "debug", File: path})
	require.NoError(t, err)

	logger.Named("scene").Debug("loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"scene"`)
	assert.Contains(t, string(data), `"msg":"loaded"`)
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.log")
	logger, err := logging.New(logging.Options{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestBadLevel(t *testing.T) {
	_, err := logging.New(logging.Options{Level: "loud"})
	assert.Error(t, err)
	assert.Panics(t, func() { logging.Must(logging.Options{Level: "loud"}) })
}
