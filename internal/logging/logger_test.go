package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDisabled(t *testing.T) {
	t.Cleanup(CloseAll)
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, false, "info"))

	// Disabled mode must not create the logs directory.
	Gateway("should go nowhere")
	_, err := os.Stat(filepath.Join(ws, ".larch", "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestInitializeDebugWritesCategoryFile(t *testing.T) {
	t.Cleanup(func() {
		CloseAll()
		debugMode = false
		logsDir = ""
	})
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, true, "debug"))
	Studio("tracker state for %s is %s", "p-1", "pending")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".larch", "logs"))
	require.NoError(t, err)

	var studioLog string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), "_studio.log") {
			studioLog = filepath.Join(ws, ".larch", "logs", e.Name())
		}
	}
	require.NotEmpty(t, studioLog, "expected a studio category log file")

	data, err := os.ReadFile(studioLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tracker state for p-1 is pending")
}

func TestLevelFiltering(t *testing.T) {
	t.Cleanup(func() {
		CloseAll()
		debugMode = false
		logsDir = ""
	})
	ws := t.TempDir()

	require.NoError(t, Initialize(ws, true, "warn"))
	logger := Get(CategoryGateway)
	logger.Info("filtered out")
	logger.Warn("kept")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(ws, ".larch", "logs"))
	require.NoError(t, err)
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), "_gateway.log") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(ws, ".larch", "logs", e.Name()))
		require.NoError(t, err)
		assert.NotContains(t, string(data), "filtered out")
		assert.Contains(t, string(data), "kept")
	}
}
