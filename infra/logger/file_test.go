package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	t.Setenv("LOG_LEVEL", "info")
	path := filepath.Join(t.TempDir(), "logs", "evstation.log")
	c, err := OpenFile(FileOptions{Path: path, MaxSizeMB: 1})
	require.NoError(t, err)

	NewZerologLogger("planner").Infof("report ready")
	require.NoError(t, c.Close())
	NewZerologLogger("planner").Infof("after close")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"component":"planner"`)
	assert.Contains(t, string(b), "report ready")
	assert.NotContains(t, string(b), "after close")
}

func TestOpenFileRequiresPath(t *testing.T) {
	_, err := OpenFile(FileOptions{})
	assert.Error(t, err)
}
