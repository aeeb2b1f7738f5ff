package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseDrainsQueue(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLogger(context.Background(), WithOutputDir(dir))
	require.NoError(t, err)

	l.Info(context.Background()).Logs("last words before shutdown")
	l.Close()

	files, err := filepath.Glob(filepath.Join(dir, "arvue-*.log"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "last words before shutdown")
}

func TestCloseIsIdempotent(t *testing.T) {
	l, err := NewLogger(context.Background(), WithOutputDir(t.TempDir()))
	require.NoError(t, err)

	l.Close()
	// A second shutdown, from another owner of the logger, must be a
	// no-op rather than a panic on the closed quit channel.
	require.NotPanics(t, l.Close)
}
