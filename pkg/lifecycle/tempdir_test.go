package lifecycle

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempDirGuardCleansUpByDefault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")

	guard, err := newTempDirGuard(dir, nil)
	require.NoError(t, err)
	require.DirExists(t, dir)

	guard.cleanup()

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestTempDirGuardKeepPreventsCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "profile")

	guard, err := newTempDirGuard(dir, nil)
	require.NoError(t, err)

	guard.keep()
	guard.cleanup()

	assert.DirExists(t, dir)
}
