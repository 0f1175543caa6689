package browserexec

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExecutableUsesChromiumPathEnv(t *testing.T) {
	dir := t.TempDir()
	fakeBin := filepath.Join(dir, "chrome-fake")
	require.NoError(t, os.WriteFile(fakeBin, []byte("#!/bin/sh\n"), 0o755))

	t.Setenv("CHROMIUM_PATH", fakeBin)

	got, err := FindExecutable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fakeBin, got)
}

func TestFindExecutableIgnoresMissingChromiumPath(t *testing.T) {
	t.Setenv("CHROMIUM_PATH", filepath.Join(t.TempDir(), "does-not-exist"))

	// Falls through to platform search paths / PATH lookup; we only
	// assert it doesn't short-circuit on the bogus env var by returning
	// that exact path.
	got, err := FindExecutable(context.Background())
	if err == nil {
		assert.NotEqual(t, os.Getenv("CHROMIUM_PATH"), got)
	}
}

func TestDownloadManagedIsUnimplemented(t *testing.T) {
	_, err := DownloadManaged(context.Background())
	assert.ErrorIs(t, err, ErrExecutableNotFound)
}
