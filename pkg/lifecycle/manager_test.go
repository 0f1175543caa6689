package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/logging"
)

func TestShutdownWithoutHandleIsNoOp(t *testing.T) {
	l, err := logging.NewLogger("lifecycle-test")
	require.NoError(t, err)

	m := &Manager{log: l}
	assert.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, m.shutDown)
}

func TestAcquireAfterShutdownReturnsTypedError(t *testing.T) {
	l, err := logging.NewLogger("lifecycle-test")
	require.NoError(t, err)

	m := &Manager{log: l}
	require.NoError(t, m.Shutdown(context.Background()))

	_, err = m.Acquire(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrShutdownInProgress)
}

func TestShutdownTwiceStaysShutDown(t *testing.T) {
	l, err := logging.NewLogger("lifecycle-test")
	require.NoError(t, err)

	m := &Manager{log: l}
	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, m.shutDown)
}

func TestGlobalReturnsSameInstance(t *testing.T) {
	a := Global()
	b := Global()
	assert.Same(t, a, b)
}
