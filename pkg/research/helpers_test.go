package research

import (
	"testing"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/logging"
	"github.com/stretchr/testify/require"
)

func mustTestLogger(t *testing.T) *logging.Logger {
	l, err := logging.NewLogger("research-test")
	require.NoError(t, err)
	return l
}
