package toolsurface

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/lifecycle"
)

func TestResolveDefaultUsesRequestedWhenPositive(t *testing.T) {
	assert.Equal(t, 3, resolveDefault(3, 5))
}

func TestResolveDefaultFallsBackWhenZeroOrNegative(t *testing.T) {
	assert.Equal(t, 5, resolveDefault(0, 5))
	assert.Equal(t, 5, resolveDefault(-1, 5))
}

func TestAgentRejectsNegativeMaxSteps(t *testing.T) {
	s := &Surface{}

	_, err := s.Agent(context.Background(), "https://example.com", "find the pricing page", -1)
	require.Error(t, err)
	assert.ErrorIs(t, err, lifecycle.ErrConfigurationInvalid)
}
