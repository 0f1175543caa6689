package openaiplanner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cyrup-ai/kodegen-tools-browser/pkg/agentloop"
)

func TestRenderUserMessageIncludesObservationAndElements(t *testing.T) {
	obs := agentloop.Observation{
		URL:         "https://example.com/pricing",
		Title:       "Pricing",
		TextSnippet: "Choose a plan",
		Elements: []agentloop.Element{
			{Selector: "button:nth-of-type(1)", Tag: "button", Text: "Sign up"},
		},
	}

	msg := renderUserMessage("find the cheapest plan", obs, nil)

	assert.Contains(t, msg, "find the cheapest plan")
	assert.Contains(t, msg, "https://example.com/pricing")
	assert.Contains(t, msg, "Choose a plan")
	assert.Contains(t, msg, "button:nth-of-type(1)")
}

func TestRenderUserMessageIncludesLastActionError(t *testing.T) {
	obs := agentloop.Observation{URL: "https://example.com", LastActionError: "selector not found"}

	msg := renderUserMessage("retry", obs, nil)

	assert.Contains(t, msg, "selector not found")
}

func TestNewDefaultsModelWhenEmpty(t *testing.T) {
	p := New("test-key", "")
	assert.Equal(t, defaultModel, p.model)
}
