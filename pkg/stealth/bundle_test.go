package stealth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBundleOrdersAndConcatenatesScripts(t *testing.T) {
	b, err := DefaultBundle()
	require.NoError(t, err)

	script := b.Script()
	assert.Contains(t, script, "webdriver")
	assert.Contains(t, script, "plugins")
	assert.Contains(t, script, "languages")
	assert.Contains(t, script, "chrome")
	assert.Contains(t, script, "permissions")
	assert.Contains(t, script, "hardwareConcurrency")
	assert.Contains(t, script, "userAgentData")
	assert.Contains(t, script, "UNMASKED_RENDERER_WEBGL")
	assert.Contains(t, script, "America/New_York")

	// Ordering: 01_webdriver content must appear before 09_timezone_platform content.
	webdriverIdx := indexOf(script, "Removes the automation flag")
	timezoneIdx := indexOf(script, "America/New_York")
	assert.Greater(t, timezoneIdx, webdriverIdx)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
