package page

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTMLExtractsTitleAndDescription(t *testing.T) {
	raw := `<html><head><title>Example</title>
		<meta name="description" content="An example page."></head>
		<body><p>Hello <b>world</b></p></body></html>`

	cleaned, err := CleanHTML(raw, 10000)
	require.NoError(t, err)

	assert.Equal(t, "Example", cleaned.Title)
	assert.Equal(t, "An example page.", cleaned.Description)
	assert.False(t, cleaned.Truncated)
}

func TestCleanHTMLStripsScriptsAndStyles(t *testing.T) {
	raw := `<html><body><script>alert(1)</script><style>body{color:red}</style><p>Kept</p></body></html>`

	cleaned, err := CleanHTML(raw, 10000)
	require.NoError(t, err)

	assert.Contains(t, cleaned.HTML, "Kept")
	assert.NotContains(t, cleaned.HTML, "alert")
	assert.NotContains(t, cleaned.HTML, "color:red")
}

func TestCleanHTMLTruncatesAtMaxLength(t *testing.T) {
	raw := `<html><body><p>` + stringsRepeat("word ", 100) + `</p></body></html>`

	cleaned, err := CleanHTML(raw, 20)
	require.NoError(t, err)

	assert.True(t, cleaned.Truncated)
	assert.LessOrEqual(t, len(cleaned.HTML), 40) // bounded growth, tags included
}

func TestCleanHTMLPreservesLinkHref(t *testing.T) {
	raw := `<html><body><a href="https://example.com" class="nav">link</a></body></html>`

	cleaned, err := CleanHTML(raw, 10000)
	require.NoError(t, err)

	assert.Contains(t, cleaned.HTML, `href="https://example.com"`)
	assert.Contains(t, cleaned.HTML, `class="nav"`)
}

func stringsRepeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
