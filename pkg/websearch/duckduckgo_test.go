package websearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResultsHTML = `
<html><body>
<div class="result">
  <a class="result__a" href="https://example.com/one">Example One</a>
  <a class="result__snippet">First snippet</a>
</div>
<div class="result">
  <a class="result__a" href="/l/?uddg=https%3A%2F%2Fexample.com%2Ftwo">Example Two</a>
  <a class="result__snippet">Second snippet</a>
</div>
</body></html>`

func TestSearchParsesResultsAndUnwrapsRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(sampleResultsHTML))
	}))
	defer server.Close()

	s := New()
	s.client = server.Client()

	results, err := s.searchOnceAt(context.Background(), server.URL, "golang", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Example One", results[0].Title)
	assert.Equal(t, "https://example.com/one", results[0].URL)
	assert.Equal(t, "Example Two", results[1].Title)
	assert.Equal(t, "https://example.com/two", results[1].URL)
}

func TestResolveRedirectUnwrapsUddg(t *testing.T) {
	got := resolveRedirect("/l/?uddg=https%3A%2F%2Fexample.com%2Fpage&rut=1")
	assert.Equal(t, "https://example.com/page", got)
}

func TestResolveRedirectPassesThroughPlainURL(t *testing.T) {
	got := resolveRedirect("https://example.com/page")
	assert.Equal(t, "https://example.com/page", got)
}
