package agentloop

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// maxSnippetTokens bounds how much of a page's visible text an
// observation carries into the planner prompt, independent of the
// extract tool surface's own character-based maxLength.
const maxSnippetTokens = 800

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

func tokenEncoder() *tiktoken.Tiktoken {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoding = enc
		}
	})
	return encoding
}

// budgetText truncates text to at most maxTokens tokens under the
// cl100k_base encoding, falling back to a plain rune-count truncation if
// the encoder failed to load.
func budgetText(text string, maxTokens int) string {
	enc := tokenEncoder()
	if enc == nil {
		return truncateRunes(text, maxTokens*4)
	}

	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return enc.Decode(tokens[:maxTokens])
}

func truncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
