package agentloop

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBudgetTextPassesThroughShortText(t *testing.T) {
	got := budgetText("hello world", 800)
	assert.Equal(t, "hello world", got)
}

func TestBudgetTextTruncatesLongText(t *testing.T) {
	long := strings.Repeat("word ", 5000)
	got := budgetText(long, 10)
	assert.Less(t, len(got), len(long))
}
