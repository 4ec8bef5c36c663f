package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("short text", 512, 64)
	assert.Equal(t, []string{"short text"}, chunks)

	assert.Nil(t, SplitText("   ", 512, 64))
}

func TestSplitTextPrefersSentenceBoundary(t *testing.T) {
	// Two sentences that together exceed the chunk size; the split should land
	// after the first period, not mid-word.
	first := strings.Repeat("alpha ", 20) + "end of first."
	second := " " + strings.Repeat("beta ", 20) + "end of second."
	chunks := SplitText(first+second, len(first)+10, 0)

	assert.GreaterOrEqual(t, len(chunks), 2)
	assert.True(t, strings.HasSuffix(chunks[0], "end of first."), "chunk 0 = %q", chunks[0])
}

func TestSplitTextOverlapPreservesContext(t *testing.T) {
	text := strings.Repeat("0123456789 ", 100)
	chunks := SplitText(text, 200, 40)

	assert.Greater(t, len(chunks), 2)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 200)
	}
	// Every character of the input must appear in some chunk.
	joined := strings.Join(chunks, "")
	assert.GreaterOrEqual(t, len(joined), len(strings.TrimSpace(text))-len(chunks)*41)
}

func TestApproxTokens(t *testing.T) {
	assert.Equal(t, 0, ApproxTokens(""))
	assert.Equal(t, 25, ApproxTokens(strings.Repeat("a", 100)))
}
