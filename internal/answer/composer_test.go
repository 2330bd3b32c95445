package answer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"docqa/internal/domain"
)

func ranked(texts ...string) []domain.ScoredChunk {
	out := make([]domain.ScoredChunk, len(texts))
	for i, t := range texts {
		out[i] = domain.ScoredChunk{Chunk: domain.Chunk{Text: t, Source: "src" + string(rune('A'+i))}, Score: float64(100 - i)}
	}
	return out
}

func TestComposeEmpty(t *testing.T) {
	c := NewComposer()
	assert.Equal(t, NoMatchMessage, c.Compose("anything", nil))
	assert.Contains(t, NoMatchMessage, "• Using different keywords")
}

func TestComposeShortForm(t *testing.T) {
	c := NewComposer()

	got := c.Compose("what about fire exits?", ranked("Fire exits must remain unobstructed.", "Other chunk text here."))

	want := "**Answer from Document:**\n\nFire exits must remain unobstructed....\n\n---\n*Source: srcA*\n\n" +
		"💡 **Note:** This response is extracted directly from your document. For more details, please ask a more specific question."
	assert.Equal(t, want, got)
}

func TestComposeLongForm(t *testing.T) {
	c := NewComposer()

	got := c.Compose("what does the code say about fire exits?", ranked("Fire exits must remain unobstructed."))

	assert.True(t, strings.HasPrefix(got, "## 📋 **Document Analysis Results**\n\n### **Relevant Information Found:**\n\nFire exits must remain unobstructed....\n\n"))
	assert.Contains(t, got, "### **Key Points:**\n• Information extracted from loaded documents\n• No external knowledge used\n• Based on document content analysis")
	assert.Contains(t, got, "### **📄 Source Reference:**\n*srcA*")
	assert.Contains(t, got, "💡 **For More Details:**")
}

func TestComposeWordCountBoundary(t *testing.T) {
	c := NewComposer()
	r := ranked("Fire exits must remain unobstructed.")

	assert.True(t, strings.HasPrefix(c.Compose("one two three four five", r), "**Answer from Document:**"))
	assert.True(t, strings.HasPrefix(c.Compose("  one  two three\tfour five  ", r), "**Answer from Document:**"))
	assert.True(t, strings.HasPrefix(c.Compose("one two three four five six", r), "## 📋"))
}

func TestComposeCutsExcerpt(t *testing.T) {
	c := NewComposer()
	text := strings.Repeat("ü", ExcerptChars) + "REST"

	got := c.Compose("short query", ranked(text))

	assert.Contains(t, got, strings.Repeat("ü", ExcerptChars)+"...")
	assert.NotContains(t, got, "REST")
}

func TestComposeIsDeterministic(t *testing.T) {
	c := NewComposer()
	r := ranked("Fire exits must remain unobstructed.", "Second")
	assert.Equal(t, c.Compose("a b c d e f g", r), c.Compose("a b c d e f g", r))
}
