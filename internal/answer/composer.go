package answer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

const (
	// ExcerptChars is how much of the best chunk a fallback answer quotes.
	ExcerptChars = 800
	// ShortQueryWords is the largest query, in words, that gets the short answer form.
	ShortQueryWords = 5
)

// WelcomeMessage is returned for an empty question.
const WelcomeMessage = "👋 **Welcome!** Please ask a question about your uploaded documents.\n\n" +
	"**Examples:**\n" +
	"• What are the requirements for...?\n" +
	"• Explain the process of...\n" +
	"• What does Table X say about...?"

// NoResultsMessage is returned when no chunk scores above zero.
const NoResultsMessage = "❌ **No Relevant Information Found**\n\n" +
	"I couldn't find information related to your question in the loaded documents.\n\n" +
	"**Suggestions:**\n" +
	"• Try different keywords\n" +
	"• Check if your question relates to the uploaded documents\n" +
	"• Rephrase your question more specifically"

// NoMatchMessage is what Compose returns for an empty ranking.
const NoMatchMessage = "❌ **No Relevant Information Found**\n\n" +
	"I couldn't find information related to your question in the loaded documents. Please try:\n\n" +
	"• Rephrasing your question\n" +
	"• Using different keywords\n" +
	"• Asking about topics covered in the uploaded documents"

const shortTemplate = "**Answer from Document:**\n\n%s...\n\n---\n*Source: %s*\n\n" +
	"💡 **Note:** This response is extracted directly from your document. " +
	"For more details, please ask a more specific question."

const longTemplate = "## 📋 **Document Analysis Results**\n\n" +
	"### **Relevant Information Found:**\n\n%s...\n\n" +
	"### **Key Points:**\n" +
	"• Information extracted from loaded documents\n" +
	"• No external knowledge used\n" +
	"• Based on document content analysis\n\n" +
	"---\n\n" +
	"### **📄 Source Reference:**\n*%s*\n\n" +
	"💡 **For More Details:** Ask specific questions about particular sections, tables, or requirements mentioned in your documents."

// Composer builds answers from the best-ranked chunk without any external call.
type Composer struct{}

func NewComposer() *Composer { return &Composer{} }

// Compose quotes the top chunk. Short queries get a compact answer, longer ones a structured report.
func (c *Composer) Compose(query string, ranked []domain.ScoredChunk) string {
	if len(ranked) == 0 {
		return NoMatchMessage
	}
	best := ranked[0].Chunk
	excerpt := Truncate(best.Text, ExcerptChars)
	if len(strings.Fields(query)) <= ShortQueryWords {
		return fmt.Sprintf(shortTemplate, excerpt, best.Source)
	}
	return fmt.Sprintf(longTemplate, excerpt, best.Source)
}

// Truncate cuts s to at most n characters without regard for word boundaries.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
