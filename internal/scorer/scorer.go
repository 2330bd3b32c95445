package scorer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"docqa/internal/domain"
)

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

const wordPunct = ".,!?;:"

// Scorer ranks chunks with weighted lexical signals.
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) *Scorer { return &Scorer{weights: w} }

// Score returns the chunks with a positive score, best first, at most topK of them.
// Equal scores keep ingestion order. A topK of zero or less returns every positive chunk.
func (s *Scorer) Score(query string, chunks []domain.Chunk, topK int) []domain.ScoredChunk {
	q := s.analyze(query)
	out := make([]domain.ScoredChunk, 0)
	for _, ch := range chunks {
		if score := s.scoreChunk(q, ch.Text); score > 0 {
			out = append(out, domain.ScoredChunk{Chunk: ch, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out
}

type analyzedQuery struct {
	lower     string
	words     []string
	important []string
	numbers   []string
	// chunk-independent bonus from question patterns
	patternBonus float64
}

func (s *Scorer) analyze(query string) analyzedQuery {
	lower := strings.ToLower(query)
	q := analyzedQuery{lower: lower, numbers: numberRe.FindAllString(query, -1)}
	for _, w := range strings.Fields(lower) {
		if utf8.RuneCountInString(w) <= s.weights.GeneralWordMinLen {
			continue
		}
		w = strings.Trim(w, wordPunct)
		if w == "" {
			continue
		}
		q.words = append(q.words, w)
		if utf8.RuneCountInString(w) > s.weights.ImportantWordMinLen {
			q.important = append(q.important, w)
		}
	}
	for _, p := range s.weights.QuestionPatterns {
		if strings.Contains(lower, p.Term) {
			q.patternBonus += p.Bonus
		}
	}
	return q
}

func (s *Scorer) scoreChunk(q analyzedQuery, text string) float64 {
	w := s.weights
	lower := strings.ToLower(text)
	score := 0.0

	if strings.Contains(lower, q.lower) {
		score += w.ExactPhrase
	}

	for _, word := range q.important {
		if !strings.Contains(lower, word) {
			continue
		}
		score += w.ImportantWord
		if strings.Contains(lower, ". "+word) || strings.Contains(lower, "• "+word) {
			score += w.SentenceStart
		}
	}

	for _, word := range q.words {
		if strings.Contains(lower, word) {
			score += w.GeneralWord
		}
	}

	for _, t := range w.StructureTerms {
		if strings.Contains(q.lower, t.Term) && strings.Contains(lower, t.Term) {
			score += t.Bonus
		}
	}

	if len(q.numbers) > 0 {
		present := make(map[string]struct{})
		for _, n := range numberRe.FindAllString(text, -1) {
			present[n] = struct{}{}
		}
		for _, n := range q.numbers {
			if _, ok := present[n]; ok {
				score += w.NumericMatch
			}
		}
	}

	score += q.patternBonus

	if utf8.RuneCountInString(text) < w.ShortChunkLength {
		score *= w.ShortChunkFactor
	}
	return score
}
