package domain

import "context"

// Chunk is a normalized passage of document text loaded from an input record.
type Chunk struct {
	Text   string
	Source string
}

// ScoredChunk pairs a chunk with its relevance to a single query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// SourceRef is a short citation of a chunk used in an answer.
type SourceRef struct {
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// AnswerResult is the outcome of answering one question.
// Generated reports whether the text came from the generation backend.
type AnswerResult struct {
	Answer    string      `json:"answer"`
	Sources   []SourceRef `json:"sources"`
	Generated bool        `json:"-"`
}

// ChunkSource exposes the loaded corpus.
type ChunkSource interface {
	Chunks() []Chunk
}

// Scorer ranks chunks against a query.
// Implementations must return only positive scores, best first, at most topK items.
type Scorer interface {
	Score(query string, chunks []Chunk, topK int) []ScoredChunk
}

// Generator produces an answer from a question and a context string.
// ok is false whenever the caller should fall back to extraction.
type Generator interface {
	Generate(ctx context.Context, query, context string) (text string, ok bool)
}

// Composer builds an extraction-only answer from ranked chunks.
type Composer interface {
	Compose(query string, ranked []ScoredChunk) string
}

// QAService defines the operations exposed by the application core.
type QAService interface {
	Ingest(paths []string) (summary string, err error)
	Ask(ctx context.Context, question string) AnswerResult
}
