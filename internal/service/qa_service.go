package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"docqa/internal/answer"
	"docqa/internal/domain"
	"docqa/internal/generation"
	"docqa/internal/store"
)

// ChunkStore is the corpus the service answers from.
type ChunkStore interface {
	domain.ChunkSource
	Load(patterns []string) (store.LoadReport, error)
}

// Options controls how much of a ranking is used.
type Options struct {
	TopK          int
	ContextChunks int
	ContextChars  int
	SourceChunks  int
	PreviewChars  int
}

func DefaultOptions() Options {
	return Options{TopK: 5, ContextChunks: 3, ContextChars: 400, SourceChunks: 3, PreviewChars: 120}
}

// Stats describes the loaded service.
type Stats struct {
	Chunks  int
	Backend string
}

type QAServiceImpl struct {
	store     ChunkStore
	scorer    domain.Scorer
	generator domain.Generator
	composer  domain.Composer
	opts      Options
	logger    zerolog.Logger
}

func NewQAService(st ChunkStore, scorer domain.Scorer, generator domain.Generator, composer domain.Composer, opts Options, logger zerolog.Logger) *QAServiceImpl {
	return &QAServiceImpl{store: st, scorer: scorer, generator: generator, composer: composer, opts: opts, logger: logger}
}

// Ingest loads the record files once and returns a one-line summary.
func (s *QAServiceImpl) Ingest(paths []string) (string, error) {
	report, err := s.store.Load(paths)
	if err != nil {
		return "", err
	}
	if report.Chunks == 0 {
		s.logger.Warn().Strs("inputs", paths).Msg("no document chunks loaded, every question will go unanswered")
	}
	return fmt.Sprintf("%s · generation: %s", report, s.Stats().Backend), nil
}

func (s *QAServiceImpl) Stats() Stats {
	backend := "none"
	if n, ok := s.generator.(interface{ Name() string }); ok {
		backend = n.Name()
	}
	return Stats{Chunks: len(s.store.Chunks()), Backend: backend}
}

// Ask answers one question. It never fails: generation problems fall back to an extracted answer.
func (s *QAServiceImpl) Ask(ctx context.Context, question string) domain.AnswerResult {
	q := strings.TrimSpace(question)
	if q == "" {
		return domain.AnswerResult{Answer: answer.WelcomeMessage, Sources: []domain.SourceRef{}}
	}
	s.logger.Info().Str("question", q).Msg("processing question")

	ranked := s.scorer.Score(q, s.store.Chunks(), s.opts.TopK)
	if len(ranked) == 0 {
		s.logger.Info().Msg("no relevant sections found")
		return domain.AnswerResult{Answer: answer.NoResultsMessage, Sources: []domain.SourceRef{}}
	}
	s.logger.Info().Int("sections", len(ranked)).Float64("best_score", ranked[0].Score).Msg("found relevant sections")

	res := domain.AnswerResult{Sources: BuildSources(ranked, s.opts.SourceChunks, s.opts.PreviewChars)}
	contextText := BuildContext(ranked, s.opts.ContextChunks, s.opts.ContextChars)
	if text, ok := s.generator.Generate(ctx, q, contextText); ok && utf8.RuneCountInString(strings.TrimSpace(text)) > generation.MinAnswerLength {
		s.logger.Info().Msg("using generated response")
		res.Answer = text
		res.Generated = true
		return res
	}
	s.logger.Info().Msg("using document-based fallback response")
	res.Answer = s.composer.Compose(q, ranked)
	return res
}

// BuildContext labels and joins the first n chunks, each cut to chars characters.
func BuildContext(ranked []domain.ScoredChunk, n, chars int) string {
	top := head(ranked, n)
	parts := make([]string, 0, len(top))
	for i, r := range top {
		parts = append(parts, fmt.Sprintf("[Context %d] %s", i+1, answer.Truncate(r.Chunk.Text, chars)))
	}
	return strings.Join(parts, "\n\n")
}

// BuildSources cites the first n chunks with a one-decimal score and a preview.
func BuildSources(ranked []domain.ScoredChunk, n, previewChars int) []domain.SourceRef {
	top := head(ranked, n)
	out := make([]domain.SourceRef, 0, len(top))
	for _, r := range top {
		out = append(out, domain.SourceRef{
			Source:  r.Chunk.Source,
			Score:   math.Round(r.Score*10) / 10,
			Preview: answer.Truncate(r.Chunk.Text, previewChars) + "...",
		})
	}
	return out
}

func head(ranked []domain.ScoredChunk, n int) []domain.ScoredChunk {
	if n >= 0 && n < len(ranked) {
		return ranked[:n]
	}
	return ranked
}
