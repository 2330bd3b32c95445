package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"docqa/internal/domain"
)

// ErrAlreadyLoaded is returned when Load is called on a populated store.
var ErrAlreadyLoaded = errors.New("store already loaded")

// LoadReport summarizes a Load call.
type LoadReport struct {
	Records int
	Skipped int
	Chunks  int
}

func (r LoadReport) String() string {
	return fmt.Sprintf("Loaded %d chunks from %d records (%d skipped)", r.Chunks, r.Records, r.Skipped)
}

// Store is an in-memory chunk list that is fixed once loaded.
type Store struct {
	mu     sync.RWMutex
	loaded bool
	chunks []domain.Chunk
	logger zerolog.Logger
}

func NewStore(logger zerolog.Logger) *Store { return &Store{logger: logger} }

// Load reads every record file matched by the given paths or glob patterns.
// Unreadable and malformed records are logged and skipped.
func (s *Store) Load(patterns []string) (LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return LoadReport{}, ErrAlreadyLoaded
	}
	s.loaded = true

	var report LoadReport
	for _, path := range expand(patterns) {
		data, err := os.ReadFile(path)
		if err != nil {
			report.Skipped++
			s.logger.Warn().Err(err).Str("record", path).Msg("could not read record")
			continue
		}
		chunks, err := ParseRecord(filepath.Base(path), data)
		if err != nil {
			report.Skipped++
			s.logger.Warn().Err(err).Str("record", path).Msg("could not load record")
			continue
		}
		report.Records++
		s.chunks = append(s.chunks, chunks...)
	}
	report.Chunks = len(s.chunks)
	s.logger.Info().Int("chunks", report.Chunks).Int("records", report.Records).Int("skipped", report.Skipped).Msg("document chunks loaded")
	return report, nil
}

// Chunks returns the loaded chunks in ingestion order. Callers must not modify the slice.
func (s *Store) Chunks() []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[:len(s.chunks):len(s.chunks)]
}

// Len returns the number of loaded chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func expand(patterns []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, p := range patterns {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			if !strings.HasSuffix(strings.ToLower(m), ".json") {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
