package auditlog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultMaxEntries = 50

// MemoryStore keeps recent entries newest-first. It backs deployments
// without a database and absorbs entries whose database write failed.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
	max     int
}

func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = defaultMaxEntries
	}
	return &MemoryStore{max: max}
}

func (s *MemoryStore) Log(_ context.Context, question, answer string, sources []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Question:  question,
		Answer:    answer,
		Sources:   strings.Join(sources, ","),
		CreatedAt: time.Now(),
	}
	s.entries = append([]Entry{entry}, s.entries...)
	if len(s.entries) > s.max {
		s.entries = s.entries[:s.max]
	}
	return nil
}

func (s *MemoryStore) Recent(_ context.Context, limit int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}
	out := make([]Entry, limit)
	copy(out, s.entries[:limit])
	return out, nil
}

// FallbackStore writes to primary and falls back to secondary when the
// primary fails, so a flaky database downgrades logging instead of losing
// it silently.
type FallbackStore struct {
	primary   Store
	secondary Store
}

func NewFallbackStore(primary, secondary Store) *FallbackStore {
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (s *FallbackStore) Log(ctx context.Context, question, answer string, sources []string) error {
	if err := s.primary.Log(ctx, question, answer, sources); err != nil {
		log.Warn().Err(err).Msg("audit log primary write failed, using fallback")
		return s.secondary.Log(ctx, question, answer, sources)
	}
	return nil
}

func (s *FallbackStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	entries, err := s.primary.Recent(ctx, limit)
	if err != nil {
		log.Warn().Err(err).Msg("audit log primary read failed, using fallback")
		return s.secondary.Recent(ctx, limit)
	}
	return entries, nil
}
