package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"sanctionwatch/internal/sync/models"
)

// InMemoryStore is a test double mirroring PostgresStore semantics.
type InMemoryStore struct {
	mu      sync.Mutex
	entries []models.HistoryEntry

	// FailAppend, when set, makes Append return that error.
	FailAppend error
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAppend != nil {
		return s.FailAppend
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, limit int) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoryEntry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

// All returns every recorded entry in append order.
func (s *InMemoryStore) All() []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}
