package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sanctionwatch/internal/entity/models"
	dErrors "sanctionwatch/pkg/domain-errors"
)

// InMemoryStore keeps entities in memory for unit tests. It mirrors the
// PostgresStore behavior, including name ordering and filter semantics.
type InMemoryStore struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]models.SanctionedEntity

	// FailInsert forces the next InsertBatch to fail; tests use it to
	// exercise persistence-failure paths.
	FailInsert error
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entities: make(map[uuid.UUID]models.SanctionedEntity)}
}

func (s *InMemoryStore) DeleteBySource(_ context.Context, source models.ListSource) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, e := range s.entities {
		if e.ListSource == source {
			delete(s.entities, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *InMemoryStore) InsertBatch(_ context.Context, entities []models.SanctionedEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsert != nil {
		return s.FailInsert
	}

	now := time.Now()
	for _, e := range entities {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		e.CreatedAt = now
		e.UpdatedAt = now
		s.entities[e.ID] = e
	}
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*models.SanctionedEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entities[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "entity not found")
	}
	return &e, nil
}

func (s *InMemoryStore) Search(_ context.Context, f models.SearchFilters) ([]models.SanctionedEntity, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.SanctionedEntity
	for _, e := range s.entities {
		if matchesFilters(e, f) {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })

	total := len(matches)
	offset := (f.Page - 1) * f.PageSize
	if offset >= total {
		return []models.SanctionedEntity{}, total, nil
	}
	end := min(offset+f.PageSize, total)
	return matches[offset:end], total, nil
}

func (s *InMemoryStore) Stats(_ context.Context) (*models.SourceStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &models.SourceStats{
		CountsBySource:      make(map[models.ListSource]int, len(models.ListSources)),
		CountsByType:        make(map[models.EntityType]int, len(models.EntityTypes)),
		LastUpdatedBySource: make(map[models.ListSource]*time.Time, len(models.ListSources)),
	}
	for _, src := range models.ListSources {
		stats.CountsBySource[src] = 0
		stats.LastUpdatedBySource[src] = nil
	}
	for _, et := range models.EntityTypes {
		stats.CountsByType[et] = 0
	}

	for _, e := range s.entities {
		stats.CountsBySource[e.ListSource]++
		stats.CountsByType[e.EntityType]++
		stats.TotalRecords++
		last := stats.LastUpdatedBySource[e.ListSource]
		if last == nil || e.UpdatedAt.After(*last) {
			t := e.UpdatedAt
			stats.LastUpdatedBySource[e.ListSource] = &t
		}
	}
	return stats, nil
}

// BySource lists all entities for one source, ordered by reference number.
// Test helper; the production read path goes through Search.
func (s *InMemoryStore) BySource(source models.ListSource) []models.SanctionedEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.SanctionedEntity
	for _, e := range s.entities {
		if e.ListSource == source {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReferenceNumber < out[j].ReferenceNumber })
	return out
}

// Snapshot copies the current contents so a transaction runner can roll
// back on failure.
func (s *InMemoryStore) Snapshot() map[uuid.UUID]models.SanctionedEntity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[uuid.UUID]models.SanctionedEntity, len(s.entities))
	for id, e := range s.entities {
		snap[id] = e
	}
	return snap
}

// Restore replaces the contents with a previously taken snapshot.
func (s *InMemoryStore) Restore(snap map[uuid.UUID]models.SanctionedEntity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = make(map[uuid.UUID]models.SanctionedEntity, len(snap))
	for id, e := range snap {
		s.entities[id] = e
	}
}

func matchesFilters(e models.SanctionedEntity, f models.SearchFilters) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(f.Name)) {
		return false
	}
	if len(f.ListSources) > 0 && !containsSource(f.ListSources, e.ListSource) {
		return false
	}
	if len(f.EntityTypes) > 0 && !containsType(f.EntityTypes, e.EntityType) {
		return false
	}
	if len(f.Nationalities) > 0 {
		found := false
		for _, n := range f.Nationalities {
			if e.Nationality == n {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsSource(sources []models.ListSource, s models.ListSource) bool {
	for _, candidate := range sources {
		if candidate == s {
			return true
		}
	}
	return false
}

func containsType(types []models.EntityType, t models.EntityType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
