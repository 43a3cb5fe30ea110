package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctionwatch/internal/entity/cache"
	"sanctionwatch/internal/entity/models"
	"sanctionwatch/internal/entity/service"
	"sanctionwatch/internal/entity/store"
	dErrors "sanctionwatch/pkg/domain-errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed(t *testing.T, s *store.InMemoryStore, entities ...models.SanctionedEntity) {
	t.Helper()
	require.NoError(t, s.InsertBatch(context.Background(), entities))
}

func TestSearchDefaults(t *testing.T) {
	st := store.NewInMemory()
	seed(t, st,
		models.SanctionedEntity{Name: "Alpha", ListSource: models.SourceOFAC, EntityType: models.TypeEntity, ReferenceNumber: "1"},
		models.SanctionedEntity{Name: "Bravo", ListSource: models.SourceUN, EntityType: models.TypeIndividual, ReferenceNumber: "2"},
	)
	svc := service.New(st, testLogger())

	result, err := svc.Search(context.Background(), models.SearchFilters{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 20, result.PageSize)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.TotalPages)
	require.Len(t, result.Results, 2)
	// ordered by name ascending
	assert.Equal(t, "Alpha", result.Results[0].Name)
	assert.Equal(t, "Bravo", result.Results[1].Name)
}

func TestSearchPagination(t *testing.T) {
	st := store.NewInMemory()
	names := []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}
	for i, name := range names {
		seed(t, st, models.SanctionedEntity{
			Name: name, ListSource: models.SourceOFAC,
			EntityType: models.TypeEntity, ReferenceNumber: names[i],
		})
	}
	svc := service.New(st, testLogger())

	result, err := svc.Search(context.Background(), models.SearchFilters{Page: 2, PageSize: 2})
	require.NoError(t, err)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.TotalPages)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "Charlie", result.Results[0].Name)
	assert.Equal(t, "Delta", result.Results[1].Name)
}

func TestSearchPageSizeCap(t *testing.T) {
	svc := service.New(store.NewInMemory(), testLogger())

	_, err := svc.Search(context.Background(), models.SearchFilters{PageSize: 500})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestSearchFilters(t *testing.T) {
	st := store.NewInMemory()
	seed(t, st,
		models.SanctionedEntity{Name: "Ivan Petrov", ListSource: models.SourceOFAC, EntityType: models.TypeIndividual, Nationality: "Russia", ReferenceNumber: "1"},
		models.SanctionedEntity{Name: "Ivan Ivanov", ListSource: models.SourceEU, EntityType: models.TypeIndividual, Nationality: "Belarus", ReferenceNumber: "2"},
		models.SanctionedEntity{Name: "Petrov Holdings", ListSource: models.SourceOFAC, EntityType: models.TypeEntity, Nationality: "Russia", ReferenceNumber: "3"},
	)
	svc := service.New(st, testLogger())

	t.Run("name match is case-insensitive substring", func(t *testing.T) {
		result, err := svc.Search(context.Background(), models.SearchFilters{Name: "petrov"})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	})

	t.Run("filters combine conjunctively", func(t *testing.T) {
		result, err := svc.Search(context.Background(), models.SearchFilters{
			Name:        "petrov",
			ListSources: []models.ListSource{models.SourceOFAC},
			EntityTypes: []models.EntityType{models.TypeIndividual},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "Ivan Petrov", result.Results[0].Name)
	})

	t.Run("nationality filter", func(t *testing.T) {
		result, err := svc.Search(context.Background(), models.SearchFilters{
			Nationalities: []string{"Belarus"},
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, "Ivan Ivanov", result.Results[0].Name)
	})
}

func TestStatsUsesCache(t *testing.T) {
	st := store.NewInMemory()
	seed(t, st,
		models.SanctionedEntity{Name: "Alpha", ListSource: models.SourceOFAC, EntityType: models.TypeEntity, ReferenceNumber: "1"},
	)
	mem := cache.NewInMemoryStatsCache()
	svc := service.New(st, testLogger(), service.WithCache(mem))

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalRecords)
	assert.Equal(t, 1, mem.Sets)

	// second read is served from the cache
	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.TotalRecords, second.TotalRecords)
	assert.Equal(t, 1, mem.Sets)

	svc.InvalidateStats(context.Background())
	assert.Equal(t, 1, mem.Invalidates)

	_, err = svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, mem.Sets)
}

func TestStatsShape(t *testing.T) {
	st := store.NewInMemory()
	now := time.Now().UTC()
	seed(t, st,
		models.SanctionedEntity{Name: "A", ListSource: models.SourceOFAC, EntityType: models.TypeIndividual, ReferenceNumber: "1", DateAdded: now},
		models.SanctionedEntity{Name: "B", ListSource: models.SourceOFAC, EntityType: models.TypeEntity, ReferenceNumber: "2", DateAdded: now},
		models.SanctionedEntity{Name: "C", ListSource: models.SourceUN, EntityType: models.TypeIndividual, ReferenceNumber: "3", DateAdded: now},
	)
	svc := service.New(st, testLogger())

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, 2, stats.CountsBySource[models.SourceOFAC])
	assert.Equal(t, 1, stats.CountsBySource[models.SourceUN])
	// sources with no records still appear with zero counts
	assert.Contains(t, stats.CountsBySource, models.SourceEU)
	assert.Contains(t, stats.CountsBySource, models.SourceInterpol)
	assert.Equal(t, 0, stats.CountsBySource[models.SourceEU])
	assert.Equal(t, 2, stats.CountsByType[models.TypeIndividual])
	assert.NotNil(t, stats.LastUpdatedBySource[models.SourceOFAC])
	assert.Nil(t, stats.LastUpdatedBySource[models.SourceEU])
}

func TestGetNotFound(t *testing.T) {
	svc := service.New(store.NewInMemory(), testLogger())

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
