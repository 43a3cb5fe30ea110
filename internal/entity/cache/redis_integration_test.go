//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctionwatch/internal/entity/cache"
	"sanctionwatch/internal/entity/models"
	"sanctionwatch/pkg/testutil/containers"
)

func TestRedisStatsCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	statsCache := cache.NewRedisStatsCache(rc.Client, time.Minute)

	t.Run("miss returns nil without error", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		got, err := statsCache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("set then get round-trips", func(t *testing.T) {
		require.NoError(t, rc.FlushAll(ctx))
		now := time.Now().UTC().Truncate(time.Second)
		stats := &models.SourceStats{
			CountsBySource:      map[models.ListSource]int{models.SourceOFAC: 7},
			CountsByType:        map[models.EntityType]int{models.TypeIndividual: 7},
			LastUpdatedBySource: map[models.ListSource]*time.Time{models.SourceOFAC: &now},
			TotalRecords:        7,
		}
		require.NoError(t, statsCache.Set(ctx, stats))

		got, err := statsCache.Get(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, 7, got.TotalRecords)
		assert.Equal(t, 7, got.CountsBySource[models.SourceOFAC])
	})

	t.Run("invalidate drops the document", func(t *testing.T) {
		require.NoError(t, statsCache.Invalidate(ctx))
		got, err := statsCache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("corrupt entry behaves as a miss", func(t *testing.T) {
		require.NoError(t, rc.Client.Set(ctx, "sanctionwatch:admin:stats", "{not json", time.Minute).Err())
		got, err := statsCache.Get(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
