//go:build integration

package history_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"sanctionwatch/internal/sync/history"
	"sanctionwatch/internal/sync/models"
	"sanctionwatch/pkg/testutil/containers"
)

type PostgresHistorySuite struct {
	suite.Suite
	db    *sql.DB
	store *history.PostgresStore
}

func TestPostgresHistorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresHistorySuite))
}

func (s *PostgresHistorySuite) SetupSuite() {
	s.db = containers.NewPostgresDB(s.T())
	s.store = history.NewPostgres(s.db)
}

func (s *PostgresHistorySuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE sync_history`)
	s.Require().NoError(err)
}

func (s *PostgresHistorySuite) TestAppendAndRecent() {
	ctx := context.Background()
	records := 42

	err := s.store.Append(ctx, models.HistoryEntry{
		Source:          "OFAC",
		Status:          models.StatusSuccess,
		Message:         "OFAC data synchronization completed successfully. 42 entities processed.",
		RecordsAffected: &records,
	})
	s.Require().NoError(err)

	entries, err := s.store.Recent(ctx, 20)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal("OFAC", entries[0].Source)
	s.Equal(models.StatusSuccess, entries[0].Status)
	s.Require().NotNil(entries[0].RecordsAffected)
	s.Equal(42, *entries[0].RecordsAffected)
	s.False(entries[0].CreatedAt.IsZero())
}

func (s *PostgresHistorySuite) TestRecentOrdersNewestFirstAndLimits() {
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 25; i++ {
		err := s.store.Append(ctx, models.HistoryEntry{
			Source:    "UN",
			Status:    models.StatusSuccess,
			Message:   fmt.Sprintf("run %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	entries, err := s.store.Recent(ctx, 20)
	s.Require().NoError(err)
	s.Require().Len(entries, 20)
	s.Equal("run 24", entries[0].Message)
	s.Equal("run 5", entries[19].Message)
}

func (s *PostgresHistorySuite) TestNullRecordsAffected() {
	ctx := context.Background()

	err := s.store.Append(ctx, models.HistoryEntry{
		Source:  "EU",
		Status:  models.StatusFailure,
		Message: "EU sync failed: fetch feed: connection refused",
	})
	s.Require().NoError(err)

	entries, err := s.store.Recent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].RecordsAffected)
}
