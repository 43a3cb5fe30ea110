//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"sanctionwatch/internal/entity/models"
	"sanctionwatch/internal/entity/store"
	dErrors "sanctionwatch/pkg/domain-errors"
	txcontext "sanctionwatch/pkg/platform/tx"
	"sanctionwatch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.db = containers.NewPostgresDB(s.T())
	s.store = store.NewPostgres(s.db, 1000)
}

func (s *PostgresStoreSuite) SetupTest() {
	_, err := s.db.Exec(`TRUNCATE sanctioned_entities`)
	s.Require().NoError(err)
}

func testEntity(source models.ListSource, ref, name string) models.SanctionedEntity {
	return models.SanctionedEntity{
		ListSource:      source,
		EntityType:      models.TypeIndividual,
		Name:            name,
		ReferenceNumber: ref,
		DateAdded:       time.Now().UTC().Truncate(time.Second),
	}
}

func (s *PostgresStoreSuite) TestInsertAndFindByID() {
	ctx := context.Background()
	dob := time.Date(1975, 3, 15, 0, 0, 0, 0, time.UTC)
	id := uuid.New()

	entity := testEntity(models.SourceOFAC, "10001", "Ivan Petrov")
	entity.ID = id
	entity.Aliases = []string{"Ivan Petroff", "Grozny"}
	entity.Addresses = []models.Address{{Address1: "Lenina 5", City: "Moscow", Country: "Russia"}}
	entity.DateOfBirth = &dob
	entity.PlaceOfBirth = "Moscow, Russia"
	entity.Nationality = "Russia"
	entity.Reason = "SDGT, IRGC"
	entity.AdditionalInfo = "Linked to sanctioned networks."

	s.Require().NoError(s.store.InsertBatch(ctx, []models.SanctionedEntity{entity}))

	got, err := s.store.FindByID(ctx, id)
	s.Require().NoError(err)
	s.Equal("Ivan Petrov", got.Name)
	s.Equal([]string{"Ivan Petroff", "Grozny"}, got.Aliases)
	s.Require().Len(got.Addresses, 1)
	s.Equal("Moscow", got.Addresses[0].City)
	s.Require().NotNil(got.DateOfBirth)
	s.True(dob.Equal(*got.DateOfBirth))
	s.Equal("SDGT, IRGC", got.Reason)
}

func (s *PostgresStoreSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(context.Background(), uuid.New())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PostgresStoreSuite) TestDeleteBySourceOnlyTouchesThatSource() {
	ctx := context.Background()
	s.Require().NoError(s.store.InsertBatch(ctx, []models.SanctionedEntity{
		testEntity(models.SourceOFAC, "1", "Alpha"),
		testEntity(models.SourceOFAC, "2", "Bravo"),
		testEntity(models.SourceUN, "3", "Charlie"),
	}))

	deleted, err := s.store.DeleteBySource(ctx, models.SourceOFAC)
	s.Require().NoError(err)
	s.EqualValues(2, deleted)

	_, total, err := s.store.Search(ctx, models.SearchFilters{Page: 1, PageSize: 20})
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *PostgresStoreSuite) TestSearchFiltersAndPagination() {
	ctx := context.Background()
	entities := []models.SanctionedEntity{
		testEntity(models.SourceOFAC, "1", "Ivan Petrov"),
		testEntity(models.SourceEU, "2", "Ivan Ivanov"),
		testEntity(models.SourceOFAC, "3", "Petrov Holdings"),
	}
	entities[0].Nationality = "Russia"
	entities[1].Nationality = "Belarus"
	entities[2].EntityType = models.TypeEntity

	s.Require().NoError(s.store.InsertBatch(ctx, entities))

	results, total, err := s.store.Search(ctx, models.SearchFilters{
		Name: "petrov", Page: 1, PageSize: 20,
	})
	s.Require().NoError(err)
	s.Equal(2, total)
	// ordered by name ascending
	s.Equal("Ivan Petrov", results[0].Name)
	s.Equal("Petrov Holdings", results[1].Name)

	results, total, err = s.store.Search(ctx, models.SearchFilters{
		ListSources: []models.ListSource{models.SourceOFAC},
		EntityTypes: []models.EntityType{models.TypeIndividual},
		Page:        1, PageSize: 20,
	})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal("Ivan Petrov", results[0].Name)

	results, total, err = s.store.Search(ctx, models.SearchFilters{
		Nationalities: []string{"Belarus"}, Page: 1, PageSize: 20,
	})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal("Ivan Ivanov", results[0].Name)
}

func (s *PostgresStoreSuite) TestSearchPaginationWindow() {
	ctx := context.Background()
	var entities []models.SanctionedEntity
	for i := 0; i < 25; i++ {
		entities = append(entities, testEntity(models.SourceUN, fmt.Sprintf("ref-%02d", i), fmt.Sprintf("Subject %02d", i)))
	}
	s.Require().NoError(s.store.InsertBatch(ctx, entities))

	results, total, err := s.store.Search(ctx, models.SearchFilters{Page: 2, PageSize: 10})
	s.Require().NoError(err)
	s.Equal(25, total)
	s.Require().Len(results, 10)
	s.Equal("Subject 10", results[0].Name)
}

func (s *PostgresStoreSuite) TestStats() {
	ctx := context.Background()
	s.Require().NoError(s.store.InsertBatch(ctx, []models.SanctionedEntity{
		testEntity(models.SourceOFAC, "1", "Alpha"),
		testEntity(models.SourceOFAC, "2", "Bravo"),
		testEntity(models.SourceUN, "3", "Charlie"),
	}))

	stats, err := s.store.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(3, stats.TotalRecords)
	s.Equal(2, stats.CountsBySource[models.SourceOFAC])
	s.Equal(0, stats.CountsBySource[models.SourceEU])
	s.Equal(3, stats.CountsByType[models.TypeIndividual])
	s.NotNil(stats.LastUpdatedBySource[models.SourceOFAC])
	s.Nil(stats.LastUpdatedBySource[models.SourceInterpol])
}

func (s *PostgresStoreSuite) TestDuplicateReferenceNumberRejected() {
	ctx := context.Background()
	s.Require().NoError(s.store.InsertBatch(ctx, []models.SanctionedEntity{
		testEntity(models.SourceOFAC, "dup", "First"),
	}))
	err := s.store.InsertBatch(ctx, []models.SanctionedEntity{
		testEntity(models.SourceOFAC, "dup", "Second"),
	})
	s.Require().Error(err)

	// same reference under a different source is fine
	s.Require().NoError(s.store.InsertBatch(ctx, []models.SanctionedEntity{
		testEntity(models.SourceEU, "dup", "Third"),
	}))
}

// TestTransactionRollback verifies the stores join a transaction
// carried on the context, so a failed replace leaves prior rows
// intact.
func (s *PostgresStoreSuite) TestTransactionRollback() {
	ctx := context.Background()
	s.Require().NoError(s.store.InsertBatch(ctx, []models.SanctionedEntity{
		testEntity(models.SourceOFAC, "1", "Alpha"),
		testEntity(models.SourceOFAC, "2", "Bravo"),
	}))

	tx, err := s.db.BeginTx(ctx, nil)
	s.Require().NoError(err)
	txCtx := txcontext.WithTx(ctx, tx)

	_, err = s.store.DeleteBySource(txCtx, models.SourceOFAC)
	s.Require().NoError(err)
	s.Require().NoError(s.store.InsertBatch(txCtx, []models.SanctionedEntity{
		testEntity(models.SourceOFAC, "3", "Charlie"),
	}))
	s.Require().NoError(tx.Rollback())

	results, total, err := s.store.Search(ctx, models.SearchFilters{Page: 1, PageSize: 20})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Equal("Alpha", results[0].Name)
}
