package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanctionwatch/internal/entity/models"
)

func TestEUAdapterFixture(t *testing.T) {
	syncTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	adapter := NewEU(NewFixtureFetcher(EUFixture), discardLogger())

	assert.Equal(t, models.SourceEU, adapter.Source())

	entities, err := adapter.FetchAndParse(context.Background(), syncTime)
	require.NoError(t, err)
	require.Len(t, entities, 5)

	t.Run("strong alias becomes the primary name", func(t *testing.T) {
		e := entities[0]
		assert.Equal(t, "Vladimir Petrov", e.Name)
		assert.Equal(t, "EU.001.2024", e.ReferenceNumber)
		assert.Equal(t, models.TypeIndividual, e.EntityType)
		assert.Equal(t, []string{"Vladimir Petroff"}, e.Aliases)
		assert.Equal(t, "St. Petersburg, Russia", e.PlaceOfBirth)
		assert.Equal(t, "Russian", e.Nationality)
		assert.Equal(t, "Designated under Council Regulation (EU) 269/2014", e.AdditionalInfo)
		assert.Equal(t, syncTime, e.DateAdded)
		require.NotNil(t, e.DateOfBirth)
		assert.Equal(t, time.Date(1975, 3, 15, 0, 0, 0, 0, time.UTC), *e.DateOfBirth)
		require.Len(t, e.Addresses, 1)
		assert.Equal(t, "101000", e.Addresses[0].PostalCode)
	})

	t.Run("non-person subject type maps to ENTITY", func(t *testing.T) {
		e := entities[1]
		assert.Equal(t, "Omega Industries Ltd", e.Name)
		assert.Equal(t, models.TypeEntity, e.EntityType)
		assert.Nil(t, e.DateOfBirth)
	})

	t.Run("record without weak aliases has none", func(t *testing.T) {
		assert.Equal(t, "Ahmad Hassan Al-Rashid", entities[2].Name)
		assert.Empty(t, entities[2].Aliases)
	})
}

func TestEUAdapterStrongAliasListedSecond(t *testing.T) {
	const xmlData = `<export>
  <sanctionEntity euReferenceNumber="EU.104.2024">
    <subjectType code="P"/>
    <nameAlias strong="false">
      <wholeName>Aleksandr Volkov</wholeName>
    </nameAlias>
    <nameAlias strong="true">
      <wholeName>Alexander Volkov</wholeName>
    </nameAlias>
  </sanctionEntity>
</export>`

	adapter := NewEU(NewFixtureFetcher([]byte(xmlData)), discardLogger())
	entities, err := adapter.FetchAndParse(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, entities, 1)

	// the strong alias is promoted regardless of position; the weak
	// spelling that preceded it stays an alias
	e := entities[0]
	assert.Equal(t, "Alexander Volkov", e.Name)
	assert.Equal(t, []string{"Aleksandr Volkov"}, e.Aliases)
}

func TestEUAdapterSkipsBrokenRecords(t *testing.T) {
	const xmlData = `<export>
  <sanctionEntity>
    <subjectType code="P"/>
    <nameAlias strong="true">
      <wholeName>No Reference</wholeName>
    </nameAlias>
  </sanctionEntity>
  <sanctionEntity euReferenceNumber="EU.100.2024">
    <subjectType code="P"/>
  </sanctionEntity>
  <sanctionEntity euReferenceNumber="EU.101.2024">
    <subjectType code="P"/>
    <nameAlias strong="false">
      <wholeName>Fallback Only</wholeName>
    </nameAlias>
  </sanctionEntity>
</export>`

	adapter := NewEU(NewFixtureFetcher([]byte(xmlData)), discardLogger())
	entities, err := adapter.FetchAndParse(context.Background(), time.Now())
	require.NoError(t, err)

	// missing reference and missing name are skipped, not fatal
	require.Len(t, entities, 1)
	e := entities[0]
	assert.Equal(t, "EU.101.2024", e.ReferenceNumber)
	// the fallback name is promoted and removed from the aliases
	assert.Equal(t, "Fallback Only", e.Name)
	assert.Empty(t, e.Aliases)
}

func TestEUAdapterInvalidBirthdate(t *testing.T) {
	const xmlData = `<export>
  <sanctionEntity euReferenceNumber="EU.102.2024">
    <subjectType code="P"/>
    <nameAlias strong="true">
      <wholeName>Bad Date</wholeName>
    </nameAlias>
    <birthdate>
      <day>31</day>
      <month>02</month>
      <year>1980</year>
    </birthdate>
  </sanctionEntity>
  <sanctionEntity euReferenceNumber="EU.103.2024">
    <subjectType code="P"/>
    <nameAlias strong="true">
      <wholeName>Partial Date</wholeName>
    </nameAlias>
    <birthdate>
      <year>1980</year>
    </birthdate>
  </sanctionEntity>
</export>`

	adapter := NewEU(NewFixtureFetcher([]byte(xmlData)), discardLogger())
	entities, err := adapter.FetchAndParse(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Nil(t, entities[0].DateOfBirth)
	assert.Nil(t, entities[1].DateOfBirth)
}
