package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sanctionwatch/internal/entity/models"
	platformstrings "sanctionwatch/pkg/platform/strings"
)

type interpolNotice struct {
	EntityID       string      `json:"entityId"`
	Forename       string      `json:"forename"`
	Name           string      `json:"name"`
	DateOfBirth    string      `json:"dateOfBirth"`
	CountryOfBirth string      `json:"countryOfBirth"`
	PlaceOfBirth   string      `json:"placeOfBirth"`
	Nationality    stringOrSet `json:"nationality"`
	Charges        string      `json:"charges"`
	WarrantType    string      `json:"warrantType"`
	IssuingCountry string      `json:"issuingCountry"`
	PublishedAt    string      `json:"publishedAt"`
}

// stringOrSet accepts a JSON string, an array of strings, or null.
type stringOrSet []string

func (s *stringOrSet) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*s = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		*s = values
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*s = []string{value}
	return nil
}

// InterpolAdapter normalizes Interpol Red Notice records. Every notice
// describes a wanted individual, so the entity type is fixed.
type InterpolAdapter struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewInterpol(fetcher Fetcher, logger *slog.Logger) *InterpolAdapter {
	return &InterpolAdapter{fetcher: fetcher, logger: logger}
}

func (a *InterpolAdapter) Source() models.ListSource { return models.SourceInterpol }

func (a *InterpolAdapter) FetchAndParse(ctx context.Context, syncTime time.Time) ([]models.SanctionedEntity, error) {
	raw, err := a.fetcher.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	var notices []interpolNotice
	if err := json.Unmarshal(raw, &notices); err != nil {
		return nil, fmt.Errorf("parse red notices: %w", err)
	}

	entities := make([]models.SanctionedEntity, 0, len(notices))
	for _, notice := range notices {
		entities = append(entities, a.normalize(notice, syncTime))
	}
	return entities, nil
}

func (a *InterpolAdapter) normalize(notice interpolNotice, syncTime time.Time) models.SanctionedEntity {
	name := platformstrings.JoinNonEmpty(" ", notice.Forename, notice.Name)
	if name == "" {
		name = fmt.Sprintf("Unknown Subject %s", notice.EntityID)
	}

	var dateOfBirth *time.Time
	if notice.DateOfBirth != "" {
		if parsed, ok := parseFlexibleDate(notice.DateOfBirth); ok {
			dateOfBirth = &parsed
		} else {
			a.logger.Warn("invalid date of birth", "source", models.SourceInterpol, "entity_id", notice.EntityID, "value", notice.DateOfBirth)
		}
	}

	dateAdded := syncTime
	if notice.PublishedAt != "" {
		if parsed, ok := parseFlexibleDate(notice.PublishedAt); ok {
			dateAdded = parsed
		} else {
			a.logger.Warn("invalid publish date", "source", models.SourceInterpol, "entity_id", notice.EntityID, "value", notice.PublishedAt)
		}
	}

	placeOfBirth := platformstrings.JoinNonEmpty(", ", notice.PlaceOfBirth, notice.CountryOfBirth)

	var reason string
	switch {
	case notice.Charges != "" && notice.WarrantType != "":
		reason = fmt.Sprintf("%s: %s", notice.WarrantType, notice.Charges)
	case notice.Charges != "":
		reason = notice.Charges
	default:
		reason = notice.WarrantType
	}

	var additionalInfo string
	if notice.IssuingCountry != "" {
		additionalInfo = fmt.Sprintf("Red Notice issued by: %s", notice.IssuingCountry)
		if notice.PublishedAt != "" {
			additionalInfo += fmt.Sprintf(" (Published: %s)", notice.PublishedAt)
		}
	}

	return models.SanctionedEntity{
		ListSource:      models.SourceInterpol,
		EntityType:      models.TypeIndividual,
		Name:            name,
		ReferenceNumber: notice.EntityID,
		DateOfBirth:     dateOfBirth,
		PlaceOfBirth:    placeOfBirth,
		Nationality:     strings.Join(notice.Nationality, ", "),
		Reason:          reason,
		AdditionalInfo:  additionalInfo,
		DateAdded:       dateAdded,
	}
}
