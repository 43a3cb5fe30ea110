package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"sanctionwatch/internal/entity/models"
	platformstrings "sanctionwatch/pkg/platform/strings"
)

type euExport struct {
	XMLName  xml.Name           `xml:"export"`
	Entities []euSanctionEntity `xml:"sanctionEntity"`
}

type euSanctionEntity struct {
	ReferenceNumber string          `xml:"euReferenceNumber,attr"`
	SubjectType     euSubjectType   `xml:"subjectType"`
	NameAliases     []euNameAlias   `xml:"nameAlias"`
	Addresses       []euAddress     `xml:"address"`
	Birthdate       *euBirthdate    `xml:"birthdate"`
	PlaceOfBirth    *euPlaceOfBirth `xml:"placeOfBirth"`
	Citizenships    []euCitizenship `xml:"citizenship"`
	Reason          string          `xml:"reasonForListing"`
	Remark          string          `xml:"remark"`
}

type euSubjectType struct {
	Code string `xml:"code,attr"`
}

type euNameAlias struct {
	Strong    string `xml:"strong,attr"`
	WholeName string `xml:"wholeName"`
}

type euAddress struct {
	Street             string `xml:"street"`
	City               string `xml:"city"`
	ZipCode            string `xml:"zipCode"`
	CountryDescription string `xml:"countryDescription"`
}

type euBirthdate struct {
	Day   string `xml:"day"`
	Month string `xml:"month"`
	Year  string `xml:"year"`
}

type euPlaceOfBirth struct {
	City               string `xml:"city"`
	CountryDescription string `xml:"countryDescription"`
}

type euCitizenship struct {
	CountryDescription string `xml:"countryDescription"`
}

// EUAdapter normalizes the EU consolidated financial sanctions list.
// Records missing a reference number or any usable name are skipped,
// never fatal for the run.
type EUAdapter struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewEU(fetcher Fetcher, logger *slog.Logger) *EUAdapter {
	return &EUAdapter{fetcher: fetcher, logger: logger}
}

func (a *EUAdapter) Source() models.ListSource { return models.SourceEU }

func (a *EUAdapter) FetchAndParse(ctx context.Context, syncTime time.Time) ([]models.SanctionedEntity, error) {
	raw, err := a.fetcher.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	var export euExport
	if err := xml.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("parse sanctions export: %w", err)
	}

	entities := make([]models.SanctionedEntity, 0, len(export.Entities))
	for _, record := range export.Entities {
		entity, ok := a.normalize(record, syncTime)
		if !ok {
			continue
		}
		entities = append(entities, entity)
	}
	return entities, nil
}

func (a *EUAdapter) normalize(record euSanctionEntity, syncTime time.Time) (models.SanctionedEntity, bool) {
	reference := strings.TrimSpace(record.ReferenceNumber)
	if reference == "" {
		a.logger.Warn("skipping record without reference number", "source", models.SourceEU)
		return models.SanctionedEntity{}, false
	}

	name, aliases := euPrimaryName(record.NameAliases)
	if name == "" {
		a.logger.Warn("skipping record without any name", "source", models.SourceEU, "reference", reference)
		return models.SanctionedEntity{}, false
	}

	entityType := models.TypeEntity
	if record.SubjectType.Code == "P" {
		entityType = models.TypeIndividual
	}

	var addresses []models.Address
	for _, addr := range record.Addresses {
		addresses = append(addresses, models.Address{
			Address1:   strings.TrimSpace(addr.Street),
			City:       strings.TrimSpace(addr.City),
			PostalCode: strings.TrimSpace(addr.ZipCode),
			Country:    strings.TrimSpace(addr.CountryDescription),
		})
	}

	var dateOfBirth *time.Time
	if record.Birthdate != nil {
		if parsed, ok := a.composeBirthdate(*record.Birthdate, reference); ok {
			dateOfBirth = &parsed
		}
	}

	var placeOfBirth string
	if record.PlaceOfBirth != nil {
		placeOfBirth = platformstrings.JoinNonEmpty(", ", record.PlaceOfBirth.City, record.PlaceOfBirth.CountryDescription)
	}

	citizenships := make([]string, 0, len(record.Citizenships))
	for _, c := range record.Citizenships {
		citizenships = append(citizenships, c.CountryDescription)
	}

	return models.SanctionedEntity{
		ListSource:      models.SourceEU,
		EntityType:      entityType,
		Name:            name,
		ReferenceNumber: reference,
		Aliases:         aliases,
		Addresses:       addresses,
		DateOfBirth:     dateOfBirth,
		PlaceOfBirth:    placeOfBirth,
		Nationality:     platformstrings.JoinNonEmpty(", ", citizenships...),
		Reason:          strings.TrimSpace(record.Reason),
		AdditionalInfo:  strings.TrimSpace(record.Remark),
		DateAdded:       syncTime,
	}, true
}

// euPrimaryName picks the first strong alias as the primary name. When
// no alias is marked strong, the first alias becomes the name and is
// removed from the alias list.
func euPrimaryName(nameAliases []euNameAlias) (string, []string) {
	var (
		primary  string
		fallback string
		aliases  []string
	)
	for _, alias := range nameAliases {
		name := strings.TrimSpace(alias.WholeName)
		if name == "" {
			continue
		}
		if fallback == "" {
			fallback = name
		}
		if alias.Strong == "true" && primary == "" {
			primary = name
		} else if name != primary {
			aliases = append(aliases, name)
		}
	}

	if primary == "" && fallback != "" {
		primary = fallback
		for i, alias := range aliases {
			if alias == fallback {
				aliases = append(aliases[:i], aliases[i+1:]...)
				break
			}
		}
	}
	return primary, aliases
}

func (a *EUAdapter) composeBirthdate(b euBirthdate, reference string) (time.Time, bool) {
	day, err1 := strconv.Atoi(strings.TrimSpace(b.Day))
	month, err2 := strconv.Atoi(strings.TrimSpace(b.Month))
	year, err3 := strconv.Atoi(strings.TrimSpace(b.Year))
	if err1 != nil || err2 != nil || err3 != nil || day == 0 || month == 0 || year == 0 {
		return time.Time{}, false
	}

	composed := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	parsed, err := time.Parse("2006-01-02", composed)
	if err != nil {
		a.logger.Warn("invalid date of birth", "source", models.SourceEU, "reference", reference, "value", composed)
		return time.Time{}, false
	}
	return parsed.UTC(), true
}
