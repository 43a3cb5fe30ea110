package adapter

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sanctionwatch/internal/entity/models"
	platformstrings "sanctionwatch/pkg/platform/strings"
)

type ofacList struct {
	XMLName xml.Name    `xml:"sdnList"`
	Entries []ofacEntry `xml:"sdnEntry"`
}

type ofacEntry struct {
	UID           string            `xml:"uid"`
	FirstName     string            `xml:"firstName"`
	LastName      string            `xml:"lastName"`
	Title         string            `xml:"title"`
	SdnType       string            `xml:"sdnType"`
	Programs      []string          `xml:"programList>program"`
	Akas          []ofacAKA         `xml:"akaList>aka"`
	Addresses     []ofacAddress     `xml:"addressList>address"`
	DatesOfBirth  []ofacDateOfBirth `xml:"dateOfBirthList>dateOfBirthItem"`
	PlacesOfBirth []ofacPlace       `xml:"placeOfBirthList>placeOfBirthItem"`
	Nationalities []ofacNationality `xml:"nationalityList>nationality"`
	Remarks       string            `xml:"remarks"`
}

type ofacAKA struct {
	FirstName string `xml:"firstName"`
	LastName  string `xml:"lastName"`
}

type ofacAddress struct {
	Address1        string `xml:"address1"`
	Address2        string `xml:"address2"`
	Address3        string `xml:"address3"`
	City            string `xml:"city"`
	StateOrProvince string `xml:"stateOrProvince"`
	PostalCode      string `xml:"postalCode"`
	Country         string `xml:"country"`
}

type ofacDateOfBirth struct {
	DateOfBirth string `xml:"dateOfBirth"`
	MainEntry   bool   `xml:"mainEntry"`
}

type ofacPlace struct {
	PlaceOfBirth string `xml:"placeOfBirth"`
	MainEntry    bool   `xml:"mainEntry"`
}

type ofacNationality struct {
	Country   string `xml:"country"`
	MainEntry bool   `xml:"mainEntry"`
}

// OFACAdapter normalizes the OFAC Specially Designated Nationals list.
type OFACAdapter struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewOFAC(fetcher Fetcher, logger *slog.Logger) *OFACAdapter {
	return &OFACAdapter{fetcher: fetcher, logger: logger}
}

func (a *OFACAdapter) Source() models.ListSource { return models.SourceOFAC }

func (a *OFACAdapter) FetchAndParse(ctx context.Context, syncTime time.Time) ([]models.SanctionedEntity, error) {
	raw, err := a.fetcher.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	var list ofacList
	if err := xml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse SDN list: %w", err)
	}

	entities := make([]models.SanctionedEntity, 0, len(list.Entries))
	for _, entry := range list.Entries {
		entities = append(entities, a.normalize(entry, syncTime))
	}
	return entities, nil
}

func (a *OFACAdapter) normalize(entry ofacEntry, syncTime time.Time) models.SanctionedEntity {
	name := platformstrings.JoinNonEmpty(" ", entry.FirstName, entry.LastName)
	if name == "" {
		name = strings.TrimSpace(entry.Title)
	}
	if name == "" {
		name = fmt.Sprintf("Unknown Entity %s", entry.UID)
	}

	var aliases []string
	for _, aka := range entry.Akas {
		if alias := platformstrings.JoinNonEmpty(" ", aka.FirstName, aka.LastName); alias != "" {
			aliases = append(aliases, alias)
		}
	}
	aliases = dedupeAliases(name, aliases)

	var addresses []models.Address
	for _, addr := range entry.Addresses {
		addresses = append(addresses, models.Address{
			Address1:        strings.TrimSpace(addr.Address1),
			Address2:        strings.TrimSpace(addr.Address2),
			Address3:        strings.TrimSpace(addr.Address3),
			City:            strings.TrimSpace(addr.City),
			StateOrProvince: strings.TrimSpace(addr.StateOrProvince),
			PostalCode:      strings.TrimSpace(addr.PostalCode),
			Country:         strings.TrimSpace(addr.Country),
		})
	}

	var dateOfBirth *time.Time
	if raw := mainOFACDateOfBirth(entry.DatesOfBirth); raw != "" {
		if parsed, ok := parseFlexibleDate(raw); ok {
			dateOfBirth = &parsed
		} else {
			a.logger.Warn("invalid date of birth", "source", models.SourceOFAC, "uid", entry.UID, "value", raw)
		}
	}

	var placeOfBirth string
	if pob := mainOFACPlace(entry.PlacesOfBirth); pob != nil {
		placeOfBirth = strings.TrimSpace(pob.PlaceOfBirth)
	}

	var nationality string
	if nat := mainOFACNationality(entry.Nationalities); nat != nil {
		nationality = strings.TrimSpace(nat.Country)
	}

	reason := platformstrings.JoinNonEmpty(", ", entry.Programs...)

	entityType := models.TypeEntity
	sdnType := strings.ToLower(entry.SdnType)
	if strings.Contains(sdnType, "individual") || strings.Contains(sdnType, "person") {
		entityType = models.TypeIndividual
	}

	return models.SanctionedEntity{
		ListSource:      models.SourceOFAC,
		EntityType:      entityType,
		Name:            name,
		ReferenceNumber: entry.UID,
		Aliases:         aliases,
		Addresses:       addresses,
		DateOfBirth:     dateOfBirth,
		PlaceOfBirth:    placeOfBirth,
		Nationality:     nationality,
		Reason:          reason,
		AdditionalInfo:  strings.TrimSpace(entry.Remarks),
		DateAdded:       syncTime,
	}
}

func mainOFACDateOfBirth(items []ofacDateOfBirth) string {
	for _, item := range items {
		if item.MainEntry {
			return item.DateOfBirth
		}
	}
	if len(items) > 0 {
		return items[0].DateOfBirth
	}
	return ""
}

func mainOFACPlace(items []ofacPlace) *ofacPlace {
	for i := range items {
		if items[i].MainEntry {
			return &items[i]
		}
	}
	if len(items) > 0 {
		return &items[0]
	}
	return nil
}

func mainOFACNationality(items []ofacNationality) *ofacNationality {
	for i := range items {
		if items[i].MainEntry {
			return &items[i]
		}
	}
	if len(items) > 0 {
		return &items[0]
	}
	return nil
}
