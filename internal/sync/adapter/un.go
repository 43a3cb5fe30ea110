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

type unConsolidatedList struct {
	XMLName     xml.Name       `xml:"CONSOLIDATED_LIST"`
	Individuals []unIndividual `xml:"INDIVIDUALS>INDIVIDUAL"`
	Entities    []unEntity     `xml:"ENTITIES>ENTITY"`
}

type unIndividual struct {
	DataID          string          `xml:"DATAID"`
	DataIDAttr      string          `xml:"dataid,attr"`
	FirstName       string          `xml:"FIRST_NAME"`
	SecondName      string          `xml:"SECOND_NAME"`
	ThirdName       string          `xml:"THIRD_NAME"`
	FourthName      string          `xml:"FOURTH_NAME"`
	UNListType      string          `xml:"UN_LIST_TYPE"`
	ReferenceNumber string          `xml:"REFERENCE_NUMBER"`
	ListedOn        string          `xml:"LISTED_ON"`
	Comments        string          `xml:"COMMENTS1"`
	Designations    []unValue       `xml:"DESIGNATION>VALUE"`
	Nationalities   []unValue       `xml:"NATIONALITY>VALUE"`
	DatesOfBirth    []unDateOfBirth `xml:"INDIVIDUAL_DATE_OF_BIRTH"`
	PlacesOfBirth   []unPlace       `xml:"INDIVIDUAL_PLACE_OF_BIRTH"`
	Aliases         []unAlias       `xml:"INDIVIDUAL_ALIAS"`
	Addresses       []unAddress     `xml:"INDIVIDUAL_ADDRESS"`
}

type unEntity struct {
	DataID          string      `xml:"DATAID"`
	DataIDAttr      string      `xml:"dataid,attr"`
	FirstName       string      `xml:"FIRST_NAME"`
	SecondName      string      `xml:"SECOND_NAME"`
	ThirdName       string      `xml:"THIRD_NAME"`
	FourthName      string      `xml:"FOURTH_NAME"`
	UNListType      string      `xml:"UN_LIST_TYPE"`
	ReferenceNumber string      `xml:"REFERENCE_NUMBER"`
	ListedOn        string      `xml:"LISTED_ON"`
	Comments        string      `xml:"COMMENTS1"`
	Aliases         []unAlias   `xml:"ENTITY_ALIAS"`
	Addresses       []unAddress `xml:"ENTITY_ADDRESS"`
}

type unValue struct {
	Value string `xml:",chardata"`
}

type unAlias struct {
	AliasName string `xml:"ALIAS_NAME"`
	Quality   string `xml:"QUALITY"`
}

type unAddress struct {
	Street        string `xml:"STREET"`
	City          string `xml:"CITY"`
	StateProvince string `xml:"STATE_PROVINCE"`
	Country       string `xml:"COUNTRY"`
}

type unDateOfBirth struct {
	Date       string `xml:"DATE"`
	TypeOfDate string `xml:"TYPE_OF_DATE"`
}

type unPlace struct {
	Value string `xml:"VALUE"`
}

// UNAdapter normalizes the UN Security Council consolidated list.
type UNAdapter struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewUN(fetcher Fetcher, logger *slog.Logger) *UNAdapter {
	return &UNAdapter{fetcher: fetcher, logger: logger}
}

func (a *UNAdapter) Source() models.ListSource { return models.SourceUN }

func (a *UNAdapter) FetchAndParse(ctx context.Context, syncTime time.Time) ([]models.SanctionedEntity, error) {
	raw, err := a.fetcher.FetchRaw(ctx)
	if err != nil {
		return nil, err
	}

	var list unConsolidatedList
	if err := xml.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("parse consolidated list: %w", err)
	}

	entities := make([]models.SanctionedEntity, 0, len(list.Individuals)+len(list.Entities))
	for _, individual := range list.Individuals {
		entities = append(entities, a.normalizeIndividual(individual, syncTime))
	}
	for _, entity := range list.Entities {
		entities = append(entities, a.normalizeEntity(entity, syncTime))
	}
	return entities, nil
}

func (a *UNAdapter) normalizeIndividual(in unIndividual, syncTime time.Time) models.SanctionedEntity {
	// DATAID appears as a child element in the published list, but some
	// historical exports carried it as an attribute.
	dataID := firstNonEmpty(in.DataID, in.DataIDAttr)

	name := platformstrings.JoinNonEmpty(" ", in.FirstName, in.SecondName, in.ThirdName, in.FourthName)
	if name == "" {
		name = fmt.Sprintf("Unknown Individual %s", dataID)
	}

	var dateOfBirth *time.Time
	if len(in.DatesOfBirth) > 0 && in.DatesOfBirth[0].Date != "" {
		if parsed, ok := parseFlexibleDate(in.DatesOfBirth[0].Date); ok {
			dateOfBirth = &parsed
		} else {
			a.logger.Warn("invalid date of birth", "source", models.SourceUN, "dataid", dataID, "value", in.DatesOfBirth[0].Date)
		}
	}

	var placeOfBirth string
	if len(in.PlacesOfBirth) > 0 {
		placeOfBirth = strings.TrimSpace(in.PlacesOfBirth[0].Value)
	}

	reason := in.UNListType
	if reason == "" {
		reason = joinUNValues(in.Designations)
	}

	return models.SanctionedEntity{
		ListSource:      models.SourceUN,
		EntityType:      models.TypeIndividual,
		Name:            name,
		ReferenceNumber: unReferenceNumber(in.ReferenceNumber, dataID),
		Aliases:         unAliasNames(name, in.Aliases),
		Addresses:       unMapAddresses(in.Addresses),
		DateOfBirth:     dateOfBirth,
		PlaceOfBirth:    placeOfBirth,
		Nationality:     joinUNValues(in.Nationalities),
		Reason:          reason,
		AdditionalInfo:  strings.TrimSpace(in.Comments),
		DateAdded:       a.listedOn(in.ListedOn, dataID, syncTime),
	}
}

func (a *UNAdapter) normalizeEntity(in unEntity, syncTime time.Time) models.SanctionedEntity {
	dataID := firstNonEmpty(in.DataID, in.DataIDAttr)

	name := platformstrings.JoinNonEmpty(" ", in.FirstName, in.SecondName, in.ThirdName, in.FourthName)
	if name == "" {
		name = fmt.Sprintf("Unknown Entity %s", dataID)
	}

	return models.SanctionedEntity{
		ListSource:      models.SourceUN,
		EntityType:      models.TypeEntity,
		Name:            name,
		ReferenceNumber: unReferenceNumber(in.ReferenceNumber, dataID),
		Aliases:         unAliasNames(name, in.Aliases),
		Addresses:       unMapAddresses(in.Addresses),
		Reason:          in.UNListType,
		AdditionalInfo:  strings.TrimSpace(in.Comments),
		DateAdded:       a.listedOn(in.ListedOn, dataID, syncTime),
	}
}

// listedOn falls back to the sync time when LISTED_ON is absent or not
// a recognizable date.
func (a *UNAdapter) listedOn(raw, dataID string, syncTime time.Time) time.Time {
	if raw == "" {
		return syncTime
	}
	parsed, ok := parseFlexibleDate(raw)
	if !ok {
		a.logger.Warn("invalid listing date", "source", models.SourceUN, "dataid", dataID, "value", raw)
		return syncTime
	}
	return parsed
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func unReferenceNumber(reference, dataID string) string {
	if strings.TrimSpace(reference) != "" {
		return strings.TrimSpace(reference)
	}
	return dataID
}

func unAliasNames(name string, aliases []unAlias) []string {
	out := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		out = append(out, alias.AliasName)
	}
	return dedupeAliases(name, out)
}

func unMapAddresses(addresses []unAddress) []models.Address {
	var out []models.Address
	for _, addr := range addresses {
		mapped := models.Address{
			Address1:        strings.TrimSpace(addr.Street),
			City:            strings.TrimSpace(addr.City),
			StateOrProvince: strings.TrimSpace(addr.StateProvince),
			Country:         strings.TrimSpace(addr.Country),
		}
		if mapped == (models.Address{}) {
			continue
		}
		out = append(out, mapped)
	}
	return out
}

func joinUNValues(values []unValue) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, v.Value)
	}
	return platformstrings.JoinNonEmpty(", ", parts...)
}
