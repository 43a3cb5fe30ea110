// Package models defines the canonical sanctioned-entity record every
// watchlist source is normalized into.
package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "sanctionwatch/pkg/domain-errors"
)

// ListSource identifies which watchlist a record came from. Immutable once
// written; it is the partition key for sync replacement.
type ListSource string

const (
	SourceOFAC     ListSource = "OFAC"
	SourceUN       ListSource = "UN"
	SourceEU       ListSource = "EU"
	SourceInterpol ListSource = "INTERPOL"
)

// ListSources enumerates every watchlist in the fixed order syncs and
// summaries report them.
var ListSources = []ListSource{SourceOFAC, SourceUN, SourceEU, SourceInterpol}

// ParseListSource validates a caller-supplied source name.
func ParseListSource(s string) (ListSource, error) {
	src := ListSource(s)
	for _, known := range ListSources {
		if src == known {
			return src, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown list source: "+s)
}

// EntityType distinguishes natural persons from organizations.
type EntityType string

const (
	TypeIndividual EntityType = "INDIVIDUAL"
	TypeEntity     EntityType = "ENTITY"
)

// EntityTypes enumerates the known entity types.
var EntityTypes = []EntityType{TypeIndividual, TypeEntity}

// ParseEntityType validates a caller-supplied entity type.
func ParseEntityType(s string) (EntityType, error) {
	et := EntityType(s)
	for _, known := range EntityTypes {
		if et == known {
			return et, nil
		}
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "unknown entity type: "+s)
}

// Address is one structured location attached to an entity. Every field is
// independently optional; sources rarely fill more than a few.
type Address struct {
	Address1        string `json:"address1,omitempty"`
	Address2        string `json:"address2,omitempty"`
	Address3        string `json:"address3,omitempty"`
	City            string `json:"city,omitempty"`
	StateOrProvince string `json:"stateOrProvince,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	Country         string `json:"country,omitempty"`
}

// SanctionedEntity is the canonical persisted record. Name is never empty:
// adapters synthesize a placeholder rather than drop a nameless record.
// ReferenceNumber is the source-native identifier, unique within a
// ListSource.
type SanctionedEntity struct {
	ID              uuid.UUID  `json:"id"`
	ListSource      ListSource `json:"listSource"`
	EntityType      EntityType `json:"entityType"`
	Name            string     `json:"name"`
	ReferenceNumber string     `json:"referenceNumber"`
	Aliases         []string   `json:"aliases,omitempty"`
	Addresses       []Address  `json:"addresses,omitempty"`
	DateOfBirth     *time.Time `json:"dateOfBirth,omitempty"`
	PlaceOfBirth    string     `json:"placeOfBirth,omitempty"`
	Nationality     string     `json:"nationality,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	AdditionalInfo  string     `json:"additionalInfo,omitempty"`
	DateAdded       time.Time  `json:"dateAdded"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// SearchFilters narrows a paginated entity search. Zero values mean "no
// filter"; Page and PageSize are normalized by the service.
type SearchFilters struct {
	Name          string
	ListSources   []ListSource
	EntityTypes   []EntityType
	Nationalities []string
	Page          int
	PageSize      int
}

// SearchResult is one page of matches plus pagination bookkeeping.
type SearchResult struct {
	Results    []SanctionedEntity `json:"results"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}

// SourceStats summarizes the dataset for the admin dashboard.
type SourceStats struct {
	CountsBySource      map[ListSource]int        `json:"countsBySource"`
	CountsByType        map[EntityType]int        `json:"countsByType"`
	LastUpdatedBySource map[ListSource]*time.Time `json:"lastUpdatedAtBySource"`
	TotalRecords        int                       `json:"totalRecords"`
}
