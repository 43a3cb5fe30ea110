package handler

import (
	"sanctionwatch/internal/entity/models"
)

// SearchRequest is the JSON body of POST /api/search. All filters are
// optional; pagination defaults are applied by the service.
type SearchRequest struct {
	Name          string   `json:"name"`
	ListSources   []string `json:"listSources"`
	EntityTypes   []string `json:"entityTypes"`
	Nationalities []string `json:"nationalities"`
	Page          int      `json:"page"`
	PageSize      int      `json:"pageSize"`
}

// Filters validates the request and maps it to domain search filters.
func (r SearchRequest) Filters() (models.SearchFilters, error) {
	f := models.SearchFilters{
		Name:          r.Name,
		Nationalities: r.Nationalities,
		Page:          r.Page,
		PageSize:      r.PageSize,
	}

	for _, s := range r.ListSources {
		src, err := models.ParseListSource(s)
		if err != nil {
			return models.SearchFilters{}, err
		}
		f.ListSources = append(f.ListSources, src)
	}
	for _, t := range r.EntityTypes {
		et, err := models.ParseEntityType(t)
		if err != nil {
			return models.SearchFilters{}, err
		}
		f.EntityTypes = append(f.EntityTypes, et)
	}
	return f, nil
}
