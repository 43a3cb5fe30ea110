// Package service orchestrates the entity read path: search, detail, and
// admin statistics.
package service

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"

	entitymetrics "sanctionwatch/internal/entity/metrics"
	"sanctionwatch/internal/entity/models"
	dErrors "sanctionwatch/pkg/domain-errors"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Store is the persistence surface the read path needs.
type Store interface {
	Search(ctx context.Context, f models.SearchFilters) ([]models.SanctionedEntity, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SanctionedEntity, error)
	Stats(ctx context.Context) (*models.SourceStats, error)
}

// StatsCache caches the aggregated stats document. A nil cache disables
// caching entirely.
type StatsCache interface {
	Get(ctx context.Context) (*models.SourceStats, error)
	Set(ctx context.Context, stats *models.SourceStats) error
	Invalidate(ctx context.Context) error
}

// Service serves entity searches and admin statistics.
type Service struct {
	store   Store
	cache   StatsCache
	logger  *slog.Logger
	metrics *entitymetrics.Metrics
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithCache(cache StatsCache) Option {
	return func(s *Service) { s.cache = cache }
}

func WithMetrics(m *entitymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs a filtered, paginated entity search ordered by name.
func (s *Service) Search(ctx context.Context, f models.SearchFilters) (*models.SearchResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	if f.PageSize > maxPageSize {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pageSize must be 100 or less")
	}

	results, total, err := s.store.Search(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "entity search failed")
	}

	if s.metrics != nil {
		s.metrics.Searches.Inc()
	}

	return &models.SearchResult{
		Results:    results,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(f.PageSize))),
	}, nil
}

// Get fetches one entity by its surrogate id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.SanctionedEntity, error) {
	entity, err := s.store.FindByID(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			if s.metrics != nil {
				s.metrics.EntityNotFounds.Inc()
			}
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "entity lookup failed")
	}
	return entity, nil
}

// Stats returns the aggregated dataset statistics, served from cache when a
// fresh copy exists. Cache failures degrade to a store read; they are never
// surfaced to the caller.
func (s *Service) Stats(ctx context.Context) (*models.SourceStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "stats cache read failed", "error", err)
		} else if cached != nil {
			if s.metrics != nil {
				s.metrics.StatsCacheHits.Inc()
			}
			return cached, nil
		}
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "stats aggregation failed")
	}
	if s.metrics != nil {
		s.metrics.StatsCacheMiss.Inc()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, stats); err != nil {
			s.logger.WarnContext(ctx, "stats cache write failed", "error", err)
		}
	}
	return stats, nil
}

// InvalidateStats drops any cached stats document. The sync pipeline calls
// this after replacing a source's dataset.
func (s *Service) InvalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "stats cache invalidation failed", "error", err)
	}
}
