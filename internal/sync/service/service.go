// Package service orchestrates watchlist synchronization runs: fetch,
// normalize, atomically replace the source's records, and record the
// outcome.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	entitymodels "sanctionwatch/internal/entity/models"
	"sanctionwatch/internal/sync/adapter"
	syncmetrics "sanctionwatch/internal/sync/metrics"
	"sanctionwatch/internal/sync/models"
)

// EntityStore is the subset of the entity store the pipeline writes
// through. Both calls join a transaction carried on the context.
type EntityStore interface {
	DeleteBySource(ctx context.Context, source entitymodels.ListSource) (int64, error)
	InsertBatch(ctx context.Context, entities []entitymodels.SanctionedEntity) error
}

// HistoryStore records run outcomes. Appends happen outside the
// replace transaction so a failed run still leaves a trace.
type HistoryStore interface {
	Append(ctx context.Context, entry models.HistoryEntry) error
}

// TxRunner executes fn inside a database transaction carried on the
// context passed to fn.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutcomePublisher emits completed run outcomes to downstream
// consumers.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, entry models.HistoryEntry) error
}

// StatsInvalidator drops cached aggregates after list contents change.
type StatsInvalidator interface {
	InvalidateStats(ctx context.Context)
}

// Service runs synchronization for the configured sources.
type Service struct {
	adapters map[entitymodels.ListSource]adapter.Adapter
	order    []entitymodels.ListSource
	entities EntityStore
	history  HistoryStore
	tx       TxRunner
	logger   *slog.Logger

	metrics     *syncmetrics.Metrics
	publisher   OutcomePublisher
	invalidator StatsInvalidator
	tracer      trace.Tracer
	now         func() time.Time
}

type Option func(*Service)

func WithMetrics(m *syncmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithPublisher(p OutcomePublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithStatsInvalidator(inv StatsInvalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

// WithClock overrides the time source. Tests use it to pin sync times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(adapters []adapter.Adapter, entities EntityStore, history HistoryStore, tx TxRunner, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		adapters: make(map[entitymodels.ListSource]adapter.Adapter, len(adapters)),
		entities: entities,
		history:  history,
		tx:       tx,
		logger:   logger,
		tracer:   otel.Tracer("sanctionwatch/sync"),
		now:      time.Now,
	}
	for _, ad := range adapters {
		s.adapters[ad.Source()] = ad
		s.order = append(s.order, ad.Source())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sources lists the configured sources in registration order.
func (s *Service) Sources() []entitymodels.ListSource {
	out := make([]entitymodels.ListSource, len(s.order))
	copy(out, s.order)
	return out
}

// Run synchronizes one source end to end. The outcome is always
// expressed in the returned Result; run failures never propagate as
// errors.
func (s *Service) Run(ctx context.Context, source entitymodels.ListSource) models.Result {
	ctx, span := s.tracer.Start(ctx, "sync.run",
		trace.WithAttributes(attribute.String("sync.source", string(source))))
	defer span.End()

	started := s.now()
	result := s.run(ctx, source)
	elapsed := s.now().Sub(started)

	span.SetAttributes(
		attribute.Bool("sync.success", result.Success),
		attribute.Int("sync.records_affected", result.RecordsAffected),
	)

	if s.metrics != nil {
		s.metrics.Runs.WithLabelValues(string(source), string(result.Status())).Inc()
		s.metrics.RunDuration.WithLabelValues(string(source)).Observe(elapsed.Seconds())
		if result.Success {
			s.metrics.RecordsAffected.WithLabelValues(string(source)).Set(float64(result.RecordsAffected))
		}
	}

	s.recordOutcome(ctx, string(source), result)

	if result.Success {
		if s.invalidator != nil {
			s.invalidator.InvalidateStats(ctx)
		}
		s.logger.InfoContext(ctx, "sync completed", "source", source, "records", result.RecordsAffected, "duration", elapsed)
	} else {
		s.logger.ErrorContext(ctx, "sync failed", "source", source, "message", result.Message, "duration", elapsed)
	}
	return result
}

func (s *Service) run(ctx context.Context, source entitymodels.ListSource) models.Result {
	ad, ok := s.adapters[source]
	if !ok {
		return failure(source, fmt.Errorf("no adapter configured"))
	}

	syncTime := s.now().UTC()

	entities, err := ad.FetchAndParse(ctx, syncTime)
	if err != nil {
		return failure(source, err)
	}
	if len(entities) == 0 {
		return failure(source, fmt.Errorf("no valid entities found"))
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		deleted, err := s.entities.DeleteBySource(ctx, source)
		if err != nil {
			return err
		}
		s.logger.DebugContext(ctx, "replaced source records", "source", source, "deleted", deleted)
		return s.entities.InsertBatch(ctx, entities)
	})
	if err != nil {
		return failure(source, err)
	}

	return models.Result{
		Success:         true,
		Message:         fmt.Sprintf("%s data synchronization completed successfully. %d entities processed.", source, len(entities)),
		RecordsAffected: len(entities),
	}
}

// recordOutcome appends to the history log and notifies downstream
// consumers. Neither failure may mask the run result.
func (s *Service) recordOutcome(ctx context.Context, source string, result models.Result) {
	records := result.RecordsAffected
	entry := models.HistoryEntry{
		Source:          source,
		Status:          result.Status(),
		Message:         result.Message,
		RecordsAffected: &records,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to record sync history", "source", source, "error", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOutcome(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish sync outcome", "source", source, "error", err)
		}
	}
}

func failure(source entitymodels.ListSource, err error) models.Result {
	return models.Result{
		Success: false,
		Message: fmt.Sprintf("%s sync failed: %v", source, err),
	}
}
