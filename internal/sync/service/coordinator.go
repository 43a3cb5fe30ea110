package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"sanctionwatch/internal/sync/models"
)

// RunAll synchronizes every configured source concurrently. Each
// source succeeds or fails independently; one failing feed never
// stops the others. The combined outcome is successful only when all
// sources succeeded.
func (s *Service) RunAll(ctx context.Context) models.AllResult {
	ctx, span := s.tracer.Start(ctx, "sync.run_all")
	defer span.End()

	sources := s.Sources()
	results := make([]models.Result, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, source := range sources {
		g.Go(func() error {
			results[i] = s.Run(gctx, source)
			return nil
		})
	}
	// the closures never return an error
	_ = g.Wait()

	overall := true
	details := make([]string, len(sources))
	records := 0
	for i, source := range sources {
		details[i] = string(source) + ": " + results[i].Message
		overall = overall && results[i].Success
		records += results[i].RecordsAffected
	}

	message := "All data sources synchronized successfully"
	if !overall {
		message = "One or more data sources failed to synchronize"
	}

	entry := models.HistoryEntry{
		Source:          models.SourceAll,
		Status:          models.StatusSuccess,
		Message:         strings.Join(details, "; "),
		RecordsAffected: &records,
		CreatedAt:       s.now().UTC(),
	}
	if !overall {
		entry.Status = models.StatusFailure
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to record sync history", "source", models.SourceAll, "error", err)
	}
	if s.publisher != nil {
		if err := s.publisher.PublishOutcome(ctx, entry); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish sync outcome", "source", models.SourceAll, "error", err)
		}
	}

	return models.AllResult{
		Success: overall,
		Message: message,
		Details: details,
	}
}
