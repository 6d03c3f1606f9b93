package usecase

import (
	"context"
	"log/slog"
	"time"

	"OpportunityValidator/internal/logging"
	"OpportunityValidator/internal/ports"
)

// DigestScheduler periodically re-ranks stored results and publishes the
// recommendation through the comparer's notifier.
type DigestScheduler struct {
	driver   ports.Scheduler
	reader   ports.ResultReader
	comparer *Comparer
	logger   *slog.Logger
}

// NewDigestScheduler returns a helper to start/stop the recurring digest.
func NewDigestScheduler(driver ports.Scheduler, reader ports.ResultReader, comparer *Comparer, logger *slog.Logger) *DigestScheduler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &DigestScheduler{
		driver:   driver,
		reader:   reader,
		comparer: comparer,
		logger:   logger.With("component", "digest"),
	}
}

// Start registers the digest job with the driver.
func (s *DigestScheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.reader == nil || s.comparer == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.publish(ctx); err != nil {
			s.logger.Warn("digest skipped", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *DigestScheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}

func (s *DigestScheduler) publish(ctx context.Context) error {
	results, err := s.reader.List(ctx)
	if err != nil {
		return err
	}
	_, err = s.comparer.RecommendNext(ctx, results)
	return err
}
