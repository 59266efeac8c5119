package usage

import (
	"context"
	"sync"
	"time"

	"github.com/montanaflynn/stats"

	"prithvipulse/internal"
	"prithvipulse/models"
	"prithvipulse/ports"
)

// Service handles dispatch usage tracking and persistence
type Service struct {
	repo      ports.DispatchUsageRepository
	logger    *internal.Logger
	baseDelay time.Duration
	now       func() time.Time
	pending   sync.WaitGroup
}

// NewService creates a new usage service
func NewService(repo ports.DispatchUsageRepository, logger *internal.Logger) *Service {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Service{
		repo:      repo,
		logger:    logger,
		baseDelay: 100 * time.Millisecond,
		now:       time.Now,
	}
}

var _ ports.DispatchRecorder = (*Service)(nil)

// Record asynchronously records the outcome of a dispatch. Tracking problems
// are logged and never reach the caller.
func (s *Service) Record(ctx context.Context, outcome models.Outcome) {
	if outcome.Operation == "" {
		s.logger.Error("[UsageService] outcome without operation: %+v", outcome)
		return
	}

	row := models.UsageFromOutcome(outcome, s.now())

	// Async persistence to avoid blocking the dispatcher
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.persistWithRetry(context.WithoutCancel(ctx), row); err != nil {
			s.logger.Error("[UsageService] failed to persist usage after retries: %v", err)
		}
	}()
}

// Flush waits for in-flight persistence to finish
func (s *Service) Flush() {
	s.pending.Wait()
}

// persistWithRetry attempts to persist usage with linear backoff
func (s *Service) persistWithRetry(ctx context.Context, usage *models.DispatchUsage) error {
	const maxAttempts = 3

	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = s.repo.RecordUsage(ctx, usage); err == nil {
			return nil
		}
		s.logger.Debug("[UsageService] attempt %d failed: %v", attempt+1, err)

		if attempt < maxAttempts-1 {
			time.Sleep(time.Duration(attempt+1) * s.baseDelay)
		}
	}
	return err
}

// Summary aggregates usage between start and end
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*models.UsageSummary, error) {
	rows, err := s.repo.ListUsage(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return Summarize(rows, start, end), nil
}

// Summarize computes counts, fallback rate and latency percentiles
func Summarize(rows []*models.DispatchUsage, start, end time.Time) *models.UsageSummary {
	summary := &models.UsageSummary{
		PeriodStart:    start,
		PeriodEnd:      end,
		ByFailureClass: make(map[string]int),
		ByOperation:    make(map[string]models.OperationUsage),
	}

	latencies := make(stats.Float64Data, 0, len(rows))
	for _, row := range rows {
		summary.RequestCount++
		summary.ByFailureClass[row.FailureClass]++

		op := summary.ByOperation[row.Operation]
		op.Operation = row.Operation
		op.RequestCount++
		if row.Source == string(models.SourceFallback) {
			summary.FallbackCount++
			op.FallbackCount++
		}
		summary.ByOperation[row.Operation] = op

		latencies = append(latencies, float64(row.LatencyMS))
	}

	if summary.RequestCount > 0 {
		summary.FallbackRate = float64(summary.FallbackCount) / float64(summary.RequestCount)
	}
	if p50, err := latencies.Percentile(50); err == nil {
		summary.LatencyP50MS = p50
	}
	if p95, err := latencies.Percentile(95); err == nil {
		summary.LatencyP95MS = p95
	}
	return summary
}
