package daily

import (
	"context"
	"errors"
	"fmt"

	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
)

// maxSwapAttempts bounds the optimistic retry loop.
const maxSwapAttempts = 16

// ErrContention is returned when a compare-and-swap fold keeps losing races.
var ErrContention = errors.New("daily stats update contention")

// Incrementer is a store that can add a delta to a day in one atomic step.
type Incrementer interface {
	IncrementDaily(ctx context.Context, d models.DailyDelta) error
}

// Store is the minimal contract for folding without an atomic increment.
type Store interface {
	GetDaily(ctx context.Context, date string) (*models.DailyAggregate, error)
	CompareAndSwapDaily(ctx context.Context, next models.DailyAggregate, expected int64) (bool, error)
}

// Backend is everything the service needs from storage.
type Backend interface {
	Store
	ReplaceDaily(ctx context.Context, aggs []models.DailyAggregate) error
	ListDaily(ctx context.Context, limit int) ([]models.DailyAggregate, error)
}

// Service folds report deltas into per-day aggregates.
type Service struct {
	backend Backend
	parser  *report.Parser
}

// New creates a daily stats service.
func New(backend Backend, parser *report.Parser) *Service {
	if parser == nil {
		parser = report.DefaultParser()
	}
	return &Service{backend: backend, parser: parser}
}

// Apply folds one delta into its day. Deltas without a date are ignored.
// Concurrent calls for the same day never lose updates.
func (s *Service) Apply(ctx context.Context, d models.DailyDelta) error {
	if !d.HasDate() {
		return nil
	}

	if inc, ok := s.backend.(Incrementer); ok {
		if err := inc.IncrementDaily(ctx, d); err != nil {
			return fmt.Errorf("failed to apply daily delta: %w", err)
		}
		return nil
	}

	return s.applyCAS(ctx, d)
}

func (s *Service) applyCAS(ctx context.Context, d models.DailyDelta) error {
	for attempt := range maxSwapAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		prev, err := s.backend.GetDaily(ctx, d.Date)
		if err != nil {
			return fmt.Errorf("failed to read daily stats: %w", err)
		}

		var expected int64
		if prev != nil {
			expected = prev.Version
		}

		ok, err := s.backend.CompareAndSwapDaily(ctx, Fold(prev, d), expected)
		if err != nil {
			return fmt.Errorf("failed to write daily stats: %w", err)
		}
		if ok {
			return nil
		}
		logger.Debug("daily stats swap lost race", "date", d.Date, "attempt", attempt+1)
	}
	return fmt.Errorf("%w: %s", ErrContention, d.Date)
}

// Rebuild recomputes all aggregates from reports and replaces what is stored.
func (s *Service) Rebuild(ctx context.Context, reports []models.Report) ([]models.DailyAggregate, error) {
	aggs, err := Rebuild(ctx, s.parser, reports)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild daily stats: %w", err)
	}
	if err := s.backend.ReplaceDaily(ctx, aggs); err != nil {
		return nil, fmt.Errorf("failed to store daily stats: %w", err)
	}
	logger.Info("rebuilt daily stats", "reports", len(reports), "days", len(aggs))
	return aggs, nil
}

// List returns the stored aggregates for a range, newest first.
func (s *Service) List(ctx context.Context, r models.DayRange) ([]models.DailyAggregate, error) {
	aggs, err := s.backend.ListDaily(ctx, r.Limit())
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	return aggs, nil
}
