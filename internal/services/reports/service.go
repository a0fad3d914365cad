// Package reports stores battle reports and keeps daily stats in step with them.
package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/tower-battlelog/internal/db"
	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/services/daily"
)

var (
	// ErrEmptyReport is returned when saving blank input.
	ErrEmptyReport = errors.New("report is empty")
	// ErrNoBattleDate is returned when the report has no parseable battle date.
	ErrNoBattleDate = errors.New("report has no battle date")
)

const defaultPageSize = 10

// Service manages saved reports.
type Service struct {
	db       *db.DB
	parser   *report.Parser
	daily    *daily.Service
	pageSize int

	mu        sync.RWMutex
	summaries map[string]models.ParsedMetrics
}

// New creates a reports service. pageSize <= 0 uses the default of 10.
func New(database *db.DB, parser *report.Parser, pageSize int) *Service {
	if parser == nil {
		parser = report.DefaultParser()
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &Service{
		db:        database,
		parser:    parser,
		daily:     daily.New(database, parser),
		pageSize:  pageSize,
		summaries: make(map[string]models.ParsedMetrics),
	}
}

// Init re-derives meta for legacy rows and rebuilds daily stats when any changed.
func (s *Service) Init(ctx context.Context) error {
	n, err := s.db.BackfillMeta(ctx, func(raw string) models.ReportMeta {
		return s.parser.Parse(raw).Meta()
	})
	if err != nil {
		return fmt.Errorf("failed to backfill report meta: %w", err)
	}
	if n > 0 {
		if _, err := s.RebuildDaily(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Parser returns the parser used for summaries.
func (s *Service) Parser() *report.Parser {
	return s.parser
}

// PageSize returns the number of reports per page.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Preview parses raw text without storing it.
func (s *Service) Preview(raw string) models.ParsedMetrics {
	return s.parser.Parse(raw)
}

// Save stores a new report and folds it into its day's totals.
func (s *Service) Save(ctx context.Context, raw string, t models.ReportType) (*models.Report, models.ParsedMetrics, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, models.ParsedMetrics{}, ErrEmptyReport
	}

	m := s.parser.Parse(raw)
	if !m.HasBattleDate {
		return nil, m, ErrNoBattleDate
	}
	if t == "" {
		t = models.ReportTypeUnclassified
	}

	r := &models.Report{
		ID:        uuid.NewString(),
		Raw:       raw,
		CreatedAt: time.Now(),
		Type:      t,
		Meta:      m.Meta(),
	}
	if err := s.db.InsertReport(ctx, r); err != nil {
		return nil, m, fmt.Errorf("failed to save report: %w", err)
	}

	s.mu.Lock()
	s.summaries[r.ID] = m
	s.mu.Unlock()

	if err := s.daily.Apply(ctx, m.Delta()); err != nil {
		logger.Error("failed to update daily stats", "id", r.ID, "error", err)
		return r, m, fmt.Errorf("report saved but daily stats not updated: %w", err)
	}

	logger.Info("saved report", "id", r.ID, "type", r.Type, "date", r.Meta.Date)
	return r, m, nil
}

// Summary returns the parsed metrics for a stored report, memoized by ID.
func (s *Service) Summary(r models.Report) models.ParsedMetrics {
	s.mu.RLock()
	m, ok := s.summaries[r.ID]
	s.mu.RUnlock()
	if ok {
		return m
	}

	m = s.parser.Parse(r.Raw)

	s.mu.Lock()
	s.summaries[r.ID] = m
	s.mu.Unlock()
	return m
}

// Get returns a stored report.
func (s *Service) Get(ctx context.Context, id string) (*models.Report, error) {
	return s.db.GetReport(ctx, id)
}

// List returns a page of reports after cursor and counts them as read.
func (s *Service) List(ctx context.Context, filter models.ReportFilter, cursor *models.Cursor) (*models.ReportPage, error) {
	page, err := s.db.ListReports(ctx, filter, cursor, s.pageSize)
	if err != nil {
		return nil, err
	}

	if n := len(page.Reports); n > 0 {
		if _, err := s.db.IncrementReads(ctx, n); err != nil {
			logger.Warn("failed to count reads", "error", err)
		}
	}
	return page, nil
}

// UpdateType changes a report's category.
func (s *Service) UpdateType(ctx context.Context, id string, t models.ReportType) error {
	return s.db.UpdateReportType(ctx, id, t)
}

// UpdateMemo replaces a report's memo.
func (s *Service) UpdateMemo(ctx context.Context, id, memo string) error {
	return s.db.UpdateReportMemo(ctx, id, strings.TrimSpace(memo))
}

// Delete removes a report and subtracts it from its day's totals.
func (s *Service) Delete(ctx context.Context, id string) (*models.Report, error) {
	r, err := s.db.DeleteReport(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.summaries, id)
	s.mu.Unlock()

	if err := s.daily.Apply(ctx, r.Meta.Delta().Negate()); err != nil {
		logger.Error("failed to update daily stats", "id", id, "error", err)
		return r, fmt.Errorf("report deleted but daily stats not updated: %w", err)
	}

	logger.Info("deleted report", "id", id)
	return r, nil
}

// RebuildDaily recomputes every day's totals from the stored reports.
func (s *Service) RebuildDaily(ctx context.Context) ([]models.DailyAggregate, error) {
	all, err := s.db.AllReports(ctx)
	if err != nil {
		return nil, err
	}
	return s.daily.Rebuild(ctx, all)
}

// Daily returns the stored daily aggregates for a range.
func (s *Service) Daily(ctx context.Context, r models.DayRange) ([]models.DailyAggregate, error) {
	return s.daily.List(ctx, r)
}

// Stats returns collection totals.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	count, err := s.db.CountReports(ctx)
	if err != nil {
		return nil, err
	}
	reads, err := s.db.TotalReads(ctx)
	if err != nil {
		return nil, err
	}
	days, err := s.db.ListDaily(ctx, 0)
	if err != nil {
		return nil, err
	}
	ver, err := s.db.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}

	return &models.Stats{
		ReportCount:   count,
		DayCount:      len(days),
		TotalReads:    reads,
		SchemaVersion: ver,
	}, nil
}
