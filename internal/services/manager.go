// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/tower-battlelog/internal/config"
	"github.com/j-veylop/tower-battlelog/internal/db"
	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/services/inbox"
	"github.com/j-veylop/tower-battlelog/internal/services/reports"
)

// Event sources for ReportSavedEvent.
const (
	SourceTUI   = "tui"
	SourceInbox = "inbox"
)

type (
	// ReportSavedEvent is emitted when a report is stored.
	ReportSavedEvent struct {
		Report  *models.Report
		Metrics models.ParsedMetrics
		Source  string
	}

	// ReportUpdatedEvent is emitted when a report's type or memo changes.
	ReportUpdatedEvent struct {
		ID string
	}

	// ReportDeletedEvent is emitted when a report is removed.
	ReportDeletedEvent struct {
		Report *models.Report
	}

	// DailyRebuiltEvent is emitted after daily stats are recomputed.
	DailyRebuiltEvent struct {
		Days []models.DailyAggregate
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}

	// StatsEvent is emitted when collection totals change.
	StatsEvent struct {
		Stats models.Stats
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ReportSavedEvent) isServiceEvent()   {}
func (ReportUpdatedEvent) isServiceEvent() {}
func (ReportDeletedEvent) isServiceEvent() {}
func (DailyRebuiltEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()         {}
func (StatsEvent) isServiceEvent()         {}

// Notifier shows a desktop notification.
type Notifier func(title, body string) error

func beeepNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	reports     *reports.Service
	inbox       *inbox.Service
	database    *db.DB
	cfg         *config.Config
	notify      Notifier
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:       cfg,
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
	}
	if cfg.DesktopNotifications {
		m.notify = beeepNotify
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	tables := report.DefaultTables().WithOverrides(cfg.ExtraUnits, cfg.ShortNames)
	m.reports = reports.New(m.database, report.NewParser(tables, nil), cfg.PageSize)

	if err := m.reports.Init(context.Background()); err != nil {
		_ = m.database.Close()
		return nil, err
	}

	if cfg.InboxPath != "" {
		m.inbox, err = inbox.New(cfg.InboxPath, m.reports, cfg.DefaultReportType, cfg.InboxDebounce)
		if err != nil {
			_ = m.database.Close()
			return nil, err
		}
	}

	go m.routeEvents()

	if m.inbox != nil {
		go func() {
			if _, err := m.inbox.ImportPending(); err != nil {
				logger.Warn("failed to import pending inbox files", "error", err)
			}
		}()
	}

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	var inboxEvents <-chan inbox.Event
	if m.inbox != nil {
		inboxEvents = m.inbox.Events()
	}

	for {
		select {
		case event, ok := <-inboxEvents:
			if !ok {
				return
			}
			m.handleInboxEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleInboxEvent converts and broadcasts inbox events.
func (m *Manager) handleInboxEvent(event inbox.Event) {
	name := filepath.Base(event.Path)

	switch event.Type {
	case inbox.EventImported:
		m.broadcast(ReportSavedEvent{
			Report:  event.Report,
			Metrics: event.Metrics,
			Source:  SourceInbox,
		})
		if event.Error != nil {
			m.broadcast(ErrorEvent{
				Service: "inbox",
				Error:   fmt.Errorf("%s: %w", name, event.Error),
			})
		}
		m.notifyDesktop("Report imported",
			fmt.Sprintf("%s: %s coins (%s)", name, event.Metrics.CoinsText, event.Metrics.BattleDateText()))
		m.broadcastStats()

	case inbox.EventFailed:
		m.broadcast(ErrorEvent{
			Service: "inbox",
			Error:   fmt.Errorf("%s: %w", name, event.Error),
		})
		m.notifyDesktop("Report import failed", fmt.Sprintf("%s: %v", name, event.Error))

	case inbox.EventError:
		m.broadcast(ErrorEvent{
			Service: "inbox",
			Error:   event.Error,
		})
	}
}

func (m *Manager) notifyDesktop(title, body string) {
	m.mu.RLock()
	notify := m.notify
	m.mu.RUnlock()

	if notify == nil {
		return
	}
	if err := notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

// SetNotifier replaces the desktop notifier. nil disables notifications.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	m.notify = n
	m.mu.Unlock()
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	// Send to main event channel
	select {
	case m.eventChan <- event:
	default:
	}

	// Send to subscribers
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

func (m *Manager) broadcastStats() {
	stats, err := m.reports.Stats(context.Background())
	if err != nil {
		logger.Warn("failed to load stats", "error", err)
		return
	}
	m.broadcast(StatsEvent{Stats: *stats})
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Preview parses a report without storing it.
func (m *Manager) Preview(raw string) models.ParsedMetrics {
	return m.reports.Preview(raw)
}

// Summary returns the memoized summary for a stored report.
func (m *Manager) Summary(r models.Report) models.ParsedMetrics {
	return m.reports.Summary(r)
}

// SaveReport stores a report and notifies subscribers.
func (m *Manager) SaveReport(ctx context.Context, raw string, t models.ReportType) (*models.Report, models.ParsedMetrics, error) {
	r, metrics, err := m.reports.Save(ctx, raw, t)
	if r != nil {
		m.broadcast(ReportSavedEvent{Report: r, Metrics: metrics, Source: SourceTUI})
		m.broadcastStats()
	}
	return r, metrics, err
}

// ListReports returns one page of reports.
func (m *Manager) ListReports(ctx context.Context, filter models.ReportFilter, cursor *models.Cursor) (*models.ReportPage, error) {
	return m.reports.List(ctx, filter, cursor)
}

// UpdateReportType changes a report's category.
func (m *Manager) UpdateReportType(ctx context.Context, id string, t models.ReportType) error {
	if err := m.reports.UpdateType(ctx, id, t); err != nil {
		return err
	}
	m.broadcast(ReportUpdatedEvent{ID: id})
	return nil
}

// UpdateReportMemo replaces a report's memo.
func (m *Manager) UpdateReportMemo(ctx context.Context, id, memo string) error {
	if err := m.reports.UpdateMemo(ctx, id, memo); err != nil {
		return err
	}
	m.broadcast(ReportUpdatedEvent{ID: id})
	return nil
}

// DeleteReport removes a report and notifies subscribers.
func (m *Manager) DeleteReport(ctx context.Context, id string) error {
	r, err := m.reports.Delete(ctx, id)
	if r != nil {
		m.broadcast(ReportDeletedEvent{Report: r})
		m.broadcastStats()
	}
	return err
}

// RebuildDaily recomputes daily stats from all reports.
func (m *Manager) RebuildDaily(ctx context.Context) ([]models.DailyAggregate, error) {
	days, err := m.reports.RebuildDaily(ctx)
	if err != nil {
		return nil, err
	}
	m.broadcast(DailyRebuiltEvent{Days: days})
	m.broadcastStats()
	return days, nil
}

// Daily returns the stored daily aggregates for a range.
func (m *Manager) Daily(ctx context.Context, r models.DayRange) ([]models.DailyAggregate, error) {
	return m.reports.Daily(ctx, r)
}

// GetStats returns collection totals.
func (m *Manager) GetStats(ctx context.Context) (*models.Stats, error) {
	return m.reports.Stats(ctx)
}

// Reports returns the reports service.
func (m *Manager) Reports() *reports.Service {
	return m.reports
}

// Inbox returns the inbox service, or nil when disabled.
func (m *Manager) Inbox() *inbox.Service {
	return m.inbox
}

// Tables returns the parser configuration.
func (m *Manager) Tables() report.Tables {
	return m.reports.Parser().Tables()
}

// Config returns the configuration the manager was built from.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.inbox != nil {
		if err := m.inbox.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
