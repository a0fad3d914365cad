// Package inbox imports report files dropped into a watched directory.
package inbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/tower-battlelog/internal/logger"
	"github.com/j-veylop/tower-battlelog/internal/models"
)

const (
	// ProcessedDir holds files that were imported.
	ProcessedDir = "processed"
	// FailedDir holds files that could not be imported.
	FailedDir = "failed"

	reportExt       = ".txt"
	defaultDebounce = 250 * time.Millisecond
	importTimeout   = 30 * time.Second
)

// Saver stores a raw report.
type Saver interface {
	Save(ctx context.Context, raw string, t models.ReportType) (*models.Report, models.ParsedMetrics, error)
}

// EventType defines the type of inbox event.
type EventType int

const (
	EventImported EventType = iota
	EventFailed
	EventError
)

// Event represents an inbox service event.
type Event struct {
	Type    EventType
	Path    string
	Report  *models.Report
	Metrics models.ParsedMetrics
	Error   error
}

// Service watches a directory and imports each report file once.
type Service struct {
	mu         sync.Mutex
	importMu   sync.Mutex
	dir        string
	saver      Saver
	reportType models.ReportType
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	eventChan  chan Event
	stopChan   chan struct{}
	timers     map[string]*time.Timer
	inflight   sync.WaitGroup
	closed     bool
}

// New creates the inbox directories and starts watching dir.
func New(dir string, saver Saver, t models.ReportType, debounce time.Duration) (*Service, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if t == "" {
		t = models.ReportTypeUnclassified
	}

	s := &Service{
		dir:        dir,
		saver:      saver,
		reportType: t,
		debounce:   debounce,
		eventChan:  make(chan Event, 100),
		stopChan:   make(chan struct{}),
		timers:     make(map[string]*time.Timer),
	}

	for _, d := range []string{dir, s.processedDir(), s.failedDir()} {
		if err := os.MkdirAll(d, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create inbox directory: %w", err)
		}
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start inbox watcher: %w", err)
	}

	return s, nil
}

// Dir returns the watched directory.
func (s *Service) Dir() string {
	return s.dir
}

// Events returns the event channel for subscribing to imports.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// ImportPending imports report files already present in the inbox.
func (s *Service) ImportPending() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read inbox: %w", err)
	}

	imported := 0
	for _, e := range entries {
		if e.IsDir() || !isReportFile(e.Name()) {
			continue
		}
		if s.ImportFile(filepath.Join(s.dir, e.Name())) {
			imported++
		}
	}
	return imported, nil
}

// ImportFile saves one file and moves it to processed/ or failed/. It reports
// whether the report was stored; a stored report whose daily stats update
// failed still counts and carries the error on its event.
func (s *Service) ImportFile(path string) bool {
	s.importMu.Lock()
	defer s.importMu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.sendEvent(Event{Type: EventError, Path: path, Error: err})
		}
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), importTimeout)
	defer cancel()

	r, m, err := s.saver.Save(ctx, string(data), s.reportType)
	if err != nil && r == nil {
		logger.Warn("inbox import failed", "path", path, "error", err)
		if moveErr := s.move(path, s.failedDir()); moveErr != nil {
			logger.Error("failed to move rejected report", "path", path, "error", moveErr)
		}
		s.sendEvent(Event{Type: EventFailed, Path: path, Metrics: m, Error: err})
		return false
	}

	// Stored reports always land in processed/ so they are never imported twice.
	if moveErr := s.move(path, s.processedDir()); moveErr != nil {
		logger.Error("failed to move imported report", "path", path, "error", moveErr)
	}
	if err != nil {
		logger.Warn("imported report without daily stats update", "path", path, "id", r.ID, "error", err)
	} else {
		logger.Info("imported report", "path", path, "id", r.ID)
	}
	s.sendEvent(Event{Type: EventImported, Path: path, Report: r, Metrics: m, Error: err})
	return true
}

func (s *Service) processedDir() string {
	return filepath.Join(s.dir, ProcessedDir)
}

func (s *Service) failedDir() string {
	return filepath.Join(s.dir, FailedDir)
}

// move renames path into dir, suffixing the name if it is taken.
func (s *Service) move(path, dir string) error {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	target := filepath.Join(dir, base)
	for i := 1; ; i++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(dir, stem+"-"+strconv.Itoa(i)+ext)
	}
	return os.Rename(path, target)
}

func isReportFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), reportExt) && !strings.HasPrefix(name, ".")
}

// startWatcher starts the file system watcher.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(s.dir); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with per-file debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if filepath.Dir(event.Name) != filepath.Clean(s.dir) || !isReportFile(filepath.Base(event.Name)) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				s.schedule(event.Name)
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// schedule (re)starts the debounce timer for a file.
func (s *Service) schedule(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if t, ok := s.timers[path]; ok && t.Stop() {
		s.inflight.Done()
	}

	s.inflight.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(s.debounce, func() {
		defer s.inflight.Done()

		s.mu.Lock()
		if s.timers[path] == timer {
			delete(s.timers, path)
		}
		s.mu.Unlock()

		s.ImportFile(path)
	})
	s.timers[path] = timer
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the watcher and waits for running imports.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopChan)
	for path, t := range s.timers {
		if t.Stop() {
			s.inflight.Done()
		}
		delete(s.timers, path)
	}
	s.mu.Unlock()

	s.inflight.Wait()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
