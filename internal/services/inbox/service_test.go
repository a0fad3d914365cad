package inbox

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

var (
	errRejected = errors.New("rejected")
	errNoStats  = errors.New("daily stats not updated")
)

type fakeSaver struct {
	mu    sync.Mutex
	saved []string
	types []models.ReportType
}

func (f *fakeSaver) Save(_ context.Context, raw string, t models.ReportType) (*models.Report, models.ParsedMetrics, error) {
	if strings.Contains(raw, "bad") {
		return nil, models.ParsedMetrics{}, errRejected
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, raw)
	f.types = append(f.types, t)
	r := &models.Report{ID: "id", Raw: raw, Type: t}
	if strings.Contains(raw, "partial") {
		return r, models.ParsedMetrics{}, errNoStats
	}
	return r, models.ParsedMetrics{}, nil
}

func (f *fakeSaver) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

// Tests that call ImportFile directly use a long debounce so the watcher
// never races them.
const (
	fastDebounce = 20 * time.Millisecond
	idleDebounce = time.Hour
)

func newTestService(t *testing.T, debounce time.Duration) (*Service, *fakeSaver, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "inbox")
	saver := &fakeSaver{}
	svc, err := New(dir, saver, models.ReportTypeFarming, debounce)
	if err != nil {
		t.Fatalf("Failed to create inbox service: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc, saver, dir
}

func waitForEvent(t *testing.T, svc *Service) Event {
	t.Helper()
	select {
	case ev := <-svc.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for inbox event")
		return Event{}
	}
}

func TestNew_CreatesDirectories(t *testing.T) {
	_, _, dir := newTestService(t, idleDebounce)

	for _, d := range []string{dir, filepath.Join(dir, ProcessedDir), filepath.Join(dir, FailedDir)} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to exist", d)
		}
	}
}

func TestImportFile_Success(t *testing.T) {
	svc, saver, dir := newTestService(t, idleDebounce)

	path := filepath.Join(dir, "run.txt")
	if err := os.WriteFile(path, []byte("Battle Date Mar 10, 2024 08:00"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if !svc.ImportFile(path) {
		t.Fatal("Expected import to succeed")
	}
	if saver.count() != 1 || saver.types[0] != models.ReportTypeFarming {
		t.Errorf("Unexpected saves: %v %v", saver.saved, saver.types)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to leave the inbox")
	}
	if _, err := os.Stat(filepath.Join(dir, ProcessedDir, "run.txt")); err != nil {
		t.Errorf("Expected file in processed: %v", err)
	}
}

func TestImportFile_Failure(t *testing.T) {
	svc, saver, dir := newTestService(t, idleDebounce)

	path := filepath.Join(dir, "broken.txt")
	if err := os.WriteFile(path, []byte("bad report"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if svc.ImportFile(path) {
		t.Fatal("Expected import to fail")
	}
	if saver.count() != 0 {
		t.Error("Expected nothing saved")
	}
	if _, err := os.Stat(filepath.Join(dir, FailedDir, "broken.txt")); err != nil {
		t.Errorf("Expected file in failed: %v", err)
	}
}

func TestImportFile_StoredWithoutDailyStats(t *testing.T) {
	svc, saver, dir := newTestService(t, idleDebounce)

	path := filepath.Join(dir, "partial.txt")
	if err := os.WriteFile(path, []byte("partial report"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if !svc.ImportFile(path) {
		t.Fatal("Expected stored report to count as imported")
	}
	if saver.count() != 1 {
		t.Errorf("Expected one save, got %d", saver.count())
	}
	if _, err := os.Stat(filepath.Join(dir, ProcessedDir, "partial.txt")); err != nil {
		t.Errorf("Expected file in processed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, FailedDir, "partial.txt")); !os.IsNotExist(err) {
		t.Error("Expected nothing in failed")
	}

	ev := waitForEvent(t, svc)
	if ev.Type != EventImported || ev.Report == nil || !errors.Is(ev.Error, errNoStats) {
		t.Errorf("Expected EventImported carrying the stats error, got %+v", ev)
	}

	n, err := svc.ImportPending()
	if err != nil {
		t.Fatalf("ImportPending failed: %v", err)
	}
	if n != 0 || saver.count() != 1 {
		t.Errorf("Expected no re-import, got n=%d saved=%d", n, saver.count())
	}
}

func TestImportFile_NameCollision(t *testing.T) {
	svc, _, dir := newTestService(t, idleDebounce)

	for range 2 {
		path := filepath.Join(dir, "run.txt")
		if err := os.WriteFile(path, []byte("ok"), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		if !svc.ImportFile(path) {
			t.Fatal("Expected import to succeed")
		}
	}

	for _, name := range []string{"run.txt", "run-1.txt"} {
		if _, err := os.Stat(filepath.Join(dir, ProcessedDir, name)); err != nil {
			t.Errorf("Expected %s in processed: %v", name, err)
		}
	}
}

func TestImportFile_Missing(t *testing.T) {
	svc, _, dir := newTestService(t, idleDebounce)

	if svc.ImportFile(filepath.Join(dir, "gone.txt")) {
		t.Error("Expected missing file to be skipped")
	}
}

func TestImportPending(t *testing.T) {
	svc, saver, dir := newTestService(t, idleDebounce)

	files := map[string]string{
		"a.txt":       "ok",
		"b.TXT":       "ok",
		"notes.md":    "ignored",
		".hidden.txt": "ignored",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}

	n, err := svc.ImportPending()
	if err != nil {
		t.Fatalf("ImportPending failed: %v", err)
	}
	if n != 2 || saver.count() != 2 {
		t.Errorf("Expected 2 imports, got n=%d saved=%d", n, saver.count())
	}
}

func TestWatcher_ImportsDroppedFile(t *testing.T) {
	svc, saver, dir := newTestService(t, fastDebounce)

	path := filepath.Join(dir, "dropped.txt")
	if err := os.WriteFile(path, []byte("Battle Date Mar 10, 2024 08:00"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ev := waitForEvent(t, svc)
	if ev.Type != EventImported {
		t.Fatalf("Expected EventImported, got %+v", ev)
	}
	if ev.Path != path {
		t.Errorf("Expected path %s, got %s", path, ev.Path)
	}
	if saver.count() != 1 {
		t.Errorf("Expected exactly one save, got %d", saver.count())
	}
}

func TestWatcher_ReportsFailure(t *testing.T) {
	svc, _, dir := newTestService(t, fastDebounce)

	if err := os.WriteFile(filepath.Join(dir, "broken.txt"), []byte("bad"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ev := waitForEvent(t, svc)
	if ev.Type != EventFailed || !errors.Is(ev.Error, errRejected) {
		t.Errorf("Expected EventFailed with rejection, got %+v", ev)
	}
}

func TestClose_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t, idleDebounce)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}
