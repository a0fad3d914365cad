package daily

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/tower-battlelog/internal/app"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/services"
	"github.com/j-veylop/tower-battlelog/internal/ui/components"
)

type fakeService struct {
	mu         sync.Mutex
	days       []models.DailyAggregate
	ranges     []models.DayRange
	rebuilds   int
	dailyErr   error
	rebuildErr error
}

// newFakeService returns n days ending on 2024-03-10, newest first.
func newFakeService(n int) *fakeService {
	f := &fakeService{}
	last := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := range n {
		f.days = append(f.days, models.DailyAggregate{
			Date:         last.AddDate(0, 0, -i).Format(time.DateOnly),
			TotalCoins:   float64(i+1) * 1000,
			TotalSeconds: 43200,
			TotalCells:   float64(i * 10),
			TotalReroll:  float64(i * 5),
		})
	}
	return f
}

func (f *fakeService) Daily(_ context.Context, r models.DayRange) ([]models.DailyAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranges = append(f.ranges, r)
	if f.dailyErr != nil {
		return nil, f.dailyErr
	}
	if limit := r.Limit(); limit > 0 && limit < len(f.days) {
		return f.days[:limit], nil
	}
	return f.days, nil
}

func (f *fakeService) RebuildDaily(context.Context) ([]models.DailyAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebuilds++
	if f.rebuildErr != nil {
		return nil, f.rebuildErr
	}
	return f.days, nil
}

func (f *fakeService) Tables() report.Tables {
	return report.DefaultTables()
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and flattens any batches into their messages. Batched
// commands that do not return promptly are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		if c == nil {
			continue
		}
		out = append(out, collectOne(c)...)
	}
	return out
}

func collectOne(cmd tea.Cmd) []tea.Msg {
	done := make(chan []tea.Msg, 1)
	go func() { done <- collect(cmd) }()
	select {
	case msgs := <-done:
		return msgs
	case <-time.After(200 * time.Millisecond):
		return nil
	}
}

// deliver feeds every message cmd produces back into the model.
func deliver(m *Model, cmd tea.Cmd) []tea.Msg {
	msgs := collect(cmd)
	for _, msg := range msgs {
		m.Update(msg)
	}
	return msgs
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func loaded(t *testing.T, n int) (*Model, *fakeService) {
	t.Helper()
	svc := newFakeService(n)
	m := New(app.NewState(), svc)
	m.SetSize(120, 100)
	deliver(m, m.Init())
	if m.loading {
		t.Fatal("model still loading after Init")
	}
	return m, svc
}

func TestNew(t *testing.T) {
	m := New(nil, nil)
	if m.dayRange != models.DayRange30Days {
		t.Errorf("dayRange = %v, want 30 Days", m.dayRange)
	}
	if m.CapturingInput() {
		t.Error("new model should not capture input")
	}
}

func TestInitWithoutServices(t *testing.T) {
	m := New(nil, nil)
	msg, ok := findMsg[dailyErrorMsg](collect(m.Init()))
	if !ok {
		t.Fatal("expected dailyErrorMsg")
	}
	_, cmd := m.Update(msg)
	if m.errorMsg == "" {
		t.Error("error not recorded")
	}
	if cmd == nil {
		t.Error("expected an error notification")
	}
}

func TestLoad(t *testing.T) {
	m, svc := loaded(t, 40)
	if len(m.days) != 30 {
		t.Errorf("days = %d, want 30", len(m.days))
	}
	if m.days[0].Date != "2024-03-10" {
		t.Errorf("newest day = %s", m.days[0].Date)
	}
	if svc.ranges[0] != models.DayRange30Days {
		t.Errorf("first range = %v", svc.ranges[0])
	}
}

func TestToggleRange(t *testing.T) {
	m, svc := loaded(t, 40)

	want := []struct {
		r    models.DayRange
		days int
	}{
		{models.DayRangeAll, 40},
		{models.DayRange7Days, 7},
		{models.DayRange30Days, 30},
	}
	for _, w := range want {
		_, cmd := m.Update(keyRunes("t"))
		deliver(m, cmd)
		if m.dayRange != w.r {
			t.Errorf("dayRange = %v, want %v", m.dayRange, w.r)
		}
		if len(m.days) != w.days {
			t.Errorf("%v: days = %d, want %d", w.r, len(m.days), w.days)
		}
		if got := svc.ranges[len(svc.ranges)-1]; got != w.r {
			t.Errorf("service range = %v, want %v", got, w.r)
		}
	}
}

func TestStaleLoadIgnored(t *testing.T) {
	m, _ := loaded(t, 5)
	stale := m.loadCmd(m.loadSeq, m.dayRange)
	m.reload()

	m.Update(stale())
	if !m.loading {
		t.Error("stale result should not finish the current load")
	}
	m.Update(dailyErrorMsg{seq: m.loadSeq - 1, err: errors.New("old")})
	if m.errorMsg != "" {
		t.Error("stale error should be ignored")
	}
}

func TestRebuild(t *testing.T) {
	m, svc := loaded(t, 3)

	m.Update(keyRunes("R"))
	if !m.confirmRebuild || !m.CapturingInput() {
		t.Fatal("R should ask for confirmation")
	}

	_, cmd := m.Update(keyRunes("y"))
	if !m.rebuilding {
		t.Error("rebuilding flag not set")
	}
	msgs := collect(cmd)
	if _, ok := findMsg[app.StartLoadingMsg](msgs); !ok {
		t.Error("rebuild should start the loading indicator")
	}
	result, ok := findMsg[rebuiltMsg](msgs)
	if !ok {
		t.Fatal("rebuild result missing")
	}
	if svc.rebuilds != 1 {
		t.Errorf("rebuilds = %d, want 1", svc.rebuilds)
	}

	before := len(svc.ranges)
	_, cmd = m.Update(result)
	if m.rebuilding {
		t.Error("rebuilding flag not cleared")
	}
	msgs = collect(cmd)
	if _, ok := findMsg[app.StopLoadingMsg](msgs); !ok {
		t.Error("rebuild should stop the loading indicator")
	}
	if len(result.days) != 3 {
		t.Errorf("rebuilt days = %d, want 3", len(result.days))
	}
	if len(svc.ranges) != before+1 {
		t.Error("rebuild should reload the days")
	}
}

func TestRebuildCancel(t *testing.T) {
	m, svc := loaded(t, 3)
	m.Update(keyRunes("R"))
	_, cmd := m.Update(keyRunes("t"))
	if cmd != nil {
		t.Error("cancelling key should not act")
	}
	if m.confirmRebuild || m.rebuilding || svc.rebuilds != 0 {
		t.Error("rebuild should be cancelled")
	}
	if m.dayRange != models.DayRange30Days {
		t.Error("cancelling key should not toggle the range")
	}
}

func TestRebuildError(t *testing.T) {
	m, svc := loaded(t, 3)
	svc.rebuildErr = errors.New("locked")

	m.Update(keyRunes("R"))
	_, cmd := m.Update(keyRunes("y"))
	result, ok := findMsg[rebuildErrorMsg](collect(cmd))
	if !ok {
		t.Fatal("expected rebuildErrorMsg")
	}

	_, cmd = m.Update(result)
	n, ok := findMsg[app.AddNotificationMsg](collect(cmd))
	if !ok || n.Type != app.NotificationError || !strings.Contains(n.Message, "locked") {
		t.Errorf("notification = %+v", n)
	}
	if m.rebuilding {
		t.Error("rebuilding flag not cleared")
	}
}

func TestReloadTriggers(t *testing.T) {
	tests := []struct {
		name   string
		msg    tea.Msg
		reload bool
	}{
		{"Saved", app.ServiceEventMsg{Event: services.ReportSavedEvent{}}, true},
		{"Deleted", app.ServiceEventMsg{Event: services.ReportDeletedEvent{}}, true},
		{"Updated", app.ServiceEventMsg{Event: services.ReportUpdatedEvent{}}, false},
		{"DailyChanged", app.DailyChangedMsg{}, true},
		{"SwitchToDaily", app.TabSwitchMsg{Tab: app.TabDaily}, true},
		{"SwitchElsewhere", app.TabSwitchMsg{Tab: app.TabReports}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := loaded(t, 3)
			seq := m.loadSeq
			m.Update(tt.msg)
			if got := m.loadSeq != seq; got != tt.reload {
				t.Errorf("reloaded = %v, want %v", got, tt.reload)
			}
		})
	}
}

func TestLatestBarAnimates(t *testing.T) {
	m, _ := loaded(t, 3)
	if m.latest.Percent() != 0 {
		t.Fatalf("bar should start empty, got %v", m.latest.Percent())
	}
	m.Update(components.AnimationTickMsg(time.Now()))
	if got := m.latest.Percent(); got != 5 {
		t.Errorf("percent after one tick = %v, want 5", got)
	}
}

func TestLoadingTick(t *testing.T) {
	m, _ := loaded(t, 3)
	if _, cmd := m.Update(loadingTickMsg{}); cmd != nil {
		t.Error("idle model should stop ticking")
	}
	m.rebuilding = true
	_, cmd := m.Update(loadingTickMsg{})
	if cmd == nil || m.loadingFrame != 1 {
		t.Error("rebuilding model should advance the frame")
	}
}

func TestLoadingSpinner(t *testing.T) {
	m := New(app.NewState(), newFakeService(3))
	m.SetSize(120, 100)

	msgs := collect(m.Init())
	if !m.spinner.Active() {
		t.Fatal("spinner should run while days load")
	}
	if !strings.Contains(m.View(), "Loading daily stats...") {
		t.Error("View should show the loading spinner")
	}

	tick, ok := findMsg[spinner.TickMsg](msgs)
	if !ok {
		t.Fatal("load should start the spinner tick")
	}
	if _, cmd := m.Update(tick); cmd == nil {
		t.Error("spinner should keep ticking while loading")
	}

	result, _ := findMsg[dailyLoadedMsg](msgs)
	m.Update(result)
	if m.spinner.Active() {
		t.Error("spinner should stop once days arrive")
	}
	if _, cmd := m.Update(tick); cmd != nil {
		t.Error("stopped spinner should not schedule ticks")
	}
}

func TestRebuildSpinner(t *testing.T) {
	m, _ := loaded(t, 3)

	m.Update(keyRunes("R"))
	_, cmd := m.Update(keyRunes("y"))
	if !m.spinner.Active() || m.spinner.Label() != "Rebuilding daily stats..." {
		t.Fatalf("rebuild spinner: active = %v, label = %q", m.spinner.Active(), m.spinner.Label())
	}
	if !strings.Contains(m.View(), "Rebuilding daily stats...") {
		t.Error("View should show the rebuild spinner")
	}

	deliver(m, m.reload())
	if !m.spinner.Active() || m.spinner.Label() != "Rebuilding daily stats..." {
		t.Error("a load finishing mid-rebuild should leave the rebuild spinner running")
	}

	result, ok := findMsg[rebuiltMsg](collect(cmd))
	if !ok {
		t.Fatal("rebuild result missing")
	}
	_, cmd = m.Update(result)
	deliver(m, cmd)
	if m.spinner.Active() {
		t.Error("spinner should stop after the rebuilt days are reloaded")
	}
}

func TestResourceTotals(t *testing.T) {
	m, _ := loaded(t, 3)
	view := ansi.Strip(m.View())
	// Cells 0+10+20 and reroll 0+5+10 over the window.
	for _, want := range []string{" Cells │", "Reroll │", "█ 30", "█ 15"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestView(t *testing.T) {
	m, _ := loaded(t, 3)
	view := m.View()
	for _, want := range []string{"Daily", "[t] 30 Days", "2024-03-08 → 2024-03-10", "Coin Trend", "Cells & Reroll", "Play Time", "Latest: 2024-03-10"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewStates(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *Model)
		want  string
	}{
		{"Empty", func(*Model) {}, "No daily stats yet."},
		{"Loading", func(m *Model) { m.loading = true }, "Loading daily stats..."},
		{"Error", func(m *Model) { m.errorMsg = "boom" }, "boom"},
		{"Rebuilding", func(m *Model) {
			m.rebuilding = true
			m.spinner.Start("Rebuilding daily stats...")
		}, "Rebuilding daily stats..."},
		{"Confirm", func(m *Model) { m.confirmRebuild = true }, "[y] confirm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil, nil)
			m.SetSize(100, 40)
			tt.setup(m)
			if view := m.View(); !strings.Contains(view, tt.want) {
				t.Errorf("view missing %q", tt.want)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	m := New(nil, nil)
	if len(m.ShortHelp()) != 3 {
		t.Errorf("ShortHelp() = %d bindings, want 3", len(m.ShortHelp()))
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp() = %d groups, want 2", len(m.FullHelp()))
	}
}

func TestLoadError(t *testing.T) {
	m, svc := loaded(t, 3)
	svc.dailyErr = fmt.Errorf("query: %w", errors.New("disk"))
	_, cmd := m.Update(keyRunes("r"))
	deliver(m, cmd)
	if !strings.Contains(m.errorMsg, "disk") {
		t.Errorf("errorMsg = %q", m.errorMsg)
	}
	if len(m.days) != 3 {
		t.Error("failed reload should keep the previous days")
	}
}

var _ app.InputCapturer = (*Model)(nil)
