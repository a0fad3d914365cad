package add

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tower-battlelog/internal/app"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/services/reports"
)

const sampleReport = "Battle Report\nBattle Date Mar 10, 2024 08:00\nCoins earned\t12K\n"

type fakeService struct {
	saved    []string
	types    []models.ReportType
	saveErr  error
	previews int
}

func (f *fakeService) Preview(raw string) models.ParsedMetrics {
	f.previews++
	return report.DefaultParser().Parse(raw)
}

func (f *fakeService) SaveReport(_ context.Context, raw string, t models.ReportType) (*models.Report, models.ParsedMetrics, error) {
	if f.saveErr != nil {
		return nil, models.ParsedMetrics{}, f.saveErr
	}
	f.saved = append(f.saved, raw)
	f.types = append(f.types, t)
	r := &models.Report{ID: fmt.Sprintf("r%d", len(f.saved)), Raw: raw, Type: t, CreatedAt: time.Now()}
	return r, report.DefaultParser().Parse(raw), nil
}

func (f *fakeService) Tables() report.Tables {
	return report.DefaultTables()
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func notification(t *testing.T, cmd tea.Cmd) app.AddNotificationMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a notification command")
	}
	msg, ok := cmd().(app.AddNotificationMsg)
	if !ok {
		t.Fatalf("expected AddNotificationMsg, got %T", msg)
	}
	return msg
}

func TestNew(t *testing.T) {
	state := app.NewState()
	state.SetSaveType(models.ReportTypeTournament)

	m := New(state, &fakeService{})
	if m.saveType != models.ReportTypeTournament {
		t.Errorf("saveType = %v, want Tournament", m.saveType)
	}
	if m.CapturingInput() {
		t.Error("editor should start unfocused")
	}
	if m.Raw() != "" {
		t.Errorf("Raw() = %q, want empty", m.Raw())
	}

	m = New(nil, nil)
	if m.saveType != models.ReportTypeUnclassified {
		t.Errorf("saveType without state = %v", m.saveType)
	}
	if m.Init() != nil {
		t.Error("Init should not return a command")
	}
}

func TestTabSeparatorsSurvive(t *testing.T) {
	m := New(nil, &fakeService{})
	m.SetRaw(sampleReport)

	if got := m.Raw(); got != sampleReport {
		t.Errorf("Raw() = %q, want %q", got, sampleReport)
	}
	if strings.Contains(m.editor.Value(), "\t") {
		t.Error("editor should not hold raw tab characters")
	}
	if m.preview.Coins != 12000 {
		t.Errorf("preview coins = %v, want 12000", m.preview.Coins)
	}
	if m.preview.BattleDateText() != "24-03-10 08:00" {
		t.Errorf("preview date = %q", m.preview.BattleDateText())
	}
}

func TestTypingWithTabs(t *testing.T) {
	m := New(nil, &fakeService{})
	m.Update(keyRunes("i"))
	if !m.CapturingInput() {
		t.Fatal("i should focus the editor")
	}

	m.Update(keyRunes("Coins earned"))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m.Update(keyRunes("3K"))

	if got := m.Raw(); got != "Coins earned\t3K" {
		t.Errorf("Raw() = %q", got)
	}
	if m.preview.Coins != 3000 {
		t.Errorf("preview coins = %v, want 3000", m.preview.Coins)
	}

	m.Update(keyRunes("\nCells earned\t40"))
	if got := m.Raw(); !strings.HasSuffix(got, "Cells earned\t40") {
		t.Errorf("pasted tab lost: %q", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.CapturingInput() {
		t.Error("esc should blur the editor")
	}
}

func TestUnfocusedIgnoresTyping(t *testing.T) {
	m := New(nil, &fakeService{})
	m.Update(keyRunes("x"))
	if m.Raw() != "" {
		t.Errorf("unfocused editor accepted input: %q", m.Raw())
	}
}

func TestCycleSaveType(t *testing.T) {
	m := New(nil, &fakeService{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if cmd == nil {
		t.Fatal("ctrl+t should emit a command")
	}
	msg, ok := cmd().(app.SaveTypeChangedMsg)
	if !ok {
		t.Fatalf("expected SaveTypeChangedMsg, got %T", msg)
	}
	if msg.Type != models.ReportTypeFarming || m.saveType != models.ReportTypeFarming {
		t.Errorf("type = %v / %v, want Farming", msg.Type, m.saveType)
	}

	m.Update(app.SaveTypeChangedMsg{Type: models.ReportTypeClimb})
	if m.saveType != models.ReportTypeClimb {
		t.Errorf("saveType = %v, want Climb", m.saveType)
	}
}

func TestSave(t *testing.T) {
	svc := &fakeService{}
	m := New(nil, svc)
	m.saveType = models.ReportTypeFarming
	m.SetRaw(sampleReport)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("ctrl+s should return a save command")
	}
	if !m.saving {
		t.Error("saving flag not set")
	}
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); again != nil {
		t.Error("second save while saving should be ignored")
	}

	_, cmd = m.Update(cmd())
	n := notification(t, cmd)
	if n.Type != app.NotificationSuccess {
		t.Errorf("notification type = %v", n.Type)
	}
	if !strings.Contains(n.Message, "24-03-10 08:00") || !strings.Contains(n.Message, "Farming") {
		t.Errorf("notification = %q", n.Message)
	}

	if len(svc.saved) != 1 || svc.saved[0] != sampleReport {
		t.Errorf("saved = %q", svc.saved)
	}
	if svc.types[0] != models.ReportTypeFarming {
		t.Errorf("saved type = %v", svc.types[0])
	}
	if m.Raw() != "" || m.saving {
		t.Error("editor should be cleared after save")
	}
}

func TestSaveErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"Empty", reports.ErrEmptyReport, "Nothing to save"},
		{"NoDate", fmt.Errorf("save: %w", reports.ErrNoBattleDate), "no Battle Date"},
		{"Other", errors.New("disk full"), "Save failed: disk full"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil, &fakeService{saveErr: tt.err})
			m.SetRaw("junk")

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
			_, cmd = m.Update(cmd())
			n := notification(t, cmd)
			if n.Type != app.NotificationError {
				t.Errorf("notification type = %v", n.Type)
			}
			if !strings.Contains(n.Message, tt.want) {
				t.Errorf("message = %q, want %q", n.Message, tt.want)
			}
			if m.Raw() != "junk" {
				t.Error("failed save should keep the editor content")
			}
		})
	}
}

func TestSaveWithoutServices(t *testing.T) {
	m := New(nil, nil)
	m.SetRaw(sampleReport)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS}); cmd != nil {
		t.Error("save without services should be a no-op")
	}
	if m.preview.Coins != 12000 {
		t.Error("preview should fall back to the default parser")
	}
}

func TestClear(t *testing.T) {
	m := New(nil, &fakeService{})
	m.SetRaw(sampleReport)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.Raw() != "" {
		t.Errorf("Raw() after clear = %q", m.Raw())
	}
	if m.preview.HasBattleDate {
		t.Error("preview should be reset")
	}
}

func TestPreviewCached(t *testing.T) {
	svc := &fakeService{}
	m := New(nil, svc)
	m.SetRaw(sampleReport)
	before := svc.previews
	m.refreshPreview()
	m.refreshPreview()
	if svc.previews != before {
		t.Errorf("preview recomputed for unchanged text: %d -> %d", before, svc.previews)
	}
}

func TestView(t *testing.T) {
	for _, width := range []int{80, 140} {
		t.Run(fmt.Sprintf("Width%d", width), func(t *testing.T) {
			m := New(nil, &fakeService{})
			m.SetSize(width, 40)
			m.SetRaw(sampleReport)

			view := m.View()
			for _, want := range []string{"Add Report", "Preview", "Unclassified", "24-03-10 08:00"} {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q", want)
				}
			}
		})
	}
}

func TestHelp(t *testing.T) {
	m := New(nil, nil)
	if len(m.ShortHelp()) == 0 || len(m.FullHelp()) == 0 {
		t.Error("help bindings should not be empty")
	}
	m.Update(keyRunes("i"))
	if m.ShortHelp()[2].Help().Key != "esc" {
		t.Error("focused help should offer esc")
	}
}

var _ app.InputCapturer = (*Model)(nil)
