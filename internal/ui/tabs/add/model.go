// Package add provides the tab for pasting and saving a new battle report.
package add

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tower-battlelog/internal/app"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/services/reports"
)

// tabGlyph stands in for tab characters inside the editor, which would
// otherwise expand them to spaces and lose the label/value separator.
const tabGlyph = "␉"

// Service is the subset of the service manager the tab needs.
type Service interface {
	Preview(raw string) models.ParsedMetrics
	SaveReport(ctx context.Context, raw string, t models.ReportType) (*models.Report, models.ParsedMetrics, error)
	Tables() report.Tables
}

// keyMap defines the key bindings specific to the add tab.
type keyMap struct {
	Save     key.Binding
	Type     key.Binding
	Clear    key.Binding
	Edit     key.Binding
	StopEdit key.Binding
}

// defaultKeyMap returns the default key bindings for the add tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save report"),
		),
		Type: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "cycle type"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "clear"),
		),
		Edit: key.NewBinding(
			key.WithKeys("i", "enter"),
			key.WithHelp("i", "edit"),
		),
		StopEdit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop editing"),
		),
	}
}

// savedMsg is sent when a report was stored.
type savedMsg struct {
	report  *models.Report
	metrics models.ParsedMetrics
}

// saveErrorMsg is sent when storing a report failed.
type saveErrorMsg struct {
	err error
}

// Model represents the add tab state.
type Model struct {
	state    *app.State
	services Service
	width    int
	height   int
	keys     keyMap
	editor   textarea.Model

	saveType  models.ReportType
	raw       string
	preview   models.ParsedMetrics
	previewed bool
	saving    bool
}

// New creates a new add model.
func New(state *app.State, svc Service) *Model {
	ta := textarea.New()
	ta.Placeholder = "Paste a battle report here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.MaxHeight = 0

	m := &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		editor:   ta,
		saveType: models.ReportTypeUnclassified,
	}
	if state != nil {
		m.saveType = state.GetSaveType()
	}
	m.refreshPreview()
	return m
}

// Init initializes the add tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// CapturingInput reports whether the editor has focus.
func (m *Model) CapturingInput() bool {
	return m.editor.Focused()
}

// Raw returns the editor content with tab separators restored.
func (m *Model) Raw() string {
	return strings.ReplaceAll(m.editor.Value(), tabGlyph, "\t")
}

// SetRaw replaces the editor content.
func (m *Model) SetRaw(raw string) {
	m.editor.SetValue(strings.ReplaceAll(raw, "\t", tabGlyph))
	m.refreshPreview()
}

func (m *Model) refreshPreview() {
	raw := m.Raw()
	if m.previewed && raw == m.raw {
		return
	}
	m.raw = raw
	m.previewed = true
	if m.services != nil {
		m.preview = m.services.Preview(raw)
	} else {
		m.preview = report.DefaultParser().Parse(raw)
	}
}

// Update handles messages for the add tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.saving = false
		m.editor.Reset()
		m.refreshPreview()
		date := msg.metrics.BattleDateText()
		return m, app.NotifySuccess(fmt.Sprintf("Saved %s as %s", date, msg.report.Type))

	case saveErrorMsg:
		m.saving = false
		return m, app.NotifyError(describeSaveError(msg.err))

	case app.SaveTypeChangedMsg:
		m.saveType = msg.Type

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.editor.Focused() {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()

	case key.Matches(msg, m.keys.Type):
		m.saveType = m.saveType.Next()
		return m, app.Emit(app.SaveTypeChangedMsg{Type: m.saveType})

	case key.Matches(msg, m.keys.Clear):
		m.editor.Reset()
		m.refreshPreview()
		return m, nil
	}

	if !m.editor.Focused() {
		if key.Matches(msg, m.keys.Edit) {
			return m, m.editor.Focus()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.StopEdit) {
		m.editor.Blur()
		return m, nil
	}

	switch {
	case msg.Type == tea.KeyTab:
		m.editor.InsertString(tabGlyph)
		m.refreshPreview()
		return m, nil
	case msg.Type == tea.KeyRunes && strings.ContainsRune(string(msg.Runes), '\t'):
		msg.Runes = []rune(strings.ReplaceAll(string(msg.Runes), "\t", tabGlyph))
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.refreshPreview()
	return m, cmd
}

func (m *Model) saveCmd() tea.Cmd {
	if m.saving || m.services == nil {
		return nil
	}
	m.saving = true
	svc := m.services
	raw := m.Raw()
	t := m.saveType
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.CommandTimeout)
		defer cancel()
		r, metrics, err := svc.SaveReport(ctx, raw, t)
		if err != nil {
			return saveErrorMsg{err: err}
		}
		return savedMsg{report: r, metrics: metrics}
	}
}

func describeSaveError(err error) string {
	switch {
	case errors.Is(err, reports.ErrEmptyReport):
		return "Nothing to save: paste a battle report first"
	case errors.Is(err, reports.ErrNoBattleDate):
		return "Report has no Battle Date line"
	default:
		return fmt.Sprintf("Save failed: %v", err)
	}
}

// SetSize sets the available size for the add tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	w, h := m.editorSize()
	m.editor.SetWidth(w)
	m.editor.SetHeight(h)
}

// editorSize splits the width with the preview when there is room.
// The card around the editor takes six columns and four rows.
func (m *Model) editorSize() (int, int) {
	h := max(m.height-headerHeight-6, 3)
	if m.sideBySide() {
		return max(m.width/2-10, 20), h
	}
	return max(m.width-12, 20), max(h/2, 3)
}

func (m *Model) sideBySide() bool {
	return m.width >= 100
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editor.Focused() {
		return []key.Binding{m.keys.Save, m.keys.Type, m.keys.StopEdit}
	}
	return []key.Binding{m.keys.Edit, m.keys.Save, m.keys.Type}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Edit, m.keys.StopEdit, m.keys.Clear},
		{m.keys.Save, m.keys.Type},
	}
}
