// Package reports provides the tab that lists saved battle reports.
package reports

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tower-battlelog/internal/app"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/services"
	"github.com/j-veylop/tower-battlelog/internal/ui/components"
)

// Service is the subset of the service manager the tab needs.
type Service interface {
	ListReports(ctx context.Context, filter models.ReportFilter, cursor *models.Cursor) (*models.ReportPage, error)
	Summary(r models.Report) models.ParsedMetrics
	UpdateReportType(ctx context.Context, id string, t models.ReportType) error
	UpdateReportMemo(ctx context.Context, id, memo string) error
	DeleteReport(ctx context.Context, id string) error
	Tables() report.Tables
}

// keyMap defines the key bindings specific to the reports tab.
type keyMap struct {
	Filter   key.Binding
	Up       key.Binding
	Down     key.Binding
	Detail   key.Binding
	Type     key.Binding
	Memo     key.Binding
	Delete   key.Binding
	More     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	SaveMemo key.Binding
}

// defaultKeyMap returns the default key bindings for the reports tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "cycle filter"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "toggle detail"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle type"),
		),
		Memo: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit memo"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		More: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "load more"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		SaveMemo: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "save memo"),
		),
	}
}

// pageLoadedMsg carries one page of reports. seq drops pages from superseded loads.
type pageLoadedMsg struct {
	seq       int
	page      *models.ReportPage
	summaries map[string]models.ParsedMetrics
	appendTo  bool
}

// pageErrorMsg is sent when a page could not be loaded.
type pageErrorMsg struct {
	seq int
	err error
}

// typeChangedMsg is sent after a report's type was stored.
type typeChangedMsg struct {
	id string
	t  models.ReportType
}

// memoSavedMsg is sent after a report's memo was stored.
type memoSavedMsg struct {
	id   string
	memo string
}

// deletedMsg is sent after a report was deleted.
type deletedMsg struct {
	id string
}

// actionErrorMsg is sent when a type, memo or delete action fails.
type actionErrorMsg struct {
	action string
	err    error
}

// Model represents the reports tab state.
type Model struct {
	state    *app.State
	services Service
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model
	memo     textinput.Model
	spinner  components.LoadingSpinner

	filter    models.ReportFilter
	items     []models.Report
	summaries map[string]models.ParsedMetrics
	next      *models.Cursor
	hasMore   bool
	selected  int
	expanded  string

	loading       bool
	loadSeq       int
	errorMsg      string
	editing       bool
	confirmDelete bool
}

// New creates a new reports model.
func New(state *app.State, svc Service) *Model {
	ti := textinput.New()
	ti.Placeholder = "memo"
	ti.CharLimit = 200
	ti.Prompt = "memo> "

	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		memo:      ti,
		spinner:   components.NewSpinner("Loading reports..."),
		filter:    models.FilterAll,
		summaries: make(map[string]models.ParsedMetrics),
	}
}

// Init loads the first page.
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

// CapturingInput reports whether the memo editor or a delete prompt owns the keyboard.
func (m *Model) CapturingInput() bool {
	return m.editing || m.confirmDelete
}

// reload starts loading the first page for the current filter.
func (m *Model) reload() tea.Cmd {
	m.loadSeq++
	m.loading = true
	return tea.Batch(
		m.loadPageCmd(m.loadSeq, nil, false),
		m.spinner.Start("Loading reports..."),
	)
}

// loadMore fetches the page after the last loaded report.
func (m *Model) loadMore() tea.Cmd {
	if m.loading || !m.hasMore || m.next == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(
		m.loadPageCmd(m.loadSeq, m.next, true),
		m.spinner.Start("Loading more reports..."),
	)
}

func (m *Model) loadPageCmd(seq int, cursor *models.Cursor, appendTo bool) tea.Cmd {
	svc := m.services
	filter := m.filter
	return func() tea.Msg {
		if svc == nil {
			return pageErrorMsg{seq: seq, err: fmt.Errorf("services not initialized")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), app.CommandTimeout)
		defer cancel()

		page, err := svc.ListReports(ctx, filter, cursor)
		if err != nil {
			return pageErrorMsg{seq: seq, err: err}
		}
		summaries := make(map[string]models.ParsedMetrics, len(page.Reports))
		for _, r := range page.Reports {
			summaries[r.ID] = svc.Summary(r)
		}
		return pageLoadedMsg{seq: seq, page: page, summaries: summaries, appendTo: appendTo}
	}
}

// Update handles messages for the reports tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case pageLoadedMsg:
		m.handlePageLoaded(msg)
		return m, nil

	case pageErrorMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		m.spinner.Stop()
		m.errorMsg = msg.err.Error()
		return m, app.NotifyError(fmt.Sprintf("Reports error: %s", msg.err))

	case typeChangedMsg:
		m.handleTypeChanged(msg)
		return m, app.NotifySuccess(fmt.Sprintf("Type set to %s", msg.t))

	case memoSavedMsg:
		if i := m.indexOf(msg.id); i >= 0 {
			m.items[i].Memo = msg.memo
		}
		return m, app.NotifySuccess("Memo saved")

	case deletedMsg:
		m.removeItem(msg.id)
		return m, app.NotifySuccess("Report deleted")

	case actionErrorMsg:
		return m, app.NotifyError(fmt.Sprintf("Failed to %s: %s", msg.action, msg.err))

	case app.ReportsChangedMsg:
		return m, m.reload()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.ServiceEventMsg:
		if _, ok := msg.Event.(services.ReportSavedEvent); ok {
			return m, m.reload()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handlePageLoaded(msg pageLoadedMsg) {
	if msg.seq != m.loadSeq {
		return
	}
	m.loading = false
	m.spinner.Stop()
	m.errorMsg = ""

	if !msg.appendTo {
		m.items = nil
		m.summaries = make(map[string]models.ParsedMetrics, len(msg.page.Reports))
	}
	m.items = append(m.items, msg.page.Reports...)
	for id, s := range msg.summaries {
		m.summaries[id] = s
	}
	m.next = msg.page.Next
	m.hasMore = msg.page.HasMore
	m.selected = min(m.selected, max(len(m.items)-1, 0))
	if m.expanded != "" && m.indexOf(m.expanded) < 0 {
		m.expanded = ""
	}
}

func (m *Model) handleTypeChanged(msg typeChangedMsg) {
	i := m.indexOf(msg.id)
	if i < 0 {
		return
	}
	m.items[i].Type = msg.t
	if !m.filter.Matches(msg.t) {
		m.removeItem(msg.id)
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if m.editing {
		return m.handleMemoKey(msg)
	}
	if m.confirmDelete {
		m.confirmDelete = false
		if key.Matches(msg, m.keys.Confirm) {
			return m, m.deleteCmd()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Filter):
		m.filter = m.filter.Next()
		m.selected = 0
		m.expanded = ""
		return m, m.reload()

	case key.Matches(msg, m.keys.Up):
		m.selected = max(m.selected-1, 0)

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.items)-1 {
			m.selected++
		}
		if m.selected == len(m.items)-1 {
			return m, m.loadMore()
		}

	case key.Matches(msg, m.keys.More):
		return m, m.loadMore()

	case key.Matches(msg, m.keys.Detail):
		if r, ok := m.current(); ok {
			if m.expanded == r.ID {
				m.expanded = ""
			} else {
				m.expanded = r.ID
			}
		}

	case key.Matches(msg, m.keys.Type):
		return m, m.cycleTypeCmd()

	case key.Matches(msg, m.keys.Memo):
		if r, ok := m.current(); ok {
			m.editing = true
			m.memo.SetValue(r.Memo)
			m.memo.CursorEnd()
			return m, m.memo.Focus()
		}

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.current(); ok {
			m.confirmDelete = true
		}

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleMemoKey(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.editing = false
		m.memo.Blur()
		return m, nil

	case key.Matches(msg, m.keys.SaveMemo):
		m.editing = false
		m.memo.Blur()
		return m, m.saveMemoCmd(m.memo.Value())
	}

	var cmd tea.Cmd
	m.memo, cmd = m.memo.Update(msg)
	return m, cmd
}

func (m *Model) cycleTypeCmd() tea.Cmd {
	r, ok := m.current()
	if !ok || m.services == nil {
		return nil
	}
	svc := m.services
	next := r.Type.Next()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.CommandTimeout)
		defer cancel()
		if err := svc.UpdateReportType(ctx, r.ID, next); err != nil {
			return actionErrorMsg{action: "update type", err: err}
		}
		return typeChangedMsg{id: r.ID, t: next}
	}
}

func (m *Model) saveMemoCmd(memo string) tea.Cmd {
	r, ok := m.current()
	if !ok || m.services == nil {
		return nil
	}
	svc := m.services
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.CommandTimeout)
		defer cancel()
		if err := svc.UpdateReportMemo(ctx, r.ID, memo); err != nil {
			return actionErrorMsg{action: "save memo", err: err}
		}
		return memoSavedMsg{id: r.ID, memo: strings.TrimSpace(memo)}
	}
}

func (m *Model) deleteCmd() tea.Cmd {
	r, ok := m.current()
	if !ok || m.services == nil {
		return nil
	}
	svc := m.services
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.CommandTimeout)
		defer cancel()
		if err := svc.DeleteReport(ctx, r.ID); err != nil {
			return actionErrorMsg{action: "delete report", err: err}
		}
		return deletedMsg{id: r.ID}
	}
}

func (m *Model) current() (models.Report, bool) {
	if m.selected < 0 || m.selected >= len(m.items) {
		return models.Report{}, false
	}
	return m.items[m.selected], true
}

func (m *Model) indexOf(id string) int {
	return slices.IndexFunc(m.items, func(r models.Report) bool { return r.ID == id })
}

func (m *Model) removeItem(id string) {
	i := m.indexOf(id)
	if i < 0 {
		return
	}
	m.items = slices.Delete(m.items, i, i+1)
	delete(m.summaries, id)
	if m.expanded == id {
		m.expanded = ""
	}
	m.selected = min(m.selected, max(len(m.items)-1, 0))
}

// SetSize sets the available size for the reports tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-headerHeight-footerHeight, 1)
	m.memo.Width = max(width-12, 10)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.SaveMemo, m.keys.Cancel}
	}
	return []key.Binding{
		m.keys.Filter,
		m.keys.Detail,
		m.keys.Type,
		m.keys.Memo,
		m.keys.Delete,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Detail, m.keys.More},
		{m.keys.Filter, m.keys.Type, m.keys.Memo, m.keys.Delete},
	}
}
