// Package daily provides the tab for per-day totals and trends.
package daily

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/tower-battlelog/internal/app"
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/services"
	"github.com/j-veylop/tower-battlelog/internal/ui/components"
)

// rebuildResource is the loading resource name shown while days are rebuilt.
const rebuildResource = "rebuild"

// Service is the subset of the service manager the tab needs.
type Service interface {
	Daily(ctx context.Context, r models.DayRange) ([]models.DailyAggregate, error)
	RebuildDaily(ctx context.Context) ([]models.DailyAggregate, error)
	Tables() report.Tables
}

// keyMap defines the key bindings specific to the daily tab.
type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	Rebuild     key.Binding
	Confirm     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the daily tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Rebuild: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "rebuild daily stats"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "confirm"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// dailyLoadedMsg carries the days of one load, newest first.
type dailyLoadedMsg struct {
	seq  int
	days []models.DailyAggregate
}

// dailyErrorMsg is sent when loading days failed.
type dailyErrorMsg struct {
	seq int
	err error
}

// rebuiltMsg is sent when a rebuild finished.
type rebuiltMsg struct {
	days []models.DailyAggregate
}

// rebuildErrorMsg is sent when a rebuild failed.
type rebuildErrorMsg struct {
	err error
}

// loadingTickMsg advances the rebuild placeholder animation.
type loadingTickMsg struct{}

func loadingTick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return loadingTickMsg{}
	})
}

// Model represents the daily tab state.
type Model struct {
	state    *app.State
	services Service
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	dayRange models.DayRange
	days     []models.DailyAggregate
	loading  bool
	loadSeq  int
	errorMsg string

	confirmRebuild bool
	rebuilding     bool
	loadingFrame   int

	// latest animates the most recent day's fill.
	latest  components.DayBar
	spinner components.LoadingSpinner
}

// New creates a new daily model.
func New(state *app.State, svc Service) *Model {
	return &Model{
		state:    state,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		dayRange: models.DayRange30Days,
		latest:   components.NewDayBar(),
		spinner:  components.NewSpinner("Loading daily stats..."),
	}
}

// Init initializes the daily tab.
func (m *Model) Init() tea.Cmd {
	return m.reload()
}

// CapturingInput reports whether a rebuild confirmation is pending.
func (m *Model) CapturingInput() bool {
	return m.confirmRebuild
}

// reload starts a fresh load, superseding any in flight.
func (m *Model) reload() tea.Cmd {
	m.loadSeq++
	m.loading = true
	if m.rebuilding {
		return m.loadCmd(m.loadSeq, m.dayRange)
	}
	return tea.Batch(
		m.loadCmd(m.loadSeq, m.dayRange),
		m.spinner.Start("Loading daily stats..."),
	)
}

func (m *Model) loadCmd(seq int, r models.DayRange) tea.Cmd {
	svc := m.services
	return func() tea.Msg {
		if svc == nil {
			return dailyErrorMsg{seq: seq, err: fmt.Errorf("services not initialized")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), app.CommandTimeout)
		defer cancel()
		days, err := svc.Daily(ctx, r)
		if err != nil {
			return dailyErrorMsg{seq: seq, err: err}
		}
		return dailyLoadedMsg{seq: seq, days: days}
	}
}

func (m *Model) rebuildCmd() tea.Cmd {
	if m.rebuilding || m.services == nil {
		return nil
	}
	m.rebuilding = true
	m.loadingFrame = 0
	svc := m.services
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), app.CommandTimeout)
		defer cancel()
		days, err := svc.RebuildDaily(ctx)
		if err != nil {
			return rebuildErrorMsg{err: err}
		}
		return rebuiltMsg{days: days}
	}
	return tea.Batch(
		app.Emit(app.StartLoadingMsg{Resource: rebuildResource}),
		run,
		loadingTick(),
		m.spinner.Start("Rebuilding daily stats..."),
	)
}

// Update handles messages for the daily tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case dailyLoadedMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		m.stopSpinner()
		m.errorMsg = ""
		m.days = msg.days
		if len(m.days) > 0 {
			cmds = append(cmds, m.latest.SetPercent(m.days[0].DayFillPercent()))
		}

	case dailyErrorMsg:
		if msg.seq != m.loadSeq {
			return m, nil
		}
		m.loading = false
		m.stopSpinner()
		m.errorMsg = msg.err.Error()
		return m, app.NotifyError(fmt.Sprintf("Daily stats error: %v", msg.err))

	case rebuiltMsg:
		m.rebuilding = false
		return m, tea.Batch(
			app.Emit(app.StopLoadingMsg{Resource: rebuildResource}),
			m.reload(),
		)

	case rebuildErrorMsg:
		m.rebuilding = false
		m.stopSpinner()
		return m, tea.Batch(
			app.Emit(app.StopLoadingMsg{Resource: rebuildResource}),
			app.NotifyError(fmt.Sprintf("Rebuild failed: %v", msg.err)),
		)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadingTickMsg:
		if m.rebuilding {
			m.loadingFrame++
			return m, loadingTick()
		}
		return m, nil

	case app.ServiceEventMsg:
		switch msg.Event.(type) {
		case services.ReportSavedEvent, services.ReportDeletedEvent:
			cmds = append(cmds, m.reload())
		}

	case app.DailyChangedMsg:
		cmds = append(cmds, m.reload())

	case app.TabSwitchMsg:
		if msg.Tab == app.TabDaily {
			cmds = append(cmds, m.reload())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.latest, cmd = m.latest.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// stopSpinner halts the spinner unless a rebuild still owns it.
func (m *Model) stopSpinner() {
	if !m.rebuilding && !m.loading {
		m.spinner.Stop()
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	if m.confirmRebuild {
		m.confirmRebuild = false
		if key.Matches(msg, m.keys.Confirm) {
			return m, m.rebuildCmd()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.dayRange = m.dayRange.Next()
		return m, m.reload()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.reload()

	case key.Matches(msg, m.keys.Rebuild):
		if !m.rebuilding {
			m.confirmRebuild = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize sets the available size for the daily tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = max(height-headerHeight-footerHeight-2, 0)
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange, m.keys.Refresh, m.keys.Rebuild}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh, m.keys.Rebuild},
		{m.keys.Up, m.keys.Down},
	}
}
