package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
)

// LoadingSpinner is the labeled spinner a tab shows while a query is in flight.
// It only animates between Start and Stop; ticks arriving after Stop end the
// tick chain.
type LoadingSpinner struct {
	model  spinner.Model
	label  string
	active bool
}

// NewSpinner creates an idle spinner with the given label.
func NewSpinner(label string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{model: s, label: label}
}

// Start activates the spinner under label and returns the command that
// drives it. Starting an active spinner only relabels it.
func (l *LoadingSpinner) Start(label string) tea.Cmd {
	l.label = label
	l.active = true
	return l.model.Tick
}

// Stop halts the animation.
func (l *LoadingSpinner) Stop() {
	l.active = false
}

// Active reports whether the spinner is animating.
func (l LoadingSpinner) Active() bool {
	return l.active
}

// Label returns the current label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// Update advances the spinner on its own ticks while active.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	if !l.active {
		return l, nil
	}
	var cmd tea.Cmd
	l.model, cmd = l.model.Update(msg)
	return l, cmd
}

// View renders the spinner frame followed by its label.
func (l LoadingSpinner) View() string {
	return l.model.View() + " " + styles.HelpStyle.Render(l.label)
}

// RenderSpinnerCentered renders a spinner centered in a given width and height.
func RenderSpinnerCentered(l LoadingSpinner, width, height int) string {
	return styles.CenterBoth(l.View(), width, height)
}
