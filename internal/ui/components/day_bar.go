package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
)

// Day-fill gradient, idle gray to played green.
const (
	dayFillFrom = "#6c7a89"
	dayFillTo   = "#51cf66"
)

// AnimationTickMsg advances a DayBar animation.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// DayBar renders how much of a calendar day was spent in battles.
type DayBar struct {
	progress       progress.Model
	isAnimating    bool
	targetPercent  float64
	currentPercent float64
}

// NewDayBar creates a day bar with the default width.
func NewDayBar() DayBar {
	return NewDayBarWithWidth(30)
}

// NewDayBarWithWidth creates a day bar with a specific width.
func NewDayBarWithWidth(width int) DayBar {
	p := progress.New(
		progress.WithScaledGradient(dayFillFrom, dayFillTo),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return DayBar{progress: p}
}

// Init initializes the progress bar model.
func (d DayBar) Init() tea.Cmd {
	return nil
}

// Update steps the animation towards the target percentage.
func (d DayBar) Update(msg tea.Msg) (DayBar, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(AnimationTickMsg); ok && d.isAnimating {
		switch {
		case d.currentPercent < d.targetPercent:
			step := max((d.targetPercent-d.currentPercent)/10, 0.5)
			d.currentPercent = min(d.currentPercent+step, d.targetPercent)
			cmds = append(cmds, animationTick())
		case d.currentPercent > d.targetPercent:
			step := max((d.currentPercent-d.targetPercent)/10, 0.5)
			d.currentPercent = max(d.currentPercent-step, d.targetPercent)
			cmds = append(cmds, animationTick())
		default:
			d.isAnimating = false
		}
	}

	model, cmd := d.progress.Update(msg)
	d.progress = model.(progress.Model)
	cmds = append(cmds, cmd)

	return d, tea.Batch(cmds...)
}

// SetPercent sets the target fill percentage and starts animating towards it.
func (d *DayBar) SetPercent(percent float64) tea.Cmd {
	d.targetPercent = percent

	if !d.isAnimating {
		d.isAnimating = true
		return tea.Batch(
			d.progress.SetPercent(percent/100),
			animationTick(),
		)
	}
	return d.progress.SetPercent(percent / 100)
}

// Percent returns the currently displayed percentage.
func (d DayBar) Percent() float64 {
	return d.currentPercent
}

// SetWidth sets the progress bar width.
func (d *DayBar) SetWidth(width int) {
	d.progress.Width = width
}

// View renders the bar for an aggregate with its played and idle percentages.
func (d DayBar) View(agg models.DailyAggregate, width int) string {
	fill := agg.DayFillPercent()

	d.progress.Width = max(width-32, 10)
	bar := d.progress.ViewAs(fill / 100)

	label := styles.ProgressLabelStyle.Width(12).Render(agg.Date)
	played := styles.GetDayFillStyle(fill).
		Width(8).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", fill))
	idle := styles.HelpStyle.
		Width(12).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("idle %.1f%%", agg.IdlePercent()))

	return lipgloss.JoinHorizontal(lipgloss.Center, label, bar, " ", played, idle)
}

// ViewCompact renders the bar and percentage without a label.
func (d DayBar) ViewCompact(percent float64, width int) string {
	d.progress.Width = max(width-8, 5)

	bar := d.progress.ViewAs(percent / 100)
	pct := styles.GetDayFillStyle(percent).Render(fmt.Sprintf("%.0f%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", pct)
}

var loadingDots = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// DayBarLoading renders a shimmering placeholder bar while days are (re)built.
func DayBarLoading(width, frame int) string {
	const (
		indentWidth  = 12
		percentWidth = 8
		cycle        = 120
	)

	barWidth := max(width-indentWidth-percentWidth-4, 10)

	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	var b strings.Builder
	for i := range barWidth {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}

	dot := lipgloss.NewStyle().
		Width(percentWidth).
		Align(lipgloss.Right).
		Foreground(styles.Primary).
		Render(loadingDots[(frame/2)%len(loadingDots)])

	return lipgloss.JoinHorizontal(lipgloss.Left,
		strings.Repeat(" ", indentWidth),
		b.String(),
		" ",
		dot,
	)
}
