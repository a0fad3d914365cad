package info

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
	"github.com/j-veylop/tower-battlelog/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderStatsCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, collection totals and version")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration")}

	if m.config != nil {
		rows = append(rows,
			m.renderConfigRow("Database", m.config.DatabasePath),
			m.renderConfigRow("Inbox", m.config.InboxPath),
			m.renderConfigRow("Log File", m.config.LogPath),
			m.renderConfigRow("Log Level", m.config.LogLevel),
			m.renderConfigRow("Page Size", strconv.Itoa(m.config.PageSize)),
			m.renderConfigRow("Default Type", m.config.DefaultReportType.String()),
			m.renderConfigRow("Inbox Debounce", m.config.InboxDebounce.String()),
			m.renderConfigRow("Desktop Notices", onOff(m.config.DesktopNotifications)),
		)
		if n := len(m.config.ExtraUnits); n > 0 {
			rows = append(rows, m.renderConfigRow("Extra Units", strconv.Itoa(n)))
		}
		if n := len(m.config.ShortNames); n > 0 {
			rows = append(rows, m.renderConfigRow("Short Names", strconv.Itoa(n)))
		}
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderStatsCard renders collection totals from the shared state.
func (m *Model) renderStatsCard() string {
	rows := []string{styles.CardTitleStyle.Render("Collection")}

	var stats *models.Stats
	if m.state != nil {
		stats = m.state.GetStats()
	}
	if stats == nil {
		rows = append(rows, styles.HelpStyle.Render("Stats not loaded yet, press r"))
	} else {
		rows = append(rows,
			m.renderStatRow("Reports", stats.ReportCount),
			m.renderStatRow("Days", stats.DayCount),
			m.renderStatRow("Total Reads", int(stats.TotalReads)),
			m.renderConfigRow("Schema", fmt.Sprintf("v%d", stats.SchemaVersion)),
			m.renderConfigRow("Updated", m.state.GetLastUpdated().Format(time.TimeOnly)),
		)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Tower Battlelog"),
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderStatRow(label string, n int) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)
	return labelStyle.Render(label+":") + " " + styles.InfoTextStyle.Render(strconv.Itoa(n))
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
