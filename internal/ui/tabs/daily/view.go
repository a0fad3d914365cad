package daily

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/ui/components"
	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
	"github.com/j-veylop/tower-battlelog/internal/units"
)

const (
	headerHeight = 4
	footerHeight = 1
	chartHeight  = 8
)

// View renders the daily tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	switch {
	case m.rebuilding:
		sections = append(sections, m.renderRebuilding())
	case len(m.days) == 0 && m.loading:
		sections = append(sections,
			components.RenderSpinnerCentered(m.spinner, m.contentWidth(), max(m.viewport.Height, 3)))
	case len(m.days) == 0 && m.errorMsg != "":
		sections = append(sections, fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg))
	case len(m.days) == 0:
		sections = append(sections, m.renderEmpty())
	default:
		m.viewport.SetContent(m.renderBody())
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Daily")

	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	indicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.dayRange))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", indicator)

	var subtitle string
	if n := len(m.days); n > 0 {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("%s → %s (%d days)",
			m.days[n-1].Date, m.days[0].Date, n))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle)
}

func (m *Model) renderFooter() string {
	if m.confirmRebuild {
		return styles.WarningTextStyle.Render(
			"Rebuild all daily stats from saved reports? [y] confirm, any other key cancels")
	}
	if m.errorMsg != "" && len(m.days) > 0 {
		return fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg)
	}
	return ""
}

func (m *Model) renderEmpty() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.HelpStyle.Render("No daily stats yet."),
		styles.HelpStyle.Render("Save a report or press R to rebuild from stored reports."),
	)
}

func (m *Model) renderRebuilding() string {
	width := m.contentWidth()
	rows := []string{m.spinner.View(), ""}
	for i := range 3 {
		rows = append(rows, components.DayBarLoading(width, m.loadingFrame+i*10))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderBody() string {
	tables := m.tables()
	// Charts read left to right, oldest first.
	asc := slices.Clone(m.days)
	slices.Reverse(asc)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderLatest(tables),
		m.renderCoinChart(asc),
		m.renderResourceChart(asc, tables),
		m.renderPlayTime(asc),
		m.renderDays(tables),
	)
}

func (m *Model) renderLatest(tables report.Tables) string {
	width := m.contentWidth()
	day := m.days[0]

	rows := []string{
		styles.CardTitleStyle.Render("Latest: " + day.Date),
		m.latest.ViewCompact(m.latest.Percent(), width-6),
		fmt.Sprintf("%s coins  %s cells  %s reroll  %s played",
			formatValue(day.TotalCoins, tables.Units),
			formatValue(day.TotalCells, tables.Units),
			formatValue(day.TotalReroll, tables.Units),
			models.FormatSeconds(day.TotalSeconds),
		),
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCoinChart(asc []models.DailyAggregate) string {
	width := m.contentWidth()
	coins := make([]float64, len(asc))
	for i, d := range asc {
		coins[i] = d.TotalCoins
	}

	chart := components.RenderLineChart(coins, max(width-16, 30), chartHeight,
		fmt.Sprintf("coins per day, last %d days", len(asc)))

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Coin Trend"),
		chart,
	))
}

func (m *Model) renderResourceChart(asc []models.DailyAggregate, tables report.Tables) string {
	width := m.contentWidth()
	cells := make([]float64, len(asc))
	reroll := make([]float64, len(asc))
	var totalCells, totalReroll float64
	for i, d := range asc {
		cells[i] = d.TotalCells
		reroll[i] = d.TotalReroll
		totalCells += d.TotalCells
		totalReroll += d.TotalReroll
	}

	chart := components.RenderDualLineChart(cells, reroll, max(width-16, 30), chartHeight, "")
	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Cells", Color: styles.Cells},
		{Label: "Reroll", Color: styles.Reroll},
	})

	// Totals over the window.
	bars := components.RenderBarChart(
		[]float64{totalCells, totalReroll},
		[]string{"Cells", "Reroll"},
		max(width-10, 30),
		func(v float64) string { return formatValue(v, tables.Units) },
	)

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.CardTitleStyle.Render("Cells & Reroll"),
		chart,
		"",
		legend,
		"",
		bars,
	))
}

func (m *Model) renderPlayTime(asc []models.DailyAggregate) string {
	width := m.contentWidth()
	seconds := make([]float64, len(asc))
	fills := make([]float64, len(asc))
	for i, d := range asc {
		seconds[i] = float64(d.TotalSeconds)
		fills[i] = d.DayFillPercent()
	}

	sparkWidth := max(width-20, 10)
	rows := []string{
		styles.CardTitleStyle.Render("Play Time"),
		labeled("Seconds", components.RenderSparkline(seconds, sparkWidth)),
		labeled("Day fill", components.RenderDayFillSparkline(fills, sparkWidth)),
		labeled("Heat", components.RenderHeatStrip(fills)),
		labeled("Weekdays", components.RenderWeeklyPattern(components.WeekdayPlaySeconds(asc), nil)),
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderDays(tables report.Tables) string {
	width := m.contentWidth()
	bar := components.NewDayBar()

	rows := []string{styles.CardTitleStyle.Render("Days")}
	for _, d := range m.days {
		rows = append(rows,
			bar.View(d, width-6),
			strings.Repeat(" ", 12)+fmt.Sprintf("%s coins  %s cells  %s reroll  %s",
				formatValue(d.TotalCoins, tables.Units),
				formatValue(d.TotalCells, tables.Units),
				formatValue(d.TotalReroll, tables.Units),
				styles.HelpStyle.Render(models.FormatSeconds(d.TotalSeconds)),
			),
		)
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) contentWidth() int {
	return max(m.width-8, 50)
}

func (m *Model) tables() report.Tables {
	if m.services == nil {
		return report.DefaultTables()
	}
	return m.services.Tables()
}

func labeled(label, value string) string {
	return lipgloss.NewStyle().Width(10).Foreground(styles.TextMuted).Render(label) + value
}

func formatValue(v float64, table *units.Table) string {
	if table == nil {
		table = units.DefaultTable()
	}
	return components.RenderUnitValue(table.Encode(v), table)
}
