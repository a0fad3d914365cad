package reports

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/ui/components"
	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
)

const (
	headerHeight = 4
	footerHeight = 2
)

// View renders the reports tab.
func (m *Model) View() string {
	sections := []string{m.renderHeader()}

	switch {
	case len(m.items) == 0 && m.loading:
		sections = append(sections, components.RenderSpinnerCentered(m.spinner, max(m.width-6, 20), m.viewport.Height))
	case len(m.items) == 0 && m.errorMsg != "":
		sections = append(sections, m.renderError())
	case len(m.items) == 0:
		sections = append(sections, m.renderEmpty())
	default:
		body, selectedLine := m.renderList()
		m.viewport.SetContent(body)
		m.scrollTo(selectedLine)
		sections = append(sections, m.viewport.View())
	}

	sections = append(sections, m.renderFooter())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Reports")

	color := styles.FilterColor(m.filter)
	filterStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color)
	indicator := filterStyle.Render(fmt.Sprintf("[f] %s", m.filter))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", indicator)

	status := fmt.Sprintf("%d shown", len(m.items))
	switch {
	case m.loading && len(m.items) > 0:
		status += " · " + m.spinner.View()
	case m.hasMore:
		status += " · more available [n]"
	case len(m.items) > 0:
		status += " · end of list"
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, styles.HelpStyle.Render(status))
}

func (m *Model) renderError() string {
	return fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), m.errorMsg)
}

func (m *Model) renderEmpty() string {
	what := "No reports saved yet."
	if !m.filter.All {
		what = fmt.Sprintf("No %s reports.", strings.ToLower(m.filter.String()))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.HelpStyle.Render(what),
		styles.HelpStyle.Render("Paste one in the Add tab or drop a .txt file into the inbox."),
	)
}

// renderList returns the list body and the line index of the selected row.
func (m *Model) renderList() (string, int) {
	tables := m.tables()
	width := max(m.width-6, 40)

	var lines []string
	selectedLine := 0
	for i, r := range m.items {
		if i == m.selected {
			selectedLine = len(lines)
		}
		lines = append(lines, m.renderRow(r, i == m.selected, tables))

		if r.ID == m.expanded {
			card := components.RenderSummaryCard(
				"Detail",
				m.summaries[r.ID],
				tables,
				min(width, 80),
			)
			lines = append(lines, strings.Split(indent(card, "    "), "\n")...)
		}
	}
	return strings.Join(lines, "\n"), selectedLine
}

func (m *Model) renderRow(r models.Report, selected bool, tables report.Tables) string {
	p := m.summaries[r.ID]

	date := p.BattleDateText()
	if date == "" {
		date = r.CreatedAt.Local().Format("06-01-02 15:04")
	}

	cols := []string{
		lipgloss.NewStyle().Width(15).Render(date),
		lipgloss.NewStyle().Width(13).Render(components.RenderTypeLabel(r.Type)),
		lipgloss.NewStyle().Width(13).Render(p.TierWaveText()),
		lipgloss.NewStyle().Width(12).Render(models.FormatSeconds(p.ElapsedSeconds)),
		lipgloss.NewStyle().Width(10).Render(components.RenderUnitValue(p.CoinsText, tables.Units)),
		lipgloss.NewStyle().Width(12).Render(components.RenderUnitValue(p.CoinsPerHourText, tables.Units)),
	}
	if r.Memo != "" {
		cols = append(cols, styles.MemoStyle.Render(truncate(r.Memo, 30)))
	}
	row := strings.Join(cols, " ")

	if selected {
		return styles.SelectedListItemStyle.Render(row)
	}
	return styles.ListItemStyle.Render(row)
}

func (m *Model) renderFooter() string {
	switch {
	case m.editing:
		return m.memo.View()
	case m.confirmDelete:
		if r, ok := m.current(); ok {
			return styles.WarningTextStyle.Render(
				fmt.Sprintf("Delete report %s? [y] confirm, any other key cancels", m.rowDate(r)))
		}
	case m.errorMsg != "" && len(m.items) > 0:
		return m.renderError()
	}
	return ""
}

func (m *Model) rowDate(r models.Report) string {
	if d := m.summaries[r.ID].BattleDateText(); d != "" {
		return d
	}
	return r.ID
}

// scrollTo keeps the given content line inside the viewport.
func (m *Model) scrollTo(line int) {
	if m.viewport.Height <= 0 {
		return
	}
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m *Model) tables() report.Tables {
	if m.services == nil {
		return report.DefaultTables()
	}
	return m.services.Tables()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
