package add

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/ui/components"
	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
)

const headerHeight = 4

// View renders the add tab.
func (m *Model) View() string {
	editor := styles.CardStyle.Render(m.editor.View())

	var body string
	if m.sideBySide() {
		preview := components.RenderSummaryCard("Preview", m.preview, m.tables(), max(m.width/2-4, 40))
		body = lipgloss.JoinHorizontal(lipgloss.Top, editor, " ", preview)
	} else {
		preview := components.RenderSummaryCard("Preview", m.preview, m.tables(), max(m.width-6, 40))
		body = lipgloss.JoinVertical(lipgloss.Left, editor, preview)
	}

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), body))
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Add Report")

	color := styles.TypeColor(m.saveType)
	typeStyle := lipgloss.NewStyle().
		Foreground(color).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color)
	indicator := typeStyle.Render(fmt.Sprintf("[ctrl+t] %s", m.saveType))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", indicator)
	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderHint())
}

func (m *Model) renderHint() string {
	switch {
	case m.saving:
		return styles.WarningTextStyle.Render("Saving...")
	case m.editor.Focused():
		return styles.HelpStyle.Render("editing · [esc] stop · [tab] separator · [ctrl+s] save")
	case m.raw == "":
		return styles.HelpStyle.Render("[i] start pasting a report")
	default:
		return styles.HelpStyle.Render("[i] edit · [ctrl+s] save · [ctrl+l] clear")
	}
}

func (m *Model) tables() report.Tables {
	if m.services == nil {
		return report.DefaultTables()
	}
	return m.services.Tables()
}
