package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
	"github.com/j-veylop/tower-battlelog/internal/units"
)

const summaryLabelWidth = 12

func summaryRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(summaryLabelWidth).
		Foreground(styles.TextMuted)
	return labelStyle.Render(label) + " " + value
}

// rateRow renders "amount (rate)" with both parts colored by unit level.
func rateRow(label, amount, rate string, tables report.Tables) string {
	return summaryRow(label, fmt.Sprintf("%s  %s",
		RenderUnitValue(amount, tables.Units),
		RenderUnitValue(rate, tables.Units),
	))
}

// RenderSummaryRows renders the parsed metrics of one report as label/value rows
// followed by the damage breakdown.
func RenderSummaryRows(p models.ParsedMetrics, tables report.Tables, width int) []string {
	if tables.Units == nil {
		tables.Units = units.DefaultTable()
	}

	date := p.BattleDateText()
	if date == "" {
		date = styles.WarningTextStyle.Render("no battle date")
	}

	rows := []string{
		summaryRow("Battle", date),
		summaryRow("Time", models.FormatSeconds(p.ElapsedSeconds)),
		summaryRow("Tier/Wave", p.TierWaveText()),
		rateRow("Coins", p.CoinsText, p.CoinsPerHourText, tables),
		rateRow("Cells", p.CellsText, p.CellsPerHourText, tables),
		rateRow("Reroll", p.RerollText, p.RerollPerHourText, tables),
	}

	if p.KilledBy != "" {
		rows = append(rows, summaryRow("Killed By", RenderKilledBy(p.KilledBy, tables)))
	}

	if p.TotalDamage > 0 {
		rows = append(rows,
			"",
			summaryRow("Damage", RenderUnitValue(tables.Units.Encode(p.TotalDamage), tables.Units)),
			RenderDamageBars(p.Damage, width),
		)
	}

	return rows
}

// RenderSummaryCard renders the parsed metrics inside a titled card.
func RenderSummaryCard(title string, p models.ParsedMetrics, tables report.Tables, width int) string {
	cardWidth := max(width, 40)
	rows := append([]string{styles.CardTitleStyle.Render(title)},
		RenderSummaryRows(p, tables, cardWidth-6)...)

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
