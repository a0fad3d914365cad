// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/report"
	"github.com/j-veylop/tower-battlelog/internal/ui/styles"
	"github.com/j-veylop/tower-battlelog/internal/units"
)

// SparkChars are the block characters used by sparklines (low to high).
var SparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// HeatmapBlocks are Unicode block characters for heat strips (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderDualLineChart plots two series on a shared axis, e.g. cells and reroll shards.
func RenderDualLineChart(first, second []float64, width, height int, caption string) string {
	if len(first) == 0 && len(second) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// Pad the shorter series with zeros
	n := max(len(first), len(second))
	a := make([]float64, n)
	b := make([]float64, n)
	copy(a, first)
	copy(b, second)

	return asciigraph.PlotMany([][]float64{a, b},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.DarkCyan,
			asciigraph.Violet,
		),
	)
}

// RenderBarChart creates a horizontal bar chart. format renders each value;
// nil falls back to one decimal place.
func RenderBarChart(values []float64, labels []string, width int, format func(float64) string) string {
	if len(values) == 0 {
		return ""
	}
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%.1f", v) }
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-10, 10)

	lines := make([]string, 0, len(values))
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		padded := strings.Repeat(" ", maxLabelLen-lipgloss.Width(label)) + label

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		bar := strings.Repeat("█", barLen)

		lines = append(lines, padded+" │"+bar+" "+format(v))
	}

	return strings.Join(lines, "\n")
}

// RenderDamageBars renders a damage breakdown as percentage bars. Bars are
// scaled to 100% rather than to the largest share.
func RenderDamageBars(entries []models.DamageEntry, width int) string {
	if len(entries) == 0 {
		return styles.HelpStyle.Render("No damage sources above 1%")
	}

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = e.Label
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}
	barWidth := max(width-maxLabelLen-8, 10)

	barStyle := lipgloss.NewStyle().Foreground(styles.Secondary)
	pctStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary)

	lines := make([]string, 0, len(entries))
	for i, e := range entries {
		filled := min(max(int(e.Percent/100*float64(barWidth)), 0), barWidth)
		if filled == 0 {
			filled = 1
		}
		padded := strings.Repeat(" ", maxLabelLen-lipgloss.Width(labels[i])) + labels[i]
		lines = append(lines, fmt.Sprintf("%s │%s %s",
			padded,
			barStyle.Render(strings.Repeat("█", filled)),
			pctStyle.Render(fmt.Sprintf("%d%%", e.RoundedPercent())),
		))
	}
	return strings.Join(lines, "\n")
}

// RenderHeatStrip renders one block per value, colored by intensity relative to the maximum.
func RenderHeatStrip(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	var result strings.Builder
	for _, v := range values {
		intensity := min(max(int((v/maxVal)*float64(len(HeatmapBlocks)-1)), 0), len(HeatmapBlocks)-1)

		var style lipgloss.Style
		switch intensity {
		case 0:
			style = lipgloss.NewStyle().Foreground(styles.Subtle)
		case 1:
			style = lipgloss.NewStyle().Foreground(styles.TextSecondary)
		case 2:
			style = lipgloss.NewStyle().Foreground(styles.Warning)
		default:
			style = lipgloss.NewStyle().Foreground(styles.Success)
		}
		result.WriteString(style.Render(string(HeatmapBlocks[intensity])))
	}
	return result.String()
}

// RenderWeeklyPattern renders one spark per weekday, Sunday first.
func RenderWeeklyPattern(patterns []float64, dayNames []string) string {
	if len(patterns) != 7 {
		padded := make([]float64, 7)
		copy(padded, patterns)
		patterns = padded
	}
	if len(dayNames) != 7 {
		dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	}

	maxVal := 0.0
	for _, v := range patterns {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	parts := make([]string, 0, 7)
	for i, v := range patterns {
		intensity := min(max(int((v/maxVal)*float64(len(SparkChars)-1)), 0), len(SparkChars)-1)
		parts = append(parts, fmt.Sprintf("%s %s", dayNames[i], string(SparkChars[intensity])))
	}

	return strings.Join(parts, " ")
}

// WeekdayPlaySeconds averages played seconds per weekday over the given days.
func WeekdayPlaySeconds(days []models.DailyAggregate) []float64 {
	var sums, counts [7]float64
	for _, d := range days {
		day, err := d.Day()
		if err != nil {
			continue
		}
		wd := int(day.Weekday())
		sums[wd] += float64(d.TotalSeconds)
		counts[wd]++
	}
	out := make([]float64, 7)
	for i := range out {
		if counts[i] > 0 {
			out[i] = sums[i] / counts[i]
		}
	}
	return out
}

func sparkIndex(val, maxVal float64) int {
	return min(max(int((val/maxVal)*float64(len(SparkChars)-1)), 0), len(SparkChars)-1)
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		result.WriteRune(SparkChars[sparkIndex(val, maxVal)])
	}

	return result.String()
}

// RenderDayFillSparkline renders day-fill percentages colored by how full each day was.
func RenderDayFillSparkline(percents []float64, width int) string {
	if len(percents) == 0 || width <= 0 {
		return ""
	}

	var result strings.Builder
	step := max(float64(len(percents))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(percents); i++ {
		pct := percents[int(float64(i)*step)]
		style := styles.GetDayFillStyle(pct)
		result.WriteString(style.Render(string(SparkChars[sparkIndex(pct, 100)])))
	}

	return result.String()
}

// RenderUnitValue colors a formatted value by the rank of its unit suffix.
func RenderUnitValue(text string, table *units.Table) string {
	if table == nil || text == "" || text == models.NoValue {
		return styles.HelpStyle.Render(text)
	}
	return styles.GetUnitLevelStyle(table.Level(text)).Render(text)
}

// RenderKilledBy renders the killed-by enemy as a colored badge with its shape glyph.
// Unknown enemies get a plain badge; an empty name renders nothing.
func RenderKilledBy(name string, tables report.Tables) string {
	if name == "" {
		return ""
	}
	enemy, ok := tables.Enemy(name)
	if !ok {
		return styles.GetBadgeStyle("").Render(name)
	}
	return styles.GetBadgeStyle(enemy.Color).Render(enemy.Shape.Glyph() + " " + name)
}

// RenderTypeLabel renders a report type in its accent color.
func RenderTypeLabel(t models.ReportType) string {
	return styles.GetTypeStyle(t).Render(t.String())
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
