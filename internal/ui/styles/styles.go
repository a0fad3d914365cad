// Package styles defines the visual styling for the application.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

// Color definitions for the battlelog theme.
var (
	// Primary colors
	Primary   = lipgloss.Color("205") // Pink
	Secondary = lipgloss.Color("63")  // Purple
	Subtle    = lipgloss.Color("240") // Gray

	// Report type colors
	TypeAll        = lipgloss.Color("#8884d8")
	TypeFarming    = lipgloss.Color("#36a2eb")
	TypeTournament = lipgloss.Color("#ff6384")
	TypeClimb      = lipgloss.Color("#4bc0c0")
	TypeReroll     = lipgloss.Color("#ffcd56")

	// Currency colors
	Coins  = lipgloss.Color("220") // Gold
	Cells  = lipgloss.Color("81")  // Cyan
	Reroll = lipgloss.Color("141") // Violet

	// Status colors
	Success = lipgloss.Color("42")  // Green
	Error   = lipgloss.Color("196") // Red
	Warning = lipgloss.Color("220") // Yellow
	Info    = lipgloss.Color("39")  // Blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Secondary).
	MarginBottom(1)

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)

// ActiveTabStyle styles the currently selected tab.
var ActiveTabStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("229")).
	Background(Primary).
	Padding(0, 2).
	MarginRight(1)

// InactiveTabStyle styles non-selected tabs.
var InactiveTabStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(BgLight).
	Padding(0, 2).
	MarginRight(1)

// TabNumberStyle styles the tab number indicator.
var TabNumberStyle = lipgloss.NewStyle().
	Foreground(Subtle).
	MarginRight(0)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(1, 2).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	MarginBottom(1)

// FocusedStyle is used for focused input elements.
var FocusedStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// BlurredStyle is used for unfocused input elements.
var BlurredStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// FocusedBorderStyle creates a focused border.
var FocusedBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Primary).
	Padding(0, 1)

// BlurredBorderStyle creates an unfocused border.
var BlurredBorderStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Subtle).
	Padding(0, 1)

// NotificationBaseStyle is the base for all notification types.
var NotificationBaseStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginBottom(1).
	Border(lipgloss.RoundedBorder())

// NotificationSuccessStyle for success notifications.
var NotificationSuccessStyle = NotificationBaseStyle.
	BorderForeground(Success).
	Foreground(Success)

// NotificationErrorStyle for error notifications.
var NotificationErrorStyle = NotificationBaseStyle.
	BorderForeground(Error).
	Foreground(Error)

// NotificationWarningStyle for warning notifications.
var NotificationWarningStyle = NotificationBaseStyle.
	BorderForeground(Warning).
	Foreground(Warning)

// NotificationInfoStyle for info notifications.
var NotificationInfoStyle = NotificationBaseStyle.
	BorderForeground(Info).
	Foreground(Info)

// ProgressBarStyle styles the progress bar container.
var ProgressBarStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	PaddingRight(1)

// ProgressLabelStyle styles progress bar labels.
var ProgressLabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(20)

// ProgressPercentStyle styles the percentage display.
var ProgressPercentStyle = lipgloss.NewStyle().
	Foreground(TextPrimary).
	Width(6).
	Align(lipgloss.Right)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpKeyStyle styles keyboard shortcut keys.
var HelpKeyStyle = lipgloss.NewStyle().
	Foreground(Primary).
	Bold(true)

// HelpDescStyle styles help descriptions.
var HelpDescStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// HelpSeparatorStyle styles separators in help text.
var HelpSeparatorStyle = lipgloss.NewStyle().
	Foreground(Subtle)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 3).
	Background(BgDark)

// ListItemStyle styles list items.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedListItemStyle styles selected list items.
var SelectedListItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Foreground(Primary).
	Bold(true).
	SetString("> ")

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(Primary).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Subtle)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Padding(0, 1)

// TableSelectedStyle styles selected table rows.
var TableSelectedStyle = lipgloss.NewStyle().
	Background(BgAccent).
	Foreground(TextPrimary).
	Bold(true)

// UnitLevelStyles color a formatted value by the rank of its unit suffix,
// from plain numbers up. Ranks beyond the table reuse the last style.
var UnitLevelStyles = []lipgloss.Style{
	lipgloss.NewStyle().Foreground(TextSecondary),
	lipgloss.NewStyle().Foreground(TextPrimary),
	lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true),
	lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true),
	lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true),
}

// DayFillLowStyle for days with little play time (<25%).
var DayFillLowStyle = lipgloss.NewStyle().
	Foreground(TextSecondary)

// DayFillMediumStyle for moderately played days (25-75%).
var DayFillMediumStyle = lipgloss.NewStyle().
	Foreground(Warning)

// DayFillHighStyle for days played almost around the clock (>75%).
var DayFillHighStyle = lipgloss.NewStyle().
	Foreground(Success).
	Bold(true)

// MemoStyle styles user memos attached to reports.
var MemoStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Italic(true)

// BadgeStyle is the base for the killed-by badge.
var BadgeStyle = lipgloss.NewStyle().
	Bold(true).
	Padding(0, 1)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(Error)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(Success)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(Warning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(Info)

// ModalOverlayStyle creates a modal overlay background.
var ModalOverlayStyle = lipgloss.NewStyle().
	Background(lipgloss.Color("0"))

// ModalContentStyle styles modal content.
var ModalContentStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(Primary).
	Padding(1, 2).
	Background(BgDark)

// ButtonStyle is the base button style.
var ButtonStyle = lipgloss.NewStyle().
	Padding(0, 2).
	MarginRight(1)

// ButtonActiveStyle styles active/focused buttons.
var ButtonActiveStyle = ButtonStyle.
	Background(Primary).
	Foreground(lipgloss.Color("229")).
	Bold(true)

var ButtonInactiveStyle = ButtonStyle.
	Background(BgLight).
	Foreground(TextSecondary)

// TypeColor returns the accent color of a report type.
func TypeColor(t models.ReportType) lipgloss.Color {
	switch t {
	case models.ReportTypeFarming:
		return TypeFarming
	case models.ReportTypeTournament:
		return TypeTournament
	case models.ReportTypeClimb:
		return TypeClimb
	case models.ReportTypeReroll:
		return TypeReroll
	default:
		return Subtle
	}
}

// FilterColor returns the accent color of a report list filter.
func FilterColor(f models.ReportFilter) lipgloss.Color {
	switch {
	case f.All:
		return TypeAll
	case f.Other:
		return Subtle
	default:
		return TypeColor(f.Type)
	}
}

// GetTypeStyle returns the label style for a report type.
func GetTypeStyle(t models.ReportType) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(TypeColor(t)).Bold(t.IsClassified())
}

// GetUnitLevelStyle returns the style for a value whose unit has the given rank.
func GetUnitLevelStyle(level int) lipgloss.Style {
	if level < 0 {
		level = 0
	}
	if level >= len(UnitLevelStyles) {
		level = len(UnitLevelStyles) - 1
	}
	return UnitLevelStyles[level]
}

// GetDayFillStyle returns the appropriate style based on the day-fill percentage.
func GetDayFillStyle(percent float64) lipgloss.Style {
	switch {
	case percent > 75:
		return DayFillHighStyle
	case percent >= 25:
		return DayFillMediumStyle
	default:
		return DayFillLowStyle
	}
}

// GetBadgeStyle returns a badge style on the given background color.
func GetBadgeStyle(color string) lipgloss.Style {
	if color == "" {
		return BadgeStyle.Background(BgLight).Foreground(TextPrimary)
	}
	return BadgeStyle.Background(lipgloss.Color(color)).Foreground(lipgloss.Color("#111111"))
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}
