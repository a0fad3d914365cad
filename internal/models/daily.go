package models

import "time"

// SecondsPerDay is the length of a calendar day used for the day-fill ratio.
const SecondsPerDay = 86400

// DailyDelta is one report's contribution to a day's running totals.
type DailyDelta struct {
	Date    string
	Coins   float64
	Cells   float64
	Reroll  float64
	Seconds int64
}

// Delta converts cached report meta into a daily delta.
func (m ReportMeta) Delta() DailyDelta {
	return DailyDelta{
		Date:    m.Date,
		Coins:   m.Coins,
		Cells:   m.Cells,
		Reroll:  m.Reroll,
		Seconds: m.Seconds,
	}
}

// HasDate reports whether the delta can be bucketed.
func (d DailyDelta) HasDate() bool {
	return d.Date != ""
}

// Negate returns the delta that undoes d.
func (d DailyDelta) Negate() DailyDelta {
	return DailyDelta{
		Date:    d.Date,
		Coins:   -d.Coins,
		Cells:   -d.Cells,
		Reroll:  -d.Reroll,
		Seconds: -d.Seconds,
	}
}

// DailyAggregate holds the running totals for one calendar day.
type DailyAggregate struct {
	Date         string // YYYY-MM-DD
	TotalCoins   float64
	TotalSeconds int64
	TotalCells   float64
	TotalReroll  float64

	// Version increases on every write; zero means not stored yet.
	Version   int64
	UpdatedAt time.Time
}

// Totals returns the aggregate with storage bookkeeping cleared, for comparisons.
func (a DailyAggregate) Totals() DailyAggregate {
	return DailyAggregate{
		Date:         a.Date,
		TotalCoins:   a.TotalCoins,
		TotalSeconds: a.TotalSeconds,
		TotalCells:   a.TotalCells,
		TotalReroll:  a.TotalReroll,
	}
}

// DayFillPercent is the share of the day spent playing, capped at 100.
func (a DailyAggregate) DayFillPercent() float64 {
	if a.TotalSeconds <= 0 {
		return 0
	}
	return min(float64(a.TotalSeconds)/SecondsPerDay*100, 100)
}

// IdlePercent is the share of the day not spent playing.
func (a DailyAggregate) IdlePercent() float64 {
	return max(0, 100-a.DayFillPercent())
}

// Day parses the aggregate's date.
func (a DailyAggregate) Day() (time.Time, error) {
	return time.Parse(time.DateOnly, a.Date)
}

// DayRange is the window of daily aggregates shown.
type DayRange int

const (
	// DayRange7Days shows the 7 most recent days.
	DayRange7Days DayRange = iota
	// DayRange30Days shows the 30 most recent days.
	DayRange30Days
	// DayRangeAll shows every stored day.
	DayRangeAll
)

// String returns the display name for a day range.
func (r DayRange) String() string {
	switch r {
	case DayRange7Days:
		return "7 Days"
	case DayRange30Days:
		return "30 Days"
	case DayRangeAll:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Limit returns how many days to load (0 = unlimited).
func (r DayRange) Limit() int {
	switch r {
	case DayRange7Days:
		return 7
	case DayRange30Days:
		return 30
	case DayRangeAll:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next day range.
func (r DayRange) Next() DayRange {
	return (r + 1) % 3
}

// ParseDayRange accepts "7", "30" or "all".
func ParseDayRange(s string) (DayRange, bool) {
	switch s {
	case "7":
		return DayRange7Days, true
	case "30":
		return DayRange30Days, true
	case "all":
		return DayRangeAll, true
	default:
		return DayRange30Days, false
	}
}
