package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// NoValue is the placeholder shown for metrics that could not be derived.
const NoValue = "-"

// Duration is the elapsed play time split into its report tokens.
type Duration struct {
	Hours   int
	Minutes int
	Seconds int
}

// TotalSeconds returns the duration in seconds.
func (d Duration) TotalSeconds() int64 {
	return int64(d.Hours)*3600 + int64(d.Minutes)*60 + int64(d.Seconds)
}

// FormatSeconds renders seconds as "1h 2m 3s".
func FormatSeconds(total int64) string {
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// DamageEntry is one damage source share of the total damage dealt.
type DamageEntry struct {
	Key     string // normalized source name, e.g. "orb"
	Label   string // short display name
	Value   float64
	Percent float64
}

// RoundedPercent is the percentage as displayed.
func (d DamageEntry) RoundedPercent() int {
	return int(d.Percent + 0.5)
}

// ParsedMetrics is the summary derived from one raw battle report.
type ParsedMetrics struct {
	BattleDate    time.Time
	HasBattleDate bool

	Elapsed        Duration
	ElapsedSeconds int64

	Coins        float64
	Cells        float64
	RerollShards float64

	// Display values. NoValue when not derivable.
	CoinsText         string
	CellsText         string
	RerollText        string
	CoinsPerHourText  string
	CellsPerHourText  string
	RerollPerHourText string

	// Rates as numbers, zero when ElapsedSeconds is zero.
	CellsPerHour  float64
	RerollPerHour float64

	Tier    int
	HasTier bool
	Wave    int
	HasWave bool

	KilledBy string

	TotalDamage float64
	Damage      []DamageEntry
}

// BattleDateText renders the battle date as "YY-MM-DD HH:MM", or "" when absent.
func (p ParsedMetrics) BattleDateText() string {
	if !p.HasBattleDate {
		return ""
	}
	return p.BattleDate.Format("06-01-02 15:04")
}

// DateKey is the calendar day the report is bucketed under (YYYY-MM-DD), or "".
func (p ParsedMetrics) DateKey() string {
	if !p.HasBattleDate {
		return ""
	}
	return p.BattleDate.Format(time.DateOnly)
}

// TierText renders the tier as "12T", or NoValue.
func (p ParsedMetrics) TierText() string {
	if !p.HasTier {
		return NoValue
	}
	return strconv.Itoa(p.Tier) + "T"
}

// WaveText renders the wave with thousands separators as "4,521W", or NoValue.
func (p ParsedMetrics) WaveText() string {
	if !p.HasWave {
		return NoValue
	}
	return humanize.Comma(int64(p.Wave)) + "W"
}

// TierWaveText renders "12T 4,521W".
func (p ParsedMetrics) TierWaveText() string {
	return p.TierText() + " " + p.WaveText()
}

// Meta returns the fields cached with a saved report.
func (p ParsedMetrics) Meta() ReportMeta {
	return ReportMeta{
		Date:    p.DateKey(),
		Coins:   p.Coins,
		Cells:   p.Cells,
		Reroll:  p.RerollShards,
		Seconds: p.ElapsedSeconds,
	}
}

// Delta returns the contribution of this report to its day's totals.
func (p ParsedMetrics) Delta() DailyDelta {
	return p.Meta().Delta()
}
