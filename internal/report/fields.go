package report

import (
	"regexp"
	"strconv"
	"time"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

var (
	battleDatePattern   = regexp.MustCompile(`Battle Date\s+([A-Za-z]{3}) (\d{2}), (\d{4}) (\d{2}):(\d{2})`)
	hoursPattern        = regexp.MustCompile(`(\d+)h`)
	minutesPattern      = regexp.MustCompile(`(\d+)m`)
	secondsPattern      = regexp.MustCompile(`(\d+)s`)
	coinsPerHourPattern = regexp.MustCompile(`Coins per hour\s+([\d.]+\w+)`)
	tierPattern         = regexp.MustCompile(`Tier\s+(\d+)`)
	wavePattern         = regexp.MustCompile(`Wave\s+(\d+)`)
)

// parseBattleDate finds the "Battle Date Mon DD, YYYY HH:MM" stamp. Unknown
// months and impossible dates report false instead of defaulting.
func parseBattleDate(raw string, months map[string]time.Month) (time.Time, bool) {
	m := battleDatePattern.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}

	month, ok := months[m[1]]
	if !ok {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	if hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// ParseBattleDate parses the battle timestamp with the default month table.
func ParseBattleDate(raw string) (time.Time, bool) {
	return parseBattleDate(raw, DefaultTables().Months)
}

// FormatBattleDate renders a battle timestamp as "YY-MM-DD HH:MM".
func FormatBattleDate(t time.Time) string {
	return t.Format("06-01-02 15:04")
}

// ParseDuration reads independent h/m/s tokens from a "Real Time" line.
// Missing tokens count as zero.
func ParseDuration(line string) models.Duration {
	return models.Duration{
		Hours:   firstInt(hoursPattern, line),
		Minutes: firstInt(minutesPattern, line),
		Seconds: firstInt(secondsPattern, line),
	}
}

// parseCoinsPerHour returns the pre-formatted hourly coin rate, or NoValue.
func parseCoinsPerHour(raw string) string {
	m := coinsPerHourPattern.FindStringSubmatch(raw)
	if m == nil {
		return models.NoValue
	}
	return m[1] + "/h"
}

// parseTierWave extracts the tier and wave numbers.
func parseTierWave(raw string) (tier int, hasTier bool, wave int, hasWave bool) {
	if m := tierPattern.FindStringSubmatch(raw); m != nil {
		tier, _ = strconv.Atoi(m[1])
		hasTier = true
	}
	if m := wavePattern.FindStringSubmatch(raw); m != nil {
		wave, _ = strconv.Atoi(m[1])
		hasWave = true
	}
	return tier, hasTier, wave, hasWave
}

// parseKilledBy returns the enemy type, or "" when no death was recorded.
func parseKilledBy(line string) string {
	v := Value(line)
	if v == "0" {
		return ""
	}
	return v
}

func firstInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
