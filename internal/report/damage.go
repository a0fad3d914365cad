package report

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/j-veylop/tower-battlelog/internal/models"
)

// minDamagePercent drops sources contributing less than this share.
const minDamagePercent = 1.0

var isTotalDamage = HasPrefixFold("damage dealt")

// isDamageCandidate matches every damage line except the total.
func isDamageCandidate(line string) bool {
	return strings.Contains(strings.ToLower(line), "damage") && !isTotalDamage(line)
}

// normalizeDamageKey lowercases, strips whitespace and removes the first "damage".
func normalizeDamageKey(label string) string {
	key := strings.Join(strings.Fields(strings.ToLower(label)), "")
	return strings.Replace(key, "damage", "", 1)
}

// ignored reports whether a label contains any denylisted phrase.
func (p *Parser) ignored(label string) bool {
	lower := strings.ToLower(label)
	return lo.ContainsBy(p.tables.IgnoreList, func(phrase string) bool {
		return strings.Contains(lower, phrase)
	})
}

// damageBreakdown computes each source's share of total. Sources under 1% are
// dropped and the rest are ordered by displayed percentage, highest first.
func (p *Parser) damageBreakdown(total float64, lines []string) []models.DamageEntry {
	entries := make([]models.DamageEntry, 0, len(lines))
	for _, line := range lines {
		label, value, _ := SplitKeyValue(line)
		if p.ignored(label) {
			continue
		}

		num := p.tables.Units.Decode(value)
		pct := 0.0
		if total != 0 {
			pct = num * 100 / total
		}
		if pct < minDamagePercent {
			continue
		}

		key := normalizeDamageKey(label)
		display, ok := p.tables.ShortNames[key]
		if !ok {
			display = label
		}
		entries = append(entries, models.DamageEntry{
			Key:     key,
			Label:   display,
			Value:   num,
			Percent: pct,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RoundedPercent() > entries[j].RoundedPercent()
	})
	return entries
}
