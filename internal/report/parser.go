package report

import (
	"github.com/j-veylop/tower-battlelog/internal/models"
	"github.com/j-veylop/tower-battlelog/internal/units"
)

// Field identifies a labelled line the parser extracts.
type Field int

const (
	FieldRealTime Field = iota
	FieldCoins
	FieldCells
	FieldReroll
	FieldKilledBy
	FieldTotalDamage
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldRealTime:
		return "real_time"
	case FieldCoins:
		return "coins"
	case FieldCells:
		return "cells"
	case FieldReroll:
		return "reroll"
	case FieldKilledBy:
		return "killed_by"
	case FieldTotalDamage:
		return "total_damage"
	default:
		return "unknown"
	}
}

// Rule binds a line predicate to the field it fills. The first matching line wins.
type Rule struct {
	Field Field
	Match Predicate
}

// DefaultRules is the ordered rule list for the game export.
func DefaultRules() []Rule {
	return []Rule{
		{FieldRealTime, Contains("Real Time")},
		{FieldCoins, Contains("Coins earned")},
		{FieldCells, Contains("Cells Earned")},
		{FieldReroll, Contains("Reroll Shards Earned")},
		{FieldKilledBy, HasPrefix("Killed By")},
		{FieldTotalDamage, isTotalDamage},
	}
}

// Extraction is the result of one pass of the rules over a report.
type Extraction struct {
	Fields      map[Field]string
	DamageLines []string
}

// Line returns the matched line for a field.
func (e Extraction) Line(f Field) (string, bool) {
	l, ok := e.Fields[f]
	return l, ok
}

// Parser turns raw battle reports into metrics. It is safe for concurrent use.
type Parser struct {
	tables Tables
	rules  []Rule
}

// NewParser creates a parser over copies of the given tables and rules.
// A nil rules slice uses DefaultRules.
func NewParser(tables Tables, rules []Rule) *Parser {
	if rules == nil {
		rules = DefaultRules()
	}
	r := make([]Rule, len(rules))
	copy(r, rules)
	return &Parser{tables: tables.clone(), rules: r}
}

// DefaultParser returns a parser with the default tables and rules.
func DefaultParser() *Parser {
	return NewParser(DefaultTables(), nil)
}

// Tables returns the parser's configuration.
func (p *Parser) Tables() Tables {
	return p.tables.clone()
}

// Units returns the numeric unit codec.
func (p *Parser) Units() *units.Table {
	return p.tables.Units
}

// Extract runs the rule list over the report lines once.
func (p *Parser) Extract(raw string) Extraction {
	ex := Extraction{Fields: make(map[Field]string, len(p.rules))}
	for _, line := range Lines(raw) {
		for _, r := range p.rules {
			if _, done := ex.Fields[r.Field]; done {
				continue
			}
			if r.Match(line) {
				ex.Fields[r.Field] = line
			}
		}
		if isDamageCandidate(line) {
			ex.DamageLines = append(ex.DamageLines, line)
		}
	}
	return ex
}

// Parse builds the full summary for a report. It never fails: every field
// falls back to its zero value or models.NoValue.
func (p *Parser) Parse(raw string) models.ParsedMetrics {
	ex := p.Extract(raw)
	codec := p.tables.Units

	var m models.ParsedMetrics
	m.BattleDate, m.HasBattleDate = parseBattleDate(raw, p.tables.Months)

	if line, ok := ex.Line(FieldRealTime); ok {
		m.Elapsed = ParseDuration(line)
	}
	m.ElapsedSeconds = m.Elapsed.TotalSeconds()

	m.Coins = p.decodeField(ex, FieldCoins)
	m.Cells = p.decodeField(ex, FieldCells)
	m.RerollShards = p.decodeField(ex, FieldReroll)

	m.CoinsText = codec.Encode(m.Coins)
	m.CellsText = codec.Encode(m.Cells)
	m.RerollText = codec.Encode(m.RerollShards)
	m.CoinsPerHourText = parseCoinsPerHour(raw)

	m.CellsPerHourText = models.NoValue
	m.RerollPerHourText = models.NoValue
	if m.ElapsedSeconds > 0 {
		hours := float64(m.ElapsedSeconds) / 3600
		m.CellsPerHour = m.Cells / hours
		m.RerollPerHour = m.RerollShards / hours
		m.CellsPerHourText = codec.Encode(m.CellsPerHour)
		m.RerollPerHourText = codec.Encode(m.RerollPerHour)
	}

	m.Tier, m.HasTier, m.Wave, m.HasWave = parseTierWave(raw)

	if line, ok := ex.Line(FieldKilledBy); ok {
		m.KilledBy = parseKilledBy(line)
	}

	m.TotalDamage = p.decodeField(ex, FieldTotalDamage)
	m.Damage = p.damageBreakdown(m.TotalDamage, ex.DamageLines)

	return m
}

// Delta parses only what the daily aggregate needs.
func (p *Parser) Delta(raw string) models.DailyDelta {
	ex := p.Extract(raw)

	d := models.DailyDelta{
		Coins:  p.decodeField(ex, FieldCoins),
		Cells:  p.decodeField(ex, FieldCells),
		Reroll: p.decodeField(ex, FieldReroll),
	}
	if t, ok := parseBattleDate(raw, p.tables.Months); ok {
		d.Date = t.Format("2006-01-02")
	}
	if line, ok := ex.Line(FieldRealTime); ok {
		d.Seconds = ParseDuration(line).TotalSeconds()
	}
	return d
}

func (p *Parser) decodeField(ex Extraction, f Field) float64 {
	line, ok := ex.Line(f)
	if !ok {
		return 0
	}
	return p.tables.Units.Decode(Value(line))
}
