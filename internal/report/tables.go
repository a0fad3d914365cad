// Package report parses free-text battle report exports into typed metrics.
package report

import (
	"maps"
	"slices"
	"time"

	"github.com/j-veylop/tower-battlelog/internal/units"
)

// Shape is the badge glyph used for an enemy type.
type Shape string

const (
	ShapeSquare   Shape = "square"
	ShapeTriangle Shape = "triangle"
	ShapePentagon Shape = "pentagon"
)

// Glyph returns the terminal glyph for the shape.
func (s Shape) Glyph() string {
	switch s {
	case ShapeTriangle:
		return "▲"
	case ShapePentagon:
		return "⬟"
	default:
		return "■"
	}
}

// EnemyStyle is how a "Killed By" enemy is presented.
type EnemyStyle struct {
	Color string
	Shape Shape
}

// Tables is the read-only configuration a Parser works from.
type Tables struct {
	Units      *units.Table
	ShortNames map[string]string
	IgnoreList []string
	KilledBy   map[string]EnemyStyle
	Months     map[string]time.Month
}

// DefaultTables returns the tables matching the current game export.
func DefaultTables() Tables {
	return Tables{
		Units: units.DefaultTable(),
		ShortNames: map[string]string{
			"orb":            "Orb",
			"chainlightning": "CL",
			"blackhole":      "BH",
			"electrons":      "Electrons",
			"projectiles":    "Proj",
			"deathray":       "DR",
			"innerlandmine":  "ILM",
			"swamp":          "Swamp",
			"smartmissile":   "SM",
		},
		IgnoreList: []string{
			"damage taken",
			"damage taken wall",
			"damage taken while berserked",
			"damage gain from berserk",
			"death defy",
			"lifesteal",
			"projectiles count",
			"enemies hit by orbs",
			"land mines spawned",
			"tagged by deathwave",
		},
		KilledBy: map[string]EnemyStyle{
			"Basic":      {Color: "#ff4d4d", Shape: ShapeSquare},
			"Fast":       {Color: "#ffd84d", Shape: ShapeSquare},
			"Tank":       {Color: "#ff9f1a", Shape: ShapeSquare},
			"Ranged":     {Color: "#4deeea", Shape: ShapeSquare},
			"Boss":       {Color: "#c77dff", Shape: ShapeSquare},
			"Protector":  {Color: "#4dff88", Shape: ShapeSquare},
			"Vampire":    {Color: "#ff5c5c", Shape: ShapeTriangle},
			"Scatter":    {Color: "#a29bfe", Shape: ShapeTriangle},
			"Ray":        {Color: "#ffe066", Shape: ShapeTriangle},
			"Saboteur":   {Color: "#ff6b6b", Shape: ShapePentagon},
			"Commander":  {Color: "#ffa94d", Shape: ShapePentagon},
			"Overcharge": {Color: "#7aa2ff", Shape: ShapePentagon},
		},
		Months: map[string]time.Month{
			"Jan": time.January,
			"Feb": time.February,
			"Mar": time.March,
			"Apr": time.April,
			"May": time.May,
			"Jun": time.June,
			"Jul": time.July,
			"Aug": time.August,
			"Sep": time.September,
			"Oct": time.October,
			"Nov": time.November,
			"Dec": time.December,
		},
	}
}

// clone copies the maps and slices so callers cannot mutate a parser's tables.
func (t Tables) clone() Tables {
	if t.Units == nil {
		t.Units = units.DefaultTable()
	}
	return Tables{
		Units:      t.Units,
		ShortNames: maps.Clone(t.ShortNames),
		IgnoreList: slices.Clone(t.IgnoreList),
		KilledBy:   maps.Clone(t.KilledBy),
		Months:     maps.Clone(t.Months),
	}
}

// WithOverrides returns a copy extended with extra units and short names.
func (t Tables) WithOverrides(extra []units.Unit, shortNames map[string]string) Tables {
	out := t.clone()
	if len(extra) > 0 {
		out.Units = out.Units.With(extra...)
	}
	if out.ShortNames == nil {
		out.ShortNames = make(map[string]string, len(shortNames))
	}
	maps.Copy(out.ShortNames, shortNames)
	return out
}

// Enemy returns the presentation for a killed-by value.
func (t Tables) Enemy(name string) (EnemyStyle, bool) {
	s, ok := t.KilledBy[name]
	return s, ok
}
