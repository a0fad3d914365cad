// Package units converts between magnitude-suffixed game numbers ("630.81K") and float64 values.
package units

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Unit is a single magnitude suffix and its multiplier.
type Unit struct {
	Symbol     string
	Multiplier float64
}

// Table is an immutable set of units ordered from the largest multiplier down.
type Table struct {
	units    []Unit
	bySymbol map[string]float64
	rank     map[string]int
}

var (
	suffixedPattern  = regexp.MustCompile(`^([0-9.]+)([a-zA-Z]+)$`)
	formattedPattern = regexp.MustCompile(`([0-9.]+)([a-zA-Z]+)(/h)?$`)
)

// NewTable builds a table from the given units. Later entries win on duplicate symbols.
func NewTable(units ...Unit) *Table {
	merged := make(map[string]float64, len(units))
	for _, u := range units {
		if u.Symbol == "" || u.Multiplier <= 0 {
			continue
		}
		merged[u.Symbol] = u.Multiplier
	}

	t := &Table{
		units:    make([]Unit, 0, len(merged)),
		bySymbol: merged,
		rank:     make(map[string]int, len(merged)),
	}
	for sym, mult := range merged {
		t.units = append(t.units, Unit{Symbol: sym, Multiplier: mult})
	}
	sort.Slice(t.units, func(i, j int) bool {
		return t.units[i].Multiplier > t.units[j].Multiplier
	})
	for i, u := range t.units {
		t.rank[u.Symbol] = len(t.units) - i
	}
	return t
}

// DefaultTable returns the suffixes used by the game client, K (1e3) through ac (1e42).
func DefaultTable() *Table {
	return NewTable(
		Unit{"K", 1e3},
		Unit{"M", 1e6},
		Unit{"B", 1e9},
		Unit{"T", 1e12},
		Unit{"q", 1e15},
		Unit{"Q", 1e18},
		Unit{"s", 1e21},
		Unit{"S", 1e24},
		Unit{"O", 1e27},
		Unit{"N", 1e30},
		Unit{"D", 1e33},
		Unit{"aa", 1e36},
		Unit{"ab", 1e39},
		Unit{"ac", 1e42},
	)
}

// With returns a copy of the table extended with extra units.
func (t *Table) With(extra ...Unit) *Table {
	all := make([]Unit, 0, len(t.units)+len(extra))
	all = append(all, t.units...)
	all = append(all, extra...)
	return NewTable(all...)
}

// Units returns the units ordered from the largest multiplier down.
func (t *Table) Units() []Unit {
	out := make([]Unit, len(t.units))
	copy(out, t.units)
	return out
}

// Multiplier returns the multiplier for a symbol.
func (t *Table) Multiplier(symbol string) (float64, bool) {
	m, ok := t.bySymbol[symbol]
	return m, ok
}

// Decode parses "630.81K" style text. Unknown suffixes multiply by 1 and
// anything unparseable decodes to 0.
func (t *Table) Decode(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	match := suffixedPattern.FindStringSubmatch(text)
	if match == nil {
		return plainNumber(text)
	}

	num, err := strconv.ParseFloat(match[1], 64)
	if err != nil || !finite(num) {
		return 0
	}
	mult, ok := t.bySymbol[match[2]]
	if !ok {
		mult = 1
	}
	return num * mult
}

// Encode formats n with the largest unit whose multiplier does not exceed it.
func (t *Table) Encode(n float64) string {
	if !finite(n) {
		return "0"
	}
	for _, u := range t.units {
		if n >= u.Multiplier {
			return strconv.FormatFloat(n/u.Multiplier, 'f', 2, 64) + u.Symbol
		}
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Level returns the 1-based rank of the unit in a formatted value such as
// "15.02q/h", counting from the smallest unit. Plain numbers return 0.
func (t *Table) Level(formatted string) int {
	match := formattedPattern.FindStringSubmatch(strings.TrimSpace(formatted))
	if match == nil {
		return 0
	}
	return t.rank[match[2]]
}

func plainNumber(text string) float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
	if err != nil || !finite(n) {
		return 0
	}
	return n
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
