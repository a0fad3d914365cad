package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/j-veylop/tower-battlelog/internal/units"
)

// Match: ad=1e45
var unitOverrideRe = regexp.MustCompile(`^([a-zA-Z]+)\s*=\s*([0-9.eE+]+)$`)

// Match: thorn=Thorns
var shortNameOverrideRe = regexp.MustCompile(`^([a-zA-Z ]+?)\s*=\s*(.+)$`)

// parseUnitOverrides reads "ad=1e45,ae=1e48" into extra unit entries.
func parseUnitOverrides(content string) ([]units.Unit, error) {
	var out []units.Unit
	for _, entry := range splitEntries(content) {
		match := unitOverrideRe.FindStringSubmatch(entry)
		if match == nil {
			return nil, fmt.Errorf("invalid unit %q", entry)
		}
		mult, err := strconv.ParseFloat(match[2], 64)
		if err != nil || mult <= 0 {
			return nil, fmt.Errorf("invalid multiplier in %q", entry)
		}
		out = append(out, units.Unit{Symbol: match[1], Multiplier: mult})
	}
	return out, nil
}

// parseShortNameOverrides reads "thorn=Thorns,chain lightning=Chain" into a
// damage key to label map. Keys are normalized like damage keys. Malformed
// entries are skipped.
func parseShortNameOverrides(content string) map[string]string {
	out := make(map[string]string)
	for _, entry := range splitEntries(content) {
		match := shortNameOverrideRe.FindStringSubmatch(entry)
		if match == nil {
			continue
		}
		key := strings.Join(strings.Fields(strings.ToLower(match[1])), "")
		out[key] = strings.TrimSpace(match[2])
	}
	return out
}

func splitEntries(content string) []string {
	var out []string
	for _, part := range strings.Split(content, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
