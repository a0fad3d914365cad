package report

import "strings"

// Predicate matches a single report line.
type Predicate func(line string) bool

// Contains matches lines containing substr.
func Contains(substr string) Predicate {
	return func(line string) bool {
		return strings.Contains(line, substr)
	}
}

// HasPrefix matches lines starting with prefix.
func HasPrefix(prefix string) Predicate {
	return func(line string) bool {
		return strings.HasPrefix(line, prefix)
	}
}

// HasPrefixFold matches lines starting with prefix, ignoring case.
func HasPrefixFold(prefix string) Predicate {
	prefix = strings.ToLower(prefix)
	return func(line string) bool {
		return strings.HasPrefix(strings.ToLower(line), prefix)
	}
}

// Lines splits raw report text into lines with trailing carriage returns removed.
func Lines(raw string) []string {
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// FindLine returns the first line of raw matching pred.
func FindLine(raw string, pred Predicate) (string, bool) {
	for _, line := range Lines(raw) {
		if pred(line) {
			return line, true
		}
	}
	return "", false
}

// SplitKeyValue splits "label<TAB>value" or "label:value". The tab layout is
// tried first; an empty tab value falls back to the colon layout. ok is false
// when the line has neither delimiter.
func SplitKeyValue(line string) (key, value string, ok bool) {
	key = line
	if f := strings.Split(line, "\t"); len(f) > 1 {
		key, value, ok = f[0], strings.TrimSpace(f[1]), true
	}
	if value == "" {
		if f := strings.Split(line, ":"); len(f) > 1 {
			if !ok {
				key = f[0]
			}
			value, ok = strings.TrimSpace(f[1]), true
		}
	}
	return strings.TrimSpace(key), value, ok
}

// Value returns the value segment of a labelled line, or "".
func Value(line string) string {
	_, v, _ := SplitKeyValue(line)
	return v
}
