// Package models defines data structures and domain types.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidReportType is returned when a report type string is not recognised.
	ErrInvalidReportType = errors.New("invalid report type")
	// ErrReportNotFound is returned when no report has the requested ID.
	ErrReportNotFound = errors.New("report not found")
)

// ReportType is the user-assigned category of a saved report.
type ReportType string

const (
	// ReportTypeUnclassified is the default type for reports saved without a category.
	ReportTypeUnclassified ReportType = "unclassified"
	// ReportTypeFarming marks coin/cell farming runs.
	ReportTypeFarming ReportType = "farming"
	// ReportTypeTournament marks tournament runs.
	ReportTypeTournament ReportType = "tournament"
	// ReportTypeClimb marks tier climbing runs.
	ReportTypeClimb ReportType = "climb"
	// ReportTypeReroll marks reroll shard runs.
	ReportTypeReroll ReportType = "reroll"
)

// ClassifiedReportTypes are the categories the "other" filter excludes.
var ClassifiedReportTypes = []ReportType{
	ReportTypeFarming,
	ReportTypeTournament,
	ReportTypeClimb,
	ReportTypeReroll,
}

// AllReportTypes lists every type in cycling order.
var AllReportTypes = append([]ReportType{ReportTypeUnclassified}, ClassifiedReportTypes...)

// ParseReportType validates a report type string. Empty input maps to unclassified.
func ParseReportType(s string) (ReportType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ReportTypeUnclassified, nil
	}
	for _, t := range AllReportTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidReportType, s)
}

// String returns the display name of the report type.
func (t ReportType) String() string {
	switch t {
	case ReportTypeUnclassified:
		return "Unclassified"
	case ReportTypeFarming:
		return "Farming"
	case ReportTypeTournament:
		return "Tournament"
	case ReportTypeClimb:
		return "Climb"
	case ReportTypeReroll:
		return "Reroll"
	default:
		return string(t)
	}
}

// IsClassified reports whether t is one of the known categories.
func (t ReportType) IsClassified() bool {
	for _, c := range ClassifiedReportTypes {
		if c == t {
			return true
		}
	}
	return false
}

// Next cycles to the next report type.
func (t ReportType) Next() ReportType {
	for i, rt := range AllReportTypes {
		if rt == t {
			return AllReportTypes[(i+1)%len(AllReportTypes)]
		}
	}
	return ReportTypeUnclassified
}

// ReportFilter selects which saved reports are listed.
type ReportFilter struct {
	// Type restricts the list to one type. Ignored when All or Other is set.
	Type  ReportType
	All   bool
	Other bool
}

// Common filters.
var (
	FilterAll   = ReportFilter{All: true}
	FilterOther = ReportFilter{Other: true}
)

// FilterByType returns a filter for a single report type.
func FilterByType(t ReportType) ReportFilter {
	return ReportFilter{Type: t}
}

// ParseReportFilter accepts "all", "other" or a report type.
func ParseReportFilter(s string) (ReportFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "other":
		return FilterOther, nil
	}
	t, err := ParseReportType(s)
	if err != nil {
		return ReportFilter{}, err
	}
	return FilterByType(t), nil
}

// String returns the display name of the filter.
func (f ReportFilter) String() string {
	switch {
	case f.All:
		return "All"
	case f.Other:
		return "Other"
	default:
		return f.Type.String()
	}
}

// Next cycles All -> each classified type -> Other -> All.
func (f ReportFilter) Next() ReportFilter {
	switch {
	case f.All:
		return FilterByType(ClassifiedReportTypes[0])
	case f.Other:
		return FilterAll
	}
	for i, t := range ClassifiedReportTypes {
		if t == f.Type && i+1 < len(ClassifiedReportTypes) {
			return FilterByType(ClassifiedReportTypes[i+1])
		}
	}
	return FilterOther
}

// Matches reports whether a report of type t passes the filter.
func (f ReportFilter) Matches(t ReportType) bool {
	switch {
	case f.All:
		return true
	case f.Other:
		return !t.IsClassified()
	default:
		return f.Type == t
	}
}

// ReportMeta holds the derived fields cached at save time for aggregation.
type ReportMeta struct {
	Date    string // YYYY-MM-DD, empty when the battle date did not parse
	Coins   float64
	Cells   float64
	Reroll  float64
	Seconds int64
}

// Report is a saved battle report.
type Report struct {
	ID        string
	Raw       string
	CreatedAt time.Time
	Type      ReportType
	Memo      string
	Meta      ReportMeta
}

// Cursor marks the position after the last report of a page.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// ReportPage is one page of reports in newest-first order.
type ReportPage struct {
	Reports []Report
	Next    *Cursor
	HasMore bool
}
