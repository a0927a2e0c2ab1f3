package models

import (
	"strings"
	"time"
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// DateKey renders a calendar date as its canonical YYYY-MM-DD form. All
// tuple keys and date comparisons go through it so wall-clock components
// never leak into identity.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateKey(a) == DateKey(b)
}

// WeekdayName returns the uppercase weekday used to match recurring
// timetable entries, e.g. "SUNDAY".
func WeekdayName(t time.Time) string {
	return strings.ToUpper(t.UTC().Weekday().String())
}
