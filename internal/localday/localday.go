// Package localday provides local-time day arithmetic for bucketing
// events into calendar days. All analytics are keyed by the calendar
// day in the server's local timezone: a day covers the half-open
// interval [local midnight, next local midnight), and persisted
// snapshots are anchored to local noon so the stored timestamp falls
// inside the day it describes regardless of timezone offsets.
package localday

import (
	"fmt"
	"time"
)

// Layout is the wire format for day keys.
const Layout = "2006-01-02"

// Bounds parses a YYYY-MM-DD date string and returns the half-open
// local-time interval [start, next) covering that calendar day.
func Bounds(date string) (start, next time.Time, err error) {
	parsed, err := time.ParseInLocation(Layout, date, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD: %w", date, err)
	}
	start = parsed
	next = start.AddDate(0, 0, 1)
	return start, next, nil
}

// BoundsOf returns the local-day interval containing t.
func BoundsOf(t time.Time) (start, next time.Time) {
	local := t.Local()
	start = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.Local)
	next = start.AddDate(0, 0, 1)
	return start, next
}

// NoonAnchor returns the canonical timestamp for a day's snapshot
// documents: local noon of the day starting at start.
func NoonAnchor(start time.Time) time.Time {
	return start.Add(12 * time.Hour)
}

// Key formats t as its local YYYY-MM-DD day key.
func Key(t time.Time) string {
	return t.Local().Format(Layout)
}

// WeekRange returns the half-open interval [Monday 00:00, next Monday
// 00:00) of the local week containing t. Weeks start on Monday.
func WeekRange(t time.Time) (start, next time.Time) {
	dayStart, _ := BoundsOf(t)
	// time.Weekday puts Sunday at 0; shift so Monday is 0.
	offset := (int(dayStart.Weekday()) + 6) % 7
	start = dayStart.AddDate(0, 0, -offset)
	next = start.AddDate(0, 0, 7)
	return start, next
}
