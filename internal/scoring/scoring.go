// Package scoring converts raw mood events into numeric mood scores.
//
// Non-sleep events score the intensity delta between before and after
// states on a [-100, 100] scale. Sleep events score hours slept with a
// piecewise function peaking at 9 hours and penalizing both short and
// long sleep, plus a coarse quality band used for grouping.
package scoring

import "math"

// Sleep quality bands. Hours strictly between 4 and 6 deliberately map
// to no band.
const (
	SleepPoor       = "Poor"
	SleepSufficient = "Sufficient"
	SleepGood       = "Good"
)

// EventScore scores a non-sleep mood event from its before/after
// intensities (before in 0..5, after in 1..5). The result lands in
// [-100, 100].
func EventScore(before, after float64) int {
	return int(math.Round(((after - before) / 5) * 100))
}

// SleepQuality maps hours slept to a quality band. Hours in the open
// interval (4, 6) return "" — callers treat the label as advisory and
// must not depend on every duration having a band.
func SleepQuality(hours float64) string {
	switch {
	case hours <= 4:
		return SleepPoor
	case hours >= 6 && hours <= 8:
		return SleepSufficient
	case hours > 8:
		return SleepGood
	default:
		return ""
	}
}

// SleepScore scores hours slept on a roughly [-100, 80] scale. The
// recommended range [7, 9] takes the middle piece; exactly 7 and 9
// hours score on that piece, not their neighbors. Oversleep past 9
// hours goes mildly negative.
//
// Pieces:
//
//	7 <= h <= 9: round(((h-4)/5)*80)   → 48..80
//	h < 7:       round(((h-7)/7)*100)  → negative, -100 at h=0
//	h > 9:       round(((9-h)/2)*30)   → mild penalty below 0
func SleepScore(hours float64) int {
	switch {
	case hours >= 7 && hours <= 9:
		return int(math.Round(((hours - 4) / 5) * 80))
	case hours < 7:
		return int(math.Round(((hours - 7) / 7) * 100))
	default:
		return int(math.Round(((9 - hours) / 2) * 30))
	}
}
