package models

import "time"

// ActivityScore pairs an activity label with its mean mood score.
type ActivityScore struct {
	Activity string  `json:"activity"`
	Score    float64 `json:"score"`
}

// PairwiseRow is one post-hoc pairwise comparison between two activity
// groups. PAdj is the adjusted significance; the stats adapter accepts
// both "p-adj" and "p_adj" spellings on the wire and stores one.
type PairwiseRow struct {
	Group1   string   `json:"group1"`
	Group2   string   `json:"group2"`
	MeanDiff *float64 `json:"mean_diff"`
	PAdj     *float64 `json:"p_adj"`
	Lower    *float64 `json:"lower"`
	Upper    *float64 `json:"upper"`
	Reject   bool     `json:"reject"`
}

// AnovaStats holds the group-difference test results for one category.
// Pointer fields are null when the computation was skipped or the
// category had insufficient data.
type AnovaStats struct {
	FValue         *float64           `json:"f_value"`
	PValue         *float64           `json:"p_value"`
	MSB            *float64           `json:"msb"`
	MSW            *float64           `json:"msw"`
	Interpretation *string            `json:"interpretation"`
	IncludedGroups []string           `json:"included_groups"`
	IgnoredGroups  []string           `json:"ignored_groups"`
	GroupMeans     map[string]float64 `json:"group_means"`
	GroupCounts    map[string]int     `json:"group_counts"`
}

// AnovaSnapshot is the cached per-(user, category, day) statistical
// result. Date is the local-noon anchor of the analyzed day; reads
// always query by day range, never anchor equality. One row per
// (user, category, day), enforced by a unique constraint. An
// insufficient outcome never overwrites a prior successful snapshot.
type AnovaSnapshot struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	Category     string          `json:"category"`
	Date         time.Time       `json:"date"`
	MoodScoreIDs []string        `json:"mood_score_ids"`
	Stats        AnovaStats      `json:"stats"`
	TopPositive  []ActivityScore `json:"top_positive"`
	TopNegative  []ActivityScore `json:"top_negative"`
	Pairwise     []PairwiseRow   `json:"pairwise"`
}

// Sufficient reports whether the snapshot holds a successful
// computation rather than a cached insufficient result.
func (s *AnovaSnapshot) Sufficient() bool {
	return len(s.Stats.IncludedGroups) > 0
}

// ConcordanceThresholds parameterize a pairwise-concordance run.
type ConcordanceThresholds struct {
	MinPairs int     `json:"minPairs"`
	Pos      float64 `json:"pos"`
	Neg      float64 `json:"neg"`
	MinCCC   float64 `json:"minCcc"`
	Scale    float64 `json:"scale"`
}

// DefaultConcordanceThresholds returns the standard run parameters.
func DefaultConcordanceThresholds() ConcordanceThresholds {
	return ConcordanceThresholds{MinPairs: 1, Pos: 10, Neg: -10, MinCCC: 0.2, Scale: 20}
}

// ConcordanceOverall carries the whole-category concordance when at
// least two pairs were available.
type ConcordanceOverall struct {
	CCC float64 `json:"ccc"`
}

// CategoryConcordance is the per-category payload inside a concordance
// snapshot. Even when Insufficient, GroupLastIDs, AvailableGroups and
// GroupLogCounts are populated from the day's raw logs so clients can
// still route users to per-activity guidance.
type CategoryConcordance struct {
	Insufficient    bool                `json:"insufficient,omitempty"`
	Message         string              `json:"message,omitempty"`
	IncludedGroups  []string            `json:"includedGroups"`
	IgnoredGroups   []string            `json:"ignoredGroups"`
	GroupCounts     map[string]int      `json:"groupCounts"`
	GroupMeans      map[string]float64  `json:"groupMeans"`
	Labels          map[string]string   `json:"labels,omitempty"`
	Overall         *ConcordanceOverall `json:"overall,omitempty"`
	TopPositive     []ActivityScore     `json:"topPositive"`
	TopNegative     []ActivityScore     `json:"topNegative"`
	GroupLastIDs    map[string]string   `json:"groupLastIds"`
	AvailableGroups []string            `json:"availableGroups"`
	GroupLogCounts  map[string]int      `json:"groupLogCounts"`
}

// ConcordanceSnapshot stores one daily concordance result per user,
// covering all non-sleep categories in a single document. Date is the
// local-noon anchor.
type ConcordanceSnapshot struct {
	ID         string                          `json:"id"`
	UserID     string                          `json:"user_id"`
	Date       time.Time                       `json:"date"`
	Results    map[string]*CategoryConcordance `json:"results"`
	Thresholds ConcordanceThresholds           `json:"thresholds"`
	ComputedAt time.Time                       `json:"computed_at"`
}

// SleepSummary reports a day's sleep alongside analytics results.
type SleepSummary struct {
	Quality     *string `json:"quality"`
	Hours       float64 `json:"hours"`
	Score       int     `json:"score"`
	MoodScoreID string  `json:"mood_score_id,omitempty"`
}
