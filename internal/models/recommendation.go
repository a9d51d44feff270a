package models

import "time"

// Recommendation is one suggested text persisted for a scored mood
// event. At most a handful are stored per source event, and the same
// text is never stored twice for the same source (unique constraint on
// source + text; inserts tolerate that conflict as a no-op).
type Recommendation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MoodScoreID *string   `json:"mood_score_id,omitempty"`
	MoodLogID   *string   `json:"mood_log_id,omitempty"`
	Date        time.Time `json:"date"`
	Category    string    `json:"category"`
	Activity    string    `json:"activity"`
	ScoreValue  int       `json:"score_value"`
	SleepHours  *float64  `json:"sleep_hours,omitempty"`
	Text        string    `json:"text"`
	Polarity    string    `json:"polarity"`
	CreatedAt   time.Time `json:"created_at"`

	// Aggregate feedback stats, recomputed after every feedback write.
	FeedbackCount int      `json:"feedback_count"`
	AvgCombined   *float64 `json:"avg_combined,omitempty"`
	AnyEffective  bool     `json:"any_effective"`
}

// RecommendationFeedback is a user's rating of a recommendation. One
// row per (recommendation, user); resubmission overwrites.
type RecommendationFeedback struct {
	ID               string    `json:"id"`
	RecommendationID string    `json:"recommendation_id"`
	UserID           string    `json:"user_id"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment"`
	SentimentScore   float64   `json:"sentiment_score"`
	CombinedScore    float64   `json:"combined_score"`
	Effective        bool      `json:"effective"`
	Category         string    `json:"category"`
	Activity         string    `json:"activity"`
	CreatedAt        time.Time `json:"created_at"`

	// Embedded source row, populated by queries that select it.
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}
