package models

import "time"

// Categories a mood event can belong to.
const (
	CategoryActivity = "activity"
	CategorySocial   = "social"
	CategoryHealth   = "health"
	CategorySleep    = "sleep"
)

// NonSleepCategories are the categories analyzed with group-difference
// statistics. Sleep is scored separately from hours slept.
var NonSleepCategories = []string{CategoryActivity, CategorySocial, CategoryHealth}

// Mood polarity values.
const (
	PolarityPositive = "positive"
	PolarityNegative = "negative"
)

// MoodLog represents a captured mood event. The capture flow owns these
// rows; this service only reads them.
type MoodLog struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	// Activity is set for non-sleep categories; SleepHours for sleep.
	Activity   *string  `json:"activity,omitempty"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`

	// BeforeValence is "unrecorded" when the user skipped the pre-event
	// check-in; BeforeIntensity is nil in that case.
	BeforeValence   string   `json:"before_valence"`
	BeforeEmotion   *string  `json:"before_emotion,omitempty"`
	BeforeIntensity *float64 `json:"before_intensity,omitempty"`
	BeforeReason    *string  `json:"before_reason,omitempty"`

	AfterValence   string  `json:"after_valence"`
	AfterEmotion   string  `json:"after_emotion"`
	AfterIntensity float64 `json:"after_intensity"`
	AfterReason    *string `json:"after_reason,omitempty"`
}

// ActivityLabel returns the activity label, or the empty string for
// sleep events.
func (m *MoodLog) ActivityLabel() string {
	if m.Activity == nil {
		return ""
	}
	return *m.Activity
}

// MoodScore is a derived numeric score for a mood event. Non-sleep
// scores are deleted and regenerated whenever a day is recomputed;
// the sleep score is upserted so each (user, day) keeps a single row.
type MoodScore struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
	Activity *string   `json:"activity,omitempty"`
	// Score is in [-100, 100].
	Score        int      `json:"score"`
	SleepHours   *float64 `json:"sleep_hours,omitempty"`
	SleepQuality *string  `json:"sleep_quality,omitempty"`
}
