package models

// RunAnalyticsRequest triggers scoring + analytics for one local day.
type RunAnalyticsRequest struct {
	Date string `json:"date" binding:"required"`
}

// RunConcordanceRequest triggers the daily concordance pass. Thresholds
// override the defaults when provided.
type RunConcordanceRequest struct {
	Date       string                 `json:"date" binding:"required"`
	Thresholds *ConcordanceThresholds `json:"thresholds"`
}

// CategoryAnalytics is the per-category payload of a day analytics
// response: either a computed result or an insufficient-data marker
// that still names the groups that were seen.
type CategoryAnalytics struct {
	Insufficient bool            `json:"insufficient,omitempty"`
	Message      string          `json:"message,omitempty"`
	Stats        *AnovaStats     `json:"stats,omitempty"`
	TopPositive  []ActivityScore `json:"top_positive,omitempty"`
	TopNegative  []ActivityScore `json:"top_negative,omitempty"`
	Pairwise     []PairwiseRow   `json:"pairwise,omitempty"`
}

// DayAnalyticsResponse is the result of running analytics for a day.
type DayAnalyticsResponse struct {
	Success      bool                          `json:"success"`
	AnovaResults map[string]*CategoryAnalytics `json:"anova_results"`
	Sleep        *SleepSummary                 `json:"sleep,omitempty"`
	Message      string                        `json:"message,omitempty"`
}

// AnalyticsHistoryResponse groups historical snapshots and scores by
// local YYYY-MM-DD day key.
type AnalyticsHistoryResponse struct {
	Success      bool                                     `json:"success"`
	AnovaByDate  map[string]map[string]*CategoryAnalytics `json:"anova_by_date"`
	ScoresByDate map[string][]MoodScore                   `json:"scores_by_date"`
}

// DayConcordanceResponse is the result of a concordance run.
type DayConcordanceResponse struct {
	Success    bool                            `json:"success"`
	Results    map[string]*CategoryConcordance `json:"concordance_results"`
	Thresholds ConcordanceThresholds           `json:"thresholds"`
	Sleep      *SleepSummary                   `json:"sleep,omitempty"`
	Message    string                          `json:"message,omitempty"`
}

// ConcordanceHistoryResponse groups snapshots by local day key.
type ConcordanceHistoryResponse struct {
	Success bool                                       `json:"success"`
	ByDate  map[string]map[string]*CategoryConcordance `json:"concordance_by_date"`
}

// GenerateRecommendationsRequest asks for recommendations for a scored
// event. Count defaults to 3 and is clamped to at most 3.
type GenerateRecommendationsRequest struct {
	MoodScoreID string `json:"mood_score_id" binding:"required"`
	Count       int    `json:"count"`
}

// RecommendationsResponse carries persisted recommendation rows.
type RecommendationsResponse struct {
	Success         bool             `json:"success"`
	Recommendations []Recommendation `json:"recommendations"`
}

// ResolveMoodScoreRequest locates a MoodScore by day + category +
// activity, matching activity labels after normalization. Sleep
// resolves to the day's sleep row and ignores Activity.
type ResolveMoodScoreRequest struct {
	Date     string `json:"date" binding:"required"`
	Category string `json:"category" binding:"required"`
	Activity string `json:"activity"`
}

// ResolveMoodScoreResponse returns the matched score, if any.
type ResolveMoodScoreResponse struct {
	Success   bool       `json:"success"`
	MoodScore *MoodScore `json:"mood_score,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// SubmitFeedbackRequest rates a recommendation. Comment participates in
// sentiment blending only when it is at least 10 characters long.
type SubmitFeedbackRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// FeedbackResponse returns the stored feedback row with its computed
// sentiment and combined scores.
type FeedbackResponse struct {
	Success  bool                    `json:"success"`
	Feedback *RecommendationFeedback `json:"feedback"`
}
