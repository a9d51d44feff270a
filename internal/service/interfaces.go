package service

import (
	"context"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/statsengine"
)

// StatsEngine is the slice of the statistics/sentiment client the
// services consume. Tests substitute a mock.
type StatsEngine interface {
	RunAnova(ctx context.Context, data map[string]statsengine.Groups) (*statsengine.AnovaResponse, error)
	RunConcordance(ctx context.Context, data map[string]statsengine.PairGroups, th statsengine.Thresholds) (*statsengine.ConcordanceResponse, error)
	Sentiment(ctx context.Context, comment string) (score float64, used bool, err error)
}

// AnalyticsService recomputes a day's mood scores and group-difference
// statistics, maintaining the snapshot cache.
type AnalyticsService interface {
	RunDay(ctx context.Context, userID, date string) (*models.DayAnalyticsResponse, error)
	History(ctx context.Context, userID, startDate, endDate string) (*models.AnalyticsHistoryResponse, error)
}

// ConcordanceService runs the daily pairwise-concordance pass.
type ConcordanceService interface {
	RunDay(ctx context.Context, userID string, req *models.RunConcordanceRequest) (*models.DayConcordanceResponse, error)
	History(ctx context.Context, userID, startDate, endDate string) (*models.ConcordanceHistoryResponse, error)
}

// RecommendationService selects and persists recommendation texts.
type RecommendationService interface {
	Generate(ctx context.Context, userID string, req *models.GenerateRecommendationsRequest) (*models.RecommendationsResponse, error)
	CurrentWeek(ctx context.Context, userID string) (*models.RecommendationsResponse, error)
	Resolve(ctx context.Context, userID string, req *models.ResolveMoodScoreRequest) (*models.ResolveMoodScoreResponse, error)
}

// FeedbackService records recommendation ratings and maintains the
// aggregate effectiveness cache.
type FeedbackService interface {
	Submit(ctx context.Context, userID, recommendationID string, req *models.SubmitFeedbackRequest) (*models.FeedbackResponse, error)
}
