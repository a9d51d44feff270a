package repository

import (
	"context"
	"time"

	"github.com/moodhabit/backend/internal/models"
)

// MoodLogRepository reads captured mood events. The capture subsystem
// owns the rows; this service never writes them.
type MoodLogRepository interface {
	GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.MoodLog, error)
}

// MoodScoreRepository manages derived mood scores. Non-sleep scores for
// a day are deleted and regenerated on each analytics run; the sleep
// score is upserted so each (user, day) keeps one row.
type MoodScoreRepository interface {
	GetByID(ctx context.Context, id string) (*models.MoodScore, error)
	GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.MoodScore, error)
	GetByUserCategoryAndDateRange(ctx context.Context, userID, category string, start, next time.Time) ([]models.MoodScore, error)
	DeleteNonSleepInRange(ctx context.Context, userID string, start, next time.Time) error
	CreateBatch(ctx context.Context, scores []models.MoodScore) ([]models.MoodScore, error)
	UpsertSleep(ctx context.Context, score *models.MoodScore) (*models.MoodScore, error)
}

// AnovaSnapshotRepository caches per-(user, category, day) statistical
// results. Lookups query by day range; writes upsert on the unique
// (user_id, category, date) key.
type AnovaSnapshotRepository interface {
	GetByUserCategoryAndDay(ctx context.Context, userID, category string, start, next time.Time) (*models.AnovaSnapshot, error)
	GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.AnovaSnapshot, error)
	Upsert(ctx context.Context, snapshot *models.AnovaSnapshot) (*models.AnovaSnapshot, error)
}

// ConcordanceSnapshotRepository caches the single per-(user, day)
// concordance document covering all categories.
type ConcordanceSnapshotRepository interface {
	GetByUserAndDay(ctx context.Context, userID string, start, next time.Time) (*models.ConcordanceSnapshot, error)
	GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.ConcordanceSnapshot, error)
	Upsert(ctx context.Context, snapshot *models.ConcordanceSnapshot) (*models.ConcordanceSnapshot, error)
}

// RecommendationRepository persists selected recommendation texts.
// Bulk inserts tolerate duplicate-key conflicts as a no-op; that is the
// concurrency-safety mechanism for concurrent regenerations.
type RecommendationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Recommendation, error)
	GetByKey(ctx context.Context, userID string, date time.Time, category, activity string) ([]models.Recommendation, error)
	GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.Recommendation, error)
	InsertIgnoreDuplicates(ctx context.Context, recs []models.Recommendation) error
	UpdateAggregates(ctx context.Context, id string, count int, avgCombined float64, anyEffective bool) error
}

// FeedbackRepository manages recommendation ratings: one row per
// (recommendation, user), last write wins.
type FeedbackRepository interface {
	Upsert(ctx context.Context, feedback *models.RecommendationFeedback) (*models.RecommendationFeedback, error)
	GetByRecommendation(ctx context.Context, recommendationID string) ([]models.RecommendationFeedback, error)
	NotEffectiveCounts(ctx context.Context, userID, category, activity string) (map[string]int, error)
}
