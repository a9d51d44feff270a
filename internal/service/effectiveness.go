package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moodhabit/backend/internal/localday"
	"github.com/moodhabit/backend/internal/logger"
	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/internal/repository"
)

const (
	// Comments shorter than this are ignored for sentiment.
	minCommentLength = 10
	// Rating contributes 80% of the combined score, sentiment 20%,
	// when a usable comment is present.
	ratingWeight    = 0.8
	sentimentWeight = 0.2
	// A combined score at or above this marks the feedback effective.
	effectiveThreshold = 0.65
)

type feedbackService struct {
	recRepo repository.RecommendationRepository
	fbRepo  repository.FeedbackRepository
	engine  StatsEngine
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	recRepo repository.RecommendationRepository,
	fbRepo repository.FeedbackRepository,
	engine StatsEngine,
) FeedbackService {
	return &feedbackService{
		recRepo: recRepo,
		fbRepo:  fbRepo,
		engine:  engine,
	}
}

// Submit records a rating for a recommendation. One feedback row per
// (recommendation, user); resubmission overwrites. Recommendations
// whose date falls outside the current Monday-start week are immutable
// for rating purposes.
func (s *feedbackService) Submit(ctx context.Context, userID, recommendationID string, req *models.SubmitFeedbackRequest) (*models.FeedbackResponse, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5")
	}

	rec, err := s.recRepo.GetByID(ctx, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationNotFound, err)
	}
	if rec.UserID != userID {
		return nil, ErrRecommendationNotFound
	}

	weekStart, weekNext := localday.WeekRange(time.Now())
	if rec.Date.Before(weekStart) || !rec.Date.Before(weekNext) {
		return nil, ErrRatingWindowClosed
	}

	sentiment := s.sentimentScore(ctx, req.Comment)
	combined := combinedScore(req.Rating, req.Comment, sentiment)

	feedback, err := s.fbRepo.Upsert(ctx, &models.RecommendationFeedback{
		RecommendationID: rec.ID,
		UserID:           userID,
		Rating:           req.Rating,
		Comment:          strings.TrimSpace(req.Comment),
		SentimentScore:   sentiment,
		CombinedScore:    combined,
		Effective:        combined >= effectiveThreshold,
		Category:         rec.Category,
		Activity:         rec.Activity,
	})
	if err != nil {
		return nil, err
	}

	if err := s.recomputeAggregates(ctx, rec.ID); err != nil {
		// The feedback row is stored; a stale aggregate heals on the
		// next write.
		logger.FromContext(ctx).Warn("failed to refresh recommendation aggregates",
			logger.String("recommendation_id", rec.ID),
			logger.Err(err))
	}

	return &models.FeedbackResponse{Success: true, Feedback: feedback}, nil
}

// sentimentScore asks the engine for a comment's sentiment in [-1, 1].
// Too-short comments and engine failures both yield neutral zero.
func (s *feedbackService) sentimentScore(ctx context.Context, comment string) float64 {
	if len(strings.TrimSpace(comment)) < minCommentLength {
		return 0
	}
	score, used, err := s.engine.Sentiment(ctx, comment)
	if err != nil {
		logger.FromContext(ctx).Warn("sentiment engine unavailable, using neutral score",
			logger.Err(err))
		return 0
	}
	if !used {
		return 0
	}
	return score
}

// combinedScore blends the normalized rating with sentiment. Without a
// usable comment the rating stands alone.
func combinedScore(rating int, comment string, sentiment float64) float64 {
	normRating := float64(rating-1) / 4  // 1..5 → 0..1
	normSentiment := (sentiment + 1) / 2 // -1..1 → 0..1
	if len(strings.TrimSpace(comment)) < minCommentLength {
		return normRating
	}
	return ratingWeight*normRating + sentimentWeight*normSentiment
}

// recomputeAggregates refreshes the cached feedback stats on the
// recommendation row.
func (s *feedbackService) recomputeAggregates(ctx context.Context, recommendationID string) error {
	rows, err := s.fbRepo.GetByRecommendation(ctx, recommendationID)
	if err != nil {
		return err
	}

	var sum float64
	anyEffective := false
	for i := range rows {
		sum += rows[i].CombinedScore
		if rows[i].Effective {
			anyEffective = true
		}
	}
	avg := 0.0
	if len(rows) > 0 {
		avg = sum / float64(len(rows))
	}

	return s.recRepo.UpdateAggregates(ctx, recommendationID, len(rows), avg, anyEffective)
}
