package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moodhabit/backend/internal/localday"
	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/internal/recpool"
	"github.com/moodhabit/backend/internal/repository"
)

const (
	defaultRecommendationCount = 3
	// The candidate search widens beyond the requested count before
	// dedupe and user exclusion trim it back down.
	candidateSearchWidth = 10
	// A text is blocked for a user once they have marked it
	// not-effective this many times for the same category + activity.
	exclusionThreshold = 2
)

type recommendationService struct {
	scoreRepo repository.MoodScoreRepository
	recRepo   repository.RecommendationRepository
	fbRepo    repository.FeedbackRepository
	pool      *recpool.Pool
}

// NewRecommendationService creates a new recommendation service. The
// pool is a read-only candidate index built at startup.
func NewRecommendationService(
	scoreRepo repository.MoodScoreRepository,
	recRepo repository.RecommendationRepository,
	fbRepo repository.FeedbackRepository,
	pool *recpool.Pool,
) RecommendationService {
	return &recommendationService{
		scoreRepo: scoreRepo,
		recRepo:   recRepo,
		fbRepo:    fbRepo,
		pool:      pool,
	}
}

// Generate selects up to N texts for a scored event and persists them.
// Generation is idempotent per (user, date, category, activity): rows
// already stored for the key are returned unchanged, and duplicate-key
// conflicts from concurrent requests converge silently.
func (s *recommendationService) Generate(ctx context.Context, userID string, req *models.GenerateRecommendationsRequest) (*models.RecommendationsResponse, error) {
	// At most three rows ever persist for one scored event; larger
	// requests clamp rather than error.
	count := req.Count
	if count <= 0 || count > defaultRecommendationCount {
		count = defaultRecommendationCount
	}

	score, err := s.scoreRepo.GetByID(ctx, req.MoodScoreID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMoodScoreNotFound, err)
	}
	if score.UserID != userID {
		return nil, ErrMoodScoreNotFound
	}

	activity := ""
	if score.Activity != nil {
		activity = *score.Activity
	}

	// Idempotency check for the generation key.
	existing, err := s.recRepo.GetByKey(ctx, userID, score.Date, score.Category, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing recommendations: %w", err)
	}
	if len(existing) > 0 {
		return s.enriched(ctx, truncate(existing, count))
	}

	// Neutral scores coerce to positive.
	polarity := models.PolarityPositive
	if score.Score < 0 {
		polarity = models.PolarityNegative
	}

	texts, err := s.selectTexts(ctx, userID, score, activity, polarity, count)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return &models.RecommendationsResponse{Success: true, Recommendations: []models.Recommendation{}}, nil
	}

	scoreID := score.ID
	toInsert := make([]models.Recommendation, 0, len(texts))
	for _, text := range texts {
		toInsert = append(toInsert, models.Recommendation{
			UserID:      userID,
			MoodScoreID: &scoreID,
			Date:        score.Date,
			Category:    score.Category,
			Activity:    activity,
			ScoreValue:  score.Score,
			SleepHours:  score.SleepHours,
			Text:        text,
			Polarity:    polarity,
		})
	}
	if err := s.recRepo.InsertIgnoreDuplicates(ctx, toInsert); err != nil {
		return nil, err
	}

	// Read back what actually landed: a concurrent request may have
	// inserted some of the same rows first.
	final, err := s.recRepo.GetByKey(ctx, userID, score.Date, score.Category, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	return s.enriched(ctx, truncate(final, count))
}

// selectTexts walks the candidate cascade, orders deterministically,
// and applies the user's not-effective exclusions.
func (s *recommendationService) selectTexts(ctx context.Context, userID string, score *models.MoodScore, activity, polarity string, count int) ([]string, error) {
	category := recpool.NormalizeCategory(score.Category)

	var candidates []string
	if category == models.CategorySleep {
		if score.SleepHours == nil {
			return nil, nil
		}
		candidates = s.pool.SleepCandidates(*score.SleepHours)
	} else {
		candidates = s.pool.Candidates(category, activity, polarity)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	exclusions, err := s.fbRepo.NotEffectiveCounts(ctx, userID, score.Category, activity)
	if err != nil {
		return nil, fmt.Errorf("failed to load feedback exclusions: %w", err)
	}

	key := recpool.ContextKey(category, activity, polarity, score.SleepHours)
	wide := recpool.TopN(candidates, key, candidateSearchWidth, func(text string) bool {
		return exclusions[strings.ToLower(text)] >= exclusionThreshold
	})
	if len(wide) > count {
		wide = wide[:count]
	}
	return wide, nil
}

// enriched wraps rows for the response. Aggregate effectiveness stats
// are cached on the rows themselves and recomputed on every feedback
// write, so stored rows already carry them.
func (s *recommendationService) enriched(ctx context.Context, recs []models.Recommendation) (*models.RecommendationsResponse, error) {
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return &models.RecommendationsResponse{Success: true, Recommendations: recs}, nil
}

// CurrentWeek returns the user's rows for the current Monday-start
// local week.
func (s *recommendationService) CurrentWeek(ctx context.Context, userID string) (*models.RecommendationsResponse, error) {
	start, next := localday.WeekRange(time.Now())
	recs, err := s.recRepo.GetByUserAndDateRange(ctx, userID, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}
	return &models.RecommendationsResponse{Success: true, Recommendations: recs}, nil
}

// Resolve locates a MoodScore by (date, category, activity), matching
// activity labels after normalization. Sleep takes the day's newest
// row and ignores the activity.
func (s *recommendationService) Resolve(ctx context.Context, userID string, req *models.ResolveMoodScoreRequest) (*models.ResolveMoodScoreResponse, error) {
	start, next, err := localday.Bounds(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	category := recpool.NormalizeCategory(req.Category)
	scores, err := s.scoreRepo.GetByUserCategoryAndDateRange(ctx, userID, category, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load mood scores: %w", err)
	}

	if category == models.CategorySleep {
		if len(scores) == 0 {
			return &models.ResolveMoodScoreResponse{Success: true, Message: "no mood score for this day"}, nil
		}
		// Rows come back newest first.
		return &models.ResolveMoodScoreResponse{Success: true, MoodScore: &scores[0]}, nil
	}

	target := recpool.NormalizeActivity(req.Activity)
	for i := range scores {
		if scores[i].Activity != nil && recpool.NormalizeActivity(*scores[i].Activity) == target {
			return &models.ResolveMoodScoreResponse{Success: true, MoodScore: &scores[i]}, nil
		}
	}
	return &models.ResolveMoodScoreResponse{Success: true, Message: "no mood score for this day"}, nil
}

func truncate(recs []models.Recommendation, n int) []models.Recommendation {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}
