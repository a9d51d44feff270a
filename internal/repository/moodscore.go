package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/supabase"
)

type moodScoreRepository struct {
	client *supabase.Client
}

// NewMoodScoreRepository creates a new mood score repository
func NewMoodScoreRepository(client *supabase.Client) MoodScoreRepository {
	return &moodScoreRepository{client: client}
}

func (r *moodScoreRepository) GetByID(ctx context.Context, id string) (*models.MoodScore, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	body, err := r.client.Query("mood_scores", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood score: %w", err)
	}

	var scores []models.MoodScore
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(scores) == 0 {
		return nil, fmt.Errorf("mood score not found")
	}

	return &scores[0], nil
}

func (r *moodScoreRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.MoodScore, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"order":   "date.desc",
	}

	body, err := r.client.Query("mood_scores", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood scores: %w", err)
	}

	var scores []models.MoodScore
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return scores, nil
}

func (r *moodScoreRepository) GetByUserCategoryAndDateRange(ctx context.Context, userID, category string, start, next time.Time) ([]models.MoodScore, error) {
	query := map[string]interface{}{
		"user_id":  fmt.Sprintf("eq.%s", userID),
		"category": fmt.Sprintf("eq.%s", category),
		"and":      fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"order":    "date.desc",
	}

	body, err := r.client.Query("mood_scores", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood scores: %w", err)
	}

	var scores []models.MoodScore
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return scores, nil
}

// DeleteNonSleepInRange removes a day's derived non-sleep scores so
// they can be regenerated from the raw events. The sleep row survives;
// it is upserted separately.
func (r *moodScoreRepository) DeleteNonSleepInRange(ctx context.Context, userID string, start, next time.Time) error {
	query := map[string]interface{}{
		"user_id":  fmt.Sprintf("eq.%s", userID),
		"category": fmt.Sprintf("neq.%s", models.CategorySleep),
		"and":      fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
	}

	if err := r.client.DeleteWhere("mood_scores", query); err != nil {
		return fmt.Errorf("failed to delete mood scores: %w", err)
	}

	return nil
}

func (r *moodScoreRepository) CreateBatch(ctx context.Context, scores []models.MoodScore) ([]models.MoodScore, error) {
	if len(scores) == 0 {
		return []models.MoodScore{}, nil
	}

	// PostgREST requires identical keys across all objects in a batch
	// insert, so every row carries every column.
	insertData := make([]map[string]interface{}, 0, len(scores))
	for _, s := range scores {
		insertData = append(insertData, map[string]interface{}{
			"user_id":       s.UserID,
			"date":          s.Date,
			"category":      s.Category,
			"activity":      s.Activity,
			"score":         s.Score,
			"sleep_hours":   s.SleepHours,
			"sleep_quality": s.SleepQuality,
		})
	}

	body, err := r.client.Insert("mood_scores", insertData)
	if err != nil {
		return nil, fmt.Errorf("failed to batch create mood scores: %w", err)
	}

	var created []models.MoodScore
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return created, nil
}

// UpsertSleep writes the single sleep score for (user, day), updating
// in place when the user edits their hours.
func (r *moodScoreRepository) UpsertSleep(ctx context.Context, score *models.MoodScore) (*models.MoodScore, error) {
	data := map[string]interface{}{
		"user_id":       score.UserID,
		"date":          score.Date,
		"category":      models.CategorySleep,
		"score":         score.Score,
		"sleep_hours":   score.SleepHours,
		"sleep_quality": score.SleepQuality,
	}

	body, err := r.client.Upsert("mood_scores", data, "user_id,category,date")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert sleep score: %w", err)
	}

	var scores []models.MoodScore
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(scores) == 0 {
		return nil, fmt.Errorf("no sleep score returned")
	}

	return &scores[0], nil
}
