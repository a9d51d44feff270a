package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/supabase"
)

type recommendationRepository struct {
	client *supabase.Client
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(client *supabase.Client) RecommendationRepository {
	return &recommendationRepository{client: client}
}

func (r *recommendationRepository) GetByID(ctx context.Context, id string) (*models.Recommendation, error) {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}

	body, err := r.client.Query("recommendations", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendation: %w", err)
	}

	var recs []models.Recommendation
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(recs) == 0 {
		return nil, fmt.Errorf("recommendation not found")
	}

	return &recs[0], nil
}

// GetByKey returns the rows already persisted for a generation key.
// Generation is idempotent per (user, date, category, activity): when
// rows exist for the key they are returned unchanged. The date filter
// keeps full sub-second precision: stored dates inherit the capture
// timestamps, and a truncated equality match would never hit them.
func (r *recommendationRepository) GetByKey(ctx context.Context, userID string, date time.Time, category, activity string) ([]models.Recommendation, error) {
	query := map[string]interface{}{
		"user_id":  fmt.Sprintf("eq.%s", userID),
		"date":     fmt.Sprintf("eq.%s", date.Format(time.RFC3339Nano)),
		"category": fmt.Sprintf("eq.%s", category),
		"activity": fmt.Sprintf("eq.%s", activity),
		"order":    "created_at.asc",
	}

	body, err := r.client.Query("recommendations", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	var recs []models.Recommendation
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return recs, nil
}

func (r *recommendationRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.Recommendation, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"order":   "date.asc",
	}

	body, err := r.client.Query("recommendations", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommendations: %w", err)
	}

	var recs []models.Recommendation
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return recs, nil
}

// InsertIgnoreDuplicates bulk-inserts rows and swallows duplicate-key
// violations: a concurrent request that already stored the same text
// for the same source is a converging no-op, not an error.
func (r *recommendationRepository) InsertIgnoreDuplicates(ctx context.Context, recs []models.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	insertData := make([]map[string]interface{}, 0, len(recs))
	for _, rec := range recs {
		insertData = append(insertData, map[string]interface{}{
			"user_id":       rec.UserID,
			"mood_score_id": rec.MoodScoreID,
			"mood_log_id":   rec.MoodLogID,
			"date":          rec.Date,
			"category":      rec.Category,
			"activity":      rec.Activity,
			"score_value":   rec.ScoreValue,
			"sleep_hours":   rec.SleepHours,
			"text":          rec.Text,
			"polarity":      rec.Polarity,
		})
	}

	if _, err := r.client.Insert("recommendations", insertData); err != nil {
		if supabase.IsDuplicateKey(err) {
			return nil
		}
		return fmt.Errorf("failed to insert recommendations: %w", err)
	}

	return nil
}

// UpdateAggregates caches recomputed feedback stats on the row.
func (r *recommendationRepository) UpdateAggregates(ctx context.Context, id string, count int, avgCombined float64, anyEffective bool) error {
	query := map[string]interface{}{
		"id": fmt.Sprintf("eq.%s", id),
	}
	data := map[string]interface{}{
		"feedback_count": count,
		"avg_combined":   avgCombined,
		"any_effective":  anyEffective,
	}

	if _, err := r.client.UpdateWhere("recommendations", query, data); err != nil {
		return fmt.Errorf("failed to update recommendation aggregates: %w", err)
	}

	return nil
}
