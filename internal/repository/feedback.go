package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/supabase"
)

type feedbackRepository struct {
	client *supabase.Client
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(client *supabase.Client) FeedbackRepository {
	return &feedbackRepository{client: client}
}

// Upsert writes the single feedback row for (recommendation, user).
// Resubmitting a rating overwrites the prior one.
func (r *feedbackRepository) Upsert(ctx context.Context, feedback *models.RecommendationFeedback) (*models.RecommendationFeedback, error) {
	data := map[string]interface{}{
		"recommendation_id": feedback.RecommendationID,
		"user_id":           feedback.UserID,
		"rating":            feedback.Rating,
		"comment":           feedback.Comment,
		"sentiment_score":   feedback.SentimentScore,
		"combined_score":    feedback.CombinedScore,
		"effective":         feedback.Effective,
		"category":          feedback.Category,
		"activity":          feedback.Activity,
	}

	body, err := r.client.Upsert("recommendation_feedback", data, "recommendation_id,user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert feedback: %w", err)
	}

	var rows []models.RecommendationFeedback
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no feedback returned")
	}

	return &rows[0], nil
}

func (r *feedbackRepository) GetByRecommendation(ctx context.Context, recommendationID string) ([]models.RecommendationFeedback, error) {
	query := map[string]interface{}{
		"recommendation_id": fmt.Sprintf("eq.%s", recommendationID),
	}

	body, err := r.client.Query("recommendation_feedback", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	var rows []models.RecommendationFeedback
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return rows, nil
}

// NotEffectiveCounts returns, per lowercased recommendation text, how
// many not-effective feedback rows this user has filed for the given
// category + activity. The selector blocks texts at two or more.
func (r *feedbackRepository) NotEffectiveCounts(ctx context.Context, userID, category, activity string) (map[string]int, error) {
	query := map[string]interface{}{
		"user_id":   fmt.Sprintf("eq.%s", userID),
		"category":  fmt.Sprintf("eq.%s", category),
		"activity":  fmt.Sprintf("eq.%s", activity),
		"effective": "eq.false",
		"select":    "*,recommendation:recommendations(id,text)",
	}

	body, err := r.client.Query("recommendation_feedback", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback counts: %w", err)
	}

	var rows []models.RecommendationFeedback
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	counts := make(map[string]int)
	for _, row := range rows {
		if row.Recommendation == nil {
			continue
		}
		counts[strings.ToLower(strings.TrimSpace(row.Recommendation.Text))]++
	}

	return counts, nil
}
