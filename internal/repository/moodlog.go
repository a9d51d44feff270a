package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/supabase"
)

type moodLogRepository struct {
	client *supabase.Client
}

// NewMoodLogRepository creates a new mood log repository
func NewMoodLogRepository(client *supabase.Client) MoodLogRepository {
	return &moodLogRepository{client: client}
}

func (r *moodLogRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.MoodLog, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"order":   "date.asc",
	}

	body, err := r.client.Query("mood_logs", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get mood logs: %w", err)
	}

	var logs []models.MoodLog
	if err := json.Unmarshal(body, &logs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return logs, nil
}
