package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/supabase"
)

type anovaSnapshotRepository struct {
	client *supabase.Client
}

// NewAnovaSnapshotRepository creates a new analytics snapshot repository
func NewAnovaSnapshotRepository(client *supabase.Client) AnovaSnapshotRepository {
	return &anovaSnapshotRepository{client: client}
}

// GetByUserCategoryAndDay reads the snapshot for one day by range, not
// by anchor equality, so reads stay correct if anchoring ever changes.
func (r *anovaSnapshotRepository) GetByUserCategoryAndDay(ctx context.Context, userID, category string, start, next time.Time) (*models.AnovaSnapshot, error) {
	query := map[string]interface{}{
		"user_id":  fmt.Sprintf("eq.%s", userID),
		"category": fmt.Sprintf("eq.%s", category),
		"and":      fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"limit":    1,
	}

	body, err := r.client.Query("anova_snapshots", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snapshots []models.AnovaSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(snapshots) == 0 {
		return nil, nil
	}

	return &snapshots[0], nil
}

func (r *anovaSnapshotRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.AnovaSnapshot, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"order":   "date.asc",
	}

	body, err := r.client.Query("anova_snapshots", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}

	var snapshots []models.AnovaSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return snapshots, nil
}

// Upsert writes a snapshot keyed by (user_id, category, date). The
// date must be the local-noon anchor; two concurrent upserts for the
// same key resolve to last-write-wins on one row.
func (r *anovaSnapshotRepository) Upsert(ctx context.Context, snapshot *models.AnovaSnapshot) (*models.AnovaSnapshot, error) {
	data := map[string]interface{}{
		"user_id":        snapshot.UserID,
		"category":       snapshot.Category,
		"date":           snapshot.Date,
		"mood_score_ids": snapshot.MoodScoreIDs,
		"stats":          snapshot.Stats,
		"top_positive":   snapshot.TopPositive,
		"top_negative":   snapshot.TopNegative,
		"pairwise":       snapshot.Pairwise,
	}

	body, err := r.client.Upsert("anova_snapshots", data, "user_id,category,date")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert snapshot: %w", err)
	}

	var snapshots []models.AnovaSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no snapshot returned")
	}

	return &snapshots[0], nil
}
