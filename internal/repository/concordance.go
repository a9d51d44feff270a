package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/supabase"
)

type concordanceSnapshotRepository struct {
	client *supabase.Client
}

// NewConcordanceSnapshotRepository creates a new concordance snapshot repository
func NewConcordanceSnapshotRepository(client *supabase.Client) ConcordanceSnapshotRepository {
	return &concordanceSnapshotRepository{client: client}
}

func (r *concordanceSnapshotRepository) GetByUserAndDay(ctx context.Context, userID string, start, next time.Time) (*models.ConcordanceSnapshot, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"limit":   1,
	}

	body, err := r.client.Query("concordance_snapshots", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get concordance snapshot: %w", err)
	}

	var snapshots []models.ConcordanceSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(snapshots) == 0 {
		return nil, nil
	}

	return &snapshots[0], nil
}

func (r *concordanceSnapshotRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.ConcordanceSnapshot, error) {
	query := map[string]interface{}{
		"user_id": fmt.Sprintf("eq.%s", userID),
		"and":     fmt.Sprintf("(date.gte.%s,date.lt.%s)", start.Format(time.RFC3339), next.Format(time.RFC3339)),
		"order":   "date.asc",
	}

	body, err := r.client.Query("concordance_snapshots", query)
	if err != nil {
		return nil, fmt.Errorf("failed to get concordance snapshots: %w", err)
	}

	var snapshots []models.ConcordanceSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return snapshots, nil
}

// Upsert writes the single daily document for (user_id, date), where
// date is the local-noon anchor. All categories live in one row so a
// partial save can never split a day across documents.
func (r *concordanceSnapshotRepository) Upsert(ctx context.Context, snapshot *models.ConcordanceSnapshot) (*models.ConcordanceSnapshot, error) {
	data := map[string]interface{}{
		"user_id":     snapshot.UserID,
		"date":        snapshot.Date,
		"results":     snapshot.Results,
		"thresholds":  snapshot.Thresholds,
		"computed_at": snapshot.ComputedAt,
	}

	body, err := r.client.Upsert("concordance_snapshots", data, "user_id,date")
	if err != nil {
		return nil, fmt.Errorf("failed to upsert concordance snapshot: %w", err)
	}

	var snapshots []models.ConcordanceSnapshot
	if err := json.Unmarshal(body, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(snapshots) == 0 {
		return nil, fmt.Errorf("no concordance snapshot returned")
	}

	return &snapshots[0], nil
}
