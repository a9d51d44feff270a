package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/internal/recpool"
)

func testPool(t *testing.T) *recpool.Pool {
	t.Helper()
	pool, err := recpool.Default()
	if err != nil {
		t.Fatalf("failed to load default pool: %v", err)
	}
	return pool
}

func newRecFixture(t *testing.T) (*mockMoodScoreRepository, *mockRecommendationRepository, *mockFeedbackRepository, RecommendationService) {
	scoreRepo := newMockMoodScoreRepository()
	recRepo := &mockRecommendationRepository{}
	fbRepo := newMockFeedbackRepository()
	svc := NewRecommendationService(scoreRepo, recRepo, fbRepo, testPool(t))
	return scoreRepo, recRepo, fbRepo, svc
}

func addScore(repo *mockMoodScoreRepository, date string, category, activity string, score int) *models.MoodScore {
	ms := models.MoodScore{
		UserID:   testUserID,
		Date:     localTime(date, 9),
		Category: category,
		Score:    score,
	}
	if activity != "" {
		act := activity
		ms.Activity = &act
	}
	return repo.add(ms)
}

func TestRecommendationGenerate(t *testing.T) {
	const date = "2026-03-05"
	ctx := context.Background()

	t.Run("unknown mood score", func(t *testing.T) {
		_, _, _, svc := newRecFixture(t)
		_, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: "missing"})
		if !errors.Is(err, ErrMoodScoreNotFound) {
			t.Fatalf("expected ErrMoodScoreNotFound, got %v", err)
		}
	})

	t.Run("score owned by another user", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 40)
		_, err := svc.Generate(ctx, "someone-else", &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
		if !errors.Is(err, ErrMoodScoreNotFound) {
			t.Fatalf("expected ErrMoodScoreNotFound, got %v", err)
		}
	})

	t.Run("defaults to three and persists", func(t *testing.T) {
		scoreRepo, recRepo, _, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 40)

		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(resp.Recommendations) != 3 {
			t.Fatalf("expected 3 recommendations, got %d", len(resp.Recommendations))
		}
		for _, rec := range resp.Recommendations {
			if rec.ID == "" {
				t.Error("expected persisted rows with ids")
			}
			if rec.Polarity != models.PolarityPositive {
				t.Errorf("expected positive polarity for score 40, got %q", rec.Polarity)
			}
			if rec.Category != models.CategoryActivity || rec.Activity != "gym" {
				t.Errorf("unexpected key fields: %+v", rec)
			}
		}
		if recRepo.insertCalls != 1 {
			t.Errorf("expected one insert, got %d", recRepo.insertCalls)
		}
	})

	t.Run("selection is deterministic", func(t *testing.T) {
		texts := func() []string {
			scoreRepo, _, _, svc := newRecFixture(t)
			score := addScore(scoreRepo, date, models.CategoryActivity, "gym", -20)
			resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			out := make([]string, 0, len(resp.Recommendations))
			for _, rec := range resp.Recommendations {
				out = append(out, rec.Text)
			}
			return out
		}

		first := texts()
		second := texts()
		if len(first) == 0 {
			t.Fatal("expected recommendations")
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("selection not deterministic: %v vs %v", first, second)
			}
		}
	})

	t.Run("regeneration returns existing rows unchanged", func(t *testing.T) {
		scoreRepo, recRepo, _, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 40)

		first, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
		if err != nil {
			t.Fatalf("first Generate returned error: %v", err)
		}
		second, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
		if err != nil {
			t.Fatalf("second Generate returned error: %v", err)
		}
		if recRepo.insertCalls != 1 {
			t.Errorf("regeneration must not insert again, got %d inserts", recRepo.insertCalls)
		}
		if len(first.Recommendations) != len(second.Recommendations) {
			t.Fatalf("row count changed across regenerations: %d vs %d", len(first.Recommendations), len(second.Recommendations))
		}
		for i := range first.Recommendations {
			if first.Recommendations[i].ID != second.Recommendations[i].ID {
				t.Error("regeneration returned different rows")
			}
		}
	})

	t.Run("repeat not-effective feedback excludes a text", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 40)
		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		blocked := resp.Recommendations[0].Text

		scoreRepo2, _, fbRepo2, svc2 := newRecFixture(t)
		fbRepo2.notEffectiveCounts = map[string]int{strings.ToLower(blocked): 2}
		score2 := addScore(scoreRepo2, date, models.CategoryActivity, "gym", 40)
		resp2, err := svc2.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score2.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		for _, rec := range resp2.Recommendations {
			if rec.Text == blocked {
				t.Errorf("excluded text %q was still selected", blocked)
			}
		}
	})

	t.Run("one strike does not exclude", func(t *testing.T) {
		scoreRepo, _, fbRepo, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 40)
		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		kept := resp.Recommendations[0].Text

		scoreRepo.scores = newMockMoodScoreRepository().scores
		fbRepo.notEffectiveCounts = map[string]int{strings.ToLower(kept): 1}
		score2 := addScore(scoreRepo, "2026-03-06", models.CategoryActivity, "gym", 40)
		resp2, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score2.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		found := false
		for _, rec := range resp2.Recommendations {
			if rec.Text == kept {
				found = true
			}
		}
		if !found {
			t.Errorf("text %q with one strike should still be selectable", kept)
		}
	})

	t.Run("neutral score selects positive texts", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 0)
		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		for _, rec := range resp.Recommendations {
			if rec.Polarity != models.PolarityPositive {
				t.Errorf("neutral score must coerce to positive, got %q", rec.Polarity)
			}
		}
	})

	t.Run("sleep uses the hours bucket", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		hours := 5.5
		ms := scoreRepo.add(models.MoodScore{
			UserID:     testUserID,
			Date:       localTime(date, 0),
			Category:   models.CategorySleep,
			Score:      -43,
			SleepHours: &hours,
		})
		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: ms.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(resp.Recommendations) == 0 {
			t.Fatal("expected sleep recommendations")
		}
		if resp.Recommendations[0].SleepHours == nil || *resp.Recommendations[0].SleepHours != 5.5 {
			t.Errorf("expected sleep hours carried on the row: %+v", resp.Recommendations[0])
		}
	})

	t.Run("sleep without hours yields none", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		ms := scoreRepo.add(models.MoodScore{
			UserID:   testUserID,
			Date:     localTime(date, 0),
			Category: models.CategorySleep,
		})
		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: ms.ID})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if !resp.Success || len(resp.Recommendations) != 0 {
			t.Errorf("expected empty success, got %+v", resp)
		}
	})

	t.Run("count is honored", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 40)
		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID, Count: 2})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(resp.Recommendations) != 2 {
			t.Errorf("expected 2 recommendations, got %d", len(resp.Recommendations))
		}
	})

	t.Run("count above the cap is clamped", func(t *testing.T) {
		scoreRepo, recRepo, _, svc := newRecFixture(t)
		score := addScore(scoreRepo, date, models.CategoryActivity, "gym", 40)
		resp, err := svc.Generate(ctx, testUserID, &models.GenerateRecommendationsRequest{MoodScoreID: score.ID, Count: 10})
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if len(resp.Recommendations) != 3 {
			t.Errorf("expected 3 recommendations, got %d", len(resp.Recommendations))
		}
		if len(recRepo.recs) != 3 {
			t.Errorf("expected 3 persisted rows, got %d", len(recRepo.recs))
		}
	})
}

func TestRecommendationCurrentWeek(t *testing.T) {
	ctx := context.Background()
	_, recRepo, _, svc := newRecFixture(t)

	recRepo.recs = append(recRepo.recs,
		models.Recommendation{ID: "this-week", UserID: testUserID, Date: time.Now(), Category: models.CategoryActivity, Activity: "gym", Text: "a"},
		models.Recommendation{ID: "last-month", UserID: testUserID, Date: time.Now().AddDate(0, 0, -30), Category: models.CategoryActivity, Activity: "gym", Text: "b"},
	)

	resp, err := svc.CurrentWeek(ctx, testUserID)
	if err != nil {
		t.Fatalf("CurrentWeek returned error: %v", err)
	}
	if len(resp.Recommendations) != 1 || resp.Recommendations[0].ID != "this-week" {
		t.Errorf("unexpected rows: %+v", resp.Recommendations)
	}
}

func TestRecommendationResolve(t *testing.T) {
	const date = "2026-03-05"
	ctx := context.Background()

	t.Run("matches after normalization", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		stored := addScore(scoreRepo, date, models.CategoryActivity, "Morning Run", 60)

		resp, err := svc.Resolve(ctx, testUserID, &models.ResolveMoodScoreRequest{
			Date:     date,
			Category: "Activity",
			Activity: "morning_run",
		})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if resp.MoodScore == nil || resp.MoodScore.ID != stored.ID {
			t.Errorf("expected matched score %s, got %+v", stored.ID, resp.MoodScore)
		}
	})

	t.Run("sleep ignores activity", func(t *testing.T) {
		scoreRepo, _, _, svc := newRecFixture(t)
		hours := 8.0
		stored := scoreRepo.add(models.MoodScore{
			UserID:     testUserID,
			Date:       localTime(date, 0),
			Category:   models.CategorySleep,
			SleepHours: &hours,
		})

		resp, err := svc.Resolve(ctx, testUserID, &models.ResolveMoodScoreRequest{Date: date, Category: "sleep", Activity: "whatever"})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if resp.MoodScore == nil || resp.MoodScore.ID != stored.ID {
			t.Errorf("expected sleep score, got %+v", resp.MoodScore)
		}
	})

	t.Run("no match returns message", func(t *testing.T) {
		_, _, _, svc := newRecFixture(t)
		resp, err := svc.Resolve(ctx, testUserID, &models.ResolveMoodScoreRequest{Date: date, Category: "activity", Activity: "gym"})
		if err != nil {
			t.Fatalf("Resolve returned error: %v", err)
		}
		if resp.MoodScore != nil || resp.Message == "" {
			t.Errorf("expected empty result with message, got %+v", resp)
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		_, _, _, svc := newRecFixture(t)
		_, err := svc.Resolve(ctx, testUserID, &models.ResolveMoodScoreRequest{Date: "??", Category: "activity"})
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate, got %v", err)
		}
	})
}
