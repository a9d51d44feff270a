package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/moodhabit/backend/internal/localday"
	"github.com/moodhabit/backend/internal/logger"
	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/internal/repository"
	"github.com/moodhabit/backend/internal/scoring"
	"github.com/moodhabit/backend/pkg/statsengine"
)

const insufficientMessage = "Logs are still insufficient to run a proper analysis. Come back later!"

type analyticsService struct {
	logRepo   repository.MoodLogRepository
	scoreRepo repository.MoodScoreRepository
	snapRepo  repository.AnovaSnapshotRepository
	engine    StatsEngine
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(
	logRepo repository.MoodLogRepository,
	scoreRepo repository.MoodScoreRepository,
	snapRepo repository.AnovaSnapshotRepository,
	engine StatsEngine,
) AnalyticsService {
	return &analyticsService{
		logRepo:   logRepo,
		scoreRepo: scoreRepo,
		snapRepo:  snapRepo,
		engine:    engine,
	}
}

// RunDay recomputes one local day for a user: regenerate derived
// scores, run per-category statistics, and refresh the snapshot cache.
// Every failure mode degrades to cached or insufficient payloads; only
// storage errors on the write path are fatal.
func (s *analyticsService) RunDay(ctx context.Context, userID, date string) (*models.DayAnalyticsResponse, error) {
	start, next, err := localday.Bounds(date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	ctx = logger.WithDay(ctx, date)
	log := logger.Ctx(ctx)

	logs, err := s.logRepo.GetByUserAndDateRange(ctx, userID, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load mood logs: %w", err)
	}

	// No events today: serve cached snapshots plus any stored sleep row.
	if len(logs) == 0 {
		return s.savedDay(ctx, userID, start, next)
	}

	sleep, err := s.upsertSleep(ctx, userID, start, logs)
	if err != nil {
		return nil, err
	}

	if err := s.regenerateScores(ctx, userID, start, next, logs); err != nil {
		return nil, err
	}

	results := make(map[string]*models.CategoryAnalytics)
	for _, category := range models.NonSleepCategories {
		payload, catErr := s.runCategory(ctx, userID, category, start, next)
		if catErr != nil {
			// One category failing must not sink the others.
			log.Warn("category analytics failed",
				logger.String("category", category),
				logger.Err(catErr))
			continue
		}
		if payload != nil {
			results[category] = payload
		}
	}

	// Final cascade: if recomputation produced nothing at all, return
	// whatever history exists rather than an error.
	if len(results) == 0 && sleep == nil {
		saved, err := s.savedDay(ctx, userID, start, next)
		if err != nil {
			return nil, err
		}
		return saved, nil
	}

	return &models.DayAnalyticsResponse{
		Success:      true,
		AnovaResults: results,
		Sleep:        sleep,
	}, nil
}

// upsertSleep extracts the day's latest sleep log, scores it, and
// upserts the single per-(user, day) sleep row. The row's date is
// pinned to the day start so the upsert key stays stable across edits.
func (s *analyticsService) upsertSleep(ctx context.Context, userID string, start time.Time, logs []models.MoodLog) (*models.SleepSummary, error) {
	var hours *float64
	for i := range logs {
		if logs[i].Category == models.CategorySleep && logs[i].SleepHours != nil {
			hours = logs[i].SleepHours
		}
	}
	if hours == nil {
		return nil, nil
	}

	score := scoring.SleepScore(*hours)
	var quality *string
	if q := scoring.SleepQuality(*hours); q != "" {
		quality = &q
	}

	row, err := s.scoreRepo.UpsertSleep(ctx, &models.MoodScore{
		UserID:       userID,
		Date:         start,
		Category:     models.CategorySleep,
		Score:        score,
		SleepHours:   hours,
		SleepQuality: quality,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert sleep score: %w", err)
	}

	return &models.SleepSummary{
		Quality:     quality,
		Hours:       *hours,
		Score:       score,
		MoodScoreID: row.ID,
	}, nil
}

// regenerateScores deletes the day's derived non-sleep scores and
// recreates them from the raw events. Safe to repeat: scores are pure
// derivations.
func (s *analyticsService) regenerateScores(ctx context.Context, userID string, start, next time.Time, logs []models.MoodLog) error {
	if err := s.scoreRepo.DeleteNonSleepInRange(ctx, userID, start, next); err != nil {
		return fmt.Errorf("failed to clear mood scores: %w", err)
	}

	var scores []models.MoodScore
	for i := range logs {
		moodLog := &logs[i]
		if moodLog.Category == models.CategorySleep {
			continue
		}
		// Events without a pre-event check-in have no before intensity
		// and cannot be scored.
		if moodLog.BeforeIntensity == nil {
			continue
		}
		activity := moodLog.ActivityLabel()
		if activity == "" {
			activity = "unknown"
		}
		act := activity
		scores = append(scores, models.MoodScore{
			UserID:   userID,
			Date:     moodLog.Date,
			Category: moodLog.Category,
			Activity: &act,
			Score:    scoring.EventScore(*moodLog.BeforeIntensity, moodLog.AfterIntensity),
		})
	}

	if _, err := s.scoreRepo.CreateBatch(ctx, scores); err != nil {
		return fmt.Errorf("failed to create mood scores: %w", err)
	}
	return nil
}

// runCategory produces the payload for one category: compute when
// possible, fall back to the cached snapshot, and as a last resort
// return a structured insufficient result. A nil payload with nil
// error means the category has neither data nor history.
func (s *analyticsService) runCategory(ctx context.Context, userID, category string, start, next time.Time) (*models.CategoryAnalytics, error) {
	scores, err := s.scoreRepo.GetByUserCategoryAndDateRange(ctx, userID, category, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	groups := groupScores(scores)
	if len(groups) == 0 {
		return s.savedPayload(ctx, userID, category, start, next)
	}

	resp, err := s.engine.RunAnova(ctx, map[string]statsengine.Groups{category: groups})
	var result *statsengine.AnovaCategoryResult
	if err == nil && resp != nil {
		result = resp.Results[category]
	}

	if err != nil || result == nil || !result.Success {
		if err != nil {
			logger.Ctx(ctx).Warn("stats engine unavailable, serving cached snapshot",
				logger.String("category", category),
				logger.Err(err))
		}
		saved, savedErr := s.savedPayload(ctx, userID, category, start, next)
		if savedErr != nil {
			return nil, savedErr
		}
		if saved != nil {
			return saved, nil
		}
		return insufficientPayload(result, groups), nil
	}

	return s.storeSuccess(ctx, userID, category, start, scores, groups, result)
}

// storeSuccess normalizes an engine success, upserts the snapshot at
// the noon anchor, and builds the response payload.
func (s *analyticsService) storeSuccess(ctx context.Context, userID, category string, start time.Time, scores []models.MoodScore, groups statsengine.Groups, result *statsengine.AnovaCategoryResult) (*models.CategoryAnalytics, error) {
	counts := result.GroupCounts
	if len(counts) == 0 {
		counts = make(map[string]int, len(groups))
		for name, vals := range groups {
			counts[name] = len(vals)
		}
	}

	// Pairwise rows are only meaningful when both groups have at least
	// two observations.
	var pairwise []models.PairwiseRow
	for _, row := range result.Pairwise {
		if counts[row.Group1] >= 2 && counts[row.Group2] >= 2 {
			pairwise = append(pairwise, models.PairwiseRow{
				Group1:   row.Group1,
				Group2:   row.Group2,
				MeanDiff: row.MeanDiff,
				PAdj:     row.PAdj,
				Lower:    row.Lower,
				Upper:    row.Upper,
				Reject:   row.Reject,
			})
		}
	}

	stats := models.AnovaStats{
		FValue:         result.FValue,
		PValue:         result.PValue,
		MSB:            result.MSB,
		MSW:            result.MSW,
		Interpretation: result.Interpretation,
		IncludedGroups: orEmpty(result.IncludedGroups),
		IgnoredGroups:  orEmpty(result.IgnoredGroups),
		GroupMeans:     orEmptyMeans(result.GroupMeans),
		GroupCounts:    counts,
	}

	topPositive, topNegative := topLists(stats.GroupMeans, counts)

	ids := make([]string, 0, len(scores))
	for i := range scores {
		if scores[i].ID != "" {
			ids = append(ids, scores[i].ID)
		}
	}

	snapshot := &models.AnovaSnapshot{
		UserID:       userID,
		Category:     category,
		Date:         localday.NoonAnchor(start),
		MoodScoreIDs: ids,
		Stats:        stats,
		TopPositive:  topPositive,
		TopNegative:  topNegative,
		Pairwise:     pairwise,
	}
	if _, err := s.snapRepo.Upsert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return &models.CategoryAnalytics{
		Stats:       &stats,
		TopPositive: topPositive,
		TopNegative: topNegative,
		Pairwise:    pairwise,
	}, nil
}

// savedPayload serves the cached snapshot for a category, backfilling
// group means/counts from the freshly queried raw scores so a stale
// interpretation never contradicts current counts. Returns nil when no
// snapshot exists.
func (s *analyticsService) savedPayload(ctx context.Context, userID, category string, start, next time.Time) (*models.CategoryAnalytics, error) {
	snap, err := s.snapRepo.GetByUserCategoryAndDay(ctx, userID, category, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if snap == nil {
		return nil, nil
	}

	scores, err := s.scoreRepo.GetByUserCategoryAndDateRange(ctx, userID, category, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}
	backfillMeans, backfillCounts := meansAndCounts(scores)

	stats := snap.Stats
	if len(stats.GroupMeans) == 0 {
		stats.GroupMeans = backfillMeans
	}
	if len(stats.GroupCounts) == 0 {
		stats.GroupCounts = backfillCounts
	}

	return &models.CategoryAnalytics{
		Stats:       &stats,
		TopPositive: snap.TopPositive,
		TopNegative: snap.TopNegative,
		Pairwise:    snap.Pairwise,
	}, nil
}

// savedDay builds the whole-day fallback response from cached
// snapshots and the stored sleep row.
func (s *analyticsService) savedDay(ctx context.Context, userID string, start, next time.Time) (*models.DayAnalyticsResponse, error) {
	results := make(map[string]*models.CategoryAnalytics)
	for _, category := range models.NonSleepCategories {
		payload, err := s.savedPayload(ctx, userID, category, start, next)
		if err != nil {
			return nil, err
		}
		if payload != nil {
			results[category] = payload
		}
	}

	sleep, err := s.storedSleep(ctx, userID, start, next)
	if err != nil {
		return nil, err
	}

	resp := &models.DayAnalyticsResponse{
		Success:      len(results) > 0 || sleep != nil,
		AnovaResults: results,
		Sleep:        sleep,
	}
	if !resp.Success {
		resp.Message = insufficientMessage
	}
	return resp, nil
}

func (s *analyticsService) storedSleep(ctx context.Context, userID string, start, next time.Time) (*models.SleepSummary, error) {
	rows, err := s.scoreRepo.GetByUserCategoryAndDateRange(ctx, userID, models.CategorySleep, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load sleep score: %w", err)
	}
	if len(rows) == 0 || rows[0].SleepHours == nil {
		return nil, nil
	}
	row := rows[0]
	return &models.SleepSummary{
		Quality:     row.SleepQuality,
		Hours:       *row.SleepHours,
		Score:       row.Score,
		MoodScoreID: row.ID,
	}, nil
}

// History returns snapshots and scores grouped by local day key.
func (s *analyticsService) History(ctx context.Context, userID, startDate, endDate string) (*models.AnalyticsHistoryResponse, error) {
	start, _, err := localday.Bounds(startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	_, next, err := localday.Bounds(endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	snapshots, err := s.snapRepo.GetByUserAndDateRange(ctx, userID, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	scores, err := s.scoreRepo.GetByUserAndDateRange(ctx, userID, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores: %w", err)
	}

	byDate := make(map[string]map[string]*models.CategoryAnalytics)
	for i := range snapshots {
		snap := &snapshots[i]
		key := localday.Key(snap.Date)
		if byDate[key] == nil {
			byDate[key] = make(map[string]*models.CategoryAnalytics)
		}
		stats := snap.Stats
		byDate[key][snap.Category] = &models.CategoryAnalytics{
			Stats:       &stats,
			TopPositive: snap.TopPositive,
			TopNegative: snap.TopNegative,
			Pairwise:    snap.Pairwise,
		}
	}

	scoresByDate := make(map[string][]models.MoodScore)
	for _, score := range scores {
		key := localday.Key(score.Date)
		scoresByDate[key] = append(scoresByDate[key], score)
	}

	return &models.AnalyticsHistoryResponse{
		Success:      true,
		AnovaByDate:  byDate,
		ScoresByDate: scoresByDate,
	}, nil
}

// groupScores buckets a category's scores by activity label.
func groupScores(scores []models.MoodScore) statsengine.Groups {
	groups := make(statsengine.Groups)
	for i := range scores {
		activity := "unknown"
		if scores[i].Activity != nil && *scores[i].Activity != "" {
			activity = *scores[i].Activity
		}
		groups[activity] = append(groups[activity], float64(scores[i].Score))
	}
	return groups
}

// meansAndCounts computes per-activity mean score and observation count
// from raw score rows.
func meansAndCounts(scores []models.MoodScore) (map[string]float64, map[string]int) {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range scores {
		activity := "unknown"
		if scores[i].Activity != nil && *scores[i].Activity != "" {
			activity = *scores[i].Activity
		}
		sums[activity] += float64(scores[i].Score)
		counts[activity]++
	}
	means := make(map[string]float64, len(sums))
	for activity, sum := range sums {
		means[activity] = math.Round(sum/float64(counts[activity])*100) / 100
	}
	return means, counts
}

// topLists derives the top-positive and top-negative activities from
// group means: at least two observations, sorted by mean, capped at 5.
func topLists(means map[string]float64, counts map[string]int) (positive, negative []models.ActivityScore) {
	const (
		minObservations = 2
		limit           = 5
	)
	var rows []models.ActivityScore
	for activity, mean := range means {
		if counts[activity] >= minObservations {
			rows = append(rows, models.ActivityScore{Activity: activity, Score: mean})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Activity < rows[j].Activity
	})
	for _, row := range rows {
		if row.Score > 0 && len(positive) < limit {
			positive = append(positive, row)
		}
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Score < 0 && len(negative) < limit {
			negative = append(negative, rows[i])
		}
	}
	return positive, negative
}

// insufficientPayload builds the structured insufficient result,
// naming the groups that fell below the per-group minimum.
func insufficientPayload(result *statsengine.AnovaCategoryResult, groups statsengine.Groups) *models.CategoryAnalytics {
	message := insufficientMessage
	var ignored []string
	if result != nil {
		if result.Message != "" {
			message = result.Message
		}
		ignored = result.IgnoredGroups
	}
	if len(ignored) == 0 {
		for name, vals := range groups {
			if len(vals) < 2 {
				ignored = append(ignored, name)
			}
		}
		sort.Strings(ignored)
	}
	return &models.CategoryAnalytics{
		Insufficient: true,
		Message:      message,
		Stats: &models.AnovaStats{
			IgnoredGroups: ignored,
			GroupMeans:    map[string]float64{},
			GroupCounts:   map[string]int{},
		},
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyMeans(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}
