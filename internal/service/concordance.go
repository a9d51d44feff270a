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

const insufficientPairsMessage = "Not enough paired logs to analyze yet. You can still view tips for logged activities."

type concordanceService struct {
	logRepo  repository.MoodLogRepository
	snapRepo repository.ConcordanceSnapshotRepository
	engine   StatsEngine
}

// NewConcordanceService creates a new concordance service
func NewConcordanceService(
	logRepo repository.MoodLogRepository,
	snapRepo repository.ConcordanceSnapshotRepository,
	engine StatsEngine,
) ConcordanceService {
	return &concordanceService{
		logRepo:  logRepo,
		snapRepo: snapRepo,
		engine:   engine,
	}
}

// dayContext is everything derived from one day's raw logs before the
// engine is consulted: paired observations plus the per-activity
// routing maps that are always returned, computed or not.
type dayContext struct {
	pairs      map[string]statsengine.PairGroups
	lastIDs    map[string]map[string]string
	logCounts  map[string]map[string]int
	pairCounts map[string]map[string]int
	sleep      *models.SleepSummary
}

// RunDay runs the daily concordance pass: build (before, after) signed
// pairs per activity, consult the engine, and store one noon-anchored
// document per (user, day) covering all categories. Even insufficient
// categories carry per-activity latest ids and log counts so clients
// can route to guidance.
func (s *concordanceService) RunDay(ctx context.Context, userID string, req *models.RunConcordanceRequest) (*models.DayConcordanceResponse, error) {
	start, next, err := localday.Bounds(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}

	ctx = logger.WithDay(ctx, req.Date)

	thresholds := models.DefaultConcordanceThresholds()
	if req.Thresholds != nil {
		thresholds = *req.Thresholds
	}

	logs, err := s.logRepo.GetByUserAndDateRange(ctx, userID, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load mood logs: %w", err)
	}

	day := buildDayContext(logs, thresholds.Scale)

	hasPairs := false
	for _, groups := range day.pairs {
		if len(groups) > 0 {
			hasPairs = true
			break
		}
	}
	if !hasPairs {
		return s.savedDay(ctx, userID, start, next, day, thresholds)
	}

	resp, err := s.engine.RunConcordance(ctx, day.pairs, statsengine.Thresholds{
		MinPairs: thresholds.MinPairs,
		Pos:      thresholds.Pos,
		Neg:      thresholds.Neg,
		MinCCC:   thresholds.MinCCC,
		Scale:    thresholds.Scale,
	})
	if err != nil {
		logger.Ctx(ctx).Warn("concordance engine unavailable, serving cached snapshot",
			logger.Err(err))
		return s.savedDay(ctx, userID, start, next, day, thresholds)
	}

	results := make(map[string]*models.CategoryConcordance, len(models.NonSleepCategories))
	for _, category := range models.NonSleepCategories {
		var engineResult *statsengine.ConcordanceCategoryResult
		if resp != nil {
			engineResult = resp.Results[category]
		}
		results[category] = s.categoryResult(category, engineResult, resp != nil && resp.Success, day)
	}

	snapshot := &models.ConcordanceSnapshot{
		UserID:     userID,
		Date:       localday.NoonAnchor(start),
		Results:    results,
		Thresholds: thresholds,
		ComputedAt: time.Now(),
	}
	if _, err := s.snapRepo.Upsert(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save concordance snapshot: %w", err)
	}

	return &models.DayConcordanceResponse{
		Success:    true,
		Results:    results,
		Thresholds: thresholds,
		Sleep:      day.sleep,
	}, nil
}

// categoryResult merges the engine's per-category payload with the
// locally derived routing maps, or builds an insufficient payload when
// the engine had nothing for this category.
func (s *concordanceService) categoryResult(category string, result *statsengine.ConcordanceCategoryResult, engineOK bool, day *dayContext) *models.CategoryConcordance {
	lastIDs := day.lastIDs[category]
	logCounts := day.logCounts[category]
	pairCounts := day.pairCounts[category]

	if !engineOK || result == nil || !result.Success {
		message := insufficientPairsMessage
		var ignored []string
		if result != nil {
			if result.Message != nil && *result.Message != "" {
				message = *result.Message
			}
			ignored = result.IgnoredGroups
		}
		if len(ignored) == 0 {
			for activity, count := range pairCounts {
				if count < 1 {
					ignored = append(ignored, activity)
				}
			}
			sort.Strings(ignored)
		}
		return &models.CategoryConcordance{
			Insufficient:    true,
			Message:         message,
			IncludedGroups:  []string{},
			IgnoredGroups:   ignored,
			GroupCounts:     pairCounts,
			GroupMeans:      map[string]float64{},
			TopPositive:     []models.ActivityScore{},
			TopNegative:     []models.ActivityScore{},
			GroupLastIDs:    lastIDs,
			AvailableGroups: sortedKeys(lastIDs),
			GroupLogCounts:  logCounts,
		}
	}

	counts := result.GroupCounts
	if len(counts) == 0 {
		counts = pairCounts
	}

	topPositive := toActivityScores(result.TopPositive)
	topNegative := toActivityScores(result.TopNegative)
	if len(topPositive) == 0 && len(topNegative) == 0 {
		topPositive, topNegative = topListsFromMeans(result.GroupMeans)
	}

	out := &models.CategoryConcordance{
		IncludedGroups:  orEmpty(result.IncludedGroups),
		IgnoredGroups:   orEmpty(result.IgnoredGroups),
		GroupCounts:     counts,
		GroupMeans:      orEmptyMeans(result.GroupMeans),
		Labels:          result.Labels,
		TopPositive:     topPositive,
		TopNegative:     topNegative,
		GroupLastIDs:    lastIDs,
		AvailableGroups: sortedKeys(lastIDs),
		GroupLogCounts:  logCounts,
	}
	if result.Overall != nil {
		out.Overall = &models.ConcordanceOverall{CCC: result.Overall.CCC}
	}
	return out
}

// savedDay serves the cached snapshot (if any), refreshing the routing
// maps from today's raw logs so older documents still navigate.
func (s *concordanceService) savedDay(ctx context.Context, userID string, start, next time.Time, day *dayContext, thresholds models.ConcordanceThresholds) (*models.DayConcordanceResponse, error) {
	saved, err := s.snapRepo.GetByUserAndDay(ctx, userID, start, next)
	if err != nil {
		return nil, fmt.Errorf("failed to load concordance snapshot: %w", err)
	}

	savedResults := map[string]*models.CategoryConcordance{}
	if saved != nil {
		savedResults = saved.Results
		thresholds = saved.Thresholds
	}

	results := make(map[string]*models.CategoryConcordance, len(models.NonSleepCategories))
	anyLogs := false
	for _, category := range models.NonSleepCategories {
		lastIDs := day.lastIDs[category]
		if len(lastIDs) > 0 {
			anyLogs = true
		}
		if fromSaved, ok := savedResults[category]; ok && fromSaved != nil {
			merged := *fromSaved
			if len(merged.GroupLastIDs) == 0 {
				merged.GroupLastIDs = lastIDs
			}
			if len(merged.AvailableGroups) == 0 {
				merged.AvailableGroups = sortedKeys(lastIDs)
			}
			if len(merged.GroupLogCounts) == 0 {
				merged.GroupLogCounts = day.logCounts[category]
			}
			results[category] = &merged
			continue
		}
		results[category] = &models.CategoryConcordance{
			Insufficient:    true,
			Message:         insufficientPairsMessage,
			IncludedGroups:  []string{},
			IgnoredGroups:   sortedKeys(lastIDs),
			GroupCounts:     map[string]int{},
			GroupMeans:      map[string]float64{},
			TopPositive:     []models.ActivityScore{},
			TopNegative:     []models.ActivityScore{},
			GroupLastIDs:    lastIDs,
			AvailableGroups: sortedKeys(lastIDs),
			GroupLogCounts:  day.logCounts[category],
		}
	}

	resp := &models.DayConcordanceResponse{
		Success:    anyLogs || day.sleep != nil || len(savedResults) > 0,
		Results:    results,
		Thresholds: thresholds,
		Sleep:      day.sleep,
	}
	if !resp.Success {
		resp.Message = "No logs or saved results for this day."
	}
	return resp, nil
}

// History returns concordance snapshots grouped by local day key.
func (s *concordanceService) History(ctx context.Context, userID, startDate, endDate string) (*models.ConcordanceHistoryResponse, error) {
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
		return nil, fmt.Errorf("failed to load concordance snapshots: %w", err)
	}

	byDate := make(map[string]map[string]*models.CategoryConcordance, len(snapshots))
	for i := range snapshots {
		byDate[localday.Key(snapshots[i].Date)] = snapshots[i].Results
	}

	return &models.ConcordanceHistoryResponse{
		Success: true,
		ByDate:  byDate,
	}, nil
}

// signedScore maps valence + intensity to a signed scaled value.
// Unrecorded valences contribute zero sign, which drops the pair.
func signedScore(valence string, intensity, scale float64) float64 {
	switch valence {
	case models.PolarityPositive:
		return intensity * scale
	case models.PolarityNegative:
		return -intensity * scale
	default:
		return 0
	}
}

// buildDayContext derives pairs, routing maps, and the sleep summary
// from one day's raw logs.
func buildDayContext(logs []models.MoodLog, scale float64) *dayContext {
	day := &dayContext{
		pairs:      make(map[string]statsengine.PairGroups),
		lastIDs:    make(map[string]map[string]string),
		logCounts:  make(map[string]map[string]int),
		pairCounts: make(map[string]map[string]int),
	}
	for _, category := range models.NonSleepCategories {
		day.pairs[category] = make(statsengine.PairGroups)
		day.lastIDs[category] = make(map[string]string)
		day.logCounts[category] = make(map[string]int)
		day.pairCounts[category] = make(map[string]int)
	}

	lastSeen := make(map[string]map[string]time.Time)
	var lastSleep *models.MoodLog

	for i := range logs {
		moodLog := &logs[i]
		if moodLog.Category == models.CategorySleep {
			if moodLog.SleepHours != nil {
				lastSleep = moodLog
			}
			continue
		}

		category := moodLog.Category
		if _, known := day.pairs[category]; !known {
			category = models.CategoryActivity
		}
		activity := moodLog.ActivityLabel()
		if activity == "" {
			activity = "unknown"
		}

		day.logCounts[category][activity]++
		if lastSeen[category] == nil {
			lastSeen[category] = make(map[string]time.Time)
		}
		if prev, ok := lastSeen[category][activity]; !ok || !moodLog.Date.Before(prev) {
			lastSeen[category][activity] = moodLog.Date
			day.lastIDs[category][activity] = moodLog.ID
		}

		// A pair needs both a recorded before and after valence.
		if moodLog.BeforeValence != models.PolarityPositive && moodLog.BeforeValence != models.PolarityNegative {
			continue
		}
		if moodLog.BeforeIntensity == nil {
			continue
		}
		before := signedScore(moodLog.BeforeValence, *moodLog.BeforeIntensity, scale)
		after := signedScore(moodLog.AfterValence, moodLog.AfterIntensity, scale)
		day.pairs[category][activity] = append(day.pairs[category][activity], statsengine.Pair{before, after})
		day.pairCounts[category][activity]++
	}

	if lastSleep != nil {
		hours := *lastSleep.SleepHours
		score := scoring.SleepScore(hours)
		var quality *string
		if q := scoring.SleepQuality(hours); q != "" {
			quality = &q
		}
		day.sleep = &models.SleepSummary{
			Quality:     quality,
			Hours:       hours,
			Score:       score,
			MoodScoreID: lastSleep.ID,
		}
	}

	return day
}

func toActivityScores(rows []statsengine.ActivityScore) []models.ActivityScore {
	out := make([]models.ActivityScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.ActivityScore{Activity: row.Activity, Score: row.Score})
	}
	return out
}

// topListsFromMeans derives top lists directly from mean deltas when
// the engine omits them.
func topListsFromMeans(means map[string]float64) (positive, negative []models.ActivityScore) {
	positive = []models.ActivityScore{}
	negative = []models.ActivityScore{}
	var rows []models.ActivityScore
	for activity, mean := range means {
		rows = append(rows, models.ActivityScore{Activity: activity, Score: math.Round(mean*100) / 100})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Activity < rows[j].Activity
	})
	for _, row := range rows {
		if row.Score > 0 {
			positive = append(positive, row)
		}
	}
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Score < 0 {
			negative = append(negative, rows[i])
		}
	}
	return positive, negative
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
