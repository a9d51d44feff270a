package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/moodhabit/backend/internal/models"
	"github.com/moodhabit/backend/pkg/statsengine"
)

var mockIDCounter int

func generateMockID() string {
	mockIDCounter++
	return fmt.Sprintf("mock-id-%d", mockIDCounter)
}

func inRange(t, start, next time.Time) bool {
	return !t.Before(start) && t.Before(next)
}

// mockMoodLogRepository is a mock implementation of MoodLogRepository for testing
type mockMoodLogRepository struct {
	logs []models.MoodLog
	err  error
}

func (m *mockMoodLogRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.MoodLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []models.MoodLog
	for i := range m.logs {
		if m.logs[i].UserID == userID && inRange(m.logs[i].Date, start, next) {
			result = append(result, m.logs[i])
		}
	}
	return result, nil
}

// mockMoodScoreRepository is a mock implementation of MoodScoreRepository for testing
type mockMoodScoreRepository struct {
	scores           map[string]*models.MoodScore // id -> score
	deleteCalls      int
	batchCreateCalls int
	upsertSleepCalls int
}

func newMockMoodScoreRepository() *mockMoodScoreRepository {
	return &mockMoodScoreRepository{scores: make(map[string]*models.MoodScore)}
}

func (m *mockMoodScoreRepository) add(score models.MoodScore) *models.MoodScore {
	if score.ID == "" {
		score.ID = generateMockID()
	}
	m.scores[score.ID] = &score
	return &score
}

func (m *mockMoodScoreRepository) GetByID(ctx context.Context, id string) (*models.MoodScore, error) {
	if score, ok := m.scores[id]; ok {
		return score, nil
	}
	return nil, fmt.Errorf("mood score %s not found", id)
}

func (m *mockMoodScoreRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.MoodScore, error) {
	var result []models.MoodScore
	for _, score := range m.scores {
		if score.UserID == userID && inRange(score.Date, start, next) {
			result = append(result, *score)
		}
	}
	sortScoresNewestFirst(result)
	return result, nil
}

func (m *mockMoodScoreRepository) GetByUserCategoryAndDateRange(ctx context.Context, userID, category string, start, next time.Time) ([]models.MoodScore, error) {
	var result []models.MoodScore
	for _, score := range m.scores {
		if score.UserID == userID && score.Category == category && inRange(score.Date, start, next) {
			result = append(result, *score)
		}
	}
	sortScoresNewestFirst(result)
	return result, nil
}

func (m *mockMoodScoreRepository) DeleteNonSleepInRange(ctx context.Context, userID string, start, next time.Time) error {
	m.deleteCalls++
	for id, score := range m.scores {
		if score.UserID == userID && score.Category != models.CategorySleep && inRange(score.Date, start, next) {
			delete(m.scores, id)
		}
	}
	return nil
}

func (m *mockMoodScoreRepository) CreateBatch(ctx context.Context, scores []models.MoodScore) ([]models.MoodScore, error) {
	m.batchCreateCalls++
	result := make([]models.MoodScore, 0, len(scores))
	for i := range scores {
		result = append(result, *m.add(scores[i]))
	}
	return result, nil
}

func (m *mockMoodScoreRepository) UpsertSleep(ctx context.Context, score *models.MoodScore) (*models.MoodScore, error) {
	m.upsertSleepCalls++
	for id, existing := range m.scores {
		if existing.UserID == score.UserID && existing.Category == models.CategorySleep && existing.Date.Equal(score.Date) {
			updated := *score
			updated.ID = id
			m.scores[id] = &updated
			return &updated, nil
		}
	}
	return m.add(*score), nil
}

func sortScoresNewestFirst(scores []models.MoodScore) {
	sort.Slice(scores, func(i, j int) bool {
		if !scores[i].Date.Equal(scores[j].Date) {
			return scores[i].Date.After(scores[j].Date)
		}
		return scores[i].ID < scores[j].ID
	})
}

// mockAnovaSnapshotRepository is a mock implementation of AnovaSnapshotRepository for testing
type mockAnovaSnapshotRepository struct {
	snapshots   map[string]*models.AnovaSnapshot // userID|category -> snapshot (one day per test)
	upsertCalls int
}

func newMockAnovaSnapshotRepository() *mockAnovaSnapshotRepository {
	return &mockAnovaSnapshotRepository{snapshots: make(map[string]*models.AnovaSnapshot)}
}

func snapKey(userID, category string) string {
	return userID + "|" + category
}

func (m *mockAnovaSnapshotRepository) GetByUserCategoryAndDay(ctx context.Context, userID, category string, start, next time.Time) (*models.AnovaSnapshot, error) {
	snap, ok := m.snapshots[snapKey(userID, category)]
	if !ok || !inRange(snap.Date, start, next) {
		return nil, nil
	}
	copied := *snap
	return &copied, nil
}

func (m *mockAnovaSnapshotRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.AnovaSnapshot, error) {
	var result []models.AnovaSnapshot
	for _, snap := range m.snapshots {
		if snap.UserID == userID && inRange(snap.Date, start, next) {
			result = append(result, *snap)
		}
	}
	return result, nil
}

func (m *mockAnovaSnapshotRepository) Upsert(ctx context.Context, snapshot *models.AnovaSnapshot) (*models.AnovaSnapshot, error) {
	m.upsertCalls++
	if snapshot.ID == "" {
		snapshot.ID = generateMockID()
	}
	copied := *snapshot
	m.snapshots[snapKey(snapshot.UserID, snapshot.Category)] = &copied
	return snapshot, nil
}

// mockConcordanceSnapshotRepository is a mock implementation of ConcordanceSnapshotRepository for testing
type mockConcordanceSnapshotRepository struct {
	snapshots   map[string]*models.ConcordanceSnapshot // userID -> snapshot (one day per test)
	upsertCalls int
}

func newMockConcordanceSnapshotRepository() *mockConcordanceSnapshotRepository {
	return &mockConcordanceSnapshotRepository{snapshots: make(map[string]*models.ConcordanceSnapshot)}
}

func (m *mockConcordanceSnapshotRepository) GetByUserAndDay(ctx context.Context, userID string, start, next time.Time) (*models.ConcordanceSnapshot, error) {
	snap, ok := m.snapshots[userID]
	if !ok || !inRange(snap.Date, start, next) {
		return nil, nil
	}
	copied := *snap
	return &copied, nil
}

func (m *mockConcordanceSnapshotRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.ConcordanceSnapshot, error) {
	var result []models.ConcordanceSnapshot
	for _, snap := range m.snapshots {
		if snap.UserID == userID && inRange(snap.Date, start, next) {
			result = append(result, *snap)
		}
	}
	return result, nil
}

func (m *mockConcordanceSnapshotRepository) Upsert(ctx context.Context, snapshot *models.ConcordanceSnapshot) (*models.ConcordanceSnapshot, error) {
	m.upsertCalls++
	if snapshot.ID == "" {
		snapshot.ID = generateMockID()
	}
	copied := *snapshot
	m.snapshots[snapshot.UserID] = &copied
	return snapshot, nil
}

// mockRecommendationRepository is a mock implementation of RecommendationRepository for testing
type mockRecommendationRepository struct {
	recs        []models.Recommendation
	insertCalls int
}

func recDupKey(r *models.Recommendation) string {
	return strings.Join([]string{r.UserID, r.Date.Format(time.RFC3339), r.Category, r.Activity, strings.ToLower(r.Text)}, "|")
}

func (m *mockRecommendationRepository) GetByID(ctx context.Context, id string) (*models.Recommendation, error) {
	for i := range m.recs {
		if m.recs[i].ID == id {
			copied := m.recs[i]
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("recommendation %s not found", id)
}

func (m *mockRecommendationRepository) GetByKey(ctx context.Context, userID string, date time.Time, category, activity string) ([]models.Recommendation, error) {
	var result []models.Recommendation
	for i := range m.recs {
		r := &m.recs[i]
		if r.UserID == userID && r.Date.Equal(date) && r.Category == category && r.Activity == activity {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRecommendationRepository) GetByUserAndDateRange(ctx context.Context, userID string, start, next time.Time) ([]models.Recommendation, error) {
	var result []models.Recommendation
	for i := range m.recs {
		if m.recs[i].UserID == userID && inRange(m.recs[i].Date, start, next) {
			result = append(result, m.recs[i])
		}
	}
	return result, nil
}

func (m *mockRecommendationRepository) InsertIgnoreDuplicates(ctx context.Context, recs []models.Recommendation) error {
	m.insertCalls++
	existing := make(map[string]bool, len(m.recs))
	for i := range m.recs {
		existing[recDupKey(&m.recs[i])] = true
	}
	for i := range recs {
		rec := recs[i]
		if existing[recDupKey(&rec)] {
			continue
		}
		if rec.ID == "" {
			rec.ID = generateMockID()
		}
		rec.CreatedAt = time.Now()
		existing[recDupKey(&rec)] = true
		m.recs = append(m.recs, rec)
	}
	return nil
}

func (m *mockRecommendationRepository) UpdateAggregates(ctx context.Context, id string, count int, avgCombined float64, anyEffective bool) error {
	for i := range m.recs {
		if m.recs[i].ID == id {
			m.recs[i].FeedbackCount = count
			avg := avgCombined
			m.recs[i].AvgCombined = &avg
			m.recs[i].AnyEffective = anyEffective
			return nil
		}
	}
	return fmt.Errorf("recommendation %s not found", id)
}

// mockFeedbackRepository is a mock implementation of FeedbackRepository for testing
type mockFeedbackRepository struct {
	rows               map[string]*models.RecommendationFeedback // recommendationID|userID -> row
	notEffectiveCounts map[string]int                            // lowercased text -> count
	upsertCalls        int
}

func newMockFeedbackRepository() *mockFeedbackRepository {
	return &mockFeedbackRepository{rows: make(map[string]*models.RecommendationFeedback)}
}

func (m *mockFeedbackRepository) Upsert(ctx context.Context, feedback *models.RecommendationFeedback) (*models.RecommendationFeedback, error) {
	m.upsertCalls++
	key := feedback.RecommendationID + "|" + feedback.UserID
	copied := *feedback
	if existing, ok := m.rows[key]; ok {
		copied.ID = existing.ID
		copied.CreatedAt = existing.CreatedAt
	} else {
		copied.ID = generateMockID()
		copied.CreatedAt = time.Now()
	}
	m.rows[key] = &copied
	result := copied
	return &result, nil
}

func (m *mockFeedbackRepository) GetByRecommendation(ctx context.Context, recommendationID string) ([]models.RecommendationFeedback, error) {
	var result []models.RecommendationFeedback
	for _, row := range m.rows {
		if row.RecommendationID == recommendationID {
			result = append(result, *row)
		}
	}
	return result, nil
}

func (m *mockFeedbackRepository) NotEffectiveCounts(ctx context.Context, userID, category, activity string) (map[string]int, error) {
	if m.notEffectiveCounts == nil {
		return map[string]int{}, nil
	}
	return m.notEffectiveCounts, nil
}

// mockStatsEngine is a mock implementation of StatsEngine for testing
type mockStatsEngine struct {
	anovaResp *statsengine.AnovaResponse
	anovaErr  error
	anovaData []map[string]statsengine.Groups

	concordanceResp *statsengine.ConcordanceResponse
	concordanceErr  error
	concordanceData []map[string]statsengine.PairGroups
	thresholds      []statsengine.Thresholds

	sentimentScore float64
	sentimentUsed  bool
	sentimentErr   error
	sentimentCalls int
}

func (m *mockStatsEngine) RunAnova(ctx context.Context, data map[string]statsengine.Groups) (*statsengine.AnovaResponse, error) {
	m.anovaData = append(m.anovaData, data)
	if m.anovaErr != nil {
		return nil, m.anovaErr
	}
	return m.anovaResp, nil
}

func (m *mockStatsEngine) RunConcordance(ctx context.Context, data map[string]statsengine.PairGroups, th statsengine.Thresholds) (*statsengine.ConcordanceResponse, error) {
	m.concordanceData = append(m.concordanceData, data)
	m.thresholds = append(m.thresholds, th)
	if m.concordanceErr != nil {
		return nil, m.concordanceErr
	}
	return m.concordanceResp, nil
}

func (m *mockStatsEngine) Sentiment(ctx context.Context, comment string) (float64, bool, error) {
	m.sentimentCalls++
	if m.sentimentErr != nil {
		return 0, false, m.sentimentErr
	}
	return m.sentimentScore, m.sentimentUsed, nil
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }
