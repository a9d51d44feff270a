package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/moodhabit/backend/pkg/supabase"
)

// Generation keys carry the score's capture timestamp, which often has
// sub-second precision. The equality filter must keep that precision or
// the idempotency check never matches the stored rows.
func TestGetByKeyKeepsSubSecondPrecision(t *testing.T) {
	date := time.Date(2026, 3, 5, 9, 0, 0, 123000000, time.FixedZone("SGT", 8*3600))

	var gotFilter string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/recommendations" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotFilter = r.URL.Query().Get("date")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"rec-1","user_id":"user-1","date":"2026-03-05T09:00:00.123+08:00","category":"activity","activity":"gym","text":"stretch before bed","polarity":"positive"}]`))
	}))
	defer server.Close()

	repo := NewRecommendationRepository(supabase.NewClient(server.URL, "service-key"))
	recs, err := repo.GetByKey(context.Background(), "user-1", date, "activity", "gym")
	if err != nil {
		t.Fatalf("GetByKey returned error: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != "rec-1" {
		t.Fatalf("unexpected rows: %+v", recs)
	}

	value := strings.TrimPrefix(gotFilter, "eq.")
	if value == gotFilter {
		t.Fatalf("expected an eq filter, got %q", gotFilter)
	}
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		t.Fatalf("date filter %q is not a timestamp: %v", value, err)
	}
	if !parsed.Equal(date) {
		t.Errorf("date filter %q drops precision, want %s", value, date.Format(time.RFC3339Nano))
	}
}
