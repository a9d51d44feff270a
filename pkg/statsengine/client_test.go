package statsengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSentiment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sentiment" {
			t.Errorf("path = %q, want /api/sentiment", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["comment"] == "" {
			t.Error("comment missing from request body")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"sentimentScore": 0.42,
			"sentimentUsed":  true,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	score, used, err := c.Sentiment(context.Background(), "this really helped me relax")
	if err != nil {
		t.Fatalf("Sentiment returned error: %v", err)
	}
	if !used {
		t.Error("used = false, want true")
	}
	if score != 0.42 {
		t.Errorf("score = %v, want 0.42", score)
	}
}

func TestSentimentSkippedShortComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":        true,
			"sentimentScore": 0.0,
			"sentimentUsed":  false,
			"error":          "comment_too_short",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	score, used, err := c.Sentiment(context.Background(), "short")
	if err != nil {
		t.Fatalf("Sentiment returned error: %v", err)
	}
	if used {
		t.Error("used = true, want false")
	}
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestPostServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false,"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.RunAnova(context.Background(), map[string]Groups{"activity": {"gym": {60, 40}}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apiErr.StatusCode)
	}
}
