// Package statsengine is an HTTP client for the external statistics and
// sentiment engines. Calls are synchronous and single-shot with a
// bounded timeout; callers degrade to cached or neutral fallbacks on
// failure instead of retrying.
package statsengine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the statistics/sentiment service.
type Client struct {
	URL        string
	HTTPClient *http.Client
}

// NewClient creates a client with the given request timeout.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// APIError is a non-2xx response from the engine.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stats engine error (status %d): %s", e.StatusCode, e.Body)
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.URL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return json.Unmarshal(body, out)
}

// Groups maps activity label to its numeric observations for one
// category.
type Groups map[string][]float64

// RunAnova submits per-category grouped scores and returns group
// means/counts, the omnibus test and pairwise rows per category.
func (c *Client) RunAnova(ctx context.Context, data map[string]Groups) (*AnovaResponse, error) {
	var out AnovaResponse
	if err := c.post(ctx, "/api/run-anova", map[string]interface{}{"data": data}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pair is one (before, after) observation.
type Pair [2]float64

// PairGroups maps activity label to its paired observations.
type PairGroups map[string][]Pair

// Thresholds parameterize a concordance run.
type Thresholds struct {
	MinPairs int     `json:"minPairs"`
	Pos      float64 `json:"pos"`
	Neg      float64 `json:"neg"`
	MinCCC   float64 `json:"minCcc"`
	Scale    float64 `json:"scale"`
}

// RunConcordance submits per-category paired observations and returns
// per-activity concordance labels and mean deltas.
func (c *Client) RunConcordance(ctx context.Context, data map[string]PairGroups, th Thresholds) (*ConcordanceResponse, error) {
	var out ConcordanceResponse
	payload := map[string]interface{}{"data": data, "thresholds": th}
	if err := c.post(ctx, "/api/ccc/run", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sentiment scores free text in [-1, 1]. Used is false when the engine
// skipped analysis (for example, a too-short comment).
func (c *Client) Sentiment(ctx context.Context, comment string) (score float64, used bool, err error) {
	var out sentimentResponse
	if err := c.post(ctx, "/api/sentiment", map[string]interface{}{"comment": comment}, &out); err != nil {
		return 0, false, err
	}
	if !out.Success {
		return 0, false, fmt.Errorf("sentiment analysis failed: %s", out.Error)
	}
	return out.SentimentScore, out.SentimentUsed, nil
}

type sentimentResponse struct {
	Success        bool    `json:"success"`
	SentimentScore float64 `json:"sentimentScore"`
	SentimentUsed  bool    `json:"sentimentUsed"`
	Error          string  `json:"error"`
}
