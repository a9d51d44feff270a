// Package supabase is a thin PostgREST client used as the document store for
// the moodhabit backend. It supports indexed range queries, atomic
// upsert-by-unique-key, filtered deletes/updates and recognizes duplicate-key
// violations as a recoverable condition.
package supabase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client represents a Supabase client
type Client struct {
	URL        string
	ServiceKey string
	HTTPClient *http.Client
}

// NewClient creates a new Supabase client
func NewClient(url, serviceKey string) *Client {
	return &Client{
		URL:        url,
		ServiceKey: serviceKey,
		HTTPClient: &http.Client{},
	}
}

// APIError is a PostgREST error response. Code carries the Postgres error
// code (e.g. 23505 for unique_violation) when the store provides one.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase error (status %d, code %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase error (status %d): %s", e.StatusCode, e.Message)
}

// uniqueViolation is the Postgres error code for duplicate-key violations.
const uniqueViolation = "23505"

// IsDuplicateKey reports whether err is a duplicate-key violation.
// Idempotent bulk writes treat this as a no-op rather than a failure.
func IsDuplicateKey(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code == uniqueViolation {
		return true
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "duplicate key")
}

// newAPIError parses a PostgREST error body into an APIError.
func newAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	return apiErr
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.ServiceKey))
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	return body, nil
}

// Query executes a query on a Supabase table.
// Filter values use PostgREST operators, e.g. "eq.<id>", "gte.<ts>", "lt.<ts>".
func (c *Client) Query(table string, query map[string]interface{}) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range query {
		q.Add(key, fmt.Sprintf("%v", value))
	}
	req.URL.RawQuery = q.Encode()

	c.setHeaders(req)

	return c.do(req)
}

// Insert inserts one record or a slice of records into a Supabase table.
func (c *Client) Insert(table string, data interface{}) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	return c.do(req)
}

// Upsert inserts or updates a record in a Supabase table.
// onConflict specifies the unique-key columns used for conflict detection
// (e.g., "user_id,category,date"). The write is atomic on the store side:
// two concurrent upserts for the same key resolve to last-write-wins on a
// single row, never duplicate rows.
func (c *Client) Upsert(table string, data interface{}, onConflict string) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	// resolution=merge-duplicates updates existing rows on key conflict
	req.Header.Set("Prefer", "return=representation,resolution=merge-duplicates")

	q := req.URL.Query()
	q.Add("on_conflict", onConflict)
	req.URL.RawQuery = q.Encode()

	return c.do(req)
}

// UpdateWhere updates records matching a query
func (c *Client) UpdateWhere(table string, query map[string]interface{}, data interface{}) ([]byte, error) {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("PATCH", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	q := req.URL.Query()
	for key, value := range query {
		q.Add(key, fmt.Sprintf("%v", value))
	}
	req.URL.RawQuery = q.Encode()

	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	return c.do(req)
}

// DeleteWhere deletes records matching a query
func (c *Client) DeleteWhere(table string, query map[string]interface{}) error {
	url := fmt.Sprintf("%s/rest/v1/%s", c.URL, table)

	req, err := http.NewRequest("DELETE", url, nil)
	if err != nil {
		return err
	}

	q := req.URL.Query()
	for key, value := range query {
		q.Add(key, fmt.Sprintf("%v", value))
	}
	req.URL.RawQuery = q.Encode()

	c.setHeaders(req)

	_, err = c.do(req)
	return err
}

// User represents a Supabase user
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// VerifyToken verifies a JWT token with Supabase
func (c *Client) VerifyToken(token string) (*User, error) {
	url := fmt.Sprintf("%s/auth/v1/user", c.URL)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("apikey", c.ServiceKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("token verification failed (status %d): %s", resp.StatusCode, string(body))
	}

	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}

	return &user, nil
}
