// Package api is the HTTP client for the schedule/news backend. Every
// operation is a single POST round trip returning the backend's
// {code, data, msg} envelope; code 200 is success, anything else carries a
// human-readable message and no usable data.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	appLog "planboard/internal/log"
	"planboard/internal/model"
)

// Envelope is the response wrapper returned by every backend endpoint.
type Envelope struct {
	Code int             `json:"code"`
	Data json.RawMessage `json:"data,omitempty"`
	Msg  string          `json:"msg,omitempty"`
}

// OK reports whether the envelope denotes application-level success.
func (e Envelope) OK() bool {
	return e.Code == http.StatusOK
}

// Decode unmarshals the envelope payload into v. A missing or null payload
// leaves v untouched; the backend omits data on failure and sometimes on
// empty results.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// ScheduleQuery selects one day's or one month's schedules. Day is a
// pointer so that a month-wide query omits the field entirely; the backend
// distinguishes "day not specified" from "day = 0".
type ScheduleQuery struct {
	UserID int64 `json:"user_id"`
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	Day    *int  `json:"day,omitempty"`
}

// ScheduleStoreReq creates one schedule record.
type ScheduleStoreReq struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	UserID   int64  `json:"user_id"`
	Content  string `json:"content"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Priority int    `json:"priority"`
	Status   int    `json:"status"`
}

// ScheduleUpdateReq fully replaces the record addressed by ID.
type ScheduleUpdateReq struct {
	ID       int64  `json:"id"`
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Day      int    `json:"day"`
	Start    string `json:"start"`
	End      string `json:"end"`
	Content  string `json:"content"`
	Status   int    `json:"status"`
	UserID   int64  `json:"user_id"`
	Priority int    `json:"priority"`
}

type newsQuery struct {
	Date string `json:"date"`
}

// Client issues requests against a fixed backend base URL with a fixed
// timeout. It holds no state beyond the underlying http.Client; all
// caching lives in the stores.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a backend client. A zero timeout falls back to 10s,
// the backend's documented request budget.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// QuerySchedules fetches one day's schedules, or the whole month when
// q.Day is nil.
func (c *Client) QuerySchedules(ctx context.Context, q ScheduleQuery) (Envelope, error) {
	return c.post(ctx, "/schedule/query", q)
}

// StoreSchedule creates one schedule record.
func (c *Client) StoreSchedule(ctx context.Context, req ScheduleStoreReq) (Envelope, error) {
	return c.post(ctx, "/schedule/store", req)
}

// UpdateSchedule replaces one existing record.
func (c *Client) UpdateSchedule(ctx context.Context, req ScheduleUpdateReq) (Envelope, error) {
	return c.post(ctx, "/schedule/update", req)
}

// QueryNews fetches the news digest for one day. date is the canonical
// midnight form "YYYY-MM-DD 00:00:00".
func (c *Client) QueryNews(ctx context.Context, date string) (Envelope, error) {
	return c.post(ctx, "/news/query", newsQuery{Date: date})
}

// post performs one request/response round trip. Transport and decode
// failures come back as errors; application-level failures come back as a
// non-200 envelope. No retries.
func (c *Client) post(ctx context.Context, path string, body any) (Envelope, error) {
	reqID := shortID()

	payload, err := json.Marshal(body)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Envelope{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	appLog.Debug("backend request", "req_id", reqID, "path", path)

	resp, err := c.client.Do(req)
	if err != nil {
		appLog.Error("backend request failed", err, "req_id", reqID, "path", path)
		return Envelope{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := errors.New(resp.Status)
		appLog.Error("backend returned non-OK status", err, "req_id", reqID, "path", path, "status", resp.StatusCode)
		return Envelope{}, err
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		appLog.Error("backend response decode failed", err, "req_id", reqID, "path", path)
		return Envelope{}, fmt.Errorf("decode response: %w", err)
	}

	appLog.Debug("backend response", "req_id", reqID, "path", path, "code", env.Code)
	return env, nil
}

// shortID returns a compact request id for log correlation.
func shortID() string {
	id := uuid.NewString()
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// DecodeSchedules is a convenience wrapper for the common case of a
// schedule-list payload.
func (e Envelope) DecodeSchedules() ([]model.Schedule, error) {
	var list []model.Schedule
	if err := e.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}

// DecodeNews decodes a news-list payload.
func (e Envelope) DecodeNews() ([]model.NewsItem, error) {
	var list []model.NewsItem
	if err := e.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}
