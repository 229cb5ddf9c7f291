// Package player is the learner-side counterpart of the API: a REST client,
// an optimistic progress store and a cancellable poller.
package player

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"learnpath-backend/internal/domain"
)

// ErrMalformedResponse is returned when a 2xx body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response body")

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient talks to baseURL (for example http://localhost:8080/api/v1)
// authenticating with the bearer token.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return resp.StatusCode, nil
}

// list fetches a collection. A body that is not a list is treated as empty.
func list[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var out []T
	if _, err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		if !errors.Is(err, ErrMalformedResponse) {
			return nil, err
		}
		slog.Warn("discarding malformed list response", "path", path, "error", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func studentQuery(studentID uint) url.Values {
	q := url.Values{}
	if studentID != 0 {
		q.Set("studentId", strconv.FormatUint(uint64(studentID), 10))
	}
	return q
}

func (c *Client) Course(ctx context.Context, courseID uint) (*domain.CourseDetail, error) {
	var out domain.CourseDetail
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d", courseID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CoursePlayer(ctx context.Context, courseID uint) (*domain.CourseTree, error) {
	var out domain.CourseTree
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/courses/%d/player", courseID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) TrackPlayer(ctx context.Context, trackID uint) (*domain.TrackTree, error) {
	var out domain.TrackTree
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tracks/%d/player", trackID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LessonProgress(ctx context.Context, studentID uint) ([]domain.LessonProgress, error) {
	return list[domain.LessonProgress](ctx, c, "/lesson-progress", studentQuery(studentID))
}

func (c *Client) Enrollments(ctx context.Context, studentID uint) ([]domain.Enrollment, error) {
	return list[domain.Enrollment](ctx, c, "/enrollments", studentQuery(studentID))
}

// SubmitProgress sends one update and returns the stored record.
func (c *Client) SubmitProgress(ctx context.Context, update domain.ProgressUpdate) (*domain.LessonProgress, error) {
	var out domain.LessonProgress
	if _, err := c.do(ctx, http.MethodPost, "/lesson-progress", nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MarkComplete(ctx context.Context, lessonID string) (*domain.LessonProgress, error) {
	var out domain.LessonProgress
	path := "/lesson-progress/" + url.PathEscape(lessonID) + "/complete"
	if _, err := c.do(ctx, http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LevelRequests(ctx context.Context, studentID uint, status domain.RequestStatus) ([]domain.LevelAdvancementRequest, error) {
	q := studentQuery(studentID)
	if status != "" {
		q.Set("status", string(status))
	}
	return list[domain.LevelAdvancementRequest](ctx, c, "/level-requests", q)
}

// SubmitLevelRequest asks to advance past the current level of trackID. The
// bool is false when the server handed back an already pending request.
func (c *Client) SubmitLevelRequest(ctx context.Context, trackID uint) (*domain.LevelAdvancementRequest, bool, error) {
	var out domain.LevelAdvancementRequest
	status, err := c.do(ctx, http.MethodPost, "/level-requests", nil, map[string]uint{"track_id": trackID}, &out)
	if err != nil {
		return nil, false, err
	}
	return &out, status == http.StatusCreated, nil
}
