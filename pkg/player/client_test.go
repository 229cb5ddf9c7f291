package player

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"learnpath-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/v1/", "tok", WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_LessonProgress(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/lesson-progress", r.URL.Path)
		assert.Equal(t, "7", r.URL.Query().Get("studentId"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, []domain.LessonProgress{{LessonID: "l1", Percentage: 40}})
	})

	got, err := c.LessonProgress(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 40, got[0].Percentage)
}

func TestClient_MalformedListIsEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"unexpected": "shape"})
	})

	got, err := c.Enrollments(context.Background(), 7)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "lesson is locked"})
	})

	_, err := c.SubmitProgress(context.Background(), domain.ProgressUpdate{StudentID: 7, LessonID: "l2"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "lesson is locked", apiErr.Message)
}

func TestClient_APIErrorWithoutBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.CoursePlayer(context.Background(), 1)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestClient_MalformedAckIsAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>"))
	})

	_, err := c.MarkComplete(context.Background(), "l1")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_SubmitLevelRequest(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]uint
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, uint(3), body["track_id"])

		calls++
		status := http.StatusCreated
		if calls > 1 {
			status = http.StatusOK
		}
		writeJSON(w, status, domain.LevelAdvancementRequest{ID: 5, Status: domain.RequestPending})
	})

	req, created, err := c.SubmitLevelRequest(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint(5), req.ID)

	again, created, err := c.SubmitLevelRequest(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, req.ID, again.ID)
}

func TestClient_LevelRequestsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "7", r.URL.Query().Get("studentId"))
		writeJSON(w, http.StatusOK, []domain.LevelAdvancementRequest{})
	})

	got, err := c.LevelRequests(context.Background(), 7, domain.RequestPending)
	require.NoError(t, err)
	assert.Empty(t, got)
}
