package status

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuroteach/tutorbot/internal/progress"
	"github.com/neuroteach/tutorbot/internal/session"
)

func TestHealthEndpoint(t *testing.T) {
	s := New(progress.NewTracker(), session.NewManager(), "gemini-2.0-flash")

	resp, err := s.app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "gemini-2.0-flash", body["ai"])
}

func TestStatsEndpointCountsStores(t *testing.T) {
	tracker := progress.NewTracker()
	sessions := session.NewManager()

	tracker.RecordCompletion(1, "lesson-a")
	sessions.Start(1, "lesson-a")
	sessions.Start(2, "lesson-b")
	sessions.Suspend(2)

	s := New(tracker, sessions, "mock")

	resp, err := s.app.Test(httptest.NewRequest("GET", "/stats", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(1), body["users"])
	assert.Equal(t, float64(1), body["sessions_live"])
	assert.Equal(t, float64(1), body["sessions_suspended"])
}

func TestInfoEndpoint(t *testing.T) {
	s := New(progress.NewTracker(), session.NewManager(), "mock")

	resp, err := s.app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "NeuroTeacher")
}
