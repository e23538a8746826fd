package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistcal/internal/assistant"
	"assistcal/internal/config"
	"assistcal/internal/model"
	"assistcal/internal/notify"
	"assistcal/internal/schedule"
	"assistcal/internal/store"
)

func newTestServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	feed := notify.NewFeed(10)
	svc := assistant.New(st, assistant.Options{
		Notifier: feed,
		Mode:     schedule.NearestFree,
		Now:      func() time.Time { return time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC) },
	})
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return NewServer(cfg, svc, feed).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMeetingLifecycle(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/meetings", `{"time":"2024-01-01 10:00:00","description":"standup"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created meetingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotNil(t, created.Meeting)
	assert.Equal(t, "free", created.Status)

	rec = do(t, h, http.MethodPost, "/api/meetings?mode=enumerate", `{"time":"2024-01-01 10:00:00"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict meetingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, "conflict", conflict.Status)
	assert.Equal(t, []string{
		"2024-01-01 10:30:00", "2024-01-01 11:00:00", "2024-01-01 11:30:00", "2024-01-01 12:00:00", "2024-01-01 12:30:00",
	}, conflict.Alternatives)

	rec = do(t, h, http.MethodPost, "/api/meetings/"+created.Meeting.ID+"/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var m model.Meeting
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	assert.True(t, m.Completed)

	rec = do(t, h, http.MethodDelete, "/api/meetings/"+created.Meeting.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/meetings/"+created.Meeting.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskValidationAndUpdate(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/tasks", `{"name":"report","deadline":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/tasks", `{"name":"report","deadline":"2024-01-01 09:30:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var task model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = do(t, h, http.MethodPatch, "/api/tasks/"+task.ID, `{"name":"final report"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
	assert.Equal(t, "final report", task.Name)

	rec = do(t, h, http.MethodGet, "/api/reminders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rep struct {
		Messages []string `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, []string{"Reminder: 'final report' deadline is approaching at 2024-01-01 09:30:00"}, rep.Messages)
	assert.Contains(t, rec.Body.String(), `"now":"2024-01-01 09:00:00"`)
	assert.Contains(t, rec.Body.String(), `"when":"2024-01-01 09:30:00"`)

	rec = do(t, h, http.MethodPatch, "/api/tasks/missing", `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTaskUpdateRejectsMixedBody(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/tasks", `{"name":"draft","deadline":"2024-01-01 12:00:00"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var task model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = do(t, h, http.MethodPatch, "/api/tasks/"+task.ID, `{"name":"renamed","deadline":"garbage"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/tasks/"+task.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"deadline":"2024-01-01 12:00:00"`)
	var got model.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "draft", got.Name)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), got.Deadline)
}

func TestCommandAndFreeTime(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/command", `{"text":"schedule meeting at 2024-01-01 10:00:00"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Meeting scheduled at 2024-01-01 10:00:00")

	rec = do(t, h, http.MethodGet, "/api/free?time=2024-01-01+10:00:00", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ft assistant.FreeTime
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ft))
	assert.True(t, ft.Busy)

	rec = do(t, h, http.MethodGet, "/calendar.ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")
}

func TestBasicAuth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BasicAuth = &config.BasicAuthConfig{Username: "me", Password: "secret"}
	h := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/tasks", "").Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.SetBasicAuth("me", "secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}
