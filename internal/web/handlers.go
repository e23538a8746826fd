package web

import (
	"io"
	"net/http"
	"time"

	"assistcal/internal/assistant"
	"assistcal/internal/model"
	"assistcal/internal/notify"
	"assistcal/internal/schedule"
)

type taskRequest struct {
	Name     *string `json:"name"`
	Deadline *string `json:"deadline"`
}

type meetingRequest struct {
	Time        *string `json:"time"`
	Description *string `json:"description"`
}

// meetingResponse is the JSON shape of a MeetingOutcome.
type meetingResponse struct {
	Status       string         `json:"status"`
	Meeting      *model.Meeting `json:"meeting,omitempty"`
	Candidate    string         `json:"candidate"`
	Alternatives []string       `json:"alternatives"`
}

func formatTimes(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, model.FormatTimestamp(t))
	}
	return out
}

func newMeetingResponse(out assistant.MeetingOutcome) meetingResponse {
	return meetingResponse{
		Status:       out.Status.String(),
		Meeting:      out.Meeting,
		Candidate:    model.FormatTimestamp(out.Candidate),
		Alternatives: formatTimes(out.Alternatives),
	}
}

// writeOutcome answers 201 for a stored meeting and 409 for a conflict or an
// exhausted search.
func writeOutcome(w http.ResponseWriter, okStatus int, out assistant.MeetingOutcome) {
	resp := newMeetingResponse(out)
	if out.Status != schedule.Free {
		writeJSON(w, http.StatusConflict, resp)
		return
	}
	writeJSON(w, okStatus, resp)
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.svc.ListTasks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	t, err := s.svc.ScheduleTask(r.Context(), deref(req.Name), deref(req.Deadline))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// handleTaskUpdate renames and/or reschedules a task.
func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req taskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	t, err := s.svc.UpdateTask(r.Context(), id, req.Name, req.Deadline)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskComplete(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.CompleteTask(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleMeetingList(w http.ResponseWriter, r *http.Request) {
	meetings, err := s.svc.ListMeetings(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if meetings == nil {
		meetings = []model.Meeting{}
	}
	writeJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleMeetingGet(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.GetMeeting(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMeetingCreate(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	out, err := s.svc.ScheduleMeeting(r.Context(), deref(req.Time), deref(req.Description), s.modeParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOutcome(w, http.StatusCreated, out)
}

// handleMeetingUpdate moves and/or re-describes a meeting. A move that
// conflicts leaves the meeting untouched and answers 409.
func (s *Server) handleMeetingUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req meetingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	if req.Time != nil {
		out, err := s.svc.RescheduleMeeting(r.Context(), id, *req.Time, s.modeParam(r))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		if out.Status != schedule.Free {
			writeOutcome(w, http.StatusOK, out)
			return
		}
	}

	var (
		m   model.Meeting
		err error
	)
	if req.Description != nil {
		m, err = s.svc.DescribeMeeting(r.Context(), id, *req.Description)
	} else {
		m, err = s.svc.GetMeeting(r.Context(), id)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleMeetingDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteMeeting(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMeetingComplete(w http.ResponseWriter, r *http.Request) {
	m, err := s.svc.CompleteMeeting(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// handleMeetingAlternatives answers GET /api/meetings/alternatives?time=...
// with the enumerate-five options. An empty list means none were found.
func (s *Server) handleMeetingAlternatives(w http.ResponseWriter, r *http.Request) {
	alts, err := s.svc.MeetingAlternatives(r.Context(), r.URL.Query().Get("time"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"alternatives": formatTimes(alts)})
}

func (s *Server) handleFreeTime(w http.ResponseWriter, r *http.Request) {
	ft, err := s.svc.CheckFreeTime(r.Context(), r.URL.Query().Get("time"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ft)
}

type remindersResponse struct {
	assistant.Report
	Now      string   `json:"now"`
	Messages []string `json:"messages"`
}

func (s *Server) handleReminders(w http.ResponseWriter, r *http.Request) {
	rep, err := s.svc.Reminders(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, remindersResponse{Report: rep, Now: model.FormatTimestamp(rep.Now), Messages: rep.Messages()})
}

func (s *Server) handleRecentReminders(w http.ResponseWriter, _ *http.Request) {
	msgs := []notify.Message{}
	if s.feed != nil {
		msgs = append(msgs, s.feed.Recent()...)
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	reply, err := s.svc.Interact(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

func (s *Server) handleCalendarExport(w http.ResponseWriter, r *http.Request) {
	body, err := s.svc.ExportCalendar(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

const maxImportBytes = 4 << 20

func (s *Server) handleCalendarImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	rep, err := s.svc.ImportCalendar(r.Context(), body, s.modeParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	resp := importResponse{Meetings: []meetingResponse{}, Tasks: rep.Tasks, Skipped: rep.Skipped}
	for _, out := range rep.Meetings {
		resp.Meetings = append(resp.Meetings, newMeetingResponse(out))
	}
	writeJSON(w, http.StatusOK, resp)
}

type importResponse struct {
	Meetings []meetingResponse `json:"meetings"`
	Tasks    []model.Task      `json:"tasks"`
	Skipped  []string          `json:"skipped"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
