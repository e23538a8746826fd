package assistant

import (
	"context"

	"assistcal/internal/ics"
	appLog "assistcal/internal/log"
	"assistcal/internal/model"
	"assistcal/internal/schedule"
)

// ImportReport summarizes ImportCalendar.
type ImportReport struct {
	Meetings []MeetingOutcome `json:"meetings"`
	Tasks    []model.Task     `json:"tasks"`
	Skipped  []string         `json:"skipped"`
}

// ImportCalendar schedules every importable event of an iCalendar payload.
// Meetings go through the conflict resolver one by one; conflicting ones
// are reported with their alternatives and not stored. Tasks without a
// summary or UID are skipped.
func (s *Service) ImportCalendar(ctx context.Context, body []byte, mode schedule.Mode) (ImportReport, error) {
	parsed, err := ics.Parse(body)
	if err != nil {
		return ImportReport{}, &model.ValidationError{Field: "calendar", Reason: err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rep := ImportReport{Skipped: parsed.Skipped}
	for _, e := range parsed.Entries {
		if e.Task {
			name := e.Summary
			if name == "" {
				name = e.UID
			}
			name, err := model.RequireText("name", name)
			if err != nil {
				appLog.Warn("ics import: skipping task without a name", "deadline", model.FormatTimestamp(e.When))
				rep.Skipped = append(rep.Skipped, "task@"+model.FormatTimestamp(e.When))
				continue
			}
			t, err := s.scheduleTask(ctx, name, e.When)
			if err != nil {
				return rep, err
			}
			rep.Tasks = append(rep.Tasks, t)
			continue
		}

		out, err := s.scheduleMeeting(ctx, e.When, e.Summary, mode)
		if err != nil {
			return rep, err
		}
		rep.Meetings = append(rep.Meetings, out)
	}

	appLog.Info("calendar imported", "tasks", len(rep.Tasks), "meetings", len(rep.Meetings), "skipped", len(rep.Skipped))
	return rep, nil
}

// ExportCalendar renders all tasks and meetings as iCalendar text.
func (s *Service) ExportCalendar(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return "", err
	}
	meetings, err := s.store.ListMeetings(ctx)
	if err != nil {
		return "", err
	}
	return ics.Export(tasks, meetings, s.now()), nil
}
