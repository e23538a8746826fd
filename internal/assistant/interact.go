package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assistcal/internal/command"
	"assistcal/internal/model"
	"assistcal/internal/schedule"
)

// Interact runs a free-text command and returns a plain-text answer.
// Validation problems come back as errors so the caller can re-prompt.
func (s *Service) Interact(ctx context.Context, text string) (string, error) {
	cmd, err := command.Parse(text)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Kind {
	case command.ScheduleMeeting:
		out, err := s.scheduleMeeting(ctx, cmd.When, cmd.Description, s.mode)
		if err != nil {
			return "", err
		}
		return describeOutcome(out), nil

	case command.ScheduleTask:
		t, err := s.scheduleTask(ctx, cmd.Name, cmd.When)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Task '%s' scheduled with deadline %s", t.Name, model.FormatTimestamp(t.Deadline)), nil

	case command.SendReminders:
		r, err := s.sendReminders(ctx)
		if err != nil {
			return "", err
		}
		return strings.Join(r.Messages(), "\n"), nil

	case command.CheckFreeTime:
		ft, err := s.checkFreeTime(ctx, cmd.When)
		if err != nil {
			return "", err
		}
		return ft.Suggestion, nil
	}

	return "Unknown command.", nil
}

func describeOutcome(out MeetingOutcome) string {
	switch out.Status {
	case schedule.Free:
		return "Meeting scheduled at " + model.FormatTimestamp(out.Meeting.Time)
	case schedule.Conflict:
		return "Meeting conflicts with an existing meeting. Suggesting alternative times: " + joinTimes(out.Alternatives)
	default:
		return "Meeting conflicts with an existing meeting and no alternative time was found. Please choose a different time."
	}
}

func joinTimes(ts []time.Time) string {
	parts := make([]string, 0, len(ts))
	for _, t := range ts {
		parts = append(parts, model.FormatTimestamp(t))
	}
	return strings.Join(parts, ", ")
}
