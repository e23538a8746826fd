// Package command turns a free-text request ("schedule meeting at ...") into
// a structured Command. Matching is keyword based and best effort; nothing
// in the scheduling logic depends on the shape of the text.
package command

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"assistcal/internal/model"
)

type Kind int

const (
	Unknown Kind = iota
	ScheduleMeeting
	ScheduleTask
	SendReminders
	CheckFreeTime
)

func (k Kind) String() string {
	switch k {
	case ScheduleMeeting:
		return "schedule_meeting"
	case ScheduleTask:
		return "schedule_task"
	case SendReminders:
		return "send_reminders"
	case CheckFreeTime:
		return "check_free_time"
	default:
		return "unknown"
	}
}

// Command is a parsed request. When is set for ScheduleMeeting,
// ScheduleTask (deadline) and CheckFreeTime.
type Command struct {
	Kind        Kind
	Name        string
	Description string
	When        time.Time
}

const defaultMeetingDescription = "Meeting"

// Parse recognizes:
//
//	schedule meeting [<description>] at <time>
//	schedule task to <name> by <deadline>
//	send reminders
//	check free time at <time>
//
// Anything else yields Kind Unknown and no error.
func Parse(text string) (Command, error) {
	lower := foldASCII(text)

	switch {
	case strings.Contains(lower, "schedule meeting"):
		rest := after(text, lower, "schedule meeting")
		desc, when, ok := splitLast(rest, " at ")
		if !ok {
			return Command{}, &model.ValidationError{Field: "time", Reason: "missing 'at <time>'"}
		}
		t, err := ParseWhen("time", when)
		if err != nil {
			return Command{}, err
		}
		desc = strings.TrimSpace(desc)
		if desc == "" {
			desc = defaultMeetingDescription
		}
		return Command{Kind: ScheduleMeeting, Description: desc, When: t}, nil

	case strings.Contains(lower, "schedule task"):
		rest := after(text, lower, "schedule task")
		_, body, ok := splitFirst(rest, "to ")
		if !ok {
			return Command{}, &model.ValidationError{Field: "name", Reason: "missing 'to <name>'"}
		}
		name, deadline, ok := splitLast(" "+body, " by ")
		if !ok {
			return Command{}, &model.ValidationError{Field: "deadline", Reason: "missing 'by <deadline>'"}
		}
		name, err := model.RequireText("name", name)
		if err != nil {
			return Command{}, err
		}
		t, err := ParseWhen("deadline", deadline)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: ScheduleTask, Name: name, When: t}, nil

	case strings.Contains(lower, "send reminders"):
		return Command{Kind: SendReminders}, nil

	case strings.Contains(lower, "check free time"):
		rest := after(text, lower, "check free time")
		_, when, ok := splitLast(rest, " at ")
		if !ok {
			return Command{}, &model.ValidationError{Field: "time", Reason: "missing 'at <time>'"}
		}
		t, err := ParseWhen("time", when)
		if err != nil {
			return Command{}, err
		}
		return Command{Kind: CheckFreeTime, When: t}, nil
	}

	return Command{Kind: Unknown}, nil
}

// ParseWhen accepts the store layout first and falls back to dateparse for
// looser spellings ("2024-01-02 3pm", "Jan 2, 2024 15:00"). The result is
// naive wall clock.
func ParseWhen(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := model.ParseTimestamp(field, s); err == nil {
		return t, nil
	}
	if s == "" {
		return time.Time{}, &model.ValidationError{Field: field, Reason: "is required"}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, &model.ValidationError{Field: field, Value: s, Reason: "unrecognized date/time"}
	}
	return model.Naive(t), nil
}

// foldASCII lowercases A-Z only. Byte offsets in the result are valid in
// the input, which Unicode case mapping does not guarantee.
func foldASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// after returns the original-case text following keyword.
func after(text, lower, keyword string) string {
	i := strings.Index(lower, keyword)
	return text[i+len(keyword):]
}

func splitLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(foldASCII(s), sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+len(sep):], true
}

func splitFirst(s, sep string) (string, string, bool) {
	i := strings.Index(foldASCII(s), sep)
	if i < 0 {
		return "", "", false
	}
	return s[:i], s[i+len(sep):], true
}
