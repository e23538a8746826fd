package reminder

import (
	"encoding/json"
	"fmt"
	"time"

	"assistcal/internal/model"
)

// Kind tells which record an Item came from.
type Kind string

const (
	KindTask    Kind = "task"
	KindMeeting Kind = "meeting"
)

// Policy is the look-ahead window applied by DueSoon. A zero window turns
// reminders off for that kind.
type Policy struct {
	Name          string
	TaskWindow    time.Duration
	MeetingWindow time.Duration
	// IncludeCompleted keeps completed items eligible.
	IncludeCompleted bool
}

// Standard reminds about incomplete tasks within an hour and incomplete
// meetings within thirty minutes.
var Standard = Policy{
	Name:          "standard",
	TaskWindow:    time.Hour,
	MeetingWindow: 30 * time.Minute,
}

// Daily is the earlier task-only policy: any task due within 24 hours,
// completed or not.
var Daily = Policy{
	Name:             "daily",
	TaskWindow:       24 * time.Hour,
	IncludeCompleted: true,
}

// PolicyByName resolves a config value; unknown names get Standard.
func PolicyByName(name string) Policy {
	if name == Daily.Name {
		return Daily
	}
	return Standard
}

// Item is a single due-soon reminder.
type Item struct {
	Kind  Kind      `json:"kind"`
	ID    string    `json:"id"`
	Label string    `json:"label"`
	When  time.Time `json:"when"`
}

// MarshalJSON renders When in the naive wall-clock layout.
func (it Item) MarshalJSON() ([]byte, error) {
	type plain Item
	return json.Marshal(struct {
		plain
		When string `json:"when"`
	}{plain(it), model.FormatTimestamp(it.When)})
}

// Title is the notification title for the item's kind.
func (it Item) Title() string {
	if it.Kind == KindMeeting {
		return "Meeting Reminder"
	}
	return "Task Reminder"
}

// Message is the plain-text reminder line.
func (it Item) Message() string {
	ts := model.FormatTimestamp(it.When)
	if it.Kind == KindMeeting {
		return fmt.Sprintf("Reminder: meeting '%s' starts at %s", it.Label, ts)
	}
	return fmt.Sprintf("Reminder: '%s' deadline is approaching at %s", it.Label, ts)
}

// DueSoon selects tasks and meetings whose time lies in (now, now+window].
// Items at now or in the past are never included. Output keeps input order,
// tasks first.
func DueSoon(now time.Time, tasks []model.Task, meetings []model.Meeting, p Policy) []Item {
	var out []Item
	for _, t := range tasks {
		if t.Completed && !p.IncludeCompleted {
			continue
		}
		if within(now, t.Deadline, p.TaskWindow) {
			out = append(out, Item{Kind: KindTask, ID: t.ID, Label: t.Name, When: t.Deadline})
		}
	}
	for _, m := range meetings {
		if m.Completed && !p.IncludeCompleted {
			continue
		}
		if within(now, m.Time, p.MeetingWindow) {
			out = append(out, Item{Kind: KindMeeting, ID: m.ID, Label: m.Description, When: m.Time})
		}
	}
	return out
}

func within(now, when time.Time, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	d := when.Sub(now)
	return d > 0 && d <= window
}
