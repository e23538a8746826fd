package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistcal/internal/model"
)

var now = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestTaskWindowBoundaries(t *testing.T) {
	tasks := []model.Task{
		{ID: "exact", Name: "exact", Deadline: now.Add(time.Hour)},
		{ID: "late", Name: "late", Deadline: now.Add(time.Hour + time.Second)},
		{ID: "now", Name: "now", Deadline: now},
		{ID: "past", Name: "past", Deadline: now.Add(-time.Minute)},
		{ID: "soon", Name: "soon", Deadline: now.Add(time.Second)},
	}

	items := DueSoon(now, tasks, nil, Standard)
	require.Len(t, items, 2)
	assert.Equal(t, "exact", items[0].ID)
	assert.Equal(t, "soon", items[1].ID)
}

func TestMeetingWindowBoundaries(t *testing.T) {
	meetings := []model.Meeting{
		{ID: "m1", Description: "standup", Time: now.Add(30 * time.Minute)},
		{ID: "m2", Description: "retro", Time: now.Add(31 * time.Minute)},
	}
	items := DueSoon(now, nil, meetings, Standard)
	require.Len(t, items, 1)
	assert.Equal(t, KindMeeting, items[0].Kind)
	assert.Equal(t, "standup", items[0].Label)
}

func TestCompletedItemsExcluded(t *testing.T) {
	tasks := []model.Task{{ID: "t1", Name: "write report", Deadline: now.Add(45 * time.Minute)}}
	meetings := []model.Meeting{{ID: "m1", Description: "sync", Time: now.Add(10 * time.Minute), Completed: true}}

	items := DueSoon(now, tasks, meetings, Standard)
	require.Len(t, items, 1)
	assert.Equal(t, KindTask, items[0].Kind)
	assert.Equal(t, "t1", items[0].ID)
}

func TestDailyPolicyIgnoresMeetings(t *testing.T) {
	tasks := []model.Task{
		{ID: "t1", Name: "a", Deadline: now.Add(23 * time.Hour), Completed: true},
		{ID: "t2", Name: "b", Deadline: now.Add(25 * time.Hour)},
	}
	meetings := []model.Meeting{{ID: "m1", Time: now.Add(5 * time.Minute)}}

	items := DueSoon(now, tasks, meetings, PolicyByName("daily"))
	require.Len(t, items, 1)
	assert.Equal(t, "t1", items[0].ID)
}

func TestMessage(t *testing.T) {
	it := Item{Kind: KindTask, Label: "pay rent", When: now}
	assert.Equal(t, "Reminder: 'pay rent' deadline is approaching at 2024-01-01 09:00:00", it.Message())
	assert.Equal(t, "Task Reminder", it.Title())
	assert.Equal(t, "Meeting Reminder", Item{Kind: KindMeeting}.Title())
	assert.Equal(t, Standard, PolicyByName("bogus"))
}
