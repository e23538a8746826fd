package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistcal/internal/model"
)

func TestExportThenParse(t *testing.T) {
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	out := Export(
		[]model.Task{{ID: "t1", Name: "report", Deadline: at.Add(2 * time.Hour)}},
		[]model.Meeting{{ID: "m1", Description: "standup", Time: at}},
		at,
	)
	assert.Contains(t, out, "DTSTART:20240101T100000")
	assert.Contains(t, out, "CATEGORIES:TASK")

	res, err := Parse([]byte(out))
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	m := res.Entries[0]
	assert.False(t, m.Task)
	assert.Equal(t, "standup", m.Summary)
	assert.Equal(t, at, m.When)

	tk := res.Entries[1]
	assert.True(t, tk.Task)
	assert.Equal(t, "report", tk.Summary)
	assert.Equal(t, at.Add(2*time.Hour), tk.When)
}

func TestParseSkipsRecurringAndAllDay(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"UID:weekly",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240101T090000",
		"RRULE:FREQ=WEEKLY",
		"SUMMARY:weekly sync",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:holiday",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;VALUE=DATE:20240101",
		"SUMMARY:holiday",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:one-off",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240102T143000",
		"SUMMARY:dentist",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	res, err := Parse([]byte(body))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"weekly", "holiday"}, res.Skipped)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "dentist", res.Entries[0].Summary)
	assert.Equal(t, time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC), res.Entries[0].When)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)
}
