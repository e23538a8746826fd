package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("time", " 2024-01-01 10:00:00 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), got)
	assert.Equal(t, "2024-01-01 10:00:00", FormatTimestamp(got))
}

func TestParseTimestampRejectsOtherFormats(t *testing.T) {
	for _, in := range []string{"", "2024-01-01", "2024-01-01T10:00:00", "2024-13-01 10:00:00", "tomorrow"} {
		_, err := ParseTimestamp("deadline", in)
		require.Error(t, err, in)
		assert.True(t, errors.Is(err, ErrValidation), in)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "deadline", verr.Field)
	}
}

func TestNaiveKeepsWallClock(t *testing.T) {
	loc := time.FixedZone("KST", 9*3600)
	in := time.Date(2024, 3, 10, 8, 30, 15, 999, loc)
	assert.Equal(t, time.Date(2024, 3, 10, 8, 30, 15, 0, time.UTC), Naive(in))
}

func TestRequireText(t *testing.T) {
	v, err := RequireText("name", "  report ")
	require.NoError(t, err)
	assert.Equal(t, "report", v)

	_, err = RequireText("name", "   ")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRecordsUseWallClockJSON(t *testing.T) {
	task := Task{ID: "t1", Name: "report", Deadline: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	b, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1","name":"report","deadline":"2024-01-01 12:00:00","completed":false}`, string(b))

	var back Task
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, task, back)

	m := Meeting{ID: "m1", Time: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC), Description: "standup", Completed: true}
	b, err = json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"m1","time":"2024-01-01 10:00:00","description":"standup","completed":true}`, string(b))

	var bad Meeting
	err = json.Unmarshal([]byte(`{"time":"2024-01-01T10:00:00Z"}`), &bad)
	assert.ErrorIs(t, err, ErrValidation)
}
