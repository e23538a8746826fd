package store

import (
	"context"
	"errors"
	"time"

	"assistcal/internal/model"
)

// ErrNotFound is returned when an id does not name a live record.
var ErrNotFound = errors.New("record not found")

// TaskFields lists task columns to change. Nil fields are left as is.
type TaskFields struct {
	Name      *string
	Deadline  *time.Time
	Completed *bool
}

// MeetingFields lists meeting columns to change. Nil fields are left as is.
type MeetingFields struct {
	Time        *time.Time
	Description *string
	Completed   *bool
}

// Store is the record store contract. It does not enforce meeting time
// uniqueness; that is the conflict resolver's job.
type Store interface {
	InsertTask(ctx context.Context, t model.Task) (string, error)
	UpdateTask(ctx context.Context, id string, f TaskFields) error
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (model.Task, error)
	ListTasks(ctx context.Context) ([]model.Task, error)

	InsertMeeting(ctx context.Context, m model.Meeting) (string, error)
	UpdateMeeting(ctx context.Context, id string, f MeetingFields) error
	DeleteMeeting(ctx context.Context, id string) error
	GetMeeting(ctx context.Context, id string) (model.Meeting, error)
	ListMeetings(ctx context.Context) ([]model.Meeting, error)
}
