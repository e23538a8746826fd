// Package assistant orchestrates the record store, the conflict resolver and
// the reminder evaluator. It is the only writer of task and meeting state.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	appLog "assistcal/internal/log"
	"assistcal/internal/model"
	"assistcal/internal/notify"
	"assistcal/internal/reminder"
	"assistcal/internal/schedule"
	"assistcal/internal/store"
)

// ErrNoAlternative is returned in outcomes whose search budget ran out.
var ErrNoAlternative = errors.New("no alternative time found")

// ErrNotFound aliases the store's not-found error so callers need only this
// package.
var ErrNotFound = store.ErrNotFound

// Options configures a Service. Zero values get sensible defaults.
type Options struct {
	Notifier notify.Notifier
	Policy   reminder.Policy
	Mode     schedule.Mode
	// Now returns the current time; the wall clock reading is used.
	Now func() time.Time
}

// Service implements the assistant operations. Calls are serialized so the
// reminder poll never runs in the middle of a write.
type Service struct {
	mu       sync.Mutex
	store    store.Store
	notifier notify.Notifier
	policy   reminder.Policy
	mode     schedule.Mode
	now      func() time.Time
}

// New returns a Service over st.
func New(st store.Store, opts Options) *Service {
	s := &Service{
		store:    st,
		notifier: opts.Notifier,
		policy:   opts.Policy,
		mode:     opts.Mode,
		now:      opts.Now,
	}
	if s.notifier == nil {
		s.notifier = notify.LogNotifier{}
	}
	if s.policy.Name == "" {
		s.policy = reminder.Standard
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// DefaultMode is the search mode used when callers do not pick one.
func (s *Service) DefaultMode() schedule.Mode {
	return s.mode
}

// MeetingOutcome is the result of proposing a meeting time. Meeting is set
// only when Status is schedule.Free and the meeting was stored.
type MeetingOutcome struct {
	Status       schedule.Status `json:"status"`
	Meeting      *model.Meeting  `json:"meeting,omitempty"`
	Candidate    time.Time       `json:"candidate"`
	Alternatives []time.Time     `json:"alternatives,omitempty"`
}

// Err returns ErrNoAlternative for exhausted searches and nil otherwise.
func (o MeetingOutcome) Err() error {
	if o.Status == schedule.NoAlternativeFound {
		return ErrNoAlternative
	}
	return nil
}

// ScheduleMeeting stores a meeting at when if that time is free. On a
// conflict nothing is stored; the caller picks an alternative and calls
// again.
func (s *Service) ScheduleMeeting(ctx context.Context, when, description string, mode schedule.Mode) (MeetingOutcome, error) {
	t, err := model.ParseTimestamp("time", when)
	if err != nil {
		return MeetingOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleMeeting(ctx, t, description, mode)
}

func (s *Service) scheduleMeeting(ctx context.Context, t time.Time, description string, mode schedule.Mode) (MeetingOutcome, error) {
	existing, err := s.meetingTimes(ctx, "")
	if err != nil {
		return MeetingOutcome{}, err
	}

	d := schedule.Evaluate(t, existing, mode)
	out := outcome(d)
	if d.Status != schedule.Free {
		appLog.Info("meeting conflict", "time", model.FormatTimestamp(t), "mode", mode, "status", out.Status, "alternatives", len(out.Alternatives))
		return out, nil
	}

	m := model.Meeting{Time: t, Description: description}
	id, err := s.store.InsertMeeting(ctx, m)
	if err != nil {
		return MeetingOutcome{}, err
	}
	m.ID = id
	out.Meeting = &m
	appLog.Info("meeting scheduled", "id", id, "time", model.FormatTimestamp(t))
	return out, nil
}

// outcome maps a resolver decision. An empty enumerate-five list means the
// search found nothing.
func outcome(d schedule.Decision) MeetingOutcome {
	out := MeetingOutcome{Status: d.Status, Candidate: d.Candidate, Alternatives: d.Alternatives}
	if d.Status == schedule.Conflict && len(d.Alternatives) == 0 {
		out.Status = schedule.NoAlternativeFound
	}
	return out
}

// MeetingAlternatives lists the enumerate-five options around when without
// storing anything.
func (s *Service) MeetingAlternatives(ctx context.Context, when string) ([]time.Time, error) {
	t, err := model.ParseTimestamp("time", when)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := s.meetingTimes(ctx, "")
	if err != nil {
		return nil, err
	}
	return schedule.Alternatives(t, existing, schedule.EnumerateFive), nil
}

// RescheduleMeeting moves a meeting, checking the new time against every
// other meeting.
func (s *Service) RescheduleMeeting(ctx context.Context, id, when string, mode schedule.Mode) (MeetingOutcome, error) {
	t, err := model.ParseTimestamp("time", when)
	if err != nil {
		return MeetingOutcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.GetMeeting(ctx, id)
	if err != nil {
		return MeetingOutcome{}, err
	}
	existing, err := s.meetingTimes(ctx, id)
	if err != nil {
		return MeetingOutcome{}, err
	}

	out := outcome(schedule.Evaluate(t, existing, mode))
	if out.Status != schedule.Free {
		return out, nil
	}
	if err := s.store.UpdateMeeting(ctx, id, store.MeetingFields{Time: &t}); err != nil {
		return MeetingOutcome{}, err
	}
	m.Time = t
	out.Meeting = &m
	return out, nil
}

// DescribeMeeting changes a meeting's description.
func (s *Service) DescribeMeeting(ctx context.Context, id, description string) (model.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.UpdateMeeting(ctx, id, store.MeetingFields{Description: &description}); err != nil {
		return model.Meeting{}, err
	}
	return s.store.GetMeeting(ctx, id)
}

// ScheduleTask stores a task. Tasks never conflict.
func (s *Service) ScheduleTask(ctx context.Context, name, deadline string) (model.Task, error) {
	name, err := model.RequireText("name", name)
	if err != nil {
		return model.Task{}, err
	}
	d, err := model.ParseTimestamp("deadline", deadline)
	if err != nil {
		return model.Task{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleTask(ctx, name, d)
}

func (s *Service) scheduleTask(ctx context.Context, name string, deadline time.Time) (model.Task, error) {
	t := model.Task{Name: name, Deadline: deadline}
	id, err := s.store.InsertTask(ctx, t)
	if err != nil {
		return model.Task{}, err
	}
	t.ID = id
	appLog.Info("task scheduled", "id", id, "name", name, "deadline", model.FormatTimestamp(deadline))
	return t, nil
}

// RenameTask changes a task's name.
func (s *Service) RenameTask(ctx context.Context, id, name string) (model.Task, error) {
	return s.UpdateTask(ctx, id, &name, nil)
}

// RescheduleTask changes a task's deadline.
func (s *Service) RescheduleTask(ctx context.Context, id, deadline string) (model.Task, error) {
	return s.UpdateTask(ctx, id, nil, &deadline)
}

// UpdateTask changes the supplied fields of a task. Every field is validated
// before the store is touched, so a bad value leaves the task unchanged.
func (s *Service) UpdateTask(ctx context.Context, id string, name, deadline *string) (model.Task, error) {
	var f store.TaskFields
	if name != nil {
		n, err := model.RequireText("name", *name)
		if err != nil {
			return model.Task{}, err
		}
		f.Name = &n
	}
	if deadline != nil {
		d, err := model.ParseTimestamp("deadline", *deadline)
		if err != nil {
			return model.Task{}, err
		}
		f.Deadline = &d
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.UpdateTask(ctx, id, f); err != nil {
		return model.Task{}, err
	}
	return s.store.GetTask(ctx, id)
}

// CompleteTask marks a task completed. Completing it again succeeds and
// changes nothing.
func (s *Service) CompleteTask(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, err
	}
	if t.Completed {
		return t, nil
	}
	done := true
	if err := s.store.UpdateTask(ctx, id, store.TaskFields{Completed: &done}); err != nil {
		return model.Task{}, err
	}
	t.Completed = true
	return t, nil
}

// CompleteMeeting marks a meeting completed; idempotent like CompleteTask.
func (s *Service) CompleteMeeting(ctx context.Context, id string) (model.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.store.GetMeeting(ctx, id)
	if err != nil {
		return model.Meeting{}, err
	}
	if m.Completed {
		return m, nil
	}
	done := true
	if err := s.store.UpdateMeeting(ctx, id, store.MeetingFields{Completed: &done}); err != nil {
		return model.Meeting{}, err
	}
	m.Completed = true
	return m, nil
}

// DeleteTask removes a task. Unknown ids give ErrNotFound.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteTask(ctx, id)
}

// DeleteMeeting removes a meeting. Unknown ids give ErrNotFound.
func (s *Service) DeleteMeeting(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.DeleteMeeting(ctx, id)
}

func (s *Service) GetTask(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.GetTask(ctx, id)
}

func (s *Service) GetMeeting(ctx context.Context, id string) (model.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.GetMeeting(ctx, id)
}

func (s *Service) ListTasks(ctx context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListTasks(ctx)
}

func (s *Service) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListMeetings(ctx)
}

// FreeTime answers CheckFreeTime.
type FreeTime struct {
	Busy       bool        `json:"busy"`
	Suggestion string      `json:"suggestion"`
	Task       *model.Task `json:"task,omitempty"`
}

// CheckFreeTime reports whether a meeting occupies when exactly. A free
// slot comes with a suggestion: the pending task with the nearest deadline,
// or a break.
func (s *Service) CheckFreeTime(ctx context.Context, when string) (FreeTime, error) {
	t, err := model.ParseTimestamp("time", when)
	if err != nil {
		return FreeTime{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkFreeTime(ctx, t)
}

func (s *Service) checkFreeTime(ctx context.Context, t time.Time) (FreeTime, error) {
	existing, err := s.meetingTimes(ctx, "")
	if err != nil {
		return FreeTime{}, err
	}
	if schedule.NewOccupied(existing).Taken(t) {
		return FreeTime{Busy: true, Suggestion: "No free time available at this time."}, nil
	}

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return FreeTime{}, err
	}
	pending := pendingTasks(tasks)
	if len(pending) == 0 {
		return FreeTime{Suggestion: "The time is free. How about taking a break?"}, nil
	}
	next := pending[0]
	return FreeTime{
		Suggestion: fmt.Sprintf("The time is free. You could use this time to complete your task: '%s' with deadline at %s.",
			next.Name, model.FormatTimestamp(next.Deadline)),
		Task: &next,
	}, nil
}

// Report is the result of a reminder evaluation. Pending lists every
// incomplete task when nothing is due soon.
type Report struct {
	Now     time.Time       `json:"now"`
	Due     []reminder.Item `json:"due"`
	Pending []model.Task    `json:"pending,omitempty"`
}

// Messages renders the report as plain text lines.
func (r Report) Messages() []string {
	if len(r.Due) > 0 {
		out := make([]string, 0, len(r.Due))
		for _, it := range r.Due {
			out = append(out, it.Message())
		}
		return out
	}
	out := []string{"No reminders for today."}
	for _, t := range r.Pending {
		out = append(out, fmt.Sprintf("Pending: '%s' due %s", t.Name, model.FormatTimestamp(t.Deadline)))
	}
	return out
}

// Reminders evaluates due-soon items at the current time.
func (s *Service) Reminders(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reminders(ctx)
}

func (s *Service) reminders(ctx context.Context) (Report, error) {
	now := model.Naive(s.now())
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return Report{}, err
	}
	meetings, err := s.store.ListMeetings(ctx)
	if err != nil {
		return Report{}, err
	}

	r := Report{Now: now, Due: reminder.DueSoon(now, tasks, meetings, s.policy)}
	if len(r.Due) == 0 {
		r.Pending = pendingTasks(tasks)
	}
	return r, nil
}

// SendReminders evaluates reminders and delivers each due item through the
// notifier. Nothing is sent when nothing is due.
func (s *Service) SendReminders(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendReminders(ctx)
}

func (s *Service) sendReminders(ctx context.Context) (Report, error) {
	r, err := s.reminders(ctx)
	if err != nil {
		return Report{}, err
	}
	for _, it := range r.Due {
		if err := s.notifier.Notify(ctx, it.Title(), it.Message()); err != nil {
			return r, fmt.Errorf("notify %s %s: %w", it.Kind, it.ID, err)
		}
	}
	appLog.Debug("reminders evaluated", "policy", s.policy.Name, "due", len(r.Due), "pending", len(r.Pending))
	return r, nil
}

// meetingTimes lists the times of all stored meetings except skipID.
// Completed meetings still occupy their slot until deleted.
func (s *Service) meetingTimes(ctx context.Context, skipID string) ([]time.Time, error) {
	meetings, err := s.store.ListMeetings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, len(meetings))
	for _, m := range meetings {
		if m.ID == skipID {
			continue
		}
		out = append(out, m.Time)
	}
	return out, nil
}

// pendingTasks returns incomplete tasks, nearest deadline first.
func pendingTasks(tasks []model.Task) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out
}
