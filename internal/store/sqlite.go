package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"assistcal/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps tasks and meetings in a SQLite database. Timestamps are
// stored as model.TimestampLayout text.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path. Use
// ":memory:" for a throwaway database.
func Open(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: calls are serialized and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	s, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an open handle and ensures the schema exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id        TEXT PRIMARY KEY,
			name      TEXT NOT NULL,
			deadline  TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS meetings (
			id          TEXT PRIMARY KEY,
			time        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed   INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_meetings_time ON meetings(time)`)
	return err
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// InsertTask stores t under a fresh id and returns it.
func (s *SQLiteStore) InsertTask(ctx context.Context, t model.Task) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, name, deadline, completed) VALUES (?, ?, ?, ?)`,
		id, t.Name, model.FormatTimestamp(t.Deadline), t.Completed)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

// UpdateTask applies the non-nil fields of f.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, f TaskFields) error {
	var sets []string
	var args []any
	if f.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *f.Name)
	}
	if f.Deadline != nil {
		sets = append(sets, "deadline = ?")
		args = append(args, model.FormatTimestamp(*f.Deadline))
	}
	if f.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *f.Completed)
	}
	return s.update(ctx, "tasks", id, sets, args)
}

// DeleteTask removes a task; ErrNotFound if it does not exist.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	return s.delete(ctx, "tasks", id)
}

// GetTask loads one task.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (model.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, deadline, completed FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks returns every task in insertion order.
func (s *SQLiteStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, deadline, completed FROM tasks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// InsertMeeting stores m under a fresh id and returns it. Duplicate times
// are accepted.
func (s *SQLiteStore) InsertMeeting(ctx context.Context, m model.Meeting) (string, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meetings (id, time, description, completed) VALUES (?, ?, ?, ?)`,
		id, model.FormatTimestamp(m.Time), m.Description, m.Completed)
	if err != nil {
		return "", fmt.Errorf("insert meeting: %w", err)
	}
	return id, nil
}

// UpdateMeeting applies the non-nil fields of f.
func (s *SQLiteStore) UpdateMeeting(ctx context.Context, id string, f MeetingFields) error {
	var sets []string
	var args []any
	if f.Time != nil {
		sets = append(sets, "time = ?")
		args = append(args, model.FormatTimestamp(*f.Time))
	}
	if f.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *f.Description)
	}
	if f.Completed != nil {
		sets = append(sets, "completed = ?")
		args = append(args, *f.Completed)
	}
	return s.update(ctx, "meetings", id, sets, args)
}

// DeleteMeeting removes a meeting; ErrNotFound if it does not exist.
func (s *SQLiteStore) DeleteMeeting(ctx context.Context, id string) error {
	return s.delete(ctx, "meetings", id)
}

// GetMeeting loads one meeting.
func (s *SQLiteStore) GetMeeting(ctx context.Context, id string) (model.Meeting, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, time, description, completed FROM meetings WHERE id = ?`, id)
	m, err := scanMeeting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Meeting{}, fmt.Errorf("meeting %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Meeting{}, fmt.Errorf("get meeting %s: %w", id, err)
	}
	return m, nil
}

// ListMeetings returns every meeting in insertion order.
func (s *SQLiteStore) ListMeetings(ctx context.Context) ([]model.Meeting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, time, description, completed FROM meetings ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("list meetings: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) update(ctx context.Context, table, id string, sets []string, args []any) error {
	if len(sets) == 0 {
		// Nothing to change, but the id must still exist.
		var one int
		err := s.db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
		}
		return err
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return affected(res, table, id)
}

func (s *SQLiteStore) delete(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return affected(res, table, id)
}

func affected(res sql.Result, table, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s: %w", table, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (model.Task, error) {
	var t model.Task
	var deadline string
	if err := r.Scan(&t.ID, &t.Name, &deadline, &t.Completed); err != nil {
		return model.Task{}, err
	}
	d, err := model.ParseTimestamp("deadline", deadline)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", t.ID, err)
	}
	t.Deadline = d
	return t, nil
}

func scanMeeting(r rowScanner) (model.Meeting, error) {
	var m model.Meeting
	var ts string
	if err := r.Scan(&m.ID, &ts, &m.Description, &m.Completed); err != nil {
		return model.Meeting{}, err
	}
	t, err := model.ParseTimestamp("time", ts)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("meeting %s: %w", m.ID, err)
	}
	m.Time = t
	return m, nil
}
