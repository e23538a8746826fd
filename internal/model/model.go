package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the fixed wall-clock format used at the store and
// presentation boundaries ("YYYY-MM-DD HH:MM:SS").
const TimestampLayout = "2006-01-02 15:04:05"

// ErrValidation is matched by every ValidationError via errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError reports a malformed timestamp or an empty required field.
// Nothing is written to the store when one is returned.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Task is a named piece of work with a deadline. Several tasks may share
// the same deadline.
type Task struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Deadline  time.Time `json:"deadline"`
	Completed bool      `json:"completed"`
}

// Meeting is a point in time, not an interval. Live meetings never share a
// timestamp when scheduled through the conflict resolver.
type Meeting struct {
	ID          string    `json:"id"`
	Time        time.Time `json:"time"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
}

// ParseTimestamp parses s against TimestampLayout. The result carries the
// naive wall clock in UTC so that arithmetic never crosses a DST boundary.
func ParseTimestamp(field, s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, &ValidationError{Field: field, Reason: "is required"}
	}
	t, err := time.Parse(TimestampLayout, v)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: s, Reason: "expected YYYY-MM-DD HH:MM:SS"}
	}
	return t, nil
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Naive drops the location of t, keeping its wall clock reading and
// truncating to whole seconds.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// RequireText rejects empty or whitespace-only values.
func RequireText(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", &ValidationError{Field: field, Reason: "is required"}
	}
	return v, nil
}
