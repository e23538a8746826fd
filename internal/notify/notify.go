// Package notify delivers plain-text reminder messages.
package notify

import (
	"context"
	"sync"
	"time"

	appLog "assistcal/internal/log"
)

// Notifier receives reminder text for display or speech.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// LogNotifier writes each message as an INFO log line.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, title, message string) error {
	appLog.Info("reminder", "title", title, "message", message)
	return nil
}

// Message is one delivered notification.
type Message struct {
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

// Feed keeps the most recent messages in memory, oldest dropped first.
type Feed struct {
	mu   sync.RWMutex
	max  int
	msgs []Message
	now  func() time.Time
}

// NewFeed returns a Feed holding at most size messages.
func NewFeed(size int) *Feed {
	if size <= 0 {
		size = 1
	}
	return &Feed{max: size, now: time.Now}
}

func (f *Feed) Notify(_ context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, Message{Title: title, Message: message, SentAt: f.now()})
	if over := len(f.msgs) - f.max; over > 0 {
		f.msgs = append([]Message(nil), f.msgs[over:]...)
	}
	return nil
}

// Recent returns a copy of the buffered messages, oldest first.
func (f *Feed) Recent() []Message {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]Message(nil), f.msgs...)
}

// Multi fans a message out to every notifier and returns the first error.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, title, message string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, title, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
