package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedDropsOldest(t *testing.T) {
	f := NewFeed(2)
	ctx := context.Background()
	require.NoError(t, f.Notify(ctx, "Task Reminder", "one"))
	require.NoError(t, f.Notify(ctx, "Task Reminder", "two"))
	require.NoError(t, f.Notify(ctx, "Task Reminder", "three"))

	got := f.Recent()
	require.Len(t, got, 2)
	assert.Equal(t, "two", got[0].Message)
	assert.Equal(t, "three", got[1].Message)
}

type failing struct{ err error }

func (f failing) Notify(context.Context, string, string) error { return f.err }

func TestMultiDeliversToAll(t *testing.T) {
	feed := NewFeed(5)
	boom := errors.New("speaker offline")

	err := Multi{failing{boom}, feed, LogNotifier{}}.Notify(context.Background(), "t", "m")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, feed.Recent(), 1)
}
