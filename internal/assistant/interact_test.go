package assistant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"assistcal/internal/model"
)

func TestInteract(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	reply, err := svc.Interact(ctx, "schedule meeting at 2024-01-01 10:00:00")
	require.NoError(t, err)
	assert.Equal(t, "Meeting scheduled at 2024-01-01 10:00:00", reply)

	reply, err = svc.Interact(ctx, "schedule meeting with Sam at 2024-01-01 10:00:00")
	require.NoError(t, err)
	assert.Equal(t, "Meeting conflicts with an existing meeting. Suggesting alternative times: 2024-01-01 10:10:00", reply)

	reply, err = svc.Interact(ctx, "schedule task to file taxes by 2024-01-01 09:30:00")
	require.NoError(t, err)
	assert.Equal(t, "Task 'file taxes' scheduled with deadline 2024-01-01 09:30:00", reply)

	reply, err = svc.Interact(ctx, "send reminders")
	require.NoError(t, err)
	assert.Equal(t, "Reminder: 'file taxes' deadline is approaching at 2024-01-01 09:30:00", reply)

	reply, err = svc.Interact(ctx, "check free time at 2024-01-01 10:00:00")
	require.NoError(t, err)
	assert.Equal(t, "No free time available at this time.", reply)

	reply, err = svc.Interact(ctx, "play some music")
	require.NoError(t, err)
	assert.Equal(t, "Unknown command.", reply)

	_, err = svc.Interact(ctx, "schedule meeting at noon-ish")
	assert.ErrorIs(t, err, model.ErrValidation)
}
