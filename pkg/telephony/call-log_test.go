package telephony

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedEntry(t *testing.T, store CallLogStore, callSID string) {
	t.Helper()
	now := time.Now().UTC()
	require.NoError(t, store.Create(context.Background(), &CallLogEntry{
		ID:         "11111111-1111-1111-1111-111111111111",
		CallSID:    callSID,
		ToNumber:   "+14355550123",
		FromNumber: "+14355550100",
		Status:     StatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))
}

func TestStatusLoggerProgression(t *testing.T) {
	store := NewMemoryCallLogStore()
	logger := NewStatusLogger(store, zap.NewNop())
	ctx := context.Background()
	seedEntry(t, store, "CA001")

	for _, status := range []CallStatus{StatusRinging, StatusInProgress, StatusCompleted} {
		require.NoError(t, logger.OnStatusEvent(ctx, "CA001", status, 0))
	}

	entry, err := store.GetByCallSID(ctx, "CA001")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, entry.Status)
	require.NotNil(t, entry.ClosedAt)
}

func TestStatusLoggerIdempotentOnDuplicates(t *testing.T) {
	store := NewMemoryCallLogStore()
	logger := NewStatusLogger(store, zap.NewNop())
	ctx := context.Background()
	seedEntry(t, store, "CA002")

	require.NoError(t, logger.OnStatusEvent(ctx, "CA002", StatusCompleted, 42))
	first, err := store.GetByCallSID(ctx, "CA002")
	require.NoError(t, err)
	require.NotNil(t, first.ClosedAt)

	// Carrier webhooks redeliver; the second completed event must change nothing.
	require.NoError(t, logger.OnStatusEvent(ctx, "CA002", StatusCompleted, 42))
	second, err := store.GetByCallSID(ctx, "CA002")
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
	assert.Equal(t, first.ClosedAt, second.ClosedAt)
	assert.Equal(t, 42, second.DurationSeconds)
}

func TestStatusLoggerDropsEventsAfterTerminal(t *testing.T) {
	store := NewMemoryCallLogStore()
	logger := NewStatusLogger(store, zap.NewNop())
	ctx := context.Background()
	seedEntry(t, store, "CA003")

	require.NoError(t, logger.OnStatusEvent(ctx, "CA003", StatusFailed, 0))
	require.NoError(t, logger.OnStatusEvent(ctx, "CA003", StatusRinging, 0))

	entry, err := store.GetByCallSID(ctx, "CA003")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, entry.Status)
}

func TestStatusLoggerIgnoresUnknowns(t *testing.T) {
	store := NewMemoryCallLogStore()
	logger := NewStatusLogger(store, zap.NewNop())
	ctx := context.Background()
	seedEntry(t, store, "CA004")

	require.NoError(t, logger.OnStatusEvent(ctx, "CA999", StatusRinging, 0))
	require.NoError(t, logger.OnStatusEvent(ctx, "CA004", CallStatus("teleporting"), 0))

	entry, err := store.GetByCallSID(ctx, "CA004")
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, entry.Status)
}

func TestCallStatusTerminal(t *testing.T) {
	terminal := []CallStatus{StatusCompleted, StatusBusy, StatusFailed, StatusNoAnswer, StatusCanceled}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), string(s))
	}
	for _, s := range []CallStatus{StatusQueued, StatusRinging, StatusInProgress} {
		assert.False(t, s.Terminal(), string(s))
	}
}

func TestMemoryCallLogStoreListNewestFirst(t *testing.T) {
	store := NewMemoryCallLogStore()
	ctx := context.Background()
	seedEntry(t, store, "CA010")
	seedEntry(t, store, "CA011")
	seedEntry(t, store, "CA012")

	entries, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "CA012", entries[0].CallSID)
	assert.Equal(t, "CA011", entries[1].CallSID)
}
