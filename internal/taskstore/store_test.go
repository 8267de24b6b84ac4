package taskstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-insight/internal/dto"
)

func TestCreateAndGet(t *testing.T) {
	store := New()

	record := store.Create("analysis")
	require.NotEmpty(t, record.ID)
	assert.Equal(t, dto.TaskPending, record.Status)
	assert.Equal(t, "analysis", record.Kind)

	got, err := store.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, dto.ErrTaskNotFound)
}

func TestUpdateIsolatesSnapshots(t *testing.T) {
	store := New()
	record := store.Create("trace")

	err := store.Update(record.ID, func(r *dto.TaskRecord) {
		r.Status = dto.TaskCompleted
		r.Progress = 1.0
		r.Result = "done"
	})
	require.NoError(t, err)

	got, err := store.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.TaskCompleted, got.Status)
	assert.Equal(t, 1.0, got.Progress)

	// Mutating a snapshot must not leak into the store.
	got.Status = dto.TaskFailed
	again, err := store.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.TaskCompleted, again.Status)

	assert.ErrorIs(t, store.Update("missing", func(*dto.TaskRecord) {}), dto.ErrTaskNotFound)
}

func TestCancelRunningTask(t *testing.T) {
	store := New()
	record := store.Create("backtest")

	ctx, cancel := context.WithCancel(context.Background())
	store.RegisterCancel(record.ID, cancel)

	require.NoError(t, store.Cancel(record.ID))

	select {
	case <-ctx.Done():
	default:
		t.Fatal("expected task context to be cancelled")
	}

	got, err := store.Get(record.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.TaskCancelled, got.Status)
}

func TestCancelFinishedTask(t *testing.T) {
	store := New()
	record := store.Create("analysis")

	require.NoError(t, store.Update(record.ID, func(r *dto.TaskRecord) {
		r.Status = dto.TaskCompleted
	}))

	assert.ErrorIs(t, store.Cancel(record.ID), dto.ErrTaskNotCancellable)
	assert.ErrorIs(t, store.Cancel("missing"), dto.ErrTaskNotFound)
}

func TestDeleteAndList(t *testing.T) {
	store := New()
	a := store.Create("analysis")
	b := store.Create("trace")

	assert.Len(t, store.List(), 2)

	store.Delete(a.ID)
	records := store.List()
	require.Len(t, records, 1)
	assert.Equal(t, b.ID, records[0].ID)
}
