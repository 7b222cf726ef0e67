// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package task_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/vault/task"
	"github.com/mindvault/mindvault/pkg/pagination"
	"github.com/mindvault/mindvault/pkg/pointer"
)

// # Fake Repository

type fakeTaskRepository struct {
	byID map[string]*task.Task
}

func newFakeTaskRepository() *fakeTaskRepository {
	return &fakeTaskRepository{byID: map[string]*task.Task{}}
}

func (r *fakeTaskRepository) Create(_ context.Context, entry *task.Task) error {
	r.byID[entry.ID] = entry
	return nil
}

func (r *fakeTaskRepository) FindByID(_ context.Context, id string) (*task.Task, error) {
	entry, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("Task not found")
	}
	clone := *entry
	return &clone, nil
}

func (r *fakeTaskRepository) Update(_ context.Context, entry *task.Task) error {
	if _, ok := r.byID[entry.ID]; !ok {
		return apperr.NotFound("Task not found")
	}
	clone := *entry
	r.byID[entry.ID] = &clone
	return nil
}

func (r *fakeTaskRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return apperr.NotFound("Task not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeTaskRepository) List(_ context.Context, userID string, filters task.Filters, _ pagination.Params) ([]task.Task, int, error) {
	var entries []task.Task
	for _, entry := range r.byID {
		if entry.UserID != userID {
			continue
		}
		if filters.Status != "" && entry.Status != filters.Status {
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, len(entries), nil
}

func (r *fakeTaskRepository) CountByStatus(_ context.Context, userID string) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, entry := range r.byID {
		if entry.UserID == userID {
			counts[string(entry.Status)]++
		}
	}
	return counts, nil
}

func newTaskService(repository task.Repository) *task.Service {
	return task.NewService(repository, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// # Tests

func TestTaskService_Create_DefaultsToPending(t *testing.T) {
	service := newTaskService(newFakeTaskRepository())

	due := time.Now().Add(48 * time.Hour)
	entry, err := service.Create(context.Background(), "user-1", task.CreateInput{
		Title:   "Write report",
		DueDate: &due,
		Tags:    []string{"work"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, task.StatusPending, entry.Status)
	assert.Nil(t, entry.CompletedAt)
	require.NotNil(t, entry.DueDate)
	assert.True(t, entry.DueDate.Equal(due))
}

func TestTaskService_Update_CompletionStamp(t *testing.T) {
	service := newTaskService(newFakeTaskRepository())
	ctx := context.Background()

	entry, err := service.Create(ctx, "user-1", task.CreateInput{Title: "Write report"})
	require.NoError(t, err)

	// pending -> completed stamps CompletedAt
	completed := task.StatusCompleted
	updated, err := service.Update(ctx, entry.ID, "user-1", task.UpdateInput{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)

	// completed -> in_progress clears the stamp
	inProgress := task.StatusInProgress
	reopened, err := service.Update(ctx, entry.ID, "user-1", task.UpdateInput{Status: &inProgress})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)

	// completing again produces a fresh stamp
	again, err := service.Update(ctx, entry.ID, "user-1", task.UpdateInput{Status: &completed})
	require.NoError(t, err)
	assert.NotNil(t, again.CompletedAt)
}

func TestTaskService_Update_DueDate(t *testing.T) {
	service := newTaskService(newFakeTaskRepository())
	ctx := context.Background()

	due := time.Now().Add(24 * time.Hour)
	entry, err := service.Create(ctx, "user-1", task.CreateInput{Title: "Task", DueDate: &due})
	require.NoError(t, err)

	// Omitting the due date leaves it untouched
	updated, err := service.Update(ctx, entry.ID, "user-1", task.UpdateInput{
		Title: pointer.To("Renamed"),
	})
	require.NoError(t, err)
	assert.NotNil(t, updated.DueDate)

	// Explicit clear removes it
	cleared, err := service.Update(ctx, entry.ID, "user-1", task.UpdateInput{ClearDue: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)
}

func TestTaskService_Update_UnknownStatus(t *testing.T) {
	service := newTaskService(newFakeTaskRepository())
	ctx := context.Background()

	entry, err := service.Create(ctx, "user-1", task.CreateInput{Title: "Task"})
	require.NoError(t, err)

	bogus := task.Status("bogus")
	_, err = service.Update(ctx, entry.ID, "user-1", task.UpdateInput{Status: &bogus})

	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestTaskService_OwnershipEnforced(t *testing.T) {
	service := newTaskService(newFakeTaskRepository())
	ctx := context.Background()

	entry, err := service.Create(ctx, "user-1", task.CreateInput{Title: "Task"})
	require.NoError(t, err)

	_, err = service.Get(ctx, entry.ID, "user-2")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
	assert.Equal(t, "Not authorized to access this task", appErr.Message)

	err = service.Delete(ctx, entry.ID, "user-2")
	appErr = apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
}

func TestTaskService_StatusBreakdown(t *testing.T) {
	service := newTaskService(newFakeTaskRepository())
	ctx := context.Background()

	first, err := service.Create(ctx, "user-1", task.CreateInput{Title: "a"})
	require.NoError(t, err)
	_, err = service.Create(ctx, "user-1", task.CreateInput{Title: "b"})
	require.NoError(t, err)

	completed := task.StatusCompleted
	_, err = service.Update(ctx, first.ID, "user-1", task.UpdateInput{Status: &completed})
	require.NoError(t, err)

	counts, err := service.StatusBreakdown(ctx, "user-1")
	require.NoError(t, err)

	assert.EqualValues(t, 1, counts["pending"])
	assert.EqualValues(t, 1, counts["completed"])
}
