// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package task implements personal task tracking.

Tasks are user-owned, soft-deleted, and ordered by urgency: due date first
(tasks without a due date sort last), then recency. Completing a task stamps
CompletedAt automatically.
*/
package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mindvault/mindvault/pkg/pagination"
)

// Status tracks a task through its lifecycle.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known task status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Task is a user-owned unit of work.
type Task struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Status      Status          `json:"status"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Tags        []string        `json:"tags"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Filters narrows a task listing. Zero values mean "no constraint".
// Tags matches tasks carrying ANY of the given tags.
type Filters struct {
	Status Status
	Tags   []string
}

// Repository defines the persistence contract for tasks.
type Repository interface {

	/*
		Create persists a new task.

		Parameters:
		  - context: context.Context
		  - task: *Task

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, task *Task) error

	/*
		FindByID returns the task with the given ID, regardless of owner.
		Ownership enforcement is the service's responsibility.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Task: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Task, error)

	/*
		Update persists changes to a task's mutable fields.

		Parameters:
		  - context: context.Context
		  - task: *Task

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, task *Task) error

	/*
		SoftDelete hides a task without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		List returns a filtered page of a user's tasks ordered by due date,
		then recency.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - filters: Filters
		  - params: pagination.Params

		Returns:
		  - []Task: Page of tasks
		  - int: Total matching count
		  - error: Retrieval failures
	*/
	List(context context.Context, userID string, filters Filters, params pagination.Params) ([]Task, int, error)

	/*
		CountByStatus groups a user's tasks by status.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - map[string]int64: Count per status
		  - error: Retrieval failures
	*/
	CountByStatus(context context.Context, userID string) (map[string]int64, error)
}
