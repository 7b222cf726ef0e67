// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/pkg/pagination"
	"github.com/mindvault/mindvault/pkg/uuidv7"
)

// Service orchestrates business logic for the task domain.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a task [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// CreateInput holds the data required to create a new task.
type CreateInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Tags        []string
	Metadata    []byte
}

/*
Create records a new pending task for the user.

Parameters:
  - context: context.Context
  - userID: string
  - input: CreateInput

Returns:
  - *Task: Created entity
  - error: Storage failures
*/
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Task, error) {
	entry := &Task{
		ID:          uuidv7.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      StatusPending,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
		Metadata:    input.Metadata,
	}

	if err := service.repository.Create(context, entry); err != nil {
		return nil, fmt.Errorf("task_service_create_failed: %w", err)
	}

	service.logger.Info("task_created",
		slog.String("task_id", entry.ID),
		slog.String("user_id", userID),
	)

	return entry, nil
}

/*
Get returns a task after verifying ownership.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - *Task: Hydrated entity
  - error: NotFound, Forbidden, or retrieval failures
*/
func (service *Service) Get(context context.Context, id, userID string) (*Task, error) {
	entry, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if entry.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to access this task")
	}

	return entry, nil
}

// UpdateInput defines the mutable subset of task fields.
// Nil pointers mean "leave unchanged".
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *Status
	DueDate     *time.Time
	ClearDue    bool
	Tags        *[]string
	Metadata    []byte
}

/*
Update applies a partial set of changes to a task.

Description: Moving a task to completed stamps CompletedAt; moving it away
from completed clears the stamp.

Parameters:
  - context: context.Context
  - id: string
  - userID: string
  - input: UpdateInput

Returns:
  - *Task: Updated entity
  - error: Ownership, validation, or storage failures
*/
func (service *Service) Update(context context.Context, id, userID string, input UpdateInput) (*Task, error) {
	entry, err := service.Get(context, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		entry.Title = *input.Title
	}
	if input.Description != nil {
		entry.Description = *input.Description
	}
	if input.DueDate != nil {
		entry.DueDate = input.DueDate
	} else if input.ClearDue {
		entry.DueDate = nil
	}
	if input.Tags != nil {
		entry.Tags = *input.Tags
	}
	if input.Metadata != nil {
		entry.Metadata = input.Metadata
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperr.ValidationError("Unknown task status")
		}
		if *input.Status == StatusCompleted && entry.Status != StatusCompleted {
			now := time.Now()
			entry.CompletedAt = &now
		}
		if *input.Status != StatusCompleted {
			entry.CompletedAt = nil
		}
		entry.Status = *input.Status
	}

	if err := service.repository.Update(context, entry); err != nil {
		return nil, fmt.Errorf("task_service_update_failed: %w", err)
	}

	service.logger.Info("task_updated",
		slog.String("task_id", id),
		slog.String("user_id", userID),
		slog.String("status", string(entry.Status)),
	)

	return entry, nil
}

/*
Delete soft-deletes a task after verifying ownership.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - error: Ownership or storage failures
*/
func (service *Service) Delete(context context.Context, id, userID string) error {
	if _, err := service.Get(context, id, userID); err != nil {
		return err
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return fmt.Errorf("task_service_delete_failed: %w", err)
	}

	service.logger.Info("task_deleted",
		slog.String("task_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

/*
List returns a filtered page of the user's tasks.

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
func (service *Service) List(context context.Context, userID string, filters Filters, params pagination.Params) ([]Task, int, error) {
	entries, total, err := service.repository.List(context, userID, filters, params)
	if err != nil {
		return nil, 0, fmt.Errorf("task_service_list_failed: %w", err)
	}
	return entries, total, nil
}

/*
StatusBreakdown reports the number of tasks per status for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - map[string]int64: Count keyed by status
  - error: Retrieval failures
*/
func (service *Service) StatusBreakdown(context context.Context, userID string) (map[string]int64, error) {
	counts, err := service.repository.CountByStatus(context, userID)
	if err != nil {
		return nil, fmt.Errorf("task_service_status_breakdown_failed: %w", err)
	}
	return counts, nil
}
