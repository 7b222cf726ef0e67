// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/pkg/pagination"
	"github.com/mindvault/mindvault/pkg/uuidv7"
)

// DefaultSearchLimit bounds text search results when the client does not ask
// for a specific count.
const DefaultSearchLimit = 20

// Service orchestrates business logic for the memory domain.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a memory [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// CreateInput holds the data required to capture a new memory.
type CreateInput struct {
	Title    string
	Content  string
	Type     Type
	Status   Status
	Tags     []string
	Metadata []byte
}

/*
Create captures a new memory for the user.

Description: New memories default to draft status; the enrichment pipeline
moves them forward asynchronously.

Parameters:
  - context: context.Context
  - userID: string
  - input: CreateInput

Returns:
  - *Memory: Created entity
  - error: Validation or storage failures
*/
func (service *Service) Create(context context.Context, userID string, input CreateInput) (*Memory, error) {
	status := input.Status
	if status == "" {
		status = StatusDraft
	}

	entry := &Memory{
		ID:       uuidv7.New(),
		UserID:   userID,
		Title:    input.Title,
		Content:  input.Content,
		Type:     input.Type,
		Status:   status,
		Tags:     input.Tags,
		Metadata: input.Metadata,
	}

	if err := service.repository.Create(context, entry); err != nil {
		return nil, fmt.Errorf("memory_service_create_failed: %w", err)
	}

	service.logger.Info("memory_created",
		slog.String("memory_id", entry.ID),
		slog.String("user_id", userID),
		slog.String("type", string(entry.Type)),
	)

	return entry, nil
}

/*
Get returns a memory after verifying ownership.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - *Memory: Hydrated entity
  - error: NotFound, Forbidden, or retrieval failures
*/
func (service *Service) Get(context context.Context, id, userID string) (*Memory, error) {
	entry, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if entry.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to access this memory")
	}

	return entry, nil
}

// UpdateInput defines the mutable subset of memory fields.
// Nil pointers mean "leave unchanged".
type UpdateInput struct {
	Title    *string
	Content  *string
	Status   *Status
	Tags     *[]string
	Metadata []byte
}

/*
Update applies a partial set of changes to a memory.

Description: Transitioning into processed stamps ProcessedAt exactly once.

Parameters:
  - context: context.Context
  - id: string
  - userID: string
  - input: UpdateInput

Returns:
  - *Memory: Updated entity
  - error: Ownership or storage failures
*/
func (service *Service) Update(context context.Context, id, userID string, input UpdateInput) (*Memory, error) {
	entry, err := service.Get(context, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		entry.Title = *input.Title
	}
	if input.Content != nil {
		entry.Content = *input.Content
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperr.ValidationError("Unknown memory status")
		}
		if *input.Status == StatusProcessed && entry.ProcessedAt == nil {
			now := time.Now()
			entry.ProcessedAt = &now
		}
		entry.Status = *input.Status
	}
	if input.Tags != nil {
		entry.Tags = *input.Tags
	}
	if input.Metadata != nil {
		entry.Metadata = input.Metadata
	}

	if err := service.repository.Update(context, entry); err != nil {
		return nil, fmt.Errorf("memory_service_update_failed: %w", err)
	}

	service.logger.Info("memory_updated",
		slog.String("memory_id", id),
		slog.String("user_id", userID),
	)

	return entry, nil
}

/*
Delete soft-deletes a memory after verifying ownership.

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
		return fmt.Errorf("memory_service_delete_failed: %w", err)
	}

	service.logger.Info("memory_deleted",
		slog.String("memory_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

/*
List returns a filtered page of the user's memories.

Parameters:
  - context: context.Context
  - userID: string
  - filters: Filters
  - params: pagination.Params

Returns:
  - []Memory: Page of memories
  - int: Total matching count
  - error: Retrieval failures
*/
func (service *Service) List(context context.Context, userID string, filters Filters, params pagination.Params) ([]Memory, int, error) {
	entries, total, err := service.repository.List(context, userID, filters, params)
	if err != nil {
		return nil, 0, fmt.Errorf("memory_service_list_failed: %w", err)
	}
	return entries, total, nil
}

/*
Search performs a text search across the user's memories.

Parameters:
  - context: context.Context
  - userID: string
  - query: string
  - limit: int (clamped to DefaultSearchLimit when out of range)

Returns:
  - []Memory: Matching memories
  - error: Validation or retrieval failures
*/
func (service *Service) Search(context context.Context, userID, query string, limit int) ([]Memory, error) {
	if strings.TrimSpace(query) == "" {
		return nil, apperr.ValidationError("Search query is required")
	}

	if limit < 1 || limit > pagination.MaxLimit {
		limit = DefaultSearchLimit
	}

	entries, err := service.repository.Search(context, userID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("memory_service_search_failed: %w", err)
	}
	return entries, nil
}

/*
SemanticSearch performs a vector-similarity search across the user's memories.

Description: Placeholder. Until the AI engine carries a provider it falls
back to text search and logs the downgrade.

Parameters:
  - context: context.Context
  - userID: string
  - query: string
  - limit: int

Returns:
  - []Memory: Matching memories
  - error: Validation or retrieval failures
*/
func (service *Service) SemanticSearch(context context.Context, userID, query string, limit int) ([]Memory, error) {
	service.logger.Warn("memory_semantic_search_fallback",
		slog.String("user_id", userID),
	)
	return service.Search(context, userID, query, limit)
}

/*
HybridSearch combines keyword and vector search across the user's memories.

Description: Placeholder. Falls back to text search like [SemanticSearch].

Parameters:
  - context: context.Context
  - userID: string
  - query: string
  - limit: int

Returns:
  - []Memory: Matching memories
  - error: Validation or retrieval failures
*/
func (service *Service) HybridSearch(context context.Context, userID, query string, limit int) ([]Memory, error) {
	service.logger.Warn("memory_hybrid_search_fallback",
		slog.String("user_id", userID),
	)
	return service.Search(context, userID, query, limit)
}

// # Links

/*
Link creates a directed edge between two memories the user owns.

Parameters:
  - context: context.Context
  - id: string (source memory)
  - targetID: string
  - userID: string
  - relation: Relation (defaults to [RelationRelated] when blank)

Returns:
  - *Link: Created edge
  - error: Validation, ownership, Conflict, or storage failures
*/
func (service *Service) Link(context context.Context, id, targetID, userID string, relation Relation) (*Link, error) {
	if relation == "" {
		relation = RelationRelated
	}
	if !relation.Valid() {
		return nil, apperr.ValidationError("Unknown relationship type")
	}
	if id == targetID {
		return nil, apperr.ValidationError("Cannot link a memory to itself")
	}

	// Both endpoints must exist and belong to the caller
	if _, err := service.Get(context, id, userID); err != nil {
		return nil, err
	}
	if _, err := service.Get(context, targetID, userID); err != nil {
		return nil, err
	}

	link := &Link{
		ID:       uuidv7.New(),
		MemoryID: id,
		TargetID: targetID,
		Relation: relation,
	}

	if err := service.repository.CreateLink(context, link); err != nil {
		if appErr := apperr.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, fmt.Errorf("memory_service_link_failed: %w", err)
	}

	service.logger.Info("memories_linked",
		slog.String("memory_id", id),
		slog.String("target_id", targetID),
		slog.String("relationship", string(relation)),
	)

	return link, nil
}

/*
Related returns the memories linked from the given one.

Parameters:
  - context: context.Context
  - id: string
  - userID: string
  - limit: int (clamped to DefaultSearchLimit when out of range)

Returns:
  - []Memory: Linked memories
  - error: Ownership or retrieval failures
*/
func (service *Service) Related(context context.Context, id, userID string, limit int) ([]Memory, error) {
	if _, err := service.Get(context, id, userID); err != nil {
		return nil, err
	}

	if limit < 1 || limit > pagination.MaxLimit {
		limit = DefaultSearchLimit
	}

	entries, err := service.repository.Related(context, id, limit)
	if err != nil {
		return nil, fmt.Errorf("memory_service_related_failed: %w", err)
	}
	return entries, nil
}

/*
TypeBreakdown reports the number of memories per type for a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - map[string]int64: Count keyed by type
  - error: Retrieval failures
*/
func (service *Service) TypeBreakdown(context context.Context, userID string) (map[string]int64, error) {
	counts, err := service.repository.CountByType(context, userID)
	if err != nil {
		return nil, fmt.Errorf("memory_service_type_breakdown_failed: %w", err)
	}
	return counts, nil
}
