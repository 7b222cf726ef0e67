// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package memory implements the personal knowledge capture domain.

A memory is a user-owned unit of knowledge (note, bookmark, captured chat,
etc.) that moves through a processing pipeline: draft on creation, processed
once enrichment completes, archived when the user retires it.

# Ownership

Every operation is scoped to the owning user. A lookup that resolves to
another user's memory yields Forbidden, never the entity.
*/
package memory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mindvault/mindvault/pkg/pagination"
)

// # Enumerations

// Type categorizes the origin of a memory.
type Type string

const (
	TypeNote     Type = "note"
	TypeFile     Type = "file"
	TypeChat     Type = "chat"
	TypeTask     Type = "task"
	TypeEvent    Type = "event"
	TypeContact  Type = "contact"
	TypeBookmark Type = "bookmark"
	TypeOther    Type = "other"
)

// Valid reports whether t is a known memory type.
func (t Type) Valid() bool {
	switch t {
	case TypeNote, TypeFile, TypeChat, TypeTask, TypeEvent, TypeContact, TypeBookmark, TypeOther:
		return true
	}
	return false
}

// Status tracks a memory through its processing pipeline.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusArchived   Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusProcessing, StatusProcessed, StatusArchived:
		return true
	}
	return false
}

// Terminal reports whether the status is an end state of the pipeline.
func (s Status) Terminal() bool {
	return s == StatusProcessed || s == StatusArchived
}

// # Domain Entity

// Memory is a user-owned unit of captured knowledge.
type Memory struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Type        Type            `json:"type"`
	Status      Status          `json:"status"`
	Tags        []string        `json:"tags"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// # Links

// Relation classifies how one memory relates to another.
type Relation string

const (
	RelationRelated   Relation = "related"
	RelationParent    Relation = "parent"
	RelationChild     Relation = "child"
	RelationReference Relation = "reference"
	RelationSimilar   Relation = "similar"
)

// Valid reports whether r is a known relation kind.
func (r Relation) Valid() bool {
	switch r {
	case RelationRelated, RelationParent, RelationChild, RelationReference, RelationSimilar:
		return true
	}
	return false
}

// Link is a directed edge between two memories owned by the same user.
type Link struct {
	ID        string    `json:"id"`
	MemoryID  string    `json:"memoryId"`
	TargetID  string    `json:"targetId"`
	Relation  Relation  `json:"relationship"`
	CreatedAt time.Time `json:"createdAt"`
}

// # Query Types

// Filters narrows a memory listing. Zero values mean "no constraint".
type Filters struct {
	Type   Type
	Status Status
	Tag    string
}

// # Data Access

// Repository defines the persistence contract for memories.
type Repository interface {

	/*
		Create persists a new memory.

		Parameters:
		  - context: context.Context
		  - memory: *Memory

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, memory *Memory) error

	/*
		FindByID returns the memory with the given ID, regardless of owner.
		Ownership enforcement is the service's responsibility.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Memory: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Memory, error)

	/*
		Update persists changes to a memory's mutable fields.

		Parameters:
		  - context: context.Context
		  - memory: *Memory

		Returns:
		  - error: Persistence failures
	*/
	Update(context context.Context, memory *Memory) error

	/*
		SoftDelete hides a memory without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		List returns a filtered page of a user's memories, newest first.

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
	List(context context.Context, userID string, filters Filters, params pagination.Params) ([]Memory, int, error)

	/*
		Search performs a text search across a user's memory titles and contents.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - query: string
		  - limit: int

		Returns:
		  - []Memory: Matching memories ranked by relevance
		  - error: Retrieval failures
	*/
	Search(context context.Context, userID, query string, limit int) ([]Memory, error)

	/*
		CountByType groups a user's memories by type.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - map[string]int64: Count per type
		  - error: Retrieval failures
	*/
	CountByType(context context.Context, userID string) (map[string]int64, error)

	/*
		CreateLink persists a directed edge between two memories.

		Parameters:
		  - context: context.Context
		  - link: *Link

		Returns:
		  - error: apperr.Conflict when the edge already exists, or persistence failures
	*/
	CreateLink(context context.Context, link *Link) error

	/*
		Related returns the memories the given one links to, newest edge first.

		Parameters:
		  - context: context.Context
		  - id: string
		  - limit: int

		Returns:
		  - []Memory: Linked memories
		  - error: Retrieval failures
	*/
	Related(context context.Context, id string, limit int) ([]Memory, error)
}
