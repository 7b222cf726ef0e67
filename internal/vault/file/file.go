// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package file implements user file storage on top of the object store.

# Upload Flow

Uploads are two-phase. The client asks for a presigned PUT URL, which also
creates a record in uploading status, then PUTs the bytes directly to the
object store and confirms completion, moving the record to uploaded. Records
stuck in uploading simply never got their bytes.
*/
package file

import (
	"context"
	"strings"
	"time"

	"github.com/mindvault/mindvault/pkg/pagination"
)

// # Enumerations

// Status tracks a file through the upload and processing pipeline.
type Status string

const (
	StatusUploading  Status = "uploading"
	StatusUploaded   Status = "uploaded"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known file status.
func (s Status) Valid() bool {
	switch s {
	case StatusUploading, StatusUploaded, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	}
	return false
}

// Type is the broad category of a file, derived from its MIME type.
type Type string

const (
	TypeDocument Type = "document"
	TypeImage    Type = "image"
	TypeAudio    Type = "audio"
	TypeVideo    Type = "video"
	TypeArchive  Type = "archive"
	TypeOther    Type = "other"
)

// TypeFromMime maps a MIME type onto a broad file category.
func TypeFromMime(mimeType string) Type {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return TypeImage
	case strings.HasPrefix(mimeType, "audio/"):
		return TypeAudio
	case strings.HasPrefix(mimeType, "video/"):
		return TypeVideo
	case strings.HasPrefix(mimeType, "text/"),
		strings.Contains(mimeType, "pdf"),
		strings.Contains(mimeType, "document"),
		strings.Contains(mimeType, "word"),
		strings.Contains(mimeType, "excel"),
		strings.Contains(mimeType, "powerpoint"):
		return TypeDocument
	case strings.Contains(mimeType, "zip"),
		strings.Contains(mimeType, "tar"),
		strings.Contains(mimeType, "rar"),
		strings.Contains(mimeType, "archive"):
		return TypeArchive
	}
	return TypeOther
}

// # Domain Entity

// File is a user-owned stored object record.
type File struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Filename   string    `json:"filename"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	Type       Type      `json:"type"`
	Status     Status    `json:"status"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Filters narrows a file listing. Zero values mean "no constraint".
type Filters struct {
	Type   Type
	Status Status
}

// Usage summarizes a user's storage consumption.
type Usage struct {
	TotalBytes int64 `json:"totalBytes"`
	TotalFiles int64 `json:"totalFiles"`
	LimitBytes int64 `json:"limitBytes"`
}

// # Data Access

// Repository defines the persistence contract for file records.
type Repository interface {

	/*
		Create persists a new file record.

		Parameters:
		  - context: context.Context
		  - file: *File

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, file *File) error

	/*
		FindByID returns the file record with the given ID, regardless of
		owner. Ownership enforcement is the service's responsibility.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *File: Hydrated record
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*File, error)

	/*
		UpdateStatus transitions a file record's status.

		Parameters:
		  - context: context.Context
		  - id: string
		  - status: Status

		Returns:
		  - error: Persistence failures
	*/
	UpdateStatus(context context.Context, id string, status Status) error

	/*
		SoftDelete hides a file record without removing the row.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: Persistence failures
	*/
	SoftDelete(context context.Context, id string) error

	/*
		List returns a filtered page of a user's file records, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - filters: Filters
		  - params: pagination.Params

		Returns:
		  - []File: Page of records
		  - int: Total matching count
		  - error: Retrieval failures
	*/
	List(context context.Context, userID string, filters Filters, params pagination.Params) ([]File, int, error)

	/*
		StorageUsed sums the sizes of a user's live uploaded files.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int64: Total bytes
		  - int64: Total file count
		  - error: Retrieval failures
	*/
	StorageUsed(context context.Context, userID string) (int64, int64, error)
}
