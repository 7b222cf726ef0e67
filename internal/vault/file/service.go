// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package file

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/platform/metrics"
	"github.com/mindvault/mindvault/internal/platform/objstore"
	"github.com/mindvault/mindvault/pkg/pagination"
	"github.com/mindvault/mindvault/pkg/uuidv7"
)

// ObjectStore is the object storage surface the file domain needs.
// Implemented by [objstore.Store].
type ObjectStore interface {
	PresignedUpload(context context.Context, key string, expires time.Duration) (string, error)
	PresignedDownload(context context.Context, key string, expires time.Duration) (string, error)
	Remove(context context.Context, key string) error
}

// allowedMimeTypes is the closed set of accepted upload content types.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"text/plain":                   true,
	"text/markdown":                true,
	"text/csv":                     true,
	"image/jpeg":                   true,
	"image/png":                    true,
	"image/gif":                    true,
	"image/webp":                   true,
	"image/svg+xml":                true,
	"audio/mpeg":                   true,
	"audio/mp3":                    true,
	"audio/wav":                    true,
	"audio/ogg":                    true,
	"video/mp4":                    true,
	"video/mpeg":                   true,
	"video/webm":                   true,
	"application/zip":              true,
	"application/x-tar":            true,
	"application/gzip":             true,
	"application/x-rar-compressed": true,
}

// storageQuotaMultiplier converts the per-file limit into the account quota.
const storageQuotaMultiplier = 100

// Service orchestrates the two-phase upload flow and file record access.
type Service struct {
	repository  Repository
	objectStore ObjectStore
	maxFileSize int64
	urlTTL      time.Duration
	logger      *slog.Logger
}

// NewService constructs a file [Service].
func NewService(repository Repository, objectStore ObjectStore, maxFileSize int64, urlTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repository:  repository,
		objectStore: objectStore,
		maxFileSize: maxFileSize,
		urlTTL:      urlTTL,
		logger:      logger,
	}
}

// UploadGrant is returned when an upload slot is reserved.
type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	FileID    string `json:"fileId"`
	ExpiresIn int64  `json:"expiresIn"`
}

/*
RequestUpload reserves an upload slot and returns a presigned PUT URL.

Description: Creates the file record in uploading status. The client PUTs the
bytes directly to the object store, then calls ConfirmUpload.

Parameters:
  - context: context.Context
  - userID: string
  - filename: string
  - mimeType: string
  - size: int64

Returns:
  - *UploadGrant: Presigned URL and record ID
  - error: Validation, signing, or storage failures
*/
func (service *Service) RequestUpload(context context.Context, userID, filename, mimeType string, size int64) (*UploadGrant, error) {
	if size <= 0 {
		return nil, apperr.ValidationError("Invalid file size")
	}
	if size > service.maxFileSize {
		return nil, apperr.ValidationError(fmt.Sprintf("File size exceeds maximum limit of %d bytes", service.maxFileSize))
	}
	if !allowedMimeTypes[mimeType] {
		return nil, apperr.ValidationError(fmt.Sprintf("File type %s is not allowed", mimeType))
	}

	key := objstore.StorageKey(userID, filename)

	uploadURL, err := service.objectStore.PresignedUpload(context, key, service.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("file_service_presign_failed: %w", err)
	}

	record := &File{
		ID:         uuidv7.New(),
		UserID:     userID,
		Filename:   filename,
		MimeType:   mimeType,
		Size:       size,
		Type:       TypeFromMime(mimeType),
		Status:     StatusUploading,
		StorageKey: key,
	}

	if err := service.repository.Create(context, record); err != nil {
		return nil, fmt.Errorf("file_service_create_failed: %w", err)
	}

	service.logger.Info("file_upload_granted",
		slog.String("file_id", record.ID),
		slog.String("user_id", userID),
		slog.Int64("size", size),
	)

	return &UploadGrant{
		UploadURL: uploadURL,
		FileID:    record.ID,
		ExpiresIn: int64(service.urlTTL.Seconds()),
	}, nil
}

/*
ConfirmUpload moves a record from uploading to uploaded.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - *File: Updated record
  - error: Ownership, state, or storage failures
*/
func (service *Service) ConfirmUpload(context context.Context, id, userID string) (*File, error) {
	record, err := service.Get(context, id, userID)
	if err != nil {
		return nil, err
	}

	if record.Status != StatusUploading {
		return nil, apperr.Unprocessable("File is not in uploading status")
	}

	if err := service.repository.UpdateStatus(context, id, StatusUploaded); err != nil {
		return nil, fmt.Errorf("file_service_confirm_failed: %w", err)
	}
	record.Status = StatusUploaded

	metrics.FilesUploaded.Inc()
	service.logger.Info("file_uploaded",
		slog.String("file_id", id),
		slog.String("user_id", userID),
		slog.Int64("size", record.Size),
	)

	return record, nil
}

/*
Get returns a file record after verifying ownership.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - *File: Hydrated record
  - error: NotFound, Forbidden, or retrieval failures
*/
func (service *Service) Get(context context.Context, id, userID string) (*File, error) {
	record, err := service.repository.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	if record.UserID != userID {
		return nil, apperr.Forbidden("Not authorized to access this file")
	}

	return record, nil
}

/*
DownloadURL returns a fresh presigned GET URL for a file.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - string: Presigned URL
  - int64: Seconds the URL remains valid
  - error: Ownership or signing failures
*/
func (service *Service) DownloadURL(context context.Context, id, userID string) (string, int64, error) {
	record, err := service.Get(context, id, userID)
	if err != nil {
		return "", 0, err
	}

	if record.Status == StatusUploading {
		return "", 0, apperr.Unprocessable("File upload has not completed")
	}

	url, err := service.objectStore.PresignedDownload(context, record.StorageKey, service.urlTTL)
	if err != nil {
		return "", 0, fmt.Errorf("file_service_download_url_failed: %w", err)
	}

	return url, int64(service.urlTTL.Seconds()), nil
}

/*
List returns a filtered page of the user's file records.

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
func (service *Service) List(context context.Context, userID string, filters Filters, params pagination.Params) ([]File, int, error) {
	records, total, err := service.repository.List(context, userID, filters, params)
	if err != nil {
		return nil, 0, fmt.Errorf("file_service_list_failed: %w", err)
	}
	return records, total, nil
}

/*
Delete soft-deletes a file record and removes the stored object.

Description: Object removal is best-effort; a failure is logged and the
record stays deleted.

Parameters:
  - context: context.Context
  - id: string
  - userID: string

Returns:
  - error: Ownership or storage failures
*/
func (service *Service) Delete(context context.Context, id, userID string) error {
	record, err := service.Get(context, id, userID)
	if err != nil {
		return err
	}

	if err := service.repository.SoftDelete(context, id); err != nil {
		return fmt.Errorf("file_service_delete_failed: %w", err)
	}

	if err := service.objectStore.Remove(context, record.StorageKey); err != nil {
		service.logger.Error("file_object_remove_failed",
			slog.String("file_id", id),
			slog.String("storage_key", record.StorageKey),
			slog.String("error", err.Error()),
		)
	}

	service.logger.Info("file_deleted",
		slog.String("file_id", id),
		slog.String("user_id", userID),
	)

	return nil
}

/*
StorageUsage summarizes the user's storage consumption against quota.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Usage: Bytes used, file count, and quota
  - error: Retrieval failures
*/
func (service *Service) StorageUsage(context context.Context, userID string) (*Usage, error) {
	totalBytes, totalFiles, err := service.repository.StorageUsed(context, userID)
	if err != nil {
		return nil, fmt.Errorf("file_service_usage_failed: %w", err)
	}

	return &Usage{
		TotalBytes: totalBytes,
		TotalFiles: totalFiles,
		LimitBytes: service.maxFileSize * storageQuotaMultiplier,
	}, nil
}
