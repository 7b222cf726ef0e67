// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

package file_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindvault/mindvault/internal/platform/apperr"
	"github.com/mindvault/mindvault/internal/vault/file"
	"github.com/mindvault/mindvault/pkg/pagination"
)

// # Fakes

type fakeFileRepository struct {
	byID map[string]*file.File
}

func newFakeFileRepository() *fakeFileRepository {
	return &fakeFileRepository{byID: map[string]*file.File{}}
}

func (r *fakeFileRepository) Create(_ context.Context, record *file.File) error {
	r.byID[record.ID] = record
	return nil
}

func (r *fakeFileRepository) FindByID(_ context.Context, id string) (*file.File, error) {
	record, ok := r.byID[id]
	if !ok {
		return nil, apperr.NotFound("File not found")
	}
	clone := *record
	return &clone, nil
}

func (r *fakeFileRepository) UpdateStatus(_ context.Context, id string, status file.Status) error {
	record, ok := r.byID[id]
	if !ok {
		return apperr.NotFound("File not found")
	}
	record.Status = status
	return nil
}

func (r *fakeFileRepository) SoftDelete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return apperr.NotFound("File not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *fakeFileRepository) List(_ context.Context, userID string, _ file.Filters, _ pagination.Params) ([]file.File, int, error) {
	var records []file.File
	for _, record := range r.byID {
		if record.UserID == userID {
			records = append(records, *record)
		}
	}
	return records, len(records), nil
}

func (r *fakeFileRepository) StorageUsed(_ context.Context, userID string) (int64, int64, error) {
	var bytes, count int64
	for _, record := range r.byID {
		if record.UserID == userID && record.Status != file.StatusUploading {
			bytes += record.Size
			count++
		}
	}
	return bytes, count, nil
}

// fakeObjectStore hands out deterministic URLs and records removals.
type fakeObjectStore struct {
	removed []string
}

func (s *fakeObjectStore) PresignedUpload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.local/upload/" + key, nil
}

func (s *fakeObjectStore) PresignedDownload(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.local/download/" + key, nil
}

func (s *fakeObjectStore) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

const testMaxFileSize = 10 << 20 // 10 MiB

type fileFixture struct {
	service    *file.Service
	repository *fakeFileRepository
	store      *fakeObjectStore
}

func newFileFixture() *fileFixture {
	repository := newFakeFileRepository()
	store := &fakeObjectStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fileFixture{
		service:    file.NewService(repository, store, testMaxFileSize, 15*time.Minute, logger),
		repository: repository,
		store:      store,
	}
}

// # Tests

func TestFileService_RequestUpload(t *testing.T) {
	fixture := newFileFixture()

	grant, err := fixture.service.RequestUpload(context.Background(), "user-1", "report.pdf", "application/pdf", 1024)
	require.NoError(t, err)

	assert.NotEmpty(t, grant.FileID)
	assert.Contains(t, grant.UploadURL, "https://store.local/upload/uploads/user-1/")
	assert.EqualValues(t, 900, grant.ExpiresIn)

	record := fixture.repository.byID[grant.FileID]
	require.NotNil(t, record)
	assert.Equal(t, file.StatusUploading, record.Status)
	assert.Equal(t, file.TypeDocument, record.Type)
}

func TestFileService_RequestUpload_Validation(t *testing.T) {
	tests := []struct {
		name     string
		mimeType string
		size     int64
		message  string
	}{
		{"zero_size", "application/pdf", 0, "Invalid file size"},
		{"negative_size", "application/pdf", -1, "Invalid file size"},
		{"oversized", "application/pdf", testMaxFileSize + 1, "File size exceeds maximum limit of 10485760 bytes"},
		{"executable", "application/x-msdownload", 1024, "File type application/x-msdownload is not allowed"},
		{"blank_mime", "", 1024, "File type  is not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newFileFixture()

			_, err := fixture.service.RequestUpload(context.Background(), "user-1", "f.bin", tt.mimeType, tt.size)

			appErr := apperr.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
		})
	}
}

func TestFileService_ConfirmUpload(t *testing.T) {
	fixture := newFileFixture()
	ctx := context.Background()

	grant, err := fixture.service.RequestUpload(ctx, "user-1", "report.pdf", "application/pdf", 1024)
	require.NoError(t, err)

	record, err := fixture.service.ConfirmUpload(ctx, grant.FileID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, file.StatusUploaded, record.Status)

	// Confirming twice is rejected: the record already left uploading
	_, err = fixture.service.ConfirmUpload(ctx, grant.FileID, "user-1")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "UNPROCESSABLE", appErr.Code)
	assert.Equal(t, "File is not in uploading status", appErr.Message)
}

func TestFileService_DownloadURL(t *testing.T) {
	fixture := newFileFixture()
	ctx := context.Background()

	grant, err := fixture.service.RequestUpload(ctx, "user-1", "report.pdf", "application/pdf", 1024)
	require.NoError(t, err)

	// The bytes are not confirmed yet
	_, _, err = fixture.service.DownloadURL(ctx, grant.FileID, "user-1")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "File upload has not completed", appErr.Message)

	_, err = fixture.service.ConfirmUpload(ctx, grant.FileID, "user-1")
	require.NoError(t, err)

	url, expiresIn, err := fixture.service.DownloadURL(ctx, grant.FileID, "user-1")
	require.NoError(t, err)
	assert.Contains(t, url, "https://store.local/download/uploads/user-1/")
	assert.EqualValues(t, 900, expiresIn)
}

func TestFileService_OwnershipEnforced(t *testing.T) {
	fixture := newFileFixture()
	ctx := context.Background()

	grant, err := fixture.service.RequestUpload(ctx, "user-1", "report.pdf", "application/pdf", 1024)
	require.NoError(t, err)

	_, err = fixture.service.Get(ctx, grant.FileID, "user-2")
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, "FORBIDDEN", appErr.Code)
	assert.Equal(t, "Not authorized to access this file", appErr.Message)

	_, err = fixture.service.ConfirmUpload(ctx, grant.FileID, "user-2")
	require.NotNil(t, apperr.As(err))

	err = fixture.service.Delete(ctx, grant.FileID, "user-2")
	require.NotNil(t, apperr.As(err))
}

func TestFileService_Delete_RemovesObject(t *testing.T) {
	fixture := newFileFixture()
	ctx := context.Background()

	grant, err := fixture.service.RequestUpload(ctx, "user-1", "report.pdf", "application/pdf", 1024)
	require.NoError(t, err)

	record := fixture.repository.byID[grant.FileID]
	storageKey := record.StorageKey

	require.NoError(t, fixture.service.Delete(ctx, grant.FileID, "user-1"))
	assert.Contains(t, fixture.store.removed, storageKey)

	_, err = fixture.service.Get(ctx, grant.FileID, "user-1")
	assert.Error(t, err)
}

func TestFileService_StorageUsage(t *testing.T) {
	fixture := newFileFixture()
	ctx := context.Background()

	confirmed, err := fixture.service.RequestUpload(ctx, "user-1", "a.pdf", "application/pdf", 4096)
	require.NoError(t, err)
	_, err = fixture.service.ConfirmUpload(ctx, confirmed.FileID, "user-1")
	require.NoError(t, err)

	// Unconfirmed uploads never count against quota
	_, err = fixture.service.RequestUpload(ctx, "user-1", "b.pdf", "application/pdf", 8192)
	require.NoError(t, err)

	usage, err := fixture.service.StorageUsage(ctx, "user-1")
	require.NoError(t, err)

	assert.EqualValues(t, 4096, usage.TotalBytes)
	assert.EqualValues(t, 1, usage.TotalFiles)
	assert.EqualValues(t, int64(testMaxFileSize)*100, usage.LimitBytes)
}

func TestTypeFromMime(t *testing.T) {
	tests := []struct {
		mimeType string
		want     file.Type
	}{
		{"application/pdf", file.TypeDocument},
		{"text/plain", file.TypeDocument},
		{"image/png", file.TypeImage},
		{"audio/mpeg", file.TypeAudio},
		{"video/mp4", file.TypeVideo},
		{"application/zip", file.TypeArchive},
		{"application/octet-stream", file.TypeOther},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			assert.Equal(t, tt.want, file.TypeFromMime(tt.mimeType))
		})
	}
}
