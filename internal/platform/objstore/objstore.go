// Copyright (c) 2026 MindVault. All rights reserved.
// Author: dev@mindvault.app

/*
Package objstore wraps the MinIO client behind the small surface the file
domain needs: presigned upload and download URLs, direct streaming, and
object removal.
*/
package objstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/mindvault/mindvault/internal/platform/sec"
)

// Config carries the connection settings for the object store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store is a thin wrapper around the minio client.
type Store struct {
	client *minio.Client
	bucket string
}

// New creates a MinIO client and ensures the bucket exists.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("objstore_config_missing_endpoint")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("objstore_client_failed: %w", err)
	}

	store := &Store{client: client, bucket: cfg.Bucket}

	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.MakeBucket(ctx, store.bucket, minio.MakeBucketOptions{}); err != nil {
		exists, checkErr := client.BucketExists(ctx, store.bucket)
		if checkErr != nil || !exists {
			return nil, fmt.Errorf("objstore_bucket_ensure_failed: %w", err)
		}
	}

	return store, nil
}

// keyUnsafe matches the filename characters replaced before a name is
// embedded in a storage key.
var keyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

/*
StorageKey builds a collision-resistant object key for an upload.

Description: Keys are namespaced per user and carry a timestamp plus random
component, so re-uploading the same filename never overwrites an earlier
object.

Parameters:
  - userID: string
  - filename: string (sanitized before embedding)

Returns:
  - string: Object key of the form uploads/{userID}/{ts}-{rand}-{name}
*/
func StorageKey(userID, filename string) string {
	random, err := sec.GenerateSecureToken(8)
	if err != nil {
		// crypto/rand failing is unrecoverable for key generation;
		// fall back to timestamp-only uniqueness
		random = "00000000"
	}
	sanitized := keyUnsafe.ReplaceAllString(filename, "_")
	return fmt.Sprintf("uploads/%s/%d-%s-%s", userID, time.Now().UnixMilli(), random, sanitized)
}

/*
PresignedUpload returns a presigned PUT URL for direct client upload.

Parameters:
  - context: context.Context
  - key: string
  - expires: time.Duration

Returns:
  - string: Presigned URL
  - error: Signing failures
*/
func (store *Store) PresignedUpload(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigned, err := store.client.PresignedPutObject(ctx, store.bucket, key, expires)
	if err != nil {
		return "", fmt.Errorf("objstore_presign_upload_failed: %w", err)
	}
	return presigned.String(), nil
}

/*
PresignedDownload returns a presigned GET URL for the stored object.

Parameters:
  - context: context.Context
  - key: string
  - expires: time.Duration

Returns:
  - string: Presigned URL
  - error: Signing failures
*/
func (store *Store) PresignedDownload(ctx context.Context, key string, expires time.Duration) (string, error) {
	params := make(url.Values)
	presigned, err := store.client.PresignedGetObject(ctx, store.bucket, key, expires, params)
	if err != nil {
		return "", fmt.Errorf("objstore_presign_download_failed: %w", err)
	}
	return presigned.String(), nil
}

/*
Upload streams data into the bucket under the given key.

Parameters:
  - context: context.Context
  - key: string
  - reader: io.Reader
  - size: int64
  - contentType: string

Returns:
  - error: Transfer failures
*/
func (store *Store) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := store.client.PutObject(ctx, store.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("objstore_upload_failed: %w", err)
	}
	return nil
}

/*
Download returns a ReadCloser for the stored object.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - io.ReadCloser: Object body; caller closes
  - error: Missing object or transfer failures
*/
func (store *Store) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	object, err := store.client.GetObject(ctx, store.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objstore_download_failed: %w", err)
	}

	// stat to surface missing objects before the caller reads
	if _, err := object.Stat(); err != nil {
		object.Close()
		return nil, fmt.Errorf("objstore_stat_failed: %w", err)
	}
	return object, nil
}

/*
Remove deletes the stored object.

Parameters:
  - context: context.Context
  - key: string

Returns:
  - error: Removal failures
*/
func (store *Store) Remove(ctx context.Context, key string) error {
	if err := store.client.RemoveObject(ctx, store.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("objstore_remove_failed: %w", err)
	}
	return nil
}

/*
Healthy reports whether the bucket is reachable.

Parameters:
  - context: context.Context

Returns:
  - error: Connectivity failures
*/
func (store *Store) Healthy(ctx context.Context) error {
	if _, err := store.client.BucketExists(ctx, store.bucket); err != nil {
		return fmt.Errorf("objstore_health_failed: %w", err)
	}
	return nil
}
